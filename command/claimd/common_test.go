// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/bitmark-inc/logger"
)

const (
	testingDirName = "testing"
)

func setupTestLogger() {
	removeFiles()
	_ = os.Mkdir(testingDirName, 0700)

	logging := logger.Configuration{
		Directory: testingDirName,
		File:      "testing.log",
		Size:      1048576,
		Count:     10,
		Console:   false,
		Levels: map[string]string{
			logger.DefaultTag: "critical",
		},
	}

	_ = logger.Initialise(logging)
}

func removeFiles() {
	os.RemoveAll(testingDirName)
}

func teardownTestLogger() {
	logger.Finalise()
	removeFiles()
}

const testConfiguration = `
local M = {}
M.data_directory = "."
M.chain = arg["chain"] or "testing"
M.database = {
    directory = "data",
}
M.spool = {
    directory = "spool",
    rate_limit = 0,
}
M.logging = {
    directory = "log",
    levels = {
        DEFAULT = "critical",
    },
}
return M
`

// a data directory holding a configuration file
func setupDataDirectory(t *testing.T) (string, string) {
	dir, err := ioutil.TempDir("", "claimd")
	if nil != err {
		t.Fatalf("temp dir error: %s", err)
	}
	fileName := filepath.Join(dir, "claimd.conf")
	err = ioutil.WriteFile(fileName, []byte(testConfiguration), 0600)
	if nil != err {
		t.Fatalf("write configuration error: %s", err)
	}
	return dir, fileName
}

// logger, data directory and a node opened on it
func setupNode(t *testing.T) (*node, *Configuration, string) {
	setupTestLogger()

	dir, fileName := setupDataDirectory(t)
	c, err := getConfiguration(fileName, nil)
	if nil != err {
		t.Fatalf("configuration error: %s", err)
	}

	n, err := newNode(logger.New("main"), c)
	if nil != err {
		t.Fatalf("node error: %s", err)
	}
	return n, c, dir
}

func teardownNode(n *node, dir string) {
	n.close()
	os.RemoveAll(dir)
	teardownTestLogger()
}
