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

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/claimd/chain"
	"github.com/bitmark-inc/claimd/sequencer"
)

func TestGetConfiguration(t *testing.T) {
	dir, fileName := setupDataDirectory(t)
	defer os.RemoveAll(dir)

	c, err := getConfiguration(fileName, nil)
	assert.Nil(t, err, "configuration")

	// temporary directories may be behind symlinks, compare resolved paths
	expectedDir, _ := filepath.EvalSymlinks(dir)
	actualDir, _ := filepath.EvalSymlinks(c.DataDirectory)
	assert.Equal(t, expectedDir, actualDir, "wrong data directory")

	assert.Equal(t, chain.Testing, c.Chain, "wrong chain")
	assert.Equal(t, filepath.Join(c.DataDirectory, "data", "testing.leveldb"), c.Database.Name, "wrong database")
	assert.Equal(t, filepath.Join(c.DataDirectory, "spool"), c.Spool.Directory, "wrong spool")
	assert.Equal(t, float64(0), c.Spool.RateLimit, "wrong rate limit")
	assert.Equal(t, sequencer.DefaultRateBurst, c.Spool.RateBurst, "wrong rate burst")
	assert.True(t, c.Registry.AllowSelfTransfer, "wrong self transfer default")
	assert.Equal(t, filepath.Join(c.DataDirectory, "publish.public"), c.Publishing.PublicKey, "wrong public key")
	assert.False(t, c.Publishing.IsEnabled(), "publishing enabled")
	assert.Equal(t, "", c.PidFile, "wrong pid file")

	for _, d := range []string{"data", "spool", "log"} {
		info, err := os.Stat(filepath.Join(c.DataDirectory, d))
		assert.Nil(t, err, "directory: %s missing", d)
		if nil == err {
			assert.True(t, info.IsDir(), "%s is not a directory", d)
		}
	}
}

func TestGetConfigurationVariables(t *testing.T) {
	dir, fileName := setupDataDirectory(t)
	defer os.RemoveAll(dir)

	c, err := getConfiguration(fileName, map[string]string{"chain": "LOCAL"})
	assert.Nil(t, err, "configuration")
	assert.Equal(t, chain.Local, c.Chain, "wrong chain")
	assert.Equal(t, "local.leveldb", filepath.Base(c.Database.Name), "wrong database")

	_, err = getConfiguration(fileName, map[string]string{"chain": "bitmark"})
	assert.NotNil(t, err, "unsupported chain")
}

func TestGetConfigurationBadPaths(t *testing.T) {
	dir, err := ioutil.TempDir("", "claimd")
	if nil != err {
		t.Fatalf("temp dir error: %s", err)
	}
	defer os.RemoveAll(dir)

	items := []string{
		`return { data_directory = "" }`,
		`return { data_directory = "/no/such/directory" }`,
		`return { data_directory = ".", database = { name = "sub/live.leveldb" } }`,
	}
	for i, item := range items {
		fileName := filepath.Join(dir, "bad.conf")
		err = ioutil.WriteFile(fileName, []byte(item), 0600)
		if nil != err {
			t.Fatalf("write error: %s", err)
		}
		_, err = getConfiguration(fileName, nil)
		assert.NotNil(t, err, "%d: accepted", i)
	}
}
