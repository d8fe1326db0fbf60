// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bitmark-inc/claimd/storage"
	"github.com/bitmark-inc/logger"
)

const (
	testingDirName = "testing"
)

// test database file
var databaseFileName = filepath.Join(testingDirName, "test.leveldb")

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

	// start logging
	_ = logger.Initialise(logging)
}

func removeFiles() {
	os.RemoveAll(testingDirName)
}

func teardownTestLogger() {
	logger.Finalise()
	removeFiles()
}

// configure for testing
func setup(t *testing.T) *storage.Database {
	setupTestLogger()

	db, err := storage.OpenMemory(logger.New("storage"))
	if nil != err {
		t.Fatalf("storage open error: %s", err)
	}
	return db
}

// post test cleanup
func teardown(db *storage.Database) {
	db.Close()
	teardownTestLogger()
}

// a string data item
type stringElement struct {
	key   string
	value string
}

// make an element array
func makeElements(input []stringElement) []storage.Element {
	output := make([]storage.Element, 0, len(input))
	for _, e := range input {
		output = append(output, storage.Element{
			Key:   []byte(e.key),
			Value: []byte(e.value),
		})
	}
	return output
}

// this is the expected order
var expectedElements = makeElements([]stringElement{
	{"key-five", "data-five"},
	{"key-four", "data-four"},
	{"key-one", "data-one(NEW)"},
	{"key-seven", "data-seven"},
	{"key-six", "data-six"},
	{"key-three", "data-three"},
	{"key-two", "data-two"},
})

// a key that must not exist
var nonExistantKey = []byte("/nonexistant")

// write the test data, overwriting key-one and deleting key-zero
func writeTestData(t *testing.T, db *storage.Database) {
	p := db.Pool.TestData
	trx := db.Transaction()

	if err := trx.Begin(); nil != err {
		t.Fatalf("begin error: %s", err)
	}
	trx.Put(p, []byte("key-zero"), []byte("data-zero"))
	trx.Put(p, []byte("key-one"), []byte("data-one"))
	trx.Put(p, []byte("key-two"), []byte("data-two"))
	trx.Put(p, []byte("key-three"), []byte("data-three"))
	trx.Put(p, []byte("key-four"), []byte("data-four"))
	trx.Put(p, []byte("key-five"), []byte("data-five"))
	trx.Put(p, []byte("key-six"), []byte("data-six"))
	trx.Put(p, []byte("key-seven"), []byte("data-seven"))
	trx.Put(p, []byte("key-one"), []byte("data-one(NEW)"))
	trx.Delete(p, []byte("key-zero"))
	if err := trx.Commit(); nil != err {
		t.Fatalf("commit error: %s", err)
	}
}
