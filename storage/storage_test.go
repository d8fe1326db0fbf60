// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/claimd/fault"
	"github.com/bitmark-inc/claimd/storage"
	"github.com/bitmark-inc/logger"
)

func TestPoolGetHas(t *testing.T) {
	db := setup(t)
	defer teardown(db)

	writeTestData(t, db)
	p := db.Pool.TestData

	for _, e := range expectedElements {
		assert.Equal(t, e.Value, p.Get(e.Key), "wrong value for: %s", e.Key)
		assert.True(t, p.Has(e.Key), "missing key: %s", e.Key)
	}

	assert.Nil(t, p.Get([]byte("key-zero")), "deleted key present")
	assert.False(t, p.Has([]byte("key-zero")), "deleted key present")
	assert.Nil(t, p.Get(nonExistantKey), "nonexistent key present")
	assert.False(t, p.Has(nonExistantKey), "nonexistent key present")

	// pools do not overlap
	assert.Nil(t, db.Pool.Claims.Get([]byte("key-one")), "key leaked to another pool")
}

func TestPendingWritesAreVisible(t *testing.T) {
	db := setup(t)
	defer teardown(db)

	writeTestData(t, db)
	p := db.Pool.TestData
	trx := db.Transaction()

	err := trx.Begin()
	assert.Nil(t, err, "begin")

	trx.Put(p, []byte("key-eight"), []byte("data-eight"))
	trx.Delete(p, []byte("key-two"))

	assert.Equal(t, []byte("data-eight"), trx.Get(p, []byte("key-eight")), "pending put not visible")
	assert.True(t, trx.Has(p, []byte("key-eight")), "pending put not visible")
	assert.Nil(t, trx.Get(p, []byte("key-two")), "pending delete not visible")
	assert.False(t, trx.Has(p, []byte("key-two")), "pending delete not visible")

	trx.Abort()

	assert.Nil(t, p.Get([]byte("key-eight")), "aborted put was written")
	assert.Equal(t, []byte("data-two"), p.Get([]byte("key-two")), "aborted delete was written")
}

func TestPutN(t *testing.T) {
	db := setup(t)
	defer teardown(db)

	p := db.Pool.TestData
	trx := db.Transaction()

	_, found := p.GetN([]byte("count"))
	assert.False(t, found, "count already present")

	_ = trx.Begin()
	trx.PutN(p, []byte("count"), 0x0102030405060708)
	n, found := trx.GetN(p, []byte("count"))
	assert.True(t, found, "pending count not found")
	assert.Equal(t, uint64(0x0102030405060708), n, "wrong pending count")
	err := trx.Commit()
	assert.Nil(t, err, "commit")

	n, found = p.GetN([]byte("count"))
	assert.True(t, found, "count not found")
	assert.Equal(t, uint64(0x0102030405060708), n, "wrong count")
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8}, p.Get([]byte("count")), "not big endian")
}

func TestFetch(t *testing.T) {
	db := setup(t)
	defer teardown(db)

	writeTestData(t, db)

	cursor := db.Pool.TestData.NewFetchCursor()

	first, err := cursor.Fetch(3)
	assert.Nil(t, err, "fetch")
	assert.Equal(t, expectedElements[:3], first, "wrong first page")

	rest, err := cursor.Fetch(100)
	assert.Nil(t, err, "fetch")
	assert.Equal(t, expectedElements[3:], rest, "wrong second page")

	none, err := cursor.Fetch(10)
	assert.Nil(t, err, "fetch")
	assert.Equal(t, 0, len(none), "data after end")

	_, err = cursor.Fetch(0)
	assert.Equal(t, fault.InvalidCount, err, "wrong error")
}

func TestFetchFixedLengthKeys(t *testing.T) {
	db := setup(t)
	defer teardown(db)

	p := db.Pool.TestData
	trx := db.Transaction()

	_ = trx.Begin()
	trx.Put(p, []byte{0x00, 0x00, 0x01}, []byte("one"))
	trx.Put(p, []byte{0x00, 0x00, 0xff}, []byte("two"))
	trx.Put(p, []byte{0x00, 0x01, 0x00}, []byte("three"))
	trx.Put(p, []byte{0x00, 0x01, 0x01}, []byte("four"))
	_ = trx.Commit()

	cursor := p.NewFetchCursor().Seek([]byte{0x00, 0x00, 0x00})

	page, err := cursor.Fetch(2)
	assert.Nil(t, err, "fetch")
	assert.Equal(t, 2, len(page), "wrong page length")
	assert.Equal(t, []byte("two"), page[1].Value, "wrong value")

	page, err = cursor.Fetch(2)
	assert.Nil(t, err, "fetch")
	assert.Equal(t, 2, len(page), "wrong page length")
	assert.Equal(t, []byte{0x00, 0x01, 0x00}, page[0].Key, "leading zero lost from key")
	assert.Equal(t, []byte("four"), page[1].Value, "wrong value")
}

func TestMap(t *testing.T) {
	db := setup(t)
	defer teardown(db)

	writeTestData(t, db)

	actual := make([]storage.Element, 0, len(expectedElements))
	err := db.Pool.TestData.NewFetchCursor().Map(func(key []byte, value []byte) error {
		actual = append(actual, storage.Element{Key: key, Value: value})
		return nil
	})
	assert.Nil(t, err, "map")
	assert.Equal(t, expectedElements, actual, "wrong elements")

	err = db.Pool.TestData.NewFetchCursor().Map(func(key []byte, value []byte) error {
		return fault.InvalidCursor
	})
	assert.Equal(t, fault.InvalidCursor, err, "map error not returned")
}

func TestOpenFile(t *testing.T) {
	setupTestLogger()
	defer teardownTestLogger()

	log := logger.New("storage")

	_, err := storage.Open(log, databaseFileName, storage.ReadOnly)
	assert.NotNil(t, err, "read only open of missing database")

	db, err := storage.Open(log, databaseFileName, storage.ReadWrite)
	assert.Nil(t, err, "create database")
	writeTestData(t, db)
	db.Close()

	db, err = storage.Open(log, databaseFileName, storage.ReadOnly)
	assert.Nil(t, err, "read only open")
	assert.Equal(t, []byte("data-two"), db.Pool.TestData.Get([]byte("key-two")), "data not persisted")
	db.Close()
}
