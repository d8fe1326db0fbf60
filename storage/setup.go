// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/binary"
	"fmt"
	"reflect"

	"github.com/syndtr/goleveldb/leveldb"
	ldb_opt "github.com/syndtr/goleveldb/leveldb/opt"
	ldb_storage "github.com/syndtr/goleveldb/leveldb/storage"

	"github.com/bitmark-inc/claimd/fault"
	"github.com/bitmark-inc/logger"
)

// Pools - the storage pools
//
// note all must be exported (i.e. initial capital) or initialisation will panic
type Pools struct {
	Claims         Handle `prefix:"C"`
	OwnerNextCount Handle `prefix:"N"`
	OwnerList      Handle `prefix:"L"`
	OwnerIndex     Handle `prefix:"D"`
	Height         Handle `prefix:"H"`
	Requests       Handle `prefix:"R"`
	TestData       Handle `prefix:"Z"`
}

// for database version
var versionKey = []byte{0x00, 'V', 'E', 'R', 'S', 'I', 'O', 'N'}

const (
	currentDBVersion = 0x100
)

// pool access modes
const (
	ReadOnly  = true
	ReadWrite = false
)

// Database - an open leveldb database and its pools
type Database struct {
	log  *logger.L
	db   *leveldb.DB
	trx  Transaction
	Pool Pools
}

// Open - open up the database
//
// a read only open requires an existing database of the current version
func Open(log *logger.L, database string, readOnly bool) (*Database, error) {
	opt := &ldb_opt.Options{
		ErrorIfExist:   false,
		ErrorIfMissing: readOnly,
		ReadOnly:       readOnly,
	}

	db, err := leveldb.OpenFile(database, opt)
	if nil != err {
		return nil, err
	}

	d, err := setup(log, db, readOnly)
	if nil != err {
		db.Close()
		return nil, err
	}

	log.Infof("opened: %q  read only: %t", database, readOnly)
	return d, nil
}

// OpenMemory - open a volatile in-memory database
func OpenMemory(log *logger.L) (*Database, error) {
	db, err := leveldb.Open(ldb_storage.NewMemStorage(), nil)
	if nil != err {
		return nil, err
	}

	d, err := setup(log, db, ReadWrite)
	if nil != err {
		db.Close()
		return nil, err
	}
	return d, nil
}

func setup(log *logger.L, db *leveldb.DB, readOnly bool) (*Database, error) {

	version, err := getVersion(db)
	if nil != err {
		return nil, err
	}

	// ensure no database downgrade
	if version > currentDBVersion {
		log.Criticalf("database version: %d > current version: %d", version, currentDBVersion)
		return nil, fault.DatabaseVersionTooNew
	}

	// prevent readOnly from modifying the database
	if readOnly && version != currentDBVersion {
		log.Criticalf("database is inconsistent: version: %d  current: %d", version, currentDBVersion)
		return nil, fault.DatabaseIsInconsistent
	}

	if 0 == version {
		// database was empty so tag as current version
		err = putVersion(db, currentDBVersion)
		if nil != err {
			return nil, err
		}
	} else if version < currentDBVersion {
		log.Criticalf("database version: %d < current version: %d", version, currentDBVersion)
		return nil, fault.IncompatibleDatabase
	}

	access := newDA(db, new(leveldb.Batch), newCache())

	d := &Database{
		log: log,
		db:  db,
		trx: newTransaction(access),
	}

	err = initialisePools(&d.Pool, access)
	if nil != err {
		return nil, err
	}
	return d, nil
}

// fill in each pool from the prefix tags of the pools structure
func initialisePools(pools interface{}, access Access) error {

	poolValue := reflect.ValueOf(pools)
	if reflect.Ptr != poolValue.Kind() || poolValue.IsNil() {
		return fault.InvalidStructPointer
	}

	// get write access by using pointer + Elem()
	poolValue = poolValue.Elem()
	if reflect.Struct != poolValue.Kind() {
		return fault.InvalidStructPointer
	}
	poolType := poolValue.Type()

	// scan each field
	for i := 0; i < poolType.NumField(); i += 1 {

		fieldInfo := poolType.Field(i)

		prefixTag := fieldInfo.Tag.Get("prefix")
		if 1 != len(prefixTag) {
			return fmt.Errorf("pool: %v has invalid prefix: %q", fieldInfo, prefixTag)
		}

		prefix := prefixTag[0]
		limit := []byte(nil)
		if prefix < 255 {
			limit = []byte{prefix + 1}
		}

		p := &PoolHandle{
			prefix:     prefix,
			limit:      limit,
			dataAccess: access,
		}
		poolValue.Field(i).Set(reflect.ValueOf(p))
	}
	return nil
}

// Transaction - the single write transaction of this database
func (d *Database) Transaction() Transaction {
	return d.trx
}

// Close - close the database
func (d *Database) Close() {
	if nil == d.db {
		return
	}
	if d.trx.InUse() {
		d.log.Warn("closing with a transaction in progress")
		d.trx.Abort()
	}
	d.db.Close()
	d.db = nil
	d.log.Info("closed")
}

// return the version number, zero for an empty database
func getVersion(db *leveldb.DB) (int, error) {
	versionValue, err := db.Get(versionKey, nil)
	if leveldb.ErrNotFound == err {
		return 0, nil
	} else if nil != err {
		return 0, err
	}

	if 4 != len(versionValue) {
		return 0, fault.IncompatibleDatabase
	}

	version := int(binary.BigEndian.Uint32(versionValue))
	return version, nil
}

func putVersion(db *leveldb.DB, version int) error {
	currentVersion := make([]byte, 4)
	binary.BigEndian.PutUint32(currentVersion, uint32(version))

	return db.Put(versionKey, currentVersion, nil)
}
