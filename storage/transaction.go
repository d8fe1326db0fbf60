// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"sync"

	"github.com/bitmark-inc/claimd/fault"
)

// Transaction - a set of writes that are committed atomically
//
// reads through a transaction see its own pending writes
type Transaction interface {
	Abort()
	Begin() error
	Commit() error
	Delete(Handle, []byte)
	Get(Handle, []byte) []byte
	GetN(Handle, []byte) (uint64, bool)
	Has(Handle, []byte) bool
	InUse() bool
	Put(Handle, []byte, []byte)
	PutN(Handle, []byte, uint64)
}

// TransactionData - the transaction over one database access
type TransactionData struct {
	sync.Mutex
	inUse  bool
	access Access
}

func newTransaction(access Access) Transaction {
	return &TransactionData{
		inUse:  false,
		access: access,
	}
}

// Begin - start a transaction, only one may be active at a time
func (t *TransactionData) Begin() error {
	t.Lock()
	defer t.Unlock()

	if t.inUse {
		return fault.TransactionAlreadyInUse
	}

	err := t.access.Begin()
	if nil != err {
		return err
	}

	t.inUse = true
	return nil
}

// InUse - true between Begin and Commit or Abort
func (t *TransactionData) InUse() bool {
	t.Lock()
	defer t.Unlock()
	return t.inUse
}

func (t *TransactionData) Put(handle Handle, key []byte, value []byte) {
	handle.put(key, value)
}

func (t *TransactionData) PutN(handle Handle, key []byte, value uint64) {
	handle.putN(key, value)
}

func (t *TransactionData) Delete(handle Handle, key []byte) {
	handle.remove(key)
}

func (t *TransactionData) Get(handle Handle, key []byte) []byte {
	return handle.Get(key)
}

func (t *TransactionData) GetN(handle Handle, key []byte) (uint64, bool) {
	return handle.GetN(key)
}

func (t *TransactionData) Has(handle Handle, key []byte) bool {
	return handle.Has(key)
}

// Commit - write the batch to the database and end the transaction
//
// on error nothing was written and the transaction is aborted
func (t *TransactionData) Commit() error {
	t.Lock()
	defer t.Unlock()

	if !t.inUse {
		return fault.TransactionNotInUse
	}

	err := t.access.Commit()
	t.access.Abort()
	t.inUse = false

	return err
}

// Abort - discard the batch and end the transaction
func (t *TransactionData) Abort() {
	t.Lock()
	defer t.Unlock()

	t.access.Abort()
	t.inUse = false
}
