// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package request

import (
	"encoding/binary"
	"sync"

	"github.com/bitmark-inc/claimd/fault"
	"github.com/bitmark-inc/claimd/storage"
	"github.com/bitmark-inc/logger"
)

const (
	uint64ByteSize = 8
)

// Journal - the requests already submitted, keyed by requester and nonce
type Journal struct {
	sync.Mutex
	log  *logger.L
	pool storage.Handle
	trx  storage.Transaction
}

// NewJournal - create a journal over a storage pool
func NewJournal(log *logger.L, pool storage.Handle, trx storage.Transaction) *Journal {
	return &Journal{
		log:  log,
		pool: pool,
		trx:  trx,
	}
}

// Contains - true if the request was already recorded
func (j *Journal) Contains(r *Request) bool {
	if nil == r || nil == r.Requester {
		return false
	}
	return j.pool.Has(journalKey(r))
}

// Height - the block a request was recorded in
func (j *Journal) Height(r *Request) (uint64, bool) {
	if nil == r || nil == r.Requester {
		return 0, false
	}
	return j.pool.GetN(journalKey(r))
}

// Record - consume the request's nonce at the given height
//
// a second record of the same requester and nonce is
// fault.RequestAlreadyApplied
func (j *Journal) Record(r *Request, height uint64) error {
	if nil == r || nil == r.Requester {
		return fault.MissingIdentity
	}

	j.Lock()
	defer j.Unlock()

	key := journalKey(r)

	err := j.trx.Begin()
	if nil != err {
		return err
	}

	if j.trx.Has(j.pool, key) {
		j.trx.Abort()
		j.log.Warnf("replay: %s  nonce: %d", r.Requester, r.Nonce)
		return fault.RequestAlreadyApplied
	}

	j.trx.PutN(j.pool, key, height)
	return j.trx.Commit()
}

// requester ++ nonce
func journalKey(r *Request) []byte {
	owner := r.Requester.Bytes()
	key := make([]byte, len(owner)+uint64ByteSize)
	copy(key, owner)
	binary.BigEndian.PutUint64(key[len(owner):], r.Nonce)
	return key
}
