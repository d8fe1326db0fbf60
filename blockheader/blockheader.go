// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package blockheader - the current block height
//
// the height is the logical timestamp recorded in claims and is kept
// in storage so it never decreases across restarts
package blockheader

import (
	"sync"

	"github.com/bitmark-inc/claimd/storage"
	"github.com/bitmark-inc/logger"
)

// GenesisHeight - the height of an empty database
const GenesisHeight = 1

// key of the height record in its pool
var heightKey = []byte("height")

// Header - current block height
type Header struct {
	sync.RWMutex

	log    *logger.L
	pool   storage.Handle
	trx    storage.Transaction
	height uint64
}

// New - load the height from storage, genesis if none was saved
func New(log *logger.L, pool storage.Handle, trx storage.Transaction) *Header {
	height, found := pool.GetN(heightKey)
	if !found {
		height = GenesisHeight
	}

	log.Infof("block height: %d", height)

	return &Header{
		log:    log,
		pool:   pool,
		trx:    trx,
		height: height,
	}
}

// Height - return current height
func (h *Header) Height() uint64 {
	h.RLock()
	defer h.RUnlock()

	return h.height
}

// Advance - start a new block, returns the new height
//
// the height is only changed in memory once it is stored
func (h *Header) Advance() (uint64, error) {
	h.Lock()
	defer h.Unlock()

	next := h.height + 1

	err := h.trx.Begin()
	if nil != err {
		return h.height, err
	}
	h.trx.PutN(h.pool, heightKey, next)
	err = h.trx.Commit()
	if nil != err {
		h.log.Errorf("store height: %d  error: %s", next, err)
		return h.height, err
	}

	h.height = next
	h.log.Debugf("block height: %d", next)
	return next, nil
}
