// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package ownership - durable claim records and the per-owner index
//
// from storage/doc.go:
//
//	Claims          fingerprint          - packed claim
//	OwnerNextCount  owner                - next count value to use for appending to owned items
//	OwnerList       owner ++ count       - list of owned fingerprints
//	OwnerIndex      owner ++ fingerprint - position in list of owned items, for delete after transfer
package ownership

import (
	"bytes"
	"encoding/binary"
	"sync"

	"github.com/bitmark-inc/claimd/account"
	"github.com/bitmark-inc/claimd/claim"
	"github.com/bitmark-inc/claimd/fault"
	"github.com/bitmark-inc/claimd/fingerprint"
	"github.com/bitmark-inc/claimd/storage"
	"github.com/bitmark-inc/logger"
)

const (
	uint64ByteSize = 8
)

// Pools - the storage pools holding claims and their owner index
type Pools struct {
	Claims         storage.Handle
	OwnerNextCount storage.Handle
	OwnerList      storage.Handle
	OwnerIndex     storage.Handle
}

// Store - claim records kept in storage pools
//
// every write is one storage transaction
type Store struct {
	sync.Mutex
	log   *logger.L
	pools Pools
	trx   storage.Transaction
}

// New - create a store over the given pools
func New(log *logger.L, pools Pools, trx storage.Transaction) *Store {
	return &Store{
		log:   log,
		pools: pools,
		trx:   trx,
	}
}

// NewFromDatabase - create a store over the claim pools of a database
func NewFromDatabase(log *logger.L, db *storage.Database) *Store {
	return New(log, Pools{
		Claims:         db.Pool.Claims,
		OwnerNextCount: db.Pool.OwnerNextCount,
		OwnerList:      db.Pool.OwnerList,
		OwnerIndex:     db.Pool.OwnerIndex,
	}, db.Transaction())
}

// Contains - true if a claim exists for the fingerprint
func (s *Store) Contains(fp fingerprint.Fingerprint) bool {
	return s.pools.Claims.Has(fp)
}

// Get - fetch the claim for a fingerprint
func (s *Store) Get(fp fingerprint.Fingerprint) (claim.Claim, bool) {
	packed := s.pools.Claims.Get(fp)
	if nil == packed {
		return claim.Claim{}, false
	}
	return s.unpack(fp, packed), true
}

// Insert - store a new claim
func (s *Store) Insert(c claim.Claim) error {
	s.Lock()
	defer s.Unlock()

	packed, err := c.Pack()
	if nil != err {
		return err
	}

	err = s.trx.Begin()
	if nil != err {
		return err
	}

	if s.trx.Has(s.pools.Claims, c.Fingerprint) {
		s.trx.Abort()
		return fault.ClaimAlreadyExists
	}

	s.trx.Put(s.pools.Claims, c.Fingerprint, packed)
	s.create(c.Fingerprint, c.Owner)

	return s.trx.Commit()
}

// Remove - delete a claim and its owner index entries
func (s *Store) Remove(fp fingerprint.Fingerprint) error {
	s.Lock()
	defer s.Unlock()

	err := s.trx.Begin()
	if nil != err {
		return err
	}

	packed := s.trx.Get(s.pools.Claims, fp)
	if nil == packed {
		s.trx.Abort()
		return fault.ClaimNotFound
	}
	current := s.unpack(fp, packed)

	s.delete(fp, current.Owner)
	s.trx.Delete(s.pools.Claims, fp)

	return s.trx.Commit()
}

// Mutate - update a claim in place
//
// the fingerprint cannot be changed, an owner change moves the
// claim between owner lists
func (s *Store) Mutate(fp fingerprint.Fingerprint, f func(*claim.Claim)) error {
	s.Lock()
	defer s.Unlock()

	err := s.trx.Begin()
	if nil != err {
		return err
	}

	packed := s.trx.Get(s.pools.Claims, fp)
	if nil == packed {
		s.trx.Abort()
		return fault.ClaimNotFound
	}
	current := s.unpack(fp, packed)
	previousOwner := current.Owner

	f(&current)
	current.Fingerprint = fp

	newPacked, err := current.Pack()
	if nil != err {
		s.trx.Abort()
		return err
	}

	if !previousOwner.Equal(current.Owner) {
		s.delete(fp, previousOwner)
		s.create(fp, current.Owner)
	}
	s.trx.Put(s.pools.Claims, fp, newPacked)

	return s.trx.Commit()
}

// ListFor - fetch a page of the claims held by an owner
//
// start is a position in the owner's list, the returned value is the
// start of the next page
func (s *Store) ListFor(owner *account.Account, start uint64, count int) ([]claim.Claim, uint64, error) {
	if nil == owner {
		return nil, start, fault.MissingIdentity
	}

	startBytes := make([]byte, uint64ByteSize)
	binary.BigEndian.PutUint64(startBytes, start)

	ownerBytes := owner.Bytes()
	prefix := append(ownerBytes, startBytes...)

	cursor := s.pools.OwnerList.NewFetchCursor().Seek(prefix)

	// owner ++ count → fingerprint
	items, err := cursor.Fetch(count)
	if nil != err {
		return nil, start, err
	}

	records := make([]claim.Claim, 0, len(items))
	next := start

loop:
	for _, item := range items {
		n := len(item.Key)
		split := n - uint64ByteSize
		if split <= 0 {
			logger.Panicf("ownership: split cannot be <= 0: %d", split)
		}
		if !bytes.Equal(ownerBytes, item.Key[:split]) {
			break loop
		}

		fp := fingerprint.Fingerprint(item.Value)
		c, found := s.Get(fp)
		if !found {
			s.log.Criticalf("owner list: %x  refers to missing claim: %x", item.Key, fp)
			logger.Panic("ownership: OwnerList database corrupt")
		}

		records = append(records, c)
		next = binary.BigEndian.Uint64(item.Key[split:]) + 1
	}

	return records, next, nil
}

// add an item to the owner's list
// must be called inside a transaction
func (s *Store) create(fp fingerprint.Fingerprint, owner *account.Account) {
	nKey := owner.Bytes()
	count, _ := s.trx.GetN(s.pools.OwnerNextCount, nKey)
	s.trx.PutN(s.pools.OwnerNextCount, nKey, count+1)

	countBytes := make([]byte, uint64ByteSize)
	binary.BigEndian.PutUint64(countBytes, count)

	// owner list entry
	oKey := append(owner.Bytes(), countBytes...)
	s.trx.Put(s.pools.OwnerList, oKey, fp)

	// index back to the list entry
	dKey := append(owner.Bytes(), fp...)
	s.trx.Put(s.pools.OwnerIndex, dKey, countBytes)
}

// remove an item from the owner's list
// must be called inside a transaction
func (s *Store) delete(fp fingerprint.Fingerprint, owner *account.Account) {
	dKey := append(owner.Bytes(), fp...)
	dCount := s.trx.Get(s.pools.OwnerIndex, dKey)
	if uint64ByteSize != len(dCount) {
		s.log.Criticalf("delete: dKey: %x", dKey)
		s.log.Criticalf("delete: owner: %s  fingerprint: %x", owner, fp)
		logger.Panic("ownership: OwnerIndex database corrupt")
	}

	oKey := append(owner.Bytes(), dCount...)
	s.trx.Delete(s.pools.OwnerList, oKey)
	s.trx.Delete(s.pools.OwnerIndex, dKey)
}

// stored records are written by Pack so any failure is corruption
func (s *Store) unpack(fp fingerprint.Fingerprint, packed []byte) claim.Claim {
	c, err := claim.Packed(packed).Unpack(fp)
	if nil != err {
		s.log.Criticalf("claim: %x  record: %x  error: %s", fp, packed, err)
		logger.Panicf("ownership: Claims database corrupt: %s", err)
	}
	return c
}
