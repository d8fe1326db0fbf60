// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package registry

import (
	"sync"

	"github.com/bitmark-inc/claimd/account"
	"github.com/bitmark-inc/claimd/claim"
	"github.com/bitmark-inc/claimd/fault"
	"github.com/bitmark-inc/claimd/fingerprint"
	"github.com/bitmark-inc/logger"
)

// MaximumListCount - largest page returned by ListFor
const MaximumListCount = 100

// Options - registry behaviour
type Options struct {
	// a transfer to the current owner refreshes the recorded height,
	// when false it fails with fault.SelfTransfer
	AllowSelfTransfer bool
}

// DefaultOptions - the options used unless configured
func DefaultOptions() Options {
	return Options{
		AllowSelfTransfer: true,
	}
}

// Registry - the claim registry
type Registry struct {
	sync.Mutex

	log     *logger.L
	store   Store
	clock   Clock
	sink    Sink
	options Options
}

// New - create a registry over its collaborators
func New(log *logger.L, store Store, clock Clock, sink Sink, options Options) *Registry {
	return &Registry{
		log:     log,
		store:   store,
		clock:   clock,
		sink:    sink,
		options: options,
	}
}

// Create - claim an unclaimed fingerprint for the requester
func (r *Registry) Create(requester *account.Account, fp fingerprint.Fingerprint) error {
	if nil == requester {
		return fault.MissingIdentity
	}
	err := fp.Validate()
	if nil != err {
		return err
	}

	r.Lock()
	defer r.Unlock()

	if r.store.Contains(fp) {
		r.log.Debugf("create: %x  already claimed", fp)
		return fault.ClaimAlreadyExists
	}

	height := r.clock.Height()
	c := claim.Claim{
		Fingerprint: fingerprint.New(fp),
		Owner:       requester,
		RecordedAt:  height,
	}

	err = r.store.Insert(c)
	if nil != err {
		r.log.Errorf("create: %x  insert error: %s", fp, err)
		return err
	}

	r.log.Infof("created: %x  owner: %s  height: %d", fp, requester, height)

	r.sink.Emit(Event{
		Kind:        Created,
		Requester:   requester,
		Fingerprint: c.Fingerprint,
		Height:      height,
	})
	return nil
}

// Revoke - the owner deletes its claim
func (r *Registry) Revoke(requester *account.Account, fp fingerprint.Fingerprint) error {
	if nil == requester {
		return fault.MissingIdentity
	}
	err := fp.Validate()
	if nil != err {
		return err
	}

	r.Lock()
	defer r.Unlock()

	c, err := r.ownedBy(requester, fp)
	if nil != err {
		return err
	}

	err = r.store.Remove(fp)
	if nil != err {
		r.log.Errorf("revoke: %x  remove error: %s", fp, err)
		return err
	}

	height := r.clock.Height()
	r.log.Infof("revoked: %x  owner: %s  height: %d", fp, requester, height)

	r.sink.Emit(Event{
		Kind:        Revoked,
		Requester:   requester,
		Fingerprint: c.Fingerprint,
		Height:      height,
	})
	return nil
}

// Transfer - the owner hands its claim to a new owner
func (r *Registry) Transfer(requester *account.Account, fp fingerprint.Fingerprint, newOwner *account.Account) error {
	if nil == requester || nil == newOwner {
		return fault.MissingIdentity
	}
	err := fp.Validate()
	if nil != err {
		return err
	}

	r.Lock()
	defer r.Unlock()

	c, err := r.ownedBy(requester, fp)
	if nil != err {
		return err
	}

	if !r.options.AllowSelfTransfer && newOwner.Equal(requester) {
		r.log.Debugf("transfer: %x  to current owner rejected", fp)
		return fault.SelfTransfer
	}

	height := r.clock.Height()
	if height < c.RecordedAt {
		r.log.Warnf("transfer: %x  clock: %d  behind recorded: %d", fp, height, c.RecordedAt)
		height = c.RecordedAt
	}

	err = r.store.Mutate(fp, func(c *claim.Claim) {
		c.Owner = newOwner
		c.RecordedAt = height
	})
	if nil != err {
		r.log.Errorf("transfer: %x  mutate error: %s", fp, err)
		return err
	}

	r.log.Infof("transferred: %x  from: %s  to: %s  height: %d", fp, requester, newOwner, height)

	r.sink.Emit(Event{
		Kind:        Transferred,
		Requester:   requester,
		Fingerprint: c.Fingerprint,
		NewOwner:    newOwner,
		Height:      height,
	})
	return nil
}

// Get - copy of the current claim
func (r *Registry) Get(fp fingerprint.Fingerprint) (claim.Claim, bool) {
	r.Lock()
	defer r.Unlock()

	c, found := r.store.Get(fp)
	if !found {
		return claim.Claim{}, false
	}
	return c.Copy(), true
}

// ListFor - a page of the claims held by an owner
//
// returns the start of the next page
func (r *Registry) ListFor(owner *account.Account, start uint64, count int) ([]claim.Claim, uint64, error) {
	if nil == owner {
		return nil, start, fault.MissingIdentity
	}
	if count <= 0 || count > MaximumListCount {
		return nil, start, fault.InvalidCount
	}

	r.Lock()
	defer r.Unlock()

	claims, next, err := r.store.ListFor(owner, start, count)
	if nil != err {
		return nil, start, err
	}

	result := make([]claim.Claim, 0, len(claims))
	for _, c := range claims {
		result = append(result, c.Copy())
	}
	return result, next, nil
}

// fetch a claim and check its owner
// must hold lock
func (r *Registry) ownedBy(requester *account.Account, fp fingerprint.Fingerprint) (claim.Claim, error) {
	c, found := r.store.Get(fp)
	if !found {
		return claim.Claim{}, fault.ClaimNotFound
	}
	if !requester.Equal(c.Owner) {
		return claim.Claim{}, fault.NotClaimOwner
	}
	return c, nil
}
