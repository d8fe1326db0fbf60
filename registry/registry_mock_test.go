// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package registry_test

import (
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/claimd/claim"
	"github.com/bitmark-inc/claimd/fault"
	"github.com/bitmark-inc/claimd/fingerprint"
	"github.com/bitmark-inc/claimd/registry"
	"github.com/bitmark-inc/claimd/registry/mocks"
	"github.com/bitmark-inc/logger"
)

func newMockRegistry(t *testing.T) (*gomock.Controller, *mocks.MockStore, *mocks.MockClock, *mocks.MockSink, *registry.Registry) {
	ctl := gomock.NewController(t)
	store := mocks.NewMockStore(ctl)
	clock := mocks.NewMockClock(ctl)
	sink := mocks.NewMockSink(ctl)
	r := registry.New(logger.New("registry"), store, clock, sink, registry.DefaultOptions())
	return ctl, store, clock, sink, r
}

func TestCreateCallsStore(t *testing.T) {
	setupTestLogger()
	defer teardownTestLogger()

	ctl, store, clock, sink, r := newMockRegistry(t)
	defer ctl.Finish()

	alice := makeAccount(t, aliceBase58)
	fp := fingerprint.Fingerprint("doc1")

	gomock.InOrder(
		store.EXPECT().Contains(fp).Return(false).Times(1),
		clock.EXPECT().Height().Return(uint64(7)).Times(1),
		store.EXPECT().Insert(claim.Claim{Fingerprint: fp, Owner: alice, RecordedAt: 7}).Return(nil).Times(1),
		sink.EXPECT().Emit(registry.Event{Kind: registry.Created, Requester: alice, Fingerprint: fp, Height: 7}).Times(1),
	)

	assert.Nil(t, r.Create(alice, fp), "create")
}

func TestCreateExistingNoMutation(t *testing.T) {
	setupTestLogger()
	defer teardownTestLogger()

	ctl, store, _, _, r := newMockRegistry(t)
	defer ctl.Finish()

	alice := makeAccount(t, aliceBase58)
	fp := fingerprint.Fingerprint("doc1")

	store.EXPECT().Contains(fp).Return(true).Times(1)

	assert.Equal(t, fault.ClaimAlreadyExists, r.Create(alice, fp), "create")
}

func TestCreateStoreError(t *testing.T) {
	setupTestLogger()
	defer teardownTestLogger()

	ctl, store, clock, _, r := newMockRegistry(t)
	defer ctl.Finish()

	alice := makeAccount(t, aliceBase58)
	fp := fingerprint.Fingerprint("doc1")

	store.EXPECT().Contains(fp).Return(false).Times(1)
	clock.EXPECT().Height().Return(uint64(3)).Times(1)
	store.EXPECT().Insert(gomock.Any()).Return(fault.TransactionAlreadyInUse).Times(1)

	assert.Equal(t, fault.TransactionAlreadyInUse, r.Create(alice, fp), "create")
}

func TestRevokeNotOwnerNoMutation(t *testing.T) {
	setupTestLogger()
	defer teardownTestLogger()

	ctl, store, _, _, r := newMockRegistry(t)
	defer ctl.Finish()

	alice := makeAccount(t, aliceBase58)
	bob := makeAccount(t, bobBase58)
	fp := fingerprint.Fingerprint("doc1")

	store.EXPECT().Get(fp).Return(claim.Claim{Fingerprint: fp, Owner: alice, RecordedAt: 1}, true).Times(2)
	store.EXPECT().Get(fingerprint.Fingerprint("doc2")).Return(claim.Claim{}, false).Times(1)

	assert.Equal(t, fault.NotClaimOwner, r.Revoke(bob, fp), "revoke")
	assert.Equal(t, fault.NotClaimOwner, r.Transfer(bob, fp, bob), "transfer")
	assert.Equal(t, fault.ClaimNotFound, r.Revoke(bob, fingerprint.Fingerprint("doc2")), "revoke absent")
}

func TestRevokeCallsStore(t *testing.T) {
	setupTestLogger()
	defer teardownTestLogger()

	ctl, store, clock, sink, r := newMockRegistry(t)
	defer ctl.Finish()

	alice := makeAccount(t, aliceBase58)
	fp := fingerprint.Fingerprint("doc1")

	gomock.InOrder(
		store.EXPECT().Get(fp).Return(claim.Claim{Fingerprint: fp, Owner: alice, RecordedAt: 1}, true).Times(1),
		store.EXPECT().Remove(fp).Return(nil).Times(1),
		clock.EXPECT().Height().Return(uint64(4)).Times(1),
		sink.EXPECT().Emit(registry.Event{Kind: registry.Revoked, Requester: alice, Fingerprint: fp, Height: 4}).Times(1),
	)

	assert.Nil(t, r.Revoke(alice, fp), "revoke")
}

func TestTransferCallsStore(t *testing.T) {
	setupTestLogger()
	defer teardownTestLogger()

	ctl, store, clock, sink, r := newMockRegistry(t)
	defer ctl.Finish()

	alice := makeAccount(t, aliceBase58)
	bob := makeAccount(t, bobBase58)
	fp := fingerprint.Fingerprint("doc1")

	var mutated claim.Claim
	gomock.InOrder(
		store.EXPECT().Get(fp).Return(claim.Claim{Fingerprint: fp, Owner: alice, RecordedAt: 2}, true).Times(1),
		clock.EXPECT().Height().Return(uint64(5)).Times(1),
		store.EXPECT().Mutate(fp, gomock.Any()).DoAndReturn(func(_ fingerprint.Fingerprint, f func(*claim.Claim)) error {
			mutated = claim.Claim{Fingerprint: fp, Owner: alice, RecordedAt: 2}
			f(&mutated)
			return nil
		}).Times(1),
		sink.EXPECT().Emit(registry.Event{Kind: registry.Transferred, Requester: alice, Fingerprint: fp, NewOwner: bob, Height: 5}).Times(1),
	)

	assert.Nil(t, r.Transfer(alice, fp, bob), "transfer")
	assert.True(t, bob.Equal(mutated.Owner), "wrong owner")
	assert.Equal(t, uint64(5), mutated.RecordedAt, "wrong recorded at")
	assert.Equal(t, "doc1", string(mutated.Fingerprint), "fingerprint changed")
}
