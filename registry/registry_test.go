// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package registry_test

import (
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/claimd/account"
	"github.com/bitmark-inc/claimd/blockheader"
	"github.com/bitmark-inc/claimd/claim"
	"github.com/bitmark-inc/claimd/fault"
	"github.com/bitmark-inc/claimd/fingerprint"
	"github.com/bitmark-inc/claimd/ownership"
	"github.com/bitmark-inc/claimd/registry"
	"github.com/bitmark-inc/claimd/storage"
	"github.com/bitmark-inc/logger"
)

const (
	testingDirName = "testing"
)

var (
	aliceBase58 = "eopaSeB7uiSVMdAmTrijq3W2MCWA5KHZrZvm5QLFGRVd3oWNe2"
	bobBase58   = "fUjtNvmUJn7yJ7PVP7NT2FZbKDrudFxLVBHkwLJFgKWmGsPNVi"
	carolBase58 = "fGcv38F4ucFwvwnepNYYDQt3eDjRaoVtLCdofMYGUENboXVQzx"
)

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

	_ = logger.Initialise(logging)
}

func removeFiles() {
	os.RemoveAll(testingDirName)
}

func teardownTestLogger() {
	logger.Finalise()
	removeFiles()
}

// collects emitted events
type testSink struct {
	events []registry.Event
}

func (s *testSink) Emit(e registry.Event) {
	s.events = append(s.events, e)
}

type fixture struct {
	db       *storage.Database
	store    *ownership.Store
	header   *blockheader.Header
	sink     *testSink
	registry *registry.Registry
}

func setup(t *testing.T, options registry.Options) *fixture {
	setupTestLogger()

	db, err := storage.OpenMemory(logger.New("storage"))
	if nil != err {
		t.Fatalf("open memory database error: %s", err)
	}

	f := &fixture{
		db:     db,
		store:  ownership.NewFromDatabase(logger.New("ownership"), db),
		header: blockheader.New(logger.New("blockheader"), db.Pool.Height, db.Transaction()),
		sink:   &testSink{},
	}
	f.registry = registry.New(logger.New("registry"), f.store, f.header, f.sink, options)
	return f
}

func (f *fixture) teardown() {
	f.db.Close()
	teardownTestLogger()
}

func (f *fixture) advance(t *testing.T) uint64 {
	height, err := f.header.Advance()
	if nil != err {
		t.Fatalf("advance error: %s", err)
	}
	return height
}

// snapshot of every claim held by the given owners
func (f *fixture) snapshot(t *testing.T, owners ...*account.Account) []string {
	result := []string{}
	for _, owner := range owners {
		claims, _, err := f.registry.ListFor(owner, 0, registry.MaximumListCount)
		if nil != err {
			t.Fatalf("list error: %s", err)
		}
		for _, c := range claims {
			result = append(result, fmt.Sprintf("%s:%s:%d", c.Fingerprint, c.Owner, c.RecordedAt))
		}
	}
	return result
}

func makeAccount(t *testing.T, s string) *account.Account {
	a, err := account.AccountFromBase58(s)
	if nil != err {
		t.Fatalf("account: %q  error: %s", s, err)
	}
	return a
}

func TestLifecycle(t *testing.T) {
	f := setup(t, registry.DefaultOptions())
	defer f.teardown()

	alice := makeAccount(t, aliceBase58)
	bob := makeAccount(t, bobBase58)
	carol := makeAccount(t, carolBase58)
	doc1 := fingerprint.Fingerprint("doc1")

	t0 := f.header.Height()
	err := f.registry.Create(alice, doc1)
	assert.Nil(t, err, "alice create")

	c, found := f.registry.Get(doc1)
	assert.True(t, found, "doc1 missing")
	assert.True(t, alice.Equal(c.Owner), "wrong owner")
	assert.Equal(t, t0, c.RecordedAt, "wrong recorded at")

	err = f.registry.Revoke(bob, doc1)
	assert.Equal(t, fault.NotClaimOwner, err, "bob revoke")

	f.advance(t)
	err = f.registry.Transfer(alice, doc1, carol)
	assert.Nil(t, err, "alice transfer to carol")

	c, found = f.registry.Get(doc1)
	assert.True(t, found, "doc1 missing")
	assert.True(t, carol.Equal(c.Owner), "wrong owner")
	assert.True(t, c.RecordedAt >= t0, "recorded at decreased")
	assert.Equal(t, t0+1, c.RecordedAt, "wrong recorded at")

	err = f.registry.Revoke(alice, doc1)
	assert.Equal(t, fault.NotClaimOwner, err, "alice revoke after transfer")

	err = f.registry.Revoke(carol, doc1)
	assert.Nil(t, err, "carol revoke")

	_, found = f.registry.Get(doc1)
	assert.False(t, found, "doc1 still present")

	kinds := []registry.Kind{}
	for _, e := range f.sink.events {
		kinds = append(kinds, e.Kind)
	}
	assert.Equal(t, []registry.Kind{registry.Created, registry.Transferred, registry.Revoked}, kinds, "wrong events")
	assert.True(t, carol.Equal(f.sink.events[1].NewOwner), "wrong transfer event owner")
	assert.True(t, alice.Equal(f.sink.events[1].Requester), "wrong transfer event requester")
	assert.True(t, carol.Equal(f.sink.events[2].Requester), "wrong revoke event requester")
}

func TestUniqueness(t *testing.T) {
	f := setup(t, registry.DefaultOptions())
	defer f.teardown()

	alice := makeAccount(t, aliceBase58)
	bob := makeAccount(t, bobBase58)
	fp := fingerprint.Fingerprint("doc1")

	err := f.registry.Create(alice, fp)
	assert.Nil(t, err, "first create")

	for _, r := range []*account.Account{alice, bob} {
		err = f.registry.Create(r, fp)
		assert.Equal(t, fault.ClaimAlreadyExists, err, "second create")
	}
	assert.Equal(t, 1, len(f.sink.events), "failed create emitted")

	err = f.registry.Revoke(alice, fp)
	assert.Nil(t, err, "revoke")

	err = f.registry.Create(bob, fp)
	assert.Nil(t, err, "create after revoke")
	c, _ := f.registry.Get(fp)
	assert.True(t, bob.Equal(c.Owner), "wrong owner")
}

func TestNotFoundBeforeNotOwner(t *testing.T) {
	f := setup(t, registry.DefaultOptions())
	defer f.teardown()

	alice := makeAccount(t, aliceBase58)
	bob := makeAccount(t, bobBase58)
	fp := fingerprint.Fingerprint("absent")

	for _, r := range []*account.Account{alice, bob} {
		assert.Equal(t, fault.ClaimNotFound, f.registry.Revoke(r, fp), "revoke absent")
		assert.Equal(t, fault.ClaimNotFound, f.registry.Transfer(r, fp, alice), "transfer absent")
	}
	assert.Equal(t, 0, len(f.sink.events), "failure emitted")
}

func TestRevokeTwice(t *testing.T) {
	f := setup(t, registry.DefaultOptions())
	defer f.teardown()

	alice := makeAccount(t, aliceBase58)
	fp := fingerprint.Fingerprint("doc1")

	assert.Nil(t, f.registry.Create(alice, fp), "create")
	assert.Nil(t, f.registry.Revoke(alice, fp), "first revoke")
	assert.Equal(t, fault.ClaimNotFound, f.registry.Revoke(alice, fp), "second revoke")
}

func TestTransferMovesOwnership(t *testing.T) {
	f := setup(t, registry.DefaultOptions())
	defer f.teardown()

	alice := makeAccount(t, aliceBase58)
	bob := makeAccount(t, bobBase58)
	fp := fingerprint.Fingerprint("doc1")

	assert.Nil(t, f.registry.Create(alice, fp), "create")
	assert.Nil(t, f.registry.Transfer(alice, fp, bob), "transfer to bob")

	c, found := f.registry.Get(fp)
	assert.True(t, found, "claim missing")
	assert.Equal(t, fp, c.Fingerprint, "fingerprint changed")
	assert.True(t, bob.Equal(c.Owner), "wrong owner")

	assert.Equal(t, fault.NotClaimOwner, f.registry.Transfer(alice, fp, alice), "previous owner transfer")
	assert.Nil(t, f.registry.Transfer(bob, fp, alice), "transfer back")

	c, _ = f.registry.Get(fp)
	assert.True(t, alice.Equal(c.Owner), "wrong owner after transfer back")

	bobList, _, err := f.registry.ListFor(bob, 0, 10)
	assert.Nil(t, err, "list")
	assert.Equal(t, 0, len(bobList), "claim copied not moved")
}

func TestSelfTransfer(t *testing.T) {
	f := setup(t, registry.DefaultOptions())
	defer f.teardown()

	alice := makeAccount(t, aliceBase58)
	fp := fingerprint.Fingerprint("doc1")

	assert.Nil(t, f.registry.Create(alice, fp), "create")
	height := f.advance(t)
	assert.Nil(t, f.registry.Transfer(alice, fp, alice), "self transfer")

	c, _ := f.registry.Get(fp)
	assert.True(t, alice.Equal(c.Owner), "wrong owner")
	assert.Equal(t, height, c.RecordedAt, "recorded at not refreshed")
	assert.Equal(t, 2, len(f.sink.events), "self transfer not emitted")
	assert.Equal(t, registry.Transferred, f.sink.events[1].Kind, "wrong event")
}

func TestSelfTransferRejected(t *testing.T) {
	f := setup(t, registry.Options{AllowSelfTransfer: false})
	defer f.teardown()

	alice := makeAccount(t, aliceBase58)
	bob := makeAccount(t, bobBase58)
	fp := fingerprint.Fingerprint("doc1")

	assert.Nil(t, f.registry.Create(alice, fp), "create")
	before := f.snapshot(t, alice, bob)
	f.advance(t)

	assert.Equal(t, fault.SelfTransfer, f.registry.Transfer(alice, fp, alice), "self transfer")
	assert.Equal(t, before, f.snapshot(t, alice, bob), "state changed")

	// ownership is checked first
	assert.Equal(t, fault.NotClaimOwner, f.registry.Transfer(bob, fp, bob), "non owner self transfer")
	assert.Equal(t, 1, len(f.sink.events), "failure emitted")
}

func TestNoMutationOnFailure(t *testing.T) {
	f := setup(t, registry.DefaultOptions())
	defer f.teardown()

	alice := makeAccount(t, aliceBase58)
	bob := makeAccount(t, bobBase58)
	carol := makeAccount(t, carolBase58)
	doc1 := fingerprint.Fingerprint("doc1")
	doc2 := fingerprint.Fingerprint("doc2")

	assert.Nil(t, f.registry.Create(alice, doc1), "create doc1")
	assert.Nil(t, f.registry.Create(bob, doc2), "create doc2")
	f.advance(t)

	before := f.snapshot(t, alice, bob, carol)
	emitted := len(f.sink.events)

	failures := []struct {
		name string
		call func() error
		err  error
	}{
		{"duplicate create", func() error { return f.registry.Create(carol, doc1) }, fault.ClaimAlreadyExists},
		{"revoke absent", func() error { return f.registry.Revoke(carol, fingerprint.Fingerprint("doc3")) }, fault.ClaimNotFound},
		{"revoke not owner", func() error { return f.registry.Revoke(carol, doc1) }, fault.NotClaimOwner},
		{"transfer absent", func() error { return f.registry.Transfer(alice, fingerprint.Fingerprint("doc3"), bob) }, fault.ClaimNotFound},
		{"transfer not owner", func() error { return f.registry.Transfer(alice, doc2, carol) }, fault.NotClaimOwner},
		{"create empty fingerprint", func() error { return f.registry.Create(alice, fingerprint.Fingerprint{}) }, fault.InvalidFingerprint},
		{"create nil requester", func() error { return f.registry.Create(nil, doc1) }, fault.MissingIdentity},
		{"transfer nil new owner", func() error { return f.registry.Transfer(alice, doc1, nil) }, fault.MissingIdentity},
	}

	for _, item := range failures {
		err := item.call()
		assert.Equal(t, item.err, err, item.name)
		assert.Equal(t, before, f.snapshot(t, alice, bob, carol), item.name)
	}
	assert.Equal(t, emitted, len(f.sink.events), "failure emitted")
}

func TestRecordedAtNonDecreasing(t *testing.T) {
	f := setup(t, registry.DefaultOptions())
	defer f.teardown()

	alice := makeAccount(t, aliceBase58)
	bob := makeAccount(t, bobBase58)
	fp := fingerprint.Fingerprint("doc1")

	assert.Nil(t, f.registry.Create(alice, fp), "create")
	previous, _ := f.registry.Get(fp)

	owners := []*account.Account{alice, bob}
	for i := 0; i < 6; i += 1 {
		if 0 == i%2 {
			f.advance(t)
		}
		from := owners[i%2]
		to := owners[(i+1)%2]
		assert.Nil(t, f.registry.Transfer(from, fp, to), "transfer")

		c, _ := f.registry.Get(fp)
		assert.True(t, c.RecordedAt >= previous.RecordedAt, "recorded at decreased")
		previous = c
	}
}

func TestGetReturnsCopy(t *testing.T) {
	f := setup(t, registry.DefaultOptions())
	defer f.teardown()

	alice := makeAccount(t, aliceBase58)
	fp := fingerprint.Fingerprint("doc1")
	assert.Nil(t, f.registry.Create(alice, fp), "create")

	c, _ := f.registry.Get(fp)
	c.Fingerprint[0] = 'x'
	c.RecordedAt = 99

	again, found := f.registry.Get(fp)
	assert.True(t, found, "claim missing")
	assert.Equal(t, "doc1", string(again.Fingerprint), "stored fingerprint modified")
	assert.NotEqual(t, uint64(99), again.RecordedAt, "stored claim modified")
}

func TestListFor(t *testing.T) {
	f := setup(t, registry.DefaultOptions())
	defer f.teardown()

	alice := makeAccount(t, aliceBase58)

	for i := 0; i < 3; i += 1 {
		fp := fingerprint.Fingerprint(fmt.Sprintf("doc%d", i))
		assert.Nil(t, f.registry.Create(alice, fp), "create")
	}

	claims, next, err := f.registry.ListFor(alice, 0, 2)
	assert.Nil(t, err, "list")
	assert.Equal(t, 2, len(claims), "wrong page size")

	claims, _, err = f.registry.ListFor(alice, next, 2)
	assert.Nil(t, err, "list")
	assert.Equal(t, 1, len(claims), "wrong page size")
	assert.Equal(t, "doc2", string(claims[0].Fingerprint), "wrong claim")

	_, _, err = f.registry.ListFor(alice, 0, 0)
	assert.Equal(t, fault.InvalidCount, err, "zero count")
	_, _, err = f.registry.ListFor(alice, 0, registry.MaximumListCount+1)
	assert.Equal(t, fault.InvalidCount, err, "large count")
	_, _, err = f.registry.ListFor(nil, 0, 1)
	assert.Equal(t, fault.MissingIdentity, err, "nil owner")
}

func TestTransferClampsHeight(t *testing.T) {
	setupTestLogger()
	defer teardownTestLogger()

	alice := makeAccount(t, aliceBase58)
	bob := makeAccount(t, bobBase58)
	fp := fingerprint.Fingerprint("doc1")

	db, err := storage.OpenMemory(logger.New("storage"))
	if nil != err {
		t.Fatalf("open memory database error: %s", err)
	}
	defer db.Close()

	store := ownership.NewFromDatabase(logger.New("ownership"), db)
	err = store.Insert(claim.Claim{Fingerprint: fp, Owner: alice, RecordedAt: 50})
	assert.Nil(t, err, "insert")

	clock := blockheader.New(logger.New("blockheader"), db.Pool.Height, db.Transaction())
	r := registry.New(logger.New("registry"), store, clock, &testSink{}, registry.DefaultOptions())

	assert.Nil(t, r.Transfer(alice, fp, bob), "transfer")
	c, _ := r.Get(fp)
	assert.Equal(t, uint64(50), c.RecordedAt, "recorded at went backwards")
}

// concurrent revokes and transfers of one claim: exactly one succeeds
func TestConcurrentRevokeAndTransfer(t *testing.T) {
	f := setup(t, registry.DefaultOptions())
	defer f.teardown()

	alice := makeAccount(t, aliceBase58)
	bob := makeAccount(t, bobBase58)

	const (
		rounds  = 50
		callers = 8
	)

	for round := 0; round < rounds; round += 1 {
		fp := fingerprint.Fingerprint(fmt.Sprintf("doc-%d", round))
		err := f.registry.Create(alice, fp)
		if nil != err {
			t.Fatalf("round: %d  create error: %s", round, err)
		}

		errs := make([]error, callers)
		var wg sync.WaitGroup
		for i := 0; i < callers; i += 1 {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				if 0 == i%2 {
					errs[i] = f.registry.Revoke(alice, fp)
				} else {
					errs[i] = f.registry.Transfer(alice, fp, bob)
				}
				// readers run alongside the writers
				f.registry.Get(fp)
				_, _, _ = f.registry.ListFor(alice, 0, registry.MaximumListCount)
			}(i)
		}
		wg.Wait()

		succeeded := 0
		for i, err := range errs {
			switch err {
			case nil:
				succeeded += 1
			case fault.ClaimNotFound, fault.NotClaimOwner:
			default:
				t.Errorf("round: %d  caller: %d  unexpected error: %s", round, i, err)
			}
		}
		assert.Equal(t, 1, succeeded, "round: %d  wrong success count", round)

		c, found := f.registry.Get(fp)
		if found {
			assert.True(t, bob.Equal(c.Owner), "round: %d  claim kept by alice", round)
		}
	}

	assert.Equal(t, 2*rounds, len(f.sink.events), "wrong event count")

	claims, _, err := f.registry.ListFor(alice, 0, registry.MaximumListCount)
	assert.Nil(t, err, "list")
	assert.Equal(t, 0, len(claims), "alice still lists claims")
}
