// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package request_test

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/claimd/account"
	"github.com/bitmark-inc/claimd/fault"
	"github.com/bitmark-inc/claimd/fingerprint"
	"github.com/bitmark-inc/claimd/request"
)

const (
	aliceSeed   = "9J877LVjhr3Xxd2nGzRVRVNUZpSKJF4TH"
	bobSeed     = "9J876mP7wDJ6g5P41eNMN8N3jo9fycDs2"
	liveSeed    = "5XEECqhR7QBkJezUJiUJBmHaSmffDfVN5atuLnQBHnvfxbsWHuBfQLw"
	carolBase58 = "fGcv38F4ucFwvwnepNYYDQt3eDjRaoVtLCdofMYGUENboXVQzx"
)

func makeKey(t *testing.T, seed string) *account.PrivateKey {
	key, err := account.PrivateKeyFromBase58Seed(seed)
	if nil != err {
		t.Fatalf("seed: %q  error: %s", seed, err)
	}
	return key
}

func makeAccount(t *testing.T, s string) *account.Account {
	a, err := account.AccountFromBase58(s)
	if nil != err {
		t.Fatalf("account: %q  error: %s", s, err)
	}
	return a
}

func TestOperationText(t *testing.T) {
	for _, op := range []request.Operation{request.CreateOperation, request.RevokeOperation, request.TransferOperation} {
		text, err := op.MarshalText()
		assert.Nil(t, err, "marshal")

		var actual request.Operation
		err = actual.UnmarshalText(text)
		assert.Nil(t, err, "unmarshal")
		assert.Equal(t, op, actual, "wrong operation")
	}

	_, err := request.NullOperation.MarshalText()
	assert.Equal(t, fault.InvalidOperation, err, "null operation")

	var op request.Operation
	assert.Equal(t, fault.InvalidOperation, op.UnmarshalText([]byte("mine")), "unknown name")
}

func TestPack(t *testing.T) {
	alice := makeKey(t, aliceSeed).Account()

	r := request.Request{
		Operation:   request.CreateOperation,
		Requester:   alice,
		Fingerprint: fingerprint.Fingerprint("doc1"),
		Nonce:       300,
	}
	packed, err := r.Pack()
	assert.Nil(t, err, "pack")

	expected := []byte{0x01, 0x21}
	expected = append(expected, alice.Bytes()...)
	expected = append(expected, 0x04, 'd', 'o', 'c', '1', 0x00, 0xac, 0x02)
	assert.Equal(t, request.Packed(expected), packed, "wrong packed")
}

func TestPackInvalid(t *testing.T) {
	alice := makeKey(t, aliceSeed).Account()
	carol := makeAccount(t, carolBase58)
	fp := fingerprint.Fingerprint("doc1")

	items := []struct {
		r   request.Request
		err error
	}{
		{request.Request{Operation: request.NullOperation, Requester: alice, Fingerprint: fp}, fault.InvalidOperation},
		{request.Request{Operation: request.InvalidOperation, Requester: alice, Fingerprint: fp}, fault.InvalidOperation},
		{request.Request{Operation: request.CreateOperation, Fingerprint: fp}, fault.MissingIdentity},
		{request.Request{Operation: request.CreateOperation, Requester: alice}, fault.InvalidFingerprint},
		{request.Request{Operation: request.TransferOperation, Requester: alice, Fingerprint: fp}, fault.MissingIdentity},
		{request.Request{Operation: request.RevokeOperation, Requester: alice, Fingerprint: fp, NewOwner: carol}, fault.UnexpectedNewOwner},
	}

	for i, item := range items {
		_, err := item.r.Pack()
		assert.Equal(t, item.err, err, "%d: wrong error", i)
	}
}

func TestSignVerify(t *testing.T) {
	key := makeKey(t, aliceSeed)
	carol := makeAccount(t, carolBase58)

	r := request.Request{
		Operation:   request.TransferOperation,
		Fingerprint: fingerprint.Fingerprint("doc1"),
		NewOwner:    carol,
		Nonce:       1,
	}
	err := r.Sign(key)
	assert.Nil(t, err, "sign")
	assert.True(t, key.Account().Equal(r.Requester), "requester not set")

	requester, err := request.Verify(&r, true)
	assert.Nil(t, err, "verify")
	assert.True(t, key.Account().Equal(requester), "wrong requester")

	_, err = request.Verify(&r, false)
	assert.Equal(t, fault.WrongNetworkForPublicKey, err, "wrong network")
}

func TestVerifyUnauthenticated(t *testing.T) {
	alice := makeKey(t, aliceSeed)
	bob := makeKey(t, bobSeed)

	r := request.Request{
		Operation:   request.CreateOperation,
		Fingerprint: fingerprint.Fingerprint("doc1"),
	}
	assert.Nil(t, r.Sign(alice), "sign")

	// changed after signing
	changed := r
	changed.Nonce = 2
	_, err := request.Verify(&changed, true)
	assert.Equal(t, fault.Unauthenticated, err, "changed nonce")

	// signed by one account, claims to be another
	impostor := r
	impostor.Requester = bob.Account()
	_, err = request.Verify(&impostor, true)
	assert.Equal(t, fault.Unauthenticated, err, "impostor")

	unsigned := r
	unsigned.Signature = nil
	_, err = request.Verify(&unsigned, true)
	assert.Equal(t, fault.Unauthenticated, err, "unsigned")

	assert.True(t, fault.IsErrAuthentication(err), "wrong error class")

	_, err = request.Verify(nil, true)
	assert.Equal(t, fault.MissingParameters, err, "nil request")
}

func TestVerifyLiveNetwork(t *testing.T) {
	live := makeKey(t, liveSeed)

	r := request.Request{
		Operation:   request.CreateOperation,
		Fingerprint: fingerprint.Fingerprint("doc1"),
	}
	assert.Nil(t, r.Sign(live), "sign")

	_, err := request.Verify(&r, true)
	assert.Equal(t, fault.WrongNetworkForPublicKey, err, "live account on test network")
	_, err = request.Verify(&r, false)
	assert.Nil(t, err, "live account on live network")
}

func TestJSON(t *testing.T) {
	key := makeKey(t, aliceSeed)
	carol := makeAccount(t, carolBase58)

	r := request.Request{
		Operation:   request.TransferOperation,
		Fingerprint: fingerprint.Fingerprint("doc1"),
		NewOwner:    carol,
		Nonce:       12345,
	}
	assert.Nil(t, r.Sign(key), "sign")

	buffer, err := json.Marshal(r)
	assert.Nil(t, err, "marshal")

	var decoded map[string]string
	err = json.Unmarshal(buffer, &decoded)
	assert.Nil(t, err, "unmarshal map")
	assert.Equal(t, "transfer", decoded["operation"], "wrong operation text")
	assert.Equal(t, "646f6331", decoded["fingerprint"], "wrong fingerprint text")
	assert.Equal(t, carolBase58, decoded["newOwner"], "wrong new owner text")
	assert.Equal(t, "12345", decoded["nonce"], "wrong nonce text")

	requests, err := request.Decode(buffer)
	assert.Nil(t, err, "decode")
	assert.Equal(t, 1, len(requests), "wrong count")

	requester, err := request.Verify(&requests[0], true)
	assert.Nil(t, err, "verify after decode")
	assert.True(t, key.Account().Equal(requester), "wrong requester")
}

func TestDecode(t *testing.T) {
	_, err := request.Decode([]byte("  \n"))
	assert.Equal(t, fault.EmptyRequestFile, err, "blank")

	_, err = request.Decode([]byte("[]"))
	assert.Equal(t, fault.EmptyRequestFile, err, "empty array")

	_, err = request.Decode([]byte(`{"operation":"mine"}`))
	assert.NotNil(t, err, "bad operation")

	requests, err := request.Decode([]byte(`[{"operation":"create","fingerprint":"01"},{"operation":"revoke","fingerprint":"02"}]`))
	assert.Nil(t, err, "array")
	assert.Equal(t, 2, len(requests), "wrong count")
	assert.Equal(t, request.RevokeOperation, requests[1].Operation, "wrong operation")
}

func TestWriteReadFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "request")
	if nil != err {
		t.Fatalf("temp dir error: %s", err)
	}
	defer os.RemoveAll(dir)

	key := makeKey(t, aliceSeed)
	r := request.Request{
		Operation:   request.CreateOperation,
		Fingerprint: fingerprint.Fingerprint("doc1"),
	}
	assert.Nil(t, r.Sign(key), "sign")

	name := filepath.Join(dir, "create.json")
	err = request.WriteFile(name, []request.Request{r})
	assert.Nil(t, err, "write")

	_, err = os.Stat(name + ".tmp")
	assert.True(t, os.IsNotExist(err), "temporary file left")

	requests, err := request.ReadFile(name)
	assert.Nil(t, err, "read")
	assert.Equal(t, 1, len(requests), "wrong count")
	_, err = request.Verify(&requests[0], true)
	assert.Nil(t, err, "verify")
}
