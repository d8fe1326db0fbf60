// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package keypair_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/claimd/fault"
	"github.com/bitmark-inc/claimd/keypair"
)

func TestMakeRawKeyPair(t *testing.T) {
	raw, kp, err := keypair.MakeRawKeyPair(true)
	assert.Nil(t, err, "wrong MakeRawKeyPair")
	assert.True(t, kp.Account.IsTesting(), "wrong network")
	assert.Equal(t, kp.Account.String(), raw.Account, "wrong account text")
	assert.Equal(t, 64, len(raw.PublicKey), "wrong public key length")
	assert.Equal(t, 128, len(raw.PrivateKey), "wrong private key length")
	assert.True(t, kp.PrivateKey.Account().Equal(kp.Account), "key pair mismatch")
}

func TestMakeRawKeyPairFromSeed(t *testing.T) {
	const seed = "9J877LVjhr3Xxd2nGzRVRVNUZpSKJF4TH"

	raw, kp, err := keypair.MakeRawKeyPairFromSeed(seed)
	assert.Nil(t, err, "wrong MakeRawKeyPairFromSeed")
	assert.Equal(t, seed, raw.Seed, "wrong seed")
	assert.Equal(t, "f7nuKToBByL3jEcArZWoB9PJ8MVmGPjrYkW88v3Yw8p7G5Sxhy", raw.Account, "wrong account")
	assert.Equal(t, "4534075cbcfc6ada1bb6b9e53d53f72341746031d9d17a3089a117766e7cda9e9bdf52f23deb941ea23cec982c24a5c811d321e71f6df56508bd511f66311e06", raw.PrivateKey, "wrong private key")
	assert.Equal(t, raw.PrivateKey[64:], raw.PublicKey, "wrong public key")

	acc, err := keypair.AccountFromHexPublicKey(raw.PublicKey, true)
	assert.Nil(t, err, "wrong AccountFromHexPublicKey")
	assert.True(t, acc.Equal(kp.Account), "account mismatch")
}

func TestMakeRawKeyPairFromBadSeed(t *testing.T) {
	_, _, err := keypair.MakeRawKeyPairFromSeed("9J877LVjhr3Xxd2nGzRVRVNUZpSKJF4TG")
	assert.Equal(t, fault.ChecksumMismatch, err, "wrong error")
}
