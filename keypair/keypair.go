// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package keypair

import (
	"encoding/hex"

	"github.com/bitmark-inc/claimd/account"
)

// KeyPair - structure to hold the seed and the keys derived from it
type KeyPair struct {
	Seed       string
	Account    *account.Account
	PrivateKey *account.PrivateKey
}

// RawKeyPair - text version of seed and keys
type RawKeyPair struct {
	Seed       string `json:"seed"`
	Account    string `json:"account"`
	PublicKey  string `json:"public_key"`
	PrivateKey string `json:"private_key"`
}

// NewSeed - create a new seed from secure random data
func NewSeed(test bool) (string, error) {
	return account.NewBase58EncodedSeedV2(test)
}

// MakeRawKeyPair - create new seed and generate public/private keys from it
func MakeRawKeyPair(test bool) (*RawKeyPair, *KeyPair, error) {
	seed, err := NewSeed(test)
	if nil != err {
		return nil, nil, err
	}
	return MakeRawKeyPairFromSeed(seed)
}

// MakeRawKeyPairFromSeed - generate public/private keys from existing seed
//
// the network is taken from the seed
func MakeRawKeyPairFromSeed(seed string) (*RawKeyPair, *KeyPair, error) {

	privateKey, err := account.PrivateKeyFromBase58Seed(seed)
	if nil != err {
		return nil, nil, err
	}

	acc := privateKey.Account()

	keyPair := KeyPair{
		Seed:       seed,
		Account:    acc,
		PrivateKey: privateKey,
	}

	rawKeyPair := RawKeyPair{
		Seed:       seed,
		Account:    acc.String(),
		PublicKey:  hex.EncodeToString(acc.PublicKeyBytes()),
		PrivateKey: hex.EncodeToString(privateKey.PrivateKeyBytes()),
	}

	return &rawKeyPair, &keyPair, nil
}

// AccountFromHexPublicKey - create an account from a hexadecimal public key
func AccountFromHexPublicKey(publicKey string, test bool) (*account.Account, error) {
	k, err := hex.DecodeString(publicKey)
	if nil != err {
		return nil, err
	}
	return account.New(k, test)
}
