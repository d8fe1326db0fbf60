// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package account

import (
	"bytes"
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/ed25519"
	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/sha3"

	"github.com/bitmark-inc/claimd/fault"
	"github.com/bitmark-inc/claimd/util"
)

// seed headers
var (
	seedHeaderV1 = []byte{0x5a, 0xfe, 0x01}
	seedHeaderV2 = []byte{0x5a, 0xfe, 0x02}
)

// for seed v1 only
var (
	seedNonce     = [24]byte{}
	authSeedIndex = [16]byte{
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x03, 0xe7,
	}
)

const (
	seedHeaderLength = 3
	seedPrefixLength = 1

	secretKeyV1Length        = 32
	secretKeyV2Length        = 17
	secretKeyV2EntropyLength = 16
	seedChecksumLength       = 4

	seedV1Length = 40
	seedV2Length = 24
)

// PrivateKeyFromBase58Seed - this converts a Base58 encoded seed string and returns a private key
func PrivateKeyFromBase58Seed(seedBase58Encoded string) (*PrivateKey, error) {

	seed := util.FromBase58(seedBase58Encoded)
	seedLength := len(seed)
	if seedV1Length != seedLength && seedV2Length != seedLength {
		return nil, fault.InvalidSeedLength
	}

	checksumStart := seedLength - seedChecksumLength
	digest := sha3.Sum256(seed[:checksumStart])
	if !bytes.Equal(digest[:seedChecksumLength], seed[checksumStart:]) {
		return nil, fault.ChecksumMismatch
	}

	header := seed[:seedHeaderLength]
	var ed25519Seed []byte
	var testnet bool

	switch {
	case bytes.Equal(seedHeaderV1, header):
		var sk [secretKeyV1Length]byte
		secretStart := seedHeaderLength + seedPrefixLength
		copy(sk[:], seed[secretStart:checksumStart])

		// prefix byte is the network: 0x01 for test
		testnet = 0x01 == seed[seedHeaderLength]

		ed25519Seed = secretbox.Seal([]byte{}, authSeedIndex[:], &seedNonce, &sk)

	case bytes.Equal(seedHeaderV2, header):
		sk := seed[seedHeaderLength:checksumStart]
		if secretKeyV2Length != len(sk) || 0 != sk[16]&0x0f {
			return nil, fault.InvalidSeedLength
		}

		mode := sk[0]&0x80 | sk[1]&0x40 | sk[2]&0x20 | sk[3]&0x10
		testnet = mode == sk[15]&0xf0^0xf0

		// the secret is hashed four times over
		hash := sha3.NewShake256()
		for i := 0; i < 4; i++ {
			n, err := hash.Write(sk)
			if nil != err {
				return nil, err
			}
			if secretKeyV2Length != n {
				return nil, fault.CannotDecodeSeed
			}
		}

		ed25519Seed = make([]byte, ed25519.SeedSize)
		n, err := hash.Read(ed25519Seed)
		if nil != err {
			return nil, err
		}
		if ed25519.SeedSize != n {
			return nil, fault.CannotDecodeSeed
		}

	default:
		return nil, fault.InvalidSeedHeader
	}

	_, priv, err := ed25519.GenerateKey(bytes.NewBuffer(ed25519Seed))
	if nil != err {
		return nil, err
	}

	return &PrivateKey{
		test:       testnet,
		privateKey: priv,
	}, nil
}

// NewBase58EncodedSeedV1 - generate base58 seed v1
func NewBase58EncodedSeedV1(testnet bool) (string, error) {
	sk := make([]byte, secretKeyV1Length)
	n, err := rand.Read(sk)
	if nil != err {
		return "", err
	}
	if secretKeyV1Length != n {
		return "", fmt.Errorf("got: %d bytes, expected: %d bytes", n, secretKeyV1Length)
	}
	net := byte(0x00)
	if testnet {
		net = 0x01
	}

	seed := make([]byte, 0, seedV1Length)
	seed = append(seed, seedHeaderV1...)
	seed = append(seed, net)
	seed = append(seed, sk...)
	checksum := sha3.Sum256(seed)
	seed = append(seed, checksum[:seedChecksumLength]...)

	return util.ToBase58(seed), nil
}

// NewBase58EncodedSeedV2 - generate base58 seed v2
func NewBase58EncodedSeedV2(testnet bool) (string, error) {

	// 128 bits of entropy, extended to 132 bits below
	sk := make([]byte, secretKeyV2EntropyLength, secretKeyV2Length)

	n, err := rand.Read(sk)
	if nil != err {
		return "", err
	}
	if secretKeyV2EntropyLength != n {
		return "", fmt.Errorf("got: %d bytes, expected: %d bytes", n, secretKeyV2EntropyLength)
	}

	sk = append(sk, sk[15]&0xf0)

	// network flag
	mode := sk[0]&0x80 | sk[1]&0x40 | sk[2]&0x20 | sk[3]&0x10
	if testnet {
		mode = mode ^ 0xf0
	}
	sk[15] = mode | sk[15]&0x0f

	seed := make([]byte, 0, seedV2Length)
	seed = append(seed, seedHeaderV2...)
	seed = append(seed, sk...)
	digest := sha3.Sum256(seed)
	seed = append(seed, digest[:seedChecksumLength]...)

	return util.ToBase58(seed), nil
}
