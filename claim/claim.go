// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package claim - the record that binds a fingerprint to its owner
package claim

import (
	"github.com/bitmark-inc/claimd/account"
	"github.com/bitmark-inc/claimd/fault"
	"github.com/bitmark-inc/claimd/fingerprint"
	"github.com/bitmark-inc/claimd/util"
)

// Claim - current ownership of one fingerprint
//
// RecordedAt is the block height of the most recent create or transfer
type Claim struct {
	Fingerprint fingerprint.Fingerprint `json:"fingerprint"`
	Owner       *account.Account        `json:"owner"`
	RecordedAt  uint64                  `json:"recordedAt,string"`
}

// Packed - the stored form of a claim, without its fingerprint
type Packed []byte

// Copy - a claim with its own fingerprint bytes
//
// accounts are immutable so the owner is shared
func (c Claim) Copy() Claim {
	return Claim{
		Fingerprint: fingerprint.New(c.Fingerprint),
		Owner:       c.Owner,
		RecordedAt:  c.RecordedAt,
	}
}

// Pack - varint(recorded at) ++ varint(owner length) ++ owner
func (c Claim) Pack() (Packed, error) {
	if nil == c.Owner {
		return nil, fault.MissingIdentity
	}
	buffer := util.ToVarint64(c.RecordedAt)
	buffer = util.AppendBytes(buffer, c.Owner.Bytes())
	return Packed(buffer), nil
}

// Unpack - rebuild the claim stored under a fingerprint
func (record Packed) Unpack(fp fingerprint.Fingerprint) (Claim, error) {
	recordedAt, n := util.FromVarint64(record)
	if 0 == n {
		return Claim{}, fault.RecordTruncated
	}

	ownerBytes, ownerLength := util.ExtractBytes(record[n:])
	if 0 == ownerLength {
		return Claim{}, fault.RecordTruncated
	}
	if n+ownerLength != len(record) {
		return Claim{}, fault.RecordTruncated
	}

	owner, err := account.AccountFromBytes(ownerBytes)
	if nil != err {
		return Claim{}, err
	}

	return Claim{
		Fingerprint: fingerprint.New(fp),
		Owner:       owner,
		RecordedAt:  recordedAt,
	}, nil
}
