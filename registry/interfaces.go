// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package registry

import (
	"github.com/bitmark-inc/claimd/account"
	"github.com/bitmark-inc/claimd/claim"
	"github.com/bitmark-inc/claimd/fingerprint"
)

// Store - durable map from fingerprint to claim
type Store interface {
	Contains(fingerprint.Fingerprint) bool
	Get(fingerprint.Fingerprint) (claim.Claim, bool)
	Insert(claim.Claim) error
	Remove(fingerprint.Fingerprint) error
	Mutate(fingerprint.Fingerprint, func(*claim.Claim)) error
	ListFor(*account.Account, uint64, int) ([]claim.Claim, uint64, error)
}

// Clock - source of the logical timestamp
type Clock interface {
	Height() uint64
}

// Sink - receives an event after each successful operation
type Sink interface {
	Emit(Event)
}
