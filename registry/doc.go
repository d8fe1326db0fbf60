// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package registry - claim ownership of fingerprints
//
// a claim binds a fingerprint to exactly one owner and the block
// height of its most recent create or transfer
//
// operations:
//
//	Create   - requester claims an unclaimed fingerprint
//	Revoke   - owner deletes its claim
//	Transfer - owner hands the claim to another account
//
// each operation is checked and applied while holding the registry
// lock, a failed operation leaves the store unchanged and emits no
// event
package registry
