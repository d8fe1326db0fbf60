// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package storage - maintain the on-disk data store
//
// maintain separate pools of a number of elements in key->value form
//
// This maintains a LevelDB database split into a series of tables.
// Each table is defined by a prefix byte that is obtained from the
// prefix tag in the struct defining the available tables.
//
// Notes:
// 1. each separate pool has a single byte prefix (to spread the keys in LevelDB)
// 2. ++           = concatenation of byte data
// 3. fingerprint  = opaque claim key, 1..1024 bytes
// 4. owner        = account bytes (key variant ++ 32 byte public key)
// 5. count        = successive index value as big endian uint64 (8 bytes)
// 6. height       = block height as big endian uint64 (8 bytes)
// 7. nonce        = request nonce as big endian uint64 (8 bytes)
//
// Claims:
//
//	C ++ fingerprint           - current claim
//	                             data: varint(recorded at) ++ varint(owner length) ++ owner
//
// Ownership:
//
//	N ++ owner                 - next count value to use for appending to owned items
//	                             data: count
//	L ++ owner ++ count        - list of owned claims
//	                             data: fingerprint
//	D ++ owner ++ fingerprint  - position in list of owned claims, for delete after transfer
//	                             data: count
//
// Block header:
//
//	H ++ "height"              - current block height
//	                             data: height
//
// Requests:
//
//	R ++ owner ++ nonce        - requests already submitted, each is applied at most once
//	                             data: height
//
// Testing:
//
//	Z ++ key                   - testing data
package storage
