// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package request

import (
	"github.com/bitmark-inc/claimd/account"
	"github.com/bitmark-inc/claimd/fault"
	"github.com/bitmark-inc/claimd/fingerprint"
	"github.com/bitmark-inc/claimd/util"
)

// Operation - type code for requests
//
// encoded as a Varint64 at start of "Packed"
type Operation uint64

// enumerate the possible request types
const (
	// null is not a valid operation
	NullOperation = Operation(iota)

	CreateOperation   = Operation(iota) // claim a fingerprint
	RevokeOperation   = Operation(iota) // delete an owned claim
	TransferOperation = Operation(iota) // give an owned claim to another account

	// this item must be last
	InvalidOperation = Operation(iota)
)

var operationNames = map[Operation]string{
	CreateOperation:   "create",
	RevokeOperation:   "revoke",
	TransferOperation: "transfer",
}

// String - name of the operation
func (op Operation) String() string {
	if s, ok := operationNames[op]; ok {
		return s
	}
	return "invalid"
}

// MarshalText - operation as its name
func (op Operation) MarshalText() ([]byte, error) {
	if _, ok := operationNames[op]; !ok {
		return nil, fault.InvalidOperation
	}
	return []byte(op.String()), nil
}

// UnmarshalText - operation from its name
func (op *Operation) UnmarshalText(s []byte) error {
	for k, v := range operationNames {
		if v == string(s) {
			*op = k
			return nil
		}
	}
	return fault.InvalidOperation
}

// Packed - the signed part of a request
type Packed []byte

// Request - a signed operation on the registry
//
// NewOwner is only present for a transfer
type Request struct {
	Operation   Operation               `json:"operation"`
	Requester   *account.Account        `json:"requester"`
	Fingerprint fingerprint.Fingerprint `json:"fingerprint"`
	NewOwner    *account.Account        `json:"newOwner,omitempty"`
	Nonce       uint64                  `json:"nonce,string"`
	Signature   account.Signature       `json:"signature"`
}

// Pack - the bytes covered by the signature
//
// varint(op) ++ requester ++ fingerprint ++ new owner ++ varint(nonce)
// with each variable field length prefixed
func (r *Request) Pack() (Packed, error) {
	err := r.check()
	if nil != err {
		return nil, err
	}

	message := util.ToVarint64(uint64(r.Operation))
	message = util.AppendBytes(message, r.Requester.Bytes())
	message = util.AppendBytes(message, r.Fingerprint.Bytes())
	if nil == r.NewOwner {
		message = util.AppendBytes(message, nil)
	} else {
		message = util.AppendBytes(message, r.NewOwner.Bytes())
	}
	message = append(message, util.ToVarint64(r.Nonce)...)

	return Packed(message), nil
}

// structural checks, no signature
func (r *Request) check() error {
	if r.Operation <= NullOperation || r.Operation >= InvalidOperation {
		return fault.InvalidOperation
	}
	if nil == r.Requester {
		return fault.MissingIdentity
	}
	err := r.Fingerprint.Validate()
	if nil != err {
		return err
	}
	switch r.Operation {
	case TransferOperation:
		if nil == r.NewOwner {
			return fault.MissingIdentity
		}
	default:
		if nil != r.NewOwner {
			return fault.UnexpectedNewOwner
		}
	}
	return nil
}
