// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package request

import (
	"github.com/bitmark-inc/claimd/account"
	"github.com/bitmark-inc/claimd/fault"
)

// Sign - set the requester from the key and sign the packed request
func (r *Request) Sign(key *account.PrivateKey) error {
	r.Requester = key.Account()
	r.Signature = nil

	packed, err := r.Pack()
	if nil != err {
		return err
	}

	r.Signature = key.Sign(packed)
	return nil
}

// Verify - check a request and return its verified requester
//
// all accounts must belong to the given network; a missing or
// incorrect signature is fault.Unauthenticated
func Verify(r *Request, testnet bool) (*account.Account, error) {
	if nil == r {
		return nil, fault.MissingParameters
	}

	packed, err := r.Pack()
	if nil != err {
		return nil, err
	}

	if testnet != r.Requester.IsTesting() {
		return nil, fault.WrongNetworkForPublicKey
	}
	if nil != r.NewOwner && testnet != r.NewOwner.IsTesting() {
		return nil, fault.WrongNetworkForPublicKey
	}

	if 0 == len(r.Signature) {
		return nil, fault.Unauthenticated
	}
	err = r.Requester.CheckSignature(packed, r.Signature)
	if nil != err {
		return nil, fault.Unauthenticated
	}

	return r.Requester, nil
}
