// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bitmark-inc/claimd/account"
	"github.com/bitmark-inc/claimd/fingerprint"
	"github.com/bitmark-inc/claimd/request"
	"github.com/bitmark-inc/claimd/sequencer"
)

const (
	requestSuffix = ".json"
	resultSuffix  = ".result.json"
	pollInterval  = 100 * time.Millisecond
)

// what claimd writes beside each processed request file
type resultFile struct {
	Results []sequencer.Result `json:"results,omitempty"`
	Error   string             `json:"error,omitempty"`
}

// output of the create, revoke and transfer commands
type submitted struct {
	File    string           `json:"file"`
	Request *request.Request `json:"request"`
	Result  *resultFile      `json:"result,omitempty"`
}

// sign a request and check it the way the daemon will
func makeRequest(key *account.PrivateKey, op request.Operation, fp fingerprint.Fingerprint, newOwner *account.Account, testnet bool) (*request.Request, error) {
	r := &request.Request{
		Operation:   op,
		Fingerprint: fp,
		NewOwner:    newOwner,
		Nonce:       uint64(time.Now().UnixNano()),
	}

	err := r.Sign(key)
	if nil != err {
		return nil, err
	}

	_, err = request.Verify(r, testnet)
	if nil != err {
		return nil, err
	}
	return r, nil
}

// write a single request file into the spool, unique by nonce
func spoolRequest(spool string, r *request.Request) (string, error) {
	name := filepath.Join(spool, fmt.Sprintf("%s-%d%s", r.Operation, r.Nonce, requestSuffix))
	err := request.WriteFile(name, []request.Request{*r})
	if nil != err {
		return "", err
	}
	return name, nil
}

// poll for the result of a spooled request file
func waitForResult(name string, timeout time.Duration) (*resultFile, error) {
	resultName := strings.TrimSuffix(name, requestSuffix) + resultSuffix
	deadline := time.Now().Add(timeout)

	for {
		data, err := ioutil.ReadFile(resultName)
		if nil == err {
			var r resultFile
			err = json.Unmarshal(data, &r)
			if nil != err {
				return nil, err
			}
			return &r, nil
		}
		if !os.IsNotExist(err) {
			return nil, err
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("no result for: %q after: %s", name, timeout)
		}
		time.Sleep(pollInterval)
	}
}
