// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package request

import (
	"bytes"
	"encoding/json"
	"io/ioutil"
	"os"

	"github.com/bitmark-inc/claimd/fault"
)

// Decode - one request object or an array of them
func Decode(data []byte) ([]Request, error) {
	data = bytes.TrimSpace(data)
	if 0 == len(data) {
		return nil, fault.EmptyRequestFile
	}

	if '[' == data[0] {
		var requests []Request
		err := json.Unmarshal(data, &requests)
		if nil != err {
			return nil, err
		}
		if 0 == len(requests) {
			return nil, fault.EmptyRequestFile
		}
		return requests, nil
	}

	var r Request
	err := json.Unmarshal(data, &r)
	if nil != err {
		return nil, err
	}
	return []Request{r}, nil
}

// ReadFile - decode a request file
func ReadFile(name string) ([]Request, error) {
	data, err := ioutil.ReadFile(name)
	if nil != err {
		return nil, err
	}
	return Decode(data)
}

// WriteFile - save requests as an indented JSON array
//
// written to a temporary name first so that a watcher never sees a
// partial file
func WriteFile(name string, requests []Request) error {
	data, err := json.MarshalIndent(requests, "", "  ")
	if nil != err {
		return err
	}
	temporary := name + ".tmp"
	err = ioutil.WriteFile(temporary, append(data, '\n'), 0600)
	if nil != err {
		return err
	}
	return os.Rename(temporary, name)
}
