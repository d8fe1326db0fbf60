// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/bitmark-inc/claimd/account"
	"github.com/bitmark-inc/claimd/request"
)

func runCreate(c *cli.Context) error {
	return submit(c, request.CreateOperation, nil)
}

func runRevoke(c *cli.Context) error {
	return submit(c, request.RevokeOperation, nil)
}

func runTransfer(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	to, receiver, err := checkRecipient(c, "receiver", m.config)
	if nil != err {
		return err
	}

	if m.verbose {
		fmt.Fprintf(m.e, "receiver: %s\n", to)
	}

	return submit(c, request.TransferOperation, receiver)
}

// sign one request and drop it in the spool
func submit(c *cli.Context, op request.Operation, newOwner *account.Account) error {

	m := c.App.Metadata["config"].(*metadata)

	fp, err := checkFingerprint(c.String("fingerprint"), c.String("file"))
	if nil != err {
		return err
	}

	spool, err := checkSpool(m.config.Spool)
	if nil != err {
		return err
	}

	name, key, err := checkOwnerWithPasswordPrompt(c.GlobalString("identity"), m.config, c)
	if nil != err {
		return err
	}

	if m.verbose {
		fmt.Fprintf(m.e, "operation: %s\n", op)
		fmt.Fprintf(m.e, "requester: %s\n", name)
		fmt.Fprintf(m.e, "fingerprint: %s\n", fp)
		fmt.Fprintf(m.e, "spool: %s\n", spool)
	}

	r, err := makeRequest(key, op, fp, newOwner, m.testnet)
	if nil != err {
		return err
	}

	fileName, err := spoolRequest(spool, r)
	if nil != err {
		return err
	}

	out := submitted{
		File:    fileName,
		Request: r,
	}

	if wait := c.Duration("wait"); wait > 0 {
		out.Result, err = waitForResult(fileName, wait)
		if nil != err {
			return err
		}
	}

	return m.printJSON(out)
}
