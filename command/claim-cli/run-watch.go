// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	zmq "github.com/pebbe/zmq4"
	"github.com/urfave/cli"

	"github.com/bitmark-inc/claimd/account"
	"github.com/bitmark-inc/claimd/fault"
	"github.com/bitmark-inc/claimd/fingerprint"
	"github.com/bitmark-inc/claimd/publish"
	"github.com/bitmark-inc/claimd/registry"
	"github.com/bitmark-inc/claimd/util"
	"github.com/bitmark-inc/claimd/zmqutil"
)

// one published event as printed
type watchedEvent struct {
	Event       string                  `json:"event"`
	Requester   *account.Account        `json:"requester"`
	Fingerprint fingerprint.Fingerprint `json:"fingerprint"`
	NewOwner    *account.Account        `json:"newOwner,omitempty"`
	Height      uint64                  `json:"height,string"`
}

func runWatch(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	connect := c.String("connect")
	if "" == connect {
		connect = m.config.Publisher.Connect
	}
	if "" == connect {
		return fault.MissingParameters
	}

	keyFile := c.String("server-key")
	if "" == keyFile {
		keyFile = m.config.Publisher.PublicKey
	}
	if "" == keyFile {
		return fault.InvalidPublicKeyFile
	}

	count := c.Int("count")

	if m.verbose {
		fmt.Fprintf(m.e, "connect: %s\n", connect)
		fmt.Fprintf(m.e, "server key: %s\n", keyFile)
		fmt.Fprintf(m.e, "count: %d\n", count)
	}

	serverPublicKey, err := zmqutil.ReadPublicKeyFile(keyFile)
	if nil != err {
		return err
	}

	conn, err := util.NewConnection(connect)
	if nil != err {
		return err
	}

	client, err := newSubscriber(m.network)
	if nil != err {
		return err
	}
	defer client.Close()

	err = client.Connect(conn, serverPublicKey)
	if nil != err {
		return err
	}

	for n := 0; 0 == count || n < count; {
		frames, err := client.Receive(0)
		if nil != err {
			return err
		}

		e, ok, err := eventFromFrames(m.network, frames)
		if nil != err {
			fmt.Fprintf(m.e, "discard message: %s\n", err)
			continue
		}
		if !ok {
			continue
		}

		err = m.printJSON(e)
		if nil != err {
			return err
		}
		n++
	}
	return nil
}

// subscriber for one chain with a throwaway curve key pair
func newSubscriber(network string) (*zmqutil.Subscriber, error) {
	publicKey, privateKey, err := zmq.NewCurveKeypair()
	if nil != err {
		return nil, err
	}
	return zmqutil.NewSubscriber([]byte(zmq.Z85decode(privateKey)), []byte(zmq.Z85decode(publicKey)), network, 0)
}

// decode received frames, ignoring heartbeats and other chains
func eventFromFrames(network string, frames [][]byte) (*watchedEvent, bool, error) {
	chain, message, ok := publish.MessageFromFrames(frames)
	if !ok {
		return nil, false, fault.MissingParameters
	}
	if chain != network || publish.IsHeartbeat(message) {
		return nil, false, nil
	}

	e, err := registry.EventFromMessage(message)
	if nil != err {
		return nil, false, err
	}

	return &watchedEvent{
		Event:       e.Kind.String(),
		Requester:   e.Requester,
		Fingerprint: e.Fingerprint,
		NewOwner:    e.NewOwner,
		Height:      e.Height,
	}, true, nil
}
