// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package registry

import (
	"github.com/bitmark-inc/claimd/account"
	"github.com/bitmark-inc/claimd/fault"
	"github.com/bitmark-inc/claimd/fingerprint"
	"github.com/bitmark-inc/claimd/messagebus"
	"github.com/bitmark-inc/claimd/util"
)

// Kind - type of event
type Kind int

// event kinds
const (
	Created Kind = iota
	Revoked
	Transferred
)

// bus commands for each kind
const (
	CreatedCommand     = "created"
	RevokedCommand     = "revoked"
	TransferredCommand = "transferred"
)

// String - the bus command for the kind
func (k Kind) String() string {
	switch k {
	case Created:
		return CreatedCommand
	case Revoked:
		return RevokedCommand
	case Transferred:
		return TransferredCommand
	default:
		return "unknown"
	}
}

// Event - record of a successful operation
//
// NewOwner is only set for Transferred
type Event struct {
	Kind        Kind
	Requester   *account.Account
	Fingerprint fingerprint.Fingerprint
	NewOwner    *account.Account
	Height      uint64
}

// BusSink - emit events as messages on a broadcast queue
type BusSink struct {
	queue *messagebus.BroadcastQueue
}

// NewBusSink - create a sink that sends to a queue
func NewBusSink(queue *messagebus.BroadcastQueue) *BusSink {
	return &BusSink{
		queue: queue,
	}
}

// Emit - send the event, never blocks
//
// parameters: requester ++ fingerprint ++ [new owner] ++ varint(height)
func (sink *BusSink) Emit(e Event) {
	parameters := [][]byte{
		e.Requester.Bytes(),
		e.Fingerprint.Bytes(),
	}
	if Transferred == e.Kind {
		parameters = append(parameters, e.NewOwner.Bytes())
	}
	parameters = append(parameters, util.ToVarint64(e.Height))

	sink.queue.Send(e.Kind.String(), parameters...)
}

// EventFromMessage - decode a message sent by BusSink
func EventFromMessage(m messagebus.Message) (Event, error) {
	var kind Kind
	expected := 3
	switch m.Command {
	case CreatedCommand:
		kind = Created
	case RevokedCommand:
		kind = Revoked
	case TransferredCommand:
		kind = Transferred
		expected = 4
	default:
		return Event{}, fault.InvalidOperation
	}

	if expected != len(m.Parameters) {
		return Event{}, fault.MissingParameters
	}

	requester, err := account.AccountFromBytes(m.Parameters[0])
	if nil != err {
		return Event{}, err
	}

	e := Event{
		Kind:        kind,
		Requester:   requester,
		Fingerprint: fingerprint.New(m.Parameters[1]),
	}

	if Transferred == kind {
		e.NewOwner, err = account.AccountFromBytes(m.Parameters[2])
		if nil != err {
			return Event{}, err
		}
	}

	height, n := util.FromVarint64(m.Parameters[expected-1])
	if 0 == n {
		return Event{}, fault.RecordTruncated
	}
	e.Height = height

	return e, nil
}
