// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package zmqutil

import (
	"time"

	zmq "github.com/pebbe/zmq4"

	"github.com/bitmark-inc/claimd/fault"
	"github.com/bitmark-inc/claimd/util"
)

const (
	publicKeySize  = 32
	privateKeySize = 32
)

// Subscriber - a SUB socket on a curve secured publisher
//
// only messages whose first frame starts with the topic are delivered
type Subscriber struct {
	publicKey       []byte
	privateKey      []byte
	serverPublicKey []byte
	topic           string
	address         string
	v6              bool
	socket          *zmq.Socket
	timeout         time.Duration
}

// NewSubscriber - create an unconnected subscriber
//
// a zero timeout blocks receive indefinitely
func NewSubscriber(privateKey []byte, publicKey []byte, topic string, timeout time.Duration) (*Subscriber, error) {

	if len(publicKey) != publicKeySize {
		return nil, fault.InvalidPublicKeyFile
	}
	if len(privateKey) != privateKeySize {
		return nil, fault.InvalidPrivateKeyFile
	}

	s := &Subscriber{
		publicKey:       append([]byte{}, publicKey...),
		privateKey:      append([]byte{}, privateKey...),
		serverPublicKey: make([]byte, publicKeySize),
		topic:           topic,
		timeout:         timeout,
	}
	return s, nil
}

// ignore options that need zmq 4.2
func optional(err error) error {
	if zmq.ErrorNotImplemented42 == err {
		return nil
	}
	return err
}

func (s *Subscriber) openSocket() error {

	socket, err := zmq.NewSocket(zmq.SUB)
	if nil != err {
		return err
	}

	setters := []func() error{
		func() error { return socket.SetCurveServer(0) },
		func() error { return socket.SetCurvePublickey(string(s.publicKey)) },
		func() error { return socket.SetCurveSecretkey(string(s.privateKey)) },
		func() error { return socket.SetCurveServerkey(string(s.serverPublicKey)) },
		func() error { return socket.SetLinger(0) },
		func() error { return socket.SetSubscribe(s.topic) },
		func() error { return optional(socket.SetHeartbeatIvl(heartbeatInterval)) },
		func() error { return optional(socket.SetHeartbeatTimeout(heartbeatTimeout)) },
		func() error { return optional(socket.SetHeartbeatTtl(heartbeatTTL)) },
		func() error { return socket.SetIpv6(s.v6) },
	}
	if 0 != s.timeout {
		setters = append(setters, func() error { return socket.SetRcvtimeo(s.timeout) })
	}

	for _, set := range setters {
		if err := set(); nil != err {
			socket.Close()
			return err
		}
	}

	err = socket.Connect(s.address)
	if nil != err {
		socket.Close()
		return err
	}

	s.socket = socket
	return nil
}

// release the socket but keep the keys for a later Connect
func (s *Subscriber) closeSocket() error {

	if nil == s.socket {
		return nil
	}

	if "" != s.address {
		s.socket.Disconnect(s.address)
	}

	err := s.socket.Close()
	s.socket = nil
	return err
}

// Connect - drop any current publisher and connect to a new one
func (s *Subscriber) Connect(conn *util.Connection, serverPublicKey []byte) error {

	err := s.closeSocket()
	if nil != err {
		return err
	}
	s.address = ""

	if len(serverPublicKey) != publicKeySize {
		return fault.InvalidPublicKeyFile
	}
	copy(s.serverPublicKey, serverPublicKey)

	s.address, s.v6 = conn.CanonicalIPandPort("tcp://")

	err = s.openSocket()
	if nil != err {
		s.address = ""
	}
	return err
}

// IsConnected - true after a successful Connect
func (s *Subscriber) IsConnected() bool {
	return "" != s.address
}

// Close - disconnect and close
func (s *Subscriber) Close() error {
	err := s.closeSocket()
	s.address = ""
	return err
}

// Receive - wait for the next multipart message
func (s *Subscriber) Receive(flags zmq.Flag) ([][]byte, error) {
	if "" == s.address {
		return nil, fault.NotConnected
	}
	return s.socket.RecvMessageBytes(flags)
}

// String - the publisher address
func (s Subscriber) String() string {
	return s.address
}
