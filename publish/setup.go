// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package publish

import (
	"github.com/bitmark-inc/claimd/messagebus"
	"github.com/bitmark-inc/claimd/util"
	"github.com/bitmark-inc/claimd/zmqutil"
	"github.com/bitmark-inc/logger"
)

// Configuration - a block of configuration data
// this is read from a Lua configuration file
type Configuration struct {
	Broadcast  []string `gluamapper:"broadcast" json:"broadcast"`
	PrivateKey string   `gluamapper:"private_key" json:"private_key"`
	PublicKey  string   `gluamapper:"public_key" json:"public_key"`
}

// IsEnabled - true if any broadcast address is configured
func (configuration *Configuration) IsEnabled() bool {
	return 0 != len(configuration.Broadcast)
}

// New - bind the broadcast sockets and return a publisher that
// forwards every message sent to the queue
//
// the publisher must be run as a background process
func New(log *logger.L, configuration *Configuration, chain string, queue *messagebus.BroadcastQueue) (*Publisher, error) {

	log.Info("starting…")

	privateKey, err := zmqutil.ReadPrivateKeyFile(configuration.PrivateKey)
	if nil != err {
		log.Errorf("read private key file: %q  error: %s", configuration.PrivateKey, err)
		return nil, err
	}
	publicKey, err := zmqutil.ReadPublicKeyFile(configuration.PublicKey)
	if nil != err {
		log.Errorf("read public key file: %q  error: %s", configuration.PublicKey, err)
		return nil, err
	}
	log.Tracef("public key:  %x", publicKey)

	connections, err := util.NewConnections(configuration.Broadcast)
	if nil != err {
		log.Errorf("broadcast addresses: %q  error: %s", configuration.Broadcast, err)
		return nil, err
	}

	err = zmqutil.StartAuthentication()
	if nil != err {
		log.Errorf("zmq authentication error: %s", err)
		return nil, err
	}

	p := &Publisher{
		log:   log,
		chain: chain,
	}

	p.socket4, p.socket6, err = zmqutil.NewBind(log, publisherType, zapDomain, privateKey, publicKey, connections)
	if nil != err {
		log.Errorf("bind error: %s", err)
		return nil, err
	}

	// subscribe now so nothing sent before Run is missed
	p.items = queue.Chan(queueSize)

	return p, nil
}
