// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"github.com/bitmark-inc/claimd/blockheader"
	"github.com/bitmark-inc/claimd/chain"
	"github.com/bitmark-inc/claimd/messagebus"
	"github.com/bitmark-inc/claimd/ownership"
	"github.com/bitmark-inc/claimd/registry"
	"github.com/bitmark-inc/claimd/request"
	"github.com/bitmark-inc/claimd/sequencer"
	"github.com/bitmark-inc/claimd/storage"
	"github.com/bitmark-inc/logger"
)

// the components of a running daemon
type node struct {
	log       *logger.L
	db        *storage.Database
	header    *blockheader.Header
	queue     *messagebus.BroadcastQueue
	registry  *registry.Registry
	sequencer *sequencer.Sequencer
}

// open the database and connect the components
func newNode(log *logger.L, configuration *Configuration) (*node, error) {

	log.Info("initialise storage")
	db, err := storage.Open(logger.New("storage"), configuration.Database.Name, storage.ReadWrite)
	if nil != err {
		log.Criticalf("storage initialise error: %s", err)
		return nil, err
	}

	log.Info("initialise blockheader")
	header := blockheader.New(logger.New("blockheader"), db.Pool.Height, db.Transaction())

	queue := messagebus.NewBroadcastQueue(logger.New("bus"))

	store := ownership.NewFromDatabase(logger.New("ownership"), db)

	options := registry.DefaultOptions()
	options.AllowSelfTransfer = configuration.Registry.AllowSelfTransfer

	reg := registry.New(logger.New("registry"), store, header, registry.NewBusSink(queue), options)

	seq := sequencer.New(
		logger.New("sequencer"),
		reg,
		header,
		request.NewJournal(logger.New("journal"), db.Pool.Requests, db.Transaction()),
		chain.IsTesting(configuration.Chain),
		configuration.Spool.RateLimit,
		configuration.Spool.RateBurst,
	)

	return &node{
		log:       log,
		db:        db,
		header:    header,
		queue:     queue,
		registry:  reg,
		sequencer: seq,
	}, nil
}

// release the queue listeners and close the database
func (n *node) close() {
	n.queue.Release()
	n.db.Close()
	n.log.Info("storage closed")
}
