// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package messagebus

import (
	"sync"
	"sync/atomic"

	"github.com/bitmark-inc/logger"
)

// default listener channel size
const defaultQueueSize = 1000

// Message - a command and its parameters
type Message struct {
	Command    string
	Parameters [][]byte
}

// BroadcastQueue - send each message to every listener
type BroadcastQueue struct {
	sync.RWMutex
	log       *logger.L
	listeners []chan Message
	dropped   uint64 // atomic
}

// NewBroadcastQueue - create an empty queue
func NewBroadcastQueue(log *logger.L) *BroadcastQueue {
	return &BroadcastQueue{
		log: log,
	}
}

// Send - queue a message to all current listeners
func (queue *BroadcastQueue) Send(command string, parameters ...[]byte) {
	if nil == parameters {
		parameters = [][]byte{}
	}
	m := Message{
		Command:    command,
		Parameters: parameters,
	}

	queue.RLock()
	defer queue.RUnlock()

	for i, listener := range queue.listeners {
		select {
		case listener <- m:
		default:
			queue.log.Warnf("listener: %d is full, dropped: %q", i, command)
			atomic.AddUint64(&queue.dropped, 1)
		}
	}
}

// Chan - add a listener
//
// size <= 0 selects the default size
func (queue *BroadcastQueue) Chan(size int) <-chan Message {
	if size <= 0 {
		size = defaultQueueSize
	}
	c := make(chan Message, size)

	queue.Lock()
	queue.listeners = append(queue.listeners, c)
	queue.Unlock()

	return c
}

// Release - close and remove all listeners
func (queue *BroadcastQueue) Release() {
	queue.Lock()
	defer queue.Unlock()

	for _, listener := range queue.listeners {
		close(listener)
	}
	queue.listeners = nil
}

// Dropped - count of messages missed by full listeners
func (queue *BroadcastQueue) Dropped() uint64 {
	return atomic.LoadUint64(&queue.dropped)
}
