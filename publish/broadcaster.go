// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package publish

import (
	"time"

	zmq "github.com/pebbe/zmq4"

	"github.com/bitmark-inc/claimd/messagebus"
	"github.com/bitmark-inc/logger"
)

const (
	publisherType = zmq.PUB
	zapDomain     = "claim-publish"
	queueSize     = 1000
	heartbeatTime = 60 * time.Second
	heartbeat     = "heart"
)

// Publisher - broadcasts bus messages to subscribers
type Publisher struct {
	log     *logger.L
	chain   string
	items   <-chan messagebus.Message
	socket4 *zmq.Socket
	socket6 *zmq.Socket
}

// Frames - a message as the frames sent on the wire
//
// chain ++ command ++ parameters...
func Frames(chain string, item messagebus.Message) [][]byte {
	frames := make([][]byte, 0, 2+len(item.Parameters))
	frames = append(frames, []byte(chain), []byte(item.Command))
	frames = append(frames, item.Parameters...)
	return frames
}

// MessageFromFrames - split received frames into chain and message
//
// the flag is false if there are too few frames
func MessageFromFrames(frames [][]byte) (string, messagebus.Message, bool) {
	if len(frames) < 2 {
		return "", messagebus.Message{}, false
	}
	m := messagebus.Message{
		Command:    string(frames[1]),
		Parameters: frames[2:],
	}
	return string(frames[0]), m, true
}

// IsHeartbeat - true for the periodic empty message
func IsHeartbeat(m messagebus.Message) bool {
	return heartbeat == m.Command
}

// Run - background process: forward queue messages until shutdown
func (p *Publisher) Run(args interface{}, shutdown <-chan struct{}) {

	log := p.log

	log.Info("starting…")

	delay := time.After(heartbeatTime)
loop:
	for {
		log.Debug("waiting…")

		select {
		case <-shutdown:
			break loop
		case <-delay:
			delay = time.After(heartbeatTime)
			p.send(messagebus.Message{Command: heartbeat})
		case item, ok := <-p.items:
			if !ok {
				break loop
			}
			p.send(item)
		}
	}
	log.Info("shutting down…")

	if nil != p.socket4 {
		p.socket4.Close()
	}
	if nil != p.socket6 {
		p.socket6.Close()
	}

	log.Info("stopped")
}

// send to both sockets
func (p *Publisher) send(item messagebus.Message) {
	frames := Frames(p.chain, item)
	p.log.Debugf("publish: %q  parameters: %d", item.Command, len(item.Parameters))

	for _, socket := range []*zmq.Socket{p.socket4, p.socket6} {
		if nil == socket {
			continue
		}
		err := sendFrames(socket, frames)
		if nil != err {
			p.log.Errorf("publish: %q  error: %s", item.Command, err)
		}
	}
}

func sendFrames(socket *zmq.Socket, frames [][]byte) error {
	last := len(frames) - 1
	for i, f := range frames {
		flag := zmq.SNDMORE
		if i == last {
			flag = 0
		}
		_, err := socket.SendBytes(f, flag)
		if nil != err {
			return err
		}
	}
	return nil
}
