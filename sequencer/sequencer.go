// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package sequencer

import (
	"sync"

	"golang.org/x/time/rate"

	"github.com/bitmark-inc/claimd/account"
	"github.com/bitmark-inc/claimd/fault"
	"github.com/bitmark-inc/claimd/fingerprint"
	"github.com/bitmark-inc/claimd/request"
	"github.com/bitmark-inc/logger"
)

// default intake limits
const (
	DefaultRateLimit = 200
	DefaultRateBurst = 100
)

// Registry - the operations a request can perform
type Registry interface {
	Create(*account.Account, fingerprint.Fingerprint) error
	Revoke(*account.Account, fingerprint.Fingerprint) error
	Transfer(*account.Account, fingerprint.Fingerprint, *account.Account) error
}

// Clock - starts a new block for each batch
type Clock interface {
	Advance() (uint64, error)
}

// Journal - consumes each verified request so it is applied at most once
type Journal interface {
	Record(*request.Request, uint64) error
}

// Result - outcome of one request
type Result struct {
	Operation   string                  `json:"operation"`
	Fingerprint fingerprint.Fingerprint `json:"fingerprint"`
	Requester   *account.Account        `json:"requester,omitempty"`
	Height      uint64                  `json:"height,string"`
	Error       string                  `json:"error,omitempty"`
	err         error
}

// Err - the error behind a failed result
func (r Result) Err() error {
	return r.err
}

// Sequencer - applies requests to the registry in a total order
type Sequencer struct {
	sync.Mutex

	log      *logger.L
	registry Registry
	clock    Clock
	journal  Journal
	limiter  *rate.Limiter
	testnet  bool
}

// New - create a sequencer
//
// a limit of zero or less disables rate limiting, a burst below one
// is raised to one
func New(log *logger.L, registry Registry, clock Clock, journal Journal, testnet bool, limit float64, burst int) *Sequencer {
	l := rate.Limit(limit)
	if limit <= 0 {
		l = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &Sequencer{
		log:      log,
		registry: registry,
		clock:    clock,
		journal:  journal,
		limiter:  rate.NewLimiter(l, burst),
		testnet:  testnet,
	}
}

// Apply - start a new block and apply the requests to it in order
//
// one result per request; the error is only set if nothing was applied
func (s *Sequencer) Apply(requests []request.Request) ([]Result, error) {
	if 0 == len(requests) {
		return nil, fault.EmptyRequestFile
	}

	s.Lock()
	defer s.Unlock()

	height, err := s.clock.Advance()
	if nil != err {
		s.log.Errorf("advance block error: %s", err)
		return nil, err
	}

	s.log.Infof("block: %d  requests: %d", height, len(requests))

	results := make([]Result, len(requests))
	for i := range requests {
		r := &requests[i]
		err := s.apply(r, height)

		results[i] = Result{
			Operation:   r.Operation.String(),
			Fingerprint: r.Fingerprint,
			Requester:   r.Requester,
			Height:      height,
			err:         err,
		}
		if nil != err {
			results[i].Error = err.Error()
			s.log.Debugf("block: %d  request: %d  %s: %x  error: %s", height, i, r.Operation, r.Fingerprint, err)
		}
	}
	return results, nil
}

// verify one request, consume its nonce and pass it to the registry
//
// the nonce is consumed even if the registry then rejects the request
func (s *Sequencer) apply(r *request.Request, height uint64) error {
	if !s.limiter.Allow() {
		return fault.RateLimiting
	}

	requester, err := request.Verify(r, s.testnet)
	if nil != err {
		return err
	}

	err = s.journal.Record(r, height)
	if nil != err {
		return err
	}

	switch r.Operation {
	case request.CreateOperation:
		return s.registry.Create(requester, r.Fingerprint)
	case request.RevokeOperation:
		return s.registry.Revoke(requester, r.Fingerprint)
	case request.TransferOperation:
		return s.registry.Transfer(requester, r.Fingerprint, r.NewOwner)
	default:
		return fault.InvalidOperation
	}
}
