// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bitmark-inc/claimd/request"
	"github.com/bitmark-inc/claimd/sequencer"
	"github.com/bitmark-inc/logger"
)

const (
	requestSuffix = ".json"
	resultSuffix  = ".result.json"

	// a file that does not decode is retried until unmodified this long
	settleInterval = 2 * time.Second
)

// contents of a result file
type resultFile struct {
	Results []sequencer.Result `json:"results,omitempty"`
	Error   string             `json:"error,omitempty"`
}

// spool - apply request files as they appear in a directory
//
// writers should rename complete files into place; a file written
// directly is left alone while it fails to decode and is still being
// modified
type spool struct {
	log       *logger.L
	directory string
	sequencer *sequencer.Sequencer
	watcher   *fsnotify.Watcher
	settle    time.Duration
}

func newSpool(log *logger.L, directory string, seq *sequencer.Sequencer) (*spool, error) {
	watcher, err := fsnotify.NewWatcher()
	if nil != err {
		log.Errorf("new watcher error: %s", err)
		return nil, err
	}

	err = watcher.Add(directory)
	if nil != err {
		log.Errorf("watch: %q  error: %s", directory, err)
		watcher.Close()
		return nil, err
	}

	return &spool{
		log:       log,
		directory: directory,
		sequencer: seq,
		watcher:   watcher,
		settle:    settleInterval,
	}, nil
}

// Run - background process: pending files first, then each new one
func (s *spool) Run(args interface{}, shutdown <-chan struct{}) {

	log := s.log
	log.Infof("watching: %q", s.directory)

	s.processPending()

	rescan := time.NewTicker(s.settle)
	defer rescan.Stop()

loop:
	for {
		select {
		case <-shutdown:
			break loop

		case <-rescan.C:
			s.processPending()

		case event, ok := <-s.watcher.Events:
			if !ok {
				break loop
			}
			log.Debugf("file event: %v", event)
			if !isRequestEvent(event) {
				continue loop
			}
			s.process(event.Name)

		case err, ok := <-s.watcher.Errors:
			if !ok {
				break loop
			}
			log.Errorf("watcher error: %s", err)
		}
	}

	s.watcher.Close()
	log.Info("stopped")
}

// files left from before the watcher was started, in name order
func (s *spool) processPending() {
	infos, err := ioutil.ReadDir(s.directory)
	if nil != err {
		s.log.Errorf("read: %q  error: %s", s.directory, err)
		return
	}

	names := make([]string, 0, len(infos))
	for _, info := range infos {
		if info.Mode().IsRegular() && isRequestFile(info.Name()) {
			names = append(names, filepath.Join(s.directory, info.Name()))
		}
	}
	sort.Strings(names)

	for _, name := range names {
		s.process(name)
	}
}

// apply one file, write its result and remove it
func (s *spool) process(name string) {
	log := s.log

	requests, err := request.ReadFile(name)
	if os.IsNotExist(err) {
		log.Debugf("file: %q  already processed", name)
		return
	}
	if nil != err && s.unsettled(name) {
		log.Debugf("file: %q  incomplete: %s", name, err)
		return
	}

	var results []sequencer.Result
	if nil == err {
		results, err = s.sequencer.Apply(requests)
	}

	r := resultFile{
		Results: results,
	}
	if nil != err {
		log.Warnf("file: %q  error: %s", name, err)
		r.Error = err.Error()
	} else {
		log.Infof("file: %q  requests: %d", name, len(results))
	}

	err = writeResult(resultName(name), r)
	if nil != err {
		log.Errorf("file: %q  write result error: %s", name, err)
	}

	err = os.Remove(name)
	if nil != err {
		log.Errorf("file: %q  remove error: %s", name, err)
	}
}

// true while a file is younger than the settle interval
func (s *spool) unsettled(name string) bool {
	info, err := os.Stat(name)
	if nil != err {
		return false
	}
	return time.Since(info.ModTime()) < s.settle
}

// read a request file and apply it as one block
func applyFile(seq *sequencer.Sequencer, name string) ([]sequencer.Result, error) {
	requests, err := request.ReadFile(name)
	if nil != err {
		return nil, err
	}
	return seq.Apply(requests)
}

func writeResult(name string, r resultFile) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if nil != err {
		return err
	}
	return ioutil.WriteFile(name, append(data, '\n'), 0600)
}

// "a/create.json" -> "a/create.result.json"
func resultName(name string) string {
	return strings.TrimSuffix(name, requestSuffix) + resultSuffix
}

func isRequestFile(name string) bool {
	base := filepath.Base(name)
	return strings.HasSuffix(base, requestSuffix) &&
		!strings.HasSuffix(base, resultSuffix) &&
		!strings.HasPrefix(base, ".")
}

// a rename into place is a create, a direct writer also sends writes
func isRequestEvent(event fsnotify.Event) bool {
	if "" == event.Name {
		return false
	}
	return event.Op&(fsnotify.Create|fsnotify.Write) != 0 && isRequestFile(event.Name)
}
