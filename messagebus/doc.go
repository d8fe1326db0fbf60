// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package messagebus - an in-process queue that fans messages out to
// any number of listeners
//
// a sender never blocks: a listener whose channel is full misses the
// message
package messagebus
