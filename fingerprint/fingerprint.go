// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package fingerprint - the opaque key that identifies a claim
//
// the bytes are not interpreted but the length must be 1 to 1024: an
// empty key has no hex text form, so request files and the command
// line could not name it
package fingerprint

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/sha3"

	"github.com/bitmark-inc/claimd/fault"
)

// limits on the length of a fingerprint
const (
	MinimumLength = 1
	MaximumLength = 1024
)

// version byte prefix of a content fingerprint
const contentVersion byte = 0x01

// Fingerprint - opaque byte string
//
// the registry never interprets the bytes, the text form is hex
type Fingerprint []byte

// New - copy a byte slice into a fingerprint
func New(b []byte) Fingerprint {
	fp := make(Fingerprint, len(b))
	copy(fp, b)
	return fp
}

// FromHex - decode a hex string
func FromHex(s string) (Fingerprint, error) {
	b, err := hex.DecodeString(s)
	if nil != err {
		return nil, fault.InvalidFingerprint
	}
	return Fingerprint(b), nil
}

// FromContent - fingerprint of some data: version byte ++ SHA3-512(data)
func FromContent(data []byte) Fingerprint {
	digest := sha3.Sum512(data)
	fp := make(Fingerprint, 0, 1+len(digest))
	fp = append(fp, contentVersion)
	return append(fp, digest[:]...)
}

// Validate - check the length limits
func (fp Fingerprint) Validate() error {
	if len(fp) < MinimumLength || len(fp) > MaximumLength {
		return fault.InvalidFingerprint
	}
	return nil
}

// Equal - byte for byte comparison
func (fp Fingerprint) Equal(other Fingerprint) bool {
	return bytes.Equal(fp, other)
}

// Bytes - the raw bytes
func (fp Fingerprint) Bytes() []byte {
	return fp
}

// String - hex string for use by the fmt package (for %s)
func (fp Fingerprint) String() string {
	return hex.EncodeToString(fp)
}

// GoString - for use by the fmt package (for %#v)
func (fp Fingerprint) GoString() string {
	return "<fingerprint:" + hex.EncodeToString(fp) + ">"
}

// MarshalText - convert fingerprint to hex text
func (fp Fingerprint) MarshalText() ([]byte, error) {
	size := hex.EncodedLen(len(fp))
	b := make([]byte, size)
	hex.Encode(b, fp)
	return b, nil
}

// UnmarshalText - convert hex text into a fingerprint
func (fp *Fingerprint) UnmarshalText(s []byte) error {
	buffer := make([]byte, hex.DecodedLen(len(s)))
	byteCount, err := hex.Decode(buffer, s)
	if nil != err {
		return fmt.Errorf("%s: %s", fault.InvalidFingerprint, err)
	}
	*fp = buffer[:byteCount]
	return nil
}
