// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

// GenericError - error base
type GenericError string

// to allow for different classes of errors
type AuthenticationError GenericError
type ExistsError GenericError
type InvalidError GenericError
type LengthError GenericError
type NotFoundError GenericError
type PermissionError GenericError
type ProcessError GenericError
type RecordError GenericError

// common errors - keep in alphabetic order
var (
	AlreadyInitialised        = ExistsError("already initialised")
	CannotDecodeAccount       = RecordError("cannot decode account")
	CannotDecodePrivateKey    = RecordError("cannot decode private key")
	CannotDecodeSeed          = RecordError("cannot decode seed")
	ChecksumMismatch          = ProcessError("checksum mismatch")
	ClaimAlreadyExists        = ExistsError("claim already exists")
	ClaimNotFound             = NotFoundError("claim not found")
	ConfigurationNotTable     = InvalidError("configuration did not return a table")
	CryptoFailed              = ProcessError("encryption failed")
	DatabaseIsInconsistent    = ProcessError("database is inconsistent")
	DatabaseVersionTooNew     = ProcessError("database version is newer than this program")
	EmptyRequestFile          = InvalidError("request file contains no requests")
	IdentityNameAlreadyExists = ExistsError("identity name already exists")
	IdentityNameNotFound      = NotFoundError("identity name not found")
	IncompatibleDatabase      = RecordError("incompatible database version record")
	IncompatibleOptions       = InvalidError("incompatible options")
	InvalidChain              = InvalidError("invalid chain")
	InvalidCount              = InvalidError("invalid count")
	InvalidCursor             = InvalidError("invalid cursor")
	InvalidFingerprint        = InvalidError("invalid fingerprint")
	InvalidIPAddress          = InvalidError("invalid IP address")
	InvalidKeyLength          = InvalidError("invalid key length")
	InvalidKeyType            = InvalidError("invalid key type")
	InvalidOperation          = InvalidError("invalid operation")
	InvalidPassword           = InvalidError("invalid password")
	InvalidPasswordLength     = InvalidError("password must be at least 8 characters")
	InvalidPortNumber         = InvalidError("invalid port number")
	InvalidPrivateKeyFile     = InvalidError("invalid private key file")
	InvalidPublicKeyFile      = InvalidError("invalid public key file")
	InvalidSaltLength         = InvalidError("invalid salt length")
	InvalidSeedHeader         = InvalidError("invalid seed header")
	InvalidSeedLength         = InvalidError("invalid seed length")
	InvalidSignature          = InvalidError("invalid signature")
	InvalidStructPointer      = InvalidError("invalid struct pointer")
	KeyFileAlreadyExists      = ExistsError("key file already exists")
	MissingIdentity           = InvalidError("missing identity")
	MissingParameters         = InvalidError("missing parameters")
	NotClaimOwner             = PermissionError("not the owner of the claim")
	NotConnected              = ProcessError("not connected")
	NotInitialised            = NotFoundError("not initialised")
	NotPrivateKey             = InvalidError("not a private key")
	NotPublicKey              = InvalidError("not a public key")
	PasswordMismatch          = InvalidError("passwords do not match")
	RateLimiting              = InvalidError("rate limiting")
	RecordTruncated           = LengthError("record truncated")
	RequestAlreadyApplied     = ExistsError("request already applied")
	SelfTransfer              = InvalidError("transfer to current owner")
	TransactionAlreadyInUse   = ProcessError("storage transaction already in use")
	TransactionNotInUse       = ProcessError("storage transaction not in use")
	Unauthenticated           = AuthenticationError("unauthenticated")
	UnexpectedNewOwner        = InvalidError("new owner is only allowed in a transfer")
	WrongNetworkForPublicKey  = InvalidError("wrong network for public key")
	WrongPassword             = AuthenticationError("wrong password")
)

// the error interface base method
func (e GenericError) Error() string { return string(e) }

// the error interface methods
func (e AuthenticationError) Error() string { return string(e) }
func (e ExistsError) Error() string         { return string(e) }
func (e InvalidError) Error() string        { return string(e) }
func (e LengthError) Error() string         { return string(e) }
func (e NotFoundError) Error() string       { return string(e) }
func (e PermissionError) Error() string     { return string(e) }
func (e ProcessError) Error() string        { return string(e) }
func (e RecordError) Error() string         { return string(e) }

// determine the class of an error
func IsErrAuthentication(e error) bool { _, ok := e.(AuthenticationError); return ok }
func IsErrExists(e error) bool         { _, ok := e.(ExistsError); return ok }
func IsErrInvalid(e error) bool        { _, ok := e.(InvalidError); return ok }
func IsErrLength(e error) bool         { _, ok := e.(LengthError); return ok }
func IsErrNotFound(e error) bool       { _, ok := e.(NotFoundError); return ok }
func IsErrPermission(e error) bool     { _, ok := e.(PermissionError); return ok }
func IsErrProcess(e error) bool        { _, ok := e.(ProcessError); return ok }
func IsErrRecord(e error) bool         { _, ok := e.(RecordError); return ok }
