// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"io/ioutil"
	"os"
	"strings"

	"github.com/urfave/cli"

	"github.com/bitmark-inc/claimd/account"
	"github.com/bitmark-inc/claimd/chain"
	"github.com/bitmark-inc/claimd/command/claim-cli/configuration"
	"github.com/bitmark-inc/claimd/fault"
	"github.com/bitmark-inc/claimd/fingerprint"
	"github.com/bitmark-inc/claimd/keypair"
)

// errors specific to the command line
var (
	ErrRequiredDescription = fault.InvalidError("description is required")
	ErrRequiredFileName    = fault.InvalidError("file name is required")
	ErrRequiredFingerprint = fault.InvalidError("fingerprint or file is required")
	ErrRequiredIdentity    = fault.InvalidError("identity is required")
	ErrRequiredReceiver    = fault.InvalidError("receiver is required")
	ErrRequiredSeed        = fault.InvalidError("seed or new is required")
	ErrRequiredSpool       = fault.InvalidError("spool directory is required")
	ErrInvalidNetwork      = fault.InvalidError("invalid network")
	ErrNilPrivate          = fault.ProcessError("internal error: nil private key")
)

func checkNetwork(network string) (string, error) {
	switch strings.ToLower(network) {
	case chain.Live, "bitmark":
		return chain.Live, nil
	case chain.Testing, "test", "":
		return chain.Testing, nil
	case chain.Local, "regression":
		return chain.Local, nil
	default:
		return "", ErrInvalidNetwork
	}
}

// identity is required, but not check the config file
func checkName(name string, config *configuration.Configuration) (string, error) {
	if "" == name && nil != config {
		name = config.DefaultIdentity
	}
	if "" == name {
		return "", ErrRequiredIdentity
	}
	return name, nil
}

// description is required
func checkDescription(description string) (string, error) {
	if "" == description {
		return "", ErrRequiredDescription
	}
	return description, nil
}

// spool directory is required
func checkSpool(spool string) (string, error) {
	if "" == spool {
		return "", ErrRequiredSpool
	}
	return spool, nil
}

// check for non-blank file name
func checkFileName(fileName string) (string, error) {
	if "" == fileName {
		return "", ErrRequiredFileName
	}
	return fileName, nil
}

// existing seed on the correct network, or a new one
func checkSeed(seed string, new bool, testnet bool) (string, error) {
	if "" == seed {
		if !new {
			return "", ErrRequiredSeed
		}
		return keypair.NewSeed(testnet)
	}
	if new {
		return "", fault.IncompatibleOptions
	}

	privateKey, err := account.PrivateKeyFromBase58Seed(seed)
	if nil != err {
		return "", err
	}
	if privateKey.IsTesting() != testnet {
		return "", fault.WrongNetworkForPublicKey
	}
	return seed, nil
}

// a hex fingerprint or the fingerprint of a file's contents
func checkFingerprint(hexFingerprint string, fileName string) (fingerprint.Fingerprint, error) {
	if "" != hexFingerprint && "" != fileName {
		return nil, fault.IncompatibleOptions
	}

	var fp fingerprint.Fingerprint
	switch {
	case "" != hexFingerprint:
		var err error
		fp, err = fingerprint.FromHex(hexFingerprint)
		if nil != err {
			return nil, err
		}
	case "" != fileName:
		data, err := ioutil.ReadFile(fileName)
		if nil != err {
			return nil, err
		}
		fp = fingerprint.FromContent(data)
	default:
		return nil, ErrRequiredFingerprint
	}

	err := fp.Validate()
	if nil != err {
		return nil, err
	}
	return fp, nil
}

// an identity name from the config file or an account
func checkRecipient(c *cli.Context, name string, config *configuration.Configuration) (string, *account.Account, error) {
	receiver := c.String(name)
	if "" == receiver {
		return "", nil, ErrRequiredReceiver
	}

	acc, err := config.Account(receiver)
	if fault.IdentityNameNotFound == err {
		acc, err = account.AccountFromBase58(receiver)
	}
	if nil != err {
		return "", nil, err
	}
	if acc.IsTesting() != config.TestNet {
		return "", nil, fault.WrongNetworkForPublicKey
	}
	return receiver, acc, nil
}

// the signing key of an identity, asking for its password if necessary
func checkOwnerWithPasswordPrompt(name string, config *configuration.Configuration, c *cli.Context) (string, *account.PrivateKey, error) {
	name, err := checkName(name, config)
	if nil != err {
		return "", nil, err
	}

	// early check that the identity exists
	if _, err := config.Identity(name); nil != err {
		return "", nil, err
	}

	password := c.GlobalString("password")
	if "" == password {
		agent := c.GlobalString("use-agent")
		if "" != agent {
			password, err = passwordFromAgent(name, "sign claim request", agent, c.GlobalBool("zero-agent-cache"))
		} else {
			password, err = promptCheckPassword(name)
		}
		if nil != err {
			return "", nil, err
		}
	}

	private, err := config.Private(password, name)
	if nil != err {
		return "", nil, err
	}
	// just in case some internal breakage
	if nil == private || nil == private.PrivateKey {
		return "", nil, ErrNilPrivate
	}
	return name, private.PrivateKey, nil
}

// true if a directory, error if it does not exist
func checkFileExists(name string) (bool, error) {
	s, err := os.Stat(name)
	if nil != err {
		return false, err
	}
	return s.IsDir(), nil
}
