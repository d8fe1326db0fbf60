// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/bitmark-inc/claimd/account"
	"github.com/bitmark-inc/claimd/claim"
	"github.com/bitmark-inc/claimd/fault"
	"github.com/bitmark-inc/claimd/fingerprint"
	"github.com/bitmark-inc/claimd/zmqutil"
	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/logger"
)

const (
	publishPublicKeyFilename  = "publish.public"
	publishPrivateKeyFilename = "publish.private"

	defaultListCount = 20
)

// setup command handler
//
// commands that run to create key files these commands cannot
// access any internal database or states or the configuration file
func processSetupCommand(out io.Writer, program string, arguments []string) bool {

	command := "help"
	if len(arguments) > 0 {
		command = arguments[0]
		arguments = arguments[1:]
	}

	switch command {
	case "gen-publish-keys", "publish":
		publicKeyFilename := getFilenameWithDirectory(arguments, publishPublicKeyFilename)
		privateKeyFilename := getFilenameWithDirectory(arguments, publishPrivateKeyFilename)
		err := zmqutil.MakeKeyPair(publicKeyFilename, privateKeyFilename)
		if nil != err {
			fmt.Fprintf(out, "generate private key: %q and public key: %q error: %s\n", privateKeyFilename, publicKeyFilename, err)
			exitwithstatus.Exit(1)
		}
		fmt.Fprintf(out, "generated private key: %q and public key: %q\n", privateKeyFilename, publicKeyFilename)

	case "start", "run":
		return false // continue processing

	case "show", "list", "ls", "height", "apply":
		return false // defer processing until database is loaded

	case "config-test", "cfg":
		return false

	case "version", "v":
		fmt.Fprintf(out, "%s\n", version)

	default:
		switch command {
		case "help", "h", "?":
		case "", " ":
			fmt.Fprintf(out, "error: missing command\n")
		default:
			fmt.Fprintf(out, "error: no such command: %q\n", command)
		}
		fmt.Fprintf(out, "usage: %s [--help] [--verbose] [--quiet] --config-file=FILE [[command|help] arguments...]\n", program)

		fmt.Fprintf(out, "supported commands:\n\n")
		fmt.Fprintf(out, "  help                       (h)      - display this message\n\n")
		fmt.Fprintf(out, "  version                    (v)      - display version string\n\n")

		fmt.Fprintf(out, "  gen-publish-keys [DIR]     (publish) - create private key in: %q\n", "DIR/"+publishPrivateKeyFilename)
		fmt.Fprintf(out, "                                        and the public key in: %q\n", "DIR/"+publishPublicKeyFilename)
		fmt.Fprintf(out, "\n")

		fmt.Fprintf(out, "  start                      (run)    - just run the program, same as no arguments\n")
		fmt.Fprintf(out, "                                        for convenience when passing script arguments\n")
		fmt.Fprintf(out, "\n")

		fmt.Fprintf(out, "  config-test                (cfg)    - just check the configuration file\n")
		fmt.Fprintf(out, "\n")

		fmt.Fprintf(out, "  show FINGERPRINT                    - display the claim on a hex fingerprint\n")
		fmt.Fprintf(out, "\n")

		fmt.Fprintf(out, "  list ACCOUNT [START [COUNT]] (ls)   - display the claims owned by an account\n")
		fmt.Fprintf(out, "\n")

		fmt.Fprintf(out, "  height                              - display the current block height\n")
		fmt.Fprintf(out, "\n")

		fmt.Fprintf(out, "  apply FILE...                       - apply request files, one block per file\n")
		fmt.Fprintf(out, "\n")
	}

	return true
}

// configuration command handler
//
// commands that only need the configuration
func processConfigCommand(out io.Writer, arguments []string, options *Configuration) bool {

	command := "help"
	if len(arguments) > 0 {
		command = arguments[0]
	}

	switch command {
	case "config-test", "cfg":
		fmt.Fprintf(out, "\n\nconfiguration:\n")
		printJSON(out, options)
		return true

	default:
		return false
	}
}

// data command handler
//
// the internal database is open
func processDataCommand(out io.Writer, log *logger.L, arguments []string, n *node) (bool, error) {

	command := "help"
	if len(arguments) > 0 {
		command = arguments[0]
		arguments = arguments[1:]
	}

	switch command {
	case "show":
		if 1 != len(arguments) {
			return true, fault.MissingParameters
		}
		fp, err := fingerprint.FromHex(arguments[0])
		if nil != err {
			return true, err
		}
		c, found := n.registry.Get(fp)
		if !found {
			return true, fault.ClaimNotFound
		}
		printJSON(out, c)

	case "list", "ls":
		if len(arguments) < 1 || len(arguments) > 3 {
			return true, fault.MissingParameters
		}
		owner, err := account.AccountFromBase58(arguments[0])
		if nil != err {
			return true, err
		}
		start := uint64(0)
		if len(arguments) > 1 {
			start, err = strconv.ParseUint(arguments[1], 10, 64)
			if nil != err {
				return true, fault.InvalidCursor
			}
		}
		count := defaultListCount
		if len(arguments) > 2 {
			count, err = strconv.Atoi(arguments[2])
			if nil != err {
				return true, fault.InvalidCount
			}
		}

		claims, next, err := n.registry.ListFor(owner, start, count)
		if nil != err {
			return true, err
		}
		printJSON(out, struct {
			Claims []claim.Claim `json:"claims"`
			Next   uint64        `json:"next,string"`
		}{
			Claims: claims,
			Next:   next,
		})

	case "height":
		printJSON(out, struct {
			Height uint64 `json:"height,string"`
		}{
			Height: n.header.Height(),
		})

	case "apply":
		if 0 == len(arguments) {
			return true, fault.MissingParameters
		}
		for _, name := range arguments {
			log.Infof("apply: %q", name)
			results, err := applyFile(n.sequencer, name)
			if nil != err {
				return true, err
			}
			printJSON(out, resultFile{Results: results})
		}

	default:
		return false, nil
	}

	return true, nil
}

// get the working directory; if not set in the arguments
// it's set to the current directory
func getFilenameWithDirectory(arguments []string, name string) string {
	dir := "."
	if len(arguments) >= 1 {
		dir = arguments[0]
	}

	return filepath.Join(dir, name)
}

func printJSON(out io.Writer, data interface{}) {
	b, err := json.MarshalIndent(data, "", "  ")
	if nil != err {
		fmt.Fprintf(out, "error: %s\n", err)
		return
	}
	fmt.Fprintf(out, "%s\n", b)
}
