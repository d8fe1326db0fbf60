// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/urfave/cli"

	"github.com/bitmark-inc/claimd/chain"
	"github.com/bitmark-inc/claimd/command/claim-cli/configuration"
)

type metadata struct {
	file    string
	network string
	config  *configuration.Configuration
	save    bool
	testnet bool
	verbose bool
	e       io.Writer
	w       io.Writer
}

// indented JSON on the command output
func (m *metadata) printJSON(message interface{}) error {
	b, err := json.MarshalIndent(message, "", "  ")
	if nil != err {
		return err
	}
	_, err = fmt.Fprintf(m.w, "%s\n", b)
	return err
}

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

func main() {
	app := newApp(os.Stdout, os.Stderr)
	err := app.Run(os.Args)
	if nil != err {
		fmt.Fprintf(app.ErrWriter, "terminated with error: %s\n", err)
		os.Exit(1)
	}
}

func newApp(w io.Writer, e io.Writer) *cli.App {

	app := cli.NewApp()
	app.Name = "claim-cli"
	app.Usage = "sign claim requests for claimd"
	app.Version = version
	app.HideVersion = true
	app.Metadata = make(map[string]interface{})

	app.Writer = w
	app.ErrWriter = e

	fingerprintFlags := []cli.Flag{
		cli.StringFlag{
			Name:  "fingerprint, f",
			Value: "",
			Usage: "+hex fingerprint `HEX`",
		},
		cli.StringFlag{
			Name:  "file, F",
			Value: "",
			Usage: "+fingerprint the contents of `FILE`",
		},
		cli.DurationFlag{
			Name:  "wait, W",
			Value: 0,
			Usage: " wait up to `DURATION` for the result file",
		},
	}

	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "verbose, v",
			Usage: " verbose result",
		},
		cli.StringFlag{
			Name:  "network, n",
			Value: chain.Testing,
			Usage: " claimd `NETWORK` [live|testing|local]",
		},
		cli.StringFlag{
			Name:   "config-dir, C",
			Value:  "",
			Usage:  " configuration `DIR` [default $XDG_CONFIG_HOME]",
			EnvVar: "XDG_CONFIG_HOME",
		},
		cli.StringFlag{
			Name:  "identity, i",
			Value: "",
			Usage: " identity `NAME` [default identity]",
		},
		cli.StringFlag{
			Name:  "password, p",
			Value: "",
			Usage: " identity `PASSWORD`",
		},
		cli.StringFlag{
			Name:  "use-agent, u",
			Value: "",
			Usage: " executable program that returns the password `EXE`",
		},
		cli.BoolFlag{
			Name:  "zero-agent-cache, z",
			Usage: " force re-entry of agent password",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:      "generate",
			Usage:     "generate key pair, will not store in config file",
			ArgsUsage: "\n   (* = required)",
			Flags:     []cli.Flag{},
			Action:    runGenerate,
		},
		{
			Name:      "setup",
			Usage:     "initialise claim-cli configuration",
			ArgsUsage: "\n   (* = required, + = select one)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "spool, s",
					Value: "",
					Usage: "*claimd spool `DIR` for request files",
				},
				cli.StringFlag{
					Name:  "connect, c",
					Value: "",
					Usage: " claimd event publisher `HOST:PORT`",
				},
				cli.StringFlag{
					Name:  "server-key, k",
					Value: "",
					Usage: " claimd publisher public key `FILE`",
				},
				cli.StringFlag{
					Name:  "description, d",
					Value: "",
					Usage: "*identity description `STRING`",
				},
				cli.StringFlag{
					Name:  "seed, S",
					Value: "",
					Usage: "+using existing `SEED`",
				},
				cli.BoolFlag{
					Name:  "new, N",
					Usage: "+generate a new seed",
				},
			},
			Action: runSetup,
		},
		{
			Name:      "add",
			Usage:     "add a new identity to config file",
			ArgsUsage: "\n   (* = required, + = select one)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "description, d",
					Value: "",
					Usage: "*identity description `STRING`",
				},
				cli.StringFlag{
					Name:  "seed, S",
					Value: "",
					Usage: "+using existing `SEED`",
				},
				cli.BoolFlag{
					Name:  "new, N",
					Usage: "+generate a new seed",
				},
				cli.StringFlag{
					Name:  "account, a",
					Value: "",
					Usage: "+receive only `ACCOUNT`",
				},
			},
			Action: runAdd,
		},
		{
			Name:   "accounts",
			Usage:  "display the identities in the config file",
			Action: runAccounts,
		},
		{
			Name:   "password",
			Usage:  "change an identity's password",
			Action: runChangePassword,
		},
		{
			Name:      "fingerprint",
			Usage:     "fingerprint a file",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "file, F",
					Value: "",
					Usage: "*`FILE` of data to fingerprint",
				},
			},
			Action: runFingerprint,
		},
		{
			Name:      "create",
			Usage:     "claim a fingerprint",
			ArgsUsage: "\n   (* = required, + = select one)",
			Flags:     fingerprintFlags,
			Action:    runCreate,
		},
		{
			Name:      "revoke",
			Usage:     "give up a claim",
			ArgsUsage: "\n   (* = required, + = select one)",
			Flags:     fingerprintFlags,
			Action:    runRevoke,
		},
		{
			Name:      "transfer",
			Usage:     "pass a claim to another account",
			ArgsUsage: "\n   (* = required, + = select one)",
			Flags: append([]cli.Flag{
				cli.StringFlag{
					Name:  "receiver, r",
					Value: "",
					Usage: "*identity name or `ACCOUNT` to receive the claim",
				},
			}, fingerprintFlags...),
			Action: runTransfer,
		},
		{
			Name:      "watch",
			Usage:     "display claim events as they are published",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "connect, c",
					Value: "",
					Usage: " claimd event publisher `HOST:PORT` [default from config]",
				},
				cli.StringFlag{
					Name:  "server-key, k",
					Value: "",
					Usage: " publisher public key `FILE` [default from config]",
				},
				cli.IntFlag{
					Name:  "count",
					Value: 0,
					Usage: " stop after `COUNT` events, zero is unlimited",
				},
			},
			Action: runWatch,
		},
		{
			Name:  "version",
			Usage: "display claim-cli version",
			Action: func(c *cli.Context) error {
				fmt.Fprintf(c.App.Writer, "%s\n", version)
				return nil
			},
		},
	}

	// read the configuration
	app.Before = func(c *cli.Context) error {

		e := c.App.ErrWriter
		w := c.App.Writer
		verbose := c.GlobalBool("verbose")

		// to suppress reading config file if certain commands
		command := c.Args().Get(0)
		switch command {
		case "", "help", "h", "version":
			return nil
		}

		network, err := checkNetwork(c.GlobalString("network"))
		if nil != err {
			return err
		}
		testnet := chain.IsTesting(network)

		p := c.GlobalString("config-dir")
		if "" == p {
			return fmt.Errorf("XDG_CONFIG_HOME environment is not set")
		}
		dir, err := checkFileExists(p)
		if nil != err {
			return err
		}
		if !dir {
			return fmt.Errorf("not a directory: %q", p)
		}
		file := filepath.Join(p, app.Name, network+"-"+app.Name+".json")

		if verbose {
			fmt.Fprintf(e, "file: %q\n", file)
		}

		switch command {
		case "generate", "fingerprint":
			c.App.Metadata["config"] = &metadata{
				file:    file,
				network: network,
				testnet: testnet,
				verbose: verbose,
				e:       e,
				w:       w,
			}

		case "setup":
			// do not run setup if there is an existing configuration
			if _, err := checkFileExists(file); nil == err {
				return fmt.Errorf("not overwriting existing configuration: %q", file)
			}

			c.App.Metadata["config"] = &metadata{
				file:    file,
				network: network,
				save:    false,
				testnet: testnet,
				verbose: verbose,
				e:       e,
				w:       w,
			}

		default:
			if verbose {
				fmt.Fprintf(e, "reading config file: %s\n", file)
			}

			config, err := configuration.Load(file)
			if nil != err {
				return err
			}
			if config.TestNet != testnet {
				return fmt.Errorf("configuration: %q is not for network: %s", file, network)
			}

			c.App.Metadata["config"] = &metadata{
				file:    file,
				network: network,
				config:  config,
				testnet: config.TestNet,
				save:    false,
				verbose: verbose,
				e:       e,
				w:       w,
			}
		}

		return nil
	}

	// update the configuration if required
	app.After = func(c *cli.Context) error {
		e := c.App.ErrWriter
		m, ok := c.App.Metadata["config"].(*metadata)
		if !ok {
			return nil
		}
		if m.save {
			if m.verbose {
				fmt.Fprintf(e, "updating config file: %s\n", m.file)
			}
			return configuration.Save(m.file, m.config)
		}
		return nil
	}

	return app
}
