// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"github.com/urfave/cli"

	"github.com/bitmark-inc/claimd/command/claim-cli/configuration"
)

func runAccounts(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	info := struct {
		DefaultIdentity string                  `json:"default_identity"`
		TestNet         bool                    `json:"testnet"`
		Spool           string                  `json:"spool"`
		Publisher       configuration.Publisher `json:"publisher"`
		Identities      []configuration.Info    `json:"identities"`
	}{
		DefaultIdentity: m.config.DefaultIdentity,
		TestNet:         m.config.TestNet,
		Spool:           m.config.Spool,
		Publisher:       m.config.Publisher,
		Identities:      m.config.Infos(),
	}

	return m.printJSON(info)
}
