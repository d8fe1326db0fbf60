// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package configuration

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/bitmark-inc/claimd/account"
	"github.com/bitmark-inc/claimd/fault"
)

// Configuration - configuration file data format
type Configuration struct {
	DefaultIdentity string              `json:"default_identity"`
	TestNet         bool                `json:"testnet"`
	Spool           string              `json:"spool"`
	Publisher       Publisher           `json:"publisher"`
	Identities      map[string]Identity `json:"identities"`
}

// Publisher - where the daemon broadcasts its events
type Publisher struct {
	Connect   string `json:"connect"`
	PublicKey string `json:"public_key"`
}

// Identity - mix of plain and encrypted data
type Identity struct {
	Description string `json:"description"`
	Account     string `json:"account"`
	Data        string `json:"data"`
	Salt        string `json:"salt"`
}

// Info - an identity without its encrypted data
type Info struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Account     string `json:"account"`
	CanSign     bool   `json:"can_sign"`
}

// Load - read the configuration
func Load(filename string) (*Configuration, error) {

	options := &Configuration{}

	err := readConfiguration(filename, options)
	if nil != err {
		return nil, err
	}
	if nil == options.Identities {
		options.Identities = make(map[string]Identity)
	}
	return options, nil
}

// generic JSON decoder
func readConfiguration(filename string, options interface{}) error {

	filename, err := filepath.Abs(filepath.Clean(filename))
	if nil != err {
		return err
	}

	f, err := os.Open(filename)
	if nil != err {
		return err
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	return dec.Decode(options)
}

// Identity - find identity for a given name
func (config *Configuration) Identity(name string) (*Identity, error) {
	id, ok := config.Identities[name]
	if !ok {
		return nil, fault.IdentityNameNotFound
	}

	return &id, nil
}

// Account - find identity for a given name and convert to an account
func (config *Configuration) Account(name string) (*account.Account, error) {
	id, err := config.Identity(name)
	if nil != err {
		return nil, err
	}

	return account.AccountFromBase58(id.Account)
}

// Private - find identity and decrypt its seed
func (config *Configuration) Private(password string, name string) (*Private, error) {
	id, err := config.Identity(name)
	if nil != err {
		return nil, err
	}

	return decryptIdentity(password, id)
}

// Infos - public view of all identities in name order
func (config *Configuration) Infos() []Info {
	infos := make([]Info, 0, len(config.Identities))
	for name, id := range config.Identities {
		infos = append(infos, Info{
			Name:        name,
			Description: id.Description,
			Account:     id.Account,
			CanSign:     "" != id.Data,
		})
	}
	sort.Slice(infos, func(i int, j int) bool {
		return infos[i].Name < infos[j].Name
	})
	return infos
}

// AddIdentity - store encrypted identity
func (config *Configuration) AddIdentity(name string, description string, seed string, password string) error {

	if _, ok := config.Identities[name]; ok {
		return fault.IdentityNameAlreadyExists
	}

	private, err := account.PrivateKeyFromBase58Seed(seed)
	if nil != err {
		return err
	}
	if private.IsTesting() != config.TestNet {
		return fault.WrongNetworkForPublicKey
	}

	identity, err := encryptIdentity(password, description, seed, private)
	if nil != err {
		return err
	}

	config.Identities[name] = *identity
	return nil
}

// AddReceiveOnlyIdentity - store public-only identity
func (config *Configuration) AddReceiveOnlyIdentity(name string, description string, acc string) error {

	if _, ok := config.Identities[name]; ok {
		return fault.IdentityNameAlreadyExists
	}

	a, err := account.AccountFromBase58(acc)
	if nil != err {
		return err
	}
	if a.IsTesting() != config.TestNet {
		return fault.WrongNetworkForPublicKey
	}

	config.Identities[name] = Identity{
		Description: description,
		Account:     acc,
	}

	return nil
}

// ChangePassword - re-encrypt an identity's seed
func (config *Configuration) ChangePassword(name string, oldPassword string, newPassword string) error {
	private, err := config.Private(oldPassword, name)
	if nil != err {
		return err
	}

	identity, err := encryptIdentity(newPassword, private.Description, private.Seed, private.PrivateKey)
	if nil != err {
		return err
	}

	config.Identities[name] = *identity
	return nil
}
