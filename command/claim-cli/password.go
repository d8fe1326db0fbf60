// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"golang.org/x/crypto/ssh/terminal"

	"github.com/bitmark-inc/claimd/fault"
)

const minimumPasswordLength = 8

// read a password from the controlling terminal
func readPassword(prompt string) (string, error) {
	tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if nil != err {
		return "", err
	}
	defer tty.Close()

	fmt.Fprint(tty, prompt)
	password, err := terminal.ReadPassword(int(tty.Fd()))
	fmt.Fprintln(tty)
	if nil != err {
		return "", err
	}
	return string(password), nil
}

// prompt twice for a new password
func promptNewPassword() (string, error) {
	password, err := readPassword("Set identity password(length >= 8): ")
	if nil != err {
		return "", err
	}

	if len(password) < minimumPasswordLength {
		return "", fault.InvalidPasswordLength
	}

	verifyPassword, err := readPassword("Verify password: ")
	if nil != err {
		return "", err
	}

	if password != verifyPassword {
		return "", fault.PasswordMismatch
	}

	return password, nil
}

func promptCheckPassword(name string) (string, error) {
	return readPassword("password for " + name + ": ")
}
