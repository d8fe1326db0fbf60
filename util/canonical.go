// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util

import (
	"net"
	"strconv"
	"strings"

	"github.com/bitmark-inc/claimd/fault"
)

// Connection - a validated IP address and port
type Connection struct {
	ip   net.IP
	port int
}

// CanonicalIPandPort - make the IP:Port canonical
//
// examples:
//
//	IPv4:  127.0.0.1:1234
//	IPv6:  [::1]:1234
func CanonicalIPandPort(prefix string, hostPort string) (string, error) {
	c, err := NewConnection(hostPort)
	if nil != err {
		return "", err
	}
	s, _ := c.CanonicalIPandPort(prefix)
	return s, nil
}

// NewConnection - parse and validate a host:port string
func NewConnection(hostPort string) (*Connection, error) {
	host, port, err := net.SplitHostPort(strings.TrimSpace(hostPort))
	if nil != err {
		return nil, fault.InvalidIPAddress
	}

	IP := net.ParseIP(strings.Trim(host, " "))
	if nil == IP {
		return nil, fault.InvalidIPAddress
	}

	numericPort, err := strconv.Atoi(strings.Trim(port, " "))
	if nil != err {
		return nil, fault.InvalidPortNumber
	}
	if numericPort < 1 || numericPort > 65535 {
		return nil, fault.InvalidPortNumber
	}
	return &Connection{
		ip:   IP,
		port: numericPort,
	}, nil
}

// NewConnections - convert a list of host:port strings
func NewConnections(hostPort []string) ([]*Connection, error) {
	if 0 == len(hostPort) {
		return nil, fault.MissingParameters
	}
	c := make([]*Connection, len(hostPort))
	for i, hp := range hostPort {
		connection, err := NewConnection(hp)
		if nil != err {
			return nil, err
		}
		c[i] = connection
	}
	return c, nil
}

// CanonicalIPandPort - the connection as a string with a prefix
// such as "tcp://" and a flag that is true for IPv6
func (conn *Connection) CanonicalIPandPort(prefix string) (string, bool) {
	port := strconv.Itoa(conn.port)
	if nil != conn.ip.To4() {
		return prefix + conn.ip.String() + ":" + port, false
	}
	return prefix + "[" + conn.ip.String() + "]:" + port, true
}
