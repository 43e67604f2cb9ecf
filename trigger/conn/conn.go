/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package conn factors out the connection lifecycle and status tracking
// shared by every trigger-protocol client: socket ownership, status
// transitions, and a short per-connection fingerprint for logs.
// client.Client and client.TriggerClient both hold one of these by
// composition rather than inheriting from a common client base.
package conn

import (
	"encoding/binary"
	"fmt"
	"net"
	"time"

	"github.com/cespare/xxhash"
	log "github.com/sirupsen/logrus"

	"github.com/polos-io/polos/status"
	"github.com/polos-io/polos/triggerproto"
)

// Conn is a TCP connection to a trigger server, plus its status.
type Conn struct {
	Name   string
	Status *status.AtomicHandler

	netConn net.Conn
	id      uint64
}

// New creates an unconnected Conn. Status starts at ERROR/"Not connected".
func New(name string) *Conn {
	return &Conn{
		Name:   name,
		Status: status.NewAtomicHandler(status.Error, "Not connected"),
	}
}

// Dial connects to host:port.
func (c *Conn) Dial(host string, port int) error {
	log.Infof("%s connecting to %s:%d...", c.Name, host, port)
	nc, err := net.Dial("tcp", fmt.Sprintf("%s:%d", host, port))
	if err != nil {
		return fmt.Errorf("conn: dial %s:%d: %w", host, port, err)
	}
	c.netConn = nc
	c.id = fingerprint(nc)
	log.Infof("%s connected to %s:%d [%016x]", c.Name, host, port, c.id)
	c.Status.SetStatus(status.Warning, fmt.Sprintf("Connected to %s:%d, but no query yet", host, port))
	return nil
}

// ID returns a short fingerprint of this connection, for log correlation.
func (c *Conn) ID() uint64 { return c.id }

// fingerprint folds the local/remote address pair into a stable id, so
// a log line can be correlated to "which connection" without printing
// full addresses at every line.
func fingerprint(nc net.Conn) uint64 {
	h := xxhash.New()
	_, _ = h.Write([]byte(nc.LocalAddr().String()))
	_, _ = h.Write([]byte(nc.RemoteAddr().String()))
	var nowBuf [8]byte
	binary.BigEndian.PutUint64(nowBuf[:], uint64(time.Now().UnixNano()))
	_, _ = h.Write(nowBuf[:])
	return h.Sum64()
}

// Send writes b in full.
func (c *Conn) Send(b []byte) error {
	_, err := c.netConn.Write(b)
	if err != nil {
		return fmt.Errorf("conn: send: %w", err)
	}
	return nil
}

// RecvWithTimeout reads up to triggerproto.BufferSize bytes, failing if
// no data arrives within timeout.
func (c *Conn) RecvWithTimeout(timeout time.Duration) ([]byte, error) {
	if err := c.netConn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return nil, fmt.Errorf("conn: set read deadline: %w", err)
	}
	buf := make([]byte, triggerproto.BufferSize)
	n, err := c.netConn.Read(buf)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return nil, ErrTimeout
		}
		return nil, fmt.Errorf("conn: recv: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("conn: recv: connection closed")
	}
	return buf[:n], nil
}

// Close closes the underlying socket and marks the connection closed.
func (c *Conn) Close() error {
	if c.netConn == nil {
		return nil
	}
	log.Infof("%s closing connection [%016x]", c.Name, c.id)
	err := c.netConn.Close()
	c.netConn = nil
	c.Status.SetStatus(status.Error, "Closed")
	if err != nil {
		return fmt.Errorf("conn: close: %w", err)
	}
	return nil
}

// ErrTimeout is returned by RecvWithTimeout when the deadline elapses
// before any reply arrives - spec's "Timeout during waiting for server answer".
var ErrTimeout = fmt.Errorf("timeout during waiting for server answer")
