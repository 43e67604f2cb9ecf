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

package client

import (
	"net"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polos-io/polos/chrono"
	"github.com/polos-io/polos/triggerproto"
)

// startEchoServer answers every one-byte request with a reply built
// from the current wall clock, counting how many times each opcode is
// seen. It is a minimal stand-in for trigger/server, good enough to
// exercise Client.Request's wire-level behavior without pulling in the
// server package (which would make this an integration rather than a
// unit test).
func startEchoServer(t *testing.T) (addr string, cb1Count, cb2Count *int) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	cb1, cb2 := 0, 0
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, triggerproto.BufferSize)
		for {
			n, err := conn.Read(buf)
			if err != nil || n == 0 {
				return
			}
			tRecv := chrono.WallNow()
			switch triggerproto.Opcode(buf[0]) {
			case triggerproto.CB1:
				cb1++
			case triggerproto.CB2:
				cb2++
			case triggerproto.Quit:
				return
			default:
				return
			}
			tCb := chrono.WallNow()
			reply := triggerproto.Reply{TRecv: tRecv, TCb: tCb, TTx: chrono.WallNow()}
			if _, err := conn.Write([]byte(reply.Format())); err != nil {
				return
			}
		}
	}()
	return ln.Addr().String(), &cb1, &cb2
}

func TestRequestComputesOffsetAndDelay(t *testing.T) {
	addr, _, cb2Count := startEchoServer(t)
	host, portStr, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	c, err := New("test-ntp-client", host, port, Config{})
	require.NoError(t, err)
	defer c.Close()

	result, err := c.Request(10)
	require.NoError(t, err)
	assert.Len(t, result.Trials, 10)
	assert.Equal(t, 10, *cb2Count)
	assert.Less(t, result.Delay, 1.0)
	assert.LessOrEqual(t, result.DelayMin, result.Delay)
	assert.LessOrEqual(t, result.Delay, result.DelayMax)
}

func TestRequestRejectsNonPositiveTrialCount(t *testing.T) {
	addr, _, _ := startEchoServer(t)
	host, portStr, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	c, err := New("test-ntp-client", host, port, Config{})
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Request(0)
	assert.Error(t, err)
}

func TestQualityExprOverridesDefaultRule(t *testing.T) {
	addr, _, _ := startEchoServer(t)
	host, portStr, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	c, err := New("test-ntp-client", host, port, Config{QualityExpr: "offset < 1.0"})
	require.NoError(t, err)
	defer c.Close()

	result, err := c.Request(5)
	require.NoError(t, err)
	assert.Equal(t, "Ok", result.Status.Kind.String())
}
