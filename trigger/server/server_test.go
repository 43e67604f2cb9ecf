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

package server

import (
	"context"
	"fmt"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/polos-io/polos/health"
	"github.com/polos-io/polos/status"
	"github.com/polos-io/polos/triggerproto"
)

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

func TestPrimaryCallbackInvokedOncePerRequest(t *testing.T) {
	var calls int32
	port := freePort(t)
	s := New(Config{
		Port:        port,
		CB1:         func() { atomic.AddInt32(&calls, 1) },
		RecvTimeout: 200 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx) }()
	waitListening(t, port)

	conn, err := net.Dial("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	require.NoError(t, err)
	defer conn.Close()

	const n = 5
	for i := 0; i < n; i++ {
		_, err := conn.Write([]byte{byte(triggerproto.CB1)})
		require.NoError(t, err)
		buf := make([]byte, triggerproto.BufferSize)
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
		nr, err := conn.Read(buf)
		require.NoError(t, err)
		_, err = triggerproto.ParseReply(string(buf[:nr]))
		require.NoError(t, err)
	}

	assert.Equal(t, int32(n), atomic.LoadInt32(&calls))
}

func TestBadOpcodeTerminatesConnectionWithError(t *testing.T) {
	port := freePort(t)
	s := New(Config{Port: port, RecvTimeout: 200 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = s.Run(ctx) }()
	waitListening(t, port)

	conn, err := net.Dial("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte{'9'})
	require.NoError(t, err)

	buf := make([]byte, triggerproto.BufferSize)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, err = conn.Read(buf)
	assert.Error(t, err) // server closed the connection without replying

	time.Sleep(100 * time.Millisecond)
	kind, msg := s.cfg.Status.GetStatus()
	assert.Equal(t, status.Error, kind)
	assert.Contains(t, msg, "Finished")
}

func TestQuitByteEndsSessionCleanly(t *testing.T) {
	port := freePort(t)
	s := New(Config{Port: port, RecvTimeout: 200 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = s.Run(ctx) }()
	waitListening(t, port)

	conn, err := net.Dial("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	require.NoError(t, err)
	_, err = conn.Write([]byte{byte(triggerproto.Quit)})
	require.NoError(t, err)
	conn.Close()

	time.Sleep(100 * time.Millisecond)
	kind, msg := s.cfg.Status.GetStatus()
	assert.Equal(t, status.Error, kind)
	assert.Contains(t, msg, "Finished")
}

func TestHealthLoopUsesMockProber(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockProber := NewMockProber(ctrl)
	mockProber.EXPECT().Probe().Return(status.Status{Kind: status.Warning, Message: "degraded"}).MinTimes(1)
	mockProber.EXPECT().Name().Return("mock").AnyTimes()

	port := freePort(t)
	s := New(Config{
		Port:         port,
		RecvTimeout:  200 * time.Millisecond,
		HealthProbes: []health.Prober{mockProber},
		HealthPeriod: 20 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = s.Run(ctx) }()
	waitListening(t, port)
	time.Sleep(60 * time.Millisecond)
	cancel()
}

func waitListening(t *testing.T, port int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", fmt.Sprintf("127.0.0.1:%d", port), 50*time.Millisecond)
		if err == nil {
			conn.Close()
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("server never started listening on port %d", port)
}
