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
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"

	"github.com/polos-io/polos/chrono"
	"github.com/polos-io/polos/status"
	"github.com/polos-io/polos/trigger/conn"
	"github.com/polos-io/polos/triggerproto"
)

// warmupMeanWindow is how many of the trailing completed warm-up trials
// feed estimated_delay.
const warmupMeanWindow = 9

// TriggerResult is the outcome of one TriggerClient.Fire call.
type TriggerResult struct {
	RemoteTriggerSentAt float64
	EstimatedDelay      float64
	TriggerDelayError   float64
	OneWayDelayStd      float64
	Delays              []float64
}

// TriggerClient runs the synchronized-fire algorithm: N-1 warm-up trials
// to estimate one-way delay, then a final trial whose local callback is
// scheduled, via a busy-wait, to land at the same wall-clock instant as
// the server's primary callback.
type TriggerClient struct {
	Conn *conn.Conn
}

// NewTriggerClient dials host:port for a TriggerClient.
func NewTriggerClient(name, host string, port int) (*TriggerClient, error) {
	c := &TriggerClient{Conn: conn.New(name)}
	if err := c.Conn.Dial(host, port); err != nil {
		return nil, err
	}
	return c, nil
}

// Close closes the underlying connection.
func (t *TriggerClient) Close() error { return t.Conn.Close() }

// Fire runs n trials (n ~ 100 in practice) and calls local exactly once,
// timed to coincide with the server's primary-callback invocation.
func (t *TriggerClient) Fire(n int, local func()) (TriggerResult, error) {
	if n < 2 {
		return TriggerResult{}, fmt.Errorf("trigger client: fire: n must be >= 2, got %d", n)
	}

	delays := make([]float64, n)
	var lastTOrig float64

	for i := 0; i < n-1; i++ {
		tOrig := chrono.WallNow()
		if err := t.Conn.Send([]byte{byte(triggerproto.CB2)}); err != nil {
			return TriggerResult{}, err
		}
		buf, err := t.Conn.RecvWithTimeout(recvTimeout)
		tDest := chrono.WallNow()
		if err != nil {
			return TriggerResult{}, fmt.Errorf("trigger client: warm-up trial %d: %w", i, err)
		}
		reply, err := triggerproto.ParseReply(string(buf))
		if err != nil {
			return TriggerResult{}, err
		}
		delays[i] = ((tDest - tOrig) - (reply.TTx - reply.TRecv)) / 2
		lastTOrig = tOrig
	}

	start := n - 1 - warmupMeanWindow
	if start < 0 {
		start = 0
	}
	estimatedDelay := mean(delays[start : n-1])
	log.Debugf("trigger client: estimated_delay=%.9fs from warm-up window [%d:%d)", estimatedDelay, start, n-1)

	tOrig := chrono.WallNow()
	if err := t.Conn.Send([]byte{byte(triggerproto.CB1)}); err != nil {
		return TriggerResult{}, err
	}
	tSend := chrono.WallNow()

	wait := estimatedDelay - (tSend - tOrig)
	monoDeadline := chrono.MonoNow() + wait
	chrono.SpinUntil(monoDeadline)
	local()

	buf, err := t.Conn.RecvWithTimeout(recvTimeout)
	tDest := chrono.WallNow()
	if err != nil {
		return TriggerResult{}, fmt.Errorf("trigger client: final trial: %w", err)
	}
	reply, err := triggerproto.ParseReply(string(buf))
	if err != nil {
		return TriggerResult{}, err
	}
	delays[n-1] = ((tDest - tOrig) - (reply.TTx - reply.TRecv)) / 2
	lastTOrig = tOrig

	result := TriggerResult{
		RemoteTriggerSentAt: lastTOrig,
		EstimatedDelay:      estimatedDelay,
		TriggerDelayError:   estimatedDelay - delays[n-1],
		OneWayDelayStd:      math.Sqrt(variance(delays)),
		Delays:              delays,
	}
	t.Conn.Status.SetStatus(status.OK, fmt.Sprintf("fired, trigger_delay_error=%.9fs", result.TriggerDelayError))
	return result, nil
}
