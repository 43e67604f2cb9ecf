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

// Package client implements the two trigger-protocol clients: the plain
// NTP-style offset/delay estimator (Client) and the synchronized-fire
// trigger client (TriggerClient). Both hold a *conn.Conn by composition
// rather than sharing a base type.
package client

import (
	"fmt"
	"math"
	"time"

	"github.com/Knetic/govaluate"
	"github.com/davecgh/go-spew/spew"
	"github.com/eclesh/welford"
	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"

	"github.com/polos-io/polos/chrono"
	"github.com/polos-io/polos/status"
	"github.com/polos-io/polos/trigger/conn"
	"github.com/polos-io/polos/triggerproto"
)

// recvTimeout is the hard cap on a single trial's wait for a reply.
const recvTimeout = time.Second

// Config controls Client's request() behavior.
type Config struct {
	// QualityExpr, if non-empty, is a govaluate expression over the
	// variables "offset" and "delay" that must evaluate truthy for the
	// result to be classified OK. Empty means the hardcoded rule
	// (|offset| < 10ms).
	QualityExpr string
}

// Trial is one echo trial's four raw timestamps and derived values.
type Trial struct {
	TOrig, TSend, TDest float64
	Reply               triggerproto.Reply
	Offset, Delay       float64
}

// Result is the outcome of Client.Request.
type Result struct {
	Offset      float64
	Delay       float64
	DelayMin    float64
	DelayMax    float64
	DelayStd    float64
	Trials      []Trial
	RunningMean float64
	RunningVar  float64
	Status      status.Status
}

// Client is the plain NTP-style offset/delay estimator.
type Client struct {
	Conn   *conn.Conn
	Config Config

	qualityExpr *govaluate.EvaluableExpression
}

// New dials host:port and returns a ready Client.
func New(name, host string, port int, cfg Config) (*Client, error) {
	c := &Client{Conn: conn.New(name), Config: cfg}
	if cfg.QualityExpr != "" {
		expr, err := govaluate.NewEvaluableExpression(cfg.QualityExpr)
		if err != nil {
			return nil, fmt.Errorf("client: parsing quality expression %q: %w", cfg.QualityExpr, err)
		}
		c.qualityExpr = expr
	}
	if err := c.Conn.Dial(host, port); err != nil {
		return nil, err
	}
	return c, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error { return c.Conn.Close() }

// Request runs n echo trials and returns the median-delay offset/delay
// summary. It sends CB2 (the dummy opcode) so that repeated NTP-style
// polling never triggers the server's primary callback.
func (c *Client) Request(n int) (Result, error) {
	if n < 1 {
		return Result{}, fmt.Errorf("client: request: n must be >= 1, got %d", n)
	}
	trials := make([]Trial, n)
	rs := welford.New()
	for i := 0; i < n; i++ {
		tr, err := c.trial(triggerproto.CB2)
		if err != nil {
			c.Conn.Status.SetStatus(status.Error, err.Error())
			return Result{}, err
		}
		trials[i] = tr
		rs.Add(tr.Delay)
	}

	delays := make([]float64, n)
	for i, tr := range trials {
		delays[i] = tr.Delay
	}
	order := argsort(delays)
	medianIdx := order[n/2]

	result := Result{
		Offset:      trials[medianIdx].Offset,
		Delay:       delays[order[n/2]],
		DelayMin:    delays[order[0]],
		DelayMax:    delays[order[n-1]],
		Trials:      trials,
		RunningMean: rs.Mean(),
		RunningVar:  rs.Variance(),
	}
	result.DelayStd = math.Sqrt(variance(delays))

	log.Debugf("client: %d trials, delays=%s", n, spew.Sdump(delays))

	if c.quality(result.Offset, result.Delay) {
		result.Status = status.Status{Kind: status.OK, Message: fmt.Sprintf("offset=%.6fs delay=%.6fs", result.Offset, result.Delay)}
	} else {
		result.Status = status.Status{Kind: status.Warning, Message: fmt.Sprintf("offset=%.6fs exceeds threshold", result.Offset)}
	}
	c.Conn.Status.SetStatus(result.Status.Kind, result.Status.Message)
	return result, nil
}

// quality applies Config.QualityExpr if set, else the hardcoded
// 10ms rule.
func (c *Client) quality(offset, delay float64) bool {
	if c.qualityExpr == nil {
		return math.Abs(offset) < 0.010
	}
	ok, err := c.qualityExpr.Evaluate(map[string]interface{}{"offset": offset, "delay": delay})
	if err != nil {
		log.Warnf("client: quality expression evaluation failed, falling back to default rule: %v", err)
		return math.Abs(offset) < 0.010
	}
	b, _ := ok.(bool)
	return b
}

// trial runs one request/reply exchange and computes offset/delay from
// the four timestamps.
func (c *Client) trial(op triggerproto.Opcode) (Trial, error) {
	tOrig := chrono.WallNow()
	if err := c.Conn.Send([]byte{byte(op)}); err != nil {
		return Trial{}, err
	}
	buf, err := c.Conn.RecvWithTimeout(recvTimeout)
	tDest := chrono.WallNow()
	if err != nil {
		return Trial{}, fmt.Errorf("client: trial: %w", err)
	}
	reply, err := triggerproto.ParseReply(string(buf))
	if err != nil {
		return Trial{}, err
	}
	offset := ((reply.TRecv - tOrig) - (reply.TTx - tDest)) / 2
	delay := (tDest - tOrig) - (reply.TTx - reply.TRecv)
	return Trial{TOrig: tOrig, TDest: tDest, Reply: reply, Offset: offset, Delay: delay}, nil
}

// argsort returns the permutation of indices that sorts vs ascending.
func argsort(vs []float64) []int {
	idx := make([]int, len(vs))
	for i := range idx {
		idx[i] = i
	}
	slices.SortFunc(idx, func(a, b int) bool {
		return vs[a] < vs[b]
	})
	return idx
}

func mean(vs []float64) float64 {
	var sum float64
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}

func variance(vs []float64) float64 {
	m := mean(vs)
	var sum float64
	for _, v := range vs {
		d := v - m
		sum += d * d
	}
	return sum / float64(len(vs))
}
