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

package health

import (
	"fmt"
	"math"

	"github.com/polos-io/polos/status"
	"github.com/polos-io/polos/trigger/client"
)

// NTPQueryProbe queries a reference time source exposed over the
// trigger wire protocol and reports the measured clock offset, using
// the NTP-style client directly so no external NTP dependency is
// required.
type NTPQueryProbe struct {
	Host      string
	Port      int
	Trials    int
	Tolerance float64 // seconds; defaults to 1ms if zero
}

// Name identifies this probe in logs and status dumps.
func (p NTPQueryProbe) Name() string { return "ntp_query" }

// Probe connects, runs Request(Trials), and classifies the offset.
func (p NTPQueryProbe) Probe() status.Status {
	trials := p.Trials
	if trials <= 0 {
		trials = 8
	}
	tolerance := p.Tolerance
	if tolerance <= 0 {
		tolerance = 0.001
	}

	c, err := client.New("health.NTPQueryProbe", p.Host, p.Port, client.Config{})
	if err != nil {
		return status.Status{Kind: status.Error, Message: err.Error()}
	}
	defer c.Close()

	result, err := c.Request(trials)
	if err != nil {
		return status.Status{Kind: status.Error, Message: err.Error()}
	}
	if math.Abs(result.Offset) < tolerance {
		return status.Status{Kind: status.OK, Message: fmt.Sprintf("queried %s:%d\ntime offset=%1.6f s\nnetwork delay=%1.6f s", p.Host, p.Port, result.Offset, result.Delay)}
	}
	return status.Status{Kind: status.Warning, Message: fmt.Sprintf("queried %s:%d\nLARGE time offset=%1.6f s\nnetwork delay=%1.6f s", p.Host, p.Port, result.Offset, result.Delay)}
}
