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

// Package health implements the reference-time-source health probes:
// RTC battery, hardware clock sanity, systemd NTP service state, and
// NTP queryability. Each probe returns a status.Status, the same
// (kind, message) contract used everywhere else in this module.
package health

import "github.com/polos-io/polos/status"

// Prober is one health check. trigger/server polls a slice of these
// periodically and republishes the worst kind it sees.
type Prober interface {
	Name() string
	Probe() status.Status
}

// Worst returns the status with the highest-severity Kind among
// statuses (status.Error is worse than status.Warning is worse than
// status.OK), with empty input reported OK.
func Worst(statuses []status.Status) status.Status {
	worst := status.Status{Kind: status.OK, Message: "no probes configured"}
	worstRank := rank(status.OK)
	for _, s := range statuses {
		if r := rank(s.Kind); r > worstRank {
			worst = s
			worstRank = r
		}
	}
	return worst
}

// rank orders kinds by severity for Worst's comparison; it is not the
// same as Kind's wire value, which is fixed by the status contract.
func rank(k status.Kind) int {
	switch k {
	case status.Error:
		return 2
	case status.Warning:
		return 1
	default:
		return 0
	}
}
