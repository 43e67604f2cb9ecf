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

package chrono

import "time"

// processStart anchors MonoNow: Go's monotonic clock readings are only
// comparable to each other within a process, so we report elapsed time
// since this fixed point rather than an opaque tick count.
var processStart = time.Now()

// WallNow returns the current wall-clock time in seconds since the Unix
// epoch, as a float. This is the timestamp format exchanged on the wire.
func WallNow() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Second)
}

// MonoNow returns a monotonic "now" in seconds, suitable only for
// measuring elapsed time and scheduling deadlines - never for comparing
// against a wall-clock reading.
func MonoNow() float64 {
	return time.Since(processStart).Seconds()
}

// SpinUntil busy-waits, polling MonoNow, until the monotonic clock
// reaches deadline. It never sleeps: scheduler jitter of even a
// millisecond is unacceptable on the trigger-fire and pulse-emission
// paths that call this. Coarser waits (connection timeouts, test
// joins) must use time.Sleep instead, never this function.
//
// If deadline is already in the past, SpinUntil returns immediately.
func SpinUntil(deadline float64) {
	for MonoNow() < deadline {
	}
}
