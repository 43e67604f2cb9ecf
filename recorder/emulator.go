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

package recorder

import "sync/atomic"

// PulseEmulator is a Recorder that also owns the slot it samples, and
// exposes On/Off methods implementing the same on()/off() emitter shape
// package pulse expects. It lets a test exercise the full
// encode -> schedule -> sample -> decode path in a single process,
// without any real GPIO hardware.
type PulseEmulator struct {
	*Recorder
	state int32
}

// NewPulseEmulator creates an emulator recording at samplingRate Hz for
// up to maxDuration seconds.
func NewPulseEmulator(samplingRate float64, maxDuration float64) *PulseEmulator {
	e := &PulseEmulator{}
	e.Recorder = New(&e.state, samplingRate, maxDuration)
	return e
}

// On sets the emulated pulse high.
func (e *PulseEmulator) On() {
	atomic.StoreInt32(&e.state, 1)
}

// Off sets the emulated pulse low.
func (e *PulseEmulator) Off() {
	atomic.StoreInt32(&e.state, 0)
}
