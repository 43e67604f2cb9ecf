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

import (
	"math"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/polos-io/polos/chrono"
)

// Recorder samples a shared binary flag at a fixed pace into a
// fixed-size buffer, on its own goroutine. The flag is read with
// atomic.LoadInt32: single-writer (whatever toggles Slot), single-reader
// (the recorder goroutine).
type Recorder struct {
	Slot *int32

	samplingRate float64
	recordPace   time.Duration

	buffer  []int32
	iSample int

	threadStartTS time.Time
	recordStartTS time.Time

	stopCh chan struct{}
	doneCh chan struct{}
	done   int32
}

// New creates a Recorder tracking slot at samplingRate Hz for up to
// maxDuration seconds. The buffer is sized to hold exactly
// round(maxDuration / recordPace) samples.
func New(slot *int32, samplingRate float64, maxDuration float64) *Recorder {
	recordPace := time.Duration(math.Round(1/samplingRate*1e6)) * time.Microsecond
	bufferSize := int(math.Round(maxDuration / recordPace.Seconds()))
	return &Recorder{
		Slot:         slot,
		samplingRate: samplingRate,
		recordPace:   recordPace,
		buffer:       make([]int32, bufferSize),
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
	}
}

// StartDelay returns the delay between the call to Start and the
// recording of the first sample. Zero before the first sample lands.
func (r *Recorder) StartDelay() time.Duration {
	if r.threadStartTS.IsZero() || r.recordStartTS.IsZero() {
		return 0
	}
	return r.recordStartTS.Sub(r.threadStartTS)
}

// Start launches the sampling goroutine. It returns immediately; use
// Done() to wait for completion.
func (r *Recorder) Start() {
	r.threadStartTS = time.Now()
	log.Debugf("recorder: starting, rate=%.2fHz pace=%s buffer=%d samples", r.samplingRate, r.recordPace, len(r.buffer))
	go r.run()
}

// Done returns a channel that's closed once the buffer is full or Stop
// was called.
func (r *Recorder) Done() <-chan struct{} {
	return r.doneCh
}

// Stop requests early termination; the running goroutine observes it at
// its next tick.
func (r *Recorder) Stop() {
	if atomic.CompareAndSwapInt32(&r.done, 0, 1) {
		close(r.stopCh)
	}
}

func (r *Recorder) record() bool {
	if r.iSample >= len(r.buffer) {
		log.Debugf("recorder: buffer full at %d samples, stopping", len(r.buffer))
		return false
	}
	r.buffer[r.iSample] = atomic.LoadInt32(r.Slot)
	r.iSample++
	return true
}

func (r *Recorder) run() {
	defer func() {
		if atomic.CompareAndSwapInt32(&r.done, 0, 1) {
			close(r.doneCh)
		} else {
			// Stop() already flipped done and closed stopCh; doneCh still
			// needs closing exactly once.
			select {
			case <-r.doneCh:
			default:
				close(r.doneCh)
			}
		}
	}()

	t0 := chrono.MonoNow()
	r.recordStartTS = time.Now()
	launchOverhead := r.recordStartTS.Sub(r.threadStartTS)

	if !r.record() {
		return
	}
	next := t0 + r.recordPace.Seconds() - launchOverhead.Seconds()
	if !r.waitOrStop(next) {
		return
	}

	for {
		tick := chrono.MonoNow()
		if !r.record() {
			return
		}
		next := tick + r.recordPace.Seconds()
		if !r.waitOrStop(next) {
			return
		}
	}
}

// waitOrStop sleeps (coarse, not busy - this cadence is milliseconds to
// seconds, not the sub-millisecond trigger-fire path) until deadline or
// until Stop is called, whichever comes first. It returns false if Stop
// fired.
func (r *Recorder) waitOrStop(deadline float64) bool {
	remaining := deadline - chrono.MonoNow()
	if remaining <= 0 {
		select {
		case <-r.stopCh:
			return false
		default:
			return true
		}
	}
	timer := time.NewTimer(time.Duration(remaining * float64(time.Second)))
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-r.stopCh:
		return false
	}
}

// Signal returns the recorded buffer converted to float64, ready for
// pwm.Decode. Returns all-zero while recording hasn't produced any
// samples yet.
func (r *Recorder) Signal() []float64 {
	out := make([]float64, len(r.buffer))
	for i, v := range r.buffer {
		out[i] = float64(v)
	}
	return out
}

// BufferSize returns the capacity of the recording buffer.
func (r *Recorder) BufferSize() int {
	return len(r.buffer)
}
