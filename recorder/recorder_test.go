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
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderFillsBufferThenStops(t *testing.T) {
	var slot int32
	r := New(&slot, 200, 0.05) // 10 samples
	require.Equal(t, 10, r.BufferSize())

	r.Start()
	select {
	case <-r.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("recorder did not finish in time")
	}
	assert.Len(t, r.Signal(), 10)
}

func TestRecorderStopEndsEarly(t *testing.T) {
	var slot int32
	r := New(&slot, 50, 10) // long buffer, should not fill naturally
	r.Start()
	time.Sleep(30 * time.Millisecond)
	r.Stop()
	select {
	case <-r.Done():
	case <-time.After(time.Second):
		t.Fatal("recorder did not stop in time")
	}
}

func TestRecorderTracksSlotChanges(t *testing.T) {
	var slot int32
	r := New(&slot, 500, 0.02) // 10 samples at 2ms pace
	r.Start()
	time.Sleep(2 * time.Millisecond)
	atomic.StoreInt32(&slot, 1)
	select {
	case <-r.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("recorder did not finish in time")
	}
	sig := r.Signal()
	var sawHigh bool
	for _, v := range sig {
		if v == 1 {
			sawHigh = true
		}
	}
	assert.True(t, sawHigh, "expected recorder to observe the flag going high at some point")
}

func TestPulseEmulatorOnOffReflectedInSignal(t *testing.T) {
	e := NewPulseEmulator(300, 0.1)
	e.Start()
	e.On()
	time.Sleep(5 * time.Millisecond)
	e.Off()
	select {
	case <-e.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("emulator did not finish in time")
	}
	sig := e.Signal()
	var sawHigh bool
	for _, v := range sig {
		if v == 1 {
			sawHigh = true
		}
	}
	assert.True(t, sawHigh)
}
