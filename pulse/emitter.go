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

package pulse

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/polos-io/polos/chrono"
	"github.com/polos-io/polos/pwm"
)

// Emitter transmits pwm frames at a fixed decimal precision.
type Emitter struct {
	Precision int
}

// New creates an Emitter that encodes values to precision decimal digits.
func New(precision int) *Emitter {
	return &Emitter{Precision: precision}
}

// Value is either a float64 to transmit as-is, or a func() float64
// resolved right before the first bit goes out - so a wall-clock
// timestamp can be captured at the exact instant transmission starts
// rather than when SendValue was called.
type Value interface{}

func resolveValue(v Value) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case func() float64:
		return t(), nil
	default:
		return 0, fmt.Errorf("pulse: unsupported value type %T, want float64 or func() float64", v)
	}
}

// SendValue transmits one pwm frame for value at sampling rate, calling
// on()/off() to drive the physical channel. It returns the value that
// was actually transmitted (post value-resolution), the delay between
// the call to SendValue and the first on() call, and the total
// transmission duration.
//
// Every pulse's deadline is computed from that pulse's own start, never
// from the frame's start, so timing error never accumulates across the
// frame. If a pulse's nominal deadline has already passed (scheduling
// overrun), the next pulse starts immediately rather than waiting
// negative time.
func (e *Emitter) SendValue(value Value, samplingRate float64, on, off func()) (transmitted float64, overhead time.Duration, duration time.Duration, err error) {
	if samplingRate <= 0 {
		return 0, 0, 0, fmt.Errorf("pulse: sampling rate must be positive, got %v", samplingRate)
	}
	tCall := chrono.MonoNow()
	dt := 1 / samplingRate

	tStartSend := chrono.MonoNow()
	off()
	chrono.SpinUntil(tStartSend + dt*pwm.SepWidth)

	tic := chrono.MonoNow()
	transmitted, err = resolveValue(value)
	if err != nil {
		return 0, 0, 0, err
	}
	overhead = durationOf(chrono.MonoNow() - tCall)
	on() // pulse start for the leading delimiter
	precisionBits, err := pwm.PrecisionToBits(e.Precision)
	if err != nil {
		return 0, 0, 0, err
	}
	valueBits, err := pwm.ValueToBits(e.Precision, transmitted)
	if err != nil {
		return 0, 0, 0, err
	}
	chrono.SpinUntil(tic + dt*pwm.DelimWidth)

	tic = chrono.MonoNow()
	off()
	chrono.SpinUntil(tic + dt*pwm.SepWidth)

	sendBit := func(b byte) {
		tic := chrono.MonoNow()
		on()
		width := float64(pwm.Bit1Width)
		if b != '1' {
			width = float64(pwm.Bit0Width)
		}
		chrono.SpinUntil(tic + dt*width)

		tic = chrono.MonoNow()
		off()
		chrono.SpinUntil(tic + dt*pwm.SepWidth)
	}
	for i := 0; i < len(precisionBits); i++ {
		sendBit(precisionBits[i])
	}
	for i := 0; i < len(valueBits); i++ {
		sendBit(valueBits[i])
	}

	tic = chrono.MonoNow()
	on()
	chrono.SpinUntil(tic + dt*pwm.DelimWidth)

	tic = chrono.MonoNow()
	off()
	chrono.SpinUntil(tic + dt*pwm.SepWidth)

	duration = durationOf(chrono.MonoNow() - tStartSend)
	log.Debugf("pulse: sent value %v in %s", transmitted, duration)
	return transmitted, overhead, duration, nil
}

func durationOf(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}
