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

	"go.bug.st/serial"
)

// SerialPinEmitter is a concrete on/off emitter that toggles the RTS
// line of a serial port. It exists for development machines that have
// no real GPIO header: a cheap USB-serial adapter's RTS pin makes an
// adequate stand-in one-bit output channel for exercising the full pwm
// transmit/record/decode path against real hardware timing.
type SerialPinEmitter struct {
	port serial.Port
}

// OpenSerialPinEmitter opens device (e.g. "/dev/ttyUSB0") for use as a
// pulse emitter.
func OpenSerialPinEmitter(device string) (*SerialPinEmitter, error) {
	port, err := serial.Open(device, &serial.Mode{BaudRate: 115200})
	if err != nil {
		return nil, fmt.Errorf("pulse: opening serial device %s: %w", device, err)
	}
	return &SerialPinEmitter{port: port}, nil
}

// On raises RTS.
func (s *SerialPinEmitter) On() {
	_ = s.port.SetRTS(true)
}

// Off lowers RTS.
func (s *SerialPinEmitter) Off() {
	_ = s.port.SetRTS(false)
}

// Close releases the underlying serial port.
func (s *SerialPinEmitter) Close() error {
	return s.port.Close()
}
