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

/*
Package pwm implements the discrete pulse-width-modulation timestamp
protocol: a way to transmit a single float64 over a one-bit on/off
channel, and to recover it from a sampled (and possibly noisy) signal.

A frame on the wire is:

	SEP DELIM SEP (precision bits, 4 of them) (value bits, 1 or more) DELIM SEP

Each element is a constant-width pulse, counted in receiver samples.
Bit 1 is a short pulse, bit 0 is a long pulse - tolerances are chosen so
that adding or dropping a single sample anywhere in the stream keeps
every pulse inside its counted range (see Encode/Decode).

This package is pure and stateless: it knows nothing about scheduling
pulses in real time against a sample rate (see package pulse) nor about
sampling a channel (see package recorder).
*/
package pwm
