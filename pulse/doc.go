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
Package pulse schedules the transmission of one pwm frame in real time
against a target sample rate, driving a pair of on()/off() functions -
the abstract emitter. A concrete emitter can be anything from an
in-memory flag (package recorder's PulseEmulator, used in tests) to a
real GPIO line to SerialPinEmitter, which stands in for a GPIO header on
machines that don't have one.
*/
package pulse
