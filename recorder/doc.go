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
Package recorder implements a background periodic sampler of a shared
binary flag into a fixed buffer, at a target sampling rate. It exists to
validate package pwm's transmission end to end: an Emitter (package
pulse) toggles a flag in real time, a Recorder samples that same flag on
its own goroutine, and the recorded buffer is fed back into pwm.Decode.
*/
package recorder
