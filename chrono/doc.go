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
Package chrono contains the clock and scheduling primitives every
timing-sensitive component of polos is built on: a wall-clock reading
for timestamps exchanged on the wire, a monotonic reading for measuring
durations and scheduling deadlines, and a busy-wait that holds a
goroutine until a monotonic deadline with sub-millisecond accuracy.

This package does not discipline or step any clock - polos measures
offset, it never steers a local clock (see spec's Non-goals). It only
reads clocks and schedules against them.
*/
package chrono
