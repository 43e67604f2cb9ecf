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

// Package status implements the status triple shared across every
// externally-visible probe and component of polos: a Kind and a
// human-readable message. Kind codes are fixed and their ordering is
// not semantic - do not compare Kinds with < or >.
package status

// Kind is one of the three possible outcomes of a probe or component.
type Kind int

// Fixed status codes. These values are part of the wire/display contract
// and must not be renumbered.
const (
	Error   Kind = 0
	OK      Kind = 1
	Warning Kind = 2
)

var kindLabels = map[Kind]string{
	Error:   "ERROR",
	OK:      "Ok",
	Warning: "Warning",
}

// String returns the fixed label for k, or "UNSUPPORTED VALUE" for an
// out-of-range Kind.
func (k Kind) String() string {
	s, found := kindLabels[k]
	if !found {
		return "UNSUPPORTED VALUE"
	}
	return s
}

// Status is the (kind, message) pair returned by every probe.
type Status struct {
	Kind    Kind
	Message string
}

// Handler is implemented by any collaborator that tracks the current
// status of a component (server, client, probe) for an external
// observer. Single writer, many readers.
type Handler interface {
	SetStatus(kind Kind, message string)
	GetStatus() (Kind, string)
}
