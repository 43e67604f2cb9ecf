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

package status

import "sync/atomic"

// AtomicHandler is a Handler backed by an atomic.Value swap: the
// server/client goroutine is the sole writer, any number of observers
// (metrics scrapers, CLI probes, tests) may read concurrently.
type AtomicHandler struct {
	v atomic.Value
}

// NewAtomicHandler creates a handler starting at the given status.
func NewAtomicHandler(kind Kind, message string) *AtomicHandler {
	h := &AtomicHandler{}
	h.SetStatus(kind, message)
	return h
}

// SetStatus atomically replaces the current status.
func (h *AtomicHandler) SetStatus(kind Kind, message string) {
	h.v.Store(Status{Kind: kind, Message: message})
}

// GetStatus returns the most recently stored status.
func (h *AtomicHandler) GetStatus() (Kind, string) {
	s, _ := h.v.Load().(Status)
	return s.Kind, s.Message
}
