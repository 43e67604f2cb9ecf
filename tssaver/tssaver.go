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

// Package tssaver is a filesystem timestamp side channel for test
// harnesses: a zero-byte file named after the wall-clock instant a
// callback fired, so a separate process can later recover that instant
// without any IPC of its own.
package tssaver

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/polos-io/polos/chrono"
)

// Saver writes a zero-byte marker file on each call, named
// "{dir}/{prefix}_{wall_now()}".
type Saver struct {
	Dir    string
	Prefix string
}

// New returns a Saver rooted at dir with the given filename prefix.
func New(dir, prefix string) *Saver {
	return &Saver{Dir: dir, Prefix: prefix}
}

// Save is the callback form: it writes the marker file and discards the
// error, for use wherever a bare func() callback is expected (CB1/CB2
// hooks, trigger.Fire's local callback). Use WriteNow directly when the
// error matters.
func (s *Saver) Save() { _, _ = s.WriteNow() }

// WriteNow writes the marker file for chrono.WallNow() and returns the
// timestamp it encoded.
func (s *Saver) WriteNow() (float64, error) {
	ts := chrono.WallNow()
	name := fmt.Sprintf("%s_%s", s.Prefix, formatTimestamp(ts))
	path := filepath.Join(s.Dir, name)
	if err := os.WriteFile(path, nil, 0o644); err != nil { //nolint:gosec
		return 0, fmt.Errorf("tssaver: writing %s: %w", path, err)
	}
	return ts, nil
}

// formatTimestamp renders ts with enough precision that two calls a
// microsecond apart still produce distinct filenames.
func formatTimestamp(ts float64) string {
	return strconv.FormatFloat(ts, 'f', 9, 64)
}

// ParseTimestamp recovers the wall-clock timestamp encoded in a marker
// filename produced by Save/WriteNow, by splitting on the last "_".
func ParseTimestamp(filename string) (float64, error) {
	base := filepath.Base(filename)
	idx := strings.LastIndex(base, "_")
	if idx < 0 {
		return 0, fmt.Errorf("tssaver: %q has no '_' separator", filename)
	}
	ts, err := strconv.ParseFloat(base[idx+1:], 64)
	if err != nil {
		return 0, fmt.Errorf("tssaver: parsing timestamp from %q: %w", filename, err)
	}
	return ts, nil
}
