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

package tssaver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteNowThenParseTimestampRoundTrips(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, "server")

	ts, err := s.WriteNow()
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	parsed, err := ParseTimestamp(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	assert.InDelta(t, ts, parsed, 1e-6)
}

func TestParseTimestampRejectsFilenameWithoutSeparator(t *testing.T) {
	_, err := ParseTimestamp("noseparator")
	assert.Error(t, err)
}

func TestSaveWritesAZeroByteFile(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, "dummy")
	s.Save()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	info, err := entries[0].Info()
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}
