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

package chrono

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWallNowIsUnixEpoch(t *testing.T) {
	before := float64(time.Now().Unix())
	got := WallNow()
	after := float64(time.Now().Unix()) + 1
	assert.GreaterOrEqual(t, got, before)
	assert.LessOrEqual(t, got, after)
}

func TestMonoNowMonotonic(t *testing.T) {
	a := MonoNow()
	time.Sleep(time.Millisecond)
	b := MonoNow()
	assert.Greater(t, b, a)
}

func TestSpinUntilWaitsAtLeastUntilDeadline(t *testing.T) {
	deadline := MonoNow() + 0.01
	SpinUntil(deadline)
	assert.GreaterOrEqual(t, MonoNow(), deadline)
}

func TestSpinUntilPastDeadlineReturnsImmediately(t *testing.T) {
	start := time.Now()
	SpinUntil(MonoNow() - 1)
	assert.Less(t, time.Since(start), 10*time.Millisecond)
}
