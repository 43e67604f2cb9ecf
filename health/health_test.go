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

package health

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/polos-io/polos/status"
)

func TestWorstPicksHighestSeverity(t *testing.T) {
	got := Worst([]status.Status{
		{Kind: status.OK, Message: "a"},
		{Kind: status.Warning, Message: "b"},
		{Kind: status.OK, Message: "c"},
	})
	assert.Equal(t, status.Warning, got.Kind)
	assert.Equal(t, "b", got.Message)
}

func TestWorstPicksErrorOverWarning(t *testing.T) {
	got := Worst([]status.Status{
		{Kind: status.Warning, Message: "b"},
		{Kind: status.Error, Message: "c"},
	})
	assert.Equal(t, status.Error, got.Kind)
}

func TestWorstOfEmptyIsOK(t *testing.T) {
	got := Worst(nil)
	assert.Equal(t, status.OK, got.Kind)
}

func TestDefaultConfigMatchesSpecDefaults(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 8888, cfg.NTPPort)
	assert.Equal(t, 8, cfg.NTPTrials)
	assert.Equal(t, 0.001, cfg.NTPToleranceS)
}
