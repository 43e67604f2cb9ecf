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

package triggerconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadConfigOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "polos.yaml")
	contents := []byte("server:\n  port: 9999\nclient:\n  host: trigger.example.com\n  trials: 100\n")
	require.NoError(t, os.WriteFile(path, contents, 0o600))

	cfg, err := ReadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "TriggerServer", cfg.Server.ServerName) // untouched default
	assert.Equal(t, "trigger.example.com", cfg.Client.Host)
	assert.Equal(t, 100, cfg.Client.Trials)
}

func TestReadConfigMissingFile(t *testing.T) {
	_, err := ReadConfig("/nonexistent/polos.yaml")
	assert.Error(t, err)
}
