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
	"fmt"

	"github.com/go-ini/ini"
)

// Config holds the tunable thresholds for the NTP query probe, read
// from a flat INI file, as opposed to the nested YAML used elsewhere
// in this module.
type Config struct {
	NTPHost       string
	NTPPort       int
	NTPTrials     int
	NTPToleranceS float64
}

// DefaultConfig is port 8888, 8 trials, 1ms tolerance.
func DefaultConfig() Config {
	return Config{NTPHost: "localhost", NTPPort: 8888, NTPTrials: 8, NTPToleranceS: 0.001}
}

// LoadConfig reads thresholds from path, an INI file with a single
// [ntp_query] section.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	f, err := ini.Load(path)
	if err != nil {
		return Config{}, fmt.Errorf("health: loading config %s: %w", path, err)
	}
	sec := f.Section("ntp_query")
	cfg.NTPHost = sec.Key("host").MustString(cfg.NTPHost)
	cfg.NTPPort = sec.Key("port").MustInt(cfg.NTPPort)
	cfg.NTPTrials = sec.Key("trials").MustInt(cfg.NTPTrials)
	cfg.NTPToleranceS = sec.Key("tolerance_s").MustFloat64(cfg.NTPToleranceS)
	return cfg, nil
}

// NewNTPQueryProbe builds a Prober from a loaded Config.
func NewNTPQueryProbe(cfg Config) NTPQueryProbe {
	return NTPQueryProbe{Host: cfg.NTPHost, Port: cfg.NTPPort, Trials: cfg.NTPTrials, Tolerance: cfg.NTPToleranceS}
}
