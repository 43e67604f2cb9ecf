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

// Package triggerconfig loads the nested YAML configuration shared by
// the trigger server and client binaries.
package triggerconfig

import (
	"os"
	"time"

	yaml "gopkg.in/yaml.v2"
)

// ServerConfig mirrors server.Config's externally-settable fields.
type ServerConfig struct {
	Port         int           `yaml:"port"`
	RecvTimeout  time.Duration `yaml:"recv_timeout"`
	ServerName   string        `yaml:"server_name"`
	MetricsAddr  string        `yaml:"metrics_addr"`
	HealthPeriod time.Duration `yaml:"health_period"`
}

// ClientConfig mirrors the NTP-style and trigger clients' tunables.
type ClientConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	Trials      int    `yaml:"trials"`
	TriggerName string `yaml:"trigger_name"`
	QualityExpr string `yaml:"quality_expr"`
}

// Config is the top-level document: a server section and a client
// section, either of which may be absent.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Client ClientConfig `yaml:"client"`
}

// DefaultConfig is port 8888, 10 NTP trials, 100 trigger trials
// expressed by the caller.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:         8888,
			RecvTimeout:  5 * time.Second,
			ServerName:   "TriggerServer",
			HealthPeriod: time.Minute,
		},
		Client: ClientConfig{
			Host:        "localhost",
			Port:        8888,
			Trials:      10,
			TriggerName: "TriggerClient",
		},
	}
}

// ReadConfig reads and parses a YAML config file at path, starting from
// DefaultConfig so an omitted section keeps its defaults.
func ReadConfig(path string) (*Config, error) {
	c := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	return &c, nil
}
