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

package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/polos-io/polos/health"
	"github.com/polos-io/polos/status"
	triggerserver "github.com/polos-io/polos/trigger/server"
	"github.com/polos-io/polos/triggerconfig"
	"github.com/polos-io/polos/tssaver"
)

var (
	serverConfigFlag  string
	serverMetricsFlag string
	serverSaveDirFlag string
)

func init() {
	RootCmd.AddCommand(serverCmd)
	serverCmd.Flags().StringVarP(&serverConfigFlag, "config", "c", "", "path to a polos YAML config")
	serverCmd.Flags().StringVar(&serverMetricsFlag, "metrics-addr", "", "host:port to serve Prometheus metrics on, empty disables it")
	serverCmd.Flags().StringVar(&serverSaveDirFlag, "save-dir", "", "directory to drop a marker file into on every primary callback, empty disables it")
}

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the trigger server",
	RunE: func(_ *cobra.Command, _ []string) error {
		ConfigureVerbosity()

		cfg := triggerconfig.DefaultConfig()
		if serverConfigFlag != "" {
			loaded, err := triggerconfig.ReadConfig(serverConfigFlag)
			if err != nil {
				return fmt.Errorf("reading config: %w", err)
			}
			cfg = *loaded
		}

		var cb1 func()
		if serverSaveDirFlag != "" {
			cb1 = tssaver.New(serverSaveDirFlag, "server").Save
		}

		metricsAddr := cfg.Server.MetricsAddr
		if serverMetricsFlag != "" {
			metricsAddr = serverMetricsFlag
		}

		s := triggerserver.New(triggerserver.Config{
			Port:         cfg.Server.Port,
			CB1:          cb1,
			RecvTimeout:  cfg.Server.RecvTimeout,
			ServerName:   cfg.Server.ServerName,
			Status:       status.NewAtomicHandler(status.Error, "Idle"),
			MetricsAddr:  metricsAddr,
			HealthProbes: defaultHealthProbes(),
			HealthPeriod: cfg.Server.HealthPeriod,
		})

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		log.Infof("starting %s on port %d", cfg.Server.ServerName, s.Port())
		return s.Run(ctx)
	},
}

func defaultHealthProbes() []health.Prober {
	return []health.Prober{
		health.RTCBatteryProbe{},
		health.HWClockProbe{},
		health.SystemdNTPProbe{},
		health.HostInfoProbe{},
	}
}
