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
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/polos-io/polos/health"
	"github.com/polos-io/polos/status"
)

var healthConfigFlag string

func init() {
	RootCmd.AddCommand(healthCmd)
	healthCmd.Flags().StringVarP(&healthConfigFlag, "config", "c", "", "path to a health INI config")
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Run the local health probes and print their status",
	RunE: func(_ *cobra.Command, _ []string) error {
		ConfigureVerbosity()

		cfg := health.DefaultConfig()
		if healthConfigFlag != "" {
			loaded, err := health.LoadConfig(healthConfigFlag)
			if err != nil {
				return fmt.Errorf("reading config: %w", err)
			}
			cfg = loaded
		}

		probes := append(defaultHealthProbes(), health.NewNTPQueryProbe(cfg))

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"probe", "status", "message"})

		statuses := make([]status.Status, 0, len(probes))
		for _, p := range probes {
			s := p.Probe()
			statuses = append(statuses, s)
			paint := statusColor[s.Kind]
			if paint == nil {
				paint = color.WhiteString
			}
			table.Append([]string{p.Name(), paint(s.Kind.String()), s.Message})
		}
		table.Render()

		worst := health.Worst(statuses)
		paint := statusColor[worst.Kind]
		if paint == nil {
			paint = color.WhiteString
		}
		fmt.Printf("overall: [%s] %s\n", paint(worst.Kind.String()), worst.Message)
		return nil
	},
}
