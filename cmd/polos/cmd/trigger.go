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

	"github.com/polos-io/polos/trigger/client"
	"github.com/polos-io/polos/tssaver"
)

var (
	triggerHostFlag    string
	triggerPortFlag    int
	triggerTrialsFlag  int
	triggerSaveDirFlag string
	triggerNameFlag    string
)

func init() {
	RootCmd.AddCommand(triggerCmd)
	triggerCmd.Flags().StringVar(&triggerHostFlag, "host", "localhost", "trigger server host")
	triggerCmd.Flags().IntVar(&triggerPortFlag, "port", 8888, "trigger server port")
	triggerCmd.Flags().IntVar(&triggerTrialsFlag, "trials", 100, "number of warm-up trials, plus the final synchronized trial")
	triggerCmd.Flags().StringVar(&triggerSaveDirFlag, "save-dir", "", "directory to drop a marker file into at the local fire instant, empty disables it")
	triggerCmd.Flags().StringVar(&triggerNameFlag, "name", "TriggerClient", "client name used in logs")
}

var triggerCmd = &cobra.Command{
	Use:   "trigger",
	Short: "Fire a synchronized trigger against a trigger server",
	RunE: func(_ *cobra.Command, _ []string) error {
		ConfigureVerbosity()

		tc, err := client.NewTriggerClient(triggerNameFlag, triggerHostFlag, triggerPortFlag)
		if err != nil {
			return fmt.Errorf("connecting: %w", err)
		}
		defer tc.Close()

		local := func() {}
		if triggerSaveDirFlag != "" {
			local = tssaver.New(triggerSaveDirFlag, "client").Save
		}

		result, err := tc.Fire(triggerTrialsFlag, local)
		if err != nil {
			return fmt.Errorf("firing: %w", err)
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"metric", "value"})
		table.Append([]string{"estimated delay (s)", fmt.Sprintf("%.9f", result.EstimatedDelay)})
		table.Append([]string{"trigger delay error (s)", fmt.Sprintf("%.9f", result.TriggerDelayError)})
		table.Append([]string{"one-way delay std (s)", fmt.Sprintf("%.9f", result.OneWayDelayStd)})
		table.Render()

		if result.TriggerDelayError < 0 {
			fmt.Println(color.YellowString("trigger fired late relative to the estimated delay"))
		} else {
			fmt.Println(color.GreenString("trigger fired on schedule"))
		}
		return nil
	},
}
