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

	"github.com/polos-io/polos/status"
	"github.com/polos-io/polos/trigger/client"
)

var (
	ntpHostFlag        string
	ntpPortFlag        int
	ntpTrialsFlag      int
	ntpQualityExprFlag string
)

func init() {
	RootCmd.AddCommand(ntpCmd)
	ntpCmd.Flags().StringVar(&ntpHostFlag, "host", "localhost", "trigger server host")
	ntpCmd.Flags().IntVar(&ntpPortFlag, "port", 8888, "trigger server port")
	ntpCmd.Flags().IntVar(&ntpTrialsFlag, "trials", 10, "number of NTP-style request trials")
	ntpCmd.Flags().StringVar(&ntpQualityExprFlag, "quality-expr", "", "govaluate expression overriding the default |offset| < 10ms quality rule")
}

var statusColor = map[status.Kind]func(string, ...interface{}) string{
	status.OK:      color.GreenString,
	status.Warning: color.YellowString,
	status.Error:   color.RedString,
}

var ntpCmd = &cobra.Command{
	Use:   "ntp",
	Short: "Run NTP-style offset/delay trials against a trigger server",
	RunE: func(_ *cobra.Command, _ []string) error {
		ConfigureVerbosity()

		c, err := client.New(ntpHostFlag+":ntp", ntpHostFlag, ntpPortFlag, client.Config{QualityExpr: ntpQualityExprFlag})
		if err != nil {
			return fmt.Errorf("connecting: %w", err)
		}
		defer c.Close()

		result, err := c.Request(ntpTrialsFlag)
		if err != nil {
			return fmt.Errorf("requesting: %w", err)
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"metric", "value"})
		table.Append([]string{"offset (s)", fmt.Sprintf("%.9f", result.Offset)})
		table.Append([]string{"delay (s)", fmt.Sprintf("%.9f", result.Delay)})
		table.Append([]string{"delay min/max (s)", fmt.Sprintf("%.9f / %.9f", result.DelayMin, result.DelayMax)})
		table.Append([]string{"delay std (s)", fmt.Sprintf("%.9f", result.DelayStd)})
		table.Render()

		paint := statusColor[result.Status.Kind]
		if paint == nil {
			paint = color.WhiteString
		}
		fmt.Printf("[%s] %s\n", paint(result.Status.Kind.String()), result.Status.Message)
		return nil
	},
}
