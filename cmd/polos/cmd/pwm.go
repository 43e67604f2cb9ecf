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
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/polos-io/polos/pulse"
	"github.com/polos-io/polos/pwm"
	"github.com/polos-io/polos/recorder"
)

var pwmCmd = &cobra.Command{
	Use:   "pwm",
	Short: "Encode, decode, and emit PWM-timestamp frames",
}

func init() {
	RootCmd.AddCommand(pwmCmd)
	pwmCmd.AddCommand(pwmEncodeCmd)
	pwmCmd.AddCommand(pwmDecodeCmd)
	pwmCmd.AddCommand(pwmEmitCmd)
	pwmCmd.AddCommand(pwmSelftestCmd)

	pwmEncodeCmd.Flags().IntVarP(&pwmPrecisionFlag, "precision", "p", 9, "decimal digits of precision")
	pwmDecodeCmd.Flags().StringVarP(&pwmDecodeFileFlag, "file", "f", "", "file with one 0/1 sample per line, defaults to stdin")
	pwmEmitCmd.Flags().IntVarP(&pwmPrecisionFlag, "precision", "p", 9, "decimal digits of precision")
	pwmEmitCmd.Flags().Float64VarP(&pwmRateFlag, "rate", "r", 1000, "sampling rate in Hz")
	pwmEmitCmd.Flags().StringVar(&pwmSerialDeviceFlag, "serial", "", "serial device whose RTS line drives the pulse (e.g. /dev/ttyUSB0)")
	pwmSelftestCmd.Flags().IntVarP(&pwmPrecisionFlag, "precision", "p", 9, "decimal digits of precision")
	pwmSelftestCmd.Flags().Float64VarP(&pwmRateFlag, "rate", "r", 1000, "sampling rate in Hz")
}

var pwmPrecisionFlag int
var pwmDecodeFileFlag string
var pwmRateFlag float64
var pwmSerialDeviceFlag string

var pwmEncodeCmd = &cobra.Command{
	Use:   "encode VALUE",
	Short: "Print the pulse train for a value at a given precision",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		value, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("parsing value: %w", err)
		}
		spec, err := pwm.Encode(pwmPrecisionFlag, value)
		if err != nil {
			return fmt.Errorf("encoding: %w", err)
		}
		for _, p := range spec {
			fmt.Printf("%d %d\n", p.Level, p.Width)
		}
		return nil
	},
}

var pwmDecodeCmd = &cobra.Command{
	Use:   "decode",
	Short: "Decode pwm frames from a 0/1 sample stream",
	RunE: func(_ *cobra.Command, _ []string) error {
		in := os.Stdin
		if pwmDecodeFileFlag != "" {
			f, err := os.Open(pwmDecodeFileFlag) //nolint:gosec
			if err != nil {
				return fmt.Errorf("opening %s: %w", pwmDecodeFileFlag, err)
			}
			defer f.Close()
			in = f
		}

		var samples []float64
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			v, err := strconv.ParseFloat(line, 64)
			if err != nil {
				return fmt.Errorf("parsing sample %q: %w", line, err)
			}
			samples = append(samples, v)
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("reading samples: %w", err)
		}

		for _, m := range pwm.Decode(samples) {
			fmt.Printf("%d %.9f\n", m.Index, m.Value)
		}
		return nil
	},
}

var pwmEmitCmd = &cobra.Command{
	Use:   "emit VALUE",
	Short: "Transmit one pwm frame over a serial port's RTS line",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		value, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("parsing value: %w", err)
		}
		if pwmSerialDeviceFlag == "" {
			return fmt.Errorf("--serial is required")
		}
		port, err := pulse.OpenSerialPinEmitter(pwmSerialDeviceFlag)
		if err != nil {
			return fmt.Errorf("opening serial device: %w", err)
		}
		defer port.Close()

		e := pulse.New(pwmPrecisionFlag)
		transmitted, overhead, duration, err := e.SendValue(value, pwmRateFlag, port.On, port.Off)
		if err != nil {
			return fmt.Errorf("sending: %w", err)
		}
		fmt.Printf("sent %.9f in %s (scheduling overhead %s)\n", transmitted, duration, overhead)
		return nil
	},
}

var pwmSelftestCmd = &cobra.Command{
	Use:   "selftest VALUE",
	Short: "Exercise encode, emit, record, and decode in one process with no hardware",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		value, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("parsing value: %w", err)
		}

		frame, err := pwm.Encode(pwmPrecisionFlag, value)
		if err != nil {
			return fmt.Errorf("encoding: %w", err)
		}
		totalWidth := 0
		for _, p := range frame {
			totalWidth += p.Width
		}
		maxDuration := float64(totalWidth+2*pwm.SepWidth) / pwmRateFlag

		emu := recorder.NewPulseEmulator(pwmRateFlag, maxDuration)
		emu.Start()

		e := pulse.New(pwmPrecisionFlag)
		transmitted, _, _, err := e.SendValue(value, pwmRateFlag, emu.On, emu.Off)
		if err != nil {
			return fmt.Errorf("sending: %w", err)
		}
		emu.Stop()
		<-emu.Done()

		matches := pwm.Decode(emu.Signal())
		if len(matches) == 0 {
			return fmt.Errorf("decoded no frames out of %d recorded samples", emu.BufferSize())
		}
		fmt.Printf("sent %.9f, decoded %.9f (%d frame(s) found)\n", transmitted, matches[0].Value, len(matches))
		return nil
	},
}
