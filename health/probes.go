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
	"os/exec"
	"regexp"
	"strings"

	"github.com/shirou/gopsutil/host"

	"github.com/polos-io/polos/status"
)

var dmesgLowBatteryRE = regexp.MustCompile(`(?m)^\[[ 0-9]+\.[0-9]+\].*: (.*low voltage.*RTC.*|.*RTC.*low voltage.*)$`)

// RTCBatteryProbe scans dmesg for the kernel's low-voltage-RTC warning.
type RTCBatteryProbe struct{}

// Name identifies this probe in logs and status dumps.
func (RTCBatteryProbe) Name() string { return "rtc_battery" }

// Probe runs dmesg and reports WARNING if a low-voltage entry is found.
func (RTCBatteryProbe) Probe() status.Status {
	out, err := exec.Command("dmesg").Output()
	if err != nil {
		return status.Status{Kind: status.Error, Message: fmt.Sprintf("dmesg: %v", err)}
	}
	if m := dmesgLowBatteryRE.FindStringSubmatch(string(out)); m != nil {
		return status.Status{Kind: status.Warning, Message: m[0]}
	}
	return status.Status{Kind: status.OK, Message: "no low voltage warning"}
}

var isoDateRE = regexp.MustCompile(`^\d{4}-[01]\d-[0-3]\d [0-2]\d:[0-5]\d:[0-5]\d\.\d+([+-][0-2]\d:[0-5]\d|Z)?`)

// HWClockProbe runs `hwclock -r` and checks the output parses as an
// ISO-ish timestamp.
type HWClockProbe struct{}

// Name identifies this probe in logs and status dumps.
func (HWClockProbe) Name() string { return "hwclock" }

// Probe runs hwclock -r.
func (HWClockProbe) Probe() status.Status {
	cmd := exec.Command("hwclock", "-r")
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			return status.Status{Kind: status.Error, Message: "hwclock: " + stderr.String()}
		}
		return status.Status{Kind: status.Error, Message: fmt.Sprintf("hwclock: %v", err)}
	}
	out := stdout.String()
	if isoDateRE.MatchString(out) {
		return status.Status{Kind: status.OK, Message: "RTC time: " + strings.TrimSuffix(out, "\n")}
	}
	return status.Status{Kind: status.Error, Message: "invalid RTC time: " + out}
}

// SystemdNTPProbe runs `timedatectl` and checks that the systemd NTP
// client is disabled.
type SystemdNTPProbe struct{}

// Name identifies this probe in logs and status dumps.
func (SystemdNTPProbe) Name() string { return "systemd_ntp" }

// Probe runs timedatectl.
func (SystemdNTPProbe) Probe() status.Status {
	out, err := exec.Command("timedatectl").CombinedOutput()
	if err != nil {
		return status.Status{Kind: status.Error, Message: fmt.Sprintf("timedatectl: %v: %s", err, out)}
	}
	s := string(out)
	if strings.Contains(s, "systemd-timesyncd.service active: no") || strings.Contains(s, "NTP service: inactive") {
		return status.Status{Kind: status.OK, Message: "NTP from systemd service inactive"}
	}
	return status.Status{Kind: status.Error, Message: "NTP service from systemd should be disabled"}
}

// HostInfoProbe reports the host's uptime and platform via gopsutil, as
// a cheap diagnostic folded into the health summary so a human reading
// status output sees which machine it came from. It reports OK, or
// WARNING when host info cannot be read.
type HostInfoProbe struct{}

// Name identifies this probe in logs and status dumps.
func (HostInfoProbe) Name() string { return "host_info" }

// Probe queries host info through gopsutil.
func (HostInfoProbe) Probe() status.Status {
	info, err := host.Info()
	if err != nil {
		return status.Status{Kind: status.Warning, Message: fmt.Sprintf("host info unavailable: %v", err)}
	}
	return status.Status{Kind: status.OK, Message: fmt.Sprintf("%s %s, uptime %ds", info.Platform, info.PlatformVersion, info.Uptime)}
}
