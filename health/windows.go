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

//go:build windows

package health

import (
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"github.com/polos-io/polos/status"
)

var w32tmConfigRE = regexp.MustCompile(`(?s)NtpClient \(Local\).*?Enabled:\s*(?P<enabled>0|1).*?Type:\s*(?P<type>\S+)`)

// WindowsNTPClientProbe inspects `w32tm /query /configuration` for the
// local NTP client's enabled flag and source type.
//
// Corrected mapping (the upstream tool this was modeled on swaps the OK
// and WARNING arms when type != NTP): enabled && type==NTP -> OK,
// enabled && type!=NTP -> WARNING, not enabled -> ERROR.
type WindowsNTPClientProbe struct{}

// Name identifies this probe in logs and status dumps.
func (WindowsNTPClientProbe) Name() string { return "windows_ntp_client" }

// Probe runs w32tm.
func (WindowsNTPClientProbe) Probe() status.Status {
	out, err := exec.Command("w32tm", "/query", "/configuration").CombinedOutput()
	if err != nil {
		return status.Status{Kind: status.Error, Message: fmt.Sprintf("w32tm: %v", err)}
	}
	m := w32tmConfigRE.FindStringSubmatch(string(out))
	if m == nil {
		return status.Status{Kind: status.Error, Message: "cannot parse w32tm configuration output"}
	}
	enabled := m[1] == "1"
	ntpType := m[2]
	switch {
	case !enabled:
		return status.Status{Kind: status.Error, Message: "NTP client not enabled"}
	case strings.EqualFold(ntpType, "NTP"):
		return status.Status{Kind: status.OK, Message: "NTP client enabled and type is NTP"}
	default:
		return status.Status{Kind: status.Warning, Message: fmt.Sprintf("NTP client enabled but type is not NTP: %s", ntpType)}
	}
}
