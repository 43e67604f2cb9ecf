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

package pwm

import (
	"regexp"
	"strings"

	log "github.com/sirupsen/logrus"
)

// bitPulse matches one full pulse's run of high samples: a short (1-3
// sample) pulse decodes to bit 1, a long (4-6 sample) pulse decodes to
// bit 0. It must match the whole run, not stop at 3, or a 5-sample
// pulse (bit 0) gets split into a 3-sample match plus a spurious
// leftover 1-sample match (bit 1, bit 1) instead of one bit 0.
var bitPulse = regexp.MustCompile(`1+`)

// bitGroupPat matches a single (BIT SEP) pair.
const bitGroupPat = `(?:(?:1{1,3}|1{4,6})0{1,3})`

// outerFrame loosely bounds a candidate frame: DELIM SEP, four-or-more
// bit groups, DELIM. This is intentionally permissive (it does not
// split precision from value) so that a frame whose inner structure
// doesn't parse can still be located, logged and skipped.
var outerFrame = regexp.MustCompile(`1{6,8}0{1,3}(?:` + bitGroupPat + `){4,}1{6,8}`)

// innerFrame splits a bounded frame into its 4-bit precision field and
// its (one or more bit) value field.
var innerFrame = regexp.MustCompile(`^1{6,8}0{1,3}(?P<precision>(?:` + bitGroupPat + `){4})(?P<value>(?:` + bitGroupPat + `)+)1{6,8}$`)

// Match is one decoded occurrence: the sample index where the frame's
// leading DELIM begins (the SEP before it is not counted), and the
// value it carried.
type Match struct {
	Index int
	Value float64
}

// Decode binarizes sig at 50% of its peak amplitude, then scans the
// resulting bit string for frames, returning one Match per frame found,
// in order of occurrence. A frame whose outer DELIM...DELIM bounds
// match but whose inner bit groups don't parse cleanly is logged and
// skipped; other frames in the same signal are still returned.
func Decode(sig []float64) []Match {
	if len(sig) == 0 {
		return nil
	}
	peak := sig[0]
	for _, v := range sig {
		if v > peak {
			peak = v
		}
	}
	threshold := peak * 0.5

	var b strings.Builder
	b.Grow(len(sig))
	for _, v := range sig {
		if v > threshold {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	binStr := b.String()

	var matches []Match
	for _, span := range outerFrame.FindAllStringIndex(binStr, -1) {
		chunk := binStr[span[0]:span[1]]
		groups := innerFrame.FindStringSubmatch(chunk)
		if groups == nil {
			log.Warningf("pwm: could not decode frame at sample %d: %q", span[0], chunk)
			continue
		}
		precisionGroup := groups[innerFrame.SubexpIndex("precision")]
		valueGroup := groups[innerFrame.SubexpIndex("value")]

		precisionBits, err := decodeBitGroup(precisionGroup)
		if err != nil {
			log.Warningf("pwm: malformed precision field at sample %d: %v", span[0], err)
			continue
		}
		valueBits, err := decodeBitGroup(valueGroup)
		if err != nil {
			log.Warningf("pwm: malformed value field at sample %d: %v", span[0], err)
			continue
		}

		precision, err := BitsToPrecision(precisionBits)
		if err != nil {
			log.Warningf("pwm: %v", err)
			continue
		}
		value, err := BitsToValue(valueBits, precision)
		if err != nil {
			log.Warningf("pwm: %v", err)
			continue
		}
		matches = append(matches, Match{Index: span[0], Value: value})
	}
	return matches
}

// decodeBitGroup converts a run of (BIT SEP) pairs into a "01" string,
// one character per pulse width recognized.
func decodeBitGroup(group string) (string, error) {
	var out strings.Builder
	rest := group
	for len(rest) > 0 {
		loc := bitPulse.FindStringIndex(rest)
		if loc == nil || loc[0] != 0 {
			return "", errMalformedBitGroup(group)
		}
		width := loc[1] - loc[0]
		if width <= 3 {
			out.WriteByte('1')
		} else {
			out.WriteByte('0')
		}
		// Skip the separator (0{1,3}) that follows the bit pulse.
		rest = rest[loc[1]:]
		sep := 0
		for sep < len(rest) && sep < 3 && rest[sep] == '0' {
			sep++
		}
		rest = rest[sep:]
	}
	return out.String(), nil
}

type decodeError string

func (e decodeError) Error() string { return string(e) }

func errMalformedBitGroup(group string) error {
	return decodeError("malformed bit group " + group)
}
