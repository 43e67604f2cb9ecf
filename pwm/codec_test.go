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
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueToBitsMinimalNoLeadingZero(t *testing.T) {
	bits, err := ValueToBits(0, 5)
	require.NoError(t, err)
	assert.Equal(t, "101", bits)
}

func TestPrecisionToBitsFixedWidth(t *testing.T) {
	bits, err := PrecisionToBits(0)
	require.NoError(t, err)
	assert.Equal(t, "0000", bits)

	bits, err = PrecisionToBits(9)
	require.NoError(t, err)
	assert.Equal(t, "1001", bits)
}

func TestPrecisionOutOfRange(t *testing.T) {
	_, err := PrecisionToBits(10)
	assert.Error(t, err)
	_, err = ValueToBits(-1, 1)
	assert.Error(t, err)
}

func TestEncodeDecodeRoundTripNoiseless(t *testing.T) {
	spec, err := Encode(0, 5)
	require.NoError(t, err)
	sig := Samples(spec)

	found := Decode(sig)
	require.Len(t, found, 1)
	assert.Equal(t, 2, found[0].Index) // past Encode's leading 2-sample SEP, at the DELIM
	assert.Equal(t, 5.0, found[0].Value)
}

func TestEncodeDecodeRoundTripWithNoise(t *testing.T) {
	for _, tc := range []struct {
		precision int
		value     float64
	}{
		{0, 5}, {2, 4.3}, {6, 1234.567891}, {9, 1},
	} {
		spec, err := Encode(tc.precision, tc.value)
		require.NoError(t, err)
		sig := Samples(spec)
		for i := range sig {
			sig[i] += rand.Float64() * 0.5
		}
		found := Decode(sig)
		require.Len(t, found, 1, "precision=%d value=%v", tc.precision, tc.value)
		assert.InDelta(t, tc.value, found[0].Value, math.Pow10(-tc.precision))
	}
}

func TestDecodeUnrelatedNoiseAroundFrame(t *testing.T) {
	bin := []float64{
		0, 0, 0, 1, 0,
		1, 1, 1, 1, 1, 1, 1, 1, 0, 0,
		1, 1, 1, 1, 1, 0, 1, 1, 1, 1, 1, 0, 1, 1, 1, 1, 1, 0, 1, 1, 1, 1, 1, 0, // precision=0
		1, 1, 0, 1, 1, 1, 1, 1, 0, 0, 1, 0, 0, // value bits for 5: "101"
		1, 1, 1, 1, 1, 1, 0,
		0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 1, 0, 0, 0, 0, 0, 0, 0,
	}
	sig := make([]float64, len(bin))
	for i, v := range bin {
		sig[i] = v + rand.Float64()*0.5
	}
	found := Decode(sig)
	require.Len(t, found, 1)
	assert.Equal(t, 5, found[0].Index)
	assert.Equal(t, 5.0, found[0].Value)
}

func TestDecodeEmptySignal(t *testing.T) {
	assert.Nil(t, Decode(nil))
}

func TestDecodeNoFrameReturnsEmpty(t *testing.T) {
	assert.Empty(t, Decode([]float64{0, 0, 0, 0}))
}
