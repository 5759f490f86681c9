// Copyright ESRLab Contributors.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package units converts physical pulse parameters (phase, amplitude,
// frequency) into the integer codes used by the assembly dialect.
package units

import (
	"math"

	"github.com/esrlab/go-seqasm/pkg/seq"
)

const (
	// PhaseSteps is the number of NCO phase steps in a full turn.
	PhaseSteps = 1e9
	// MaxFrequency bounds the NCO frequency domain, in Hz.
	MaxFrequency = 500e6
	// FullScale is the gain code for positive unit amplitude.  The gain DAC
	// is asymmetric, so negative unit amplitude maps to MinScale instead.
	FullScale = 32767
	// MinScale is the gain code for negative unit amplitude.
	MinScale = -32768
)

// Phase converts an angle in degrees into integer NCO phase steps, wrapping
// into [0,360) first.  Phase(90) == 250000000, Phase(-90) == 750000000.
func Phase(degrees float64) int64 {
	degrees = math.Mod(degrees, 360)
	//
	if degrees < 0 {
		degrees += 360
	}
	//
	return int64(math.Round(degrees * (PhaseSteps / 360)))
}

// PhaseRad converts an angle in radians into integer NCO phase steps.
func PhaseRad(radians float64) int64 {
	return Phase(radians * 180 / math.Pi)
}

// Gain converts a normalized amplitude in [-1,1] into the signed 16-bit gain
// code.  Amplitudes outside the domain are range errors.
func Gain(amplitude float64) (int64, error) {
	if amplitude < -1 || amplitude > 1 {
		return 0, seq.Errorf(seq.RangeError, "units", 0, "gain %g outside [-1,1]", amplitude)
	}
	//
	if amplitude < 0 {
		return int64(math.Round(amplitude * -MinScale)), nil
	}
	//
	return int64(math.Round(amplitude * FullScale)), nil
}

// Frequency converts Hz into integer NCO frequency steps (four steps per
// Hz).  Frequencies beyond half a GHz in either direction are range errors.
func Frequency(hz float64) (int64, error) {
	if hz < -MaxFrequency || hz > MaxFrequency {
		return 0, seq.Errorf(seq.RangeError, "units", 0, "frequency %g outside [-500e6,500e6]", hz)
	}
	//
	return int64(math.Round(4 * hz)), nil
}
