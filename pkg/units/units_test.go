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
package units

import (
	"math"
	"testing"

	"github.com/esrlab/go-seqasm/pkg/seq"
)

func Test_Phase(t *testing.T) {
	cases := []struct {
		degrees float64
		steps   int64
	}{
		{0, 0},
		{90, 250000000},
		{-90, 750000000},
		{180, 500000000},
		{360, 0},
		{450, 250000000},
		{-450, 750000000},
		{1, 2777778},
	}
	//
	for _, c := range cases {
		if steps := Phase(c.degrees); steps != c.steps {
			t.Errorf("Phase(%g): got %d, expected %d", c.degrees, steps, c.steps)
		}
	}
}

func Test_PhaseWraps(t *testing.T) {
	for _, degrees := range []float64{0, 17.5, 90, 222, 359} {
		if Phase(degrees+360) != Phase(degrees) {
			t.Errorf("Phase(%g+360) != Phase(%g)", degrees, degrees)
		}
	}
}

func Test_PhaseRad(t *testing.T) {
	if steps := PhaseRad(math.Pi / 2); steps != 250000000 {
		t.Errorf("PhaseRad(pi/2): got %d", steps)
	}
}

func Test_Gain(t *testing.T) {
	cases := []struct {
		amplitude float64
		code      int64
	}{
		{-1, -32768},
		{1, 32767},
		{0, 0},
		{0.5, 16384},
		{-0.5, -16384},
		{0.3, 9830},
	}
	//
	for _, c := range cases {
		code, err := Gain(c.amplitude)
		//
		if err != nil {
			t.Errorf("Gain(%g): unexpected error %v", c.amplitude, err)
		} else if code != c.code {
			t.Errorf("Gain(%g): got %d, expected %d", c.amplitude, code, c.code)
		}
	}
}

func Test_GainOutOfRange(t *testing.T) {
	for _, amplitude := range []float64{-1.0001, 1.0001, 2} {
		if _, err := Gain(amplitude); !seq.IsCategory(err, seq.RangeError) {
			t.Errorf("Gain(%g): expected range error, got %v", amplitude, err)
		}
	}
}

func Test_Frequency(t *testing.T) {
	cases := []struct {
		hz    float64
		steps int64
	}{
		{0, 0},
		{500e6, 2000000000},
		{-500e6, -2000000000},
		{100e6, 400000000},
		{1.25, 5},
	}
	//
	for _, c := range cases {
		steps, err := Frequency(c.hz)
		//
		if err != nil {
			t.Errorf("Frequency(%g): unexpected error %v", c.hz, err)
		} else if steps != c.steps {
			t.Errorf("Frequency(%g): got %d, expected %d", c.hz, steps, c.steps)
		}
	}
}

func Test_FrequencyOutOfRange(t *testing.T) {
	for _, hz := range []float64{500e6 + 1, -500e6 - 1} {
		if _, err := Frequency(hz); !seq.IsCategory(err, seq.RangeError) {
			t.Errorf("Frequency(%g): expected range error, got %v", hz, err)
		}
	}
}
