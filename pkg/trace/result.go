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

// Package trace holds the output of an emulated sequencer run: sample-accurate
// I/Q traces, the digital marker timeline, per-channel acquisition buffers and
// the final machine state.  A trace is plain data; the emulator fills it in
// and callers serialize it or export the I/Q pair to WAV.
package trace

// MarkerEvent records one digital-output state change.
type MarkerEvent struct {
	// Time is the simulated timestamp of the change, in nanoseconds.
	Time int64 `json:"time"`
	// State is the 4-bit marker output value.
	State uint8 `json:"state"`
}

// Bin is one accumulation slot of an acquisition channel.
type Bin struct {
	// Value is the running sum of accumulated window means.
	Value float64 `json:"value"`
	// Count is the number of windows accumulated so far.
	Count int `json:"count"`
}

// Scope is a pair of raw capture traces, one per output path.  They grow for
// the duration of every acquire window.
type Scope struct {
	Path0 []float64 `json:"path0"`
	Path1 []float64 `json:"path1"`
}

// Bins is a pair of fixed-size accumulation arrays, sized by the channel's
// configured bin count.
type Bins struct {
	Path0 []Bin `json:"path0"`
	Path1 []Bin `json:"path1"`
}

// Acquisition holds the captured data of one acquisition channel.
type Acquisition struct {
	// Index is the channel's hardware slot.
	Index int `json:"index"`
	// Scope holds the raw capture traces.
	Scope Scope `json:"scope"`
	// Bins holds the binned window means.
	Bins Bins `json:"bins"`
}

// NewAcquisition builds an empty acquisition buffer with numBins slots.
func NewAcquisition(index, numBins int) *Acquisition {
	return &Acquisition{
		Index: index,
		Bins:  Bins{make([]Bin, numBins), make([]Bin, numBins)},
	}
}

// Result is the complete outcome of one emulated run.
type Result struct {
	// I and Q are the per-nanosecond output samples of the two paths.
	I []float64 `json:"i"`
	Q []float64 `json:"q"`
	// Phase is the NCO phase per sample, in degrees.
	Phase []float64 `json:"phase"`
	// Markers is the digital-output timeline, including the state at time 0
	// and at program stop.
	Markers []MarkerEvent `json:"markers"`
	// Acquisitions holds the captured data per channel name.
	Acquisitions map[string]*Acquisition `json:"acquisitions"`
	// Registers is the final register file.
	Registers []uint32 `json:"registers"`
	// Duration is the final simulated time in nanoseconds.
	Duration int64 `json:"duration"`
}
