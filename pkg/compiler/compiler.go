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

// Package compiler turns an assembled sequence into one the target hardware
// can actually run: it inserts amplifier/switch protection markers, aligns
// repeated programs onto the acquisition grid, injects phase cycling with a
// derived receiver phase, wraps shot/average/dummy loops, lowers for/end
// constructs, and compresses delays, waveforms and chirps which exceed
// hardware limits into loops.  Passes run in a fixed order; each consumes
// the previous pass's output shape.
package compiler

import (
	log "github.com/sirupsen/logrus"

	"github.com/esrlab/go-seqasm/pkg/seq"
)

// Protection configures the amplifier/switch protection pass.  The delays
// are post-delays in nanoseconds accompanying each marker change and must
// each be 0 or greater than 4.
type Protection struct {
	// Enabled turns the pass on.
	Enabled bool
	// SwitchOpenPost follows the switch-open marker before the first pulse.
	SwitchOpenPost int
	// AmpOnPost lets the amplifier settle after its enable marker.
	AmpOnPost int
	// AmpOffPre precedes the amplifier-off marker after the last pulse.
	AmpOffPre int
	// AmpOffPost follows the amplifier-off marker.
	AmpOffPost int
	// SwitchClosedPost follows the final all-off marker.
	SwitchClosedPost int
}

// Options configures a compilation.
type Options struct {
	// Averages wraps the program in an averaging loop when greater than 1.
	Averages int
	// Shots wraps each average in a shot loop when greater than 1.
	Shots int
	// DummyShots prepends warm-up executions whose acquisitions are replaced
	// by waits of the same duration.
	DummyShots int
	// PhaseSteps lists the per-pulse phase-cycling increments in degrees.
	// Phase cycling triggers when both PhaseSteps and Pathway are set.
	PhaseSteps []int
	// Pathway lists the per-pulse coefficients of the coherence transfer
	// pathway, from which the receiver phase is derived.
	Pathway []int
	// Protection configures protection-marker insertion.
	Protection Protection
	// MaxAmpOn bounds continuous amplifier-on time in nanoseconds; the
	// overtrigger check fails once a stretch reaches it.  Zero disables the
	// check.
	MaxAmpOn int
	// WaveformStep is the chunk length, in samples, that oversized constant
	// waveforms are folded to.
	WaveformStep int
	// ChirpGain is the normalized playback amplitude of expanded chirps.
	ChirpGain float64
}

// DefaultOptions returns the hardware-safe defaults: a single shot, no
// phase cycling, protection on with standard amplifier timings.
func DefaultOptions() Options {
	return Options{
		Averages:   1,
		Shots:      1,
		DummyShots: 0,
		Protection: Protection{
			Enabled:          true,
			SwitchOpenPost:   0,
			AmpOnPost:        250,
			AmpOffPre:        50,
			AmpOffPost:       250,
			SwitchClosedPost: 150,
		},
		MaxAmpOn:     5000,
		WaveformStep: 32,
		ChirpGain:    0.3,
	}
}

// phaseCycling reports whether the options request phase cycling.
func (p *Options) phaseCycling() bool {
	return p.PhaseSteps != nil && p.Pathway != nil
}

// repeated reports whether the program runs more than once, which requires
// grid alignment between runs.
func (p *Options) repeated() bool {
	return p.Averages > 1 || p.Shots > 1 || p.DummyShots > 0 || p.phaseCycling()
}

// Compile applies the transform pipeline to a sequence and returns the
// hardware-ready result.  The input sequence is not modified.
func Compile(sequence seq.Sequence, options Options) (seq.Sequence, error) {
	var err error
	//
	sequence = sequence.Clone()
	program := sequence.Program
	// 1: binary marker masks become plain integers
	if program, err = convertMarkers(program); err != nil {
		return sequence, err
	}
	// 2: amplifier/switch protection around pulses
	if options.Protection.Enabled && countPlays(program) > 0 {
		if program, err = insertProtection(program, options.Protection); err != nil {
			return sequence, err
		}
	}
	// 3: continuous amplifier-on time stays within budget
	if options.MaxAmpOn > 0 {
		if err = checkOvertrigger(program, options.MaxAmpOn); err != nil {
			return sequence, err
		}
	}
	// 4: repeated programs start aligned to the acquisition grid
	if options.repeated() {
		program = alignGrid(program)
	}
	// 5: dummy variant derived before phase cycling applies
	var dummy seq.Program
	//
	if options.DummyShots > 0 {
		dummy = buildDummy(program, options.DummyShots)
	}
	// 6: phase cycling loops and receiver phase
	if options.phaseCycling() {
		if program, err = insertPhaseCycling(program, options.PhaseSteps, options.Pathway); err != nil {
			return sequence, err
		}
	}
	// 7: shot and average loops, then the dummy variant runs first
	if options.Shots > 1 {
		program = wrapLoop(program, options.Shots, seq.RegShot, "loop_shot")
	}
	//
	if options.Averages > 1 {
		program = wrapLoop(program, options.Averages, seq.RegAverage, "loop_avg")
	}
	//
	program = append(dummy, program...)
	// 8: for/end constructs become counted register loops
	if program, err = lowerForLoops(program); err != nil {
		return sequence, err
	}
	// 9: delays beyond the 16-bit hardware limit
	if program, err = expandDelays(program); err != nil {
		return sequence, err
	}
	//
	sequence.Program = program
	// 10: oversized constant waveforms fold into play loops
	if sequence, err = foldWaveforms(sequence, options.WaveformStep); err != nil {
		return sequence, err
	}
	// 11: chirps expand into ramp/sweep/ramp microcode
	if sequence, err = expandChirps(sequence, options.ChirpGain); err != nil {
		return sequence, err
	}
	//
	sequence.Program = append(sequence.Program, seq.Ins(seq.Stop))
	//
	if err = sequence.Check(); err != nil {
		return sequence, err
	}
	//
	log.Debugf("compile: %d instructions, %d waveforms",
		len(sequence.Program), len(sequence.Waveforms))
	//
	return sequence, nil
}

// countPlays counts the pulse emissions in a program, including chirps.
func countPlays(program seq.Program) int {
	count := 0
	//
	for _, ins := range program {
		if ins.Op == seq.Play || ins.Op == seq.PlayChirp {
			count++
		}
	}
	//
	return count
}

// wrapLoop wraps a program in a counted loop on the given register.
func wrapLoop(program seq.Program, count int, reg seq.Register, label string) seq.Program {
	wrapped := seq.Program{
		seq.Ins(seq.Move, seq.Int(int64(count)), reg),
		seq.Label(label),
	}
	//
	wrapped = append(wrapped, program...)
	//
	return append(wrapped, seq.Ins(seq.Loop, reg, seq.At(label)))
}
