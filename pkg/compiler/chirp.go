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
package compiler

import (
	"fmt"
	"math"

	"github.com/esrlab/go-seqasm/pkg/seq"
	"github.com/esrlab/go-seqasm/pkg/units"
)

// chirpBase is the waveform index before the first smoothing ramp; ramps
// are allocated upwards from chirpBase+1.
const chirpBase = 300

// chirp holds the parameters of one play_chirp pseudo instruction.
type chirp struct {
	bw     int64 // bandwidth in Hz, sign selects the sweep direction
	sm     int64 // smoothing percentage applied as a ramp on each side
	center int64 // centre frequency in Hz
	step   int64 // NCO update period in ns
	total  int64 // total duration in ns, includes the trailing 8ns update
}

// expandChirps rewrites play_chirp pseudo instructions into swept-frequency
// microcode.  A chirp runs in three loops: a gain-offset staircase ramps
// the amplitude up while the sweep starts, the amplitude holds through the
// main sweep, and a mirrored staircase ramps it down.  Each chirp adds one
// smoothing ramp waveform, played on every staircase tick.
func expandChirps(sequence seq.Sequence, gain float64) (seq.Sequence, error) {
	code, err := units.Gain(gain)
	//
	if err != nil {
		return sequence, err
	}
	//
	var (
		out   seq.Program
		index int
	)
	//
	for i, ins := range sequence.Program {
		if ins.Op != seq.PlayChirp {
			out = append(out, ins)
			continue
		}
		//
		params, err := parseChirp(ins, i+1)
		//
		if err != nil {
			return sequence, err
		}
		//
		index++
		name := fmt.Sprintf("chirp_ramp%d", index)
		//
		if _, taken := sequence.Waveforms[name]; taken {
			return sequence, seq.Errorf(seq.StructuralError, "chirps", i+1,
				"chirp expansion needs the waveform name %q", name)
		}
		//
		ticks := params.rampTicks()
		sequence.Waveforms[name] = seq.Waveform{
			Data:  chirpRamp(params.step, ticks),
			Index: chirpBase + index,
		}
		out = append(out, emitChirp(params, code, index)...)
	}
	//
	sequence.Program = out
	//
	return sequence, nil
}

// parseChirp validates a pseudo instruction of the shape
// "play_chirp bw,sm,center,step,total".
func parseChirp(ins seq.Instruction, line int) (chirp, error) {
	var params chirp
	//
	if len(ins.Args) != 5 {
		return params, seq.Errorf(seq.StructuralError, "chirps", line,
			"chirps have the shape \"play_chirp bw,sm,center,step,total\"")
	}
	//
	fields := []*int64{&params.bw, &params.sm, &params.center, &params.step, &params.total}
	//
	for i, field := range fields {
		imm, ok := ins.Args[i].(seq.Imm)
		//
		if !ok {
			return params, seq.Errorf(seq.StructuralError, "chirps", line,
				"chirp parameters must be immediate values")
		}
		//
		*field = imm.Value
	}
	//
	if params.center < 0 {
		return params, seq.Errorf(seq.RangeError, "chirps", line,
			"negative centre frequency %d", params.center)
	}
	//
	if params.bw == 0 {
		return params, seq.Errorf(seq.RangeError, "chirps", line,
			"a chirp needs a nonzero bandwidth")
	}
	//
	if params.sm <= 0 || params.sm > 50 {
		return params, seq.Errorf(seq.RangeError, "chirps", line,
			"smoothing percentage %d outside (0,50]", params.sm)
	}
	//
	if params.step <= 0 {
		return params, seq.Errorf(seq.RangeError, "chirps", line,
			"chirp step must be positive, got %d", params.step)
	}
	//
	duration := params.total - minUpdDelay
	//
	if duration <= 0 || duration%params.step != 0 {
		return params, seq.Errorf(seq.TimingError, "chirps", line,
			"chirp duration must be a positive multiple of its step plus the trailing %dns update", minUpdDelay)
	}
	//
	if params.ticks() < 2 {
		return params, seq.Errorf(seq.RangeError, "chirps", line,
			"a chirp needs at least two frequency steps")
	}
	//
	if params.ticks()*params.sm%100 != 0 {
		return params, seq.Errorf(seq.TimingError, "chirps", line,
			"smoothing ramp must span a whole number of %dns steps", params.step)
	}
	//
	return params, nil
}

// ticks is the number of NCO frequency updates across the chirp.
func (c *chirp) ticks() int64 {
	return (c.total - minUpdDelay) / c.step
}

// rampTicks is the number of staircase steps in each smoothing ramp.
func (c *chirp) rampTicks() int64 {
	return c.ticks() * c.sm / 100
}

// emitChirp builds the microcode block for one chirp, using the 1-based
// index for its labels and ramp waveform.
func emitChirp(params chirp, code int64, index int) seq.Program {
	var (
		rampUp   = fmt.Sprintf("ramp_up%d", index)
		sweep    = fmt.Sprintf("sweep%d", index)
		rampDown = fmt.Sprintf("ramp_down%d", index)
		wave     = seq.Int(int64(chirpBase + index))
	)
	// frequency bounds in NCO units, swept inclusively for rising chirps
	start := 4*params.center - 2*params.bw
	endDown := 4*params.center + 2*params.bw
	endUp := int64(float64(start) + float64(4*params.bw)*float64(params.sm)/100)
	endCst := int64(float64(endDown) - float64(4*params.bw)*float64(params.sm)/100)
	//
	sweepOp, sweepCond := seq.Sub, seq.Jge
	//
	if params.bw > 0 {
		sweepOp, sweepCond = seq.Add, seq.Jlt
		endUp++
		endCst++
		endDown++
	}
	//
	absBW := params.bw
	//
	if absBW < 0 {
		absBW = -absBW
	}
	//
	freqStep := seq.Int(int64(float64(4*absBW) / float64(params.ticks()-1)))
	incr := seq.Int(code / params.rampTicks())
	//
	return seq.Program{
		seq.Ins(seq.SetAwgGain, seq.Int(code), seq.Int(code)),
		seq.Ins(seq.Move, seq.Int(0), seq.RegChirpOffs),
		seq.Ins(seq.Move, seq.Int(start), seq.RegChirpFreq),
		seq.Label(rampUp),
		seq.Ins(seq.Add, seq.RegChirpOffs, incr, seq.RegChirpOffs),
		seq.Ins(seq.SetFreq, seq.RegChirpFreq),
		seq.Ins(seq.Play, wave, wave, seq.Int(params.step)),
		seq.Ins(sweepOp, seq.RegChirpFreq, freqStep, seq.RegChirpFreq),
		seq.Ins(seq.SetAwgOffs, seq.RegChirpOffs, seq.RegChirpOffs),
		seq.Ins(sweepCond, seq.RegChirpFreq, seq.Int(endUp), seq.At(rampUp)),
		seq.Label(sweep),
		seq.Ins(seq.SetFreq, seq.RegChirpFreq),
		seq.Ins(sweepOp, seq.RegChirpFreq, freqStep, seq.RegChirpFreq),
		seq.Ins(seq.UpdParam, seq.Int(params.step)),
		seq.Ins(sweepCond, seq.RegChirpFreq, seq.Int(endCst), seq.At(sweep)),
		seq.Ins(seq.SetAwgGain, seq.Int(-code), seq.Int(-code)),
		seq.Label(rampDown),
		seq.Ins(seq.Sub, seq.RegChirpOffs, incr, seq.RegChirpOffs),
		seq.Ins(seq.SetFreq, seq.RegChirpFreq),
		seq.Ins(seq.Play, wave, wave, seq.Int(params.step)),
		seq.Ins(sweepOp, seq.RegChirpFreq, freqStep, seq.RegChirpFreq),
		seq.Ins(seq.SetAwgOffs, seq.RegChirpOffs, seq.RegChirpOffs),
		seq.Ins(sweepCond, seq.RegChirpFreq, seq.Int(endDown), seq.At(rampDown)),
		seq.Ins(seq.SetFreq, seq.Int(4*params.center)),
		seq.Ins(seq.SetAwgGain, seq.Int(code), seq.Int(code)),
		seq.Ins(seq.SetAwgOffs, seq.Int(0), seq.Int(0)),
		seq.Ins(seq.UpdParam, seq.Int(minUpdDelay)),
	}
}

// chirpRamp builds the smoothing slice played on every staircase tick, one
// step long and rising towards 1/rampTicks.
func chirpRamp(step, rampTicks int64) []float64 {
	data := make([]float64, step)
	//
	for i := range data {
		value := (float64(i) / float64(step)) / float64(rampTicks)
		data[i] = math.Round(value*1e8) / 1e8
	}
	//
	return data
}
