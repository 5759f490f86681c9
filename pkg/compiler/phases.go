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
	"strings"

	"github.com/esrlab/go-seqasm/pkg/seq"
)

// phaseUnit is the number of NCO steps per degree used by the cycling
// loops.  It is deliberately the truncated value, so that a full turn is an
// exact multiple of it and every loop closes after ceil(360/step)
// iterations whatever the step.
const phaseUnit = 2777777

// fullTurn is one carrier revolution in cycling units.
const fullTurn = 360 * phaseUnit

// insertPhaseCycling wraps the program in nested phase loops, one per pulse
// with a nonzero step, and stamps every pulse and every acquisition with an
// explicit carrier phase.  The receiver phase is rebuilt at the top of the
// innermost loop from the coherence transfer pathway, so that averaged
// acquisitions add coherently across the whole cycle.
func insertPhaseCycling(program seq.Program, steps, pathway []int) (seq.Program, error) {
	plays := countPlays(program)
	//
	if len(steps) != plays {
		return nil, seq.Errorf(seq.StructuralError, "phase", 0,
			"%d phase steps for %d pulses", len(steps), plays)
	}
	//
	if len(pathway) != plays {
		return nil, seq.Errorf(seq.StructuralError, "phase", 0,
			"%d pathway weights for %d pulses", len(pathway), plays)
	}
	//
	for i, ins := range program {
		if ins.IsLabel() && strings.Contains(ins.LabelName(), "loop_ph") {
			return nil, seq.Errorf(seq.ReservedError, "phase", i+1,
				"label %q collides with the generated phase loops", ins.LabelName())
		}
	}
	// Pulses with a nonzero step claim phase registers in pulse order.
	var cycles, mults []int
	//
	for i, step := range steps {
		if step < 0 {
			return nil, seq.Errorf(seq.RangeError, "phase", 0,
				"negative phase step %d", step)
		}
		//
		if step != 0 {
			cycles = append(cycles, step)
			mults = append(mults, pathway[i])
		}
	}
	//
	limit := int(seq.RegPhaseLast) - int(seq.RegPhaseFirst) + 1
	//
	if len(cycles) > limit {
		return nil, seq.Errorf(seq.RangeError, "phase", 0,
			"at most %d pulses can be phase cycled, got %d", limit, len(cycles))
	}
	//
	out, err := stampPhases(program, steps, len(cycles) == 0)
	//
	if err != nil {
		return nil, err
	}
	// Innermost loop first, so the first cycled pulse ends up outermost.
	for j := len(cycles); j >= 1; j-- {
		reg := phaseRegister(j)
		label := fmt.Sprintf("loop_ph%d", j)
		head := seq.Program{
			seq.Ins(seq.Move, seq.Int(0), reg),
			seq.Label(label),
		}
		//
		out = append(head, out...)
		out = append(out,
			seq.Ins(seq.Add, reg, seq.Int(int64(cycles[j-1])*phaseUnit), reg),
			seq.Ins(seq.Nop),
			seq.Ins(seq.Jlt, reg, seq.Int(fullTurn), seq.At(label)),
		)
	}
	//
	if len(cycles) > 0 {
		out = insertReceiver(out, len(cycles), mults)
	}
	//
	return out, nil
}

// stampPhases prefixes every pulse and acquisition with a set_ph and an 8ns
// parameter update, borrowing the 8ns back from the nearest preceding delay
// so that the pulse timeline keeps its length.
func stampPhases(program seq.Program, steps []int, allZero bool) (seq.Program, error) {
	var (
		out     = make(seq.Program, 0, len(program)+4*len(steps))
		pulse   int
		ordinal int
	)
	//
	for _, ins := range program {
		var stamp seq.Instruction
		//
		switch ins.Op {
		case seq.Play, seq.PlayChirp:
			if steps[pulse] != 0 {
				ordinal++
				stamp = seq.Ins(seq.SetPh, phaseRegister(ordinal))
			} else {
				stamp = seq.Ins(seq.SetPh, seq.Int(0))
			}
			//
			pulse++
		case seq.Acquire:
			if allZero {
				stamp = seq.Ins(seq.SetPh, seq.Int(0))
			} else {
				stamp = seq.Ins(seq.SetPh, seq.RegReceiverPhase)
			}
		default:
			out = append(out, ins)
			continue
		}
		//
		out = append(out, stamp, seq.Ins(seq.UpdParam, seq.Int(minUpdDelay)))
		//
		if err := borrowDelay(out, minUpdDelay); err != nil {
			return nil, err
		}
		//
		out = append(out, ins)
	}
	//
	return out, nil
}

// borrowDelay shortens the nearest preceding plain wait or parameter update
// by amount, leaving more than the minimum hardware delay behind.  Delays
// which are already too short are skipped.
func borrowDelay(program seq.Program, amount int64) error {
	for i := len(program) - 1; i >= 0; i-- {
		ins := program[i]
		//
		if ins.Op != seq.Wait && ins.Op != seq.UpdParam {
			continue
		}
		//
		if duration, ok := ins.ImmAt(0); ok && duration > amount+minPostDelay {
			program[i] = seq.Ins(ins.Op, seq.Int(duration-amount))
			return nil
		}
	}
	//
	return seq.Errorf(seq.TimingError, "phase", 0,
		"no delay long enough to absorb the %dns phase update", amount)
}

// phaseRegister returns the loop counter of the i-th cycled pulse, counted
// from one.
func phaseRegister(i int) seq.Register {
	return seq.R(uint(seq.RegPhaseFirst) + uint(i) - 1)
}

// insertReceiver places the receiver phase computation at the top of the
// innermost phase loop, where it runs once per phase combination.
func insertReceiver(program seq.Program, cycled int, mults []int) seq.Program {
	label := fmt.Sprintf("loop_ph%d", cycled)
	at := 0
	//
	for i, ins := range program {
		if ins.IsLabel() && ins.LabelName() == label {
			at = i + 1
			break
		}
	}
	//
	block := receiverProgram(mults)
	out := make(seq.Program, 0, len(program)+len(block))
	out = append(out, program[:at]...)
	out = append(out, block...)
	//
	return append(out, program[at:]...)
}

// receiverProgram accumulates sum(phase[i]*pathway[i]) into the receiver
// register.  The accumulator starts with a bias of one full turn per
// subtracted turn, so it can never run below zero, and a trailing modulo
// loop folds it back into a single revolution.
func receiverProgram(mults []int) seq.Program {
	bias := int64(1)
	//
	for _, mult := range mults {
		if mult < 0 {
			bias += int64(-mult)
		}
	}
	//
	block := seq.Program{
		seq.Ins(seq.Move, seq.Int(bias*fullTurn), seq.RegReceiverPhase),
		seq.Ins(seq.Nop),
	}
	//
	for i, mult := range mults {
		op := seq.Add
		//
		if mult < 0 {
			op = seq.Sub
			mult = -mult
		}
		//
		for ; mult > 0; mult-- {
			block = append(block,
				seq.Ins(op, seq.RegReceiverPhase, phaseRegister(i+1), seq.RegReceiverPhase),
				seq.Ins(seq.Nop),
			)
		}
	}
	//
	return append(block,
		seq.Label("loop_mod360"),
		seq.Ins(seq.Sub, seq.RegReceiverPhase, seq.Int(fullTurn), seq.RegReceiverPhase),
		seq.Ins(seq.Nop),
		seq.Ins(seq.Jge, seq.RegReceiverPhase, seq.Int(fullTurn), seq.At("loop_mod360")),
	)
}
