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

	"github.com/esrlab/go-seqasm/pkg/seq"
)

// forLoop records an open for construct awaiting its end.
type forLoop struct {
	reg   seq.Register
	start int64
	step  int64
	stop  int64
	index int
}

// lowerForLoops rewrites for/end constructs into counted register loops.
// An ascending range is inclusive of its stop value, a descending range
// counts down to it, and a degenerate range runs the body exactly once.
// Loops may nest; each end closes the innermost open for.
func lowerForLoops(program seq.Program) (seq.Program, error) {
	var (
		out     seq.Program
		open    []forLoop
		counter int
	)
	//
	for i, ins := range program {
		switch ins.Op {
		case seq.For:
			loop, err := parseFor(ins, i+1)
			//
			if err != nil {
				return nil, err
			}
			//
			counter++
			loop.index = counter
			open = append(open, loop)
			out = append(out,
				seq.Ins(seq.Move, seq.Int(loop.start), loop.reg),
				seq.Label(fmt.Sprintf("loop_for%d", counter)),
			)
		case seq.End:
			if len(open) == 0 {
				return nil, seq.Errorf(seq.StructuralError, "loops", i+1,
					"end without a matching for")
			}
			//
			loop := open[len(open)-1]
			open = open[:len(open)-1]
			target := seq.At(fmt.Sprintf("loop_for%d", loop.index))
			//
			switch {
			case loop.start < loop.stop:
				out = append(out,
					seq.Ins(seq.Add, loop.reg, seq.Int(loop.step), loop.reg),
					seq.Ins(seq.Nop),
					seq.Ins(seq.Jlt, loop.reg, seq.Int(loop.stop+1), target),
				)
			case loop.start > loop.stop:
				out = append(out,
					seq.Ins(seq.Sub, loop.reg, seq.Int(loop.step), loop.reg),
					seq.Ins(seq.Nop),
					seq.Ins(seq.Jge, loop.reg, seq.Int(loop.stop), target),
				)
			}
		default:
			out = append(out, ins)
		}
	}
	//
	if len(open) > 0 {
		return nil, seq.Errorf(seq.StructuralError, "loops", 0,
			"%d for constructs left unclosed", len(open))
	}
	//
	return out, nil
}

// parseFor validates a loop header of the shape "for Rn in start,step,stop".
func parseFor(ins seq.Instruction, line int) (forLoop, error) {
	var loop forLoop
	//
	malformed := func() (forLoop, error) {
		return loop, seq.Errorf(seq.StructuralError, "loops", line,
			"loop headers have the shape \"for Rn in start,step,stop\"")
	}
	//
	if len(ins.Args) != 5 {
		return malformed()
	}
	//
	reg, ok := ins.Args[0].(seq.Register)
	//
	if !ok {
		return malformed()
	}
	//
	if word, ok := ins.Args[1].(seq.Sym); !ok || word.Name != "in" {
		return malformed()
	}
	//
	bounds := make([]int64, 3)
	//
	for i := range bounds {
		imm, ok := ins.Args[2+i].(seq.Imm)
		//
		if !ok {
			return malformed()
		}
		//
		bounds[i] = imm.Value
	}
	//
	loop = forLoop{reg: reg, start: bounds[0], step: bounds[1], stop: bounds[2]}
	//
	if loop.start < 0 || loop.stop < 0 {
		return loop, seq.Errorf(seq.UnsupportedError, "loops", line,
			"negative loop bounds are not supported")
	}
	//
	if loop.step <= 0 {
		return loop, seq.Errorf(seq.RangeError, "loops", line,
			"loop step must be positive, got %d", loop.step)
	}
	//
	return loop, nil
}
