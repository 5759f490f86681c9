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
package macro

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/esrlab/go-seqasm/pkg/seq"
)

var (
	// assignPattern matches "dest = source" on a trimmed line.
	assignPattern = regexp.MustCompile(`^(\w+)\s*=\s*(\w+)$`)
	// arithPattern matches "dest = a OP b" on a trimmed line.
	arithPattern = regexp.MustCompile(`^(\w+)\s*=\s*(\w+)\s*([+\-*/])\s*(\w+)$`)
)

// unrollLimit bounds the additions an immediate multiplication may unroll to
// before it is lowered as a counted loop instead.
const unrollLimit = 5

// lowerAssign lowers "dest = source" to a register copy.
func (p *expander) lowerAssign(line string, number int) error {
	match := assignPattern.FindStringSubmatch(line)
	//
	dest, err := destRegister(match[1], number)
	//
	if err != nil {
		return err
	}
	//
	source, err := valueOperand(match[2], number)
	//
	if err != nil {
		return err
	}
	//
	p.emit(seq.Ins(seq.Move, source, dest))
	//
	return nil
}

// lowerArith lowers "dest = a OP b" for the four operators.
func (p *expander) lowerArith(line string, number int) error {
	match := arithPattern.FindStringSubmatch(line)
	//
	dest, err := destRegister(match[1], number)
	//
	if err != nil {
		return err
	}
	//
	left, err := valueOperand(match[2], number)
	//
	if err != nil {
		return err
	}
	//
	right, err := valueOperand(match[4], number)
	//
	if err != nil {
		return err
	}
	//
	switch match[3] {
	case "+", "-":
		op := seq.Add
		//
		if match[3] == "-" {
			op = seq.Sub
		}
		//
		return p.lowerAddSub(op, dest, left, right, number)
	case "*":
		return p.lowerMult(dest, left, right, number)
	}
	// "/"
	return seq.Errorf(seq.UnsupportedError, "macro", number, "division is not supported")
}

// lowerAddSub lowers addition and subtraction.  The processor requires the
// immediate in the second position, so an immediate first operand is swapped
// there regardless of where it was written.
func (p *expander) lowerAddSub(op seq.Opcode, dest seq.Register, left, right seq.Operand, number int) error {
	_, leftReg := left.(seq.Register)
	_, rightReg := right.(seq.Register)
	//
	switch {
	case !leftReg && !rightReg:
		return seq.Errorf(seq.UnsupportedError, "macro", number,
			"addition/subtraction between constants is not supported, fold them offline")
	case !leftReg:
		p.emit(seq.Ins(op, right, left, dest))
	default:
		p.emit(seq.Ins(op, left, right, dest))
	}
	//
	return nil
}

// lowerMult lowers multiplication of a register by a constant count, as a
// copy followed by repeated additions.  Short counts unroll; longer ones
// become a counted loop on the reserved register R1.
func (p *expander) lowerMult(dest seq.Register, left, right seq.Operand, number int) error {
	leftValue, leftReg := left.(seq.Register)
	rightValue, rightReg := right.(seq.Register)
	//
	var (
		reg   seq.Register
		count int64
	)
	//
	switch {
	case !leftReg && !rightReg:
		return seq.Errorf(seq.UnsupportedError, "macro", number,
			"multiplication between constants is not supported, fold them offline")
	case leftReg && rightReg:
		return seq.Errorf(seq.UnsupportedError, "macro", number,
			"multiplication between two registers is not supported")
	case leftReg:
		reg, count = leftValue, right.(seq.Imm).Value
	default:
		reg, count = rightValue, left.(seq.Imm).Value
	}
	//
	if reg == dest {
		return seq.Errorf(seq.UnsupportedError, "macro", number,
			"multiplication reusing its destination register is not supported")
	}
	//
	count--
	//
	if count < 0 {
		return seq.Errorf(seq.UnsupportedError, "macro", number,
			"non-positive multiplication count is not supported")
	}
	//
	p.emit(seq.Ins(seq.Move, reg, dest))
	//
	if count < unrollLimit {
		for ; count > 0; count-- {
			p.emit(seq.Ins(seq.Add, dest, reg, dest))
		}
		//
		return nil
	}
	//
	p.multLoops++
	label := fmt.Sprintf("loop_mult%d", p.multLoops)
	//
	p.emit(
		seq.Ins(seq.Move, seq.Int(count), seq.RegDelayLoop),
		seq.Label(label),
		seq.Ins(seq.Add, dest, reg, dest),
		seq.Ins(seq.Nop),
		seq.Ins(seq.Loop, seq.RegDelayLoop, seq.At(label)),
	)
	//
	return nil
}

// destRegister parses an assignment destination, which must be a register.
func destRegister(word string, number int) (seq.Register, error) {
	operand, err := valueOperand(word, number)
	//
	if err != nil {
		return 0, err
	}
	//
	reg, ok := operand.(seq.Register)
	//
	if !ok {
		return 0, seq.Errorf(seq.StructuralError, "macro", number,
			"assignment destination %q is not a register", word)
	}
	//
	return reg, nil
}

// valueOperand parses an assignment operand word: a register or a
// non-negative integer constant.
func valueOperand(word string, number int) (seq.Operand, error) {
	if len(word) > 1 && word[0] == 'R' && allDigits(word[1:]) {
		index, err := strconv.Atoi(word[1:])
		//
		if err != nil || index >= seq.NumRegisters {
			return nil, seq.Errorf(seq.RangeError, "macro", number,
				"register %s out of range", word)
		}
		//
		return seq.Register(index), nil
	}
	//
	if allDigits(word) {
		value, err := strconv.ParseInt(word, 10, 64)
		//
		if err != nil {
			return nil, seq.Errorf(seq.RangeError, "macro", number,
				"constant %q out of range", word)
		}
		//
		return seq.Int(value), nil
	}
	//
	return nil, seq.Errorf(seq.StructuralError, "macro", number,
		"operand %q is neither a register nor an integer constant", word)
}

// allDigits reports whether s is a non-empty run of decimal digits.
func allDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	//
	return len(s) > 0
}
