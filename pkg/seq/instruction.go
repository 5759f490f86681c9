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
package seq

import "strings"

// Instruction is one line of a program: an opcode with its operands, or a
// label definition.
type Instruction struct {
	// Op is the mnemonic.
	Op Opcode
	// Args are the operands in source order.
	Args []Operand
}

// Ins constructs an instruction value.
func Ins(op Opcode, args ...Operand) Instruction {
	return Instruction{op, args}
}

// Label constructs a label-definition line.
func Label(name string) Instruction {
	return Instruction{opLabel, []Operand{Sym{name}}}
}

// IsLabel reports whether the instruction is a label definition.
func (p Instruction) IsLabel() bool {
	return p.Op == opLabel
}

// LabelName returns the defined label.  Panics on non-label instructions.
func (p Instruction) LabelName() string {
	if !p.IsLabel() {
		panic("not a label definition")
	}
	//
	return p.Args[0].(Sym).Name
}

// RegAt returns the i-th operand as a register, if it is one.
func (p Instruction) RegAt(i int) (Register, bool) {
	if i < len(p.Args) {
		if reg, ok := p.Args[i].(Register); ok {
			return reg, true
		}
	}
	//
	return 0, false
}

// ImmAt returns the i-th operand's value, if it is an immediate.
func (p Instruction) ImmAt(i int) (int64, bool) {
	if i < len(p.Args) {
		if imm, ok := p.Args[i].(Imm); ok {
			return imm.Value, true
		}
	}
	//
	return 0, false
}

// String renders the canonical assembly spelling: "name:" for labels, else
// the mnemonic followed by comma-separated operands.
func (p Instruction) String() string {
	if p.IsLabel() {
		return p.LabelName() + ":"
	} else if len(p.Args) == 0 {
		return string(p.Op)
	}
	//
	args := make([]string, len(p.Args))
	//
	for i, arg := range p.Args {
		args[i] = arg.String()
	}
	//
	return string(p.Op) + " " + strings.Join(args, ",")
}
