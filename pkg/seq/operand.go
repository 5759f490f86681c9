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

import "strconv"

// Operand is a single instruction argument: a register, an integer
// immediate, a label reference or a bare word.
type Operand interface {
	// String returns the assembly spelling of the operand.
	String() string
	isOperand()
}

// Imm is an integer immediate.  Text, when non-empty, preserves the source
// spelling so that forms carrying information in their digits (binary marker
// masks such as "0011") survive until the pass that consumes them.
type Imm struct {
	// Value of the immediate.
	Value int64
	// Text is the source spelling, or "" for constructed immediates.
	Text string
}

// Int constructs an immediate operand with canonical decimal spelling.
func Int(value int64) Imm {
	return Imm{Value: value}
}

// String returns the source spelling when available, else decimal.
func (p Imm) String() string {
	if p.Text != "" {
		return p.Text
	}
	//
	return strconv.FormatInt(p.Value, 10)
}

func (Imm) isOperand() {}

// Ref is a label reference operand.
type Ref struct {
	// Name of the referenced label, without the leading '@'.
	Name string
}

// At constructs a label reference operand.
func At(name string) Ref {
	return Ref{name}
}

// String returns the assembly spelling, e.g. "@loop_avg".
func (p Ref) String() string {
	return "@" + p.Name
}

func (Ref) isOperand() {}

// Sym is a bare-word operand, used only by pseudo instructions (the "in" of a
// for loop).
type Sym struct {
	// Name is the word as written.
	Name string
}

// String returns the word itself.
func (p Sym) String() string {
	return p.Name
}

func (Sym) isOperand() {}
