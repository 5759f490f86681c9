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

import (
	"slices"
	"strings"
)

// Program is an ordered instruction sequence.  Transform passes treat
// programs as values: they return edited copies and never mutate shared
// operand state in place.
type Program []Instruction

// String renders the program in canonical form, one instruction per line.
func (p Program) String() string {
	var builder strings.Builder
	//
	for i, ins := range p {
		if i > 0 {
			builder.WriteByte('\n')
		}
		//
		builder.WriteString(ins.String())
	}
	//
	return builder.String()
}

// Clone returns a copy whose instructions can be edited without aliasing p.
func (p Program) Clone() Program {
	clone := make(Program, len(p))
	//
	for i, ins := range p {
		clone[i] = Instruction{ins.Op, slices.Clone(ins.Args)}
	}
	//
	return clone
}

// Labels builds the label table, mapping each label to the index of its
// definition line.  Duplicate definitions are structural errors.
func (p Program) Labels() (map[string]int, error) {
	labels := make(map[string]int)
	//
	for i, ins := range p {
		if !ins.IsLabel() {
			continue
		}
		//
		name := ins.LabelName()
		//
		if _, ok := labels[name]; ok {
			return nil, Errorf(StructuralError, "program", i+1, "duplicate label %q", name)
		}
		//
		labels[name] = i
	}
	//
	return labels, nil
}
