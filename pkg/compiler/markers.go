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
	"strconv"

	"github.com/esrlab/go-seqasm/pkg/seq"
)

// Marker codes driving the amplifier and protection switch.  The low two
// bits are the input/output switches, the high two the panel markers.
const (
	markerAmpOn     = 15
	markerAmpOff    = 11
	markerSwitch    = 7
	markerAllOff    = 3
	markerMaskWidth = 4
)

// convertMarkers rewrites set_mrk operands spelled as binary masks into the
// integers the hardware expects.  Only spellings longer than two digits are
// treated as masks, so small decimal operands pass through untouched; a mask
// must then have exactly four binary digits.
func convertMarkers(program seq.Program) (seq.Program, error) {
	for i, ins := range program {
		if ins.Op != seq.SetMrk || len(ins.Args) == 0 {
			continue
		}
		//
		imm, ok := ins.Args[0].(seq.Imm)
		//
		if !ok || len(imm.Text) <= 2 {
			continue
		}
		//
		value, err := strconv.ParseUint(imm.Text, 2, 8)
		//
		if err != nil || len(imm.Text) != markerMaskWidth {
			return nil, seq.Errorf(seq.StructuralError, "markers", i+1,
				"marker mask %q must have exactly four binary digits", imm.Text)
		}
		//
		program[i].Args[0] = seq.Int(int64(value))
	}
	//
	return program, nil
}
