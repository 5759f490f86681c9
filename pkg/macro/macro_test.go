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
	"strings"
	"testing"

	"github.com/esrlab/go-seqasm/pkg/seq"
)

func Test_Assignment(t *testing.T) {
	checkExpand(t,
		"R20 = 40\nR21 = R20",
		"move 40,R20\nmove R20,R21")
}

func Test_AddSub(t *testing.T) {
	checkExpand(t, "R20 = R20 + 2", "add R20,2,R20")
	checkExpand(t, "R5 = R6 - 3", "sub R6,3,R5")
	checkExpand(t, "R5 = R6 + R7", "add R6,R7,R5")
	// the immediate always lands in the second operand slot
	checkExpand(t, "R20 = 2 + R20", "add R20,2,R20")
	checkExpand(t, "R5 = 3 - R6", "sub R6,3,R5")
}

func Test_AddConstantsRejected(t *testing.T) {
	checkExpandError(t, "R5 = 2 + 3", seq.UnsupportedError)
}

func Test_MultUnrolled(t *testing.T) {
	checkExpand(t, "R20 = R16 * 3",
		"move R16,R20\nadd R20,R16,R20\nadd R20,R16,R20")
	// count 1 degenerates to a plain copy
	checkExpand(t, "R20 = R16 * 1", "move R16,R20")
	// immediate may come first
	checkExpand(t, "R20 = 2 * R16", "move R16,R20\nadd R20,R16,R20")
}

func Test_MultLooped(t *testing.T) {
	checkExpand(t, "R20 = R16 * 7",
		"move R16,R20\n"+
			"move 6,R1\n"+
			"loop_mult1:\n"+
			"add R20,R16,R20\n"+
			"nop\n"+
			"loop R1,@loop_mult1")
	// unroll/loop boundary: count 5 still unrolls, count 6 loops
	checkExpand(t, "R20 = R16 * 5",
		"move R16,R20\nadd R20,R16,R20\nadd R20,R16,R20\nadd R20,R16,R20\nadd R20,R16,R20")
	// a second loop gets its own label
	program, err := Expand("R20 = R16 * 7\nR21 = R17 * 7")
	//
	if err != nil {
		t.Fatal(err)
	}
	//
	if !strings.Contains(program.String(), "loop_mult2:") {
		t.Errorf("expected distinct second loop label:\n%s", program)
	}
}

func Test_MultRejected(t *testing.T) {
	checkExpandError(t, "R5 = 2 * 3", seq.UnsupportedError)
	checkExpandError(t, "R5 = R6 * R7", seq.UnsupportedError)
	checkExpandError(t, "R5 = R5 * 3", seq.UnsupportedError)
	checkExpandError(t, "R5 = R6 * 0", seq.UnsupportedError)
}

func Test_DivisionRejected(t *testing.T) {
	checkExpandError(t, "R5 = R6 / 2", seq.UnsupportedError)
}

func Test_MarkerShorthand(t *testing.T) {
	// digits are written t1 first, the hardware packs t1 lowest
	checkExpand(t, "set_mrk(t1t2t3t4=1010)", "set_mrk 5")
	checkExpand(t, "set_mrk(t1t2t3t4=0011)", "set_mrk 12")
	checkExpand(t, "set_mrk(t1t2t3t4=0000)", "set_mrk 0")
	checkExpand(t, "set_mrk(t1t2t3t4=1111)", "set_mrk 15")
}

func Test_MarkerShorthandMalformed(t *testing.T) {
	checkExpandError(t, "set_mrk(t1t2t3t4=101)", seq.StructuralError)
	checkExpandError(t, "set_mrk(t1t2t3t4=10102)", seq.StructuralError)
	checkExpandError(t, "set_mrk(1010)", seq.StructuralError)
}

func Test_SetHelpers(t *testing.T) {
	checkExpand(t, "set_ph(90)", "set_ph 250000000")
	checkExpand(t, "set_ph_delta(65)", "set_ph_delta 180555556")
	checkExpand(t, "set_awg_gain(0.5, -0.5)", "set_awg_gain 16384,-16384")
	checkExpand(t, "set_awg_offs(1, -1)", "set_awg_offs 32767,-32768")
	checkExpand(t, "set_freq(6.8e6)", "set_freq 27200000")
}

func Test_SetHelperRegisterArg(t *testing.T) {
	checkExpandError(t, "set_ph(R20)", seq.UnsupportedError)
	checkExpandError(t, "set_awg_gain(R20, 0.5)", seq.UnsupportedError)
}

func Test_SetHelperArity(t *testing.T) {
	checkExpandError(t, "set_awg_gain(0.5)", seq.StructuralError)
	checkExpandError(t, "set_ph(90, 30)", seq.StructuralError)
}

func Test_SetHelperRange(t *testing.T) {
	checkExpandError(t, "set_awg_gain(1.5, 0)", seq.RangeError)
	checkExpandError(t, "set_freq(600e6)", seq.RangeError)
}

func Test_InlineConverters(t *testing.T) {
	checkExpand(t, "move asm_ph(90),R20", "move 250000000,R20")
	checkExpand(t, "jlt R20,asm_ph(180),@loop", "jlt R20,500000000,@loop")
	// several calls, several converters, one line
	checkExpand(t, "for R20 in asm_ph(0), asm_ph(180), asm_gain(0.5)",
		"for R20,in,0,500000000,16384")
}

func Test_InlineConverterErrors(t *testing.T) {
	checkExpandError(t, "move asm_gain(1.5),R20", seq.RangeError)
	checkExpandError(t, "move asm_ph(R20),R21", seq.UnsupportedError)
	checkExpandError(t, "move asm_ph(90,R21", seq.StructuralError)
	checkExpandError(t, "move asm_ph(abc),R21", seq.StructuralError)
}

func Test_ReservedRegisters(t *testing.T) {
	for _, line := range []string{
		"R1 = 5",
		"R5 = R1 + 2",
		"wait R63",
		"R41 = 0",
		"move 5,R51",
	} {
		checkExpandError(t, line, seq.ReservedError)
	}
}

func Test_Passthrough(t *testing.T) {
	checkExpand(t,
		"# setup\nwait 100 # settle\n\nloop: play 0,1,500\nloop R20,@loop",
		"wait 100\nloop:\nplay 0,1,500\nloop R20,@loop")
}

func Test_MalformedAssignment(t *testing.T) {
	checkExpandError(t, "R3 = R2 * -5", seq.StructuralError)
	checkExpandError(t, "R3 = = 5", seq.StructuralError)
	checkExpandError(t, "5 = R3", seq.StructuralError)
}

// ===================================================================
// Test Helpers
// ===================================================================

// checkExpand lowers source and compares the canonical rendering against the
// expected text.
func checkExpand(t *testing.T, source, expected string) {
	t.Helper()
	//
	program, err := Expand(source)
	//
	if err != nil {
		t.Errorf("Expand(%q) failed: %v", source, err)
	} else if program.String() != expected {
		t.Errorf("Expand(%q):\ngot:\n%s\nexpected:\n%s", source, program.String(), expected)
	}
}

// checkExpandError lowers source expecting a categorical rejection.
func checkExpandError(t *testing.T, source string, category seq.Category) {
	t.Helper()
	//
	_, err := Expand(source)
	//
	if err == nil {
		t.Errorf("Expand(%q): expected %v error, got none", source, category)
	} else if !seq.IsCategory(err, category) {
		t.Errorf("Expand(%q): expected %v error, got %v", source, category, err)
	}
}
