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
	"github.com/esrlab/go-seqasm/pkg/seq"
)

// buildDummy derives the warm-up variant of a program.  Warm-up shots
// exercise the full pulse timeline so the signal chain settles, but must
// not record anything, so every acquisition is replaced by a wait of the
// same duration.  When more than one warm-up shot is requested the variant
// is wrapped in a counted loop on the dummy register.
func buildDummy(program seq.Program, shots int) seq.Program {
	dummy := make(seq.Program, 0, len(program))
	//
	for _, ins := range program {
		if ins.Op == seq.Acquire {
			window := ins.Args[len(ins.Args)-1]
			dummy = append(dummy, seq.Ins(seq.Wait, window))
		} else {
			dummy = append(dummy, ins)
		}
	}
	//
	if shots > 1 {
		dummy = wrapLoop(dummy, shots, seq.RegDummy, "loop_dummy")
	}
	//
	return dummy
}
