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

// gridUnit is the acquisition alignment period in nanoseconds.  A repeated
// program must occupy a whole number of these periods so that consecutive
// repetitions stay phase locked with the digitiser clock.
const gridUnit = 20

// minUpdDelay is the smallest duration a parameter update may carry.
const minUpdDelay = 8

// alignGrid prepends a phase reset and a padding update such that the
// program's statically scheduled duration becomes a multiple of gridUnit.
// The padding is never allowed below minUpdDelay, so a perfectly aligned
// program still gains one full grid period.
func alignGrid(program seq.Program) seq.Program {
	pad := (gridUnit - scheduledDuration(program)%gridUnit) % gridUnit
	//
	if pad < minUpdDelay {
		pad += gridUnit
	}
	//
	aligned := seq.Program{
		seq.Ins(seq.ResetPh),
		seq.Ins(seq.UpdParam, seq.Int(pad)),
	}
	//
	return append(aligned, program...)
}

// scheduledDuration sums the statically known execution time of a program:
// plain waits and parameter updates contribute their delay, pulses and
// acquisitions their trailing window.  Register-valued durations and
// synchronisation waits contribute nothing.
func scheduledDuration(program seq.Program) int64 {
	var total int64
	//
	for _, ins := range program {
		switch ins.Op {
		case seq.Wait, seq.UpdParam:
			if duration, ok := ins.ImmAt(0); ok {
				total += duration
			}
		case seq.Play, seq.Acquire, seq.PlayChirp:
			if duration, ok := ins.ImmAt(len(ins.Args) - 1); ok {
				total += duration
			}
		}
	}
	//
	return total
}
