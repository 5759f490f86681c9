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

// CheckOvertrigger validates amplifier timing of an already-assembled
// program, outside any compilation.  Compile runs the same check as its
// third pass.
func CheckOvertrigger(program seq.Program, maxAmpOn int) error {
	return checkOvertrigger(program, maxAmpOn)
}

// checkOvertrigger replays the program's marker timeline and accumulates
// continuous amplifier-on time: plain waits, parameter updates and pulse
// durations while the amplifier-on code is latched.  It fails once any
// stretch reaches maxAmpOn nanoseconds, or when the program ends with the
// amplifier on.  The check is read-only.
func checkOvertrigger(program seq.Program, maxAmpOn int) error {
	var (
		on      bool
		stretch int64
		longest int64
	)
	//
	for i, ins := range program {
		switch ins.Op {
		case seq.SetMrk:
			value, ok := ins.ImmAt(0)
			//
			if !ok {
				return seq.Errorf(seq.StructuralError, "overtrigger", i+1,
					"cannot validate amplifier timing of a register-valued set_mrk")
			}
			//
			if value == markerAmpOn {
				on = true
			} else {
				on = false
				longest = max(longest, stretch)
				stretch = 0
			}
		case seq.Wait, seq.UpdParam:
			if on {
				if duration, ok := ins.ImmAt(0); ok {
					stretch += duration
				}
			}
		case seq.Play, seq.PlayChirp:
			if on {
				if duration, ok := ins.ImmAt(len(ins.Args) - 1); ok {
					stretch += duration
				}
			}
		}
	}
	//
	if on {
		return seq.Errorf(seq.TimingError, "overtrigger", 0,
			"amplifier left on at end of program")
	}
	//
	if longest >= int64(maxAmpOn) {
		return seq.Errorf(seq.TimingError, "overtrigger", 0,
			"amplifier on for %dns continuously, budget is %dns", longest, maxAmpOn)
	}
	//
	return nil
}
