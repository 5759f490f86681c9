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

// minPostDelay is the shortest nonzero post-delay the hardware can schedule.
const minPostDelay = 4

// longIdle is the inter-pulse wait beyond which the amplifier is switched
// off rather than left idling on.
const longIdle = 1000

// insertProtection inserts the amplifier and protection-switch marker
// sequences around the program's pulses: switch-open and amplifier-on before
// the first pulse, amplifier-off across long inter-pulse waits, and the full
// shutdown ladder after the last pulse.  Inserted delays that extend a
// running sequence are paid back by shortening a nearby plain wait; a wait
// too short to pay is a timing error.
func insertProtection(program seq.Program, config Protection) (seq.Program, error) {
	for _, delay := range []int{config.SwitchOpenPost, config.AmpOnPost,
		config.AmpOffPre, config.AmpOffPost, config.SwitchClosedPost} {
		if delay != 0 && delay <= minPostDelay {
			return nil, seq.Errorf(seq.RangeError, "protection", 0,
				"protection delays must be 0 or greater than %d, got %d", minPostDelay, delay)
		}
	}
	//
	var (
		out       seq.Program
		ampOn     bool
		open      bool
		plays     = countPlays(program)
		counter   int
		reduction int64
	)
	//
	for i, ins := range program {
		switch {
		case isPlainWait(ins):
			duration, _ := ins.ImmAt(0)
			// long idle between pulses: park the amplifier off, and account
			// for the off sequence plus the re-enable before the next pulse
			if ampOn && counter >= 1 && counter < plays && duration > longIdle {
				if config.AmpOffPre > minPostDelay {
					out = append(out, seq.Ins(seq.Wait, seq.Int(int64(config.AmpOffPre))))
					reduction += int64(config.AmpOffPre)
				}
				//
				out = append(out,
					seq.Ins(seq.SetMrk, seq.Int(markerAmpOff)),
					seq.Ins(seq.UpdParam, seq.Int(minPostDelay)))
				//
				reduction += int64(minPostDelay + config.AmpOnPost)
				ampOn = false
			}
			//
			if reduction > 0 {
				if duration-reduction <= 0 {
					return nil, seq.Errorf(seq.TimingError, "protection", i+1,
						"wait of %dns too short to absorb %dns of inserted protection delays",
						duration, reduction)
				}
				//
				duration -= reduction
				reduction = 0
			}
			//
			out = append(out, seq.Ins(seq.Wait, seq.Int(duration)))
		case ins.Op == seq.Play || ins.Op == seq.PlayChirp:
			counter++
			//
			if !open && config.SwitchOpenPost > 0 {
				out = append(out,
					seq.Ins(seq.SetMrk, seq.Int(markerSwitch)),
					seq.Ins(seq.UpdParam, seq.Int(int64(config.SwitchOpenPost))))
				//
				open = true
			}
			//
			if !ampOn {
				out = append(out,
					seq.Ins(seq.SetMrk, seq.Int(markerAmpOn)),
					seq.Ins(seq.UpdParam, seq.Int(int64(config.AmpOnPost))))
				//
				ampOn = true
				open = true
			}
			//
			out = append(out, ins)
			// shutdown ladder after the last pulse
			if counter == plays {
				if reduction != 0 {
					return nil, seq.Errorf(seq.TimingError, "protection", i+1,
						"pending %dns delay reduction not absorbed before last pulse", reduction)
				}
				//
				if config.AmpOffPre > minPostDelay {
					out = append(out, seq.Ins(seq.Wait, seq.Int(int64(config.AmpOffPre))))
					reduction += int64(config.AmpOffPre)
				}
				//
				if config.AmpOffPre > minPostDelay || config.AmpOffPost > minPostDelay {
					out = append(out, seq.Ins(seq.SetMrk, seq.Int(markerAmpOff)))
				}
				//
				if config.AmpOffPost > minPostDelay {
					out = append(out, seq.Ins(seq.UpdParam, seq.Int(int64(config.AmpOffPost))))
					reduction += int64(config.AmpOffPost)
				}
				//
				out = append(out, seq.Ins(seq.SetMrk, seq.Int(markerAllOff)))
				//
				if config.SwitchClosedPost > minPostDelay {
					out = append(out, seq.Ins(seq.UpdParam, seq.Int(int64(config.SwitchClosedPost))))
					reduction += int64(config.SwitchClosedPost)
				}
			}
		default:
			out = append(out, ins)
			//
			if ins.Op == seq.End && reduction != 0 {
				return nil, seq.Errorf(seq.TimingError, "protection", i+1,
					"wait expected before end of loop to absorb %dns of protection delays", reduction)
			}
		}
	}
	//
	if reduction != 0 {
		return nil, seq.Errorf(seq.TimingError, "protection", 0,
			"missing wait after last pulse to absorb %dns of protection delays", reduction)
	}
	//
	return out, nil
}

// isPlainWait reports whether the instruction is a wait with an immediate
// duration, the only kind protection may lengthen or shorten.
func isPlainWait(ins seq.Instruction) bool {
	if ins.Op != seq.Wait {
		return false
	}
	//
	_, ok := ins.ImmAt(0)
	//
	return ok
}
