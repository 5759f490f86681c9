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
	"fmt"

	"github.com/esrlab/go-seqasm/pkg/seq"
)

// maxWait is the largest duration a single wait instruction carries.
const maxWait = 65535

// unrollLimit is the number of repeated instructions below which a counted
// loop is not worth its overhead.
const unrollLimit = 5

// expandDelays rewrites plain waits at or beyond the 16-bit hardware limit
// into chains of full-length waits, looped on the delay register when five
// or more are needed, plus a trailing remainder.  Register-valued waits and
// synchronisation waits pass through untouched.
func expandDelays(program seq.Program) (seq.Program, error) {
	var (
		out   seq.Program
		loops int
	)
	//
	for i, ins := range program {
		if ins.Op != seq.Wait {
			out = append(out, ins)
			continue
		}
		//
		duration, ok := ins.ImmAt(0)
		//
		if !ok {
			out = append(out, ins)
			continue
		}
		//
		if duration < 0 {
			return nil, seq.Errorf(seq.RangeError, "delays", i+1,
				"negative wait of %dns", duration)
		}
		//
		if duration < maxWait {
			out = append(out, ins)
			continue
		}
		//
		expansion, looped := expandDelay(duration, loops+1)
		//
		if looped {
			loops++
		}
		//
		out = append(out, expansion...)
	}
	//
	return out, nil
}

// expandDelay builds the instruction chain for one long delay, claiming the
// given 1-based label index if a loop turns out to be needed.
func expandDelay(duration int64, index int) (seq.Program, bool) {
	var (
		chain  seq.Program
		looped bool
	)
	//
	count := duration / maxWait
	remainder := duration % maxWait
	// a trailing wait below 4ns is illegal, steal 4ns from a full wait
	low := remainder > 0 && remainder < minPostDelay
	//
	if low {
		count--
	}
	//
	if count < unrollLimit {
		for i := int64(0); i < count; i++ {
			chain = append(chain, seq.Ins(seq.Wait, seq.Int(maxWait)))
		}
	} else {
		label := fmt.Sprintf("loop_delay%d", index)
		chain = append(chain,
			seq.Ins(seq.Move, seq.Int(count), seq.RegDelayLoop),
			seq.Label(label),
			seq.Ins(seq.Wait, seq.Int(maxWait)),
			seq.Ins(seq.Loop, seq.RegDelayLoop, seq.At(label)),
		)
		looped = true
	}
	//
	if remainder > 0 {
		if low {
			chain = append(chain, seq.Ins(seq.Wait, seq.Int(maxWait-minPostDelay)))
			remainder += minPostDelay
		}
		//
		chain = append(chain, seq.Ins(seq.Wait, seq.Int(remainder)))
	}
	//
	return chain, looped
}
