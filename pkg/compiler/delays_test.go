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
	"testing"

	"github.com/esrlab/go-seqasm/pkg/seq"
)

func Test_DelayShortUntouched(t *testing.T) {
	got, err := expandDelays(parse(t, "wait 65534\nwait R5"))
	//
	if err != nil {
		t.Fatal(err)
	}
	//
	checkProgram(t, got, "wait 65534\nwait R5")
}

func Test_DelayExactLimit(t *testing.T) {
	got, err := expandDelays(parse(t, "wait 65535"))
	//
	if err != nil {
		t.Fatal(err)
	}
	//
	checkProgram(t, got, "wait 65535")
}

func Test_DelayTinyRemainder(t *testing.T) {
	// a 1ns remainder is illegal, so 4ns move from a full-length wait
	got, err := expandDelays(parse(t, "wait 65536"))
	//
	if err != nil {
		t.Fatal(err)
	}
	//
	checkProgram(t, got, "wait 65531\nwait 5")
}

func Test_DelayUnrolled(t *testing.T) {
	got, err := expandDelays(parse(t, "wait 200000"))
	//
	if err != nil {
		t.Fatal(err)
	}
	// 3*65535+3395 stays below the loop threshold
	checkProgram(t, got, `
		wait 65535
		wait 65535
		wait 65535
		wait 3395`)
}

func Test_DelayLooped(t *testing.T) {
	got, err := expandDelays(parse(t, "wait 1114096"))
	//
	if err != nil {
		t.Fatal(err)
	}
	// 17*65535+1: the 1ns remainder drops one loop turn to stay legal
	checkProgram(t, got, `
		move 16,R1
		loop_delay1:
		wait 65535
		loop R1,@loop_delay1
		wait 65531
		wait 5`)
}

func Test_DelayDistinctLoopLabels(t *testing.T) {
	got, err := expandDelays(parse(t, "wait 655350\nwait 100\nwait 655350"))
	//
	if err != nil {
		t.Fatal(err)
	}
	//
	checkProgram(t, got, `
		move 10,R1
		loop_delay1:
		wait 65535
		loop R1,@loop_delay1
		wait 100
		move 10,R1
		loop_delay2:
		wait 65535
		loop R1,@loop_delay2`)
}

func Test_DelayNegative(t *testing.T) {
	_, err := expandDelays(parse(t, "wait -5"))
	//
	checkCategory(t, err, seq.RangeError)
}
