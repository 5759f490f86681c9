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

// The on-time of this fixture is 250+1000+3000 = 4250ns in its first
// stretch and 100ns in its second.
const overtriggerFixture = `
	set_mrk 15
	upd_param 250
	play 0,0,1000
	wait 3000
	set_mrk 11
	wait 10
	set_mrk 15
	wait 100
	set_mrk 3`

func Test_OvertriggerWithinBudget(t *testing.T) {
	if err := checkOvertrigger(parse(t, overtriggerFixture), 4251); err != nil {
		t.Fatal(err)
	}
}

func Test_OvertriggerAtBudget(t *testing.T) {
	err := checkOvertrigger(parse(t, overtriggerFixture), 4250)
	//
	checkCategory(t, err, seq.TimingError)
}

func Test_OvertriggerAmplifierLeftOn(t *testing.T) {
	err := checkOvertrigger(parse(t, "set_mrk 15\nwait 100"), 5000)
	//
	checkCategory(t, err, seq.TimingError)
}

func Test_OvertriggerRegisterMask(t *testing.T) {
	err := checkOvertrigger(parse(t, "set_mrk R5\nwait 100"), 5000)
	//
	checkCategory(t, err, seq.StructuralError)
}

func Test_OvertriggerIgnoresOffTime(t *testing.T) {
	// hours of off-time are fine as long as each on-stretch stays short
	err := checkOvertrigger(parse(t, `
		set_mrk 15
		wait 4000
		set_mrk 11
		wait 65000
		set_mrk 15
		wait 4000
		set_mrk 3`), 5000)
	//
	if err != nil {
		t.Fatal(err)
	}
}
