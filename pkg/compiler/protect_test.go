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

func Test_ProtectionSinglePulse(t *testing.T) {
	got, err := insertProtection(parse(t, `
		wait 100
		play 0,1,100
		wait 1000`), DefaultOptions().Protection)
	//
	if err != nil {
		t.Fatal(err)
	}
	// amplifier on before the pulse, full shutdown ladder after it, paid
	// for by the trailing wait
	checkProgram(t, got, `
		wait 100
		set_mrk 15
		upd_param 250
		play 0,1,100
		wait 50
		set_mrk 11
		upd_param 250
		set_mrk 3
		upd_param 150
		wait 550`)
}

func Test_ProtectionSwitchDelay(t *testing.T) {
	config := DefaultOptions().Protection
	config.SwitchOpenPost = 10
	//
	got, err := insertProtection(parse(t, `
		wait 100
		play 0,1,100
		wait 1000`), config)
	//
	if err != nil {
		t.Fatal(err)
	}
	//
	checkProgram(t, got, `
		wait 100
		set_mrk 7
		upd_param 10
		set_mrk 15
		upd_param 250
		play 0,1,100
		wait 50
		set_mrk 11
		upd_param 250
		set_mrk 3
		upd_param 150
		wait 550`)
}

func Test_ProtectionLongIdleParksAmplifier(t *testing.T) {
	got, err := insertProtection(parse(t, `
		wait 1000
		play 0,1,100
		wait 2000
		play 0,1,100
		wait 500`), DefaultOptions().Protection)
	//
	if err != nil {
		t.Fatal(err)
	}
	//
	checkProgram(t, got, `
		wait 1000
		set_mrk 15
		upd_param 250
		play 0,1,100
		wait 50
		set_mrk 11
		upd_param 4
		wait 1696
		set_mrk 15
		upd_param 250
		play 0,1,100
		wait 50
		set_mrk 11
		upd_param 250
		set_mrk 3
		upd_param 150
		wait 50`)
}

func Test_ProtectionKeepsShortIdle(t *testing.T) {
	got, err := insertProtection(parse(t, `
		wait 100
		play 0,1,100
		wait 1000
		play 0,1,100
		wait 500`), DefaultOptions().Protection)
	//
	if err != nil {
		t.Fatal(err)
	}
	// an exactly 1000ns idle is not long enough to park the amplifier
	checkProgram(t, got, `
		wait 100
		set_mrk 15
		upd_param 250
		play 0,1,100
		wait 1000
		play 0,1,100
		wait 50
		set_mrk 11
		upd_param 250
		set_mrk 3
		upd_param 150
		wait 50`)
}

func Test_ProtectionShortFinalWait(t *testing.T) {
	_, err := insertProtection(parse(t, `
		wait 100
		play 0,1,100
		wait 450`), DefaultOptions().Protection)
	//
	checkCategory(t, err, seq.TimingError)
}

func Test_ProtectionMissingFinalWait(t *testing.T) {
	_, err := insertProtection(parse(t, `
		wait 100
		play 0,1,100`), DefaultOptions().Protection)
	//
	checkCategory(t, err, seq.TimingError)
}

func Test_ProtectionRejectsTinyDelays(t *testing.T) {
	config := DefaultOptions().Protection
	config.AmpOnPost = 3
	//
	_, err := insertProtection(parse(t, "wait 100\nplay 0,1,100\nwait 1000"), config)
	//
	checkCategory(t, err, seq.RangeError)
}
