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
	"strings"
	"testing"

	"github.com/esrlab/go-seqasm/pkg/seq"
)

func Test_DefaultOptions(t *testing.T) {
	options := DefaultOptions()
	//
	if options.Averages != 1 || options.Shots != 1 || options.DummyShots != 0 {
		t.Errorf("default repetition counts wrong: %+v", options)
	}
	//
	if !options.Protection.Enabled || options.Protection.AmpOnPost != 250 {
		t.Errorf("default protection wrong: %+v", options.Protection)
	}
	//
	if options.MaxAmpOn != 5000 || options.WaveformStep != 32 || options.ChirpGain != 0.3 {
		t.Errorf("default limits wrong: %+v", options)
	}
	//
	if options.phaseCycling() {
		t.Error("phase cycling should be off by default")
	}
	//
	if options.repeated() {
		t.Error("a default compilation runs exactly once")
	}
}

func Test_CompileSingleRun(t *testing.T) {
	options := DefaultOptions()
	options.Protection.Enabled = false
	options.MaxAmpOn = 0
	//
	compiled, err := Compile(testSequence(t, `
		wait 100
		play 0,1,100
		wait 100`), options)
	//
	if err != nil {
		t.Fatal(err)
	}
	//
	checkProgram(t, compiled.Program, `
		wait 100
		play 0,1,100
		wait 100
		stop`)
}

func Test_CompileAverages(t *testing.T) {
	options := DefaultOptions()
	options.Averages = 64
	options.Protection.Enabled = false
	options.MaxAmpOn = 0
	//
	compiled, err := Compile(testSequence(t, `
		wait 200
		play 0,1,100
		acquire 0,0,100
		wait 100`), options)
	//
	if err != nil {
		t.Fatal(err)
	}
	//
	checkProgram(t, compiled.Program, `
		move 64,R0
		loop_avg:
		reset_ph
		upd_param 20
		wait 200
		play 0,1,100
		acquire 0,0,100
		wait 100
		loop R0,@loop_avg
		stop`)
}

func Test_CompileShotsAndDummy(t *testing.T) {
	options := DefaultOptions()
	options.Averages = 2
	options.Shots = 3
	options.DummyShots = 2
	options.Protection.Enabled = false
	options.MaxAmpOn = 0
	//
	compiled, err := Compile(testSequence(t, `
		wait 100
		acquire 0,0,100`), options)
	//
	if err != nil {
		t.Fatal(err)
	}
	// warm-up runs first with the acquisition turned into a wait
	checkProgram(t, compiled.Program, `
		move 2,R63
		loop_dummy:
		reset_ph
		upd_param 20
		wait 100
		wait 100
		loop R63,@loop_dummy
		move 2,R0
		loop_avg:
		move 3,R51
		loop_shot:
		reset_ph
		upd_param 20
		wait 100
		acquire 0,0,100
		loop R51,@loop_shot
		loop R0,@loop_avg
		stop`)
}

func Test_CompileMarkers(t *testing.T) {
	options := DefaultOptions()
	options.Protection.Enabled = false
	//
	compiled, err := Compile(testSequence(t, `
		set_mrk 1010
		upd_param 100
		set_mrk 3
		wait 100`), options)
	//
	if err != nil {
		t.Fatal(err)
	}
	//
	checkProgram(t, compiled.Program, `
		set_mrk 10
		upd_param 100
		set_mrk 3
		wait 100
		stop`)
}

func Test_CompileMarkerMalformed(t *testing.T) {
	options := DefaultOptions()
	options.Protection.Enabled = false
	//
	_, err := Compile(testSequence(t, "set_mrk 101\nwait 100"), options)
	//
	checkCategory(t, err, seq.StructuralError)
}

func Test_CompileProtectedTimeline(t *testing.T) {
	compiled, err := Compile(testSequence(t, `
		wait 1000
		play 0,1,100
		wait 2000
		play 0,1,100
		wait 500`), DefaultOptions())
	//
	if err != nil {
		t.Fatal(err)
	}
	// the long inter-pulse wait parks the amplifier off and pays for the
	// inserted delays; the trailing wait pays for the shutdown ladder
	checkProgram(t, compiled.Program, `
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
		wait 50
		stop`)
}

func Test_CompileOvertriggerRejects(t *testing.T) {
	_, err := Compile(testSequence(t, `
		wait 100
		play 0,1,6000
		wait 500`), DefaultOptions())
	//
	checkCategory(t, err, seq.TimingError)
}

func Test_CompileLongDelay(t *testing.T) {
	options := DefaultOptions()
	options.Protection.Enabled = false
	//
	compiled, err := Compile(testSequence(t, "wait 1114096"), options)
	//
	if err != nil {
		t.Fatal(err)
	}
	//
	checkProgram(t, compiled.Program, `
		move 16,R1
		loop_delay1:
		wait 65535
		loop R1,@loop_delay1
		wait 65531
		wait 5
		stop`)
}

func Test_CompileRejectsUnknownWaveform(t *testing.T) {
	options := DefaultOptions()
	options.Protection.Enabled = false
	options.MaxAmpOn = 0
	//
	_, err := Compile(testSequence(t, "play 7,7,100"), options)
	//
	checkCategory(t, err, seq.StructuralError)
}

func Test_CompileLeavesInputAlone(t *testing.T) {
	options := DefaultOptions()
	options.Averages = 4
	options.Protection.Enabled = false
	options.MaxAmpOn = 0
	//
	sequence := testSequence(t, "wait 100\nplay 0,1,100")
	before := sequence.Program.String()
	//
	if _, err := Compile(sequence, options); err != nil {
		t.Fatal(err)
	}
	//
	if sequence.Program.String() != before {
		t.Error("compilation modified its input program")
	}
	//
	if len(sequence.Waveforms) != 2 {
		t.Error("compilation modified its input waveforms")
	}
}

// ===================================================================
// Test Helpers
// ===================================================================

// parse builds a program from source text, failing the test on error.
func parse(t *testing.T, source string) seq.Program {
	t.Helper()
	//
	program, err := seq.ParseProgram(source)
	//
	if err != nil {
		t.Fatal(err)
	}
	//
	return program
}

// testSequence wraps source in a sequence holding one waveform pair and one
// acquisition channel, enough to satisfy the final cross checks.
func testSequence(t *testing.T, source string) seq.Sequence {
	t.Helper()
	//
	sequence := seq.NewSequence(parse(t, source))
	sequence.Waveforms["pulse_I"] = seq.Waveform{Data: make([]float64, 100), Index: 0}
	sequence.Waveforms["pulse_Q"] = seq.Waveform{Data: make([]float64, 100), Index: 1}
	sequence.Acquisitions["echo"] = seq.Acquisition{NumBins: 1, Index: 0}
	//
	return sequence
}

// checkProgram compares a program against its expected rendering, line by
// line so a failure points at the first divergence.
func checkProgram(t *testing.T, got seq.Program, want string) {
	t.Helper()
	//
	gotLines := strings.Split(got.String(), "\n")
	wantLines := programLines(want)
	//
	for i := 0; i < len(gotLines) && i < len(wantLines); i++ {
		if gotLines[i] != wantLines[i] {
			t.Fatalf("line %d: got %q, want %q", i+1, gotLines[i], wantLines[i])
		}
	}
	//
	if len(gotLines) != len(wantLines) {
		t.Fatalf("got %d lines, want %d", len(gotLines), len(wantLines))
	}
}

// programLines splits an indented expectation literal into trimmed lines.
func programLines(text string) []string {
	var lines []string
	//
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	//
	return lines
}

// checkCategory asserts that err carries the given category.
func checkCategory(t *testing.T, err error, category seq.Category) {
	t.Helper()
	//
	if err == nil {
		t.Fatalf("expected a %s, got success", category)
	}
	//
	if !seq.IsCategory(err, category) {
		t.Fatalf("expected a %s, got: %v", category, err)
	}
}
