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

func Test_FoldWithRemainder(t *testing.T) {
	sequence := foldSequence(t, "play 0,1,2500", 2500, 2500)
	//
	folded, err := foldWaveforms(sequence, 32)
	//
	if err != nil {
		t.Fatal(err)
	}
	// 78 whole steps of 32 leave a legal 4-sample remainder
	checkProgram(t, folded.Program, `
		move 78,R2
		loop_play1:
		play 0,1,32
		loop R2,@loop_play1
		play 1023,1022,4`)
	//
	checkWaveform(t, folded, "long_I", 0, 32)
	checkWaveform(t, folded, "long_Q", 1, 32)
	checkWaveform(t, folded, "long_I_compl", 1023, 4)
	checkWaveform(t, folded, "long_Q_compl", 1022, 4)
	// folded plays plus the complement reproduce the original length
	if total := 78*32 + 4; total != 2500 {
		t.Fatalf("folded duration %d, want 2500", total)
	}
}

func Test_FoldExactMultiple(t *testing.T) {
	sequence := foldSequence(t, "play 0,1,1600", 1600, 1600)
	//
	folded, err := foldWaveforms(sequence, 32)
	//
	if err != nil {
		t.Fatal(err)
	}
	// no remainder, no complement play
	checkProgram(t, folded.Program, `
		move 50,R2
		loop_play1:
		play 0,1,32
		loop R2,@loop_play1`)
	//
	if _, ok := folded.Waveforms["long_I_compl"]; ok {
		t.Error("exact multiple should not allocate a complement")
	}
}

func Test_FoldBoostsTinyRemainder(t *testing.T) {
	// 2466 = 77*32 + 2; a 2-sample play is illegal, so one loop turn moves
	// into the complement
	sequence := foldSequence(t, "play 0,1,2466", 2466, 2466)
	//
	folded, err := foldWaveforms(sequence, 32)
	//
	if err != nil {
		t.Fatal(err)
	}
	//
	checkProgram(t, folded.Program, `
		move 76,R2
		loop_play1:
		play 0,1,32
		loop R2,@loop_play1
		play 1023,1022,34`)
	//
	if total := 76*32 + 34; total != 2466 {
		t.Fatalf("folded duration %d, want 2466", total)
	}
}

func Test_FoldShortWaveformsUntouched(t *testing.T) {
	sequence := foldSequence(t, "play 0,1,800", 800, 800)
	//
	folded, err := foldWaveforms(sequence, 32)
	//
	if err != nil {
		t.Fatal(err)
	}
	//
	checkProgram(t, folded.Program, "play 0,1,800")
}

func Test_FoldRejectsNonConstant(t *testing.T) {
	sequence := foldSequence(t, "play 0,1,2000", 2000, 2000)
	wfm := sequence.Waveforms["long_I"]
	wfm.Data[17] = 0.9
	//
	_, err := foldWaveforms(sequence, 32)
	//
	checkCategory(t, err, seq.UnsupportedError)
}

func Test_FoldRejectsShortStep(t *testing.T) {
	_, err := foldWaveforms(foldSequence(t, "play 0,1,2000", 2000, 2000), 16)
	//
	checkCategory(t, err, seq.RangeError)
}

func Test_FoldRejectsCoarseStep(t *testing.T) {
	_, err := foldWaveforms(foldSequence(t, "play 0,1,1200", 1200, 1200), 400)
	//
	checkCategory(t, err, seq.RangeError)
}

func Test_FoldRejectsLoneChannel(t *testing.T) {
	// only the first channel exceeds the threshold
	_, err := foldWaveforms(foldSequence(t, "play 0,1,2000", 2000, 500), 32)
	//
	checkCategory(t, err, seq.StructuralError)
}

func Test_FoldRejectsMismatchedLengths(t *testing.T) {
	_, err := foldWaveforms(foldSequence(t, "play 0,1,2500", 2500, 3000), 32)
	//
	checkCategory(t, err, seq.StructuralError)
}

// foldSequence builds a sequence with one constant waveform pair of the
// given lengths.
func foldSequence(t *testing.T, source string, lenI, lenQ int) seq.Sequence {
	t.Helper()
	//
	sequence := seq.NewSequence(parse(t, source))
	//
	dataI := make([]float64, lenI)
	dataQ := make([]float64, lenQ)
	//
	for i := range dataI {
		dataI[i] = 0.5
	}
	//
	for i := range dataQ {
		dataQ[i] = 0.25
	}
	//
	sequence.Waveforms["long_I"] = seq.Waveform{Data: dataI, Index: 0}
	sequence.Waveforms["long_Q"] = seq.Waveform{Data: dataQ, Index: 1}
	//
	return sequence
}

// checkWaveform asserts a waveform's index and sample count.
func checkWaveform(t *testing.T, sequence seq.Sequence, name string, index, length int) {
	t.Helper()
	//
	wfm, ok := sequence.Waveforms[name]
	//
	if !ok {
		t.Fatalf("missing waveform %q", name)
	}
	//
	if wfm.Index != index || len(wfm.Data) != length {
		t.Fatalf("waveform %q: got index %d length %d, want %d and %d",
			name, wfm.Index, len(wfm.Data), index, length)
	}
}
