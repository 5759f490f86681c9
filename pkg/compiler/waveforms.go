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
	"sort"

	"github.com/esrlab/go-seqasm/pkg/seq"
)

// foldThreshold is the waveform length in samples beyond which upload
// memory runs out and folding kicks in.
const foldThreshold = 1000

// minFoldStep guards against FIFO underruns when looping very short plays.
const minFoldStep = 24

// complTop is the waveform index from which complement waveforms are
// allocated downwards.
const complTop = 1023

// foldable records one long constant waveform scheduled for folding.
type foldable struct {
	name     string
	length   int
	count    int64
	compl    string
	complIdx int
	complLen int
}

// foldWaveforms replaces every waveform longer than foldThreshold samples
// by a step-sized slice played in a counted loop, plus a complement play
// covering the remainder.  Only constant waveforms fold, and both channels
// of a play must fold together.
func foldWaveforms(sequence seq.Sequence, step int) (seq.Sequence, error) {
	var candidates []*foldable
	//
	for name, wfm := range sequence.Waveforms {
		if len(wfm.Data) > foldThreshold {
			candidates = append(candidates, &foldable{name: name, length: len(wfm.Data)})
		}
	}
	//
	if len(candidates) == 0 {
		return sequence, nil
	}
	// complement indices are handed out in waveform index order
	sort.Slice(candidates, func(i, j int) bool {
		return sequence.Waveforms[candidates[i].name].Index < sequence.Waveforms[candidates[j].name].Index
	})
	//
	byIndex := make(map[int]*foldable)
	compl := 0
	//
	for _, fold := range candidates {
		wfm := sequence.Waveforms[fold.name]
		//
		if step < minFoldStep {
			return sequence, seq.Errorf(seq.RangeError, "waveforms", 0,
				"folding step %dns risks an underrun, minimum is %dns", step, minFoldStep)
		}
		//
		if step >= fold.length/3 {
			return sequence, seq.Errorf(seq.RangeError, "waveforms", 0,
				"folding step %dns too coarse for the %d samples of %q", step, fold.length, fold.name)
		}
		//
		if !constant(wfm.Data) {
			return sequence, seq.Errorf(seq.UnsupportedError, "waveforms", 0,
				"cannot fold %q, only constant waveforms fold", fold.name)
		}
		//
		fold.count = int64(fold.length / step)
		remainder := fold.length % step
		//
		if remainder > 0 {
			// remainder plays below 4ns are illegal, take one loop turn over
			if remainder < minPostDelay {
				remainder += step
				fold.count--
			}
			//
			fold.compl = fold.name + "_compl"
			fold.complIdx = complTop - compl
			fold.complLen = remainder
			compl++
			//
			if _, taken := sequence.Waveforms[fold.compl]; taken {
				return sequence, seq.Errorf(seq.StructuralError, "waveforms", 0,
					"folding %q needs the waveform name %q", fold.name, fold.compl)
			}
			//
			sequence.Waveforms[fold.compl] = seq.Waveform{Data: wfm.Data[:remainder], Index: fold.complIdx}
		}
		//
		sequence.Waveforms[fold.name] = seq.Waveform{Data: wfm.Data[:step], Index: wfm.Index}
		byIndex[wfm.Index] = fold
	}
	//
	program, err := rewriteFolded(sequence.Program, byIndex, step)
	//
	if err != nil {
		return sequence, err
	}
	//
	sequence.Program = program
	//
	return sequence, nil
}

// constant reports whether every sample equals the first.
func constant(data []float64) bool {
	for _, sample := range data {
		if sample != data[0] {
			return false
		}
	}
	//
	return true
}

// rewriteFolded replaces plays of folded waveform pairs by counted loops of
// step-sized plays, followed by the complement play when there is one.
func rewriteFolded(program seq.Program, folds map[int]*foldable, step int) (seq.Program, error) {
	var (
		out   seq.Program
		index int
	)
	//
	for i, ins := range program {
		if ins.Op != seq.Play {
			out = append(out, ins)
			continue
		}
		//
		one, ok1 := ins.ImmAt(0)
		two, ok2 := ins.ImmAt(1)
		//
		if !ok1 || !ok2 {
			out = append(out, ins)
			continue
		}
		//
		first, fold1 := folds[int(one)]
		second, fold2 := folds[int(two)]
		//
		if !fold1 && !fold2 {
			out = append(out, ins)
			continue
		}
		//
		if fold1 != fold2 {
			return nil, seq.Errorf(seq.StructuralError, "waveforms", i+1,
				"waveforms %d and %d must fold together", one, two)
		}
		//
		if first.length != second.length {
			return nil, seq.Errorf(seq.StructuralError, "waveforms", i+1,
				"waveforms %d and %d differ in length, %d versus %d samples",
				one, two, first.length, second.length)
		}
		//
		index++
		label := fmt.Sprintf("loop_play%d", index)
		out = append(out,
			seq.Ins(seq.Move, seq.Int(first.count), seq.RegWaveLoop),
			seq.Label(label),
			seq.Ins(seq.Play, seq.Int(one), seq.Int(two), seq.Int(int64(step))),
			seq.Ins(seq.Loop, seq.RegWaveLoop, seq.At(label)),
		)
		//
		if first.compl != "" {
			out = append(out, seq.Ins(seq.Play,
				seq.Int(int64(first.complIdx)),
				seq.Int(int64(second.complIdx)),
				seq.Int(int64(first.complLen))))
		}
	}
	//
	return out, nil
}
