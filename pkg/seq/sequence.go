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
package seq

import (
	"encoding/json"
	"maps"
)

// Waveform is a named sample array with its hardware table index.  Samples
// are normalized amplitudes in [-1,1]; the sample count equals the waveform
// duration in nanoseconds.
type Waveform struct {
	// Data holds the samples.
	Data []float64 `json:"data"`
	// Index is the unique table slot (0-1023).
	Index int `json:"index"`
}

// Acquisition describes an acquisition channel.
type Acquisition struct {
	// NumBins is the size of the channel's bin buffers.
	NumBins int `json:"num_bins"`
	// Index is the unique channel slot referenced by acquire.
	Index int `json:"index"`
}

// Sequence bundles a program with the waveform, weight and acquisition
// tables it references.  This is the record exchanged with the hardware
// uploader, serialized as JSON with the program in canonical text form.
type Sequence struct {
	// Program holds the instructions.
	Program Program
	// Waveforms maps waveform names to their samples and table slots.
	Waveforms map[string]Waveform
	// Weights holds integration weights, shaped like waveforms.
	Weights map[string]Waveform
	// Acquisitions maps channel names to their bin counts and slots.
	Acquisitions map[string]Acquisition
}

// NewSequence constructs a sequence around a program, with empty tables.
func NewSequence(program Program) Sequence {
	return Sequence{
		Program:      program,
		Waveforms:    make(map[string]Waveform),
		Weights:      make(map[string]Waveform),
		Acquisitions: make(map[string]Acquisition),
	}
}

// Clone returns a copy whose program and tables can be edited without
// aliasing p.  Sample data is shared, since no component mutates samples in
// place.
func (p Sequence) Clone() Sequence {
	return Sequence{
		Program:      p.Program.Clone(),
		Waveforms:    maps.Clone(p.Waveforms),
		Weights:      maps.Clone(p.Weights),
		Acquisitions: maps.Clone(p.Acquisitions),
	}
}

// Check validates the cross-reference invariants: every label reference
// resolves, labels are unique, and every waveform or acquisition index named
// by a play or acquire exists in the corresponding table.
func (p Sequence) Check() error {
	labels, err := p.Program.Labels()
	//
	if err != nil {
		return err
	}
	//
	waveforms := make(map[int64]bool)
	acquisitions := make(map[int64]bool)
	//
	for _, wf := range p.Waveforms {
		waveforms[int64(wf.Index)] = true
	}
	//
	for _, acq := range p.Acquisitions {
		acquisitions[int64(acq.Index)] = true
	}
	//
	for i, ins := range p.Program {
		for _, arg := range ins.Args {
			if ref, ok := arg.(Ref); ok {
				if _, ok := labels[ref.Name]; !ok {
					return Errorf(StructuralError, "program", i+1, "undefined label @%s", ref.Name)
				}
			}
		}
		//
		switch ins.Op {
		case Play:
			for j := 0; j < 2; j++ {
				index, ok := ins.ImmAt(j)
				//
				if !ok {
					return Errorf(StructuralError, "program", i+1, "play waveform index must be immediate")
				} else if !waveforms[index] {
					return Errorf(StructuralError, "program", i+1, "play references unknown waveform %d", index)
				}
			}
		case Acquire:
			index, ok := ins.ImmAt(0)
			//
			if !ok {
				return Errorf(StructuralError, "program", i+1, "acquire channel must be immediate")
			} else if !acquisitions[index] {
				return Errorf(StructuralError, "program", i+1, "acquire references unknown channel %d", index)
			}
		}
	}
	//
	return nil
}

// sequenceJSON is the bundle wire shape.
type sequenceJSON struct {
	Waveforms    map[string]Waveform    `json:"waveforms"`
	Weights      map[string]Waveform    `json:"weights"`
	Acquisitions map[string]Acquisition `json:"acquisitions"`
	Program      string                 `json:"program"`
}

// MarshalJSON renders the bundle with the program in canonical text form.
func (p Sequence) MarshalJSON() ([]byte, error) {
	raw := sequenceJSON{p.Waveforms, p.Weights, p.Acquisitions, p.Program.String()}
	//
	if raw.Waveforms == nil {
		raw.Waveforms = map[string]Waveform{}
	}
	//
	if raw.Weights == nil {
		raw.Weights = map[string]Waveform{}
	}
	//
	if raw.Acquisitions == nil {
		raw.Acquisitions = map[string]Acquisition{}
	}
	//
	return json.Marshal(raw)
}

// UnmarshalJSON parses a bundle, including its program text.
func (p *Sequence) UnmarshalJSON(data []byte) error {
	var raw sequenceJSON
	//
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	//
	program, err := ParseProgram(raw.Program)
	//
	if err != nil {
		return err
	}
	//
	*p = Sequence{program, raw.Waveforms, raw.Weights, raw.Acquisitions}
	//
	return nil
}
