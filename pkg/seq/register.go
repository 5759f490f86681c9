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

import "fmt"

// NumRegisters is the size of the sequencer register file.
const NumRegisters = 64

// Register identifies one of the sequencer's 64 unsigned 32-bit registers.
type Register uint8

// R constructs a register identifier from its index.
func R(index uint) Register {
	if index >= NumRegisters {
		panic(fmt.Sprintf("register index %d out of range", index))
	}
	//
	return Register(index)
}

// String returns the assembly spelling, e.g. "R63".
func (r Register) String() string {
	return fmt.Sprintf("R%d", uint8(r))
}

func (Register) isOperand() {}

// Registers reserved for generated code.  The macro assembler rejects user
// programs which name any of these; the transform passes and the chirp
// expansion then use them freely.
const (
	// RegAverage counts the outer averaging loop.
	RegAverage Register = 0
	// RegDelayLoop counts long-delay and multiplication loops.
	RegDelayLoop Register = 1
	// RegWaveLoop counts folded-waveform play loops.
	RegWaveLoop Register = 2
	// RegChirpFreq accumulates the swept frequency word during a chirp.
	RegChirpFreq Register = 8
	// RegChirpOffs accumulates the ramped offset code during a chirp.
	RegChirpOffs Register = 9
	// RegReceiverPhase accumulates the demodulation phase derived from the
	// phase-cycling pathway.
	RegReceiverPhase Register = 40
	// RegPhaseFirst and RegPhaseLast bound the per-step phase-cycling
	// counters (R41 outermost).
	RegPhaseFirst Register = 41
	RegPhaseLast  Register = 49
	// RegShot counts the per-average shot loop.
	RegShot Register = 51
	// RegDummy counts the dummy-shot loop.
	RegDummy Register = 63
)

// ReservedRole returns the generated-code role of r, or the empty string when
// user programs may freely use it.
func (r Register) ReservedRole() string {
	switch {
	case r == RegAverage:
		return "average loop counter"
	case r == RegDelayLoop:
		return "delay and multiplication loop counter"
	case r == RegWaveLoop:
		return "waveform loop counter"
	case r == RegChirpFreq:
		return "chirp frequency accumulator"
	case r == RegChirpOffs:
		return "chirp offset accumulator"
	case r == RegReceiverPhase:
		return "receiver phase accumulator"
	case r >= RegPhaseFirst && r <= RegPhaseLast:
		return "phase-cycling loop counter"
	case r == RegShot:
		return "shot loop counter"
	case r == RegDummy:
		return "dummy-shot loop counter"
	}
	//
	return ""
}
