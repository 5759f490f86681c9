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

// Package seq defines the assembly dialect shared by the macro assembler, the
// transform passes and the emulator: opcodes, operands, instructions,
// programs with label tables, and the sequence bundle (program plus waveform,
// weight and acquisition tables) exchanged with the hardware uploader.
package seq

// Opcode identifies an instruction mnemonic.  The set is closed: it covers
// exactly the target sequencer's instruction set plus the pseudo instructions
// consumed by transform passes (For, End, PlayChirp) and the parser-internal
// label sentinel.
type Opcode string

const (
	// Move writes an immediate or register value into a register.
	Move Opcode = "move"
	// Add / Sub / Asl / Asr perform wrapping 32-bit register arithmetic, with
	// the destination register last.
	Add Opcode = "add"
	// Sub subtracts the second operand from the first.
	Sub Opcode = "sub"
	// Asl shifts left.
	Asl Opcode = "asl"
	// Asr shifts right.
	Asr Opcode = "asr"
	// Jmp branches unconditionally to a label.
	Jmp Opcode = "jmp"
	// Jge branches when a register is greater than or equal to a value.
	Jge Opcode = "jge"
	// Jlt branches when a register is less than a value.
	Jlt Opcode = "jlt"
	// Loop decrements a register and branches while the result is positive.
	Loop Opcode = "loop"
	// Play emits two waveforms (by table index) for a given duration.
	Play Opcode = "play"
	// SetMrk latches the four digital marker outputs (value 0-15).
	SetMrk Opcode = "set_mrk"
	// Wait idles for a duration given as immediate or register.
	Wait Opcode = "wait"
	// WaitSync idles until the cross-sequencer sync pulse.
	WaitSync Opcode = "wait_sync"
	// UpdParam applies latched parameters and idles for a duration.
	UpdParam Opcode = "upd_param"
	// Acquire captures a window into an acquisition channel and bin.
	Acquire Opcode = "acquire"
	// ResetPh zeroes the NCO phase accumulator.
	ResetPh Opcode = "reset_ph"
	// SetPh latches an absolute NCO phase in integer phase steps.
	SetPh Opcode = "set_ph"
	// SetPhDelta latches a relative NCO phase offset in phase steps.
	SetPhDelta Opcode = "set_ph_delta"
	// SetAwgGain latches the I and Q path gain codes.
	SetAwgGain Opcode = "set_awg_gain"
	// SetAwgOffs latches the I and Q path offset codes.
	SetAwgOffs Opcode = "set_awg_offs"
	// SetFreq latches the NCO frequency in integer frequency steps.
	SetFreq Opcode = "set_freq"
	// Nop does nothing for one issue slot.
	Nop Opcode = "nop"
	// Illegal faults the sequencer.
	Illegal Opcode = "illegal"
	// Stop halts execution.
	Stop Opcode = "stop"
)

// Pseudo instructions.  These never reach the hardware: For/End are lowered
// by the loop pass and PlayChirp is expanded by the chirp pass.
const (
	// For opens a counted loop: "for Rn in start, step, stop".
	For Opcode = "for"
	// End closes the innermost open For.
	End Opcode = "end"
	// PlayChirp plays a linear frequency sweep: bandwidth, smoothing percent,
	// center frequency, time step and total duration.
	PlayChirp Opcode = "play_chirp"
)

// opLabel marks a label-definition line.  The colon cannot appear as a user
// mnemonic, so the sentinel never collides with parsed opcodes.
const opLabel Opcode = ":"
