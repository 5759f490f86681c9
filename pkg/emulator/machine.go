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
package emulator

import (
	"context"
	"math"

	"github.com/esrlab/go-seqasm/pkg/seq"
	"github.com/esrlab/go-seqasm/pkg/trace"
)

// fullScale is the gain code mapping a waveform to unit amplitude.
const fullScale = 32767

// maxMarker bounds the 4-bit marker output value.
const maxMarker = 15

// channel binds an acquisition channel's configuration to its growing capture
// buffers.
type channel struct {
	name    string
	numBins int
	data    *trace.Acquisition
}

// machine is the state of one emulated run.
type machine struct {
	config    Config
	program   seq.Program
	labels    map[string]int
	waveforms map[int64][]float64
	channels  map[int64]*channel
	//
	status    Status
	registers [seq.NumRegisters]uint32
	pc        int
	now       int64
	// latched AWG parameters, as signed 16-bit codes
	gainI, gainQ int64
	offsI, offsQ int64
	// NCO state
	phase int64
	freq  int64
	// marker output and the last state written to the timeline
	marker   uint8
	recorded uint8
	// waveform pair being played and its start time
	playI, playQ []float64
	playStart    int64
	//
	result *trace.Result
}

// newMachine resolves labels and index tables for a sequence.  Resolution
// failures leave no machine to run.
func newMachine(sequence seq.Sequence, config Config) (*machine, error) {
	labels, err := sequence.Program.Labels()
	//
	if err != nil {
		return nil, err
	}
	//
	m := &machine{
		config:    config,
		program:   sequence.Program,
		labels:    labels,
		waveforms: make(map[int64][]float64),
		channels:  make(map[int64]*channel),
		gainI:  fullScale,
		gainQ:  fullScale,
		result: &trace.Result{Acquisitions: make(map[string]*trace.Acquisition)},
	}
	//
	for _, wfm := range sequence.Waveforms {
		m.waveforms[int64(wfm.Index)] = wfm.Data
	}
	//
	for name, acq := range sequence.Acquisitions {
		data := trace.NewAcquisition(acq.Index, acq.NumBins)
		m.channels[int64(acq.Index)] = &channel{name, acq.NumBins, data}
		m.result.Acquisitions[name] = data
	}
	//
	return m, nil
}

// run drives the fetch-execute loop until a stop instruction, the end of the
// program, cancellation, or a fatal error.
func (m *machine) run(ctx context.Context) error {
	m.status = Running
	// state at time 0
	m.record(true)
	//
	for m.pc < len(m.program) {
		if err := ctx.Err(); err != nil {
			m.status = Errored
			return err
		}
		//
		halted, err := m.execute(m.program[m.pc])
		//
		if err != nil {
			m.status = Errored
			return err
		}
		//
		if halted {
			break
		}
	}
	// falling off the end behaves like stop
	m.record(true)
	m.status = Halted
	m.result.Registers = append([]uint32(nil), m.registers[:]...)
	m.result.Duration = m.now
	//
	return nil
}

// execute dispatches one instruction and updates the program counter.  It
// reports whether the machine halted.  Branch cases return early with the
// counter set to their target; every other case falls through to the default
// one-instruction advance.
func (m *machine) execute(ins seq.Instruction) (bool, error) {
	switch ins.Op {
	case seq.Move:
		value, err := m.source(ins, 0)
		//
		if err != nil {
			return false, err
		}
		//
		if value < 0 || value > math.MaxUint32 {
			return false, m.fail(seq.RangeError, "cannot move %d into a 32-bit register", value)
		}
		//
		if err := m.write(ins, 1, uint32(value)); err != nil {
			return false, err
		}
	case seq.Add, seq.Sub, seq.Asl, seq.Asr:
		if err := m.arithmetic(ins); err != nil {
			return false, err
		}
	case seq.Jmp:
		return false, m.branch(ins, 0)
	case seq.Jge, seq.Jlt:
		taken, err := m.compare(ins)
		//
		if err != nil {
			return false, err
		}
		//
		if taken {
			return false, m.branch(ins, 2)
		}
	case seq.Loop:
		reg, ok := ins.RegAt(0)
		//
		if !ok {
			return false, m.fail(seq.StructuralError, "loop needs a register counter")
		}
		// decrement clamps at zero
		if m.registers[reg] > 0 {
			m.registers[reg]--
		}
		//
		if m.registers[reg] > 0 {
			return false, m.branch(ins, 1)
		}
	case seq.Play:
		if err := m.play(ins); err != nil {
			return false, err
		}
	case seq.Wait:
		duration, err := m.source(ins, 0)
		//
		if err != nil {
			return false, err
		}
		//
		if err := m.advance(duration, nil); err != nil {
			return false, err
		}
	case seq.UpdParam:
		duration, err := m.source(ins, 0)
		//
		if err != nil {
			return false, err
		}
		//
		m.record(false)
		//
		if err := m.advance(duration, nil); err != nil {
			return false, err
		}
	case seq.Acquire:
		if err := m.capture(ins); err != nil {
			return false, err
		}
	case seq.SetMrk:
		value, err := m.source(ins, 0)
		//
		if err != nil {
			return false, err
		}
		//
		if value < 0 || value > maxMarker {
			return false, m.fail(seq.RangeError, "marker state %d outside [0,%d]", value, maxMarker)
		}
		//
		m.marker = uint8(value)
	case seq.ResetPh:
		m.phase = 0
	case seq.SetPh:
		value, err := m.source(ins, 0)
		//
		if err != nil {
			return false, err
		}
		//
		m.phase = value
	case seq.SetPhDelta:
		value, err := m.source(ins, 0)
		//
		if err != nil {
			return false, err
		}
		//
		m.phase += value
	case seq.SetFreq:
		value, err := m.source(ins, 0)
		//
		if err != nil {
			return false, err
		}
		//
		m.freq = value
	case seq.SetAwgGain:
		if err := m.latch(ins, &m.gainI, &m.gainQ); err != nil {
			return false, err
		}
	case seq.SetAwgOffs:
		if err := m.latch(ins, &m.offsI, &m.offsQ); err != nil {
			return false, err
		}
	case seq.Illegal:
		return false, m.fail(seq.StructuralError, "illegal instruction")
	case seq.Stop:
		return true, nil
	case seq.Nop:
		// one issue slot
	default:
		// unrecognized opcodes, labels and leftover pseudo instructions
		// advance the counter without effect
	}
	//
	m.pc++
	//
	return false, nil
}

// arithmetic performs wrapping 32-bit register arithmetic for add, sub, asl
// and asr.
func (m *machine) arithmetic(ins seq.Instruction) error {
	reg, ok := ins.RegAt(0)
	//
	if !ok {
		return m.fail(seq.StructuralError, "%s needs a register first operand", ins.Op)
	}
	//
	a := m.registers[reg]
	b, err := m.source(ins, 1)
	//
	if err != nil {
		return err
	}
	//
	if (ins.Op == seq.Asl || ins.Op == seq.Asr) && b < 0 {
		return m.fail(seq.RangeError, "cannot shift by %d", b)
	}
	//
	var value uint32
	//
	switch ins.Op {
	case seq.Add:
		value = a + uint32(b)
	case seq.Sub:
		value = a - uint32(b)
	case seq.Asl:
		value = a << uint(b)
	case seq.Asr:
		value = a >> uint(b)
	}
	//
	return m.write(ins, 2, value)
}

// compare evaluates a jge/jlt condition.
func (m *machine) compare(ins seq.Instruction) (bool, error) {
	reg, ok := ins.RegAt(0)
	//
	if !ok {
		return false, m.fail(seq.StructuralError, "%s needs a register first operand", ins.Op)
	}
	//
	bound, err := m.source(ins, 1)
	//
	if err != nil {
		return false, err
	}
	//
	if ins.Op == seq.Jge {
		return int64(m.registers[reg]) >= bound, nil
	}
	//
	return int64(m.registers[reg]) < bound, nil
}

// play loads a waveform pair and advances through its scheduled duration.
func (m *machine) play(ins seq.Instruction) error {
	left, err := m.waveform(ins, 0)
	//
	if err != nil {
		return err
	}
	//
	right, err := m.waveform(ins, 1)
	//
	if err != nil {
		return err
	}
	//
	duration, err := m.source(ins, 2)
	//
	if err != nil {
		return err
	}
	//
	m.record(false)
	m.playI, m.playQ = left, right
	m.playStart = m.now
	//
	return m.advance(duration, nil)
}

// capture opens an acquire window: samples land in the channel's scope
// buffers, and the window means accumulate into the addressed bin.
func (m *machine) capture(ins seq.Instruction) error {
	index, ok := ins.ImmAt(0)
	//
	if !ok {
		return m.fail(seq.StructuralError, "acquire needs an immediate channel index")
	}
	//
	ch, ok := m.channels[index]
	//
	if !ok {
		return m.fail(seq.StructuralError, "unknown acquisition channel %d", index)
	}
	//
	bin, err := m.source(ins, 1)
	//
	if err != nil {
		return err
	}
	//
	if bin < 0 || bin >= int64(ch.numBins) {
		return m.fail(seq.RangeError, "bin %d outside the %d bins of %q", bin, ch.numBins, ch.name)
	}
	//
	duration, err := m.source(ins, 2)
	//
	if err != nil {
		return err
	}
	//
	m.record(false)
	opened := len(ch.data.Scope.Path0)
	//
	if err := m.advance(duration, ch); err != nil {
		return err
	}
	//
	ch.data.Bins.Path0[bin].Value += mean(ch.data.Scope.Path0[opened:])
	ch.data.Bins.Path0[bin].Count++
	ch.data.Bins.Path1[bin].Value += mean(ch.data.Scope.Path1[opened:])
	ch.data.Bins.Path1[bin].Count++
	//
	return nil
}

// latch stores a validated I/Q code pair for set_awg_gain and set_awg_offs.
func (m *machine) latch(ins seq.Instruction, i, q *int64) error {
	for n, target := range []*int64{i, q} {
		value, err := m.source(ins, n)
		//
		if err != nil {
			return err
		}
		//
		if value < math.MinInt16 || value > math.MaxInt16 {
			return m.fail(seq.RangeError, "%s code %d outside [-32768,32767]", ins.Op, value)
		}
		//
		*target = value
	}
	//
	return nil
}

// advance steps simulated time sample by sample, emitting `gain×sample +
// offset` per path.  When capturing, samples additionally append to the
// channel's scope buffers.
func (m *machine) advance(duration int64, capturing *channel) error {
	if duration < 0 {
		return m.fail(seq.RangeError, "negative duration %d", duration)
	}
	//
	for tick := int64(0); tick < duration; tick++ {
		if m.config.MaxSamples > 0 && len(m.result.I) >= m.config.MaxSamples {
			return m.fail(seq.RangeError,
				"sample budget of %d exhausted at t=%dns", m.config.MaxSamples, m.now)
		}
		//
		i := m.sample(m.playI, m.gainI, m.offsI)
		q := m.sample(m.playQ, m.gainQ, m.offsQ)
		//
		m.result.I = append(m.result.I, i)
		m.result.Q = append(m.result.Q, q)
		m.result.Phase = append(m.result.Phase, float64(m.phase)*360/1e9)
		//
		if capturing != nil {
			capturing.data.Scope.Path0 = append(capturing.data.Scope.Path0, i)
			capturing.data.Scope.Path1 = append(capturing.data.Scope.Path1, q)
		}
		//
		m.now++
	}
	//
	return nil
}

// sample evaluates one output path at the current time.  Outside an active
// waveform only the held offset is emitted.
func (m *machine) sample(waveform []float64, gain, offset int64) float64 {
	value := 0.0
	//
	if index := m.now - m.playStart; index >= 0 && index < int64(len(waveform)) {
		value = waveform[index]
	}
	//
	return normalize(gain)*value + normalize(offset)
}

// normalize maps a signed 16-bit code onto [-1,1], mirroring the asymmetric
// encoding of units.Gain.
func normalize(code int64) float64 {
	if code < 0 {
		return float64(code) / 32768
	}
	//
	return float64(code) / 32767
}

// record appends a marker-timeline entry, skipping unchanged states unless
// forced (time 0 and stop entries are always written).
func (m *machine) record(force bool) {
	if !force && m.marker == m.recorded {
		return
	}
	//
	m.result.Markers = append(m.result.Markers, trace.MarkerEvent{Time: m.now, State: m.marker})
	m.recorded = m.marker
}

// source resolves the i-th operand as an immediate or register value.
func (m *machine) source(ins seq.Instruction, i int) (int64, error) {
	if value, ok := ins.ImmAt(i); ok {
		return value, nil
	}
	//
	if reg, ok := ins.RegAt(i); ok {
		return int64(m.registers[reg]), nil
	}
	//
	return 0, m.fail(seq.StructuralError, "operand %d of %q must be an immediate or register", i+1, ins)
}

// write stores a value into the register named by the i-th operand.
func (m *machine) write(ins seq.Instruction, i int, value uint32) error {
	reg, ok := ins.RegAt(i)
	//
	if !ok {
		return m.fail(seq.StructuralError, "operand %d of %q must be a destination register", i+1, ins)
	}
	//
	m.registers[reg] = value
	//
	return nil
}

// waveform resolves the i-th operand as a waveform table index.
func (m *machine) waveform(ins seq.Instruction, i int) ([]float64, error) {
	index, ok := ins.ImmAt(i)
	//
	if !ok {
		return nil, m.fail(seq.StructuralError, "play needs immediate waveform indices")
	}
	//
	data, ok := m.waveforms[index]
	//
	if !ok {
		return nil, m.fail(seq.StructuralError, "unknown waveform %d", index)
	}
	//
	return data, nil
}

// branch sets the program counter to the label referenced by the i-th
// operand.
func (m *machine) branch(ins seq.Instruction, i int) error {
	if i >= len(ins.Args) {
		return m.fail(seq.StructuralError, "%s is missing its branch target", ins.Op)
	}
	//
	ref, ok := ins.Args[i].(seq.Ref)
	//
	if !ok {
		return m.fail(seq.StructuralError, "branch target of %q must be a label reference", ins)
	}
	//
	target, ok := m.labels[ref.Name]
	//
	if !ok {
		return m.fail(seq.StructuralError, "undefined label @%s", ref.Name)
	}
	//
	m.pc = target
	//
	return nil
}

// fail builds a fatal error against the current program counter.
func (m *machine) fail(category seq.Category, format string, args ...any) error {
	return seq.Errorf(category, "emulator", m.pc+1, format, args...)
}

// mean averages a capture window; an empty window contributes zero.
func mean(window []float64) float64 {
	if len(window) == 0 {
		return 0
	}
	//
	sum := 0.0
	//
	for _, sample := range window {
		sum += sample
	}
	//
	return sum / float64(len(window))
}
