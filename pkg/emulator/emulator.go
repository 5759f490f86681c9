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

// Package emulator executes assembled sequences on a simulated sequencer: a
// label-resolution pre-pass followed by a fetch-execute loop over the 64
// register machine, advancing simulated time sample by sample.  The emulator
// implements the same Runner interface as the hardware uploader, so tests can
// validate a compiled sequence without an instrument.
package emulator

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/esrlab/go-seqasm/pkg/seq"
	"github.com/esrlab/go-seqasm/pkg/trace"
)

// Status tracks the lifecycle of one emulated run.
type Status uint8

const (
	// Ready means labels resolved and no instruction executed yet.
	Ready Status = iota
	// Running means the fetch-execute loop is in progress.
	Running
	// Halted means a stop instruction was reached, or the program ran off its
	// end.
	Halted
	// Errored means execution aborted on a fatal error.
	Errored
)

// Config bounds a run.  The zero value places no limit.
type Config struct {
	// MaxSamples caps the emitted I/Q sample count, guarding against
	// unbounded memory growth on very long programs.  Zero means unlimited.
	MaxSamples int
}

// Runner executes an assembled sequence and returns the captured traces.  The
// hardware uploader satisfies the same interface, with the capture shapes the
// instrument would have returned.
type Runner interface {
	// Run executes the sequence to completion, or until ctx is cancelled.
	Run(ctx context.Context, sequence seq.Sequence) (*trace.Result, error)
}

// Emulator is the software Runner.  It is stateless between runs and safe to
// share across goroutines emulating independent sequences.
type Emulator struct {
	config Config
}

// New constructs an emulator with the given bounds.
func New(config Config) *Emulator {
	return &Emulator{config}
}

// Run implements Runner.  The sequence is read-only; every run starts from a
// zeroed register file.
func (p *Emulator) Run(ctx context.Context, sequence seq.Sequence) (*trace.Result, error) {
	machine, err := newMachine(sequence, p.config)
	//
	if err != nil {
		return nil, err
	}
	//
	if err := machine.run(ctx); err != nil {
		return nil, err
	}
	//
	log.Debugf("emulator: halted after %dns, %d marker events",
		machine.now, len(machine.result.Markers))
	//
	return machine.result, nil
}
