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

// Package macro lowers the simplified pulse-sequence syntax into base
// assembly: variable assignment and arithmetic, inline unit-converter calls,
// marker shorthand and parameter-set helper calls.  Anything it does not
// recognize passes through as plain assembly, so simplified and low-level
// code mix freely in one source.
package macro

import (
	"regexp"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/esrlab/go-seqasm/pkg/seq"
)

// registerPattern spots register mentions for the reserved check.
var registerPattern = regexp.MustCompile(`\bR(\d+)\b`)

// Expand lowers simplified source into an assembly program.  Each line is
// classified exactly once: converter calls are substituted first, then
// assignment and arithmetic forms, then helper calls, and finally plain
// assembly passthrough.  Lines naming a reserved register are rejected
// before any lowering.
func Expand(source string) (seq.Program, error) {
	expander := expander{}
	//
	for i, line := range strings.Split(source, "\n") {
		if err := expander.expandLine(line, i+1); err != nil {
			return nil, err
		}
	}
	//
	log.Debugf("macro: expanded %d source lines into %d instructions",
		strings.Count(source, "\n")+1, len(expander.program))
	//
	return expander.program, nil
}

// expander accumulates the lowered program along with the multiplication
// loop counter used to keep generated labels unique.
type expander struct {
	program   seq.Program
	multLoops uint
}

// expandLine classifies and lowers one source line.
func (p *expander) expandLine(line string, number int) error {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	//
	if err := checkReserved(line, number); err != nil {
		return err
	}
	//
	line, err := substituteConverters(line, number)
	//
	if err != nil {
		return err
	}
	//
	line = strings.TrimSpace(line)
	//
	switch {
	case line == "":
		return nil
	case assignPattern.MatchString(line):
		return p.lowerAssign(line, number)
	case arithPattern.MatchString(line):
		return p.lowerArith(line, number)
	case strings.HasPrefix(line, "set_mrk("):
		return p.lowerMarker(line, number)
	case strings.HasPrefix(line, "set_ph("),
		strings.HasPrefix(line, "set_ph_delta("),
		strings.HasPrefix(line, "set_awg_gain("),
		strings.HasPrefix(line, "set_awg_offs("),
		strings.HasPrefix(line, "set_freq("):
		return p.lowerSetCall(line, number)
	case strings.ContainsRune(line, '='):
		return seq.Errorf(seq.StructuralError, "macro", number,
			"malformed assignment or helper call %q", line)
	}
	// plain assembly passthrough
	parsed, err := seq.ParseLine(line, number)
	//
	if err != nil {
		return err
	}
	//
	p.program = append(p.program, parsed...)
	//
	return nil
}

// checkReserved rejects source lines which name a register reserved for
// generated code.  The check runs on the raw line, before lowering, so the
// expander itself remains free to emit reserved registers.
func checkReserved(line string, number int) error {
	for _, match := range registerPattern.FindAllStringSubmatch(line, -1) {
		index, err := strconv.Atoi(match[1])
		//
		if err != nil || index >= seq.NumRegisters {
			// out-of-range registers are caught by the parser
			continue
		}
		//
		if role := seq.Register(index).ReservedRole(); role != "" {
			return seq.Errorf(seq.ReservedError, "macro", number,
				"register %s is reserved (%s)", match[0], role)
		}
	}
	//
	return nil
}

// emit appends generated instructions to the program.
func (p *expander) emit(instructions ...seq.Instruction) {
	p.program = append(p.program, instructions...)
}
