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
	"errors"
	"fmt"
)

// Category classifies the ways a sequence can be rejected.  Every error
// produced by the converters, the macro assembler, the transform passes and
// the emulator carries exactly one category, so callers can react to the kind
// of failure without parsing messages.
type Category uint8

const (
	// RangeError indicates a value outside its documented domain, such as a
	// gain beyond full scale or a register index past R63.
	RangeError Category = iota
	// UnsupportedError indicates a construct the toolchain rejects by design,
	// such as division or register-by-register multiplication.
	UnsupportedError
	// ReservedError indicates user code touching a register reserved for
	// generated code.
	ReservedError
	// TimingError indicates a time budget that cannot be absorbed, such as a
	// wait too short to pay for inserted protection delays.
	TimingError
	// StructuralError indicates a malformed or unresolvable program, such as
	// a duplicate label or a play referencing an unknown waveform.
	StructuralError
)

// String returns the lower-case name of the category.
func (c Category) String() string {
	switch c {
	case RangeError:
		return "range"
	case UnsupportedError:
		return "unsupported"
	case ReservedError:
		return "reserved"
	case TimingError:
		return "timing"
	case StructuralError:
		return "structural"
	}
	//
	panic(fmt.Sprintf("unknown error category %d", c))
}

// Error is the categorical error type shared across the module.  Line numbers
// are 1-based and always refer to the text the reporting stage consumed: the
// simplified source for macro errors, the assembly program for pass and
// emulator errors.  A zero line means no single line is responsible.
type Error struct {
	// Category of the failure.
	Category Category
	// Stage names the component which rejected the program, for example
	// "macro" or "phase-cycling".
	Stage string
	// Line is the offending 1-based line, or 0.
	Line int
	// Msg describes the offending construct.
	Msg string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: line %d: %s", e.Stage, e.Line, e.Msg)
	}
	//
	return fmt.Sprintf("%s: %s", e.Stage, e.Msg)
}

// Errorf constructs a categorical error with a formatted message.
func Errorf(cat Category, stage string, line int, format string, args ...any) *Error {
	return &Error{cat, stage, line, fmt.Sprintf(format, args...)}
}

// IsCategory reports whether err is (or wraps) a sequence error of the given
// category.
func IsCategory(err error, cat Category) bool {
	var serr *Error
	//
	if errors.As(err, &serr) {
		return serr.Category == cat
	}
	//
	return false
}
