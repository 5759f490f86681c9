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
	"strconv"
	"strings"
	"unicode"
)

// ParseProgram parses newline-delimited assembly text.  A '#' starts a
// comment; commas and whitespace both separate operands; "name:" defines a
// label, either alone or prefixing an instruction on the same line.
func ParseProgram(text string) (Program, error) {
	var program Program
	//
	for i, line := range strings.Split(text, "\n") {
		parsed, err := ParseLine(line, i+1)
		//
		if err != nil {
			return nil, err
		}
		//
		program = append(program, parsed...)
	}
	//
	return program, nil
}

// ParseLine parses one source line into zero, one or two instructions (a
// label prefix yields its own entry ahead of the instruction proper).
// Errors are reported against the given 1-based line number.
func ParseLine(line string, number int) ([]Instruction, error) {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	//
	tokens := strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	//
	if len(tokens) == 0 {
		return nil, nil
	}
	//
	var parsed []Instruction
	//
	if name, ok := strings.CutSuffix(tokens[0], ":"); ok {
		if name == "" || strings.ContainsAny(name, "@:") {
			return nil, Errorf(StructuralError, "parse", number, "malformed label %q", tokens[0])
		}
		//
		parsed = append(parsed, Label(name))
		tokens = tokens[1:]
		//
		if len(tokens) == 0 {
			return parsed, nil
		}
	}
	// Mnemonics always start with a letter.
	if !isWordStart(tokens[0]) {
		return nil, Errorf(StructuralError, "parse", number, "malformed instruction %q", tokens[0])
	}
	//
	args := make([]Operand, 0, len(tokens)-1)
	//
	for _, token := range tokens[1:] {
		arg, err := parseOperand(token, number)
		//
		if err != nil {
			return nil, err
		}
		//
		args = append(args, arg)
	}
	//
	return append(parsed, Instruction{Opcode(tokens[0]), args}), nil
}

// parseOperand classifies a single operand token.
func parseOperand(token string, number int) (Operand, error) {
	switch {
	case strings.HasPrefix(token, "@"):
		if len(token) == 1 {
			return nil, Errorf(StructuralError, "parse", number, "empty label reference")
		}
		//
		return Ref{token[1:]}, nil
	case len(token) > 1 && token[0] == 'R' && isDigits(token[1:]):
		index, err := strconv.Atoi(token[1:])
		//
		if err != nil || index >= NumRegisters {
			return nil, Errorf(RangeError, "parse", number, "register %s out of range", token)
		}
		//
		return Register(index), nil
	case isInteger(token):
		value, err := strconv.ParseInt(token, 10, 64)
		//
		if err != nil {
			return nil, Errorf(RangeError, "parse", number, "immediate %q out of range", token)
		}
		//
		return Imm{Value: value, Text: token}, nil
	case isWordStart(token):
		return Sym{token}, nil
	}
	//
	return nil, Errorf(StructuralError, "parse", number, "malformed operand %q", token)
}

func isWordStart(token string) bool {
	return unicode.IsLetter(rune(token[0])) || token[0] == '_'
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	//
	return len(s) > 0
}

func isInteger(s string) bool {
	if strings.HasPrefix(s, "-") {
		s = s[1:]
	}
	//
	return isDigits(s)
}
