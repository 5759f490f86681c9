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
package macro

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/esrlab/go-seqasm/pkg/seq"
	"github.com/esrlab/go-seqasm/pkg/units"
)

// converters lists the inline unit-converter calls, substituted anywhere on
// a line before classification.
var converters = []struct {
	name    string
	convert func(float64) (int64, error)
}{
	{"asm_ph", phase},
	{"asm_gain", units.Gain},
	{"asm_freq", units.Frequency},
}

// markerPattern matches the marker shorthand on a trimmed line.  The four
// binary digits follow the panel numbering t1..t4, with t1 first.
var markerPattern = regexp.MustCompile(`^set_mrk\(\s*t1t2t3t4\s*=\s*([01]{4})\s*\)$`)

// substituteConverters replaces every asm_ph(x), asm_gain(x) and asm_freq(x)
// call on the line with its integer result.
func substituteConverters(line string, number int) (string, error) {
	for _, c := range converters {
		token := c.name + "("
		//
		for {
			i := strings.Index(line, token)
			//
			if i < 0 {
				break
			}
			//
			arg, end, err := argBetweenParens(line, i+len(token), c.name, number)
			//
			if err != nil {
				return "", err
			}
			//
			value, err := convertArg(c.convert, arg, c.name, number)
			//
			if err != nil {
				return "", err
			}
			//
			line = line[:i] + strconv.FormatInt(value, 10) + line[end:]
		}
	}
	//
	return line, nil
}

// argBetweenParens extracts the argument text of a call whose opening paren
// precedes start, returning the text and the index just past the closing
// paren.
func argBetweenParens(line string, start int, name string, number int) (string, int, error) {
	depth := 1
	//
	for i := start; i < len(line); i++ {
		switch line[i] {
		case '(':
			depth++
		case ')':
			depth--
			//
			if depth == 0 {
				return strings.TrimSpace(line[start:i]), i + 1, nil
			}
		}
	}
	//
	return "", 0, seq.Errorf(seq.StructuralError, "macro", number,
		"unterminated %s( call", name)
}

// convertArg checks and converts a single numeric call argument.
func convertArg(convert func(float64) (int64, error), arg, name string, number int) (int64, error) {
	if strings.HasPrefix(arg, "R") {
		return 0, seq.Errorf(seq.UnsupportedError, "macro", number,
			"%s() takes numbers, not registers; apply %s() to the values a register is set from", name, name)
	}
	//
	value, err := strconv.ParseFloat(arg, 64)
	//
	if err != nil {
		return 0, seq.Errorf(seq.StructuralError, "macro", number,
			"non-numeric argument %q to %s()", arg, name)
	}
	//
	converted, err := convert(value)
	//
	if err != nil {
		return 0, reline(err, number)
	}
	//
	return converted, nil
}

// lowerMarker lowers the set_mrk(t1t2t3t4=XXXX) shorthand.  The digits are
// written t1 first but the hardware packs t1 into the least significant bit,
// so the mask is bit-reversed before encoding.
func (p *expander) lowerMarker(line string, number int) error {
	match := markerPattern.FindStringSubmatch(line)
	//
	if match == nil {
		return seq.Errorf(seq.StructuralError, "macro", number,
			"malformed marker shorthand %q, expected set_mrk(t1t2t3t4=XXXX) with four binary digits", line)
	}
	//
	var value int64
	//
	for i, bit := range match[1] {
		if bit == '1' {
			value |= 1 << i
		}
	}
	//
	p.emit(seq.Ins(seq.SetMrk, seq.Int(value)))
	//
	return nil
}

// lowerSetCall lowers the unit-converting parameter helpers: set_ph(),
// set_ph_delta(), set_awg_gain(), set_awg_offs() and set_freq().
func (p *expander) lowerSetCall(line string, number int) error {
	name := line[:strings.IndexByte(line, '(')]
	//
	args, err := callArgs(line, name, number)
	//
	if err != nil {
		return err
	}
	//
	switch name {
	case "set_ph", "set_ph_delta":
		if len(args) != 1 {
			return arityError(name, 1, len(args), number)
		}
		//
		op := seq.SetPh
		//
		if name == "set_ph_delta" {
			op = seq.SetPhDelta
		}
		//
		value, err := convertArg(phase, args[0], name, number)
		//
		if err != nil {
			return err
		}
		//
		p.emit(seq.Ins(op, seq.Int(value)))
	case "set_freq":
		if len(args) != 1 {
			return arityError(name, 1, len(args), number)
		}
		//
		value, err := convertArg(units.Frequency, args[0], name, number)
		//
		if err != nil {
			return err
		}
		//
		p.emit(seq.Ins(seq.SetFreq, seq.Int(value)))
	case "set_awg_gain", "set_awg_offs":
		if len(args) != 2 {
			return arityError(name, 2, len(args), number)
		}
		//
		op := seq.SetAwgGain
		//
		if name == "set_awg_offs" {
			op = seq.SetAwgOffs
		}
		//
		i, err := convertArg(units.Gain, args[0], name, number)
		//
		if err != nil {
			return err
		}
		//
		q, err := convertArg(units.Gain, args[1], name, number)
		//
		if err != nil {
			return err
		}
		//
		p.emit(seq.Ins(op, seq.Int(i), seq.Int(q)))
	default:
		panic("unreachable helper " + name)
	}
	//
	return nil
}

// callArgs extracts and splits the comma-separated arguments of a helper
// call spanning the whole line.
func callArgs(line, name string, number int) ([]string, error) {
	inner, end, err := argBetweenParens(line, len(name)+1, name, number)
	//
	if err != nil {
		return nil, err
	}
	//
	if rest := strings.TrimSpace(line[end:]); rest != "" {
		return nil, seq.Errorf(seq.StructuralError, "macro", number,
			"unexpected %q after %s() call", rest, name)
	}
	//
	if inner == "" {
		return nil, nil
	}
	//
	args := strings.Split(inner, ",")
	//
	for i := range args {
		args[i] = strings.TrimSpace(args[i])
	}
	//
	return args, nil
}

// phase adapts the total phase converter to the fallible converter shape.
func phase(degrees float64) (int64, error) {
	return units.Phase(degrees), nil
}

// arityError reports a helper call with the wrong argument count.
func arityError(name string, expected, got, number int) error {
	return seq.Errorf(seq.StructuralError, "macro", number,
		"%s() expects %d argument(s), got %d", name, expected, got)
}

// reline stamps the source line onto categorical errors raised without one,
// such as range errors from the unit converters.
func reline(err error, number int) error {
	var serr *seq.Error
	//
	if errors.As(err, &serr) && serr.Line == 0 {
		return seq.Errorf(serr.Category, serr.Stage, number, "%s", serr.Msg)
	}
	//
	return err
}
