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
package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/spf13/cobra"

	"github.com/esrlab/go-seqasm/pkg/seq"
)

// Get an expected flag, or exit if an error arises.
func getFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// Get an expected int flag, or exit if an error arises.
func getInt(cmd *cobra.Command, flag string) int {
	r, err := cmd.Flags().GetInt(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// Get an expected float flag, or exit if an error arises.
func getFloat(cmd *cobra.Command, flag string) float64 {
	r, err := cmd.Flags().GetFloat64(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// Get an expected string flag, or exit if an error arises.
func getString(cmd *cobra.Command, flag string) string {
	r, err := cmd.Flags().GetString(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// Get an expected int-slice flag, or exit if an error arises.
func getIntSlice(cmd *cobra.Command, flag string) []int {
	r, err := cmd.Flags().GetIntSlice(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// Parse a sequence bundle, either from a JSON bundle file or from a plain
// assembly text file (which yields a bundle with empty tables).
func readSequenceFile(filename string) seq.Sequence {
	bytes, err := os.ReadFile(filename)
	//
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	if path.Ext(filename) == ".json" {
		var sequence seq.Sequence
		//
		if err := json.Unmarshal(bytes, &sequence); err != nil {
			reportError(filename, string(bytes), err)
		}
		//
		return sequence
	}
	//
	program, err := seq.ParseProgram(string(bytes))
	//
	if err != nil {
		reportError(filename, string(bytes), err)
	}
	//
	return seq.NewSequence(program)
}

// Read a source file, or exit if an error arises.
func readSourceFile(filename string) string {
	bytes, err := os.ReadFile(filename)
	//
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	return string(bytes)
}

// Serialize a value as JSON into a file, or to stdout when the filename is
// empty.
func writeJSONFile(filename string, value any) {
	bytes, err := json.Marshal(value)
	//
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	if filename == "" {
		fmt.Println(string(bytes))
		return
	}
	//
	if err := os.WriteFile(filename, bytes, 0644); err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
}

// Print a diagnostic with the offending source line highlighted, then exit.
// Errors without a line position print bare.
func reportError(filename, source string, err error) {
	var serr *seq.Error
	//
	if errors.As(err, &serr) && serr.Line > 0 {
		fmt.Printf("%s:%d: %s error: %s\n", filename, serr.Line, serr.Category, serr.Msg)
		//
		if line := sourceLine(source, serr.Line); line != "" {
			fmt.Println(line)
		}
	} else {
		fmt.Println(err)
	}
	//
	os.Exit(1)
}

// Determine the given 1-based line of a source text.
func sourceLine(source string, number int) string {
	lines := strings.Split(source, "\n")
	//
	if number < 1 || number > len(lines) {
		return ""
	}
	//
	return strings.TrimSpace(lines[number-1])
}
