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
	"context"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/esrlab/go-seqasm/pkg/emulator"
	"github.com/esrlab/go-seqasm/pkg/trace"
)

var emulateCmd = &cobra.Command{
	Use:   "emulate [flags] bundle_file",
	Short: "run an assembled bundle on the software sequencer.",
	Long: `Emulate an assembled sequence bundle (or plain assembly file) and report the
	 captured traces: sample-accurate I/Q output, the marker timeline and the
	 acquisition buffers, as the hardware would have returned them.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		// Configure log level
		if getFlag(cmd, "verbose") {
			log.SetLevel(log.DebugLevel)
		}
		//
		sequence := readSequenceFile(args[0])
		config := emulator.Config{MaxSamples: getInt(cmd, "max-samples")}
		//
		result, err := emulator.New(config).Run(context.Background(), sequence)
		//
		if err != nil {
			reportError(args[0], sequence.Program.String(), err)
		}
		//
		writeJSONFile(getString(cmd, "output"), result)
		//
		if filename := getString(cmd, "wav"); filename != "" {
			if err := trace.WriteWAV(filename, result, getInt(cmd, "sample-rate")); err != nil {
				fmt.Println(err)
				os.Exit(1)
			}
		}
		//
		if getFlag(cmd, "registers") {
			printRegisters(result.Registers)
		}
	},
}

// printRegisters dumps the final register file, packing as many columns as
// the terminal width allows.
func printRegisters(registers []uint32) {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	//
	if err != nil || width <= 0 {
		width = 80
	}
	// widest cell decides the layout
	widest := 0
	cells := make([]string, len(registers))
	//
	for i, value := range registers {
		cells[i] = fmt.Sprintf("R%02d=%d", i, value)
		widest = max(widest, len(cells[i]))
	}
	//
	columns := max(1, width/(widest+2))
	//
	for i, cell := range cells {
		fmt.Printf("%-*s", widest+2, cell)
		//
		if (i+1)%columns == 0 || i == len(cells)-1 {
			fmt.Println()
		}
	}
}

//nolint:errcheck
func init() {
	rootCmd.AddCommand(emulateCmd)
	emulateCmd.Flags().StringP("output", "o", "", "write the trace JSON to this file (default stdout)")
	emulateCmd.Flags().String("wav", "", "additionally export the I/Q trace to this WAV file")
	emulateCmd.Flags().Int("sample-rate", 48000, "sample rate stated in the WAV header")
	emulateCmd.Flags().Int("max-samples", 0, "cap emitted samples, 0 means unlimited")
	emulateCmd.Flags().BoolP("registers", "r", false, "dump the final register file")
}
