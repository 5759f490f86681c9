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
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/esrlab/go-seqasm/pkg/compiler"
	"github.com/esrlab/go-seqasm/pkg/macro"
	"github.com/esrlab/go-seqasm/pkg/seq"
)

var compileCmd = &cobra.Command{
	Use:   "compile [flags] source_file",
	Short: "compile simplified pulse-sequence source into hardware assembly.",
	Long: `Compile a simplified pulse-sequence source file into an assembled sequence
	 bundle: macro expansion first, then the transform pipeline (protection
	 markers, grid alignment, phase cycling, loop wrapping, delay/waveform/chirp
	 compression).  Waveform and acquisition tables come from the --bundle file.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		// Configure log level
		if getFlag(cmd, "verbose") {
			log.SetLevel(log.DebugLevel)
		}
		//
		options := compilerOptions(cmd)
		source := readSourceFile(args[0])
		// Lower the simplified syntax
		program, err := macro.Expand(source)
		//
		if err != nil {
			reportError(args[0], source, err)
		}
		//
		sequence := seq.NewSequence(nil)
		//
		if bundle := getString(cmd, "bundle"); bundle != "" {
			sequence = readSequenceFile(bundle)
		}
		//
		sequence.Program = program
		// Apply the transform pipeline
		compiled, err := compiler.Compile(sequence, options)
		//
		if err != nil {
			// pass errors position against the assembled program, not the
			// simplified source
			reportError(args[0], program.String(), err)
		}
		//
		if getFlag(cmd, "program-only") {
			fmt.Println(compiled.Program.String())
			return
		}
		//
		writeJSONFile(getString(cmd, "output"), compiled)
	},
}

// compilerOptions maps the compile command's flags onto pipeline options.
func compilerOptions(cmd *cobra.Command) compiler.Options {
	options := compiler.DefaultOptions()
	//
	options.Averages = getInt(cmd, "averages")
	options.Shots = getInt(cmd, "shots")
	options.DummyShots = getInt(cmd, "dummy-shots")
	options.MaxAmpOn = getInt(cmd, "max-amp-on")
	options.WaveformStep = getInt(cmd, "waveform-step")
	options.ChirpGain = getFloat(cmd, "chirp-gain")
	//
	if steps := getIntSlice(cmd, "phase-steps"); len(steps) > 0 {
		options.PhaseSteps = steps
	}
	//
	if pathway := getIntSlice(cmd, "pathway"); len(pathway) > 0 {
		options.Pathway = pathway
	}
	//
	options.Protection.Enabled = !getFlag(cmd, "no-protection")
	options.Protection.SwitchOpenPost = getInt(cmd, "switch-open-post")
	options.Protection.AmpOnPost = getInt(cmd, "amp-on-post")
	options.Protection.AmpOffPre = getInt(cmd, "amp-off-pre")
	options.Protection.AmpOffPost = getInt(cmd, "amp-off-post")
	options.Protection.SwitchClosedPost = getInt(cmd, "switch-closed-post")
	//
	return options
}

//nolint:errcheck
func init() {
	defaults := compiler.DefaultOptions()
	//
	rootCmd.AddCommand(compileCmd)
	compileCmd.Flags().StringP("output", "o", "", "write the assembled bundle to this file (default stdout)")
	compileCmd.Flags().StringP("bundle", "b", "", "bundle JSON supplying waveform/weight/acquisition tables")
	compileCmd.Flags().Bool("program-only", false, "print the assembled program text instead of the bundle")
	compileCmd.Flags().Int("averages", defaults.Averages, "wrap the sequence in an averaging loop")
	compileCmd.Flags().Int("shots", defaults.Shots, "repeat each average this many shots")
	compileCmd.Flags().Int("dummy-shots", defaults.DummyShots, "prepend warm-up shots without acquisition")
	compileCmd.Flags().IntSlice("phase-steps", nil, "per-pulse phase cycling steps in degrees")
	compileCmd.Flags().IntSlice("pathway", nil, "coherence-pathway coefficients, one per pulse")
	compileCmd.Flags().Bool("no-protection", false, "skip amplifier/switch protection markers")
	compileCmd.Flags().Int("switch-open-post", defaults.Protection.SwitchOpenPost, "delay after opening the protection switch (ns)")
	compileCmd.Flags().Int("amp-on-post", defaults.Protection.AmpOnPost, "amplifier settle time after enable (ns)")
	compileCmd.Flags().Int("amp-off-pre", defaults.Protection.AmpOffPre, "delay before amplifier disable (ns)")
	compileCmd.Flags().Int("amp-off-post", defaults.Protection.AmpOffPost, "delay after amplifier disable (ns)")
	compileCmd.Flags().Int("switch-closed-post", defaults.Protection.SwitchClosedPost, "delay after the final all-off marker (ns)")
	compileCmd.Flags().Int("max-amp-on", defaults.MaxAmpOn, "continuous amplifier-on budget (ns), 0 disables the check")
	compileCmd.Flags().Int("waveform-step", defaults.WaveformStep, "chunk length for folding oversized waveforms (samples)")
	compileCmd.Flags().Float64("chirp-gain", defaults.ChirpGain, "normalized playback amplitude of expanded chirps")
}
