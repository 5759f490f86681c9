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
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] bundle_file",
	Short: "validate amplifier timing of an assembled program.",
	Long: `Check an assembled sequence bundle (or plain assembly file) against the
	 overtrigger budget: no continuous amplifier-on stretch may reach the
	 configured maximum, and the program must not end with the amplifier on.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		// Configure log level
		if getFlag(cmd, "verbose") {
			log.SetLevel(log.DebugLevel)
		}
		//
		sequence := readSequenceFile(args[0])
		//
		if err := sequence.Check(); err != nil {
			reportError(args[0], sequence.Program.String(), err)
		}
		//
		if err := compiler.CheckOvertrigger(sequence.Program, getInt(cmd, "max-amp-on")); err != nil {
			reportError(args[0], sequence.Program.String(), err)
		}
		//
		fmt.Println("OK")
	},
}

//nolint:errcheck
func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().Int("max-amp-on", compiler.DefaultOptions().MaxAmpOn, "continuous amplifier-on budget (ns)")
}
