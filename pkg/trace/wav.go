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
package trace

import (
	"fmt"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// wavDepth is the PCM bit depth of exported traces.
const wavDepth = 16

// WriteWAV exports a result's I/Q traces as a 2-channel 16-bit PCM file, I on
// the left and Q on the right.  Samples are clipped to full scale.  The
// sample rate is the caller's to state; emulated time runs at 1ns per sample,
// so a literal rate of 1e9 rarely suits audio tooling.
func WriteWAV(filename string, result *Result, sampleRate int) (err error) {
	if sampleRate <= 0 {
		return fmt.Errorf("wav: nonpositive sample rate %d", sampleRate)
	}
	//
	file, err := os.Create(filename)
	//
	if err != nil {
		return fmt.Errorf("wav: %w", err)
	}
	//
	defer func() {
		if cerr := file.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("wav: %w", cerr)
		}
	}()
	//
	buffer := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 2, SampleRate: sampleRate},
		Data:           interleave(result.I, result.Q),
		SourceBitDepth: wavDepth,
	}
	//
	encoder := wav.NewEncoder(file, sampleRate, wavDepth, 2, 1)
	//
	if err := encoder.Write(buffer); err != nil {
		return fmt.Errorf("wav: %w", err)
	}
	//
	return encoder.Close()
}

// interleave packs the I/Q pair into left/right PCM frames.
func interleave(i, q []float64) []int {
	frames := max(len(i), len(q))
	data := make([]int, 2*frames)
	//
	for n := 0; n < frames; n++ {
		if n < len(i) {
			data[2*n] = pcm(i[n])
		}
		//
		if n < len(q) {
			data[2*n+1] = pcm(q[n])
		}
	}
	//
	return data
}

// pcm converts a normalized sample to a signed 16-bit code, clipping at full
// scale.
func pcm(sample float64) int {
	scaled := math.Round(sample * 32767)
	//
	if scaled > 32767 {
		return 32767
	} else if scaled < -32768 {
		return -32768
	}
	//
	return int(scaled)
}
