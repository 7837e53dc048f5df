// Copyright (c) 2024, The OTNS Authors.
// All rights reserved.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions are met:
// 1. Redistributions of source code must retain the above copyright
//    notice, this list of conditions and the following disclaimer.
// 2. Redistributions in binary form must reproduce the above copyright
//    notice, this list of conditions and the following disclaimer in the
//    documentation and/or other materials provided with the distribution.
// 3. Neither the name of the copyright holder nor the
//    names of its contributors may be used to endorse or promote products
//    derived from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS"
// AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
// IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE
// ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE
// LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR
// CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF
// SUBSTITUTE GOODS OR SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN
// CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE)
// ARISING IN ANY WAY OUT OF THE USE OF THIS SOFTWARE, EVEN IF ADVISED OF THE
// POSSIBILITY OF SUCH DAMAGE.

package radiomodel

import (
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/exp/slices"

	. "github.com/openthread/ot-proploss/types"
)

type absorptionEntry struct {
	frequency   float64 // Hz
	coefficient float64 // 1/m
}

// AbsorptionTable maps frequencies to molecular absorption coefficients. It is sorted by frequency.
type AbsorptionTable struct {
	entries []absorptionEntry
}

// NewAbsorptionTable creates a table from parallel frequency (Hz) and coefficient (1/m) lists.
func NewAbsorptionTable(frequencies []float64, coefficients []float64) (*AbsorptionTable, error) {
	if len(frequencies) != len(coefficients) {
		return nil, errors.Errorf("absorption table: %d frequencies but %d coefficients", len(frequencies), len(coefficients))
	}
	if len(frequencies) == 0 {
		return nil, errors.Errorf("absorption table: empty")
	}
	t := &AbsorptionTable{entries: make([]absorptionEntry, len(frequencies))}
	for i := range frequencies {
		t.entries[i] = absorptionEntry{frequency: frequencies[i], coefficient: coefficients[i]}
	}
	slices.SortFunc(t.entries, func(a, b absorptionEntry) int {
		switch {
		case a.frequency < b.frequency:
			return -1
		case a.frequency > b.frequency:
			return 1
		default:
			return 0
		}
	})
	return t, nil
}

// LoadAbsorptionTable reads the frequency and coefficient lists from two whitespace-separated text files.
func LoadAbsorptionTable(frequencyFile string, coefficientFile string) (*AbsorptionTable, error) {
	frequencies, err := readFloats(frequencyFile)
	if err != nil {
		return nil, err
	}
	coefficients, err := readFloats(coefficientFile)
	if err != nil {
		return nil, err
	}
	t, err := NewAbsorptionTable(frequencies, coefficients)
	if err != nil {
		return nil, errors.Wrapf(err, "%s, %s", frequencyFile, coefficientFile)
	}
	return t, nil
}

func readFloats(path string) ([]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read absorption table")
	}
	fields := strings.Fields(string(data))
	values := make([]float64, 0, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: value %d", path, i+1)
		}
		values = append(values, v)
	}
	return values, nil
}

// Len returns the number of rows.
func (t *AbsorptionTable) Len() int {
	return len(t.entries)
}

// Lookup returns the coefficient of the tabulated frequency nearest to frequency. It fails with
// ErrNoAbsorptionEntry if that is further away than tolerance.
func (t *AbsorptionTable) Lookup(frequency float64, tolerance float64) (float64, error) {
	idx, _ := slices.BinarySearchFunc(t.entries, frequency, func(e absorptionEntry, f float64) int {
		switch {
		case e.frequency < f:
			return -1
		case e.frequency > f:
			return 1
		default:
			return 0
		}
	})

	best := -1
	bestDelta := math.Inf(1)
	for _, i := range []int{idx - 1, idx} {
		if i < 0 || i >= len(t.entries) {
			continue
		}
		if delta := math.Abs(t.entries[i].frequency - frequency); delta < bestDelta {
			best, bestDelta = i, delta
		}
	}
	if best < 0 || bestDelta > tolerance {
		return 0, errors.Wrapf(ErrNoAbsorptionEntry, "%g Hz (tolerance %g Hz)", frequency, tolerance)
	}
	return t.entries[best].coefficient, nil
}

// TerahertzModel is a molecular absorption model for THz bands: the free-space spreading loss
// (4*pi*f*d/c)^2 plus the absorption loss exp(k*d), both in dB.
type TerahertzModel struct {
	modelBase
	params      TerahertzParams
	coefficient float64
}

// NewTerahertzModel loads the absorption table files named in params and picks the coefficient of the
// configured frequency.
func NewTerahertzModel(params *TerahertzParams) (*TerahertzModel, error) {
	if params == nil {
		params = NewTerahertzParams()
	}
	if params.FrequencyTable == "" || params.CoefficientTable == "" {
		return nil, errors.Wrapf(ErrInvalidParam, "terahertz: frequency_table and coefficient_table are required")
	}
	table, err := LoadAbsorptionTable(params.FrequencyTable, params.CoefficientTable)
	if err != nil {
		return nil, err
	}
	return NewTerahertzModelWithTable(params, table)
}

// NewTerahertzModelWithTable creates the model from an already loaded table. Table file names in params are ignored.
func NewTerahertzModelWithTable(params *TerahertzParams, table *AbsorptionTable) (*TerahertzModel, error) {
	if params == nil {
		params = NewTerahertzParams()
	}
	if params.Frequency <= 0 {
		return nil, errors.Wrapf(ErrInvalidParam, "terahertz: frequency must be positive, got %g", params.Frequency)
	}
	k, err := table.Lookup(params.Frequency, absorptionTolerance)
	if err != nil {
		return nil, err
	}
	return &TerahertzModel{
		params:      *params,
		coefficient: k,
	}, nil
}

func (m *TerahertzModel) Kind() Kind {
	return KindTerahertz
}

func (m *TerahertzModel) Params() TerahertzParams {
	return m.params
}

// Coefficient returns the absorption coefficient (1/m) in use.
func (m *TerahertzModel) Coefficient() float64 {
	return m.coefficient
}

func (m *TerahertzModel) Loss(d float64) DbValue {
	if d <= 0 {
		return 0
	}
	spreading := 4 * math.Pi * m.params.Frequency * d / speedOfLightApprox
	// 10*log10(exp(k*d)), without overflowing exp for long distances
	absorption := 10 * m.coefficient * d * math.Log10E
	return 10*math.Log10(spreading*spreading) + absorption
}

func (m *TerahertzModel) CalcRxPower(txPower DbValue, link *Link) DbValue {
	return txPower - m.Loss(link.Distance())
}
