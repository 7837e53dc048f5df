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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

func TestRandomConstant(t *testing.T) {
	m, err := NewRandomModel(nil)
	require.Nil(t, err)
	assert.Equal(t, 9.0, m.CalcRxPower(10.0, testLink(1, 0)))
	assert.Equal(t, int64(1), m.AssignStreams(1, 0))
	assert.Equal(t, 9.0, m.CalcRxPower(10.0, testLink(500, 0)))
}

func TestRandomDistributions(t *testing.T) {
	const n = 10000
	draw := func(p *RandomParams) []float64 {
		m, err := NewRandomModel(p)
		require.Nil(t, err)
		m.AssignStreams(31, 7)
		res := make([]float64, n)
		for i := range res {
			res[i] = 0 - m.CalcRxPower(0, testLink(10, 0))
		}
		return res
	}

	uniform := draw(&RandomParams{Distribution: DistributionUniform, Min: 2, Max: 6})
	assert.InDelta(t, 4.0, stat.Mean(uniform, nil), 0.1)
	for _, x := range uniform {
		assert.True(t, x >= 2 && x < 6)
	}

	normal := draw(&RandomParams{Distribution: DistributionNormal, Mean: 3, StdDev: 2})
	mean, std := stat.MeanStdDev(normal, nil)
	assert.InDelta(t, 3.0, mean, 0.1)
	assert.InDelta(t, 2.0, std, 0.1)

	exponential := draw(&RandomParams{Distribution: DistributionExponential, Mean: 5})
	assert.InDelta(t, 5.0, stat.Mean(exponential, nil), 0.25)
}

func TestRandomInvalid(t *testing.T) {
	_, err := NewRandomModel(&RandomParams{Distribution: "pareto"})
	assert.ErrorIs(t, err, ErrInvalidParam)
	_, err = NewRandomModel(&RandomParams{Distribution: DistributionUniform, Min: 3, Max: 1})
	assert.ErrorIs(t, err, ErrInvalidParam)
	_, err = NewRandomModel(&RandomParams{Distribution: DistributionExponential, Mean: 0})
	assert.ErrorIs(t, err, ErrInvalidParam)
}
