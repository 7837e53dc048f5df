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
	"github.com/pkg/errors"
	exprand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/openthread/ot-proploss/prng"
	. "github.com/openthread/ot-proploss/types"
)

// NakagamiModel is the Nakagami-m fast fading model, see https://en.wikipedia.org/wiki/Nakagami_distribution
//
// The received power (W) is drawn from a Gamma distribution with shape m and mean equal to the input power, so
// unlike the other models it replaces the input power instead of subtracting a loss from it. For integer m the
// draw is the sum of m exponentials (Erlang). The shape m depends on the distance: M0 below Distance1, M1 below
// Distance2 and M2 beyond. m = 1 gives Rayleigh fading.
type NakagamiModel struct {
	modelBase
	params    NakagamiParams
	erlangSrc exprand.Source
	gammaSrc  exprand.Source
}

func NewNakagamiModel(params *NakagamiParams) (*NakagamiModel, error) {
	if params == nil {
		params = NewNakagamiParams()
	}
	if params.Distance1 < 0 || params.Distance2 < params.Distance1 {
		return nil, errors.Wrapf(ErrInvalidParam, "nakagami: need 0 <= distance1 <= distance2, got %g, %g",
			params.Distance1, params.Distance2)
	}
	for _, shape := range []float64{params.M0, params.M1, params.M2} {
		if shape < 0.5 {
			return nil, errors.Wrapf(ErrInvalidParam, "nakagami: shape m must be >= 0.5, got %g", shape)
		}
	}
	m := &NakagamiModel{params: *params}
	m.setSources(prng.NewAutoSource(), prng.NewAutoSource())
	return m, nil
}

func (m *NakagamiModel) Kind() Kind {
	return KindNakagami
}

func (m *NakagamiModel) Params() NakagamiParams {
	return m.params
}

func (m *NakagamiModel) setSources(erlang exprand.Source, gamma exprand.Source) {
	m.erlangSrc = erlang
	m.gammaSrc = gamma
}

// AssignStreams seeds the Erlang draws from substream 'stream' and the Gamma draws from substream 'stream'+1.
func (m *NakagamiModel) AssignStreams(root prng.RandomSeed, stream int64) int64 {
	m.setSources(substreamSource(root, stream), substreamSource(root, stream+1))
	return 2
}

// Shape returns the shape parameter m used at distance d.
func (m *NakagamiModel) Shape(d float64) float64 {
	switch {
	case d < m.params.Distance1:
		return m.params.M0
	case d < m.params.Distance2:
		return m.params.M1
	default:
		return m.params.M2
	}
}

func (m *NakagamiModel) CalcRxPower(txPower DbValue, link *Link) DbValue {
	shape := m.Shape(link.Distance())
	powerW := dbmToWatt(txPower)

	var resultW float64
	if isInteger(shape) {
		exp := distuv.Exponential{Rate: shape / powerW, Src: m.erlangSrc}
		for i := 0; i < int(shape); i++ {
			resultW += exp.Rand()
		}
	} else {
		resultW = distuv.Gamma{Alpha: shape, Beta: shape / powerW, Src: m.gammaSrc}.Rand()
	}
	return wattToDbm(resultW)
}

