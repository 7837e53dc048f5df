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

	"github.com/pkg/errors"

	. "github.com/openthread/ot-proploss/types"
)

// LogDistanceModel applies loss = L0 + 10*n*log10(d/d0) beyond the reference distance d0.
type LogDistanceModel struct {
	modelBase
	params LogDistanceParams
}

func NewLogDistanceModel(params *LogDistanceParams) (*LogDistanceModel, error) {
	if params == nil {
		params = NewLogDistanceParams()
	}
	if params.ReferenceDistance <= 0 {
		return nil, errors.Wrapf(ErrInvalidParam, "logdistance: reference_distance must be positive, got %g",
			params.ReferenceDistance)
	}
	return &LogDistanceModel{params: *params}, nil
}

func (m *LogDistanceModel) Kind() Kind {
	return KindLogDistance
}

func (m *LogDistanceModel) Params() LogDistanceParams {
	return m.params
}

func (m *LogDistanceModel) CalcRxPower(txPower DbValue, link *Link) DbValue {
	d := link.Distance()
	if d <= m.params.ReferenceDistance {
		return txPower - m.params.ReferenceLoss
	}
	pathLossDb := 10 * m.params.Exponent * math.Log10(d/m.params.ReferenceDistance)
	return txPower - m.params.ReferenceLoss - pathLossDb
}

// ThreeLogDistanceModel is a log-distance model with three distance segments, each with its own exponent.
// Every segment starts from the loss at the end of the previous one, so the loss is continuous.
// Below Distance0 there is no loss.
type ThreeLogDistanceModel struct {
	modelBase
	params ThreeLogDistanceParams
}

func NewThreeLogDistanceModel(params *ThreeLogDistanceParams) (*ThreeLogDistanceModel, error) {
	if params == nil {
		params = NewThreeLogDistanceParams()
	}
	if !(params.Distance0 > 0 && params.Distance0 < params.Distance1 && params.Distance1 < params.Distance2) {
		return nil, errors.Wrapf(ErrInvalidParam, "threelogdistance: need 0 < distance0 < distance1 < distance2, got %g, %g, %g",
			params.Distance0, params.Distance1, params.Distance2)
	}
	return &ThreeLogDistanceModel{params: *params}, nil
}

func (m *ThreeLogDistanceModel) Kind() Kind {
	return KindThreeLogDistance
}

func (m *ThreeLogDistanceModel) Params() ThreeLogDistanceParams {
	return m.params
}

// Loss returns the path loss (dB) at distance d.
func (m *ThreeLogDistanceModel) Loss(d float64) DbValue {
	p := &m.params
	switch {
	case d < p.Distance0:
		return 0
	case d < p.Distance1:
		return p.ReferenceLoss + 10*p.Exponent0*math.Log10(d/p.Distance0)
	case d < p.Distance2:
		return p.ReferenceLoss + 10*p.Exponent0*math.Log10(p.Distance1/p.Distance0) +
			10*p.Exponent1*math.Log10(d/p.Distance1)
	default:
		return p.ReferenceLoss + 10*p.Exponent0*math.Log10(p.Distance1/p.Distance0) +
			10*p.Exponent1*math.Log10(p.Distance2/p.Distance1) +
			10*p.Exponent2*math.Log10(d/p.Distance2)
	}
}

func (m *ThreeLogDistanceModel) CalcRxPower(txPower DbValue, link *Link) DbValue {
	return txPower - m.Loss(link.Distance())
}
