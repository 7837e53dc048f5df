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

// FriisModel is the free-space propagation model, see https://en.wikipedia.org/wiki/Friis_transmission_equation
type FriisModel struct {
	modelBase
	params FriisParams
	lambda float64
}

// NewFriisModel creates a free-space model. A nil params uses the defaults of NewFriisParams.
func NewFriisModel(params *FriisParams) (*FriisModel, error) {
	if params == nil {
		params = NewFriisParams()
	}
	if params.Frequency <= 0 {
		return nil, errors.Wrapf(ErrInvalidParam, "friis: frequency must be positive, got %g", params.Frequency)
	}
	if params.SystemLoss <= 0 {
		return nil, errors.Wrapf(ErrInvalidParam, "friis: system_loss must be positive, got %g", params.SystemLoss)
	}
	return &FriisModel{
		params: *params,
		lambda: wavelength(params.Frequency),
	}, nil
}

func (m *FriisModel) Kind() Kind {
	return KindFriis
}

func (m *FriisModel) Params() FriisParams {
	return m.params
}

// CalcRxPower returns tx - max(loss, MinLoss), with loss = -10*log10(lambda^2 / (16*pi^2*d^2*L)).
func (m *FriisModel) CalcRxPower(txPower DbValue, link *Link) DbValue {
	d := link.Distance()
	if d <= 0 {
		return txPower - m.params.MinLoss
	}
	if d < 3*m.lambda {
		m.warnf(KindFriis, "friis: distance %.3f m not within the far field region, loss value may be inaccurate", d)
	}
	return txPower - math.Max(friisLoss(d, m.lambda, m.params.SystemLoss), m.params.MinLoss)
}

func friisLoss(d float64, lambda float64, systemLoss float64) DbValue {
	numerator := lambda * lambda
	denominator := 16 * math.Pi * math.Pi * d * d * systemLoss
	return -10 * math.Log10(numerator/denominator)
}

// TwoRayGroundModel adds a ground reflection to the free-space model beyond the cross-over distance.
type TwoRayGroundModel struct {
	modelBase
	params TwoRayGroundParams
	lambda float64
}

func NewTwoRayGroundModel(params *TwoRayGroundParams) (*TwoRayGroundModel, error) {
	if params == nil {
		params = NewTwoRayGroundParams()
	}
	if params.Frequency <= 0 {
		return nil, errors.Wrapf(ErrInvalidParam, "tworay: frequency must be positive, got %g", params.Frequency)
	}
	if params.SystemLoss <= 0 {
		return nil, errors.Wrapf(ErrInvalidParam, "tworay: system_loss must be positive, got %g", params.SystemLoss)
	}
	if params.MinDistance < 0 {
		return nil, errors.Wrapf(ErrInvalidParam, "tworay: min_distance must not be negative, got %g", params.MinDistance)
	}
	return &TwoRayGroundModel{
		params: *params,
		lambda: wavelength(params.Frequency),
	}, nil
}

func (m *TwoRayGroundModel) Kind() Kind {
	return KindTwoRayGround
}

func (m *TwoRayGroundModel) Params() TwoRayGroundParams {
	return m.params
}

// CrossoverDistance returns the distance beyond which the two-ray formula applies.
func (m *TwoRayGroundModel) CrossoverDistance(link *Link) float64 {
	hA := link.A.AntennaHeight() + m.params.HeightAboveZ
	hB := link.B.AntennaHeight() + m.params.HeightAboveZ
	return 4 * math.Pi * hA * hB / m.lambda
}

func (m *TwoRayGroundModel) CalcRxPower(txPower DbValue, link *Link) DbValue {
	d := link.Distance()
	if d <= m.params.MinDistance {
		return txPower
	}

	if d <= m.CrossoverDistance(link) {
		return txPower - friisLoss(d, m.lambda, m.params.SystemLoss)
	}

	hA := link.A.AntennaHeight() + m.params.HeightAboveZ
	hB := link.B.AntennaHeight() + m.params.HeightAboveZ
	h2 := hA * hB
	d2 := d * d
	return txPower + 10*math.Log10((h2*h2)/(d2*d2*m.params.SystemLoss))
}
