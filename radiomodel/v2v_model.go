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
	exprand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/openthread/ot-proploss/prng"
	. "github.com/openthread/ot-proploss/types"
)

const (
	blockerHeightType3  = 3.0 // m, trucks
	blockerHeightType12 = 1.6 // m, cars and vans
)

// V2vModel implements the 3GPP TR 37.885 vehicle-to-vehicle pathloss models, urban and highway variants.
// The link condition (LOS, NLOS, NLOSv) is decided externally and supplied with the Link.
// LOS links use a V2V formula (urban) or the scenario formula with a raised intercept (highway); NLOS links
// always use the scenario formula; NLOSv links add a random vehicle blockage loss to the LOS loss.
type V2vModel struct {
	modelBase
	kind   Kind
	params V2vParams

	losEngine  *scenarioEngine // nil for the urban variant
	nlosEngine *scenarioEngine

	blockerType distuv.Uniform
	blockageSrc exprand.Source
}

func NewV2vUrbanModel(params *V2vParams) (*V2vModel, error) {
	return newV2vModel(KindV2vUrban, params)
}

func NewV2vHighwayModel(params *V2vParams) (*V2vModel, error) {
	return newV2vModel(KindV2vHighway, params)
}

func newV2vModel(kind Kind, params *V2vParams) (*V2vModel, error) {
	if params == nil {
		params = NewV2vParams()
	}
	if params.PercType3Vehicles < 0 || params.PercType3Vehicles > 100 {
		return nil, errors.Wrapf(ErrInvalidParam, "%s: perc_type3_vehicles must be within 0-100, got %g",
			kind, params.PercType3Vehicles)
	}
	if !params.Roles.IsValid() {
		return nil, errors.Wrapf(ErrUnknownRole, "%s: roles %d", kind, params.Roles)
	}

	nlosEngine, err := newScenarioEngine(kind, params.Frequency, params.Scenario, params.MinLoss)
	if err != nil {
		return nil, err
	}
	m := &V2vModel{
		kind:       kind,
		params:     *params,
		nlosEngine: nlosEngine,
	}
	if kind == KindV2vHighway {
		losEngine := *nlosEngine
		losEngine.umaIntercept = interceptHighway
		m.losEngine = &losEngine
	}
	m.setSources(prng.NewAutoSource(), prng.NewAutoSource())
	return m, nil
}

func (m *V2vModel) Kind() Kind {
	return m.kind
}

func (m *V2vModel) Params() V2vParams {
	return m.params
}

func (m *V2vModel) setSources(blockerType exprand.Source, blockage exprand.Source) {
	m.blockerType = distuv.Uniform{Min: 0, Max: 1, Src: blockerType}
	m.blockageSrc = blockage
}

// AssignStreams seeds the blocker type draws from substream 'stream' and the blockage loss draws from
// substream 'stream'+1.
func (m *V2vModel) AssignStreams(root prng.RandomSeed, stream int64) int64 {
	m.setSources(substreamSource(root, stream), substreamSource(root, stream+1))
	return 2
}

// Loss returns the pathloss (dB) of the link for its LOS condition.
func (m *V2vModel) Loss(link *Link) (DbValue, error) {
	infra, mobile := link.InfraAndMobile(m.params.Roles)
	d2D := infra.Distance2DTo(mobile)
	d3D := infra.DistanceTo(mobile)
	hBs, hUt := infra.AntennaHeight(), mobile.AntennaHeight()

	switch link.Condition {
	case LOS:
		return m.lossLos(d2D, d3D, hBs, hUt)
	case NLOS:
		return m.nlosEngine.loss(&m.modelBase, d2D, d3D, hBs, hUt)
	case NLOSv:
		loss, err := m.lossLos(d2D, d3D, hBs, hUt)
		if err != nil {
			return 0, err
		}
		return loss + m.additionalNlosvLoss(d3D, hBs, hUt), nil
	default:
		return 0, errors.Wrapf(ErrUnknownLosCondition, "%s: link %d-%d has condition %s", m.kind,
			link.A.Id, link.B.Id, link.Condition)
	}
}

func (m *V2vModel) CalcRxPower(txPower DbValue, link *Link) (DbValue, error) {
	loss, err := m.Loss(link)
	if err != nil {
		return txPower, err
	}
	return txPower - loss, nil
}

func (m *V2vModel) lossLos(d2D, d3D, hBs, hUt float64) (DbValue, error) {
	if m.losEngine != nil {
		return m.losEngine.loss(&m.modelBase, d2D, d3D, hBs, hUt)
	}
	if d3D <= 0 {
		return m.params.MinLoss, nil
	}
	// 3GPP TR 37.885, Table 6.2.1-1
	return 38.77 + 16.7*math.Log10(d3D) + 18.2*math.Log10(m.params.Frequency/1e9), nil
}

// drawBlockerHeight picks the height of the blocking vehicle per the configured share of type 3 vehicles.
func (m *V2vModel) drawBlockerHeight() float64 {
	if m.blockerType.Rand()*100.0 < m.params.PercType3Vehicles {
		return blockerHeightType3
	}
	return blockerHeightType12
}

// additionalNlosvLoss draws the vehicle blockage loss (dB) of TR 37.885 Section 6.2.1, max(0, lognormal).
func (m *V2vModel) additionalNlosvLoss(d3D, hBs, hUt float64) DbValue {
	blockerHeight := m.drawBlockerHeight()

	var mu, sigma float64
	switch {
	case math.Min(hUt, hBs) > blockerHeight:
		return 0
	case math.Max(hUt, hBs) < blockerHeight:
		mu = 9.0 + math.Max(0, 15*math.Log10(d3D)-41.0)
		sigma = 4.5
	default:
		mu = 5.0 + math.Max(0, 15*math.Log10(d3D)-41.0)
		sigma = 4.0
	}

	ln := distuv.LogNormal{
		Mu:    math.Log(mu * mu / math.Sqrt(sigma*sigma+mu*mu)),
		Sigma: math.Sqrt(math.Log(sigma*sigma/(mu*mu) + 1)),
		Src:   m.blockageSrc,
	}
	return math.Max(0, ln.Rand())
}

// ShadowingStd returns the shadowing standard deviation (dB) for the condition, see TR 37.885 Table 6.2.1-1.
func (m *V2vModel) ShadowingStd(cond LosCondition) (float64, error) {
	switch cond {
	case LOS, NLOSv:
		return 3.0, nil
	case NLOS:
		return 4.0, nil
	default:
		return 0, errors.Wrapf(ErrUnknownLosCondition, "%s", cond)
	}
}

// ShadowingCorrelationDistance returns the shadowing correlation distance (m), see TR 37.885 Table 6.2.3-1.
func (m *V2vModel) ShadowingCorrelationDistance(cond LosCondition) (float64, error) {
	switch cond {
	case LOS:
		return 10.0, nil
	case NLOS, NLOSv:
		return 13.0, nil
	default:
		return 0, errors.Wrapf(ErrUnknownLosCondition, "%s", cond)
	}
}
