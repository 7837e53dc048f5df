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

const (
	interceptStandard = 32.4 // dB, 3GPP TR 38.901 UMa/UMi/InH intercept
	interceptHighway  = 65.0 // dB, UMa intercept of the V2V highway LOS variant
	rmaBuildingHeight = 5.0  // m, average building height h of RMa
)

// scenarioEngine evaluates the LOS pathloss formulas of 3GPP TR 38.901 Table 7.4.1-1 for one scenario.
type scenarioEngine struct {
	kind         Kind
	frequency    float64
	lambda       float64
	scenario     Scenario
	minLoss      DbValue
	umaIntercept float64
}

func newScenarioEngine(kind Kind, frequency float64, scenario Scenario, minLoss DbValue) (*scenarioEngine, error) {
	if frequency <= 0 {
		return nil, errors.Wrapf(ErrInvalidParam, "%s: frequency must be positive, got %g", kind, frequency)
	}
	if !scenario.IsValid() {
		return nil, errors.Wrapf(ErrUnknownScenario, "%s: scenario %d", kind, scenario)
	}
	return &scenarioEngine{
		kind:         kind,
		frequency:    frequency,
		lambda:       wavelength(frequency),
		scenario:     scenario,
		minLoss:      minLoss,
		umaIntercept: interceptStandard,
	}, nil
}

// breakpointDistance returns the breakpoint distance d'BP (m) for the antenna heights. Indoor scenarios have none
// and return 0.
func (e *scenarioEngine) breakpointDistance(hBs, hUt float64) float64 {
	switch e.scenario {
	case ScenarioRMa:
		return 2 * math.Pi * hBs * hUt * e.frequency / speedOfLightApprox
	case ScenarioUMa:
		return 4 * hBs * hUt * e.frequency / speedOfLightApprox
	case ScenarioUMiStreetCanyon:
		return 4 * (hBs - 1) * (hUt - 1) * e.frequency / speedOfLightApprox
	default:
		return 0
	}
}

// loss computes the pathloss (dB) between base station and user terminal, clamped to be at least minLoss.
// Height violations of the outdoor scenarios are errors; accuracy issues are only warned about.
func (e *scenarioEngine) loss(mb *modelBase, d2D, d3D, hBs, hUt float64) (DbValue, error) {
	if d3D <= 0 {
		return e.minLoss, nil
	}
	if d3D < 3*e.lambda {
		mb.warnf(e.kind, "%s: distance %.3f m not within the far field region, loss value may be inaccurate", e.kind, d3D)
	}

	fGHz := e.frequency / 1e9
	var lossDb DbValue

	switch e.scenario {
	case ScenarioRMa:
		if d2D < 10 {
			mb.warnf(e.kind, "%s: 2D distance %.3f m is smaller than 10 m, the 3GPP RMa model may not be accurate", e.kind, d2D)
		}
		if hBs < 10 || hBs > 150 {
			return 0, errors.Wrapf(ErrHeightOutOfRange, "RMa requires 10 m <= hBS <= 150 m, got %g m", hBs)
		}
		if hUt < 1 || hUt > 10 {
			return 0, errors.Wrapf(ErrHeightOutOfRange, "RMa requires 1 m <= hUT <= 10 m, got %g m", hUt)
		}
		h := rmaBuildingHeight
		dBP := e.breakpointDistance(hBs, hUt)
		pl1 := 20*math.Log10(40*math.Pi*d3D*fGHz/3) + math.Min(0.03*math.Pow(h, 1.72), 10)*math.Log10(d3D) -
			math.Min(0.044*math.Pow(h, 1.72), 14.77) + 0.002*math.Log10(h)*d3D
		if d2D <= dBP {
			lossDb = pl1
		} else {
			lossDb = pl1 + 40*math.Log10(d3D/dBP)
		}

	case ScenarioUMa:
		if d2D < 10 {
			mb.warnf(e.kind, "%s: 2D distance %.3f m is smaller than 10 m, the 3GPP UMa model may not be accurate", e.kind, d2D)
		}
		if hUt < 1.5 || hUt > 22.5 {
			return 0, errors.Wrapf(ErrHeightOutOfRange, "UMa requires 1.5 m <= hUT <= 22.5 m, got %g m", hUt)
		}
		dBP := e.breakpointDistance(hBs, hUt)
		if d2D <= dBP {
			lossDb = e.umaIntercept + 20*math.Log10(d3D) + 20*math.Log10(fGHz)
		} else {
			lossDb = e.umaIntercept + 40*math.Log10(d3D) + 20*math.Log10(fGHz) -
				10*math.Log10(dBP*dBP+(hBs-hUt)*(hBs-hUt))
		}

	case ScenarioUMiStreetCanyon:
		if hUt < 1.5 || hUt > 22.5 {
			return 0, errors.Wrapf(ErrHeightOutOfRange, "UMi-StreetCanyon requires 1.5 m <= hUT <= 22.5 m, got %g m", hUt)
		}
		dBP := e.breakpointDistance(hBs, hUt)
		if d2D <= dBP {
			lossDb = interceptStandard + 21*math.Log10(d3D) + 20*math.Log10(fGHz)
		} else {
			lossDb = interceptStandard + 40*math.Log10(d3D) + 20*math.Log10(fGHz) -
				9.5*math.Log10(dBP*dBP+(hBs-hUt)*(hBs-hUt))
		}

	case ScenarioInHOfficeMixed, ScenarioInHOfficeOpen:
		if d3D < 1 || d3D > 100 {
			mb.warnf(e.kind, "%s: 3D distance %.3f m outside 1-100 m, the 3GPP InH-Office model may not be accurate", e.kind, d3D)
		}
		lossDb = interceptStandard + 17.3*math.Log10(d3D) + 20*math.Log10(fGHz)

	case ScenarioInHShoppingMall:
		if d3D < 1 || d3D > 150 {
			mb.warnf(e.kind, "%s: 3D distance %.3f m outside 1-150 m, the 3GPP InH-ShoppingMall model may not be accurate", e.kind, d3D)
		}
		lossDb = interceptStandard + 17.3*math.Log10(d3D) + 20*math.Log10(fGHz)

	default:
		return 0, errors.Wrapf(ErrUnknownScenario, "%d", e.scenario)
	}

	return math.Max(lossDb, e.minLoss), nil
}

// ThreeGppModel is the 3GPP TR 38.901 scenario pathloss model (LOS formulas) with explicit
// base station / user terminal roles.
type ThreeGppModel struct {
	modelBase
	params ThreeGppParams
	engine *scenarioEngine
}

func NewThreeGppModel(params *ThreeGppParams) (*ThreeGppModel, error) {
	if params == nil {
		params = NewThreeGppParams()
	}
	if !params.Roles.IsValid() {
		return nil, errors.Wrapf(ErrUnknownRole, "%s: roles %d", KindThreeGpp, params.Roles)
	}
	engine, err := newScenarioEngine(KindThreeGpp, params.Frequency, params.Scenario, params.MinLoss)
	if err != nil {
		return nil, err
	}
	return &ThreeGppModel{
		params: *params,
		engine: engine,
	}, nil
}

func (m *ThreeGppModel) Kind() Kind {
	return KindThreeGpp
}

func (m *ThreeGppModel) Params() ThreeGppParams {
	return m.params
}

// BreakpointDistance returns the breakpoint distance (m) of the link, or 0 for indoor scenarios.
func (m *ThreeGppModel) BreakpointDistance(link *Link) float64 {
	hBs, hUt := linkHeights(link, m.params.Roles)
	return m.engine.breakpointDistance(hBs, hUt)
}

// Loss returns the pathloss (dB) of the link.
func (m *ThreeGppModel) Loss(link *Link) (DbValue, error) {
	infra, mobile := link.InfraAndMobile(m.params.Roles)
	return m.engine.loss(&m.modelBase, infra.Distance2DTo(mobile), infra.DistanceTo(mobile),
		infra.AntennaHeight(), mobile.AntennaHeight())
}

func (m *ThreeGppModel) CalcRxPower(txPower DbValue, link *Link) (DbValue, error) {
	loss, err := m.Loss(link)
	if err != nil {
		return txPower, err
	}
	return txPower - loss, nil
}
