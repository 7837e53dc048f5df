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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/openthread/ot-proploss/types"
)

func vehicleLink(d, hA, hB float64, cond LosCondition) *Link {
	return NewLink(NewEndpoint(1, 0, 0, hA), NewEndpoint(2, d, 0, hB)).WithCondition(cond)
}

func TestV2vBlockerHeight(t *testing.T) {
	trucks, err := NewV2vUrbanModel(&V2vParams{Frequency: 5.9e9, Scenario: ScenarioUMa, PercType3Vehicles: 100})
	require.Nil(t, err)
	trucks.AssignStreams(3, 0)
	cars, err := NewV2vUrbanModel(&V2vParams{Frequency: 5.9e9, Scenario: ScenarioUMa, PercType3Vehicles: 0})
	require.Nil(t, err)
	cars.AssignStreams(3, 0)

	for i := 0; i < 1000; i++ {
		assert.Equal(t, 3.0, trucks.drawBlockerHeight())
		assert.Equal(t, 1.6, cars.drawBlockerHeight())
	}
}

func TestV2vUrbanLos(t *testing.T) {
	m, err := NewV2vUrbanModel(nil)
	require.Nil(t, err)
	assert.Equal(t, KindV2vUrban, m.Kind())

	loss, err := m.Loss(vehicleLink(100, 1.5, 1.5, LOS))
	require.Nil(t, err)
	assert.InDelta(t, 38.77+16.7*2+18.2*math.Log10(28), loss, 1e-9)

	loss, err = m.Loss(vehicleLink(0, 1.5, 1.5, LOS))
	require.Nil(t, err)
	assert.Equal(t, 0.0, loss)
}

func TestV2vNlosUsesScenario(t *testing.T) {
	urban, err := NewV2vUrbanModel(nil)
	require.Nil(t, err)
	highway, err := NewV2vHighwayModel(nil)
	require.Nil(t, err)

	link := vehicleLink(100, 1.5, 1.5, NLOS)
	expected := 32.4 + 20*math.Log10(100) + 20*math.Log10(28)
	for _, m := range []*V2vModel{urban, highway} {
		loss, err := m.Loss(link)
		require.Nil(t, err)
		assert.InDelta(t, expected, loss, 1e-9, m.Kind())
	}
}

func TestV2vHighwayLosIntercept(t *testing.T) {
	m, err := NewV2vHighwayModel(nil)
	require.Nil(t, err)

	los, err := m.Loss(vehicleLink(100, 1.5, 1.5, LOS))
	require.Nil(t, err)
	nlos, err := m.Loss(vehicleLink(100, 1.5, 1.5, NLOS))
	require.Nil(t, err)
	assert.InDelta(t, 65.0-32.4, los-nlos, 1e-9)

	// above the breakpoint as well
	los, err = m.Loss(vehicleLink(2000, 1.5, 1.5, LOS))
	require.Nil(t, err)
	nlos, err = m.Loss(vehicleLink(2000, 1.5, 1.5, NLOS))
	require.Nil(t, err)
	assert.InDelta(t, 65.0-32.4, los-nlos, 1e-9)

	// the LOS engine is a separate copy of the NLOS engine
	require.NotNil(t, m.losEngine)
	assert.NotSame(t, m.nlosEngine, m.losEngine)
	assert.Equal(t, interceptStandard, m.nlosEngine.umaIntercept)
	assert.Equal(t, interceptHighway, m.losEngine.umaIntercept)
	assert.Equal(t, m.nlosEngine.frequency, m.losEngine.frequency)

	urban, err := NewV2vUrbanModel(nil)
	require.Nil(t, err)
	assert.Nil(t, urban.losEngine)
}

func TestV2vNlosvBlockage(t *testing.T) {
	m, err := NewV2vUrbanModel(&V2vParams{Frequency: 28e9, Scenario: ScenarioUMa, PercType3Vehicles: 30})
	require.Nil(t, err)
	m.AssignStreams(11, 0)

	// both antennas above any blocker: no additional loss
	los, err := m.Loss(vehicleLink(50, 5, 5, LOS))
	require.Nil(t, err)
	for i := 0; i < 100; i++ {
		nlosv, err := m.Loss(vehicleLink(50, 5, 5, NLOSv))
		require.Nil(t, err)
		assert.Equal(t, los, nlosv)
	}

	// both antennas below the blocker: loss is never lower than LOS
	los, err = m.Loss(vehicleLink(50, 1.5, 1.5, LOS))
	require.Nil(t, err)
	sum := 0.0
	for i := 0; i < 1000; i++ {
		nlosv, err := m.Loss(vehicleLink(50, 1.5, 1.5, NLOSv))
		require.Nil(t, err)
		assert.GreaterOrEqual(t, nlosv, los)
		sum += nlosv - los
	}
	// mean blockage loss is close to 9 dB (mu at short distance)
	assert.InDelta(t, 9.0, sum/1000, 1.0)
}

func TestV2vReproducibleStreams(t *testing.T) {
	m1, _ := NewV2vUrbanModel(&V2vParams{Frequency: 28e9, Scenario: ScenarioUMa, PercType3Vehicles: 50})
	m2, _ := NewV2vUrbanModel(&V2vParams{Frequency: 28e9, Scenario: ScenarioUMa, PercType3Vehicles: 50})
	assert.Equal(t, int64(2), m1.AssignStreams(77, 4))
	m2.AssignStreams(77, 4)

	link := vehicleLink(80, 1.5, 2.0, NLOSv)
	for i := 0; i < 20; i++ {
		l1, err := m1.Loss(link)
		require.Nil(t, err)
		l2, err := m2.Loss(link)
		require.Nil(t, err)
		assert.Equal(t, l1, l2)
	}
}

func TestV2vShadowing(t *testing.T) {
	m, _ := NewV2vHighwayModel(nil)

	std, err := m.ShadowingStd(LOS)
	assert.Nil(t, err)
	assert.Equal(t, 3.0, std)
	std, _ = m.ShadowingStd(NLOSv)
	assert.Equal(t, 3.0, std)
	std, _ = m.ShadowingStd(NLOS)
	assert.Equal(t, 4.0, std)
	_, err = m.ShadowingStd(LosConditionUnknown)
	assert.ErrorIs(t, err, ErrUnknownLosCondition)

	dist, err := m.ShadowingCorrelationDistance(LOS)
	assert.Nil(t, err)
	assert.Equal(t, 10.0, dist)
	dist, _ = m.ShadowingCorrelationDistance(NLOS)
	assert.Equal(t, 13.0, dist)
	dist, _ = m.ShadowingCorrelationDistance(NLOSv)
	assert.Equal(t, 13.0, dist)
	_, err = m.ShadowingCorrelationDistance(LosConditionUnknown)
	assert.ErrorIs(t, err, ErrUnknownLosCondition)
}

func TestV2vErrors(t *testing.T) {
	m, _ := NewV2vUrbanModel(nil)
	_, err := m.CalcRxPower(0, vehicleLink(10, 1.5, 1.5, LosConditionUnknown))
	assert.ErrorIs(t, err, ErrUnknownLosCondition)

	_, err = NewV2vUrbanModel(&V2vParams{Frequency: 28e9, PercType3Vehicles: 101})
	assert.ErrorIs(t, err, ErrInvalidParam)
	_, err = NewV2vHighwayModel(&V2vParams{Frequency: 28e9, Scenario: Scenario(-1)})
	assert.ErrorIs(t, err, ErrUnknownScenario)

	// NLOS through the UMa formula validates the user terminal height
	_, err = m.Loss(vehicleLink(100, 1.5, 0.5, NLOS))
	assert.ErrorIs(t, err, ErrHeightOutOfRange)
}
