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

	. "github.com/openthread/ot-proploss/types"
)

// default propagation parameters
const (
	speedOfLight         float64 = 299792458.0 // m/s, used for wavelengths
	speedOfLightApprox   float64 = 3e8         // m/s, used in 3GPP breakpoint and THz formulas
	defaultFrequency     float64 = 5.15e9      // Hz, free-space and two-ray models
	defaultFrequency3gpp float64 = 3e10        // Hz, scenario model
	defaultFrequencyV2v  float64 = 28e9        // Hz, V2V models
	defaultFrequencyThz  float64 = 3e11        // Hz, absorption model
	defaultReferenceLoss DbValue = 46.6777     // dB at 1 m, 2.4 GHz free-space
	defaultMaxRange      float64 = 250.0       // m
	defaultFixedRss      DbValue = -150.0      // dBm
	absorptionTolerance  float64 = 9.894e8     // Hz, max distance between configured and tabulated frequency
)

// FriisParams configures the free-space model.
type FriisParams struct {
	Frequency  float64 `mapstructure:"frequency"`   // carrier frequency (Hz)
	SystemLoss float64 `mapstructure:"system_loss"` // dimensionless system loss L (>= 1)
	MinLoss    DbValue `mapstructure:"min_loss"`    // lower bound of the computed loss (dB)
}

func NewFriisParams() *FriisParams {
	return &FriisParams{
		Frequency:  defaultFrequency,
		SystemLoss: 1.0,
		MinLoss:    0.0,
	}
}

// TwoRayGroundParams configures the two-ray ground reflection model.
type TwoRayGroundParams struct {
	Frequency    float64 `mapstructure:"frequency"`
	SystemLoss   float64 `mapstructure:"system_loss"`
	MinDistance  float64 `mapstructure:"min_distance"`   // below this distance (m), tx power is returned unchanged
	HeightAboveZ float64 `mapstructure:"height_above_z"` // added to both antenna heights (m)
}

func NewTwoRayGroundParams() *TwoRayGroundParams {
	return &TwoRayGroundParams{
		Frequency:    defaultFrequency,
		SystemLoss:   1.0,
		MinDistance:  0.5,
		HeightAboveZ: 0.0,
	}
}

type LogDistanceParams struct {
	Exponent          float64 `mapstructure:"exponent"`
	ReferenceDistance float64 `mapstructure:"reference_distance"`
	ReferenceLoss     DbValue `mapstructure:"reference_loss"`
}

func NewLogDistanceParams() *LogDistanceParams {
	return &LogDistanceParams{
		Exponent:          3.0,
		ReferenceDistance: 1.0,
		ReferenceLoss:     defaultReferenceLoss,
	}
}

type ThreeLogDistanceParams struct {
	Distance0     float64 `mapstructure:"distance0"`
	Distance1     float64 `mapstructure:"distance1"`
	Distance2     float64 `mapstructure:"distance2"`
	Exponent0     float64 `mapstructure:"exponent0"`
	Exponent1     float64 `mapstructure:"exponent1"`
	Exponent2     float64 `mapstructure:"exponent2"`
	ReferenceLoss DbValue `mapstructure:"reference_loss"`
}

func NewThreeLogDistanceParams() *ThreeLogDistanceParams {
	return &ThreeLogDistanceParams{
		Distance0:     1.0,
		Distance1:     200.0,
		Distance2:     500.0,
		Exponent0:     1.9,
		Exponent1:     3.8,
		Exponent2:     3.8,
		ReferenceLoss: defaultReferenceLoss,
	}
}

type RangeParams struct {
	MaxRange float64 `mapstructure:"max_range"` // m
}

func NewRangeParams() *RangeParams {
	return &RangeParams{MaxRange: defaultMaxRange}
}

// MatrixEntry is a preconfigured loss between two nodes.
type MatrixEntry struct {
	A         NodeId  `mapstructure:"a"`
	B         NodeId  `mapstructure:"b"`
	Loss      DbValue `mapstructure:"loss"`
	Symmetric bool    `mapstructure:"symmetric"`
}

type MatrixParams struct {
	DefaultLoss DbValue       `mapstructure:"default_loss"`
	Entries     []MatrixEntry `mapstructure:"entries"`
}

func NewMatrixParams() *MatrixParams {
	return &MatrixParams{DefaultLoss: math.MaxFloat64}
}

type FixedRssParams struct {
	Rss DbValue `mapstructure:"rss"` // dBm
}

func NewFixedRssParams() *FixedRssParams {
	return &FixedRssParams{Rss: defaultFixedRss}
}

// Distribution names for RandomParams.
const (
	DistributionConstant    = "constant"
	DistributionUniform     = "uniform"
	DistributionNormal      = "normal"
	DistributionExponential = "exponential"
)

// RandomParams configures the random attenuation X, with rx = tx - X.
type RandomParams struct {
	Distribution string  `mapstructure:"distribution"`
	Constant     DbValue `mapstructure:"constant"` // value for 'constant'
	Min          DbValue `mapstructure:"min"`      // bounds for 'uniform'
	Max          DbValue `mapstructure:"max"`
	Mean         DbValue `mapstructure:"mean"`   // mean for 'normal' and 'exponential'
	StdDev       DbValue `mapstructure:"stddev"` // for 'normal'
}

func NewRandomParams() *RandomParams {
	return &RandomParams{
		Distribution: DistributionConstant,
		Constant:     1.0,
		Min:          0.0,
		Max:          1.0,
		Mean:         1.0,
		StdDev:       1.0,
	}
}

// ThreeGppParams configures the 3GPP TR 38.901 Table 7.4.1-1 scenario model.
type ThreeGppParams struct {
	Frequency float64        `mapstructure:"frequency"`
	Scenario  Scenario       `mapstructure:"scenario"`
	MinLoss   DbValue        `mapstructure:"min_loss"`
	Roles     RoleAssignment `mapstructure:"roles"`
}

func NewThreeGppParams() *ThreeGppParams {
	return &ThreeGppParams{
		Frequency: defaultFrequency3gpp,
		Scenario:  ScenarioUMa,
		MinLoss:   0.0,
		Roles:     RoleInfraA,
	}
}

// V2vParams configures the 3GPP TR 37.885 vehicle-to-vehicle models. Scenario selects the
// breakpoint formula used for NLOS links (and for LOS links in the highway variant).
type V2vParams struct {
	Frequency         float64        `mapstructure:"frequency"`
	Scenario          Scenario       `mapstructure:"scenario"`
	MinLoss           DbValue        `mapstructure:"min_loss"`
	Roles             RoleAssignment `mapstructure:"roles"`
	PercType3Vehicles float64        `mapstructure:"perc_type3_vehicles"` // percentage (0-100) of trucks
}

func NewV2vParams() *V2vParams {
	return &V2vParams{
		Frequency:         defaultFrequencyV2v,
		Scenario:          ScenarioUMa,
		MinLoss:           0.0,
		Roles:             RoleInfraA,
		PercType3Vehicles: 0.0,
	}
}

// NakagamiParams configures the Nakagami-m fading model: shape M0 applies below Distance1,
// M1 up to Distance2, and M2 beyond.
type NakagamiParams struct {
	Distance1 float64 `mapstructure:"distance1"`
	Distance2 float64 `mapstructure:"distance2"`
	M0        float64 `mapstructure:"m0"`
	M1        float64 `mapstructure:"m1"`
	M2        float64 `mapstructure:"m2"`
}

func NewNakagamiParams() *NakagamiParams {
	return &NakagamiParams{
		Distance1: 80.0,
		Distance2: 200.0,
		M0:        1.5,
		M1:        0.75,
		M2:        0.75,
	}
}

// TerahertzParams configures the molecular absorption model. The two files hold parallel,
// whitespace-separated lists of frequencies (Hz) and absorption coefficients (1/m).
type TerahertzParams struct {
	Frequency        float64 `mapstructure:"frequency"`
	FrequencyTable   string  `mapstructure:"frequency_table"`
	CoefficientTable string  `mapstructure:"coefficient_table"`
}

func NewTerahertzParams() *TerahertzParams {
	return &TerahertzParams{
		Frequency: defaultFrequencyThz,
	}
}

func wavelength(frequency float64) float64 {
	return speedOfLight / frequency
}
