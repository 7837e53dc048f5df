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

package types

import (
	"math"
	"strings"

	"github.com/pkg/errors"
)

type NodeId = int

// DbValue is a power (dBm) or gain/loss (dB) value.
type DbValue = float64

const (
	InvalidNodeId NodeId = 0
)

const (
	// UndefinedDbValue marks a parameter that was not set.
	UndefinedDbValue DbValue = math.MaxFloat64

	// RxPowerUnreachable is returned by range-limited models for receivers out of range.
	RxPowerUnreachable DbValue = -1000.0
)

var (
	ErrUnknownLosCondition = errors.New("unknown LOS condition")
	ErrUnknownScenario     = errors.New("unknown channel scenario")
	ErrUnknownRole         = errors.New("unknown role assignment")
)

// LosCondition is the line-of-sight state of a link, decided by an external channel condition model.
type LosCondition int

const (
	LosConditionUnknown LosCondition = 0
	LOS                 LosCondition = 1 // line of sight
	NLOS                LosCondition = 2 // non line of sight
	NLOSv               LosCondition = 3 // line of sight blocked by a vehicle
)

func (c LosCondition) String() string {
	switch c {
	case LOS:
		return "los"
	case NLOS:
		return "nlos"
	case NLOSv:
		return "nlosv"
	default:
		return "unknown"
	}
}

func ParseLosCondition(s string) (LosCondition, error) {
	switch strings.ToLower(s) {
	case "los":
		return LOS, nil
	case "nlos":
		return NLOS, nil
	case "nlosv":
		return NLOSv, nil
	default:
		return LosConditionUnknown, errors.Wrapf(ErrUnknownLosCondition, "%q", s)
	}
}

// Scenario selects the 3GPP TR 38.901 Table 7.4.1-1 pathloss formula family.
type Scenario int

const (
	ScenarioRMa Scenario = iota
	ScenarioUMa
	ScenarioUMiStreetCanyon
	ScenarioInHOfficeMixed
	ScenarioInHOfficeOpen
	ScenarioInHShoppingMall
)

var scenarioNames = [...]string{
	"RMa",
	"UMa",
	"UMi-StreetCanyon",
	"InH-OfficeMixed",
	"InH-OfficeOpen",
	"InH-ShoppingMall",
}

func (s Scenario) String() string {
	if !s.IsValid() {
		return "invalid"
	}
	return scenarioNames[s]
}

func (s Scenario) IsValid() bool {
	return s >= 0 && int(s) < len(scenarioNames)
}

// IsIndoor returns true for the InH scenarios, which have no breakpoint and no height limits.
func (s Scenario) IsIndoor() bool {
	return s == ScenarioInHOfficeMixed || s == ScenarioInHOfficeOpen || s == ScenarioInHShoppingMall
}

// ParseScenario parses a scenario name. Matching ignores case.
func ParseScenario(name string) (Scenario, error) {
	for i, n := range scenarioNames {
		if strings.EqualFold(n, name) {
			return Scenario(i), nil
		}
	}
	return -1, errors.Wrapf(ErrUnknownScenario, "%q (available: %s)", name, strings.Join(scenarioNames[:], ", "))
}

// RoleAssignment tells which link endpoint is the infrastructure (base station) side.
type RoleAssignment int

const (
	RoleInfraA RoleAssignment = 0 // endpoint A is the base station, B the user terminal (downlink)
	RoleInfraB RoleAssignment = 1 // endpoint B is the base station, A the user terminal (uplink)
)

func (r RoleAssignment) String() string {
	switch r {
	case RoleInfraA:
		return "infra-a"
	case RoleInfraB:
		return "infra-b"
	default:
		return "invalid"
	}
}

func (r RoleAssignment) IsValid() bool {
	return r == RoleInfraA || r == RoleInfraB
}

func ParseRoleAssignment(s string) (RoleAssignment, error) {
	switch strings.ToLower(s) {
	case "", "infra-a", "a", "downlink":
		return RoleInfraA, nil
	case "infra-b", "b", "uplink":
		return RoleInfraB, nil
	default:
		return RoleInfraA, errors.Wrapf(ErrUnknownRole, "%q", s)
	}
}
