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

	"gonum.org/v1/gonum/spatial/r3"
)

// Endpoint is one side of a radio link, as supplied by the mobility model for a single query.
type Endpoint struct {
	Id NodeId

	// Position in meters.
	Position r3.Vec

	// Velocity in m/s.
	Velocity r3.Vec

	// HeightOffset is added to Position.Z to get the antenna height.
	HeightOffset float64
}

func NewEndpoint(id NodeId, x, y, z float64) *Endpoint {
	return &Endpoint{
		Id:       id,
		Position: r3.Vec{X: x, Y: y, Z: z},
	}
}

// AntennaHeight returns the effective antenna height in meters.
func (ep *Endpoint) AntennaHeight() float64 {
	return ep.Position.Z + ep.HeightOffset
}

// DistanceTo gets the 3D distance to another Endpoint.
func (ep *Endpoint) DistanceTo(other *Endpoint) float64 {
	return r3.Norm(r3.Sub(other.Position, ep.Position))
}

// Distance2DTo gets the distance to another Endpoint, projected on the horizontal plane.
func (ep *Endpoint) Distance2DTo(other *Endpoint) float64 {
	dx := other.Position.X - ep.Position.X
	dy := other.Position.Y - ep.Position.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Link is an ordered pair of endpoints plus the externally decided channel condition.
type Link struct {
	A, B      *Endpoint
	Condition LosCondition
}

func NewLink(a, b *Endpoint) *Link {
	return &Link{A: a, B: b}
}

// WithCondition returns a copy of the link with the given LOS condition.
func (l *Link) WithCondition(cond LosCondition) *Link {
	return &Link{A: l.A, B: l.B, Condition: cond}
}

// Distance gets the 3D distance between the link endpoints.
func (l *Link) Distance() float64 {
	return l.A.DistanceTo(l.B)
}

// InfraAndMobile resolves the (infrastructure, mobile) endpoint pair per the given role assignment.
func (l *Link) InfraAndMobile(roles RoleAssignment) (infra *Endpoint, mobile *Endpoint) {
	if roles == RoleInfraB {
		return l.B, l.A
	}
	return l.A, l.B
}
