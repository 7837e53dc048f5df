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

	exprand "golang.org/x/exp/rand"

	"github.com/openthread/ot-proploss/prng"
	. "github.com/openthread/ot-proploss/types"
)

// dbmToWatt converts a power in dBm to Watt.
func dbmToWatt(dbm DbValue) float64 {
	return math.Pow(10.0, (dbm-30.0)/10.0)
}

// wattToDbm converts a power in Watt to dBm.
func wattToDbm(w float64) DbValue {
	return 10.0*math.Log10(w) + 30.0
}

// linkHeights returns the antenna heights of the infrastructure and mobile side of the link.
func linkHeights(link *Link, roles RoleAssignment) (hBs float64, hUt float64) {
	infra, mobile := link.InfraAndMobile(roles)
	return infra.AntennaHeight(), mobile.AntennaHeight()
}

func isInteger(v float64) bool {
	return v == math.Trunc(v)
}

// substreamSource returns the random source of substream k under the given root seed.
func substreamSource(root prng.RandomSeed, k int64) exprand.Source {
	return prng.NewSource(prng.DeriveSubstream(root, "stream", k))
}
