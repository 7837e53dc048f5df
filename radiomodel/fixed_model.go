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

// RangeModel passes the transmit power unchanged up to MaxRange, and returns RxPowerUnreachable beyond.
type RangeModel struct {
	modelBase
	params RangeParams
}

func NewRangeModel(params *RangeParams) (*RangeModel, error) {
	if params == nil {
		params = NewRangeParams()
	}
	if params.MaxRange < 0 {
		return nil, errors.Wrapf(ErrInvalidParam, "range: max_range must not be negative, got %g", params.MaxRange)
	}
	return &RangeModel{params: *params}, nil
}

func (m *RangeModel) Kind() Kind {
	return KindRange
}

func (m *RangeModel) Params() RangeParams {
	return m.params
}

func (m *RangeModel) CalcRxPower(txPower DbValue, link *Link) DbValue {
	if link.Distance() <= m.params.MaxRange {
		return txPower
	}
	return RxPowerUnreachable
}

// MatrixModel looks up the loss per ordered node pair. Pairs without an entry get the default loss.
type MatrixModel struct {
	modelBase
	defaultLoss DbValue
	losses      map[[2]NodeId]DbValue
}

func NewMatrixModel(params *MatrixParams) (*MatrixModel, error) {
	if params == nil {
		params = NewMatrixParams()
	}
	m := &MatrixModel{
		defaultLoss: params.DefaultLoss,
		losses:      make(map[[2]NodeId]DbValue, len(params.Entries)),
	}
	for _, e := range params.Entries {
		if e.A == InvalidNodeId || e.B == InvalidNodeId {
			return nil, errors.Wrapf(ErrInvalidParam, "matrix: invalid node pair (%d, %d)", e.A, e.B)
		}
		m.SetLoss(e.A, e.B, e.Loss, e.Symmetric)
	}
	return m, nil
}

func (m *MatrixModel) Kind() Kind {
	return KindMatrix
}

// SetLoss sets the loss from node a to node b. If symmetric, the loss from b to a is set too.
func (m *MatrixModel) SetLoss(a, b NodeId, loss DbValue, symmetric bool) {
	m.losses[[2]NodeId{a, b}] = loss
	if symmetric {
		m.losses[[2]NodeId{b, a}] = loss
	}
}

// GetLoss returns the loss from node a to node b, and whether an explicit entry exists.
func (m *MatrixModel) GetLoss(a, b NodeId) (DbValue, bool) {
	loss, ok := m.losses[[2]NodeId{a, b}]
	if !ok {
		return m.defaultLoss, false
	}
	return loss, true
}

func (m *MatrixModel) SetDefaultLoss(loss DbValue) {
	m.defaultLoss = loss
}

func (m *MatrixModel) DefaultLoss() DbValue {
	return m.defaultLoss
}

// Len returns the number of explicit entries.
func (m *MatrixModel) Len() int {
	return len(m.losses)
}

func (m *MatrixModel) CalcRxPower(txPower DbValue, link *Link) DbValue {
	loss, _ := m.GetLoss(link.A.Id, link.B.Id)
	return txPower - loss
}

// FixedRssModel returns a constant received power, regardless of transmit power and distance.
type FixedRssModel struct {
	modelBase
	params FixedRssParams
}

func NewFixedRssModel(params *FixedRssParams) (*FixedRssModel, error) {
	if params == nil {
		params = NewFixedRssParams()
	}
	return &FixedRssModel{params: *params}, nil
}

func (m *FixedRssModel) Kind() Kind {
	return KindFixedRss
}

func (m *FixedRssModel) Params() FixedRssParams {
	return m.params
}

func (m *FixedRssModel) CalcRxPower(_ DbValue, _ *Link) DbValue {
	return m.params.Rss
}

// RandomModel subtracts a random attenuation from the transmit power, regardless of distance.
type RandomModel struct {
	modelBase
	params RandomParams
	rnd    interface{ Rand() float64 }
}

func NewRandomModel(params *RandomParams) (*RandomModel, error) {
	if params == nil {
		params = NewRandomParams()
	}
	m := &RandomModel{params: *params}
	switch params.Distribution {
	case DistributionConstant:
	case DistributionUniform:
		if params.Max < params.Min {
			return nil, errors.Wrapf(ErrInvalidParam, "random: max %g < min %g", params.Max, params.Min)
		}
	case DistributionNormal:
		if params.StdDev < 0 {
			return nil, errors.Wrapf(ErrInvalidParam, "random: stddev must not be negative, got %g", params.StdDev)
		}
	case DistributionExponential:
		if params.Mean <= 0 {
			return nil, errors.Wrapf(ErrInvalidParam, "random: exponential mean must be positive, got %g", params.Mean)
		}
	default:
		return nil, errors.Wrapf(ErrInvalidParam, "random: unknown distribution %q", params.Distribution)
	}
	m.setSource(prng.NewAutoSource())
	return m, nil
}

func (m *RandomModel) Kind() Kind {
	return KindRandom
}

func (m *RandomModel) Params() RandomParams {
	return m.params
}

func (m *RandomModel) setSource(src exprand.Source) {
	p := &m.params
	switch p.Distribution {
	case DistributionUniform:
		m.rnd = distuv.Uniform{Min: p.Min, Max: p.Max, Src: src}
	case DistributionNormal:
		m.rnd = distuv.Normal{Mu: p.Mean, Sigma: p.StdDev, Src: src}
	case DistributionExponential:
		m.rnd = distuv.Exponential{Rate: 1.0 / p.Mean, Src: src}
	default:
		m.rnd = nil
	}
}

// AssignStreams seeds the attenuation draws from substream 'stream'. It always consumes one substream.
func (m *RandomModel) AssignStreams(root prng.RandomSeed, stream int64) int64 {
	m.setSource(substreamSource(root, stream))
	return 1
}

// Attenuation draws the next attenuation value (dB).
func (m *RandomModel) Attenuation() DbValue {
	if m.rnd == nil {
		return m.params.Constant
	}
	return m.rnd.Rand()
}

func (m *RandomModel) CalcRxPower(txPower DbValue, _ *Link) DbValue {
	return txPower - m.Attenuation()
}
