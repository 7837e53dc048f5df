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

	"github.com/openthread/ot-proploss/logger"
	"github.com/openthread/ot-proploss/prng"
	. "github.com/openthread/ot-proploss/types"
)

// Kind identifies a propagation model variant. It is also the model name used in configuration files and the CLI.
type Kind string

const (
	KindFriis            Kind = "friis"
	KindTwoRayGround     Kind = "tworay"
	KindLogDistance      Kind = "logdistance"
	KindThreeLogDistance Kind = "threelogdistance"
	KindRange            Kind = "range"
	KindMatrix           Kind = "matrix"
	KindFixedRss         Kind = "fixedrss"
	KindRandom           Kind = "random"
	KindThreeGpp         Kind = "scenario"
	KindV2vUrban         Kind = "v2vurban"
	KindV2vHighway       Kind = "v2vhighway"
	KindNakagami         Kind = "nakagami"
	KindTerahertz        Kind = "terahertz"
)

var (
	ErrUnknownModel      = errors.New("unknown propagation model")
	ErrDuplicateStage    = errors.New("model instance already in pipeline")
	ErrHeightOutOfRange  = errors.New("antenna height outside scenario validity range")
	ErrNoAbsorptionEntry = errors.New("no absorption coefficient within tolerance")
	ErrInvalidParam      = errors.New("invalid model parameter")
)

// Model is one of the propagation model variants of this package. The set is closed: all variants are
// defined here and dispatched by apply.
type Model interface {
	Kind() Kind
	base() *modelBase
}

// modelBase holds the state shared by all model variants.
type modelBase struct {
	collector *Collector
}

func (mb *modelBase) base() *modelBase {
	return mb
}

// warnf logs a non-fatal accuracy warning and counts it.
func (mb *modelBase) warnf(kind Kind, format string, args ...interface{}) {
	logger.Warnf(format, args...)
	mb.collector.onWarning(kind)
}

// apply computes the received power of a single model for the given transmit power.
func apply(m Model, txPower DbValue, link *Link) (DbValue, error) {
	switch m := m.(type) {
	case *FriisModel:
		return m.CalcRxPower(txPower, link), nil
	case *TwoRayGroundModel:
		return m.CalcRxPower(txPower, link), nil
	case *LogDistanceModel:
		return m.CalcRxPower(txPower, link), nil
	case *ThreeLogDistanceModel:
		return m.CalcRxPower(txPower, link), nil
	case *RangeModel:
		return m.CalcRxPower(txPower, link), nil
	case *MatrixModel:
		return m.CalcRxPower(txPower, link), nil
	case *FixedRssModel:
		return m.CalcRxPower(txPower, link), nil
	case *RandomModel:
		return m.CalcRxPower(txPower, link), nil
	case *ThreeGppModel:
		return m.CalcRxPower(txPower, link)
	case *V2vModel:
		return m.CalcRxPower(txPower, link)
	case *NakagamiModel:
		return m.CalcRxPower(txPower, link), nil
	case *TerahertzModel:
		return m.CalcRxPower(txPower, link), nil
	default:
		return txPower, errors.Wrapf(ErrUnknownModel, "%T", m)
	}
}

// assignStreams seeds the random variables of a model from consecutive substreams, starting at stream.
// It returns the number of substreams consumed, which is zero for deterministic models.
func assignStreams(m Model, root prng.RandomSeed, stream int64) int64 {
	switch m := m.(type) {
	case *RandomModel:
		return m.AssignStreams(root, stream)
	case *V2vModel:
		return m.AssignStreams(root, stream)
	case *NakagamiModel:
		return m.AssignStreams(root, stream)
	default:
		return 0
	}
}

// CalcLoss returns the loss (dB) of a single model, i.e. txPower minus the received power.
func CalcLoss(m Model, txPower DbValue, link *Link) (DbValue, error) {
	rx, err := apply(m, txPower, link)
	if err != nil {
		return 0, err
	}
	return txPower - rx, nil
}
