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
	"strings"

	"github.com/pkg/errors"

	"github.com/openthread/ot-proploss/prng"
	. "github.com/openthread/ot-proploss/types"
)

// Pipeline is an ordered chain of propagation models. Each stage receives the output power of the previous
// stage as its transmit power, so losses compound in dB.
// A Pipeline is not safe for concurrent use; independent pipelines may run on separate goroutines.
type Pipeline struct {
	stages    []Model
	collector *Collector
}

// NewPipeline creates a pipeline with the given stages, in order.
func NewPipeline(models ...Model) (*Pipeline, error) {
	p := &Pipeline{}
	for _, m := range models {
		if err := p.Append(m); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Append adds a model as the last stage. A model instance can occur at most once in a pipeline.
func (p *Pipeline) Append(m Model) error {
	if m == nil {
		return errors.Wrapf(ErrUnknownModel, "nil model")
	}
	for i, st := range p.stages {
		if st == m {
			return errors.Wrapf(ErrDuplicateStage, "%s at stage %d", m.Kind(), i)
		}
	}
	m.base().collector = p.collector
	p.stages = append(p.stages, m)
	return nil
}

// Len returns the number of stages.
func (p *Pipeline) Len() int {
	return len(p.stages)
}

// Stages returns a copy of the stage list.
func (p *Pipeline) Stages() []Model {
	return append([]Model(nil), p.stages...)
}

// SetCollector attaches a metrics collector to the pipeline and all its stages. nil detaches it.
func (p *Pipeline) SetCollector(c *Collector) {
	p.collector = c
	for _, st := range p.stages {
		st.base().collector = c
	}
}

// CalcRxPower computes the received power (dBm) for a transmission of txPower (dBm) over the link.
// An empty pipeline returns txPower unchanged.
func (p *Pipeline) CalcRxPower(txPower DbValue, link *Link) (DbValue, error) {
	power := txPower
	for i, st := range p.stages {
		rx, err := apply(st, power, link)
		if err != nil {
			p.collector.onError(st.Kind())
			return power, errors.Wrapf(err, "stage %d (%s)", i, st.Kind())
		}
		p.collector.onQuery(st.Kind())
		power = rx
	}
	return power, nil
}

// CalcLoss computes the total loss (dB) of the pipeline, i.e. txPower minus the received power.
func (p *Pipeline) CalcLoss(txPower DbValue, link *Link) (DbValue, error) {
	rx, err := p.CalcRxPower(txPower, link)
	if err != nil {
		return 0, err
	}
	return txPower - rx, nil
}

// AssignStreams assigns consecutive random substreams, starting at stream, to the stochastic stages in order.
// It returns the number of substreams consumed, so that further components can continue at stream+n.
// Assignment depends only on root, stream and the pipeline layout.
func (p *Pipeline) AssignStreams(root prng.RandomSeed, stream int64) int64 {
	var n int64
	for _, st := range p.stages {
		n += assignStreams(st, root, stream+n)
	}
	return n
}

func (p *Pipeline) String() string {
	names := make([]string, len(p.stages))
	for i, st := range p.stages {
		names[i] = string(st.Kind())
	}
	return strings.Join(names, " -> ")
}
