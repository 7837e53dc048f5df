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

package prng

import (
	"encoding/binary"
	"math/rand"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	exprand "golang.org/x/exp/rand"
)

type RandomSeed int64

var (
	mutex                          sync.Mutex
	newRadioModelRandSeedGenerator *rand.Rand
)

func init() {
	Init(0)
}

// Init initializes the prng package, either with a fixed PRNG seed (rootSeed != 0) or a 'random' time-based PRNG
// seed (if rootSeed == 0). The generators seeded here only serve models that never got an explicit stream
// assignment; assigned streams are derived with DeriveSubstream and do not depend on this state.
func Init(rootSeed int64) {
	if rootSeed == 0 {
		rootSeed = time.Now().UnixNano()
	}
	root := rand.New(rand.NewSource(rootSeed))

	mutex.Lock()
	defer mutex.Unlock()
	newRadioModelRandSeedGenerator = rand.New(rand.NewSource(rootSeed + root.Int63n(1e10)))
}

// NewRadioModelRandomSeed generates unique random-seeds for newly created radio models.
func NewRadioModelRandomSeed() RandomSeed {
	mutex.Lock()
	defer mutex.Unlock()
	return RandomSeed(newRadioModelRandSeedGenerator.Int63())
}

// DeriveSubstream derives the seed of substream k of a named stream family under the given root seed.
// The result depends only on (root, name, k), so the same assignment reproduces the same draws
// regardless of how many other models or pipelines were created before.
func DeriveSubstream(root RandomSeed, name string, k int64) uint64 {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[0:8], uint64(root))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(k))

	d := xxhash.New()
	_, _ = d.Write(buf[:])
	_, _ = d.WriteString(name)
	return mix64(d.Sum64())
}

// mix64 is the splitmix64 finalizer; it spreads nearby hash values over the whole seed space.
func mix64(z uint64) uint64 {
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// NewSource returns a PCG source seeded with the given substream seed, usable by gonum distributions.
func NewSource(seed uint64) exprand.Source {
	src := &exprand.PCGSource{}
	src.Seed(seed)
	return src
}

// NewAutoSource returns a source for a model that was never assigned a stream.
func NewAutoSource() exprand.Source {
	return NewSource(uint64(NewRadioModelRandomSeed()))
}
