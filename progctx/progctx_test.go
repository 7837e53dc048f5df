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

package progctx

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	ctx := New(context.Background())
	_ = context.Context(ctx)
	ctx2 := New(nil) // nolint
	_ = context.Context(ctx2)
	assert.Nil(t, ctx2.Err())
}

func TestCancelRunsDeferredOnce(t *testing.T) {
	ctx := New(context.Background())
	var calls []int
	ctx.Defer(func() { calls = append(calls, 1) })
	ctx.Defer(func() { calls = append(calls, 2) })

	ctx.Cancel(errors.Errorf("test error"))
	ctx.Cancel(errors.Errorf("again"))
	<-ctx.Done()

	assert.Equal(t, []int{1, 2}, calls)
	assert.Equal(t, context.Canceled, ctx.Err())
	assert.Panics(t, func() { ctx.Defer(func() {}) })
}

func TestCancelNilReason(t *testing.T) {
	ctx := New(context.Background())
	ctx.Cancel(nil)
	<-ctx.Done()
	assert.Equal(t, context.Canceled, ctx.Err())
}

func TestWait(t *testing.T) {
	ctx := New(context.Background())
	ctx.WaitAdd("test1", 1)
	go func() {
		ctx.WaitDone("test1")
	}()

	done := make(chan struct{}, 3)
	for i := 0; i < 3; i++ {
		ctx.Go("test2", func() { done <- struct{}{} })
	}

	ctx.Wait()
	assert.Equal(t, 0, ctx.WaitCount())
	assert.Equal(t, 3, len(done))
}

func TestWaitDoneNotRunning(t *testing.T) {
	ctx := New(context.Background())
	assert.Panics(t, func() { ctx.WaitDone("nothing") })
}
