/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package executor

import (
	"context"
	"sync"
)

type loop struct {
	ctx context.Context
	idx int
	tsk chan func()
	don chan struct{}
	one sync.Once
}

func newLoop(ctx context.Context, idx int) *loop {
	return &loop{
		ctx: ctx,
		idx: idx,
		tsk: make(chan func(), 256),
		don: make(chan struct{}),
	}
}

func (o *loop) Index() int {
	return o.idx
}

func (o *loop) Post(fn func()) {
	if fn == nil {
		return
	}

	select {
	case o.tsk <- fn:
	case <-o.ctx.Done():
	}
}

func (o *loop) NewStrand() Strand {
	return newStrand(o)
}

func (o *loop) run() {
	defer close(o.don)

	for {
		select {
		case fn := <-o.tsk:
			fn()
		case <-o.ctx.Done():
			o.drain()
			return
		}
	}
}

// drain executes whatever is already queued without blocking, then returns;
// called once on shutdown so in-flight strand work completes instead of
// being silently dropped.
func (o *loop) drain() {
	for {
		select {
		case fn := <-o.tsk:
			fn()
		default:
			return
		}
	}
}
