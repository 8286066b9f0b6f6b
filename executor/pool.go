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
	"sync/atomic"
)

type pool struct {
	ctx    context.Context
	cancel context.CancelFunc
	loops  []*loop
	next   uint64
	wg     sync.WaitGroup
	one    sync.Once
}

func (o *pool) Run(async bool) {
	for _, l := range o.loops {
		o.wg.Add(1)

		go func(lp *loop) {
			defer o.wg.Done()
			lp.run()
		}(l)
	}

	if !async {
		o.Join()
	}
}

func (o *pool) Stop() {
	o.one.Do(func() {
		if o.cancel != nil {
			o.cancel()
		}
	})
}

func (o *pool) Join() {
	o.wg.Wait()
}

func (o *pool) Executor() Loop {
	return o.loops[0]
}

func (o *pool) Next() Loop {
	n := atomic.AddUint64(&o.next, 1) - 1
	return o.loops[int(n%uint64(len(o.loops)))]
}

func (o *pool) Executors() []Loop {
	r := make([]Loop, len(o.loops))
	for i, l := range o.loops {
		r[i] = l
	}
	return r
}
