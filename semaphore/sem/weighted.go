/*
 * MIT License
 *
 * Copyright (c) 2019 Nicolas JUHEL
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

package sem

import (
	"context"

	"golang.org/x/sync/semaphore"
)

type weighted struct {
	context.Context
	n int64
	w *semaphore.Weighted
}

func newWeighted(ctx context.Context, n int64) Sem {
	return &weighted{
		Context: ctx,
		n:       n,
		w:       semaphore.NewWeighted(n),
	}
}

func (o *weighted) Weighted() int64 {
	return o.n
}

func (o *weighted) NewWorker() error {
	return o.w.Acquire(o.Context, 1)
}

func (o *weighted) NewWorkerTry() bool {
	return o.w.TryAcquire(1)
}

func (o *weighted) DeferWorker() {
	o.w.Release(1)
}

func (o *weighted) DeferMain() {
	_ = o.WaitAll()
}

func (o *weighted) WaitAll() error {
	if err := o.w.Acquire(o.Context, o.n); err != nil {
		return err
	}

	o.w.Release(o.n)
	return nil
}

func (o *weighted) New() Sem {
	return newWeighted(o.Context, o.n)
}
