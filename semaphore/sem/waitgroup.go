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
	"sync"
)

type waitgroup struct {
	context.Context
	wg *sync.WaitGroup
}

func newWaitGroup(ctx context.Context) Sem {
	return &waitgroup{
		Context: ctx,
		wg:      &sync.WaitGroup{},
	}
}

func (o *waitgroup) Weighted() int64 {
	return -1
}

func (o *waitgroup) NewWorker() error {
	if err := o.Context.Err(); err != nil {
		return err
	}

	o.wg.Add(1)
	return nil
}

func (o *waitgroup) NewWorkerTry() bool {
	return o.NewWorker() == nil
}

func (o *waitgroup) DeferWorker() {
	o.wg.Done()
}

func (o *waitgroup) DeferMain() {
	_ = o.WaitAll()
}

func (o *waitgroup) WaitAll() error {
	done := make(chan struct{})

	go func() {
		o.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-o.Context.Done():
		return o.Context.Err()
	}
}

func (o *waitgroup) New() Sem {
	return newWaitGroup(o.Context)
}
