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

import "sync"

// strand serializes its own queue onto the parent loop by re-posting a
// single drain step at a time: the loop only ever runs one strand task
// before moving to the next posted task, so no strand can starve its
// loop-mates, and two tasks from the same strand never execute concurrently.
type strand struct {
	l *loop

	mu      sync.Mutex
	q       []func()
	running bool
}

func newStrand(l *loop) Strand {
	return &strand{l: l}
}

func (o *strand) Post(fn func()) {
	if fn == nil {
		return
	}

	o.mu.Lock()
	o.q = append(o.q, fn)
	start := !o.running
	o.running = true
	o.mu.Unlock()

	if start {
		o.l.Post(o.step)
	}
}

func (o *strand) step() {
	o.mu.Lock()
	if len(o.q) == 0 {
		o.running = false
		o.mu.Unlock()
		return
	}

	fn := o.q[0]
	o.q = o.q[1:]
	o.mu.Unlock()

	fn()

	o.mu.Lock()
	more := len(o.q) > 0
	if !more {
		o.running = false
	}
	o.mu.Unlock()

	if more {
		o.l.Post(o.step)
	}
}
