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

// Package executor owns a fixed pool of single-threaded event loops and
// hands out per-connection strands: serial task queues multiplexed onto one
// loop's goroutine, guaranteeing that no two tasks belonging to the same
// connection ever run concurrently while still letting many connections
// share a small number of OS threads.
package executor

import (
	"context"

	liberr "github.com/h2kit/server/errors"
)

// Loop is one worker goroutine draining posted tasks in FIFO order.
type Loop interface {
	// Post enqueues fn to run on this loop. Never blocks the caller longer
	// than it takes to push onto the internal channel.
	Post(fn func())

	// NewStrand returns a fresh per-connection serial queue bound to this
	// loop.
	NewStrand() Strand

	// Index is this loop's position within its pool, stable for its
	// lifetime. Useful for metrics labels.
	Index() int
}

// Strand is a logical serial executor for one connection's work, bound to
// exactly one Loop. Tasks posted to a Strand never overlap with each other,
// regardless of how many other strands share the same Loop.
type Strand interface {
	// Post enqueues fn to run after every task already queued on this
	// strand, interleaved fairly with other strands on the same loop.
	Post(fn func())
}

// Pool is a fixed-size set of Loops.
type Pool interface {
	// Run starts every loop's goroutine. If async is false, Run blocks
	// until the context given to New is done and every loop has drained.
	Run(async bool)

	// Stop signals every loop to stop accepting new strand work once
	// already-queued tasks finish; idempotent.
	Stop()

	// Join blocks until every loop goroutine has exited.
	Join()

	// Executor returns the pool's default loop: the one administrative
	// work (signal handling, the acceptor's own bookkeeping) is pinned to.
	Executor() Loop

	// Next returns a loop chosen by round-robin, one call advancing the
	// cursor by one; used to assign a newly accepted connection to a loop.
	Next() Loop

	// Executors returns every loop in the pool, in index order.
	Executors() []Loop
}

// New creates a Pool of size loops bound to ctx. It returns
// ErrorPoolSize if size is zero.
func New(ctx context.Context, size int) (Pool, liberr.Error) {
	if size <= 0 {
		return nil, ErrorPoolSize.Error(nil)
	}

	if ctx == nil {
		ctx = context.Background()
	}

	c, cancel := context.WithCancel(ctx)

	p := &pool{
		ctx:    c,
		cancel: cancel,
		loops:  make([]*loop, size),
	}

	for i := 0; i < size; i++ {
		p.loops[i] = newLoop(c, i)
	}

	return p, nil
}
