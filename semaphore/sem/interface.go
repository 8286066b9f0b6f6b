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

// Package sem provides a context-bound concurrency gate used to bound the
// number of simultaneous workers running against a shared resource (a loop
// in an executor pool, a connection accept path, ...).
package sem

import (
	"context"
	"runtime"
	"sync/atomic"
)

// Sem is a context-bound concurrency gate. A negative Weighted means
// unlimited (backed by a sync.WaitGroup); zero or positive means at most
// that many simultaneous workers (backed by golang.org/x/sync/semaphore).
type Sem interface {
	context.Context

	// Weighted returns the configured limit: -1 for unlimited, otherwise
	// the positive number of simultaneous workers allowed.
	Weighted() int64

	// NewWorker blocks until a worker slot is available or the bound
	// context is done.
	NewWorker() error

	// NewWorkerTry acquires a worker slot without blocking. It returns
	// false immediately if no slot is free.
	NewWorkerTry() bool

	// DeferWorker releases one worker slot. Safe to call via defer
	// immediately after NewWorker/NewWorkerTry succeeds.
	DeferWorker()

	// DeferMain waits for every outstanding worker to finish and then
	// releases the semaphore's own resources. Safe to call via defer at
	// the top of the owning goroutine.
	DeferMain()

	// WaitAll blocks until every outstanding worker has called
	// DeferWorker, or the bound context is done.
	WaitAll() error

	// New returns an independent semaphore with the same limit, whose
	// context is derived from this one.
	New() Sem
}

var maxSimultaneous int64 = int64(runtime.GOMAXPROCS(0))

// MaxSimultaneous returns the default worker limit used when New is called
// with a non-positive nbrSimultaneous: runtime.GOMAXPROCS(0), adjustable via
// SetSimultaneous.
func MaxSimultaneous() int {
	return int(atomic.LoadInt64(&maxSimultaneous))
}

// SetSimultaneous clamps n into [1, runtime.GOMAXPROCS(0)] and stores it as
// the new default used by New(ctx, 0). It returns the clamped value.
func SetSimultaneous(n int64) int64 {
	max := int64(runtime.GOMAXPROCS(0))

	if n < 1 || n > max {
		n = max
	}

	atomic.StoreInt64(&maxSimultaneous, n)
	return n
}

// New returns a Sem bound to ctx. nbrSimultaneous == 0 uses MaxSimultaneous;
// nbrSimultaneous < 0 returns an unlimited, WaitGroup-backed semaphore;
// nbrSimultaneous > 0 returns a weighted semaphore capped at that value.
func New(ctx context.Context, nbrSimultaneous int64) Sem {
	if ctx == nil {
		ctx = context.Background()
	}

	if nbrSimultaneous < 0 {
		return newWaitGroup(ctx)
	} else if nbrSimultaneous == 0 {
		nbrSimultaneous = atomic.LoadInt64(&maxSimultaneous)
	}

	return newWeighted(ctx, nbrSimultaneous)
}
