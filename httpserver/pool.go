/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
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

package httpserver

import (
	"context"
	"sync"
	"time"
)

// FuncWalk is called once per pool entry during Walk. Returning false stops
// the iteration early.
type FuncWalk func(bindAddress string, srv Server) bool

// Pool is a named collection of Server instances, keyed by bind address, that
// start/stop/restart together. Grounded on the teacher's httpserver/pool
// subpackage, trimmed of the Handler/Monitor/Filter surface that depended on
// the now-removed named-handler registry and version-stamped monitor feed —
// Health (see health.go) is the supplemented readiness surface instead.
type Pool interface {
	// Walk visits every server in the pool in no particular order.
	Walk(fct FuncWalk)

	// Load retrieves a server by its bind address, nil if absent.
	Load(bindAddress string) Server

	// Store adds or replaces a server, keyed by its own GetBindable().
	Store(srv Server)

	// Delete removes a server from the pool by its bind address.
	Delete(bindAddress string)

	// Has reports whether bindAddress is present in the pool.
	Has(bindAddress string) bool

	// Len returns the number of servers currently in the pool.
	Len() int

	// Start starts every server in the pool, collecting every failure under
	// one error instead of stopping at the first.
	Start(ctx context.Context) error

	// Stop stops every server in the pool, collecting every failure under
	// one error instead of stopping at the first.
	Stop(ctx context.Context) error

	// Restart restarts every server in the pool.
	Restart(ctx context.Context) error

	// IsRunning reports true if at least one server in the pool is running.
	IsRunning() bool

	// Uptime returns the longest uptime among the pool's servers.
	Uptime() time.Duration

	// Health reports one Health entry per server in the pool.
	Health() []Health
}

type pool struct {
	mu sync.RWMutex
	m  map[string]Server
}

// NewPool builds an empty Pool.
func NewPool() Pool {
	return &pool{m: make(map[string]Server)}
}

func (o *pool) Walk(fct FuncWalk) {
	if fct == nil {
		return
	}

	o.mu.RLock()
	entries := make(map[string]Server, len(o.m))
	for k, v := range o.m {
		entries[k] = v
	}
	o.mu.RUnlock()

	for k, v := range entries {
		if !fct(k, v) {
			return
		}
	}
}

func (o *pool) Load(bindAddress string) Server {
	o.mu.RLock()
	defer o.mu.RUnlock()

	return o.m[bindAddress]
}

func (o *pool) Store(srv Server) {
	if srv == nil {
		return
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	o.m[srv.GetBindable()] = srv
}

func (o *pool) Delete(bindAddress string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	delete(o.m, bindAddress)
}

func (o *pool) Has(bindAddress string) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()

	_, ok := o.m[bindAddress]
	return ok
}

func (o *pool) Len() int {
	o.mu.RLock()
	defer o.mu.RUnlock()

	return len(o.m)
}

func (o *pool) Start(ctx context.Context) error {
	err := ErrorPoolListen.Error(nil)

	o.Walk(func(bindAddress string, srv Server) bool {
		if e := srv.Start(ctx); e != nil {
			err.Add(e)
		}

		return true
	})

	if !err.HasParent() {
		return nil
	}

	return err
}

func (o *pool) Stop(ctx context.Context) error {
	err := ErrorPoolStop.Error(nil)

	o.Walk(func(bindAddress string, srv Server) bool {
		if e := srv.Stop(ctx); e != nil {
			err.Add(e)
		}

		return true
	})

	if !err.HasParent() {
		return nil
	}

	return err
}

func (o *pool) Restart(ctx context.Context) error {
	err := ErrorPoolRestart.Error(nil)

	o.Walk(func(bindAddress string, srv Server) bool {
		if e := srv.Restart(ctx); e != nil {
			err.Add(e)
		}

		return true
	})

	if !err.HasParent() {
		return nil
	}

	return err
}

func (o *pool) IsRunning() bool {
	running := false

	o.Walk(func(bindAddress string, srv Server) bool {
		if srv.IsRunning() {
			running = true
			return false
		}

		return true
	})

	return running
}

func (o *pool) Uptime() time.Duration {
	var longest time.Duration

	o.Walk(func(bindAddress string, srv Server) bool {
		if d := srv.Uptime(); d > longest {
			longest = d
		}

		return true
	})

	return longest
}

func (o *pool) Health() []Health {
	res := make([]Health, 0)

	o.Walk(func(bindAddress string, srv Server) bool {
		res = append(res, srv.Health())
		return true
	})

	return res
}
