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

// Package adapter bridges the Connection Engine's raw stream callbacks to
// the typed router.Handler world: request snapshotting, payload-cap and
// payload-scanner short-circuits, CORS/OPTIONS handling, standard header
// defaulting, optional gzip, and the extraProcess hook.
package adapter

import (
	"time"

	"github.com/h2kit/server/executor"
	"github.com/h2kit/server/router"
)

// ExtraProcess is a hook run after a response is ready but before it's
// written. It runs synchronously on the connection's strand and is handed
// the executor pool, onto which it can post out-of-band work. It must not
// mutate resp in ways that change what's already been sent.
type ExtraProcess func(req *router.Request, resp *router.Response, pool executor.Pool)

// Config mirrors spec.md's Configuration surface relevant to the adapter.
type Config struct {
	Origins             []string
	CORSMethods         []string
	MaxPayloadSize      int64
	PayloadScanner      func(body []byte) bool
	ExtraProcess        ExtraProcess
	ServerName          string
	GzipMinBytes        int
	ReadTimeout         time.Duration
}

// DefaultConfig mirrors spec.md §3's Configuration defaults.
func DefaultConfig() Config {
	return Config{
		CORSMethods:  router.DefaultCORSMethods,
		ServerName:   "h2kit",
		GzipMinBytes: 256,
		ReadTimeout:  30 * time.Second,
	}
}
