/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
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

// Package metrics exposes connection, stream, and flow-control counters as
// Prometheus collectors. Registration is always opt-in: nothing in this
// module calls into this package unless the embedder wires a Recorder in,
// matching spec's "observability, not mitigation" framing for metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder is the event sink the rest of this module reports through. Every
// method is safe for concurrent use and must not block.
type Recorder interface {
	// ConnectionOpened records one accepted (or dialed) connection.
	ConnectionOpened()

	// ConnectionClosed records one connection tearing down.
	ConnectionClosed()

	// BytesIn/BytesOut record the bytes the wrapped conn carries; whether
	// that includes TLS records depends on where the ConnHook sits (see
	// countingConn).
	BytesIn(n int)
	BytesOut(n int)

	// RequestServed records one completed request/response cycle, one per
	// HTTP/2 stream in this module's request/response model.
	RequestServed(method string, status int, duration time.Duration)

	// SetFlowControlWindow publishes the configured per-stream and
	// per-connection initial flow control windows as gauges.
	SetFlowControlWindow(streamWindow, connWindow int32)

	// Registerer exposes the underlying prometheus.Registerer so the
	// embedder can merge it into a larger registry.
	Registerer() prometheus.Registerer

	// Gatherer exposes the underlying prometheus.Gatherer for mounting at
	// a "/metrics"-style endpoint, left entirely to the embedder.
	Gatherer() prometheus.Gatherer
}
