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

// Package client is the thin symmetric counterpart to the server side of
// this module: it drives the same codec package, in codec.RoleClient, over
// one dialed connection instead of a pool of accepted ones.
package client

import (
	"context"
	"time"

	"github.com/h2kit/server/codec"
)

// Header aliases codec.Header so callers never need to import codec
// directly for a simple request.
type Header = codec.Header

// Request describes one HTTP/2 request to submit on a Session. Body may be
// nil for a request with no payload; OnResponse and OnClose are invoked
// from the Session's read loop and must not block.
type Request struct {
	Method    string
	Path      string
	Authority string
	Headers   []Header
	Body      codec.Generator

	// OnResponse is called once when the response headers complete.
	OnResponse func(resp *Response)

	// OnClose is called exactly once per submitted request, with nil if
	// the stream ended normally or the error that ended it otherwise.
	OnClose func(err error)
}

// Response carries the response headers for one request; OnData registers
// the callback invoked for each DATA frame body chunk.
type Response struct {
	Status  int
	Headers []Header

	onData func(p []byte)
}

// OnData registers fn as the body-chunk callback for this response.
// fn is stored without locking and read by the Session's read loop.
// OnResponse runs on that loop, so a callback registered inside OnResponse
// sees every chunk of the body; chunks that arrive while no callback is
// registered are dropped.
func (r *Response) OnData(fn func(p []byte)) {
	r.onData = fn
}

// Session is one dialed HTTP/2 connection, submitting requests and
// dispatching their responses.
type Session interface {
	// Submit opens a new stream for req and returns its allocated stream
	// id. req.OnResponse/req.OnClose fire later, from the read loop.
	Submit(req *Request) (streamID uint32, err error)

	// Shutdown sends GOAWAY, waits (bounded by ctx) for in-flight streams
	// to finish, then closes the connection.
	Shutdown(ctx context.Context) error

	// ReadTimeout sets the deadline applied to each underlying socket
	// read; zero disables it.
	ReadTimeout(d time.Duration)
}
