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

// Package codec is the thin contract over golang.org/x/net/http2's Framer
// and hpack sub-package: feed inbound bytes in, drain outbound bytes out,
// get event callbacks invoked synchronously from within Feed. Nothing above
// this package touches a Framer or an hpack.Encoder/Decoder directly.
package codec

import "golang.org/x/net/http2"

// Role selects which connection preface and stream-id parity a Session
// uses.
type Role uint8

const (
	RoleServer Role = iota
	RoleClient
)

// BodyStatus is the sentinel a Generator returns after filling a chunk of
// response (or request, client-side) body bytes.
type BodyStatus uint8

const (
	// More means p was filled (possibly partially) and the generator has
	// more bytes to produce later.
	More BodyStatus = iota
	// EOF means p was filled (possibly partially) and there is nothing
	// left to produce.
	EOF
	// Deferred means no bytes are available yet; the stream is suspended
	// until Session.Resume is called for it.
	Deferred
	// GenError forces a stream reset with an internal error code.
	GenError
)

// Generator is a pull-based body source. Each call should fill up to
// len(p) bytes starting at p[0] and return how many it wrote plus the
// resulting status.
type Generator func(p []byte) (n int, status BodyStatus)

// Header is a single header field with HPACK's "never index" bit.
type Header struct {
	Name      string
	Value     string
	Sensitive bool
}

// Callbacks are invoked synchronously from within Feed, on whatever
// goroutine calls it (the owning connection's strand).
type Callbacks struct {
	OnBeginHeaders     func(streamID uint32)
	OnHeader           func(streamID uint32, h Header)
	OnRequestEndHeaders func(streamID uint32)
	OnData             func(streamID uint32, p []byte)
	OnRequestEndStream func(streamID uint32)
	OnStreamClose      func(streamID uint32, errCode uint32)
	OnGoAway           func(errCode uint32)
	OnError            func(err error)

	// OnWindowUpdate reports a received WINDOW_UPDATE's increment for
	// streamID (0 for the connection-level window).
	OnWindowUpdate func(streamID uint32, increment uint32)

	// AvailableSendWindow caps how many DATA bytes pumpGenerators may pull
	// from streamID's Generator on this Drain call. Returning 0 pauses the
	// stream until a WINDOW_UPDATE (or Resume) reopens it.
	AvailableSendWindow func(streamID uint32) int32

	// ConsumeSendWindow reports n DATA bytes just written for streamID, so
	// the caller can debit its own send-window bookkeeping.
	ConsumeSendWindow func(streamID uint32, n int32)
}

// Settings seeds the initial SETTINGS frame a Session sends on creation.
type Settings struct {
	MaxConcurrentStreams  uint32
	MaxFrameSize          uint32
	InitialWindowSize     uint32
	MaxHeaderListSize     uint32
	HeaderTableSize       uint32
}

// DefaultSettings mirrors the conservative values net/http2 uses when none
// are configured explicitly.
func DefaultSettings() Settings {
	return Settings{
		MaxConcurrentStreams: 250,
		MaxFrameSize:         16384,
		InitialWindowSize:    1 << 20,
		MaxHeaderListSize:    10 << 20,
		HeaderTableSize:      4096,
	}
}

// Session is one HTTP/2 connection's codec state: the HPACK tables, the
// stream id space, and the Framer reading/writing frames against in-memory
// buffers rather than a socket directly, so the owning Connection Engine
// controls exactly when bytes are read from and written to the wire.
type Session interface {
	// Feed parses as many complete frames as p (plus any previously
	// buffered partial frame) contains, invoking Callbacks synchronously
	// for each. Trailing incomplete frame bytes are buffered for the next
	// call.
	Feed(p []byte) error

	// Drain copies up to len(out) pending outbound bytes into out. The
	// second return value is true once the session has no streams left,
	// has sent or received GOAWAY, and has nothing further to write —
	// the connection may close once the drained bytes are flushed.
	Drain(out []byte) (n int, shouldStop bool)

	// SubmitResponse encodes status and headers as a HEADERS frame (with
	// CONTINUATION as needed) and arranges for body to be drained via
	// subsequent Drain calls. SubmitResponse must only be called for a
	// stream whose request headers have already completed.
	SubmitResponse(streamID uint32, status int, headers []Header, body Generator) error

	// SubmitRequest (client role) opens a new stream, sending method/path/
	// authority/scheme pseudo-headers plus headers, and returns the
	// allocated stream id.
	SubmitRequest(method, path, authority string, headers []Header, body Generator) (streamID uint32, err error)

	// Resume re-arms a stream whose Generator most recently returned
	// Deferred.
	Resume(streamID uint32)

	// ResetStream sends RST_STREAM with errCode and drops local state for
	// streamID.
	ResetStream(streamID uint32, errCode uint32)

	// WindowUpdate sends a WINDOW_UPDATE granting increment additional
	// receive-window bytes for streamID (0 for the connection-level
	// window).
	WindowUpdate(streamID uint32, increment uint32) error

	// GoAway sends a GOAWAY frame naming the last stream id that will be
	// processed.
	GoAway(errCode uint32)

	// StreamCount returns the number of streams the session still has
	// open local bookkeeping for.
	StreamCount() int
}

// clampFrameSize keeps a configured frame size inside RFC 7540 §4.2 bounds.
func clampFrameSize(n uint32) uint32 {
	if n < http2.MinMaxFrameSize {
		return http2.MinMaxFrameSize
	}

	if n > http2.MaxAllowedFrameSize {
		return http2.MaxAllowedFrameSize
	}

	return n
}
