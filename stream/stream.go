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

package stream

import (
	"strconv"
	"time"

	"github.com/h2kit/server/codec"
	liberr "github.com/h2kit/server/errors"
)

// State is the stream's position in its request/response lifecycle.
type State uint8

const (
	Idle State = iota
	HeadersRecv
	BodyRecv
	HandlerInvoked
	ResponseHeaders
	ResponseBody
	Closed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case HeadersRecv:
		return "headers-recv"
	case BodyRecv:
		return "body-recv"
	case HandlerInvoked:
		return "handler-invoked"
	case ResponseHeaders:
		return "response-headers"
	case ResponseBody:
		return "response-body"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Stream holds one HTTP/2 request/response exchange's accumulated state.
type Stream struct {
	ReqState State
	id       uint32

	Method    string
	Path      string
	Query     string
	Authority string
	Scheme    string

	Headers *HeaderMap
	Started time.Time

	body         []byte
	contentLen   int64
	haveLen      bool
	oversized    bool
	payloadCap   int64

	RespStatus  int
	RespHeaders *HeaderMap
	RespState   State

	CloseCause uint32

	RecvFlow *Flow
	SendFlow *Flow
}

// New returns a Stream with the given id and payload cap (0 == unlimited).
func New(id uint32, payloadCap int64, initialWindow int32) *Stream {
	return &Stream{
		id:          id,
		Headers:     NewHeaderMap(),
		RespHeaders: NewHeaderMap(),
		Started:     time.Now(),
		payloadCap:  payloadCap,
		RespState:   Idle,
		RecvFlow:    NewFlow(initialWindow),
		SendFlow:    NewFlow(initialWindow),
	}
}

// StreamID returns the stream's 31-bit identifier.
func (s *Stream) StreamID() uint32 {
	return s.id
}

// OnPseudoOrHeader records a decoded header field, special-casing the four
// pseudo-headers HTTP/2 requires.
func (s *Stream) OnPseudoOrHeader(h codec.Header) {
	switch h.Name {
	case ":method":
		s.Method = h.Value
	case ":path":
		s.Path, s.Query = splitPathQuery(h.Value)
	case ":authority":
		s.Authority = h.Value
	case ":scheme":
		s.Scheme = h.Value
	default:
		s.Headers.Add(h.Name, h.Value, h.Sensitive)

		if h.Name == "content-length" {
			if n, err := strconv.ParseInt(h.Value, 10, 64); err == nil {
				s.contentLen = n
				s.haveLen = true
			}
		}
	}
}

func splitPathQuery(p string) (path, query string) {
	for i := 0; i < len(p); i++ {
		if p[i] == '?' {
			return p[:i], p[i+1:]
		}
	}
	return p, ""
}

// AppendBody accumulates a DATA chunk, enforcing the payload cap. Once the
// cap is crossed, further bytes are dropped and Oversized reports true.
func (s *Stream) AppendBody(p []byte) {
	if s.oversized {
		return
	}

	if s.payloadCap > 0 && int64(len(s.body)+len(p)) > s.payloadCap {
		s.oversized = true
		return
	}

	s.body = append(s.body, p...)
}

// Body returns the accumulated request body.
func (s *Stream) Body() []byte {
	return s.body
}

// Oversized reports whether accumulated body bytes crossed the payload cap.
func (s *Stream) Oversized() bool {
	return s.oversized
}

// ValidateContentLength returns ErrorContentLengthMismatch if a
// content-length header was present and disagrees with the received body.
func (s *Stream) ValidateContentLength() liberr.Error {
	if !s.haveLen {
		return nil
	}

	if s.contentLen != int64(len(s.body)) {
		return ErrorContentLengthMismatch.Error(nil)
	}

	return nil
}
