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

package engine

import (
	"github.com/h2kit/server/codec"
	"github.com/h2kit/server/stream"
)

// These run synchronously from within codec.Session.Feed, on the strand,
// satisfying the "no two callbacks for one connection run concurrently"
// invariant for free: Feed itself is only ever called from onReadChunk.

func (c *Connection) onBeginHeaders(streamID uint32) {
	c.streams[streamID] = stream.New(streamID, c.cfg.PayloadCap, c.cfg.InitialWindow)
}

func (c *Connection) onHeader(streamID uint32, h codec.Header) {
	if s, ok := c.streams[streamID]; ok {
		s.OnPseudoOrHeader(h)
	}
}

func (c *Connection) onRequestEndHeaders(streamID uint32) {
	if s, ok := c.streams[streamID]; ok {
		s.ReqState = stream.HeadersRecv
	}
}

func (c *Connection) onData(streamID uint32, p []byte) {
	s, ok := c.streams[streamID]
	if !ok {
		return
	}

	s.ReqState = stream.BodyRecv
	s.AppendBody(p)

	c.replenishRecvWindow(s, int32(len(p)))
}

// replenishRecvWindow accounts n bytes of DATA just consumed against both
// the stream's and the connection's receive window, then immediately grants
// it back with a WINDOW_UPDATE: bodies are buffered whole in memory rather
// than paced by the handler, so there's no real backpressure to reflect.
func (c *Connection) replenishRecvWindow(s *stream.Stream, n int32) {
	if n <= 0 {
		return
	}

	s.RecvFlow.Take(n)
	s.RecvFlow.Add(n)
	_ = c.sess.WindowUpdate(s.StreamID(), uint32(n))

	c.connRecvWindow.Take(n)
	c.connRecvWindow.Add(n)
	_ = c.sess.WindowUpdate(0, uint32(n))
}

// onWindowUpdate applies a received WINDOW_UPDATE's increment to the
// connection-level window (streamID 0) or a specific stream's send window.
func (c *Connection) onWindowUpdate(streamID uint32, increment uint32) {
	if streamID == 0 {
		c.connSendWindow.Add(int32(increment))
	} else if s, ok := c.streams[streamID]; ok {
		s.SendFlow.Add(int32(increment))
	}
}

// availableSendWindow returns the number of DATA bytes streamID may send
// right now, the lesser of its own window and the connection's.
func (c *Connection) availableSendWindow(streamID uint32) int32 {
	avail := c.connSendWindow.Available()

	s, ok := c.streams[streamID]
	if !ok {
		return 0
	}

	if w := s.SendFlow.Available(); w < avail {
		avail = w
	}

	return avail
}

// consumeSendWindow debits n DATA bytes just written for streamID from both
// the stream's and the connection's send window.
func (c *Connection) consumeSendWindow(streamID uint32, n int32) {
	c.connSendWindow.Take(n)

	if s, ok := c.streams[streamID]; ok {
		s.SendFlow.Take(n)
	}
}

func (c *Connection) onRequestEndStream(streamID uint32) {
	s, ok := c.streams[streamID]
	if !ok {
		return
	}

	s.ReqState = stream.HandlerInvoked

	if c.dispatcher != nil {
		c.dispatcher.Dispatch(c, s)
	}
}

func (c *Connection) onStreamClose(streamID uint32, errCode uint32) {
	if s, ok := c.streams[streamID]; ok {
		s.CloseCause = errCode
		s.RespState = stream.Closed
	}

	delete(c.streams, streamID)
}

func (c *Connection) onGoAway(errCode uint32) {
	if c.log != nil {
		c.log.Errorf("connection %s: received goaway %d", c.conn.RemoteAddr(), errCode)
	}
}

func (c *Connection) onError(err error) {
	if c.log != nil {
		c.log.Errorf("connection %s: codec error: %v", c.conn.RemoteAddr(), err)
	}
}

// Respond submits a response for s via the codec session and transitions
// its response-side state.
func (c *Connection) Respond(s *stream.Stream, status int, headers []codec.Header, body codec.Generator) {
	s.RespState = stream.ResponseHeaders
	s.RespStatus = status

	_ = c.sess.SubmitResponse(s.StreamID(), status, headers, body)

	if body != nil {
		s.RespState = stream.ResponseBody
	}

	c.doWrite()
}

// Resume re-arms a deferred response Generator for s and kicks the writer.
func (c *Connection) Resume(s *stream.Stream) {
	c.sess.Resume(s.StreamID())
	c.doWrite()
}

// ResetStream sends RST_STREAM and drops local bookkeeping for s.
func (c *Connection) ResetStream(s *stream.Stream, errCode uint32) {
	c.sess.ResetStream(s.StreamID(), errCode)
	delete(c.streams, s.StreamID())
	c.doWrite()
}
