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

package codec

import (
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/hpack"
)

func (s *session) dispatch(f http2.Frame) {
	switch fr := f.(type) {
	case *http2.SettingsFrame:
		s.processSettings(fr)
	case *http2.PingFrame:
		s.processPing(fr)
	case *http2.HeadersFrame:
		s.processHeaders(fr)
	case *http2.ContinuationFrame:
		s.processContinuation(fr)
	case *http2.DataFrame:
		s.processData(fr)
	case *http2.RSTStreamFrame:
		s.processRSTStream(fr)
	case *http2.GoAwayFrame:
		s.processGoAway(fr)
	case *http2.WindowUpdateFrame:
		s.processWindowUpdate(fr)
	}
}

func (s *session) processSettings(fr *http2.SettingsFrame) {
	if fr.IsAck() {
		return
	}

	_ = s.fr.WriteSettingsAck()
}

func (s *session) processPing(fr *http2.PingFrame) {
	if fr.IsAck() {
		return
	}

	_ = s.fr.WritePing(true, fr.Data)
}

func (s *session) beginStream(id uint32) *streamState {
	st, ok := s.streams[id]
	if !ok {
		st = &streamState{id: id, pseudo: make(map[string]string)}
		s.streams[id] = st
		if s.cb.OnBeginHeaders != nil {
			s.cb.OnBeginHeaders(id)
		}
	}
	return st
}

func (s *session) processHeaders(fr *http2.HeadersFrame) {
	st := s.beginStream(fr.StreamID)

	s.curStream = fr.StreamID
	s.headerEndStream = fr.StreamEnded()

	s.hdec.Write(fr.HeaderBlockFragment())

	if fr.HeadersEnded() {
		s.finishHeaders(st)
	}
}

func (s *session) processContinuation(fr *http2.ContinuationFrame) {
	s.hdec.Write(fr.HeaderBlockFragment())

	if fr.HeadersEnded() {
		if st, ok := s.streams[s.curStream]; ok {
			s.finishHeaders(st)
		}
	}
}

func (s *session) finishHeaders(st *streamState) {
	if s.role == RoleServer {
		if _, ok := st.pseudo[":method"]; !ok {
			s.violatePseudoHeader(st.id)
			return
		}

		if _, ok := st.pseudo[":path"]; !ok {
			s.violatePseudoHeader(st.id)
			return
		}
	}

	if s.cb.OnRequestEndHeaders != nil {
		s.cb.OnRequestEndHeaders(st.id)
	}

	if s.headerEndStream {
		st.sawEnd = true
		if s.cb.OnRequestEndStream != nil {
			s.cb.OnRequestEndStream(st.id)
		}
	}
}

func (s *session) violatePseudoHeader(id uint32) {
	_ = s.fr.WriteRSTStream(id, http2.ErrCodeProtocol)
	delete(s.streams, id)

	if s.cb.OnStreamClose != nil {
		s.cb.OnStreamClose(id, uint32(http2.ErrCodeProtocol))
	}
}

func (s *session) processData(fr *http2.DataFrame) {
	if _, ok := s.streams[fr.StreamID]; !ok {
		return
	}

	if data := fr.Data(); len(data) > 0 && s.cb.OnData != nil {
		s.cb.OnData(fr.StreamID, data)
	}

	if fr.StreamEnded() {
		if st, ok := s.streams[fr.StreamID]; ok && !st.sawEnd {
			st.sawEnd = true
			if s.cb.OnRequestEndStream != nil {
				s.cb.OnRequestEndStream(fr.StreamID)
			}
		}
	}
}

func (s *session) processRSTStream(fr *http2.RSTStreamFrame) {
	delete(s.streams, fr.StreamID)

	if s.cb.OnStreamClose != nil {
		s.cb.OnStreamClose(fr.StreamID, uint32(fr.ErrCode))
	}
}

func (s *session) processWindowUpdate(fr *http2.WindowUpdateFrame) {
	if s.cb.OnWindowUpdate != nil {
		s.cb.OnWindowUpdate(fr.StreamID, fr.Increment)
	}
}

func (s *session) processGoAway(fr *http2.GoAwayFrame) {
	s.goAwayRecv = true

	if s.cb.OnGoAway != nil {
		s.cb.OnGoAway(uint32(fr.ErrCode))
	}
}

func (s *session) onHPACKField(f hpack.HeaderField) {
	if len(f.Name) > 0 && f.Name[0] == ':' {
		if st, ok := s.streams[s.curStream]; ok {
			if _, dup := st.pseudo[f.Name]; dup {
				s.violatePseudoHeader(s.curStream)
				return
			}
			st.pseudo[f.Name] = f.Value
		}
	}

	if s.cb.OnHeader != nil {
		s.cb.OnHeader(s.curStream, Header{Name: f.Name, Value: f.Value, Sensitive: f.Sensitive})
	}
}
