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
	"bytes"
	"sync"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/hpack"
)

// sliceReader serves Read calls out of whatever slice is currently pointed
// at by cur; Feed repoints cur at exactly one frame's worth of bytes before
// calling framer.ReadFrame, so the Framer never blocks or sees a short read.
type sliceReader struct {
	cur []byte
}

func (r *sliceReader) Read(p []byte) (int, error) {
	n := copy(p, r.cur)
	r.cur = r.cur[n:]
	return n, nil
}

type streamState struct {
	id       uint32
	pseudo   map[string]string
	sawEnd   bool
	gen      Generator
	deferred bool
}

type session struct {
	mu sync.Mutex

	role   Role
	cb     Callbacks
	prefaceSeen bool
	prefaceSent bool

	in    []byte
	inOff int
	rd    *sliceReader
	fr    *http2.Framer

	out bytes.Buffer

	henc *hpack.Encoder
	hbuf bytes.Buffer
	hdec *hpack.Decoder

	curStream       uint32
	headerEndStream bool
	streams         map[uint32]*streamState

	nextClientID uint32

	goAwaySent bool
	goAwayRecv bool
}

// New constructs a Session in the given role with cb wired as the event
// sink. The connection preface and an initial SETTINGS frame are queued for
// the first Drain call.
func New(role Role, st Settings, cb Callbacks) Session {
	s := &session{
		role:    role,
		cb:      cb,
		rd:      &sliceReader{},
		streams: make(map[uint32]*streamState),
	}

	s.fr = http2.NewFramer(&s.out, s.rd)
	s.fr.SetMaxReadFrameSize(clampFrameSize(st.MaxFrameSize))

	s.henc = hpack.NewEncoder(&s.hbuf)
	s.henc.SetMaxDynamicTableSize(st.HeaderTableSize)

	s.hdec = hpack.NewDecoder(st.HeaderTableSize, s.onHPACKField)

	if role == RoleServer {
		s.prefaceSeen = false
	} else {
		s.prefaceSeen = true
		s.nextClientID = 1
	}

	s.queuePreface(st)

	return s
}

func (s *session) queuePreface(st Settings) {
	if s.role == RoleClient {
		s.out.WriteString(http2.ClientPreface)
	}

	settings := []http2.Setting{
		{ID: http2.SettingMaxConcurrentStreams, Val: st.MaxConcurrentStreams},
		{ID: http2.SettingInitialWindowSize, Val: st.InitialWindowSize},
		{ID: http2.SettingMaxFrameSize, Val: clampFrameSize(st.MaxFrameSize)},
		{ID: http2.SettingMaxHeaderListSize, Val: st.MaxHeaderListSize},
		{ID: http2.SettingHeaderTableSize, Val: st.HeaderTableSize},
	}

	_ = s.fr.WriteSettings(settings...)
}

func (s *session) StreamCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.streams)
}

func (s *session) Feed(p []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.in = append(s.in, p...)

	if s.role == RoleServer && !s.prefaceSeen {
		if len(s.in)-s.inOff < len(http2.ClientPreface) {
			return nil
		}

		if !bytes.Equal(s.in[s.inOff:s.inOff+len(http2.ClientPreface)], []byte(http2.ClientPreface)) {
			err := ErrorFrameRead.Error(nil)
			if s.cb.OnError != nil {
				s.cb.OnError(err)
			}
			return err
		}

		s.inOff += len(http2.ClientPreface)
		s.prefaceSeen = true
	}

	for {
		avail := len(s.in) - s.inOff
		if avail < 9 {
			break
		}

		length := int(s.in[s.inOff])<<16 | int(s.in[s.inOff+1])<<8 | int(s.in[s.inOff+2])
		total := 9 + length

		if avail < total {
			break
		}

		s.rd.cur = s.in[s.inOff : s.inOff+total]
		fr, err := s.fr.ReadFrame()

		if err != nil {
			if s.cb.OnError != nil {
				s.cb.OnError(err)
			}
			return err
		}

		s.dispatch(fr)
		s.inOff += total
	}

	if s.inOff > 0 {
		remaining := len(s.in) - s.inOff
		copy(s.in, s.in[s.inOff:])
		s.in = s.in[:remaining]
		s.inOff = 0
	}

	return nil
}

func (s *session) Drain(out []byte) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pumpGenerators()

	n, _ := s.out.Read(out)

	shouldStop := s.out.Len() == 0 && len(s.streams) == 0 && (s.goAwaySent || s.goAwayRecv)
	return n, shouldStop
}

// pumpGenerators gives every non-deferred stream's response Generator a
// chance to fill a DATA frame, called once per Drain so outbound body bytes
// ride along with whatever else is pending.
func (s *session) pumpGenerators() {
	const chunk = 16 * 1024

	for id, st := range s.streams {
		if st.gen == nil || st.deferred {
			continue
		}

		avail := int32(chunk)
		if s.cb.AvailableSendWindow != nil {
			if w := s.cb.AvailableSendWindow(id); w < avail {
				avail = w
			}
		}

		if avail <= 0 {
			continue
		}

		buf := make([]byte, avail)
		n, status := st.gen(buf)

		if n > 0 && s.cb.ConsumeSendWindow != nil {
			s.cb.ConsumeSendWindow(id, int32(n))
		}

		switch status {
		case More:
			if n > 0 {
				_ = s.fr.WriteData(id, false, buf[:n])
			}
		case EOF:
			_ = s.fr.WriteData(id, true, buf[:n])
			delete(s.streams, id)
			if s.cb.OnStreamClose != nil {
				s.cb.OnStreamClose(id, 0)
			}
		case Deferred:
			st.deferred = true
		case GenError:
			_ = s.fr.WriteRSTStream(id, http2.ErrCodeInternal)
			delete(s.streams, id)
			if s.cb.OnStreamClose != nil {
				s.cb.OnStreamClose(id, uint32(http2.ErrCodeInternal))
			}
		}
	}
}

func (s *session) Resume(streamID uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st, ok := s.streams[streamID]; ok {
		st.deferred = false
	}
}

func (s *session) ResetStream(streamID uint32, errCode uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_ = s.fr.WriteRSTStream(streamID, http2.ErrCode(errCode))
	delete(s.streams, streamID)

	if s.cb.OnStreamClose != nil {
		s.cb.OnStreamClose(streamID, errCode)
	}
}

func (s *session) WindowUpdate(streamID uint32, increment uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.fr.WriteWindowUpdate(streamID, increment)
}

func (s *session) GoAway(errCode uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var last uint32
	for id := range s.streams {
		if id > last {
			last = id
		}
	}

	_ = s.fr.WriteGoAway(last, http2.ErrCode(errCode), nil)
	s.goAwaySent = true
}
