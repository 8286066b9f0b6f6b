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
	"strconv"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/hpack"
)

const maxHeaderChunk = 16 * 1024

func (s *session) encodeHeaderBlock(fields []hpack.HeaderField) []byte {
	s.hbuf.Reset()

	for _, f := range fields {
		_ = s.henc.WriteField(f)
	}

	block := make([]byte, s.hbuf.Len())
	copy(block, s.hbuf.Bytes())
	return block
}

func (s *session) writeHeaderBlock(streamID uint32, block []byte, endStream bool) error {
	if len(block) <= maxHeaderChunk {
		return s.fr.WriteHeaders(http2.HeadersFrameParam{
			StreamID:      streamID,
			BlockFragment: block,
			EndHeaders:    true,
			EndStream:     endStream,
		})
	}

	if err := s.fr.WriteHeaders(http2.HeadersFrameParam{
		StreamID:      streamID,
		BlockFragment: block[:maxHeaderChunk],
		EndHeaders:    false,
		EndStream:     endStream,
	}); err != nil {
		return err
	}

	block = block[maxHeaderChunk:]

	for len(block) > maxHeaderChunk {
		if err := s.fr.WriteContinuation(streamID, false, block[:maxHeaderChunk]); err != nil {
			return err
		}
		block = block[maxHeaderChunk:]
	}

	return s.fr.WriteContinuation(streamID, true, block)
}

func (s *session) SubmitResponse(streamID uint32, status int, headers []Header, body Generator) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fields := make([]hpack.HeaderField, 0, len(headers)+1)
	fields = append(fields, hpack.HeaderField{Name: ":status", Value: strconv.Itoa(status)})

	for _, h := range headers {
		fields = append(fields, hpack.HeaderField{Name: h.Name, Value: h.Value, Sensitive: h.Sensitive})
	}

	block := s.encodeHeaderBlock(fields)
	endStream := body == nil

	if err := s.writeHeaderBlock(streamID, block, endStream); err != nil {
		if s.cb.OnError != nil {
			s.cb.OnError(err)
		}
		return ErrorFrameWrite.Error(err)
	}

	if endStream {
		delete(s.streams, streamID)
		if s.cb.OnStreamClose != nil {
			s.cb.OnStreamClose(streamID, 0)
		}
		return nil
	}

	if st, ok := s.streams[streamID]; ok {
		st.gen = body
	} else {
		s.streams[streamID] = &streamState{id: streamID, gen: body, pseudo: make(map[string]string)}
	}

	return nil
}

func (s *session) SubmitRequest(method, path, authority string, headers []Header, body Generator) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextClientID
	s.nextClientID += 2

	fields := []hpack.HeaderField{
		{Name: ":method", Value: method},
		{Name: ":path", Value: path},
		{Name: ":authority", Value: authority},
		{Name: ":scheme", Value: "https"},
	}

	for _, h := range headers {
		fields = append(fields, hpack.HeaderField{Name: h.Name, Value: h.Value, Sensitive: h.Sensitive})
	}

	block := s.encodeHeaderBlock(fields)
	endStream := body == nil

	if err := s.writeHeaderBlock(id, block, endStream); err != nil {
		return 0, ErrorFrameWrite.Error(err)
	}

	s.streams[id] = &streamState{id: id, gen: body, pseudo: make(map[string]string)}
	return id, nil
}
