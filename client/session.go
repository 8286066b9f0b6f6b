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

package client

import (
	"context"
	"crypto/tls"
	"net"
	"sync"
	"time"

	"github.com/hashicorp/go-uuid"

	libtls "github.com/h2kit/server/certificates"
	"github.com/h2kit/server/codec"
	liberr "github.com/h2kit/server/errors"
	liblog "github.com/h2kit/server/logger"
)

// clientLogger adapts a logger.FuncLog to the narrow Debugf/Errorf surface
// this package needs, the same adaptation httpserver.engineLogger performs
// for the engine package.
type clientLogger struct {
	fn liblog.FuncLog
}

func (l clientLogger) Debugf(format string, args ...interface{}) {
	if l.fn == nil {
		return
	}
	if log := l.fn(); log != nil {
		log.Debug(format, nil, args...)
	}
}

func (l clientLogger) Errorf(format string, args ...interface{}) {
	if l.fn == nil {
		return
	}
	if log := l.fn(); log != nil {
		log.Error(format, nil, args...)
	}
}

// Config configures Dial.
type Config struct {
	// Network is passed to net.Dialer.DialContext, "tcp" unless set.
	Network string

	// TLS, when non-nil and carrying certificate material, upgrades the
	// dial to TLS with ALPN negotiation pinned to "h2". A nil TLS dials
	// plaintext HTTP/2 by prior knowledge, the server side's other
	// supported mode.
	TLS libtls.TLSConfig

	// ServerName is the TLS server name / SNI hint; ignored for a
	// plaintext dial.
	ServerName string

	// Settings seeds the client's initial SETTINGS frame.
	Settings codec.Settings

	// ReadBufferSize sizes the read loop's socket buffer.
	ReadBufferSize int

	// Log, when set, receives Debugf/Errorf diagnostics. Session-level lines
	// name the dialed address; the debug line Submit writes also carries
	// the request's go-uuid identifier.
	Log liblog.FuncLog

	// ConnHook, when set, wraps the dialed net.Conn before the codec
	// session is built. The metrics package builds one that counts bytes
	// and connection lifetime, the same extension point acceptor.Config
	// offers server side.
	ConnHook func(net.Conn) net.Conn
}

// DefaultConfig dials "tcp" with codec.DefaultSettings() and a 16 KiB read
// buffer.
func DefaultConfig() Config {
	return Config{
		Network:        "tcp",
		Settings:       codec.DefaultSettings(),
		ReadBufferSize: 16 * 1024,
	}
}

type pendingStream struct {
	req  *Request
	resp *Response
}

type session struct {
	mu sync.Mutex

	conn     net.Conn
	sess     codec.Session
	cfg      Config
	log      clientLogger
	authority string

	writeBuf []byte
	writing  bool
	closed   bool

	pending map[uint32]*pendingStream

	readDeadline time.Duration
}

// Dial opens a TCP (optionally TLS) connection to addr and returns a
// client Session driving a codec.Session in codec.RoleClient.
func Dial(ctx context.Context, addr string, cfg Config) (Session, error) {
	network := cfg.Network
	if network == "" {
		network = "tcp"
	}

	if cfg.Settings == (codec.Settings{}) {
		cfg.Settings = codec.DefaultSettings()
	}
	if cfg.ReadBufferSize == 0 {
		cfg.ReadBufferSize = 16 * 1024
	}

	dialer := net.Dialer{}

	conn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, ErrorDial.Error(err)
	}

	if cfg.TLS != nil && cfg.TLS.LenCertificatePair() > 0 {
		tlsCfg := cfg.TLS.TLS(cfg.ServerName)
		if tlsCfg != nil {
			tlsCfg.NextProtos = []string{"h2"}

			tconn := tls.Client(conn, tlsCfg)
			if err := tconn.HandshakeContext(ctx); err != nil {
				_ = conn.Close()
				return nil, ErrorDial.Error(err)
			}

			conn = tconn
		}
	}

	if cfg.ConnHook != nil {
		conn = cfg.ConnHook(conn)
	}

	s := &session{
		conn:      conn,
		cfg:       cfg,
		log:       clientLogger{fn: cfg.Log},
		authority: addr,
		writeBuf:  make([]byte, cfg.Settings.MaxFrameSize+9),
		pending:   make(map[uint32]*pendingStream),
	}

	s.sess = codec.New(codec.RoleClient, cfg.Settings, codec.Callbacks{
		OnHeader:           s.onHeader,
		OnRequestEndHeaders: s.onResponseHeadersEnd,
		OnData:             s.onData,
		OnRequestEndStream: s.onStreamEnd,
		OnStreamClose:      s.onStreamClose,
		OnGoAway:           s.onGoAway,
		OnError:            s.onError,
	})

	go s.readLoop()
	s.doWrite()

	return s, nil
}

func (s *session) onHeader(streamID uint32, h codec.Header) {
	s.mu.Lock()
	p, ok := s.pending[streamID]
	s.mu.Unlock()

	if !ok {
		return
	}

	if p.resp == nil {
		p.resp = &Response{}
	}

	if h.Name == ":status" {
		if n, err := parseStatus(h.Value); err == nil {
			p.resp.Status = n
		}
		return
	}

	p.resp.Headers = append(p.resp.Headers, h)
}

func (s *session) onResponseHeadersEnd(streamID uint32) {
	s.mu.Lock()
	p, ok := s.pending[streamID]
	s.mu.Unlock()

	if !ok || p.resp == nil {
		return
	}

	if p.req.OnResponse != nil {
		p.req.OnResponse(p.resp)
	}
}

func (s *session) onData(streamID uint32, chunk []byte) {
	s.mu.Lock()
	p, ok := s.pending[streamID]
	s.mu.Unlock()

	if !ok || p.resp == nil || p.resp.onData == nil {
		return
	}

	p.resp.onData(chunk)
}

func (s *session) onStreamEnd(streamID uint32) {
	s.finish(streamID, nil)
}

func (s *session) onStreamClose(streamID uint32, errCode uint32) {
	var err error
	if errCode != 0 {
		err = ErrorClosed.Error(nil)
	}
	s.finish(streamID, err)
}

func (s *session) finish(streamID uint32, err error) {
	s.mu.Lock()
	p, ok := s.pending[streamID]
	if ok {
		delete(s.pending, streamID)
	}
	s.mu.Unlock()

	if ok && p.req.OnClose != nil {
		p.req.OnClose(err)
	}
}

func (s *session) onGoAway(errCode uint32) {
	s.log.Debugf("client session %s: received GOAWAY code=%d", s.authority, errCode)
}

func (s *session) onError(err error) {
	s.log.Errorf("client session %s: codec error: %v", s.authority, err)
}

// Submit opens a new stream for req and logs the submission at debug level
// under a fresh go-uuid identifier; the identifier appears only in that line.
func (s *session) Submit(req *Request) (uint32, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return 0, ErrorClosed.Error(nil)
	}
	s.mu.Unlock()

	reqID, _ := uuid.GenerateUUID()

	authority := req.Authority
	if authority == "" {
		authority = s.authority
	}

	streamID, err := s.sess.SubmitRequest(req.Method, req.Path, authority, req.Headers, req.Body)
	if err != nil {
		return 0, ErrorSubmit.Error(err)
	}

	s.mu.Lock()
	s.pending[streamID] = &pendingStream{req: req}
	s.mu.Unlock()

	s.log.Debugf("client request %s: submitted stream %d %s %s", reqID, streamID, req.Method, req.Path)

	s.doWrite()

	return streamID, nil
}

// ReadTimeout sets the deadline applied to each socket read; zero disables it.
func (s *session) ReadTimeout(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readDeadline = d
}

// Shutdown sends GOAWAY and waits for every pending stream to finish, bounded
// by ctx, then closes the connection.
func (s *session) Shutdown(ctx context.Context) error {
	s.sess.GoAway(0)
	s.doWrite()

	for {
		s.mu.Lock()
		n := len(s.pending)
		s.mu.Unlock()

		if n == 0 {
			break
		}

		select {
		case <-ctx.Done():
			s.mu.Lock()
			s.closed = true
			s.mu.Unlock()
			_ = s.conn.Close()
			return ErrorShutdownTimeout.Error(ctx.Err())
		case <-time.After(10 * time.Millisecond):
		}
	}

	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	return s.conn.Close()
}

func (s *session) readLoop() {
	buf := make([]byte, s.cfg.ReadBufferSize)

	for {
		s.mu.Lock()
		timeout := s.readDeadline
		s.mu.Unlock()

		if timeout > 0 {
			_ = s.conn.SetReadDeadline(time.Now().Add(timeout))
		}

		n, err := s.conn.Read(buf)

		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])

			if feedErr := s.sess.Feed(chunk); feedErr != nil {
				s.log.Errorf("client session %s: feed error: %v", s.authority, feedErr)
				s.closeLocked(feedErr)
				return
			}

			s.doWrite()
		}

		if err != nil {
			s.closeLocked(err)
			return
		}
	}
}

func (s *session) doWrite() {
	s.mu.Lock()
	if s.writing || s.closed {
		s.mu.Unlock()
		return
	}

	n, shouldStop := s.sess.Drain(s.writeBuf)
	if n == 0 {
		s.mu.Unlock()
		if shouldStop {
			_ = s.conn.Close()
		}
		return
	}

	s.writing = true
	out := make([]byte, n)
	copy(out, s.writeBuf[:n])
	s.mu.Unlock()

	_, err := s.conn.Write(out)

	s.mu.Lock()
	s.writing = false
	s.mu.Unlock()

	if err != nil {
		s.log.Errorf("client session %s: write error: %v", s.authority, err)
		s.closeLocked(err)
		return
	}

	s.doWrite()
}

func (s *session) closeLocked(err error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true

	pending := make([]*pendingStream, 0, len(s.pending))
	for id, p := range s.pending {
		pending = append(pending, p)
		delete(s.pending, id)
	}
	s.mu.Unlock()

	_ = s.conn.Close()

	for _, p := range pending {
		if p.req.OnClose != nil {
			p.req.OnClose(err)
		}
	}
}

func parseStatus(v string) (int, error) {
	n := 0
	for _, c := range v {
		if c < '0' || c > '9' {
			return 0, liberr.UnknownError.Error(nil)
		}
		n = n*10 + int(c-'0')
	}
	return n, nil
}
