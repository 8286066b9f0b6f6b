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

package adapter

import (
	"bytes"
	"compress/gzip"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/net/http2"

	"github.com/h2kit/server/codec"
	"github.com/h2kit/server/engine"
	"github.com/h2kit/server/executor"
	"github.com/h2kit/server/router"
	"github.com/h2kit/server/stream"
)

// Adapter implements engine.Dispatcher, turning a completed stream.Stream
// into a router.RoutingRequest, running it through the Router, and handing
// the resulting router.Response back to the engine as codec headers and a
// body Generator.
type Adapter struct {
	cfg    Config
	router router.Router
	pool   executor.Pool
	log    engine.Logger
}

var _ engine.Dispatcher = (*Adapter)(nil)

// New builds an Adapter dispatching matched requests through rt and running
// extraProcess (if configured) on pool.
func New(cfg Config, rt router.Router, pool executor.Pool, log engine.Logger) *Adapter {
	if cfg.CORSMethods == nil {
		cfg.CORSMethods = router.DefaultCORSMethods
	}

	return &Adapter{cfg: cfg, router: rt, pool: pool, log: log}
}

// Dispatch is called by the Connection Engine once streamID's request
// (headers, and body unless absent) is fully assembled.
func (a *Adapter) Dispatch(c *engine.Connection, s *stream.Stream) {
	if err := s.ValidateContentLength(); err != nil {
		c.ResetStream(s, uint32(http2.ErrCodeProtocol))
		return
	}

	if s.Oversized() {
		a.respondSynthetic(c, s, 413, "Payload Too Large")
		return
	}

	req := a.snapshot(c, s)

	if a.cfg.PayloadScanner != nil && !a.cfg.PayloadScanner(req.Body) {
		a.respondSynthetic(c, s, 400, "Prohibited input")
		return
	}

	if req.Method == "OPTIONS" && !a.router.CanRoute("OPTIONS", req.Path) {
		if a.corsPreflight(c, s, req) {
			return
		}
	}

	m, ok := a.router.Route(req.Method, req.Path)
	if !ok {
		if a.router.CanRoute("GET", req.Path) || len(a.router.AllowedMethods(req.Path)) > 0 {
			a.respondMethodNotAllowed(c, s, req)
			return
		}
		a.respondSynthetic(c, s, 404, "Not Found")
		return
	}

	resp := a.invoke(m, req)

	if a.cfg.ExtraProcess != nil {
		a.runExtraProcess(req, resp)
	}

	a.writeResponse(c, s, req, resp)
}

func (a *Adapter) snapshot(c *engine.Connection, s *stream.Stream) *router.Request {
	headers := make(map[string][]string, s.Headers.Len())
	for _, name := range s.Headers.Names() {
		for _, v := range s.Headers.Values(name) {
			headers[name] = append(headers[name], v.Value)
		}
	}

	body := make([]byte, len(s.Body()))
	copy(body, s.Body())

	return &router.Request{
		Method:    s.Method,
		Path:      s.Path,
		Query:     s.Query,
		Headers:   headers,
		Remote:    c.RemoteAddr().String(),
		Timestamp: s.Started,
		Body:      body,
	}
}

func (a *Adapter) invoke(m router.Match, req *router.Request) (resp *router.Response) {
	defer func() {
		if r := recover(); r != nil {
			resp = router.NewResponse()
			resp.Status = 500
			resp.Body = []byte("Internal Server Error")
		}
	}()

	return m.Handler(&router.RoutingRequest{Request: req, Params: m.Params})
}

func (a *Adapter) runExtraProcess(req *router.Request, resp *router.Response) {
	defer func() {
		if r := recover(); r != nil && a.log != nil {
			a.log.Errorf("adapter: %v", ErrorExtraProcessPanic.Error(nil))
		}
	}()

	a.cfg.ExtraProcess(req, resp, a.pool)
}

func (a *Adapter) writeResponse(c *engine.Connection, s *stream.Stream, req *router.Request, resp *router.Response) {
	if resp == nil {
		resp = router.NewResponse()
	}

	a.applyCORS(resp.Headers, req)
	a.applyStandardHeaders(resp, req)

	headers := headersFromHTTP(resp.Headers, resp.Status)

	if resp.BodyFunc != nil {
		c.Respond(s, resp.Status, headers, codec.Generator(func(p []byte) (int, codec.BodyStatus) {
			n, more := resp.BodyFunc(p)
			if more {
				return n, codec.More
			}
			return n, codec.EOF
		}))
		return
	}

	body := resp.Body
	if resp.Compressed && len(body) >= a.cfg.GzipMinBytes && acceptsGzip(req) {
		if gz, ok := gzipBytes(body); ok {
			body = gz
			headers = setHeader(headers, "content-encoding", "gzip")
			headers = setHeader(headers, "content-length", strconv.Itoa(len(body)))
		}
	}

	sent := false

	c.Respond(s, resp.Status, headers, codec.Generator(func(p []byte) (int, codec.BodyStatus) {
		if sent {
			return 0, codec.EOF
		}
		n := copy(p, body)
		sent = n >= len(body)
		if !sent {
			body = body[n:]
			return n, codec.More
		}
		return n, codec.EOF
	}))
}

func (a *Adapter) applyStandardHeaders(resp *router.Response, req *router.Request) {
	if resp.Headers.Get("content-type") == "" {
		resp.Headers.Set("content-type", "application/octet-stream")
	}

	if resp.Headers.Get("content-length") == "" && resp.BodyFunc == nil {
		resp.Headers.Set("content-length", strconv.Itoa(len(resp.Body)))
	}

	if resp.Headers.Get("server") == "" && a.cfg.ServerName != "" {
		resp.Headers.Set("server", a.cfg.ServerName)
	}
}

func (a *Adapter) applyCORS(h http.Header, req *router.Request) {
	origin := first(req.Headers["origin"])
	if origin == "" {
		return
	}

	if !a.originAllowed(origin) {
		return
	}

	h.Set("access-control-allow-origin", origin)
	h.Add("vary", "Origin")
}

func (a *Adapter) originAllowed(origin string) bool {
	for _, o := range a.cfg.Origins {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}

// corsPreflight handles an OPTIONS request whose Origin is allow-listed by
// responding 204 with Access-Control-Allow-Methods/Headers, short-circuiting
// the router entirely. Only called when no explicit OPTIONS handler is
// registered for the path. It returns false (leaving the caller to route
// normally) when Origin isn't present or isn't allowed.
func (a *Adapter) corsPreflight(c *engine.Connection, s *stream.Stream, req *router.Request) bool {
	origin := first(req.Headers["origin"])
	if origin == "" || !a.originAllowed(origin) {
		return false
	}

	resp := router.NewResponse()
	resp.Status = 204
	resp.Headers.Set("access-control-allow-origin", origin)
	resp.Headers.Set("vary", "Origin")
	resp.Headers.Set("access-control-allow-methods", strings.Join(a.cfg.CORSMethods, ", "))
	resp.Headers.Set("access-control-allow-headers", "*, authorization")

	a.writeResponse(c, s, req, resp)
	return true
}

func (a *Adapter) respondMethodNotAllowed(c *engine.Connection, s *stream.Stream, req *router.Request) {
	resp := router.NewResponse()
	resp.Status = 405
	resp.Body = []byte("Method Not Allowed")
	if methods := a.router.AllowedMethods(req.Path); len(methods) > 0 {
		resp.Headers.Set("allow", strings.Join(methods, ", "))
	}
	a.writeResponse(c, s, req, resp)
}

func (a *Adapter) respondSynthetic(c *engine.Connection, s *stream.Stream, status int, msg string) {
	resp := router.NewResponse()
	resp.Status = status
	resp.Body = []byte(msg)

	headers := headersFromHTTP(resp.Headers, resp.Status)
	headers = setHeader(headers, "content-type", "text/plain; charset=utf-8")
	headers = setHeader(headers, "content-length", strconv.Itoa(len(resp.Body)))
	if a.cfg.ServerName != "" {
		headers = setHeader(headers, "server", a.cfg.ServerName)
	}

	body := resp.Body
	sent := false

	c.Respond(s, status, headers, codec.Generator(func(p []byte) (int, codec.BodyStatus) {
		if sent {
			return 0, codec.EOF
		}
		n := copy(p, body)
		sent = true
		return n, codec.EOF
	}))
}

func acceptsGzip(req *router.Request) bool {
	for _, v := range req.Headers["accept-encoding"] {
		if strings.Contains(v, "gzip") {
			return true
		}
	}
	return false
}

func gzipBytes(p []byte) ([]byte, bool) {
	var buf bytes.Buffer

	w := gzip.NewWriter(&buf)
	if _, err := w.Write(p); err != nil {
		return nil, false
	}
	if err := w.Close(); err != nil {
		return nil, false
	}

	return buf.Bytes(), true
}

func first(v []string) string {
	if len(v) == 0 {
		return ""
	}
	return v[0]
}

func headersFromHTTP(h http.Header, status int) []codec.Header {
	out := make([]codec.Header, 0, len(h)+1)
	for name, values := range h {
		for _, v := range values {
			out = append(out, codec.Header{Name: strings.ToLower(name), Value: v})
		}
	}
	return out
}

func setHeader(hdrs []codec.Header, name, value string) []codec.Header {
	for i := range hdrs {
		if hdrs[i].Name == name {
			hdrs[i].Value = value
			return hdrs
		}
	}
	return append(hdrs, codec.Header{Name: name, Value: value})
}
