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

package metrics

import (
	"net"
	"sync"
	"time"

	"github.com/h2kit/server/adapter"
	"github.com/h2kit/server/executor"
	"github.com/h2kit/server/router"
)

// countingConn wraps a net.Conn to report byte counts and the connection's
// lifetime to rec. Server side it is installed through
// acceptor.Config.ConnHook, which wraps the accepted conn before any TLS
// handshake, so the counts include TLS record bytes; client.Config.ConnHook
// wraps after the handshake, so there the counts are plaintext HTTP/2 bytes.
type countingConn struct {
	net.Conn
	rec      Recorder
	once     sync.Once
	closeErr error
}

// WrapConn decorates conn so every Read/Write is reported to rec, and
// ConnectionOpened/ConnectionClosed bracket its lifetime. Install it as
// acceptor.Config.ConnHook (server side) or client.Config's connection hook
// (client side); a nil rec makes WrapConn a no-op passthrough.
func WrapConn(conn net.Conn, rec Recorder) net.Conn {
	if rec == nil {
		return conn
	}

	rec.ConnectionOpened()

	return &countingConn{Conn: conn, rec: rec}
}

func (c *countingConn) Read(p []byte) (int, error) {
	n, err := c.Conn.Read(p)
	if n > 0 {
		c.rec.BytesIn(n)
	}
	return n, err
}

func (c *countingConn) Write(p []byte) (int, error) {
	n, err := c.Conn.Write(p)
	if n > 0 {
		c.rec.BytesOut(n)
	}
	return n, err
}

func (c *countingConn) Close() error {
	c.once.Do(func() {
		c.closeErr = c.Conn.Close()
		c.rec.ConnectionClosed()
	})
	return c.closeErr
}

// ExtraProcess returns an adapter.ExtraProcess that records every completed
// request against rec, installed as httpserver.Config.ExtraProcess.
func ExtraProcess(rec Recorder) adapter.ExtraProcess {
	return func(req *router.Request, resp *router.Response, _ executor.Pool) {
		rec.RequestServed(req.Method, resp.Status, time.Since(req.Timestamp))
	}
}
