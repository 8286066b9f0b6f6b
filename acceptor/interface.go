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

// Package acceptor binds one or more endpoints, optionally performs the TLS
// handshake with ALPN gated to h2, and hands each accepted connection to
// the Connection Engine on a pool-chosen executor.
package acceptor

import (
	"context"
	"crypto/tls"
	"net"
	"time"

	libtls "github.com/h2kit/server/certificates"
	"github.com/h2kit/server/engine"
	"github.com/h2kit/server/executor"
	liberr "github.com/h2kit/server/errors"
)

// Config configures one Acceptor instance.
type Config struct {
	Listen               string
	Backlog              int
	TLS                   libtls.TLSConfig
	TLSHandshakeTimeout   time.Duration
	Engine                engine.Config

	// ConnHook, when set, wraps every accepted net.Conn before the TLS
	// handshake (if any) and before it's handed to the engine. Nil is a
	// no-op; the metrics package uses this to count bytes and connection
	// lifetime.
	ConnHook func(net.Conn) net.Conn
}

// DefaultConfig mirrors spec.md's defaults: a 3s TLS handshake timeout.
func DefaultConfig() Config {
	return Config{
		Backlog:             -1,
		TLSHandshakeTimeout: 3 * time.Second,
		Engine:              engine.DefaultConfig(),
	}
}

// Acceptor owns the listening sockets for one server and feeds accepted
// connections into an executor.Pool.
type Acceptor struct {
	cfg        Config
	pool       executor.Pool
	dispatcher engine.Dispatcher
	log        engine.Logger

	listeners []net.Listener
}

// New stores cfg and its collaborators in an Acceptor; nothing is resolved
// or bound until Serve.
func New(cfg Config, pool executor.Pool, dispatcher engine.Dispatcher, log engine.Logger) *Acceptor {
	return &Acceptor{cfg: cfg, pool: pool, dispatcher: dispatcher, log: log}
}

// listenConfig applies SO_REUSEADDR so restarts don't hit "address in use"
// while a previous listener's sockets are draining.
var listenConfig = net.ListenConfig{
	Control: controlReuseAddr,
}

// Serve binds cfg.Listen and accepts connections until ctx is done. It
// returns ErrorNoEndpoint if the address cannot be bound at all.
func (a *Acceptor) Serve(ctx context.Context) liberr.Error {
	ln, err := listenBacklog(ctx, "tcp", a.cfg.Listen, a.cfg.Backlog)
	if err != nil {
		return ErrorNoEndpoint.Error(err)
	}

	a.listeners = append(a.listeners, ln)

	go a.acceptLoop(ctx, ln)

	return nil
}

// Close closes every bound listener.
func (a *Acceptor) Close() {
	for _, ln := range a.listeners {
		_ = ln.Close()
	}
}

func (a *Acceptor) acceptLoop(ctx context.Context, ln net.Listener) {
	for {
		conn, err := ln.Accept()

		if err != nil {
			if ctx.Err() != nil {
				return
			}

			if a.log != nil {
				a.log.Errorf("acceptor %s: accept error: %v", a.cfg.Listen, err)
			}

			continue
		}

		if tcp, ok := conn.(*net.TCPConn); ok {
			_ = tcp.SetNoDelay(true)
		}

		go a.handle(conn)
	}
}

func (a *Acceptor) handle(conn net.Conn) {
	if a.cfg.ConnHook != nil {
		conn = a.cfg.ConnHook(conn)
	}

	if a.cfg.TLS != nil && a.cfg.TLS.LenCertificatePair() > 0 {
		tlsCfg := a.cfg.TLS.TLS("")
		tlsCfg.NextProtos = []string{"h2"}

		tconn := tls.Server(conn, tlsCfg)

		if err := tconn.SetDeadline(time.Now().Add(a.cfg.TLSHandshakeTimeout)); err != nil {
			_ = conn.Close()
			return
		}

		if err := tconn.Handshake(); err != nil {
			if a.log != nil {
				a.log.Errorf("acceptor %s: handshake error: %v", a.cfg.Listen, err)
			}
			_ = conn.Close()
			return
		}

		if tconn.ConnectionState().NegotiatedProtocol != "h2" {
			if a.log != nil {
				a.log.Errorf("acceptor %s: %v", a.cfg.Listen, ErrorNoAppProtoNegotiated.Error(nil))
			}
			_ = conn.Close()
			return
		}

		_ = tconn.SetDeadline(time.Time{})
		conn = tconn
	}

	loop := a.pool.Next()
	c := engine.New(conn, loop.NewStrand(), a.dispatcher, a.cfg.Engine, a.log)
	c.Start()
}
