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

// Package engine drives one HTTP/2 connection: the read/write loops against
// a net.Conn, the codec session, and the stream table, all serialized onto
// one executor.Strand so no two callbacks for the same connection ever run
// concurrently.
package engine

import (
	"net"
	"time"

	"github.com/h2kit/server/codec"
	"github.com/h2kit/server/executor"
	"github.com/h2kit/server/stream"
)

// Dispatcher is consulted once a stream's request is fully assembled
// (headers and, unless the request has no body, the end-of-stream DATA).
// Implemented by the Framework Adapter (package adapter).
type Dispatcher interface {
	Dispatch(c *Connection, s *stream.Stream)
}

// Logger is the minimal structured-logging surface the engine needs; the
// httpserver package wires in an adapter over github.com/h2kit/server/logger.
type Logger interface {
	Debugf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// Config tunes buffer sizes and deadlines for one Connection.
type Config struct {
	ReadBufferSize  int
	WriteBufferSize int
	IdleTimeout     time.Duration
	PayloadCap      int64
	InitialWindow   int32
	Settings        codec.Settings
}

// DefaultConfig mirrors the sizes spec.md recommends: an 8 KiB read buffer
// and a 64 KiB write buffer.
func DefaultConfig() Config {
	return Config{
		ReadBufferSize:  8 * 1024,
		WriteBufferSize: 64 * 1024,
		IdleTimeout:     30 * time.Second,
		InitialWindow:   1 << 20,
		Settings:        codec.DefaultSettings(),
	}
}

// New creates a Connection bound to conn, running its callbacks on strand,
// and handing completed requests to dispatcher. Start must be called to
// begin reading.
func New(conn net.Conn, strand executor.Strand, dispatcher Dispatcher, cfg Config, log Logger) *Connection {
	c := &Connection{
		conn:           conn,
		strand:         strand,
		dispatcher:     dispatcher,
		cfg:            cfg,
		log:            log,
		streams:        make(map[uint32]*stream.Stream),
		writeBuf:       make([]byte, cfg.WriteBufferSize),
		connSendWindow: stream.NewFlow(cfg.InitialWindow),
		connRecvWindow: stream.NewFlow(cfg.InitialWindow),
	}

	c.sess = codec.New(codec.RoleServer, cfg.Settings, codec.Callbacks{
		OnBeginHeaders:      c.onBeginHeaders,
		OnHeader:            c.onHeader,
		OnRequestEndHeaders: c.onRequestEndHeaders,
		OnData:              c.onData,
		OnRequestEndStream:  c.onRequestEndStream,
		OnStreamClose:       c.onStreamClose,
		OnGoAway:             c.onGoAway,
		OnError:              c.onError,
		OnWindowUpdate:       c.onWindowUpdate,
		AvailableSendWindow:  c.availableSendWindow,
		ConsumeSendWindow:    c.consumeSendWindow,
	})

	return c
}
