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
	"net"
	"sync/atomic"
	"time"

	"github.com/h2kit/server/codec"
	"github.com/h2kit/server/executor"
	"github.com/h2kit/server/stream"
)

// State is the connection's position in its lifecycle.
type State uint8

const (
	Starting State = iota
	Reading
	Writing
	Stopping
	Stopped
)

// Connection is one accepted HTTP/2 connection: its socket, codec session,
// stream table, and deadline timer, all mutated only from callbacks posted
// to its strand.
type Connection struct {
	conn   net.Conn
	strand executor.Strand
	sess   codec.Session
	cfg    Config
	log    Logger

	dispatcher Dispatcher
	streams    map[uint32]*stream.Stream

	connSendWindow *stream.Flow
	connRecvWindow *stream.Flow

	state   State
	writing bool
	stopped int32

	writeBuf []byte

	timer        *time.Timer
	deadlineKind string
}

// RemoteAddr returns the underlying socket's remote endpoint.
func (c *Connection) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// Start arms the idle deadline and begins the blocking read goroutine. It
// returns immediately; the connection runs until Stop is called or the
// peer closes the socket.
func (c *Connection) Start() {
	c.state = Starting
	c.armDeadline("idle", c.cfg.IdleTimeout)
	c.state = Reading

	go c.readLoop()
}

// Stop is idempotent: it closes the socket, cancels the timer, and drops
// the stream table so any in-flight generators observe their stream is
// gone on next pull.
func (c *Connection) Stop() {
	if !atomic.CompareAndSwapInt32(&c.stopped, 0, 1) {
		return
	}

	c.strand.Post(func() {
		c.state = Stopped

		if c.timer != nil {
			c.timer.Stop()
		}

		for id := range c.streams {
			delete(c.streams, id)
		}

		_ = c.conn.Close()
	})
}

func (c *Connection) isStopped() bool {
	return atomic.LoadInt32(&c.stopped) == 1
}

func (c *Connection) armDeadline(kind string, d time.Duration) {
	if d <= 0 {
		return
	}

	c.deadlineKind = kind

	if c.timer == nil {
		c.timer = time.AfterFunc(d, c.onDeadline)
		return
	}

	c.timer.Reset(d)
}

func (c *Connection) onDeadline() {
	if c.isStopped() {
		return
	}

	c.strand.Post(func() {
		if c.isStopped() {
			return
		}

		if c.log != nil {
			c.log.Errorf("connection %s: %s deadline exceeded", c.conn.RemoteAddr(), c.deadlineKind)
		}

		c.Stop()
	})
}

func (c *Connection) resetIdleDeadline() {
	c.armDeadline("idle", c.cfg.IdleTimeout)
}
