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

// readLoop performs blocking socket reads off the strand (a strand task
// must never block on I/O) and hands each chunk to the strand for
// processing. It exits once the socket errors or the connection stops.
func (c *Connection) readLoop() {
	buf := make([]byte, c.cfg.ReadBufferSize)

	for {
		n, err := c.conn.Read(buf)

		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])

			c.strand.Post(func() {
				c.onReadChunk(chunk)
			})
		}

		if err != nil {
			c.Stop()
			return
		}

		if c.isStopped() {
			return
		}
	}
}

// onReadChunk runs on the strand: feed the codec, let it invoke event
// callbacks synchronously, then drive the write side and re-arm the idle
// deadline.
func (c *Connection) onReadChunk(p []byte) {
	if c.isStopped() {
		return
	}

	if err := c.sess.Feed(p); err != nil {
		if c.log != nil {
			c.log.Errorf("connection %s: feed error: %v", c.conn.RemoteAddr(), err)
		}
		c.Stop()
		return
	}

	c.resetIdleDeadline()
	c.doWrite()
}

// doWrite implements the spec's single-outstanding-write contract: at most
// one async socket write is ever in flight for this connection.
func (c *Connection) doWrite() {
	if c.writing || c.isStopped() {
		return
	}

	n, shouldStop := c.sess.Drain(c.writeBuf)

	if n == 0 {
		if shouldStop {
			c.Stop()
		}
		return
	}

	c.writing = true
	c.state = Writing
	c.resetIdleDeadline()

	out := make([]byte, n)
	copy(out, c.writeBuf[:n])

	go func() {
		_, err := c.conn.Write(out)

		c.strand.Post(func() {
			c.writing = false
			c.state = Reading

			if err != nil {
				if c.log != nil {
					c.log.Errorf("connection %s: write error: %v", c.conn.RemoteAddr(), err)
				}
				c.Stop()
				return
			}

			c.doWrite()
		})
	}()
}
