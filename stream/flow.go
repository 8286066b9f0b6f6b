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

package stream

import "sync"

// Flow is a signed credit counter used for both per-stream and
// per-connection HTTP/2 flow-control windows.
type Flow struct {
	mu      sync.Mutex
	avail   int32
}

// NewFlow returns a Flow seeded with initial credit.
func NewFlow(initial int32) *Flow {
	return &Flow{avail: initial}
}

// Add credits n bytes (may be negative, e.g. SETTINGS_INITIAL_WINDOW_SIZE
// shrinking an already-open stream's window).
func (f *Flow) Add(n int32) {
	f.mu.Lock()
	f.avail += n
	f.mu.Unlock()
}

// Take consumes n bytes of credit if available, returning false if the
// window does not cover n.
func (f *Flow) Take(n int32) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.avail < n {
		return false
	}

	f.avail -= n
	return true
}

// Available returns the current credit.
func (f *Flow) Available() int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.avail
}
