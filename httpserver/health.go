/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
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

package httpserver

import "time"

// State is Health's coarse readiness classification.
type State string

const (
	StateRunning  State = "running"
	StateStopped  State = "stopped"
	StateDegraded State = "degraded"
)

// Health is the supplemented readiness surface (spec §10): a state plus the
// last lifecycle error, independent of the Prometheus metrics package.
type Health struct {
	State     State
	Name      string
	Bindable  string
	Since     time.Time
	LastError error
}

// Health reports srv's current readiness. A disabled, non-mandatory server
// that never started is "stopped", not "degraded" — degraded is reserved
// for a server that started and then recorded a lifecycle error.
func (o *srv) Health() Health {
	o.mu.RLock()
	defer o.mu.RUnlock()

	bindable := ""
	if u := o.cfg.GetListen(); u != nil {
		bindable = u.Host
	}

	h := Health{
		Name:      o.cfg.name(),
		Bindable:  bindable,
		LastError: o.lastErr,
	}

	switch {
	case o.running && o.lastErr == nil:
		h.State = StateRunning
		h.Since = o.startedAt
	case o.lastErr != nil:
		h.State = StateDegraded
	default:
		h.State = StateStopped
	}

	return h
}
