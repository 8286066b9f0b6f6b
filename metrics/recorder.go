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
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type recorder struct {
	reg prometheus.Registerer
	gat prometheus.Gatherer

	connectionsOpen  prometheus.Gauge
	connectionsTotal prometheus.Counter
	bytesIn          prometheus.Counter
	bytesOut         prometheus.Counter
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	streamWindow     prometheus.Gauge
	connWindow       prometheus.Gauge
}

// NewRecorder builds a Recorder with its own private prometheus.Registry,
// every collector prefixed with namespace (e.g. "h2kit"). Pass the result
// of Gatherer to a promhttp.Handler, or merge Registerer into a larger
// registry — this package never mounts an HTTP endpoint itself.
func NewRecorder(namespace string) Recorder {
	reg := prometheus.NewRegistry()

	r := &recorder{
		reg: reg,
		gat: reg,
		connectionsOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "connections",
			Name:      "open",
			Help:      "Number of currently open connections.",
		}),
		connectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "connections",
			Name:      "total",
			Help:      "Total connections accepted or dialed.",
		}),
		bytesIn: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "traffic",
			Name:      "bytes_in_total",
			Help:      "Total bytes read off the wire.",
		}),
		bytesOut: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "traffic",
			Name:      "bytes_out_total",
			Help:      "Total bytes written to the wire.",
		}),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "requests",
			Name:      "total",
			Help:      "Total requests served, by method and status.",
		}, []string{"method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "requests",
			Name:      "duration_seconds",
			Help:      "Request handling duration in seconds, by method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		streamWindow: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "flowcontrol",
			Name:      "stream_window_bytes",
			Help:      "Configured per-stream initial flow control window.",
		}),
		connWindow: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "flowcontrol",
			Name:      "connection_window_bytes",
			Help:      "Configured per-connection initial flow control window.",
		}),
	}

	reg.MustRegister(
		r.connectionsOpen,
		r.connectionsTotal,
		r.bytesIn,
		r.bytesOut,
		r.requestsTotal,
		r.requestDuration,
		r.streamWindow,
		r.connWindow,
	)

	return r
}

func (r *recorder) ConnectionOpened() {
	r.connectionsOpen.Inc()
	r.connectionsTotal.Inc()
}

func (r *recorder) ConnectionClosed() {
	r.connectionsOpen.Dec()
}

func (r *recorder) BytesIn(n int) {
	r.bytesIn.Add(float64(n))
}

func (r *recorder) BytesOut(n int) {
	r.bytesOut.Add(float64(n))
}

func (r *recorder) RequestServed(method string, status int, duration time.Duration) {
	r.requestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	r.requestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

func (r *recorder) SetFlowControlWindow(streamWindow, connWindow int32) {
	r.streamWindow.Set(float64(streamWindow))
	r.connWindow.Set(float64(connWindow))
}

func (r *recorder) Registerer() prometheus.Registerer {
	return r.reg
}

func (r *recorder) Gatherer() prometheus.Gatherer {
	return r.gat
}
