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

import (
	"context"
	"sync"
	"time"

	"github.com/h2kit/server/acceptor"
	"github.com/h2kit/server/executor"
	liblog "github.com/h2kit/server/logger"
	"github.com/h2kit/server/router"
)

// Info provides read-only access to server identification and configuration
// information, independent of whether the server is currently running.
type Info interface {
	// GetName returns the unique identifier name of the server instance.
	GetName() string

	// GetBindable returns the local bind address (host:port) the server listens on.
	GetBindable() string

	// GetExpose returns the public-facing URL used to access this server externally.
	GetExpose() string

	// IsDisable returns true if the server is configured as disabled and should not start.
	IsDisable() bool

	// IsTLS returns true if the server is configured to use TLS/HTTPS.
	IsTLS() bool
}

// Server binds one Config to an acceptor/engine/executor stack and drives
// its lifecycle. Grounded on the teacher's Server/Info split; Monitor(vrs)/
// MonitorName() are dropped in favor of Health (see health.go).
type Server interface {
	Info

	// Start binds the listener and begins accepting connections. Returns
	// ErrorAlreadyRunning if already started.
	Start(ctx context.Context) error

	// Stop closes the listener; already-accepted connections drain their
	// in-flight streams and then close.
	Stop(ctx context.Context) error

	// Restart is Stop followed by Start using the current Config.
	Restart(ctx context.Context) error

	// IsRunning reports whether Start has completed and Stop has not.
	IsRunning() bool

	// Uptime is the duration since the last successful Start, zero if not running.
	Uptime() time.Duration

	// Health reports a readiness surface independent of the metrics package.
	Health() Health

	// GetConfig returns the Config this server was built from.
	GetConfig() *Config

	// SetConfig replaces the Config. Takes effect on the next Start/Restart.
	SetConfig(cfg Config) error
}

// engineLogger adapts a logger.FuncLog to the engine package's narrow
// Debugf/Errorf surface, so the engine never needs the full logger.Logger
// interface.
type engineLogger struct {
	fn liblog.FuncLog
}

func (l engineLogger) Debugf(format string, args ...interface{}) {
	if l.fn == nil {
		return
	}
	if log := l.fn(); log != nil {
		log.Debug(format, nil, args...)
	}
}

func (l engineLogger) Errorf(format string, args ...interface{}) {
	if l.fn == nil {
		return
	}
	if log := l.fn(); log != nil {
		log.Error(format, nil, args...)
	}
}

// srv is the concrete Server: a Config plus the acceptor/executor wiring
// that turns it into a running HTTP/2 listener.
type srv struct {
	mu  sync.RWMutex
	cfg Config
	rt  router.Router
	log liblog.FuncLog

	running   bool
	startedAt time.Time
	lastErr   error

	cancel context.CancelFunc
	pool   executor.Pool
	acc    *acceptor.Acceptor
}

// New builds a Server from cfg, routing matched requests through rt. defLog
// may be nil, in which case the engine and acceptor log nothing.
//
//	cfg := httpserver.Config{
//	    Name:   "api",
//	    Listen: "127.0.0.1:8443",
//	    Expose: "https://api.example.com",
//	}
//	s, err := httpserver.New(cfg, rt, nil)
func New(cfg Config, rt router.Router, defLog liblog.FuncLog) (Server, error) {
	if rt == nil {
		return nil, ErrorParamsEmpty.Error(nil)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &srv{cfg: cfg, rt: rt, log: defLog}, nil
}
