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

package httpserver

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/h2kit/server/adapter"
	libtls "github.com/h2kit/server/certificates"
	liberr "github.com/h2kit/server/errors"
	liblog "github.com/h2kit/server/logger"
	"github.com/h2kit/server/router"
)

// MapUpdPoolServerConfig transforms one Config while walking a PoolServerConfig.
type MapUpdPoolServerConfig func(cfg Config) Config

// MapRunPoolServerConfig runs a side effect on one Config while walking a PoolServerConfig.
type MapRunPoolServerConfig func(cfg Config)

// PoolServerConfig describes several named servers sharing one configuration file,
// the "Config pool" supplement: a plain HTTP/2 listener and a TLS one, for example.
type PoolServerConfig []Config

// Build validates every entry and constructs a Pool sharing rt and defLog.
func (p PoolServerConfig) Build(rt router.Router, defLog liblog.FuncLog) (Pool, liberr.Error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	var (
		out = NewPool()
		e   = ErrorPoolAdd.Error(nil)
	)

	p.MapRun(func(cfg Config) {
		s, err := New(cfg, rt, defLog)
		if err != nil {
			e.Add(err)
			return
		}

		out.Store(s)
	})

	if !e.HasParent() {
		e = nil
	}

	return out, e
}

// Validate runs Config.Validate over every entry, collecting every failure
// under one ErrorPoolValidate parent instead of stopping at the first one.
func (p PoolServerConfig) Validate() liberr.Error {
	var e = ErrorPoolValidate.Error(nil)

	p.MapRun(func(cfg Config) {
		if err := cfg.Validate(); err != nil {
			e.Add(err)
		}
	})

	if !e.HasParent() {
		e = nil
	}

	return e
}

// MapUpdate returns a new PoolServerConfig with f applied to every entry.
func (p PoolServerConfig) MapUpdate(f MapUpdPoolServerConfig) PoolServerConfig {
	r := make(PoolServerConfig, len(p))

	for i, c := range p {
		r[i] = f(c)
	}

	return r
}

// MapRun calls f for every entry, in order, and returns p unchanged.
func (p PoolServerConfig) MapRun(f MapRunPoolServerConfig) PoolServerConfig {
	for _, c := range p {
		f(c)
	}

	return p
}

// Config declares one server instance: its listen/expose addresses, HTTP/2
// tuning knobs, and optional TLS. Grounded on the teacher's ServerConfig
// shape, trimmed of the net/http.Server-only fields (MaxHandlers,
// PermitProhibitedCipherSuites) the codec-based engine doesn't use, and
// carrying the acceptor/engine Config fields it actually drives instead.
type Config struct {
	getTLSDefault    func() libtls.TLSConfig
	getParentContext func() context.Context

	// Disabled allows disabling a server without removing its configuration.
	Disabled bool

	// Mandatory marks this server's health as part of the pool's overall health.
	Mandatory bool

	// ReadTimeout bounds how long Acceptor.Serve waits for the TLS handshake.
	ReadTimeout time.Duration `mapstructure:"read_timeout" json:"read_timeout" yaml:"read_timeout" toml:"read_timeout"`

	// IdleTimeout closes a connection that sent no frame for this long.
	IdleTimeout time.Duration `mapstructure:"idle_timeout" json:"idle_timeout" yaml:"idle_timeout" toml:"idle_timeout"`

	// MaxConcurrentStreams caps the streams a peer may have open at once,
	// advertised via SETTINGS_MAX_CONCURRENT_STREAMS.
	MaxConcurrentStreams uint32 `mapstructure:"max_concurrent_streams" json:"max_concurrent_streams" yaml:"max_concurrent_streams" toml:"max_concurrent_streams"`

	// MaxReadFrameSize bounds the largest frame this server accepts.
	MaxReadFrameSize uint32 `mapstructure:"max_read_frame_size" json:"max_read_frame_size" yaml:"max_read_frame_size" toml:"max_read_frame_size"`

	// MaxUploadBufferPerConnection is the initial flow control window Start
	// hands the engine; it seeds both the connection-level window and every
	// stream's window.
	MaxUploadBufferPerConnection int32 `mapstructure:"max_upload_buffer_per_connection" json:"max_upload_buffer_per_connection" yaml:"max_upload_buffer_per_connection" toml:"max_upload_buffer_per_connection"`

	// MaxUploadBufferPerStream is decoded and validated with the rest of the
	// config, but Start does not read it: per-stream windows are seeded from
	// MaxUploadBufferPerConnection.
	MaxUploadBufferPerStream int32 `mapstructure:"max_upload_buffer_per_stream" json:"max_upload_buffer_per_stream" yaml:"max_upload_buffer_per_stream" toml:"max_upload_buffer_per_stream"`

	// PayloadCap bounds a request body in bytes; exceeding it yields 413.
	PayloadCap int64 `mapstructure:"payload_cap" json:"payload_cap" yaml:"payload_cap" toml:"payload_cap"`

	// Name identifies this server among its pool siblings. Falls back to
	// Listen when empty.
	Name string `mapstructure:"name" json:"name" yaml:"name" toml:"name" validate:"required"`

	// Listen is the local bind address (host:port).
	Listen string `mapstructure:"listen" json:"listen" yaml:"listen" toml:"listen" validate:"required,hostname_port"`

	// Expose is the externally reachable URL for this server.
	Expose string `mapstructure:"expose" json:"expose" yaml:"expose" toml:"expose" validate:"required,url"`

	// TLSMandatory requires a valid TLS config for this server to start.
	TLSMandatory bool `mapstructure:"tls_mandatory" json:"tls_mandatory" yaml:"tls_mandatory" toml:"tls_mandatory"`

	// TLS configures certificate material for this server. An empty, non-
	// mandatory TLS leaves the server plaintext (h2 over cleartext TCP,
	// not h2c — see spec Non-goals).
	TLS libtls.Config `mapstructure:"tls" json:"tls" yaml:"tls" toml:"tls"`

	// ExtraProcess, when set, runs after each response is ready,
	// synchronously on the connection's strand, and is handed the executor
	// pool for any out-of-band work. The metrics package builds one that
	// records request counters/durations.
	ExtraProcess adapter.ExtraProcess

	// ConnHook, when set, wraps every accepted net.Conn before the engine
	// ever sees it. The metrics package builds one that counts bytes and
	// connection lifetime.
	ConnHook func(net.Conn) net.Conn
}

// Clone returns a deep-enough copy of c: value fields copy trivially, and
// the two function fields are shared (they're themselves immutable closures).
func (c *Config) Clone() Config {
	return *c
}

// SetDefaultTLS installs the fallback TLSConfig used when c.TLS.InheritDefault
// is set and c.TLS itself carries no certificate material.
func (c *Config) SetDefaultTLS(f func() libtls.TLSConfig) {
	c.getTLSDefault = f
}

// SetParentContext installs the context.Context provider this server's
// Acceptor.Serve call derives its own cancellation from.
func (c *Config) SetParentContext(f func() context.Context) {
	c.getParentContext = f
}

// GetTLS resolves c.TLS against the registered default. It always returns a
// TLSConfig; one with no certificate pair means a plaintext server.
func (c Config) GetTLS() libtls.TLSConfig {
	var def libtls.TLSConfig

	if c.getTLSDefault != nil {
		def = c.getTLSDefault()
	}

	return c.TLS.NewFrom(def)
}

// IsTLS reports whether this server will perform a TLS handshake.
func (c Config) IsTLS() bool {
	if ssl := c.GetTLS(); ssl != nil && ssl.LenCertificatePair() > 0 {
		return true
	}

	return false
}

func (c Config) getContext() context.Context {
	if c.getParentContext != nil {
		if ctx := c.getParentContext(); ctx != nil {
			return ctx
		}
	}

	return context.Background()
}

// GetListen parses Listen (falling back to Expose) into a *url.URL.
func (c Config) GetListen() *url.URL {
	var (
		err error
		add *url.URL
	)

	if c.Listen != "" {
		if add, err = url.Parse(c.Listen); err != nil {
			if host, prt, e := net.SplitHostPort(c.Listen); e == nil {
				add = &url.URL{Host: fmt.Sprintf("%s:%s", host, prt)}
			} else {
				add = nil
			}
		}
	}

	if add == nil && c.Expose != "" {
		if add, err = url.Parse(c.Expose); err != nil {
			add = nil
		}
	}

	return add
}

// GetExpose parses Expose, falling back to GetListen with a scheme inferred
// from IsTLS.
func (c Config) GetExpose() *url.URL {
	if add, err := url.Parse(c.Expose); err == nil && c.Expose != "" {
		return add
	}

	add := c.GetListen()
	if add != nil {
		if c.IsTLS() {
			add.Scheme = "https"
		} else {
			add.Scheme = "http"
		}
	}

	return add
}

// Validate runs struct-tag validation via go-playground/validator and
// collects every failing field under one ErrorServerValidate parent.
func (c Config) Validate() liberr.Error {
	val := validator.New()
	err := val.Struct(c)

	if err == nil {
		return nil
	}

	if e, ok := err.(*validator.InvalidValidationError); ok {
		return ErrorServerValidate.Error(e)
	}

	out := ErrorServerValidate.Error(nil)

	for _, e := range err.(validator.ValidationErrors) {
		//nolint goerr113
		out.Add(fmt.Errorf("config field '%s' is not validated by constraint '%s'", e.Field(), e.ActualTag()))
	}

	if out.HasParent() {
		return out
	}

	return nil
}

// name normalizes Name, falling back to Listen when unset.
func (c Config) name() string {
	if c.Name != "" {
		return c.Name
	}

	return strings.TrimSpace(c.Listen)
}
