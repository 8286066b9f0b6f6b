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
	"time"

	"github.com/h2kit/server/acceptor"
	"github.com/h2kit/server/adapter"
	liberr "github.com/h2kit/server/errors"
	"github.com/h2kit/server/executor"
)

const defaultLoops = 4

// Start validates the current Config, spins up an executor.Pool and an
// Acceptor, and begins accepting connections. A disabled server returns nil
// without binding, matching the teacher's Disabled/Mandatory semantics.
func (o *srv) Start(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.running {
		return ErrorAlreadyRunning.Error(nil)
	}

	if o.cfg.Disabled {
		return nil
	}

	if err := o.cfg.Validate(); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)

	pool, err := executor.New(runCtx, defaultLoops)
	if err != nil {
		cancel()
		return err
	}

	pool.Run(true)

	log := engineLogger{fn: o.log}

	adCfg := adapter.DefaultConfig()
	adCfg.ExtraProcess = o.cfg.ExtraProcess

	ad := adapter.New(adCfg, o.rt, pool, log)

	accCfg := acceptor.DefaultConfig()
	accCfg.Listen = o.cfg.Listen
	accCfg.TLS = o.cfg.GetTLS()
	accCfg.ConnHook = o.cfg.ConnHook

	if o.cfg.ReadTimeout > 0 {
		accCfg.TLSHandshakeTimeout = o.cfg.ReadTimeout
	}
	if o.cfg.MaxUploadBufferPerConnection > 0 {
		accCfg.Engine.InitialWindow = o.cfg.MaxUploadBufferPerConnection
	}
	if o.cfg.IdleTimeout > 0 {
		accCfg.Engine.IdleTimeout = o.cfg.IdleTimeout
	}
	if o.cfg.PayloadCap > 0 {
		accCfg.Engine.PayloadCap = o.cfg.PayloadCap
	}
	if o.cfg.MaxConcurrentStreams > 0 {
		accCfg.Engine.Settings.MaxConcurrentStreams = o.cfg.MaxConcurrentStreams
	}
	if o.cfg.MaxReadFrameSize > 0 {
		accCfg.Engine.Settings.MaxFrameSize = o.cfg.MaxReadFrameSize
	}

	if o.cfg.TLSMandatory && (accCfg.TLS == nil || accCfg.TLS.LenCertificatePair() == 0) {
		cancel()
		pool.Stop()
		return ErrorHTTP2Configure.Error(nil)
	}

	acc := acceptor.New(accCfg, pool, ad, log)

	if err := acc.Serve(runCtx); err != nil {
		cancel()
		pool.Stop()
		return err
	}

	o.cancel = cancel
	o.pool = pool
	o.acc = acc
	o.running = true
	o.startedAt = time.Now()
	o.lastErr = nil

	return nil
}

// Stop closes the listener and stops the executor pool, waiting (up to
// ctx's deadline, if any) for already-queued connection work to drain.
func (o *srv) Stop(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.running {
		return ErrorNotRunning.Error(nil)
	}

	if o.acc != nil {
		o.acc.Close()
	}
	if o.cancel != nil {
		o.cancel()
	}
	if o.pool != nil {
		o.pool.Stop()

		done := make(chan struct{})
		go func() {
			o.pool.Join()
			close(done)
		}()

		select {
		case <-done:
		case <-ctx.Done():
		}
	}

	o.running = false
	o.acc = nil
	o.pool = nil
	o.cancel = nil

	return nil
}

// Restart stops then starts the server using its current Config.
func (o *srv) Restart(ctx context.Context) error {
	if err := o.Stop(ctx); err != nil && !liberr.Has(err, ErrorNotRunning) {
		return err
	}

	return o.Start(ctx)
}

func (o *srv) IsRunning() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()

	return o.running
}

func (o *srv) Uptime() time.Duration {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if !o.running {
		return 0
	}

	return time.Since(o.startedAt)
}

func (o *srv) GetConfig() *Config {
	o.mu.RLock()
	defer o.mu.RUnlock()

	cfg := o.cfg.Clone()
	return &cfg
}

// SetConfig replaces the Config. The server must not be running: the
// acceptor/engine wiring is rebuilt wholesale on the next Start.
func (o *srv) SetConfig(cfg Config) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.running {
		return ErrorAlreadyRunning.Error(nil)
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	o.cfg = cfg

	return nil
}
