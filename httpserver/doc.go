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

// Package httpserver binds a declarative Config to the acceptor/executor/
// engine/router stack, turning it into a managed HTTP/2 listener with a
// Start/Stop/Restart lifecycle, instead of driving those packages by hand.
//
// # Overview
//
// A Config names a bind address, an expose URL, HTTP/2 tuning knobs, and
// optional TLS material. New builds a Server from a Config and a
// router.Router; Start spins up an executor.Pool, wires an adapter.Adapter
// in front of the router, and hands both to an acceptor.Acceptor. Stop tears
// that wiring down and waits (bounded by the caller's context) for queued
// connection work to drain.
//
// Several Config entries sharing one process are grouped by PoolServerConfig
// (one PoolServerConfig.Build call) into a Pool, which starts, stops, and reports
// Health across every member at once.
//
// # Basic usage
//
//	cfg := httpserver.Config{
//	    Name:   "api",
//	    Listen: "0.0.0.0:8443",
//	    Expose: "https://api.example.com",
//	    TLS:    libtls.Config{...},
//	}
//
//	srv, err := httpserver.New(cfg, rt, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := srv.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer srv.Stop(ctx)
//
// # Configuration
//
// Validate runs go-playground/validator struct tags over Config (Name,
// Listen, Expose are required) and collects every failing field under one
// ErrorServerValidate instead of stopping at the first. GetTLS resolves the
// Config's TLS material against a registered default (SetDefaultTLS),
// falling back to plaintext HTTP/2 when neither carries a certificate pair
// and TLSMandatory is false.
//
// # Lifecycle
//
// Start validates the Config, builds a fresh executor.Pool sized by
// defaultLoops, and calls Acceptor.Serve; Stop closes the Acceptor, cancels
// the run context, and stops the pool. SetConfig may only be called while
// the server is not running — the acceptor/engine wiring is rebuilt
// wholesale on the next Start, so there is nothing to apply in place.
//
// # Health
//
// Health reports a coarse readiness classification (running, stopped,
// degraded) independent of the metrics package's Prometheus gauges — useful
// behind a liveness/readiness probe that shouldn't need a Prometheus client
// to answer.
//
// # Port helpers
//
// PortNotUse and PortInUse dial-probe a listen address to detect a port
// conflict before binding, dialing 127.0.0.1 in place of a wildcard or IPv6
// any-address since those aren't themselves dialable.
package httpserver
