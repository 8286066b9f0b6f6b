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

// Command h2srvd is an illustrative daemon: it loads a PoolServerConfig from
// a YAML file, serves a handful of example routes over HTTP/2, and exposes
// Prometheus metrics on an extra plaintext listener. Not a deployment
// target, just a worked example of wiring config, httpserver, and metrics
// together the way a real h2kit operator would.
package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	spfcbr "github.com/spf13/cobra"
	"github.com/spf13/viper"

	libcbr "github.com/h2kit/server/cobra"
	"github.com/h2kit/server/config"
	"github.com/h2kit/server/httpserver"
	"github.com/h2kit/server/logger"
	"github.com/h2kit/server/metrics"
	"github.com/h2kit/server/router"
	libver "github.com/h2kit/server/version"
)

func exampleRouter() router.Router {
	rt := router.New()

	_ = rt.Add(http.MethodGet, "/", func(rr *router.RoutingRequest) *router.Response {
		resp := router.NewResponse()
		resp.Headers.Set("content-type", "text/plain; charset=utf-8")
		resp.Body = []byte("h2kit example server\n")
		return resp
	})

	_ = rt.Add(http.MethodGet, "/healthz", func(rr *router.RoutingRequest) *router.Response {
		resp := router.NewResponse()
		resp.Headers.Set("content-type", "text/plain; charset=utf-8")
		resp.Body = []byte("ok\n")
		return resp
	})

	return rt
}

func serveMetrics(addr string, rec metrics.Recorder) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(rec.Gatherer(), promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		_ = srv.ListenAndServe()
	}()
}

func main() {
	var configFile string
	var metricsAddr string

	log := logger.New(context.Background())

	app := libcbr.New()
	app.SetVersion(libver.NewVersion(libver.License_MIT, "h2srvd",
		"illustrative h2kit server daemon", "", "dev", "0.0.0", "h2kit", "H2SRVD", nil, 0))
	app.SetLogger(func() logger.Logger { return log })
	app.Init()

	if err := app.SetFlagConfig(true, &configFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	app.AddFlagString(true, &metricsAddr, "metrics-listen", "m", "127.0.0.1:9090", "bind address for the Prometheus /metrics endpoint")

	root := app.Cobra()
	root.RunE = func(cmd *spfcbr.Command, args []string) error {
		return run(configFile, metricsAddr, log)
	}

	_, _ = color.New(color.FgCyan).Println("h2srvd starting")

	if err := app.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configFile, metricsAddr string, log logger.Logger) error {
	if configFile == "" {
		return fmt.Errorf("h2srvd: --config is required")
	}

	v := viper.New()
	v.SetConfigFile(configFile)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("h2srvd: reading config: %w", err)
	}

	pcfg, err := config.New(v).Load()
	if err != nil {
		return fmt.Errorf("h2srvd: loading config: %w", err)
	}

	rec := metrics.NewRecorder("h2srvd")
	pcfg = pcfg.MapUpdate(func(cfg httpserver.Config) httpserver.Config {
		cfg.ExtraProcess = metrics.ExtraProcess(rec)
		cfg.ConnHook = func(c net.Conn) net.Conn { return metrics.WrapConn(c, rec) }
		return cfg
	})

	pool, perr := pcfg.Build(exampleRouter(), func() logger.Logger { return log })
	if perr != nil {
		return fmt.Errorf("h2srvd: building pool: %w", perr)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := pool.Start(ctx); err != nil {
		return fmt.Errorf("h2srvd: starting pool: %w", err)
	}

	serveMetrics(metricsAddr, rec)
	log.Info("h2srvd: pool started", nil, "metrics", metricsAddr)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()

	return pool.Stop(stopCtx)
}
