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

// Command h2ctl is an illustrative thin client: it dials a running h2kit
// server and issues a single request, printing the response status and
// body. A worked example of the client package, not a general-purpose
// HTTP tool.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	spfcbr "github.com/spf13/cobra"

	"github.com/h2kit/server/client"
	libcbr "github.com/h2kit/server/cobra"
	"github.com/h2kit/server/logger"
	libver "github.com/h2kit/server/version"
)

func main() {
	var (
		addr    string
		method  string
		path    string
		timeout time.Duration
	)

	app := libcbr.New()
	app.SetVersion(libver.NewVersion(libver.License_MIT, "h2ctl",
		"illustrative h2kit client", "", "dev", "0.0.0", "h2kit", "H2CTL", nil, 0))
	app.Init()

	app.AddFlagString(true, &addr, "addr", "a", "127.0.0.1:8443", "server address (host:port)")
	app.AddFlagString(true, &method, "method", "X", "GET", "request method")
	app.AddFlagString(true, &path, "path", "p", "/", "request path")
	app.AddFlagDuration(true, &timeout, "timeout", "t", 5*time.Second, "request timeout")

	root := app.Cobra()
	root.RunE = func(cmd *spfcbr.Command, args []string) error {
		return request(addr, method, path, timeout)
	}

	if err := app.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func request(addr, method, path string, timeout time.Duration) error {
	log := logger.New(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg := client.DefaultConfig()
	cfg.Log = func() logger.Logger { return log }

	sess, err := client.Dial(ctx, addr, cfg)
	if err != nil {
		return fmt.Errorf("h2ctl: dial %s: %w", addr, err)
	}
	defer func() { _ = sess.Shutdown(context.Background()) }()

	done := make(chan error, 1)
	var body []byte

	req := &client.Request{
		Method:    method,
		Path:      path,
		Authority: addr,
		OnResponse: func(r *client.Response) {
			_, _ = color.New(color.FgGreen).Printf("status: %d\n", r.Status)
			r.OnData(func(chunk []byte) { body = append(body, chunk...) })
		},
		OnClose: func(e error) { done <- e },
	}

	if _, err := sess.Submit(req); err != nil {
		return fmt.Errorf("h2ctl: submit: %w", err)
	}

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("h2ctl: stream closed with error: %w", err)
		}
	case <-ctx.Done():
		return fmt.Errorf("h2ctl: timed out waiting for response")
	}

	fmt.Println(string(body))
	return nil
}
