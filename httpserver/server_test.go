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

package httpserver_test

import (
	"context"
	"time"

	"github.com/h2kit/server/httpserver"
	"github.com/h2kit/server/router"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func routerForTest() router.Router {
	rt := router.New()
	_ = rt.Add("GET", "/", func(rr *router.RoutingRequest) *router.Response {
		return router.NewResponse()
	})
	return rt
}

var _ = Describe("Server lifecycle", func() {
	var (
		srv httpserver.Server
		err error
	)

	BeforeEach(func() {
		cfg := httpserver.Config{
			Name:   "test-server",
			Listen: "127.0.0.1:0",
			Expose: "http://127.0.0.1:0",
		}
		srv, err = httpserver.New(cfg, routerForTest(), nil)
		Expect(err).To(BeNil())
	})

	It("rejects a nil router", func() {
		cfg := httpserver.Config{
			Name:   "test-server",
			Listen: "127.0.0.1:0",
			Expose: "http://127.0.0.1:0",
		}
		_, e := httpserver.New(cfg, nil, nil)
		Expect(e).ToNot(BeNil())
	})

	It("is not running before Start", func() {
		Expect(srv.IsRunning()).To(BeFalse())
		Expect(srv.Uptime()).To(Equal(time.Duration(0)))
		Expect(srv.Health().State).To(Equal(httpserver.StateStopped))
	})

	It("starts, reports running, and stops cleanly", func() {
		ctx := context.Background()

		Expect(srv.Start(ctx)).To(BeNil())
		Expect(srv.IsRunning()).To(BeTrue())
		Expect(srv.Health().State).To(Equal(httpserver.StateRunning))

		Expect(srv.Stop(ctx)).To(BeNil())
		Expect(srv.IsRunning()).To(BeFalse())
	})

	It("rejects a second Start while already running", func() {
		ctx := context.Background()

		Expect(srv.Start(ctx)).To(BeNil())
		defer func() { _ = srv.Stop(ctx) }()

		Expect(srv.Start(ctx)).ToNot(BeNil())
	})

	It("rejects Stop when not running", func() {
		Expect(srv.Stop(context.Background())).ToNot(BeNil())
	})

	It("restarts cleanly", func() {
		ctx := context.Background()

		Expect(srv.Start(ctx)).To(BeNil())
		Expect(srv.Restart(ctx)).To(BeNil())
		Expect(srv.IsRunning()).To(BeTrue())

		Expect(srv.Stop(ctx)).To(BeNil())
	})

	It("no-ops Start on a disabled server", func() {
		cfg := httpserver.Config{
			Name:     "disabled",
			Listen:   "127.0.0.1:0",
			Expose:   "http://127.0.0.1:0",
			Disabled: true,
		}
		disabled, e := httpserver.New(cfg, routerForTest(), nil)
		Expect(e).To(BeNil())

		Expect(disabled.Start(context.Background())).To(BeNil())
		Expect(disabled.IsRunning()).To(BeFalse())
	})

	It("rejects SetConfig while running, accepts it while stopped", func() {
		ctx := context.Background()
		Expect(srv.Start(ctx)).To(BeNil())

		bad := *srv.GetConfig()
		Expect(srv.SetConfig(bad)).ToNot(BeNil())

		Expect(srv.Stop(ctx)).To(BeNil())
		Expect(srv.SetConfig(bad)).To(BeNil())
	})
})

var _ = Describe("Port helpers", func() {
	It("PortInUse reports a bound listener as in use", func() {
		const addr = "127.0.0.1:19743"

		cfg := httpserver.Config{
			Name:   "port-probe",
			Listen: addr,
			Expose: "http://" + addr,
		}
		srv, err := httpserver.New(cfg, routerForTest(), nil)
		Expect(err).To(BeNil())

		ctx := context.Background()
		Expect(srv.Start(ctx)).To(BeNil())
		defer func() { _ = srv.Stop(ctx) }()

		Expect(httpserver.PortInUse(ctx, addr)).ToNot(BeNil())
	})

	It("PortNotUse returns an error against an address nothing is listening on", func() {
		err := httpserver.PortNotUse(context.Background(), "127.0.0.1:1")
		Expect(err).ToNot(BeNil())
	})
})
