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

	"github.com/h2kit/server/httpserver"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Pool", func() {
	var p httpserver.Pool

	BeforeEach(func() {
		p = httpserver.NewPool()
	})

	It("starts empty", func() {
		Expect(p.Len()).To(Equal(0))
		Expect(p.IsRunning()).To(BeFalse())
	})

	It("stores and loads servers by bind address", func() {
		cfg := httpserver.Config{
			Name:   "a",
			Listen: "127.0.0.1:19744",
			Expose: "http://127.0.0.1:19744",
		}
		srv, err := httpserver.New(cfg, routerForTest(), nil)
		Expect(err).To(BeNil())

		p.Store(srv)

		Expect(p.Len()).To(Equal(1))
		Expect(p.Has("127.0.0.1:19744")).To(BeTrue())
		Expect(p.Load("127.0.0.1:19744")).To(Equal(srv))

		p.Delete("127.0.0.1:19744")
		Expect(p.Has("127.0.0.1:19744")).To(BeFalse())
	})

	It("builds a pool from PoolServerConfig and starts/stops every member", func() {
		cfgs := httpserver.PoolServerConfig{
			{Name: "a", Listen: "127.0.0.1:19745", Expose: "http://127.0.0.1:19745"},
			{Name: "b", Listen: "127.0.0.1:19746", Expose: "http://127.0.0.1:19746"},
		}

		built, err := cfgs.Build(routerForTest(), nil)
		Expect(err).To(BeNil())
		Expect(built.Len()).To(Equal(2))

		ctx := context.Background()
		Expect(built.Start(ctx)).To(BeNil())
		Expect(built.IsRunning()).To(BeTrue())
		Expect(built.Health()).To(HaveLen(2))

		Expect(built.Stop(ctx)).To(BeNil())
		Expect(built.IsRunning()).To(BeFalse())
	})

	It("Build collects every failing entry under one error", func() {
		cfgs := httpserver.PoolServerConfig{
			{Name: "a", Listen: "127.0.0.1:19747", Expose: "http://127.0.0.1:19747"},
			{},
		}

		_, err := cfgs.Build(routerForTest(), nil)
		Expect(err).ToNot(BeNil())
	})
})
