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

// Package router is a pattern-trie matching (method, path) to a registered
// handler: literal segments beat named parameters beat a trailing
// wildcard, matched against the percent-decoded path with a path-traversal
// guard.
package router

import (
	"net/http"
	"time"
)

// DefaultCORSMethods is the default Configuration.corsMethods list.
var DefaultCORSMethods = []string{"DELETE", "GET", "OPTIONS", "POST", "PUT"}

// Request is the captured, read-only view of one incoming HTTP/2 request.
type Request struct {
	Method    string
	Path      string
	Query     string
	Headers   map[string][]string
	Remote    string
	Timestamp time.Time
	Body      []byte
}

// RoutingRequest is passed to a Handler: the captured Request plus the
// path parameters this route's pattern captured.
type RoutingRequest struct {
	Request *Request
	Params  map[string]string
}

// Response is what a Handler builds to describe the reply.
type Response struct {
	Status      int
	Headers     http.Header
	Body        []byte
	BodyFunc    func(p []byte) (n int, more bool)
	Compressed  bool
}

// NewResponse returns an empty 200 Response with an initialized header map.
func NewResponse() *Response {
	return &Response{Status: http.StatusOK, Headers: make(http.Header)}
}

// Handler handles one matched route.
type Handler func(rr *RoutingRequest) *Response

// Match is the outcome of a successful Route lookup.
type Match struct {
	Handler Handler
	Params  map[string]string
}

// Router is a read-only-after-build (method, path) dispatch table.
type Router interface {
	// Add registers handler for method and pattern. pattern syntax is
	// "/literal/{param}/..." with at most one trailing wildcard "*".
	// Re-registering the same (method, pattern) replaces the handler.
	Add(method, pattern string, handler Handler) error

	// Route returns the matched handler and captured params for
	// (method, path). ok is false when no pattern matches the path, and
	// also when the matching pattern has no handler for method.
	Route(method, path string) (m Match, ok bool)

	// CanRoute reports whether any pattern matches path for method.
	CanRoute(method, path string) bool

	// AllowedMethods returns every method registered against a pattern
	// that matches path, used to build the 405 Allow header.
	AllowedMethods(path string) []string
}

// New returns an empty Router.
func New() Router {
	return &trie{root: newNode()}
}
