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

// Package stream models one HTTP/2 stream's request/response lifecycle:
// header multimap, accumulated body, response source, and per-stream flow
// control credit.
package stream

import "strings"

// Value is one occurrence of a header field.
type Value struct {
	Value     string
	Sensitive bool
}

// HeaderMap is a lower-cased multimap preserving insertion order within
// same-keyed groups, matching HPACK's already-normalized field names.
type HeaderMap struct {
	order []string
	vals  map[string][]Value
}

// NewHeaderMap returns an empty HeaderMap.
func NewHeaderMap() *HeaderMap {
	return &HeaderMap{vals: make(map[string][]Value)}
}

// Add appends value under the lower-cased name, recording name in arrival
// order the first time it is seen.
func (h *HeaderMap) Add(name, value string, sensitive bool) {
	k := strings.ToLower(name)

	if _, ok := h.vals[k]; !ok {
		h.order = append(h.order, k)
	}

	h.vals[k] = append(h.vals[k], Value{Value: value, Sensitive: sensitive})
}

// Get returns the first value stored under name, if any.
func (h *HeaderMap) Get(name string) (string, bool) {
	vs, ok := h.vals[strings.ToLower(name)]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0].Value, true
}

// Values returns every value stored under name, in insertion order.
func (h *HeaderMap) Values(name string) []Value {
	return h.vals[strings.ToLower(name)]
}

// Has reports whether name was set at least once.
func (h *HeaderMap) Has(name string) bool {
	_, ok := h.vals[strings.ToLower(name)]
	return ok
}

// Names returns every distinct header name, in first-seen order.
func (h *HeaderMap) Names() []string {
	return append([]string(nil), h.order...)
}

// Len returns the number of distinct header names.
func (h *HeaderMap) Len() int {
	return len(h.order)
}
