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

package router

import (
	"net/url"
	"strings"
	"sync"
)

// node is one segment level of the pattern trie. A segment is either a
// literal (matched via literals), a single named parameter ("{name}",
// held in param/paramName), or - only as the final segment - a wildcard
// ("*", held in wildcard) that swallows the remainder of the path.
type node struct {
	literals map[string]*node

	param     *node
	paramName string

	wildcard *node

	handlers map[string]Handler
}

func newNode() *node {
	return &node{literals: make(map[string]*node)}
}

type trie struct {
	mu   sync.RWMutex
	root *node
}

func splitPattern(pattern string) ([]string, error) {
	if pattern == "" || pattern[0] != '/' {
		return nil, ErrorPatternInvalid.Error(nil)
	}

	trimmed := strings.Trim(pattern, "/")
	if trimmed == "" {
		return []string{}, nil
	}

	segs := strings.Split(trimmed, "/")

	for i, s := range segs {
		if s == "*" && i != len(segs)-1 {
			return nil, ErrorPatternInvalid.Error(nil)
		}
	}

	return segs, nil
}

func (t *trie) Add(method, pattern string, handler Handler) error {
	if handler == nil || method == "" {
		return ErrorPatternInvalid.Error(nil)
	}

	segs, err := splitPattern(pattern)
	if err != nil {
		return err
	}

	method = strings.ToUpper(method)

	t.mu.Lock()
	defer t.mu.Unlock()

	n := t.root

	for _, s := range segs {
		switch {
		case s == "*":
			if n.wildcard == nil {
				n.wildcard = newNode()
			}
			n = n.wildcard

		case strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") && len(s) > 2:
			name := s[1 : len(s)-1]
			if n.param == nil {
				n.param = newNode()
				n.param.paramName = name
			}
			n = n.param

		default:
			c, ok := n.literals[s]
			if !ok {
				c = newNode()
				n.literals[s] = c
			}
			n = c
		}
	}

	if n.handlers == nil {
		n.handlers = make(map[string]Handler)
	}
	n.handlers[method] = handler

	return nil
}

// splitPath percent-decodes and segments path, rejecting any ".." segment
// (traversal attempt) with ok == false.
func splitPath(path string) (segs []string, ok bool) {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return []string{}, true
	}

	raw := strings.Split(trimmed, "/")
	segs = make([]string, 0, len(raw))

	for _, s := range raw {
		dec, err := url.PathUnescape(s)
		if err != nil {
			return nil, false
		}

		for _, part := range strings.Split(dec, "/") {
			if part == ".." || part == "." {
				return nil, false
			}
		}

		segs = append(segs, dec)
	}

	return segs, true
}

// walk descends segs against n depth-first, preferring literal over named
// over wildcard at every level, and returns the first leaf with any
// registered handler along with the params collected on the way.
func walk(n *node, segs []string, params map[string]string) *node {
	if len(segs) == 0 {
		if len(n.handlers) > 0 {
			return n
		}
		// A wildcard node can also match zero remaining segments.
		if n.wildcard != nil && len(n.wildcard.handlers) > 0 {
			return n.wildcard
		}
		return nil
	}

	head, rest := segs[0], segs[1:]

	if c, ok := n.literals[head]; ok {
		if m := walk(c, rest, params); m != nil {
			return m
		}
	}

	if n.param != nil {
		params[n.param.paramName] = head
		if m := walk(n.param, rest, params); m != nil {
			return m
		}
		delete(params, n.param.paramName)
	}

	if n.wildcard != nil && len(n.wildcard.handlers) > 0 {
		params["*"] = strings.Join(segs, "/")
		return n.wildcard
	}

	return nil
}

func (t *trie) lookup(path string) (n *node, params map[string]string, ok bool) {
	segs, valid := splitPath(path)
	if !valid {
		return nil, nil, false
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	params = make(map[string]string)
	n = walk(t.root, segs, params)

	return n, params, n != nil
}

func (t *trie) Route(method, path string) (Match, bool) {
	n, params, ok := t.lookup(path)
	if !ok {
		return Match{}, false
	}

	h, ok := n.handlers[strings.ToUpper(method)]
	if !ok {
		return Match{}, false
	}

	return Match{Handler: h, Params: params}, true
}

func (t *trie) CanRoute(method, path string) bool {
	n, _, ok := t.lookup(path)
	if !ok {
		return false
	}

	_, ok = n.handlers[strings.ToUpper(method)]
	return ok
}

func (t *trie) AllowedMethods(path string) []string {
	n, _, ok := t.lookup(path)
	if !ok {
		return nil
	}

	out := make([]string, 0, len(n.handlers))
	for m := range n.handlers {
		out = append(out, m)
	}

	return out
}
