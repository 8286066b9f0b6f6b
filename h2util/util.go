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

// Package h2util collects the small, stateless helpers shared by the
// router, adapter, and client packages: URI splitting, HTTP date
// formatting, status text, and HTTP/2 error-code categorization.
package h2util

import (
	"net/http"
	"net/url"
	"strings"
	"time"
)

// SplitPathQuery splits an HTTP/2 ":path" pseudo-header into its path and
// raw query components, matching net/url's convention of a query with no
// leading "?".
func SplitPathQuery(raw string) (path, query string) {
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		return raw[:i], raw[i+1:]
	}
	return raw, ""
}

// ParseURI validates raw as a request-target and returns its parsed form.
// The empty string and asterisk-form ("*") are rejected; anything else is
// accepted exactly when url.ParseRequestURI accepts it, which covers
// origin-form ("/a/b?c=d") and absolute-form targets. Authority-form is not
// singled out: "127.0.0.1:443" fails to parse, but "example.com:443" parses
// as scheme "example.com" with opaque "443".
func ParseURI(raw string) (*url.URL, error) {
	if raw == "" || raw == "*" {
		return nil, ErrorURIInvalid.Error(nil)
	}

	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return nil, ErrorURIInvalid.Error(err)
	}

	return u, nil
}

// PercentDecode decodes a single percent-encoded path segment, returning
// ok == false on a malformed escape rather than a partially-decoded string.
func PercentDecode(segment string) (decoded string, ok bool) {
	d, err := url.PathUnescape(segment)
	if err != nil {
		return "", false
	}
	return d, true
}

// HTTPDate formats t per RFC 7231's IMF-fixdate, as used in the HTTP
// "date" response header.
func HTTPDate(t time.Time) string {
	return t.UTC().Format(http.TimeFormat)
}

// StatusText returns the standard reason phrase for an HTTP status code,
// falling back to an empty string for unregistered codes exactly as
// net/http.StatusText does.
func StatusText(code int) string {
	return http.StatusText(code)
}

// ErrorCategory classifies an HTTP/2 error code (RFC 7540 §7) into a short
// machine-readable name for logging and metrics labels.
func ErrorCategory(code uint32) string {
	switch code {
	case 0x0:
		return "no_error"
	case 0x1:
		return "protocol_error"
	case 0x2:
		return "internal_error"
	case 0x3:
		return "flow_control_error"
	case 0x4:
		return "settings_timeout"
	case 0x5:
		return "stream_closed"
	case 0x6:
		return "frame_size_error"
	case 0x7:
		return "refused_stream"
	case 0x8:
		return "cancel"
	case 0x9:
		return "compression_error"
	case 0xa:
		return "connect_error"
	case 0xb:
		return "enhance_your_calm"
	case 0xc:
		return "inadequate_security"
	case 0xd:
		return "http_1_1_required"
	default:
		return "unknown_error"
	}
}
