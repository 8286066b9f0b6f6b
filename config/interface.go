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

// Package config loads an httpserver.PoolServerConfig from any source
// spf13/viper supports (file, env, remote KV), the same
// read-with-viper/decode-with-mapstructure/validate-with-validator idiom
// the teacher's own config package builds on, narrowed here to the one
// struct this module cares about instead of a generic component registry.
package config

import (
	"github.com/spf13/viper"

	"github.com/h2kit/server/httpserver"
)

// Key is the default top-level viper key a PoolServerConfig is read from.
const Key = "servers"

// Loader reads and validates an httpserver.PoolServerConfig from a viper
// instance the caller owns (already pointed at a file, env prefix, or
// remote provider).
type Loader interface {
	// Load decodes the value at Key (or the key set via WithKey) into a
	// PoolServerConfig and runs PoolServerConfig.Validate over it.
	Load() (httpserver.PoolServerConfig, error)

	// WithKey overrides the viper key Load reads from; returns the
	// Loader for chaining.
	WithKey(key string) Loader
}

type loader struct {
	v   *viper.Viper
	key string
}

// New wraps v; v must already be configured with a config file path (or
// equivalent) via viper's own SetConfigFile/AddConfigPath/ReadInConfig.
func New(v *viper.Viper) Loader {
	return &loader{v: v, key: Key}
}

func (l *loader) WithKey(key string) Loader {
	l.key = key
	return l
}

func (l *loader) Load() (httpserver.PoolServerConfig, error) {
	var out httpserver.PoolServerConfig

	if err := l.v.UnmarshalKey(l.key, &out); err != nil {
		return nil, ErrorDecode.Error(err)
	}

	if err := out.Validate(); err != nil {
		return nil, err
	}

	return out, nil
}
