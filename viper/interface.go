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

// Package viper is a thin handle around a *viper.Viper, the shape the cobra
// package's FuncViper passes around instead of the bare spf13 type.
package viper

import (
	spfvpr "github.com/spf13/viper"
)

// Viper hands back the underlying spf13/viper instance it wraps.
type Viper interface {
	Viper() *spfvpr.Viper
}

type handle struct {
	v *spfvpr.Viper
}

// New wraps an existing *viper.Viper. A nil v wraps a fresh instance.
func New(v *spfvpr.Viper) Viper {
	if v == nil {
		v = spfvpr.New()
	}
	return &handle{v: v}
}

func (h *handle) Viper() *spfvpr.Viper {
	return h.v
}
