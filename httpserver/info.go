/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
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

package httpserver

func (o *srv) GetName() string {
	o.mu.RLock()
	defer o.mu.RUnlock()

	return o.cfg.name()
}

func (o *srv) GetBindable() string {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if u := o.cfg.GetListen(); u != nil {
		return u.Host
	}

	return ""
}

func (o *srv) GetExpose() string {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if u := o.cfg.GetExpose(); u != nil {
		return u.String()
	}

	return ""
}

func (o *srv) IsDisable() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()

	return o.cfg.Disabled
}

func (o *srv) IsTLS() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()

	return o.cfg.IsTLS()
}
