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

//go:build unix

package acceptor

import (
	"context"
	"net"
	"os"

	"golang.org/x/sys/unix"
)

// listenBacklog binds address with a listen queue sized to backlog.
// backlog < 0 defers to net.ListenConfig, which asks the OS for its default
// (SOMAXCONN) queue the way net.Listen normally would.
func listenBacklog(ctx context.Context, network, address string, backlog int) (net.Listener, error) {
	if backlog < 0 {
		return listenConfig.Listen(ctx, network, address)
	}

	addr, err := net.ResolveTCPAddr(network, address)
	if err != nil {
		return nil, err
	}

	if ip4 := addr.IP.To4(); ip4 != nil || addr.IP == nil {
		sa := &unix.SockaddrInet4{Port: addr.Port}
		copy(sa.Addr[:], ip4)
		return listenRaw(unix.AF_INET, sa, backlog, address)
	}

	sa := &unix.SockaddrInet6{Port: addr.Port}
	copy(sa.Addr[:], addr.IP.To16())
	return listenRaw(unix.AF_INET6, sa, backlog, address)
}

// listenRaw performs the socket/setsockopt/bind/listen sequence by hand so
// backlog reaches the kernel's listen(2) call, then hands the fd to net as
// a regular net.Listener.
func listenRaw(domain int, sa unix.Sockaddr, backlog int, address string) (net.Listener, error) {
	fd, err := unix.Socket(domain, unix.SOCK_STREAM, unix.IPPROTO_TCP)
	if err != nil {
		return nil, err
	}

	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		_ = unix.Close(fd)
		return nil, err
	}

	if err := unix.Bind(fd, sa); err != nil {
		_ = unix.Close(fd)
		return nil, err
	}

	if err := unix.Listen(fd, backlog); err != nil {
		_ = unix.Close(fd)
		return nil, err
	}

	f := os.NewFile(uintptr(fd), address)
	ln, err := net.FileListener(f)
	_ = f.Close()
	if err != nil {
		return nil, err
	}

	return ln, nil
}
