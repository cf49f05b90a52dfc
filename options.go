// Copyright 2020 Nathan Taylor (nbtaylor@gmail.com)
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies
// of the Software, and to permit persons to whom the Software is furnished to do
// so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package multilock

import "github.com/rs/zerolog"

// Option configures a Mutex at construction time.
type Option func(*Mutex)

// WithParent nests the new Mutex under p.  Acquisitions then cascade the
// matching intention mode up the parent chain.  The caller is responsible
// for building a tree: the parent link is immutable, p must not (transitively)
// point back at the child, and p must outlive the child.
func WithParent(p *Mutex) Option {
	return func(m *Mutex) {
		m.parent = p
	}
}

// WithLogger routes slow-path diagnostics (parking, wake-ups, wake
// propagation) to l at debug level.  The admission fast path never touches
// the logger.  The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(m *Mutex) {
		m.logger = l
	}
}
