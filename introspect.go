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

import "sync/atomic"

// Read-only accessors for monitoring.  Holders counts are global across all
// goroutines; Holds counts are the calling goroutine's own.  Both are
// instantaneous snapshots and may be stale by the time the caller looks at
// them.

func (m *Mutex) ISHolders() int {
	return int(extractIS(atomic.LoadUint64(&m.state)))
}

func (m *Mutex) IXHolders() int {
	return int(extractIX(atomic.LoadUint64(&m.state)))
}

func (m *Mutex) SHolders() int {
	return int(extractS(atomic.LoadUint64(&m.state)))
}

func (m *Mutex) XHolders() int {
	return int(extractX(atomic.LoadUint64(&m.state)))
}

// holds short-circuits on an empty global field before paying for the
// holder lookup.
func (m *Mutex) holds(unit uint64) int {
	if field(atomic.LoadUint64(&m.state), unit) == 0 {
		return 0
	}
	return int(field(m.me().held.Load(), unit))
}

func (m *Mutex) ISHolds() int {
	return m.holds(isUnit)
}

func (m *Mutex) IXHolds() int {
	return m.holds(ixUnit)
}

func (m *Mutex) SHolds() int {
	return m.holds(sUnit)
}

func (m *Mutex) XHolds() int {
	return m.holds(xUnit)
}
