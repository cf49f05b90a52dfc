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

import (
	"sync/atomic"

	"github.com/petermattis/goid"
)

// holder mirrors one goroutine's contribution to the lock's state word.
// held uses the identical field layout, so `state - held` has a zero field
// wherever only the owning goroutine contributes; that subtraction is how
// the admission checks distinguish self-reentrancy from real contention.
//
// Only the owning goroutine writes held.  It is atomic anyway because a
// releasing goroutine reads a parked waiter's counter when deciding whether
// to propagate a wake-up.
type holder struct {
	gid  int64
	held atomic.Uint64
}

func (h *holder) add(unit uint64) {
	h.held.Store(h.held.Load() + unit)
}

func (h *holder) sub(unit uint64) {
	h.held.Store(h.held.Load() - unit)
}

// me returns the calling goroutine's holder, creating it on first use.
// Holders are sparse and live for the goroutine's lifetime.
//
// The single-slot cache short-circuits the registry lookup when the same
// goroutine performs successive operations, which is the overwhelmingly
// common case.  A stale slot is harmless: the gid comparison rejects it and
// we fall back to the registry.
func (m *Mutex) me() *holder {
	gid := goid.Get()
	if h := m.last.Load(); h != nil && h.gid == gid {
		return h
	}
	if v, ok := m.holders.Load(gid); ok {
		h := v.(*holder)
		m.last.Store(h)
		return h
	}
	h := &holder{gid: gid}
	m.holders.Store(gid, h)
	m.last.Store(h)
	return h
}
