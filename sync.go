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

// waiter is one parked acquirer.  ch is buffered so a wake-up sent while
// the waiter is between its admission retry and its park cannot be lost.
type waiter struct {
	h    *holder
	unit uint64
	excl bool
	ch   chan struct{}
}

// tryAcquire attempts to register the calling goroutine's holder in the
// state context addressed by unit.  It returns false if the request must
// block; it never blocks itself.  On admission both the state word and the
// holder have been updated.
func (m *Mutex) tryAcquire(unit uint64, h *holder) bool {
	if unit == xUnit {
		return m.tryX(h)
	}
	return m.tryShared(unit, h)
}

// tryShared handles IS, IX and S admission.  Let other be the state minus
// the caller's own holds; the caller's prior modes then never block it:
//
//	IS  admits unless another goroutine holds X.
//	IX  admits unless another goroutine holds X or S.
//	S   admits unless another goroutine holds X or IX.
func (m *Mutex) tryShared(unit uint64, h *holder) bool {
	for {
		c := atomic.LoadUint64(&m.state)
		if extractX(c) != 0 && m.owner.Load() != h.gid {
			return false
		}
		other := c - h.held.Load()
		switch unit {
		case ixUnit:
			if extractS(other) != 0 {
				return false
			}
		case sUnit:
			if extractIX(other) != 0 {
				return false
			}
		}
		if field(c, unit) == maxHolders {
			panic(ErrOverflow)
		}
		if atomic.CompareAndSwapUint64(&m.state, c, c+unit) {
			h.add(unit)
			return true
		}
	}
}

// tryX handles exclusive admission.  Exactly one goroutine may hold X, but
// it may do so recursively, and a goroutine whose holds account for the
// entire state word may upgrade in place.
func (m *Mutex) tryX(h *holder) bool {
	for {
		c := atomic.LoadUint64(&m.state)
		switch {
		case c == 0:
			if atomic.CompareAndSwapUint64(&m.state, c, xUnit) {
				// The store is safe to sequence after the CAS: until it
				// lands, observers see X != 0 with no owner and block,
				// which is the conservative outcome.
				m.owner.Store(h.gid)
				h.add(xUnit)
				return true
			}
		case extractX(c) != 0:
			if m.owner.Load() != h.gid {
				return false
			}
			if extractX(c) == maxHolders {
				panic(ErrOverflow)
			}
			if atomic.CompareAndSwapUint64(&m.state, c, c+xUnit) {
				h.add(xUnit)
				return true
			}
		default:
			// X is free but shared contexts are held.  If any of them
			// belong to another goroutine we must wait; if they are all
			// ours this is a self-upgrade.
			if c-h.held.Load() != 0 {
				return false
			}
			if atomic.CompareAndSwapUint64(&m.state, c, c+xUnit) {
				m.owner.Store(h.gid)
				h.add(xUnit)
				return true
			}
		}
	}
}

// acquire admits the caller into the state context addressed by unit,
// parking it on the waiter queue until admission succeeds.
//
// Admission is deliberately non-strict: a new arrival whose request is
// compatible with the current holders takes the fast path here without
// consulting the queue, even if incompatible acquirers are parked.  That
// keeps every compatible holder running concurrently at the price of
// possible writer starvation, the trade the Gray matrix makes.
func (m *Mutex) acquire(unit uint64, excl bool) {
	h := m.me()
	if m.tryAcquire(unit, h) {
		return
	}

	w := &waiter{h: h, unit: unit, excl: excl, ch: make(chan struct{}, 1)}
	m.qmu.Lock()
	m.q = append(m.q, w)
	m.qmu.Unlock()
	m.logger.Debug().Int64("gid", h.gid).Str("mode", modeName(unit)).Msg("parking")

	for {
		// Re-check after enqueueing: a release between our failed fast
		// path and the append would have seen an empty queue and woken
		// nobody.
		if m.tryAcquire(unit, h) {
			m.depart(w)
			return
		}
		<-w.ch
		m.logger.Debug().Int64("gid", h.gid).Str("mode", modeName(unit)).Msg("woken")
	}
}

// depart removes an admitted waiter from the queue.  A shared acquirer
// then passes its wake-up along if the new head could also be admitted
// against the state it just produced; this gives a run of compatible
// waiters their transitive wake.
func (m *Mutex) depart(w *waiter) {
	m.qmu.Lock()
	for i, q := range m.q {
		if q == w {
			m.q = append(m.q[:i], m.q[i+1:]...)
			break
		}
	}
	var next *waiter
	if !w.excl && len(m.q) > 0 {
		next = m.q[0]
	}
	m.qmu.Unlock()
	if next != nil && m.admissible(next) {
		m.logger.Debug().Int64("gid", next.h.gid).Str("mode", modeName(next.unit)).Msg("propagating wake")
		next.signal()
	}
}

// admissible reports whether w's request would be admitted against the
// current state.  It is evaluated with w's own hold counter, so a parked
// upgrader is judged by the same self-exempting rules it will re-run on
// wake-up.
func (m *Mutex) admissible(w *waiter) bool {
	c := atomic.LoadUint64(&m.state)
	if extractX(c) != 0 {
		return m.owner.Load() == w.h.gid
	}
	other := c - w.h.held.Load()
	switch w.unit {
	case isUnit:
		return true
	case ixUnit:
		return extractS(other) == 0
	case sUnit:
		return extractIX(other) == 0
	default:
		return other == 0
	}
}

func (w *waiter) signal() {
	select {
	case w.ch <- struct{}{}:
	default:
	}
}

// wakeHead signals the oldest parked waiter, which re-runs its admission
// check against the fresh state and either enters or re-parks.
func (m *Mutex) wakeHead() {
	m.qmu.Lock()
	var head *waiter
	if len(m.q) > 0 {
		head = m.q[0]
	}
	m.qmu.Unlock()
	if head != nil {
		head.signal()
	}
}

// releaseShared backs the caller out of one hold of a shared context.
// The holder is decremented before the state word so the caller's counter
// never reads higher than its contribution to the published state.
func (m *Mutex) releaseShared(unit uint64) {
	h := m.me()
	held := h.held.Load()
	if field(held, unit) == 0 {
		panic(ErrNotHeld)
	}
	h.sub(unit)

	var c uint64
	for {
		c = atomic.LoadUint64(&m.state)
		if atomic.CompareAndSwapUint64(&m.state, c, c-unit) {
			break
		}
	}

	// Only bother the queue when the departure could actually unblock
	// someone: this context's last hold went away, or no writer is
	// pinning the lock anyway.
	newState := c - unit
	if field(newState, unit) == 0 || extractX(newState) == 0 {
		m.wakeHead()
	}
}

// releaseX backs the exclusive owner out of one X hold.  When the final
// hold is released the owner slot is cleared before the decrement is
// published, so no observer can see a free X with a stale owner.
func (m *Mutex) releaseX() {
	h := m.me()
	held := h.held.Load()
	if extractX(held) == 0 || m.owner.Load() != h.gid {
		panic(ErrNotOwner)
	}
	h.sub(xUnit)
	last := extractX(held) == 1
	if last {
		m.owner.Store(0)
	}

	for {
		c := atomic.LoadUint64(&m.state)
		if atomic.CompareAndSwapUint64(&m.state, c, c-xUnit) {
			break
		}
	}
	if last {
		m.wakeHead()
	}
}
