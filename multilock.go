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

// Package multilock implements a multi-granularity lock supporting the five
// classical modes of Gray et al. ("Granularity of Locks in a Shared Data
// Base", 1975).
//
// Consider a concurrent tree-like data structure: a database index, or a trie
// whose intermediary nodes represent prefixes of some larger string.  A larger
// system would like concurrent read and write access to entries, including
// the option of locking not just the leaves (one entry) but intermediary
// nodes (all entries below them).  A node locked in a shared (`S`) or
// exclusive (`X`) state implicitly covers its whole subtree, so before taking
// S or X on a node, each ancestor must be marked with the matching
// _intention_: `IS` for a reader descending toward an S, `IX` for a writer
// descending toward an X.  A fifth mode, `SIX`, reads a whole subtree while
// reserving the right to write pieces of it; it is exactly the simultaneous
// hold of S and IX and is represented that way here rather than as a state of
// its own.
//
// Whether a request may enter alongside the states already held is given by
// the classic compatibility matrix.  If a transition is not allowed, the
// caller blocks:
//
//	+---------------+----------+-----------+-----------+------------+------------+-------------+
//	|Request/Holding| Unlocked | Holding X | Holding S | Holding IX | Holding IS | Holding SIX |
//	+---------------+----------+-----------+-----------+------------+------------+-------------+
//	|Request X      |   Yes    |    No     |    No     |     No     |     No     |     No      |
//	|Request S      |   Yes    |    No     |    Yes    |     No     |     Yes    |     No      |
//	|Request IX     |   Yes    |    No     |    No     |     Yes    |     Yes    |     No      |
//	|Request IS     |   Yes    |    No     |    Yes    |     Yes    |     Yes    |     Yes     |
//	+---------------+----------+-----------+-----------+------------+------------+-------------+
//
// "Holding", above, means held by somebody else.  Every mode is reentrant,
// and a goroutine's own holds never block it: the sole S holder may take X
// (an upgrade), an IX holder may add S (forming SIX), and the X owner may
// take anything at all.  Per-goroutine hold counters laid out identically to
// the lock's packed state word make this a single subtraction: whatever is
// left after removing the caller's own contribution is the contention that
// matters.
//
// A Mutex may be nested under a parent, in which case taking S or IS on the
// child first takes IS on the parent (transitively to the root), taking X or
// IX first takes IX, and taking SIX takes IS (for its S half) and then IX
// (for its IX half).  Releases cascade back up in reverse.
package multilock

import (
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Mutex is a multi-granularity lock.  The zero value is not usable; call
// New.  A Mutex must not be copied after first use.
//
// Acquisitions block until admitted; they are not interruptible and do not
// time out.  Waiters queue FIFO but admission is non-strict: a compatible
// late arrival may enter ahead of a parked incompatible one.
type Mutex struct {
	// state packs the four hold counts; see state.go.  CAS-only after
	// construction.
	state uint64

	// owner is the goroutine id of the X holder, 0 when X is free.
	// (The runtime never assigns goroutine id 0.)
	owner atomic.Int64

	parent *Mutex
	logger zerolog.Logger

	// holders maps goroutine id -> *holder.  Entries are never removed;
	// last is a best-effort single-slot cache over it.
	holders sync.Map
	last    atomic.Pointer[holder]

	qmu sync.Mutex
	q   []*waiter
}

// New returns a new Mutex configured by opts.
func New(opts ...Option) *Mutex {
	m := &Mutex{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Parent returns the lock this Mutex is nested under, or nil.
func (m *Mutex) Parent() *Mutex {
	return m.parent
}

// ISLock declares the caller's intention to take S somewhere below this
// node.  Blocks only while another goroutine holds X.
func (m *Mutex) ISLock() {
	if m.parent != nil {
		m.parent.ISLock()
	}
	m.acquire(isUnit, false)
}

// ISUnlock releases one IS hold.
func (m *Mutex) ISUnlock() {
	m.releaseShared(isUnit)
	if m.parent != nil {
		m.parent.ISUnlock()
	}
}

// IXLock declares the caller's intention to take X or SIX somewhere below
// this node.  Blocks while another goroutine holds X or S.
func (m *Mutex) IXLock() {
	if m.parent != nil {
		m.parent.IXLock()
	}
	m.acquire(ixUnit, false)
}

// IXUnlock releases one IX hold.
func (m *Mutex) IXUnlock() {
	m.releaseShared(ixUnit)
	if m.parent != nil {
		m.parent.IXUnlock()
	}
}

// SLock takes the Mutex for shared read access, first taking IS on the
// parent chain.  Blocks while another goroutine holds X or IX.
func (m *Mutex) SLock() {
	if m.parent != nil {
		m.parent.ISLock()
	}
	m.acquire(sUnit, false)
}

// SUnlock releases one S hold, then the parent chain's matching IS.
func (m *Mutex) SUnlock() {
	m.releaseShared(sUnit)
	if m.parent != nil {
		m.parent.ISUnlock()
	}
}

// XLock takes the Mutex for exclusive write access, first taking IX on the
// parent chain.  Blocks while any other goroutine holds anything.
func (m *Mutex) XLock() {
	if m.parent != nil {
		m.parent.IXLock()
	}
	m.acquire(xUnit, true)
}

// XUnlock releases one X hold, then the parent chain's matching IX.
// Panics with ErrNotOwner if the caller is not the exclusive owner.
func (m *Mutex) XUnlock() {
	m.releaseX()
	if m.parent != nil {
		m.parent.IXUnlock()
	}
}

// SIXLock takes S and IX together: read everything below this node, with
// the right to take X on parts of it.  Equivalent to SLock followed by
// IXLock.
//
// Two goroutines racing SIXLock on the same Mutex can deadlock: each may be
// admitted for the S half and then wait forever on the other's S before its
// IX half.  Callers needing concurrent SIX requests must serialize them
// externally, as with any hold-and-wait acquisition of multiple modes.
func (m *Mutex) SIXLock() {
	m.SLock()
	m.IXLock()
}

// SIXUnlock releases the composite taken by SIXLock.
func (m *Mutex) SIXUnlock() {
	m.IXUnlock()
	m.SUnlock()
}
