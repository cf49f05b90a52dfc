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

import "sync"

// readLocker and writeLocker present the S and X modes through the standard
// sync.Locker interface, so a Mutex can stand in wherever a plain lock is
// expected.  Both also carry a TryLock so they satisfy the extended locker
// shape of sync.Mutex, but non-blocking acquisition is not part of this
// lock's contract and the method panics with ErrUnsupported.

type readLocker struct {
	m *Mutex
}

func (r readLocker) Lock()   { r.m.SLock() }
func (r readLocker) Unlock() { r.m.SUnlock() }

func (r readLocker) TryLock() bool { panic(ErrUnsupported) }

type writeLocker struct {
	m *Mutex
}

func (w writeLocker) Lock()   { w.m.XLock() }
func (w writeLocker) Unlock() { w.m.XUnlock() }

func (w writeLocker) TryLock() bool { panic(ErrUnsupported) }

// RLocker returns a sync.Locker view of the S mode (parent cascade
// included).
func (m *Mutex) RLocker() sync.Locker {
	return readLocker{m}
}

// WLocker returns a sync.Locker view of the X mode (parent cascade
// included).
func (m *Mutex) WLocker() sync.Locker {
	return writeLocker{m}
}
