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

import "errors"

// These indicate caller bugs, not contention; like the standard library's
// sync package, the lock panics at the misusing call site with one of the
// sentinel values below.  Contention never produces an error: an acquirer
// that cannot be admitted blocks instead.
var (
	// ErrNotHeld is the panic value when a goroutine releases a state
	// context it holds zero times.
	ErrNotHeld = errors.New("multilock: unlock of unheld state")

	// ErrNotOwner is the panic value when XUnlock is called by a
	// goroutine other than the current exclusive owner.
	ErrNotOwner = errors.New("multilock: X unlock by non-owner")

	// ErrOverflow is the panic value when a hold count would exceed the
	// 16 bits its state-word field can record.
	ErrOverflow = errors.New("multilock: hold count overflow")

	// ErrUnsupported is the panic value for locker-view operations the
	// lock deliberately does not provide (try, timed, interruptible).
	ErrUnsupported = errors.New("multilock: operation not supported")
)
