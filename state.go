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

// The lock's whole admission state lives in one uint64 so that a single
// compare-and-swap can validate an admission decision against a consistent
// snapshot of all four hold counts:
//
//     |63      48|47      32|31     16|15      0|
//      \    X   / \    S   / \   IX  / \   IS  /
//
// Each field is a count of outstanding holds in that state context, summed
// across all goroutines.  Because the fields are 16-bit aligned, adding or
// subtracting a field's unit constant adjusts exactly that field, provided
// the field does not wrap; overflow is checked before every increment.

const isOffset uint64 = 0
const isMask uint64 = (1 << 16) - 1
const isUnit uint64 = 1 << isOffset

const ixOffset uint64 = 16
const ixMask uint64 = ((1 << 32) - 1) & ^((1 << 16) - 1)
const ixUnit uint64 = 1 << ixOffset

const sOffset uint64 = 32
const sMask uint64 = ((1 << 48) - 1) & ^((1 << 32) - 1)
const sUnit uint64 = 1 << sOffset

const xOffset uint64 = 48
const xMask uint64 = 0xffffffffffffffff & ^((1 << 48) - 1)
const xUnit uint64 = 1 << xOffset

// maxHolders is the most holds a single field can record.  Recursive
// acquisition past this depth is a caller bug and panics rather than
// silently corrupting the neighbouring field.
const maxHolders = (1 << 16) - 1

func extractIS(state uint64) uint64 {
	return (state & isMask) >> isOffset
}

func extractIX(state uint64) uint64 {
	return (state & ixMask) >> ixOffset
}

func extractS(state uint64) uint64 {
	return (state & sMask) >> sOffset
}

func extractX(state uint64) uint64 {
	return (state & xMask) >> xOffset
}

// field returns the count stored in whichever field unit addresses.
func field(state, unit uint64) uint64 {
	return (state / unit) & maxHolders
}

func modeName(unit uint64) string {
	switch unit {
	case isUnit:
		return "IS"
	case ixUnit:
		return "IX"
	case sUnit:
		return "S"
	default:
		return "X"
	}
}
