// Package bitvector wraps github.com/boljen/go-bitmap (the same bit-vector
// library disko's UNIX v1/v6 drivers use for their allocation maps) to give a
// block-sized, persistence-agnostic free/used vector. The owner is
// responsible for writing the underlying bytes back to disk after a
// mutation; this type only ever touches the in-memory buffer.
package bitvector

import (
	bitmap "github.com/boljen/go-bitmap"
)

// None is returned by FindFirstClear when no clear bit exists in range.
const None = -1

// Vector is a fixed-size bit-indexed vector.
type Vector struct {
	bits bitmap.Bitmap
	n    int
}

// New creates a Vector with room for exactly n bits, all initially clear.
func New(n int) *Vector {
	return &Vector{bits: bitmap.New(n), n: n}
}

// FromBytes wraps an existing byte buffer (e.g. one or more freshly-read
// blocks) as a Vector without copying it. Mutations through the returned
// Vector are visible in buf.
func FromBytes(buf []byte, n int) *Vector {
	return &Vector{bits: bitmap.Bitmap(buf), n: n}
}

// Len returns the number of addressable bits.
func (v *Vector) Len() int {
	return v.n
}

// Bytes returns the raw backing buffer, suitable for writing straight to a
// block.
func (v *Vector) Bytes() []byte {
	return v.bits
}

// Test reports whether bit i is set.
func (v *Vector) Test(i int) bool {
	return v.bits.Get(i)
}

// Set marks bit i as used.
func (v *Vector) Set(i int) {
	v.bits.Set(i, true)
}

// Clear marks bit i as free.
func (v *Vector) Clear(i int) {
	v.bits.Set(i, false)
}

// FindFirstClear scans [lo, hi) and returns the index of the first clear
// bit, or None if every bit in range is set.
func (v *Vector) FindFirstClear(lo, hi int) int {
	if hi > v.n {
		hi = v.n
	}
	for i := lo; i < hi; i++ {
		if !v.bits.Get(i) {
			return i
		}
	}
	return None
}
