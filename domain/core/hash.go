package core

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// HashBuilder accumulates typed fields into a content hash. Floats are
// written by bit pattern so two systems hash equal only when every
// coefficient is bit-identical.
type HashBuilder struct {
	buf []byte
}

// NewHashBuilder creates an empty builder
func NewHashBuilder() *HashBuilder {
	return &HashBuilder{buf: make([]byte, 0, 256)}
}

// String appends a length-prefixed string
func (b *HashBuilder) String(s string) *HashBuilder {
	b.buf = binary.BigEndian.AppendUint32(b.buf, uint32(len(s)))
	b.buf = append(b.buf, s...)
	return b
}

// Float appends the IEEE-754 bits of f
func (b *HashBuilder) Float(f float64) *HashBuilder {
	b.buf = binary.BigEndian.AppendUint64(b.buf, math.Float64bits(f))
	return b
}

// Floats appends a length-prefixed float slice
func (b *HashBuilder) Floats(fs []float64) *HashBuilder {
	b.buf = binary.BigEndian.AppendUint32(b.buf, uint32(len(fs)))
	for _, f := range fs {
		b.Float(f)
	}
	return b
}

// Bool appends a single byte flag
func (b *HashBuilder) Bool(v bool) *HashBuilder {
	if v {
		b.buf = append(b.buf, 1)
	} else {
		b.buf = append(b.buf, 0)
	}
	return b
}

// Sum returns the hash of everything written so far
func (b *HashBuilder) Sum() Hash {
	return NewHash(b.buf)
}
