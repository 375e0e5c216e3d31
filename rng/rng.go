// Package rng supplies the randomness capability consumed by every
// operation in this module that needs fresh blinding material: key
// generation, normal/fast ElGamal encryption, and the selector/reply
// codecs. Rather than reaching for a global random source, each of
// those operations accepts an Rng so that tests can substitute a
// deterministic replay source (ConstRng, XorShiftRng) and reproduce
// fixed test vectors.
package rng

import (
	"fmt"

	"github.com/EllipticPIR/libepir-go/curve"
)

// Rng yields scalars one at a time. Implementations are not required
// to be safe for concurrent use; callers that need deterministic,
// reproducible output across parallel work must draw all the scalars
// they need sequentially before fanning out (see selector.New).
type Rng interface {
	NextScalar() (curve.Scalar, error)
}

// DefaultRng draws uniformly random scalars from the system CSPRNG.
type DefaultRng struct{}

// NextScalar implements Rng.
func (DefaultRng) NextScalar() (curve.Scalar, error) {
	return curve.RandomScalarCSPRNG()
}

// ConstRng replays a fixed, caller-supplied list of scalars in order.
// It is used both by tests that need deterministic ciphertexts and by
// callers (e.g. the ffi package) that receive blinding scalars from
// outside the process.
type ConstRng struct {
	scalars []curve.Scalar
	index   int
}

// NewConstRng returns an Rng that yields scalars in the given order.
func NewConstRng(scalars []curve.Scalar) *ConstRng {
	return &ConstRng{scalars: scalars}
}

// NextScalar implements Rng. It returns an error once every supplied
// scalar has been consumed.
func (r *ConstRng) NextScalar() (curve.Scalar, error) {
	if r.index >= len(r.scalars) {
		return curve.Scalar{}, fmt.Errorf("rng: const rng exhausted after %d draws", r.index)
	}
	s := r.scalars[r.index]
	r.index++
	return s, nil
}

// xorShift is the 32-bit xorshift generator used by the reference
// test vectors (state (x,y,z,w) seeded as below).
type xorShift struct {
	x, y, z, w uint32
}

func newXorShift() *xorShift {
	return &xorShift{x: 123456789, y: 362436069, z: 521288629, w: 88675123}
}

func (g *xorShift) next() uint32 {
	t := g.x ^ (g.x << 11)
	g.x, g.y, g.z = g.y, g.z, g.w
	g.w = (g.w ^ (g.w >> 19)) ^ (t ^ (t >> 8))
	return g.w
}

// XorShiftRng is a deterministic test Rng built on the 128-bit
// xorshift generator: each scalar is assembled one byte at a time from
// successive xorshift outputs, with the top byte masked to 0x1f before
// curve.ScalarFromClampedBytes clamps and reduces it.
type XorShiftRng struct {
	gen *xorShift
}

// NewXorShiftRng returns an XorShiftRng seeded with the fixed test
// state (123456789, 362436069, 521288629, 88675123).
func NewXorShiftRng() *XorShiftRng {
	return &XorShiftRng{gen: newXorShift()}
}

// NextScalar implements Rng.
func (r *XorShiftRng) NextScalar() (curve.Scalar, error) {
	var buf [curve.ScalarSize]byte
	for i := range buf {
		buf[i] = byte(r.gen.next() & 0xff)
	}
	buf[31] &= 0x1f
	return curve.ScalarFromClampedBytes(buf), nil
}
