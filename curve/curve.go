// Package curve wraps the curve25519/edwards25519 field, scalar, and
// point arithmetic used throughout the PIR cryptographic core. It is a
// thin layer over filippo.io/edwards25519: Scalar and Point exist so
// that the rest of this module names things the way the spec does
// ("basepoint multiplication", "compress/decompress") instead of
// speaking the underlying library's vocabulary directly.
package curve

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"filippo.io/edwards25519"
)

// ScalarSize and PointSize are the canonical byte widths of a scalar
// and a compressed Edwards point.
const (
	ScalarSize = 32
	PointSize  = 32
)

// ErrInvalidPoint is returned when 32 bytes do not decompress to a
// point on the curve.
var ErrInvalidPoint = errors.New("curve: invalid point encoding")

// ErrInvalidScalar is returned when bytes cannot be interpreted as a
// scalar at all (wrong length; malformed uniform-random input).
var ErrInvalidScalar = errors.New("curve: invalid scalar encoding")

// Scalar is an integer modulo the prime order of the edwards25519
// group, used both for private keys and for encryption blinding.
type Scalar struct {
	s *edwards25519.Scalar
}

// Point is a compressed-representable point on the edwards25519
// curve.
type Point struct {
	p *edwards25519.Point
}

// ScalarFromUint64 encodes a small non-negative integer as a scalar.
// This is how plaintext messages (bounded by M_max) are lifted into
// the scalar field before being multiplied by the generator.
func ScalarFromUint64(v uint64) Scalar {
	var wide [64]byte
	for i := 0; i < 8; i++ {
		wide[i] = byte(v >> (8 * i))
	}
	s, err := edwards25519.NewScalar().SetUniformBytes(wide[:])
	if err != nil {
		// SetUniformBytes only fails on wrong input length; 64 is fixed above.
		panic(fmt.Sprintf("curve: unreachable SetUniformBytes failure: %v", err))
	}
	return Scalar{s: s}
}

// ScalarFromClampedBytes reinterprets 32 bytes as a scalar using the
// classic Ed25519 clamping rule (clear the low 3 bits, clear the top
// bit, set bit 254, then reduce mod the group order). This is the
// "field clamping" the spec refers to for PrivateKey.from_bytes and
// for any other caller-supplied raw scalar material; see DESIGN.md for
// why this intentionally does not reproduce curve25519-dalek's
// unclamped, non-canonical Scalar::from_bits behavior.
func ScalarFromClampedBytes(b [ScalarSize]byte) Scalar {
	s, err := edwards25519.NewScalar().SetBytesWithClamping(b[:])
	if err != nil {
		panic(fmt.Sprintf("curve: unreachable SetBytesWithClamping failure: %v", err))
	}
	return Scalar{s: s}
}

// RandomScalar draws a uniformly random scalar from r, which must
// supply cryptographically strong randomness (r is typically
// crypto/rand.Reader).
func RandomScalar(r io.Reader) (Scalar, error) {
	var wide [64]byte
	if _, err := io.ReadFull(r, wide[:]); err != nil {
		return Scalar{}, fmt.Errorf("curve: read random bytes: %w", err)
	}
	s, err := edwards25519.NewScalar().SetUniformBytes(wide[:])
	if err != nil {
		return Scalar{}, fmt.Errorf("curve: %w: %v", ErrInvalidScalar, err)
	}
	return Scalar{s: s}, nil
}

// RandomScalarCSPRNG draws a uniformly random scalar from the system
// CSPRNG.
func RandomScalarCSPRNG() (Scalar, error) {
	return RandomScalar(rand.Reader)
}

// Bytes returns the 32-byte little-endian canonical encoding of s.
func (s Scalar) Bytes() [ScalarSize]byte {
	var out [ScalarSize]byte
	copy(out[:], s.s.Bytes())
	return out
}

// Add returns s + other mod the group order.
func (s Scalar) Add(other Scalar) Scalar {
	return Scalar{s: edwards25519.NewScalar().Add(s.s, other.s)}
}

// Multiply returns s * other mod the group order.
func (s Scalar) Multiply(other Scalar) Scalar {
	return Scalar{s: edwards25519.NewScalar().Multiply(s.s, other.s)}
}

// MultiplyAdd returns s*x + y mod the group order.
func (s Scalar) MultiplyAdd(x, y Scalar) Scalar {
	return Scalar{s: edwards25519.NewScalar().MultiplyAdd(s.s, x.s, y.s)}
}

func (s Scalar) inner() *edwards25519.Scalar { return s.s }

// Basepoint returns the curve's standard generator G.
func Basepoint() Point {
	return Point{p: edwards25519.NewGeneratorPoint()}
}

// IdentityPoint returns the group identity element (0·G).
func IdentityPoint() Point {
	return Point{p: edwards25519.NewIdentityPoint()}
}

// PointFromBytes decompresses 32 bytes into a point, failing with
// ErrInvalidPoint if they do not describe a point on the curve.
func PointFromBytes(b []byte) (Point, error) {
	if len(b) != PointSize {
		return Point{}, fmt.Errorf("curve: %w: want %d bytes, got %d", ErrInvalidPoint, PointSize, len(b))
	}
	p, err := edwards25519.NewIdentityPoint().SetBytes(b)
	if err != nil {
		return Point{}, fmt.Errorf("curve: %w: %v", ErrInvalidPoint, err)
	}
	return Point{p: p}, nil
}

// Bytes returns the 32-byte compressed (Y-coordinate + sign bit)
// encoding of p.
func (p Point) Bytes() [PointSize]byte {
	var out [PointSize]byte
	copy(out[:], p.p.Bytes())
	return out
}

// ScalarBaseMult returns s·G. This uses the library's internal
// precomputed basepoint table, i.e. it plays the role the spec calls
// the "basepoint table" multiplication.
func ScalarBaseMult(s Scalar) Point {
	return Point{p: edwards25519.NewIdentityPoint().ScalarBaseMult(s.s)}
}

// ScalarMult returns s·p (variable-base scalar multiplication).
func (p Point) ScalarMult(s Scalar) Point {
	return Point{p: edwards25519.NewIdentityPoint().ScalarMult(s.s, p.p)}
}

// Add returns p + other.
func (p Point) Add(other Point) Point {
	return Point{p: edwards25519.NewIdentityPoint().Add(p.p, other.p)}
}

// Subtract returns p - other.
func (p Point) Subtract(other Point) Point {
	return Point{p: edwards25519.NewIdentityPoint().Subtract(p.p, other.p)}
}

// Negate returns -p.
func (p Point) Negate() Point {
	return Point{p: edwards25519.NewIdentityPoint().Negate(p.p)}
}

// Equal reports whether p and other encode the same point.
func (p Point) Equal(other Point) bool {
	return p.p.Equal(other.p) == 1
}
