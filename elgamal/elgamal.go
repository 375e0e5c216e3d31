// Package elgamal implements the additively-homomorphic EC-ElGamal
// cryptosystem this module's PIR protocol is built on: key material,
// two equivalent encryption paths (public-key and private-key/fast),
// and the 64-byte ciphertext wire format.
package elgamal

import (
	"encoding/hex"
	"fmt"

	"github.com/EllipticPIR/libepir-go/curve"
	"github.com/EllipticPIR/libepir-go/rng"
)

// CipherSize is the wire length of a serialized Cipher: two
// compressed points.
const CipherSize = 2 * curve.PointSize

// Encrypter is implemented by both PrivateKey (the "fast" path) and
// PublicKey (the "normal" path). A capability-based design — one
// contract, two key-variant implementations — is used instead of
// modeling PrivateKey as a subtype of PublicKey.
type Encrypter interface {
	Encrypt(msg uint32, r rng.Rng) (Cipher, error)
}

// PrivateKey is an EC-ElGamal secret scalar.
type PrivateKey struct {
	scalar curve.Scalar
}

// NewPrivateKey samples a uniformly random private key from r.
func NewPrivateKey(r rng.Rng) (*PrivateKey, error) {
	s, err := r.NextScalar()
	if err != nil {
		return nil, fmt.Errorf("elgamal: generate private key: %w", err)
	}
	return &PrivateKey{scalar: s}, nil
}

// PrivateKeyFromBytes reinterprets 32 bytes as a private key, applying
// only the field clamping curve.ScalarFromClampedBytes performs — no
// further validation.
func PrivateKeyFromBytes(b [curve.ScalarSize]byte) *PrivateKey {
	return &PrivateKey{scalar: curve.ScalarFromClampedBytes(b)}
}

// Bytes returns the 32-byte encoding of the private scalar.
func (k *PrivateKey) Bytes() [curve.ScalarSize]byte {
	return k.scalar.Bytes()
}

// String renders the private key as lowercase hex, matching the
// reference implementation's Display behavior.
func (k *PrivateKey) String() string {
	b := k.scalar.Bytes()
	return hex.EncodeToString(b[:])
}

// Encrypt implements Encrypter using the "fast" private-key-aware
// path: two basepoint multiplications and no variable-base
// multiplication. For identical (msg, r) it produces the same
// ciphertext as the equivalent PublicKey.Encrypt call — this
// agreement is a load-bearing, tested property of the cryptosystem.
func (k *PrivateKey) Encrypt(msg uint32, r rng.Rng) (Cipher, error) {
	blind, err := r.NextScalar()
	if err != nil {
		return Cipher{}, fmt.Errorf("elgamal: draw blinding scalar: %w", err)
	}
	c1 := curve.ScalarBaseMult(blind)
	exponent := blind.MultiplyAdd(k.scalar, curve.ScalarFromUint64(uint64(msg)))
	c2 := curve.ScalarBaseMult(exponent)
	return Cipher{C1: c1, C2: c2}, nil
}

// DecryptToPoint recovers the plaintext point M = c2 - x·c1 from a
// ciphertext encrypted under this private key. Under honest
// encryption M == compress(m·G); resolving the discrete log is the mG
// table's job (see package mgtable).
func (k *PrivateKey) DecryptToPoint(c Cipher) curve.Point {
	shared := c.C1.ScalarMult(k.scalar)
	return c.C2.Subtract(shared)
}

// PublicKey is the EC-ElGamal public group element P = x·G.
type PublicKey struct {
	point curve.Point
}

// DerivePublicKey computes the public key corresponding to priv.
func DerivePublicKey(priv *PrivateKey) *PublicKey {
	return &PublicKey{point: curve.ScalarBaseMult(priv.scalar)}
}

// PublicKeyFromBytes decompresses 32 bytes into a public key, failing
// with ErrInvalidPoint if they are not a valid compressed point.
func PublicKeyFromBytes(b []byte) (*PublicKey, error) {
	p, err := curve.PointFromBytes(b)
	if err != nil {
		return nil, fmt.Errorf("elgamal: %w: %v", ErrInvalidPoint, err)
	}
	return &PublicKey{point: p}, nil
}

// Bytes returns the 32-byte compressed public point.
func (k *PublicKey) Bytes() [curve.PointSize]byte {
	return k.point.Bytes()
}

// String renders the public key as lowercase hex.
func (k *PublicKey) String() string {
	b := k.point.Bytes()
	return hex.EncodeToString(b[:])
}

// Equal reports whether two public keys encode the same point.
func (k *PublicKey) Equal(other *PublicKey) bool {
	return k.point.Equal(other.point)
}

// Encrypt implements Encrypter using the "normal" public-key path: two
// basepoint multiplications plus one variable-base multiplication.
func (k *PublicKey) Encrypt(msg uint32, r rng.Rng) (Cipher, error) {
	blind, err := r.NextScalar()
	if err != nil {
		return Cipher{}, fmt.Errorf("elgamal: draw blinding scalar: %w", err)
	}
	c1 := curve.ScalarBaseMult(blind)
	shared := k.point.ScalarMult(blind)
	encodedMsg := curve.ScalarBaseMult(curve.ScalarFromUint64(uint64(msg)))
	c2 := shared.Add(encodedMsg)
	return Cipher{C1: c1, C2: c2}, nil
}

// Cipher is an EC-ElGamal ciphertext: a pair of compressed group
// elements. Under honest encryption c1 = r·G and c2 = r·P + m·G for
// some blinding scalar r and message m.
type Cipher struct {
	C1, C2 curve.Point
}

// Bytes serializes c as compressed(c1) || compressed(c2), 64 bytes.
func (c Cipher) Bytes() [CipherSize]byte {
	var out [CipherSize]byte
	b1 := c.C1.Bytes()
	b2 := c.C2.Bytes()
	copy(out[:curve.PointSize], b1[:])
	copy(out[curve.PointSize:], b2[:])
	return out
}

// CipherFromBytes parses exactly CipherSize bytes into a Cipher,
// failing with ErrInvalidCipher if either half does not decompress to
// a point on the curve.
func CipherFromBytes(b []byte) (Cipher, error) {
	if len(b) != CipherSize {
		return Cipher{}, fmt.Errorf("elgamal: %w: want %d bytes, got %d", ErrInvalidCipher, CipherSize, len(b))
	}
	c1, err := curve.PointFromBytes(b[:curve.PointSize])
	if err != nil {
		return Cipher{}, fmt.Errorf("elgamal: %w: c1: %v", ErrInvalidCipher, err)
	}
	c2, err := curve.PointFromBytes(b[curve.PointSize:])
	if err != nil {
		return Cipher{}, fmt.Errorf("elgamal: %w: c2: %v", ErrInvalidCipher, err)
	}
	return Cipher{C1: c1, C2: c2}, nil
}

// Equal reports whether two ciphers are byte-identical.
func (c Cipher) Equal(other Cipher) bool {
	return c.C1.Equal(other.C1) && c.C2.Equal(other.C2)
}
