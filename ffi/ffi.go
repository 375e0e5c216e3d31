// Package ffi adapts this module's typed API to the flat byte-vector
// calling convention a foreign binding (language runtime, CLI plumbing,
// browser binding) needs: every function here takes and returns plain
// []byte and primitive arguments, with no exported type from any other
// package appearing in a signature.
package ffi

import (
	"fmt"

	"github.com/EllipticPIR/libepir-go/curve"
	"github.com/EllipticPIR/libepir-go/elgamal"
	"github.com/EllipticPIR/libepir-go/reply"
	"github.com/EllipticPIR/libepir-go/rng"
	"github.com/EllipticPIR/libepir-go/selector"
)

func scalarsFromConcat(buf []byte) ([]curve.Scalar, error) {
	if len(buf)%curve.ScalarSize != 0 {
		return nil, fmt.Errorf("ffi: blinding scalar buffer length %d is not a multiple of %d", len(buf), curve.ScalarSize)
	}
	n := len(buf) / curve.ScalarSize
	out := make([]curve.Scalar, n)
	for i := 0; i < n; i++ {
		var b [curve.ScalarSize]byte
		copy(b[:], buf[i*curve.ScalarSize:(i+1)*curve.ScalarSize])
		out[i] = curve.ScalarFromClampedBytes(b)
	}
	return out, nil
}

// CreatePublicKey derives the 32-byte compressed public key from a
// 32-byte private key.
func CreatePublicKey(privkey []byte) ([]byte, error) {
	if len(privkey) != curve.ScalarSize {
		return nil, fmt.Errorf("ffi: private key must be %d bytes, got %d", curve.ScalarSize, len(privkey))
	}
	var b [curve.ScalarSize]byte
	copy(b[:], privkey)
	priv := elgamal.PrivateKeyFromBytes(b)
	pub := elgamal.DerivePublicKey(priv)
	out := pub.Bytes()
	return out[:], nil
}

// Encrypt performs the "normal" (public-key) encryption path, using r
// (exactly 32 bytes) as the blinding scalar.
func Encrypt(pubkey []byte, msg uint32, r []byte) ([]byte, error) {
	pub, err := elgamal.PublicKeyFromBytes(pubkey)
	if err != nil {
		return nil, fmt.Errorf("ffi: encrypt: %w", err)
	}
	scalars, err := scalarsFromConcat(r)
	if err != nil {
		return nil, err
	}
	if len(scalars) != 1 {
		return nil, fmt.Errorf("ffi: encrypt: want exactly 1 blinding scalar, got %d", len(scalars))
	}
	cipher, err := pub.Encrypt(msg, rng.NewConstRng(scalars))
	if err != nil {
		return nil, fmt.Errorf("ffi: encrypt: %w", err)
	}
	out := cipher.Bytes()
	return out[:], nil
}

// EncryptFast performs the "fast" (private-key-aware) encryption path.
func EncryptFast(privkey []byte, msg uint32, r []byte) ([]byte, error) {
	if len(privkey) != curve.ScalarSize {
		return nil, fmt.Errorf("ffi: encrypt_fast: private key must be %d bytes, got %d", curve.ScalarSize, len(privkey))
	}
	var b [curve.ScalarSize]byte
	copy(b[:], privkey)
	priv := elgamal.PrivateKeyFromBytes(b)
	scalars, err := scalarsFromConcat(r)
	if err != nil {
		return nil, err
	}
	if len(scalars) != 1 {
		return nil, fmt.Errorf("ffi: encrypt_fast: want exactly 1 blinding scalar, got %d", len(scalars))
	}
	cipher, err := priv.Encrypt(msg, rng.NewConstRng(scalars))
	if err != nil {
		return nil, fmt.Errorf("ffi: encrypt_fast: %w", err)
	}
	out := cipher.Bytes()
	return out[:], nil
}

// CiphersCount returns Σ n_i for the given per-dimension cardinalities.
func CiphersCount(indexCounts []uint32) uint32 {
	return selector.NewIndexCount(indexCounts).Ciphers()
}

// ElementsCount returns Π n_i for the given per-dimension cardinalities.
func ElementsCount(indexCounts []uint32) uint32 {
	return selector.NewIndexCount(indexCounts).Elements()
}

// ReplySize returns the on-wire reply size for the given shape.
func ReplySize(dimension, packing uint8, elemSize int) int {
	return reply.Size(dimension, packing, elemSize)
}

// ReplyRCount returns the number of blinding scalars a mock reply of
// the given shape consumes.
func ReplyRCount(dimension, packing uint8, elemSize int) int {
	return reply.RCount(dimension, packing, elemSize)
}

// ReplyMock builds a mock reply for elem under pubkey, consuming
// blinding scalars from rBuf (a concatenation of 32-byte scalars, in
// draw order) rather than a live Rng — the shape foreign callers that
// generate their own randomness need.
func ReplyMock(pubkey []byte, dimension, packing uint8, elem []byte, rBuf []byte) ([]byte, error) {
	pub, err := elgamal.PublicKeyFromBytes(pubkey)
	if err != nil {
		return nil, fmt.Errorf("ffi: reply_mock: %w", err)
	}
	scalars, err := scalarsFromConcat(rBuf)
	if err != nil {
		return nil, err
	}
	want := reply.RCount(dimension, packing, len(elem))
	if len(scalars) != want {
		return nil, fmt.Errorf("ffi: reply_mock: want %d blinding scalars, got %d", want, len(scalars))
	}
	r, err := reply.Mock(pub, dimension, packing, elem, rng.NewConstRng(scalars))
	if err != nil {
		return nil, fmt.Errorf("ffi: reply_mock: %w", err)
	}
	return r.Bytes(), nil
}
