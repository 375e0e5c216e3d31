// Package reply implements the layered PIR reply codec: the server's
// recursive ciphertext-packing scheme and the client's matching
// recursive decryption, plus a Mock reply builder used by tests and
// by callers exercising the client path without a real server.
package reply

import (
	"fmt"

	"github.com/EllipticPIR/libepir-go/elgamal"
	"github.com/EllipticPIR/libepir-go/mgtable"
	"github.com/EllipticPIR/libepir-go/rng"
	"golang.org/x/sync/errgroup"
)

func divideUp(a, b int) int {
	if a%b == 0 {
		return a / b
	}
	return a/b + 1
}

// Size computes the on-wire size, in bytes, of a reply carrying an
// elemSize-byte element through a dimension-deep, packing-wide layered
// encryption.
func Size(dimension, packing uint8, elemSize int) int {
	target := elemSize
	for i := uint8(0); i < dimension; i++ {
		target = elgamal.CipherSize * divideUp(target, int(packing))
	}
	return target
}

// RCount computes the total number of blinding scalars (and therefore
// ciphertexts) a Mock reply for the given shape consumes across all
// layers.
func RCount(dimension, packing uint8, elemSize int) int {
	count := 0
	target := elemSize
	for i := uint8(0); i < dimension; i++ {
		tmp := divideUp(target, int(packing))
		count += tmp
		target = elgamal.CipherSize * tmp
	}
	return count
}

// Reply is a layered reply: at the wire level it is simply a
// concatenation of 64-byte ciphertexts, but the number of decryption
// passes it takes to recover the original element is implied by the
// dimension/packing the caller supplies to Decrypt.
type Reply struct {
	ciphers []elgamal.Cipher
}

// Bytes serializes the reply as a flat concatenation of ciphertexts.
func (r Reply) Bytes() []byte {
	out := make([]byte, 0, len(r.ciphers)*elgamal.CipherSize)
	for _, c := range r.ciphers {
		b := c.Bytes()
		out = append(out, b[:]...)
	}
	return out
}

// FromBytes parses buf as a flat sequence of 64-byte ciphertexts,
// discarding any trailing partial ciphertext.
func FromBytes(buf []byte) (Reply, error) {
	n := len(buf) / elgamal.CipherSize
	ciphers := make([]elgamal.Cipher, 0, n)
	for i := 0; i < n; i++ {
		c, err := elgamal.CipherFromBytes(buf[i*elgamal.CipherSize : (i+1)*elgamal.CipherSize])
		if err != nil {
			return Reply{}, fmt.Errorf("reply: cipher %d: %w", i, err)
		}
		ciphers = append(ciphers, c)
	}
	return Reply{ciphers: ciphers}, nil
}

// Decrypt peels dimension layers off r, each time decrypting every
// ciphertext in parallel, packing `packing` resulting plaintext bytes
// per cipher (little-endian), and — for every layer but the last —
// reinterpreting the resulting byte string as the next layer's flat
// ciphertext stream. It returns the fully unpacked element bytes, or
// an error (wrapping mgtable.ErrDecryptionFailed) the first time a
// ciphertext in the layer fails to resolve against ctx.
func Decrypt(ctx *mgtable.DecryptionContext, priv *elgamal.PrivateKey, dimension, packing uint8, r Reply) ([]byte, error) {
	layer := r
	var out []byte
	for dim := uint8(0); dim < dimension; dim++ {
		decrypted := make([]uint32, len(layer.ciphers))
		var g errgroup.Group
		for i, c := range layer.ciphers {
			i, c := i, c
			g.Go(func() error {
				m, err := ctx.Decrypt(priv, c)
				if err != nil {
					return fmt.Errorf("reply: dim %d cipher %d: %w", dim, i, err)
				}
				decrypted[i] = m
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		out = make([]byte, 0, len(decrypted)*int(packing))
		for _, m := range decrypted {
			for p := uint8(0); p < packing; p++ {
				out = append(out, byte(m>>(8*p)))
			}
		}
		if dim != dimension-1 {
			next, err := FromBytes(out)
			if err != nil {
				return nil, fmt.Errorf("reply: dim %d: reinterpret layer: %w", dim, err)
			}
			layer = next
		}
	}
	return out, nil
}

// Mock builds a Reply the way a server would, by layering encryption
// dimension times: the innermost layer packs the raw element bytes
// `packing` at a time into messages and encrypts each with key, then
// every subsequent layer packs the previous layer's wire bytes the
// same way. It is the inverse of Decrypt and is provided for tests and
// for exercising the client path without a real PIR server.
func Mock(key elgamal.Encrypter, dimension, packing uint8, elem []byte, r rng.Rng) (Reply, error) {
	ser := elem
	var ciphers []elgamal.Cipher
	for dim := uint8(0); dim < dimension; dim++ {
		count := divideUp(len(ser), int(packing))
		ciphers = make([]elgamal.Cipher, count)
		for i := 0; i < count; i++ {
			var msg uint32
			for j := uint8(0); j < packing; j++ {
				idx := i*int(packing) + int(j)
				if idx >= len(ser) {
					break
				}
				msg |= uint32(ser[idx]) << (8 * j)
			}
			c, err := key.Encrypt(msg, r)
			if err != nil {
				return Reply{}, fmt.Errorf("reply: mock dim %d cipher %d: %w", dim, i, err)
			}
			ciphers[i] = c
		}
		if dim == dimension-1 {
			break
		}
		ser = Reply{ciphers: ciphers}.Bytes()
	}
	return Reply{ciphers: ciphers}, nil
}
