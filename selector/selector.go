// Package selector builds the one-hot-per-dimension ciphertext vector
// a PIR client sends to the server: the encrypted encoding of a
// multi-dimensional index that lets the server compute the selected
// element homomorphically without learning the index.
package selector

import (
	"fmt"

	"github.com/EllipticPIR/libepir-go/curve"
	"github.com/EllipticPIR/libepir-go/elgamal"
	"github.com/EllipticPIR/libepir-go/rng"
	"golang.org/x/sync/errgroup"
)

// IndexCount holds the per-dimension cardinalities of a
// multi-dimensional database.
type IndexCount struct {
	counts []uint32
}

// NewIndexCount copies counts into an IndexCount. Every count must be
// at least 1; this is the caller's responsibility to ensure (per
// spec, cardinalities of 0 are not a supported configuration).
func NewIndexCount(counts []uint32) IndexCount {
	cp := make([]uint32, len(counts))
	copy(cp, counts)
	return IndexCount{counts: cp}
}

// Dimensions returns the number of dimensions D.
func (ic IndexCount) Dimensions() int { return len(ic.counts) }

// Ciphers returns Σ n_i, the total number of ciphertexts a selector
// for this IndexCount contains.
func (ic IndexCount) Ciphers() uint32 {
	var total uint32
	for _, n := range ic.counts {
		total += n
	}
	return total
}

// Elements returns Π n_i, the total number of addressable database
// elements.
func (ic IndexCount) Elements() uint32 {
	total := uint32(1)
	for _, n := range ic.counts {
		total *= n
	}
	return total
}

// Choice is the one-hot-per-dimension boolean decomposition of a flat
// index.
type Choice struct {
	rows [][]bool
}

// NewChoice computes the Choice for idx (which must be < ic.Elements())
// via most-significant-dimension-first mixed-radix decomposition.
func NewChoice(ic IndexCount, idx uint32) Choice {
	prod := ic.Elements()
	rows := make([][]bool, len(ic.counts))
	for dim, n := range ic.counts {
		prod /= n
		row := idx / prod
		idx -= row * prod
		bits := make([]bool, n)
		bits[row] = true
		rows[dim] = bits
	}
	return Choice{rows: rows}
}

// Row returns the boolean one-hot vector for dimension dim.
func (c Choice) Row(dim int) []bool { return c.rows[dim] }

// Selector is the encrypted, wire-ready encoding of a Choice: a
// one-hot vector of ciphertexts per dimension.
type Selector struct {
	ciphers [][]elgamal.Cipher
}

// New builds the Selector for idx under ic, encrypting with key. The
// blinding scalar for every (dim, row) cell is drawn from r
// sequentially, dimension-major then row-major, before any
// encryption happens; encryption itself then runs in parallel across
// dimensions and rows. This ordering is what makes the result
// reproducible for a given Rng regardless of how the parallel work is
// scheduled.
func New(key elgamal.Encrypter, ic IndexCount, idx uint32, r rng.Rng) (*Selector, error) {
	choice := NewChoice(ic, idx)
	blinds := make([][]rng.Rng, len(ic.counts))
	for dim, n := range ic.counts {
		blinds[dim] = make([]rng.Rng, n)
		for row := uint32(0); row < n; row++ {
			s, err := r.NextScalar()
			if err != nil {
				return nil, fmt.Errorf("selector: draw blinding scalar for dim %d row %d: %w", dim, row, err)
			}
			blinds[dim][row] = rng.NewConstRng([]curve.Scalar{s})
		}
	}

	ciphers := make([][]elgamal.Cipher, len(ic.counts))
	var g errgroup.Group
	for dim := range ic.counts {
		dim := dim
		ciphers[dim] = make([]elgamal.Cipher, len(blinds[dim]))
		g.Go(func() error {
			var rowGroup errgroup.Group
			for row := range blinds[dim] {
				row := row
				rowGroup.Go(func() error {
					msg := uint32(0)
					if choice.rows[dim][row] {
						msg = 1
					}
					c, err := key.Encrypt(msg, blinds[dim][row])
					if err != nil {
						return fmt.Errorf("selector: encrypt dim %d row %d: %w", dim, row, err)
					}
					ciphers[dim][row] = c
					return nil
				})
			}
			return rowGroup.Wait()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &Selector{ciphers: ciphers}, nil
}

// Bytes serializes the selector dim-major, row-major, 64 bytes per
// ciphertext.
func (s *Selector) Bytes() []byte {
	out := make([]byte, 0, totalCiphers(s.ciphers)*elgamal.CipherSize)
	for _, row := range s.ciphers {
		for _, c := range row {
			b := c.Bytes()
			out = append(out, b[:]...)
		}
	}
	return out
}

func totalCiphers(ciphers [][]elgamal.Cipher) int {
	n := 0
	for _, row := range ciphers {
		n += len(row)
	}
	return n
}
