package selector

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/EllipticPIR/libepir-go/curve"
	"github.com/EllipticPIR/libepir-go/elgamal"
	"github.com/EllipticPIR/libepir-go/rng"
)

func TestIndexCountCiphersAndElements(t *testing.T) {
	c := qt.New(t)
	ic := NewIndexCount([]uint32{3, 4, 5})
	c.Assert(ic.Ciphers(), qt.Equals, uint32(12))
	c.Assert(ic.Elements(), qt.Equals, uint32(60))
	c.Assert(ic.Dimensions(), qt.Equals, 3)
}

func TestChoiceIsOneHotPerDimension(t *testing.T) {
	c := qt.New(t)
	ic := NewIndexCount([]uint32{3, 4, 5})
	choice := NewChoice(ic, 0)
	for dim := 0; dim < ic.Dimensions(); dim++ {
		count := 0
		for _, b := range choice.Row(dim) {
			if b {
				count++
			}
		}
		c.Assert(count, qt.Equals, 1)
	}
}

func TestChoiceDecomposesEveryIndexUniquely(t *testing.T) {
	c := qt.New(t)
	ic := NewIndexCount([]uint32{2, 3})
	seen := make(map[[2]int]bool)
	for idx := uint32(0); idx < ic.Elements(); idx++ {
		choice := NewChoice(ic, idx)
		var rows [2]int
		for dim := 0; dim < 2; dim++ {
			for row, b := range choice.Row(dim) {
				if b {
					rows[dim] = row
				}
			}
		}
		c.Assert(seen[rows], qt.IsFalse)
		seen[rows] = true
	}
	c.Assert(len(seen), qt.Equals, int(ic.Elements()))
}

func TestSelectorEncryptsChosenRowAsOne(t *testing.T) {
	c := qt.New(t)
	priv, err := elgamal.NewPrivateKey(rng.NewXorShiftRng())
	c.Assert(err, qt.IsNil)

	ic := NewIndexCount([]uint32{2, 3})
	sel, err := New(priv, ic, 4, rng.NewXorShiftRng())
	c.Assert(err, qt.IsNil)

	choice := NewChoice(ic, 4)
	for dim, row := range sel.ciphers {
		for i, cipher := range row {
			point := priv.DecryptToPoint(cipher)
			want := uint32(0)
			if choice.Row(dim)[i] {
				want = 1
			}
			want2 := curve.ScalarBaseMult(curve.ScalarFromUint64(uint64(want)))
			c.Assert(point.Equal(want2), qt.IsTrue)
		}
	}
}

func BenchmarkSelectorNew(b *testing.B) {
	priv, err := elgamal.NewPrivateKey(rng.NewXorShiftRng())
	if err != nil {
		b.Fatal(err)
	}
	ic := NewIndexCount([]uint32{1000, 1000, 1000})
	r := rng.NewXorShiftRng()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := New(priv, ic, uint32(i)%ic.Elements(), r); err != nil {
			b.Fatal(err)
		}
	}
}
