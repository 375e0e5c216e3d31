package mgtable

import (
	"bytes"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/EllipticPIR/libepir-go/curve"
	"github.com/EllipticPIR/libepir-go/elgamal"
	"github.com/EllipticPIR/libepir-go/rng"
)

const testMMax = 1 << 10

func buildTestContext(c *qt.C) *DecryptionContext {
	entries := Generate(testMMax, 4, nil)
	c.Assert(len(entries), qt.Equals, testMMax)
	Sort(entries)
	return NewDecryptionContext(entries)
}

func TestGenerateProducesAllScalars(t *testing.T) {
	c := qt.New(t)
	ctx := buildTestContext(c)
	seen := make(map[uint32]bool, testMMax)
	for _, e := range ctx.Entries() {
		seen[e.Scalar] = true
	}
	c.Assert(len(seen), qt.Equals, testMMax)
}

func TestGenerateReportsMonotonicProgress(t *testing.T) {
	c := qt.New(t)
	var last uint32
	Generate(testMMax, 3, func(count uint32) {
		c.Assert(count > last, qt.IsTrue)
		last = count
	})
	c.Assert(last, qt.Equals, uint32(testMMax))
}

func TestSearchFindsEveryGeneratedEntry(t *testing.T) {
	c := qt.New(t)
	ctx := buildTestContext(c)
	for m := uint32(0); m < testMMax; m += 97 {
		point := curve.ScalarBaseMult(curve.ScalarFromUint64(uint64(m))).Bytes()
		got, ok := ctx.Search(point)
		c.Assert(ok, qt.IsTrue)
		c.Assert(got, qt.Equals, m)
	}
}

func TestSearchMissReportsAbsence(t *testing.T) {
	c := qt.New(t)
	ctx := buildTestContext(c)
	point := curve.ScalarBaseMult(curve.ScalarFromUint64(testMMax + 5)).Bytes()
	_, ok := ctx.Search(point)
	c.Assert(ok, qt.IsFalse)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	c := qt.New(t)
	entries := Generate(256, 2, nil)
	Sort(entries)

	var buf bytes.Buffer
	c.Assert(Save(&buf, entries), qt.IsNil)

	loaded, err := Load(&buf)
	c.Assert(err, qt.IsNil)
	c.Assert(loaded, qt.DeepEquals, entries)
}

func TestDecryptRoundTrip(t *testing.T) {
	c := qt.New(t)
	ctx := buildTestContext(c)
	priv, err := elgamal.NewPrivateKey(rng.NewXorShiftRng())
	c.Assert(err, qt.IsNil)

	cipher, err := priv.Encrypt(42, rng.NewXorShiftRng())
	c.Assert(err, qt.IsNil)

	got, err := ctx.Decrypt(priv, cipher)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, uint32(42))
}

func TestDecryptOutOfRangeFails(t *testing.T) {
	c := qt.New(t)
	ctx := buildTestContext(c)
	priv, err := elgamal.NewPrivateKey(rng.NewXorShiftRng())
	c.Assert(err, qt.IsNil)

	cipher, err := priv.Encrypt(testMMax+10, rng.NewXorShiftRng())
	c.Assert(err, qt.IsNil)

	_, err = ctx.Decrypt(priv, cipher)
	c.Assert(err, qt.ErrorIs, ErrDecryptionFailed)
}
