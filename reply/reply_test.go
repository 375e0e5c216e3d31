package reply

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/EllipticPIR/libepir-go/elgamal"
	"github.com/EllipticPIR/libepir-go/mgtable"
	"github.com/EllipticPIR/libepir-go/rng"
)

// roundTripDimension/roundTripPacking/roundTripElemSize/roundTripMMax
// are sized so the decrypt round-trip tests can build a real mG table
// in-process: packing=1 keeps every intermediate message a single
// byte, so a 256-entry table is always enough to resolve it.
const (
	roundTripDimension = 2
	roundTripPacking   = 1
	roundTripElemSize  = 6
	roundTripMMax      = 1 << 8
)

func buildContext(c *qt.C) *mgtable.DecryptionContext {
	entries := mgtable.Generate(roundTripMMax, 4, nil)
	mgtable.Sort(entries)
	return mgtable.NewDecryptionContext(entries)
}

func testElem() []byte {
	x := rng.NewXorShiftRng()
	elem := make([]byte, roundTripElemSize)
	for i := range elem {
		s, _ := x.NextScalar()
		b := s.Bytes()
		elem[i] = b[0]
	}
	return elem
}

func TestSizeAndRCount(t *testing.T) {
	c := qt.New(t)
	c.Assert(Size(3, 3, 32), qt.Equals, 320896)
	c.Assert(RCount(3, 3, 32), qt.Equals, 5260)
}

func TestMockDecryptRoundTripFast(t *testing.T) {
	c := qt.New(t)
	ctx := buildContext(c)
	priv, err := elgamal.NewPrivateKey(rng.NewXorShiftRng())
	c.Assert(err, qt.IsNil)

	elem := testElem()
	r, err := Mock(priv, roundTripDimension, roundTripPacking, elem, rng.NewXorShiftRng())
	c.Assert(err, qt.IsNil)

	decrypted, err := Decrypt(ctx, priv, roundTripDimension, roundTripPacking, r)
	c.Assert(err, qt.IsNil)
	c.Assert(decrypted[:roundTripElemSize], qt.DeepEquals, elem)
}

func TestMockDecryptRoundTripNormal(t *testing.T) {
	c := qt.New(t)
	ctx := buildContext(c)
	priv, err := elgamal.NewPrivateKey(rng.NewXorShiftRng())
	c.Assert(err, qt.IsNil)
	pub := elgamal.DerivePublicKey(priv)

	elem := testElem()
	r, err := Mock(pub, roundTripDimension, roundTripPacking, elem, rng.NewXorShiftRng())
	c.Assert(err, qt.IsNil)

	decrypted, err := Decrypt(ctx, priv, roundTripDimension, roundTripPacking, r)
	c.Assert(err, qt.IsNil)
	c.Assert(decrypted[:roundTripElemSize], qt.DeepEquals, elem)
}

func TestDecryptWithWrongKeyFails(t *testing.T) {
	c := qt.New(t)
	ctx := buildContext(c)
	priv, err := elgamal.NewPrivateKey(rng.NewXorShiftRng())
	c.Assert(err, qt.IsNil)

	elem := testElem()
	r, err := Mock(priv, roundTripDimension, roundTripPacking, elem, rng.NewXorShiftRng())
	c.Assert(err, qt.IsNil)

	// Skip the first draw so that other differs from priv.
	otherRng := rng.NewXorShiftRng()
	_, err = otherRng.NextScalar()
	c.Assert(err, qt.IsNil)
	other, err := elgamal.NewPrivateKey(otherRng)
	c.Assert(err, qt.IsNil)
	_, err = Decrypt(ctx, other, roundTripDimension, roundTripPacking, r)
	c.Assert(err, qt.IsNotNil)
}

func TestReplyBytesRoundTrip(t *testing.T) {
	c := qt.New(t)
	priv, err := elgamal.NewPrivateKey(rng.NewXorShiftRng())
	c.Assert(err, qt.IsNil)

	elem := testElem()
	r, err := Mock(priv, roundTripDimension, roundTripPacking, elem, rng.NewXorShiftRng())
	c.Assert(err, qt.IsNil)

	b := r.Bytes()
	r2, err := FromBytes(b)
	c.Assert(err, qt.IsNil)
	c.Assert(r2.Bytes(), qt.DeepEquals, b)
}

func BenchmarkMock(b *testing.B) {
	priv, err := elgamal.NewPrivateKey(rng.NewXorShiftRng())
	if err != nil {
		b.Fatal(err)
	}
	elem := testElem()
	r := rng.NewXorShiftRng()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Mock(priv, roundTripDimension, roundTripPacking, elem, r); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDecrypt(b *testing.B) {
	qc := qt.New(b)
	ctx := buildContext(qc)
	priv, err := elgamal.NewPrivateKey(rng.NewXorShiftRng())
	if err != nil {
		b.Fatal(err)
	}
	elem := testElem()
	rep, err := Mock(priv, roundTripDimension, roundTripPacking, elem, rng.NewXorShiftRng())
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Decrypt(ctx, priv, roundTripDimension, roundTripPacking, rep); err != nil {
			b.Fatal(err)
		}
	}
}
