package rng

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/EllipticPIR/libepir-go/curve"
)

func TestConstRngReplaysInOrder(t *testing.T) {
	c := qt.New(t)
	a := curve.ScalarFromUint64(1)
	b := curve.ScalarFromUint64(2)
	r := NewConstRng([]curve.Scalar{a, b})

	got1, err := r.NextScalar()
	c.Assert(err, qt.IsNil)
	c.Assert(got1.Bytes(), qt.DeepEquals, a.Bytes())

	got2, err := r.NextScalar()
	c.Assert(err, qt.IsNil)
	c.Assert(got2.Bytes(), qt.DeepEquals, b.Bytes())
}

func TestConstRngErrorsWhenExhausted(t *testing.T) {
	c := qt.New(t)
	r := NewConstRng([]curve.Scalar{curve.ScalarFromUint64(1)})
	_, err := r.NextScalar()
	c.Assert(err, qt.IsNil)
	_, err = r.NextScalar()
	c.Assert(err, qt.IsNotNil)
}

func TestXorShiftRngIsDeterministic(t *testing.T) {
	c := qt.New(t)
	r1 := NewXorShiftRng()
	r2 := NewXorShiftRng()
	for i := 0; i < 8; i++ {
		s1, err := r1.NextScalar()
		c.Assert(err, qt.IsNil)
		s2, err := r2.NextScalar()
		c.Assert(err, qt.IsNil)
		c.Assert(s1.Bytes(), qt.DeepEquals, s2.Bytes())
	}
}

func TestXorShiftRngVariesAcrossDraws(t *testing.T) {
	c := qt.New(t)
	r := NewXorShiftRng()
	s1, err := r.NextScalar()
	c.Assert(err, qt.IsNil)
	s2, err := r.NextScalar()
	c.Assert(err, qt.IsNil)
	c.Assert(s1.Bytes(), qt.Not(qt.DeepEquals), s2.Bytes())
}

func TestDefaultRngProducesValidScalars(t *testing.T) {
	c := qt.New(t)
	var r DefaultRng
	s1, err := r.NextScalar()
	c.Assert(err, qt.IsNil)
	s2, err := r.NextScalar()
	c.Assert(err, qt.IsNil)
	c.Assert(s1.Bytes(), qt.Not(qt.DeepEquals), s2.Bytes())
}
