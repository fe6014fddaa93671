package utils

import (
	"math"
	"testing"

	"go.viam.com/test"
)

func TestSign(t *testing.T) {
	test.That(t, Sign(3.2), test.ShouldEqual, 1.)
	test.That(t, Sign(-0.1), test.ShouldEqual, -1.)
	test.That(t, Sign(0), test.ShouldEqual, 0.)
}

func TestCeilDiv(t *testing.T) {
	test.That(t, CeilDiv(0.9, 0.1), test.ShouldEqual, 9)
	test.That(t, CeilDiv(0.1, 0.1), test.ShouldEqual, 1)
	test.That(t, CeilDiv(0.11, 0.1), test.ShouldEqual, 2)
	test.That(t, CeilDiv(0.31622776601683794, 0.1), test.ShouldEqual, 4)
	test.That(t, CeilDiv(0, 0.1), test.ShouldEqual, 0)
	test.That(t, CeilDiv(1, 0), test.ShouldEqual, 0)
}

func TestLinspace(t *testing.T) {
	pts := Linspace(0, 1, 5)
	test.That(t, pts, test.ShouldHaveLength, 5)
	test.That(t, pts[0], test.ShouldEqual, 0.)
	test.That(t, pts[2], test.ShouldAlmostEqual, 0.5)
	test.That(t, pts[4], test.ShouldEqual, 1.)

	test.That(t, Linspace(2, 3, 1), test.ShouldResemble, []float64{2})
	test.That(t, Linspace(2, 3, 0), test.ShouldBeNil)
}

func TestFloatHelpers(t *testing.T) {
	test.That(t, Float64AlmostEqual(1, 1+1e-10, DefaultEpsilon), test.ShouldBeTrue)
	test.That(t, Float64AlmostEqual(1, 1.1, DefaultEpsilon), test.ShouldBeFalse)
	test.That(t, IsFinite(1, 2, 3), test.ShouldBeTrue)
	test.That(t, IsFinite(1, math.NaN()), test.ShouldBeFalse)
	test.That(t, IsFinite(math.Inf(-1)), test.ShouldBeFalse)
}
