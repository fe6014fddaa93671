// Package spatialmath defines spatial mathematical operations on 4x4 homogeneous transforms.
package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/mat"
)

// Identity returns a new 4x4 identity transform.
func Identity() *mat.Dense {
	return mat.NewDense(4, 4, []float64{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	})
}

// TranslationX returns a pure translation of l along x.
func TranslationX(l float64) *mat.Dense {
	return NewTranslation(r3.Vector{X: l})
}

// TranslationY returns a pure translation of l along y.
func TranslationY(l float64) *mat.Dense {
	return NewTranslation(r3.Vector{Y: l})
}

// TranslationZ returns a pure translation of l along z.
func TranslationZ(l float64) *mat.Dense {
	return NewTranslation(r3.Vector{Z: l})
}

// NewTranslation returns a pure translation by pt.
func NewTranslation(pt r3.Vector) *mat.Dense {
	return mat.NewDense(4, 4, []float64{
		1, 0, 0, pt.X,
		0, 1, 0, pt.Y,
		0, 0, 1, pt.Z,
		0, 0, 0, 1,
	})
}

// RotationX returns a rotation of theta radians about x.
func RotationX(theta float64) *mat.Dense {
	s, c := math.Sincos(theta)
	return mat.NewDense(4, 4, []float64{
		1, 0, 0, 0,
		0, c, -s, 0,
		0, s, c, 0,
		0, 0, 0, 1,
	})
}

// RotationY returns a rotation of theta radians about y.
func RotationY(theta float64) *mat.Dense {
	s, c := math.Sincos(theta)
	return mat.NewDense(4, 4, []float64{
		c, 0, s, 0,
		0, 1, 0, 0,
		-s, 0, c, 0,
		0, 0, 0, 1,
	})
}

// RotationZ returns a rotation of theta radians about z.
func RotationZ(theta float64) *mat.Dense {
	s, c := math.Sincos(theta)
	return mat.NewDense(4, 4, []float64{
		c, -s, 0, 0,
		s, c, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	})
}

// DTranslationX is the derivative of TranslationX with respect to its length.
// The argument is unused, it is kept so every derivative shares the signature of its transform.
func DTranslationX(float64) *mat.Dense {
	return unitAt(0, 3)
}

// DTranslationY is the derivative of TranslationY with respect to its length.
func DTranslationY(float64) *mat.Dense {
	return unitAt(1, 3)
}

// DTranslationZ is the derivative of TranslationZ with respect to its length.
func DTranslationZ(float64) *mat.Dense {
	return unitAt(2, 3)
}

// DRotationX is the derivative of RotationX with respect to its angle.
func DRotationX(theta float64) *mat.Dense {
	s, c := math.Sincos(theta)
	return mat.NewDense(4, 4, []float64{
		0, 0, 0, 0,
		0, -s, -c, 0,
		0, c, -s, 0,
		0, 0, 0, 0,
	})
}

// DRotationY is the derivative of RotationY with respect to its angle.
func DRotationY(theta float64) *mat.Dense {
	s, c := math.Sincos(theta)
	return mat.NewDense(4, 4, []float64{
		-s, 0, c, 0,
		0, 0, 0, 0,
		-c, 0, -s, 0,
		0, 0, 0, 0,
	})
}

// DRotationZ is the derivative of RotationZ with respect to its angle.
func DRotationZ(theta float64) *mat.Dense {
	s, c := math.Sincos(theta)
	return mat.NewDense(4, 4, []float64{
		-s, -c, 0, 0,
		c, -s, 0, 0,
		0, 0, 0, 0,
		0, 0, 0, 0,
	})
}

func unitAt(i, j int) *mat.Dense {
	m := mat.NewDense(4, 4, nil)
	m.Set(i, j, 1)
	return m
}

// Compose multiplies the given transforms left to right. No arguments yields the identity.
func Compose(transforms ...mat.Matrix) *mat.Dense {
	return lo.Reduce(transforms, func(acc *mat.Dense, next mat.Matrix, _ int) *mat.Dense {
		var out mat.Dense
		out.Mul(acc, next)
		return &out
	}, Identity())
}

// Position extracts the translation column of a homogeneous transform.
func Position(h mat.Matrix) r3.Vector {
	return r3.Vector{X: h.At(0, 3), Y: h.At(1, 3), Z: h.At(2, 3)}
}

// Rotation extracts the upper-left 3x3 rotation block of a homogeneous transform.
func Rotation(h mat.Matrix) *mat.Dense {
	r := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r.Set(i, j, h.At(i, j))
		}
	}
	return r
}

// RotationInverse returns a homogeneous transform holding only the inverse of h's rotation.
// The rotation block is orthonormal so its inverse is its transpose.
func RotationInverse(h mat.Matrix) *mat.Dense {
	out := Identity()
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out.Set(i, j, h.At(j, i))
		}
	}
	return out
}

// NewTransform builds a homogeneous transform from a 3x3 rotation and a translation.
func NewTransform(rot mat.Matrix, pt r3.Vector) *mat.Dense {
	out := NewTranslation(pt)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out.Set(i, j, rot.At(i, j))
		}
	}
	return out
}

// SkewToVector reads the angular velocity out of a (nearly) skew-symmetric 3x3 block of m,
// as produced by dR * R^T.
func SkewToVector(m mat.Matrix) r3.Vector {
	return r3.Vector{X: m.At(2, 1), Y: m.At(0, 2), Z: m.At(1, 0)}
}
