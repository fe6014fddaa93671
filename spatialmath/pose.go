package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
)

// Pose is a point in space together with an orientation expressed as a unit quaternion.
type Pose struct {
	Point       r3.Vector
	Orientation quat.Number
}

// NewPoseFromPoint returns a pose at pt with no rotation.
func NewPoseFromPoint(pt r3.Vector) Pose {
	return Pose{Point: pt, Orientation: quat.Number{Real: 1}}
}

// NewPose returns a pose at pt with the orientation q, normalized.
func NewPose(pt r3.Vector, q quat.Number) Pose {
	return Pose{Point: pt, Orientation: normalize(q)}
}

// PoseFromMatrix converts a homogeneous transform to a Pose.
func PoseFromMatrix(h mat.Matrix) Pose {
	return NewPose(Position(h), RotationToQuat(h))
}

// Matrix returns the homogeneous transform of the pose.
func (p Pose) Matrix() *mat.Dense {
	return NewTransform(QuatToRotation(p.Orientation), p.Point)
}

// Interpolate returns the pose `by` of the way from `from` to `to`: the point is interpolated linearly
// and the orientation spherically, along the shortest arc.
func Interpolate(from, to Pose, by float64) Pose {
	pt := from.Point.Add(to.Point.Sub(from.Point).Mul(by))
	return Pose{Point: pt, Orientation: slerp(from.Orientation, to.Orientation, by)}
}

func slerp(from, to quat.Number, by float64) quat.Number {
	from, to = normalize(from), normalize(to)
	if OrientationAlmostEqual(from, to, 1e-15) {
		return from
	}
	// q and -q are the same rotation, take the short way around
	if from.Real*to.Real+from.Imag*to.Imag+from.Jmag*to.Jmag+from.Kmag*to.Kmag < 0 {
		to = quat.Scale(-1, to)
	}
	delta := quat.Mul(quat.Conj(from), to)
	return normalize(quat.Mul(from, quat.Pow(delta, quat.Number{Real: by})))
}

func normalize(q quat.Number) quat.Number {
	n := quat.Abs(q)
	if n == 0 {
		return quat.Number{Real: 1}
	}
	return quat.Scale(1/n, q)
}

// QuatToRotation returns the 3x3 rotation matrix of a unit quaternion.
func QuatToRotation(q quat.Number) *mat.Dense {
	q = normalize(q)
	w, x, y, z := q.Real, q.Imag, q.Jmag, q.Kmag
	return mat.NewDense(3, 3, []float64{
		1 - 2*(y*y+z*z), 2 * (x*y - w*z), 2 * (x*z + w*y),
		2 * (x*y + w*z), 1 - 2*(x*x+z*z), 2 * (y*z - w*x),
		2 * (x*z - w*y), 2 * (y*z + w*x), 1 - 2*(x*x+y*y),
	})
}

// RotationToQuat converts the rotation block of m (3x3 or 4x4) to a unit quaternion.
func RotationToQuat(m mat.Matrix) quat.Number {
	m00, m11, m22 := m.At(0, 0), m.At(1, 1), m.At(2, 2)
	trace := m00 + m11 + m22
	var q quat.Number
	switch {
	case trace > 0:
		s := 0.5 / math.Sqrt(trace+1)
		q = quat.Number{
			Real: 0.25 / s,
			Imag: (m.At(2, 1) - m.At(1, 2)) * s,
			Jmag: (m.At(0, 2) - m.At(2, 0)) * s,
			Kmag: (m.At(1, 0) - m.At(0, 1)) * s,
		}
	case m00 > m11 && m00 > m22:
		s := 2 * math.Sqrt(1+m00-m11-m22)
		q = quat.Number{
			Real: (m.At(2, 1) - m.At(1, 2)) / s,
			Imag: 0.25 * s,
			Jmag: (m.At(0, 1) + m.At(1, 0)) / s,
			Kmag: (m.At(0, 2) + m.At(2, 0)) / s,
		}
	case m11 > m22:
		s := 2 * math.Sqrt(1+m11-m00-m22)
		q = quat.Number{
			Real: (m.At(0, 2) - m.At(2, 0)) / s,
			Imag: (m.At(0, 1) + m.At(1, 0)) / s,
			Jmag: 0.25 * s,
			Kmag: (m.At(1, 2) + m.At(2, 1)) / s,
		}
	default:
		s := 2 * math.Sqrt(1+m22-m00-m11)
		q = quat.Number{
			Real: (m.At(1, 0) - m.At(0, 1)) / s,
			Imag: (m.At(0, 2) + m.At(2, 0)) / s,
			Jmag: (m.At(1, 2) + m.At(2, 1)) / s,
			Kmag: 0.25 * s,
		}
	}
	return normalize(q)
}

// OrientationAlmostEqual reports whether two quaternions describe the same rotation within epsilon.
func OrientationAlmostEqual(a, b quat.Number, epsilon float64) bool {
	a, b = normalize(a), normalize(b)
	dot := a.Real*b.Real + a.Imag*b.Imag + a.Jmag*b.Jmag + a.Kmag*b.Kmag
	return 1-math.Abs(dot) <= epsilon
}
