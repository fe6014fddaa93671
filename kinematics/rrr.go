package kinematics

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/viam-labs/trajplan/spatialmath"
	"github.com/viam-labs/trajplan/utils"
)

const (
	rrrDoF = 3

	// reach tolerance when deciding whether a target is on the edge of the workspace
	reachEpsilon = 1e-9
	// distance from the base axis under which the base yaw is undefined
	axisEpsilon = 1e-9
	// two solutions closer than this in joint space are the same branch
	branchEpsilon = 1e-9
	// step used for central differences
	numericalStep = 1e-6
)

// RRR is a three joint revolute arm: a base yaw joint lifted by L1, followed by two pitch joints
// with links of length L2 and L3. With every joint at zero the arm points along +x.
//
//	T(q) = Rz(q0) Tz(L1) Ry(q1) Tx(L2) Ry(q2) Tx(L3)
type RRR struct {
	L1, L2, L3 float64
}

// NewRRR returns a new RRR arm with the given link lengths.
func NewRRR(l1, l2, l3 float64) (*RRR, error) {
	if l1 < 0 || l2 <= 0 || l3 <= 0 {
		return nil, errors.Errorf("invalid link lengths (%v, %v, %v), the two distal links must be positive", l1, l2, l3)
	}
	return &RRR{L1: l1, L2: l2, L3: l3}, nil
}

// DoF returns 3.
func (r *RRR) DoF() int {
	return rrrDoF
}

// jointFrames returns the frame just before each joint rotates, the local rotation axis of each
// joint, and the end effector frame.
func (r *RRR) jointFrames(q []float64) ([]*mat.Dense, []r3.Vector, *mat.Dense) {
	f0 := spatialmath.Identity()
	f1 := spatialmath.Compose(f0, spatialmath.RotationZ(q[0]), spatialmath.TranslationZ(r.L1))
	f2 := spatialmath.Compose(f1, spatialmath.RotationY(q[1]), spatialmath.TranslationX(r.L2))
	ee := spatialmath.Compose(f2, spatialmath.RotationY(q[2]), spatialmath.TranslationX(r.L3))
	axes := []r3.Vector{{Z: 1}, {Y: 1}, {Y: 1}}
	return []*mat.Dense{f0, f1, f2}, axes, ee
}

// ForwardKinematics returns the pose of the end effector.
func (r *RRR) ForwardKinematics(q []float64) (*mat.Dense, error) {
	if len(q) != rrrDoF {
		return nil, NewIncorrectDoFError(len(q), rrrDoF)
	}
	_, _, ee := r.jointFrames(q)
	return ee, nil
}

// InverseKinematics solves for the position of pose; the orientation is not controllable with three
// joints and is ignored. Up to four branches are returned (base facing towards or away from the
// target, elbow up or down).
func (r *RRR) InverseKinematics(pose mat.Matrix) ([][]float64, IKStatus, error) {
	target := spatialmath.Position(pose)
	radial := math.Hypot(target.X, target.Y)
	if radial < axisEpsilon {
		return nil, IKNoSolution, errors.Wrapf(ErrSingularity, "target %v lies on the base axis", target)
	}
	s := r.L1 - target.Z
	yaw := math.Atan2(target.Y, target.X)

	var solutions [][]float64
	for _, branch := range []struct{ yaw, radial float64 }{
		{yaw, radial},
		{yaw + math.Pi, -radial},
	} {
		for _, elbow := range r.planarSolutions(branch.radial, s) {
			candidate := []float64{wrapAngle(branch.yaw), wrapAngle(elbow[0]), wrapAngle(elbow[1])}
			if !containsBranch(solutions, candidate) {
				solutions = append(solutions, candidate)
			}
		}
	}
	if len(solutions) == 0 {
		return nil, IKNoSolution, errors.Wrapf(ErrNoIKSolution, "target %v is out of reach", target)
	}
	return solutions, StatusOf(solutions), nil
}

// planarSolutions solves the two link planar problem
//
//	radial = L2 cos(q1) + L3 cos(q1+q2)
//	s      = L2 sin(q1) + L3 sin(q1+q2)
func (r *RRR) planarSolutions(radial, s float64) [][2]float64 {
	d := (radial*radial + s*s - r.L2*r.L2 - r.L3*r.L3) / (2 * r.L2 * r.L3)
	if math.Abs(d) > 1+reachEpsilon {
		return nil
	}
	d = math.Max(-1, math.Min(1, d))
	var out [][2]float64
	for _, sign := range []float64{1, -1} {
		q2 := sign * math.Acos(d)
		q1 := math.Atan2(s, radial) - math.Atan2(r.L3*math.Sin(q2), r.L2+r.L3*math.Cos(q2))
		out = append(out, [2]float64{q1, q2})
	}
	return out
}

// Jacobian returns the geometric Jacobian at q.
func (r *RRR) Jacobian(q []float64, method JacobianMethod) (*mat.Dense, error) {
	if len(q) != rrrDoF {
		return nil, NewIncorrectDoFError(len(q), rrrDoF)
	}
	switch method {
	case JacobianSkew:
		frames, axes, ee := r.jointFrames(q)
		pe := spatialmath.Position(ee)
		jac := mat.NewDense(6, rrrDoF, nil)
		for i, frame := range frames {
			axis := rotate(frame, axes[i])
			linear := axis.Cross(pe.Sub(spatialmath.Position(frame)))
			jac.SetCol(i, []float64{linear.X, linear.Y, linear.Z, axis.X, axis.Y, axis.Z})
		}
		return jac, nil
	case JacobianNumerical:
		return NumericalJacobian(r, q)
	default:
		return nil, errors.Errorf("unsupported jacobian method %v", method)
	}
}

// NumericalJacobian differentiates the forward kinematics of m with central differences.
func NumericalJacobian(m Model, q []float64) (*mat.Dense, error) {
	if len(q) != m.DoF() {
		return nil, NewIncorrectDoFError(len(q), m.DoF())
	}
	nominal, err := m.ForwardKinematics(q)
	if err != nil {
		return nil, err
	}
	rotT := spatialmath.Rotation(nominal).T()
	jac := mat.NewDense(6, len(q), nil)
	for i := range q {
		plus := append([]float64(nil), q...)
		minus := append([]float64(nil), q...)
		plus[i] += numericalStep
		minus[i] -= numericalStep
		hp, err := m.ForwardKinematics(plus)
		if err != nil {
			return nil, err
		}
		hm, err := m.ForwardKinematics(minus)
		if err != nil {
			return nil, err
		}
		var dh mat.Dense
		dh.Sub(hp, hm)
		dh.Scale(1/(2*numericalStep), &dh)

		var w mat.Dense
		w.Mul(spatialmath.Rotation(&dh), rotT)
		lin := spatialmath.Position(&dh)
		ang := spatialmath.SkewToVector(&w)
		jac.SetCol(i, []float64{lin.X, lin.Y, lin.Z, ang.X, ang.Y, ang.Z})
	}
	return jac, nil
}

func rotate(frame mat.Matrix, v r3.Vector) r3.Vector {
	return r3.Vector{
		X: frame.At(0, 0)*v.X + frame.At(0, 1)*v.Y + frame.At(0, 2)*v.Z,
		Y: frame.At(1, 0)*v.X + frame.At(1, 1)*v.Y + frame.At(1, 2)*v.Z,
		Z: frame.At(2, 0)*v.X + frame.At(2, 1)*v.Y + frame.At(2, 2)*v.Z,
	}
}

func containsBranch(solutions [][]float64, candidate []float64) bool {
	for _, sol := range solutions {
		if floats.Distance(sol, candidate, 2) < branchEpsilon {
			return true
		}
	}
	return false
}

// wrapAngle maps an angle onto (-pi, pi].
func wrapAngle(theta float64) float64 {
	wrapped := math.Mod(theta+math.Pi, 2*math.Pi)
	if wrapped <= 0 {
		wrapped += 2 * math.Pi
	}
	wrapped -= math.Pi
	if utils.Float64AlmostEqual(wrapped, -math.Pi, utils.DefaultEpsilon) {
		return math.Pi
	}
	return wrapped
}
