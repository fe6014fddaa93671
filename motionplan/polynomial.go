package motionplan

import (
	"errors"

	pkgerrors "github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/viam-labs/trajplan/kinematics"
	"github.com/viam-labs/trajplan/utils"
)

// QuinticCoefficients are a0..a5 of q(t) = a0 + a1 s + a2 s^2 + a3 s^3 + a4 s^4 + a5 s^5 with
// s = t - T0, the time since the start of the blend.
type QuinticCoefficients struct {
	T0 float64
	A  [6]float64
}

// At evaluates the polynomial and its first two derivatives at the absolute time t.
func (c QuinticCoefficients) At(t float64) JointState {
	s := t - c.T0
	s2, s3, s4, s5 := s*s, s*s*s, s*s*s*s, s*s*s*s*s
	a := c.A
	return JointState{
		Position:     a[0] + a[1]*s + a[2]*s2 + a[3]*s3 + a[4]*s4 + a[5]*s5,
		Velocity:     a[1] + 2*a[2]*s + 3*a[3]*s2 + 4*a[4]*s3 + 5*a[5]*s4,
		Acceleration: 2*a[2] + 6*a[3]*s + 12*a[4]*s2 + 20*a[5]*s3,
	}
}

func boundaryRows(t float64) [][]float64 {
	t2, t3, t4, t5 := t*t, t*t*t, t*t*t*t, t*t*t*t*t
	return [][]float64{
		{1, t, t2, t3, t4, t5},
		{0, 1, 2 * t, 3 * t2, 4 * t3, 5 * t4},
		{0, 0, 2, 6 * t, 12 * t2, 20 * t3},
	}
}

// SolveQuintic returns the quintic moving from start at t0 to goal at tf. The system is solved in
// time relative to t0, so the conditioning depends only on the duration of the blend.
func SolveQuintic(t0 float64, start JointState, tf float64, goal JointState) (QuinticCoefficients, error) {
	if t0 == tf {
		return QuinticCoefficients{}, pkgerrors.Wrapf(ErrSingularMatrix, "boundary times are both %v", t0)
	}
	a := mat.NewDense(6, 6, nil)
	for i, row := range append(boundaryRows(0), boundaryRows(tf-t0)...) {
		a.SetRow(i, row)
	}
	b := mat.NewVecDense(6, []float64{
		start.Position, start.Velocity, start.Acceleration,
		goal.Position, goal.Velocity, goal.Acceleration,
	})

	var x mat.VecDense
	if err := x.SolveVec(a, b); err != nil {
		var cond mat.Condition
		if errors.As(err, &cond) || errors.Is(err, mat.ErrSingular) {
			return QuinticCoefficients{}, pkgerrors.Wrapf(ErrSingularMatrix, "%v", err)
		}
		return QuinticCoefficients{}, err
	}
	c := QuinticCoefficients{T0: t0}
	copy(c.A[:], x.RawVector().Data)
	if !utils.IsFinite(c.A[:]...) {
		return QuinticCoefficients{}, pkgerrors.Wrapf(ErrSingularMatrix, "coefficients %v", c.A)
	}
	return c, nil
}

// Quintic blends every joint from start at t0 to goal at tf and samples the result every dt. The
// last sample is always at tf.
func Quintic(t0, tf float64, start, goal []JointState, dt float64) (*Trajectory, []QuinticCoefficients, error) {
	if len(start) != len(goal) {
		return nil, nil, kinematics.NewIncorrectDoFError(len(goal), len(start))
	}
	if tf < t0 {
		return nil, nil, pkgerrors.Wrapf(ErrDegenerateInput, "end time %v is before start time %v", tf, t0)
	}
	if !(dt > 0) {
		return nil, nil, pkgerrors.Wrapf(ErrDegenerateInput, "time step must be positive, got %v", dt)
	}

	coeffs := make([]QuinticCoefficients, len(start))
	for j := range start {
		c, err := SolveQuintic(t0, start[j], tf, goal[j])
		if err != nil {
			return nil, nil, pkgerrors.Wrapf(err, "joint %d", j)
		}
		coeffs[j] = c
	}

	times := utils.Linspace(t0, tf, utils.CeilDiv(tf-t0, dt)+1)
	states := make([][]JointState, len(times))
	for i, t := range times {
		states[i] = make([]JointState, len(coeffs))
		for j, c := range coeffs {
			states[i][j] = c.At(t)
		}
	}
	return &Trajectory{Times: times, States: states}, coeffs, nil
}
