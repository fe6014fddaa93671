// Package kinematics defines the forward/inverse kinematics contract the planners consume,
// along with a three joint revolute arm implementing it.
package kinematics

import (
	"errors"
	"fmt"
	"math"

	pkgerrors "github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrNoIKSolution is returned when no joint configuration reaches the requested pose.
	ErrNoIKSolution = errors.New("unable to solve for position")

	// ErrSingularity is returned when the requested pose lies on a kinematic singularity and the
	// joint configuration is not uniquely defined.
	ErrSingularity = errors.New("pose is at a kinematic singularity")
)

// NewIncorrectDoFError is used when the number of inputs does not match the degrees of freedom of a model.
func NewIncorrectDoFError(actual, expected int) error {
	return pkgerrors.Errorf("number of inputs does not match frame DoF, expected %d but got %d", expected, actual)
}

// IKStatus describes the outcome of an inverse kinematics query.
type IKStatus int

const (
	// IKNoSolution means the pose is unreachable or singular.
	IKNoSolution IKStatus = iota
	// IKSolved means exactly one configuration reaches the pose.
	IKSolved
	// IKMultipleSolutions means several configurations reach the pose and the caller must pick a branch.
	IKMultipleSolutions
)

func (s IKStatus) String() string {
	switch s {
	case IKNoSolution:
		return "no solution"
	case IKSolved:
		return "solved"
	case IKMultipleSolutions:
		return "multiple solutions"
	default:
		return fmt.Sprintf("IKStatus(%d)", int(s))
	}
}

// StatusOf returns the status matching a set of solutions.
func StatusOf(solutions [][]float64) IKStatus {
	switch {
	case len(solutions) == 0:
		return IKNoSolution
	case len(solutions) == 1:
		return IKSolved
	default:
		return IKMultipleSolutions
	}
}

// JacobianMethod selects how a Jacobian is computed.
type JacobianMethod int

const (
	// JacobianSkew builds each column from the joint axis crossed with the lever arm to the end effector.
	JacobianSkew JacobianMethod = iota
	// JacobianNumerical differentiates forward kinematics with central differences.
	JacobianNumerical
)

func (m JacobianMethod) String() string {
	switch m {
	case JacobianSkew:
		return "skew"
	case JacobianNumerical:
		return "numerical"
	default:
		return fmt.Sprintf("JacobianMethod(%d)", int(m))
	}
}

// Model is a kinematic chain the planners can query. Implementations must be pure: the same
// input always yields the same output and no call mutates shared state.
type Model interface {
	// DoF returns the number of joints.
	DoF() int

	// ForwardKinematics returns the 4x4 pose of the end effector for the joint configuration q.
	ForwardKinematics(q []float64) (*mat.Dense, error)

	// InverseKinematics returns every joint configuration reaching the position of pose. The
	// status distinguishes between a unique solution and several branches.
	InverseKinematics(pose mat.Matrix) ([][]float64, IKStatus, error)

	// Jacobian returns the 6xN matrix mapping joint velocities to end effector linear
	// (rows 0-2) and angular (rows 3-5) velocity.
	Jacobian(q []float64, method JacobianMethod) (*mat.Dense, error)
}

// ClosestSolution returns the solution nearest to seed in joint space. Joints are revolute: each
// angle of a solution is first shifted by the multiple of 2*pi that brings it closest to the seed,
// and the shifted solution is returned, so a path crossing the +/-pi seam stays continuous.
func ClosestSolution(solutions [][]float64, seed []float64) ([]float64, error) {
	if len(solutions) == 0 {
		return nil, ErrNoIKSolution
	}
	var best []float64
	bestDist := 0.
	for _, sol := range solutions {
		if len(sol) != len(seed) {
			return nil, NewIncorrectDoFError(len(seed), len(sol))
		}
		unwrapped := make([]float64, len(sol))
		for j, theta := range sol {
			unwrapped[j] = unwrapNear(theta, seed[j])
		}
		dist := floats.Distance(unwrapped, seed, 2)
		if best == nil || dist < bestDist {
			best, bestDist = unwrapped, dist
		}
	}
	return best, nil
}

// unwrapNear returns theta + 2k*pi for the integer k putting it closest to ref.
func unwrapNear(theta, ref float64) float64 {
	return theta + 2*math.Pi*math.Round((ref-theta)/(2*math.Pi))
}

// EndEffectorVelocity returns J(q) * dq for the model.
func EndEffectorVelocity(m Model, q, dq []float64, method JacobianMethod) ([]float64, error) {
	if len(dq) != m.DoF() {
		return nil, NewIncorrectDoFError(len(dq), m.DoF())
	}
	j, err := m.Jacobian(q, method)
	if err != nil {
		return nil, err
	}
	var v mat.VecDense
	v.MulVec(j, mat.NewVecDense(len(dq), append([]float64(nil), dq...)))
	return v.RawVector().Data, nil
}
