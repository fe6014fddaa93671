package motionplan

import (
	"errors"

	"github.com/viam-labs/trajplan/kinematics"
)

var (
	// ErrDegenerateInput is returned for inputs that would require dividing by zero, such as an empty
	// time span or a non-positive sampling frequency.
	ErrDegenerateInput = errors.New("degenerate input")

	// ErrSingularMatrix is returned when a linear system has no unique solution.
	ErrSingularMatrix = errors.New("singular matrix")

	// ErrNoIKSolution is returned when a Cartesian waypoint cannot be converted to joint space.
	ErrNoIKSolution = kinematics.ErrNoIKSolution

	// ErrNonFinite is returned if a computation produced NaN or infinite values.
	ErrNonFinite = errors.New("non-finite value produced")
)
