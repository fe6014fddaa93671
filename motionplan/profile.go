package motionplan

import (
	"fmt"
	"math"

	"github.com/samber/lo"

	"github.com/viam-labs/trajplan/kinematics"
)

// ProfileType is the shape of the velocity curve of a motion.
type ProfileType int

const (
	// Triangular profiles accelerate then immediately decelerate.
	Triangular ProfileType = iota
	// Trapezoidal profiles cruise at constant velocity between the ramps.
	Trapezoidal
)

func (p ProfileType) String() string {
	switch p {
	case Triangular:
		return "triangular"
	case Trapezoidal:
		return "trapezoidal"
	default:
		return fmt.Sprintf("ProfileType(%d)", int(p))
	}
}

// MotionProfile is the time optimal profile of a single joint. T1 is the time the acceleration
// ramp ends and Tau the time the plateau ends, so Tau >= T1 >= 0 and a Triangular profile has
// Tau == T1.
type MotionProfile struct {
	Type             ProfileType
	T1               float64
	Tau              float64
	PeakVelocity     float64
	PeakAcceleration float64
}

// SelectProfile picks the fastest profile covering |displacement| within lim.
func SelectProfile(displacement float64, lim JointLimits) MotionProfile {
	dq := math.Abs(displacement)
	if dq == 0 {
		return MotionProfile{Type: Triangular}
	}
	vPeak := math.Sqrt(dq * lim.MaxAcceleration)
	if vPeak <= lim.MaxVelocity {
		t1 := math.Sqrt(dq / lim.MaxAcceleration)
		return MotionProfile{
			Type:             Triangular,
			T1:               t1,
			Tau:              t1,
			PeakVelocity:     vPeak,
			PeakAcceleration: lim.MaxAcceleration,
		}
	}
	return MotionProfile{
		Type:             Trapezoidal,
		T1:               lim.MaxVelocity / lim.MaxAcceleration,
		Tau:              dq / lim.MaxVelocity,
		PeakVelocity:     lim.MaxVelocity,
		PeakAcceleration: lim.MaxAcceleration,
	}
}

// SelectProfiles selects the profile of every joint moving from q0 to qf.
func SelectProfiles(q0, qf []float64, limits []JointLimits) ([]MotionProfile, error) {
	if len(q0) != len(qf) {
		return nil, kinematics.NewIncorrectDoFError(len(qf), len(q0))
	}
	if len(limits) != len(q0) {
		return nil, kinematics.NewIncorrectDoFError(len(limits), len(q0))
	}
	return lo.Map(q0, func(start float64, j int) MotionProfile {
		return SelectProfile(qf[j]-start, limits[j])
	}), nil
}

// anyTrapezoidal reports whether a single joint needs a plateau, which forces every joint of a
// synchronized plan onto a trapezoidal profile.
func anyTrapezoidal(profiles []MotionProfile) bool {
	return lo.SomeBy(profiles, func(p MotionProfile) bool {
		return p.Type == Trapezoidal
	})
}
