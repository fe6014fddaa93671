package motionplan

import (
	"github.com/samber/lo"

	"github.com/viam-labs/trajplan/kinematics"
)

// JointState is the position, velocity and acceleration of one joint at one instant.
type JointState struct {
	Position     float64
	Velocity     float64
	Acceleration float64
}

// Trajectory is a time series of joint states. States[i][j] is joint j at Times[i].
type Trajectory struct {
	Times  []float64
	States [][]JointState
}

// Len returns the number of timesteps.
func (t *Trajectory) Len() int {
	return len(t.Times)
}

// DoF returns the number of joints, zero for an empty trajectory.
func (t *Trajectory) DoF() int {
	if len(t.States) == 0 {
		return 0
	}
	return len(t.States[0])
}

// Duration returns the time spanned by the trajectory.
func (t *Trajectory) Duration() float64 {
	if len(t.Times) == 0 {
		return 0
	}
	return t.Times[len(t.Times)-1] - t.Times[0]
}

// Final returns a copy of the last joint states.
func (t *Trajectory) Final() []JointState {
	if len(t.States) == 0 {
		return nil
	}
	return append([]JointState(nil), t.States[len(t.States)-1]...)
}

// FinalPositions returns the last position of each joint.
func (t *Trajectory) FinalPositions() []float64 {
	return lo.Map(t.Final(), func(s JointState, _ int) float64 { return s.Position })
}

// Positions returns the position of each joint at timestep i.
func (t *Trajectory) Positions(i int) []float64 {
	return lo.Map(t.States[i], func(s JointState, _ int) float64 { return s.Position })
}

// Velocities returns the velocity of each joint at timestep i.
func (t *Trajectory) Velocities(i int) []float64 {
	return lo.Map(t.States[i], func(s JointState, _ int) float64 { return s.Velocity })
}

// Joint returns the states of joint j over time.
func (t *Trajectory) Joint(j int) []JointState {
	return lo.Map(t.States, func(states []JointState, _ int) JointState { return states[j] })
}

// Concat returns a new trajectory continuing t with other. The times of other are shifted to start
// where t ends and its first sample, which coincides with the last sample of t, is dropped.
func (t *Trajectory) Concat(other *Trajectory) (*Trajectory, error) {
	if t.Len() == 0 {
		return other.clone(), nil
	}
	if other.Len() == 0 {
		return t.clone(), nil
	}
	if t.DoF() != other.DoF() {
		return nil, kinematics.NewIncorrectDoFError(other.DoF(), t.DoF())
	}
	out := t.clone()
	offset := t.Times[t.Len()-1] - other.Times[0]
	for i := 1; i < other.Len(); i++ {
		out.Times = append(out.Times, other.Times[i]+offset)
		out.States = append(out.States, append([]JointState(nil), other.States[i]...))
	}
	return out, nil
}

func (t *Trajectory) clone() *Trajectory {
	return &Trajectory{
		Times: append([]float64(nil), t.Times...),
		States: lo.Map(t.States, func(states []JointState, _ int) []JointState {
			return append([]JointState(nil), states...)
		}),
	}
}
