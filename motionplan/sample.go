package motionplan

import (
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/viam-labs/trajplan/utils"
)

// Sample evaluates plan on a grid of samples points spanning [0, Duration + 2 periods]. Positions
// are integrated with forward Euler over the grid spacing, so they only approximate the analytic
// profile; the error shrinks as samples grows.
func Sample(plan Plan, samples int) (*Trajectory, error) {
	if samples < 2 {
		return nil, errors.Wrapf(ErrDegenerateInput, "need at least 2 samples, got %d", samples)
	}
	times := utils.Linspace(0, plan.Duration()+2*plan.Period(), samples)
	dt := times[1] - times[0]

	prev := lo.Map(plan.Joints, func(jp JointPlan, _ int) JointState {
		return JointState{Position: jp.Start}
	})
	states := make([][]JointState, 0, samples)
	for _, t := range times {
		next := make([]JointState, len(prev))
		for j, state := range prev {
			next[j] = plan.step(j, state, t, dt)
			if !utils.IsFinite(next[j].Position, next[j].Velocity, next[j].Acceleration) {
				return nil, errors.Wrapf(ErrNonFinite, "joint %d at t=%v", j, t)
			}
		}
		states = append(states, next)
		prev = next
	}
	return &Trajectory{Times: times, States: states}, nil
}

// step advances joint j from prev to time t.
func (p Plan) step(j int, prev JointState, t, dt float64) JointState {
	vel, acc := p.StateAt(j, t)
	return JointState{
		Position:     prev.Position + vel*dt,
		Velocity:     vel,
		Acceleration: acc,
	}
}
