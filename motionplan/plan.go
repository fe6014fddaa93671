package motionplan

import (
	"math"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/viam-labs/trajplan/kinematics"
	"github.com/viam-labs/trajplan/utils"
)

// JointPlan holds the peaks one joint needs to cover its displacement within the shared timing of
// a Plan.
type JointPlan struct {
	Start            float64
	Goal             float64
	Displacement     float64
	Direction        float64
	PeakVelocity     float64
	PeakAcceleration float64
}

// Plan is a set of joints sharing the same profile type and timing, so that they all start and
// finish together. A Plan is never modified once built; Discretize returns a new one.
type Plan struct {
	Type ProfileType
	T1   float64
	Tau  float64

	// Frequency is the control frequency the timing was snapped to, zero until discretized.
	Frequency float64

	Joints []JointPlan
}

// Synchronize unifies per joint profiles into a single timing. The ramp lasts as long as the
// slowest ramp, the plateau as long as the longest extra time any joint needs beyond its ramp.
func Synchronize(q0, qf []float64, profiles []MotionProfile) (Plan, error) {
	if len(q0) != len(qf) {
		return Plan{}, kinematics.NewIncorrectDoFError(len(qf), len(q0))
	}
	if len(profiles) != len(q0) {
		return Plan{}, kinematics.NewIncorrectDoFError(len(profiles), len(q0))
	}
	t1 := lo.Max(lo.Map(profiles, func(p MotionProfile, _ int) float64 { return p.T1 }))
	extra := lo.Max(lo.Map(profiles, func(p MotionProfile, _ int) float64 { return p.Tau - p.T1 }))

	profileType := Triangular
	if anyTrapezoidal(profiles) {
		profileType = Trapezoidal
	}
	return newPlan(q0, qf, profileType, t1, t1+extra, 0), nil
}

// Discretize rounds the timing of plan up to whole control periods and recomputes the peaks of
// every joint for the longer timing.
func Discretize(plan Plan, frequency float64) (Plan, error) {
	if !(frequency > 0) || math.IsInf(frequency, 1) {
		return Plan{}, errors.Wrapf(ErrDegenerateInput, "frequency must be positive and finite, got %v", frequency)
	}
	dt := 1 / frequency
	n := utils.CeilDiv(plan.T1, dt)
	m := utils.CeilDiv(plan.Tau-plan.T1, dt)
	t1 := float64(n) * dt
	tau := float64(m)*dt + t1

	q0 := lo.Map(plan.Joints, func(jp JointPlan, _ int) float64 { return jp.Start })
	qf := lo.Map(plan.Joints, func(jp JointPlan, _ int) float64 { return jp.Goal })
	return newPlan(q0, qf, plan.Type, t1, tau, frequency), nil
}

func newPlan(q0, qf []float64, profileType ProfileType, t1, tau, frequency float64) Plan {
	return Plan{
		Type:      profileType,
		T1:        t1,
		Tau:       tau,
		Frequency: frequency,
		Joints: lo.Map(q0, func(start float64, j int) JointPlan {
			return newJointPlan(start, qf[j], profileType, t1, tau)
		}),
	}
}

func newJointPlan(start, goal float64, profileType ProfileType, t1, tau float64) JointPlan {
	jp := JointPlan{
		Start:        start,
		Goal:         goal,
		Displacement: math.Abs(goal - start),
		Direction:    utils.Sign(goal - start),
	}
	// a joint already at its goal stays put, whatever the timing of the others
	if jp.Displacement == 0 || t1 == 0 || tau == 0 {
		return jp
	}
	if profileType == Trapezoidal {
		jp.PeakVelocity = jp.Displacement / tau
	} else {
		jp.PeakVelocity = jp.Displacement / t1
	}
	jp.PeakAcceleration = jp.Displacement / (tau * t1)
	return jp
}

// DoF returns the number of joints of the plan.
func (p Plan) DoF() int {
	return len(p.Joints)
}

// Period returns the control period, zero if the plan was never discretized.
func (p Plan) Period() float64 {
	if p.Frequency == 0 {
		return 0
	}
	return 1 / p.Frequency
}

// Duration returns the time at which every joint has come to rest.
func (p Plan) Duration() float64 {
	if p.Type == Trapezoidal {
		return p.T1 + p.Tau
	}
	return 2 * p.T1
}

// StateAt evaluates the velocity and acceleration of joint j at time t from the profile equations.
func (p Plan) StateAt(j int, t float64) (velocity, acceleration float64) {
	jp := p.Joints[j]
	total := p.Duration()
	decelerate := func() (float64, float64) {
		acc := -jp.PeakAcceleration * jp.Direction
		return jp.Direction*jp.PeakVelocity + acc*(t-p.Tau), acc
	}

	switch {
	case jp.Displacement == 0 || t < 0 || t > total:
		return 0, 0
	case t < p.T1:
		acc := jp.PeakAcceleration * jp.Direction
		return acc * t, acc
	case p.Type == Trapezoidal && t < p.Tau:
		return jp.PeakVelocity * jp.Direction, 0
	default:
		return decelerate()
	}
}
