package motionplan

import (
	"context"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/viam-labs/trajplan/kinematics"
	"github.com/viam-labs/trajplan/logging"
	"github.com/viam-labs/trajplan/spatialmath"
)

// DefaultLinearSamples is the default number of Cartesian steps of a linear motion.
const DefaultLinearSamples = 100

// LinearRequest describes a straight line motion of the end effector from Start to Goal.
type LinearRequest struct {
	Start spatialmath.Pose
	Goal  spatialmath.Pose

	// Samples is the number of equal steps the line is split into. Zero means DefaultLinearSamples.
	Samples int

	// Seed picks the inverse kinematics branch of Start. Defaults to the zero configuration.
	Seed []float64

	// Config parameterizes the point to point motion of every step.
	Config PTPConfig

	// JacobianMethod is used to compute the end effector velocity.
	JacobianMethod kinematics.JacobianMethod
}

// LinearSegment is the point to point motion between two consecutive waypoints.
type LinearSegment struct {
	// Target is the waypoint on the line, Reached the end effector position at the end of Joints.
	Target  r3.Vector
	Reached r3.Vector

	Joints *Trajectory

	// EndEffectorVelocity holds the linear and angular end effector velocity at every sample of Joints.
	EndEffectorVelocity [][]float64
}

// LinearPlan is a linear motion as individual segments and as one continuous trajectory.
type LinearPlan struct {
	Start      []float64
	Segments   []LinearSegment
	Trajectory *Trajectory
}

// PlanLinear moves the end effector of model along a straight line. Each waypoint is converted to
// joint space with the inverse kinematics branch closest to the current configuration and reached
// with a point to point motion. Planning stops at the first waypoint without a solution.
func PlanLinear(ctx context.Context, model kinematics.Model, req LinearRequest, logger logging.Logger) (*LinearPlan, error) {
	if logger == nil {
		logger = logging.Global()
	}
	if err := req.Config.Validate("linear.config"); err != nil {
		return nil, err
	}
	samples := req.Samples
	if samples == 0 {
		samples = DefaultLinearSamples
	}
	if samples < 0 {
		return nil, errors.Wrapf(ErrDegenerateInput, "invalid number of linear samples %d", samples)
	}
	seed := req.Seed
	if seed == nil {
		seed = make([]float64, model.DoF())
	}

	current, err := solveClosest(model, req.Start.Matrix(), seed)
	if err != nil {
		return nil, errors.Wrap(err, "cannot solve for start pose")
	}
	plan := &LinearPlan{Start: current, Trajectory: &Trajectory{}}
	logger.Debugf("linear motion from %v to %v in %d steps, starting at %v", req.Start.Point, req.Goal.Point, samples, current)

	for i := 1; i <= samples; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		waypoint := spatialmath.Interpolate(req.Start, req.Goal, float64(i)/float64(samples))
		target, err := solveClosest(model, waypoint.Matrix(), current)
		if err != nil {
			return nil, errors.Wrapf(err, "sample %d of %d at %v", i, samples, waypoint.Point)
		}
		segment, err := planSegment(model, current, target, req, logger)
		if err != nil {
			return nil, errors.Wrapf(err, "sample %d of %d", i, samples)
		}
		segment.Target = waypoint.Point

		if plan.Trajectory, err = plan.Trajectory.Concat(segment.Joints); err != nil {
			return nil, err
		}
		plan.Segments = append(plan.Segments, segment)
		current = segment.Joints.FinalPositions()
	}

	last := plan.Segments[len(plan.Segments)-1]
	logger.Debugf("linear motion done in %.3fs, goal %v reached %v", plan.Trajectory.Duration(), req.Goal.Point, last.Reached)
	return plan, nil
}

func planSegment(
	model kinematics.Model,
	from, to []float64,
	req LinearRequest,
	logger logging.Logger,
) (LinearSegment, error) {
	traj, _, err := PTP(from, to, req.Config, logger)
	if err != nil {
		return LinearSegment{}, err
	}
	velocities := make([][]float64, 0, traj.Len())
	for i := range traj.States {
		v, err := kinematics.EndEffectorVelocity(model, traj.Positions(i), traj.Velocities(i), req.JacobianMethod)
		if err != nil {
			return LinearSegment{}, err
		}
		velocities = append(velocities, v)
	}
	reached, err := model.ForwardKinematics(traj.FinalPositions())
	if err != nil {
		return LinearSegment{}, err
	}
	return LinearSegment{
		Reached:             spatialmath.Position(reached),
		Joints:              traj,
		EndEffectorVelocity: velocities,
	}, nil
}

func solveClosest(model kinematics.Model, pose mat.Matrix, seed []float64) ([]float64, error) {
	solutions, status, err := model.InverseKinematics(pose)
	if err != nil {
		return nil, err
	}
	if status == kinematics.IKNoSolution {
		return nil, ErrNoIKSolution
	}
	return kinematics.ClosestSolution(solutions, seed)
}
