package motionplan

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"go.viam.com/test"

	"github.com/viam-labs/trajplan/kinematics"
	"github.com/viam-labs/trajplan/logging"
	"github.com/viam-labs/trajplan/spatialmath"
)

func newLinearRequest(start, goal r3.Vector) LinearRequest {
	cfg := DefaultPTPConfig()
	cfg.Samples = 200
	return LinearRequest{
		Start:   spatialmath.NewPoseFromPoint(start),
		Goal:    spatialmath.NewPoseFromPoint(goal),
		Samples: 10,
		Config:  cfg,
	}
}

func TestPlanLinear(t *testing.T) {
	logger, logs := logging.NewObservedTestLogger(t)
	arm, err := kinematics.NewRRR(1, 1, 1)
	test.That(t, err, test.ShouldBeNil)

	start := r3.Vector{X: 1.5, Y: 0, Z: 1}
	goal := r3.Vector{X: 1, Y: 0.8, Z: 1.4}
	plan, err := PlanLinear(context.Background(), arm, newLinearRequest(start, goal), logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, plan.Segments, test.ShouldHaveLength, 10)

	h, err := arm.ForwardKinematics(plan.Start)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, spatialmath.Position(h).Sub(start).Norm(), test.ShouldBeLessThan, 1e-9)

	for i, seg := range plan.Segments {
		expected := start.Add(goal.Sub(start).Mul(float64(i+1) / 10))
		test.That(t, seg.Target.Sub(expected).Norm(), test.ShouldBeLessThan, 1e-9)
		test.That(t, seg.Reached.Sub(seg.Target).Norm(), test.ShouldBeLessThan, 1e-3)
		test.That(t, seg.EndEffectorVelocity, test.ShouldHaveLength, seg.Joints.Len())
		for _, v := range seg.EndEffectorVelocity {
			test.That(t, v, test.ShouldHaveLength, 6)
		}
		// every segment starts and ends at rest
		test.That(t, r3.Vector{X: seg.EndEffectorVelocity[0][0], Y: seg.EndEffectorVelocity[0][1]}.Norm(), test.ShouldAlmostEqual, 0)
	}
	last := plan.Segments[len(plan.Segments)-1]
	test.That(t, last.Reached.Sub(goal).Norm(), test.ShouldBeLessThan, 1e-3)

	// the concatenated trajectory is continuous in time
	test.That(t, plan.Trajectory.Len(), test.ShouldEqual, 10*200-9)
	for i := 1; i < plan.Trajectory.Len(); i++ {
		test.That(t, plan.Trajectory.Times[i], test.ShouldBeGreaterThan, plan.Trajectory.Times[i-1])
	}
	test.That(t, plan.Trajectory.FinalPositions(), test.ShouldResemble, last.Joints.FinalPositions())
	test.That(t, logs.FilterMessageSnippet("linear motion done").Len(), test.ShouldEqual, 1)
}

func TestPlanLinearAcrossYawSeam(t *testing.T) {
	arm, err := kinematics.NewRRR(1, 1, 1)
	test.That(t, err, test.ShouldBeNil)
	// the base yaw passes +/-pi halfway along the line
	start := r3.Vector{X: -1.5, Y: 0.2, Z: 1}
	goal := r3.Vector{X: -1.5, Y: -0.2, Z: 1}
	req := newLinearRequest(start, goal)
	req.Seed = []float64{3, -0.5, 1}

	plan, err := PlanLinear(context.Background(), arm, req, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, plan.Segments, test.ShouldHaveLength, 10)

	prev := plan.Start
	for _, seg := range plan.Segments {
		final := seg.Joints.FinalPositions()
		for j := range final {
			test.That(t, math.Abs(final[j]-prev[j]), test.ShouldBeLessThan, 0.1)
		}
		prev = final
		for i := 0; i < seg.Joints.Len(); i++ {
			h, err := arm.ForwardKinematics(seg.Joints.Positions(i))
			test.That(t, err, test.ShouldBeNil)
			pt := spatialmath.Position(h)
			test.That(t, math.Abs(pt.X-start.X), test.ShouldBeLessThan, 0.01)
			test.That(t, math.Abs(pt.Z-start.Z), test.ShouldBeLessThan, 0.01)
		}
	}
	test.That(t, plan.Segments[9].Reached.Sub(goal).Norm(), test.ShouldBeLessThan, 1e-3)
	// the yaw kept increasing through pi instead of jumping back to -pi
	test.That(t, prev[0], test.ShouldBeGreaterThan, math.Pi)
}

func TestPlanLinearJacobianMethods(t *testing.T) {
	arm, err := kinematics.NewRRR(1, 1, 1)
	test.That(t, err, test.ShouldBeNil)
	req := newLinearRequest(r3.Vector{X: 1.5, Z: 1}, r3.Vector{X: 1.2, Y: 0.3, Z: 1.2})
	req.Samples = 2

	skew, err := PlanLinear(context.Background(), arm, req, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	req.JacobianMethod = kinematics.JacobianNumerical
	numeric, err := PlanLinear(context.Background(), arm, req, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	test.That(t, numeric.Segments, test.ShouldHaveLength, len(skew.Segments))
	for i, seg := range skew.Segments {
		diff := cmp.Diff(seg.EndEffectorVelocity, numeric.Segments[i].EndEffectorVelocity, cmpopts.EquateApprox(0, 1e-5))
		test.That(t, diff, test.ShouldBeEmpty)
	}
}

func TestPlanLinearFailures(t *testing.T) {
	logger := logging.NewTestLogger(t)
	arm, err := kinematics.NewRRR(1, 1, 1)
	test.That(t, err, test.ShouldBeNil)

	// the line leaves the workspace between the third and fourth sample
	_, err = PlanLinear(context.Background(), arm, newLinearRequest(r3.Vector{X: 1.5, Z: 1}, r3.Vector{X: 3, Z: 1}), logger)
	test.That(t, errors.Is(err, ErrNoIKSolution), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldContainSubstring, "sample 4 of 10")

	_, err = PlanLinear(context.Background(), arm, newLinearRequest(r3.Vector{Z: 1.5}, r3.Vector{X: 1, Z: 1}), logger)
	test.That(t, errors.Is(err, kinematics.ErrSingularity), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldContainSubstring, "start pose")

	req := newLinearRequest(r3.Vector{X: 1.5, Z: 1}, r3.Vector{X: 1, Z: 1})
	req.Samples = -1
	_, err = PlanLinear(context.Background(), arm, req, logger)
	test.That(t, errors.Is(err, ErrDegenerateInput), test.ShouldBeTrue)

	req = newLinearRequest(r3.Vector{X: 1.5, Z: 1}, r3.Vector{X: 1, Z: 1})
	req.Config.MaxVelocity = 0
	_, err = PlanLinear(context.Background(), arm, req, logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "max_velocity")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = PlanLinear(ctx, arm, newLinearRequest(r3.Vector{X: 1.5, Z: 1}, r3.Vector{X: 1, Z: 1}), logger)
	test.That(t, errors.Is(err, context.Canceled), test.ShouldBeTrue)
}
