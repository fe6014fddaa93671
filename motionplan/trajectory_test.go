package motionplan

import (
	"testing"

	"go.viam.com/test"
)

func twoStepTrajectory(start float64) *Trajectory {
	return &Trajectory{
		Times: []float64{0, 0.5, 1},
		States: [][]JointState{
			{{Position: start}, {Position: -start}},
			{{Position: start + 0.5, Velocity: 1}, {Position: -start - 0.5, Velocity: -1}},
			{{Position: start + 1}, {Position: -start - 1}},
		},
	}
}

func TestTrajectoryAccessors(t *testing.T) {
	traj := twoStepTrajectory(0)
	test.That(t, traj.Len(), test.ShouldEqual, 3)
	test.That(t, traj.DoF(), test.ShouldEqual, 2)
	test.That(t, traj.Duration(), test.ShouldEqual, 1.)
	test.That(t, traj.FinalPositions(), test.ShouldResemble, []float64{1, -1})
	test.That(t, traj.Positions(1), test.ShouldResemble, []float64{0.5, -0.5})
	test.That(t, traj.Velocities(1), test.ShouldResemble, []float64{1, -1})
	test.That(t, traj.Joint(1), test.ShouldHaveLength, 3)
	test.That(t, traj.Joint(1)[2].Position, test.ShouldEqual, -1.)

	final := traj.Final()
	final[0].Position = 42
	test.That(t, traj.States[2][0].Position, test.ShouldEqual, 1.)

	empty := &Trajectory{}
	test.That(t, empty.DoF(), test.ShouldEqual, 0)
	test.That(t, empty.Duration(), test.ShouldEqual, 0.)
	test.That(t, empty.Final(), test.ShouldBeNil)
}

func TestTrajectoryConcat(t *testing.T) {
	first := twoStepTrajectory(0)
	second := twoStepTrajectory(1)

	joined, err := first.Concat(second)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, joined.Len(), test.ShouldEqual, 5)
	test.That(t, joined.Times, test.ShouldResemble, []float64{0, 0.5, 1, 1.5, 2})
	test.That(t, joined.FinalPositions(), test.ShouldResemble, []float64{2, -2})

	// the inputs are left untouched
	test.That(t, first.Len(), test.ShouldEqual, 3)
	joined.States[0][0].Position = 42
	test.That(t, first.States[0][0].Position, test.ShouldEqual, 0.)

	fromEmpty, err := (&Trajectory{}).Concat(second)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, fromEmpty, test.ShouldResemble, second)

	toEmpty, err := first.Concat(&Trajectory{})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, toEmpty.Len(), test.ShouldEqual, 3)

	single := &Trajectory{Times: []float64{0}, States: [][]JointState{{{Position: 1}}}}
	_, err = first.Concat(single)
	test.That(t, err, test.ShouldNotBeNil)
}
