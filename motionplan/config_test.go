package motionplan

import (
	"testing"

	"go.uber.org/multierr"
	"go.viam.com/test"
)

func TestDefaultPTPConfig(t *testing.T) {
	cfg := DefaultPTPConfig()
	test.That(t, cfg.Validate("ptp"), test.ShouldBeNil)
	test.That(t, cfg.Frequency, test.ShouldEqual, 10.)
	test.That(t, cfg.MaxVelocity, test.ShouldEqual, 1.)
	test.That(t, cfg.MaxAcceleration, test.ShouldEqual, 10.)
	test.That(t, cfg.Period(), test.ShouldAlmostEqual, 0.1)
	test.That(t, cfg.SampleCount(), test.ShouldEqual, 1000)

	cfg.Samples = 0
	test.That(t, cfg.SampleCount(), test.ShouldEqual, DefaultSamples)
}

func TestValidateCollectsErrors(t *testing.T) {
	cfg := PTPConfig{Frequency: -1, MaxAcceleration: 10, Samples: 1}
	err := cfg.Validate("arm.ptp")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, multierr.Errors(err), test.ShouldHaveLength, 3)
	test.That(t, err.Error(), test.ShouldContainSubstring, `arm.ptp: "frequency" must be positive, got -1`)
	test.That(t, err.Error(), test.ShouldContainSubstring, `"max_velocity"`)
	test.That(t, err.Error(), test.ShouldContainSubstring, `"samples" must be at least 2`)

	// per joint limits replace the shared ones
	cfg = PTPConfig{Frequency: 10, JointLimits: []JointLimits{{MaxVelocity: 1, MaxAcceleration: 1}, {MaxVelocity: 1}}}
	err = cfg.Validate("ptp")
	test.That(t, multierr.Errors(err), test.ShouldHaveLength, 1)
	test.That(t, err.Error(), test.ShouldContainSubstring, `ptp.joint_limits.1: "max_acceleration"`)
}

func TestLimits(t *testing.T) {
	cfg := DefaultPTPConfig()
	limits, err := cfg.Limits(3)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, limits, test.ShouldResemble, []JointLimits{defaultLimits, defaultLimits, defaultLimits})

	slow := JointLimits{MaxVelocity: 0.1, MaxAcceleration: 0.2}
	cfg.JointLimits = []JointLimits{slow}
	limits, err = cfg.Limits(2)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, limits, test.ShouldResemble, []JointLimits{slow, slow})

	cfg.JointLimits = []JointLimits{slow, defaultLimits}
	limits, err = cfg.Limits(2)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, limits, test.ShouldResemble, []JointLimits{slow, defaultLimits})

	_, err = cfg.Limits(3)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestDecodePTPConfig(t *testing.T) {
	cfg, err := DecodePTPConfig(map[string]interface{}{
		"frequency":    125.0,
		"max_velocity": 2.5,
		"joint_limits": []interface{}{
			map[string]interface{}{"max_velocity": 0.5, "max_acceleration": 4.0},
		},
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.Frequency, test.ShouldEqual, 125.)
	test.That(t, cfg.MaxVelocity, test.ShouldEqual, 2.5)
	test.That(t, cfg.MaxAcceleration, test.ShouldEqual, DefaultMaxAcceleration)
	test.That(t, cfg.Samples, test.ShouldEqual, DefaultSamples)
	test.That(t, cfg.JointLimits, test.ShouldResemble, []JointLimits{{MaxVelocity: 0.5, MaxAcceleration: 4}})

	cfg, err = DecodePTPConfig(nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg, test.ShouldResemble, DefaultPTPConfig())

	_, err = DecodePTPConfig(map[string]interface{}{"frequncy": 10.0})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "frequncy")

	_, err = DecodePTPConfig(map[string]interface{}{"frequency": "fast"})
	test.That(t, err, test.ShouldNotBeNil)
}
