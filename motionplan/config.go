package motionplan

import (
	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/viam-labs/trajplan/kinematics"
)

const (
	// DefaultFrequency is the default control frequency in Hz.
	DefaultFrequency = 10.
	// DefaultMaxVelocity is the default joint velocity limit in rad/s.
	DefaultMaxVelocity = 1.
	// DefaultMaxAcceleration is the default joint acceleration limit in rad/s^2.
	DefaultMaxAcceleration = 10.
	// DefaultSamples is the default size of the simulation time grid of a PTP trajectory.
	DefaultSamples = 1000
)

// JointLimits bounds the velocity and acceleration of a joint.
type JointLimits struct {
	MaxVelocity     float64 `json:"max_velocity"`
	MaxAcceleration float64 `json:"max_acceleration"`
}

// PTPConfig holds the parameters of a point to point plan. Limits are either shared by every joint
// (MaxVelocity and MaxAcceleration) or given per joint in JointLimits, which takes precedence.
type PTPConfig struct {
	Frequency       float64       `json:"frequency"`
	MaxVelocity     float64       `json:"max_velocity"`
	MaxAcceleration float64       `json:"max_acceleration"`
	JointLimits     []JointLimits `json:"joint_limits,omitempty"`

	// Samples is the number of points of the simulation time grid, which is independent of the
	// control period. Zero means DefaultSamples.
	Samples int `json:"samples,omitempty"`
}

// DefaultPTPConfig returns a config with f = 10Hz, dq_max = 1 and ddq_max = 10.
func DefaultPTPConfig() PTPConfig {
	return PTPConfig{
		Frequency:       DefaultFrequency,
		MaxVelocity:     DefaultMaxVelocity,
		MaxAcceleration: DefaultMaxAcceleration,
		Samples:         DefaultSamples,
	}
}

// DecodePTPConfig converts an attribute map such as {"frequency": 100, "max_velocity": 2} into a
// PTPConfig. Fields missing from attrs keep their default value; unknown fields are an error.
func DecodePTPConfig(attrs map[string]interface{}) (PTPConfig, error) {
	conf := DefaultPTPConfig()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:     "json",
		Result:      &conf,
		ErrorUnused: true,
	})
	if err != nil {
		return PTPConfig{}, err
	}
	if err := decoder.Decode(attrs); err != nil {
		return PTPConfig{}, errors.Wrap(err, "cannot decode ptp config")
	}
	return conf, nil
}

func newFieldError(path, field string, value interface{}) error {
	return errors.Errorf("%s: %q must be positive, got %v", path, field, value)
}

// Validate returns every problem found in the config at once.
func (c PTPConfig) Validate(path string) error {
	var errs error
	if !(c.Frequency > 0) {
		errs = multierr.Append(errs, newFieldError(path, "frequency", c.Frequency))
	}
	if len(c.JointLimits) == 0 {
		if !(c.MaxVelocity > 0) {
			errs = multierr.Append(errs, newFieldError(path, "max_velocity", c.MaxVelocity))
		}
		if !(c.MaxAcceleration > 0) {
			errs = multierr.Append(errs, newFieldError(path, "max_acceleration", c.MaxAcceleration))
		}
	}
	for i, lim := range c.JointLimits {
		jointPath := errors.Errorf("%s.joint_limits.%d", path, i).Error()
		if !(lim.MaxVelocity > 0) {
			errs = multierr.Append(errs, newFieldError(jointPath, "max_velocity", lim.MaxVelocity))
		}
		if !(lim.MaxAcceleration > 0) {
			errs = multierr.Append(errs, newFieldError(jointPath, "max_acceleration", lim.MaxAcceleration))
		}
	}
	if c.Samples != 0 && c.Samples < 2 {
		errs = multierr.Append(errs, errors.Errorf("%s: %q must be at least 2, got %d", path, "samples", c.Samples))
	}
	return errs
}

// Period returns the control period 1/Frequency.
func (c PTPConfig) Period() float64 {
	return 1 / c.Frequency
}

// SampleCount returns the size of the simulation grid.
func (c PTPConfig) SampleCount() int {
	if c.Samples == 0 {
		return DefaultSamples
	}
	return c.Samples
}

// Limits returns the limits of each of the dof joints.
func (c PTPConfig) Limits(dof int) ([]JointLimits, error) {
	limits := make([]JointLimits, dof)
	switch len(c.JointLimits) {
	case 0:
		for i := range limits {
			limits[i] = JointLimits{MaxVelocity: c.MaxVelocity, MaxAcceleration: c.MaxAcceleration}
		}
	case 1:
		for i := range limits {
			limits[i] = c.JointLimits[0]
		}
	case dof:
		copy(limits, c.JointLimits)
	default:
		return nil, errors.Wrap(kinematics.NewIncorrectDoFError(len(c.JointLimits), dof), "joint_limits")
	}
	return limits, nil
}
