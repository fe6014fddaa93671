package calibration

import (
	"context"
	"math"

	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/viam-labs/trajplan/kinematics"
	"github.com/viam-labs/trajplan/logging"
	"github.com/viam-labs/trajplan/spatialmath"
)

// Model is a chain mounted between fixed base and tool transforms:
//
//	T(q, p) = Base * Chain(q, p) * Tool
type Model struct {
	Chain Chain
	Base  *mat.Dense
	Tool  *mat.Dense
}

// NewModel validates chain and returns a model. A nil base or tool is the identity.
func NewModel(chain Chain, base, tool *mat.Dense) (*Model, error) {
	if err := chain.Validate(); err != nil {
		return nil, err
	}
	if base == nil {
		base = spatialmath.Identity()
	}
	if tool == nil {
		tool = spatialmath.Identity()
	}
	return &Model{Chain: chain, Base: base, Tool: tool}, nil
}

func (m *Model) checkInputs(q, params []float64) error {
	if len(q) != m.Chain.NumJoints() {
		return kinematics.NewIncorrectDoFError(len(q), m.Chain.NumJoints())
	}
	if len(params) != m.Chain.NumParams() {
		return errors.Errorf("expected %d parameters but got %d", m.Chain.NumParams(), len(params))
	}
	return nil
}

// Forward returns the end effector pose for joints q and parameters params.
func (m *Model) Forward(q, params []float64) (*mat.Dense, error) {
	if err := m.checkInputs(q, params); err != nil {
		return nil, err
	}
	return spatialmath.Compose(m.Base, m.Chain.fold(q, params, -1), m.Tool), nil
}

// IdentificationJacobian returns the 6xP matrix of partial derivatives of the end effector pose
// with respect to each parameter. Rows 0-2 are the translation and rows 3-5 the rotation, read
// from the skew symmetric dR * R^T.
func (m *Model) IdentificationJacobian(q, params []float64) (*mat.Dense, error) {
	nominal, err := m.Forward(q, params)
	if err != nil {
		return nil, err
	}
	rotInv := spatialmath.RotationInverse(nominal)

	jac := mat.NewDense(6, len(params), nil)
	for k := range params {
		dT := spatialmath.Compose(m.Base, m.Chain.fold(q, params, k), m.Tool, rotInv)
		jac.SetCol(k, jacobianColumn(dT))
	}
	return jac, nil
}

func jacobianColumn(dT mat.Matrix) []float64 {
	lin := spatialmath.Position(dT)
	ang := spatialmath.SkewToVector(dT)
	return []float64{lin.X, lin.Y, lin.Z, ang.X, ang.Y, ang.Z}
}

// Measurement is an end effector pose observed at a joint configuration.
type Measurement struct {
	Joints []float64
	Pose   *mat.Dense
}

// poseError returns the small displacement taking model onto measured.
func poseError(measured, model mat.Matrix) []float64 {
	dp := spatialmath.Position(measured).Sub(spatialmath.Position(model))
	var e mat.Dense
	e.Mul(spatialmath.Rotation(measured), spatialmath.Rotation(model).T())
	return []float64{
		dp.X, dp.Y, dp.Z,
		(e.At(2, 1) - e.At(1, 2)) / 2,
		(e.At(0, 2) - e.At(2, 0)) / 2,
		(e.At(1, 0) - e.At(0, 1)) / 2,
	}
}

// Residual returns the stacked pose errors of every measurement.
func (m *Model) Residual(measurements []Measurement, params []float64) ([]float64, error) {
	out := make([]float64, 0, 6*len(measurements))
	for i, meas := range measurements {
		h, err := m.Forward(meas.Joints, params)
		if err != nil {
			return nil, errors.Wrapf(err, "measurement %d", i)
		}
		out = append(out, poseError(meas.Pose, h)...)
	}
	return out, nil
}

// Report summarizes how well a parameter vector explains a set of measurements.
type Report struct {
	RMS float64
	// position error norms over the measurements, in meters
	MeanPositionError float64
	MaxPositionError  float64
	P95PositionError  float64
}

// Evaluate returns the error report of params against measurements.
func (m *Model) Evaluate(measurements []Measurement, params []float64) (Report, error) {
	if len(measurements) == 0 {
		return Report{}, errors.New("no measurements to evaluate")
	}
	residual, err := m.Residual(measurements, params)
	if err != nil {
		return Report{}, err
	}
	positionErrors := make(stats.Float64Data, len(measurements))
	for i := range measurements {
		positionErrors[i] = floats.Norm(residual[6*i:6*i+3], 2)
	}
	mean, err := stats.Mean(positionErrors)
	if err != nil {
		return Report{}, err
	}
	maxErr, err := stats.Max(positionErrors)
	if err != nil {
		return Report{}, err
	}
	p95, err := stats.Percentile(positionErrors, 95)
	if err != nil {
		return Report{}, err
	}
	return Report{RMS: rms(residual), MeanPositionError: mean, MaxPositionError: maxErr, P95PositionError: p95}, nil
}

// Step performs one damped Gauss-Newton update of params, solving
//
//	(J^T J + damping I) dp = J^T r
//
// with J the stacked identification Jacobians and r the stacked residuals.
func (m *Model) Step(measurements []Measurement, params []float64, damping float64) ([]float64, error) {
	if len(measurements) == 0 {
		return nil, errors.New("no measurements to calibrate from")
	}
	if damping < 0 {
		return nil, errors.Errorf("damping must not be negative, got %v", damping)
	}
	residual, err := m.Residual(measurements, params)
	if err != nil {
		return nil, err
	}
	stacked := mat.NewDense(6*len(measurements), len(params), nil)
	for i, meas := range measurements {
		jac, err := m.IdentificationJacobian(meas.Joints, params)
		if err != nil {
			return nil, errors.Wrapf(err, "measurement %d", i)
		}
		stacked.Slice(6*i, 6*i+6, 0, len(params)).(*mat.Dense).Copy(jac)
	}

	var normal mat.Dense
	normal.Mul(stacked.T(), stacked)
	for k := range params {
		normal.Set(k, k, normal.At(k, k)+damping)
	}
	var rhs mat.VecDense
	rhs.MulVec(stacked.T(), mat.NewVecDense(len(residual), residual))

	var delta mat.VecDense
	if err := delta.SolveVec(&normal, &rhs); err != nil {
		return nil, errors.Wrap(err, "cannot solve normal equations, try a larger damping")
	}
	updated := append([]float64(nil), params...)
	floats.Add(updated, delta.RawVector().Data)
	return updated, nil
}

// Options bounds an iterative calibration.
type Options struct {
	MaxIterations int
	// Tolerance stops the iterations once the RMS residual improves by less than it.
	Tolerance float64
	Damping   float64
}

// DefaultOptions returns 20 iterations, a tolerance of 1e-12 and a damping of 1e-9.
func DefaultOptions() Options {
	return Options{MaxIterations: 20, Tolerance: 1e-12, Damping: 1e-9}
}

func rms(r []float64) float64 {
	if len(r) == 0 {
		return 0
	}
	return floats.Norm(r, 2) / math.Sqrt(float64(len(r)))
}

// Calibrate iterates Step from params until the residual stops improving.
func (m *Model) Calibrate(
	ctx context.Context,
	measurements []Measurement,
	params []float64,
	opts Options,
	logger logging.Logger,
) ([]float64, error) {
	if logger == nil {
		logger = logging.Global()
	}
	residual, err := m.Residual(measurements, params)
	if err != nil {
		return nil, err
	}
	current := append([]float64(nil), params...)
	prev := rms(residual)
	logger.Debugf("calibration start: rms residual %.3e over %d measurements", prev, len(measurements))

	for i := 0; i < opts.MaxIterations; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next, err := m.Step(measurements, current, opts.Damping)
		if err != nil {
			return nil, errors.Wrapf(err, "iteration %d", i)
		}
		residual, err := m.Residual(measurements, next)
		if err != nil {
			return nil, err
		}
		score := rms(residual)
		logger.Debugf("calibration iteration %d: rms residual %.3e", i, score)
		if score > prev {
			logger.Warnf("calibration diverged at iteration %d (%.3e > %.3e), keeping previous parameters", i, score, prev)
			break
		}
		current = next
		if prev-score < opts.Tolerance {
			break
		}
		prev = score
	}
	if report, err := m.Evaluate(measurements, current); err == nil {
		logger.Infow("calibration done",
			"rms", report.RMS,
			"mean_position_error", report.MeanPositionError,
			"max_position_error", report.MaxPositionError,
		)
	}
	return current, nil
}
