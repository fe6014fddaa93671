// Package motionplan plans joint space point to point motions under velocity and acceleration
// limits, Cartesian linear motions built from chained point to point segments, and quintic
// polynomial blends between two boundary states.
package motionplan

import (
	"context"
	"runtime"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/viam-labs/trajplan/kinematics"
	"github.com/viam-labs/trajplan/logging"
	"github.com/viam-labs/trajplan/utils"
)

// PTP plans a synchronized, time optimal motion from q0 to qf and samples it. Joints with no
// displacement are held in place. The same inputs always yield the same outputs.
func PTP(q0, qf []float64, cfg PTPConfig, logger logging.Logger) (*Trajectory, *Plan, error) {
	if logger == nil {
		logger = logging.Global()
	}
	if err := cfg.Validate("ptp"); err != nil {
		return nil, nil, err
	}
	if len(q0) == 0 {
		return nil, nil, errors.Wrap(ErrDegenerateInput, "no joints to plan for")
	}
	if len(q0) != len(qf) {
		return nil, nil, kinematics.NewIncorrectDoFError(len(qf), len(q0))
	}
	if !utils.IsFinite(q0...) || !utils.IsFinite(qf...) {
		return nil, nil, errors.Wrapf(ErrNonFinite, "ptp from %v to %v", q0, qf)
	}
	limits, err := cfg.Limits(len(q0))
	if err != nil {
		return nil, nil, err
	}

	profiles, err := SelectProfiles(q0, qf, limits)
	if err != nil {
		return nil, nil, err
	}
	for j, p := range profiles {
		logger.Debugf("joint %d: %v profile, t1=%.4f tau=%.4f v=%.4f a=%.4f", j, p.Type, p.T1, p.Tau, p.PeakVelocity, p.PeakAcceleration)
	}

	synced, err := Synchronize(q0, qf, profiles)
	if err != nil {
		return nil, nil, err
	}
	logger.Debugf("synchronized %v plan: t1=%.4f tau=%.4f", synced.Type, synced.T1, synced.Tau)

	plan, err := Discretize(synced, cfg.Frequency)
	if err != nil {
		return nil, nil, err
	}
	logger.Debugf("discretized at %vHz: t1=%.4f tau=%.4f total=%.4f", plan.Frequency, plan.T1, plan.Tau, plan.Duration())

	traj, err := Sample(plan, cfg.SampleCount())
	if err != nil {
		return nil, nil, err
	}
	return traj, &plan, nil
}

// PTPRequest is one motion of a batch.
type PTPRequest struct {
	Start []float64
	Goal  []float64
}

// PTPBatch plans unrelated motions concurrently with the same config. The results are in the order
// of reqs. The first failure cancels the remaining requests and is returned.
func PTPBatch(ctx context.Context, reqs []PTPRequest, cfg PTPConfig, logger logging.Logger) ([]*Trajectory, error) {
	if logger == nil {
		logger = logging.Global()
	}
	results := make([]*Trajectory, len(reqs))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(runtime.NumCPU())
	for i, req := range reqs {
		i, req := i, req
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			traj, _, err := PTP(req.Start, req.Goal, cfg, logger)
			if err != nil {
				return errors.Wrapf(err, "request %d", i)
			}
			results[i] = traj
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
