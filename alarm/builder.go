package alarm

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type Action int

const (
	// ActionNone means nothing was put, either because the request failed or
	// because it was never attempted.
	ActionNone Action = iota
	ActionCreated
	ActionExisting
	// ActionPlanned is reported in dry-run mode instead of ActionCreated.
	ActionPlanned
)

func (a Action) String() string {
	switch a {
	case ActionCreated:
		return "created"
	case ActionExisting:
		return "existing"
	case ActionPlanned:
		return "planned"
	default:
		return "none"
	}
}

// QueryFailurePolicy decides what happens to a create when the existence
// lookup before it fails.
type QueryFailurePolicy int

const (
	// FailOpen treats the alarm as absent and attempts the create.
	FailOpen QueryFailurePolicy = iota
	// FailClosed skips the create.
	FailClosed
)

func ParseQueryFailurePolicy(s string) (QueryFailurePolicy, error) {
	switch s {
	case "", "open":
		return FailOpen, nil
	case "closed":
		return FailClosed, nil
	}
	return FailOpen, errors.Errorf("unknown query failure policy %q", s)
}

func (p QueryFailurePolicy) String() string {
	if p == FailClosed {
		return "closed"
	}
	return "open"
}

// StepResult is what happened to one alarm of an instance.
type StepResult struct {
	AlarmName string
	Action    Action
	Err       error
}

// Builder creates the metric alarms of an instance that do not exist yet.
type Builder struct {
	cw             CloudWatchAPI
	checker        *Checker
	logger         *zap.Logger
	onQueryFailure QueryFailurePolicy
	dryRun         bool
}

func NewBuilder(cw CloudWatchAPI, checker *Checker, logger *zap.Logger, onQueryFailure QueryFailurePolicy, dryRun bool) *Builder {
	return &Builder{
		cw:             cw,
		checker:        checker,
		logger:         logger,
		onQueryFailure: onQueryFailure,
		dryRun:         dryRun,
	}
}

func (b *Builder) Ensure(ctx context.Context, instanceID, instanceName string, p Policy) StepResult {
	res := StepResult{AlarmName: MetricAlarmName(instanceName, p.MetricName)}
	logger := b.logger.With(
		zap.String("instance_id", instanceID),
		zap.String("instance_name", instanceName),
		zap.String("metric_name", p.MetricName),
		zap.String("alarm_name", res.AlarmName))

	existing, err := b.checker.MetricAlarmNames(ctx, instanceID, p.MetricName)
	if err != nil {
		res.Err = err
		if b.onQueryFailure == FailClosed {
			logger.Warn("existence unknown, not creating metric alarm")
			return res
		}
	}
	if _, ok := existing[res.AlarmName]; ok {
		logger.Info("metric alarm already exists")
		res.Action = ActionExisting
		return res
	}

	if b.dryRun {
		logger.Info("would create metric alarm", zap.Float64("threshold", p.Threshold))
		res.Action = ActionPlanned
		return res
	}

	if _, err := b.cw.PutMetricAlarmWithContext(ctx, metricAlarmInput(instanceID, res.AlarmName, p)); err != nil {
		logger.Error("failed to create metric alarm", zap.Error(err))
		res.Err = multierr.Append(res.Err, &CreateError{AlarmName: res.AlarmName, Err: errors.WithStack(err)})
		return res
	}

	logger.Info("metric alarm created", zap.Float64("threshold", p.Threshold))
	res.Action = ActionCreated
	return res
}
