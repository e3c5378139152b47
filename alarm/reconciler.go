package alarm

import (
	"context"

	"github.com/pkg/errors"
	"github.com/yuichiro-h/ec2-composite-alarm/instance"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Status int

const (
	StatusCompleted Status = iota
	// StatusSkipped means the composite alarm already existed and nothing
	// else was looked at.
	StatusSkipped
	StatusPartiallyFailed
)

func (s Status) String() string {
	switch s {
	case StatusCompleted:
		return "completed"
	case StatusSkipped:
		return "skipped"
	case StatusPartiallyFailed:
		return "partially_failed"
	}
	return "unknown"
}

// Outcome is the result of reconciling one instance. Err combines every
// step error; multierr.Errors splits it.
type Outcome struct {
	Instance instance.Record
	Status   Status
	Steps    []StepResult
	Err      error
}

func (o Outcome) AlarmNames(a Action) []string {
	var names []string
	for _, s := range o.Steps {
		if s.Action == a {
			names = append(names, s.AlarmName)
		}
	}
	return names
}

type Report struct {
	Outcomes []Outcome
}

func (r *Report) Count(s Status) int {
	var n int
	for _, o := range r.Outcomes {
		if o.Status == s {
			n++
		}
	}
	return n
}

func (r *Report) HasFailures() bool {
	return r.Count(StatusPartiallyFailed) > 0
}

func (r *Report) AlarmNames(a Action) []string {
	var names []string
	for _, o := range r.Outcomes {
		names = append(names, o.AlarmNames(a)...)
	}
	return names
}

type Options struct {
	TopicARN        string
	// Policies are alarmed on in order; the composite rule follows the same
	// order.
	Policies        []Policy
	QueryFailure    QueryFailurePolicy
	DryRun          bool
	ParallelMetrics bool
}

func (o Options) Validate() error {
	if o.TopicARN == "" {
		return errors.New("topic ARN is required")
	}
	if len(o.Policies) == 0 {
		return errors.New("at least one metric policy is required")
	}
	seen := map[string]bool{}
	for _, p := range o.Policies {
		if err := p.Validate(); err != nil {
			return err
		}
		if seen[p.MetricName] {
			return errors.Errorf("duplicate policy for %s", p.MetricName)
		}
		seen[p.MetricName] = true
	}
	return nil
}

// Reconciler brings each instance's alarm set into existence: one metric
// alarm per policy plus the composite over them. A composite that already
// exists marks the instance as done.
type Reconciler struct {
	opts     Options
	logger   *zap.Logger
	checker  *Checker
	builder  *Builder
	composer *Composer
}

func NewReconciler(cw CloudWatchAPI, opts Options, logger *zap.Logger) (*Reconciler, error) {
	if err := opts.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid reconciler options")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	checker := NewChecker(cw, logger)
	return &Reconciler{
		opts:     opts,
		logger:   logger,
		checker:  checker,
		builder:  NewBuilder(cw, checker, logger, opts.QueryFailure, opts.DryRun),
		composer: NewComposer(cw, logger, opts.DryRun),
	}, nil
}

// Reconcile processes records sequentially in input order. Per-instance
// failures are recorded in the report; only cancellation of ctx stops the
// batch, abandoning the remaining records.
func (r *Reconciler) Reconcile(ctx context.Context, records []instance.Record) (*Report, error) {
	report := &Report{}
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			r.logger.Error("reconciliation aborted",
				zap.Int("processed", i),
				zap.Int("abandoned", len(records)-i),
				zap.Error(err))
			return report, errors.WithStack(err)
		}
		report.Outcomes = append(report.Outcomes, r.ReconcileInstance(ctx, rec))
	}

	r.logger.Info("reconciliation finished",
		zap.Int("instances", len(report.Outcomes)),
		zap.Int("completed", report.Count(StatusCompleted)),
		zap.Int("skipped", report.Count(StatusSkipped)),
		zap.Int("partially_failed", report.Count(StatusPartiallyFailed)),
		zap.Strings("created", report.AlarmNames(ActionCreated)))
	return report, nil
}

func (r *Reconciler) ReconcileInstance(ctx context.Context, rec instance.Record) Outcome {
	out := Outcome{Instance: rec}
	logger := r.logger.With(
		zap.String("instance_id", rec.ID),
		zap.String("instance_name", rec.Name))

	exists, err := r.checker.CompositeExists(ctx, rec.Name, r.opts.TopicARN)
	if err != nil {
		out.Err = err
		if r.opts.QueryFailure == FailClosed {
			logger.Warn("composite alarm existence unknown, skipping instance")
			out.Status = StatusPartiallyFailed
			return out
		}
	}
	if exists {
		logger.Info("composite alarm already exists, skipping")
		out.Status = StatusSkipped
		return out
	}

	steps := r.ensureMetricAlarms(ctx, rec)
	names := make([]string, 0, len(steps))
	for _, s := range steps {
		names = append(names, s.AlarmName)
		out.Err = multierr.Append(out.Err, s.Err)
	}

	composite := r.composer.Compose(ctx, rec.Name, r.opts.TopicARN, names)
	out.Err = multierr.Append(out.Err, composite.Err)
	out.Steps = append(steps, composite)

	out.Status = StatusCompleted
	if out.Err != nil {
		out.Status = StatusPartiallyFailed
		logger.Warn("instance reconciled with errors",
			zap.Int("errors", len(multierr.Errors(out.Err))),
			zap.Error(out.Err))
		return out
	}
	logger.Info("instance reconciled")
	return out
}

// ensureMetricAlarms runs the builder once per policy. Results keep policy
// order even when the creates run concurrently.
func (r *Reconciler) ensureMetricAlarms(ctx context.Context, rec instance.Record) []StepResult {
	steps := make([]StepResult, len(r.opts.Policies))
	if !r.opts.ParallelMetrics {
		for i, p := range r.opts.Policies {
			steps[i] = r.builder.Ensure(ctx, rec.ID, rec.Name, p)
		}
		return steps
	}

	var g errgroup.Group
	for i, p := range r.opts.Policies {
		i, p := i, p
		g.Go(func() error {
			steps[i] = r.builder.Ensure(ctx, rec.ID, rec.Name, p)
			return nil
		})
	}
	_ = g.Wait()
	return steps
}
