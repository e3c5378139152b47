package alarm

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Composer puts the composite alarm that aggregates an instance's metric
// alarms and notifies a topic on ALARM and OK.
type Composer struct {
	cw     CloudWatchAPI
	logger *zap.Logger
	dryRun bool
}

func NewComposer(cw CloudWatchAPI, logger *zap.Logger, dryRun bool) *Composer {
	return &Composer{cw: cw, logger: logger, dryRun: dryRun}
}

// Compose references every name in metricAlarmNames whether or not the alarm
// behind it was created in this run.
func (c *Composer) Compose(ctx context.Context, instanceName, topicARN string, metricAlarmNames []string) StepResult {
	res := StepResult{AlarmName: CompositeAlarmName(instanceName)}
	rule := AlarmRule(metricAlarmNames...)
	logger := c.logger.With(
		zap.String("instance_name", instanceName),
		zap.String("alarm_name", res.AlarmName),
		zap.String("topic_arn", topicARN))

	if c.dryRun {
		logger.Info("would create composite alarm", zap.String("alarm_rule", rule))
		res.Action = ActionPlanned
		return res
	}

	if _, err := c.cw.PutCompositeAlarmWithContext(ctx, compositeAlarmInput(res.AlarmName, rule, topicARN)); err != nil {
		logger.Error("failed to create composite alarm", zap.Error(err))
		res.Err = &CreateError{AlarmName: res.AlarmName, Err: errors.WithStack(err)}
		return res
	}

	logger.Info("composite alarm created", zap.String("alarm_rule", rule))
	res.Action = ActionCreated
	return res
}
