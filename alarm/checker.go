package alarm

import (
	"context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/cloudwatch"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Checker looks up alarms that already exist in CloudWatch. Lookups that fail
// are logged and reported as absent together with a *QueryError so the
// caller can decide whether to proceed.
type Checker struct {
	cw     CloudWatchAPI
	logger *zap.Logger
}

func NewChecker(cw CloudWatchAPI, logger *zap.Logger) *Checker {
	return &Checker{cw: cw, logger: logger}
}

// CompositeExists reports whether the composite alarm of instanceName exists
// and notifies topicARN.
func (c *Checker) CompositeExists(ctx context.Context, instanceName, topicARN string) (bool, error) {
	want := CompositeAlarmName(instanceName)

	var found bool
	err := c.cw.DescribeAlarmsPagesWithContext(ctx, &cloudwatch.DescribeAlarmsInput{
		AlarmNamePrefix: aws.String(instanceName),
		ActionPrefix:    aws.String(topicARN),
		AlarmTypes:      aws.StringSlice([]string{cloudwatch.AlarmTypeCompositeAlarm}),
	}, func(out *cloudwatch.DescribeAlarmsOutput, lastPage bool) bool {
		for _, a := range out.CompositeAlarms {
			if aws.StringValue(a.AlarmName) == want {
				found = true
				return false
			}
		}
		return true
	})
	if err != nil {
		c.logger.Error("failed to describe composite alarms",
			zap.String("instance_name", instanceName),
			zap.String("topic_arn", topicARN),
			zap.Error(err))
		return false, &QueryError{Op: "describe composite alarms for " + instanceName, Err: errors.WithStack(err)}
	}

	return found, nil
}

// MetricAlarmNames returns the names of the alarms watching metricName of
// instanceID.
func (c *Checker) MetricAlarmNames(ctx context.Context, instanceID, metricName string) (map[string]struct{}, error) {
	names := map[string]struct{}{}

	out, err := c.cw.DescribeAlarmsForMetricWithContext(ctx, &cloudwatch.DescribeAlarmsForMetricInput{
		MetricName: aws.String(metricName),
		Namespace:  aws.String(Namespace),
		Dimensions: []*cloudwatch.Dimension{
			{Name: aws.String(DimensionInstanceID), Value: aws.String(instanceID)},
		},
	})
	if err != nil {
		c.logger.Error("failed to describe metric alarms",
			zap.String("instance_id", instanceID),
			zap.String("metric_name", metricName),
			zap.Error(err))
		return names, &QueryError{Op: "describe " + metricName + " alarms for " + instanceID, Err: errors.WithStack(err)}
	}

	for _, a := range out.MetricAlarms {
		names[aws.StringValue(a.AlarmName)] = struct{}{}
	}
	return names, nil
}
