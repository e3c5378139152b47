package main

import (
	"context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cloudwatch"
	"github.com/aws/aws-sdk-go/service/sns"
	"github.com/pkg/errors"
	"github.com/yuichiro-h/ec2-composite-alarm/alarm"
	"github.com/yuichiro-h/ec2-composite-alarm/config"
	"github.com/yuichiro-h/ec2-composite-alarm/instance"
	"github.com/yuichiro-h/ec2-composite-alarm/log"
	"github.com/yuichiro-h/ec2-composite-alarm/topic"
	"go.uber.org/zap"
)

func execute(ctx context.Context, c *config.Config) (*alarm.Report, error) {
	awsConfig := aws.NewConfig()
	if c.AWS.Region != "" {
		awsConfig = awsConfig.WithRegion(c.AWS.Region)
	}
	sess, err := session.NewSessionWithOptions(session.Options{
		Config:            *awsConfig,
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}
	log.Get().Debug("aws session created", zap.String("region", aws.StringValue(sess.Config.Region)))

	return run(ctx, c, cloudwatch.New(sess), sns.New(sess), log.Get())
}

func run(ctx context.Context, c *config.Config, cw alarm.CloudWatchAPI, snsAPI topic.SNSAPI, logger *zap.Logger) (*alarm.Report, error) {
	records, err := instance.ReadFile(c.CSVFile)
	if err != nil {
		return nil, err
	}
	logger.Info("instance list loaded", zap.String("csv_file", c.CSVFile), zap.Int("count", len(records)))

	filter, err := instance.NewFilter(c.Instances.Include, c.Instances.Exclude)
	if err != nil {
		return nil, err
	}
	records, dropped := filter.Apply(records)
	for _, r := range dropped {
		logger.Info("instance filtered out",
			zap.String("instance_id", r.ID),
			zap.String("instance_name", r.Name))
	}

	policies, err := buildPolicies(c)
	if err != nil {
		return nil, err
	}
	queryFailure, err := alarm.ParseQueryFailurePolicy(c.QueryFailure)
	if err != nil {
		return nil, err
	}

	if c.AWS.VerifyTopic {
		if err := topic.Verify(ctx, snsAPI, c.AWS.SNSTopicARN, logger); err != nil {
			return nil, err
		}
	}

	r, err := alarm.NewReconciler(cw, alarm.Options{
		TopicARN:        c.AWS.SNSTopicARN,
		Policies:        policies,
		QueryFailure:    queryFailure,
		DryRun:          c.DryRun,
		ParallelMetrics: c.ParallelMetrics,
	}, logger)
	if err != nil {
		return nil, err
	}

	return r.Reconcile(ctx, records)
}

// buildPolicies applies the configured overrides to the default policy of
// each metric.
func buildPolicies(c *config.Config) ([]alarm.Policy, error) {
	policies := alarm.DefaultPolicies()

	known := map[string]bool{}
	for i := range policies {
		p := &policies[i]
		known[p.MetricName] = true

		o, ok := c.Metrics[p.MetricName]
		if !ok {
			continue
		}
		if o.Threshold != nil {
			p.Threshold = *o.Threshold
		}
		if o.EvaluationPeriods != nil {
			p.EvaluationPeriods = *o.EvaluationPeriods
		}
		if o.DatapointsToAlarm != nil {
			p.DatapointsToAlarm = *o.DatapointsToAlarm
		}
		if o.ComparisonOperator != nil {
			p.ComparisonOperator = *o.ComparisonOperator
		}
	}

	for name := range c.Metrics {
		if !known[name] {
			return nil, errors.Errorf("no alarm policy for metric %s", name)
		}
	}
	return policies, nil
}
