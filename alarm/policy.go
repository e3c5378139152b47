package alarm

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/cloudwatch"
	"github.com/pkg/errors"
)

const (
	MetricCPUUtilization    = "CPUUtilization"
	MetricStatusCheckFailed = "StatusCheckFailed"
	MetricNetworkIn         = "NetworkIn"

	Namespace           = "AWS/EC2"
	DimensionInstanceID = "InstanceId"
	Period              = 300
	TreatMissingData    = "missing"
)

// Policy describes how one metric of an instance is alarmed on.
type Policy struct {
	MetricName         string
	Description        string
	Threshold          float64
	EvaluationPeriods  int64
	DatapointsToAlarm  int64
	ComparisonOperator string
}

// DefaultPolicies returns the CPU, status check and network policies in the
// order their alarms appear in the composite rule.
func DefaultPolicies() []Policy {
	return []Policy{
		{
			MetricName:         MetricCPUUtilization,
			Description:        "CPU Utilization alarm",
			Threshold:          80,
			EvaluationPeriods:  5,
			DatapointsToAlarm:  3,
			ComparisonOperator: cloudwatch.ComparisonOperatorGreaterThanOrEqualToThreshold,
		},
		{
			MetricName:         MetricStatusCheckFailed,
			Description:        "Status Check Failed alarm",
			Threshold:          1,
			EvaluationPeriods:  3,
			DatapointsToAlarm:  1,
			ComparisonOperator: cloudwatch.ComparisonOperatorGreaterThanOrEqualToThreshold,
		},
		{
			MetricName:         MetricNetworkIn,
			Description:        "Network In alarm",
			Threshold:          25000000,
			EvaluationPeriods:  5,
			DatapointsToAlarm:  1,
			ComparisonOperator: cloudwatch.ComparisonOperatorGreaterThanOrEqualToThreshold,
		},
	}
}

func (p Policy) Validate() error {
	if p.MetricName == "" {
		return errors.New("metric name is empty")
	}
	if p.EvaluationPeriods < 1 {
		return errors.Errorf("%s: evaluation periods must be at least 1", p.MetricName)
	}
	if p.DatapointsToAlarm < 1 || p.DatapointsToAlarm > p.EvaluationPeriods {
		return errors.Errorf("%s: datapoints to alarm must be between 1 and %d", p.MetricName, p.EvaluationPeriods)
	}
	for _, op := range cloudwatch.ComparisonOperator_Values() {
		if p.ComparisonOperator == op {
			return nil
		}
	}
	return errors.Errorf("%s: unknown comparison operator %q", p.MetricName, p.ComparisonOperator)
}

// metricAlarmInput builds the put request for one instance metric. Metric
// alarms never carry actions; only the composite notifies.
func metricAlarmInput(instanceID, alarmName string, p Policy) *cloudwatch.PutMetricAlarmInput {
	return &cloudwatch.PutMetricAlarmInput{
		AlarmName:        aws.String(alarmName),
		AlarmDescription: aws.String(p.Description),
		ActionsEnabled:   aws.Bool(false),
		MetricName:       aws.String(p.MetricName),
		Namespace:        aws.String(Namespace),
		Statistic:        aws.String(cloudwatch.StatisticAverage),
		Dimensions: []*cloudwatch.Dimension{
			{Name: aws.String(DimensionInstanceID), Value: aws.String(instanceID)},
		},
		Period:             aws.Int64(Period),
		EvaluationPeriods:  aws.Int64(p.EvaluationPeriods),
		DatapointsToAlarm:  aws.Int64(p.DatapointsToAlarm),
		Threshold:          aws.Float64(p.Threshold),
		ComparisonOperator: aws.String(p.ComparisonOperator),
		TreatMissingData:   aws.String(TreatMissingData),
	}
}

func compositeAlarmInput(alarmName, rule, topicARN string) *cloudwatch.PutCompositeAlarmInput {
	return &cloudwatch.PutCompositeAlarmInput{
		AlarmName:               aws.String(alarmName),
		AlarmRule:               aws.String(rule),
		ActionsEnabled:          aws.Bool(true),
		AlarmActions:            aws.StringSlice([]string{topicARN}),
		OKActions:               aws.StringSlice([]string{topicARN}),
		InsufficientDataActions: []*string{},
	}
}
