package alarm

import (
	"fmt"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/cloudwatch"
)

// fakeCloudWatch keeps alarms in memory so that state carries over between
// runs. Composite alarms are returned one per page.
type fakeCloudWatch struct {
	mu sync.Mutex

	metricAlarms    map[string]*cloudwatch.PutMetricAlarmInput
	compositeAlarms map[string]*cloudwatch.PutCompositeAlarmInput

	describeCompositeErr error
	describeMetricErr    map[string]error
	putErr               map[string]error

	calls []string
}

func newFakeCloudWatch() *fakeCloudWatch {
	return &fakeCloudWatch{
		metricAlarms:      map[string]*cloudwatch.PutMetricAlarmInput{},
		compositeAlarms:   map[string]*cloudwatch.PutCompositeAlarmInput{},
		describeMetricErr: map[string]error{},
		putErr:            map[string]error{},
	}
}

func (f *fakeCloudWatch) record(format string, args ...interface{}) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeCloudWatch) DescribeAlarmsPagesWithContext(_ aws.Context, in *cloudwatch.DescribeAlarmsInput, fn func(*cloudwatch.DescribeAlarmsOutput, bool) bool, _ ...request.Option) error {
	f.mu.Lock()
	f.record("DescribeAlarms %s", aws.StringValue(in.AlarmNamePrefix))
	if f.describeCompositeErr != nil {
		f.mu.Unlock()
		return f.describeCompositeErr
	}

	var pages []*cloudwatch.DescribeAlarmsOutput
	for name, a := range f.compositeAlarms {
		if !strings.HasPrefix(name, aws.StringValue(in.AlarmNamePrefix)) {
			continue
		}
		if !hasActionPrefix(a, aws.StringValue(in.ActionPrefix)) {
			continue
		}
		pages = append(pages, &cloudwatch.DescribeAlarmsOutput{
			CompositeAlarms: []*cloudwatch.CompositeAlarm{
				{AlarmName: a.AlarmName, AlarmRule: a.AlarmRule, AlarmActions: a.AlarmActions},
			},
		})
	}
	f.mu.Unlock()

	if len(pages) == 0 {
		fn(&cloudwatch.DescribeAlarmsOutput{}, true)
		return nil
	}
	for i, p := range pages {
		if !fn(p, i == len(pages)-1) {
			break
		}
	}
	return nil
}

func hasActionPrefix(a *cloudwatch.PutCompositeAlarmInput, prefix string) bool {
	if prefix == "" {
		return true
	}
	for _, actions := range [][]*string{a.AlarmActions, a.OKActions, a.InsufficientDataActions} {
		for _, act := range actions {
			if strings.HasPrefix(aws.StringValue(act), prefix) {
				return true
			}
		}
	}
	return false
}

func (f *fakeCloudWatch) DescribeAlarmsForMetricWithContext(_ aws.Context, in *cloudwatch.DescribeAlarmsForMetricInput, _ ...request.Option) (*cloudwatch.DescribeAlarmsForMetricOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	instanceID := aws.StringValue(in.Dimensions[0].Value)
	metricName := aws.StringValue(in.MetricName)
	f.record("DescribeAlarmsForMetric %s %s", instanceID, metricName)
	if err := f.describeMetricErr[metricName]; err != nil {
		return nil, err
	}

	out := &cloudwatch.DescribeAlarmsForMetricOutput{}
	for _, a := range f.metricAlarms {
		if aws.StringValue(a.MetricName) != metricName || aws.StringValue(a.Namespace) != aws.StringValue(in.Namespace) {
			continue
		}
		if aws.StringValue(a.Dimensions[0].Value) != instanceID {
			continue
		}
		out.MetricAlarms = append(out.MetricAlarms, &cloudwatch.MetricAlarm{AlarmName: a.AlarmName, MetricName: a.MetricName})
	}
	return out, nil
}

func (f *fakeCloudWatch) PutMetricAlarmWithContext(_ aws.Context, in *cloudwatch.PutMetricAlarmInput, _ ...request.Option) (*cloudwatch.PutMetricAlarmOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	name := aws.StringValue(in.AlarmName)
	f.record("PutMetricAlarm %s", name)
	if err := f.putErr[name]; err != nil {
		return nil, err
	}
	f.metricAlarms[name] = in
	return &cloudwatch.PutMetricAlarmOutput{}, nil
}

func (f *fakeCloudWatch) PutCompositeAlarmWithContext(_ aws.Context, in *cloudwatch.PutCompositeAlarmInput, _ ...request.Option) (*cloudwatch.PutCompositeAlarmOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	name := aws.StringValue(in.AlarmName)
	f.record("PutCompositeAlarm %s", name)
	if err := f.putErr[name]; err != nil {
		return nil, err
	}
	f.compositeAlarms[name] = in
	return &cloudwatch.PutCompositeAlarmOutput{}, nil
}

// callsFor returns the recorded calls mentioning s.
func (f *fakeCloudWatch) callsFor(s string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	var calls []string
	for _, c := range f.calls {
		if strings.Contains(c, s) {
			calls = append(calls, c)
		}
	}
	return calls
}

func (f *fakeCloudWatch) puts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	var calls []string
	for _, c := range f.calls {
		if strings.HasPrefix(c, "Put") {
			calls = append(calls, c)
		}
	}
	return calls
}

func (f *fakeCloudWatch) reset() {
	f.mu.Lock()
	f.calls = nil
	f.mu.Unlock()
}

// seedComposite stores a composite alarm as if a previous run had created it.
func (f *fakeCloudWatch) seedComposite(instanceName, topicARN string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	name := CompositeAlarmName(instanceName)
	f.compositeAlarms[name] = compositeAlarmInput(name, "", topicARN)
}

func (f *fakeCloudWatch) seedMetric(instanceID, instanceName string, p Policy) {
	f.mu.Lock()
	defer f.mu.Unlock()

	name := MetricAlarmName(instanceName, p.MetricName)
	f.metricAlarms[name] = metricAlarmInput(instanceID, name, p)
}
