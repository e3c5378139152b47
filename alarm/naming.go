package alarm

import (
	"fmt"
	"strings"
)

const (
	nameSeparator         = "--"
	compositeAlarmSuffix  = "composite-alarm"
	compositeRuleOperator = " OR "
)

func MetricAlarmName(instanceName, metricName string) string {
	return instanceName + nameSeparator + metricName
}

func CompositeAlarmName(instanceName string) string {
	return instanceName + nameSeparator + compositeAlarmSuffix
}

// AlarmRule joins the given alarm names into a composite rule that is in
// ALARM whenever any of them is.
func AlarmRule(alarmNames ...string) string {
	terms := make([]string, 0, len(alarmNames))
	for _, n := range alarmNames {
		terms = append(terms, fmt.Sprintf(`ALARM("%s")`, n))
	}
	return strings.Join(terms, compositeRuleOperator)
}
