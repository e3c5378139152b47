package config

import (
	"io/ioutil"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

var c = Default()

type Config struct {
	Debug bool `yaml:"debug"`

	CSVFile string `yaml:"csv_file"`

	// QueryFailure is "open" to create alarms whose existence could not be
	// checked, or "closed" to leave them alone.
	QueryFailure    string `yaml:"query_failure"`
	DryRun          bool   `yaml:"dry_run"`
	StrictExit      bool   `yaml:"strict_exit"`
	ParallelMetrics bool   `yaml:"parallel_metrics"`

	AWS struct {
		Region      string `yaml:"region"`
		SNSTopicARN string `yaml:"sns_topic_arn"`
		VerifyTopic bool   `yaml:"verify_topic"`
	} `yaml:"aws"`

	Instances struct {
		Include []string `yaml:"include"`
		Exclude []string `yaml:"exclude"`
	} `yaml:"instances"`

	// Metrics overrides the alarm policy of a metric, keyed by metric name.
	Metrics map[string]MetricOverride `yaml:"metrics"`
}

type MetricOverride struct {
	Threshold          *float64 `yaml:"threshold"`
	EvaluationPeriods  *int64   `yaml:"evaluation_periods"`
	DatapointsToAlarm  *int64   `yaml:"datapoints_to_alarm"`
	ComparisonOperator *string  `yaml:"comparison_operator"`
}

func Default() Config {
	return Config{
		QueryFailure: "open",
	}
}

// Load reads filename over the defaults. An empty filename keeps the
// defaults so every setting can come from flags.
func Load(filename string) error {
	loaded := Default()
	if filename != "" {
		data, err := ioutil.ReadFile(filename)
		if err != nil {
			return errors.WithStack(err)
		}

		if err := yaml.UnmarshalStrict(data, &loaded); err != nil {
			return errors.Wrapf(err, "parse %s", filename)
		}
	}

	c = loaded
	return nil
}

func Get() *Config {
	return &c
}

func (c *Config) Validate() error {
	if c.CSVFile == "" {
		return errors.New("csv_file is required")
	}
	if c.AWS.SNSTopicARN == "" {
		return errors.New("sns_topic_arn is required")
	}
	switch c.QueryFailure {
	case "open", "closed":
	default:
		return errors.Errorf("query_failure must be open or closed, got %q", c.QueryFailure)
	}
	return nil
}
