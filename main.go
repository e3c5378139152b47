package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
	"github.com/yuichiro-h/ec2-composite-alarm/alarm"
	"github.com/yuichiro-h/ec2-composite-alarm/config"
	"github.com/yuichiro-h/ec2-composite-alarm/log"
	"go.uber.org/zap"
)

func main() {
	if err := log.SetConfig(log.Config{}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	app := cli.NewApp()
	app.Name = "ec2-composite-alarm"
	app.Usage = "Create composite alarms in CloudWatch for EC2 instances"
	app.Flags = flags()
	app.Before = func(ctx *cli.Context) error {
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			return errors.WithStack(err)
		}

		if err := config.Load(ctx.String("config")); err != nil {
			return err
		}
		applyFlags(ctx, config.Get())

		if err := log.SetConfig(log.Config{Debug: config.Get().Debug}); err != nil {
			return errors.WithStack(err)
		}

		return config.Get().Validate()
	}
	app.Action = func(ctx *cli.Context) error {
		defer log.Sync()

		sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		report, err := execute(sigCtx, config.Get())
		if err != nil {
			log.Get().Error("error occurred", zap.String("cause", fmt.Sprintf("%+v", err)))
			return cli.NewExitError("", 1)
		}

		if config.Get().StrictExit && report.HasFailures() {
			log.Get().Warn("some instances were not fully reconciled",
				zap.Int("partially_failed", report.Count(alarm.StatusPartiallyFailed)))
			return cli.NewExitError("", 1)
		}
		return nil
	}

	if err := app.Run(os.Args); err != nil {
		log.Get().Error("failed to start", zap.String("cause", fmt.Sprintf("%+v", err)))
		log.Sync()
		os.Exit(1)
	}
}

func flags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "config",
			Usage: "path to a YAML config file",
		},
		cli.StringFlag{
			Name:  "csv_file",
			Usage: "path to CSV file containing instance IDs and names",
		},
		cli.StringFlag{
			Name:  "sns_topic_arn",
			Usage: "ARN of the SNS topic to use for notifications",
		},
		cli.Float64Flag{
			Name:  "cpu_threshold",
			Value: 80,
			Usage: "CPU utilization threshold in percent",
		},
		cli.IntFlag{
			Name:  "failed_status_threshold",
			Value: 1,
			Usage: "failed status checks threshold",
		},
		cli.Float64Flag{
			Name:  "network_threshold",
			Value: 25000000,
			Usage: "network in threshold in bytes",
		},
		cli.StringFlag{
			Name:  "region",
			Usage: "AWS region, defaults to the SDK's own resolution",
		},
		cli.StringFlag{
			Name:  "query_failure",
			Usage: "what to do when an existence check fails: open (create anyway) or closed (skip)",
		},
		cli.BoolFlag{
			Name:  "dry_run",
			Usage: "log what would be created without creating it",
		},
		cli.BoolFlag{
			Name:  "strict",
			Usage: "exit non-zero when any instance partially failed",
		},
		cli.BoolFlag{
			Name:  "parallel_metrics",
			Usage: "create the metric alarms of an instance concurrently",
		},
		cli.BoolFlag{
			Name: "debug",
		},
	}
}

// applyFlags lets explicitly set flags win over the config file.
func applyFlags(ctx *cli.Context, c *config.Config) {
	if ctx.IsSet("csv_file") {
		c.CSVFile = ctx.String("csv_file")
	}
	if ctx.IsSet("sns_topic_arn") {
		c.AWS.SNSTopicARN = ctx.String("sns_topic_arn")
	}
	if ctx.IsSet("region") {
		c.AWS.Region = ctx.String("region")
	}
	if ctx.IsSet("query_failure") {
		c.QueryFailure = ctx.String("query_failure")
	}
	if ctx.Bool("dry_run") {
		c.DryRun = true
	}
	if ctx.Bool("strict") {
		c.StrictExit = true
	}
	if ctx.Bool("parallel_metrics") {
		c.ParallelMetrics = true
	}
	if ctx.Bool("debug") {
		c.Debug = true
	}

	if ctx.IsSet("cpu_threshold") {
		setThreshold(c, alarm.MetricCPUUtilization, ctx.Float64("cpu_threshold"))
	}
	if ctx.IsSet("failed_status_threshold") {
		setThreshold(c, alarm.MetricStatusCheckFailed, float64(ctx.Int("failed_status_threshold")))
	}
	if ctx.IsSet("network_threshold") {
		setThreshold(c, alarm.MetricNetworkIn, ctx.Float64("network_threshold"))
	}
}

func setThreshold(c *config.Config, metricName string, v float64) {
	if c.Metrics == nil {
		c.Metrics = map[string]config.MetricOverride{}
	}
	o := c.Metrics[metricName]
	o.Threshold = &v
	c.Metrics[metricName] = o
}
