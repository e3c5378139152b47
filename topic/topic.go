package topic

import (
	"context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/sns"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type SNSAPI interface {
	GetTopicAttributesWithContext(aws.Context, *sns.GetTopicAttributesInput, ...request.Option) (*sns.GetTopicAttributesOutput, error)
}

var _ SNSAPI = (*sns.SNS)(nil)

// Verify checks that the notification topic exists and is readable before any
// alarm is wired to it.
func Verify(ctx context.Context, api SNSAPI, topicARN string, logger *zap.Logger) error {
	out, err := api.GetTopicAttributesWithContext(ctx, &sns.GetTopicAttributesInput{
		TopicArn: aws.String(topicARN),
	})
	if err != nil {
		return errors.Wrapf(err, "get attributes of topic %s", topicARN)
	}

	logger.Info("notification topic verified",
		zap.String("topic_arn", topicARN),
		zap.String("display_name", aws.StringValue(out.Attributes["DisplayName"])),
		zap.String("subscriptions_confirmed", aws.StringValue(out.Attributes["SubscriptionsConfirmed"])))
	return nil
}
