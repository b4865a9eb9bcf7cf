// Package queue reads queue depth from Amazon SQS for the sqs trigger mode.
package queue

import (
	"context"
	"strconv"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"github.com/mesoscale/mesoscaler/internal/config"
	"github.com/mesoscale/mesoscaler/internal/errors"
)

// api is the slice of the SQS API the client uses.
type api interface {
	GetQueueUrl(ctx context.Context, params *sqs.GetQueueUrlInput, optFns ...func(*sqs.Options)) (*sqs.GetQueueUrlOutput, error)
	GetQueueAttributes(ctx context.Context, params *sqs.GetQueueAttributesInput, optFns ...func(*sqs.Options)) (*sqs.GetQueueAttributesOutput, error)
}

// Client reads the depth of one SQS queue.
type Client struct {
	sqs  api
	name string

	mu       sync.Mutex
	queueURL string // resolved from the name on first use when not configured
}

// New builds a Client from queue settings. Credentials come from the
// default AWS chain (environment, shared config, instance role) unless the
// settings carry a static key pair.
func New(ctx context.Context, cfg *config.QueueConfig) (*Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.NewConfigError("load AWS configuration", err).WithField("queue")
	}

	return &Client{
		sqs:      sqs.NewFromConfig(awsCfg),
		name:     cfg.Name,
		queueURL: cfg.URL,
	}, nil
}

// Depth returns the approximate number of visible messages in the queue.
// SQS reports this figure with some lag; it is an estimate, which is fine
// for band classification.
func (c *Client) Depth(ctx context.Context) (int, error) {
	url, err := c.resolveURL(ctx)
	if err != nil {
		return 0, err
	}

	out, err := c.sqs.GetQueueAttributes(ctx, &sqs.GetQueueAttributesInput{
		QueueUrl: aws.String(url),
		AttributeNames: []types.QueueAttributeName{
			types.QueueAttributeNameApproximateNumberOfMessages,
		},
	})
	if err != nil {
		return 0, errors.NewMetricError("get queue attributes", err)
	}

	raw, ok := out.Attributes[string(types.QueueAttributeNameApproximateNumberOfMessages)]
	if !ok {
		return 0, errors.NewMetricError("queue attributes missing message count",
			errors.ErrMetricUnavailable)
	}

	depth, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.NewMetricError("parse message count", err).WithValue(raw)
	}
	return depth, nil
}

// resolveURL returns the queue URL, resolving the configured name through
// GetQueueUrl once and caching the result.
func (c *Client) resolveURL(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.queueURL != "" {
		return c.queueURL, nil
	}

	out, err := c.sqs.GetQueueUrl(ctx, &sqs.GetQueueUrlInput{
		QueueName: aws.String(c.name),
	})
	if err != nil {
		return "", errors.NewMetricError("resolve queue URL", err).WithValue(c.name)
	}

	c.queueURL = aws.ToString(out.QueueUrl)
	return c.queueURL, nil
}
