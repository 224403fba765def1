// Package awsconf resolves the shared AWS SDK configuration used by the
// Amazon Translate and Bedrock clients.
package awsconf

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"

	"pptx-translator/internal/config"
	"pptx-translator/internal/services"
)

// Load builds an aws.Config from the [aws] section. Empty region and profile
// fall through to the SDK's default chain.
func Load(ctx context.Context, cfg config.AWS) (aws.Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, Options(cfg)...)
	if err != nil {
		return aws.Config{}, services.Wrap(services.ErrConfiguration, "aws", "load config", "resolve AWS configuration", err)
	}
	if awsCfg.Region == "" {
		return aws.Config{}, services.Wrap(services.ErrConfiguration, "aws", "load config",
			"no AWS region configured (set aws.region or AWS_REGION)", nil)
	}
	return awsCfg, nil
}

// Options converts the [aws] section into SDK load options.
func Options(cfg config.AWS) []func(*awsconfig.LoadOptions) error {
	var opts []func(*awsconfig.LoadOptions) error
	if region := strings.TrimSpace(cfg.Region); region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	if profile := strings.TrimSpace(cfg.Profile); profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(profile))
	}
	if cfg.MaxAttempts > 0 {
		opts = append(opts, awsconfig.WithRetryMaxAttempts(cfg.MaxAttempts))
	}
	if mode := strings.TrimSpace(cfg.RetryMode); mode != "" {
		opts = append(opts, awsconfig.WithRetryMode(aws.RetryMode(strings.ToLower(mode))))
	}
	return opts
}
