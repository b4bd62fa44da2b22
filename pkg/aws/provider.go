package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"

	"apigw-resource/pkg/config"
)

// LoadConfig builds an SDK config from settings.
func LoadConfig(ctx context.Context, settings config.AWSConfig) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx, LoadOptions(settings)...)
}

// LoadOptions returns the SDK load options for settings. Static keys win
// over a named profile; without either the default credential chain is used.
func LoadOptions(settings config.AWSConfig) []func(*awsconfig.LoadOptions) error {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(settings.Region),
	}

	if settings.AccessKeyID != "" && settings.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				settings.AccessKeyID,
				settings.SecretAccessKey,
				settings.SessionToken,
			),
		))
	} else if settings.Profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(settings.Profile))
	}

	if settings.Endpoint != "" {
		opts = append(opts, awsconfig.WithBaseEndpoint(settings.Endpoint))
	}
	return opts
}
