package awsutil

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
)

// Options selects the credentials, region and transport behaviour of AWS clients.
type Options struct {
	Profile     string
	Region      string
	Endpoint    string
	MaxAttempts int
}

// LoadOptions turns Options into SDK load options.
func LoadOptions(opts Options) []func(*awsconfig.LoadOptions) error {
	var lo []func(*awsconfig.LoadOptions) error
	if opts.Profile != "" {
		lo = append(lo, awsconfig.WithSharedConfigProfile(opts.Profile))
	}
	if opts.Region != "" {
		lo = append(lo, awsconfig.WithRegion(opts.Region))
	}
	if opts.Endpoint != "" {
		lo = append(lo, awsconfig.WithBaseEndpoint(opts.Endpoint))
	}
	// Retries belong to the transport; the rotation and selection code never retries.
	if opts.MaxAttempts > 0 {
		lo = append(lo, awsconfig.WithRetryMaxAttempts(opts.MaxAttempts))
	}
	return lo
}

// Load resolves the AWS configuration shared by the Secrets Manager and RDS clients.
func Load(ctx context.Context, opts Options) (aws.Config, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, LoadOptions(opts)...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load AWS config: %w", err)
	}
	return cfg, nil
}
