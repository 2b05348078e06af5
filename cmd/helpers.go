package cmd

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/rs/zerolog"

	"github.com/victorsmirnov/db-restore/internal/awsutil"
	"github.com/victorsmirnov/db-restore/internal/config"
	"github.com/victorsmirnov/db-restore/internal/database"
	"github.com/victorsmirnov/db-restore/internal/logging"
	"github.com/victorsmirnov/db-restore/internal/rotate"
	"github.com/victorsmirnov/db-restore/internal/secret"
	"github.com/victorsmirnov/db-restore/internal/snapshot"
)

// loadConfig reads file/env configuration and applies the persistent flags on top.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	applyOverrides(cfg)
	return cfg, nil
}

func applyOverrides(cfg *config.Config) {
	if awsProfile != "" {
		cfg.AWS.Profile = awsProfile
	}
	if awsRegion != "" {
		cfg.AWS.Region = awsRegion
	}
	if awsEndpoint != "" {
		cfg.AWS.Endpoint = awsEndpoint
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
	if timeout > 0 {
		cfg.Timeout = timeout
	}
}

func loadAWS(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsutil.Load(ctx, awsutil.Options{
		Profile:     cfg.AWS.Profile,
		Region:      cfg.AWS.Region,
		Endpoint:    cfg.AWS.Endpoint,
		MaxAttempts: cfg.AWS.MaxAttempts,
	})
}

func newLogger(cfg *config.Config) zerolog.Logger {
	return logging.Configure(cfg.Log.Level, cfg.Log.Format)
}

func newRotator(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*rotate.Rotator, error) {
	awsCfg, err := loadAWS(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return rotate.New(secret.NewStoreFromConfig(awsCfg), database.NewDispatcher(), log), nil
}

func newSelector(ctx context.Context, cfg *config.Config) (*snapshot.Selector, aws.Config, error) {
	awsCfg, err := loadAWS(ctx, cfg)
	if err != nil {
		return nil, aws.Config{}, err
	}
	return snapshot.NewSelectorFromConfig(awsCfg), awsCfg, nil
}
