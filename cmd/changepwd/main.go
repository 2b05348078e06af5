// Command changepwd is the Lambda run after each restore deployment. It
// repoints the staging secrets at the new cluster and pushes their passwords
// onto the restored accounts.
package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog"

	"github.com/victorsmirnov/db-restore/internal/awsutil"
	"github.com/victorsmirnov/db-restore/internal/config"
	"github.com/victorsmirnov/db-restore/internal/database"
	"github.com/victorsmirnov/db-restore/internal/logging"
	"github.com/victorsmirnov/db-restore/internal/rotate"
	"github.com/victorsmirnov/db-restore/internal/secret"
)

// rotator is the part of *rotate.Rotator the handler drives.
type rotator interface {
	RotateAll(ctx context.Context, targetHost string, sourceNames, targetNames []string) error
	RotateMaster(ctx context.Context, masterName, sourceMasterName string) error
}

func main() {
	lambda.Start(handle)
}

func handle(ctx context.Context) error {
	cfg, err := config.Load("")
	if err != nil {
		return err
	}
	log := logging.Configure(cfg.Log.Level, cfg.Log.Format)

	awsCfg, err := awsutil.Load(ctx, awsutil.Options{
		Region:      cfg.AWS.Region,
		Endpoint:    cfg.AWS.Endpoint,
		MaxAttempts: cfg.AWS.MaxAttempts,
	})
	if err != nil {
		return err
	}
	r := rotate.New(secret.NewStoreFromConfig(awsCfg), database.NewDispatcher(), log)
	return run(ctx, cfg.Rotation, r, log)
}

// run rotates the configured pairs, then the master account when one is configured.
func run(ctx context.Context, rc config.RotationConfig, r rotator, log zerolog.Logger) error {
	pairs := rc.SourceSecrets != "" || rc.TargetSecrets != ""
	master := rc.MasterSecret != "" || rc.SourceMasterSecret != ""
	if !pairs && !master {
		return fmt.Errorf("%w: nothing to rotate, set SOURCE_SECRETS/TARGET_SECRETS or MASTER_SECRET/SOURCE_MASTER_SECRET", config.ErrInvalid)
	}

	var errs []error
	if pairs {
		if err := rc.Validate(); err != nil {
			return err
		}
		log.Info().Str("host", rc.DatabaseHost).Int("pairs", len(rc.SourceNames())).Msg("rotating secret pairs")
		errs = append(errs, r.RotateAll(ctx, rc.DatabaseHost, rc.SourceNames(), rc.TargetNames()))
	}
	if master {
		if err := rc.ValidateMaster(); err != nil {
			return err
		}
		errs = append(errs, r.RotateMaster(ctx, rc.MasterSecret, rc.SourceMasterSecret))
	}
	return errors.Join(errs...)
}
