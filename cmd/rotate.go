package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/victorsmirnov/db-restore/internal/lock"
)

var rotateHost string
var rotateSources string
var rotateTargets string

var rotateCmd = &cobra.Command{
	Use:   "rotate",
	Short: "Push target secret passwords onto the live database",
	Long: `Rotate processes each (source, target) secret pair in order. The target secret is
repointed at the live database host, the target password is set on the live account
while the source credentials still log in, and the target secret is verified with a
fresh login. A failing pair is logged and the remaining pairs still run.`,
	Example: `  # Same environment the Lambda receives
  DATABASE_HOST=staging.cluster-x.rds.amazonaws.com \
  SOURCE_SECRETS=prod/app,prod/report TARGET_SECRETS=staging/app,staging/report \
  dbrestore rotate

  # Flags override the environment
  dbrestore rotate --host staging.local --sources prod/app --targets staging/app`,
	Args: cobra.NoArgs,
	RunE: runRotate,
}

func init() {
	rotateCmd.Flags().StringVar(&rotateHost, "host", "", "Live database endpoint (default $DATABASE_HOST)")
	rotateCmd.Flags().StringVar(&rotateSources, "sources", "", "Comma separated source secret names (default $SOURCE_SECRETS)")
	rotateCmd.Flags().StringVar(&rotateTargets, "targets", "", "Comma separated target secret names (default $TARGET_SECRETS)")
	rootCmd.AddCommand(rotateCmd)
}

func runRotate(c *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if rotateHost != "" {
		cfg.Rotation.DatabaseHost = rotateHost
	}
	if rotateSources != "" {
		cfg.Rotation.SourceSecrets = rotateSources
	}
	if rotateTargets != "" {
		cfg.Rotation.TargetSecrets = rotateTargets
	}
	if err := cfg.Rotation.Validate(); err != nil {
		return err
	}

	guard, err := lock.Acquire(lock.PathFor(cfg.Rotation.LockDir, cfg.Rotation.DatabaseHost))
	if err != nil {
		return err
	}
	defer guard.Release()

	ctx, cancel := context.WithTimeout(c.Context(), cfg.Timeout)
	defer cancel()

	log := newLogger(cfg)
	rotator, err := newRotator(ctx, cfg, log)
	if err != nil {
		return err
	}

	return rotator.RotateAll(ctx, cfg.Rotation.DatabaseHost, cfg.Rotation.SourceNames(), cfg.Rotation.TargetNames())
}
