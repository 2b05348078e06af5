package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var masterSecret string
var sourceMasterSecret string

var rotateMasterCmd = &cobra.Command{
	Use:   "rotate-master",
	Short: "Set the master account password from the source master secret",
	Long: `rotate-master logs in to the host named by the master secret using its current
password and replaces that password with the one held by the source master secret.
There is no host reconciliation and no verification step.`,
	Args: cobra.NoArgs,
	RunE: runRotateMaster,
}

func init() {
	rotateMasterCmd.Flags().StringVar(&masterSecret, "master", "", "Master secret name (default $MASTER_SECRET)")
	rotateMasterCmd.Flags().StringVar(&sourceMasterSecret, "source-master", "", "Source master secret name (default $SOURCE_MASTER_SECRET)")
	rootCmd.AddCommand(rotateMasterCmd)
}

func runRotateMaster(c *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if masterSecret != "" {
		cfg.Rotation.MasterSecret = masterSecret
	}
	if sourceMasterSecret != "" {
		cfg.Rotation.SourceMasterSecret = sourceMasterSecret
	}
	if err := cfg.Rotation.ValidateMaster(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context(), cfg.Timeout)
	defer cancel()

	rotator, err := newRotator(ctx, cfg, newLogger(cfg))
	if err != nil {
		return err
	}
	return rotator.RotateMaster(ctx, cfg.Rotation.MasterSecret, cfg.Rotation.SourceMasterSecret)
}
