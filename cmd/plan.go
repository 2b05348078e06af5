package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/victorsmirnov/db-restore/internal/restore"
)

var planOutput string

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Resolve the snapshot and cluster settings for today's restore",
	Long: `plan looks up the latest automated snapshot of SOURCE_CLUSTER_NAME, checks that the
source engine is aurora-mysql and names the restored cluster CLUSTER_NAME-YYYY-MM-DD.
Nothing is created; the output feeds the provisioning step.`,
	Args: cobra.NoArgs,
	RunE: runPlan,
}

func init() {
	planCmd.Flags().StringVarP(&planOutput, "output", "o", "yaml", "Output format (yaml, json)")
	rootCmd.AddCommand(planCmd)
}

func runPlan(c *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Restore.Validate(); err != nil {
		return err
	}
	ctx := c.Context()
	sel, _, err := newSelector(ctx, cfg)
	if err != nil {
		return err
	}

	plan, err := restore.Build(ctx, sel, restore.Options{
		SourceCluster: cfg.Restore.SourceCluster,
		ClusterName:   cfg.Restore.ClusterName,
	}, time.Now())
	if err != nil {
		return err
	}
	return writePlan(os.Stdout, plan, planOutput)
}

func writePlan(w io.Writer, plan restore.Plan, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(plan)
	case "yaml", "":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(plan)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}
