package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/victorsmirnov/db-restore/internal/snapshot"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Inspect automated cluster snapshots",
}

var snapshotLatestCmd = &cobra.Command{
	Use:   "latest [cluster-identifier]",
	Short: "Print the ARN of the most recent automated snapshot of a cluster",
	Example: `  # Interactive selection
  dbrestore snapshot latest

  # Direct lookup with partial name
  dbrestore snapshot latest monolith-prod`,
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: completeClusters,
	RunE:              runSnapshotLatest,
}

var clusterCmd = &cobra.Command{
	Use:   "cluster",
	Short: "Inspect RDS clusters",
}

var clusterDescribeCmd = &cobra.Command{
	Use:               "describe [cluster-identifier]",
	Short:             "Print engine, version and parameter group of a cluster",
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: completeClusters,
	RunE:              runClusterDescribe,
}

func init() {
	snapshotCmd.AddCommand(snapshotLatestCmd)
	clusterCmd.AddCommand(clusterDescribeCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(clusterCmd)
}

// resolveCluster picks the cluster named by args, or asks interactively.
func resolveCluster(ctx context.Context, sel *snapshot.Selector, profile, region string, args []string) (string, error) {
	clusters, err := sel.ListClustersWithCache(ctx, profile, region)
	if err != nil {
		return "", fmt.Errorf("fetch clusters: %w", err)
	}
	name := ""
	if len(args) > 0 {
		name = args[0]
	}
	selected, err := snapshot.PickCluster(clusters, name)
	if err != nil {
		return "", fmt.Errorf("selection: %w", err)
	}
	return selected.ID, nil
}

func runSnapshotLatest(c *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := c.Context()
	sel, awsCfg, err := newSelector(ctx, cfg)
	if err != nil {
		return err
	}

	cluster, err := resolveCluster(ctx, sel, cfg.AWS.Profile, awsCfg.Region, args)
	if err != nil {
		return err
	}
	arn, err := sel.LatestSnapshotARN(ctx, cluster)
	if err != nil {
		return err
	}
	fmt.Println(arn)
	return nil
}

func runClusterDescribe(c *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := c.Context()
	sel, awsCfg, err := newSelector(ctx, cfg)
	if err != nil {
		return err
	}

	cluster, err := resolveCluster(ctx, sel, cfg.AWS.Profile, awsCfg.Region, args)
	if err != nil {
		return err
	}
	info, err := sel.DescribeCluster(ctx, cluster)
	if err != nil {
		return err
	}
	fmt.Printf("cluster:         %s\n", info.ID)
	fmt.Printf("engine:          %s %s\n", info.Engine, info.EngineVersion)
	fmt.Printf("parameter group: %s\n", info.ParameterGroup)
	fmt.Printf("endpoint:        %s:%d\n", info.Endpoint, info.Port)
	fmt.Printf("status:          %s\n", info.Status)
	return nil
}

func completeClusters(c *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	cfg, err := loadConfig()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	ctx := context.Background()
	sel, awsCfg, err := newSelector(ctx, cfg)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	clusters, err := sel.WithProgress(io.Discard).ListClustersWithCache(ctx, cfg.AWS.Profile, awsCfg.Region)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	var completions []string
	for _, cl := range clusters {
		if strings.HasPrefix(cl.ID, toComplete) {
			completions = append(completions, fmt.Sprintf("%s\t%s", cl.ID, cl.Engine))
		}
	}
	return completions, cobra.ShellCompDirectiveNoFileComp
}
