package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var awsProfile string
var awsRegion string
var awsEndpoint string
var configPath string
var logLevel string
var logFormat string
var timeout time.Duration

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:     "dbrestore",
	Short:   "Restore-pipeline helpers: snapshot lookup and database password rotation",
	Version: Version,
	// Errors are printed once by Execute.
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func Execute() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("dbrestore version %s (commit: %s, built: %s)\n", Version, Commit, Date))

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&awsProfile, "profile", "p", "", "AWS profile to use (default $AWS_PROFILE)")
	rootCmd.PersistentFlags().StringVarP(&awsRegion, "region", "r", "", "AWS Region (overrides config/env)")
	rootCmd.PersistentFlags().StringVar(&awsEndpoint, "endpoint", "", "Custom AWS endpoint, e.g. LocalStack")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (yaml/toml/json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format (json, console)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Deadline for a whole command run (default $DBRESTORE_TIMEOUT or 60s)")

	// Dynamic completion for the --profile flag
	rootCmd.RegisterFlagCompletionFunc("profile", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		home, _ := os.UserHomeDir()
		credsPath := filepath.Join(home, ".aws", "credentials")

		data, err := os.ReadFile(credsPath)
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}

		var profiles []string
		lines := strings.Split(string(data), "\n")
		for _, line := range lines {
			if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
				profile := strings.Trim(line, "[]")
				if strings.HasPrefix(profile, toComplete) {
					profiles = append(profiles, profile)
				}
			}
		}
		return profiles, cobra.ShellCompDirectiveNoFileComp
	})
}
