package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

var ErrInvalid = errors.New("invalid configuration")

// envBindings keeps the environment names the deployed Lambda and build
// pipeline already export.
var envBindings = map[string]string{
	"aws.profile":                   "AWS_PROFILE",
	"aws.region":                    "AWS_REGION",
	"aws.endpoint":                  "AWS_ENDPOINT_URL",
	"aws.max_attempts":              "AWS_MAX_ATTEMPTS",
	"log.level":                     "LOG_LEVEL",
	"log.format":                    "LOG_FORMAT",
	"rotation.database_host":        "DATABASE_HOST",
	"rotation.source_secrets":       "SOURCE_SECRETS",
	"rotation.target_secrets":       "TARGET_SECRETS",
	"rotation.master_secret":        "MASTER_SECRET",
	"rotation.source_master_secret": "SOURCE_MASTER_SECRET",
	"rotation.lock_dir":             "DBRESTORE_LOCK_DIR",
	"restore.source_cluster":        "SOURCE_CLUSTER_NAME",
	"restore.cluster_name":          "CLUSTER_NAME",
	"timeout":                       "DBRESTORE_TIMEOUT",
}

// Load reads configuration from an optional file, environment variables and defaults.
func Load(path string) (*Config, error) {
	vp := viper.New()
	for key, env := range envBindings {
		if err := vp.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}
	setDefaults(vp)

	if path == "" {
		path = os.Getenv("DBRESTORE_CONFIG")
	}
	if path != "" {
		vp.SetConfigFile(path)
		if err := vp.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := vp.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(vp *viper.Viper) {
	vp.SetDefault("aws.max_attempts", 3)
	vp.SetDefault("log.level", "info")
	vp.SetDefault("log.format", "json")
	vp.SetDefault("timeout", "60s")
}

// SourceNames returns the configured source secret names in order.
func (r RotationConfig) SourceNames() []string { return splitNames(r.SourceSecrets) }

// TargetNames returns the configured target secret names in order.
func (r RotationConfig) TargetNames() []string { return splitNames(r.TargetSecrets) }

// Validate checks the settings every pair rotation needs.
func (r RotationConfig) Validate() error {
	if strings.TrimSpace(r.DatabaseHost) == "" {
		return fmt.Errorf("%w: DATABASE_HOST is required", ErrInvalid)
	}
	src, tgt := r.SourceNames(), r.TargetNames()
	if len(src) == 0 {
		return fmt.Errorf("%w: SOURCE_SECRETS is empty", ErrInvalid)
	}
	if len(src) != len(tgt) {
		return fmt.Errorf("%w: SOURCE_SECRETS has %d names, TARGET_SECRETS has %d", ErrInvalid, len(src), len(tgt))
	}
	return nil
}

// ValidateMaster checks the settings of the master-account rotation.
func (r RotationConfig) ValidateMaster() error {
	if r.MasterSecret == "" || r.SourceMasterSecret == "" {
		return fmt.Errorf("%w: MASTER_SECRET and SOURCE_MASTER_SECRET are required", ErrInvalid)
	}
	return nil
}

func (r RestoreConfig) Validate() error {
	if r.SourceCluster == "" {
		return fmt.Errorf("%w: SOURCE_CLUSTER_NAME is required", ErrInvalid)
	}
	if r.ClusterName == "" {
		return fmt.Errorf("%w: CLUSTER_NAME is required", ErrInvalid)
	}
	return nil
}

func splitNames(csv string) []string {
	var names []string
	for _, n := range strings.Split(csv, ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	return names
}
