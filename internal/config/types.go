package config

import "time"

// Config is the root configuration schema.
type Config struct {
	AWS      AWSConfig      `mapstructure:"aws"`
	Log      LogConfig      `mapstructure:"log"`
	Rotation RotationConfig `mapstructure:"rotation"`
	Restore  RestoreConfig  `mapstructure:"restore"`
	Timeout  time.Duration  `mapstructure:"timeout"`
}

type AWSConfig struct {
	Profile     string `mapstructure:"profile"`
	Region      string `mapstructure:"region"`
	Endpoint    string `mapstructure:"endpoint"` // LocalStack or other test endpoints
	MaxAttempts int    `mapstructure:"max_attempts"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
}

type RotationConfig struct {
	DatabaseHost       string `mapstructure:"database_host"`
	SourceSecrets      string `mapstructure:"source_secrets"` // comma separated
	TargetSecrets      string `mapstructure:"target_secrets"` // comma separated, paired by position
	MasterSecret       string `mapstructure:"master_secret"`
	SourceMasterSecret string `mapstructure:"source_master_secret"`
	LockDir            string `mapstructure:"lock_dir"`
}

type RestoreConfig struct {
	SourceCluster string `mapstructure:"source_cluster"`
	ClusterName   string `mapstructure:"cluster_name"`
}
