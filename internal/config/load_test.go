package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DBRESTORE_CONFIG", "")
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 3, cfg.AWS.MaxAttempts)
	assert.Equal(t, 60*time.Second, cfg.Timeout)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("DBRESTORE_CONFIG", "")
	t.Setenv("DATABASE_HOST", "staging-2024-03-01.cluster-x.rds.amazonaws.com")
	t.Setenv("SOURCE_SECRETS", "prod/app, prod/report")
	t.Setenv("TARGET_SECRETS", "staging/app,staging/report")
	t.Setenv("SOURCE_CLUSTER_NAME", "monolith")
	t.Setenv("CLUSTER_NAME", "staging")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("AWS_MAX_ATTEMPTS", "5")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "staging-2024-03-01.cluster-x.rds.amazonaws.com", cfg.Rotation.DatabaseHost)
	assert.Equal(t, []string{"prod/app", "prod/report"}, cfg.Rotation.SourceNames())
	assert.Equal(t, []string{"staging/app", "staging/report"}, cfg.Rotation.TargetNames())
	assert.Equal(t, "monolith", cfg.Restore.SourceCluster)
	assert.Equal(t, "staging", cfg.Restore.ClusterName)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 5, cfg.AWS.MaxAttempts)
	assert.NoError(t, cfg.Rotation.Validate())
	assert.NoError(t, cfg.Restore.Validate())
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dbrestore.yaml")
	content := []byte("rotation:\n  database_host: db.local\n  source_secrets: a\n  target_secrets: b\nlog:\n  format: console\ntimeout: 2m\n")
	require.NoError(t, os.WriteFile(path, content, 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "db.local", cfg.Rotation.DatabaseHost)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 2*time.Minute, cfg.Timeout)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestRotationValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  RotationConfig
		ok   bool
	}{
		{"valid", RotationConfig{DatabaseHost: "h", SourceSecrets: "a,b", TargetSecrets: "c,d"}, true},
		{"missing host", RotationConfig{SourceSecrets: "a", TargetSecrets: "b"}, false},
		{"no pairs", RotationConfig{DatabaseHost: "h"}, false},
		{"length mismatch", RotationConfig{DatabaseHost: "h", SourceSecrets: "a,b", TargetSecrets: "c"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalid)
			}
		})
	}
}

func TestValidateMaster(t *testing.T) {
	assert.ErrorIs(t, RotationConfig{MasterSecret: "m"}.ValidateMaster(), ErrInvalid)
	assert.NoError(t, RotationConfig{MasterSecret: "m", SourceMasterSecret: "s"}.ValidateMaster())
}

func TestRestoreValidate(t *testing.T) {
	assert.ErrorIs(t, RestoreConfig{ClusterName: "c"}.Validate(), ErrInvalid)
	assert.ErrorIs(t, RestoreConfig{SourceCluster: "s"}.Validate(), ErrInvalid)
}
