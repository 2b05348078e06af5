package lock

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathFor(t *testing.T) {
	got := PathFor("/var/run", "staging.cluster-x.eu-west-1.rds.amazonaws.com:3306")
	assert.Equal(t, filepath.Join("/var/run", "dbrestore-staging.cluster-x.eu-west-1.rds.amazonaws.com_3306.lock"), got)
}

func TestAcquire_Exclusive(t *testing.T) {
	path := PathFor(t.TempDir(), "db.local")

	first, err := Acquire(path)
	require.NoError(t, err)

	_, err = Acquire(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already running")

	require.NoError(t, first.Release())

	again, err := Acquire(path)
	require.NoError(t, err)
	assert.NoError(t, again.Release())
}

func TestRelease_Nil(t *testing.T) {
	var l *Lock
	assert.NoError(t, l.Release())
}
