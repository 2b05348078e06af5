package restore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/victorsmirnov/db-restore/internal/snapshot"
)

type fakeSource struct {
	arn     string
	info    snapshot.ClusterInfo
	snapErr error
	asked   []string
}

func (f *fakeSource) LatestSnapshotARN(_ context.Context, cluster string) (string, error) {
	f.asked = append(f.asked, "snapshot:"+cluster)
	return f.arn, f.snapErr
}

func (f *fakeSource) DescribeCluster(_ context.Context, cluster string) (snapshot.ClusterInfo, error) {
	f.asked = append(f.asked, "describe:"+cluster)
	return f.info, nil
}

func TestBuild(t *testing.T) {
	src := &fakeSource{
		arn:  "arn:aws:rds:eu-west-1:1:cluster-snapshot:rds:monolith-2024-03-01",
		info: snapshot.ClusterInfo{Engine: "aurora-mysql", EngineVersion: "5.7.mysql_aurora.2.11.2", ParameterGroup: "pg"},
	}
	now := time.Date(2024, 3, 2, 23, 30, 0, 0, time.FixedZone("X", -2*3600))

	plan, err := Build(context.Background(), src, Options{SourceCluster: "monolith", ClusterName: "staging"}, now)
	require.NoError(t, err)

	assert.Equal(t, "staging-2024-03-03", plan.ClusterIdentifier)
	assert.Equal(t, "Database2024-03-03", plan.ResourceName)
	assert.Equal(t, "staging", plan.RecordName)
	assert.Equal(t, src.arn, plan.SnapshotARN)
	assert.Equal(t, "5.7.mysql_aurora.2.11.2", plan.EngineVersion)
	assert.Equal(t, []string{"snapshot:monolith", "describe:monolith"}, src.asked)
}

func TestBuild_RejectsOtherEngines(t *testing.T) {
	src := &fakeSource{arn: "arn", info: snapshot.ClusterInfo{Engine: "aurora-postgresql"}}

	_, err := Build(context.Background(), src, Options{SourceCluster: "billing", ClusterName: "b"}, time.Now())
	require.ErrorIs(t, err, ErrUnsupportedEngine)
	assert.Contains(t, err.Error(), "billing is aurora-postgresql")
}

func TestBuild_PropagatesNotFound(t *testing.T) {
	src := &fakeSource{snapErr: &snapshot.NotFoundError{Cluster: "monolith", What: "snapshots"}}

	_, err := Build(context.Background(), src, Options{SourceCluster: "monolith", ClusterName: "s"}, time.Now())
	assert.True(t, errors.Is(err, snapshot.ErrNotFound))
}

func TestBuild_RequiresNames(t *testing.T) {
	_, err := Build(context.Background(), &fakeSource{}, Options{}, time.Now())
	assert.Error(t, err)
}
