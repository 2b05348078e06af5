package snapshot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/rds/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCluster = "monolith-production"

type fakeRDS struct {
	snapshotPages [][]types.DBClusterSnapshot
	nilSnapshots  bool
	clusters      []types.DBCluster
	err           error

	snapshotInputs []*rds.DescribeDBClusterSnapshotsInput
	clusterInputs  []*rds.DescribeDBClustersInput
}

func (f *fakeRDS) DescribeDBClusterSnapshots(_ context.Context, in *rds.DescribeDBClusterSnapshotsInput, _ ...func(*rds.Options)) (*rds.DescribeDBClusterSnapshotsOutput, error) {
	f.snapshotInputs = append(f.snapshotInputs, in)
	if f.err != nil {
		return nil, f.err
	}
	if f.nilSnapshots {
		return &rds.DescribeDBClusterSnapshotsOutput{}, nil
	}
	page := 0
	if in.Marker != nil {
		page = int(aws.ToString(in.Marker)[0] - '0')
	}
	out := &rds.DescribeDBClusterSnapshotsOutput{DBClusterSnapshots: f.snapshotPages[page]}
	if page+1 < len(f.snapshotPages) {
		out.Marker = aws.String(string(rune('0' + page + 1)))
	}
	return out, nil
}

func (f *fakeRDS) DescribeDBClusters(_ context.Context, in *rds.DescribeDBClustersInput, _ ...func(*rds.Options)) (*rds.DescribeDBClustersOutput, error) {
	f.clusterInputs = append(f.clusterInputs, in)
	if f.err != nil {
		return nil, f.err
	}
	return &rds.DescribeDBClustersOutput{DBClusters: f.clusters}, nil
}

func at(hour int) time.Time {
	return time.Date(2024, 3, 1, hour, 0, 0, 0, time.UTC)
}

func snap(arn string, created *time.Time) types.DBClusterSnapshot {
	s := types.DBClusterSnapshot{DBClusterIdentifier: aws.String(testCluster), SnapshotCreateTime: created}
	if arn != "" {
		s.DBClusterSnapshotArn = aws.String(arn)
	}
	return s
}

func TestSelectLatest_DiscardsIneligible(t *testing.T) {
	got, err := SelectLatest(testCluster, []Descriptor{
		{ARN: "a", CreatedAt: at(5)},
		{CreatedAt: at(9)},
		{ARN: "c", CreatedAt: at(7)},
	})
	require.NoError(t, err)
	assert.Equal(t, "c", got)
}

func TestSelectLatest_MissingTimestamp(t *testing.T) {
	got, err := SelectLatest(testCluster, []Descriptor{
		{ARN: "undated"},
		{ARN: "a", CreatedAt: at(1)},
	})
	require.NoError(t, err)
	assert.Equal(t, "a", got)
}

func TestSelectLatest_TieKeepsInputOrder(t *testing.T) {
	got, err := SelectLatest(testCluster, []Descriptor{
		{ARN: "first", CreatedAt: at(3)},
		{ARN: "second", CreatedAt: at(3)},
	})
	require.NoError(t, err)
	assert.Equal(t, "first", got)
}

func TestSelectLatest_NoneEligible(t *testing.T) {
	for _, in := range [][]Descriptor{nil, {{ARN: "x"}, {CreatedAt: at(1)}}} {
		got, err := SelectLatest(testCluster, in)
		assert.Empty(t, got)
		require.ErrorIs(t, err, ErrNotFound)
		assert.EqualError(t, err, "no snapshots found for cluster "+testCluster)
	}
}

func TestLatestSnapshotARN_Paginated(t *testing.T) {
	t5, t9, t7 := at(5), at(9), at(7)
	fake := &fakeRDS{snapshotPages: [][]types.DBClusterSnapshot{
		{snap("arn:a", &t5), snap("", &t9)},
		{snap("arn:c", &t7)},
	}}

	got, err := NewSelector(fake).LatestSnapshotARN(context.Background(), testCluster)
	require.NoError(t, err)
	assert.Equal(t, "arn:c", got)

	require.Len(t, fake.snapshotInputs, 2)
	for _, in := range fake.snapshotInputs {
		assert.Equal(t, testCluster, aws.ToString(in.DBClusterIdentifier))
		assert.Equal(t, "automated", aws.ToString(in.SnapshotType))
	}
}

func TestLatestSnapshotARN_NoList(t *testing.T) {
	_, err := NewSelector(&fakeRDS{nilSnapshots: true}).LatestSnapshotARN(context.Background(), testCluster)
	require.ErrorIs(t, err, ErrNotFound)
	assert.EqualError(t, err, "no snapshots found for cluster "+testCluster)
}

func TestLatestSnapshotARN_ServiceError(t *testing.T) {
	boom := errors.New("throttled")
	_, err := NewSelector(&fakeRDS{err: boom}).LatestSnapshotARN(context.Background(), testCluster)
	assert.ErrorIs(t, err, boom)
}

func TestDescribeCluster_UsesRequestedIdentifier(t *testing.T) {
	fake := &fakeRDS{clusters: []types.DBCluster{{
		DBClusterIdentifier:     aws.String("staging-db"),
		Engine:                  aws.String("aurora-mysql"),
		EngineVersion:           aws.String("5.7.mysql_aurora.2.11.2"),
		DBClusterParameterGroup: aws.String("default.aurora-mysql5.7"),
		Endpoint:                aws.String("staging-db.cluster-x.eu-west-1.rds.amazonaws.com"),
		Port:                    aws.Int32(3306),
	}}}

	info, err := NewSelector(fake).DescribeCluster(context.Background(), "staging-db")
	require.NoError(t, err)

	require.Len(t, fake.clusterInputs, 1)
	assert.Equal(t, "staging-db", aws.ToString(fake.clusterInputs[0].DBClusterIdentifier))
	assert.Equal(t, "aurora-mysql", info.Engine)
	assert.Equal(t, "5.7.mysql_aurora.2.11.2", info.EngineVersion)
	assert.Equal(t, "default.aurora-mysql5.7", info.ParameterGroup)
	assert.Equal(t, int32(3306), info.Port)
}

func TestDescribeCluster_Empty(t *testing.T) {
	_, err := NewSelector(&fakeRDS{}).DescribeCluster(context.Background(), "ghost")
	require.ErrorIs(t, err, ErrNotFound)
	assert.EqualError(t, err, "no cluster found for identifier ghost")
}
