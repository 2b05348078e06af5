package snapshot

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/rds/types"
)

const snapshotTypeAutomated = "automated"

// RDSClient is the subset of the RDS API used by the selector.
type RDSClient interface {
	rds.DescribeDBClusterSnapshotsAPIClient
	rds.DescribeDBClustersAPIClient
}

// Selector answers snapshot and cluster questions for the restore flow.
type Selector struct {
	client RDSClient
	// progress receives human-facing status lines; stdout stays reserved for results.
	progress io.Writer
}

func NewSelector(client RDSClient) *Selector {
	return &Selector{client: client, progress: os.Stderr}
}

// WithProgress redirects status lines, e.g. to io.Discard during shell completion.
func (s *Selector) WithProgress(w io.Writer) *Selector {
	s.progress = w
	return s
}

func NewSelectorFromConfig(cfg aws.Config) *Selector {
	return NewSelector(rds.NewFromConfig(cfg))
}

// SelectLatest returns the ARN of the most recent eligible descriptor.
// Descriptors created at the same instant keep their input order.
func SelectLatest(cluster string, descriptors []Descriptor) (string, error) {
	eligible := make([]Descriptor, 0, len(descriptors))
	for _, d := range descriptors {
		if d.CreatedAt.IsZero() || d.ARN == "" {
			continue
		}
		eligible = append(eligible, d)
	}
	if len(eligible) == 0 {
		return "", &NotFoundError{Cluster: cluster, What: "snapshots"}
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].CreatedAt.After(eligible[j].CreatedAt)
	})
	return eligible[0].ARN, nil
}

// ListAutomatedSnapshots fetches every automated snapshot of cluster, following pagination.
func (s *Selector) ListAutomatedSnapshots(ctx context.Context, cluster string) ([]Descriptor, error) {
	p := rds.NewDescribeDBClusterSnapshotsPaginator(s.client, &rds.DescribeDBClusterSnapshotsInput{
		DBClusterIdentifier: aws.String(cluster),
		SnapshotType:        aws.String(snapshotTypeAutomated),
	})

	var (
		out  []Descriptor
		seen bool
	)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("describe snapshots for %s: %w", cluster, err)
		}
		if page.DBClusterSnapshots != nil {
			seen = true
		}
		for _, snap := range page.DBClusterSnapshots {
			out = append(out, descriptorOf(snap))
		}
	}
	if !seen {
		return nil, &NotFoundError{Cluster: cluster, What: "snapshots"}
	}
	return out, nil
}

// LatestSnapshotARN returns the ARN of the newest automated snapshot of cluster.
func (s *Selector) LatestSnapshotARN(ctx context.Context, cluster string) (string, error) {
	descriptors, err := s.ListAutomatedSnapshots(ctx, cluster)
	if err != nil {
		return "", err
	}
	return SelectLatest(cluster, descriptors)
}

// DescribeCluster fetches metadata for the cluster named by cluster.
func (s *Selector) DescribeCluster(ctx context.Context, cluster string) (ClusterInfo, error) {
	out, err := s.client.DescribeDBClusters(ctx, &rds.DescribeDBClustersInput{
		DBClusterIdentifier: aws.String(cluster),
	})
	if err != nil {
		return ClusterInfo{}, fmt.Errorf("describe cluster %s: %w", cluster, err)
	}
	if out == nil || len(out.DBClusters) == 0 {
		return ClusterInfo{}, &NotFoundError{Cluster: cluster, What: "cluster"}
	}
	return clusterInfoOf(out.DBClusters[0]), nil
}

func descriptorOf(snap types.DBClusterSnapshot) Descriptor {
	return Descriptor{
		ClusterID: aws.ToString(snap.DBClusterIdentifier),
		CreatedAt: aws.ToTime(snap.SnapshotCreateTime),
		ARN:       aws.ToString(snap.DBClusterSnapshotArn),
	}
}

func clusterInfoOf(c types.DBCluster) ClusterInfo {
	return ClusterInfo{
		ID:             aws.ToString(c.DBClusterIdentifier),
		ARN:            aws.ToString(c.DBClusterArn),
		Engine:         aws.ToString(c.Engine),
		EngineVersion:  aws.ToString(c.EngineVersion),
		ParameterGroup: aws.ToString(c.DBClusterParameterGroup),
		Endpoint:       aws.ToString(c.Endpoint),
		Port:           aws.ToInt32(c.Port),
		Status:         aws.ToString(c.Status),
	}
}
