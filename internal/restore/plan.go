package restore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/victorsmirnov/db-restore/internal/snapshot"
)

// SupportedEngine is the only source engine the restore accepts.
const SupportedEngine = "aurora-mysql"

var ErrUnsupportedEngine = errors.New("unsupported engine")

// Source is what Build needs from the cluster-management collaborator.
// *snapshot.Selector satisfies it.
type Source interface {
	LatestSnapshotARN(ctx context.Context, cluster string) (string, error)
	DescribeCluster(ctx context.Context, cluster string) (snapshot.ClusterInfo, error)
}

// Options names the cluster being copied and the prefix of the restored one.
type Options struct {
	SourceCluster string
	ClusterName   string
}

// Plan is everything the provisioning step needs to restore today's copy.
type Plan struct {
	SourceCluster     string `json:"source_cluster" yaml:"source_cluster"`
	SnapshotARN       string `json:"snapshot_arn" yaml:"snapshot_arn"`
	Engine            string `json:"engine" yaml:"engine"`
	EngineVersion     string `json:"engine_version" yaml:"engine_version"`
	ParameterGroup    string `json:"parameter_group" yaml:"parameter_group"`
	ClusterIdentifier string `json:"cluster_identifier" yaml:"cluster_identifier"`
	ResourceName      string `json:"resource_name" yaml:"resource_name"`
	RecordName        string `json:"record_name" yaml:"record_name"`
}

// Build resolves the latest automated snapshot of the source cluster and names
// the restored cluster after opts.ClusterName and the UTC date of now.
func Build(ctx context.Context, src Source, opts Options, now time.Time) (Plan, error) {
	if opts.SourceCluster == "" || opts.ClusterName == "" {
		return Plan{}, fmt.Errorf("source cluster and cluster name are required")
	}

	arn, err := src.LatestSnapshotARN(ctx, opts.SourceCluster)
	if err != nil {
		return Plan{}, err
	}
	info, err := src.DescribeCluster(ctx, opts.SourceCluster)
	if err != nil {
		return Plan{}, err
	}
	if info.Engine != SupportedEngine {
		return Plan{}, fmt.Errorf("%w: only %s is supported, cluster %s is %s",
			ErrUnsupportedEngine, SupportedEngine, opts.SourceCluster, info.Engine)
	}

	today := now.UTC().Format(time.DateOnly)
	return Plan{
		SourceCluster:     opts.SourceCluster,
		SnapshotARN:       arn,
		Engine:            info.Engine,
		EngineVersion:     info.EngineVersion,
		ParameterGroup:    info.ParameterGroup,
		ClusterIdentifier: opts.ClusterName + "-" + today,
		ResourceName:      "Database" + today,
		RecordName:        opts.ClusterName,
	}, nil
}
