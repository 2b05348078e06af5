package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/ktr0731/go-fuzzyfinder"
)

const cacheTTL = time.Hour

func getCacheDir() string {
	if d := os.Getenv("DBRESTORE_CACHE_DIR"); d != "" {
		return d
	}
	return filepath.Join(os.Getenv("HOME"), ".cache", "dbrestore")
}

func cacheFile(profile, region string) string {
	if profile == "" {
		profile = "default"
	}
	return filepath.Join(getCacheDir(), fmt.Sprintf("%s_%s_clusters.json", profile, region))
}

// ListClustersWithCache returns the clusters in region, served from an on-disk
// cache for up to an hour. Profile and region form the cache key.
func (s *Selector) ListClustersWithCache(ctx context.Context, profile, region string) ([]ClusterInfo, error) {
	path := cacheFile(profile, region)

	if data, err := os.ReadFile(path); err == nil {
		var envelope CacheEnvelope
		if err := json.Unmarshal(data, &envelope); err == nil {
			info, statErr := os.Stat(path)
			if statErr == nil && envelope.Version == CacheVersion && time.Since(info.ModTime()) < cacheTTL {
				return envelope.Clusters, nil
			}
		}
	}

	fmt.Fprintf(s.progress, "🔍 Fetching RDS clusters [%s:%s]...\n", profile, region)

	clusters, err := s.ListClusters(ctx)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(getCacheDir(), 0755); err == nil {
		data, _ := json.Marshal(CacheEnvelope{Version: CacheVersion, Clusters: clusters})
		_ = os.WriteFile(path, data, 0644)
	}
	return clusters, nil
}

// ListClusters fetches every cluster visible to the client.
func (s *Selector) ListClusters(ctx context.Context) ([]ClusterInfo, error) {
	p := rds.NewDescribeDBClustersPaginator(s.client, &rds.DescribeDBClustersInput{})

	var clusters []ClusterInfo
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("describe clusters: %w", err)
		}
		for _, c := range page.DBClusters {
			clusters = append(clusters, clusterInfoOf(c))
		}
	}
	return clusters, nil
}

// PickCluster resolves name against clusters: an exact id wins, then a single
// substring match. Several matches or an empty name open the fuzzy finder.
func PickCluster(clusters []ClusterInfo, name string) (ClusterInfo, error) {
	if name == "" {
		return pickWithFuzzyFinder(clusters)
	}
	return FindByName(clusters, name, pickWithFuzzyFinder)
}

// FindByName is PickCluster with the interactive step replaced by choose.
func FindByName(clusters []ClusterInfo, name string, choose func([]ClusterInfo) (ClusterInfo, error)) (ClusterInfo, error) {
	for _, c := range clusters {
		if c.ID == name {
			return c, nil
		}
	}

	var matches []ClusterInfo
	for _, c := range clusters {
		if strings.Contains(c.ID, name) {
			matches = append(matches, c)
		}
	}

	if len(matches) == 1 {
		return matches[0], nil
	}
	if len(matches) > 1 {
		return choose(matches)
	}

	return ClusterInfo{}, fmt.Errorf("no cluster matching '%s'", name)
}

func pickWithFuzzyFinder(clusters []ClusterInfo) (ClusterInfo, error) {
	if len(clusters) == 0 {
		return ClusterInfo{}, fmt.Errorf("no clusters to choose from")
	}
	idx, err := fuzzyfinder.Find(
		clusters,
		func(i int) string {
			return fmt.Sprintf("%-30s | %-18s | %s", clusters[i].ID, clusters[i].Engine, clusters[i].EngineVersion)
		},
		fuzzyfinder.WithHeader("Select RDS Cluster"),
	)
	if err != nil {
		return ClusterInfo{}, err
	}
	return clusters[idx], nil
}
