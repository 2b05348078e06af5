package snapshot

import (
	"errors"
	"time"
)

// CacheVersion is incremented when ClusterInfo (or cache format) changes.
const CacheVersion = "v1"

// CacheEnvelope is the on-disk cache format for the cluster list.
type CacheEnvelope struct {
	Version  string        `json:"version"`
	Clusters []ClusterInfo `json:"clusters"`
}

// ClusterInfo describes one RDS database cluster.
type ClusterInfo struct {
	ID             string `json:"id"`
	ARN            string `json:"arn"`
	Engine         string `json:"engine"`
	EngineVersion  string `json:"engine_version"`
	ParameterGroup string `json:"parameter_group"`
	Endpoint       string `json:"endpoint"`
	Port           int32  `json:"port"`
	Status         string `json:"status"`
}

// Descriptor is one automated cluster snapshot as returned by RDS.
// A zero CreatedAt or empty ARN makes it ineligible for selection.
type Descriptor struct {
	ClusterID string
	CreatedAt time.Time
	ARN       string
}

// ErrNotFound matches every *NotFoundError.
var ErrNotFound = errors.New("not found")

// NotFoundError reports a cluster or snapshot lookup that produced nothing usable.
type NotFoundError struct {
	Cluster string
	What    string
}

func (e *NotFoundError) Error() string {
	if e.What == "cluster" {
		return "no cluster found for identifier " + e.Cluster
	}
	return "no " + e.What + " found for cluster " + e.Cluster
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
