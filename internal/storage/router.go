// Package storage implements storage-related functionality.
package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jittakal/bufstore/pkg/sample"
	"github.com/jittakal/bufstore/pkg/storage"
)

// Ensure implementations satisfy interfaces.
var (
	_ storage.Router         = (*LabelRouter)(nil)
	_ storage.SnapshotPolicy = (*CountPolicy)(nil)
	_ storage.SnapshotPolicy = (*IntervalPolicy)(nil)
	_ storage.SnapshotPolicy = (*CompositePolicy)(nil)
)

// LabelRouter implements Hive-style partitioning for snapshot paths.
type LabelRouter struct {
	protocol string
	bucket   string
	basePath string
}

// NewLabelRouter creates a new snapshot router. Protocol and bucket may be
// empty for backends that take paths relative to their own root (file, webdav).
func NewLabelRouter(protocol, bucket, basePath string) *LabelRouter {
	return &LabelRouter{
		protocol: protocol,
		bucket:   bucket,
		basePath: basePath,
	}
}

// Route returns the storage prefix for a label at the given timestamp.
// Format: protocol://bucket/basePath/label=<label>/date=YYYY-MM-DD/hour=HH/
// Uses the snapshot capture time so late snapshots still land in the hour
// they were taken.
func (r *LabelRouter) Route(label string, takenAt int64) string {
	t := time.Unix(takenAt, 0).UTC()
	suffix := fmt.Sprintf("%s/label=%s/date=%s/hour=%s/",
		r.basePath,
		label,
		t.Format("2006-01-02"),
		t.Format("15"),
	)
	if r.protocol == "" || r.bucket == "" {
		return suffix
	}
	return fmt.Sprintf("%s://%s/%s", r.protocol, r.bucket, suffix)
}

// snapshotFilename generates a collision-free snapshot filename:
// snapshot_<label>_YYYYMMDD_HHMMSS_<uuid8>.{ext}
func snapshotFilename(label, ext string) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	return fmt.Sprintf("snapshot_%s_%s_%s%s", label, timestamp, uuid.NewString()[:8], ext)
}

// objectKey strips the scheme and bucket segment from a routed path and
// appends the filename. Writers receive full URIs from the router but the
// backend SDKs want bucket-relative keys.
func objectKey(path, scheme, filename string) string {
	key := path
	if strings.HasPrefix(path, scheme) {
		withoutScheme := strings.TrimPrefix(path, scheme)
		parts := strings.SplitN(withoutScheme, "/", 2)
		if len(parts) == 2 {
			key = parts[1]
		} else {
			key = ""
		}
	}
	key = key + filename
	return strings.TrimPrefix(key, "/")
}

// PolicyConfig configures snapshot trigger behavior.
type PolicyConfig struct {
	MaxSamples int
	Interval   time.Duration
}

// CountPolicy triggers a snapshot once enough samples accumulated since the
// last one.
type CountPolicy struct {
	maxSamples int
}

// NewCountPolicy creates a count-based snapshot policy.
func NewCountPolicy(maxSamples int) *CountPolicy {
	return &CountPolicy{maxSamples: maxSamples}
}

// ShouldSnapshot returns true once the sample count reaches the limit.
func (p *CountPolicy) ShouldSnapshot(stats sample.FileStats) bool {
	return p.maxSamples > 0 && stats.RecordCount >= p.maxSamples
}

// IntervalPolicy triggers a snapshot once the oldest unsnapshotted sample
// is older than the configured interval.
type IntervalPolicy struct {
	interval time.Duration
}

// NewIntervalPolicy creates an age-based snapshot policy.
func NewIntervalPolicy(interval time.Duration) *IntervalPolicy {
	return &IntervalPolicy{interval: interval}
}

// ShouldSnapshot returns true once the first buffered sample is old enough.
func (p *IntervalPolicy) ShouldSnapshot(stats sample.FileStats) bool {
	if p.interval <= 0 || stats.FirstWriteTime.IsZero() {
		return false
	}
	return time.Since(stats.FirstWriteTime) >= p.interval
}

// CompositePolicy triggers when any member policy does.
type CompositePolicy struct {
	policies []storage.SnapshotPolicy
}

// NewCompositePolicy creates a new composite snapshot policy.
func NewCompositePolicy(policies ...storage.SnapshotPolicy) *CompositePolicy {
	return &CompositePolicy{policies: policies}
}

// ShouldSnapshot returns true if any snapshot condition is met.
func (p *CompositePolicy) ShouldSnapshot(stats sample.FileStats) bool {
	for _, policy := range p.policies {
		if policy.ShouldSnapshot(stats) {
			return true
		}
	}
	return false
}

// NewPolicy builds the composite policy from configuration.
func NewPolicy(config PolicyConfig) *CompositePolicy {
	return NewCompositePolicy(
		NewCountPolicy(config.MaxSamples),
		NewIntervalPolicy(config.Interval),
	)
}
