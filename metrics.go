package fhircodes

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics tracks extraction counters using lock-free atomic operations.
// All methods are safe for concurrent use.
type Metrics struct {
	// Document counts
	documentsTotal  atomic.Uint64
	documentsFailed atomic.Uint64

	// Entry counts
	entriesClassified atomic.Uint64
	entriesSkipped    atomic.Uint64
	rowsEmitted       atomic.Uint64

	// Timing (stored as nanoseconds)
	documentTimeTotal atomic.Uint64
	documentTimeMin   atomic.Uint64
	documentTimeMax   atomic.Uint64

	// Issue counts by kind
	issues sync.Map // map[IssueKind]*atomic.Uint64
}

// NewMetrics creates a new Metrics instance.
func NewMetrics() *Metrics {
	m := &Metrics{}
	// Initialize min to max uint64 so first value becomes the minimum
	m.documentTimeMin.Store(^uint64(0))
	return m
}

// --- Recording Methods ---

// RecordDocument records a processed document.
func (m *Metrics) RecordDocument(duration time.Duration, failed bool) {
	m.documentsTotal.Add(1)
	if failed {
		m.documentsFailed.Add(1)
	}

	ns := uint64(duration.Nanoseconds()) //nolint:gosec // Safe: nanoseconds are always positive for valid durations
	m.documentTimeTotal.Add(ns)

	// Update min (CAS loop)
	for {
		old := m.documentTimeMin.Load()
		if ns >= old {
			break
		}
		if m.documentTimeMin.CompareAndSwap(old, ns) {
			break
		}
	}

	// Update max (CAS loop)
	for {
		old := m.documentTimeMax.Load()
		if ns <= old {
			break
		}
		if m.documentTimeMax.CompareAndSwap(old, ns) {
			break
		}
	}
}

// RecordEntries records classified and skipped entry counts for one document.
func (m *Metrics) RecordEntries(classified, skipped int) {
	m.entriesClassified.Add(uint64(classified)) //nolint:gosec // Safe: counts are non-negative
	m.entriesSkipped.Add(uint64(skipped))       //nolint:gosec // Safe: counts are non-negative
}

// RecordRows records the number of table rows emitted for one document.
func (m *Metrics) RecordRows(n int) {
	m.rowsEmitted.Add(uint64(n)) //nolint:gosec // Safe: counts are non-negative
}

// RecordIssue records an issue by kind.
func (m *Metrics) RecordIssue(kind IssueKind) {
	v, ok := m.issues.Load(kind)
	if !ok {
		v, _ = m.issues.LoadOrStore(kind, new(atomic.Uint64))
	}
	v.(*atomic.Uint64).Add(1)
}

// --- Query Methods ---

// DocumentsTotal returns the number of documents processed, failed ones included.
func (m *Metrics) DocumentsTotal() uint64 {
	return m.documentsTotal.Load()
}

// DocumentsFailed returns the number of documents that could not be read.
func (m *Metrics) DocumentsFailed() uint64 {
	return m.documentsFailed.Load()
}

// EntriesClassified returns the number of entries turned into clinical entries.
func (m *Metrics) EntriesClassified() uint64 {
	return m.entriesClassified.Load()
}

// EntriesSkipped returns the number of entries skipped with an issue.
func (m *Metrics) EntriesSkipped() uint64 {
	return m.entriesSkipped.Load()
}

// RowsEmitted returns the number of per-document table rows produced.
func (m *Metrics) RowsEmitted() uint64 {
	return m.rowsEmitted.Load()
}

// IssueCount returns how many issues of kind were recorded.
func (m *Metrics) IssueCount(kind IssueKind) uint64 {
	v, ok := m.issues.Load(kind)
	if !ok {
		return 0
	}
	return v.(*atomic.Uint64).Load()
}

// AverageDocumentTime returns the average per-document duration.
func (m *Metrics) AverageDocumentTime() time.Duration {
	total := m.documentsTotal.Load()
	if total == 0 {
		return 0
	}
	return time.Duration(m.documentTimeTotal.Load() / total) //nolint:gosec // Safe: nanoseconds within int64 range
}

// MinDocumentTime returns the minimum per-document duration.
func (m *Metrics) MinDocumentTime() time.Duration {
	minVal := m.documentTimeMin.Load()
	if minVal == ^uint64(0) {
		return 0
	}
	return time.Duration(minVal) //nolint:gosec // Safe: minVal represents nanoseconds within int64 range
}

// MaxDocumentTime returns the maximum per-document duration.
func (m *Metrics) MaxDocumentTime() time.Duration {
	return time.Duration(m.documentTimeMax.Load()) //nolint:gosec // Safe: nanoseconds within int64 range
}

// MetricsSnapshot is a point-in-time copy of all metrics.
type MetricsSnapshot struct {
	DocumentsTotal    uint64
	DocumentsFailed   uint64
	EntriesClassified uint64
	EntriesSkipped    uint64
	RowsEmitted       uint64
	AvgDocumentTime   time.Duration
	MinDocumentTime   time.Duration
	MaxDocumentTime   time.Duration
	Issues            map[IssueKind]uint64
}

// Snapshot returns a copy of the current metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	s := MetricsSnapshot{
		DocumentsTotal:    m.DocumentsTotal(),
		DocumentsFailed:   m.DocumentsFailed(),
		EntriesClassified: m.EntriesClassified(),
		EntriesSkipped:    m.EntriesSkipped(),
		RowsEmitted:       m.RowsEmitted(),
		AvgDocumentTime:   m.AverageDocumentTime(),
		MinDocumentTime:   m.MinDocumentTime(),
		MaxDocumentTime:   m.MaxDocumentTime(),
		Issues:            make(map[IssueKind]uint64),
	}
	m.issues.Range(func(key, value any) bool {
		s.Issues[key.(IssueKind)] = value.(*atomic.Uint64).Load()
		return true
	})
	return s
}

// IssueKinds returns the recorded issue kinds in sorted order.
func (s MetricsSnapshot) IssueKinds() []IssueKind {
	kinds := make([]IssueKind, 0, len(s.Issues))
	for k := range s.Issues {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
