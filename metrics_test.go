package fhircodes

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetrics_Documents(t *testing.T) {
	m := NewMetrics()
	assert.Equal(t, uint64(0), m.DocumentsTotal())
	assert.Equal(t, time.Duration(0), m.AverageDocumentTime())
	assert.Equal(t, time.Duration(0), m.MinDocumentTime())

	m.RecordDocument(10*time.Millisecond, false)
	m.RecordDocument(30*time.Millisecond, true)

	assert.Equal(t, uint64(2), m.DocumentsTotal())
	assert.Equal(t, uint64(1), m.DocumentsFailed())
	assert.Equal(t, 20*time.Millisecond, m.AverageDocumentTime())
	assert.Equal(t, 10*time.Millisecond, m.MinDocumentTime())
	assert.Equal(t, 30*time.Millisecond, m.MaxDocumentTime())
}

func TestMetrics_EntriesAndRows(t *testing.T) {
	m := NewMetrics()
	m.RecordEntries(5, 2)
	m.RecordEntries(1, 0)
	m.RecordRows(7)

	assert.Equal(t, uint64(6), m.EntriesClassified())
	assert.Equal(t, uint64(2), m.EntriesSkipped())
	assert.Equal(t, uint64(7), m.RowsEmitted())
}

func TestMetrics_Snapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordIssue(IssueUnrecognizedResourceKind)
	m.RecordIssue(IssueStructuralAbsence)
	m.RecordIssue(IssueStructuralAbsence)
	m.RecordDocument(time.Millisecond, false)

	s := m.Snapshot()
	assert.Equal(t, uint64(1), s.DocumentsTotal)
	assert.Equal(t, uint64(2), s.Issues[IssueStructuralAbsence])
	assert.Equal(t, []IssueKind{IssueStructuralAbsence, IssueUnrecognizedResourceKind}, s.IssueKinds())
	assert.Equal(t, uint64(0), m.IssueCount(IssueMalformedCode))
}

func TestMetrics_Concurrent(t *testing.T) {
	m := NewMetrics()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m.RecordDocument(time.Duration(i+1)*time.Microsecond, i%10 == 0)
			m.RecordEntries(2, 1)
			m.RecordIssue(IssueMalformedCode)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, uint64(50), m.DocumentsTotal())
	assert.Equal(t, uint64(5), m.DocumentsFailed())
	assert.Equal(t, uint64(100), m.EntriesClassified())
	assert.Equal(t, uint64(50), m.IssueCount(IssueMalformedCode))
	assert.Equal(t, time.Microsecond, m.MinDocumentTime())
	assert.Equal(t, 50*time.Microsecond, m.MaxDocumentTime())
}

func BenchmarkMetrics_RecordDocument(b *testing.B) {
	m := NewMetrics()
	for i := 0; i < b.N; i++ {
		m.RecordDocument(time.Millisecond, false)
	}
}
