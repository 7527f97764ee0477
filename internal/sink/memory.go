package sink

import (
	"context"
	"sync"

	"github.com/yutaro-sakamoto/github-activity-metrics/internal/record"
)

// Memory keeps the most recent records in a bounded ring. Used in tests and
// as a last-resort sink when no real backend is configured.
type Memory struct {
	mu      sync.Mutex
	records []record.OutputRecord
	limit   int

	// FailWith, when set, is returned by every Write. Test hook.
	FailWith error
}

// NewMemory creates a ring holding at most limit records.
func NewMemory(limit int) *Memory {
	if limit <= 0 {
		limit = 1024
	}
	return &Memory{limit: limit}
}

func (m *Memory) Write(_ context.Context, rec *record.OutputRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	m.records = append(m.records, *rec)
	if len(m.records) > m.limit {
		m.records = m.records[len(m.records)-m.limit:]
	}
	return nil
}

// Records returns a copy of the stored records, oldest first.
func (m *Memory) Records() []record.OutputRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]record.OutputRecord, len(m.records))
	copy(out, m.records)
	return out
}

// Len returns the number of stored records.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}
