package sink

import (
	"context"
	"encoding/json"
	"os"
	"sync"

	"github.com/yutaro-sakamoto/github-activity-metrics/internal/record"
)

// JSONL appends one JSON document per record to a local file. It is the
// default sink for development and for deployments that ship the file to a
// columnar store out of band.
type JSONL struct {
	mu sync.Mutex
	f  *os.File
}

// OpenJSONL opens (or creates) the file in append mode.
func OpenJSONL(path string) (*JSONL, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &JSONL{f: f}, nil
}

func (j *JSONL) Write(_ context.Context, rec *record.OutputRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return &Error{Class: Permanent, Err: err}
	}
	data = append(data, '\n')

	j.mu.Lock()
	defer j.mu.Unlock()
	if _, err := j.f.Write(data); err != nil {
		// A full or revoked filesystem does not heal on redelivery.
		return &Error{Class: Permanent, Err: err}
	}
	return nil
}

// Close flushes and closes the underlying file.
func (j *JSONL) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.f.Close()
}
