package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/yutaro-sakamoto/github-activity-metrics/internal/record"
)

// HTTP posts each record as JSON to a time-series ingest endpoint.
type HTTP struct {
	endpoint string
	client   *http.Client
}

// NewHTTP creates an HTTP sink. timeout bounds each write end to end.
func NewHTTP(endpoint string, timeout time.Duration) *HTTP {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTP{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (h *HTTP) Write(ctx context.Context, rec *record.OutputRecord) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return &Error{Class: Permanent, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(body))
	if err != nil {
		return &Error{Class: Permanent, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		// Connection refused, DNS, timeout: the next delivery may succeed.
		return &Error{Class: Transient, Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusRequestTimeout,
		resp.StatusCode == http.StatusTooManyRequests,
		resp.StatusCode >= 500:
		return &Error{Class: Transient, Err: fmt.Errorf("ingest endpoint returned %s", resp.Status)}
	default:
		return &Error{Class: Permanent, Err: fmt.Errorf("ingest endpoint returned %s", resp.Status)}
	}
}
