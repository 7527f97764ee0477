// Package sink delivers assembled records to external storage. The pipeline
// treats every implementation as an already-reliable RPC: retry policy lives
// with the webhook source, which redelivers failed webhooks itself.
package sink

import (
	"context"
	"errors"
	"fmt"

	"github.com/yutaro-sakamoto/github-activity-metrics/internal/record"
)

// Sink writes one record. Implementations must be safe for concurrent use.
type Sink interface {
	Write(ctx context.Context, rec *record.OutputRecord) error
}

// ErrorClass separates failures the caller may retry from ones it must not.
type ErrorClass int

const (
	// Transient failures may succeed on webhook redelivery.
	Transient ErrorClass = iota
	// Permanent failures will fail the same way every time.
	Permanent
)

func (c ErrorClass) String() string {
	if c == Transient {
		return "transient"
	}
	return "permanent"
}

// Error is a classified sink failure.
type Error struct {
	Class ErrorClass
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("sink write (%s): %v", e.Class, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IsTransient reports whether err is a retriable sink failure. Unclassified
// errors count as permanent.
func IsTransient(err error) bool {
	var se *Error
	return errors.As(err, &se) && se.Class == Transient
}
