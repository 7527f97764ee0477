// Package normalize decodes inbound webhook requests into verified events.
// It is the trust boundary: nothing downstream of this package ever sees a
// request that failed the signature check.
package normalize

import (
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/yutaro-sakamoto/github-activity-metrics/internal/payload"
)

// Header names GitHub sets on every delivery. Lookup through http.Header is
// case-insensitive, which matters because proxies may lowercase them.
const (
	HeaderEvent     = "X-GitHub-Event"
	HeaderDelivery  = "X-GitHub-Delivery"
	HeaderSignature = "X-Hub-Signature-256"
)

// ErrorKind classifies normalization failures so the HTTP layer can map them
// to distinct status codes.
type ErrorKind int

const (
	// KindEmptyBody means the request carried no payload at all.
	KindEmptyBody ErrorKind = iota
	// KindInvalidJSON means the body was present but not a JSON object.
	KindInvalidJSON
	// KindUnauthorized means the signature check failed.
	KindUnauthorized
	// KindMalformed covers transport-level decoding failures.
	KindMalformed
)

// Error is a normalization failure with its classification.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the classification of err, or KindMalformed for any error
// this package did not produce.
func KindOf(err error) ErrorKind {
	if ne, ok := err.(*Error); ok {
		return ne.Kind
	}
	return KindMalformed
}

// InboundRequest is the transport-independent view of one webhook call.
type InboundRequest struct {
	Body   []byte
	Header http.Header
	// Base64 marks bodies the invoking gateway transport-encoded.
	Base64 bool
}

// VerifiedEvent exists only for requests that passed the signature gate.
type VerifiedEvent struct {
	EventType  string
	DeliveryID string
	RawBody    string
}

// Normalizer holds the verification secret for the process lifetime.
type Normalizer struct {
	secret string
}

// New creates a Normalizer. The secret is resolved once at startup and never
// refreshed; rotation takes effect on restart.
func New(secret string) *Normalizer {
	return &Normalizer{secret: secret}
}

// Normalize decodes the transport encoding, authenticates the body, and
// parses it. The signature is checked before JSON parsing so a tampered body
// is rejected as unauthorized even when it is also malformed.
func (n *Normalizer) Normalize(req InboundRequest) (VerifiedEvent, payload.Tree, error) {
	body := req.Body
	if req.Base64 {
		decoded, err := base64.StdEncoding.DecodeString(string(body))
		if err != nil {
			return VerifiedEvent{}, nil, &Error{Kind: KindMalformed, Msg: "invalid base64 body", Err: err}
		}
		body = decoded
	}
	if len(body) == 0 {
		return VerifiedEvent{}, nil, &Error{Kind: KindEmptyBody, Msg: "empty body"}
	}

	if !VerifySignature(body, req.Header.Get(HeaderSignature), n.secret) {
		return VerifiedEvent{}, nil, &Error{Kind: KindUnauthorized, Msg: "signature verification failed"}
	}

	tree, err := payload.Parse(body)
	if err != nil {
		return VerifiedEvent{}, nil, &Error{Kind: KindInvalidJSON, Msg: "invalid JSON body", Err: err}
	}

	ev := VerifiedEvent{
		EventType:  req.Header.Get(HeaderEvent),
		DeliveryID: req.Header.Get(HeaderDelivery),
		RawBody:    string(body),
	}
	return ev, tree, nil
}
