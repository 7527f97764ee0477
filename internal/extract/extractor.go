// Package extract turns parsed webhook payloads into flat, typed measures.
//
// Extraction is a pure dispatch over the event type: each known event has a
// declarative rule table walked by one generic evaluator, unknown events fall
// through to a fixed fallback measure. The function is total; no payload
// shape can make it fail.
package extract

import (
	"github.com/yutaro-sakamoto/github-activity-metrics/internal/measure"
	"github.com/yutaro-sakamoto/github-activity-metrics/internal/payload"
)

// EventCustomData is the pass-through event type for non-GitHub clients that
// supply their own measures.
const EventCustomData = "custom_data"

type eventSpec struct {
	measureName string
	extract     func(payload.Tree) []measure.Value
}

func extractPullRequestEvent(t payload.Tree) []measure.Value {
	return extractPullRequest(t, "pr_")
}

var eventSpecs = map[string]eventSpec{
	"push":                {measureName: "push", extract: extractPush},
	"pull_request":        {measureName: "pull_request", extract: extractPullRequestEvent},
	"pull_request_review": {measureName: "pull_request_review", extract: extractPullRequestReview},
	"issues":              {measureName: "issues", extract: extractIssues},
	"workflow_run":        {measureName: "workflow_run", extract: extractWorkflowRun},
	EventCustomData:       {measureName: EventCustomData, extract: extractCustomData},
}

// Known reports whether extraction rules exist for the event type.
func Known(eventType string) bool {
	_, ok := eventSpecs[eventType]
	return ok
}

// Extract maps one event payload to exactly one measure. Event types without
// rules, and known events whose payload yields no fields at all, produce the
// fallback measure so every delivery stays countable.
func Extract(eventType string, tree payload.Tree) measure.Measure {
	spec, ok := eventSpecs[eventType]
	if !ok {
		return measure.Fallback()
	}
	values := spec.extract(tree)
	if len(values) == 0 {
		return measure.Fallback()
	}
	return measure.NewMulti(spec.measureName, values)
}
