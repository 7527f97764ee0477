// Package record assembles verified events and extracted measures into
// write-ready output records.
package record

import (
	"time"

	"github.com/yutaro-sakamoto/github-activity-metrics/internal/extract"
	"github.com/yutaro-sakamoto/github-activity-metrics/internal/measure"
	"github.com/yutaro-sakamoto/github-activity-metrics/internal/normalize"
	"github.com/yutaro-sakamoto/github-activity-metrics/internal/payload"
)

// Dimension is one identity/context tag attached to a record.
type Dimension struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// OutputRecord is the append-only unit handed to the sink. It is never
// mutated after assembly.
type OutputRecord struct {
	Dimensions []Dimension     `json:"dimensions"`
	Measure    measure.Measure `json:"measure"`
	// Time is milliseconds since the epoch.
	Time int64 `json:"time"`
}

// dimensionRule maps a top-level payload path to a dimension name. The same
// presence rule as extraction applies: absent fields are omitted, never
// emitted as empty placeholders.
type dimensionRule struct {
	path []string
	name string
}

var dimensionRules = []dimensionRule{
	{path: []string{"repository", "id"}, name: "repository_id"},
	{path: []string{"repository", "name"}, name: "repository_name"},
	{path: []string{"repository", "full_name"}, name: "repository_full_name"},
	{path: []string{"organization", "id"}, name: "organization_id"},
	{path: []string{"organization", "login"}, name: "organization_login"},
	{path: []string{"sender", "id"}, name: "sender_id"},
	{path: []string{"sender", "login"}, name: "sender_login"},
	{path: []string{"action"}, name: "action"},
}

// Assemble merges the common dimensions with the extracted measure. The
// record timestamp is the wall clock at assembly, except on the custom-data
// path where a client-supplied top-level time wins so external producers can
// backfill.
func Assemble(ev normalize.VerifiedEvent, tree payload.Tree, m measure.Measure, now time.Time) OutputRecord {
	dims := make([]Dimension, 0, len(dimensionRules)+2)
	dims = append(dims, Dimension{Name: "event_type", Value: ev.EventType})
	if ev.DeliveryID != "" {
		dims = append(dims, Dimension{Name: "delivery_id", Value: ev.DeliveryID})
	}
	for _, r := range dimensionRules {
		if v, ok := tree.Get(r.path...); ok {
			dims = append(dims, Dimension{Name: r.name, Value: payload.Stringify(v)})
		}
	}

	ts := now.UnixMilli()
	if ev.EventType == extract.EventCustomData {
		if clientTime, ok := tree.Int64("time"); ok {
			ts = clientTime
		}
	}

	return OutputRecord{Dimensions: dims, Measure: m, Time: ts}
}
