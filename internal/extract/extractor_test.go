package extract

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"testing"

	"github.com/yutaro-sakamoto/github-activity-metrics/internal/measure"
	"github.com/yutaro-sakamoto/github-activity-metrics/internal/payload"
)

func parseTree(t *testing.T, raw string) payload.Tree {
	t.Helper()
	tree, err := payload.Parse([]byte(raw))
	if err != nil {
		t.Fatalf("parse payload: %v", err)
	}
	return tree
}

// valueMap indexes a multi measure's entries by name for assertions.
func valueMap(t *testing.T, m measure.Measure) map[string]measure.Value {
	t.Helper()
	if m.Type != measure.Multi {
		t.Fatalf("measure type = %s, want MULTI", m.Type)
	}
	out := make(map[string]measure.Value, len(m.Values))
	for _, v := range m.Values {
		if _, dup := out[v.Name]; dup {
			t.Fatalf("duplicate field %q", v.Name)
		}
		out[v.Name] = v
	}
	return out
}

func wantEntry(t *testing.T, vals map[string]measure.Value, name string, typ measure.ValueType, value string) {
	t.Helper()
	v, ok := vals[name]
	if !ok {
		t.Fatalf("missing field %q", name)
	}
	if v.Type != typ || v.Value != value {
		t.Fatalf("field %q = {%s %q}, want {%s %q}", name, v.Type, v.Value, typ, value)
	}
}

func TestExtractUnknownEventFallsBack(t *testing.T) {
	m := Extract("some_future_event", parseTree(t, `{"anything": 1}`))
	want := measure.Measure{Name: "dummyMeasure", Type: measure.Int64, Value: "1"}
	if !reflect.DeepEqual(m, want) {
		t.Fatalf("got %+v, want %+v", m, want)
	}
}

func TestExtractEmptyPayloadNeverPanics(t *testing.T) {
	for eventType := range eventSpecs {
		t.Run(eventType, func(t *testing.T) {
			m := Extract(eventType, payload.Tree{})
			if m.Type == measure.Multi {
				t.Fatalf("empty payload produced fields: %+v", m.Values)
			}
			if m.Name != measure.FallbackName {
				t.Fatalf("measure name = %q, want fallback", m.Name)
			}
		})
	}
}

func TestExtractPush(t *testing.T) {
	tree := parseTree(t, `{
		"after": "abc123",
		"before": "000",
		"commits": [{}, {}],
		"created": false,
		"deleted": false,
		"forced": false,
		"pusher": {"name": "alice"},
		"ref": "refs/heads/main"
	}`)
	m := Extract("push", tree)
	if m.Name != "push" {
		t.Fatalf("measure name = %q", m.Name)
	}
	vals := valueMap(t, m)

	wantEntry(t, vals, "push_after", measure.String, "abc123")
	wantEntry(t, vals, "push_before", measure.String, "000")
	wantEntry(t, vals, "push_commits_length", measure.Int64, "2")
	wantEntry(t, vals, "push_created", measure.Bool, "false")
	wantEntry(t, vals, "push_deleted", measure.Bool, "false")
	wantEntry(t, vals, "push_forced", measure.Bool, "false")
	wantEntry(t, vals, "push_pusher_name", measure.String, "alice")
	wantEntry(t, vals, "push_ref", measure.String, "refs/heads/main")
	if _, ok := vals["push_base_ref"]; ok {
		t.Fatal("push_base_ref emitted for absent field")
	}
	// Empty commit objects contribute no indexed fields.
	if _, ok := vals["push_commits_0_id"]; ok {
		t.Fatal("indexed commit field emitted for empty object")
	}
}

func TestExtractPullRequestMerged(t *testing.T) {
	cases := []struct {
		name      string
		payload   string
		wantField bool
		wantValue string
	}{
		{"merged false is emitted", `{"pull_request": {"merged": false, "number": 1}}`, true, "false"},
		{"merged true is emitted", `{"pull_request": {"merged": true, "number": 1}}`, true, "true"},
		{"merged absent is omitted", `{"pull_request": {"number": 1}}`, false, ""},
		{"merged null is omitted", `{"pull_request": {"merged": null, "number": 1}}`, false, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			vals := valueMap(t, Extract("pull_request", parseTree(t, tc.payload)))
			v, ok := vals["pr_merged"]
			if ok != tc.wantField {
				t.Fatalf("pr_merged present = %v, want %v", ok, tc.wantField)
			}
			if ok && (v.Type != measure.Bool || v.Value != tc.wantValue) {
				t.Fatalf("pr_merged = {%s %q}", v.Type, v.Value)
			}
		})
	}
}

func TestExtractPullRequestFields(t *testing.T) {
	tree := parseTree(t, `{
		"action": "closed",
		"pull_request": {
			"id": 9001,
			"number": 42,
			"state": "closed",
			"title": "Add retries",
			"user": {"login": "alice", "id": 7},
			"draft": false,
			"merged": true,
			"commits": 3,
			"additions": 120,
			"deletions": 4,
			"changed_files": 6,
			"head": {"ref": "feature/retries", "sha": "deadbeef"},
			"base": {"ref": "main", "sha": "cafebabe"},
			"created_at": "2024-03-01T12:00:00Z",
			"merged_at": "2024-03-02T08:30:00Z",
			"assignees": [{"login": "bob", "id": 8}, {"login": "carol", "id": 9}],
			"labels": [{"name": "bug"}]
		}
	}`)
	vals := valueMap(t, Extract("pull_request", tree))

	wantEntry(t, vals, "pr_id", measure.Int64, "9001")
	wantEntry(t, vals, "pr_number", measure.Int64, "42")
	wantEntry(t, vals, "pr_state", measure.String, "closed")
	wantEntry(t, vals, "pr_user_login", measure.String, "alice")
	wantEntry(t, vals, "pr_user_id", measure.Int64, "7")
	wantEntry(t, vals, "pr_draft", measure.Bool, "false")
	wantEntry(t, vals, "pr_additions", measure.Int64, "120")
	wantEntry(t, vals, "pr_head_ref", measure.String, "feature/retries")
	wantEntry(t, vals, "pr_base_sha", measure.String, "cafebabe")
	wantEntry(t, vals, "pr_created_at", measure.Timestamp, "1709294400000")
	wantEntry(t, vals, "pr_merged_at", measure.Timestamp, "1709368200000")
	wantEntry(t, vals, "pr_assignees_length", measure.Int64, "2")
	wantEntry(t, vals, "pr_assignees_0_login", measure.String, "bob")
	wantEntry(t, vals, "pr_assignees_1_id", measure.Int64, "9")
	wantEntry(t, vals, "pr_labels_length", measure.Int64, "1")
	wantEntry(t, vals, "pr_labels_0_name", measure.String, "bug")
	if _, ok := vals["pr_closed_at"]; ok {
		t.Fatal("pr_closed_at emitted for absent field")
	}
}

func TestExtractPullRequestReviewPrefixes(t *testing.T) {
	tree := parseTree(t, `{
		"review": {
			"id": 55,
			"state": "approved",
			"user": {"login": "dana", "id": 12},
			"submitted_at": "2024-03-01T12:00:00Z"
		},
		"pull_request": {"number": 42, "state": "open"}
	}`)
	m := Extract("pull_request_review", tree)
	if m.Name != "pull_request_review" {
		t.Fatalf("measure name = %q", m.Name)
	}
	vals := valueMap(t, m)

	wantEntry(t, vals, "pr_rv_number", measure.Int64, "42")
	wantEntry(t, vals, "pr_rv_state", measure.String, "open")
	wantEntry(t, vals, "review_id", measure.Int64, "55")
	wantEntry(t, vals, "review_state", measure.String, "approved")
	wantEntry(t, vals, "review_user_login", measure.String, "dana")
	if _, ok := vals["pr_number"]; ok {
		t.Fatal("pull_request_review leaked pr_ prefixed fields")
	}
}

func TestExtractIssues(t *testing.T) {
	tree := parseTree(t, `{
		"issue": {
			"id": 31,
			"number": 7,
			"state": "open",
			"title": "panic on empty body",
			"user": {"login": "erin", "id": 20},
			"locked": false,
			"comments": 0,
			"assignee": {"login": "frank", "id": 21},
			"labels": [{"name": "bug"}, {"name": "p1"}],
			"created_at": "2024-03-01T12:00:00Z"
		}
	}`)
	vals := valueMap(t, Extract("issues", tree))

	wantEntry(t, vals, "issue_number", measure.Int64, "7")
	wantEntry(t, vals, "issue_comments", measure.Int64, "0")
	wantEntry(t, vals, "issue_locked", measure.Bool, "false")
	wantEntry(t, vals, "issue_assignee_login", measure.String, "frank")
	wantEntry(t, vals, "issue_assignee_id", measure.Int64, "21")
	wantEntry(t, vals, "issue_labels_length", measure.Int64, "2")
	wantEntry(t, vals, "issue_labels_1_name", measure.String, "p1")
}

func TestExtractWorkflowRun(t *testing.T) {
	tree := parseTree(t, `{
		"workflow_run": {
			"id": 123456,
			"name": "ci",
			"run_number": 77,
			"run_attempt": 2,
			"event": "push",
			"status": "completed",
			"conclusion": "success",
			"head_branch": "main",
			"head_sha": "abc",
			"run_started_at": "2024-03-01T12:00:00Z"
		}
	}`)
	vals := valueMap(t, Extract("workflow_run", tree))

	wantEntry(t, vals, "workflow_run_id", measure.Int64, "123456")
	wantEntry(t, vals, "workflow_run_run_number", measure.Int64, "77")
	wantEntry(t, vals, "workflow_run_conclusion", measure.String, "success")
	wantEntry(t, vals, "workflow_run_run_started_at", measure.Timestamp, "1709294400000")
}

func TestExtractCustomData(t *testing.T) {
	tree := parseTree(t, `{
		"time": 1709294400000,
		"measures": [
			{"name": "build_seconds", "type": "INT64", "value": 93},
			{"name": "cache_hit", "type": "BOOL", "value": true},
			{"name": "branch", "value": "main"},
			{"name": "bad_type", "type": "DECIMAL", "value": "1.25"},
			{"value": 1},
			"not an object"
		]
	}`)
	vals := valueMap(t, Extract("custom_data", tree))

	wantEntry(t, vals, "build_seconds", measure.Int64, "93")
	wantEntry(t, vals, "cache_hit", measure.Bool, "true")
	wantEntry(t, vals, "branch", measure.String, "main")
	wantEntry(t, vals, "bad_type", measure.String, "1.25")
	if len(vals) != 4 {
		t.Fatalf("got %d entries, want 4", len(vals))
	}
}

func TestArrayFlatteningIsBounded(t *testing.T) {
	assignees := make([]string, 0, 8)
	for i := 0; i < 8; i++ {
		assignees = append(assignees, fmt.Sprintf(`{"login": "user%d", "id": %d}`, i, i))
	}
	raw := fmt.Sprintf(`{"pull_request": {"assignees": [%s]}}`,
		joinJSON(assignees))
	vals := valueMap(t, Extract("pull_request", parseTree(t, raw)))

	wantEntry(t, vals, "pr_assignees_length", measure.Int64, "8")
	for i := 0; i < maxIndexed; i++ {
		wantEntry(t, vals, "pr_assignees_"+strconv.Itoa(i)+"_login", measure.String, fmt.Sprintf("user%d", i))
	}
	if _, ok := vals["pr_assignees_5_login"]; ok {
		t.Fatal("flattened past the index cap")
	}
}

func TestExtractIsPure(t *testing.T) {
	raw := `{"pull_request": {"number": 42, "merged": false, "assignees": [{"login": "bob", "id": 8}]}}`
	tree := parseTree(t, raw)
	first, err := json.Marshal(Extract("pull_request", tree))
	if err != nil {
		t.Fatal(err)
	}
	second, err := json.Marshal(Extract("pull_request", tree))
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(second) {
		t.Fatalf("extract is not deterministic:\n%s\n%s", first, second)
	}
}

func joinJSON(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ", "
		}
		out += p
	}
	return out
}
