package record

import (
	"testing"
	"time"

	"github.com/yutaro-sakamoto/github-activity-metrics/internal/measure"
	"github.com/yutaro-sakamoto/github-activity-metrics/internal/normalize"
	"github.com/yutaro-sakamoto/github-activity-metrics/internal/payload"
)

func dimMap(rec OutputRecord) map[string]string {
	out := make(map[string]string, len(rec.Dimensions))
	for _, d := range rec.Dimensions {
		out[d.Name] = d.Value
	}
	return out
}

func TestAssembleDimensions(t *testing.T) {
	tree, err := payload.Parse([]byte(`{
		"action": "opened",
		"repository": {"id": 1296269, "name": "Hello-World", "full_name": "octocat/Hello-World"},
		"organization": {"id": 9919, "login": "octo-org"},
		"sender": {"id": 583231, "login": "octocat"}
	}`))
	if err != nil {
		t.Fatal(err)
	}
	ev := normalize.VerifiedEvent{EventType: "pull_request", DeliveryID: "d-42"}
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	rec := Assemble(ev, tree, measure.Fallback(), now)
	dims := dimMap(rec)

	want := map[string]string{
		"event_type":           "pull_request",
		"delivery_id":          "d-42",
		"repository_id":        "1296269",
		"repository_name":      "Hello-World",
		"repository_full_name": "octocat/Hello-World",
		"organization_id":      "9919",
		"organization_login":   "octo-org",
		"sender_id":            "583231",
		"sender_login":         "octocat",
		"action":               "opened",
	}
	if len(dims) != len(want) {
		t.Fatalf("got %d dimensions, want %d: %v", len(dims), len(want), dims)
	}
	for name, value := range want {
		if dims[name] != value {
			t.Errorf("dimension %s = %q, want %q", name, dims[name], value)
		}
	}
	if rec.Time != now.UnixMilli() {
		t.Fatalf("time = %d, want %d", rec.Time, now.UnixMilli())
	}
	// event_type leads, so grouping by the first dimension always works.
	if rec.Dimensions[0].Name != "event_type" {
		t.Fatalf("first dimension = %s", rec.Dimensions[0].Name)
	}
}

func TestAssembleOmitsAbsentDimensions(t *testing.T) {
	tree, err := payload.Parse([]byte(`{"repository": {"name": "solo"}}`))
	if err != nil {
		t.Fatal(err)
	}
	ev := normalize.VerifiedEvent{EventType: "push"}
	rec := Assemble(ev, tree, measure.Fallback(), time.Now())
	dims := dimMap(rec)

	if len(dims) != 2 {
		t.Fatalf("got %d dimensions, want 2: %v", len(dims), dims)
	}
	if dims["event_type"] != "push" || dims["repository_name"] != "solo" {
		t.Fatalf("dims = %v", dims)
	}
	if _, ok := dims["delivery_id"]; ok {
		t.Fatal("empty delivery_id emitted")
	}
}

func TestAssembleCustomDataTime(t *testing.T) {
	now := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	withTime, _ := payload.Parse([]byte(`{"time": 1709294400000, "measures": []}`))
	rec := Assemble(normalize.VerifiedEvent{EventType: "custom_data"}, withTime, measure.Fallback(), now)
	if rec.Time != 1709294400000 {
		t.Fatalf("client time ignored: %d", rec.Time)
	}

	withoutTime, _ := payload.Parse([]byte(`{"measures": []}`))
	rec = Assemble(normalize.VerifiedEvent{EventType: "custom_data"}, withoutTime, measure.Fallback(), now)
	if rec.Time != now.UnixMilli() {
		t.Fatalf("wall clock not used: %d", rec.Time)
	}

	// A github event never takes payload time.
	rec = Assemble(normalize.VerifiedEvent{EventType: "push"}, withTime, measure.Fallback(), now)
	if rec.Time != now.UnixMilli() {
		t.Fatalf("push took client time: %d", rec.Time)
	}
}
