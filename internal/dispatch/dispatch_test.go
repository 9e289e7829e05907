package dispatch

import (
	"context"
	"strings"
	"testing"

	"github.com/parley-dev/parley/internal/api"
)

// fakeSubmitter records submitted queries and replays a canned result.
type fakeSubmitter struct {
	queries []string
	result  api.QueryResult
}

func (f *fakeSubmitter) Query(_ context.Context, text string) api.QueryResult {
	f.queries = append(f.queries, text)
	return f.result
}

func TestBuildSearchQuery(t *testing.T) {
	got := BuildSearchQuery("refund", 5)
	want := "Search for 'refund' in the transcript database, limit to 5 results"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDispatchPassesTextThrough(t *testing.T) {
	f := &fakeSubmitter{result: api.QueryResult{Success: true, ResponseText: "ok"}}
	d := New(f)

	res, _ := d.Dispatch(context.Background(), "how many calls mention billing?")
	if !res.Success {
		t.Errorf("unexpected failure: %+v", res)
	}
	if len(f.queries) != 1 || f.queries[0] != "how many calls mention billing?" {
		t.Errorf("submitted queries: %v", f.queries)
	}
}

func TestQuickActionDispatchesCannedQuery(t *testing.T) {
	f := &fakeSubmitter{result: api.QueryResult{Success: true, ResponseText: "overview"}}
	d := New(f)

	res, _ := d.QuickAction(context.Background(), ActionDatabaseOverview)
	if !res.Success {
		t.Errorf("unexpected failure: %+v", res)
	}
	if len(f.queries) != 1 {
		t.Fatalf("expected 1 submission, got %d", len(f.queries))
	}
	if !strings.Contains(f.queries[0], "overview of the transcript database") {
		t.Errorf("wrong canned query: %q", f.queries[0])
	}
}

func TestQuickActionUnknownIntentSkipsTransport(t *testing.T) {
	f := &fakeSubmitter{}
	d := New(f)

	res, _ := d.QuickAction(context.Background(), "make_coffee")
	if res.Success {
		t.Error("expected failure for unknown intent")
	}
	if len(f.queries) != 0 {
		t.Errorf("unknown intent must not reach transport, got %v", f.queries)
	}
}

func TestQuickActionsAreStableAndComplete(t *testing.T) {
	names := QuickActions()
	if len(names) != 4 {
		t.Fatalf("expected 4 quick actions, got %v", names)
	}
	for _, name := range names {
		if _, ok := QuickActionQuery(name); !ok {
			t.Errorf("listed action %q has no query", name)
		}
	}
}

func TestSearchNonEmptyProseCountsAsOne(t *testing.T) {
	f := &fakeSubmitter{result: api.QueryResult{Success: true, ResponseText: "Transcript T-118 mentions a refund."}}
	d := New(f)

	res, _ := d.Search(context.Background(), "refund", 5)
	if !res.Success {
		t.Fatalf("unexpected failure: %+v", res)
	}
	if res.TotalFound != 1 {
		t.Errorf("TotalFound: got %d, want 1", res.TotalFound)
	}
	if !strings.Contains(f.queries[0], "'refund'") || !strings.Contains(f.queries[0], "5 results") {
		t.Errorf("search template not applied: %q", f.queries[0])
	}
}

func TestSearchEmptyProseCountsAsZero(t *testing.T) {
	f := &fakeSubmitter{result: api.QueryResult{Success: true, ResponseText: "   "}}
	d := New(f)

	res, _ := d.Search(context.Background(), "refund", 5)
	if !res.Success {
		t.Fatalf("unexpected failure: %+v", res)
	}
	if res.TotalFound != 0 {
		t.Errorf("TotalFound: got %d, want 0", res.TotalFound)
	}
}

func TestSearchFailurePropagatesError(t *testing.T) {
	f := &fakeSubmitter{result: api.QueryResult{Success: false, Error: "HTTP 502"}}
	d := New(f)

	res, _ := d.Search(context.Background(), "refund", 5)
	if res.Success {
		t.Error("expected failure")
	}
	if res.Error != "HTTP 502" {
		t.Errorf("Error: got %q", res.Error)
	}
	if res.TotalFound != 0 {
		t.Errorf("TotalFound on failure: got %d, want 0", res.TotalFound)
	}
}
