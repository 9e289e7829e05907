// Package dispatch builds concrete query strings (free-form, search, and
// canned quick actions) and submits them through the transport client,
// measuring local wall-clock time around each call.
package dispatch

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/parley-dev/parley/internal/api"
)

// Quick-action intent names.
const (
	ActionDatabaseOverview = "database_overview"
	ActionCommonIssues     = "common_issues"
	ActionCallTrends       = "call_trends"
	ActionCapabilities     = "capabilities"
)

// quickQueries maps intent names to their canned natural-language queries.
var quickQueries = map[string]string{
	ActionDatabaseOverview: "Give me an overview of the transcript database - how many transcripts are there and what can I analyze?",
	ActionCommonIssues:     "What are the most common customer issues in the call transcripts? Provide examples with transcript IDs.",
	ActionCallTrends:       "Analyze call patterns and trends in the transcript data. Show me specific examples.",
	ActionCapabilities:     "What can you help me analyze from the call transcripts? What tools do you have available?",
}

// QuickActionQuery returns the canned query for a named intent.
func QuickActionQuery(name string) (string, bool) {
	q, ok := quickQueries[name]
	return q, ok
}

// QuickActions returns the known intent names in stable order.
func QuickActions() []string {
	names := make([]string, 0, len(quickQueries))
	for name := range quickQueries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BuildSearchQuery renders the search template for a term and result limit.
func BuildSearchQuery(term string, maxResults int) string {
	return fmt.Sprintf("Search for '%s' in the transcript database, limit to %d results", term, maxResults)
}

// SearchResult is the structured outcome of a templated search. TotalFound
// is a 1-or-0 heuristic derived from response emptiness: the service
// returns prose, not structured records, so a true result count is not
// available. Callers must not treat it as exact.
type SearchResult struct {
	Success      bool
	TotalFound   int
	ResponseText string
	Error        string
}

// Submitter is the transport capability the dispatcher needs.
type Submitter interface {
	Query(ctx context.Context, text string) api.QueryResult
}

// Dispatcher submits built queries and reports local timing alongside the
// service-reported metrics.
type Dispatcher struct {
	client Submitter
	now    func() time.Time
}

// New creates a Dispatcher over the given transport.
func New(client Submitter) *Dispatcher {
	return &Dispatcher{client: client, now: time.Now}
}

// Dispatch submits raw text and returns the normalized result plus the
// locally measured elapsed time. The local measurement is independent of
// any execution time the service reports about itself.
func (d *Dispatcher) Dispatch(ctx context.Context, text string) (api.QueryResult, time.Duration) {
	start := d.now()
	res := d.client.Query(ctx, text)
	return res, d.now().Sub(start)
}

// QuickAction dispatches a named intent's canned query. Unknown intents
// come back as a failure result without touching transport.
func (d *Dispatcher) QuickAction(ctx context.Context, name string) (api.QueryResult, time.Duration) {
	query, ok := QuickActionQuery(name)
	if !ok {
		return api.QueryResult{
			Success:      false,
			ResponseText: fmt.Sprintf("unknown quick action %q", name),
			Error:        "unknown quick action",
		}, 0
	}
	return d.Dispatch(ctx, query)
}

// Search dispatches the search template and condenses the outcome into a
// SearchResult with the TotalFound heuristic.
func (d *Dispatcher) Search(ctx context.Context, term string, maxResults int) (SearchResult, time.Duration) {
	res, elapsed := d.Dispatch(ctx, BuildSearchQuery(term, maxResults))
	if !res.Success {
		errMsg := res.Error
		if errMsg == "" {
			errMsg = "search failed"
		}
		return SearchResult{Error: errMsg}, elapsed
	}

	found := 0
	if strings.TrimSpace(res.ResponseText) != "" {
		found = 1
	}
	return SearchResult{
		Success:      true,
		TotalFound:   found,
		ResponseText: res.ResponseText,
	}, elapsed
}
