// Package api provides the HTTP client for the remote transcript-analysis
// agent service. All transport failures are normalized at this boundary:
// callers receive zero values or failure-flagged results, never panics.
package api

// CapabilityInfo is the structured status document reported by the service.
// Missing fields decode to their zero values.
type CapabilityInfo struct {
	ToolCount           int  `json:"tools_count"`
	ReasoningConnected  bool `json:"azure_openai_connected"`
	ToolServerConnected bool `json:"mcp_server_connected"`
}

// QueryResult is the normalized outcome of a query submission. It is
// constructed fresh per call and never mutated afterwards.
type QueryResult struct {
	Success       bool
	ResponseText  string
	Error         string
	RoundCount    int
	ExecutionTime float64 // seconds, as reported by the service
}

// queryRequest is the wire body for POST /api/query.
type queryRequest struct {
	Query string `json:"query"`
}

// queryResponse is the wire body returned by POST /api/query.
type queryResponse struct {
	Success            bool    `json:"success"`
	Response           string  `json:"response"`
	Error              string  `json:"error,omitempty"`
	TotalRounds        int     `json:"total_rounds"`
	TotalExecutionTime float64 `json:"total_execution_time"`
}
