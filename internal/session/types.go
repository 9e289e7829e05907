// Package session holds the ephemeral per-session state: the append-only
// conversational log and the connection metadata. Nothing here survives
// session teardown.
package session

import "time"

// Turn roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one entry in the conversational log. Immutable once appended.
// ExecutionTime is measured locally around the transport call; RoundCount
// and RemoteExecutionTime are service-reported and stay zero for failure
// turns and user turns.
type Turn struct {
	Role                string    `json:"role"`
	Content             string    `json:"content"`
	Timestamp           time.Time `json:"timestamp"`
	ExecutionTime       float64   `json:"execution_time,omitempty"`
	RoundCount          int       `json:"round_count,omitempty"`
	RemoteExecutionTime float64   `json:"remote_execution_time,omitempty"`
}

// ConnectionState is the last observed reachability of the service.
// Recomputed per probe, never persisted.
type ConnectionState struct {
	Connected     bool
	Endpoint      string
	Authenticated bool
}

// Stats is the derived read-only summary of the log, recomputed from the
// current turns on every call.
type Stats struct {
	UserTurns   int
	TotalTurns  int
	LastTurnAge time.Duration
	HasTurns    bool
}
