// Package console ties the transport client, capability cache, dispatcher,
// and session state together under one orchestration policy: probes set
// connection state, capability reads require an established connection,
// and every dispatch appends both the request and the normalized response
// to the session log.
package console

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/parley-dev/parley/internal/api"
	"github.com/parley-dev/parley/internal/capability"
	"github.com/parley-dev/parley/internal/config"
	"github.com/parley-dev/parley/internal/dispatch"
	"github.com/parley-dev/parley/internal/log"
	"github.com/parley-dev/parley/internal/session"
)

// ErrNotConnected is returned when an operation requires an established
// connection. Callers surface it with remediation hints; no transport call
// is made.
var ErrNotConnected = errors.New("console: not connected to the agent service")

// RemediationHint is the user-facing guidance shown alongside
// connectivity failures.
const RemediationHint = "check that the agent service is running and that the configured endpoint and token are correct"

// Console orchestrates one interactive session. It is the single writer of
// the session's connection state and of the capability cache. Operations
// run to completion one at a time; there is no background polling and no
// automatic retry.
type Console struct {
	client     *api.Client
	cache      *capability.Cache
	dispatcher *dispatch.Dispatcher
	sess       *session.Session
	logger     *log.Logger
}

// New builds a Console from configuration. logger may be nil to disable
// event logging.
func New(cfg *config.Config, logger *log.Logger) *Console {
	opts := []api.Option{
		api.WithTimeouts(
			time.Duration(cfg.API.ProbeTimeout)*time.Second,
			time.Duration(cfg.API.StatusTimeout)*time.Second,
			time.Duration(cfg.API.QueryTimeout)*time.Second,
		),
	}
	if cfg.API.Token != "" {
		opts = append(opts, api.WithToken(cfg.API.Token))
	}
	client := api.NewClient(cfg.API.Endpoint, opts...)

	fetch := func(ctx context.Context) (*api.CapabilityInfo, error) {
		return client.Status(ctx), nil
	}

	c := &Console{
		client:     client,
		cache:      capability.New(fetch, time.Duration(cfg.Capability.TTL)*time.Second),
		dispatcher: dispatch.New(client),
		sess:       session.New(),
		logger:     logger,
	}
	_ = c.logger.Append(log.LogEvent{
		Event:     log.EventSessionStarted,
		SessionID: c.sess.ID(),
		Endpoint:  cfg.API.Endpoint,
	})
	return c
}

// Session exposes the session state for display.
func (c *Console) Session() *session.Session {
	return c.sess
}

// Endpoint returns the configured service endpoint.
func (c *Console) Endpoint() string {
	return c.client.BaseURL()
}

// Authenticated reports whether a bearer token is configured.
func (c *Console) Authenticated() bool {
	return c.client.Authenticated()
}

// Probe runs a liveness check and records the result in the session's
// connection state.
func (c *Console) Probe(ctx context.Context) session.ConnectionState {
	state := session.ConnectionState{
		Connected:     c.client.Ping(ctx),
		Endpoint:      c.client.BaseURL(),
		Authenticated: c.client.Authenticated(),
	}
	c.sess.SetConnection(state)
	_ = c.logger.Append(log.LogEvent{
		Event:     log.EventProbe,
		SessionID: c.sess.ID(),
		Endpoint:  state.Endpoint,
		Connected: state.Connected,
	})
	return state
}

// Capabilities returns the cached capability summary, refreshing per the
// cache's TTL policy or when force is set. It requires an established
// connection so a dead service cannot be hammered by status refreshes.
func (c *Console) Capabilities(ctx context.Context, force bool) (capability.Summary, error) {
	if !c.sess.Connection().Connected {
		return capability.Summary{}, ErrNotConnected
	}
	sum := c.cache.Get(ctx, force)
	_ = c.logger.Append(log.LogEvent{
		Event:     log.EventCapabilityRefresh,
		SessionID: c.sess.ID(),
		Status:    sum.Status,
		Error:     sum.Error,
	})
	return sum, nil
}

// CacheAge reports the age of the capability cache entry.
func (c *Console) CacheAge() (time.Duration, bool) {
	return c.cache.Age()
}

// Send dispatches free-form text and appends the exchange to the session
// log. A failed dispatch still produces an assistant turn describing the
// error, so the conversation continues instead of aborting. The returned
// turn is the assistant's.
func (c *Console) Send(ctx context.Context, text string) (session.Turn, error) {
	return c.exchange(ctx, text, "chat", func(ctx context.Context) (api.QueryResult, time.Duration) {
		return c.dispatcher.Dispatch(ctx, text)
	})
}

// QuickAction dispatches a named canned query through the same path as a
// free-form message.
func (c *Console) QuickAction(ctx context.Context, name string) (session.Turn, error) {
	query, ok := dispatch.QuickActionQuery(name)
	if !ok {
		return session.Turn{}, fmt.Errorf("console: unknown quick action %q", name)
	}
	return c.exchange(ctx, query, "quick_action", func(ctx context.Context) (api.QueryResult, time.Duration) {
		return c.dispatcher.Dispatch(ctx, query)
	})
}

// Search runs the templated search. The result's TotalFound is the 1-or-0
// presence heuristic, not a true count.
func (c *Console) Search(ctx context.Context, term string, maxResults int) (dispatch.SearchResult, error) {
	if !c.sess.Connection().Connected {
		return dispatch.SearchResult{}, ErrNotConnected
	}

	res, elapsed := c.dispatcher.Search(ctx, term, maxResults)
	_ = c.logger.Append(log.LogEvent{
		Event:      log.EventSearch,
		SessionID:  c.sess.ID(),
		Kind:       "search",
		Success:    res.Success,
		DurationMs: elapsed.Milliseconds(),
		Error:      res.Error,
	})
	return res, nil
}

// ClearChat atomically empties the turn log. Connection state and the
// capability cache are untouched.
func (c *Console) ClearChat() {
	c.sess.Clear()
	_ = c.logger.Append(log.LogEvent{
		Event:     log.EventChatCleared,
		SessionID: c.sess.ID(),
	})
}

// exchange is the shared dispatch-to-turn path: append the user turn, run
// the dispatch, append and return the assistant turn.
func (c *Console) exchange(ctx context.Context, userText, kind string, run func(context.Context) (api.QueryResult, time.Duration)) (session.Turn, error) {
	if !c.sess.Connection().Connected {
		return session.Turn{}, ErrNotConnected
	}

	if err := c.sess.Append(session.Turn{Role: session.RoleUser, Content: userText}); err != nil {
		return session.Turn{}, err
	}

	res, elapsed := run(ctx)

	turn := session.Turn{
		Role:          session.RoleAssistant,
		ExecutionTime: elapsed.Seconds(),
	}
	if res.Success {
		turn.Content = res.ResponseText
		if turn.Content == "" {
			turn.Content = "No response received"
		}
		turn.RoundCount = res.RoundCount
		turn.RemoteExecutionTime = res.ExecutionTime
	} else {
		errMsg := res.Error
		if errMsg == "" {
			errMsg = "Unknown error"
		}
		turn.Content = "Error: " + errMsg
	}
	if err := c.sess.Append(turn); err != nil {
		return session.Turn{}, err
	}

	_ = c.logger.Append(log.LogEvent{
		Event:      log.EventQueryDispatched,
		SessionID:  c.sess.ID(),
		Kind:       kind,
		Success:    res.Success,
		Rounds:     res.RoundCount,
		DurationMs: elapsed.Milliseconds(),
		Error:      res.Error,
	})
	return turn, nil
}
