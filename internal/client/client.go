// Package client implements githubgql.Client: transport orchestration plus
// the recursive depagination engine.
package client

import (
	"context"

	"github.com/actions-automation/githubgql/internal/auth"
	"github.com/actions-automation/githubgql/internal/transport"
	"github.com/actions-automation/githubgql/pkg/githubgql"
)

// Client implements the githubgql.Client interface.
type Client struct {
	transport *transport.Client
	logger    githubgql.Logger
}

// New creates a client from a resolved config. The endpoint must already be
// non-empty; gqlclient.New handles endpoint resolution and validation.
func New(config *githubgql.Config) *Client {
	return NewWithTokenManager(config, auth.NewStaticTokenManager(config.Token))
}

// NewWithTokenManager creates a client with a custom token manager.
func NewWithTokenManager(config *githubgql.Config, tokens auth.TokenManager) *Client {
	opts := transportOptions(config)

	return &Client{
		transport: transport.NewClient(config.Endpoint, tokens, opts...),
		logger:    config.Logger,
	}
}

// transportOptions builds transport options from config.
func transportOptions(config *githubgql.Config) []transport.Option {
	var opts []transport.Option

	if config.Logger != nil {
		opts = append(opts, transport.WithLogger(&loggerAdapter{logger: config.Logger}))
	}

	if config.Debug {
		opts = append(opts, transport.WithDebug(true))
	}

	if config.Accept != "" {
		opts = append(opts, transport.WithAccept(config.Accept))
	}

	if config.UserAgent != "" {
		opts = append(opts, transport.WithUserAgent(config.UserAgent))
	}

	if config.HTTPClient != nil {
		opts = append(opts, transport.WithHTTPClient(config.HTTPClient))
	}

	if config.MaxRetries != 0 {
		opts = append(opts, transport.WithRetryMax(config.MaxRetries))
	}

	return opts
}

// Execute implements githubgql.Client.Execute.
func (c *Client) Execute(ctx context.Context, query string, vars githubgql.Vars) (map[string]interface{}, error) {
	return c.transport.Execute(ctx, query, vars)
}

// Query implements githubgql.Client.Query.
//
// The caller's variable map is copied before the first request; cursor
// bindings evolve only on the working copies owned by each call frame.
func (c *Client) Query(ctx context.Context, query string, vars githubgql.Vars, cursors githubgql.CursorTree) (map[string]interface{}, error) {
	return c.depaginate(ctx, query, cloneVars(vars), cursors, nil)
}

// loggerAdapter adapts githubgql.Logger to transport.Logger.
type loggerAdapter struct {
	logger githubgql.Logger
}

func (l *loggerAdapter) Debug(msg string, fields map[string]interface{}) {
	l.logger.Debug(msg, fields)
}

func (l *loggerAdapter) Info(msg string, fields map[string]interface{}) {
	l.logger.Info(msg, fields)
}

func (l *loggerAdapter) Warn(msg string, fields map[string]interface{}) {
	l.logger.Warn(msg, fields)
}

func (l *loggerAdapter) Error(msg string, fields map[string]interface{}) {
	l.logger.Error(msg, fields)
}
