package githubgql

import (
	"context"
	"net/http"
)

// Client executes GraphQL queries against the GitHub API and transparently
// depaginates connections described by a cursor tree.
type Client interface {
	// Query executes query with the given variable bindings and follows
	// every cursor named in cursors until its connection is exhausted,
	// returning one merged data tree with pagination metadata removed.
	// A nil cursor tree performs exactly one request and returns the data
	// unchanged.
	Query(ctx context.Context, query string, vars Vars, cursors CursorTree) (map[string]interface{}, error)

	// Execute performs a single request with no depagination.
	Execute(ctx context.Context, query string, vars Vars) (map[string]interface{}, error)
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building a githubgql.Client.
//
// # Authentication
//
// The client sends "Authorization: token <Token>" on every request, the
// scheme the GitHub GraphQL endpoint expects for personal access tokens and
// GITHUB_TOKEN. Acquiring the token is the caller's concern. An empty token
// fails with ErrMissingToken at request time, before any network call.
//
// # Endpoint resolution
//
// gqlclient.New resolves the target URL in order: Endpoint, the
// GITHUB_GRAPHQL_URL environment variable, then the public endpoint
// https://api.github.com/graphql.
//
// # Retries
//
// Transient statuses (403, 429, 500, 502, 503, 504) are retried with
// exponential backoff: retry attempt k sleeps 2^(k-1) seconds (0.5s, 1s,
// 2s, ...). Mutations are never retried. MaxRetries caps the number of
// retries; the zero value selects DefaultMaxRetries, a negative value
// disables retries entirely.
type Config struct {
	// Endpoint is the GraphQL endpoint URL. Empty selects the environment
	// override or the public GitHub endpoint.
	Endpoint string

	// Token is the GitHub access token sent on every request.
	Token string

	// Accept, when non-empty, is sent as the Accept header. GitHub uses it
	// to opt into preview schema features.
	Accept string

	// MaxRetries caps retries for transient failures. 0 selects
	// DefaultMaxRetries (8); a negative value disables retries.
	MaxRetries int

	// HTTPClient optionally overrides the underlying HTTP client, e.g. to
	// set a timeout or a recording transport.
	HTTPClient *http.Client

	// UserAgent overrides the default User-Agent header.
	UserAgent string

	// Logger is an optional structured logger used by the transport.
	Logger Logger

	// Debug enables verbose request/response logging when a Logger is set.
	Debug bool
}

// DefaultMaxRetries is the retry budget applied when Config.MaxRetries is
// left at its zero value.
const DefaultMaxRetries = 8
