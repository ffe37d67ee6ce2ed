// Package transport issues GraphQL POST requests against a single endpoint
// and classifies the replies.
package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/actions-automation/githubgql/internal/auth"
	"github.com/actions-automation/githubgql/internal/constants"
	"github.com/actions-automation/githubgql/pkg/githubgql"
	"github.com/hashicorp/go-retryablehttp"
)

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Client executes GraphQL requests with retry and backoff.
type Client struct {
	endpoint      string
	tokens        auth.TokenManager
	accept        string
	userAgent     string
	logger        Logger
	debug         bool
	retryMax      int
	retryWaitBase time.Duration
	httpClient    *http.Client

	retryClient *retryablehttp.Client
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request/response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithAccept sets the Accept header sent on every request. GitHub uses it
// to opt into preview schema features.
func WithAccept(accept string) Option {
	return func(c *Client) {
		c.accept = accept
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithRetryMax sets the retry budget. Negative disables retries.
func WithRetryMax(retryMax int) Option {
	return func(c *Client) {
		if retryMax < 0 {
			retryMax = 0
		}

		c.retryMax = retryMax
	}
}

// WithRetryWaitBase scales the exponential backoff unit. Retry attempt k
// sleeps 2^(k-1) times this duration.
func WithRetryWaitBase(base time.Duration) Option {
	return func(c *Client) {
		c.retryWaitBase = base
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a transport client for the given endpoint.
func NewClient(endpoint string, tokens auth.TokenManager, opts ...Option) *Client {
	client := &Client{
		endpoint:      endpoint,
		tokens:        tokens,
		userAgent:     constants.DefaultUserAgent,
		retryMax:      constants.DefaultMaxRetries,
		retryWaitBase: constants.RetryWaitBase,
		httpClient:    &http.Client{Timeout: constants.DefaultHTTPTimeout},
	}

	for _, opt := range opts {
		opt(client)
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient = client.httpClient
	retryClient.RetryMax = client.retryMax
	retryClient.CheckRetry = client.checkRetry
	retryClient.Backoff = ExponentialBackoff(client.retryWaitBase)
	// Keep the final reply so HTTPError can carry it whole.
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.Logger = nil

	client.retryClient = retryClient

	return client
}

// graphqlRequest is the POST body. Variables is a JSON-encoded string, not
// a nested object: the endpoint contract double-encodes variable bindings.
type graphqlRequest struct {
	Query     string `json:"query"`
	Variables string `json:"variables"`
}

// graphqlReply is the decoded response body. Errors is kept raw so that a
// present-but-null errors key is still treated as an application error.
type graphqlReply struct {
	Data   map[string]interface{} `json:"data"`
	Errors json.RawMessage        `json:"errors"`
}

// Execute performs one GraphQL POST and returns the object under "data".
//
// The query is trimmed before sending. A missing token fails with
// githubgql.ErrMissingToken before any network call. Transient statuses
// are retried with exponential backoff unless the query is a mutation.
func (c *Client) Execute(ctx context.Context, query string, variables githubgql.Vars) (map[string]interface{}, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, githubgql.ErrEmptyQuery
	}

	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	body, err := encodeRequest(query, variables)
	if err != nil {
		return nil, err
	}

	if IsMutation(query) {
		ctx = withMutationFlag(ctx)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("creating graphql request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "token "+token)
	req.Header.Set("User-Agent", c.userAgent)

	if c.accept != "" {
		req.Header.Set("Accept", c.accept)
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("GraphQL request", map[string]interface{}{
			"endpoint": c.endpoint,
			"body":     string(body),
		})
	}

	resp, err := c.retryClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing graphql request: %w", err)
	}

	return c.decodeReply(resp)
}

// token resolves the access token, failing before any network I/O when none
// is available.
func (c *Client) token(ctx context.Context) (string, error) {
	if c.tokens == nil {
		return "", githubgql.ErrMissingToken
	}

	token, err := c.tokens.GetToken(ctx)
	if err != nil {
		return "", fmt.Errorf("resolving access token: %w", err)
	}

	if token == "" {
		return "", githubgql.ErrMissingToken
	}

	return token, nil
}

func encodeRequest(query string, variables githubgql.Vars) ([]byte, error) {
	if variables == nil {
		variables = githubgql.Vars{}
	}

	encodedVars, err := json.Marshal(variables)
	if err != nil {
		return nil, fmt.Errorf("encoding graphql variables: %w", err)
	}

	body, err := json.Marshal(graphqlRequest{
		Query:     query,
		Variables: string(encodedVars),
	})
	if err != nil {
		return nil, fmt.Errorf("encoding graphql request: %w", err)
	}

	return body, nil
}

func (c *Client) decodeReply(resp *http.Response) (map[string]interface{}, error) {
	defer func() {
		_ = resp.Body.Close()
	}()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading graphql response: %w", err)
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("GraphQL response", map[string]interface{}{
			"status": resp.StatusCode,
			"body":   string(payload),
		})
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &githubgql.HTTPError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Headers:    resp.Header.Clone(),
			Body:       payload,
		}
	}

	var reply graphqlReply
	if err := json.Unmarshal(payload, &reply); err != nil {
		return nil, fmt.Errorf("parsing graphql response: %w", err)
	}

	// The errors key takes precedence over data.
	if reply.Errors != nil {
		var items []githubgql.GraphQLErrorItem
		if err := json.Unmarshal(reply.Errors, &items); err != nil {
			return nil, fmt.Errorf("parsing graphql errors: %w", err)
		}

		return nil, &githubgql.GraphQLError{Errors: items}
	}

	return reply.Data, nil
}
