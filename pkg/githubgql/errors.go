package githubgql

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Static errors for err113 compliance.
var (
	// ErrMissingToken is returned when no GitHub access token is available
	// at request time. It is raised before any network call is made.
	ErrMissingToken = errors.New("no GitHub access token provided")

	// ErrEmptyQuery is returned when the query text is empty after trimming.
	ErrEmptyQuery = errors.New("query must not be empty")

	// ErrConfigRequired is returned by constructors given a nil config.
	ErrConfigRequired = errors.New("config is required")

	// ErrInvalidCursorTree is returned when a cursor tree entry is nil or
	// has an empty path.
	ErrInvalidCursorTree = errors.New("cursor node must have a non-empty path")
)

// HTTPError represents a non-200 reply from the GraphQL endpoint after the
// retry budget is exhausted. It carries the full final reply.
type HTTPError struct {
	StatusCode int
	Status     string
	Headers    http.Header
	Body       []byte
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	return fmt.Sprintf("graphql endpoint returned %s", e.Status)
}

// GraphQLErrorLocation identifies a position in the query document.
type GraphQLErrorLocation struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// GraphQLErrorItem is a single entry of a GraphQL errors array.
type GraphQLErrorItem struct {
	Message   string                 `json:"message"`
	Type      string                 `json:"type,omitempty"`
	Path      []interface{}          `json:"path,omitempty"`
	Locations []GraphQLErrorLocation `json:"locations,omitempty"`
}

// GraphQLError represents a 200 reply whose body contains an errors array.
// Errors holds the array as returned by the server; it takes precedence
// over any data that may also be present in the reply.
type GraphQLError struct {
	Errors []GraphQLErrorItem `json:"errors"`
}

// Error implements the error interface for GraphQLError.
func (e *GraphQLError) Error() string {
	if len(e.Errors) == 0 {
		return "graphql error"
	}

	if len(e.Errors) == 1 {
		return "graphql error: " + e.Errors[0].Message
	}

	messages := make([]string, 0, len(e.Errors))
	for _, item := range e.Errors {
		messages = append(messages, item.Message)
	}

	return fmt.Sprintf("%d graphql errors: %s", len(e.Errors), strings.Join(messages, "; "))
}

// ShapeError reports a response that does not contain the pageInfo/nodes
// structure the cursor tree says a connection should have.
type ShapeError struct {
	// Path is the dotted response path that was being resolved.
	Path string
	// Missing describes what was expected at that location.
	Missing string
}

// Error implements the error interface for ShapeError.
func (e *ShapeError) Error() string {
	return fmt.Sprintf("unexpected response shape at %q: %s", e.Path, e.Missing)
}

// IsRateLimited checks whether the error is a rate-limit reply (429, or the
// 403 GitHub uses for secondary rate limits).
func IsRateLimited(err error) bool {
	httpErr := &HTTPError{}
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusTooManyRequests ||
			httpErr.StatusCode == http.StatusForbidden
	}

	return false
}

// IsUnauthorized checks whether the error is a bad-credential reply.
func IsUnauthorized(err error) bool {
	httpErr := &HTTPError{}
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusUnauthorized
	}

	return false
}
