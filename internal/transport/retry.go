package transport

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/actions-automation/githubgql/internal/constants"
	"github.com/hashicorp/go-retryablehttp"
)

// mutationContextKey marks a request as a mutation so the retry policy can
// refuse to replay it.
type mutationContextKey struct{}

func withMutationFlag(ctx context.Context) context.Context {
	return context.WithValue(ctx, mutationContextKey{}, true)
}

func isMutationRequest(ctx context.Context) bool {
	flagged, _ := ctx.Value(mutationContextKey{}).(bool)

	return flagged
}

// IsMutation reports whether the query text is a mutation. Classification
// is syntactic: after trimming, the text must be exactly "mutation" or
// start with "mutation" followed by '(', '{', or whitespace.
func IsMutation(query string) bool {
	const keyword = "mutation"

	query = strings.TrimSpace(query)
	if query == keyword {
		return true
	}

	if !strings.HasPrefix(query, keyword) {
		return false
	}

	switch query[len(keyword)] {
	case '(', '{', ' ', '\t', '\n', '\r':
		return true
	}

	return false
}

// ExponentialBackoff returns a retryablehttp backoff where retry attempt k
// sleeps 2^(k-1) * base: base/2, base, 2*base, and so on.
func ExponentialBackoff(base time.Duration) retryablehttp.Backoff {
	return func(_, _ time.Duration, attemptNum int, _ *http.Response) time.Duration {
		if attemptNum > 30 {
			attemptNum = 30
		}

		return (base << uint(attemptNum)) / 2
	}
}

// retryableStatus reports whether the HTTP status is in the transient set.
func retryableStatus(code int) bool {
	for _, retryable := range constants.RetryableStatusCodes {
		if code == retryable {
			return true
		}
	}

	return false
}

// checkRetry implements the retry policy: transient statuses and transport
// errors are retried, mutations never are.
func (c *Client) checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	if isMutationRequest(ctx) {
		return false, nil
	}

	if err != nil {
		return true, nil
	}

	if resp != nil && retryableStatus(resp.StatusCode) {
		if c.logger != nil {
			c.logger.Warn("Retrying GraphQL request", map[string]interface{}{
				"status": resp.StatusCode,
			})
		}

		return true, nil
	}

	return false, nil
}
