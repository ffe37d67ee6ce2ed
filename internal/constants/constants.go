package constants

import "time"

// Endpoint selection.
const (
	// DefaultEndpoint is the public GitHub GraphQL endpoint.
	DefaultEndpoint = "https://api.github.com/graphql"

	// EndpointEnvVar overrides the endpoint, e.g. for GitHub Enterprise.
	EndpointEnvVar = "GITHUB_GRAPHQL_URL"
)

// Token sources.
const (
	// TokenEnvVar is the conventional Actions token variable.
	TokenEnvVar = "GITHUB_TOKEN"

	// AltTokenEnvVar is the gh CLI token variable, checked second.
	AltTokenEnvVar = "GH_TOKEN"
)

// Retry policy.
const (
	// DefaultMaxRetries is the default retry budget for transient failures.
	DefaultMaxRetries = 8

	// RetryWaitBase is the unit for exponential backoff: retry attempt k
	// sleeps 2^(k-1) * RetryWaitBase.
	RetryWaitBase = time.Second
)

// RetryableStatusCodes are the HTTP statuses retried for non-mutation
// queries: GitHub's secondary rate limit (403), throttling (429), and
// transient server errors.
var RetryableStatusCodes = []int{403, 429, 500, 502, 503, 504}

// HTTP defaults.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultUserAgent identifies the client when no override is set.
	DefaultUserAgent = "githubgql-go"
)

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// UI constants.
const (
	// MaskedSecret is used to hide sensitive information.
	MaskedSecret = "***"

	// NotAvailable is used when information is not available.
	NotAvailable = "N/A"

	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"
)
