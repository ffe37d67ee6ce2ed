// Package gqlclient provides the main entry point for creating GitHub
// GraphQL clients.
package gqlclient

import (
	"os"
	"strings"

	"github.com/actions-automation/githubgql/internal/auth"
	"github.com/actions-automation/githubgql/internal/client"
	"github.com/actions-automation/githubgql/internal/constants"
	"github.com/actions-automation/githubgql/pkg/githubgql"
)

// New creates a GitHub GraphQL client.
//
// The endpoint is resolved in order: Config.Endpoint, the
// GITHUB_GRAPHQL_URL environment variable, then the public endpoint. An
// empty token is accepted here; requests fail with ErrMissingToken until
// one is configured.
func New(config *githubgql.Config) (githubgql.Client, error) {
	if config == nil {
		return nil, githubgql.ErrConfigRequired
	}

	resolved := *config
	resolved.Endpoint = resolveEndpoint(config.Endpoint)

	return client.New(&resolved), nil
}

// NewWithToken creates a client around a fixed access token.
func NewWithToken(token string) (githubgql.Client, error) {
	return New(&githubgql.Config{Token: token})
}

// NewFromEnv creates a client whose token is read from GITHUB_TOKEN, then
// GH_TOKEN, on each request.
func NewFromEnv() (githubgql.Client, error) {
	config := &githubgql.Config{Endpoint: resolveEndpoint("")}

	return client.NewWithTokenManager(config, auth.NewEnvTokenManager()), nil
}

// resolveEndpoint applies the environment override and default.
func resolveEndpoint(endpoint string) string {
	if endpoint == "" {
		endpoint = os.Getenv(constants.EndpointEnvVar)
	}

	if endpoint == "" {
		endpoint = constants.DefaultEndpoint
	}

	return strings.TrimSuffix(endpoint, "/")
}
