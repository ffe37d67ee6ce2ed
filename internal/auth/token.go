// Package auth provides token managers for the GitHub GraphQL transport.
//
// Credential acquisition is out of scope for this library: a manager only
// hands back a token string supplied by the caller or the environment.
package auth

import (
	"context"
	"os"

	"github.com/actions-automation/githubgql/internal/constants"
)

// TokenManager supplies the access token sent on each request.
type TokenManager interface {
	GetToken(ctx context.Context) (string, error)
}

// staticTokenManager provides a fixed token.
type staticTokenManager struct {
	token string
}

// NewStaticTokenManager creates a token manager around a fixed token
// string. An empty token is allowed here; the transport rejects it at
// request time.
func NewStaticTokenManager(token string) TokenManager {
	return &staticTokenManager{token: token}
}

func (m *staticTokenManager) GetToken(ctx context.Context) (string, error) {
	return m.token, nil
}

// envTokenManager reads the token from environment variables on each call.
type envTokenManager struct {
	vars []string
}

// NewEnvTokenManager creates a token manager that reads the first non-empty
// value of the given environment variables. With no arguments it checks
// GITHUB_TOKEN, then GH_TOKEN.
func NewEnvTokenManager(vars ...string) TokenManager {
	if len(vars) == 0 {
		vars = []string{constants.TokenEnvVar, constants.AltTokenEnvVar}
	}

	return &envTokenManager{vars: vars}
}

func (m *envTokenManager) GetToken(ctx context.Context) (string, error) {
	for _, name := range m.vars {
		if value := os.Getenv(name); value != "" {
			return value, nil
		}
	}

	return "", nil
}
