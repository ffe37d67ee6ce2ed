package auth_test

import (
	"context"
	"testing"

	"github.com/actions-automation/githubgql/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticTokenManager(t *testing.T) {
	t.Parallel()

	manager := auth.NewStaticTokenManager("test-token")

	token, err := manager.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "test-token", token)
}

func TestEnvTokenManager(t *testing.T) {
	t.Run("first variable wins", func(t *testing.T) {
		t.Setenv("GITHUB_TOKEN", "primary")
		t.Setenv("GH_TOKEN", "fallback")

		token, err := auth.NewEnvTokenManager().GetToken(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "primary", token)
	})

	t.Run("falls back when the first is empty", func(t *testing.T) {
		t.Setenv("GITHUB_TOKEN", "")
		t.Setenv("GH_TOKEN", "fallback")

		token, err := auth.NewEnvTokenManager().GetToken(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "fallback", token)
	})

	t.Run("custom variables", func(t *testing.T) {
		t.Setenv("MY_TOKEN", "custom")

		token, err := auth.NewEnvTokenManager("MY_TOKEN").GetToken(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "custom", token)
	})

	t.Run("nothing set", func(t *testing.T) {
		t.Setenv("GITHUB_TOKEN", "")
		t.Setenv("GH_TOKEN", "")

		token, err := auth.NewEnvTokenManager().GetToken(context.Background())
		require.NoError(t, err)
		assert.Empty(t, token)
	})
}
