package main

import (
	"context"
	"testing"
	"time"

	"nutriflow/config"
	"nutriflow/form"
	"nutriflow/supabase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBuildBackend(t *testing.T) {
	t.Run("memory uses the self-hosted provider", func(t *testing.T) {
		be, err := buildBackend(config.AppConfig{
			Backend:                 config.BackendMemory,
			JWTSecret:               "s",
			PublicURL:               "http://localhost:8080",
			VerificationExpiryHours: 24,
		}, zap.NewNop())
		require.NoError(t, err)
		assert.NotNil(t, be.verifier)

		user, err := be.auth.SignUp(context.Background(), "ada@example.com", "secret1")
		require.NoError(t, err)
		assert.NotEmpty(t, user.ID)
	})

	t.Run("supabase serves both roles", func(t *testing.T) {
		be, err := buildBackend(config.AppConfig{
			Backend:  config.BackendSupabase,
			Supabase: config.SupabaseConfig{URL: "https://example.supabase.co", AnonKey: "anon"},
		}, zap.NewNop())
		require.NoError(t, err)
		assert.IsType(t, &supabase.Client{}, be.auth)
		assert.IsType(t, &supabase.Client{}, be.profiles)
		assert.Nil(t, be.verifier)
	})
}

func TestSweepIdleForms(t *testing.T) {
	forms := form.NewRegistry()
	forms.Create()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweepIdleForms(ctx, forms, 10*time.Millisecond, time.Nanosecond, zap.NewNop())
		close(done)
	}()

	assert.Eventually(t, func() bool { return forms.Len() == 0 }, time.Second, 10*time.Millisecond)
	cancel()
	<-done
}
