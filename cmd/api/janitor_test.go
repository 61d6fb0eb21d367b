package main

import (
	"context"
	"testing"
	"time"

	"flygen/internal/domain"
	"flygen/internal/infra"
	"flygen/internal/middleware"
	"flygen/internal/wizard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJanitorSweepsExpiredSessions(t *testing.T) {
	sessions := wizard.NewSessions(domain.DefaultCatalog(), time.Millisecond, 5)
	_, err := sessions.Create("alice")
	require.NoError(t, err)
	require.Equal(t, 1, sessions.Len())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	startJanitor(ctx, 5*time.Millisecond, sessions, middleware.NewRateLimiter(60, time.Millisecond), infra.NopLogger())

	assert.Eventually(t, func() bool { return sessions.Len() == 0 }, time.Second, 5*time.Millisecond)
}
