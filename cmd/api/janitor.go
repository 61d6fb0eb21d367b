package main

import (
	"context"
	"time"

	"flygen/internal/infra"
	"flygen/internal/middleware"
	"flygen/internal/wizard"
)

// startJanitor drops idle wizard sessions and rate limiter buckets every
// interval until ctx is done.
func startJanitor(ctx context.Context, interval time.Duration, sessions *wizard.Sessions, limiter *middleware.RateLimiter, logger infra.Logger) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := sessions.Sweep(); n > 0 {
					logger.Info().Int("removed", n).Msg("expired wizard sessions")
				}
				limiter.Prune()
			}
		}
	}()
}
