package ratelimiter

import (
	"context"

	"golang.org/x/time/rate"
)

// ChannelLimiters holds one token bucket limiter per channel id.
// Each limiter enforces a steady-state rate (e.g. 100 tokens/sec).
// Burst is set equal to the rate so no extra burst capacity is allowed
// beyond the configured per-second maximum.
type ChannelLimiters struct {
	limiters map[string]*rate.Limiter
}

// New creates a ChannelLimiters with ratePerSec tokens per second for each
// of the given channel ids. Channels not listed are not limited.
func New(ratePerSec int, channelIDs ...string) *ChannelLimiters {
	r := rate.Limit(ratePerSec)
	burst := ratePerSec // burst == rate: prevents any "saved up" burst above the limit

	limiters := make(map[string]*rate.Limiter, len(channelIDs))
	for _, id := range channelIDs {
		limiters[id] = rate.NewLimiter(r, burst)
	}
	return &ChannelLimiters{limiters: limiters}
}

// Wait blocks until the channel's limiter grants a token.
// Called by the dispatcher immediately before a delivery attempt.
// Returns a non-nil error only if ctx is cancelled while waiting.
func (cl *ChannelLimiters) Wait(ctx context.Context, channelID string) error {
	lim, ok := cl.limiters[channelID]
	if !ok {
		return nil
	}
	return lim.Wait(ctx)
}
