package dispatch

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fidelize/notifyd/internal/channel"
	"github.com/fidelize/notifyd/internal/domain"
	"github.com/fidelize/notifyd/internal/preference"
	"github.com/fidelize/notifyd/internal/ratelimiter"
)

// Dispatcher resolves the channel set for a message and attempts delivery on
// each, in registry priority order. It holds no per-call state: concurrent
// dispatches of independent messages are safe without locking.
type Dispatcher struct {
	registry *channel.Registry
	prefs    preference.Checker
	limiter  *ratelimiter.ChannelLimiters // nil = no rate limiting
	events   Events
	logger   *zap.Logger
}

func New(
	registry *channel.Registry,
	prefs preference.Checker,
	limiter *ratelimiter.ChannelLimiters,
	events Events,
	logger *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		prefs:    prefs,
		limiter:  limiter,
		events:   events.normalized(),
		logger:   logger,
	}
}

// Dispatch attempts delivery on every resolved channel and aggregates the
// outcomes. Channel failures are always local: a crash or error in one
// channel never prevents the siblings from being attempted, and Dispatch
// itself never fails — the worst case is an all-failed or empty result.
func (d *Dispatcher) Dispatch(ctx context.Context, msg domain.Message) domain.DispatchResult {
	target := d.resolveChannels(ctx, msg)
	if len(target) == 0 {
		d.logger.Info("no channels available for message",
			zap.String("recipient_id", msg.RecipientID),
			zap.String("type", msg.Type))
		return domain.NoChannelsAvailable(msg)
	}

	known := d.registry.ByIDs(target)
	if len(known) < len(target) {
		for _, id := range target {
			if !d.registry.Has(id) {
				d.logger.Warn("resolved channel is not registered, skipping",
					zap.String("channel", id))
			}
		}
	}

	results := make(map[string]domain.DeliveryResult, len(known))
	for _, ch := range known {
		// Re-checked here: preferences and technical support can diverge
		// (e.g. push enabled but the last device was just unregistered).
		if !ch.Supports(ctx, msg) {
			continue
		}

		res := d.attempt(ctx, ch, msg)
		results[ch.ChannelID()] = res
		if !res.Success {
			d.events.OnDeliveryFailed(msg, ch.ChannelID(), res)
		}
	}

	result := domain.NewDispatchResult(msg, results)
	if result.HasAnySuccess() {
		d.events.OnDispatched(msg, result)
	}

	d.logger.Info("dispatch complete",
		zap.String("recipient_id", msg.RecipientID),
		zap.String("type", msg.Type),
		zap.Int("success", result.SuccessCount),
		zap.Int("failure", result.FailureCount))
	return result
}

// DispatchToChannel sends through a single named channel, bypassing
// preference filtering entirely (administrative resends, retries). Only
// registry presence and Supports are checked.
func (d *Dispatcher) DispatchToChannel(ctx context.Context, msg domain.Message, channelID string) domain.DeliveryResult {
	ch := d.registry.Get(channelID)
	if ch == nil {
		return domain.DeliveryFailed(channelID, domain.CodeChannelNotFound,
			fmt.Sprintf("channel %q is not registered", channelID))
	}
	if !ch.Supports(ctx, msg) {
		return domain.DeliveryFailed(channelID, domain.CodeUnsupported,
			fmt.Sprintf("channel %q does not support this message", channelID))
	}

	res := d.attempt(ctx, ch, msg)
	if !res.Success {
		d.events.OnDeliveryFailed(msg, channelID, res)
	}
	return res
}

// resolveChannels computes the target channel id set. Preference-layer
// errors degrade to best-effort defaults rather than dropping the message.
func (d *Dispatcher) resolveChannels(ctx context.Context, msg domain.Message) []string {
	if msg.Channels != nil {
		filtered, err := d.prefs.FilterByPreference(ctx, msg.RecipientID, msg.Type, msg.Channels)
		if err != nil {
			d.logger.Warn("preference filter failed, using explicit channel list",
				zap.String("recipient_id", msg.RecipientID), zap.Error(err))
			return msg.Channels
		}
		return filtered
	}

	enabled, err := d.prefs.EnabledChannels(ctx, msg.RecipientID, msg.Type)
	if err != nil {
		d.logger.Warn("preference lookup failed, using platform defaults",
			zap.String("recipient_id", msg.RecipientID), zap.Error(err))
		enabled = domain.DefaultEnabledChannels()
	}

	supporting := make(map[string]struct{})
	for _, ch := range d.registry.SupportingChannels(ctx, msg) {
		supporting[ch.ChannelID()] = struct{}{}
	}

	var target []string
	for _, id := range enabled {
		if _, ok := supporting[id]; ok {
			target = append(target, id)
		}
	}
	return target
}

// attempt runs one delivery inside the failure boundary. Well-behaved
// channels classify their own errors; a panicking channel is converted into
// a failed result so siblings still run.
func (d *Dispatcher) attempt(ctx context.Context, ch channel.NotificationChannel, msg domain.Message) (res domain.DeliveryResult) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("channel panicked during delivery",
				zap.String("channel", ch.ChannelID()),
				zap.Any("panic", r))
			res = domain.DeliveryFailed(ch.ChannelID(), domain.CodeException,
				fmt.Sprintf("channel panicked: %v", r))
		}
	}()

	if d.limiter != nil {
		if err := d.limiter.Wait(ctx, ch.ChannelID()); err != nil {
			// ctx cancelled while waiting for a token — classify as a
			// transient failure so a retry consumer can pick it up.
			return domain.DeliveryFailed(ch.ChannelID(), domain.CodeTimeout,
				"cancelled while waiting for rate limiter")
		}
	}

	return ch.Deliver(ctx, msg)
}
