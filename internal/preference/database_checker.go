package preference

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fidelize/notifyd/internal/domain"
	"github.com/fidelize/notifyd/internal/repository"
)

// canonicalOrder fixes the order of returned channel sets so callers see
// deterministic results.
var canonicalOrder = []string{
	domain.ChannelInApp,
	domain.ChannelPush,
	domain.ChannelEmail,
	domain.ChannelSMS,
}

// DatabaseChecker resolves preferences from the preference repository.
type DatabaseChecker struct {
	prefs  repository.PreferenceRepository
	now    func() time.Time
	logger *zap.Logger
}

func NewDatabaseChecker(prefs repository.PreferenceRepository, logger *zap.Logger) *DatabaseChecker {
	return NewDatabaseCheckerWithClock(prefs, logger, time.Now)
}

// NewDatabaseCheckerWithClock injects the clock, letting tests pin the
// current time for quiet-hours checks.
func NewDatabaseCheckerWithClock(prefs repository.PreferenceRepository, logger *zap.Logger, now func() time.Time) *DatabaseChecker {
	return &DatabaseChecker{prefs: prefs, now: now, logger: logger}
}

func (c *DatabaseChecker) EnabledChannels(ctx context.Context, userID, notifType string) ([]string, error) {
	pref, err := c.prefs.FindByUserID(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.DefaultEnabledChannels(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load preference: %w", err)
	}

	enabled := map[string]bool{domain.ChannelInApp: true}

	if override, ok := pref.TypeOverrides[notifType]; ok {
		for _, id := range override {
			enabled[id] = true
		}
	} else {
		for id, on := range pref.Channels {
			if on {
				enabled[id] = true
			}
		}
	}

	var out []string
	for _, id := range canonicalOrder {
		if enabled[id] {
			out = append(out, id)
		}
	}
	return out, nil
}

func (c *DatabaseChecker) IsChannelEnabled(ctx context.Context, userID, channelID string) (bool, error) {
	// The in-app feed is the record of truth and can never be opted out of.
	if channelID == domain.ChannelInApp {
		return true, nil
	}

	pref, err := c.prefs.FindByUserID(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		for _, id := range domain.DefaultEnabledChannels() {
			if id == channelID {
				return true, nil
			}
		}
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load preference: %w", err)
	}
	return pref.Channels[channelID], nil
}

func (c *DatabaseChecker) InQuietHours(ctx context.Context, userID string) (bool, error) {
	pref, err := c.prefs.FindByUserID(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load preference: %w", err)
	}
	if pref.QuietHoursStart == nil || pref.QuietHoursEnd == nil {
		return false, nil
	}

	start, err := parseWallClock(*pref.QuietHoursStart)
	if err != nil {
		c.logger.Warn("invalid quiet_hours_start, ignoring window",
			zap.String("user_id", userID), zap.Error(err))
		return false, nil
	}
	end, err := parseWallClock(*pref.QuietHoursEnd)
	if err != nil {
		c.logger.Warn("invalid quiet_hours_end, ignoring window",
			zap.String("user_id", userID), zap.Error(err))
		return false, nil
	}
	if start == end {
		return false, nil // zero-length window
	}

	nowT := c.now()
	nowMin := nowT.Hour()*60 + nowT.Minute()

	if start < end {
		return nowMin >= start && nowMin <= end, nil
	}
	// Window spans midnight: "22:00"–"07:00" means late evening OR early morning.
	return nowMin >= start || nowMin <= end, nil
}

func (c *DatabaseChecker) FilterByPreference(ctx context.Context, userID, notifType string, candidates []string) ([]string, error) {
	// Urgent types must reach the user whatever the hour or opt-outs say.
	if domain.IsUrgentType(notifType) {
		return append([]string(nil), candidates...), nil
	}

	quiet, err := c.InQuietHours(ctx, userID)
	if err != nil {
		return nil, err
	}
	if quiet {
		for _, id := range candidates {
			if id == domain.ChannelInApp {
				return []string{domain.ChannelInApp}, nil
			}
		}
		return nil, nil
	}

	var allowed []string
	for _, id := range candidates {
		ok, err := c.IsChannelEnabled(ctx, userID, id)
		if err != nil {
			return nil, err
		}
		if ok {
			allowed = append(allowed, id)
		}
	}
	return allowed, nil
}

// parseWallClock converts "HH:MM" to minutes since midnight.
func parseWallClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

var _ Checker = (*DatabaseChecker)(nil)
