package channel

import (
	"context"
	"fmt"
	"sort"

	"github.com/fidelize/notifyd/internal/domain"
)

// Registry holds all wired channels ordered by ascending priority.
// It is built once at startup and read-only afterwards.
type Registry struct {
	byID    map[string]NotificationChannel
	ordered []NotificationChannel
}

// NewRegistry builds a registry from the given channels. Duplicate channel
// IDs are a wiring mistake and fail fast rather than silently replacing.
func NewRegistry(channels ...NotificationChannel) (*Registry, error) {
	r := &Registry{byID: make(map[string]NotificationChannel, len(channels))}

	for _, ch := range channels {
		id := ch.ChannelID()
		if _, exists := r.byID[id]; exists {
			return nil, fmt.Errorf("duplicate channel id %q", id)
		}
		r.byID[id] = ch
		r.ordered = append(r.ordered, ch)
	}

	// Stable sort keeps registration order for equal priorities.
	sort.SliceStable(r.ordered, func(i, j int) bool {
		return r.ordered[i].Priority() < r.ordered[j].Priority()
	})

	return r, nil
}

// Get returns the channel with the given id, or nil when unknown.
func (r *Registry) Get(id string) NotificationChannel {
	return r.byID[id]
}

func (r *Registry) Has(id string) bool {
	_, ok := r.byID[id]
	return ok
}

// All returns every channel in ascending priority order.
func (r *Registry) All() []NotificationChannel {
	return r.ordered
}

// SupportingChannels filters All() by Supports(msg).
func (r *Registry) SupportingChannels(ctx context.Context, msg domain.Message) []NotificationChannel {
	var supporting []NotificationChannel
	for _, ch := range r.ordered {
		if ch.Supports(ctx, msg) {
			supporting = append(supporting, ch)
		}
	}
	return supporting
}

// ByIDs returns the known channels among ids, in registry priority order.
// Unknown ids are skipped.
func (r *Registry) ByIDs(ids []string) []NotificationChannel {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	var channels []NotificationChannel
	for _, ch := range r.ordered {
		if _, ok := want[ch.ChannelID()]; ok {
			channels = append(channels, ch)
		}
	}
	return channels
}

// AvailableChannelIDs returns all registered ids in priority order.
func (r *Registry) AvailableChannelIDs() []string {
	ids := make([]string, len(r.ordered))
	for i, ch := range r.ordered {
		ids[i] = ch.ChannelID()
	}
	return ids
}
