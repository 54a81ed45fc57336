package repository

import (
	"context"
	"sync"
	"time"

	"github.com/fidelize/notifyd/internal/domain"
)

// Hand-written, in-memory implementations of the repository interfaces used
// in unit tests. No mock-generation library needed.

// MockNotificationRepository stores notifications and deliveries in memory.
type MockNotificationRepository struct {
	mu            sync.RWMutex
	notifications map[string]*domain.Notification
	deliveries    map[string]*domain.Delivery

	// Optional error overrides — set in tests to simulate failure paths.
	CreateErr error
}

func NewMockNotificationRepository() *MockNotificationRepository {
	return &MockNotificationRepository{
		notifications: make(map[string]*domain.Notification),
		deliveries:    make(map[string]*domain.Delivery),
	}
}

func (m *MockNotificationRepository) CreateWithDelivery(_ context.Context, n *domain.Notification, d *domain.Delivery) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	nClone := *n
	dClone := *d
	m.notifications[n.ID] = &nClone
	m.deliveries[d.ID] = &dClone
	return nil
}

func (m *MockNotificationRepository) GetByID(_ context.Context, id string) (*domain.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.notifications[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *n
	return &clone, nil
}

func (m *MockNotificationRepository) Feed(_ context.Context, userID string, f domain.FeedFilter) ([]*domain.Notification, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var all []*domain.Notification
	for _, n := range m.notifications {
		if n.UserID != userID {
			continue
		}
		if f.UnreadOnly && n.Read {
			continue
		}
		clone := *n
		all = append(all, &clone)
	}
	return all, len(all), nil
}

func (m *MockNotificationRepository) MarkRead(_ context.Context, id string, readAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notifications[id]
	if !ok {
		return domain.ErrNotFound
	}
	n.Read = true
	n.ReadAt = &readAt
	return nil
}

func (m *MockNotificationRepository) CountUnread(_ context.Context, userID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, n := range m.notifications {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

// DeliveryByNotificationID is a test helper for asserting the delivery row.
func (m *MockNotificationRepository) DeliveryByNotificationID(notificationID string) *domain.Delivery {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, d := range m.deliveries {
		if d.NotificationID == notificationID {
			clone := *d
			return &clone
		}
	}
	return nil
}

// MockDeviceRepository stores devices in memory.
type MockDeviceRepository struct {
	mu      sync.RWMutex
	devices map[string]*domain.Device

	FindErr       error
	ClearTokenErr error
}

func NewMockDeviceRepository(devices ...*domain.Device) *MockDeviceRepository {
	m := &MockDeviceRepository{devices: make(map[string]*domain.Device)}
	for _, d := range devices {
		clone := *d
		m.devices[d.ID] = &clone
	}
	return m
}

func (m *MockDeviceRepository) FindActiveByUserID(_ context.Context, userID string) ([]*domain.Device, error) {
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var active []*domain.Device
	for _, d := range m.devices {
		if d.UserID == userID && d.Enabled && d.HasToken() {
			clone := *d
			active = append(active, &clone)
		}
	}
	return active, nil
}

func (m *MockDeviceRepository) ClearToken(_ context.Context, deviceID string) error {
	if m.ClearTokenErr != nil {
		return m.ClearTokenErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if d, ok := m.devices[deviceID]; ok {
		d.PushToken = nil
	}
	return nil
}

// TokenOf is a test helper returning the stored token for a device.
func (m *MockDeviceRepository) TokenOf(deviceID string) *string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if d, ok := m.devices[deviceID]; ok {
		return d.PushToken
	}
	return nil
}

// MockPreferenceRepository serves a fixed preference set.
type MockPreferenceRepository struct {
	mu    sync.RWMutex
	prefs map[string]*domain.Preference

	FindErr error
}

func NewMockPreferenceRepository(prefs ...*domain.Preference) *MockPreferenceRepository {
	m := &MockPreferenceRepository{prefs: make(map[string]*domain.Preference)}
	for _, p := range prefs {
		clone := *p
		m.prefs[p.UserID] = &clone
	}
	return m
}

func (m *MockPreferenceRepository) FindByUserID(_ context.Context, userID string) (*domain.Preference, error) {
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.prefs[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *p
	return &clone, nil
}

// MockUserRepository serves a fixed user set.
type MockUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User

	FindErr error
}

func NewMockUserRepository(users ...*domain.User) *MockUserRepository {
	m := &MockUserRepository{users: make(map[string]*domain.User)}
	for _, u := range users {
		clone := *u
		m.users[u.ID] = &clone
	}
	return m
}

func (m *MockUserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

var (
	_ NotificationRepository = (*MockNotificationRepository)(nil)
	_ DeviceRepository       = (*MockDeviceRepository)(nil)
	_ PreferenceRepository   = (*MockPreferenceRepository)(nil)
	_ UserRepository         = (*MockUserRepository)(nil)
)
