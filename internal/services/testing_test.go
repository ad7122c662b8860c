package services

import (
	"context"

	"taskmaster/internal/cache"
	"taskmaster/internal/events"
	"taskmaster/internal/models"

	"go.uber.org/zap"
)

// ===============================
// SHARED TEST FIXTURES
// ===============================

func newTestCache() cache.Cache {
	return cache.NewMemoryCache(cache.DefaultConfig(), zap.NewNop())
}

// stubEventBus records published events; handlers never run.
type stubEventBus struct {
	published []events.Event
}

func (b *stubEventBus) Publish(ctx context.Context, event events.Event) error {
	b.published = append(b.published, event)
	return nil
}

func (b *stubEventBus) PublishAsync(ctx context.Context, event events.Event) error {
	b.published = append(b.published, event)
	return nil
}

func (b *stubEventBus) Subscribe(eventType string, handler events.EventHandler) error { return nil }
func (b *stubEventBus) SubscribePattern(pattern string, handler events.EventHandler) error {
	return nil
}
func (b *stubEventBus) Start(ctx context.Context) error { return nil }
func (b *stubEventBus) Stop(ctx context.Context) error  { return nil }
func (b *stubEventBus) Health() error                   { return nil }
func (b *stubEventBus) Stats() *events.EventBusStats    { return &events.EventBusStats{} }

func (b *stubEventBus) types() []string {
	var out []string
	for _, e := range b.published {
		out = append(out, e.GetEventType())
	}
	return out
}

// mockUserRepo serves a fixed set of users keyed by id.
type mockUserRepo struct {
	users     map[int64]*models.User
	ranked    []*models.RankedUser
	updated   []*models.User
	deleted   []int64
	createErr error
}

func newMockUserRepo(users ...*models.User) *mockUserRepo {
	m := &mockUserRepo{users: make(map[int64]*models.User)}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	user.ID = int64(len(m.users) + 1)
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return m.users[id], nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) GetByAPIKey(ctx context.Context, apiKey string) (*models.User, error) {
	for _, u := range m.users {
		if u.APIKey != nil && *u.APIKey == apiKey {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) List(ctx context.Context, params models.PaginationParams) ([]*models.User, int64, error) {
	var out []*models.User
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, int64(len(out)), nil
}

func (m *mockUserRepo) Update(ctx context.Context, user *models.User) error {
	m.users[user.ID] = user
	m.updated = append(m.updated, user)
	return nil
}

func (m *mockUserRepo) Delete(ctx context.Context, id int64) error {
	delete(m.users, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockUserRepo) SetAPIKey(ctx context.Context, id int64, apiKey *string) error {
	if u, ok := m.users[id]; ok {
		u.APIKey = apiKey
	}
	return nil
}

func (m *mockUserRepo) UpsertByEmail(ctx context.Context, email, name string) (*models.User, error) {
	if u, _ := m.GetByEmail(ctx, email); u != nil {
		u.Name = name
		return u, nil
	}
	u := &models.User{Name: name, Email: email}
	_ = m.Create(ctx, u)
	return u, nil
}

func (m *mockUserRepo) ListRanked(ctx context.Context) ([]*models.RankedUser, error) {
	return m.ranked, nil
}
