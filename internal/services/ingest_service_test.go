package services

import (
	"context"
	"testing"

	"taskmaster/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockTagRepo deduplicates by tag id like the unique index does.
type mockTagRepo struct {
	seen map[string]*models.NFCTag
}

func newMockTagRepo() *mockTagRepo {
	return &mockTagRepo{seen: make(map[string]*models.NFCTag)}
}

func (m *mockTagRepo) Insert(ctx context.Context, tag *models.NFCTag) (bool, error) {
	if _, ok := m.seen[tag.TagID]; ok {
		return false, nil
	}
	tag.ID = int64(len(m.seen) + 1)
	m.seen[tag.TagID] = tag
	return true, nil
}

func (m *mockTagRepo) GetByTagID(ctx context.Context, tagID string) (*models.NFCTag, error) {
	return m.seen[tagID], nil
}

func (m *mockTagRepo) List(ctx context.Context) ([]*models.NFCTag, error) {
	var out []*models.NFCTag
	for _, tag := range m.seen {
		out = append(out, tag)
	}
	return out, nil
}

func TestStoreTagDeduplicates(t *testing.T) {
	bus := &stubEventBus{}
	svc := NewIngestService(newMockTagRepo(), bus, zap.NewNop())

	msg := &TagMessage{TagID: "04:a3:1f", UserName: "Ada", UserEmail: "ada@example.com"}

	_, inserted, err := svc.StoreTag(context.Background(), msg)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.Equal(t, []string{"tag.arrived"}, bus.types())

	// Replay of the same tag id is dropped without a second event.
	_, inserted, err = svc.StoreTag(context.Background(), msg)
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.Len(t, bus.published, 1)
}

func TestStoreTagRejectsInvalidMessage(t *testing.T) {
	svc := NewIngestService(newMockTagRepo(), &stubEventBus{}, zap.NewNop())

	_, _, err := svc.StoreTag(context.Background(), &TagMessage{TagID: "", UserName: "Ada", UserEmail: "not-an-email"})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}
