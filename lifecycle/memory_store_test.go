package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oybek/wellness/entity"
)

func seededStore(t *testing.T) *MemoryStore {
	t.Helper()
	m := NewMemoryStore()
	at := time.Date(2026, 1, 2, 8, 0, 0, 0, time.UTC)
	for _, s := range []entity.Session{
		{ID: "s1", OwnerID: "U1", Title: "Morning Flow", ContentURL: "u1", Status: entity.SessionStatusDraft, CreatedAt: at, UpdatedAt: at},
		{ID: "s2", OwnerID: "U2", Title: "Evening Flow", ContentURL: "u2", Status: entity.SessionStatusPublished, CreatedAt: at, UpdatedAt: at},
	} {
		require.NoError(t, m.Create(context.Background(), s))
	}
	return m
}

func TestMemoryStore_UpdateOneByID(t *testing.T) {
	ctx := context.Background()
	m := seededStore(t)
	patch := Patch{Title: "Changed", Tags: []string{"calm"}, ContentURL: "u9", UpdatedAt: time.Now()}

	_, err := m.UpdateOne(ctx, Filter{ID: "s1", OwnerID: "U2"}, patch)
	require.ErrorIs(t, err, ErrNoDocument)
	_, err = m.UpdateOne(ctx, Filter{ID: "missing", OwnerID: "U1"}, patch)
	require.ErrorIs(t, err, ErrNoDocument)

	untouched, err := m.FindOne(ctx, Filter{ID: "s1"})
	require.NoError(t, err)
	assert.Equal(t, "Morning Flow", untouched.Title)

	updated, err := m.UpdateOne(ctx, Filter{ID: "s1", OwnerID: "U1"}, patch)
	require.NoError(t, err)
	assert.Equal(t, "Changed", updated.Title)
	assert.Equal(t, entity.SessionStatusDraft, updated.Status)

	other, err := m.FindOne(ctx, Filter{ID: "s2"})
	require.NoError(t, err)
	assert.Equal(t, "Evening Flow", other.Title)
}

func TestMemoryStore_DeleteOneByID(t *testing.T) {
	ctx := context.Background()
	m := seededStore(t)

	require.ErrorIs(t, m.DeleteOne(ctx, Filter{ID: "s2", OwnerID: "U1"}), ErrNoDocument)
	assert.Equal(t, 2, m.Len())

	require.NoError(t, m.DeleteOne(ctx, Filter{ID: "s2", OwnerID: "U2"}))
	assert.Equal(t, 1, m.Len())
	_, err := m.FindOne(ctx, Filter{ID: "s2"})
	require.ErrorIs(t, err, ErrNoDocument)

	require.NoError(t, m.DeleteOne(ctx, Filter{OwnerID: "U1"}), "filter without an id still matches")
	assert.Equal(t, 0, m.Len())
}
