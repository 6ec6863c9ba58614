package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oybek/wellness/entity"
	"github.com/oybek/wellness/model"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestService(t *testing.T) (*Service, *MemoryStore, *fakeClock) {
	t.Helper()
	store := NewMemoryStore()
	clock := &fakeClock{t: time.Date(2026, 1, 2, 8, 0, 0, 0, time.UTC)}
	var seq atomic.Int64
	svc := NewService(store,
		WithClock(clock.Now),
		WithIDGenerator(func() string { return fmt.Sprintf("s%d", seq.Add(1)) }),
	)
	return svc, store, clock
}

func morningFlow() model.SessionInput {
	return model.SessionInput{
		Title:      "Morning Flow",
		Tags:       model.ParseTags("yoga, calm"),
		ContentURL: "https://x/y.json",
	}
}

func TestSaveDraft_CreatesDraftOwnedByCaller(t *testing.T) {
	svc, store, clock := newTestService(t)
	ctx := context.Background()

	sess, err := svc.SaveDraft(ctx, "U1", morningFlow())
	require.NoError(t, err)

	assert.Equal(t, 1, store.Len())
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, "U1", sess.OwnerID)
	assert.Equal(t, entity.SessionStatusDraft, sess.Status)
	assert.Equal(t, []string{"yoga", "calm"}, sess.Tags)
	assert.Equal(t, clock.Now(), sess.CreatedAt)
	assert.Equal(t, sess.CreatedAt, sess.UpdatedAt)
}

func TestSaveDraft_RejectsMissingFields(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	cases := map[string]model.SessionInput{
		"no title":       {ContentURL: "https://x/y.json"},
		"blank title":    {Title: "   ", ContentURL: "https://x/y.json"},
		"no content url": {Title: "Morning Flow"},
		"long title":     {Title: strings.Repeat("a", model.MaxTitleLength+1), ContentURL: "https://x/y.json"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.SaveDraft(ctx, "U1", in)
			require.ErrorIs(t, err, ErrInvalidInput)
			_, err = svc.Publish(ctx, "U1", in)
			require.ErrorIs(t, err, ErrInvalidInput)
		})
	}
	assert.Equal(t, 0, store.Len())
}

func TestSaveDraft_RequiresIdentity(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.SaveDraft(context.Background(), "", morningFlow())
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestSaveDraft_UpdatesExisting(t *testing.T) {
	svc, store, clock := newTestService(t)
	ctx := context.Background()

	created, err := svc.SaveDraft(ctx, "U1", morningFlow())
	require.NoError(t, err)

	clock.Advance(time.Minute)
	in := morningFlow()
	in.SessionID = created.ID
	in.Title = "Evening Flow"
	in.Tags = model.Tags{" rest ", "", "sleep"}
	updated, err := svc.SaveDraft(ctx, "U1", in)
	require.NoError(t, err)

	assert.Equal(t, 1, store.Len())
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Evening Flow", updated.Title)
	assert.Equal(t, []string{"rest", "sleep"}, updated.Tags)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.Equal(t, clock.Now(), updated.UpdatedAt)
	assert.Equal(t, entity.SessionStatusDraft, updated.Status)
}

func TestPublish_RoundTrip(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	published, err := svc.Publish(ctx, "U1", morningFlow())
	require.NoError(t, err)
	require.Equal(t, entity.SessionStatusPublished, published.Status)

	got, err := svc.GetOwned(ctx, "U1", published.ID)
	require.NoError(t, err)
	assert.Equal(t, published, got)
	assert.Equal(t, "Morning Flow", got.Title)
	assert.Equal(t, "https://x/y.json", got.ContentURL)
}

func TestSaveDraft_DoesNotDemotePublished(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	published, err := svc.Publish(ctx, "U1", morningFlow())
	require.NoError(t, err)

	in := morningFlow()
	in.SessionID = published.ID
	in.Title = "Morning Flow v2"
	saved, err := svc.SaveDraft(ctx, "U1", in)
	require.NoError(t, err)

	assert.Equal(t, entity.SessionStatusPublished, saved.Status)
	assert.Equal(t, "Morning Flow v2", saved.Title)

	listed, err := svc.ListPublished(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, published.ID, listed[0].ID)
}

func TestForeignSessionLooksMissing(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	sess, err := svc.SaveDraft(ctx, "U1", morningFlow())
	require.NoError(t, err)

	_, err = svc.GetOwned(ctx, "U2", sess.ID)
	require.ErrorIs(t, err, ErrNotFound)
	_, missingErr := svc.GetOwned(ctx, "U2", "does-not-exist")
	require.ErrorIs(t, missingErr, ErrNotFound)
	assert.Equal(t, missingErr.Error(), err.Error())

	require.ErrorIs(t, svc.DeleteOwned(ctx, "U2", sess.ID), ErrNotFound)

	in := morningFlow()
	in.SessionID = sess.ID
	_, err = svc.SaveDraft(ctx, "U2", in)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Publish(ctx, "U2", in)
	require.ErrorIs(t, err, ErrNotFound)

	got, err := svc.GetOwned(ctx, "U1", sess.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SessionStatusDraft, got.Status)
	assert.Equal(t, 1, store.Len())
}

func TestDeleteOwned(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	sess, err := svc.Publish(ctx, "U1", morningFlow())
	require.NoError(t, err)

	require.NoError(t, svc.DeleteOwned(ctx, "U1", sess.ID))
	assert.Equal(t, 0, store.Len())

	first := svc.DeleteOwned(ctx, "U1", sess.ID)
	second := svc.DeleteOwned(ctx, "U1", sess.ID)
	require.ErrorIs(t, first, ErrNotFound)
	require.ErrorIs(t, second, ErrNotFound)
	assert.Equal(t, first.Error(), second.Error())
}

func TestListings(t *testing.T) {
	svc, _, clock := newTestService(t)
	ctx := context.Background()

	a, err := svc.Publish(ctx, "U1", morningFlow())
	require.NoError(t, err)
	clock.Advance(time.Second)
	b, err := svc.SaveDraft(ctx, "U1", morningFlow())
	require.NoError(t, err)
	clock.Advance(time.Second)
	c, err := svc.Publish(ctx, "U2", morningFlow())
	require.NoError(t, err)
	clock.Advance(time.Second)

	// Touch a so it becomes the most recently updated of U1's sessions.
	in := morningFlow()
	in.SessionID = a.ID
	_, err = svc.Publish(ctx, "U1", in)
	require.NoError(t, err)

	published, err := svc.ListPublished(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{c.ID, a.ID}, ids(published))

	owned, err := svc.ListOwned(ctx, "U1")
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID, b.ID}, ids(owned))

	other, err := svc.ListOwned(ctx, "U2")
	require.NoError(t, err)
	assert.Equal(t, []string{c.ID}, ids(other))

	_, err = svc.ListOwned(ctx, "")
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestExampleScenario(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	draft, err := svc.SaveDraft(ctx, "U1", model.SessionInput{
		Title:      "Morning Flow",
		Tags:       model.ParseTags("yoga, calm"),
		ContentURL: "https://x/y.json",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.SessionStatusDraft, draft.Status)
	assert.Equal(t, []string{"yoga", "calm"}, draft.Tags)
	assert.Equal(t, "U1", draft.OwnerID)

	in := morningFlow()
	in.SessionID = draft.ID
	published, err := svc.Publish(ctx, "U1", in)
	require.NoError(t, err)
	assert.Equal(t, draft.ID, published.ID)
	assert.Equal(t, entity.SessionStatusPublished, published.Status)

	public, err := svc.ListPublished(ctx)
	require.NoError(t, err)
	assert.Contains(t, ids(public), draft.ID)

	foreign, err := svc.ListOwned(ctx, "U2")
	require.NoError(t, err)
	assert.NotContains(t, ids(foreign), draft.ID)
}

type failingStore struct {
	*MemoryStore
	err error
}

func (f *failingStore) Find(context.Context, Filter, Sort) ([]entity.Session, error) {
	return nil, f.err
}

func (f *failingStore) Create(context.Context, entity.Session) error { return f.err }

func TestStorageFailuresAreWrapped(t *testing.T) {
	cause := errors.New("connection refused")
	svc := NewService(&failingStore{MemoryStore: NewMemoryStore(), err: cause})
	ctx := context.Background()

	_, err := svc.ListPublished(ctx)
	require.ErrorIs(t, err, ErrStorage)
	require.ErrorIs(t, err, cause)
	assert.Equal(t, "fallback", Message(err, "fallback"))

	_, err = svc.SaveDraft(ctx, "U1", morningFlow())
	require.ErrorIs(t, err, ErrStorage)
}

func TestForOwner(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	owner := ForOwner(svc, "U1")

	draft, err := owner.SaveDraft(ctx, morningFlow())
	require.NoError(t, err)
	assert.Equal(t, "U1", draft.OwnerID)

	in := morningFlow()
	in.SessionID = draft.ID
	published, err := owner.Publish(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, entity.SessionStatusPublished, published.Status)
}

func ids(sessions []entity.Session) []string {
	out := make([]string, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, s.ID)
	}
	return out
}
