package lifecycle

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/oybek/wellness/entity"
	"github.com/oybek/wellness/model"
)

// Service owns the draft/published lifecycle of sessions. Every mutating or
// owner-scoped call matches on both the session id and the caller's id, so a
// session belonging to someone else looks exactly like a missing one.
type Service struct {
	store Store
	now   func() time.Time
	newID func() string
	log   zerolog.Logger
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.log = l }
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store: store,
		now:   time.Now,
		newID: uuid.NewString,
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// timestamp is truncated to the millisecond precision document stores keep.
func (s *Service) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func (s *Service) ListPublished(ctx context.Context) ([]entity.Session, error) {
	sessions, err := s.store.Find(ctx,
		Filter{Status: entity.SessionStatusPublished},
		Sort{Field: SortByCreatedAt, Desc: true},
	)
	if err != nil {
		return nil, storageFailure("list published sessions", err)
	}
	return sessions, nil
}

func (s *Service) ListOwned(ctx context.Context, ownerID string) ([]entity.Session, error) {
	if ownerID == "" {
		return nil, unauthorized()
	}
	sessions, err := s.store.Find(ctx,
		Filter{OwnerID: ownerID},
		Sort{Field: SortByUpdatedAt, Desc: true},
	)
	if err != nil {
		return nil, storageFailure("list owned sessions", err)
	}
	return sessions, nil
}

func (s *Service) GetOwned(ctx context.Context, ownerID, sessionID string) (entity.Session, error) {
	if ownerID == "" {
		return entity.Session{}, unauthorized()
	}
	if sessionID == "" {
		return entity.Session{}, notFound()
	}
	sess, err := s.store.FindOne(ctx, Filter{ID: sessionID, OwnerID: ownerID})
	if errors.Is(err, ErrNoDocument) {
		return entity.Session{}, notFound()
	}
	if err != nil {
		return entity.Session{}, storageFailure("get session", err)
	}
	return sess, nil
}

// SaveDraft creates a draft or overwrites the content of an existing session.
// The status of an existing session is left as it is: a published session
// stays published.
func (s *Service) SaveDraft(ctx context.Context, ownerID string, in model.SessionInput) (entity.Session, error) {
	return s.save(ctx, ownerID, in, false)
}

// Publish creates or overwrites a session and marks it published.
func (s *Service) Publish(ctx context.Context, ownerID string, in model.SessionInput) (entity.Session, error) {
	return s.save(ctx, ownerID, in, true)
}

func (s *Service) save(ctx context.Context, ownerID string, in model.SessionInput, publish bool) (entity.Session, error) {
	if ownerID == "" {
		return entity.Session{}, unauthorized()
	}
	in = in.Normalized()
	if err := in.Validate(); err != nil {
		return entity.Session{}, invalidInput(err)
	}

	status := entity.SessionStatusDraft
	if publish {
		status = entity.SessionStatusPublished
	}
	now := s.timestamp()

	if in.SessionID == "" {
		sess := entity.Session{
			ID:         s.newID(),
			OwnerID:    ownerID,
			Title:      in.Title,
			Tags:       []string(in.Tags),
			ContentURL: in.ContentURL,
			Status:     status,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := s.store.Create(ctx, sess); err != nil {
			return entity.Session{}, storageFailure("create session", err)
		}
		s.log.Info().
			Str("session_id", sess.ID).
			Str("owner_id", ownerID).
			Str("status", string(status)).
			Msg("session created")
		return sess, nil
	}

	patch := Patch{
		Title:      in.Title,
		Tags:       []string(in.Tags),
		ContentURL: in.ContentURL,
		UpdatedAt:  now,
	}
	if publish {
		patch.Status = &status
	}
	sess, err := s.store.UpdateOne(ctx, Filter{ID: in.SessionID, OwnerID: ownerID}, patch)
	if errors.Is(err, ErrNoDocument) {
		return entity.Session{}, notFound()
	}
	if err != nil {
		return entity.Session{}, storageFailure("update session", err)
	}
	s.log.Debug().
		Str("session_id", sess.ID).
		Str("owner_id", ownerID).
		Str("status", string(sess.Status)).
		Msg("session updated")
	return sess, nil
}

func (s *Service) DeleteOwned(ctx context.Context, ownerID, sessionID string) error {
	if ownerID == "" {
		return unauthorized()
	}
	if sessionID == "" {
		return notFound()
	}
	err := s.store.DeleteOne(ctx, Filter{ID: sessionID, OwnerID: ownerID})
	if errors.Is(err, ErrNoDocument) {
		return notFound()
	}
	if err != nil {
		return storageFailure("delete session", err)
	}
	s.log.Info().Str("session_id", sessionID).Str("owner_id", ownerID).Msg("session deleted")
	return nil
}
