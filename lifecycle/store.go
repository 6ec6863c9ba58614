package lifecycle

import (
	"context"
	"errors"
	"time"

	"github.com/oybek/wellness/entity"
)

// ErrNoDocument is returned by a Store when no document matches a filter.
var ErrNoDocument = errors.New("no document matches filter")

// Filter selects sessions. Zero-valued fields do not constrain the match.
type Filter struct {
	ID      string
	OwnerID string
	Status  entity.SessionStatus
}

func (f Filter) Matches(s entity.Session) bool {
	if f.ID != "" && s.ID != f.ID {
		return false
	}
	if f.OwnerID != "" && s.OwnerID != f.OwnerID {
		return false
	}
	if f.Status != "" && s.Status != f.Status {
		return false
	}
	return true
}

type SortField string

const (
	SortByCreatedAt SortField = "created_at"
	SortByUpdatedAt SortField = "updated_at"
)

type Sort struct {
	Field SortField
	Desc  bool
}

// Patch is the set of fields an update overwrites. A nil Status leaves the
// stored status untouched.
type Patch struct {
	Title      string
	Tags       []string
	ContentURL string
	Status     *entity.SessionStatus
	UpdatedAt  time.Time
}

func (p Patch) Apply(s entity.Session) entity.Session {
	s.Title = p.Title
	s.Tags = append([]string{}, p.Tags...)
	s.ContentURL = p.ContentURL
	if p.Status != nil {
		s.Status = *p.Status
	}
	s.UpdatedAt = p.UpdatedAt
	return s
}

// Store is the document store behind the service. UpdateOne applies the patch
// atomically and returns the updated document.
type Store interface {
	Create(ctx context.Context, s entity.Session) error
	Find(ctx context.Context, f Filter, sort Sort) ([]entity.Session, error)
	FindOne(ctx context.Context, f Filter) (entity.Session, error)
	UpdateOne(ctx context.Context, f Filter, p Patch) (entity.Session, error)
	DeleteOne(ctx context.Context, f Filter) error
}
