package lifecycle

import (
	"context"

	"github.com/oybek/wellness/entity"
	"github.com/oybek/wellness/model"
)

// OwnerSessions binds a Service to a single caller identity.
type OwnerSessions struct {
	svc     *Service
	ownerID string
}

func ForOwner(svc *Service, ownerID string) OwnerSessions {
	return OwnerSessions{svc: svc, ownerID: ownerID}
}

func (o OwnerSessions) SaveDraft(ctx context.Context, in model.SessionInput) (entity.Session, error) {
	return o.svc.SaveDraft(ctx, o.ownerID, in)
}

func (o OwnerSessions) Publish(ctx context.Context, in model.SessionInput) (entity.Session, error) {
	return o.svc.Publish(ctx, o.ownerID, in)
}
