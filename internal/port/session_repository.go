package port

import (
	"context"
	"time"

	"github.com/rl1809/counter-pos/internal/core/domain"
)

type SessionRepository interface {
	// SaveSession stores the open bill, replacing any previous copy
	SaveSession(ctx context.Context, session *domain.BillSession) error

	// LoadSession returns the bill or domain.ErrSessionNotFound
	LoadSession(ctx context.Context, id string) (*domain.BillSession, error)

	// DeleteSession forgets the bill; deleting a missing bill is not an error
	DeleteSession(ctx context.Context, id string) error

	// IdleSessions lists the bills whose last save is older than savedBefore
	IdleSessions(ctx context.Context, savedBefore time.Time) ([]string, error)
}

type IdempotencyRepository interface {
	// SetIdempotency sets a key for idempotency check, returns false if already exists
	SetIdempotency(ctx context.Context, key string) (bool, error)
}
