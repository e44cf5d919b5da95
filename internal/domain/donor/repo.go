package donor

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, d *Donor) error
	GetByID(ctx context.Context, id uuid.UUID) (*Donor, error)
	Update(ctx context.Context, d *Donor) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Donor, int, error)
	// EligibleSince returns the donor's earliest next donation date, nil when
	// the donor has never completed a donation.
	EligibleSince(ctx context.Context, id uuid.UUID) (*time.Time, error)
	SetEligibleSince(ctx context.Context, id uuid.UUID, since time.Time) error
}
