package request

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, r *BloodRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*BloodRequest, error)
	// GetByIDForUpdate locks the request row for the duration of the
	// surrounding transaction.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*BloodRequest, error)
	Update(ctx context.Context, r *BloodRequest) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*BloodRequest, int, error)
}

type TransfusionRepository interface {
	Create(ctx context.Context, t *Transfusion) error
	ListByRequest(ctx context.Context, requestID uuid.UUID) ([]*Transfusion, error)
	CountByRequest(ctx context.Context, requestID uuid.UUID) (int, error)
}
