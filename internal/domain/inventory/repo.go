package inventory

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, u *BloodUnit) error
	GetByID(ctx context.Context, id uuid.UUID) (*BloodUnit, error)
	GetByUnitNumber(ctx context.Context, unitNumber string) (*BloodUnit, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*BloodUnit, int, error)
	// LockAvailable selects up to n unexpired AVAILABLE units of the given
	// type and component, oldest expiry first, locking the rows for the
	// duration of the surrounding transaction.
	LockAvailable(ctx context.Context, bloodType, component string, n int) ([]*BloodUnit, error)
	// LockByIDs reads the named units with row locks held until the
	// surrounding transaction ends.
	LockByIDs(ctx context.Context, ids []uuid.UUID) ([]*BloodUnit, error)
	// MarkUsed flips the given units to USED and attaches the transfusion
	// that consumed them. Units must already be locked.
	MarkUsed(ctx context.Context, ids []uuid.UUID, transfusionID uuid.UUID) error
}
