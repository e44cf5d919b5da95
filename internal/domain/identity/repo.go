package identity

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*User, int, error)

	CreateProfile(ctx context.Context, p Profile) error
	// GetProfile loads the profile matching the user's role, nil for roles
	// without one.
	GetProfile(ctx context.Context, userID uuid.UUID, role string) (Profile, error)
}
