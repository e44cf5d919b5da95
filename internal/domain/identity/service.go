package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bbms/bbms/internal/platform/auth"
	"github.com/bbms/bbms/internal/platform/db"
)

// ErrDuplicateEmail is returned when registering an email that already has
// an account.
var ErrDuplicateEmail = errors.New("email already registered")

type Service struct {
	users Repository
	pool  *pgxpool.Pool
}

func NewService(users Repository, pool *pgxpool.Pool) *Service {
	return &Service{users: users, pool: pool}
}

func (s *Service) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.pool == nil {
		return fn(ctx)
	}
	return db.WithTx(ctx, s.pool, fn)
}

// CreateUserInput carries the account fields plus exactly one role profile
// matching Role. Admin accounts carry none.
type CreateUserInput struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`

	DonorProfile          *DonorProfile          `json:"donor_profile,omitempty"`
	MedicalOfficerProfile *MedicalOfficerProfile `json:"medical_officer_profile,omitempty"`
	TechnicianProfile     *TechnicianProfile     `json:"technician_profile,omitempty"`
}

func (in *CreateUserInput) profile() (Profile, error) {
	var p Profile
	count := 0
	if in.DonorProfile != nil {
		p = *in.DonorProfile
		count++
	}
	if in.MedicalOfficerProfile != nil {
		p = *in.MedicalOfficerProfile
		count++
	}
	if in.TechnicianProfile != nil {
		p = *in.TechnicianProfile
		count++
	}
	if count > 1 {
		return nil, fmt.Errorf("at most one role profile may be provided")
	}
	if in.Role == auth.RoleAdmin {
		if count != 0 {
			return nil, fmt.Errorf("admin accounts carry no role profile")
		}
		return nil, nil
	}
	if count == 0 {
		return nil, fmt.Errorf("role %s requires a matching profile", in.Role)
	}
	if p.ProfileRole() != in.Role {
		return nil, fmt.Errorf("profile does not match role %s", in.Role)
	}
	return p, nil
}

// CreateUser registers the account and its role profile in one transaction.
func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (*User, error) {
	if in.Email == "" || !strings.Contains(in.Email, "@") {
		return nil, fmt.Errorf("a valid email is required")
	}
	if in.FullName == "" {
		return nil, fmt.Errorf("full_name is required")
	}
	if !validRoles[in.Role] {
		return nil, fmt.Errorf("invalid role: %s", in.Role)
	}
	profile, err := in.profile()
	if err != nil {
		return nil, err
	}
	if in.Role == auth.RoleDonor && profile.(DonorProfile).DonorID == uuid.Nil {
		return nil, fmt.Errorf("donor profile requires donor_id")
	}
	if in.Role == auth.RoleMedicalOfficer && profile.(MedicalOfficerProfile).LicenseNumber == "" {
		return nil, fmt.Errorf("medical officer profile requires license_number")
	}

	u := &User{Email: strings.ToLower(in.Email), FullName: in.FullName, Role: in.Role, Active: true}
	err = s.inTx(ctx, func(ctx context.Context) error {
		if err := s.users.Create(ctx, u); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return ErrDuplicateEmail
			}
			return err
		}
		if profile == nil {
			return nil
		}
		profile = withUserID(profile, u.ID)
		return s.users.CreateProfile(ctx, profile)
	})
	if err != nil {
		return nil, err
	}
	u.Profile = profile
	return u, nil
}

func withUserID(p Profile, id uuid.UUID) Profile {
	switch v := p.(type) {
	case DonorProfile:
		v.UserID = id
		return v
	case MedicalOfficerProfile:
		v.UserID = id
		return v
	case TechnicianProfile:
		v.UserID = id
		return v
	}
	return p
}

// GetUser returns the account with its role profile attached.
func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p, err := s.users.GetProfile(ctx, u.ID, u.Role)
	if err == nil {
		u.Profile = p
	}
	return u, nil
}

func (s *Service) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return s.users.GetByEmail(ctx, strings.ToLower(email))
}

func (s *Service) SearchUsers(ctx context.Context, params map[string]string, limit, offset int) ([]*User, int, error) {
	return s.users.Search(ctx, params, limit, offset)
}

// SetActive enables or disables the account. Role and email are immutable.
func (s *Service) SetActive(ctx context.Context, id uuid.UUID, active bool) (*User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	u.Active = active
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return s.users.Delete(ctx, id)
}
