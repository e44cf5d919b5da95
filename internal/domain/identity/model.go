package identity

import (
	"time"

	"github.com/google/uuid"

	"github.com/bbms/bbms/internal/platform/auth"
)

// User maps to the app_user table. Each user carries at most one role
// profile matching its role; admins have none.
type User struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	FullName  string    `db:"full_name" json:"full_name"`
	Role      string    `db:"role" json:"role"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	Profile Profile `db:"-" json:"profile,omitempty"`
}

// Profile is the role-specific extension of a user account. Exactly one
// concrete type exists per non-admin role.
type Profile interface {
	ProfileRole() string
}

// DonorProfile links a donor-role user to its donor record.
type DonorProfile struct {
	UserID  uuid.UUID `db:"user_id" json:"user_id"`
	DonorID uuid.UUID `db:"donor_id" json:"donor_id"`
}

func (DonorProfile) ProfileRole() string { return auth.RoleDonor }

// MedicalOfficerProfile carries the clinician's registration details.
type MedicalOfficerProfile struct {
	UserID        uuid.UUID `db:"user_id" json:"user_id"`
	LicenseNumber string    `db:"license_number" json:"license_number"`
	Department    *string   `db:"department" json:"department,omitempty"`
}

func (MedicalOfficerProfile) ProfileRole() string { return auth.RoleMedicalOfficer }

// TechnicianProfile carries the lab technician's assignment details.
type TechnicianProfile struct {
	UserID        uuid.UUID `db:"user_id" json:"user_id"`
	LabSection    *string   `db:"lab_section" json:"lab_section,omitempty"`
	Certification *string   `db:"certification" json:"certification,omitempty"`
}

func (TechnicianProfile) ProfileRole() string { return auth.RoleTechnician }

var validRoles = map[string]bool{
	auth.RoleAdmin: true, auth.RoleMedicalOfficer: true,
	auth.RoleTechnician: true, auth.RoleDonor: true,
}
