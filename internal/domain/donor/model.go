package donor

import (
	"time"

	"github.com/google/uuid"
)

// EligibilityInterval is the minimum interval between completed donations.
const EligibilityInterval = 56 * 24 * time.Hour

// Donor maps to the donor table.
type Donor struct {
	ID                    uuid.UUID  `db:"id" json:"id"`
	UserID                *uuid.UUID `db:"user_id" json:"user_id,omitempty"`
	FirstName             string     `db:"first_name" json:"first_name"`
	LastName              string     `db:"last_name" json:"last_name"`
	BloodType             string     `db:"blood_type" json:"blood_type"`
	BirthDate             *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	Gender                *string    `db:"gender" json:"gender,omitempty"`
	Email                 *string    `db:"email" json:"email,omitempty"`
	Phone                 *string    `db:"phone" json:"phone,omitempty"`
	EligibleToDonateSince *time.Time `db:"eligible_to_donate_since" json:"eligible_to_donate_since,omitempty"`
	CreatedAt             time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time  `db:"updated_at" json:"updated_at"`
}

// EligibleAt reports whether the donor may donate at the given time. A donor
// with no recorded completed donation is always eligible.
func (d *Donor) EligibleAt(t time.Time) bool {
	return d.EligibleToDonateSince == nil || !d.EligibleToDonateSince.After(t)
}

var validBloodTypes = map[string]bool{
	"A+": true, "A-": true, "B+": true, "B-": true,
	"AB+": true, "AB-": true, "O+": true, "O-": true,
}
