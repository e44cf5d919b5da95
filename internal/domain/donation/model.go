package donation

import (
	"time"

	"github.com/google/uuid"
)

// Donation statuses.
const (
	StatusScheduled = "SCHEDULED"
	StatusCompleted = "COMPLETED"
	StatusCancelled = "CANCELLED"
	StatusDeferred  = "DEFERRED"
	StatusProcessed = "PROCESSED"
)

// Donation maps to the donation table. ActualAt is set when the collection
// takes place and may differ from the scheduled slot.
type Donation struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	DonorID         uuid.UUID  `db:"donor_id" json:"donor_id"`
	ScheduledAt     time.Time  `db:"scheduled_at" json:"scheduled_at"`
	ActualAt        *time.Time `db:"actual_at" json:"actual_at,omitempty"`
	VolumeML        *int       `db:"volume_ml" json:"volume_ml,omitempty"`
	HemoglobinLevel *float64   `db:"hemoglobin_level" json:"hemoglobin_level,omitempty"`
	Status          string     `db:"status" json:"status"`
	Notes           *string    `db:"notes" json:"notes,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

var validStatuses = map[string]bool{
	StatusScheduled: true, StatusCompleted: true, StatusCancelled: true,
	StatusDeferred: true, StatusProcessed: true,
}

// ComponentInput names one component to separate from a completed donation.
// BloodType defaults to the donor's when empty; ExpiryDays overrides the
// component's standard shelf life when positive.
type ComponentInput struct {
	BloodType  string  `json:"blood_type"`
	Component  string  `json:"component"`
	VolumeML   int     `json:"volume_ml"`
	ExpiryDays int     `json:"expiry_days"`
	Notes      *string `json:"notes,omitempty"`
}
