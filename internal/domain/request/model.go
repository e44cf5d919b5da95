package request

import (
	"time"

	"github.com/google/uuid"
)

// Blood request statuses.
const (
	StatusPending   = "PENDING"
	StatusApproved  = "APPROVED"
	StatusFulfilled = "FULFILLED"
	StatusCancelled = "CANCELLED"
	StatusRejected  = "REJECTED"
)

// Urgency levels.
const (
	UrgencyLow      = "LOW"
	UrgencyNormal   = "NORMAL"
	UrgencyHigh     = "HIGH"
	UrgencyCritical = "CRITICAL"
)

// BloodRequest maps to the blood_request table. FulfilledUnits accumulates
// across transfusions until it reaches UnitsRequested.
type BloodRequest struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	PatientID      uuid.UUID  `db:"patient_id" json:"patient_id"`
	RequesterID    *uuid.UUID `db:"requester_id" json:"requester_id,omitempty"`
	BloodType      string     `db:"blood_type" json:"blood_type"`
	Component      string     `db:"component" json:"component"`
	UnitsRequested int        `db:"units_requested" json:"units_requested"`
	FulfilledUnits int        `db:"fulfilled_units" json:"fulfilled_units"`
	Urgency        string     `db:"urgency" json:"urgency"`
	Status         string     `db:"status" json:"status"`
	Reason         *string    `db:"reason" json:"reason,omitempty"`
	RequiredBy     *time.Time `db:"required_by" json:"required_by,omitempty"`
	Notes          *string    `db:"notes" json:"notes,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// Remaining returns how many units are still owed.
func (r *BloodRequest) Remaining() int {
	if n := r.UnitsRequested - r.FulfilledUnits; n > 0 {
		return n
	}
	return 0
}

// Transfusion records one clinical administration against a request. The
// consumed units point back at it through their transfusion_id column.
type Transfusion struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	RequestID    uuid.UUID  `db:"request_id" json:"request_id"`
	PatientID    uuid.UUID  `db:"patient_id" json:"patient_id"`
	PerformedBy  *uuid.UUID `db:"performed_by" json:"performed_by,omitempty"`
	TransfusedAt time.Time  `db:"transfused_at" json:"transfused_at"`
	Notes        *string    `db:"notes" json:"notes,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

var validStatuses = map[string]bool{
	StatusPending: true, StatusApproved: true, StatusFulfilled: true,
	StatusCancelled: true, StatusRejected: true,
}

var validUrgencies = map[string]bool{
	UrgencyLow: true, UrgencyNormal: true, UrgencyHigh: true, UrgencyCritical: true,
}

var validBloodTypes = map[string]bool{
	"A+": true, "A-": true, "B+": true, "B-": true,
	"AB+": true, "AB-": true, "O+": true, "O-": true,
}
