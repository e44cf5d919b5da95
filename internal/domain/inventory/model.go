package inventory

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Blood unit statuses.
const (
	StatusAvailable   = "AVAILABLE"
	StatusReserved    = "RESERVED"
	StatusUsed        = "USED"
	StatusExpired     = "EXPIRED"
	StatusDiscarded   = "DISCARDED"
	StatusQuarantined = "QUARANTINED"
)

// Blood components.
const (
	ComponentWholeBlood      = "WHOLE_BLOOD"
	ComponentRBC             = "RBC"
	ComponentPlasma          = "PLASMA"
	ComponentPlatelets       = "PLATELETS"
	ComponentCryoprecipitate = "CRYOPRECIPITATE"
)

// BloodUnit maps to the blood_unit table. UnitNumber is the human-readable
// label printed on the bag and is unique across the system. TransfusionID is
// set exactly when the unit has been consumed, so a USED unit always points
// back at the transfusion that consumed it.
type BloodUnit struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	UnitNumber    string     `db:"unit_number" json:"unit_number"`
	DonationID    *uuid.UUID `db:"donation_id" json:"donation_id,omitempty"`
	TransfusionID *uuid.UUID `db:"transfusion_id" json:"transfusion_id,omitempty"`
	BloodType     string     `db:"blood_type" json:"blood_type"`
	Component     string     `db:"component" json:"component"`
	VolumeML      int        `db:"volume_ml" json:"volume_ml"`
	Status        string     `db:"status" json:"status"`
	CollectedAt   time.Time  `db:"collected_at" json:"collected_at"`
	ExpiryDate    time.Time  `db:"expiry_date" json:"expiry_date"`
	Notes         *string    `db:"notes" json:"notes,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

var validStatuses = map[string]bool{
	StatusAvailable: true, StatusReserved: true, StatusUsed: true,
	StatusExpired: true, StatusDiscarded: true, StatusQuarantined: true,
}

var validBloodTypes = map[string]bool{
	"A+": true, "A-": true, "B+": true, "B-": true,
	"AB+": true, "AB-": true, "O+": true, "O-": true,
}

// componentCodes are the three-letter labels embedded in unit numbers.
var componentCodes = map[string]string{
	ComponentWholeBlood:      "WBL",
	ComponentRBC:             "RBC",
	ComponentPlasma:          "PLS",
	ComponentPlatelets:       "PLT",
	ComponentCryoprecipitate: "CRY",
}

// componentShelfLife is the storage life from collection per component.
var componentShelfLife = map[string]time.Duration{
	ComponentWholeBlood:      35 * 24 * time.Hour,
	ComponentRBC:             42 * 24 * time.Hour,
	ComponentPlasma:          365 * 24 * time.Hour,
	ComponentPlatelets:       5 * 24 * time.Hour,
	ComponentCryoprecipitate: 365 * 24 * time.Hour,
}

// NewUnitNumber derives a bag label from the source donation, the component
// code, and a random suffix. Collisions are possible and resolved by the
// caller retrying against the unique index.
func NewUnitNumber(donationID uuid.UUID, component string) string {
	code, ok := componentCodes[component]
	if !ok {
		code = "UNK"
	}
	prefix := strings.ToUpper(donationID.String()[:8])
	suffix := make([]byte, 3)
	rand.Read(suffix)
	return fmt.Sprintf("%s-%s-%02X%02X%02X", prefix, code, suffix[0], suffix[1], suffix[2])
}

// ExpiryFor returns the expiry date of a component collected at the given
// time.
func ExpiryFor(component string, collectedAt time.Time) time.Time {
	life, ok := componentShelfLife[component]
	if !ok {
		life = componentShelfLife[ComponentWholeBlood]
	}
	return collectedAt.Add(life)
}

// Expired reports whether the unit is past its expiry date at t.
func (u *BloodUnit) Expired(t time.Time) bool {
	return !u.ExpiryDate.After(t)
}
