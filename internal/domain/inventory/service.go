package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrDuplicateUnitNumber is returned when the generated or supplied unit
	// number is already taken.
	ErrDuplicateUnitNumber = errors.New("unit number already in use")
	// ErrUnitInUse is returned when deleting a unit that has been transfused
	// or reserved.
	ErrUnitInUse = errors.New("blood unit is in use")
)

// unitNumberRetries bounds how many fresh labels are tried when the random
// suffix collides.
const unitNumberRetries = 3

// ReportInvalidator drops cached dashboard reports after stock changes.
// reporting.Service satisfies it; nil disables the notifications.
type ReportInvalidator interface {
	Invalidate(ctx context.Context)
}

type Service struct {
	units   Repository
	reports ReportInvalidator
}

func NewService(units Repository, reports ReportInvalidator) *Service {
	return &Service{units: units, reports: reports}
}

func (s *Service) stockChanged(ctx context.Context) {
	if s.reports != nil {
		s.reports.Invalidate(ctx)
	}
}

func (s *Service) CreateUnit(ctx context.Context, u *BloodUnit) error {
	if !validBloodTypes[u.BloodType] {
		return fmt.Errorf("invalid blood type: %s", u.BloodType)
	}
	if _, ok := componentCodes[u.Component]; !ok {
		return fmt.Errorf("invalid component: %s", u.Component)
	}
	if u.VolumeML <= 0 {
		return fmt.Errorf("volume_ml must be positive")
	}
	if u.UnitNumber == "" {
		return fmt.Errorf("unit_number is required")
	}
	if u.Status == "" {
		u.Status = StatusAvailable
	}
	if !validStatuses[u.Status] {
		return fmt.Errorf("invalid status: %s", u.Status)
	}
	if u.CollectedAt.IsZero() {
		u.CollectedAt = time.Now()
	}
	if u.ExpiryDate.IsZero() {
		u.ExpiryDate = ExpiryFor(u.Component, u.CollectedAt)
	}
	err := s.units.Create(ctx, u)
	if isUniqueViolation(err) {
		return ErrDuplicateUnitNumber
	}
	if err == nil {
		s.stockChanged(ctx)
	}
	return err
}

// CreateFromDonation registers one component unit produced from a completed
// donation. An explicit expiryDays runs from processing time; when zero the
// component's standard shelf life from collection applies. The unit number
// embeds the donation prefix; on a label collision a fresh suffix is
// generated and the insert retried.
func (s *Service) CreateFromDonation(ctx context.Context, donationID uuid.UUID, bloodType, component string, volumeML, expiryDays int, collectedAt time.Time, notes *string) (*BloodUnit, error) {
	if !validBloodTypes[bloodType] {
		return nil, fmt.Errorf("invalid blood type: %s", bloodType)
	}
	if _, ok := componentCodes[component]; !ok {
		return nil, fmt.Errorf("invalid component: %s", component)
	}
	if volumeML <= 0 {
		return nil, fmt.Errorf("volume_ml must be positive")
	}
	if collectedAt.IsZero() {
		collectedAt = time.Now()
	}
	expiry := ExpiryFor(component, collectedAt)
	if expiryDays > 0 {
		expiry = time.Now().Add(time.Duration(expiryDays) * 24 * time.Hour)
	}

	var lastErr error
	for attempt := 0; attempt < unitNumberRetries; attempt++ {
		u := &BloodUnit{
			UnitNumber:  NewUnitNumber(donationID, component),
			DonationID:  &donationID,
			BloodType:   bloodType,
			Component:   component,
			VolumeML:    volumeML,
			Status:      StatusAvailable,
			CollectedAt: collectedAt,
			ExpiryDate:  expiry,
			Notes:       notes,
		}
		err := s.units.Create(ctx, u)
		if err == nil {
			s.stockChanged(ctx)
			return u, nil
		}
		if !isUniqueViolation(err) {
			return nil, err
		}
		lastErr = ErrDuplicateUnitNumber
	}
	return nil, lastErr
}

func (s *Service) GetUnit(ctx context.Context, id uuid.UUID) (*BloodUnit, error) {
	return s.units.GetByID(ctx, id)
}

func (s *Service) GetUnitByNumber(ctx context.Context, unitNumber string) (*BloodUnit, error) {
	return s.units.GetByUnitNumber(ctx, unitNumber)
}

func (s *Service) SearchUnits(ctx context.Context, params map[string]string, limit, offset int) ([]*BloodUnit, int, error) {
	return s.units.Search(ctx, params, limit, offset)
}

func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	if !validStatuses[status] {
		return fmt.Errorf("invalid status: %s", status)
	}
	if status == StatusUsed {
		return fmt.Errorf("units become USED through a transfusion, not a status update")
	}
	existing, err := s.units.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.Status == StatusUsed {
		return fmt.Errorf("unit %s has been transfused and cannot change status", existing.UnitNumber)
	}
	if err := s.units.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	s.stockChanged(ctx)
	return nil
}

func (s *Service) DeleteUnit(ctx context.Context, id uuid.UUID) error {
	existing, err := s.units.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.Status == StatusUsed || existing.Status == StatusReserved || existing.TransfusionID != nil {
		return ErrUnitInUse
	}
	if err := s.units.Delete(ctx, id); err != nil {
		return err
	}
	s.stockChanged(ctx)
	return nil
}

// LockAvailable, LockByIDs and MarkUsed expose row-level allocation to the
// request fulfillment flow. All three must run inside the caller's
// transaction.
func (s *Service) LockAvailable(ctx context.Context, bloodType, component string, n int) ([]*BloodUnit, error) {
	return s.units.LockAvailable(ctx, bloodType, component, n)
}

func (s *Service) LockByIDs(ctx context.Context, ids []uuid.UUID) ([]*BloodUnit, error) {
	return s.units.LockByIDs(ctx, ids)
}

func (s *Service) MarkUsed(ctx context.Context, ids []uuid.UUID, transfusionID uuid.UUID) error {
	return s.units.MarkUsed(ctx, ids, transfusionID)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
