package donation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bbms/bbms/internal/domain/donor"
	"github.com/bbms/bbms/internal/domain/inventory"
	"github.com/bbms/bbms/internal/platform/db"
)

var (
	// ErrDonorNotEligible is returned when scheduling inside the donor's
	// deferral window.
	ErrDonorNotEligible = errors.New("donor is not eligible to donate")
	// ErrNotProcessable is returned when separating components from a
	// donation that has not been completed.
	ErrNotProcessable = errors.New("only completed donations can be processed")
)

// DonorDirectory is the slice of the donor store this package needs.
// donor.Repository satisfies it.
type DonorDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*donor.Donor, error)
	SetEligibleSince(ctx context.Context, id uuid.UUID, since time.Time) error
}

// UnitCreator registers component units from a processed donation.
// inventory.Service satisfies it.
type UnitCreator interface {
	CreateFromDonation(ctx context.Context, donationID uuid.UUID, bloodType, component string, volumeML, expiryDays int, collectedAt time.Time, notes *string) (*inventory.BloodUnit, error)
}

type Service struct {
	donations Repository
	donors    DonorDirectory
	units     UnitCreator
	pool      *pgxpool.Pool
}

func NewService(donations Repository, donors DonorDirectory, units UnitCreator, pool *pgxpool.Pool) *Service {
	return &Service{donations: donations, donors: donors, units: units, pool: pool}
}

// inTx runs fn inside a transaction when a pool is wired, or directly when
// running against in-memory stores.
func (s *Service) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.pool == nil {
		return fn(ctx)
	}
	return db.WithTx(ctx, s.pool, fn)
}

func (s *Service) ScheduleDonation(ctx context.Context, d *Donation) error {
	if d.DonorID == uuid.Nil {
		return fmt.Errorf("donor_id is required")
	}
	if d.ScheduledAt.IsZero() {
		return fmt.Errorf("scheduled_at is required")
	}
	dn, err := s.donors.GetByID(ctx, d.DonorID)
	if err != nil {
		return fmt.Errorf("donor not found")
	}
	if !dn.EligibleAt(d.ScheduledAt) {
		return ErrDonorNotEligible
	}
	d.Status = StatusScheduled
	return s.donations.Create(ctx, d)
}

func (s *Service) GetDonation(ctx context.Context, id uuid.UUID) (*Donation, error) {
	return s.donations.GetByID(ctx, id)
}

func (s *Service) SearchDonations(ctx context.Context, params map[string]string, limit, offset int) ([]*Donation, int, error) {
	return s.donations.Search(ctx, params, limit, offset)
}

// CompleteDonation records the collection and pushes the donor's next
// eligible date out by the deferral interval, both in one transaction.
func (s *Service) CompleteDonation(ctx context.Context, id uuid.UUID, actualAt *time.Time, volumeML int, hemoglobin *float64) (*Donation, error) {
	if volumeML <= 0 {
		return nil, fmt.Errorf("volume_ml must be positive")
	}
	if hemoglobin != nil && *hemoglobin <= 0 {
		return nil, fmt.Errorf("hemoglobin_level must be positive")
	}
	var d *Donation
	err := s.inTx(ctx, func(ctx context.Context) error {
		var err error
		d, err = s.donations.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if d.Status != StatusScheduled {
			return fmt.Errorf("donation is %s, only scheduled donations can be completed", d.Status)
		}
		at := time.Now()
		if actualAt != nil {
			at = *actualAt
		}
		d.Status = StatusCompleted
		d.ActualAt = &at
		d.VolumeML = &volumeML
		d.HemoglobinLevel = hemoglobin
		if err := s.donations.Update(ctx, d); err != nil {
			return err
		}
		return s.donors.SetEligibleSince(ctx, d.DonorID, at.Add(donor.EligibilityInterval))
	})
	return d, err
}

func (s *Service) CancelDonation(ctx context.Context, id uuid.UUID) (*Donation, error) {
	return s.transition(ctx, id, StatusScheduled, StatusCancelled)
}

// DeferDonation marks a scheduled donation as deferred on medical grounds,
// optionally blocking the donor until a given date.
func (s *Service) DeferDonation(ctx context.Context, id uuid.UUID, until *time.Time, reason *string) (*Donation, error) {
	var d *Donation
	err := s.inTx(ctx, func(ctx context.Context) error {
		var err error
		d, err = s.donations.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if d.Status != StatusScheduled {
			return fmt.Errorf("donation is %s, only scheduled donations can be deferred", d.Status)
		}
		d.Status = StatusDeferred
		if reason != nil {
			d.Notes = reason
		}
		if err := s.donations.Update(ctx, d); err != nil {
			return err
		}
		if until != nil {
			return s.donors.SetEligibleSince(ctx, d.DonorID, *until)
		}
		return nil
	})
	return d, err
}

// ProcessDonation separates a completed donation into component units. The
// donation flips to PROCESSED and all units are created atomically.
func (s *Service) ProcessDonation(ctx context.Context, id uuid.UUID, components []ComponentInput) (*Donation, []*inventory.BloodUnit, error) {
	if len(components) == 0 {
		return nil, nil, fmt.Errorf("at least one component is required")
	}
	var d *Donation
	var units []*inventory.BloodUnit
	err := s.inTx(ctx, func(ctx context.Context) error {
		var err error
		d, err = s.donations.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if d.Status != StatusCompleted {
			return ErrNotProcessable
		}
		dn, err := s.donors.GetByID(ctx, d.DonorID)
		if err != nil {
			return err
		}
		collectedAt := time.Now()
		if d.ActualAt != nil {
			collectedAt = *d.ActualAt
		}
		for _, comp := range components {
			bt := comp.BloodType
			if bt == "" {
				bt = dn.BloodType
			}
			u, err := s.units.CreateFromDonation(ctx, d.ID, bt, comp.Component, comp.VolumeML, comp.ExpiryDays, collectedAt, comp.Notes)
			if err != nil {
				return err
			}
			units = append(units, u)
		}
		d.Status = StatusProcessed
		return s.donations.Update(ctx, d)
	})
	if err != nil {
		return nil, nil, err
	}
	return d, units, nil
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, from, to string) (*Donation, error) {
	d, err := s.donations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.Status != from {
		return nil, fmt.Errorf("donation is %s, expected %s", d.Status, from)
	}
	d.Status = to
	if err := s.donations.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}
