package request

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bbms/bbms/internal/domain/inventory"
	"github.com/bbms/bbms/internal/domain/patient"
	"github.com/bbms/bbms/internal/platform/db"
)

var (
	// ErrPatientNotFound is returned when the request names an unknown
	// patient.
	ErrPatientNotFound = errors.New("patient not found")
	// ErrInsufficientStock is returned when fewer matching units are on the
	// shelf than the transfusion needs.
	ErrInsufficientStock = errors.New("insufficient matching units in stock")
	// ErrUnitsUnavailable is returned when an explicitly named unit is not
	// AVAILABLE at transfusion time.
	ErrUnitsUnavailable = errors.New("one or more named units are not available")
	// ErrNotFulfillable is returned when transfusing against a request that
	// has already been closed out.
	ErrNotFulfillable = errors.New("request is not open for transfusion")
	// ErrHasTransfusions guards deletion of requests with recorded
	// transfusions.
	ErrHasTransfusions = errors.New("request has recorded transfusions")
)

// UnitAllocator is the slice of the inventory this package needs.
// inventory.Service satisfies it.
type UnitAllocator interface {
	LockAvailable(ctx context.Context, bloodType, component string, n int) ([]*inventory.BloodUnit, error)
	LockByIDs(ctx context.Context, ids []uuid.UUID) ([]*inventory.BloodUnit, error)
	MarkUsed(ctx context.Context, ids []uuid.UUID, transfusionID uuid.UUID) error
}

// PatientDirectory resolves patients named on requests. patient.Service
// satisfies it.
type PatientDirectory interface {
	GetPatient(ctx context.Context, id uuid.UUID) (*patient.Patient, error)
}

type Service struct {
	requests     Repository
	transfusions TransfusionRepository
	units        UnitAllocator
	patients     PatientDirectory
	reports      inventory.ReportInvalidator
	pool         *pgxpool.Pool
}

func NewService(requests Repository, transfusions TransfusionRepository, units UnitAllocator, patients PatientDirectory, reports inventory.ReportInvalidator, pool *pgxpool.Pool) *Service {
	return &Service{requests: requests, transfusions: transfusions, units: units, patients: patients, reports: reports, pool: pool}
}

func (s *Service) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.pool == nil {
		return fn(ctx)
	}
	return db.WithTx(ctx, s.pool, fn)
}

func (s *Service) CreateRequest(ctx context.Context, r *BloodRequest) error {
	if r.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if !validBloodTypes[r.BloodType] {
		return fmt.Errorf("invalid blood type: %s", r.BloodType)
	}
	if r.Component == "" {
		return fmt.Errorf("component is required")
	}
	if r.UnitsRequested <= 0 {
		return fmt.Errorf("units_requested must be positive")
	}
	if r.Urgency == "" {
		r.Urgency = UrgencyNormal
	}
	if !validUrgencies[r.Urgency] {
		return fmt.Errorf("invalid urgency: %s", r.Urgency)
	}
	if _, err := s.patients.GetPatient(ctx, r.PatientID); err != nil {
		return ErrPatientNotFound
	}
	r.Status = StatusPending
	r.FulfilledUnits = 0
	return s.requests.Create(ctx, r)
}

func (s *Service) GetRequest(ctx context.Context, id uuid.UUID) (*BloodRequest, error) {
	return s.requests.GetByID(ctx, id)
}

func (s *Service) SearchRequests(ctx context.Context, params map[string]string, limit, offset int) ([]*BloodRequest, int, error) {
	return s.requests.Search(ctx, params, limit, offset)
}

func (s *Service) ApproveRequest(ctx context.Context, id uuid.UUID) (*BloodRequest, error) {
	return s.transition(ctx, id, []string{StatusPending}, StatusApproved, nil)
}

func (s *Service) RejectRequest(ctx context.Context, id uuid.UUID, reason *string) (*BloodRequest, error) {
	return s.transition(ctx, id, []string{StatusPending}, StatusRejected, reason)
}

func (s *Service) CancelRequest(ctx context.Context, id uuid.UUID) (*BloodRequest, error) {
	return s.transition(ctx, id, []string{StatusPending, StatusApproved}, StatusCancelled, nil)
}

func (s *Service) DeleteRequest(ctx context.Context, id uuid.UUID) error {
	n, err := s.transfusions.CountByRequest(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrHasTransfusions
	}
	return s.requests.Delete(ctx, id)
}

func (s *Service) ListTransfusions(ctx context.Context, requestID uuid.UUID) ([]*Transfusion, error) {
	return s.transfusions.ListByRequest(ctx, requestID)
}

// TransfusionInput drives one fulfillment round against an open request.
// BloodUnitIDs names the exact bags to consume; when empty, matching units
// are allocated automatically, Units many (defaulting to the request's
// remaining count).
type TransfusionInput struct {
	PatientID    *uuid.UUID  `json:"patient_id,omitempty"`
	BloodUnitIDs []uuid.UUID `json:"blood_unit_ids,omitempty"`
	Units        int         `json:"units"`
	PerformedBy  *uuid.UUID  `json:"performed_by,omitempty"`
	TransfusedAt *time.Time  `json:"transfused_at,omitempty"`
	Notes        *string     `json:"notes,omitempty"`
}

// Transfuse consumes blood units against a request: the request row is
// locked, the units are locked and re-verified AVAILABLE, one transfusion
// row is written, each unit flips to USED carrying the transfusion id, and
// the cumulative fulfillment counter advances. Reaching the requested count
// flips the request to FULFILLED. Everything happens in one transaction; any
// unavailable unit fails the whole round with no partial effect.
func (s *Service) Transfuse(ctx context.Context, requestID uuid.UUID, in TransfusionInput) (*BloodRequest, *Transfusion, []*inventory.BloodUnit, error) {
	var r *BloodRequest
	var t *Transfusion
	var units []*inventory.BloodUnit
	err := s.inTx(ctx, func(ctx context.Context) error {
		var err error
		r, err = s.requests.GetByIDForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if r.Status != StatusPending && r.Status != StatusApproved {
			return ErrNotFulfillable
		}
		if in.PatientID != nil && *in.PatientID != r.PatientID {
			return fmt.Errorf("patient does not match the request")
		}
		if len(in.BloodUnitIDs) > 0 {
			units, err = s.units.LockByIDs(ctx, in.BloodUnitIDs)
			if err != nil {
				return err
			}
			if len(units) < len(in.BloodUnitIDs) {
				return ErrUnitsUnavailable
			}
			for _, u := range units {
				if u.Status != inventory.StatusAvailable {
					return ErrUnitsUnavailable
				}
			}
		} else {
			want := in.Units
			if want <= 0 || want > r.Remaining() {
				want = r.Remaining()
			}
			if want == 0 {
				return fmt.Errorf("request is already fully fulfilled")
			}
			units, err = s.units.LockAvailable(ctx, r.BloodType, r.Component, want)
			if err != nil {
				return err
			}
			if len(units) < want {
				return ErrInsufficientStock
			}
		}
		at := time.Now()
		if in.TransfusedAt != nil {
			at = *in.TransfusedAt
		}
		t = &Transfusion{
			RequestID:    r.ID,
			PatientID:    r.PatientID,
			PerformedBy:  in.PerformedBy,
			TransfusedAt: at,
			Notes:        in.Notes,
		}
		if err := s.transfusions.Create(ctx, t); err != nil {
			return err
		}
		ids := make([]uuid.UUID, 0, len(units))
		for _, u := range units {
			ids = append(ids, u.ID)
		}
		if err := s.units.MarkUsed(ctx, ids, t.ID); err != nil {
			return err
		}
		for _, u := range units {
			u.Status = inventory.StatusUsed
			tid := t.ID
			u.TransfusionID = &tid
		}
		r.FulfilledUnits += len(units)
		if r.FulfilledUnits >= r.UnitsRequested {
			r.Status = StatusFulfilled
		}
		return s.requests.Update(ctx, r)
	})
	if err != nil {
		return nil, nil, nil, err
	}
	// Stock levels changed; cached reports are stale once the tx committed.
	if s.reports != nil {
		s.reports.Invalidate(ctx)
	}
	return r, t, units, nil
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, from []string, to string, reason *string) (*BloodRequest, error) {
	r, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	ok := false
	for _, f := range from {
		if r.Status == f {
			ok = true
			break
		}
	}
	if !ok {
		return nil, fmt.Errorf("request is %s, cannot move to %s", r.Status, to)
	}
	if !validStatuses[to] {
		return nil, fmt.Errorf("invalid status: %s", to)
	}
	r.Status = to
	if reason != nil {
		r.Reason = reason
	}
	if err := s.requests.Update(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}
