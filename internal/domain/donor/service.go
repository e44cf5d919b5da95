package donor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	donors Repository
}

func NewService(donors Repository) *Service {
	return &Service{donors: donors}
}

func (s *Service) CreateDonor(ctx context.Context, d *Donor) error {
	if d.FirstName == "" {
		return fmt.Errorf("first_name is required")
	}
	if d.LastName == "" {
		return fmt.Errorf("last_name is required")
	}
	if !validBloodTypes[d.BloodType] {
		return fmt.Errorf("invalid blood type: %s", d.BloodType)
	}
	return s.donors.Create(ctx, d)
}

func (s *Service) GetDonor(ctx context.Context, id uuid.UUID) (*Donor, error) {
	return s.donors.GetByID(ctx, id)
}

func (s *Service) UpdateDonor(ctx context.Context, d *Donor) error {
	if d.BloodType != "" && !validBloodTypes[d.BloodType] {
		return fmt.Errorf("invalid blood type: %s", d.BloodType)
	}
	return s.donors.Update(ctx, d)
}

func (s *Service) DeleteDonor(ctx context.Context, id uuid.UUID) error {
	return s.donors.Delete(ctx, id)
}

func (s *Service) SearchDonors(ctx context.Context, params map[string]string, limit, offset int) ([]*Donor, int, error) {
	return s.donors.Search(ctx, params, limit, offset)
}

// Eligibility returns whether the donor may donate now and, when not, the
// date the window reopens.
func (s *Service) Eligibility(ctx context.Context, id uuid.UUID) (bool, *time.Time, error) {
	since, err := s.donors.EligibleSince(ctx, id)
	if err != nil {
		return false, nil, err
	}
	if since == nil || !since.After(time.Now()) {
		return true, since, nil
	}
	return false, since, nil
}
