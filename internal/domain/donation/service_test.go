package donation

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/bbms/bbms/internal/domain/donor"
	"github.com/bbms/bbms/internal/domain/inventory"
)

type mockDonationRepo struct{ store map[uuid.UUID]*Donation }

func newMockDonationRepo() *mockDonationRepo {
	return &mockDonationRepo{store: make(map[uuid.UUID]*Donation)}
}

func (m *mockDonationRepo) Create(_ context.Context, d *Donation) error {
	d.ID = uuid.New(); m.store[d.ID] = d; return nil
}
func (m *mockDonationRepo) GetByID(_ context.Context, id uuid.UUID) (*Donation, error) {
	d, ok := m.store[id]; if !ok { return nil, fmt.Errorf("not found") }; return d, nil
}
func (m *mockDonationRepo) Update(_ context.Context, d *Donation) error {
	if _, ok := m.store[d.ID]; !ok { return fmt.Errorf("not found") }; m.store[d.ID] = d; return nil
}
func (m *mockDonationRepo) Delete(_ context.Context, id uuid.UUID) error { delete(m.store, id); return nil }
func (m *mockDonationRepo) Search(_ context.Context, params map[string]string, limit, offset int) ([]*Donation, int, error) {
	var r []*Donation
	for _, d := range m.store {
		if did, ok := params["donor_id"]; ok && d.DonorID.String() != did { continue }
		if st, ok := params["status"]; ok && d.Status != st { continue }
		r = append(r, d)
	}
	return r, len(r), nil
}

type mockDonorDirectory struct{ store map[uuid.UUID]*donor.Donor }

func newMockDonorDirectory() *mockDonorDirectory {
	return &mockDonorDirectory{store: make(map[uuid.UUID]*donor.Donor)}
}

func (m *mockDonorDirectory) add(bloodType string) *donor.Donor {
	d := &donor.Donor{ID: uuid.New(), FirstName: "Ada", LastName: "Okafor", BloodType: bloodType}
	m.store[d.ID] = d
	return d
}
func (m *mockDonorDirectory) GetByID(_ context.Context, id uuid.UUID) (*donor.Donor, error) {
	d, ok := m.store[id]; if !ok { return nil, fmt.Errorf("not found") }; return d, nil
}
func (m *mockDonorDirectory) SetEligibleSince(_ context.Context, id uuid.UUID, since time.Time) error {
	d, ok := m.store[id]; if !ok { return fmt.Errorf("not found") }; d.EligibleToDonateSince = &since; return nil
}

type mockUnitCreator struct {
	created []*inventory.BloodUnit
	err     error
}

func (m *mockUnitCreator) CreateFromDonation(_ context.Context, donationID uuid.UUID, bloodType, component string, volumeML, expiryDays int, collectedAt time.Time, notes *string) (*inventory.BloodUnit, error) {
	if m.err != nil {
		return nil, m.err
	}
	expiry := inventory.ExpiryFor(component, collectedAt)
	if expiryDays > 0 {
		expiry = time.Now().Add(time.Duration(expiryDays) * 24 * time.Hour)
	}
	u := &inventory.BloodUnit{
		ID:          uuid.New(),
		UnitNumber:  inventory.NewUnitNumber(donationID, component),
		DonationID:  &donationID,
		BloodType:   bloodType,
		Component:   component,
		VolumeML:    volumeML,
		Status:      inventory.StatusAvailable,
		CollectedAt: collectedAt,
		ExpiryDate:  expiry,
		Notes:       notes,
	}
	m.created = append(m.created, u)
	return u, nil
}

func newTestService() (*Service, *mockDonorDirectory, *mockUnitCreator) {
	donors := newMockDonorDirectory()
	units := &mockUnitCreator{}
	return NewService(newMockDonationRepo(), donors, units, nil), donors, units
}

func TestScheduleDonation_Success(t *testing.T) {
	svc, donors, _ := newTestService()
	dn := donors.add("O-")
	d := &Donation{DonorID: dn.ID, ScheduledAt: time.Now().Add(24 * time.Hour)}
	if err := svc.ScheduleDonation(context.Background(), d); err != nil { t.Fatalf("unexpected error: %v", err) }
	if d.Status != StatusScheduled { t.Errorf("expected SCHEDULED, got %q", d.Status) }
}

func TestScheduleDonation_UnknownDonor(t *testing.T) {
	svc, _, _ := newTestService()
	d := &Donation{DonorID: uuid.New(), ScheduledAt: time.Now()}
	if err := svc.ScheduleDonation(context.Background(), d); err == nil { t.Fatal("expected error") }
}

func TestScheduleDonation_DonorDeferred(t *testing.T) {
	svc, donors, _ := newTestService()
	dn := donors.add("O-")
	future := time.Now().Add(30 * 24 * time.Hour)
	dn.EligibleToDonateSince = &future
	d := &Donation{DonorID: dn.ID, ScheduledAt: time.Now().Add(24 * time.Hour)}
	if err := svc.ScheduleDonation(context.Background(), d); err != ErrDonorNotEligible {
		t.Fatalf("expected ErrDonorNotEligible, got %v", err)
	}
}

func TestScheduleDonation_AfterWindowReopens(t *testing.T) {
	svc, donors, _ := newTestService()
	dn := donors.add("O-")
	reopen := time.Now().Add(10 * 24 * time.Hour)
	dn.EligibleToDonateSince = &reopen
	d := &Donation{DonorID: dn.ID, ScheduledAt: reopen.Add(24 * time.Hour)}
	if err := svc.ScheduleDonation(context.Background(), d); err != nil {
		t.Fatalf("scheduling past the deferral window should succeed: %v", err)
	}
}

func TestCompleteDonation_SetsDonorDeferral(t *testing.T) {
	svc, donors, _ := newTestService()
	dn := donors.add("O-")
	d := &Donation{DonorID: dn.ID, ScheduledAt: time.Now()}
	svc.ScheduleDonation(context.Background(), d)
	at := time.Now()
	got, err := svc.CompleteDonation(context.Background(), d.ID, &at, 450, nil)
	if err != nil { t.Fatalf("unexpected error: %v", err) }
	if got.Status != StatusCompleted { t.Errorf("expected COMPLETED, got %q", got.Status) }
	if got.VolumeML == nil || *got.VolumeML != 450 { t.Error("expected recorded volume") }
	want := at.Add(donor.EligibilityInterval)
	if dn.EligibleToDonateSince == nil || !dn.EligibleToDonateSince.Equal(want) {
		t.Errorf("expected donor deferred until %v, got %v", want, dn.EligibleToDonateSince)
	}
}

func TestCompleteDonation_DefaultsActualToNow(t *testing.T) {
	svc, donors, _ := newTestService()
	dn := donors.add("O-")
	d := &Donation{DonorID: dn.ID, ScheduledAt: time.Now()}
	svc.ScheduleDonation(context.Background(), d)
	before := time.Now()
	got, err := svc.CompleteDonation(context.Background(), d.ID, nil, 450, nil)
	if err != nil { t.Fatalf("unexpected error: %v", err) }
	if got.ActualAt == nil || got.ActualAt.Before(before) { t.Error("expected actual_at defaulted to now") }
}

func TestCompleteDonation_RecordsHemoglobin(t *testing.T) {
	svc, donors, _ := newTestService()
	dn := donors.add("O-")
	d := &Donation{DonorID: dn.ID, ScheduledAt: time.Now()}
	svc.ScheduleDonation(context.Background(), d)
	hb := 13.5
	got, err := svc.CompleteDonation(context.Background(), d.ID, nil, 450, &hb)
	if err != nil { t.Fatalf("unexpected error: %v", err) }
	if got.HemoglobinLevel == nil || *got.HemoglobinLevel != hb { t.Error("expected recorded hemoglobin level") }
}

func TestCompleteDonation_WrongStatus(t *testing.T) {
	svc, donors, _ := newTestService()
	dn := donors.add("O-")
	d := &Donation{DonorID: dn.ID, ScheduledAt: time.Now()}
	svc.ScheduleDonation(context.Background(), d)
	svc.CancelDonation(context.Background(), d.ID)
	if _, err := svc.CompleteDonation(context.Background(), d.ID, nil, 450, nil); err == nil { t.Fatal("expected error") }
}

func TestCancelDonation(t *testing.T) {
	svc, donors, _ := newTestService()
	dn := donors.add("O-")
	d := &Donation{DonorID: dn.ID, ScheduledAt: time.Now()}
	svc.ScheduleDonation(context.Background(), d)
	got, err := svc.CancelDonation(context.Background(), d.ID)
	if err != nil { t.Fatalf("unexpected error: %v", err) }
	if got.Status != StatusCancelled { t.Errorf("expected CANCELLED, got %q", got.Status) }
}

func TestDeferDonation_BlocksDonorUntil(t *testing.T) {
	svc, donors, _ := newTestService()
	dn := donors.add("O-")
	d := &Donation{DonorID: dn.ID, ScheduledAt: time.Now()}
	svc.ScheduleDonation(context.Background(), d)
	until := time.Now().Add(90 * 24 * time.Hour)
	reason := "low hemoglobin"
	got, err := svc.DeferDonation(context.Background(), d.ID, &until, &reason)
	if err != nil { t.Fatalf("unexpected error: %v", err) }
	if got.Status != StatusDeferred { t.Errorf("expected DEFERRED, got %q", got.Status) }
	if dn.EligibleToDonateSince == nil || !dn.EligibleToDonateSince.Equal(until) {
		t.Error("expected donor blocked until the deferral date")
	}
}

func TestProcessDonation_CreatesUnits(t *testing.T) {
	svc, donors, units := newTestService()
	dn := donors.add("AB+")
	d := &Donation{DonorID: dn.ID, ScheduledAt: time.Now()}
	svc.ScheduleDonation(context.Background(), d)
	svc.CompleteDonation(context.Background(), d.ID, nil, 450, nil)
	got, created, err := svc.ProcessDonation(context.Background(), d.ID, []ComponentInput{
		{Component: inventory.ComponentRBC, VolumeML: 280},
		{Component: inventory.ComponentPlasma, VolumeML: 200},
	})
	if err != nil { t.Fatalf("unexpected error: %v", err) }
	if got.Status != StatusProcessed { t.Errorf("expected PROCESSED, got %q", got.Status) }
	if len(created) != 2 || len(units.created) != 2 { t.Fatalf("expected 2 units, got %d", len(created)) }
	for _, u := range created {
		if u.BloodType != "AB+" { t.Errorf("expected donor blood type on unit, got %q", u.BloodType) }
	}
}

func TestProcessDonation_ComponentExpiryDays(t *testing.T) {
	svc, donors, _ := newTestService()
	dn := donors.add("O+")
	d := &Donation{DonorID: dn.ID, ScheduledAt: time.Now()}
	svc.ScheduleDonation(context.Background(), d)
	// Collected ten days ago: the explicit shelf life still counts from
	// processing time, not from collection.
	at := time.Now().Add(-10 * 24 * time.Hour)
	svc.CompleteDonation(context.Background(), d.ID, &at, 450, nil)
	_, created, err := svc.ProcessDonation(context.Background(), d.ID, []ComponentInput{
		{Component: inventory.ComponentRBC, VolumeML: 280, ExpiryDays: 35},
		{Component: inventory.ComponentPlasma, VolumeML: 200, ExpiryDays: 365},
	})
	if err != nil { t.Fatalf("unexpected error: %v", err) }
	for i, days := range []int{35, 365} {
		want := time.Now().Add(time.Duration(days) * 24 * time.Hour)
		if d := created[i].ExpiryDate.Sub(want); d < -time.Minute || d > time.Minute {
			t.Errorf("component %d: expected expiry near %v, got %v", i, want, created[i].ExpiryDate)
		}
	}
}

func TestProcessDonation_ExplicitBloodType(t *testing.T) {
	svc, donors, _ := newTestService()
	dn := donors.add("O+")
	d := &Donation{DonorID: dn.ID, ScheduledAt: time.Now()}
	svc.ScheduleDonation(context.Background(), d)
	svc.CompleteDonation(context.Background(), d.ID, nil, 450, nil)
	_, created, err := svc.ProcessDonation(context.Background(), d.ID, []ComponentInput{
		{BloodType: "O-", Component: inventory.ComponentRBC, VolumeML: 280},
	})
	if err != nil { t.Fatalf("unexpected error: %v", err) }
	if created[0].BloodType != "O-" { t.Errorf("expected O-, got %q", created[0].BloodType) }
}

func TestProcessDonation_NotCompleted(t *testing.T) {
	svc, donors, _ := newTestService()
	dn := donors.add("O-")
	d := &Donation{DonorID: dn.ID, ScheduledAt: time.Now()}
	svc.ScheduleDonation(context.Background(), d)
	if _, _, err := svc.ProcessDonation(context.Background(), d.ID, []ComponentInput{{Component: inventory.ComponentRBC, VolumeML: 280}}); err != ErrNotProcessable {
		t.Fatalf("expected ErrNotProcessable, got %v", err)
	}
}

func TestProcessDonation_NoComponents(t *testing.T) {
	svc, _, _ := newTestService()
	if _, _, err := svc.ProcessDonation(context.Background(), uuid.New(), nil); err == nil { t.Fatal("expected error") }
}

func TestProcessDonation_UnitCreationFails(t *testing.T) {
	svc, donors, units := newTestService()
	dn := donors.add("O-")
	d := &Donation{DonorID: dn.ID, ScheduledAt: time.Now()}
	svc.ScheduleDonation(context.Background(), d)
	svc.CompleteDonation(context.Background(), d.ID, nil, 450, nil)
	units.err = fmt.Errorf("boom")
	if _, _, err := svc.ProcessDonation(context.Background(), d.ID, []ComponentInput{{Component: inventory.ComponentRBC, VolumeML: 280}}); err == nil {
		t.Fatal("expected error")
	}
}
