package patient

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

type mockPatientRepo struct{ store map[uuid.UUID]*Patient }

func newMockPatientRepo() *mockPatientRepo {
	return &mockPatientRepo{store: make(map[uuid.UUID]*Patient)}
}

func (m *mockPatientRepo) Create(_ context.Context, p *Patient) error {
	for _, existing := range m.store {
		if existing.MRN == p.MRN {
			return &pgconn.PgError{Code: "23505", ConstraintName: "patient_mrn_key"}
		}
	}
	p.ID = uuid.New(); m.store[p.ID] = p; return nil
}
func (m *mockPatientRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := m.store[id]; if !ok { return nil, fmt.Errorf("not found") }; return p, nil
}
func (m *mockPatientRepo) GetByMRN(_ context.Context, mrn string) (*Patient, error) {
	for _, p := range m.store { if p.MRN == mrn { return p, nil } }; return nil, fmt.Errorf("not found")
}
func (m *mockPatientRepo) Update(_ context.Context, p *Patient) error {
	if _, ok := m.store[p.ID]; !ok { return fmt.Errorf("not found") }; m.store[p.ID] = p; return nil
}
func (m *mockPatientRepo) Delete(_ context.Context, id uuid.UUID) error { delete(m.store, id); return nil }
func (m *mockPatientRepo) Search(_ context.Context, params map[string]string, limit, offset int) ([]*Patient, int, error) {
	var r []*Patient
	for _, p := range m.store {
		if mrn, ok := params["mrn"]; ok && p.MRN != mrn { continue }
		r = append(r, p)
	}
	return r, len(r), nil
}

func newTestService() *Service { return NewService(newMockPatientRepo()) }

func strPtr(s string) *string { return &s }

func TestCreatePatient_Success(t *testing.T) {
	svc := newTestService()
	p := &Patient{MRN: "MRN-001", FirstName: "Grace", LastName: "Otieno", BloodType: strPtr("A+")}
	if err := svc.CreatePatient(context.Background(), p); err != nil { t.Fatalf("unexpected error: %v", err) }
	if p.ID == uuid.Nil { t.Error("expected generated id") }
}

func TestCreatePatient_MissingMRN(t *testing.T) {
	svc := newTestService()
	if err := svc.CreatePatient(context.Background(), &Patient{FirstName: "Grace", LastName: "Otieno"}); err == nil { t.Fatal("expected error") }
}

func TestCreatePatient_DuplicateMRN(t *testing.T) {
	svc := newTestService()
	svc.CreatePatient(context.Background(), &Patient{MRN: "MRN-001", FirstName: "Grace", LastName: "Otieno"})
	err := svc.CreatePatient(context.Background(), &Patient{MRN: "MRN-001", FirstName: "John", LastName: "Doe"})
	if err != ErrDuplicateMRN { t.Fatalf("expected ErrDuplicateMRN, got %v", err) }
}

func TestCreatePatient_InvalidBloodType(t *testing.T) {
	svc := newTestService()
	p := &Patient{MRN: "MRN-001", FirstName: "Grace", LastName: "Otieno", BloodType: strPtr("Q-")}
	if err := svc.CreatePatient(context.Background(), p); err == nil { t.Fatal("expected error") }
}

func TestGetPatientByMRN(t *testing.T) {
	svc := newTestService()
	p := &Patient{MRN: "MRN-007", FirstName: "Grace", LastName: "Otieno"}
	svc.CreatePatient(context.Background(), p)
	got, err := svc.GetPatientByMRN(context.Background(), "MRN-007")
	if err != nil { t.Fatalf("unexpected error: %v", err) }
	if got.ID != p.ID { t.Error("ID mismatch") }
}

func TestDeletePatient(t *testing.T) {
	svc := newTestService()
	p := &Patient{MRN: "MRN-001", FirstName: "Grace", LastName: "Otieno"}
	svc.CreatePatient(context.Background(), p)
	if err := svc.DeletePatient(context.Background(), p.ID); err != nil { t.Fatalf("unexpected error: %v", err) }
	if _, err := svc.GetPatient(context.Background(), p.ID); err == nil { t.Error("expected not found after delete") }
}
