package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type mockTreatmentRepo struct {
	treatments map[uuid.UUID]*Treatment
	failCreate map[string]bool
}

func newMockTreatmentRepo() *mockTreatmentRepo {
	return &mockTreatmentRepo{
		treatments: make(map[uuid.UUID]*Treatment),
		failCreate: make(map[string]bool),
	}
}

func (m *mockTreatmentRepo) Create(_ context.Context, t *Treatment) error {
	if m.failCreate[t.Name] {
		return fmt.Errorf("simulated create failure for %s", t.Name)
	}
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	m.treatments[t.ID] = t
	return nil
}

func (m *mockTreatmentRepo) GetByID(_ context.Context, id uuid.UUID) (*Treatment, error) {
	t, ok := m.treatments[id]
	if !ok {
		return nil, ErrTreatmentNotFound
	}
	return t, nil
}

func (m *mockTreatmentRepo) GetByName(_ context.Context, name string) (*Treatment, error) {
	for _, t := range m.treatments {
		if strings.EqualFold(t.Name, name) {
			return t, nil
		}
	}
	return nil, ErrTreatmentNotFound
}

func (m *mockTreatmentRepo) Update(_ context.Context, t *Treatment) error {
	if _, ok := m.treatments[t.ID]; !ok {
		return ErrTreatmentNotFound
	}
	m.treatments[t.ID] = t
	return nil
}

func (m *mockTreatmentRepo) List(_ context.Context, limit, offset int) ([]*Treatment, int, error) {
	var all []*Treatment
	for _, t := range m.treatments {
		all = append(all, t)
	}
	return all, len(all), nil
}

type procKey struct {
	appointment uuid.UUID
	treatment   uuid.UUID
	dedup       string
}

type mockProcedureRepo struct {
	records map[procKey]*ProcedureRecord
}

func newMockProcedureRepo() *mockProcedureRepo {
	return &mockProcedureRepo{records: make(map[procKey]*ProcedureRecord)}
}

func (m *mockProcedureRepo) Insert(_ context.Context, p *ProcedureRecord) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	m.records[procKey{p.AppointmentID, p.TreatmentID, p.DedupKey}] = p
	return nil
}

func (m *mockProcedureRepo) Exists(_ context.Context, appointmentID, treatmentID uuid.UUID, dedupKey string) (bool, error) {
	_, ok := m.records[procKey{appointmentID, treatmentID, dedupKey}]
	return ok, nil
}

func (m *mockProcedureRepo) ListByAppointment(_ context.Context, appointmentID uuid.UUID) ([]*ProcedureRecord, error) {
	var items []*ProcedureRecord
	for _, p := range m.records {
		if p.AppointmentID == appointmentID {
			items = append(items, p)
		}
	}
	return items, nil
}

func newTestService() (*Service, *mockTreatmentRepo, *mockProcedureRepo) {
	treatments := newMockTreatmentRepo()
	procedures := newMockProcedureRepo()
	return NewService(treatments, procedures, zerolog.Nop()), treatments, procedures
}

func TestUpsertTreatment_CreatesWithZeroPrice(t *testing.T) {
	svc, _, _ := newTestService()

	created, wasCreated, err := svc.UpsertTreatment(context.Background(), "Caries")
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if !wasCreated {
		t.Error("expected created=true on first upsert")
	}
	if created.BasePrice != 0 {
		t.Errorf("expected zero base price, got %v", created.BasePrice)
	}
	if !created.Active {
		t.Error("expected auto-created treatment to be active")
	}
}

func TestUpsertTreatment_CaseInsensitiveMatch(t *testing.T) {
	svc, _, _ := newTestService()

	first, _, err := svc.UpsertTreatment(context.Background(), "Caries")
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	second, wasCreated, err := svc.UpsertTreatment(context.Background(), "CARIES")
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if wasCreated {
		t.Error("expected created=false for a case-insensitive match")
	}
	if second.ID != first.ID {
		t.Error("expected the same catalog entry for both casings")
	}
}

func TestSyncFindings_SameTreatmentDifferentSites(t *testing.T) {
	svc, _, procedures := newTestService()
	apptID := uuid.New()

	findings := []string{"Tooth 14: CARIES", "Tooth 14 (oclusal): CARIES"}
	if err := svc.SyncFindings(context.Background(), apptID, findings); err != nil {
		t.Fatalf("sync: %v", err)
	}

	records, _ := procedures.ListByAppointment(context.Background(), apptID)
	if len(records) != 2 {
		t.Fatalf("expected 2 procedure records, got %d", len(records))
	}
	if records[0].TreatmentID != records[1].TreatmentID {
		t.Error("expected both findings to map to the same treatment")
	}
}

func TestSyncFindings_Idempotent(t *testing.T) {
	svc, _, procedures := newTestService()
	apptID := uuid.New()
	findings := []string{"Tooth 11: CARIES", "Tooth 21 (mesial): OBTURACION"}

	if err := svc.SyncFindings(context.Background(), apptID, findings); err != nil {
		t.Fatalf("first sync: %v", err)
	}
	if err := svc.SyncFindings(context.Background(), apptID, findings); err != nil {
		t.Fatalf("second sync: %v", err)
	}

	records, _ := procedures.ListByAppointment(context.Background(), apptID)
	if len(records) != 2 {
		t.Errorf("expected 2 records after re-run, got %d", len(records))
	}
}

func TestSyncFindings_NoRetroactiveRepricing(t *testing.T) {
	svc, treatments, procedures := newTestService()
	apptID := uuid.New()

	if err := svc.SyncFindings(context.Background(), apptID, []string{"Tooth 11: CARIES"}); err != nil {
		t.Fatalf("sync: %v", err)
	}

	entry, err := treatments.GetByName(context.Background(), "Caries")
	if err != nil {
		t.Fatalf("catalog lookup: %v", err)
	}
	entry.BasePrice = 120

	if err := svc.SyncFindings(context.Background(), apptID, []string{"Tooth 11: CARIES", "Tooth 12: CARIES"}); err != nil {
		t.Fatalf("sync after reprice: %v", err)
	}

	records, _ := procedures.ListByAppointment(context.Background(), apptID)
	priceByDedup := map[string]float64{}
	for _, r := range records {
		priceByDedup[r.DedupKey] = r.AppliedPrice
	}
	if priceByDedup["Tooth 11: CARIES"] != 0 {
		t.Errorf("existing record was re-priced: %v", priceByDedup["Tooth 11: CARIES"])
	}
	if priceByDedup["Tooth 12: CARIES"] != 120 {
		t.Errorf("new record should use current price, got %v", priceByDedup["Tooth 12: CARIES"])
	}
}

func TestSyncFindings_SkipsMalformedLines(t *testing.T) {
	svc, _, procedures := newTestService()
	apptID := uuid.New()

	findings := []string{"no separator here", "Tooth 11: ", "Tooth 12: CARIES"}
	if err := svc.SyncFindings(context.Background(), apptID, findings); err != nil {
		t.Fatalf("sync: %v", err)
	}

	records, _ := procedures.ListByAppointment(context.Background(), apptID)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].DedupKey != "Tooth 12: CARIES" {
		t.Errorf("unexpected record %q", records[0].DedupKey)
	}
}

func TestSyncFindings_PartialFailureContinues(t *testing.T) {
	svc, treatments, procedures := newTestService()
	treatments.failCreate["Endodoncia"] = true
	apptID := uuid.New()

	findings := []string{"Tooth 11: ENDODONCIA", "Tooth 12: CARIES"}
	if err := svc.SyncFindings(context.Background(), apptID, findings); err != nil {
		t.Fatalf("sync: %v", err)
	}

	records, _ := procedures.ListByAppointment(context.Background(), apptID)
	if len(records) != 1 {
		t.Fatalf("expected the healthy finding to sync, got %d records", len(records))
	}
	if records[0].DedupKey != "Tooth 12: CARIES" {
		t.Errorf("unexpected record %q", records[0].DedupKey)
	}
}

func TestNormalizeTreatmentName(t *testing.T) {
	cases := map[string]string{
		"CARIES":      "Caries",
		"caries":      "Caries",
		"  sellante ": "Sellante",
		"óseo":        "Óseo",
	}
	for in, want := range cases {
		if got := normalizeTreatmentName(in); got != want {
			t.Errorf("normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCreateTreatment_RejectsDuplicateName(t *testing.T) {
	svc, _, _ := newTestService()
	if err := svc.CreateTreatment(context.Background(), &Treatment{Name: "Limpieza", BasePrice: 40}); err != nil {
		t.Fatalf("create: %v", err)
	}
	err := svc.CreateTreatment(context.Background(), &Treatment{Name: "LIMPIEZA", BasePrice: 50})
	if err == nil {
		t.Fatal("expected duplicate name rejection")
	}
}

func TestGetTreatment_NotFound(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.GetTreatment(context.Background(), uuid.New())
	if !errors.Is(err, ErrTreatmentNotFound) {
		t.Errorf("expected ErrTreatmentNotFound, got %v", err)
	}
}
