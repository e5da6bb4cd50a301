package integration

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/odontari/clinic/internal/domain/appointment"
	"github.com/odontari/clinic/internal/domain/billing"
	"github.com/odontari/clinic/internal/domain/chart"
	"github.com/odontari/clinic/internal/domain/patient"
	"github.com/odontari/clinic/internal/domain/timeline"
)

func newChartService() (*chart.Service, *billing.Service, *timeline.Service) {
	pool := globalDB.Pool
	patientSvc := patient.NewService(patient.NewRepoPG(pool))
	appointmentSvc := appointment.NewService(appointment.NewRepoPG(pool))
	timelineSvc := timeline.NewService(timeline.NewRepoPG(pool))
	billingSvc := billing.NewService(billing.NewTreatmentRepoPG(pool), billing.NewProcedureRepoPG(pool), zerolog.Nop())
	chartSvc := chart.NewService(chart.NewRepoPG(pool), patientSvc, appointmentSvc, timelineSvc, billingSvc, zerolog.Nop())
	return chartSvc, billingSvc, timelineSvc
}

func TestChartSaveFlow(t *testing.T) {
	ctx := context.Background()
	clinicID := uniqueClinicID("chart")
	createClinicSchema(t, ctx, clinicID)
	defer dropClinicSchema(t, ctx, clinicID)

	birth := time.Now().UTC().AddDate(-30, 0, 0)
	p := createTestPatient(t, ctx, clinicID, &birth)
	appt := createTestAppointment(t, ctx, clinicID, p.ID)

	chartSvc, billingSvc, timelineSvc := newChartService()
	doc := []byte(`{"teeth":{"14":{"status":"CARIES","surfaces":{}},"16":{"status":"NONE","surfaces":{"oclusal":"CARIES"}}},"observations":""}`)

	err := withClinicConn(ctx, globalDB.Pool, clinicID, func(ctx context.Context) error {
		result, err := chartSvc.Save(ctx, p.ID, chart.KindOdontogramAdult, doc, nil, &appt.ID)
		if err != nil {
			return err
		}
		if result.Revision != 1 {
			t.Errorf("revision = %d, want 1", result.Revision)
		}
		if len(result.Findings) != 2 {
			t.Errorf("findings = %v, want 2 entries", result.Findings)
		}

		// Round trip
		got, err := chartSvc.Get(ctx, p.ID, chart.KindOdontogramAdult)
		if err != nil {
			return err
		}
		if !bytes.Equal(got, doc) {
			t.Errorf("round trip changed document: %s", got)
		}

		// Procedure records were created for the appointment
		records, err := billingSvc.ListProcedures(ctx, appt.ID)
		if err != nil {
			return err
		}
		if len(records) != 2 {
			t.Errorf("expected 2 procedure records, got %d", len(records))
		}

		// Timeline carries the save
		entries, _, err := timelineSvc.ListByPatient(ctx, p.ID, 20, 0)
		if err != nil {
			return err
		}
		if len(entries) != 1 {
			t.Fatalf("expected 1 timeline entry, got %d", len(entries))
		}
		if entries[0].EventType != "Odontogram (adult) updated" {
			t.Errorf("event type = %q", entries[0].EventType)
		}

		// Re-saving the same document is idempotent on the billing side
		// and appends a second revision on the chart side.
		result, err = chartSvc.Save(ctx, p.ID, chart.KindOdontogramAdult, doc, nil, &appt.ID)
		if err != nil {
			return err
		}
		if result.Revision != 2 {
			t.Errorf("revision = %d, want 2", result.Revision)
		}
		records, err = billingSvc.ListProcedures(ctx, appt.ID)
		if err != nil {
			return err
		}
		if len(records) != 2 {
			t.Errorf("expected still 2 procedure records, got %d", len(records))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("chart save flow: %v", err)
	}
}

func TestChartAgeBracketRejection(t *testing.T) {
	ctx := context.Background()
	clinicID := uniqueClinicID("agebr")
	createClinicSchema(t, ctx, clinicID)
	defer dropClinicSchema(t, ctx, clinicID)

	birth := time.Now().UTC().AddDate(-8, 0, 0)
	p := createTestPatient(t, ctx, clinicID, &birth)
	chartSvc, _, _ := newChartService()

	err := withClinicConn(ctx, globalDB.Pool, clinicID, func(ctx context.Context) error {
		_, err := chartSvc.Save(ctx, p.ID, chart.KindOdontogramAdult, []byte(`{"teeth":{}}`), nil, nil)
		return err
	})
	if err == nil {
		t.Fatal("expected age bracket rejection for adult chart on a child")
	}
}

func TestClinicIsolation(t *testing.T) {
	ctx := context.Background()
	clinicA := uniqueClinicID("isoa")
	clinicB := uniqueClinicID("isob")
	createClinicSchema(t, ctx, clinicA)
	defer dropClinicSchema(t, ctx, clinicA)
	createClinicSchema(t, ctx, clinicB)
	defer dropClinicSchema(t, ctx, clinicB)

	birth := time.Now().UTC().AddDate(-30, 0, 0)
	p := createTestPatient(t, ctx, clinicA, &birth)
	chartSvc, _, _ := newChartService()

	doc := []byte(`{"teeth":{"11":{"status":"CARIES","surfaces":{}}}}`)
	err := withClinicConn(ctx, globalDB.Pool, clinicA, func(ctx context.Context) error {
		_, err := chartSvc.Save(ctx, p.ID, chart.KindOdontogramAdult, doc, nil, nil)
		return err
	})
	if err != nil {
		t.Fatalf("save in clinic A: %v", err)
	}

	err = withClinicConn(ctx, globalDB.Pool, clinicB, func(ctx context.Context) error {
		got, err := chartSvc.Get(ctx, p.ID, chart.KindOdontogramAdult)
		if err != nil {
			return err
		}
		if string(got) != "{}" {
			t.Errorf("clinic B should not see clinic A's chart, got %s", got)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("get in clinic B: %v", err)
	}
}

func TestChartDocumentStoredVerbatim(t *testing.T) {
	ctx := context.Background()
	clinicID := uniqueClinicID("verb")
	createClinicSchema(t, ctx, clinicID)
	defer dropClinicSchema(t, ctx, clinicID)

	birth := time.Now().UTC().AddDate(-30, 0, 0)
	p := createTestPatient(t, ctx, clinicID, &birth)
	chartSvc, _, _ := newChartService()

	// Non-canonical formatting: unsorted keys, irregular whitespace. A jsonb
	// column would re-serialize this; the stored bytes must come back exact.
	doc := []byte(`{"observations": "control semestral",  "teeth": {"18": {"status":"CARIES","surfaces":{}}, "11": {"status":"NONE","surfaces":{"mesial":"CARIES"}}}}`)

	err := withClinicConn(ctx, globalDB.Pool, clinicID, func(ctx context.Context) error {
		if _, err := chartSvc.Save(ctx, p.ID, chart.KindOdontogramAdult, doc, nil, nil); err != nil {
			return err
		}
		got, err := chartSvc.Get(ctx, p.ID, chart.KindOdontogramAdult)
		if err != nil {
			return err
		}
		if !bytes.Equal(got, doc) {
			t.Errorf("stored document was rewritten:\n got: %s\nwant: %s", got, doc)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("verbatim round trip: %v", err)
	}
}

func TestChartMalformedDocumentStillPersists(t *testing.T) {
	ctx := context.Background()
	clinicID := uniqueClinicID("malf")
	createClinicSchema(t, ctx, clinicID)
	defer dropClinicSchema(t, ctx, clinicID)

	birth := time.Now().UTC().AddDate(-30, 0, 0)
	p := createTestPatient(t, ctx, clinicID, &birth)
	chartSvc, _, _ := newChartService()

	// A document that does not decode must still save with zero findings
	// rather than fail at the storage layer.
	doc := []byte(`{"teeth": {"11":`)

	err := withClinicConn(ctx, globalDB.Pool, clinicID, func(ctx context.Context) error {
		result, err := chartSvc.Save(ctx, p.ID, chart.KindOdontogramAdult, doc, nil, nil)
		if err != nil {
			return err
		}
		if len(result.Findings) != 0 {
			t.Errorf("expected no findings for a malformed document, got %v", result.Findings)
		}
		got, err := chartSvc.Get(ctx, p.ID, chart.KindOdontogramAdult)
		if err != nil {
			return err
		}
		if !bytes.Equal(got, doc) {
			t.Errorf("malformed document not preserved: %s", got)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("malformed document save: %v", err)
	}
}
