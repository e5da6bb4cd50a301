package chart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PatientLookup resolves a patient's birth date, used to pick the odontogram
// variant. A nil date means the birth date is unknown.
type PatientLookup interface {
	BirthDate(ctx context.Context, id uuid.UUID) (*time.Time, error)
}

// AppointmentLookup checks that an appointment referenced by a save exists.
type AppointmentLookup interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// HistoryRecorder appends the timeline entry for a successful save.
type HistoryRecorder interface {
	RecordChartUpdate(ctx context.Context, patientID uuid.UUID, chartLabel string, findings []string, appointmentID *uuid.UUID) error
}

// ProcedureSyncer turns findings into procedure records for an appointment.
type ProcedureSyncer interface {
	SyncFindings(ctx context.Context, appointmentID uuid.UUID, findings []string) error
}

// Service orchestrates chart saves: validate, persist, extract findings,
// then record history and sync procedures.
type Service struct {
	repo         Repository
	patients     PatientLookup
	appointments AppointmentLookup
	history      HistoryRecorder
	syncer       ProcedureSyncer
	logger       zerolog.Logger
	now          func() time.Time
}

func NewService(repo Repository, patients PatientLookup, appointments AppointmentLookup,
	history HistoryRecorder, syncer ProcedureSyncer, logger zerolog.Logger) *Service {
	return &Service{
		repo:         repo,
		patients:     patients,
		appointments: appointments,
		history:      history,
		syncer:       syncer,
		logger:       logger,
		now:          time.Now,
	}
}

// SaveResult reports what a save produced: the new revision number and the
// findings extracted from the stored document.
type SaveResult struct {
	Revision      int      `json:"revision"`
	SchemaVersion int      `json:"schema_version"`
	Findings      []string `json:"findings"`
}

// Save validates and persists a new revision of the patient's chart.
// Everything that can reject the save runs before the write; once the
// revision is stored, history recording and procedure sync are best-effort
// and never fail the save.
func (s *Service) Save(ctx context.Context, patientID uuid.UUID, kind Kind, document []byte, editorID, appointmentID *uuid.UUID) (*SaveResult, error) {
	birth, err := s.patients.BirthDate(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("look up patient %s: %w", patientID, err)
	}

	if kind.IsOdontogram() {
		if expected := OdontogramKindFor(birth, s.now()); kind != expected {
			return nil, validationErrorf("chart kind %s does not match patient age bracket (expected %s)", kind, expected)
		}
	}
	if len(document) > kind.MaxDocumentSize() {
		return nil, validationErrorf("document exceeds %d bytes", kind.MaxDocumentSize())
	}
	if appointmentID != nil {
		ok, err := s.appointments.Exists(ctx, *appointmentID)
		if err != nil {
			return nil, fmt.Errorf("look up appointment %s: %w", appointmentID, err)
		}
		if !ok {
			return nil, ErrAppointmentNotFound
		}
	}

	rev := &Revision{
		PatientID:     patientID,
		Kind:          kind,
		SchemaVersion: SchemaVersion,
		Document:      document,
		EditorID:      editorID,
		AppointmentID: appointmentID,
	}
	if err := s.repo.InsertRevision(ctx, rev); err != nil {
		return nil, fmt.Errorf("persist chart revision: %w", err)
	}

	findings, err := ExtractFindings(kind, document)
	if err != nil {
		s.logger.Warn().Err(err).Str("patient_id", patientID.String()).Str("kind", string(kind)).
			Msg("chart saved but findings could not be extracted")
		findings = nil
	}

	if err := s.history.RecordChartUpdate(ctx, patientID, kind.Label(), findings, appointmentID); err != nil {
		s.logger.Error().Err(err).Str("patient_id", patientID.String()).
			Msg("chart saved but timeline entry failed")
	}
	if appointmentID != nil {
		if err := s.syncer.SyncFindings(ctx, *appointmentID, findings); err != nil {
			s.logger.Error().Err(err).Str("appointment_id", appointmentID.String()).
				Msg("chart saved but procedure sync failed")
		}
	}

	return &SaveResult{Revision: rev.Revision, SchemaVersion: rev.SchemaVersion, Findings: findings}, nil
}

// Get returns the current document for (patient, kind), byte for byte as it
// was saved, or "{}" when no revision exists yet.
func (s *Service) Get(ctx context.Context, patientID uuid.UUID, kind Kind) ([]byte, error) {
	rev, err := s.repo.Latest(ctx, patientID, kind)
	if errors.Is(err, ErrNoChart) {
		return []byte("{}"), nil
	}
	if err != nil {
		return nil, err
	}
	return rev.Document, nil
}

func (s *Service) ListRevisions(ctx context.Context, patientID uuid.UUID, kind Kind, limit, offset int) ([]*Revision, int, error) {
	return s.repo.ListRevisions(ctx, patientID, kind, limit, offset)
}

// Summary holds the aggregate view for one chart kind; exactly one of the
// two sections is set.
type Summary struct {
	Kind           Kind               `json:"kind"`
	Odontogram     *OdontogramSummary `json:"odontogram,omitempty"`
	Periodontogram *PerioSummary      `json:"periodontogram,omitempty"`
}

// Summarize aggregates the current chart. A document that no longer parses
// yields an empty summary rather than an error.
func (s *Service) Summarize(ctx context.Context, patientID uuid.UUID, kind Kind) (*Summary, error) {
	doc, err := s.Get(ctx, patientID, kind)
	if err != nil {
		return nil, err
	}
	out := &Summary{Kind: kind}
	if kind == KindPeriodontogram {
		perio, err := SummarizePerio(doc)
		if err != nil {
			s.logger.Warn().Err(err).Str("patient_id", patientID.String()).
				Msg("periodontogram summary fell back to empty")
			perio = &PerioSummary{}
		}
		out.Periodontogram = perio
		return out, nil
	}
	findings, err := ExtractFindings(kind, doc)
	if err != nil {
		s.logger.Warn().Err(err).Str("patient_id", patientID.String()).
			Msg("odontogram summary fell back to empty")
		findings = nil
	}
	out.Odontogram = SummarizeOdontogram(findings)
	return out, nil
}
