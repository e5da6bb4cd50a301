package timeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/odontari/clinic/internal/platform/auth"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Append records an arbitrary clinical event. OccurredAt defaults to now and
// RecordedBy is taken from the authenticated user when it parses as a UUID.
func (s *Service) Append(ctx context.Context, e *Entry) error {
	if e.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if e.EventType == "" {
		return fmt.Errorf("event_type is required")
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	if e.RecordedBy == nil {
		if uid, err := uuid.Parse(auth.UserIDFromContext(ctx)); err == nil {
			e.RecordedBy = &uid
		}
	}
	return s.repo.Insert(ctx, e)
}

// RecordChartUpdate appends the timeline entry for a saved chart. The
// description carries the extracted findings, one per line, under a title
// line, so the history reads without opening the chart itself.
func (s *Service) RecordChartUpdate(ctx context.Context, patientID uuid.UUID, chartLabel string, findings []string, appointmentID *uuid.UUID) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s updated with %d finding(s).", chartLabel, len(findings))
	for _, f := range findings {
		b.WriteString("\n")
		b.WriteString(f)
	}
	return s.Append(ctx, &Entry{
		PatientID:     patientID,
		EventType:     fmt.Sprintf("%s updated", chartLabel),
		Description:   b.String(),
		AppointmentID: appointmentID,
	})
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Entry, int, error) {
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}
