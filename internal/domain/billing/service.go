package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var ErrTreatmentNotFound = errors.New("treatment not found")

type Service struct {
	treatments TreatmentRepository
	procedures ProcedureRepository
	logger     zerolog.Logger
}

func NewService(treatments TreatmentRepository, procedures ProcedureRepository, logger zerolog.Logger) *Service {
	return &Service{treatments: treatments, procedures: procedures, logger: logger}
}

func (s *Service) CreateTreatment(ctx context.Context, t *Treatment) error {
	if t.Name == "" {
		return fmt.Errorf("name is required")
	}
	if t.BasePrice < 0 {
		return fmt.Errorf("base_price must not be negative")
	}
	if existing, err := s.treatments.GetByName(ctx, t.Name); err == nil && existing != nil {
		return fmt.Errorf("treatment %q already exists", existing.Name)
	}
	t.Active = true
	return s.treatments.Create(ctx, t)
}

func (s *Service) GetTreatment(ctx context.Context, id uuid.UUID) (*Treatment, error) {
	return s.treatments.GetByID(ctx, id)
}

func (s *Service) UpdateTreatment(ctx context.Context, t *Treatment) error {
	if t.Name == "" {
		return fmt.Errorf("name is required")
	}
	if t.BasePrice < 0 {
		return fmt.Errorf("base_price must not be negative")
	}
	return s.treatments.Update(ctx, t)
}

func (s *Service) ListTreatments(ctx context.Context, limit, offset int) ([]*Treatment, int, error) {
	return s.treatments.List(ctx, limit, offset)
}

// UpsertTreatment returns the catalog entry matching name (case-insensitive),
// creating one with a zero base price when no match exists. The returned flag
// reports whether a new entry was created, so callers can audit auto-created
// entries instead of discovering them later on an invoice.
func (s *Service) UpsertTreatment(ctx context.Context, name string) (*Treatment, bool, error) {
	if name == "" {
		return nil, false, fmt.Errorf("name is required")
	}
	existing, err := s.treatments.GetByName(ctx, name)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrTreatmentNotFound) {
		return nil, false, err
	}
	t := &Treatment{Name: name, BasePrice: 0, Active: true}
	if err := s.treatments.Create(ctx, t); err != nil {
		return nil, false, err
	}
	s.logger.Info().Str("treatment", name).Str("treatment_id", t.ID.String()).
		Msg("auto-created treatment catalog entry")
	return t, true, nil
}

func (s *Service) ListProcedures(ctx context.Context, appointmentID uuid.UUID) ([]*ProcedureRecord, error) {
	return s.procedures.ListByAppointment(ctx, appointmentID)
}
