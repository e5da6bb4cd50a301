package billing

import (
	"context"

	"github.com/google/uuid"
)

type TreatmentRepository interface {
	Create(ctx context.Context, t *Treatment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Treatment, error)
	// GetByName matches case-insensitively.
	GetByName(ctx context.Context, name string) (*Treatment, error)
	Update(ctx context.Context, t *Treatment) error
	List(ctx context.Context, limit, offset int) ([]*Treatment, int, error)
}

type ProcedureRepository interface {
	Insert(ctx context.Context, p *ProcedureRecord) error
	// Exists reports whether a record with the same appointment, treatment
	// and dedup key is already present.
	Exists(ctx context.Context, appointmentID, treatmentID uuid.UUID, dedupKey string) (bool, error)
	ListByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]*ProcedureRecord, error)
}
