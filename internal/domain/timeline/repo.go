package timeline

import (
	"context"

	"github.com/google/uuid"
)

// Repository is intentionally append only: there is no update or delete.
type Repository interface {
	Insert(ctx context.Context, e *Entry) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Entry, int, error)
}
