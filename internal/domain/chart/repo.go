package chart

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists chart revisions. Rows are append only; the current
// chart for (patient, kind) is the revision with the highest number.
type Repository interface {
	// InsertRevision stores r with the next revision number for
	// (patient, kind) and fills in r.Revision.
	InsertRevision(ctx context.Context, r *Revision) error
	Latest(ctx context.Context, patientID uuid.UUID, kind Kind) (*Revision, error)
	ListRevisions(ctx context.Context, patientID uuid.UUID, kind Kind, limit, offset int) ([]*Revision, int, error)
}
