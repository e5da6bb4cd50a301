package billing

import (
	"time"

	"github.com/google/uuid"
)

// Treatment is a catalog entry. Names are unique case-insensitively; the
// stored casing is whatever the entry was created with.
type Treatment struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	BasePrice float64   `db:"base_price" json:"base_price"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ProcedureRecord ties one chart finding to a treatment performed during an
// appointment. AppliedPrice is frozen at creation time; later catalog price
// changes never touch existing records.
type ProcedureRecord struct {
	ID            uuid.UUID `db:"id" json:"id"`
	AppointmentID uuid.UUID `db:"appointment_id" json:"appointment_id"`
	TreatmentID   uuid.UUID `db:"treatment_id" json:"treatment_id"`
	AppliedPrice  float64   `db:"applied_price" json:"applied_price"`
	Performed     bool      `db:"performed" json:"performed"`
	DedupKey      string    `db:"dedup_key" json:"dedup_key"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}
