package timeline

import (
	"time"

	"github.com/google/uuid"
)

// Entry is one event in a patient's clinical history. Entries are append
// only; corrections are made by appending, never by editing.
type Entry struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	PatientID     uuid.UUID  `db:"patient_id" json:"patient_id"`
	EventType     string     `db:"event_type" json:"event_type"`
	Description   string     `db:"description" json:"description"`
	AppointmentID *uuid.UUID `db:"appointment_id" json:"appointment_id,omitempty"`
	RecordedBy    *uuid.UUID `db:"recorded_by" json:"recorded_by,omitempty"`
	OccurredAt    time.Time  `db:"occurred_at" json:"occurred_at"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
}
