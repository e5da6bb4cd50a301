package chart

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind names one of the chart documents kept per patient. The odontogram is
// split into an adult and a pediatric variant; the periodontogram has a
// single variant for all ages.
type Kind string

const (
	KindOdontogramAdult     Kind = "odontogram_adult"
	KindOdontogramPediatric Kind = "odontogram_pediatric"
	KindPeriodontogram      Kind = "periodontogram"
)

// SchemaVersion marks the document layout each revision was written with, so
// future layout changes can migrate old rows instead of guessing.
const SchemaVersion = 1

func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindOdontogramAdult, KindOdontogramPediatric, KindPeriodontogram:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown chart kind %q", s)
}

// IsOdontogram reports whether the kind is one of the two odontogram
// variants, which are the only kinds subject to the age bracket check.
func (k Kind) IsOdontogram() bool {
	return k == KindOdontogramAdult || k == KindOdontogramPediatric
}

// Label is the human-readable name used in timeline entries. The odontogram
// variants stay distinguishable so history entries record which chart was
// edited.
func (k Kind) Label() string {
	switch k {
	case KindOdontogramAdult:
		return "Odontogram (adult)"
	case KindOdontogramPediatric:
		return "Odontogram (pediatric)"
	}
	return "Periodontogram"
}

// MaxDocumentSize is the ceiling, in bytes, accepted for a document of this
// kind. Periodontograms carry per-site measurements and get more headroom.
func (k Kind) MaxDocumentSize() int {
	if k == KindPeriodontogram {
		return 500000
	}
	return 200000
}

// Revision is one saved version of a chart. Saves only ever insert; the
// current chart is the revision with the highest number for (patient, kind).
type Revision struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	PatientID     uuid.UUID       `db:"patient_id" json:"patient_id"`
	Kind          Kind            `db:"kind" json:"kind"`
	Revision      int             `db:"revision" json:"revision"`
	SchemaVersion int             `db:"schema_version" json:"schema_version"`
	Document      json.RawMessage `db:"document" json:"document"`
	EditorID      *uuid.UUID      `db:"editor_id" json:"editor_id,omitempty"`
	AppointmentID *uuid.UUID      `db:"appointment_id" json:"appointment_id,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}

// PediatricAt reports whether a patient born at birth falls in the pediatric
// bracket as of now. Age is estimated as whole years of 365.25 days, and the
// bracket is [0, 14). A birth date in the future yields a negative age and
// is treated as adult.
func PediatricAt(birth, now time.Time) bool {
	days := now.Sub(birth).Hours() / 24
	years := int(days / 365.25)
	if days < 0 {
		return false
	}
	return years < 14
}

// OdontogramKindFor picks the odontogram variant for a patient. An unknown
// birth date defaults to the adult chart.
func OdontogramKindFor(birth *time.Time, now time.Time) Kind {
	if birth != nil && PediatricAt(*birth, now) {
		return KindOdontogramPediatric
	}
	return KindOdontogramAdult
}
