package billing

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

// SyncFindings turns a list of chart findings into unperformed procedure
// records for the appointment. Each finding line splits on its first ": ";
// the suffix, normalized, is the treatment name, while the original unparsed
// line serves as the dedup key. Keying on the line rather than the treatment
// name means two findings on different surfaces of the same tooth both get a
// record even when they map to the same treatment.
//
// The sync is idempotent: a record already present for (appointment,
// treatment, dedup key) is left alone, and its applied price is never
// revised when the catalog price changes later. Failures on a single
// finding are logged and skipped; the remaining findings still sync.
func (s *Service) SyncFindings(ctx context.Context, appointmentID uuid.UUID, findings []string) error {
	for _, finding := range findings {
		_, label, ok := strings.Cut(finding, ": ")
		if !ok || strings.TrimSpace(label) == "" {
			continue
		}
		name := normalizeTreatmentName(label)

		treatment, _, err := s.UpsertTreatment(ctx, name)
		if err != nil {
			s.logger.Warn().Err(err).Str("finding", finding).
				Msg("skipping finding: treatment lookup failed")
			continue
		}

		exists, err := s.procedures.Exists(ctx, appointmentID, treatment.ID, finding)
		if err != nil {
			s.logger.Warn().Err(err).Str("finding", finding).
				Msg("skipping finding: duplicate check failed")
			continue
		}
		if exists {
			continue
		}

		rec := &ProcedureRecord{
			AppointmentID: appointmentID,
			TreatmentID:   treatment.ID,
			AppliedPrice:  treatment.BasePrice,
			Performed:     false,
			DedupKey:      finding,
		}
		if err := s.procedures.Insert(ctx, rec); err != nil {
			s.logger.Warn().Err(err).Str("finding", finding).
				Msg("skipping finding: procedure insert failed")
			continue
		}
	}
	return nil
}

// normalizeTreatmentName lowercases the label and capitalizes its first rune,
// so "CARIES", "caries" and "Caries" all resolve to the same catalog entry
// name.
func normalizeTreatmentName(label string) string {
	label = strings.TrimSpace(strings.ToLower(label))
	if label == "" {
		return ""
	}
	first, size := utf8.DecodeRuneInString(label)
	return string(unicode.ToUpper(first)) + label[size:]
}
