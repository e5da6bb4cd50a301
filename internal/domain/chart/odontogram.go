package chart

import "strconv"

func toothKey(n int) string { return strconv.Itoa(n) }

// Tooth and surface states. The enumeration is open: renderers may write
// states not listed here (SELLANTE, IMPLANTE, ...) and they are carried
// through extraction verbatim.
const (
	StateNone         = "NONE"
	StateCaries       = "CARIES"
	StateRestauracion = "RESTAURACION"
	StateObturacion   = "OBTURACION"
	StateAusente      = "AUSENTE"
	StateExtraido     = "EXTRAIDO"
	StateExfoliado    = "EXFOLIADO"
	StateEndodoncia   = "ENDODONCIA"
)

// Surfaces in rendering order.
var Surfaces = []string{"oclusal", "vestibular", "palatino", "mesial", "distal"}

// AdultTeeth is the 32-tooth permanent dentition in two-digit notation,
// quadrant by quadrant.
var AdultTeeth = []int{
	11, 12, 13, 14, 15, 16, 17, 18,
	21, 22, 23, 24, 25, 26, 27, 28,
	31, 32, 33, 34, 35, 36, 37, 38,
	41, 42, 43, 44, 45, 46, 47, 48,
}

// PediatricTeeth is the 20-tooth primary dentition. It reuses the adult
// numeric codes for the five anterior-to-second-molar positions per quadrant
// rather than the 5x-8x primary notation.
var PediatricTeeth = []int{
	11, 12, 13, 14, 15,
	21, 22, 23, 24, 25,
	31, 32, 33, 34, 35,
	41, 42, 43, 44, 45,
}

// TeethFor returns the tooth set for an odontogram kind.
func TeethFor(kind Kind) []int {
	if kind == KindOdontogramPediatric {
		return PediatricTeeth
	}
	return AdultTeeth
}

// ToothRecord is one tooth's entry in the odontogram document. A whole-tooth
// status other than NONE wins over surfaces; per-surface states only apply
// while the whole-tooth status stays NONE.
type ToothRecord struct {
	Status   string            `json:"status"`
	Surfaces map[string]string `json:"surfaces"`
}

// OdontogramDocument is the JSON contract shared with the chart renderer.
// Tooth numbers are object keys, as strings.
type OdontogramDocument struct {
	Teeth        map[string]ToothRecord `json:"teeth"`
	Observations string                 `json:"observations"`
}

// DefaultOdontogram builds a document with every tooth of the kind's set
// present and at baseline.
func DefaultOdontogram(kind Kind) *OdontogramDocument {
	doc := &OdontogramDocument{Teeth: make(map[string]ToothRecord)}
	for _, n := range TeethFor(kind) {
		doc.Teeth[toothKey(n)] = ToothRecord{Status: StateNone, Surfaces: map[string]string{}}
	}
	return doc
}

// MergeOdontogram lays loaded on top of a fresh default document. Only tooth
// numbers in the kind's set are taken; anything else in loaded is ignored so
// that documents written against a different tooth set load without error.
// Whole-tooth precedence is enforced here: a non-NONE status clears the
// tooth's surfaces.
func MergeOdontogram(kind Kind, loaded *OdontogramDocument) *OdontogramDocument {
	doc := DefaultOdontogram(kind)
	if loaded == nil {
		return doc
	}
	doc.Observations = loaded.Observations
	for key := range doc.Teeth {
		rec, ok := loaded.Teeth[key]
		if !ok {
			continue
		}
		merged := ToothRecord{Status: StateNone, Surfaces: map[string]string{}}
		if rec.Status != "" {
			merged.Status = rec.Status
		}
		if merged.Status == StateNone {
			for _, surface := range Surfaces {
				if v, ok := rec.Surfaces[surface]; ok && v != "" {
					merged.Surfaces[surface] = v
				}
			}
		}
		doc.Teeth[key] = merged
	}
	return doc
}
