package chart

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// MaxAffectedTeeth caps the affected-teeth list in odontogram summaries.
const MaxAffectedTeeth = 20

// OdontogramSummary counts findings by clinical category. AffectedTeeth is
// the distinct tooth numbers with at least one finding, ascending, capped at
// MaxAffectedTeeth.
type OdontogramSummary struct {
	Caries        int   `json:"caries"`
	Restorations  int   `json:"restorations"`
	Missing       int   `json:"missing"`
	Endodontics   int   `json:"endodontics"`
	Other         int   `json:"other"`
	Total         int   `json:"total"`
	AffectedTeeth []int `json:"affected_teeth"`
}

// PerioSummary is computed by scanning the document directly rather than the
// finding list, so site-level counts are exact.
type PerioSummary struct {
	BleedingSites int `json:"bleeding_sites"`
	PlaqueSites   int `json:"plaque_sites"`
	PocketsGE4    int `json:"pockets_ge_4mm"`
	PocketsGE6    int `json:"pockets_ge_6mm"`
	MissingTeeth  int `json:"missing_teeth"`
	Implants      int `json:"implants"`
}

// SummarizeOdontogram aggregates an already-extracted finding list.
func SummarizeOdontogram(findings []string) *OdontogramSummary {
	s := &OdontogramSummary{}
	affected := map[int]bool{}
	for _, finding := range findings {
		_, label, ok := strings.Cut(finding, ": ")
		if !ok {
			continue
		}
		switch strings.ToUpper(label) {
		case StateCaries:
			s.Caries++
		case StateRestauracion, StateObturacion:
			s.Restorations++
		case StateAusente, StateExtraido, StateExfoliado:
			s.Missing++
		case StateEndodoncia:
			s.Endodontics++
		default:
			s.Other++
		}
		s.Total++
		if n, ok := findingTooth(finding); ok {
			affected[n] = true
		}
	}
	for n := range affected {
		s.AffectedTeeth = append(s.AffectedTeeth, n)
	}
	sort.Ints(s.AffectedTeeth)
	if len(s.AffectedTeeth) > MaxAffectedTeeth {
		s.AffectedTeeth = s.AffectedTeeth[:MaxAffectedTeeth]
	}
	return s
}

// findingTooth pulls the tooth number out of a rendered finding line.
func findingTooth(finding string) (int, bool) {
	rest, ok := strings.CutPrefix(finding, "Tooth ")
	if !ok {
		return 0, false
	}
	end := strings.IndexFunc(rest, func(r rune) bool { return r < '0' || r > '9' })
	if end == -1 {
		end = len(rest)
	}
	n, err := strconv.Atoi(rest[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// SummarizePerio scans a raw periodontogram document. A document that fails
// to decode yields a ParseError.
func SummarizePerio(raw []byte) (*PerioSummary, error) {
	var loaded PerioDocument
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &loaded); err != nil {
			return nil, &ParseError{Err: err}
		}
	}
	doc := MergePerio(&loaded)
	s := &PerioSummary{}
	for _, arch := range []map[string]*PerioTooth{doc.Superior, doc.Inferior} {
		for _, tooth := range arch {
			if tooth.Ausencia {
				s.MissingTeeth++
				continue
			}
			if tooth.Implante {
				s.Implants++
			}
			for _, site := range PerioSites {
				if tooth.Sangrado[site] {
					s.BleedingSites++
				}
				if tooth.Placa[site] {
					s.PlaqueSites++
				}
			}
			countPockets(tooth.SondajeVestibular, s)
			countPockets(tooth.SondajePalatal, s)
		}
	}
	return s, nil
}

func countPockets(values map[string]string, s *PerioSummary) {
	for _, site := range PerioSites {
		n, ok := parseSiteValue(values[site])
		if !ok {
			continue
		}
		if n >= PocketThreshold {
			s.PocketsGE4++
		}
		if n >= DeepPocketThreshold {
			s.PocketsGE6++
		}
	}
}
