package chart

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ExtractFindings diffs a raw chart document against the empty baseline and
// renders one line per abnormal value. The returned list is sorted
// lexicographically; callers rely on identical input producing an identical
// ordered list. A document that fails to decode yields a ParseError, which
// callers treat as zero findings.
func ExtractFindings(kind Kind, raw []byte) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var findings []string
	if kind == KindPeriodontogram {
		var loaded PerioDocument
		if err := json.Unmarshal(raw, &loaded); err != nil {
			return nil, &ParseError{Err: err}
		}
		findings = perioFindings(MergePerio(&loaded))
	} else {
		var loaded OdontogramDocument
		if err := json.Unmarshal(raw, &loaded); err != nil {
			return nil, &ParseError{Err: err}
		}
		findings = odontogramFindings(kind, MergeOdontogram(kind, &loaded))
	}
	sort.Strings(findings)
	return findings, nil
}

func odontogramFindings(kind Kind, doc *OdontogramDocument) []string {
	var findings []string
	for _, n := range TeethFor(kind) {
		rec := doc.Teeth[toothKey(n)]
		if rec.Status != StateNone && rec.Status != "" {
			findings = append(findings, fmt.Sprintf("Tooth %d: %s", n, rec.Status))
			continue
		}
		for _, surface := range Surfaces {
			if v := rec.Surfaces[surface]; v != "" && v != StateNone {
				findings = append(findings, fmt.Sprintf("Tooth %d (%s): %s", n, surface, v))
			}
		}
	}
	return findings
}

func perioFindings(doc *PerioDocument) []string {
	var findings []string
	for _, arch := range []struct {
		teeth []int
		data  map[string]*PerioTooth
	}{
		{SuperiorTeeth, doc.Superior},
		{InferiorTeeth, doc.Inferior},
	} {
		for _, n := range arch.teeth {
			findings = append(findings, perioToothFindings(n, arch.data[toothKey(n)])...)
		}
	}
	return findings
}

func perioToothFindings(n int, tooth *PerioTooth) []string {
	if tooth.Ausencia {
		return []string{fmt.Sprintf("Tooth %d: Absent", n)}
	}
	var findings []string
	if tooth.Implante {
		findings = append(findings, fmt.Sprintf("Tooth %d: Implant", n))
	}
	if tooth.Movilidad != PerioMovilidadBaseline {
		findings = append(findings, fmt.Sprintf("Tooth %d: Movilidad %s", n, tooth.Movilidad))
	}
	if tooth.Pronostico != PerioPronosticoBaseline {
		findings = append(findings, fmt.Sprintf("Tooth %d: Pronostico %s", n, tooth.Pronostico))
	}
	if tooth.Furca != PerioFurcaBaseline {
		findings = append(findings, fmt.Sprintf("Tooth %d: Furca %s", n, tooth.Furca))
	}
	for _, cat := range []struct {
		label string
		sites map[string]bool
	}{
		{"Sangrado", tooth.Sangrado},
		{"Supuracion", tooth.Supuracion},
		{"Placa", tooth.Placa},
	} {
		if sites := activeSites(cat.sites); sites != "" {
			findings = append(findings, fmt.Sprintf("Tooth %d: %s %s", n, cat.label, sites))
		}
	}
	if depths := siteDepths(tooth.SondajeVestibular); depths != "" {
		findings = append(findings, fmt.Sprintf("Tooth %d (vestibular): Sondaje %s", n, depths))
	}
	if depths := siteDepths(tooth.SondajePalatal); depths != "" {
		findings = append(findings, fmt.Sprintf("Tooth %d (palatino): Sondaje %s", n, depths))
	}
	if margins := recessionSites(tooth.MargenVestibular); margins != "" {
		findings = append(findings, fmt.Sprintf("Tooth %d (vestibular): Margen %s", n, margins))
	}
	if margins := recessionSites(tooth.MargenPalatal); margins != "" {
		findings = append(findings, fmt.Sprintf("Tooth %d (palatino): Margen %s", n, margins))
	}
	return findings
}

// activeSites joins the site letters that are true, in M,C,D order.
func activeSites(sites map[string]bool) string {
	var active []string
	for _, site := range PerioSites {
		if sites[site] {
			active = append(active, site)
		}
	}
	return strings.Join(active, ",")
}

// siteDepths renders the sites whose probing depth reaches the pocket
// threshold, as "site:depth mm" pairs joined with commas.
func siteDepths(values map[string]string) string {
	var parts []string
	for _, site := range PerioSites {
		n, ok := parseSiteValue(values[site])
		if ok && n >= PocketThreshold {
			parts = append(parts, fmt.Sprintf("%s:%dmm", site, n))
		}
	}
	return strings.Join(parts, ",")
}

// recessionSites renders the sites with a negative gingival margin.
func recessionSites(values map[string]string) string {
	var parts []string
	for _, site := range PerioSites {
		n, ok := parseSiteValue(values[site])
		if ok && n < 0 {
			parts = append(parts, fmt.Sprintf("%s:%dmm", site, n))
		}
	}
	return strings.Join(parts, ",")
}

func parseSiteValue(raw string) (int, bool) {
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}
