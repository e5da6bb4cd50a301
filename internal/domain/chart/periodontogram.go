package chart

import "strconv"

// Periodontal measurement sites per tooth face, in reporting order.
var PerioSites = []string{"M", "C", "D"}

// Perio field baselines.
const (
	PerioMovilidadBaseline  = "0"
	PerioPronosticoBaseline = "Bueno"
	PerioFurcaBaseline      = "0"

	// Probing depths and gingival margins are clamped into these ranges
	// instead of being rejected.
	SondajeMin = 0
	SondajeMax = 12
	MargenMin  = -9
	MargenMax  = 9

	// Probing depths at or past PocketThreshold count as periodontal
	// pockets; at or past DeepPocketThreshold they also count as deep.
	PocketThreshold     = 4
	DeepPocketThreshold = 6
)

// SuperiorTeeth and InferiorTeeth split the adult set into the two arches
// the periodontogram is keyed by.
var (
	SuperiorTeeth = []int{11, 12, 13, 14, 15, 16, 17, 18, 21, 22, 23, 24, 25, 26, 27, 28}
	InferiorTeeth = []int{31, 32, 33, 34, 35, 36, 37, 38, 41, 42, 43, 44, 45, 46, 47, 48}
)

// PerioTooth is one tooth's periodontal record. Site-keyed maps use the
// letters in PerioSites. Numeric fields are strings in the JSON contract;
// the renderer writes what the clinician typed and parsing happens here.
type PerioTooth struct {
	Ausencia          bool              `json:"ausencia"`
	Implante          bool              `json:"implante"`
	Movilidad         string            `json:"movilidad"`
	Pronostico        string            `json:"pronostico"`
	Furca             string            `json:"furca"`
	Sangrado          map[string]bool   `json:"sangrado"`
	Supuracion        map[string]bool   `json:"supuracion"`
	Placa             map[string]bool   `json:"placa"`
	AnchuraEncia      string            `json:"anchuraEncia"`
	MargenVestibular  map[string]string `json:"margenVestibular"`
	MargenPalatal     map[string]string `json:"margenPalatal"`
	SondajeVestibular map[string]string `json:"sondajeVestibular"`
	SondajePalatal    map[string]string `json:"sondajePalatal"`
}

// PerioDocument is the JSON contract for the periodontogram: one map per
// arch, tooth numbers as string keys.
type PerioDocument struct {
	Superior map[string]*PerioTooth `json:"superior"`
	Inferior map[string]*PerioTooth `json:"inferior"`
}

func defaultPerioTooth() *PerioTooth {
	return &PerioTooth{
		Movilidad:         PerioMovilidadBaseline,
		Pronostico:        PerioPronosticoBaseline,
		Furca:             PerioFurcaBaseline,
		Sangrado:          map[string]bool{},
		Supuracion:        map[string]bool{},
		Placa:             map[string]bool{},
		MargenVestibular:  map[string]string{},
		MargenPalatal:     map[string]string{},
		SondajeVestibular: map[string]string{},
		SondajePalatal:    map[string]string{},
	}
}

// DefaultPerio builds a document with every adult tooth present on its arch
// and all fields at baseline.
func DefaultPerio() *PerioDocument {
	doc := &PerioDocument{
		Superior: make(map[string]*PerioTooth),
		Inferior: make(map[string]*PerioTooth),
	}
	for _, n := range SuperiorTeeth {
		doc.Superior[toothKey(n)] = defaultPerioTooth()
	}
	for _, n := range InferiorTeeth {
		doc.Inferior[toothKey(n)] = defaultPerioTooth()
	}
	return doc
}

// MergePerio lays loaded on top of a fresh default document, taking only
// recognized tooth numbers per arch. Probing depths and margins are clamped
// into range here; a value that does not parse as a number is dropped as
// unset.
func MergePerio(loaded *PerioDocument) *PerioDocument {
	doc := DefaultPerio()
	if loaded == nil {
		return doc
	}
	mergeArch(doc.Superior, loaded.Superior)
	mergeArch(doc.Inferior, loaded.Inferior)
	return doc
}

func mergeArch(base map[string]*PerioTooth, loaded map[string]*PerioTooth) {
	for key, tooth := range base {
		in, ok := loaded[key]
		if !ok || in == nil {
			continue
		}
		tooth.Ausencia = in.Ausencia
		tooth.Implante = in.Implante
		if in.Movilidad != "" {
			tooth.Movilidad = in.Movilidad
		}
		if in.Pronostico != "" {
			tooth.Pronostico = in.Pronostico
		}
		if in.Furca != "" {
			tooth.Furca = in.Furca
		}
		tooth.AnchuraEncia = in.AnchuraEncia
		copySiteFlags(tooth.Sangrado, in.Sangrado)
		copySiteFlags(tooth.Supuracion, in.Supuracion)
		copySiteFlags(tooth.Placa, in.Placa)
		copySiteValues(tooth.SondajeVestibular, in.SondajeVestibular, SondajeMin, SondajeMax)
		copySiteValues(tooth.SondajePalatal, in.SondajePalatal, SondajeMin, SondajeMax)
		copySiteValues(tooth.MargenVestibular, in.MargenVestibular, MargenMin, MargenMax)
		copySiteValues(tooth.MargenPalatal, in.MargenPalatal, MargenMin, MargenMax)
	}
}

func copySiteFlags(dst, src map[string]bool) {
	for _, site := range PerioSites {
		if v, ok := src[site]; ok && v {
			dst[site] = true
		}
	}
}

func copySiteValues(dst, src map[string]string, min, max int) {
	for _, site := range PerioSites {
		raw, ok := src[site]
		if !ok || raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			continue
		}
		if n < min {
			n = min
		}
		if n > max {
			n = max
		}
		dst[site] = strconv.Itoa(n)
	}
}
