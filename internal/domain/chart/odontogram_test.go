package chart

import (
	"testing"
	"time"
)

func TestDefaultOdontogram_ToothCounts(t *testing.T) {
	if got := len(DefaultOdontogram(KindOdontogramAdult).Teeth); got != 32 {
		t.Errorf("adult set: expected 32 teeth, got %d", got)
	}
	if got := len(DefaultOdontogram(KindOdontogramPediatric).Teeth); got != 20 {
		t.Errorf("pediatric set: expected 20 teeth, got %d", got)
	}
}

func TestMergeOdontogram_IgnoresUnknownTeeth(t *testing.T) {
	loaded := &OdontogramDocument{Teeth: map[string]ToothRecord{
		"16": {Status: StateCaries},
		"99": {Status: StateCaries},
		"48": {Status: StateCaries},
	}}

	merged := MergeOdontogram(KindOdontogramPediatric, loaded)
	if _, ok := merged.Teeth["99"]; ok {
		t.Error("tooth 99 should not survive the merge")
	}
	if _, ok := merged.Teeth["48"]; ok {
		t.Error("tooth 48 is outside the pediatric set")
	}
	if merged.Teeth["16"].Status != StateNone {
		t.Error("tooth 16 is outside the pediatric set and must stay at baseline")
	}
}

func TestMergeOdontogram_WholeToothClearsSurfaces(t *testing.T) {
	loaded := &OdontogramDocument{Teeth: map[string]ToothRecord{
		"11": {Status: StateAusente, Surfaces: map[string]string{"oclusal": StateCaries}},
	}}

	merged := MergeOdontogram(KindOdontogramAdult, loaded)
	rec := merged.Teeth["11"]
	if rec.Status != StateAusente {
		t.Errorf("expected AUSENTE, got %s", rec.Status)
	}
	if len(rec.Surfaces) != 0 {
		t.Errorf("surfaces should be cleared, got %v", rec.Surfaces)
	}
}

func TestMergeOdontogram_SurfacesSurviveWithNoneStatus(t *testing.T) {
	loaded := &OdontogramDocument{Teeth: map[string]ToothRecord{
		"11": {Status: StateNone, Surfaces: map[string]string{"mesial": StateCaries, "bogus": StateCaries}},
	}}

	merged := MergeOdontogram(KindOdontogramAdult, loaded)
	rec := merged.Teeth["11"]
	if rec.Surfaces["mesial"] != StateCaries {
		t.Error("mesial surface lost in merge")
	}
	if _, ok := rec.Surfaces["bogus"]; ok {
		t.Error("unknown surface name should be dropped")
	}
}

func TestPediatricAt(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	yearsAgo := func(years float64) time.Time {
		return now.Add(-time.Duration(years * 365.25 * 24 * float64(time.Hour)))
	}
	cases := []struct {
		name  string
		birth time.Time
		want  bool
	}{
		{"newborn", now.AddDate(0, 0, -10), true},
		{"thirteen", yearsAgo(13), true},
		{"just under fourteen", yearsAgo(13.99), true},
		{"exactly fourteen", yearsAgo(14), false},
		{"adult", yearsAgo(40), false},
		{"future birthdate", now.AddDate(1, 0, 0), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := PediatricAt(tc.birth, now); got != tc.want {
				t.Errorf("PediatricAt(%s) = %v, want %v", tc.birth.Format("2006-01-02"), got, tc.want)
			}
		})
	}
}

func TestOdontogramKindFor_UnknownBirthDate(t *testing.T) {
	if got := OdontogramKindFor(nil, time.Now()); got != KindOdontogramAdult {
		t.Errorf("expected adult default, got %s", got)
	}
}

func TestKindLabel_DistinguishesVariants(t *testing.T) {
	cases := map[Kind]string{
		KindOdontogramAdult:     "Odontogram (adult)",
		KindOdontogramPediatric: "Odontogram (pediatric)",
		KindPeriodontogram:      "Periodontogram",
	}
	for kind, want := range cases {
		if got := kind.Label(); got != want {
			t.Errorf("%s label = %q, want %q", kind, got, want)
		}
	}
}
