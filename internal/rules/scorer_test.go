package rules

import (
	"math"
	"strings"
	"testing"
)

func TestHeightScore_Boundaries(t *testing.T) {
	p := ProfileFor("female")

	tests := []struct {
		name     string
		height   float64
		expected float64
	}{
		{"below minimum", 150, 0},
		{"at minimum", 165, 0},
		{"at maximum and target", 177, 1},
		{"above maximum", 185, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := p.Height.score(tc.height)
			if math.Abs(got-tc.expected) > 1e-9 {
				t.Errorf("height score(%g) = %f; want %f", tc.height, got, tc.expected)
			}
		})
	}
}

func TestHeightScore_MonotonicRamp(t *testing.T) {
	p := ProfileFor("female")

	prev := 0.0
	for h := 165.0; h <= 178.0; h += 0.25 {
		got := p.Height.score(h)
		if got < prev-1e-9 {
			t.Fatalf("height score decreased at %g: %f < %f", h, got, prev)
		}
		if got < 0 || got > 1 {
			t.Fatalf("height score out of range at %g: %f", h, got)
		}
		prev = got
	}
}

func TestHeightScore_BonusNearTarget(t *testing.T) {
	// Inside the ramp the Gaussian bonus lifts the score above the bare
	// linear value.
	p := ProfileFor("male") // min 178, max 190, target 185

	linear := (185.0 - 178.0) / (190.0 - 178.0)
	got := p.Height.score(185)
	if got <= linear {
		t.Errorf("score at target = %f; want above linear ramp %f", got, linear)
	}
	if got > linear+heightBonusMax+1e-9 {
		t.Errorf("bonus exceeded maximum: %f", got)
	}
}

func TestMeasurementScore_IdealRangeIsExactlyOne(t *testing.T) {
	p := ProfileFor("female")

	triples := []Measurements{
		{Bust: 82, Waist: 60, Hip: 88},
		{Bust: 80, Waist: 58, Hip: 85},
		{Bust: 90, Waist: 63, Hip: 95},
		{Bust: 85, Waist: 61, Hip: 90},
	}
	for _, m := range triples {
		if got := p.Measurements.score(m); got != 1.0 {
			t.Errorf("score(%+v) = %f; want exactly 1.0", m, got)
		}
	}
}

func TestMeasurementScore_OutsideBandIsZero(t *testing.T) {
	for _, gender := range []string{"female", "male"} {
		p := ProfileFor(gender)
		if got := p.Measurements.score(Measurements{Bust: 200, Waist: 200, Hip: 200}); got != 0 {
			t.Errorf("%s score far outside band = %f; want 0", gender, got)
		}
	}
}

func TestBandScore(t *testing.T) {
	d := Dimension{Min: 55, IdealMin: 58, IdealMax: 63, Max: 70}

	tests := []struct {
		name     string
		value    float64
		expected float64
	}{
		{"below band", 50, 0},
		{"at lower edge", 55, 0},
		{"ramp up midpoint", 56.5, 0.5},
		{"ideal lower", 58, 1},
		{"ideal upper", 63, 1},
		{"ramp down midpoint", 66.5, 0.5},
		{"at upper edge", 70, 0},
		{"above band", 75, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := d.bandScore(tc.value)
			if math.Abs(got-tc.expected) > 1e-9 {
				t.Errorf("bandScore(%g) = %f; want %f", tc.value, got, tc.expected)
			}
		})
	}
}

func TestTargetScore(t *testing.T) {
	d := Dimension{Target: 80, Tolerance: 15}

	tests := []struct {
		name     string
		value    float64
		expected float64
	}{
		{"at target", 80, 1},
		{"half tolerance off", 87.5, 0.5},
		{"at tolerance edge", 95, 0},
		{"beyond tolerance", 120, 0},
		{"below target symmetric", 72.5, 0.5},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := d.targetScore(tc.value)
			if math.Abs(got-tc.expected) > 1e-9 {
				t.Errorf("targetScore(%g) = %f; want %f", tc.value, got, tc.expected)
			}
		})
	}
}

func TestScore_MissingMeasurementsNoReason(t *testing.T) {
	p := ProfileFor("female")

	r := p.Score(170, "tall and slim")
	if r.HasMeasurements {
		t.Error("expected measurements to be absent")
	}
	if r.MeasurementScore != 0 {
		t.Errorf("measurement score = %f; want 0", r.MeasurementScore)
	}
	for _, reason := range r.Reasons {
		if strings.HasPrefix(reason, "measurements") {
			t.Errorf("absent measurements must not emit a reason, got %q", reason)
		}
	}
}

func TestScore_MissingHeightNoReason(t *testing.T) {
	p := ProfileFor("female")

	r := p.Score(0, "82-60-88")
	if r.HeightScore != 0 {
		t.Errorf("height score = %f; want 0", r.HeightScore)
	}
	for _, reason := range r.Reasons {
		if strings.HasPrefix(reason, "height") {
			t.Errorf("absent height must not emit a reason, got %q", reason)
		}
	}
}

func TestScore_Reasons(t *testing.T) {
	p := ProfileFor("female")

	r := p.Score(177, "82-60-88")
	if len(r.Reasons) != 2 {
		t.Fatalf("expected 2 reasons, got %v", r.Reasons)
	}
	if r.Reasons[0] != "height ideal" {
		t.Errorf("height reason = %q", r.Reasons[0])
	}
	if r.Reasons[1] != "measurements ideal" {
		t.Errorf("measurements reason = %q", r.Reasons[1])
	}

	r = p.Score(177, "200-200-200")
	found := false
	for _, reason := range r.Reasons {
		if reason == "measurements outside preferred band" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected outside-band reason, got %v", r.Reasons)
	}
}

func TestPhrase(t *testing.T) {
	tests := []struct {
		score    float64
		expected string
	}{
		{1.0, "ideal"},
		{0.75, "ideal"},
		{0.7499, "acceptable"},
		{0.45, "acceptable"},
		{0.4499, "outside preferred band"},
		{0, "outside preferred band"},
	}

	for _, tc := range tests {
		if got := Phrase(tc.score); got != tc.expected {
			t.Errorf("Phrase(%g) = %q; want %q", tc.score, got, tc.expected)
		}
	}
}

func TestProfileFor_UnknownFallsBackToFemale(t *testing.T) {
	p := ProfileFor("unknown")
	if p.Measurements.Model != "banded" {
		t.Errorf("expected female banded profile for unknown tag, got %q", p.Measurements.Model)
	}
}
