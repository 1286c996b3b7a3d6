package rules

import (
	"math"
)

const (
	// heightBonusMax is the peak of the Gaussian bonus around the target height.
	heightBonusMax = 0.15

	// Reason phrase thresholds. Fixed constants, not configurable per call.
	idealThreshold      = 0.75
	acceptableThreshold = 0.45
)

// Result holds the deterministic rule sub-scores for one submission.
type Result struct {
	HeightScore      float64
	MeasurementScore float64
	HasMeasurements  bool
	Reasons          []string
}

// Score evaluates height and measurements against the profile. Pure and
// total: missing height scores 0 without a reason, an unparseable
// measurement string scores 0 without a reason (distinct from "evaluated
// and scored poorly", which does emit one).
func (p Profile) Score(heightCm float64, measurements string) Result {
	var r Result

	if heightCm > 0 {
		r.HeightScore = p.Height.score(heightCm)
		r.Reasons = append(r.Reasons, "height "+Phrase(r.HeightScore))
	}

	if m, ok := ParseMeasurements(measurements); ok {
		r.HasMeasurements = true
		r.MeasurementScore = p.Measurements.score(m)
		r.Reasons = append(r.Reasons, "measurements "+Phrase(r.MeasurementScore))
	}

	return r
}

// score maps a height onto [0,1]: 0 at or below Min, 1 at or above Max,
// linear in between, plus a Gaussian bonus centered on Target with sigma of
// half the min-max span. Clamped to [0,1].
func (h HeightProfile) score(height float64) float64 {
	if height <= h.Min {
		return 0
	}

	base := 1.0
	if height < h.Max {
		base = (height - h.Min) / (h.Max - h.Min)
	}

	sigma := (h.Max - h.Min) / 2
	bonus := 0.0
	if sigma > 0 {
		d := height - h.Target
		bonus = heightBonusMax * math.Exp(-(d*d)/(2*sigma*sigma))
	}

	return clamp01(base + bonus)
}

// score combines the three dimension sub-scores as a waist-weighted mean.
func (mp MeasurementProfile) score(m Measurements) float64 {
	if mp.Model == "target" {
		bust := mp.Bust.targetScore(m.Bust)
		waist := mp.Waist.targetScore(m.Waist)
		hip := mp.Hip.targetScore(m.Hip)
		return (bust + 1.2*waist + hip) / 3.2
	}

	bust := mp.Bust.bandScore(m.Bust)
	waist := mp.Waist.bandScore(m.Waist)
	hip := mp.Hip.bandScore(m.Hip)
	return (bust + 1.3*waist + hip) / 3.3
}

// bandScore is 0 outside [Min,Max], 1 inside [IdealMin,IdealMax], and a
// linear ramp in between.
func (d Dimension) bandScore(v float64) float64 {
	switch {
	case v < d.Min || v > d.Max:
		return 0
	case v >= d.IdealMin && v <= d.IdealMax:
		return 1
	case v < d.IdealMin:
		return (v - d.Min) / (d.IdealMin - d.Min)
	default:
		return (d.Max - v) / (d.Max - d.IdealMax)
	}
}

// targetScore falls off linearly with distance from Target, reaching 0 at
// one Tolerance away.
func (d Dimension) targetScore(v float64) float64 {
	if d.Tolerance <= 0 {
		return 0
	}
	return clamp01(1 - math.Abs(v-d.Target)/d.Tolerance)
}

// Phrase selects the categorical reason phrase for a sub-score.
func Phrase(score float64) string {
	switch {
	case score >= idealThreshold:
		return "ideal"
	case score >= acceptableThreshold:
		return "acceptable"
	default:
		return "outside preferred band"
	}
}

func clamp01(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}
