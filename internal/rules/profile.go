// Package rules scores candidate biometrics against per-gender preference
// profiles. Scoring is pure and total: missing or unparseable input
// degrades to 0, never to an error.
package rules

import (
	_ "embed"

	"gopkg.in/yaml.v3"
)

//go:embed profiles.yaml
var profilesYAML []byte

// HeightProfile defines the linear ramp and the bonus target for height.
type HeightProfile struct {
	Min    float64 `yaml:"min"`
	Max    float64 `yaml:"max"`
	Target float64 `yaml:"target"`
}

// Dimension holds the band edges or the target model for one measurement,
// depending on the profile's model.
type Dimension struct {
	Min       float64 `yaml:"min"`
	IdealMin  float64 `yaml:"ideal_min"`
	IdealMax  float64 `yaml:"ideal_max"`
	Max       float64 `yaml:"max"`
	Target    float64 `yaml:"target"`
	Tolerance float64 `yaml:"tolerance"`
}

// MeasurementProfile selects the scoring shape for bust/waist/hip.
// Model is "banded" (flat plateau inside an ideal sub-range, linear
// falloff to the band edges) or "target" (symmetric falloff around a
// target value).
type MeasurementProfile struct {
	Model string    `yaml:"model"`
	Bust  Dimension `yaml:"bust"`
	Waist Dimension `yaml:"waist"`
	Hip   Dimension `yaml:"hip"`
}

// Profile is one gender's full preference profile. Immutable, defined at
// configuration time.
type Profile struct {
	Height       HeightProfile      `yaml:"height"`
	Measurements MeasurementProfile `yaml:"measurements"`
}

type profilesFile struct {
	Profiles map[string]Profile `yaml:"profiles"`
}

var profiles map[string]Profile

func init() {
	var f profilesFile
	if err := yaml.Unmarshal(profilesYAML, &f); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded profiles.yaml: " + err.Error())
	}
	profiles = f.Profiles
}

// ProfileFor returns the preference profile for a gender tag. Unknown tags
// fall back to the female profile, matching the evaluation default.
func ProfileFor(gender string) Profile {
	if p, ok := profiles[gender]; ok {
		return p
	}
	return profiles["female"]
}
