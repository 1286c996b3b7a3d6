package rules

import (
	"regexp"
	"strconv"
	"strings"
)

// Measurements is a parsed bust/waist/hip triple in centimeters.
type Measurements struct {
	Bust  float64
	Waist float64
	Hip   float64
}

var numberPattern = regexp.MustCompile(`\d+(?:[.,]\d+)?`)

// ParseMeasurements extracts the first three decimal tokens of a loosely
// formatted string as bust, waist, and hip (in that order). A comma decimal
// separator is accepted. Anything with fewer than three numeric tokens is
// treated as absent, not as an error and not as a partial triple.
func ParseMeasurements(s string) (Measurements, bool) {
	tokens := numberPattern.FindAllString(s, 3)
	if len(tokens) < 3 {
		return Measurements{}, false
	}

	values := make([]float64, 3)
	for i, tok := range tokens {
		v, err := strconv.ParseFloat(strings.ReplaceAll(tok, ",", "."), 64)
		if err != nil {
			return Measurements{}, false
		}
		values[i] = v
	}

	return Measurements{Bust: values[0], Waist: values[1], Hip: values[2]}, true
}
