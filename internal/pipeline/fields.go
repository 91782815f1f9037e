package pipeline

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// defaultHazardType is used when the scoring text carries no hazard label.
const defaultHazardType = "unclassified hazard"

// scoredFields is the structured form of the model's scoring text.
type scoredFields struct {
	P, E, C, R float64
	HasR       bool
	HazardType string
}

// Field grammar: optional list markup, field name, ':' or '=' separator,
// value. Names are matched at line start so a trailing "E" in a word like
// "PPE" never binds.
var (
	numericFieldRe = regexp.MustCompile(`(?m)^[\s*#>-]*\**([PECR])\**\s*[:=]\s*\**([0-9]+(?:\.[0-9]+)?)`)
	hazardTypeRe   = regexp.MustCompile(`(?mi)^[\s*#>-]*\**hazard\s*type\**\s*[:=]\s*(.+)$`)
)

// parseScoredFields extracts P/E/C/R and the hazard label from free-form
// scoring text. Missing numerics default to 0 and a missing label to a
// generic placeholder; it errors only when no field at all can be found.
func parseScoredFields(text string) (scoredFields, error) {
	fields := scoredFields{HazardType: defaultHazardType}
	found := false

	for _, m := range numericFieldRe.FindAllStringSubmatch(text, -1) {
		val, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			continue
		}
		found = true
		switch m[1] {
		case "P":
			fields.P = val
		case "E":
			fields.E = val
		case "C":
			fields.C = val
		case "R":
			fields.R = val
			fields.HasR = true
		}
	}

	if m := hazardTypeRe.FindStringSubmatch(text); m != nil {
		label := strings.TrimSpace(strings.Trim(m[1], "* "))
		if label != "" {
			fields.HazardType = label
			found = true
		}
	}

	if !found {
		return scoredFields{}, eris.New("no assessment fields in scoring text")
	}
	return fields, nil
}

// riskScore returns R as stated by the source text, or P*E*C when the text
// never supplied R.
func (f scoredFields) riskScore() float64 {
	if f.HasR {
		return f.R
	}
	return f.P * f.E * f.C
}
