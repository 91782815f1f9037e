// Package classify is the single source of truth for Fine-Kinney score
// thresholds. Every place that needs a band, a decision message, or a band
// color imports this package; the thresholds appear nowhere else.
package classify

import (
	"fmt"

	"github.com/schem-safety/permit-cli/internal/model"
)

// Fine-Kinney band thresholds (R = P × E × C).
const (
	ThresholdMedium   = 70
	ThresholdHigh     = 160
	ThresholdVeryHigh = 320
)

// Classify maps a risk score to its band. Total over all non-negative
// scores and monotonic in R.
func Classify(score float64) model.Band {
	switch {
	case score >= ThresholdVeryHigh:
		return model.BandVeryHigh
	case score >= ThresholdHigh:
		return model.BandHigh
	case score >= ThresholdMedium:
		return model.BandMedium
	default:
		return model.BandLow
	}
}

// Message renders the user-facing decision for a band and score. The band
// must have been produced by Classify from the same score, so the message
// and the band can never disagree.
func Message(band model.Band, score float64) string {
	switch band {
	case model.BandVeryHigh, model.BandHigh:
		return fmt.Sprintf("REJECTED (%s risk, score %d): the permit request is denied. See the attached report for the detailed grounds.", band, int(score))
	case model.BandMedium:
		return fmt.Sprintf("CONDITIONALLY APPROVED (Medium risk, score %d): work may proceed only after the required mitigations in the report are in place.", int(score))
	case model.BandError:
		return "ASSESSMENT UNAVAILABLE: the risk assessment could not be extracted. The request has been routed for manual review."
	default:
		return fmt.Sprintf("APPROVED (Low risk, score %d): the work permit has been issued.", int(score))
	}
}

// Color returns the report accent color for a band as an RGB hex string.
func Color(band model.Band) string {
	switch band {
	case model.BandVeryHigh, model.BandHigh:
		return "#CC1A1A"
	case model.BandMedium:
		return "#E6801A"
	case model.BandError:
		return "#808080"
	default:
		return "#1A994D"
	}
}
