package model

// Band is the discrete risk classification derived from a Fine-Kinney
// risk score. BandError marks an assessment that could not be extracted.
type Band string

const (
	BandLow      Band = "Low"
	BandMedium   Band = "Medium"
	BandHigh     Band = "High"
	BandVeryHigh Band = "VeryHigh"
	BandError    Band = "Error"
)

// RiskAssessment is the structured result of the Fine-Kinney scoring stage.
// Immutable once classified; created fresh per request.
type RiskAssessment struct {
	Probability float64 `json:"probability"`
	Exposure    float64 `json:"exposure"`
	Consequence float64 `json:"consequence"`
	RiskScore   float64 `json:"risk_score"`
	HazardType  string  `json:"hazard_type"`
	Band        Band    `json:"band"`
}
