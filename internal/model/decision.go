package model

import "time"

// Decision is the persisted outcome of one triage request.
type Decision struct {
	ID         string    `json:"id"`
	Input      string    `json:"input"`
	Transcript string    `json:"transcript,omitempty"`
	Band       Band      `json:"band"`
	RiskScore  float64   `json:"risk_score"`
	HazardType string    `json:"hazard_type,omitempty"`
	Message    string    `json:"message"`
	ReportPath string    `json:"report_path,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
