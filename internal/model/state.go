// Package model defines the data types shared across the triage pipeline.
package model

// Stage identifies a pipeline stage. The engine dispatches on this value
// rather than on stage names.
type Stage string

const (
	StageIntake    Stage = "intake"
	StageRetrieval Stage = "retrieval"
	StageScoring   Stage = "scoring"
	StageReporting Stage = "reporting"
)

// WorkflowState is the single per-request context threaded through all
// pipeline stages. It is never shared across requests.
type WorkflowState struct {
	UserInput          string          `json:"user_input"`
	PriorContext       string          `json:"prior_context,omitempty"`
	Evidence           []EvidenceItem  `json:"evidence,omitempty"`
	Assessment         *RiskAssessment `json:"assessment,omitempty"`
	DecisionMessage    string          `json:"decision_message,omitempty"`
	NeedsMoreInfo      bool            `json:"needs_more_info"`
	ClarifyingQuestion string          `json:"clarifying_question,omitempty"`
	ReportPath         string          `json:"report_path,omitempty"`
	Messages           []string        `json:"messages,omitempty"`
}

// Update is the partial state update returned by a stage. Nil fields are
// left untouched by Apply; see the per-field policy there.
type Update struct {
	Evidence           []EvidenceItem
	Assessment         *RiskAssessment
	DecisionMessage    *string
	NeedsMoreInfo      *bool
	ClarifyingQuestion *string
	ReportPath         *string
	Messages           []string
}

// Apply merges an update into the state. Scalars overwrite, the evidence
// sequence replaces wholesale, and messages accumulate.
func (s *WorkflowState) Apply(u Update) {
	if u.Evidence != nil {
		s.Evidence = u.Evidence
	}
	if u.Assessment != nil {
		s.Assessment = u.Assessment
	}
	if u.DecisionMessage != nil {
		s.DecisionMessage = *u.DecisionMessage
	}
	if u.NeedsMoreInfo != nil {
		s.NeedsMoreInfo = *u.NeedsMoreInfo
	}
	if u.ClarifyingQuestion != nil {
		s.ClarifyingQuestion = *u.ClarifyingQuestion
	}
	if u.ReportPath != nil {
		s.ReportPath = *u.ReportPath
	}
	s.Messages = append(s.Messages, u.Messages...)
}

// Context returns the prior transcript and the current input joined the way
// the retrieval and gate stages consume them.
func (s *WorkflowState) Context() string {
	if s.PriorContext == "" {
		return s.UserInput
	}
	return s.PriorContext + " " + s.UserInput
}

// StringPtr returns a pointer to v, for Update fields.
func StringPtr(v string) *string { return &v }

// BoolPtr returns a pointer to v, for Update fields.
func BoolPtr(v bool) *bool { return &v }
