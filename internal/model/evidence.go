package model

// Tier marks the origin of an evidence item. Lower values fuse first.
type Tier int

const (
	// TierHazard is substance-specific hazard documentation (MSDS sheets).
	TierHazard Tier = iota
	// TierInternal is the organization's internal safety-procedure corpus.
	TierInternal
	// TierRegulatory is statutory regulation and technical guidelines.
	TierRegulatory
)

func (t Tier) String() string {
	switch t {
	case TierHazard:
		return "hazard"
	case TierInternal:
		return "internal"
	case TierRegulatory:
		return "regulatory"
	default:
		return "unknown"
	}
}

// EvidenceItem is one retrieved document fragment. Identity is SourceID:
// two items with equal SourceID are duplicates regardless of content.
type EvidenceItem struct {
	SourceID string `json:"source_id"`
	Content  string `json:"content"`
	Tier     Tier   `json:"tier"`
}

// RetrievalQuery is one targeted query against the document-retrieval
// service. ResultCap bounds how many returned items this tier contributes
// to the fused evidence set.
type RetrievalQuery struct {
	Text      string
	Tier      Tier
	ResultCap int
}
