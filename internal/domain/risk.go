package domain

// RiskLevel is the model-assigned severity of a risk clause. Levels are
// totally ordered: LOW < MEDIUM < HIGH.
type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "LOW"
	RiskLevelMedium RiskLevel = "MEDIUM"
	RiskLevelHigh   RiskLevel = "HIGH"
)

// Rank returns the position of the level in the severity order. Unknown
// levels rank below LOW so they never win a merge.
func (l RiskLevel) Rank() int {
	switch l {
	case RiskLevelLow:
		return 0
	case RiskLevelMedium:
		return 1
	case RiskLevelHigh:
		return 2
	default:
		return -1
	}
}

// Valid reports whether the level is one of the three known severities.
func (l RiskLevel) Valid() bool {
	return l.Rank() >= 0
}

// RiskMetadata carries free-form category tags for a finding.
type RiskMetadata struct {
	Types []string `json:"types"`
}

// RiskItem is one detected risk clause produced by the analysis pipeline.
// The model reports StartIndex and EndIndex relative to the chunk it saw;
// the pipeline rebases them to document offsets before persisting.
// Items are immutable once validated.
type RiskItem struct {
	ClauseTitle string       `json:"clause_title"`
	RiskLevel   RiskLevel    `json:"risk_level"`
	Summary     string       `json:"summary"`
	ClauseText  string       `json:"clause_text"`
	StartIndex  int          `json:"start_index"`
	EndIndex    int          `json:"end_index"`
	Confidence  float64      `json:"confidence"`
	Metadata    RiskMetadata `json:"metadata"`
}
