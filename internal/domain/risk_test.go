package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRiskLevel_Rank(t *testing.T) {
	assert.Less(t, RiskLevelLow.Rank(), RiskLevelMedium.Rank())
	assert.Less(t, RiskLevelMedium.Rank(), RiskLevelHigh.Rank())
	assert.Equal(t, -1, RiskLevel("CRITICAL").Rank())
}

func TestRiskLevel_Valid(t *testing.T) {
	assert.True(t, RiskLevelLow.Valid())
	assert.True(t, RiskLevelMedium.Valid())
	assert.True(t, RiskLevelHigh.Valid())
	assert.False(t, RiskLevel("").Valid())
	assert.False(t, RiskLevel("low").Valid())
}

func TestRiskItem_JSONRoundTrip(t *testing.T) {
	item := RiskItem{
		ClauseTitle: "Auto-Renewal Clause",
		RiskLevel:   RiskLevelMedium,
		Summary:     "The agreement auto-renews unless terminated 60 days before end of term.",
		ClauseText:  "This Agreement shall automatically renew for successive one-year terms.",
		StartIndex:  0,
		EndIndex:    160,
		Confidence:  0.9,
		Metadata:    RiskMetadata{Types: []string{"auto_renewal"}},
	}

	data, err := json.Marshal(item)
	require.NoError(t, err)

	var decoded RiskItem
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, item, decoded)
}
