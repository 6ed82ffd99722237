package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parchlabs/clauseguard/internal/domain"
)

func item(title, clause string, level domain.RiskLevel) domain.RiskItem {
	return domain.RiskItem{
		ClauseTitle: title,
		RiskLevel:   level,
		Summary:     "summary of " + title,
		ClauseText:  clause,
		Confidence:  0.8,
	}
}

func TestFingerprint_NormalizesWhitespaceAndCase(t *testing.T) {
	a := Fingerprint("The  Party SHALL\n\tindemnify")
	b := Fingerprint("the party shall indemnify")

	assert.Equal(t, a, b)
}

func TestFingerprint_DistinctClauses(t *testing.T) {
	assert.NotEqual(t, Fingerprint("clause one"), Fingerprint("clause two"))
}

func TestMerge_MostSevereWins(t *testing.T) {
	clause := "This agreement shall automatically renew."
	merged := Merge([]domain.RiskItem{
		item("Renewal", clause, domain.RiskLevelLow),
		item("Renewal (dup)", clause, domain.RiskLevelHigh),
		item("Renewal (dup 2)", clause, domain.RiskLevelMedium),
	})

	require.Len(t, merged, 1)
	assert.Equal(t, domain.RiskLevelHigh, merged[0].RiskLevel)
	assert.Equal(t, "Renewal (dup)", merged[0].ClauseTitle)
}

func TestMerge_TieKeepsFirstSeen(t *testing.T) {
	clause := "Either party may terminate with 30 days notice."
	merged := Merge([]domain.RiskItem{
		item("first", clause, domain.RiskLevelMedium),
		item("second", clause, domain.RiskLevelMedium),
	})

	require.Len(t, merged, 1)
	assert.Equal(t, "first", merged[0].ClauseTitle)
}

func TestMerge_PreservesInsertionOrder(t *testing.T) {
	merged := Merge([]domain.RiskItem{
		item("a", "clause alpha", domain.RiskLevelLow),
		item("b", "clause beta", domain.RiskLevelHigh),
		item("a again", "Clause   ALPHA", domain.RiskLevelHigh),
		item("c", "clause gamma", domain.RiskLevelMedium),
	})

	require.Len(t, merged, 3)
	assert.Equal(t, "a again", merged[0].ClauseTitle, "upgraded in place, order kept")
	assert.Equal(t, "b", merged[1].ClauseTitle)
	assert.Equal(t, "c", merged[2].ClauseTitle)
}

func TestMerge_EmptyInput(t *testing.T) {
	assert.Empty(t, Merge(nil))
	assert.Empty(t, Merge([]domain.RiskItem{}))
}

func TestMerge_WhitespaceVariantsCollapse(t *testing.T) {
	merged := Merge([]domain.RiskItem{
		item("original", "The vendor  may increase\nfees at any time.", domain.RiskLevelLow),
		item("overlap copy", "the vendor may increase fees at any time.", domain.RiskLevelLow),
	})

	require.Len(t, merged, 1)
	assert.Equal(t, "original", merged[0].ClauseTitle)
}
