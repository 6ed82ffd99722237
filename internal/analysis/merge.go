package analysis

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/parchlabs/clauseguard/internal/domain"
)

// Fingerprint computes the dedup key for a clause: whitespace is collapsed,
// text lowercased, and the result hashed so the key is stable regardless of
// formatting differences between overlapping chunks.
func Fingerprint(clauseText string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(clauseText), " "))
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// Merge deduplicates findings across all chunks of a document. Overlapping
// windows can surface the same clause twice with different model-assigned
// severities; the most severe one wins because under-reporting risk is the
// costlier error. Ties keep the item seen first. Output preserves the
// insertion order of first occurrence.
func Merge(items []domain.RiskItem) []domain.RiskItem {
	merged := make([]domain.RiskItem, 0, len(items))
	seen := make(map[string]int, len(items))

	for _, item := range items {
		key := Fingerprint(item.ClauseText)
		at, ok := seen[key]
		if !ok {
			seen[key] = len(merged)
			merged = append(merged, item)
			continue
		}
		if item.RiskLevel.Rank() > merged[at].RiskLevel.Rank() {
			merged[at] = item
		}
	}

	return merged
}
