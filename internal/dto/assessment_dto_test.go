package dto

import (
	"encoding/json"
	"testing"
)

// History items and the assessment response share one camelCase surface.
func TestAssessmentHistoryItemUsesCamelCaseKeys(t *testing.T) {
	raw, err := json.Marshal(AssessmentHistoryItemDTO{
		ID:                  "a1",
		LoanAmountRequested: 200000,
		RiskLevel:           "low",
		CalculatedAt:        "2026-09-01T00:00:00Z",
	})
	if err != nil {
		t.Fatalf("marshal err: %v", err)
	}

	var keys map[string]any
	if err := json.Unmarshal(raw, &keys); err != nil {
		t.Fatalf("unmarshal err: %v", err)
	}
	for _, key := range []string{
		"id", "loanAmountRequested", "loanPurpose", "eligibilityScore",
		"recommendedAmount", "riskLevel", "debtToIncomeRatio", "calculatedAt",
	} {
		if _, ok := keys[key]; !ok {
			t.Errorf("missing key %q in %s", key, raw)
		}
	}
	if len(keys) != 8 {
		t.Errorf("got %d keys in %s, want 8", len(keys), raw)
	}
}
