// Package health computes the bounded [0,100] financial health score.
package health

import (
	"math"

	"github.com/spendlens/backend/internal/model"
)

const (
	// neutralUsagePercent stands in for budget usage when the user has
	// no budgets defined.
	neutralUsagePercent = 50.0

	// usageBonus keeps a fully-on-budget user comfortably above the
	// midpoint: score = 100 - usage + bonus, clamped.
	usageBonus = 25.0

	// dataQualitySaturation is the expense-record count at which the
	// data-quality signal reaches its maximum.
	dataQualitySaturation = 30

	// NeutralScore is substituted when an AI-produced score is unusable.
	NeutralScore = 50
)

// Compute derives a deterministic health score from spending and budget
// data. It is total and always returns a score in [0,100]; zero expenses
// yield exactly 0 with an explanatory "no data" breakdown.
func Compute(expenses []model.Expense, budgets []model.Budget) model.HealthScore {
	if len(expenses) == 0 {
		return model.HealthScore{
			Score: 0,
			Breakdown: map[string]any{
				"status":           "no data",
				"spending_control": 0,
				"budget_adherence": 0,
				"data_quality":     0,
				"note":             "No expense records yet. Track a few expenses to get a meaningful score.",
			},
		}
	}

	var totalSpent float64
	for _, e := range expenses {
		totalSpent += e.Amount
	}
	var totalBudget float64
	for _, b := range budgets {
		totalBudget += b.Amount
	}

	usage := neutralUsagePercent
	if totalBudget > 0 {
		usage = totalSpent / totalBudget * 100
	}

	score := Clamp(int(math.Round(100 - usage + usageBonus)))

	return model.HealthScore{
		Score: score,
		Breakdown: map[string]any{
			"spending_control": spendingControl(usage),
			"budget_adherence": budgetAdherence(usage, totalBudget),
			"data_quality":     dataQuality(len(expenses)),
			"budget_usage_pct": int(math.Round(usage)),
		},
	}
}

// Clamp bounds a score to [0,100].
func Clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// spendingControl scores how far spending sits below the budget line.
func spendingControl(usage float64) int {
	return Clamp(int(math.Round(100 - usage)))
}

// budgetAdherence describes the budget relationship as a short label so the
// caller can render it without interpreting numbers.
func budgetAdherence(usage float64, totalBudget float64) string {
	switch {
	case totalBudget == 0:
		return "no budgets defined"
	case usage <= 80:
		return "within budget"
	case usage <= 100:
		return "approaching budget limit"
	default:
		return "over budget"
	}
}

// dataQuality grows with the number of expense records and saturates at
// dataQualitySaturation, reflecting confidence in the inputs.
func dataQuality(recordCount int) int {
	if recordCount >= dataQualitySaturation {
		return 100
	}
	return recordCount * 100 / dataQualitySaturation
}

// Neutral returns the fixed substitute used when an AI-produced score is
// malformed but expense data exists.
func Neutral() model.HealthScore {
	return model.HealthScore{
		Score: NeutralScore,
		Breakdown: map[string]any{
			"status": "estimated",
			"note":   "Score could not be computed from the AI response; showing a neutral estimate.",
		},
	}
}
