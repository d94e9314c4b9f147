package ai

import "github.com/spendlens/backend/internal/model"

// Every result type carries a Degraded marker: true means a fallback or
// heuristic path produced the value instead of the AI path. The shape of
// the result is identical either way, so callers never branch on it except
// to render a "basic analysis" notice.

// ExpenseAnalysis is the result of analyzing a single expense against the
// user's recent history. All five content fields are always populated.
type ExpenseAnalysis struct {
	Pattern          string   `json:"pattern"`
	Comparison       string   `json:"comparison"`
	Suggestions      []string `json:"suggestions"`
	CategoryFeedback string   `json:"category_feedback"`
	ImpactScore      float64  `json:"impact_score"`
	Degraded         bool     `json:"degraded,omitempty"`
}

// CategorySpend is a per-category total used inside insight payloads.
type CategorySpend struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

// Insights is the financial-overview payload. HealthScore is always
// present; Recommendations always contains at least one entry explaining
// the state of the analysis.
type Insights struct {
	Summary         string          `json:"summary"`
	HealthScore     int             `json:"health_score"`
	TopCategories   []CategorySpend `json:"top_categories,omitempty"`
	Recommendations []string        `json:"recommendations"`
	Trends          string          `json:"trends,omitempty"`
	Degraded        bool            `json:"degraded,omitempty"`
}

// BudgetRecommendation is a single suggested budget line.
type BudgetRecommendation struct {
	Category        string  `json:"category"`
	SuggestedAmount float64 `json:"suggested_amount"`
	Reasoning       string  `json:"reasoning,omitempty"`
}

// BudgetRecommendations is the budget-recommendations payload.
type BudgetRecommendations struct {
	Summary         string                 `json:"summary"`
	Recommendations []BudgetRecommendation `json:"recommendations"`
	Degraded        bool                   `json:"degraded,omitempty"`
}

// SavingsOpportunity is a single identified saving.
type SavingsOpportunity struct {
	Category         string  `json:"category"`
	Suggestion       string  `json:"suggestion"`
	EstimatedSavings float64 `json:"estimated_savings,omitempty"`
}

// SavingsAnalysis is the savings-opportunities payload.
type SavingsAnalysis struct {
	Summary                 string               `json:"summary"`
	Opportunities           []SavingsOpportunity `json:"opportunities"`
	PotentialMonthlySavings float64              `json:"potential_monthly_savings,omitempty"`
	Degraded                bool                 `json:"degraded,omitempty"`
}

// ReceiptResult wraps a parsed receipt with its producing path. Source is
// "ai" when the model extracted it and "parser" when the deterministic
// heuristic parser did.
type ReceiptResult struct {
	Receipt model.ParsedReceipt `json:"receipt"`
	Source  string              `json:"source"`
}

// ChatReply is a free-form answer to a financial question.
type ChatReply struct {
	Message  string `json:"message"`
	Degraded bool   `json:"degraded,omitempty"`
}
