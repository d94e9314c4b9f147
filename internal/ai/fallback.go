package ai

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/spendlens/backend/internal/category"
	"github.com/spendlens/backend/internal/health"
	"github.com/spendlens/backend/internal/model"
)

// Notices embedded in degraded results so the client can tell the user why
// the analysis is basic instead of silently serving weaker content.
const (
	noticeAIDisabled    = "AI analysis is not configured; showing a basic analysis of your data."
	noticeAIUnavailable = "AI analysis is temporarily unavailable; showing a basic analysis of your data."
)

const defaultImpactScore = 5

// fallbackExpenseAnalysis builds a shape-complete analysis from a response
// that could not be parsed. The raw text, when present, is preserved as the
// pattern narrative so the user still sees whatever the model said.
func fallbackExpenseAnalysis(raw string) *ExpenseAnalysis {
	pattern := truncate(raw, 200)
	if pattern == "" {
		pattern = "No clear pattern identified."
	}
	return &ExpenseAnalysis{
		Pattern:          pattern,
		Comparison:       "Not enough information to compare with past expenses.",
		Suggestions:      []string{"Review this expense against your budget for its category."},
		CategoryFeedback: "Category could not be verified automatically.",
		ImpactScore:      defaultImpactScore,
		Degraded:         true,
	}
}

// applyExpenseAnalysisDefaults fills any content field the model left
// empty, so callers always see all five fields populated.
func applyExpenseAnalysisDefaults(a *ExpenseAnalysis) {
	if strings.TrimSpace(a.Pattern) == "" {
		a.Pattern = "No clear pattern identified."
	}
	if strings.TrimSpace(a.Comparison) == "" {
		a.Comparison = "No comparable past expenses found."
	}
	if len(a.Suggestions) == 0 {
		a.Suggestions = []string{"Keep tracking expenses in this category to get tailored suggestions."}
	}
	if strings.TrimSpace(a.CategoryFeedback) == "" {
		a.CategoryFeedback = "The assigned category looks reasonable."
	}
	if a.ImpactScore < 1 || a.ImpactScore > 10 {
		a.ImpactScore = defaultImpactScore
	}
}

// categoryTotals aggregates spend per category name, sorted by amount
// descending with name as the deterministic tiebreak. Uncategorized
// expenses group under "Other".
func categoryTotals(expenses []model.Expense) []CategorySpend {
	byName := make(map[string]float64)
	for _, e := range expenses {
		name := e.CategoryName
		if name == "" {
			name = "Other"
		}
		byName[name] += e.Amount
	}
	totals := make([]CategorySpend, 0, len(byName))
	for name, amount := range byName {
		totals = append(totals, CategorySpend{Category: name, Amount: round2(amount)})
	}
	sort.Slice(totals, func(i, j int) bool {
		if totals[i].Amount != totals[j].Amount {
			return totals[i].Amount > totals[j].Amount
		}
		return totals[i].Category < totals[j].Category
	})
	return totals
}

func totalSpend(expenses []model.Expense) float64 {
	var total float64
	for _, e := range expenses {
		total += e.Amount
	}
	return round2(total)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// degradedInsights computes the insight payload locally: real numbers from
// the user's data, a deterministic health score, and a notice explaining
// why the narrative is basic.
func degradedInsights(expenses []model.Expense, budgets []model.Budget, notice string) *Insights {
	score := health.Compute(expenses, budgets).Score

	if len(expenses) == 0 {
		return &Insights{
			Summary:     "No expenses recorded in the last 30 days.",
			HealthScore: score,
			Recommendations: []string{
				"Add your first expenses to unlock personalized insights.",
				notice,
			},
			Degraded: true,
		}
	}

	totals := categoryTotals(expenses)
	if len(totals) > 3 {
		totals = totals[:3]
	}
	return &Insights{
		Summary: fmt.Sprintf("You spent $%.2f across %d expenses in the last 30 days, led by %s.",
			totalSpend(expenses), len(expenses), totals[0].Category),
		HealthScore:   score,
		TopCategories: totals,
		Recommendations: []string{
			fmt.Sprintf("Review your %s spending, your largest category at $%.2f.",
				totals[0].Category, totals[0].Amount),
			notice,
		},
		Degraded: true,
	}
}

// heuristicBudgetRecommendations suggests each category's observed spend
// rounded up to the nearest $10 as its budget. Crude, but grounded in the
// user's actual numbers.
func heuristicBudgetRecommendations(expenses []model.Expense, notice string) *BudgetRecommendations {
	totals := categoryTotals(expenses)
	if len(totals) == 0 {
		return &BudgetRecommendations{
			Summary:         "No spending history to base budgets on yet. " + notice,
			Recommendations: []BudgetRecommendation{},
			Degraded:        true,
		}
	}

	recs := make([]BudgetRecommendation, 0, len(totals))
	for _, t := range totals {
		recs = append(recs, BudgetRecommendation{
			Category:        t.Category,
			SuggestedAmount: math.Ceil(t.Amount/10) * 10,
			Reasoning:       fmt.Sprintf("You spent $%.2f here in the last 30 days.", t.Amount),
		})
	}
	return &BudgetRecommendations{
		Summary:         "Budgets matched to your recent spending per category. " + notice,
		Recommendations: recs,
		Degraded:        true,
	}
}

// heuristicSavings targets the largest spending category and suggests a 10%
// reduction there.
func heuristicSavings(expenses []model.Expense, notice string) *SavingsAnalysis {
	totals := categoryTotals(expenses)
	if len(totals) == 0 {
		return &SavingsAnalysis{
			Summary:       "No spending history to analyze yet. " + notice,
			Opportunities: []SavingsOpportunity{},
			Degraded:      true,
		}
	}

	top := totals[0]
	estimated := round2(top.Amount * 0.10)
	return &SavingsAnalysis{
		Summary: fmt.Sprintf("%s is your largest spending category at $%.2f. %s",
			top.Category, top.Amount, notice),
		Opportunities: []SavingsOpportunity{
			{
				Category:         top.Category,
				Suggestion:       fmt.Sprintf("Trim %s spending by 10%% to save about $%.2f a month.", top.Category, estimated),
				EstimatedSavings: estimated,
			},
		},
		PotentialMonthlySavings: estimated,
		Degraded:                true,
	}
}

func cannedChatReply() *ChatReply {
	return &ChatReply{
		Message:  "The AI assistant is unavailable right now. Your expense data is safe; try again in a little while.",
		Degraded: true,
	}
}

// sanitizeReceipt enforces the parsed-receipt invariants on model output:
// a valid ISO date, items with non-empty descriptions and plausible
// positive amounts, the receipt date mirrored onto every item, and category
// IDs restricted to the known list (repaired via the matcher when wrong).
func sanitizeReceipt(r *model.ParsedReceipt, categories []model.Category) {
	if _, err := time.Parse("2006-01-02", r.Date); err != nil {
		r.Date = time.Now().Format("2006-01-02")
	}

	if r.Store != nil {
		r.Store.Name = strings.TrimSpace(r.Store.Name)
		r.Store.Address = strings.TrimSpace(r.Store.Address)
		if r.Store.Name == "" {
			r.Store = nil
		} else {
			r.Store.DisplayName = category.FormatLabel(r.Store.Name)
		}
	}

	known := make(map[int]bool, len(categories))
	for _, c := range categories {
		known[c.ID] = true
	}

	items := r.Items[:0]
	for _, item := range r.Items {
		item.Description = strings.TrimSpace(item.Description)
		if item.Description == "" || item.Amount <= 0 || item.Amount >= 1000 {
			continue
		}
		item.Date = r.Date
		if item.CategoryID != 0 && !known[item.CategoryID] {
			item.CategoryID = 0
		}
		if item.CategoryID == 0 {
			if s := category.MatchWithKeywords(item.Description, categories); s != nil {
				item.CategoryID = s.CategoryID
			}
		}
		items = append(items, item)
	}
	r.Items = items
}

// assignItemCategories fills category IDs on parser-produced items, which
// the deterministic parser leaves unset, and derives the store display
// name from the verbatim header.
func assignItemCategories(r *model.ParsedReceipt, categories []model.Category) {
	if r.Store != nil {
		r.Store.DisplayName = category.FormatLabel(r.Store.Name)
	}
	for i := range r.Items {
		r.Items[i].Date = r.Date
		if s := category.MatchWithKeywords(r.Items[i].Description, categories); s != nil {
			r.Items[i].CategoryID = s.CategoryID
		}
	}
}
