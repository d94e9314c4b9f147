// Package ai orchestrates the language-model provider: it builds prompts
// from domain data, parses structured responses, and falls back to the
// deterministic pipeline whenever the provider is disabled, unavailable or
// returns unusable output. Every public operation is total: it returns a
// well-typed result or a well-defined error, regardless of provider state.
package ai

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/spendlens/backend/internal/category"
	"github.com/spendlens/backend/internal/health"
	"github.com/spendlens/backend/internal/model"
	"github.com/spendlens/backend/internal/receipt"
)

// Orchestrator coordinates AI-eligible operations. A nil provider puts
// every operation in degraded mode.
type Orchestrator struct {
	provider Provider
	log      zerolog.Logger
}

// New creates an orchestrator. provider may be nil (AI disabled).
func New(provider Provider, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{provider: provider, log: log}
}

// Enabled reports whether an AI provider is configured.
func (o *Orchestrator) Enabled() bool {
	return o.provider != nil
}

// generate runs the provider call, returning the raw response text.
func (o *Orchestrator) generate(ctx context.Context, prompt string) (string, error) {
	return o.provider.Generate(ctx, prompt)
}

// AnalyzeExpense analyzes a single expense against recent history. There is
// no deterministic substitute for an ad-hoc analysis, so a disabled or
// unreachable provider surfaces SERVICE_UNAVAILABLE. Malformed provider
// output is still recovered into a shape-complete degraded result.
func (o *Orchestrator) AnalyzeExpense(ctx context.Context, expense model.Expense, recent []model.Expense) (*ExpenseAnalysis, error) {
	if strings.TrimSpace(expense.Description) == "" {
		return nil, BadInput("expense description is required")
	}
	if !o.Enabled() {
		return nil, ServiceUnavailable("AI expense analysis is not available", nil)
	}

	raw, err := o.generate(ctx, buildAnalyzeExpensePrompt(expense, recent))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, ServiceUnavailable("AI expense analysis failed", err)
	}

	var result ExpenseAnalysis
	if err := extractJSON(raw, &result); err != nil {
		o.log.Warn().Err(err).Msg("malformed expense analysis response, using fallback")
		return fallbackExpenseAnalysis(raw), nil
	}
	applyExpenseAnalysisDefaults(&result)
	return &result, nil
}

// GenerateInsights produces the financial-overview payload. It never
// returns an error for provider failures: insight reads degrade silently to
// a locally computed default whose recommendations explain why.
func (o *Orchestrator) GenerateInsights(ctx context.Context, expenses []model.Expense, budgets []model.Budget) (*Insights, error) {
	if !o.Enabled() {
		return degradedInsights(expenses, budgets, noticeAIDisabled), nil
	}

	raw, err := o.generate(ctx, buildInsightsPrompt(expenses, budgets))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		o.log.Warn().Err(err).Msg("insights provider call failed, degrading")
		return degradedInsights(expenses, budgets, noticeAIUnavailable), nil
	}

	var result Insights
	if err := extractJSON(raw, &result); err != nil {
		o.log.Warn().Err(err).Msg("malformed insights response, using fallback")
		fallback := degradedInsights(expenses, budgets, noticeAIUnavailable)
		if narrative := truncate(raw, 280); narrative != "" {
			fallback.Summary = narrative
		}
		return fallback, nil
	}

	result.HealthScore = health.Clamp(result.HealthScore)
	if len(result.Recommendations) == 0 {
		result.Recommendations = []string{"Keep tracking your expenses to refine these insights."}
	}
	return &result, nil
}

// GenerateBudgetRecommendations suggests per-category budgets, degrading to
// a spending-history heuristic on any provider failure.
func (o *Orchestrator) GenerateBudgetRecommendations(ctx context.Context, expenses []model.Expense, budgets []model.Budget) (*BudgetRecommendations, error) {
	if !o.Enabled() {
		return heuristicBudgetRecommendations(expenses, noticeAIDisabled), nil
	}

	raw, err := o.generate(ctx, buildBudgetRecommendationsPrompt(expenses, budgets))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		o.log.Warn().Err(err).Msg("budget recommendations provider call failed, degrading")
		return heuristicBudgetRecommendations(expenses, noticeAIUnavailable), nil
	}

	var result BudgetRecommendations
	if err := extractJSON(raw, &result); err != nil {
		o.log.Warn().Err(err).Msg("malformed budget recommendations, using fallback")
		return heuristicBudgetRecommendations(expenses, noticeAIUnavailable), nil
	}
	if len(result.Recommendations) == 0 {
		return heuristicBudgetRecommendations(expenses, noticeAIUnavailable), nil
	}
	return &result, nil
}

// AnalyzeSavings identifies savings opportunities, degrading to a
// top-category heuristic on any provider failure.
func (o *Orchestrator) AnalyzeSavings(ctx context.Context, expenses []model.Expense) (*SavingsAnalysis, error) {
	if !o.Enabled() {
		return heuristicSavings(expenses, noticeAIDisabled), nil
	}

	raw, err := o.generate(ctx, buildSavingsPrompt(expenses))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		o.log.Warn().Err(err).Msg("savings provider call failed, degrading")
		return heuristicSavings(expenses, noticeAIUnavailable), nil
	}

	var result SavingsAnalysis
	if err := extractJSON(raw, &result); err != nil {
		o.log.Warn().Err(err).Msg("malformed savings response, using fallback")
		return heuristicSavings(expenses, noticeAIUnavailable), nil
	}
	return &result, nil
}

// Categorize maps a free-text description to a known category. The AI path
// is tried first when available; any failure falls back to the substring
// matcher. A (nil, nil) return means "no idea" — deliberately not an
// error, and deliberately not a guess.
func (o *Orchestrator) Categorize(ctx context.Context, description string, categories []model.Category) (*model.CategorySuggestion, error) {
	if strings.TrimSpace(description) == "" {
		return nil, BadInput("description is required for categorization")
	}
	if !o.Enabled() {
		return category.MatchWithKeywords(description, categories), nil
	}

	raw, err := o.generate(ctx, buildCategorizePrompt(description, categories))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		o.log.Warn().Err(err).Msg("categorize provider call failed, using matcher")
		return category.MatchWithKeywords(description, categories), nil
	}

	var result model.CategorySuggestion
	if err := extractJSON(raw, &result); err != nil {
		return category.MatchWithKeywords(description, categories), nil
	}
	if suggestion := validateSuggestion(result, categories); suggestion != nil {
		return suggestion, nil
	}
	return category.MatchWithKeywords(description, categories), nil
}

// validateSuggestion checks an AI suggestion against the known category
// list, matching by ID first and name second. Confidence is clamped to
// [0,1]; a missing confidence becomes a cautious 0.5.
func validateSuggestion(s model.CategorySuggestion, categories []model.Category) *model.CategorySuggestion {
	for _, c := range categories {
		if c.ID == s.CategoryID || strings.EqualFold(c.Name, s.CategoryName) {
			confidence := s.Confidence
			if confidence <= 0 {
				confidence = 0.5
			}
			if confidence > 1 {
				confidence = 1
			}
			return &model.CategorySuggestion{
				CategoryID:   c.ID,
				CategoryName: c.Name,
				Confidence:   confidence,
			}
		}
	}
	return nil
}

// ExtractFromReceiptText turns raw receipt text into a structured receipt.
// Receipts always need some structured output, so every failure path
// delegates entirely to the deterministic parser instead of erroring.
func (o *Orchestrator) ExtractFromReceiptText(ctx context.Context, text string, categories []model.Category) (*ReceiptResult, error) {
	if !o.Enabled() {
		return o.parserResult(text, categories), nil
	}

	raw, err := o.generate(ctx, buildReceiptExtractionPrompt(text, categories))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		o.log.Warn().Err(err).Msg("receipt extraction provider call failed, using parser")
		return o.parserResult(text, categories), nil
	}

	var parsed model.ParsedReceipt
	if err := extractJSON(raw, &parsed); err != nil {
		o.log.Warn().Err(err).Msg("malformed receipt extraction response, using parser")
		return o.parserResult(text, categories), nil
	}

	sanitizeReceipt(&parsed, categories)
	if len(parsed.Items) == 0 {
		// The model produced nothing usable; the heuristic parser may
		// still find items.
		if fallback := o.parserResult(text, categories); len(fallback.Receipt.Items) > 0 {
			return fallback, nil
		}
	}
	return &ReceiptResult{Receipt: parsed, Source: "ai"}, nil
}

// parserResult runs the deterministic parser and assigns categories to its
// items via the matcher.
func (o *Orchestrator) parserResult(text string, categories []model.Category) *ReceiptResult {
	parsed := receipt.Parse(text)
	assignItemCategories(&parsed, categories)
	return &ReceiptResult{Receipt: parsed, Source: "parser"}
}

// GenerateHealthScore computes the bounded health score. It never errors:
// the deterministic strategy covers every failure, and zero expenses always
// yield the exact "no data" zero score without consulting the provider.
func (o *Orchestrator) GenerateHealthScore(ctx context.Context, expenses []model.Expense, budgets []model.Budget) model.HealthScore {
	if len(expenses) == 0 || !o.Enabled() {
		return health.Compute(expenses, budgets)
	}

	raw, err := o.generate(ctx, buildHealthScorePrompt(expenses, budgets))
	if err != nil {
		o.log.Warn().Err(err).Msg("health score provider call failed, using deterministic strategy")
		return health.Compute(expenses, budgets)
	}

	var result model.HealthScore
	if err := extractJSON(raw, &result); err != nil {
		o.log.Warn().Err(err).Msg("malformed health score response, substituting neutral")
		return health.Neutral()
	}
	result.Score = health.Clamp(result.Score)
	if result.Breakdown == nil {
		result.Breakdown = map[string]any{"status": "ai", "note": "breakdown unavailable"}
	}
	return result
}

// ChatResponse answers a free-form financial question. The reply is plain
// text, so unlike the structured operations any non-empty provider output
// is usable as-is.
func (o *Orchestrator) ChatResponse(ctx context.Context, question string, expenses []model.Expense, budgets []model.Budget) (*ChatReply, error) {
	if strings.TrimSpace(question) == "" {
		return nil, BadInput("question is required")
	}
	if !o.Enabled() {
		return cannedChatReply(), nil
	}

	raw, err := o.generate(ctx, buildChatPrompt(question, expenses, budgets))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		o.log.Warn().Err(err).Msg("chat provider call failed, using canned reply")
		return cannedChatReply(), nil
	}

	message := strings.TrimSpace(stripFences(raw))
	if message == "" {
		return cannedChatReply(), nil
	}
	return &ChatReply{Message: message}, nil
}
