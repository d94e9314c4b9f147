// Package service composes the stores, the OCR pool, the AI orchestrator
// and the insight cache into the operations the HTTP API exposes.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/spendlens/backend/internal/ai"
	"github.com/spendlens/backend/internal/insight"
	"github.com/spendlens/backend/internal/model"
	"github.com/spendlens/backend/internal/ocr"
	"github.com/spendlens/backend/internal/store"
)

// expenseWindow is the history window fed into analysis and insight
// generation.
const expenseWindow = 30 * 24 * time.Hour

// AIService implements the receipt and insight operations.
type AIService struct {
	store        store.Store
	orchestrator *ai.Orchestrator
	cache        *insight.Cache
	documents    *ocr.Pool
	log          zerolog.Logger

	now func() time.Time
}

// NewAIService wires the service dependencies together.
func NewAIService(st store.Store, orchestrator *ai.Orchestrator, cache *insight.Cache, documents *ocr.Pool, log zerolog.Logger) *AIService {
	return &AIService{
		store:        st,
		orchestrator: orchestrator,
		cache:        cache,
		documents:    documents,
		log:          log,
		now:          time.Now,
	}
}

// recentExpenses loads the user's expense history for the analysis window.
func (s *AIService) recentExpenses(ctx context.Context, userID string) ([]model.Expense, error) {
	since := s.now().Add(-expenseWindow)
	expenses, err := s.store.ListExpenses(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("load expenses: %w", err)
	}
	return expenses, nil
}

func (s *AIService) userContext(ctx context.Context, userID string) ([]model.Expense, []model.Budget, error) {
	expenses, err := s.recentExpenses(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	budgets, err := s.store.ListBudgets(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("load budgets: %w", err)
	}
	return expenses, budgets, nil
}

// ParseReceiptText extracts a structured receipt from raw text. Empty text
// is allowed and produces an empty receipt dated today.
func (s *AIService) ParseReceiptText(ctx context.Context, text string) (*ai.ReceiptResult, error) {
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	return s.orchestrator.ExtractFromReceiptText(ctx, text, categories)
}

// AnalyzeReceiptDocument extracts text from an uploaded document and parses
// it. A document with no extractable text is a BAD_INPUT: there is nothing
// meaningful to parse or fall back to.
func (s *AIService) AnalyzeReceiptDocument(ctx context.Context, data []byte) (*ai.ReceiptResult, error) {
	text, err := s.documents.ExtractText(ctx, data)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.log.Warn().Err(err).Int("bytes", len(data)).Msg("document text extraction failed")
		return nil, ai.BadInput("no text could be extracted from the document")
	}
	return s.ParseReceiptText(ctx, text)
}

// AnalyzeExpense runs the single-expense analysis against the user's
// recent history.
func (s *AIService) AnalyzeExpense(ctx context.Context, userID string, expense model.Expense) (*ai.ExpenseAnalysis, error) {
	recent, err := s.recentExpenses(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.orchestrator.AnalyzeExpense(ctx, expense, recent)
}

// CategorizeExpense suggests a category for a description. A nil
// suggestion with a nil error means no category fits.
func (s *AIService) CategorizeExpense(ctx context.Context, description string) (*model.CategorySuggestion, error) {
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	return s.orchestrator.Categorize(ctx, description, categories)
}

// GetInsights returns the cached insight of the given type, generating and
// persisting a fresh one when the cache has no valid entry.
func (s *AIService) GetInsights(ctx context.Context, userID string, typ model.InsightType) (*model.Insight, error) {
	generate, err := s.generatorFor(userID, typ)
	if err != nil {
		return nil, err
	}
	return s.cache.GetOrGenerate(ctx, userID, typ, generate)
}

// generatorFor maps an insight type to its producing operation.
func (s *AIService) generatorFor(userID string, typ model.InsightType) (insight.GenerateFunc, error) {
	switch typ {
	case model.InsightFinancialOverview, model.InsightFinancialGoals, model.InsightTrends:
		return func(ctx context.Context) (any, error) {
			expenses, budgets, err := s.userContext(ctx, userID)
			if err != nil {
				return nil, err
			}
			return s.orchestrator.GenerateInsights(ctx, expenses, budgets)
		}, nil
	case model.InsightBudgetRecommendations:
		return func(ctx context.Context) (any, error) {
			expenses, budgets, err := s.userContext(ctx, userID)
			if err != nil {
				return nil, err
			}
			return s.orchestrator.GenerateBudgetRecommendations(ctx, expenses, budgets)
		}, nil
	case model.InsightSavingsOpportunities:
		return func(ctx context.Context) (any, error) {
			expenses, err := s.recentExpenses(ctx, userID)
			if err != nil {
				return nil, err
			}
			return s.orchestrator.AnalyzeSavings(ctx, expenses)
		}, nil
	default:
		return nil, ai.BadInput(fmt.Sprintf("unknown insight type %q", typ))
	}
}

// GetHealthScore computes the user's current financial health score.
func (s *AIService) GetHealthScore(ctx context.Context, userID string) (model.HealthScore, error) {
	expenses, budgets, err := s.userContext(ctx, userID)
	if err != nil {
		return model.HealthScore{}, err
	}
	return s.orchestrator.GenerateHealthScore(ctx, expenses, budgets), nil
}

// Chat answers a free-form question about the user's finances.
func (s *AIService) Chat(ctx context.Context, userID, question string) (*ai.ChatReply, error) {
	expenses, budgets, err := s.userContext(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.orchestrator.ChatResponse(ctx, question, expenses, budgets)
}
