// Package store persists the domain data the insight pipeline reads and
// writes. Two implementations exist: an in-memory store for local
// development and tests, and a Firestore-backed store for production.
package store

import (
	"context"
	"time"

	"github.com/spendlens/backend/internal/model"
)

// maxInsightRows bounds how many cached insight rows a single lookup
// returns. Rows are append-only, so without a bound old generations pile
// up in every read.
const maxInsightRows = 20

// Store defines the database operations used by the insight pipeline.
type Store interface {
	// Expense operations. ListExpenses returns the user's expenses dated
	// at or after since, newest first.
	CreateExpense(ctx context.Context, expense *model.Expense) error
	ListExpenses(ctx context.Context, userID string, since time.Time) ([]model.Expense, error)

	// Budget operations.
	CreateBudget(ctx context.Context, budget *model.Budget) error
	ListBudgets(ctx context.Context, userID string) ([]model.Budget, error)

	// Category operations. Categories are shared across users.
	CreateCategory(ctx context.Context, category *model.Category) error
	ListCategories(ctx context.Context) ([]model.Category, error)

	// Insight operations. Insight rows are append-only: CreateInsight
	// never overwrites, and ListInsights returns rows newest first
	// including expired ones (callers filter on validity).
	CreateInsight(ctx context.Context, insight *model.Insight) error
	ListInsights(ctx context.Context, userID string, insightType model.InsightType) ([]model.Insight, error)
}
