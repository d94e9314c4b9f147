package store

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"github.com/spendlens/backend/internal/model"
)

// Firestore collection names.
const (
	collectionExpenses   = "expenses"
	collectionBudgets    = "budgets"
	collectionCategories = "categories"
	collectionInsights   = "insights"
)

// FirestoreStore implements Store backed by Firestore.
// NOTE: query field names must match the Go struct field names (PascalCase),
// which is how Firestore serializes the domain structs.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore creates a Firestore-backed store.
func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

func (s *FirestoreStore) CreateExpense(ctx context.Context, expense *model.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	_, err := s.client.Collection(collectionExpenses).Doc(expense.ID).Set(ctx, expense)
	if err != nil {
		return fmt.Errorf("create expense: %w", err)
	}
	return nil
}

func (s *FirestoreStore) ListExpenses(ctx context.Context, userID string, since time.Time) ([]model.Expense, error) {
	query := s.client.Collection(collectionExpenses).
		Where("UserID", "==", userID).
		Where("Date", ">=", since).
		OrderBy("Date", firestore.Desc)

	iter := query.Documents(ctx)
	defer iter.Stop()

	var expenses []model.Expense
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list expenses: %w", err)
		}
		var expense model.Expense
		if err := doc.DataTo(&expense); err != nil {
			return nil, fmt.Errorf("parse expense %s: %w", doc.Ref.ID, err)
		}
		expenses = append(expenses, expense)
	}
	return expenses, nil
}

func (s *FirestoreStore) CreateBudget(ctx context.Context, budget *model.Budget) error {
	if budget.ID == "" {
		budget.ID = uuid.New().String()
	}
	_, err := s.client.Collection(collectionBudgets).Doc(budget.ID).Set(ctx, budget)
	if err != nil {
		return fmt.Errorf("create budget: %w", err)
	}
	return nil
}

func (s *FirestoreStore) ListBudgets(ctx context.Context, userID string) ([]model.Budget, error) {
	iter := s.client.Collection(collectionBudgets).
		Where("UserID", "==", userID).
		Documents(ctx)
	defer iter.Stop()

	var budgets []model.Budget
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list budgets: %w", err)
		}
		var budget model.Budget
		if err := doc.DataTo(&budget); err != nil {
			return nil, fmt.Errorf("parse budget %s: %w", doc.Ref.ID, err)
		}
		budgets = append(budgets, budget)
	}
	return budgets, nil
}

func (s *FirestoreStore) CreateCategory(ctx context.Context, category *model.Category) error {
	_, err := s.client.Collection(collectionCategories).Doc(fmt.Sprintf("%d", category.ID)).Set(ctx, category)
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

func (s *FirestoreStore) ListCategories(ctx context.Context) ([]model.Category, error) {
	iter := s.client.Collection(collectionCategories).
		OrderBy("ID", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var categories []model.Category
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list categories: %w", err)
		}
		var category model.Category
		if err := doc.DataTo(&category); err != nil {
			return nil, fmt.Errorf("parse category %s: %w", doc.Ref.ID, err)
		}
		categories = append(categories, category)
	}
	return categories, nil
}

func (s *FirestoreStore) CreateInsight(ctx context.Context, insight *model.Insight) error {
	if insight.ID == "" {
		insight.ID = uuid.New().String()
	}
	_, err := s.client.Collection(collectionInsights).Doc(insight.ID).Set(ctx, insight)
	if err != nil {
		return fmt.Errorf("create insight: %w", err)
	}
	return nil
}

func (s *FirestoreStore) ListInsights(ctx context.Context, userID string, insightType model.InsightType) ([]model.Insight, error) {
	query := s.client.Collection(collectionInsights).
		Where("UserID", "==", userID).
		Where("Type", "==", string(insightType)).
		OrderBy("CreatedAt", firestore.Desc).
		Limit(maxInsightRows)

	iter := query.Documents(ctx)
	defer iter.Stop()

	var insights []model.Insight
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list insights: %w", err)
		}
		var insight model.Insight
		if err := doc.DataTo(&insight); err != nil {
			return nil, fmt.Errorf("parse insight %s: %w", doc.Ref.ID, err)
		}
		insights = append(insights, insight)
	}
	return insights, nil
}
