package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spendlens/backend/internal/model"
)

// MemoryStore implements Store with in-memory maps. Used for local
// development and tests.
type MemoryStore struct {
	mu sync.RWMutex

	expenses   map[string]*model.Expense
	budgets    map[string]*model.Budget
	categories map[int]*model.Category
	insights   map[string]*model.Insight

	nextCategoryID int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		expenses:       make(map[string]*model.Expense),
		budgets:        make(map[string]*model.Budget),
		categories:     make(map[int]*model.Category),
		insights:       make(map[string]*model.Insight),
		nextCategoryID: 1,
	}
}

func (m *MemoryStore) CreateExpense(ctx context.Context, expense *model.Expense) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	clone := *expense
	m.expenses[expense.ID] = &clone
	return nil
}

func (m *MemoryStore) ListExpenses(ctx context.Context, userID string, since time.Time) ([]model.Expense, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []model.Expense
	for _, e := range m.expenses {
		if e.UserID != userID || e.Date.Before(since) {
			continue
		}
		result = append(result, *e)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.After(result[j].Date)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (m *MemoryStore) CreateBudget(ctx context.Context, budget *model.Budget) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if budget.ID == "" {
		budget.ID = uuid.New().String()
	}
	clone := *budget
	m.budgets[budget.ID] = &clone
	return nil
}

func (m *MemoryStore) ListBudgets(ctx context.Context, userID string) ([]model.Budget, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []model.Budget
	for _, b := range m.budgets {
		if b.UserID != userID {
			continue
		}
		result = append(result, *b)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *MemoryStore) CreateCategory(ctx context.Context, category *model.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if category.ID == 0 {
		category.ID = m.nextCategoryID
	}
	if category.ID >= m.nextCategoryID {
		m.nextCategoryID = category.ID + 1
	}
	clone := *category
	m.categories[category.ID] = &clone
	return nil
}

func (m *MemoryStore) ListCategories(ctx context.Context) ([]model.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]model.Category, 0, len(m.categories))
	for _, c := range m.categories {
		result = append(result, *c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *MemoryStore) CreateInsight(ctx context.Context, insight *model.Insight) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if insight.ID == "" {
		insight.ID = uuid.New().String()
	}
	clone := *insight
	m.insights[insight.ID] = &clone
	return nil
}

func (m *MemoryStore) ListInsights(ctx context.Context, userID string, insightType model.InsightType) ([]model.Insight, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []model.Insight
	for _, i := range m.insights {
		if i.UserID != userID || i.Type != insightType {
			continue
		}
		result = append(result, *i)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	if len(result) > maxInsightRows {
		result = result[:maxInsightRows]
	}
	return result, nil
}
