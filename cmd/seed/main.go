// Command seed loads demo categories, expenses and budgets into Firestore
// so the insight endpoints have data to work with during development.
package main

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/spendlens/backend/internal/config"
	"github.com/spendlens/backend/internal/logger"
	"github.com/spendlens/backend/internal/model"
	"github.com/spendlens/backend/internal/store"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)

	if cfg.FirestoreProject == "" {
		log.Fatal().Msg("FIRESTORE_PROJECT is required; the in-memory store cannot be seeded from a separate process")
	}

	ctx := context.Background()
	client, err := firestore.NewClient(ctx, cfg.FirestoreProject)
	if err != nil {
		log.Fatal().Err(err).Msg("create firestore client")
	}
	defer client.Close()
	st := store.NewFirestoreStore(client)

	userID := "demo-user"
	log.Info().Str("user_id", userID).Str("project", cfg.FirestoreProject).Msg("seeding demo data")

	categories := []model.Category{
		{ID: 1, Name: "Groceries", Icon: "cart"},
		{ID: 2, Name: "Transport", Icon: "bus"},
		{ID: 3, Name: "Entertainment", Icon: "film"},
		{ID: 4, Name: "Utilities", Icon: "bolt"},
		{ID: 5, Name: "Dining Out", Icon: "utensils"},
	}
	for i := range categories {
		if err := st.CreateCategory(ctx, &categories[i]); err != nil {
			log.Fatal().Err(err).Str("category", categories[i].Name).Msg("seed category")
		}
	}

	now := time.Now()
	expenses := []model.Expense{
		{UserID: userID, Description: "Woolworths weekly shop", Amount: 142.30, CategoryID: 1, CategoryName: "Groceries", Date: now.AddDate(0, 0, -2)},
		{UserID: userID, Description: "Coles top-up", Amount: 58.75, CategoryID: 1, CategoryName: "Groceries", Date: now.AddDate(0, 0, -9)},
		{UserID: userID, Description: "Opal card", Amount: 50.00, CategoryID: 2, CategoryName: "Transport", Date: now.AddDate(0, 0, -4)},
		{UserID: userID, Description: "Uber to airport", Amount: 63.40, CategoryID: 2, CategoryName: "Transport", Date: now.AddDate(0, 0, -12)},
		{UserID: userID, Description: "Cinema tickets", Amount: 38.00, CategoryID: 3, CategoryName: "Entertainment", Date: now.AddDate(0, 0, -6)},
		{UserID: userID, Description: "Electricity bill", Amount: 180.20, CategoryID: 4, CategoryName: "Utilities", Date: now.AddDate(0, 0, -15)},
		{UserID: userID, Description: "Thai takeaway", Amount: 45.60, CategoryID: 5, CategoryName: "Dining Out", Date: now.AddDate(0, 0, -1)},
		{UserID: userID, Description: "Cafe brunch", Amount: 32.50, CategoryID: 5, CategoryName: "Dining Out", Date: now.AddDate(0, 0, -8)},
	}
	for i := range expenses {
		if err := st.CreateExpense(ctx, &expenses[i]); err != nil {
			log.Fatal().Err(err).Str("description", expenses[i].Description).Msg("seed expense")
		}
	}

	budgets := []model.Budget{
		{UserID: userID, CategoryID: 1, Amount: 250, Period: "monthly"},
		{UserID: userID, CategoryID: 2, Amount: 150, Period: "monthly"},
		{UserID: userID, CategoryID: 5, Amount: 120, Period: "monthly"},
	}
	for i := range budgets {
		if err := st.CreateBudget(ctx, &budgets[i]); err != nil {
			log.Fatal().Err(err).Int("category_id", budgets[i].CategoryID).Msg("seed budget")
		}
	}

	log.Info().Int("categories", len(categories)).Int("expenses", len(expenses)).Int("budgets", len(budgets)).Msg("demo data seeded")
}
