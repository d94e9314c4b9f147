// Package model holds the plain domain types shared across the pipeline.
package model

import (
	"encoding/json"
	"time"
)

// Category is a known expense category from the category store.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"`
}

// Expense is a single expense row joined with its category name.
type Expense struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Description  string    `json:"description"`
	Amount       float64   `json:"amount"`
	CategoryID   int       `json:"category_id,omitempty"`
	CategoryName string    `json:"category_name,omitempty"`
	Date         time.Time `json:"date"`
}

// Budget is a per-category (or overall, CategoryID == 0) spending limit.
type Budget struct {
	ID         string  `json:"id"`
	UserID     string  `json:"user_id"`
	CategoryID int     `json:"category_id,omitempty"`
	Amount     float64 `json:"amount"`
	Period     string  `json:"period,omitempty"`
}

// StoreInfo identifies the merchant on a parsed receipt. Name is the
// verbatim header text; DisplayName is its cleaned, title-cased form.
type StoreInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name,omitempty"`
	Address     string `json:"address,omitempty"`
}

// LineItem is a single purchased item extracted from a receipt.
// Amounts are positive and below the plausibility bound of 1000.
// A LineItem is never mutated after creation.
type LineItem struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	CategoryID  int     `json:"category_id,omitempty"`
	Date        string  `json:"date"`
}

// ReceiptTotals carries the printed subtotal/tax/total amounts.
// Zero means the value was not found on the receipt; no reconciliation
// against the item sum is performed.
type ReceiptTotals struct {
	Subtotal float64 `json:"subtotal,omitempty"`
	Tax      float64 `json:"tax,omitempty"`
	Total    float64 `json:"total,omitempty"`
}

// ParsedReceipt is the best-effort structured form of raw receipt text.
// Items preserve source line order. Date is always a valid ISO-8601 date.
type ParsedReceipt struct {
	Store         *StoreInfo    `json:"store,omitempty"`
	Date          string        `json:"date"`
	Time          string        `json:"time,omitempty"`
	Items         []LineItem    `json:"items"`
	Totals        ReceiptTotals `json:"totals"`
	PaymentMethod string        `json:"payment_method,omitempty"`
}

// CategorySuggestion maps a free-text label to a known category.
// Derived on demand, never persisted.
type CategorySuggestion struct {
	CategoryID   int     `json:"category_id"`
	CategoryName string  `json:"category_name"`
	Confidence   float64 `json:"confidence"`
}

// InsightType enumerates the cached insight artifact kinds.
type InsightType string

const (
	InsightFinancialOverview     InsightType = "financial_overview"
	InsightBudgetRecommendations InsightType = "budget_recommendations"
	InsightSavingsOpportunities  InsightType = "savings_opportunities"
	InsightFinancialGoals        InsightType = "financial_goals"
	InsightTrends                InsightType = "trends"
)

// Insight is a cached, typed, expiring artifact produced for a user.
// Rows are append-only; ExpiresAt = CreatedAt + TTL.
type Insight struct {
	ID        string            `json:"id"`
	UserID    string            `json:"user_id"`
	Type      InsightType       `json:"type"`
	Content   json.RawMessage   `json:"content"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	ExpiresAt time.Time         `json:"expires_at"`
}

// Valid reports whether the insight is still usable at the given instant.
func (i *Insight) Valid(now time.Time) bool {
	return i.ExpiresAt.After(now)
}

// HealthScore is a bounded [0,100] summary of a user's financial condition.
// Breakdown values are integers or short explanatory strings keyed by
// factor name.
type HealthScore struct {
	Score     int            `json:"score"`
	Breakdown map[string]any `json:"breakdown"`
}
