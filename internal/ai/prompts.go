package ai

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spendlens/backend/internal/model"
)

// Prompts are deterministic templates embedding JSON-serialized domain data
// and an explicit instruction to answer in a fixed JSON schema. The context
// window is small, so expense history is capped before serialization.

const maxPromptExpenses = 50

// expenseForPrompt is the compact expense representation embedded in
// prompts.
type expenseForPrompt struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category,omitempty"`
	Date        string  `json:"date"`
}

type budgetForPrompt struct {
	Category string  `json:"category,omitempty"`
	Amount   float64 `json:"amount"`
	Period   string  `json:"period,omitempty"`
}

func expensesJSON(expenses []model.Expense) string {
	if len(expenses) > maxPromptExpenses {
		expenses = expenses[:maxPromptExpenses]
	}
	rows := make([]expenseForPrompt, 0, len(expenses))
	for _, e := range expenses {
		rows = append(rows, expenseForPrompt{
			Description: e.Description,
			Amount:      e.Amount,
			Category:    e.CategoryName,
			Date:        e.Date.Format("2006-01-02"),
		})
	}
	b, _ := json.Marshal(rows)
	return string(b)
}

func budgetsJSON(budgets []model.Budget) string {
	rows := make([]budgetForPrompt, 0, len(budgets))
	for _, b := range budgets {
		rows = append(rows, budgetForPrompt{
			Category: categoryNameForBudget(b),
			Amount:   b.Amount,
			Period:   b.Period,
		})
	}
	b, _ := json.Marshal(rows)
	return string(b)
}

func categoryNameForBudget(b model.Budget) string {
	if b.CategoryID == 0 {
		return "overall"
	}
	return fmt.Sprintf("category-%d", b.CategoryID)
}

func categoriesList(categories []model.Category) string {
	var sb strings.Builder
	for _, c := range categories {
		fmt.Fprintf(&sb, "- id=%d name=%q\n", c.ID, c.Name)
	}
	return sb.String()
}

func buildAnalyzeExpensePrompt(expense model.Expense, recent []model.Expense) string {
	expJSON, _ := json.Marshal(expenseForPrompt{
		Description: expense.Description,
		Amount:      expense.Amount,
		Category:    expense.CategoryName,
		Date:        expense.Date.Format("2006-01-02"),
	})

	return fmt.Sprintf(`You are a personal finance analyst. Analyze this expense against the user's recent spending history.

Expense:
%s

Recent expenses (last 30 days):
%s

Return ONLY a valid JSON object with this exact structure:
{
  "pattern": "how this purchase fits the user's spending pattern",
  "comparison": "how it compares to similar past expenses",
  "suggestions": ["actionable suggestion", "..."],
  "category_feedback": "whether the assigned category looks right",
  "impact_score": 1-10 number for budget impact (10 = severe)
}`, string(expJSON), expensesJSON(recent))
}

func buildInsightsPrompt(expenses []model.Expense, budgets []model.Budget) string {
	return fmt.Sprintf(`You are a personal finance analyst. Today's date is %s.

Expenses (last 30 days):
%s

Budgets:
%s

Summarize the user's financial situation. Return ONLY a valid JSON object:
{
  "summary": "2-3 sentence overview of spending behavior",
  "health_score": integer 0-100,
  "top_categories": [{"category": "name", "amount": 0.00}],
  "recommendations": ["specific, actionable recommendation", "..."],
  "trends": "one sentence on notable spending trends"
}
Rules:
- health_score reflects budget adherence and spending control.
- recommendations must reference the actual data, not generic advice.`,
		time.Now().Format("2006-01-02"), expensesJSON(expenses), budgetsJSON(budgets))
}

func buildBudgetRecommendationsPrompt(expenses []model.Expense, budgets []model.Budget) string {
	return fmt.Sprintf(`You are a personal finance analyst. Based on this spending history and the existing budgets, recommend monthly budget amounts per category.

Expenses (last 30 days):
%s

Existing budgets:
%s

Return ONLY a valid JSON object:
{
  "summary": "one sentence on the overall budget strategy",
  "recommendations": [
    {"category": "name", "suggested_amount": 0.00, "reasoning": "why"}
  ]
}
Rules:
- Suggested amounts must be realistic against the observed spending.
- Include every category that appears in the expense history.`,
		expensesJSON(expenses), budgetsJSON(budgets))
}

func buildSavingsPrompt(expenses []model.Expense) string {
	return fmt.Sprintf(`You are a personal finance analyst. Identify concrete savings opportunities in this spending history.

Expenses (last 30 days):
%s

Return ONLY a valid JSON object:
{
  "summary": "one sentence overview",
  "opportunities": [
    {"category": "name", "suggestion": "specific action", "estimated_savings": 0.00}
  ],
  "potential_monthly_savings": 0.00
}`, expensesJSON(expenses))
}

func buildCategorizePrompt(description string, categories []model.Category) string {
	return fmt.Sprintf(`Classify this expense description into exactly one of the user's categories.

Description: %q

Categories:
%s
Return ONLY a valid JSON object:
{"category_id": <id from the list>, "category_name": "<name from the list>", "confidence": 0.0-1.0}
If none fit, use the closest one with low confidence.`, description, categoriesList(categories))
}

func buildReceiptExtractionPrompt(text string, categories []model.Category) string {
	return fmt.Sprintf(`Extract structured data from this receipt text.

Receipt text:
"""
%s
"""

Known categories:
%s
Return ONLY a valid JSON object:
{
  "store": {"name": "...", "address": "..."},
  "date": "YYYY-MM-DD",
  "time": "HH:MM",
  "items": [{"description": "...", "amount": 0.00, "category_id": <id or 0>}],
  "totals": {"subtotal": 0.00, "tax": 0.00, "total": 0.00},
  "payment_method": "..."
}
Rules:
- items are individual purchased products only, never subtotal/tax/total lines.
- amounts are positive numbers with two decimals.
- omit unknown fields rather than inventing values.`, text, categoriesList(categories))
}

func buildHealthScorePrompt(expenses []model.Expense, budgets []model.Budget) string {
	return fmt.Sprintf(`You are a personal finance analyst. Score this user's financial health from 0 (critical) to 100 (excellent).

Expenses (last 30 days):
%s

Budgets:
%s

Return ONLY a valid JSON object:
{
  "score": integer 0-100,
  "breakdown": {
    "spending_control": integer 0-100,
    "budget_adherence": "short label",
    "data_quality": integer 0-100
  }
}`, expensesJSON(expenses), budgetsJSON(budgets))
}

func buildChatPrompt(question string, expenses []model.Expense, budgets []model.Budget) string {
	return fmt.Sprintf(`You are a helpful personal finance assistant. Answer the user's question using their actual data. Be concise and concrete; do not invent numbers.

Question: %q

Expenses (last 30 days):
%s

Budgets:
%s`, question, expensesJSON(expenses), budgetsJSON(budgets))
}
