package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spendlens/backend/internal/ai"
	"github.com/spendlens/backend/internal/insight"
	"github.com/spendlens/backend/internal/model"
	"github.com/spendlens/backend/internal/ocr"
	"github.com/spendlens/backend/internal/store"
)

// scriptedProvider returns a fixed response per call.
type scriptedProvider struct {
	response string
	calls    int
}

func (p *scriptedProvider) Generate(ctx context.Context, prompt string) (string, error) {
	p.calls++
	return p.response, nil
}

func newTestService(t *testing.T, provider ai.Provider) (*AIService, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	ctx := context.Background()
	for _, name := range []string{"Groceries", "Transport", "Entertainment"} {
		require.NoError(t, st.CreateCategory(ctx, &model.Category{Name: name}))
	}

	log := zerolog.Nop()
	orchestrator := ai.New(provider, log)
	cache := insight.NewCache(st, time.Hour, log)
	pool := ocr.NewPool(ocr.TextEngine{}, 2, 5*time.Second, log)
	return NewAIService(st, orchestrator, cache, pool, log), st
}

func seedExpenses(t *testing.T, st *store.MemoryStore, userID string) {
	t.Helper()
	ctx := context.Background()
	now := time.Now()
	rows := []model.Expense{
		{UserID: userID, Description: "Woolworths", Amount: 120.50, CategoryName: "Groceries", Date: now.AddDate(0, 0, -2)},
		{UserID: userID, Description: "Uber", Amount: 34.20, CategoryName: "Transport", Date: now.AddDate(0, 0, -5)},
		{UserID: userID, Description: "Ancient dinner", Amount: 80.00, CategoryName: "Entertainment", Date: now.AddDate(0, 0, -90)},
	}
	for i := range rows {
		require.NoError(t, st.CreateExpense(ctx, &rows[i]))
	}
}

func TestParseReceiptTextWithoutProvider(t *testing.T) {
	svc, _ := newTestService(t, nil)

	result, err := svc.ParseReceiptText(context.Background(), "WALMART\nMILK 3.99\nBREAD 2.49\nTOTAL 6.48")
	require.NoError(t, err)
	assert.Equal(t, "parser", result.Source)
	require.Len(t, result.Receipt.Items, 2)
	assert.Equal(t, "MILK", result.Receipt.Items[0].Description)
}

func TestParseReceiptTextEmptyInput(t *testing.T) {
	svc, _ := newTestService(t, nil)

	result, err := svc.ParseReceiptText(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, result.Receipt.Items)
	assert.NotEmpty(t, result.Receipt.Date, "date must default to today")
}

func TestAnalyzeReceiptDocumentNoText(t *testing.T) {
	svc, _ := newTestService(t, nil)

	_, err := svc.AnalyzeReceiptDocument(context.Background(), []byte("   "))
	assert.Equal(t, ai.ErrBadInput, ai.CodeOf(err))
}

func TestAnalyzeReceiptDocumentPlainText(t *testing.T) {
	svc, _ := newTestService(t, nil)

	result, err := svc.AnalyzeReceiptDocument(context.Background(), []byte("COLES\nEGGS 5.20\nTOTAL 5.20"))
	require.NoError(t, err)
	require.Len(t, result.Receipt.Items, 1)
	assert.Equal(t, 5.20, result.Receipt.Items[0].Amount)
}

func TestGetInsightsGeneratesThenCaches(t *testing.T) {
	provider := &scriptedProvider{response: `{"summary":"steady","health_score":72,"recommendations":["keep it up"]}`}
	svc, st := newTestService(t, provider)
	seedExpenses(t, st, "u1")

	first, err := svc.GetInsights(context.Background(), "u1", model.InsightFinancialOverview)
	require.NoError(t, err)
	assert.Equal(t, 1, provider.calls)

	second, err := svc.GetInsights(context.Background(), "u1", model.InsightFinancialOverview)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "second read must come from the cache")
	assert.Equal(t, 1, provider.calls, "cache hit must not call the provider")

	var content ai.Insights
	require.NoError(t, json.Unmarshal(second.Content, &content))
	assert.Equal(t, 72, content.HealthScore)
}

func TestGetInsightsDegradedStillCached(t *testing.T) {
	svc, st := newTestService(t, nil)
	seedExpenses(t, st, "u1")

	got, err := svc.GetInsights(context.Background(), "u1", model.InsightBudgetRecommendations)
	require.NoError(t, err)

	var content ai.BudgetRecommendations
	require.NoError(t, json.Unmarshal(got.Content, &content))
	assert.True(t, content.Degraded)
	assert.NotEmpty(t, content.Recommendations)

	rows, err := st.ListInsights(context.Background(), "u1", model.InsightBudgetRecommendations)
	require.NoError(t, err)
	assert.Len(t, rows, 1, "degraded payloads are persisted like any other")
}

func TestGetInsightsUnknownType(t *testing.T) {
	svc, _ := newTestService(t, nil)

	_, err := svc.GetInsights(context.Background(), "u1", model.InsightType("horoscope"))
	assert.Equal(t, ai.ErrBadInput, ai.CodeOf(err))
}

func TestGetHealthScoreNoData(t *testing.T) {
	svc, _ := newTestService(t, nil)

	score, err := svc.GetHealthScore(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, score.Score)
	assert.NotNil(t, score.Breakdown)
}

func TestAnalyzeExpenseWithoutProvider(t *testing.T) {
	svc, st := newTestService(t, nil)
	seedExpenses(t, st, "u1")

	_, err := svc.AnalyzeExpense(context.Background(), "u1", model.Expense{Description: "Coffee", Amount: 4.50})
	assert.Equal(t, ai.ErrServiceUnavailable, ai.CodeOf(err))
}

func TestCategorizeExpenseMatcherFallback(t *testing.T) {
	svc, _ := newTestService(t, nil)

	suggestion, err := svc.CategorizeExpense(context.Background(), "uber ride transport")
	require.NoError(t, err)
	require.NotNil(t, suggestion)
	assert.Equal(t, "Transport", suggestion.CategoryName)
}

// HTTP layer

func newTestServer(t *testing.T, provider ai.Provider) (*httptest.Server, *store.MemoryStore) {
	t.Helper()
	svc, st := newTestService(t, provider)
	srv := httptest.NewServer(NewHandler(svc, zerolog.Nop()).Routes())
	t.Cleanup(srv.Close)
	return srv, st
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	return resp
}

func TestHTTPParseReceipt(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp := postJSON(t, srv.URL+"/v1/receipts/parse", map[string]string{
		"text": "WALMART\nMILK 3.99\nTOTAL 3.99",
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result ai.ReceiptResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "parser", result.Source)
	assert.Len(t, result.Receipt.Items, 1)
}

func TestHTTPInsightsRequiresUserID(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/v1/insights")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHTTPAnalyzeExpenseUnavailable(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp := postJSON(t, srv.URL+"/v1/expenses/analyze", map[string]any{
		"user_id":     "u1",
		"description": "Coffee",
		"amount":      4.50,
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	var body errorBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, string(ai.ErrServiceUnavailable), body.Error.Code)
}

func TestHTTPCategorizeNoMatchIsNull(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp := postJSON(t, srv.URL+"/v1/expenses/categorize", map[string]string{
		"description": "xyzzy plugh",
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Suggestion *model.CategorySuggestion `json:"suggestion"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Nil(t, body.Suggestion)
}

func TestHTTPHealthScore(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/v1/health-score?user_id=u1")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var score model.HealthScore
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&score))
	assert.Equal(t, 0, score.Score)
}

func TestHTTPChatDegraded(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp := postJSON(t, srv.URL+"/v1/chat", map[string]string{
		"user_id": "u1",
		"message": "how are my finances?",
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var reply ai.ChatReply
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&reply))
	assert.True(t, reply.Degraded)
	assert.NotEmpty(t, reply.Message)
}
