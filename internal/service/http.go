package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/spendlens/backend/internal/ai"
	"github.com/spendlens/backend/internal/model"
)

const maxUploadBytes = 10 << 20 // 10MB document upload cap

// Handler exposes the AI service over plain JSON HTTP.
type Handler struct {
	service *AIService
	log     zerolog.Logger
}

// NewHandler creates the HTTP handler for the AI service.
func NewHandler(service *AIService, log zerolog.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// Routes registers all endpoints on a fresh mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/receipts/parse", h.parseReceipt)
	mux.HandleFunc("POST /v1/receipts/document", h.analyzeReceiptDocument)
	mux.HandleFunc("POST /v1/expenses/analyze", h.analyzeExpense)
	mux.HandleFunc("POST /v1/expenses/categorize", h.categorizeExpense)
	mux.HandleFunc("GET /v1/insights", h.getInsights)
	mux.HandleFunc("GET /v1/health-score", h.getHealthScore)
	mux.HandleFunc("POST /v1/chat", h.chat)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error().Err(err).Msg("encode response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var body errorBody
	status := http.StatusInternalServerError
	body.Error.Code = "INTERNAL"
	body.Error.Message = "internal error"

	switch code := ai.CodeOf(err); code {
	case ai.ErrBadInput:
		status = http.StatusBadRequest
		body.Error.Code = string(code)
		body.Error.Message = err.Error()
	case ai.ErrServiceUnavailable:
		status = http.StatusServiceUnavailable
		body.Error.Code = string(code)
		body.Error.Message = err.Error()
	default:
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusServiceUnavailable
			body.Error.Code = "TIMEOUT"
			body.Error.Message = "request cancelled or timed out"
		} else {
			h.log.Error().Err(err).Msg("request failed")
		}
	}
	h.writeJSON(w, status, body)
}

func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return ai.BadInput("invalid JSON request body")
	}
	return nil
}

func requireUserID(userID string) error {
	if userID == "" {
		return ai.BadInput("user_id is required")
	}
	return nil
}

func (h *Handler) parseReceipt(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	result, err := h.service.ParseReceiptText(r.Context(), req.Text)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) analyzeReceiptDocument(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxUploadBytes))
	r.Body.Close()
	if err != nil {
		h.writeError(w, ai.BadInput("could not read document body"))
		return
	}

	result, err := h.service.AnalyzeReceiptDocument(r.Context(), data)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) analyzeExpense(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID      string  `json:"user_id"`
		Description string  `json:"description"`
		Amount      float64 `json:"amount"`
		Category    string  `json:"category,omitempty"`
		Date        string  `json:"date,omitempty"`
	}
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	if err := requireUserID(req.UserID); err != nil {
		h.writeError(w, err)
		return
	}

	date := time.Now()
	if req.Date != "" {
		if parsed, err := time.Parse("2006-01-02", req.Date); err == nil {
			date = parsed
		}
	}
	expense := model.Expense{
		UserID:       req.UserID,
		Description:  req.Description,
		Amount:       req.Amount,
		CategoryName: req.Category,
		Date:         date,
	}

	result, err := h.service.AnalyzeExpense(r.Context(), req.UserID, expense)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) categorizeExpense(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Description string `json:"description"`
	}
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	suggestion, err := h.service.CategorizeExpense(r.Context(), req.Description)
	if err != nil {
		h.writeError(w, err)
		return
	}
	// A null suggestion is a valid "no idea" answer.
	h.writeJSON(w, http.StatusOK, map[string]any{"suggestion": suggestion})
}

func (h *Handler) getInsights(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if err := requireUserID(userID); err != nil {
		h.writeError(w, err)
		return
	}
	typ := model.InsightType(r.URL.Query().Get("type"))
	if typ == "" {
		typ = model.InsightFinancialOverview
	}

	result, err := h.service.GetInsights(r.Context(), userID, typ)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) getHealthScore(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if err := requireUserID(userID); err != nil {
		h.writeError(w, err)
		return
	}

	result, err := h.service.GetHealthScore(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) chat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID  string `json:"user_id"`
		Message string `json:"message"`
	}
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	if err := requireUserID(req.UserID); err != nil {
		h.writeError(w, err)
		return
	}

	reply, err := h.service.Chat(r.Context(), req.UserID, req.Message)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, reply)
}
