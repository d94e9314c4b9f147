package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiModel   = "gemini-2.0-flash"
	defaultCallTimeout   = 30 * time.Second
)

// Provider is the injected language-model capability. A nil Provider means
// AI is disabled; there is no separate runtime flag. Implementations must
// honor context cancellation and may return arbitrary (non-JSON) text.
type Provider interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeminiProvider calls the Gemini generateContent REST API.
type GeminiProvider struct {
	apiKey      string
	model       string
	baseURL     string
	httpClient  *http.Client
	callTimeout time.Duration
	RetryConfig RetryConfig
}

// NewGeminiProvider creates a provider for the given API key. It returns
// nil when the key is empty, which downstream code treats as AI disabled.
func NewGeminiProvider(apiKey string) *GeminiProvider {
	if apiKey == "" {
		return nil
	}
	return &GeminiProvider{
		apiKey:      apiKey,
		model:       defaultGeminiModel,
		baseURL:     defaultGeminiBaseURL,
		httpClient:  &http.Client{Timeout: 60 * time.Second},
		callTimeout: defaultCallTimeout,
		RetryConfig: DefaultRetryConfig,
	}
}

// Generate sends a text prompt and returns the first candidate's text. The
// call is bounded by an explicit deadline and retried with backoff on
// transient failures.
func (p *GeminiProvider) Generate(ctx context.Context, prompt string) (string, error) {
	return WithRetry(ctx, p.RetryConfig, func(ctx context.Context) (string, error) {
		callCtx, cancel := context.WithTimeout(ctx, p.callTimeout)
		defer cancel()
		return p.generateOnce(callCtx, prompt)
	})
}

func (p *GeminiProvider) generateOnce(ctx context.Context, prompt string) (string, error) {
	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", p.baseURL, p.model, p.apiKey)

	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"parts": []map[string]interface{}{
					{"text": prompt},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"temperature":     0.1,
			"maxOutputTokens": 4096,
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", classifyProviderError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", classifyProviderHTTPError(resp.StatusCode, string(respBody))
	}

	var geminiResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(respBody, &geminiResp); err != nil {
		return "", fmt.Errorf("parse provider response: %w", err)
	}

	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		return "", &Error{
			Code:      ErrProviderUnavailable,
			Message:   "empty provider response",
			Retryable: true,
		}
	}

	return geminiResp.Candidates[0].Content.Parts[0].Text, nil
}

// classifyProviderError converts network errors into retryable pipeline
// errors.
func classifyProviderError(err error) *Error {
	return &Error{
		Code:      ErrProviderUnavailable,
		Message:   "provider request failed",
		Retryable: true,
		Cause:     err,
	}
}

// classifyProviderHTTPError converts HTTP status errors. Rate limits and
// server-side errors are retryable; everything else is not.
func classifyProviderHTTPError(statusCode int, body string) *Error {
	if statusCode == http.StatusTooManyRequests {
		return &Error{
			Code:      ErrProviderRateLimited,
			Message:   "provider rate limited",
			Retryable: true,
		}
	}
	return &Error{
		Code:      ErrProviderUnavailable,
		Message:   fmt.Sprintf("provider error (HTTP %d): %s", statusCode, truncate(body, 200)),
		Retryable: statusCode >= 500,
	}
}
