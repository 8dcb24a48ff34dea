package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"chunkwise/internal/apperrors"
	"chunkwise/internal/logger"
)

// Environment configuration for the suggestion endpoint. Any
// OpenAI-compatible chat-completions server works.
const (
	EnvOracleURL   = "CHUNKWISE_ORACLE_URL"
	EnvOracleModel = "CHUNKWISE_ORACLE_MODEL"
	EnvOracleKey   = "CHUNKWISE_ORACLE_KEY"

	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"
	defaultModel   = "gemini-2.5-flash"
)

type Client struct {
	httpClient *http.Client
	baseURL    string
	model      string
	apiKey     string
}

// NewClientFromEnv builds a client from the environment. A missing API key
// is an error; url and model fall back to defaults.
func NewClientFromEnv() (*Client, error) {
	key := os.Getenv(EnvOracleKey)
	if key == "" {
		return nil, fmt.Errorf("%s is not set; suggestions are unavailable", EnvOracleKey)
	}
	baseURL := os.Getenv(EnvOracleURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := os.Getenv(EnvOracleModel)
	if model == "" {
		model = defaultModel
	}
	return &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		apiKey:     key,
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// complete sends one system+user exchange and returns the raw JSON content
// of the first choice.
func (c *Client) complete(ctx context.Context, system, user string) (string, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: 0.7,
	}
	reqBody.ResponseFormat.Type = "json_object"

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("oracle request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		logger.Warn("oracle returned non-200", "status", resp.StatusCode)
		return "", fmt.Errorf("oracle returned status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decoding oracle envelope: %w", err)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", apperrors.OracleViolationf("empty response")
	}
	return parsed.Choices[0].Message.Content, nil
}

// ExtractChunks asks the oracle to break an intention into chunks and
// validates the payload before returning it.
func (c *Client) ExtractChunks(ctx context.Context, req ExtractChunksRequest) (ExtractChunksResponse, error) {
	raw, err := c.complete(ctx, extractSystemPrompt, extractChunksPrompt(req))
	if err != nil {
		return ExtractChunksResponse{}, err
	}
	var resp ExtractChunksResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return ExtractChunksResponse{}, apperrors.OracleViolationf("response is not valid JSON: %v", err)
	}
	if err := ValidateExtractResponse(&resp); err != nil {
		return ExtractChunksResponse{}, err
	}
	return resp, nil
}

// BuildPlan asks the oracle for a day-plan suggestion. The caller still runs
// the result through the planner's reconciler; validation here only covers
// the payload contract.
func (c *Client) BuildPlan(ctx context.Context, req BuildPlanRequest) (BuildPlanResponse, error) {
	if len(req.Candidates) == 0 {
		return BuildPlanResponse{}, apperrors.Validationf("no candidate chunks to plan with")
	}
	raw, err := c.complete(ctx, buildPlanSystemPrompt, buildPlanPrompt(req))
	if err != nil {
		return BuildPlanResponse{}, err
	}
	var resp BuildPlanResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return BuildPlanResponse{}, apperrors.OracleViolationf("response is not valid JSON: %v", err)
	}
	if err := ValidatePlanResponse(req, &resp); err != nil {
		return BuildPlanResponse{}, err
	}
	return resp, nil
}

// SplitChunk asks the oracle to split one oversized chunk. A duration drift
// beyond the variance threshold is logged, not rejected.
func (c *Client) SplitChunk(ctx context.Context, req SplitChunkRequest) (SplitChunkResponse, error) {
	if err := ValidateSplitRequest(req); err != nil {
		return SplitChunkResponse{}, err
	}
	raw, err := c.complete(ctx, splitSystemPrompt, splitChunkPrompt(req))
	if err != nil {
		return SplitChunkResponse{}, err
	}
	var resp SplitChunkResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return SplitChunkResponse{}, apperrors.OracleViolationf("response is not valid JSON: %v", err)
	}
	warning, err := ValidateSplitResponse(req.OriginalDurationMin, &resp)
	if err != nil {
		return SplitChunkResponse{}, err
	}
	if warning != "" {
		logger.Warn("split suggestion duration drift", "detail", warning)
	}
	return resp, nil
}
