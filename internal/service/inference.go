package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/edupath/edupath/internal/config"
)

// InferenceClient talks to the inference backend over its single /ask RPC.
type InferenceClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewInferenceClient(baseURL string) *InferenceClient {
	return &InferenceClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: config.RequestTimeout},
	}
}

type TurnMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type askRequest struct {
	Messages       []TurnMessage `json:"messages"`
	LatestQuestion string        `json:"latestQuestion"`
}

type AskResponse struct {
	Answer string `json:"answer"`
	Usage  struct {
		PromptTokens     int     `json:"prompt_tokens"`
		CompletionTokens int     `json:"completion_tokens"`
		TotalCost        float64 `json:"total_cost"`
	} `json:"usage"`
}

// Ask sends the context window plus the latest question and returns the
// backend's answer. Any non-2xx status is an error.
func (s *InferenceClient) Ask(ctx context.Context, priorTurns []TurnMessage, latestQuestion string) (*AskResponse, error) {
	payload, err := json.Marshal(askRequest{
		Messages:       priorTurns,
		LatestQuestion: latestQuestion,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/ask", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ask request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("inference backend returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var askResp AskResponse
	if err := json.Unmarshal(body, &askResp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	return &askResp, nil
}
