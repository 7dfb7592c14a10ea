package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"family-meal-planner/internal/config"
	"family-meal-planner/internal/shared"
)

// ollamaClient is the locally network-served backend variant, talking to
// an Ollama server on the local network.
type ollamaClient struct {
	baseURL     string
	model       string
	temperature float64
	httpClient  *http.Client
}

// NewOllamaClient creates a client for a locally served Ollama model.
func NewOllamaClient(cfg *config.Config, temperature float64) TextGenerator {
	return &ollamaClient{
		baseURL:     cfg.OllamaBaseURL,
		model:       cfg.OllamaModel,
		temperature: temperature,
		httpClient: &http.Client{
			Timeout: 5 * time.Minute, // local inference can be slow
		},
	}
}

// GenerateContent sends a prompt to the local model and returns the generated text.
func (c *ollamaClient) GenerateContent(ctx context.Context, prompt string) (ContentResponse, error) {
	reqBody := map[string]interface{}{
		"model": c.model,
		"messages": []map[string]string{
			{
				"role":    "user",
				"content": prompt,
			},
		},
		"stream": false,
		"options": map[string]interface{}{
			"temperature": c.temperature,
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return ContentResponse{}, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/chat", bytes.NewBuffer(jsonBody))
	if err != nil {
		return ContentResponse{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ContentResponse{}, classify(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return ContentResponse{}, fmt.Errorf("%w: ollama status=%d body=%s", ErrBackendUnavailable, resp.StatusCode, string(bodyBytes))
	}

	var ollamaResp struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		PromptEvalCount int `json:"prompt_eval_count"`
		EvalCount       int `json:"eval_count"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&ollamaResp); err != nil {
		return ContentResponse{}, fmt.Errorf("%w: failed to decode response: %v", ErrBackendUnavailable, err)
	}

	if ollamaResp.Message.Content == "" {
		return ContentResponse{}, fmt.Errorf("%w: no content generated", ErrBackendUnavailable)
	}

	return ContentResponse{
		Content: ollamaResp.Message.Content,
		Usage: shared.TokenUsage{
			PromptTokens:     ollamaResp.PromptEvalCount,
			CompletionTokens: ollamaResp.EvalCount,
			TotalTokens:      ollamaResp.PromptEvalCount + ollamaResp.EvalCount,
			Model:            c.model,
		},
	}, nil
}
