package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const (
	huggingFaceBaseURL      = "https://router.huggingface.co/v1/chat/completions"
	huggingFaceDefaultModel = "meta-llama/Llama-3.1-8B-Instruct"
)

type hfChatRequest struct {
	Model    string          `json:"model"`
	Messages []hfChatMessage `json:"messages"`
}

type hfChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type hfChatResponse struct {
	Choices []struct {
		Message hfChatMessage `json:"message"`
	} `json:"choices"`
}

// HuggingFace generates text through the Hugging Face inference router,
// used as the fallback backend when the primary is unavailable
type HuggingFace struct {
	client *http.Client
	url    string
	model  string
	apiKey string
}

// NewHuggingFace creates a new instance of the Hugging Face generator
func NewHuggingFace(apiKey string, timeout time.Duration) *HuggingFace {
	return &HuggingFace{
		client: &http.Client{
			Timeout: timeout,
		},
		url:    huggingFaceBaseURL,
		model:  huggingFaceDefaultModel,
		apiKey: apiKey,
	}
}

func (h *HuggingFace) Name() string {
	return "huggingface"
}

// Generate runs a single-turn chat completion
func (h *HuggingFace) Generate(ctx context.Context, prompt string) (string, error) {
	reqBody := hfChatRequest{
		Model: h.model,
		Messages: []hfChatMessage{
			{Role: "user", Content: prompt},
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("unable to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("unable to create POST request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+h.apiKey)

	resp, err := h.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("unable to execute POST request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("invalid status code received: %d", resp.StatusCode)
	}

	var apiResp hfChatResponse
	if err = json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return "", fmt.Errorf("unable to decode response: %w", err)
	}

	if len(apiResp.Choices) == 0 || apiResp.Choices[0].Message.Content == "" {
		return "", errEmptyCompletion
	}

	return apiResp.Choices[0].Message.Content, nil
}
