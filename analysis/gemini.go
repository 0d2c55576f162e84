package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const (
	geminiBaseURL      = "https://generativelanguage.googleapis.com/v1beta/models"
	geminiDefaultModel = "gemini-2.0-flash"
)

var errEmptyCompletion = errors.New("empty completion received")

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Gemini generates text through the Google Gemini REST API
type Gemini struct {
	client *http.Client
	url    string
	model  string
	apiKey string
}

// NewGemini creates a new instance of the Gemini generator
func NewGemini(apiKey string, timeout time.Duration) *Gemini {
	return &Gemini{
		client: &http.Client{
			Timeout: timeout,
		},
		url:    geminiBaseURL,
		model:  geminiDefaultModel,
		apiKey: apiKey,
	}
}

func (g *Gemini) Name() string {
	return "gemini"
}

// Generate runs a single-turn completion
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	reqBody := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: prompt}}},
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("unable to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s:generateContent?key=%s", g.url, g.model, g.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("unable to create POST request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("unable to execute POST request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("invalid status code received: %d", resp.StatusCode)
	}

	var apiResp geminiResponse
	if err = json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return "", fmt.Errorf("unable to decode response: %w", err)
	}

	if len(apiResp.Candidates) == 0 || len(apiResp.Candidates[0].Content.Parts) == 0 {
		return "", errEmptyCompletion
	}

	text := apiResp.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return "", errEmptyCompletion
	}

	return text, nil
}
