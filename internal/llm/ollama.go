package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"forecast-go/internal/service"
)

const (
	DefaultOllamaURL   = "http://localhost:11434"
	DefaultOllamaModel = "qwen3-vl:2b"
)

type Config struct {
	BaseURL string
	Model   string
	APIKey  string
}

// OllamaAdvisor generates recommendations with a local Ollama server
type OllamaAdvisor struct {
	config Config
	client *http.Client
}

func NewOllama(baseURL, model string) *OllamaAdvisor {
	if baseURL == "" {
		baseURL = DefaultOllamaURL
	}
	if model == "" {
		model = DefaultOllamaModel
	}
	return &OllamaAdvisor{
		config: Config{
			BaseURL: strings.TrimRight(baseURL, "/"),
			Model:   model,
		},
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

type GenerateRequest struct {
	Model  string `json:"model"`
	System string `json:"system,omitempty"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type GenerateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

// Summarize calls the Ollama generate API
func (o *OllamaAdvisor) Summarize(ctx context.Context, req service.AdvisoryRequest) (string, error) {
	reqBody := GenerateRequest{
		Model:  o.config.Model,
		System: req.System,
		Prompt: req.Prompt,
		Stream: false,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.config.BaseURL+"/api/generate", bytes.NewReader(jsonData))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama API returned status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var genResp GenerateResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return "", err
	}
	if genResp.Error != "" {
		return "", fmt.Errorf("ollama error: %s", genResp.Error)
	}

	return strings.TrimSpace(genResp.Response), nil
}
