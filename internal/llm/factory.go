package llm

import (
	"fmt"
	"strings"

	"forecast-go/internal/service"
	"forecast-go/internal/state"
)

// Provider names accepted in advisor settings.
const (
	ProviderNone   = "none"
	ProviderOllama = "ollama"
	ProviderGemini = "gemini"
)

// New builds the advisor for the given settings. A "none" or empty
// provider returns a nil advisor.
func New(settings state.AdvisorSettings, apiKey string) (service.SummaryAdvisor, error) {
	switch strings.ToLower(strings.TrimSpace(settings.Provider)) {
	case "", ProviderNone:
		return nil, nil
	case ProviderOllama:
		return NewOllama(settings.BaseURL, settings.Model), nil
	case ProviderGemini:
		if apiKey == "" {
			return nil, fmt.Errorf("gemini advisor requires an API key")
		}
		return NewGemini(Config{BaseURL: settings.BaseURL, Model: settings.Model, APIKey: apiKey}), nil
	default:
		return nil, fmt.Errorf("unknown advisor provider %q", settings.Provider)
	}
}
