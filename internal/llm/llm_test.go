package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"forecast-go/internal/service"
	"forecast-go/internal/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRequest = service.AdvisoryRequest{Topic: "outlook", System: "be brief", Prompt: "Economy: current=4"}

func TestOllamaSummarize(t *testing.T) {
	var got GenerateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(GenerateResponse{Response: "  grow exports \n"})
	}))
	defer srv.Close()

	text, err := NewOllama(srv.URL+"/", "tiny").Summarize(context.Background(), testRequest)
	require.NoError(t, err)

	assert.Equal(t, "grow exports", text)
	assert.Equal(t, "tiny", got.Model)
	assert.Equal(t, "be brief", got.System)
	assert.Equal(t, "Economy: current=4", got.Prompt)
	assert.False(t, got.Stream)
}

func TestOllamaErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewOllama(srv.URL, "").Summarize(context.Background(), testRequest)
	assert.ErrorContains(t, err, "status: 500")

	srv2 := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"model not found"}`))
	}))
	defer srv2.Close()

	_, err = NewOllama(srv2.URL, "").Summarize(context.Background(), testRequest)
	assert.ErrorContains(t, err, "model not found")
}

func TestOllamaDefaults(t *testing.T) {
	o := NewOllama("", "")
	assert.Equal(t, DefaultOllamaURL, o.config.BaseURL)
	assert.Equal(t, DefaultOllamaModel, o.config.Model)
}

func TestGeminiSummarize(t *testing.T) {
	var got geminiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/flash:generateContent", r.URL.Path)
		assert.Empty(t, r.URL.RawQuery)
		assert.Equal(t, "secret", r.Header.Get("x-goog-api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"reform courts"}]}}]}`))
	}))
	defer srv.Close()

	g := NewGemini(Config{BaseURL: srv.URL, Model: "flash", APIKey: "secret"})
	text, err := g.Summarize(context.Background(), testRequest)
	require.NoError(t, err)

	assert.Equal(t, "reform courts", text)
	require.NotNil(t, got.SystemInstruction)
	assert.Equal(t, "be brief", got.SystemInstruction.Parts[0].Text)
	assert.Equal(t, "Economy: current=4", got.Contents[0].Parts[0].Text)
}

func TestGeminiErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"http status", http.StatusForbidden, `denied`, "returned 403"},
		{"api error", http.StatusOK, `{"error":{"code":429,"message":"quota"}}`, "quota"},
		{"empty", http.StatusOK, `{"candidates":[]}`, "empty response"},
		{"bad json", http.StatusOK, `not json`, "failed to parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewGemini(Config{BaseURL: srv.URL, APIKey: "k"}).Summarize(context.Background(), testRequest)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestNewFromSettings(t *testing.T) {
	a, err := New(state.AdvisorSettings{Provider: "none"}, "")
	require.NoError(t, err)
	assert.Nil(t, a)

	a, err = New(state.AdvisorSettings{Provider: "Ollama", BaseURL: "http://x"}, "")
	require.NoError(t, err)
	assert.IsType(t, &OllamaAdvisor{}, a)

	_, err = New(state.AdvisorSettings{Provider: "gemini"}, "")
	assert.Error(t, err)

	a, err = New(state.AdvisorSettings{Provider: "gemini"}, "key")
	require.NoError(t, err)
	assert.IsType(t, &GeminiAdvisor{}, a)

	_, err = New(state.AdvisorSettings{Provider: "openai"}, "")
	assert.Error(t, err)
}
