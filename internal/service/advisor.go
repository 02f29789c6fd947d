package service

import (
	"context"
	"sync"
)

// Advice status values reported alongside outlooks and assessments.
const (
	AdviceOK       = "ok"
	AdviceDisabled = "disabled"
	AdviceError    = "error"
)

// AdvisoryRequest is a prompt pair handed to a language model.
type AdvisoryRequest struct {
	Topic  string
	System string
	Prompt string
}

// SummaryAdvisor turns numeric results into narrative recommendations.
type SummaryAdvisor interface {
	Summarize(ctx context.Context, req AdvisoryRequest) (string, error)
}

// AdvisorHolder shares a swappable advisor between services. A nil
// advisor disables recommendations.
type AdvisorHolder struct {
	mu      sync.RWMutex
	advisor SummaryAdvisor
}

func NewAdvisorHolder(a SummaryAdvisor) *AdvisorHolder {
	return &AdvisorHolder{advisor: a}
}

func (h *AdvisorHolder) Get() SummaryAdvisor {
	if h == nil {
		return nil
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.advisor
}

func (h *AdvisorHolder) Set(a SummaryAdvisor) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.advisor = a
}

// advise runs the advisor if one is configured and returns the text, the
// status and an error message for the caller to surface.
func advise(ctx context.Context, h *AdvisorHolder, req AdvisoryRequest) (string, string, string) {
	a := h.Get()
	if a == nil {
		return "", AdviceDisabled, ""
	}
	text, err := a.Summarize(ctx, req)
	if err != nil {
		return "", AdviceError, err.Error()
	}
	return text, AdviceOK, ""
}
