// Package assist serves the document viewer's selection actions.
package assist

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/legalai/core/internal/modules/processing/ai"
	"github.com/legalai/core/internal/pkg/apperr"
)

const (
	SourceAI   = "ai"
	SourceMock = "mock"
)

// Assistant answers a prompt with a model.
type Assistant interface {
	AssistConfigured() bool
	Assist(ctx context.Context, systemPrompt, prompt string) (string, error)
}

type Request struct {
	Action         string `json:"action"`
	Text           string `json:"text"`
	TargetLanguage string `json:"targetLanguage,omitempty"`
}

type Result struct {
	Action string `json:"action"`
	Result string `json:"result"`
	Source string `json:"source"`
}

type Service struct {
	assistant Assistant
	logger    *zap.Logger
}

func NewService(assistant Assistant, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{assistant: assistant, logger: logger.Named("AssistService")}
}

// Run performs the action on the selected text. Without a model, or when the
// model call fails, the canned viewer response is returned instead.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	action := strings.ToLower(strings.TrimSpace(req.Action))
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, apperr.Validation("No text provided")
	}
	systemPrompt, prompt, err := ai.BuildAssistPrompt(action, text, req.TargetLanguage)
	if err != nil {
		return nil, apperr.Validation(fmt.Sprintf("Unknown action %q", req.Action))
	}

	if s.assistant != nil && s.assistant.AssistConfigured() {
		out, err := s.assistant.Assist(ctx, systemPrompt, prompt)
		if err == nil {
			return &Result{Action: action, Result: strings.TrimSpace(out), Source: SourceAI}, nil
		}
		s.logger.Warn("assist call failed, using canned response", zap.String("action", action), zap.Error(err))
	}
	return &Result{Action: action, Result: mockResponse(action, text), Source: SourceMock}, nil
}

func mockResponse(action, text string) string {
	switch action {
	case ai.ActionTranslate:
		return fmt.Sprintf("Translation: %s (French: Texte traduit en français)", text)
	case ai.ActionSummarize:
		return fmt.Sprintf("Summary: This text discusses %s and its key implications.", strings.ToLower(text))
	default:
		return fmt.Sprintf("Explanation: %s refers to a legal concept that means...", text)
	}
}
