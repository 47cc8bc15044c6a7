package ai

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	appcfg "github.com/legalai/core/internal/config"
	"github.com/legalai/core/internal/pkg/apperr"
)

// Service routes text generation to the provider assigned to each feature.
type Service struct {
	cfg    appcfg.AIConfig
	call   caller
	logger *zap.Logger
}

type Option func(*Service)

// WithHTTPClient replaces the client used for provider calls.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Service) { s.call.httpClient = client }
}

func NewService(cfg appcfg.AIConfig, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	s := &Service{
		cfg: cfg,
		call: caller{
			httpClient: &http.Client{Timeout: timeout},
			maxTokens:  cfg.MaxOutputTokens,
		},
		logger: logger.Named("AIService"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Configured reports whether any provider can serve summaries.
func (s *Service) Configured() bool {
	return selectAIProvider(s.cfg, s.cfg.SummaryModel) != nil
}

// AssistConfigured reports whether the viewer assistant has a provider.
func (s *Service) AssistConfigured() bool {
	return s.assistProvider() != nil
}

// Summarize sends prompt to the summary model and returns the raw text.
func (s *Service) Summarize(ctx context.Context, prompt string) (string, error) {
	provider := selectAIProvider(s.cfg, s.cfg.SummaryModel)
	if provider == nil {
		return "", apperr.Configuration("API key not configured")
	}
	return s.generate(ctx, provider, "", prompt)
}

// Assist sends a system and user prompt to the assist model.
func (s *Service) Assist(ctx context.Context, systemPrompt, prompt string) (string, error) {
	provider := s.assistProvider()
	if provider == nil {
		return "", apperr.Configuration("AI assistant not configured")
	}
	return s.generate(ctx, provider, systemPrompt, prompt)
}

func (s *Service) assistProvider() *appcfg.AIProvider {
	if s.cfg.AssistModel != nil {
		if p := selectAIProvider(s.cfg, s.cfg.AssistModel); p != nil {
			return p
		}
	}
	return selectAIProvider(s.cfg, s.cfg.SummaryModel)
}

func (s *Service) generate(ctx context.Context, provider *appcfg.AIProvider, systemPrompt, prompt string) (string, error) {
	started := time.Now()
	text, err := s.call.callAIWithSystemPrompt(ctx, provider, systemPrompt, prompt)
	fields := []zap.Field{
		zap.String("provider", provider.ID),
		zap.String("model", provider.DefaultModel),
		zap.Duration("took", time.Since(started)),
	}
	if err != nil {
		s.logger.Warn("AI call failed", append(fields, zap.Error(err))...)
		return "", fmt.Errorf("%s: %w", provider.ID, err)
	}
	s.logger.Info("AI call done", append(fields, zap.Int("chars", len(text)))...)
	return text, nil
}
