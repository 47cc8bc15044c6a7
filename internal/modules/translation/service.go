package translation

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	appcfg "github.com/legalai/core/internal/config"
	"github.com/legalai/core/internal/pkg/apperr"
	"github.com/legalai/core/internal/pkg/pdftext"
)

const (
	// DefaultSourceLanguage is assumed when detection is unavailable or fails.
	DefaultSourceLanguage = "en"

	detectLimit    = 5120
	translateLimit = 5000
	requestTimeout = 30 * time.Second
)

// Request is one translation job. PDF takes precedence over Text.
type Request struct {
	PDF            []byte
	Text           string
	TargetLanguage string
}

// Result is the translation returned to clients.
type Result struct {
	OriginalText     string `json:"originalText"`
	TranslatedText   string `json:"translatedText"`
	DetectedLanguage string `json:"detectedLanguage"`
	TargetLanguage   string `json:"targetLanguage"`
}

type Service struct {
	azure           azureClient
	extractor       pdftext.Extractor
	defaultLanguage string
	logger          *zap.Logger
}

type Option func(*Service)

func WithHTTPClient(client *http.Client) Option {
	return func(s *Service) {
		if client != nil {
			s.azure.httpClient = client
		}
	}
}

func WithExtractor(e pdftext.Extractor) Option {
	return func(s *Service) { s.extractor = e }
}

func NewService(translator appcfg.TranslatorConfig, language appcfg.LanguageConfig, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		azure: azureClient{
			httpClient: &http.Client{Timeout: requestTimeout},
			translator: translator,
			language:   language,
		},
		extractor:       pdftext.Reader{},
		defaultLanguage: translator.DefaultLanguage,
		logger:          logger.Named("TranslationService"),
	}
	if s.defaultLanguage == "" {
		s.defaultLanguage = "fr"
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Translate extracts (when a PDF is given), detects the source language and
// translates the first 5000 characters into the target language.
func (s *Service) Translate(ctx context.Context, req Request) (*Result, error) {
	if len(req.PDF) == 0 && req.Text == "" {
		return nil, apperr.Validation("No PDF file or text provided.")
	}
	target := strings.TrimSpace(req.TargetLanguage)
	if target == "" {
		target = s.defaultLanguage
	}

	text := req.Text
	if len(req.PDF) > 0 {
		extracted, err := s.extractor.Extract(req.PDF, nil)
		if err != nil && !errors.Is(err, pdftext.ErrNoText) {
			return nil, apperr.Extraction("Could not extract text from PDF", err)
		}
		text = extracted
	}
	if strings.TrimSpace(text) == "" {
		return nil, apperr.Validation("No text found to translate.")
	}

	detected := s.detect(ctx, text)

	if !s.azure.translator.Configured() {
		return nil, apperr.Configuration("Azure Translator service not configured.")
	}
	translated, err := s.azure.translate(ctx, truncate(text, translateLimit), detected, target)
	if err != nil {
		s.logger.Error("translation failed", zap.Error(err))
		return nil, apperr.Upstream("Failed to translate text.", err)
	}

	return &Result{
		OriginalText:     text,
		TranslatedText:   translated,
		DetectedLanguage: detected,
		TargetLanguage:   target,
	}, nil
}

func (s *Service) detect(ctx context.Context, text string) string {
	if !s.azure.language.Configured() {
		return DefaultSourceLanguage
	}
	code, err := s.azure.detectLanguage(ctx, truncate(text, detectLimit))
	if err != nil {
		s.logger.Warn("language detection failed, using default", zap.String("default", DefaultSourceLanguage), zap.Error(err))
		return DefaultSourceLanguage
	}
	return code
}

// truncate keeps the first n characters of s.
func truncate(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
