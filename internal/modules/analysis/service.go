package analysis

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/legalai/core/internal/modules/processing/ai"
	"github.com/legalai/core/internal/pkg/apperr"
	"github.com/legalai/core/internal/pkg/pdftext"
)

// Summarizer produces a summary for a fully built prompt.
type Summarizer interface {
	Configured() bool
	Summarize(ctx context.Context, prompt string) (string, error)
}

type Service struct {
	cache              *Cache
	extractor          pdftext.Extractor
	summarizer         Summarizer
	honorPageSelection bool
	logger             *zap.Logger
}

type ServiceOption func(*Service)

// WithPageSelection makes the selection restrict which pages are extracted.
// It is always part of the cache key either way.
func WithPageSelection(honor bool) ServiceOption {
	return func(s *Service) { s.honorPageSelection = honor }
}

func WithExtractor(e pdftext.Extractor) ServiceOption {
	return func(s *Service) { s.extractor = e }
}

func NewService(cache *Cache, summarizer Summarizer, logger *zap.Logger, opts ...ServiceOption) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		cache:      cache,
		extractor:  pdftext.Reader{},
		summarizer: summarizer,
		logger:     logger.Named("AnalysisService"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Cache() *Cache { return s.cache }

// Analyze returns the analysis of document for the given page selection,
// serving it from the cache when the same bytes and selection were analyzed
// before. The bool reports a cache hit.
func (s *Service) Analyze(ctx context.Context, document []byte, selection string) (*Entry, bool, error) {
	if len(document) == 0 {
		return nil, false, apperr.Validation("No file provided")
	}
	selection = strings.TrimSpace(selection)
	if selection == "" {
		selection = DefaultSelection
	}

	var pages pdftext.PageSet
	if s.honorPageSelection {
		var err error
		if pages, err = pdftext.ParsePageSelection(selection); err != nil {
			return nil, false, apperr.Validation("Invalid page selection: " + err.Error())
		}
	}

	key := Key(document, selection)
	entry, hit, err := s.cache.GetOrCompute(ctx, key, func(ctx context.Context) (*Entry, error) {
		return s.compute(ctx, document, pages)
	})
	if err != nil {
		return nil, false, err
	}
	if hit {
		s.logger.Debug("analysis cache hit", zap.String("key", key))
	}
	return entry, hit, nil
}

func (s *Service) compute(ctx context.Context, document []byte, pages pdftext.PageSet) (*Entry, error) {
	if s.summarizer == nil || !s.summarizer.Configured() {
		return nil, apperr.Configuration("API key not configured")
	}

	text, err := s.extractor.Extract(document, pages)
	if err != nil || strings.TrimSpace(text) == "" {
		return nil, apperr.Extraction("Could not extract text from PDF", err)
	}

	summary, err := s.summarizer.Summarize(ctx, ai.BuildAnalysisPrompt(text))
	if err != nil {
		s.logger.Error("analysis failed", zap.Error(err))
		return nil, apperr.Upstream("Failed to analyze document", err)
	}

	return &Entry{
		Summary:       summary,
		Highlights:    ExtractHighlights(summary),
		ExtractedText: Preview(text),
		Success:       true,
	}, nil
}
