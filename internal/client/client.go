// Package client calls the LegalAI HTTP API. Text translations are served
// from a local translation cache when one is attached.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/legalai/core/internal/transcache"
)

const (
	DefaultBaseURL        = "http://localhost:3000"
	DefaultTargetLanguage = "fr"
	analysisCacheHeader   = "X-Analysis-Cache"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
	Details string
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s (%d): %s", e.Message, e.Status, e.Details)
	}
	return fmt.Sprintf("%s (%d)", e.Message, e.Status)
}

// Analysis is the server's document analysis.
type Analysis struct {
	Summary       string   `json:"summary"`
	Highlights    []string `json:"highlights"`
	ExtractedText string   `json:"extractedText"`
	Success       bool     `json:"success"`
	// Cached reports that the server answered from its analysis cache.
	Cached bool `json:"-"`
}

// AssistResult is the viewer assistant's answer.
type AssistResult struct {
	Action string `json:"action"`
	Result string `json:"result"`
	Source string `json:"source"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      *transcache.Cache
	logger     *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTranslationCache serves repeated text translations from cache.
func WithTranslationCache(cache *transcache.Cache) Option {
	return func(c *Client) { c.cache = cache }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func New(baseURL string, opts ...Option) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 2 * time.Minute},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TranslationCache returns the attached cache, or nil.
func (c *Client) TranslationCache() *transcache.Cache { return c.cache }

// Analyze uploads a PDF for analysis. pages may be empty for the whole document.
func (c *Client) Analyze(ctx context.Context, filename string, pdf []byte, pages string) (*Analysis, error) {
	fields := map[string]string{}
	if pages != "" {
		fields["selectedPages"] = pages
	}
	body, contentType, err := multipartBody(fields, "file", filename, pdf)
	if err != nil {
		return nil, err
	}

	var out Analysis
	resp, err := c.do(ctx, http.MethodPost, "/api/analyze", contentType, body, &out)
	if err != nil {
		return nil, err
	}
	out.Cached = resp.Header.Get(analysisCacheHeader) == "hit"
	return &out, nil
}

// TranslateText translates text, consulting the translation cache first.
// A result that cannot be cached is still returned.
func (c *Client) TranslateText(ctx context.Context, text, targetLanguage string) (*transcache.Result, error) {
	if targetLanguage == "" {
		targetLanguage = DefaultTargetLanguage
	}
	if c.cache != nil {
		if res, ok := c.cache.Get(ctx, text, targetLanguage); ok {
			return &res, nil
		}
	}

	body, contentType, err := multipartBody(map[string]string{
		"text":           text,
		"targetLanguage": targetLanguage,
	}, "", "", nil)
	if err != nil {
		return nil, err
	}
	var out transcache.Result
	if _, err := c.do(ctx, http.MethodPost, "/api/translate", contentType, body, &out); err != nil {
		return nil, err
	}

	if c.cache != nil {
		if err := c.cache.Put(ctx, text, targetLanguage, out); err != nil {
			c.logger.Warn("translation not cached", zap.Error(err))
		}
	}
	return &out, nil
}

// TranslatePDF uploads a PDF for translation. PDF translations are not cached.
func (c *Client) TranslatePDF(ctx context.Context, filename string, pdf []byte, targetLanguage string) (*transcache.Result, error) {
	if targetLanguage == "" {
		targetLanguage = DefaultTargetLanguage
	}
	body, contentType, err := multipartBody(map[string]string{"targetLanguage": targetLanguage}, "pdf", filename, pdf)
	if err != nil {
		return nil, err
	}
	var out transcache.Result
	if _, err := c.do(ctx, http.MethodPost, "/api/translate", contentType, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Assist runs a viewer action (summarize, explain, translate) on text.
func (c *Client) Assist(ctx context.Context, action, text, targetLanguage string) (*AssistResult, error) {
	payload, err := json.Marshal(map[string]string{
		"action":         action,
		"text":           text,
		"targetLanguage": targetLanguage,
	})
	if err != nil {
		return nil, err
	}
	var out AssistResult
	if _, err := c.do(ctx, http.MethodPost, "/api/assist", "application/json", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body []byte, out any) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var eb struct {
			Error   string `json:"error"`
			Details string `json:"details"`
		}
		if json.Unmarshal(raw, &eb) == nil && eb.Error != "" {
			apiErr.Message = eb.Error
			apiErr.Details = eb.Details
		}
		return resp, apiErr
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return resp, fmt.Errorf("parsing response: %w", err)
		}
	}
	return resp, nil
}

func multipartBody(fields map[string]string, fileField, filename string, file []byte) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}
	if fileField != "" {
		if filename == "" {
			filename = "document.pdf"
		}
		fw, err := w.CreateFormFile(fileField, filename)
		if err != nil {
			return nil, "", err
		}
		if _, err := fw.Write(file); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
