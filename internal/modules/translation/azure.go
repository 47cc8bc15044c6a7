package translation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"strings"

	appcfg "github.com/legalai/core/internal/config"
)

const (
	detectPath         = "/text/analytics/v3.1/languages"
	translatePath      = "/translate"
	translateAPIVer    = "3.0"
	headerKey          = "Ocp-Apim-Subscription-Key"
	headerRegion       = "Ocp-Apim-Subscription-Region"
	defaultRegion      = "eastus"
	maxResponseBodyLen = 4 << 20
)

var errEmptyTranslation = errors.New("translator returned no translation")

// azureClient talks to Azure AI Language (detection) and Azure AI Translator.
type azureClient struct {
	httpClient *http.Client
	translator appcfg.TranslatorConfig
	language   appcfg.LanguageConfig
}

type detectRequest struct {
	Documents []detectDocument `json:"documents"`
}

type detectDocument struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type detectResponse struct {
	Documents []struct {
		ID               string `json:"id"`
		DetectedLanguage struct {
			Name            string  `json:"name"`
			ISO6391Name     string  `json:"iso6391Name"`
			ConfidenceScore float64 `json:"confidenceScore"`
		} `json:"detectedLanguage"`
	} `json:"documents"`
	Errors []struct {
		ID    string `json:"id"`
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	} `json:"errors"`
}

type translateItem struct {
	Text string `json:"text"`
}

type translateResponse []struct {
	Translations []struct {
		Text string `json:"text"`
		To   string `json:"to"`
	} `json:"translations"`
}

type azureError struct {
	Error struct {
		Code    json.RawMessage `json:"code"`
		Message string          `json:"message"`
	} `json:"error"`
}

func joinEndpoint(endpoint, path string) string {
	return strings.TrimRight(strings.TrimSpace(endpoint), "/") + path
}

// detectLanguage returns the ISO 639-1 code of text.
func (c azureClient) detectLanguage(ctx context.Context, text string) (string, error) {
	payload, err := json.Marshal(detectRequest{Documents: []detectDocument{{ID: "1", Text: text}}})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	var out detectResponse
	if err := c.post(ctx, joinEndpoint(c.language.Endpoint, detectPath), c.language.Key, "", payload, &out); err != nil {
		return "", err
	}
	if len(out.Documents) == 0 {
		if len(out.Errors) > 0 {
			return "", fmt.Errorf("language detection: %s", out.Errors[0].Error.Message)
		}
		return "", errors.New("language detection returned no documents")
	}
	code := out.Documents[0].DetectedLanguage.ISO6391Name
	if code == "" || code == "(Unknown)" {
		return "", errors.New("language detection could not identify the language")
	}
	return code, nil
}

func (c azureClient) translate(ctx context.Context, text, from, to string) (string, error) {
	q := neturl.Values{}
	q.Set("api-version", translateAPIVer)
	if from != "" {
		q.Set("from", from)
	}
	q.Set("to", to)
	url := joinEndpoint(c.translator.Endpoint, translatePath) + "?" + q.Encode()

	payload, err := json.Marshal([]translateItem{{Text: text}})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	region := strings.TrimSpace(c.translator.Region)
	if region == "" {
		region = defaultRegion
	}

	var out translateResponse
	if err := c.post(ctx, url, c.translator.Key, region, payload, &out); err != nil {
		return "", err
	}
	if len(out) == 0 || len(out[0].Translations) == 0 {
		return "", errEmptyTranslation
	}
	return out[0].Translations[0].Text, nil
}

func (c azureClient) post(ctx context.Context, url, key, region string, payload []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerKey, strings.TrimSpace(key))
	if region != "" {
		req.Header.Set(headerRegion, region)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyLen))
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr azureError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("azure error (status %d): %s", resp.StatusCode, apiErr.Error.Message)
		}
		return fmt.Errorf("azure error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}
