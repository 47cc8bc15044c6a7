package config

import (
	"strconv"
	"strings"
)

// Environment variables understood on top of the YAML file. Names follow the
// deployment convention of the hosted service.
const (
	EnvGeminiAPIKey       = "GOOGLE_GEMINI_API_KEY"
	EnvTranslatorKey      = "AZURE_TRANSLATOR_KEY"
	EnvTranslatorEndpoint = "AZURE_TRANSLATOR_ENDPOINT"
	EnvTranslatorRegion   = "AZURE_TRANSLATOR_REGION"
	EnvLanguageKey        = "AZURE_LANGUAGE_KEY"
	EnvLanguageEndpoint   = "AZURE_LANGUAGE_ENDPOINT"
	EnvRedisURL           = "REDIS_URL"
	EnvPort               = "PORT"
	EnvAppEnv             = "LEGALAI_ENV"
)

type lookupFunc func(string) (string, bool)

func applyEnv(cfg *AppConfig, lookup lookupFunc) {
	get := func(name string) string {
		v, ok := lookup(name)
		if !ok {
			return ""
		}
		return strings.TrimSpace(v)
	}

	if v := get(EnvPort); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Port = port
		}
	}
	if v := get(EnvAppEnv); v != "" {
		cfg.Env = normalizeEnv(v)
	}
	if v := get(EnvGeminiAPIKey); v != "" {
		cfg.AI = withGeminiKey(cfg.AI, v)
	}
	if v := get(EnvTranslatorKey); v != "" {
		cfg.Translator.Key = v
	}
	if v := get(EnvTranslatorEndpoint); v != "" {
		cfg.Translator.Endpoint = v
	}
	if v := get(EnvTranslatorRegion); v != "" {
		cfg.Translator.Region = v
	}
	if v := get(EnvLanguageKey); v != "" {
		cfg.Language.Key = v
	}
	if v := get(EnvLanguageEndpoint); v != "" {
		cfg.Language.Endpoint = v
	}
	if v := get(EnvRedisURL); v != "" {
		cfg.Redis.URL = normalizeRedisRawURL(v)
		cfg.Redis.Enable = true
	}
}

// withGeminiKey sets the key on the existing gemini provider, or registers one
// and routes the summary model to it when nothing else is assigned.
func withGeminiKey(ai AIConfig, key string) AIConfig {
	for i := range ai.Providers {
		if ai.Providers[i].Type == "gemini" {
			ai.Providers[i].APIKey = key
			ai.Providers[i].Enabled = true
			return ai
		}
	}
	ai.Providers = append(ai.Providers, AIProvider{
		ID:           defaultGeminiProviderID,
		Name:         "Google Gemini",
		Type:         "gemini",
		APIKey:       key,
		DefaultModel: defaultGeminiModel,
		Enabled:      true,
	})
	if ai.SummaryModel == nil {
		ai.SummaryModel = &AIModelAssignment{ProviderID: defaultGeminiProviderID, Model: defaultGeminiModel}
	}
	return ai
}
