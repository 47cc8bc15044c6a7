package config

import "time"

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"
	defaultPort       = 3000
	defaultEnv        = "development"

	defaultRedisHost = "localhost"
	defaultRedisPort = 6379
	defaultRedisDB   = 0

	defaultUploadMaxSizeMB = 20

	defaultAIMaxOutputTokens = 2048
	defaultAITimeout         = 60 * time.Second
	defaultGeminiModel       = "gemini-2.5-flash-lite"
	defaultGeminiProviderID  = "gemini"

	defaultTranslatorRegion   = "eastus"
	defaultTranslatorLanguage = "fr"

	defaultAnalysisCacheBackend    = "memory"
	defaultAnalysisCacheMaxEntries = 1000

	defaultRateLimitMax    = 20
	defaultRateLimitWindow = time.Second

	defaultAdminTokenTTL = 12 * time.Hour
)
