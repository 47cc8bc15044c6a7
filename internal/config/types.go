package config

import "time"

// AIConfig lists the LLM providers and which one serves each feature.
type AIConfig struct {
	Providers       []AIProvider       `yaml:"providers"`
	SummaryModel    *AIModelAssignment `yaml:"summary_model,omitempty"`
	AssistModel     *AIModelAssignment `yaml:"assist_model,omitempty"`
	MaxOutputTokens int                `yaml:"max_output_tokens"`
	Timeout         time.Duration      `yaml:"timeout"`
}

type AIModelAssignment struct {
	ProviderID string `yaml:"provider_id"`
	Model      string `yaml:"model"`
}

type AIProvider struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	Type         string `yaml:"type"` // Gemini | OpenAI | OpenAI-Compatible | Anthropic | OpenRouter
	APIKey       string `yaml:"api_key"`
	Endpoint     string `yaml:"endpoint,omitempty"`
	DefaultModel string `yaml:"default_model"`
	Enabled      bool   `yaml:"enabled"`
}

// TranslatorConfig holds Azure AI Translator credentials.
type TranslatorConfig struct {
	Key             string `yaml:"key"`
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	DefaultLanguage string `yaml:"default_language"`
}

// Configured reports whether translation calls can be made.
func (c TranslatorConfig) Configured() bool {
	return c.Key != "" && c.Endpoint != ""
}

// LanguageConfig holds Azure AI Language (detection) credentials.
type LanguageConfig struct {
	Key      string `yaml:"key"`
	Endpoint string `yaml:"endpoint"`
}

func (c LanguageConfig) Configured() bool {
	return c.Key != "" && c.Endpoint != ""
}

type AnalysisCacheConfig struct {
	Backend            string        `yaml:"backend"` // memory | redis
	MaxEntries         int           `yaml:"max_entries"`
	TTL                time.Duration `yaml:"ttl"`
	HonorPageSelection bool          `yaml:"honor_page_selection"`
}

type RedisRuntimeConfig struct {
	Enable   bool              `yaml:"enable"`
	URL      string            `yaml:"url"`
	Host     string            `yaml:"host"`
	Port     int               `yaml:"port"`
	Username string            `yaml:"username"`
	Password string            `yaml:"password"`
	DB       int               `yaml:"db"`
	TLS      bool              `yaml:"tls"`
	Scheme   string            `yaml:"scheme"`
	Params   map[string]string `yaml:"params"`
}

type RateLimitConfig struct {
	Enable bool          `yaml:"enable"`
	Max    int           `yaml:"max"`
	Window time.Duration `yaml:"window"`
}

type AdminConfig struct {
	JWTSecret    string        `yaml:"jwt_secret"`
	PasswordHash string        `yaml:"password_hash"`
	TokenTTL     time.Duration `yaml:"token_ttl"`
}

type UploadConfig struct {
	MaxSizeMB int `yaml:"max_size_mb"`
}

type RuntimePathsConfig struct {
	Logs string `yaml:"logs"`
}
