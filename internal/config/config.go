package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// AppConfig holds runtime startup configuration loaded from YAML and the environment.
type AppConfig struct {
	Port           int                 `yaml:"port"`
	Env            string              `yaml:"env"` // "development" | "production"
	AllowedOrigins []string            `yaml:"allowed_origins"`
	Timezone       string              `yaml:"timezone"`
	Paths          RuntimePathsConfig  `yaml:"paths"`
	Upload         UploadConfig        `yaml:"upload"`
	AI             AIConfig            `yaml:"ai"`
	Translator     TranslatorConfig    `yaml:"translator"`
	Language       LanguageConfig      `yaml:"language"`
	AnalysisCache  AnalysisCacheConfig `yaml:"analysis_cache"`
	Redis          RedisRuntimeConfig  `yaml:"redis"`
	RedisURL       string              `yaml:"-"`
	RateLimit      RateLimitConfig     `yaml:"rate_limit"`
	Admin          AdminConfig         `yaml:"admin"`
}

type rawAppConfig struct {
	Port           int                    `yaml:"port"`
	Env            string                 `yaml:"env"`
	AllowedOrigins []string               `yaml:"allowed_origins"`
	Timezone       string                 `yaml:"timezone"`
	Paths          rawPathsConfig         `yaml:"paths"`
	Upload         rawUploadConfig        `yaml:"upload"`
	AI             rawAIConfig            `yaml:"ai"`
	Translator     TranslatorConfig       `yaml:"translator"`
	Language       LanguageConfig         `yaml:"language"`
	AnalysisCache  rawAnalysisCacheConfig `yaml:"analysis_cache"`
	Redis          rawRedisConfig         `yaml:"redis"`
	RedisURL       string                 `yaml:"redis_url"`
	RateLimit      rawRateLimitConfig     `yaml:"rate_limit"`
	Admin          rawAdminConfig         `yaml:"admin"`
}

type rawPathsConfig struct {
	Logs string `yaml:"logs"`
}

type rawUploadConfig struct {
	MaxSizeMB int `yaml:"max_size_mb"`
}

type rawAIConfig struct {
	Providers       []AIProvider       `yaml:"providers"`
	SummaryModel    *AIModelAssignment `yaml:"summary_model"`
	AssistModel     *AIModelAssignment `yaml:"assist_model"`
	MaxOutputTokens int                `yaml:"max_output_tokens"`
	Timeout         string             `yaml:"timeout"`
}

type rawAnalysisCacheConfig struct {
	Backend            string `yaml:"backend"`
	MaxEntries         *int   `yaml:"max_entries"`
	TTL                string `yaml:"ttl"`
	HonorPageSelection *bool  `yaml:"honor_page_selection"`
}

type rawRedisConfig struct {
	Enable   *bool             `yaml:"enable"`
	URL      string            `yaml:"url"`
	Host     string            `yaml:"host"`
	Port     int               `yaml:"port"`
	Username string            `yaml:"username"`
	Password string            `yaml:"password"`
	DB       *int              `yaml:"db"`
	TLS      *bool             `yaml:"tls"`
	Scheme   string            `yaml:"scheme"`
	Params   map[string]string `yaml:"params"`
}

type rawRateLimitConfig struct {
	Enable *bool  `yaml:"enable"`
	Max    int    `yaml:"max"`
	Window string `yaml:"window"`
}

type rawAdminConfig struct {
	JWTSecret    string `yaml:"jwt_secret"`
	PasswordHash string `yaml:"password_hash"`
	TokenTTL     string `yaml:"token_ttl"`
}

// Load reads configPath, applies environment overrides and validates the result.
// A missing file is tolerated only for the default path.
func Load(configPath string) (*AppConfig, error) {
	path := strings.TrimSpace(configPath)
	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath
	}

	cfg := defaultAppConfig()
	content, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decodeInto(&cfg, content); err != nil {
			return nil, fmt.Errorf("parse config file %q: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	}

	applyEnv(&cfg, os.LookupEnv)
	cfg.RedisURL = cfg.Redis.URLValue()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config %q: %w", path, err)
	}
	return &cfg, nil
}

// Parse decodes YAML content over the defaults without touching the environment.
func Parse(content []byte) (*AppConfig, error) {
	cfg := defaultAppConfig()
	if err := decodeInto(&cfg, content); err != nil {
		return nil, err
	}
	cfg.RedisURL = cfg.Redis.URLValue()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func decodeInto(cfg *AppConfig, content []byte) error {
	if len(bytes.TrimSpace(content)) == 0 {
		return nil
	}
	decoder := yaml.NewDecoder(bytes.NewReader(content))
	decoder.KnownFields(true)
	raw := rawAppConfig{}
	if err := decoder.Decode(&raw); err != nil {
		return err
	}
	return applyRawAppConfig(cfg, raw)
}

func defaultAppConfig() AppConfig {
	cfg := AppConfig{
		Port: defaultPort,
		Env:  defaultEnv,
		Upload: UploadConfig{
			MaxSizeMB: defaultUploadMaxSizeMB,
		},
		AI: AIConfig{
			MaxOutputTokens: defaultAIMaxOutputTokens,
			Timeout:         defaultAITimeout,
		},
		Translator: TranslatorConfig{
			Region:          defaultTranslatorRegion,
			DefaultLanguage: defaultTranslatorLanguage,
		},
		AnalysisCache: AnalysisCacheConfig{
			Backend:    defaultAnalysisCacheBackend,
			MaxEntries: defaultAnalysisCacheMaxEntries,
		},
		Redis: RedisRuntimeConfig{
			Host: defaultRedisHost,
			Port: defaultRedisPort,
			DB:   defaultRedisDB,
		},
		RateLimit: RateLimitConfig{
			Max:    defaultRateLimitMax,
			Window: defaultRateLimitWindow,
		},
		Admin: AdminConfig{
			TokenTTL: defaultAdminTokenTTL,
		},
	}
	cfg.Redis = normalizeRedisConfig(cfg.Redis)
	cfg.RedisURL = cfg.Redis.URLValue()
	return cfg
}

func applyRawAppConfig(cfg *AppConfig, raw rawAppConfig) error {
	if raw.Port != 0 {
		cfg.Port = raw.Port
	}
	if v := strings.TrimSpace(raw.Env); v != "" {
		cfg.Env = normalizeEnv(v)
	}
	if raw.AllowedOrigins != nil {
		cfg.AllowedOrigins = normalizeOrigins(raw.AllowedOrigins)
	}
	if v := strings.TrimSpace(raw.Timezone); v != "" {
		cfg.Timezone = v
	}
	if v := strings.TrimSpace(raw.Paths.Logs); v != "" {
		cfg.Paths.Logs = v
	}
	if raw.Upload.MaxSizeMB != 0 {
		cfg.Upload.MaxSizeMB = raw.Upload.MaxSizeMB
	}

	ai, err := applyRawAIConfig(cfg.AI, raw.AI)
	if err != nil {
		return err
	}
	cfg.AI = ai

	cfg.Translator = mergeTranslator(cfg.Translator, raw.Translator)
	if v := strings.TrimSpace(raw.Language.Key); v != "" {
		cfg.Language.Key = v
	}
	if v := strings.TrimSpace(raw.Language.Endpoint); v != "" {
		cfg.Language.Endpoint = v
	}

	cache, err := applyRawAnalysisCacheConfig(cfg.AnalysisCache, raw.AnalysisCache)
	if err != nil {
		return err
	}
	cfg.AnalysisCache = cache

	cfg.Redis = applyRawRedisConfig(cfg.Redis, raw)

	if raw.RateLimit.Enable != nil {
		cfg.RateLimit.Enable = *raw.RateLimit.Enable
	}
	if raw.RateLimit.Max != 0 {
		cfg.RateLimit.Max = raw.RateLimit.Max
	}
	if d, err := parseDuration("rate_limit.window", raw.RateLimit.Window); err != nil {
		return err
	} else if d > 0 {
		cfg.RateLimit.Window = d
	}

	if v := strings.TrimSpace(raw.Admin.JWTSecret); v != "" {
		cfg.Admin.JWTSecret = v
	}
	if v := strings.TrimSpace(raw.Admin.PasswordHash); v != "" {
		cfg.Admin.PasswordHash = v
	}
	if d, err := parseDuration("admin.token_ttl", raw.Admin.TokenTTL); err != nil {
		return err
	} else if d > 0 {
		cfg.Admin.TokenTTL = d
	}
	return nil
}

func applyRawAIConfig(current AIConfig, raw rawAIConfig) (AIConfig, error) {
	cfg := current
	if raw.Providers != nil {
		cfg.Providers = normalizeProviders(raw.Providers)
	}
	if raw.SummaryModel != nil {
		cfg.SummaryModel = normalizeAssignment(raw.SummaryModel)
	}
	if raw.AssistModel != nil {
		cfg.AssistModel = normalizeAssignment(raw.AssistModel)
	}
	if raw.MaxOutputTokens > 0 {
		cfg.MaxOutputTokens = raw.MaxOutputTokens
	}
	d, err := parseDuration("ai.timeout", raw.Timeout)
	if err != nil {
		return cfg, err
	}
	if d > 0 {
		cfg.Timeout = d
	}
	return cfg, nil
}

func applyRawAnalysisCacheConfig(current AnalysisCacheConfig, raw rawAnalysisCacheConfig) (AnalysisCacheConfig, error) {
	cfg := current
	if v := strings.ToLower(strings.TrimSpace(raw.Backend)); v != "" {
		cfg.Backend = v
	}
	if raw.MaxEntries != nil {
		cfg.MaxEntries = *raw.MaxEntries
	}
	d, err := parseDuration("analysis_cache.ttl", raw.TTL)
	if err != nil {
		return cfg, err
	}
	if strings.TrimSpace(raw.TTL) != "" {
		cfg.TTL = d
	}
	if raw.HonorPageSelection != nil {
		cfg.HonorPageSelection = *raw.HonorPageSelection
	}
	return cfg, nil
}

func applyRawRedisConfig(current RedisRuntimeConfig, raw rawAppConfig) RedisRuntimeConfig {
	cfg := current

	if raw.Redis.Enable != nil {
		cfg.Enable = *raw.Redis.Enable
	}
	if v := strings.TrimSpace(raw.Redis.URL); v != "" {
		cfg.URL = v
		cfg.Enable = cfg.Enable || raw.Redis.Enable == nil
	}
	if v := strings.TrimSpace(raw.RedisURL); v != "" {
		cfg.URL = v
		cfg.Enable = cfg.Enable || raw.Redis.Enable == nil
	}
	if v := strings.TrimSpace(raw.Redis.Host); v != "" {
		cfg.Host = v
	}
	if raw.Redis.Port != 0 {
		cfg.Port = raw.Redis.Port
	}
	if v := strings.TrimSpace(raw.Redis.Username); v != "" {
		cfg.Username = v
	}
	if v := strings.TrimSpace(raw.Redis.Password); v != "" {
		cfg.Password = v
	}
	if raw.Redis.DB != nil {
		cfg.DB = *raw.Redis.DB
	}
	if raw.Redis.TLS != nil {
		cfg.TLS = *raw.Redis.TLS
	}
	if v := strings.TrimSpace(raw.Redis.Scheme); v != "" {
		cfg.Scheme = v
	}
	if raw.Redis.Params != nil {
		cfg.Params = copyStringMap(raw.Redis.Params)
	}

	return normalizeRedisConfig(cfg)
}

func mergeTranslator(current, raw TranslatorConfig) TranslatorConfig {
	cfg := current
	if v := strings.TrimSpace(raw.Key); v != "" {
		cfg.Key = v
	}
	if v := strings.TrimSpace(raw.Endpoint); v != "" {
		cfg.Endpoint = v
	}
	if v := strings.TrimSpace(raw.Region); v != "" {
		cfg.Region = v
	}
	if v := strings.TrimSpace(raw.DefaultLanguage); v != "" {
		cfg.DefaultLanguage = v
	}
	return cfg
}

func parseDuration(field, raw string) (time.Duration, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: must not be negative", field)
	}
	return d, nil
}

func (c *AppConfig) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d, expected 1-65535", c.Port)
	}
	if c.Redis.Port < 1 || c.Redis.Port > 65535 {
		return fmt.Errorf("invalid redis.port %d, expected 1-65535", c.Redis.Port)
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("invalid redis.db %d, expected >= 0", c.Redis.DB)
	}
	if c.Upload.MaxSizeMB < 1 {
		return fmt.Errorf("invalid upload.max_size_mb %d, expected >= 1", c.Upload.MaxSizeMB)
	}
	if c.AnalysisCache.MaxEntries < 0 {
		return fmt.Errorf("invalid analysis_cache.max_entries %d, expected >= 0", c.AnalysisCache.MaxEntries)
	}
	switch c.AnalysisCache.Backend {
	case "memory":
	case "redis":
		if !c.Redis.Enable {
			return errors.New("analysis_cache.backend is redis but redis is not enabled")
		}
	default:
		return fmt.Errorf("unknown analysis_cache.backend %q, expected memory or redis", c.AnalysisCache.Backend)
	}
	if c.RateLimit.Enable && c.RateLimit.Max < 1 {
		return fmt.Errorf("invalid rate_limit.max %d, expected >= 1", c.RateLimit.Max)
	}
	for _, p := range c.AI.Providers {
		if p.ID == "" {
			return errors.New("ai.providers: every provider needs an id")
		}
	}
	return nil
}

func (c *AppConfig) IsDev() bool {
	return c.Env != "production"
}

func (c *AppConfig) LogDir() string {
	return ResolveRuntimePath(c.Paths.Logs, "logs")
}

// UploadLimit returns the multipart upload limit in bytes.
func (c *AppConfig) UploadLimit() int64 {
	return int64(c.Upload.MaxSizeMB) << 20
}
