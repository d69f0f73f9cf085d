package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Engine EngineConfig
	Loader LoaderConfig
	LLM    LLMConfig
	Batch  BatchConfig
}

// EngineConfig holds extraction and materiality settings
type EngineConfig struct {
	MaterialityPct    float64
	MaterialityAmount float64
	SnippetChars      int
	RulesPath         string
	DefaultCurrency   string
}

// LoaderConfig holds document loading settings
type LoaderConfig struct {
	PDFTimeout       time.Duration
	PDFMaxPages      int
	FallbackEncoding string
	Pdftotext        string
}

// LLMConfig holds settings for the optional model-backed text fallback
type LLMConfig struct {
	Enabled     bool
	BaseURL     string
	Model       string
	APIKey      string
	Temperature float32
	Timeout     time.Duration
	MaxChars    int
}

// BatchConfig holds settings for directory runs
type BatchConfig struct {
	Workers    int
	DocTimeout time.Duration
	SkipHidden bool
	OutputDir  string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	apiKey := getEnv("OPENAI_API_KEY", "")
	return &Config{
		Engine: EngineConfig{
			MaterialityPct:    getEnvAsFloat64("MATERIALITY_PCT", 5),
			MaterialityAmount: getEnvAsFloat64("MATERIALITY_AMOUNT", 100000),
			SnippetChars:      getEnvAsInt("SNIPPET_CHARS", 2000),
			RulesPath:         getEnv("RULES_PATH", ""),
			DefaultCurrency:   getEnv("DEFAULT_CURRENCY", "SAR"),
		},
		Loader: LoaderConfig{
			PDFTimeout:       getEnvAsDuration("PDF_TIMEOUT", 30*time.Second),
			PDFMaxPages:      getEnvAsInt("PDF_MAX_PAGES", 0),
			FallbackEncoding: getEnv("FALLBACK_ENCODING", "windows-1256"),
			Pdftotext:        getEnv("PDFTOTEXT_BIN", ""),
		},
		LLM: LLMConfig{
			Enabled:     getEnvAsBool("LLM_FALLBACK", apiKey != ""),
			BaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Model:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			APIKey:      apiKey,
			Temperature: getEnvAsFloat32("OPENAI_TEMPERATURE", 0.0),
			Timeout:     getEnvAsDuration("LLM_TIMEOUT", 30*time.Second),
			MaxChars:    getEnvAsInt("LLM_MAX_CHARS", 6000),
		},
		Batch: BatchConfig{
			Workers:    getEnvAsInt("BATCH_WORKERS", 4),
			DocTimeout: getEnvAsDuration("DOC_TIMEOUT", 2*time.Minute),
			SkipHidden: getEnvAsBool("SKIP_HIDDEN", true),
			OutputDir:  getEnv("OUTPUT_DIR", ""),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate checks the loaded configuration
func (c *Config) Validate() error {
	v := NewValidator().
		Field("MATERIALITY_PCT", c.Engine.MaterialityPct, NonNegative).
		Field("MATERIALITY_AMOUNT", c.Engine.MaterialityAmount, NonNegative).
		Field("DEFAULT_CURRENCY", c.Engine.DefaultCurrency, CurrencyCode).
		Field("BATCH_WORKERS", c.Batch.Workers, Positive)
	if c.LLM.Enabled {
		v.Field("OPENAI_API_KEY", c.LLM.APIKey, Required).
			Field("OPENAI_BASE_URL", c.LLM.BaseURL, Required)
	}
	if v.HasErrors() {
		return NewAppError("CONFIG_ERROR", v.ErrorMessage(), ErrInvalidInput)
	}
	return nil
}
