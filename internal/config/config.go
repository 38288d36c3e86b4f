package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	APIPort  string
	LogLevel string

	LogFile           string
	LogFileMaxSizeMB  int
	LogFileMaxBackups int

	MaterialsDir   string
	AccessLogPath  string
	AccessLogSheet string

	ProvisionArchive string
	ProvisionDest    string
	ProvisionMarker  string

	SummaryProvider      string
	SummaryMaxInputChars int
	SummaryMinLength     int
	SummaryMaxLength     int
	SummarySeed          int
	SummaryPreload       bool

	OllamaURL          string
	OllamaSummaryModel string

	OpenAIBaseURL      string
	OpenAIAPIKey       string
	OpenAISummaryModel string

	SummaryRetryMaxAttempts int
	SummaryBreakerEnabled   bool

	NATSURL     string
	NATSSubject string

	APIRateLimitRPS   float64
	APIRateLimitBurst int
}

// ConfigFileEnv names the optional YAML file whose keys act as defaults below
// the process environment.
const ConfigFileEnv = "PORTAL_CONFIG_FILE"

// Load reads .env (if present), then the YAML file named by PORTAL_CONFIG_FILE,
// then the environment. Environment values win.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	file, err := loadFile(os.Getenv(ConfigFileEnv))
	if err != nil {
		return Config{}, err
	}
	src := source{file: file}

	return Config{
		APIPort:  src.mustEnv("API_PORT", "8080"),
		LogLevel: src.mustEnv("LOG_LEVEL", "info"),

		LogFile:           src.mustEnv("LOG_FILE", ""),
		LogFileMaxSizeMB:  src.mustEnvInt("LOG_FILE_MAX_SIZE_MB", 50),
		LogFileMaxBackups: src.mustEnvInt("LOG_FILE_MAX_BACKUPS", 3),

		MaterialsDir:   src.mustEnv("MATERIALS_DIR", "./materials"),
		AccessLogPath:  src.mustEnv("ACCESS_LOG_PATH", "./access_log.xlsx"),
		AccessLogSheet: src.mustEnv("ACCESS_LOG_SHEET", "Sheet1"),

		ProvisionArchive: src.mustEnv("PROVISION_ARCHIVE", "./materials.zip"),
		ProvisionDest:    src.mustEnv("PROVISION_DEST", "."),
		ProvisionMarker:  src.mustEnv("PROVISION_MARKER", ".materials.provisioned"),

		SummaryProvider:      strings.ToLower(src.mustEnv("SUMMARY_PROVIDER", "ollama")),
		SummaryMaxInputChars: src.mustEnvInt("SUMMARY_MAX_INPUT_CHARS", 3000),
		SummaryMinLength:     src.mustEnvInt("SUMMARY_MIN_LENGTH", 50),
		SummaryMaxLength:     src.mustEnvInt("SUMMARY_MAX_LENGTH", 150),
		SummarySeed:          src.mustEnvInt("SUMMARY_SEED", 42),
		SummaryPreload:       src.mustEnvBool("SUMMARY_PRELOAD", false),

		OllamaURL:          src.mustEnv("OLLAMA_URL", "http://localhost:11434"),
		OllamaSummaryModel: src.mustEnv("OLLAMA_SUMMARY_MODEL", "llama3.1:8b"),

		OpenAIBaseURL:      src.mustEnv("OPENAI_BASE_URL", ""),
		OpenAIAPIKey:       src.mustEnv("OPENAI_API_KEY", ""),
		OpenAISummaryModel: src.mustEnv("OPENAI_SUMMARY_MODEL", "gpt-4o-mini"),

		SummaryRetryMaxAttempts: src.mustEnvInt("SUMMARY_RETRY_MAX_ATTEMPTS", 1),
		SummaryBreakerEnabled:   src.mustEnvBool("SUMMARY_BREAKER_ENABLED", true),

		NATSURL:     src.mustEnv("NATS_URL", ""),
		NATSSubject: src.mustEnv("NATS_SUBJECT", "training.access.recorded"),

		APIRateLimitRPS:   src.mustEnvFloat("API_RATE_LIMIT_RPS", 0),
		APIRateLimitBurst: src.mustEnvInt("API_RATE_LIMIT_BURST", 5),
	}, nil
}

// loadFile parses a flat YAML mapping. Keys match the environment names,
// case-insensitively.
func loadFile(path string) (map[string]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}
	var values map[string]any
	if err := yaml.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	out := make(map[string]string, len(values))
	for k, v := range values {
		if v == nil {
			continue
		}
		out[strings.ToUpper(k)] = fmt.Sprint(v)
	}
	return out, nil
}

type source struct {
	file map[string]string
}

func (s source) lookup(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return s.file[key]
}

func (s source) mustEnv(key, fallback string) string {
	v := s.lookup(key)
	if v == "" {
		return fallback
	}
	return v
}

func (s source) mustEnvInt(key string, fallback int) int {
	v := s.lookup(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func (s source) mustEnvFloat(key string, fallback float64) float64 {
	v := s.lookup(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return n
}

func (s source) mustEnvBool(key string, fallback bool) bool {
	v := s.lookup(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}
