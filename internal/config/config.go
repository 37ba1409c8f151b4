package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	defaultPort     = "8080"
	defaultRelayURL = "http://localhost:8080/api/chat"
	defaultLogFile  = "optivise-chat.log"
)

// Config is read once at process start. Values come from the environment,
// optionally seeded from a .env file. Secrets are never read here; the
// provider token is resolved through the parameter store at call time.
type Config struct {
	ParamPrefix   string
	ParamSource   string
	OpenAIBaseURL string
	Port          string
	FrontendURL   string
	LogLevel      slog.Level

	RelayURL    string
	ChatLogFile string
}

// Load reads the relay configuration. PARAM_PREFIX is required.
func Load(envFiles ...string) (*Config, error) {
	if err := loadDotEnv(envFiles...); err != nil {
		return nil, err
	}
	cfg := fromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadClient reads the configuration used by the terminal chat client, which
// needs no provider settings.
func LoadClient(envFiles ...string) (*Config, error) {
	if err := loadDotEnv(envFiles...); err != nil {
		return nil, err
	}
	return fromEnv(), nil
}

func fromEnv() *Config {
	return &Config{
		ParamPrefix:   strings.TrimRight(strings.TrimSpace(os.Getenv("PARAM_PREFIX")), "/"),
		ParamSource:   strings.ToLower(getEnv("PARAM_SOURCE", "ssm")),
		OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),
		Port:          getEnv("PORT", defaultPort),
		FrontendURL:   os.Getenv("FRONTEND_URL"),
		LogLevel:      parseLevel(os.Getenv("LOG_LEVEL")),
		RelayURL:      getEnv("RELAY_URL", defaultRelayURL),
		ChatLogFile:   getEnv("CHAT_LOG_FILE", defaultLogFile),
	}
}

func (c *Config) Validate() error {
	var missing []string
	if c.ParamPrefix == "" {
		missing = append(missing, "PARAM_PREFIX")
	}
	if len(missing) > 0 {
		return fmt.Errorf("config: missing required environment variables: %s", strings.Join(missing, ", "))
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("config: PORT must be numeric: %w", err)
	}
	switch c.ParamSource {
	case "ssm", "env":
	default:
		return fmt.Errorf("config: PARAM_SOURCE must be ssm or env, got %q", c.ParamSource)
	}
	return nil
}

// loadDotEnv loads the given files (default .env) without overriding
// variables already present. A missing file is not an error.
func loadDotEnv(files ...string) error {
	if err := godotenv.Load(files...); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: load env file: %w", err)
	}
	return nil
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
