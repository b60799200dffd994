package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidWorkers       = errors.New("NORMALIZE_WORKERS must be at least 1")
	ErrMissingDurationField = errors.New("DURATION_FIELD must not be empty")
	ErrInvalidLogLevel      = errors.New("LOG_LEVEL must be one of: debug, info, warn, error")
	ErrMissingSchedule      = errors.New("REFRESH_SCHEDULE is required when the listener is enabled")
	ErrInvalidTopN          = errors.New("TOP_N must be at least 1")
)

type Config struct {
	DBPath     string `yaml:"db_path"`
	CSVDir     string `yaml:"csv_dir"`
	HTMLDir    string `yaml:"html_dir"`
	MergedCSV  string `yaml:"merged_csv"`
	CleanedCSV string `yaml:"cleaned_csv"`
	OutputDir  string `yaml:"output_dir"`

	DurationField    string `yaml:"duration_field"`
	NormalizeWorkers int    `yaml:"normalize_workers"`
	LogLevel         string `yaml:"log_level"`

	HTTPAddr string `yaml:"http_addr"`
	TopN     int    `yaml:"top_n"`

	RefreshSchedule string `yaml:"refresh_schedule"`
	WatchEnabled    bool   `yaml:"watch_enabled"`
	ListenerEnabled bool   `yaml:"listener_enabled"`
}

// Load reads .env, then the optional YAML file named by CONFIG_FILE, then
// environment variables. Later sources win.
func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:    filepath.Join(cwd, "data", "movies.db"),
		CSVDir:    filepath.Join(cwd, "data", "csv"),
		HTMLDir:   filepath.Join(cwd, "data", "html"),
		OutputDir: filepath.Join(cwd, "out"),

		DurationField:    "Duration_Total",
		NormalizeWorkers: 1,
		LogLevel:         "info",

		HTTPAddr: ":8080",
		TopN:     10,

		RefreshSchedule: "@every 1h",
		WatchEnabled:    true,
		ListenerEnabled: true,
	}

	if err := cfg.loadFile(getEnv("CONFIG_FILE", filepath.Join(cwd, "moviedash.yaml"))); err != nil {
		return Config{}, err
	}

	cfg.DBPath = getEnv("DB_PATH", cfg.DBPath)
	cfg.CSVDir = getEnv("CSV_DIR", cfg.CSVDir)
	cfg.HTMLDir = getEnv("HTML_DIR", cfg.HTMLDir)
	cfg.MergedCSV = getEnv("MERGED_CSV", cfg.MergedCSV)
	cfg.CleanedCSV = getEnv("CLEANED_CSV", cfg.CleanedCSV)
	cfg.OutputDir = getEnv("OUTPUT_DIR", cfg.OutputDir)

	cfg.DurationField = strings.TrimSpace(getEnv("DURATION_FIELD", cfg.DurationField))
	cfg.NormalizeWorkers = getEnvInt("NORMALIZE_WORKERS", cfg.NormalizeWorkers)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)

	cfg.HTTPAddr = getEnv("HTTP_ADDR", cfg.HTTPAddr)
	cfg.TopN = getEnvInt("TOP_N", cfg.TopN)

	cfg.RefreshSchedule = getEnv("REFRESH_SCHEDULE", cfg.RefreshSchedule)
	cfg.WatchEnabled = getEnvBool("WATCH_ENABLED", cfg.WatchEnabled)
	cfg.ListenerEnabled = getEnvBool("LISTENER_ENABLED", cfg.ListenerEnabled)

	// The merge outputs follow CSVDir unless placed explicitly.
	if cfg.MergedCSV == "" {
		cfg.MergedCSV = filepath.Join(cfg.CSVDir, "merged_movies.csv")
	}
	if cfg.CleanedCSV == "" {
		cfg.CleanedCSV = filepath.Join(cfg.CSVDir, "cleaned_movies.csv")
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c Config) Validate() error {
	if c.NormalizeWorkers < 1 {
		return ErrInvalidWorkers
	}
	if strings.TrimSpace(c.DurationField) == "" {
		return ErrMissingDurationField
	}
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug", "info", "warn", "error":
	default:
		return ErrInvalidLogLevel
	}
	if c.TopN < 1 {
		return ErrInvalidTopN
	}
	if c.ListenerEnabled && strings.TrimSpace(c.RefreshSchedule) == "" {
		return ErrMissingSchedule
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	if value == "" {
		return fallback
	}
	if value == "1" || value == "true" || value == "yes" || value == "on" {
		return true
	}
	if value == "0" || value == "false" || value == "no" || value == "off" {
		return false
	}
	return fallback
}
