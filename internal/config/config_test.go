package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DurationField != "Duration_Total" {
		t.Errorf("DurationField = %q", cfg.DurationField)
	}
	if cfg.NormalizeWorkers != 1 || cfg.TopN != 10 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if filepath.Base(cfg.CleanedCSV) != "cleaned_movies.csv" {
		t.Errorf("CleanedCSV = %q", cfg.CleanedCSV)
	}
}

func TestLoadYAMLThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "moviedash.yaml")
	yaml := "duration_field: Duration\nnormalize_workers: 4\ntop_n: 5\ncsv_dir: /tmp/yaml-csv\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("TOP_N", "7")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DurationField != "Duration" {
		t.Errorf("DurationField = %q, want yaml value", cfg.DurationField)
	}
	if cfg.NormalizeWorkers != 4 {
		t.Errorf("NormalizeWorkers = %d, want 4", cfg.NormalizeWorkers)
	}
	if cfg.TopN != 7 {
		t.Errorf("TopN = %d, env should override yaml", cfg.TopN)
	}
	if cfg.CSVDir != "/tmp/yaml-csv" {
		t.Errorf("CSVDir = %q", cfg.CSVDir)
	}
	if cfg.MergedCSV != filepath.Join("/tmp/yaml-csv", "merged_movies.csv") {
		t.Errorf("MergedCSV = %q, should follow CSVDir", cfg.MergedCSV)
	}
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("top_n: [oops"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)
	if _, err := Load(); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	base := Config{DurationField: "Duration_Total", NormalizeWorkers: 1, LogLevel: "info", TopN: 10, RefreshSchedule: "@every 1h", ListenerEnabled: true}
	if err := base.Validate(); err != nil {
		t.Fatalf("base config invalid: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{name: "workers", mutate: func(c *Config) { c.NormalizeWorkers = 0 }, want: ErrInvalidWorkers},
		{name: "duration field", mutate: func(c *Config) { c.DurationField = " " }, want: ErrMissingDurationField},
		{name: "log level", mutate: func(c *Config) { c.LogLevel = "loud" }, want: ErrInvalidLogLevel},
		{name: "top n", mutate: func(c *Config) { c.TopN = 0 }, want: ErrInvalidTopN},
		{name: "schedule", mutate: func(c *Config) { c.RefreshSchedule = "" }, want: ErrMissingSchedule},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.want) {
				t.Fatalf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}
