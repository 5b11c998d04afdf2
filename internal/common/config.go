package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
)

// Config is the root application configuration, assembled from defaults,
// then merged TOML files (in order), then environment variables, then
// command-line flags - each layer overriding the last.
type Config struct {
	Environment string          `toml:"environment" validate:"oneof=development production"`
	Server      ServerConfig    `toml:"server" validate:"required"`
	Ingest      IngestConfig    `toml:"ingest" validate:"required"`
	Logging     LoggingConfig   `toml:"logging" validate:"required"`
	Ledger      LedgerConfig    `toml:"ledger" validate:"required"`
	Scheduler   SchedulerConfig `toml:"scheduler" validate:"required"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port int    `toml:"port" validate:"min=1,max=65535"`
	Host string `toml:"host"`
}

// IngestConfig configures the one-shot log load performed at startup.
type IngestConfig struct {
	LogPath string `toml:"log_path" validate:"required"`
}

// LoggingConfig mirrors the teacher's logging configuration, unchanged in
// shape: it feeds SetupLogger regardless of which domain is being served.
type LoggingConfig struct {
	Level      string   `toml:"level"`
	Format     string   `toml:"format"`
	Output     []string `toml:"output"`
	TimeFormat string   `toml:"time_format"`
}

// LedgerConfig configures the Badger-backed ingestion ledger: malformed
// line records and the load summary, never the query index itself.
type LedgerConfig struct {
	Path           string `toml:"path" validate:"required"`
	ResetOnStartup bool   `toml:"reset_on_startup"`
}

// SchedulerConfig configures the periodic Badger value-log GC job. It
// never touches the immutable query index.
type SchedulerConfig struct {
	Enabled  bool   `toml:"enabled"`
	Schedule string `toml:"schedule"`
}

// NewDefaultConfig returns a Config with conservative defaults, used as
// the base layer before any file, environment, or flag override is
// applied.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8000,
			Host: "127.0.0.1",
		},
		Ingest: IngestConfig{
			LogPath: "hn_logs.tsv",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Output:     []string{"stdout"},
			TimeFormat: "15:04:05.000",
		},
		Ledger: LedgerConfig{
			Path:           "./data/ledger",
			ResetOnStartup: false,
		},
		Scheduler: SchedulerConfig{
			Enabled:  true,
			Schedule: "0 */6 * * *",
		},
	}
}

// LoadFromFiles loads configuration with priority default -> file1 ->
// file2 -> ... -> env, where later files override earlier ones. Missing
// paths are skipped rather than treated as an error, so an optional
// override file can simply not exist.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)
	return config, nil
}

// applyEnvOverrides applies LOGRANGE_* environment variables over
// whatever the file layer produced. Environment variables always win
// over config files but lose to explicit CLI flags.
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("LOGRANGE_ENV"); env != "" {
		config.Environment = env
	}
	if port := os.Getenv("LOGRANGE_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("LOGRANGE_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if logPath := os.Getenv("LOGRANGE_LOG_PATH"); logPath != "" {
		config.Ingest.LogPath = logPath
	}
	if ledgerPath := os.Getenv("LOGRANGE_LEDGER_PATH"); ledgerPath != "" {
		config.Ledger.Path = ledgerPath
	}
	if level := os.Getenv("LOGRANGE_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if format := os.Getenv("LOGRANGE_LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}
	if output := os.Getenv("LOGRANGE_LOG_OUTPUT"); output != "" {
		config.Logging.Output = strings.Split(output, ",")
	}
}

// ApplyFlagOverrides applies command-line flag values, which take
// precedence over everything else.
func ApplyFlagOverrides(config *Config, port int, host, logPath string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
	if logPath != "" {
		config.Ingest.LogPath = logPath
	}
}

// Validate checks struct tags via go-playground/validator and applies the
// domain-specific rule that the scheduler's cron schedule, when the
// scheduler is enabled, must parse under the standard 5-field grammar.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Scheduler.Enabled {
		if err := ValidateCronSchedule(c.Scheduler.Schedule); err != nil {
			return fmt.Errorf("invalid scheduler.schedule: %w", err)
		}
	}
	return nil
}

// ValidateCronSchedule parses schedule under the standard 5-field cron
// grammar (minute hour dom month dow), returning an error if it does not
// parse.
func ValidateCronSchedule(schedule string) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}
	return nil
}

// IsProduction reports whether the configured environment is production.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
