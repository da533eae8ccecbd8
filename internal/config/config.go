// Package config loads webnnconf settings from defaults, a config file,
// WEBNNCONF_* environment variables and command-line flags, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Report formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

type Config struct {
	LogLevel string       `mapstructure:"log_level"`
	Runner   RunnerConfig `mapstructure:"runner"`
	Report   ReportConfig `mapstructure:"report"`
}

type RunnerConfig struct {
	Workers  int    `mapstructure:"workers"`
	Parallel bool   `mapstructure:"parallel"`
	Filter   string `mapstructure:"filter"`
}

type ReportConfig struct {
	Format  string `mapstructure:"format"`
	Verbose bool   `mapstructure:"verbose"`
}

type LoadOptions struct {
	Cmd        flagBinder
	ConfigFile string
	Defaults   Config
}

type flagBinder interface {
	Flags() *pflag.FlagSet
}

func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Runner: RunnerConfig{
			Workers:  runtime.NumCPU(),
			Parallel: true,
			Filter:   "",
		},
		Report: ReportConfig{
			Format:  FormatText,
			Verbose: false,
		},
	}
}

func RegisterFlags(fs *pflag.FlagSet, defaults Config) {
	fs.String("log-level", defaults.LogLevel, "Log level (debug|info|warn|error)")
	fs.Int("runner-workers", defaults.Runner.Workers, "Number of cases run concurrently")
	fs.Bool("runner-parallel", defaults.Runner.Parallel, "Run cases concurrently")
	fs.String("runner-filter", defaults.Runner.Filter, "Only run cases whose name matches this regular expression")
	fs.String("report-format", defaults.Report.Format, "Report format (text|json)")
	fs.Bool("report-verbose", defaults.Report.Verbose, "List passing and skipped cases in text reports")
}

func Load(opts LoadOptions) (Config, error) {
	v := viper.New()

	setDefaults(v, opts.Defaults)
	if opts.Cmd != nil {
		if err := bindFlags(v, opts.Cmd.Flags()); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	v.SetEnvPrefix("WEBNNCONF")
	replacer := strings.NewReplacer("-", "_", ".", "_")
	v.SetEnvKeyReplacer(replacer)
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("webnnconf")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks enumerated and numeric settings.
func (c Config) Validate() error {
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.Report.Format {
	case FormatText, FormatJSON:
	default:
		return fmt.Errorf("unknown report format %q (want %s|%s)", c.Report.Format, FormatText, FormatJSON)
	}
	if c.Runner.Workers < 1 {
		return fmt.Errorf("runner workers must be at least 1, got %d", c.Runner.Workers)
	}
	return nil
}

// ParseLogLevel converts a case-insensitive level string to slog.Level.
// An empty string returns slog.LevelInfo. Unknown strings return an error.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q (want debug|info|warn|error)", s)
	}
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("log_level", c.LogLevel)
	v.SetDefault("runner.workers", c.Runner.Workers)
	v.SetDefault("runner.parallel", c.Runner.Parallel)
	v.SetDefault("runner.filter", c.Runner.Filter)
	v.SetDefault("report.format", c.Report.Format)
	v.SetDefault("report.verbose", c.Report.Verbose)
}

// flagKeys maps flag names to config keys. Binding each flag to its nested
// key keeps config file values visible; aliases would shadow them.
var flagKeys = []struct{ flag, key string }{
	{"log-level", "log_level"},
	{"runner-workers", "runner.workers"},
	{"runner-parallel", "runner.parallel"},
	{"runner-filter", "runner.filter"},
	{"report-format", "report.format"},
	{"report-verbose", "report.verbose"},
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for _, fk := range flagKeys {
		f := fs.Lookup(fk.flag)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(fk.key, f); err != nil {
			return err
		}
	}
	return nil
}
