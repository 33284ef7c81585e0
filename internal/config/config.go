// Package config loads run configuration from flags, environment
// variables, an optional config file, and defaults, in that precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/openceo2025/iquavis-task-copy/pkg/iquavis"
)

const (
	envPrefix      = "IQUAVIS"
	configFileName = "taskcopy"
)

// Config holds everything one run needs. Lifecycle is a single
// invocation; nothing here is process-global.
type Config struct {
	// BaseURL is the iQUAVIS API endpoint (IQUAVIS_BASE_URL).
	BaseURL string
	// Timeout bounds each HTTP call, including per-row updates.
	Timeout time.Duration
	// OutputDir receives exported workbooks.
	OutputDir string
	// PageSize is the list-call page size.
	PageSize int
	// Debug enables verbose logging.
	Debug bool
}

// Load builds a Config. Flags already parsed into flags (when non-nil)
// take precedence over environment variables, which take precedence over
// an optional taskcopy.yaml in the working directory.
func Load(flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetDefault("base_url", iquavis.DefaultBaseURL)
	v.SetDefault("timeout", iquavis.DefaultTimeout)
	v.SetDefault("output_dir", ".")
	v.SetDefault("page_size", iquavis.DefaultPageSize)
	v.SetDefault("debug", false)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName(configFileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return Config{}, err
		}
	}

	cfg := Config{
		BaseURL:   v.GetString("base_url"),
		Timeout:   v.GetDuration("timeout"),
		OutputDir: v.GetString("output_dir"),
		PageSize:  v.GetInt("page_size"),
		Debug:     v.GetBool("debug"),
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	bindings := map[string]string{
		"base_url":   "base-url",
		"timeout":    "timeout",
		"output_dir": "output-dir",
		"debug":      "debug",
	}
	for key, flagName := range bindings {
		flag := flags.Lookup(flagName)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind flag %s: %w", flagName, err)
		}
	}
	return nil
}

func (c Config) validate() error {
	if c.BaseURL == "" {
		return errors.New("base URL must not be empty")
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	if c.PageSize <= 0 {
		return errors.New("page size must be positive")
	}
	return nil
}
