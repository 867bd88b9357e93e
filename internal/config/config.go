// Package config loads stackctl settings from stackctl.yaml, STACKCTL_*
// environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// FileName is the config file looked up in the working directory.
const FileName = "stackctl.yaml"

// EnvPrefix prefixes environment overrides, e.g. STACKCTL_OUTPUT_DIR.
const EnvPrefix = "STACKCTL"

// Config holds every stackctl setting.
type Config struct {
	OutputDir string   `mapstructure:"output_dir"`
	Format    string   `mapstructure:"format"`
	Stacks    []string `mapstructure:"stacks"`
	LogLevel  string   `mapstructure:"log_level"`

	Checks ChecksConfig `mapstructure:"checks"`
	Lint   LintConfig   `mapstructure:"lint"`
	AWS    AWSConfig    `mapstructure:"aws"`
	Assets AssetsConfig `mapstructure:"assets"`
}

// ChecksConfig configures the template checks.
type ChecksConfig struct {
	Disabled []string `mapstructure:"disabled"`
}

// LintConfig configures the source linter.
type LintConfig struct {
	DisabledRules []string `mapstructure:"disabled_rules"`
	MaxResources  int      `mapstructure:"max_resources"`
}

// AWSConfig selects the credentials used by publish and drift.
type AWSConfig struct {
	Profile string `mapstructure:"profile"`
	Region  string `mapstructure:"region"`
}

// AssetsConfig locates the function source and where packages are uploaded.
type AssetsConfig struct {
	SourceDir string `mapstructure:"source_dir"`
	Bucket    string `mapstructure:"bucket"`
	Prefix    string `mapstructure:"prefix"`
}

var logLevels = []string{"debug", "info", "warn", "error"}

// New returns a viper instance carrying the defaults and environment binding.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("output_dir", "cdk.out")
	v.SetDefault("format", "json")
	v.SetDefault("stacks", []string{})
	v.SetDefault("log_level", "warn")
	v.SetDefault("checks.disabled", []string{})
	v.SetDefault("lint.disabled_rules", []string{})
	v.SetDefault("lint.max_resources", 0)
	v.SetDefault("aws.profile", "")
	v.SetDefault("aws.region", "us-east-1")
	v.SetDefault("assets.source_dir", "lambda")
	v.SetDefault("assets.bucket", "")
	v.SetDefault("assets.prefix", "assets/")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads path, or stackctl.yaml from the working directory when path is
// empty. A missing default file is not an error; a missing explicit one is.
// flags, when non-nil, override file and environment values.
func Load(v *viper.Viper, path string, flags *pflag.FlagSet) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(strings.TrimSuffix(FileName, ".yaml"))
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	if flags != nil {
		for key, name := range map[string]string{
			"output_dir": "output",
			"format":     "format",
			"log_level":  "log-level",
		} {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, err
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return &cfg, nil
}

// Validate checks enumerated values and that every configured stack is one
// of known.
func (c *Config) Validate(known []string) error {
	var errs []error

	switch c.Format {
	case "json", "yaml":
	default:
		errs = append(errs, fmt.Errorf("format must be json or yaml, got %q", c.Format))
	}
	if c.OutputDir == "" {
		errs = append(errs, errors.New("output_dir must not be empty"))
	}
	if !slices.Contains(logLevels, c.LogLevel) {
		errs = append(errs, fmt.Errorf("log_level must be one of %s, got %q", strings.Join(logLevels, ", "), c.LogLevel))
	}
	if c.Lint.MaxResources < 0 {
		errs = append(errs, fmt.Errorf("lint.max_resources must not be negative, got %d", c.Lint.MaxResources))
	}
	for _, name := range c.Stacks {
		if !slices.Contains(known, name) {
			errs = append(errs, fmt.Errorf("unknown stack %q (known: %s)", name, strings.Join(known, ", ")))
		}
	}

	return errors.Join(errs...)
}

// SelectedStacks returns the configured stack names, or known when none are
// configured.
func (c *Config) SelectedStacks(known []string) []string {
	if len(c.Stacks) == 0 {
		return known
	}
	return c.Stacks
}
