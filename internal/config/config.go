// Package config layers flags, TEXTSPLITTER_* environment variables and an optional config
// file into one validated Config
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/UnendingLoop/TextSplitter/internal/apperr"
	"github.com/UnendingLoop/TextSplitter/internal/matcher"
	"github.com/UnendingLoop/TextSplitter/internal/model"
	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	EnvPrefix      = "TEXTSPLITTER"
	DefaultAddress = "localhost:8085"
	appDirName     = "com.text-splitter.dev"
)

type Config struct {
	Address          string        `mapstructure:"address" validate:"required,hostname_port"`
	LogLevel         string        `mapstructure:"log-level" validate:"oneof=debug info warn error"`
	LogEncoding      string        `mapstructure:"log-encoding" validate:"oneof=json console"`
	SettingsPath     string        `mapstructure:"settings-path" validate:"required"`
	RegexTimeout     time.Duration `mapstructure:"regex-timeout" validate:"gte=0"`
	MaxPatternLength int           `mapstructure:"max-pattern-length" validate:"gte=0"`
	Nodes            []string      `mapstructure:"nodes" validate:"dive,hostname_port"`
	Quorum           int           `mapstructure:"quorum" validate:"gte=1"`
	ShutdownTimeout  time.Duration `mapstructure:"shutdown-timeout" validate:"gt=0"`
}

func Defaults() Config {
	return Config{
		Address:          DefaultAddress,
		LogLevel:         "info",
		LogEncoding:      "console",
		SettingsPath:     DefaultSettingsPath(),
		RegexTimeout:     matcher.DefaultOptions.Timeout,
		MaxPatternLength: matcher.DefaultOptions.MaxLength,
		Quorum:           1,
		ShutdownTimeout:  5 * time.Second,
	}
}

// DefaultSettingsPath falls back to the working directory when the OS reports no config dir
func DefaultSettingsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, appDirName, "settings.json")
}

// RegisterFlags declares every config key as a flag with its default
func RegisterFlags(fs *pflag.FlagSet) {
	def := Defaults()
	fs.String("config", "", "optional config file (json, yaml or toml)")
	fs.String("address", def.Address, "listen address of the serving node")
	fs.String("log-level", def.LogLevel, "debug, info, warn or error")
	fs.String("log-encoding", def.LogEncoding, "console or json")
	fs.String("settings-path", def.SettingsPath, "where the serving node keeps its settings document")
	fs.Duration("regex-timeout", def.RegexTimeout, "upper bound for a single regexp evaluation, 0 disables it")
	fs.Int("max-pattern-length", def.MaxPatternLength, "longest accepted pattern, 0 disables the check")
	fs.Var(&model.NodesList{}, "node", "host:port of a serving node to run the operation on (repeatable)")
	fs.Int("quorum", def.Quorum, "number of nodes that must return the same result")
	fs.Duration("shutdown-timeout", def.ShutdownTimeout, "grace period for in-flight requests on shutdown")
}

// NewViper binds the flags and environment; flag "node" feeds the "nodes" key
func NewViper(fs *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	var result error
	fs.VisitAll(func(f *pflag.Flag) {
		key := f.Name
		if key == "node" {
			key = "nodes"
		}
		if err := v.BindPFlag(key, f); err != nil {
			result = multierror.Append(result, err)
		}
	})
	if result != nil {
		return nil, result
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, apperr.IO(err, "read config %s", path)
		}
	}
	return v, nil
}

// Load decodes and validates the layered values
func Load(v *viper.Viper) (*Config, error) {
	cfg := Defaults()
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, apperr.InvalidValue("config", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return apperr.InvalidValue("config", err)
	}
	return nil
}

func (c Config) MatcherOptions() matcher.Options {
	return matcher.Options{
		Timeout:   c.RegexTimeout,
		MaxLength: c.MaxPatternLength,
	}
}
