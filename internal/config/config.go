// Package config loads service and CLI settings from defaults, an optional
// config file, an optional .env file and FORMFORGE_* environment variables,
// in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/matthewbaird/formforge/internal/dbc"
	"github.com/matthewbaird/formforge/internal/er"
	"github.com/matthewbaird/formforge/internal/field"
	"github.com/matthewbaird/formforge/internal/fmb"
	"github.com/matthewbaird/formforge/internal/grouping"
	"github.com/matthewbaird/formforge/internal/pipeline"
)

// EnvPrefix prefixes every environment override, e.g. FORMFORGE_LOG_LEVEL.
const EnvPrefix = "FORMFORGE"

// Config holds all settings.
type Config struct {
	Port     int            `mapstructure:"port"`
	Log      LogConfig      `mapstructure:"log"`
	Naming   NamingConfig   `mapstructure:"naming"`
	Grouping GroupingConfig `mapstructure:"grouping"`
	FMB      FMBConfig      `mapstructure:"fmb"`
	Script   ScriptConfig   `mapstructure:"script"`
	Layout   LayoutConfig   `mapstructure:"layout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type NamingConfig struct {
	Prefix string `mapstructure:"prefix"`
}

type GroupingConfig struct {
	MainDetailLabel string `mapstructure:"mainDetailLabel"`
}

type FMBConfig struct {
	IndexTokens  []string `mapstructure:"indexTokens"`
	GroupMarker  string   `mapstructure:"groupMarker"`
	SystemLabels []string `mapstructure:"systemLabels"`
	LabelMatch   string   `mapstructure:"systemLabelMatch"`
}

type ScriptConfig struct {
	Author string `mapstructure:"author"`
}

type LayoutConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
	Engine  string        `mapstructure:"engine"`
}

type options struct {
	envFile   string
	overrides map[string]any
}

// Option adjusts how Load reads its sources.
type Option func(*options)

// WithEnvFile loads dotenv variables from path instead of ./.env. A missing
// file is ignored.
func WithEnvFile(path string) Option {
	return func(o *options) { o.envFile = path }
}

// WithOverride sets key above every other source.
func WithOverride(key string, value any) Option {
	return func(o *options) { o.overrides[key] = value }
}

// Load reads the configuration. file may be empty; when set it must exist.
func Load(file string, opts ...Option) (Config, error) {
	o := options{envFile: ".env", overrides: map[string]any{}}
	for _, opt := range opts {
		opt(&o)
	}
	if err := loadEnvFile(o.envFile); err != nil {
		return Config{}, err
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}
	for k, val := range o.overrides {
		v.Set(k, val)
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

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("naming.prefix", field.DefaultCustomPrefix)
	v.SetDefault("grouping.mainDetailLabel", grouping.DefaultMainDetailLabel)
	v.SetDefault("fmb.indexTokens", fmb.DefaultIndexTokens)
	v.SetDefault("fmb.groupMarker", fmb.DefaultGroupMarker)
	v.SetDefault("fmb.systemLabels", fmb.DefaultSystemLabels)
	v.SetDefault("fmb.systemLabelMatch", string(fmb.MatchWord))
	v.SetDefault("script.author", dbc.DefaultAuthor)
	v.SetDefault("layout.timeout", 5*time.Second)
	v.SetDefault("layout.engine", er.EngineSugiyama)
}

// loadEnvFile loads path into the process environment when it exists.
// Variables already set are not overridden.
func loadEnvFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load .env file: %w", err)
	}
	return nil
}

// Validate rejects values no component can work with.
func (c Config) Validate() error {
	var errs []error
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q: want console or json", c.Log.Format))
	}
	if c.Layout.Timeout <= 0 {
		errs = append(errs, errors.New("layout.timeout must be positive"))
	}
	if _, err := fmb.ParseLabelMatch(c.FMB.LabelMatch); err != nil {
		errs = append(errs, fmt.Errorf("fmb.systemLabelMatch: %w", err))
	}
	if _, err := er.NewLayouter(c.Layout.Engine); err != nil {
		errs = append(errs, fmt.Errorf("layout.engine: %w", err))
	}
	return errors.Join(errs...)
}

// NamingPolicy returns the configured naming policy.
func (c Config) NamingPolicy() field.Naming {
	return field.Naming{Prefix: c.Naming.Prefix}
}

// FMBOptions returns the legacy form parser settings.
func (c Config) FMBOptions() fmb.Options {
	return fmb.Options{
		Ownership:    fmb.PrefixOwnership{IndexTokens: c.FMB.IndexTokens},
		GroupMarker:  c.FMB.GroupMarker,
		SystemLabels: c.FMB.SystemLabels,
		// Validate has rejected unknown modes.
		SystemLabelMatch: fmb.LabelMatch(strings.ToLower(strings.TrimSpace(c.FMB.LabelMatch))),
	}
}

// PipelineOptions returns the generation settings.
func (c Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		Naming:   c.NamingPolicy(),
		Grouping: grouping.Options{DefaultMainDetailLabel: c.Grouping.MainDetailLabel},
		Author:   c.Script.Author,
	}
}

// Layouter returns the configured layout engine. Validate has already
// rejected unknown names, so an unknown one falls back to the default.
func (c Config) Layouter() er.Layouter {
	l, err := er.NewLayouter(c.Layout.Engine)
	if err != nil {
		return er.Sugiyama{}
	}
	return l
}
