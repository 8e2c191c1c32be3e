// Package config loads the .i18nmig.yaml project file.
//
// Values are resolved in order: built-in defaults, the YAML file,
// I18NMIG_* environment variables, then CLI flags (applied by the caller).
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"github.com/ZaguanLabs/i18nmig"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// FileName is the default config file name.
const FileName = ".i18nmig.yaml"

// Config is the top-level .i18nmig.yaml structure.
type Config struct {
	// Root is the project directory, relative to the config file.
	Root string `yaml:"root,omitempty"`
	// Include and Exclude are doublestar globs relative to Root.
	Include []string `yaml:"include,omitempty"`
	Exclude []string `yaml:"exclude,omitempty"`

	Locales   Locales   `yaml:"locales"`
	Artifacts Artifacts `yaml:"artifacts"`
	Runtime   Runtime   `yaml:"runtime"`
	Suggest   Suggest   `yaml:"suggest"`

	// Dictionary is a JSON file of curated {primary text: secondary text}.
	Dictionary string `yaml:"dictionary,omitempty"`
	// MaxKeyLength caps base slugs; 0 disables the cap.
	MaxKeyLength   int      `yaml:"max_key_length,omitempty"`
	Workers        int      `yaml:"workers,omitempty"`
	SkipAttributes []string `yaml:"skip_attributes,omitempty"`
	LogLevel       string   `yaml:"log_level,omitempty"`

	// APIKey comes from the environment only.
	APIKey string `yaml:"-"`

	path string
}

// Locales names the authoring and target locales.
type Locales struct {
	Primary   string `yaml:"primary,omitempty"`
	Secondary string `yaml:"secondary,omitempty"`
}

// Artifacts overrides artifact locations, relative to Root.
type Artifacts struct {
	Report      string `yaml:"report,omitempty"`
	Map         string `yaml:"map,omitempty"`
	Bundles     string `yaml:"bundles,omitempty"`
	Review      string `yaml:"review,omitempty"`
	Suggestions string `yaml:"suggestions,omitempty"`
}

// Runtime names the localization library written into rewritten sources.
type Runtime struct {
	Module   string `yaml:"module,omitempty"`
	Accessor string `yaml:"accessor,omitempty"`
	Lookup   string `yaml:"lookup,omitempty"`
}

// Suggest configures machine suggestions.
type Suggest struct {
	Model     string            `yaml:"model,omitempty"`
	BaseURL   string            `yaml:"base_url,omitempty"`
	RPM       int               `yaml:"rpm,omitempty"`
	BatchSize int               `yaml:"batch_size,omitempty"`
	Context   string            `yaml:"context,omitempty"`
	Glossary  map[string]string `yaml:"glossary,omitempty"`
	CacheTTL  int               `yaml:"cache_ttl,omitempty"` // Seconds, 0 = never expire
	CacheFile string            `yaml:"cache_file,omitempty"`
	RedisURL  string            `yaml:"redis_url,omitempty"`
}

// environment lists the variables that override the file.
type environment struct {
	Root            string   `env:"I18NMIG_ROOT"`
	Include         []string `env:"I18NMIG_INCLUDE" envSeparator:","`
	PrimaryLocale   string   `env:"I18NMIG_PRIMARY_LOCALE"`
	SecondaryLocale string   `env:"I18NMIG_SECONDARY_LOCALE"`
	Workers         int      `env:"I18NMIG_WORKERS"`
	LogLevel        string   `env:"I18NMIG_LOG_LEVEL"`
	Model           string   `env:"I18NMIG_MODEL"`
	BaseURL         string   `env:"I18NMIG_BASE_URL"`
	RedisURL        string   `env:"I18NMIG_REDIS_URL"`
	APIKey          string   `env:"OPENAI_API_KEY"`
}

var identifier = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// Default returns the built-in configuration.
func Default() *Config {
	api := i18nmig.DefaultRuntimeAPI()
	return &Config{
		Root:    ".",
		Include: append([]string(nil), i18nmig.DefaultInclude...),
		Exclude: append([]string(nil), i18nmig.DefaultExclude...),
		Locales: Locales{
			Primary:   i18nmig.DefaultPrimaryLocale,
			Secondary: i18nmig.DefaultSecondaryLocale,
		},
		Runtime: Runtime{
			Module:   api.Module,
			Accessor: api.Accessor,
			Lookup:   api.Lookup,
		},
		Suggest: Suggest{
			Model:     "gpt-4o-mini",
			RPM:       60,
			BatchSize: 50,
			CacheFile: filepath.Join("i18n", "suggestions", "cache.json"),
		},
		MaxKeyLength:   i18nmig.MaxKeyLength,
		SkipAttributes: append([]string(nil), i18nmig.DefaultSkipAttributes...),
		LogLevel:       "info",
	}
}

// Load reads path, applies the process environment and validates the
// result. A missing file yields the defaults rooted at the file's directory.
func Load(path string) (*Config, error) {
	return load(path, env.Options{})
}

// LoadWithEnvironment is Load with an explicit environment instead of the
// process one.
func LoadWithEnvironment(path string, environ map[string]string) (*Config, error) {
	return load(path, env.Options{Environment: environ})
}

func load(path string, opts env.Options) (*Config, error) {
	cfg := Default()
	cfg.path = path

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var e environment
	if err := env.ParseWithOptions(&e, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.applyEnvironment(e)

	if !filepath.IsAbs(cfg.Root) {
		cfg.Root = filepath.Join(filepath.Dir(path), cfg.Root)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) applyEnvironment(e environment) {
	if e.Root != "" {
		c.Root = e.Root
	}
	if len(e.Include) > 0 {
		c.Include = e.Include
	}
	if e.PrimaryLocale != "" {
		c.Locales.Primary = e.PrimaryLocale
	}
	if e.SecondaryLocale != "" {
		c.Locales.Secondary = e.SecondaryLocale
	}
	if e.Workers != 0 {
		c.Workers = e.Workers
	}
	if e.LogLevel != "" {
		c.LogLevel = e.LogLevel
	}
	if e.Model != "" {
		c.Suggest.Model = e.Model
	}
	if e.BaseURL != "" {
		c.Suggest.BaseURL = e.BaseURL
	}
	if e.RedisURL != "" {
		c.Suggest.RedisURL = e.RedisURL
	}
	c.APIKey = e.APIKey
}

// Validate canonicalizes locales and rejects inconsistent settings.
func (c *Config) Validate() error {
	primary, err := i18nmig.CanonicalLocale(c.Locales.Primary)
	if err != nil {
		return fmt.Errorf("locales.primary: %w", err)
	}
	secondary, err := i18nmig.CanonicalLocale(c.Locales.Secondary)
	if err != nil {
		return fmt.Errorf("locales.secondary: %w", err)
	}
	if i18nmig.SameLanguage(primary, secondary) {
		return fmt.Errorf("locales: primary %q and secondary %q are the same language", primary, secondary)
	}
	c.Locales.Primary, c.Locales.Secondary = primary, secondary

	for _, pattern := range append(append([]string(nil), c.Include...), c.Exclude...) {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid glob pattern %q", pattern)
		}
	}

	if c.MaxKeyLength < 0 {
		return fmt.Errorf("max_key_length must not be negative, got %d", c.MaxKeyLength)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}

	if c.Runtime.Module == "" {
		return errors.New("runtime.module is required")
	}
	for name, v := range map[string]string{"runtime.accessor": c.Runtime.Accessor, "runtime.lookup": c.Runtime.Lookup} {
		if !identifier.MatchString(v) {
			return fmt.Errorf("%s: %q is not a valid identifier", name, v)
		}
	}

	if c.Suggest.RPM < 0 || c.Suggest.BatchSize < 0 || c.Suggest.CacheTTL < 0 {
		return errors.New("suggest: rpm, batch_size and cache_ttl must not be negative")
	}
	return nil
}

// Path returns the file the configuration was loaded from.
func (c *Config) Path() string {
	return c.path
}

// resolve joins a Root-relative path with Root.
func (c *Config) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Root, p)
}

// ArtifactPaths returns the artifact layout with overrides applied.
func (c *Config) ArtifactPaths() i18nmig.Artifacts {
	a := i18nmig.DefaultArtifacts(c.Root)
	if c.Artifacts.Report != "" {
		a.Report = c.resolve(c.Artifacts.Report)
	}
	if c.Artifacts.Map != "" {
		a.Map = c.resolve(c.Artifacts.Map)
	}
	if c.Artifacts.Bundles != "" {
		a.Bundles = c.resolve(c.Artifacts.Bundles)
	}
	if c.Artifacts.Review != "" {
		a.Review = c.resolve(c.Artifacts.Review)
	}
	if c.Artifacts.Suggestions != "" {
		a.Suggestions = c.resolve(c.Artifacts.Suggestions)
	}
	return a
}

// RuntimeAPI returns the configured runtime library.
func (c *Config) RuntimeAPI() i18nmig.RuntimeAPI {
	return i18nmig.RuntimeAPI{
		Module:   c.Runtime.Module,
		Accessor: c.Runtime.Accessor,
		Lookup:   c.Runtime.Lookup,
	}
}

// KeyLength returns the slug cap in PipelineConfig terms, where zero means
// the default rather than no cap.
func (c *Config) KeyLength() int {
	if c.MaxKeyLength == 0 {
		return i18nmig.NoKeyLengthLimit
	}
	return c.MaxKeyLength
}

// CacheFilePath returns the suggestion cache file, resolved against Root.
func (c *Config) CacheFilePath() string {
	return c.resolve(c.Suggest.CacheFile)
}

// LoadDictionary reads the curated dictionary. No configured dictionary
// yields an empty map; keys are normalized like extracted texts.
func (c *Config) LoadDictionary() (map[string]string, error) {
	if c.Dictionary == "" {
		return map[string]string{}, nil
	}
	return LoadDictionary(c.resolve(c.Dictionary))
}

// LoadDictionary reads a JSON {primary text: secondary text} file.
func LoadDictionary(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dictionary: %w", err)
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing dictionary %s: %w", path, err)
	}

	dict := make(map[string]string, len(raw))
	for text, value := range raw {
		if text = i18nmig.NormalizeText(text); text != "" && value != "" {
			dict[text] = value
		}
	}
	return dict, nil
}
