package corpus

import (
	"errors"
	"fmt"
	"io/fs"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

// ConfigFile is the optional per-corpus configuration, read from the corpus
// root.
const ConfigFile = "luxsql.yaml"

// StateDir is the directory under the corpus root holding tool state,
// most importantly the index database.
const StateDir = ".luxsql"

// Config tunes linting and execution for a corpus. The zero value is not
// usable; start from DefaultConfig.
type Config struct {
	// DefaultDialect is assumed for sql blocks without a dialect attribute.
	DefaultDialect string `yaml:"default_dialect"`
	// RowLimit caps the rows the runner prints per statement.
	RowLimit int `yaml:"row_limit"`
	// Ignore lists path globs excluded from loading.
	Ignore []string `yaml:"ignore"`
	// RequiredFrontmatter lists frontmatter fields every lesson must set.
	RequiredFrontmatter []string `yaml:"required_frontmatter"`
	// Rules overrides per-rule severity; "off" disables a rule.
	Rules map[string]string `yaml:"rules"`
}

func DefaultConfig() Config {
	return Config{
		DefaultDialect:      "ansi",
		RowLimit:            20,
		RequiredFrontmatter: []string{"title", "slug", "topic"},
		Rules:               map[string]string{},
	}
}

// LoadConfig reads luxsql.yaml from the corpus root. A missing file yields
// the defaults.
func LoadConfig(fsys fs.FS) (Config, error) {
	cfg := DefaultConfig()

	data, err := fs.ReadFile(fsys, ConfigFile)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read %s: %w", ConfigFile, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", ConfigFile, err)
	}
	if cfg.Rules == nil {
		cfg.Rules = map[string]string{}
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid %s: %w", ConfigFile, err)
	}
	return cfg, nil
}

// Validate checks field ranges; rule names are validated by the linter,
// which knows the registered set.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.DefaultDialect, validation.Required),
		validation.Field(&c.RowLimit, validation.Min(1)),
		validation.Field(&c.Rules, validation.Each(
			validation.In("error", "warning", "info", "off"),
		)),
		validation.Field(&c.RequiredFrontmatter, validation.Each(
			validation.In("title", "slug", "topic", "order", "dialect", "summary"),
		)),
	)
}
