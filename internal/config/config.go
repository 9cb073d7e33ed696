package config

import (
	_ "embed"
	"strings"
	"sync"

	"github.com/spf13/viper"

	"github.com/thoreinstein/passmenu/internal/errors"
	"github.com/thoreinstein/passmenu/internal/tree"
)

// EnvPrefix is prepended to environment overrides.
const EnvPrefix = "PASSMENU"

//go:embed default-config.yaml
var defaultDocument []byte

// DefaultDocument returns the embedded default configuration as YAML.
func DefaultDocument() []byte {
	return append([]byte(nil), defaultDocument...)
}

var defaultTree = sync.OnceValues(func() (tree.Mapping, error) {
	return Decode(FormatYAML, defaultDocument)
})

// Config is the typed view of a latest-version document.
type Config struct {
	ConfigVersion    string    `mapstructure:"config-version" yaml:"config-version"`
	PasswordStore    string    `mapstructure:"password-store" yaml:"password-store"`
	ClipboardTimeout int       `mapstructure:"clipboard-timeout" yaml:"clipboard-timeout"`
	FirstLineOnly    bool      `mapstructure:"first-line-only" yaml:"first-line-only"`
	Gpg              GpgConfig `mapstructure:"gpg" yaml:"gpg"`
}

// GpgConfig holds the settings grouped under "gpg" since schema 1.0.
type GpgConfig struct {
	GpgPath           string         `mapstructure:"gpg-path" yaml:"gpg-path"`
	GnupghomeOverride string         `mapstructure:"gnpghome-override" yaml:"gnpghome-override"`
	PinentryFix       bool           `mapstructure:"pinentry-fix" yaml:"pinentry-fix"`
	GpgAgent          GpgAgentConfig `mapstructure:"gpg-agent" yaml:"gpg-agent"`
}

// GpgAgentConfig controls gpg-agent management.
type GpgAgentConfig struct {
	Preload bool `mapstructure:"preload" yaml:"preload"`
}

// Default returns the configuration described by the embedded default
// document.
func Default() (*Config, error) {
	return Bind(tree.Mapping{}, false)
}

// Bind decodes doc into a Config. Keys missing from doc take the embedded
// defaults; when env is true, PASSMENU_* variables override both.
func Bind(doc tree.Mapping, env bool) (*Config, error) {
	v, err := newViper(env)
	if err != nil {
		return nil, err
	}

	if err := v.MergeConfigMap(doc.ToMap()); err != nil {
		return nil, errors.Wrap(err, "merging config document")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "unmarshaling config"), errors.ErrInvalidConfig)
	}
	return &cfg, nil
}

// newViper returns an isolated viper instance seeded with the defaults.
func newViper(env bool) (*viper.Viper, error) {
	defaults, err := defaultTree()
	if err != nil {
		return nil, errors.Wrap(err, "decoding embedded default config")
	}

	v := viper.New()
	for _, path := range defaults.Paths() {
		value, _, _ := defaults.Get(path)
		if s, ok := value.(tree.Scalar); ok {
			v.SetDefault(path, s.Interface())
		}
	}

	if env {
		v.SetEnvPrefix(EnvPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
		v.AutomaticEnv()
	}
	return v, nil
}
