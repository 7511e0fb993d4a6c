package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/logging"
	"github.com/arthur-debert/dotsync/pkg/paths"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is stripped from environment overrides.
// DOTSYNC_REMOTE_SYNC_COMMAND maps to remote.sync_command.
const EnvPrefix = "DOTSYNC_"

// Options controls which layers Load reads
type Options struct {
	// UserConfigPath is the per-user config file, skipped when empty or missing
	UserConfigPath string
	// RootConfigPath is the dotfiles root config file, skipped when empty or missing
	RootConfigPath string
	// Overrides are applied last, keyed by dotted path
	Overrides map[string]interface{}
}

// Load merges every configuration layer and decodes the result
func Load(opts Options) (*Config, error) {
	k, err := LoadKoanf(opts)
	if err != nil {
		return nil, err
	}
	return Decode(k)
}

// LoadKoanf merges the layers without decoding them
func LoadKoanf(opts Options) (*koanf.Koanf, error) {
	logger := logging.GetLogger("config")
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(defaults{}, nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load defaults")
	}

	// 2. User config, then 3. dotfiles root config
	for _, path := range []string{opts.UserConfigPath, opts.RootConfigPath} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := k.Load(file.Provider(path), parserFor(path)); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to load config from %s", path).
				WithDetail("path", path)
		}
		logger.Debug().Str("path", path).Msg("Loaded config file")
	}

	// 4. Environment
	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		section, rest, found := strings.Cut(key, "_")
		if !found {
			return key
		}
		return section + "." + rest
	}), nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load env vars")
	}

	// 5. Flag overrides
	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load overrides")
		}
	}

	return k, nil
}

// Decode unmarshals a merged koanf tree and validates it
func Decode(k *koanf.Koanf) (*Config, error) {
	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal configuration")
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func parserFor(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser()
	default:
		return toml.Parser()
	}
}

// Validate rejects configurations the engines cannot act on
func Validate(cfg *Config) error {
	seen := make(map[string]string)
	for i, m := range cfg.Sync.Mappings {
		if m.Source == "" || m.Target == "" {
			return errors.Newf(errors.ErrConfigValid, "mapping %d needs both source and target", i).
				WithDetail("mapping", m.DisplayName())
		}
		target := filepath.Clean(paths.ExpandHome(m.Target))
		if prev, dup := seen[target]; dup {
			return errors.Newf(errors.ErrConfigValid, "mappings %q and %q share target %s", prev, m.DisplayName(), m.Target)
		}
		seen[target] = m.DisplayName()
	}

	switch cfg.Remote.Transport {
	case TransportRsync, TransportNative:
	default:
		return errors.Newf(errors.ErrConfigValid, "unknown remote transport %q", cfg.Remote.Transport)
	}

	for i, h := range cfg.Remote.Hosts {
		if h.Name == "" && h.Alias == "" {
			return errors.Newf(errors.ErrConfigValid, "host %d needs a name or alias", i)
		}
	}

	for i, t := range cfg.Install.Tools {
		if t.Name == "" {
			return errors.Newf(errors.ErrConfigValid, "tool %d has no name", i)
		}
	}

	if cfg.Runner.Timeout < 0 {
		return errors.New(errors.ErrConfigValid, "runner timeout must not be negative")
	}
	return nil
}

// Describe lists the files Load would consult, in order, and whether each exists
func Describe(opts Options) []string {
	var out []string
	out = append(out, "embedded defaults")
	for _, path := range []string{opts.UserConfigPath, opts.RootConfigPath} {
		if path == "" {
			continue
		}
		state := "missing"
		if _, err := os.Stat(path); err == nil {
			state = "loaded"
		}
		out = append(out, fmt.Sprintf("%s (%s)", path, state))
	}
	out = append(out, EnvPrefix+"* environment variables")
	return out
}
