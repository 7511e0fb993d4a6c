package config

import (
	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/pelletier/go-toml/v2"
)

// Marshal renders the effective configuration as TOML
func Marshal(cfg *Config) ([]byte, error) {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to marshal configuration")
	}
	return data, nil
}
