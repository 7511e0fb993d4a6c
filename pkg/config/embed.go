package config

import (
	_ "embed"

	"github.com/pelletier/go-toml/v2"
)

//go:embed embedded/defaults.toml
var defaultConfig []byte

// DefaultContent returns the embedded defaults as written, comments included
func DefaultContent() string {
	return string(defaultConfig)
}

// defaults is the koanf provider for the embedded layer. It decodes the
// TOML itself, so it is loaded with a nil parser.
type defaults struct{}

func (defaults) ReadBytes() ([]byte, error) { return defaultConfig, nil }

func (defaults) Read() (map[string]interface{}, error) {
	m := map[string]interface{}{}
	if err := toml.Unmarshal(defaultConfig, &m); err != nil {
		return nil, err
	}
	return m, nil
}
