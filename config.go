package kosketin

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type (
	keyboardConfig struct {
		Keys         []keyConfig       `yaml:"keys"`
		LeftNaturals map[string]string `yaml:"leftnaturals"`
	}

	keyConfig struct {
		Name      string  `yaml:"name"`
		Freq      float64 `yaml:"freq"`
		Sharpness float64 `yaml:"sharpness"`
		Sharp     bool    `yaml:"sharp,omitempty"`
	}
)

//go:embed keyboard.yml
var defaultKeyboardYaml []byte

// DefaultKeyboard returns the built-in keyboard. The embedded
// configuration is validated at build time by the tests, so a failure
// here means a broken binary.
func DefaultKeyboard() *Keyboard {
	kb, err := ParseKeyboard(defaultKeyboardYaml)
	if err != nil {
		panic(fmt.Errorf("failed to parse embedded keyboard: %w", err))
	}
	return kb
}

// ParseKeyboard parses and validates a keyboard configuration.
func ParseKeyboard(data []byte) (*Keyboard, error) {
	var conf keyboardConfig
	if err := yaml.Unmarshal(data, &conf); err != nil {
		return nil, fmt.Errorf("parsing keyboard yaml: %w", err)
	}
	keys := make([]Key, len(conf.Keys))
	for i, k := range conf.Keys {
		keys[i] = Key{Name: k.Name, Frequency: k.Freq, Sharpness: k.Sharpness, Sharp: k.Sharp}
	}
	return NewKeyboard(keys, conf.LeftNaturals)
}

// ReadKeyboard parses a keyboard configuration from a reader, e.g. a
// file chosen by the user.
func ReadKeyboard(r io.Reader) (*Keyboard, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading keyboard config: %w", err)
	}
	return ParseKeyboard(data)
}

// UserConfigPath returns the path of a configuration file inside the
// user's kosketin config directory, without checking that it exists.
func UserConfigPath(filename string) (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "kosketin", filename), nil
}

// LoadKeyboard returns the user's keyboard from
// <UserConfigDir>/kosketin/keyboard.yml if present, falling back to the
// built-in keyboard. A missing file is not an error; a malformed file is.
func LoadKeyboard() (*Keyboard, error) {
	path, err := UserConfigPath("keyboard.yml")
	if err != nil {
		return DefaultKeyboard(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultKeyboard(), nil
		}
		return nil, err
	}
	kb, err := ParseKeyboard(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return kb, nil
}
