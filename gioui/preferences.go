package gioui

import (
	_ "embed"
	"fmt"
	"os"

	"gioui.org/unit"
	"gopkg.in/yaml.v3"

	"kosketin"
)

type (
	Preferences struct {
		Window WindowPreferences
	}

	WindowPreferences struct {
		Width     int
		Height    int
		Maximized bool `yaml:",omitempty"`
	}
)

//go:embed preferences.yml
var defaultPreferencesYaml []byte

// MakePreferences returns the built-in preferences, overridden by
// <UserConfigDir>/kosketin/preferences.yml when that file exists. A
// malformed override is reported through warn but the defaults still
// apply.
func MakePreferences() (prefs Preferences, warn error) {
	if err := yaml.Unmarshal(defaultPreferencesYaml, &prefs); err != nil {
		panic(fmt.Errorf("failed to unmarshal default preferences: %w", err))
	}
	path, err := kosketin.UserConfigPath("preferences.yml")
	if err != nil {
		return prefs, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return prefs, nil // missing override is the normal case
	}
	if err := yaml.Unmarshal(data, &prefs); err != nil {
		return prefs, fmt.Errorf("%s: %w", path, err)
	}
	return prefs, nil
}

func (p Preferences) WindowSize() (unit.Dp, unit.Dp) {
	return unit.Dp(p.Window.Width), unit.Dp(p.Window.Height)
}
