// Package config parses the resource-directory launch.toml consumed at
// fmi{2,3}Instantiate (spec.md 6).
package config

import (
	"fmt"
	"os"
	"runtime"

	"github.com/BurntSushi/toml"

	unifmuerrors "github.com/unifmu/unifmu-go/internal/errors"
)

// Command holds the per-OS launch argv lists.
type Command struct {
	Windows []string `toml:"windows"`
	Linux   []string `toml:"linux"`
	Macos   []string `toml:"macos"`
}

// Timeout is accepted for forward compatibility with the pre-protobuf
// generation of the original implementation (original_source/src/config.rs);
// the dispatcher itself applies no timeout (spec.md 5), but Launch is
// informational and logged (see SPEC_FULL.md 6).
type Timeout struct {
	Command int `toml:"command"`
	Launch  int `toml:"launch"`
}

// LaunchConfig is the parsed shape of launch.toml.
type LaunchConfig struct {
	CommandSpec Command `toml:"command"`
	TimeoutSpec Timeout `toml:"timeout"`
}

// ForThisOS selects the argv list matching runtime.GOOS, per spec.md 6:
// "Absence of the matching list fails Instantiate."
func (c LaunchConfig) ForThisOS() ([]string, error) {
	var cmd []string
	switch runtime.GOOS {
	case "windows":
		cmd = c.CommandSpec.Windows
	case "darwin":
		cmd = c.CommandSpec.Macos
	default:
		cmd = c.CommandSpec.Linux
	}
	if len(cmd) == 0 {
		return nil, unifmuerrors.NewMisuseError("launch.toml", fmt.Errorf("no command configured for OS %q", runtime.GOOS))
	}
	return cmd, nil
}

// Load reads and parses launch.toml from the resource directory.
func Load(resourceDir string) (LaunchConfig, error) {
	path := resourceDir + string(os.PathSeparator) + "launch.toml"
	var cfg LaunchConfig
	if _, err := os.Stat(path); err != nil {
		return cfg, unifmuerrors.NewMisuseError("launch.toml", err)
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, unifmuerrors.NewMisuseError("launch.toml", fmt.Errorf("parse error: %w", err))
	}
	return cfg, nil
}
