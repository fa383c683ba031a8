package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
)

// version is injected at build time with -ldflags "-X main.version=...". Defaults to dev.
var version = "dev"

// cliConfig holds user supplied flag values prior to validation, mirroring
// cmd/unifmu-shim's sibling tool: a small standalone diagnostic, not part of
// the C-ABI surface itself.
type cliConfig struct {
	resourceDir string
	logLevel    string
	showVersion bool
}

func parseFlags(args []string) (*cliConfig, error) {
	fs := flag.NewFlagSet("unifmu-info", flag.ContinueOnError)
	fs.SetOutput(os.Stdout)

	cfg := &cliConfig{}
	fs.StringVar(&cfg.resourceDir, "resources", "", "path to an FMU's extracted resources directory (containing launch.toml)")
	fs.StringVar(&cfg.logLevel, "log-level", "info", "Log level: debug|info|warn|error")
	fs.BoolVar(&cfg.showVersion, "version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	switch cfg.logLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log-level %q", cfg.logLevel)
	}

	if !cfg.showVersion && cfg.resourceDir == "" {
		return nil, errors.New("-resources is required unless -version is given")
	}

	return cfg, nil
}
