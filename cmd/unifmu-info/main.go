// Command unifmu-info is a standalone diagnostic: given an FMU's extracted
// resources directory, it validates launch.toml and reports the command the
// shim would spawn on this OS, without ever binding a socket or starting a
// backend. Grounded on cmd/rtmp-server's entry-point shape (parseFlags,
// logger.Init/SetLevel) but with no server lifecycle to manage.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/unifmu/unifmu-go/internal/config"
	"github.com/unifmu/unifmu-go/internal/fmi2"
	"github.com/unifmu/unifmu-go/internal/fmi3"
	"github.com/unifmu/unifmu-go/internal/logger"
)

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}
	if cfg.showVersion {
		fmt.Println(version)
		return
	}

	logger.Init()
	if err := logger.SetLevel(cfg.logLevel); err != nil {
		fmt.Printf("Warning: invalid log level %q, using default\n", cfg.logLevel)
	}
	log := logger.Logger().With("component", "unifmu-info")

	fmt.Printf("fmi2 version:      %s (platform %s)\n", fmi2.Version, fmi2.TypesPlatform)
	fmt.Printf("fmi3 version:      %s\n", fmi3.Version)

	launch, err := config.Load(cfg.resourceDir)
	if err != nil {
		log.Error("failed to load launch.toml", "dir", cfg.resourceDir, "error", err)
		os.Exit(1)
	}

	argv, err := launch.ForThisOS()
	if err != nil {
		log.Error("no launch command for this OS", "error", err)
		os.Exit(1)
	}

	fmt.Printf("resolved command:  %s\n", strings.Join(argv, " "))
	fmt.Printf("command timeout:   %d ms (informational, not enforced)\n", launch.TimeoutSpec.Command)
	fmt.Printf("launch timeout:    %d ms (informational, logged if exceeded)\n", launch.TimeoutSpec.Launch)

	log.Info("launch.toml is valid", "dir", cfg.resourceDir)
}
