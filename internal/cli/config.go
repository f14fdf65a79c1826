// Package cli provides command-line interface configuration and flag parsing functionality.
package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/btxTruong/network-monitor/internal/logging"
)

// Config holds all command-line configuration options for the application.
type Config struct {
	ShowHelp    bool
	ShowVersion bool
	CheckUpdate bool
	RunUpdate   bool
	LogLevel    logging.LogLevel
}

// ParseFlags parses command-line arguments manually to support GNU-style long flags
func ParseFlags(args []string) (*Config, error) {
	cfg := &Config{
		LogLevel: logging.LogLevelInfo,
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch {
		case arg == "-h" || arg == "--help":
			cfg.ShowHelp = true
			return cfg, nil

		case arg == "-v" || arg == "--version":
			cfg.ShowVersion = true
			return cfg, nil

		case arg == "-c" || arg == "--check":
			cfg.CheckUpdate = true
			return cfg, nil

		case arg == "-u" || arg == "--update":
			cfg.RunUpdate = true
			return cfg, nil

		case arg == "-l" || arg == "--log-level":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("%s requires an argument", arg)
			}
			i++
			level, err := logging.ParseLogLevel(args[i])
			if err != nil {
				return nil, err
			}
			cfg.LogLevel = level

		case strings.HasPrefix(arg, "-"):
			return nil, fmt.Errorf("unknown flag: %s", arg)

		default:
			return nil, fmt.Errorf("unexpected argument: %s", arg)
		}
	}

	return cfg, nil
}

// PrintUsage outputs the usage information and command-line options to the writer.
func PrintUsage(w io.Writer, version string) {
	_, _ = fmt.Fprintf(w, `network-monitor %s

System tray app displaying a country flag based on network location.

USAGE:
    network-monitor [OPTIONS]

Running without options launches the tray application.

OPTIONS:
    -c, --check               Check for updates and exit
    -u, --update              Update to the latest version and exit
    -l, --log-level LEVEL     Set log level (debug, info, warning, error; default: info)
    -h, --help                Show this help message
    -v, --version             Show version information
`, version)
}
