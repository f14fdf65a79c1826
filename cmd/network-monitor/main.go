// Package main provides the command-line interface and tray entry point for
// network-monitor.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"fyne.io/systray"

	"github.com/btxTruong/network-monitor/internal/app"
	"github.com/btxTruong/network-monitor/internal/autostart"
	"github.com/btxTruong/network-monitor/internal/cli"
	"github.com/btxTruong/network-monitor/internal/geo"
	"github.com/btxTruong/network-monitor/internal/icons"
	"github.com/btxTruong/network-monitor/internal/logging"
	"github.com/btxTruong/network-monitor/internal/network"
	"github.com/btxTruong/network-monitor/internal/tray"
	"github.com/btxTruong/network-monitor/internal/updater"
)

var Version = "dev"

// installCommand fetches and runs the install script in update mode.
const installCommand = "curl -sSL https://raw.githubusercontent.com/btxTruong/network-monitor/main/install.sh | bash -s -- --update"

// Dependencies encapsulates external dependencies for testing
type Dependencies struct {
	CheckForced  func(ctx context.Context) string
	RunInstaller func() error
	StartTray    func(ctx context.Context, logLevel logging.LogLevel) error
	Stdout       io.Writer
}

// DefaultDependencies returns production dependencies
func DefaultDependencies() Dependencies {
	return Dependencies{
		CheckForced: func(ctx context.Context) string {
			return updater.New(Version).CheckForced(ctx)
		},
		RunInstaller: runInstaller,
		StartTray:    runTray,
		Stdout:       os.Stdout,
	}
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], DefaultDependencies()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, deps Dependencies) error {
	config, err := cli.ParseFlags(args)
	if err != nil {
		return err
	}

	switch {
	case config.ShowHelp:
		cli.PrintUsage(deps.Stdout, Version)
		return nil

	case config.ShowVersion:
		_, _ = fmt.Fprintf(deps.Stdout, "network-monitor %s\n", Version)
		return nil

	case config.CheckUpdate:
		return runCheck(ctx, deps)

	case config.RunUpdate:
		_, _ = fmt.Fprintln(deps.Stdout, "Updating Network Monitor...")
		if err := deps.RunInstaller(); err != nil {
			return fmt.Errorf("update failed: %w", err)
		}
		return nil
	}

	return deps.StartTray(ctx, config.LogLevel)
}

// runCheck performs a one-shot forced update check and prints the result.
func runCheck(ctx context.Context, deps Dependencies) error {
	_, _ = fmt.Fprintf(deps.Stdout, "network-monitor %s\n\n", Version)
	_, _ = fmt.Fprintln(deps.Stdout, "Checking for updates...")

	if version := deps.CheckForced(ctx); version != "" {
		_, _ = fmt.Fprintf(deps.Stdout, "Update available: %s\n\n", version)
		_, _ = fmt.Fprintln(deps.Stdout, "Run 'network-monitor --update' to update.")
	} else {
		_, _ = fmt.Fprintln(deps.Stdout, "You're up to date!")
	}
	return nil
}

// runTray launches the tray application and blocks until it quits.
func runTray(ctx context.Context, logLevel logging.LogLevel) error {
	if logLevel <= logging.LogLevelInfo {
		log.Printf("Network Monitor v%s starting...", Version)
		log.Printf("Loaded %d flag icons", icons.Count())
	}

	autostartMgr := autostart.NewManager(autostart.WithLogLevel(logLevel))
	cell := app.NewLocationCell(nil)
	tr := tray.New(cell, autostartMgr.IsEnabled(), tray.WithLogLevel(logLevel))

	application := app.New(app.Config{
		Cell:      cell,
		Geo:       geo.NewClient(geo.WithVersion(Version), geo.WithLogLevel(logLevel)),
		Updater:   updater.New(Version, updater.WithLogLevel(logLevel)),
		Autostart: autostartMgr,
		Watcher:   network.NewWatcher(network.WithLogLevel(logLevel)),
		Tray:      tr,
		Notifier:  app.NewDesktopNotifier(),
		RunUpdate: startInstaller,
		LogLevel:  logLevel,
	})

	// Resolve the location before the tray surface exists so the first
	// rendered icon already shows the right flag where possible.
	application.FetchInitial(ctx)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	systray.Run(func() {
		tr.Setup()
		go func() {
			application.Run(ctx)
			systray.Quit()
		}()
	}, cancel)

	return nil
}

// startInstaller spawns the external updater detached; the tray process
// exits right after so the installer can replace the binary.
func startInstaller() error {
	return exec.Command("bash", "-c", installCommand).Start()
}

// runInstaller runs the external updater synchronously (the --update CLI
// mode).
func runInstaller() error {
	cmd := exec.Command("bash", "-c", installCommand)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
