// Package app contains the coordinator: it owns the shared location cell,
// starts the background tasks, and runs the main event loop multiplexing
// tray commands and network events.
package app

import (
	"context"
	"log"
	"time"

	"github.com/btxTruong/network-monitor/internal/geo"
	"github.com/btxTruong/network-monitor/internal/logging"
	"github.com/btxTruong/network-monitor/internal/network"
	"github.com/btxTruong/network-monitor/internal/tray"
)

const (
	defaultRefreshInterval = 1 * time.Minute
	// Delay after a connect event before fetching, so routing and DNS
	// have settled.
	defaultSettleDelay = 2 * time.Second
)

// LocationFetcher resolves the current network location.
type LocationFetcher interface {
	FetchLocation(ctx context.Context) (*geo.Info, error)
}

// UpdateChecker checks for new releases and manages persisted update state.
type UpdateChecker interface {
	Check(ctx context.Context) string
	CheckForced(ctx context.Context) string
	SaveAvailableUpdate(version string)
	LoadAvailableUpdate() string
	ClearAvailableUpdate()
}

// AutostartManager manages the login autostart entry.
type AutostartManager interface {
	Setup() error
	Remove() error
	IsEnabled() bool
}

// NetworkWatcher emits connectivity events until it fails or ctx ends.
type NetworkWatcher interface {
	Watch(ctx context.Context, sink chan<- network.Event) error
}

// Presenter is the tray surface driven by the coordinator.
type Presenter interface {
	Commands() <-chan tray.Command
	Redraw()
	SetAutostartEnabled(enabled bool)
	SetUpdateAvailable(version string)
	SetCheckingUpdate(checking bool)
}

// Config wires the coordinator's collaborators.
type Config struct {
	Cell      *LocationCell
	Geo       LocationFetcher
	Updater   UpdateChecker
	Autostart AutostartManager
	Watcher   NetworkWatcher
	Tray      Presenter
	Notifier  Notifier

	// RunUpdate spawns the detached external updater process.
	RunUpdate func() error

	RefreshInterval time.Duration
	SettleDelay     time.Duration
	LogLevel        logging.LogLevel
}

// App is the coordinator.
type App struct {
	cell      *LocationCell
	geo       LocationFetcher
	updater   UpdateChecker
	autostart AutostartManager
	watcher   NetworkWatcher
	tray      Presenter
	notifier  Notifier
	runUpdate func() error

	refreshInterval time.Duration
	settleDelay     time.Duration
	logLevel        logging.LogLevel

	// Tracked autostart flag; only updated when enable/disable succeeds.
	autostartEnabled bool
}

// New creates the coordinator from the given configuration.
func New(cfg Config) *App {
	if cfg.RefreshInterval == 0 {
		cfg.RefreshInterval = defaultRefreshInterval
	}
	if cfg.SettleDelay == 0 {
		cfg.SettleDelay = defaultSettleDelay
	}

	return &App{
		cell:             cfg.Cell,
		geo:              cfg.Geo,
		updater:          cfg.Updater,
		autostart:        cfg.Autostart,
		watcher:          cfg.Watcher,
		tray:             cfg.Tray,
		notifier:         cfg.Notifier,
		runUpdate:        cfg.RunUpdate,
		refreshInterval:  cfg.RefreshInterval,
		settleDelay:      cfg.SettleDelay,
		logLevel:         cfg.LogLevel,
		autostartEnabled: cfg.Autostart.IsEnabled(),
	}
}

// FetchInitial performs the synchronous startup fetch so the first rendered
// icon already reflects the real location. Failure leaves the cell empty
// and is not fatal.
func (a *App) FetchInitial(ctx context.Context) {
	info, err := a.geo.FetchLocation(ctx)
	if err != nil {
		if a.logLevel <= logging.LogLevelWarning {
			log.Printf("Failed to fetch initial location: %v", err)
		}
		return
	}
	if a.logLevel <= logging.LogLevelInfo {
		log.Printf("Initial location: %s (%s) - %s", info.Country, info.CountryCode, info.IP)
	}
	a.cell.Replace(info)
}

// Run starts the background tasks and runs the event loop until a Quit or
// RunUpdate command, or ctx cancellation. Background tasks are abandoned on
// return; the process is about to exit anyway.
func (a *App) Run(ctx context.Context) {
	a.checkStartupUpdate(ctx)

	events := make(chan network.Event, 16)
	go func() {
		// A watcher failure degrades the app (no network-triggered
		// refresh) but never stops the coordinator.
		if err := a.watcher.Watch(ctx, events); err != nil && ctx.Err() == nil {
			log.Printf("Network watcher stopped: %v", err)
		}
	}()

	go a.periodicRefresh(ctx)

	for {
		select {
		case <-ctx.Done():
			return

		case cmd := <-a.tray.Commands():
			if done := a.handleCommand(ctx, cmd); done {
				return
			}

		case event := <-events:
			a.handleNetworkEvent(ctx, event)
		}
	}
}

// checkStartupUpdate surfaces a persisted pending update, or performs one
// rate-limited startup check and persists any result found.
func (a *App) checkStartupUpdate(ctx context.Context) {
	if version := a.updater.LoadAvailableUpdate(); version != "" {
		if a.logLevel <= logging.LogLevelInfo {
			log.Printf("Persisted update available: %s", version)
		}
		a.tray.SetUpdateAvailable(version)
		return
	}

	if version := a.updater.Check(ctx); version != "" {
		a.updater.SaveAvailableUpdate(version)
		a.tray.SetUpdateAvailable(version)
	}
}

// periodicRefresh re-fetches the location on a fixed interval. The ticker
// fires only after a full interval has elapsed, so the first periodic
// refresh does not duplicate the startup fetch.
func (a *App) periodicRefresh(ctx context.Context) {
	ticker := time.NewTicker(a.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if a.logLevel <= logging.LogLevelInfo {
				log.Println("Periodic refresh triggered")
			}
			a.refreshLocation(ctx)
		}
	}
}

// refreshLocation fetches the location, replacing the shared cell and
// requesting a redraw on success. Failures are logged only; the previous
// snapshot stays untouched.
func (a *App) refreshLocation(ctx context.Context) {
	info, err := a.geo.FetchLocation(ctx)
	if err != nil {
		if a.logLevel <= logging.LogLevelWarning {
			log.Printf("Failed to refresh location: %v", err)
		}
		return
	}
	if a.logLevel <= logging.LogLevelInfo {
		log.Printf("Location updated: %s (%s)", info.Country, info.CountryCode)
	}
	a.cell.Replace(info)
	a.tray.Redraw()
}

// handleCommand dispatches one tray command. It returns true when the loop
// should terminate.
func (a *App) handleCommand(ctx context.Context, cmd tray.Command) bool {
	switch cmd {
	case tray.CommandRefresh:
		if a.logLevel <= logging.LogLevelInfo {
			log.Println("Manual refresh requested")
		}
		a.refreshLocation(ctx)

	case tray.CommandToggleAutostart:
		a.toggleAutostart()

	case tray.CommandCheckUpdate:
		a.checkUpdate(ctx)

	case tray.CommandRunUpdate:
		if a.logLevel <= logging.LogLevelInfo {
			log.Println("Running update...")
		}
		a.updater.ClearAvailableUpdate()
		if err := a.runUpdate(); err != nil {
			log.Printf("Failed to start updater: %v", err)
		}
		return true

	case tray.CommandQuit:
		if a.logLevel <= logging.LogLevelInfo {
			log.Println("Quit requested")
		}
		return true
	}

	return false
}

// handleNetworkEvent dispatches one network event.
func (a *App) handleNetworkEvent(ctx context.Context, event network.Event) {
	switch event {
	case network.EventConnected:
		if a.logLevel <= logging.LogLevelInfo {
			log.Println("Network connected - refreshing location")
		}
		select {
		case <-time.After(a.settleDelay):
		case <-ctx.Done():
			return
		}
		a.refreshLocation(ctx)

	case network.EventDisconnected:
		// Keep the last known location rather than clearing it.
		if a.logLevel <= logging.LogLevelInfo {
			log.Println("Network disconnected")
		}
	}
}

// toggleAutostart flips the autostart entry. The tracked flag changes only
// when the filesystem operation succeeds, so a failed toggle is visible as
// an unchanged checkbox.
func (a *App) toggleAutostart() {
	if a.autostartEnabled {
		if err := a.autostart.Remove(); err != nil {
			log.Printf("Failed to disable autostart: %v", err)
		} else {
			a.autostartEnabled = false
			if a.logLevel <= logging.LogLevelInfo {
				log.Println("Autostart disabled")
			}
		}
	} else {
		if err := a.autostart.Setup(); err != nil {
			log.Printf("Failed to enable autostart: %v", err)
		} else {
			a.autostartEnabled = true
			if a.logLevel <= logging.LogLevelInfo {
				log.Println("Autostart enabled")
			}
		}
	}

	a.tray.SetAutostartEnabled(a.autostartEnabled)
}

// checkUpdate performs a user-requested forced update check with
// notifications either way.
func (a *App) checkUpdate(ctx context.Context) {
	if a.logLevel <= logging.LogLevelInfo {
		log.Println("Check for updates requested")
	}

	a.tray.SetCheckingUpdate(true)
	a.notify("Checking for updates...")

	version := a.updater.CheckForced(ctx)

	if version != "" {
		if a.logLevel <= logging.LogLevelInfo {
			log.Printf("Update available: %s", version)
		}
		a.updater.SaveAvailableUpdate(version)
		a.notify("Update " + version + " available! Click tray menu to install.")
		a.tray.SetUpdateAvailable(version)
	} else {
		if a.logLevel <= logging.LogLevelInfo {
			log.Println("Already on latest version")
		}
		a.notify("You're running the latest version!")
	}

	a.tray.SetCheckingUpdate(false)
}

// notify shows a desktop notification, best-effort.
func (a *App) notify(body string) {
	if err := a.notifier.Notify("Network Monitor", body); err != nil {
		if a.logLevel <= logging.LogLevelDebug {
			log.Printf("Failed to show notification: %v", err)
		}
	}
}
