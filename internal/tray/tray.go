// Package tray renders the system tray surface: a country flag icon, a
// location tooltip, and a menu. Menu clicks are translated into Commands
// consumed by the coordinator.
package tray

import (
	"fmt"
	"log"
	"sync"

	"fyne.io/systray"

	"github.com/btxTruong/network-monitor/internal/geo"
	"github.com/btxTruong/network-monitor/internal/icons"
	"github.com/btxTruong/network-monitor/internal/logging"
)

// commandQueueSize bounds the command channel; clicks beyond it are
// dropped rather than blocking the UI loop.
const commandQueueSize = 16

// Command identifies an actionable menu item.
type Command int

// Commands, one per actionable menu item
const (
	CommandRefresh Command = iota
	CommandToggleAutostart
	CommandCheckUpdate
	CommandRunUpdate
	CommandQuit
)

func (c Command) String() string {
	switch c {
	case CommandRefresh:
		return "refresh"
	case CommandToggleAutostart:
		return "toggle-autostart"
	case CommandCheckUpdate:
		return "check-update"
	case CommandRunUpdate:
		return "run-update"
	case CommandQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// LocationSource provides the most recent location snapshot, or nil when no
// location has been resolved yet.
type LocationSource interface {
	Snapshot() *geo.Info
}

// Tray owns the presentation state and the systray menu items. All state
// mutation is funneled through the coordinator; rendering reads a
// consistent snapshot under the lock.
type Tray struct {
	location LocationSource
	commands chan Command
	logLevel logging.LogLevel

	mu               sync.Mutex
	autostartEnabled bool
	updateAvailable  string
	checkingUpdate   bool

	items *menuItems
}

// menuItems holds the systray handles created in Setup.
type menuItems struct {
	info      [4]*systray.MenuItem
	fetching  *systray.MenuItem
	refresh   *systray.MenuItem
	autostart *systray.MenuItem

	checking    *systray.MenuItem
	runUpdate   *systray.MenuItem
	checkUpdate *systray.MenuItem

	quit *systray.MenuItem
}

// Option is a function that configures a Tray
type Option func(*Tray)

// WithLogLevel sets the log level for the tray
func WithLogLevel(logLevel logging.LogLevel) Option {
	return func(t *Tray) {
		t.logLevel = logLevel
	}
}

// New creates a Tray reading location data from source.
func New(source LocationSource, autostartEnabled bool, opts ...Option) *Tray {
	t := &Tray{
		location:         source,
		commands:         make(chan Command, commandQueueSize),
		logLevel:         logging.LogLevelError,
		autostartEnabled: autostartEnabled,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Commands returns the channel of user menu commands.
func (t *Tray) Commands() <-chan Command {
	return t.commands
}

// Setup creates the menu structure and starts forwarding clicks. It must be
// called from the systray ready callback.
func (t *Tray) Setup() {
	items := &menuItems{}

	for i := range items.info {
		items.info[i] = systray.AddMenuItem("", "")
		items.info[i].Disable()
		items.info[i].Hide()
	}
	items.fetching = systray.AddMenuItem("Fetching location...", "")
	items.fetching.Disable()

	systray.AddSeparator()

	items.refresh = systray.AddMenuItem("Refresh", "Refresh network location now")
	items.autostart = systray.AddMenuItemCheckbox("Launch on Login", "Start automatically on login", t.autostartEnabled)

	systray.AddSeparator()

	items.checking = systray.AddMenuItem("Checking for updates...", "")
	items.checking.Disable()
	items.checking.Hide()
	items.runUpdate = systray.AddMenuItem("", "Install the available update")
	items.runUpdate.Hide()
	items.checkUpdate = systray.AddMenuItem("Check for Updates", "Check for a newer version")

	systray.AddSeparator()

	items.quit = systray.AddMenuItem("Quit", "Quit Network Monitor")

	go t.forward(items.refresh.ClickedCh, CommandRefresh)
	go t.forward(items.autostart.ClickedCh, CommandToggleAutostart)
	go t.forward(items.checkUpdate.ClickedCh, CommandCheckUpdate)
	go t.forward(items.runUpdate.ClickedCh, CommandRunUpdate)
	go t.forward(items.quit.ClickedCh, CommandQuit)

	t.mu.Lock()
	t.items = items
	t.mu.Unlock()

	t.Redraw()
}

// forward translates clicks into commands with a non-blocking send.
func (t *Tray) forward(clicks <-chan struct{}, cmd Command) {
	for range clicks {
		select {
		case t.commands <- cmd:
		default:
			if t.logLevel <= logging.LogLevelWarning {
				log.Printf("Command queue full, dropping %s", cmd)
			}
		}
	}
}

// SetAutostartEnabled updates the autostart checkbox state.
func (t *Tray) SetAutostartEnabled(enabled bool) {
	t.mu.Lock()
	t.autostartEnabled = enabled
	t.mu.Unlock()
	t.Redraw()
}

// SetUpdateAvailable records a pending update version ("" for none).
func (t *Tray) SetUpdateAvailable(version string) {
	t.mu.Lock()
	t.updateAvailable = version
	t.mu.Unlock()
	t.Redraw()
}

// SetCheckingUpdate toggles the checking-in-progress menu state.
func (t *Tray) SetCheckingUpdate(checking bool) {
	t.mu.Lock()
	t.checkingUpdate = checking
	t.mu.Unlock()
	t.Redraw()
}

// snapshot is the rendered representation of the current state. Computing
// it is side-effect free; Redraw pushes it to the systray runtime.
type snapshot struct {
	icon         []byte
	tooltipTitle string
	tooltipBody  string

	// infoLines is nil while no location is known, in which case the
	// "fetching" placeholder is shown instead.
	infoLines []string

	autostartEnabled bool
	updateAvailable  string
	checkingUpdate   bool
}

// render computes the snapshot from the location source and presentation
// state.
func (t *Tray) render() snapshot {
	info := t.location.Snapshot()

	var s snapshot
	if info != nil {
		s.icon = icons.Flag(info.CountryCode)
		s.tooltipTitle = fmt.Sprintf("%s (%s)", info.Country, info.CountryCode)
		s.tooltipBody = fmt.Sprintf("IP: %s\nCity: %s\nISP: %s", info.IP, info.City, info.ISP)
		s.infoLines = []string{
			fmt.Sprintf("IP: %s", info.IP),
			fmt.Sprintf("Country: %s (%s)", info.Country, info.CountryCode),
			fmt.Sprintf("City: %s", info.City),
			fmt.Sprintf("ISP: %s", info.ISP),
		}
	} else {
		s.icon = icons.Flag("xx")
		s.tooltipTitle = "Network Monitor"
		s.tooltipBody = "Fetching location..."
	}

	t.mu.Lock()
	s.autostartEnabled = t.autostartEnabled
	s.updateAvailable = t.updateAvailable
	s.checkingUpdate = t.checkingUpdate
	t.mu.Unlock()

	return s
}

// Redraw recomputes the snapshot and applies it to the tray. Cheap and
// idempotent; redundant calls are harmless.
func (t *Tray) Redraw() {
	t.mu.Lock()
	items := t.items
	t.mu.Unlock()
	if items == nil {
		return
	}

	s := t.render()

	systray.SetIcon(s.icon)
	systray.SetTooltip(s.tooltipTitle + "\n" + s.tooltipBody)

	if s.infoLines != nil {
		for i, line := range s.infoLines {
			items.info[i].SetTitle(line)
			items.info[i].Show()
		}
		items.fetching.Hide()
	} else {
		for i := range items.info {
			items.info[i].Hide()
		}
		items.fetching.Show()
	}

	if s.autostartEnabled {
		items.autostart.Check()
	} else {
		items.autostart.Uncheck()
	}

	// Exactly one of the three update lines is visible.
	switch {
	case s.checkingUpdate:
		items.checking.Show()
		items.runUpdate.Hide()
		items.checkUpdate.Hide()
	case s.updateAvailable != "":
		items.runUpdate.SetTitle(fmt.Sprintf("Update to %s (click to install)", s.updateAvailable))
		items.runUpdate.Show()
		items.checking.Hide()
		items.checkUpdate.Hide()
	default:
		items.checkUpdate.Show()
		items.checking.Hide()
		items.runUpdate.Hide()
	}
}
