package network

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/godbus/dbus/v5"

	"github.com/btxTruong/network-monitor/internal/logging"
)

const (
	nmService   = "org.freedesktop.NetworkManager"
	nmPath      = "/org/freedesktop/NetworkManager"
	nmInterface = "org.freedesktop.NetworkManager"

	propState             = "State"
	propActiveConnections = "ActiveConnections"

	propertiesInterface = "org.freedesktop.DBus.Properties"
	propertiesChanged   = "PropertiesChanged"
)

// ErrSubscriptionClosed indicates the D-Bus signal stream ended.
var ErrSubscriptionClosed = errors.New("signal subscription closed")

// monitor is the edge-detection core: it folds raw property changes into
// semantic events. Duplicate states produce no event (edge-triggered).
type monitor struct {
	wasConnected    bool
	lastConnections int
}

// stateChanged processes a connectivity-state change and reports whether an
// event should be emitted.
func (m *monitor) stateChanged(value uint32) (Event, bool) {
	isConnected := StateFromValue(value).IsConnected()
	if isConnected == m.wasConnected {
		return 0, false
	}
	m.wasConnected = isConnected
	if isConnected {
		return EventConnected, true
	}
	return EventDisconnected, true
}

// connectionsChanged processes an active-connection-count change. A changed
// count while connected emits Connected as a "refresh now" proxy signal
// (VPN attach/detach without a state-code transition). The stored count is
// updated regardless of the connected flag.
func (m *monitor) connectionsChanged(count int) (Event, bool) {
	changed := count != m.lastConnections
	m.lastConnections = count
	if changed && m.wasConnected {
		return EventConnected, true
	}
	return 0, false
}

// handleProperties folds one PropertiesChanged payload. State is applied
// before the connection count so a combined payload observes the new
// connectivity when judging the count change.
func (m *monitor) handleProperties(changed map[string]dbus.Variant) []Event {
	var events []Event

	if variant, ok := changed[propState]; ok {
		if value, ok := variant.Value().(uint32); ok {
			if event, emit := m.stateChanged(value); emit {
				events = append(events, event)
			}
		}
	}

	if variant, ok := changed[propActiveConnections]; ok {
		if paths, ok := variant.Value().([]dbus.ObjectPath); ok {
			if event, emit := m.connectionsChanged(len(paths)); emit {
				events = append(events, event)
			}
		}
	}

	return events
}

// Watcher subscribes to NetworkManager connectivity changes on the system
// bus and translates them into Events.
type Watcher struct {
	logLevel logging.LogLevel
	connect  func() (*dbus.Conn, error)
}

// Option is a function that configures a Watcher
type Option func(*Watcher)

// WithLogLevel sets the log level for the watcher
func WithLogLevel(logLevel logging.LogLevel) Option {
	return func(w *Watcher) {
		w.logLevel = logLevel
	}
}

// NewWatcher creates a Watcher with the given options
func NewWatcher(opts ...Option) *Watcher {
	w := &Watcher{
		logLevel: logging.LogLevelError,
		connect:  func() (*dbus.Conn, error) { return dbus.ConnectSystemBus() },
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Watch subscribes to NetworkManager property changes and sends Events to
// sink until the subscription fails or ctx is cancelled. This is a
// long-lived call: it never returns nil on its own.
func (w *Watcher) Watch(ctx context.Context, sink chan<- Event) error {
	conn, err := w.connect()
	if err != nil {
		return fmt.Errorf("failed to connect to system bus: %w", err)
	}
	defer func() { _ = conn.Close() }()

	obj := conn.Object(nmService, dbus.ObjectPath(nmPath))

	// Baseline reads; default to disconnected / zero on failure.
	mon := &monitor{
		wasConnected:    w.readState(obj).IsConnected(),
		lastConnections: w.readConnectionCount(obj),
	}

	if w.logLevel <= logging.LogLevelInfo {
		log.Printf(
			"Initial network state: connected=%v, active connections=%d",
			mon.wasConnected,
			mon.lastConnections,
		)
	}

	if err := conn.AddMatchSignal(
		dbus.WithMatchObjectPath(nmPath),
		dbus.WithMatchInterface(propertiesInterface),
		dbus.WithMatchMember(propertiesChanged),
	); err != nil {
		return fmt.Errorf("failed to subscribe to property changes: %w", err)
	}

	signals := make(chan *dbus.Signal, 16)
	conn.Signal(signals)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case signal, ok := <-signals:
			if !ok {
				return ErrSubscriptionClosed
			}

			changed, ok := changedProperties(signal)
			if !ok {
				continue
			}

			for _, event := range mon.handleProperties(changed) {
				if w.logLevel <= logging.LogLevelDebug {
					log.Printf("Network event: %s", event)
				}
				select {
				case sink <- event:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
	}
}

// changedProperties extracts the changed-properties map from a
// PropertiesChanged signal for the NetworkManager interface.
func changedProperties(signal *dbus.Signal) (map[string]dbus.Variant, bool) {
	if signal.Name != propertiesInterface+"."+propertiesChanged || len(signal.Body) < 2 {
		return nil, false
	}

	iface, ok := signal.Body[0].(string)
	if !ok || iface != nmInterface {
		return nil, false
	}

	changed, ok := signal.Body[1].(map[string]dbus.Variant)
	return changed, ok
}

// readState reads the current connectivity state, defaulting to unknown
func (w *Watcher) readState(obj dbus.BusObject) ConnectivityState {
	variant, err := obj.GetProperty(nmInterface + "." + propState)
	if err != nil {
		return StateUnknown
	}
	value, ok := variant.Value().(uint32)
	if !ok {
		return StateUnknown
	}
	return StateFromValue(value)
}

// readConnectionCount reads the current active connection count, defaulting
// to zero
func (w *Watcher) readConnectionCount(obj dbus.BusObject) int {
	variant, err := obj.GetProperty(nmInterface + "." + propActiveConnections)
	if err != nil {
		return 0
	}
	paths, ok := variant.Value().([]dbus.ObjectPath)
	if !ok {
		return 0
	}
	return len(paths)
}
