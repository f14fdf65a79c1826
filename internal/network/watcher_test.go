package network

import (
	"testing"

	"github.com/godbus/dbus/v5"
)

func TestStateFromValue(t *testing.T) {
	tests := []struct {
		value    uint32
		expected ConnectivityState
	}{
		{0, StateUnknown},
		{10, StateAsleep},
		{20, StateDisconnected},
		{30, StateDisconnecting},
		{40, StateConnecting},
		{50, StateConnectedLocal},
		{60, StateConnectedSite},
		{70, StateConnectedGlobal},
		{99, StateUnknown},
		{71, StateUnknown},
	}

	for _, tt := range tests {
		if got := StateFromValue(tt.value); got != tt.expected {
			t.Errorf("StateFromValue(%d) = %v, want %v", tt.value, got, tt.expected)
		}
	}
}

func TestConnectivityState_IsConnected(t *testing.T) {
	// Only global connectivity counts as connected.
	for _, state := range []ConnectivityState{
		StateUnknown, StateAsleep, StateDisconnected, StateDisconnecting,
		StateConnecting, StateConnectedLocal, StateConnectedSite,
	} {
		if state.IsConnected() {
			t.Errorf("%v.IsConnected() = true, want false", state)
		}
	}
	if !StateConnectedGlobal.IsConnected() {
		t.Error("StateConnectedGlobal.IsConnected() = false, want true")
	}
}

func TestMonitor_StateTransitions(t *testing.T) {
	tests := []struct {
		name       string
		initial    bool
		transition []uint32
		expected   []Event
	}{
		{
			name:       "disconnected to connected emits exactly one Connected",
			initial:    false,
			transition: []uint32{70},
			expected:   []Event{EventConnected},
		},
		{
			name:       "duplicate connected state emits nothing",
			initial:    true,
			transition: []uint32{70},
			expected:   nil,
		},
		{
			name:       "connected to site-level emits exactly one Disconnected",
			initial:    true,
			transition: []uint32{60},
			expected:   []Event{EventDisconnected},
		},
		{
			name:       "full round trip",
			initial:    false,
			transition: []uint32{70, 70, 60, 20, 70},
			expected:   []Event{EventConnected, EventDisconnected, EventConnected},
		},
		{
			name:       "connecting while disconnected emits nothing",
			initial:    false,
			transition: []uint32{40, 50, 60},
			expected:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mon := &monitor{wasConnected: tt.initial}

			var got []Event
			for _, value := range tt.transition {
				if event, emit := mon.stateChanged(value); emit {
					got = append(got, event)
				}
			}

			if len(got) != len(tt.expected) {
				t.Fatalf("Got events %v, want %v", got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("Event %d = %v, want %v", i, got[i], tt.expected[i])
				}
			}
		})
	}
}

func TestMonitor_ConnectionCountChange(t *testing.T) {
	t.Run("count change while connected emits Connected", func(t *testing.T) {
		mon := &monitor{wasConnected: true, lastConnections: 2}

		event, emit := mon.connectionsChanged(3)
		if !emit {
			t.Fatal("Expected an event for count change while connected")
		}
		if event != EventConnected {
			t.Errorf("Expected EventConnected, got %v", event)
		}
	})

	t.Run("count change while disconnected emits nothing", func(t *testing.T) {
		mon := &monitor{wasConnected: false, lastConnections: 2}

		if _, emit := mon.connectionsChanged(3); emit {
			t.Error("Expected no event for count change while disconnected")
		}
	})

	t.Run("count is updated even while disconnected", func(t *testing.T) {
		mon := &monitor{wasConnected: false, lastConnections: 2}
		_, _ = mon.connectionsChanged(3)

		if mon.lastConnections != 3 {
			t.Errorf("Expected stored count 3, got %d", mon.lastConnections)
		}

		// Reconnect, then the same count again: no spurious event.
		_, _ = mon.stateChanged(70)
		if _, emit := mon.connectionsChanged(3); emit {
			t.Error("Expected no event for unchanged count after reconnect")
		}
	})

	t.Run("unchanged count emits nothing", func(t *testing.T) {
		mon := &monitor{wasConnected: true, lastConnections: 2}

		if _, emit := mon.connectionsChanged(2); emit {
			t.Error("Expected no event for unchanged count")
		}
	})
}

func TestMonitor_HandleProperties(t *testing.T) {
	connections := func(n int) dbus.Variant {
		paths := make([]dbus.ObjectPath, n)
		for i := range paths {
			paths[i] = dbus.ObjectPath("/org/freedesktop/NetworkManager/ActiveConnection/0")
		}
		return dbus.MakeVariant(paths)
	}

	t.Run("state change only", func(t *testing.T) {
		mon := &monitor{}
		events := mon.handleProperties(map[string]dbus.Variant{
			propState: dbus.MakeVariant(uint32(70)),
		})
		if len(events) != 1 || events[0] != EventConnected {
			t.Errorf("Expected [Connected], got %v", events)
		}
	})

	t.Run("combined payload applies state before count", func(t *testing.T) {
		mon := &monitor{lastConnections: 1}
		events := mon.handleProperties(map[string]dbus.Variant{
			propState:             dbus.MakeVariant(uint32(70)),
			propActiveConnections: connections(2),
		})
		// Connect edge plus a count change observed under the new state.
		if len(events) != 2 || events[0] != EventConnected || events[1] != EventConnected {
			t.Errorf("Expected [Connected Connected], got %v", events)
		}
	})

	t.Run("unrelated properties ignored", func(t *testing.T) {
		mon := &monitor{}
		events := mon.handleProperties(map[string]dbus.Variant{
			"WirelessEnabled": dbus.MakeVariant(true),
		})
		if events != nil {
			t.Errorf("Expected no events, got %v", events)
		}
	})

	t.Run("wrong variant types ignored", func(t *testing.T) {
		mon := &monitor{}
		events := mon.handleProperties(map[string]dbus.Variant{
			propState:             dbus.MakeVariant("not a number"),
			propActiveConnections: dbus.MakeVariant(uint32(3)),
		})
		if events != nil {
			t.Errorf("Expected no events, got %v", events)
		}
	})
}

func TestChangedProperties(t *testing.T) {
	signalName := propertiesInterface + "." + propertiesChanged

	tests := []struct {
		name     string
		signal   *dbus.Signal
		expected bool
	}{
		{
			name: "valid signal",
			signal: &dbus.Signal{
				Name: signalName,
				Body: []any{
					nmInterface,
					map[string]dbus.Variant{propState: dbus.MakeVariant(uint32(70))},
					[]string{},
				},
			},
			expected: true,
		},
		{
			name: "wrong interface",
			signal: &dbus.Signal{
				Name: signalName,
				Body: []any{"org.freedesktop.UPower", map[string]dbus.Variant{}, []string{}},
			},
			expected: false,
		},
		{
			name:     "wrong signal name",
			signal:   &dbus.Signal{Name: "org.freedesktop.DBus.NameOwnerChanged", Body: []any{}},
			expected: false,
		},
		{
			name:     "short body",
			signal:   &dbus.Signal{Name: signalName, Body: []any{nmInterface}},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := changedProperties(tt.signal)
			if ok != tt.expected {
				t.Errorf("changedProperties() ok = %v, want %v", ok, tt.expected)
			}
		})
	}
}
