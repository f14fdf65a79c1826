package tray

import (
	"bytes"
	"strings"
	"testing"

	"github.com/btxTruong/network-monitor/internal/geo"
	"github.com/btxTruong/network-monitor/internal/icons"
)

// fakeSource is a mock LocationSource
type fakeSource struct {
	info *geo.Info
}

func (s *fakeSource) Snapshot() *geo.Info { return s.info }

func TestRender_WithLocation(t *testing.T) {
	source := &fakeSource{info: &geo.Info{
		IP:          "1.2.3.4",
		Country:     "Vietnam",
		CountryCode: "VN",
		City:        "Hanoi",
		ISP:         "VNPT",
	}}
	tr := New(source, false)

	s := tr.render()

	if !bytes.Equal(s.icon, icons.Flag("vn")) {
		t.Error("Expected the VN flag icon")
	}
	if s.tooltipTitle != "Vietnam (VN)" {
		t.Errorf("Expected tooltip title 'Vietnam (VN)', got %q", s.tooltipTitle)
	}
	if !strings.Contains(s.tooltipBody, "IP: 1.2.3.4") ||
		!strings.Contains(s.tooltipBody, "City: Hanoi") ||
		!strings.Contains(s.tooltipBody, "ISP: VNPT") {
		t.Errorf("Tooltip body missing fields: %q", s.tooltipBody)
	}

	expectedLines := []string{
		"IP: 1.2.3.4",
		"Country: Vietnam (VN)",
		"City: Hanoi",
		"ISP: VNPT",
	}
	if len(s.infoLines) != len(expectedLines) {
		t.Fatalf("Expected %d info lines, got %v", len(expectedLines), s.infoLines)
	}
	for i, want := range expectedLines {
		if s.infoLines[i] != want {
			t.Errorf("Info line %d = %q, want %q", i, s.infoLines[i], want)
		}
	}
}

func TestRender_WithoutLocation(t *testing.T) {
	tr := New(&fakeSource{}, false)

	s := tr.render()

	if !bytes.Equal(s.icon, icons.Flag("xx")) {
		t.Error("Expected the fallback flag icon")
	}
	if s.tooltipTitle != "Network Monitor" {
		t.Errorf("Expected placeholder tooltip title, got %q", s.tooltipTitle)
	}
	if s.tooltipBody != "Fetching location..." {
		t.Errorf("Expected fetching placeholder, got %q", s.tooltipBody)
	}
	if s.infoLines != nil {
		t.Errorf("Expected no info lines, got %v", s.infoLines)
	}
}

func TestRender_UnknownCountryFallsBack(t *testing.T) {
	tr := New(&fakeSource{info: &geo.Info{CountryCode: "ZZ"}}, false)

	s := tr.render()
	if len(s.icon) == 0 {
		t.Error("Expected a non-empty fallback icon for unknown country")
	}
}

func TestRender_PresentationState(t *testing.T) {
	tr := New(&fakeSource{}, true)
	tr.mu.Lock()
	tr.updateAvailable = "v0.2.0"
	tr.checkingUpdate = true
	tr.mu.Unlock()

	s := tr.render()

	if !s.autostartEnabled {
		t.Error("Expected autostartEnabled in snapshot")
	}
	if s.updateAvailable != "v0.2.0" {
		t.Errorf("Expected updateAvailable v0.2.0, got %q", s.updateAvailable)
	}
	if !s.checkingUpdate {
		t.Error("Expected checkingUpdate in snapshot")
	}
}

func TestForward_DropsClicksWhenQueueFull(t *testing.T) {
	tr := New(&fakeSource{}, false)

	clicks := make(chan struct{}, 32)
	done := make(chan struct{})
	go func() {
		tr.forward(clicks, CommandRefresh)
		close(done)
	}()

	// Nothing consumes commands, so clicks beyond the queue bound must be
	// dropped without blocking.
	for i := 0; i < commandQueueSize+5; i++ {
		clicks <- struct{}{}
	}
	close(clicks)
	<-done

	if len(tr.commands) != commandQueueSize {
		t.Errorf("Expected %d queued commands, got %d", commandQueueSize, len(tr.commands))
	}
}

func TestCommandString(t *testing.T) {
	tests := []struct {
		cmd      Command
		expected string
	}{
		{CommandRefresh, "refresh"},
		{CommandToggleAutostart, "toggle-autostart"},
		{CommandCheckUpdate, "check-update"},
		{CommandRunUpdate, "run-update"},
		{CommandQuit, "quit"},
		{Command(42), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.cmd.String(); got != tt.expected {
			t.Errorf("Command(%d).String() = %q, want %q", tt.cmd, got, tt.expected)
		}
	}
}

func TestRedraw_BeforeSetupIsSafe(t *testing.T) {
	tr := New(&fakeSource{}, false)
	// Must not panic when the menu has not been created yet.
	tr.Redraw()
}
