package app

import (
	"sync"

	"github.com/btxTruong/network-monitor/internal/geo"
)

// LocationCell is the single shared mutable cell holding the most recent
// location snapshot. It is only ever read whole or replaced whole, never
// mutated in place, so readers may observe a stale but never a torn
// snapshot.
type LocationCell struct {
	mu   sync.Mutex
	info *geo.Info
}

// NewLocationCell creates a cell holding the given snapshot (nil for none).
func NewLocationCell(info *geo.Info) *LocationCell {
	return &LocationCell{info: info}
}

// Snapshot returns the current location, or nil if none was ever fetched.
func (c *LocationCell) Snapshot() *geo.Info {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.info
}

// Replace swaps in a new snapshot wholesale.
func (c *LocationCell) Replace(info *geo.Info) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.info = info
}
