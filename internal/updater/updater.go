// Package updater checks for new releases on GitHub and persists update
// state between runs.
//
// Two flat files live under the per-user config directory
// (<config>/network-monitor/): "last-check" holds the epoch seconds of the
// last remote check, "update-available" holds a pending version tag. Both
// are best-effort: an unreadable or unparseable value is treated as "never
// checked" / "no update".
package updater

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/mod/semver"

	"github.com/btxTruong/network-monitor/internal/logging"
)

const (
	defaultReleaseURL = "https://api.github.com/repos/btxTruong/network-monitor/releases/latest"
	defaultTimeout    = 10 * time.Second

	checkInterval = 24 * time.Hour

	appDirName    = "network-monitor"
	lastCheckFile = "last-check"
	updateFile    = "update-available"
)

// release is the subset of the GitHub release API response we care about
type release struct {
	TagName string `json:"tag_name"`
}

// Updater checks for new versions and manages persisted update state.
type Updater struct {
	httpClient *http.Client
	url        string
	version    string
	configDir  string
	now        func() time.Time
	logLevel   logging.LogLevel
}

// Option is a function that configures an Updater
type Option func(*Updater)

// WithURL sets a custom release metadata URL
func WithURL(url string) Option {
	return func(u *Updater) {
		u.url = url
	}
}

// WithTimeout sets a custom timeout for HTTP requests
func WithTimeout(timeout time.Duration) Option {
	return func(u *Updater) {
		u.httpClient.Timeout = timeout
	}
}

// WithConfigDir overrides the state directory (used in tests)
func WithConfigDir(dir string) Option {
	return func(u *Updater) {
		u.configDir = dir
	}
}

// WithNow overrides the clock (used in tests)
func WithNow(now func() time.Time) Option {
	return func(u *Updater) {
		u.now = now
	}
}

// WithLogLevel sets the log level for the updater
func WithLogLevel(logLevel logging.LogLevel) Option {
	return func(u *Updater) {
		u.logLevel = logLevel
	}
}

// New creates an Updater comparing against the given installed version.
func New(version string, opts ...Option) *Updater {
	u := &Updater{
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		url:      defaultReleaseURL,
		version:  version,
		now:      time.Now,
		logLevel: logging.LogLevelError,
	}

	for _, opt := range opts {
		opt(u)
	}

	return u
}

// stateDir returns the directory holding persisted update state
func (u *Updater) stateDir() (string, error) {
	if u.configDir != "" {
		return u.configDir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine config directory: %w", err)
	}
	return filepath.Join(base, appDirName), nil
}

// shouldCheck reports whether the daily cooldown has elapsed. Any read or
// parse failure counts as "never checked".
func (u *Updater) shouldCheck() bool {
	dir, err := u.stateDir()
	if err != nil {
		return false
	}

	content, err := os.ReadFile(filepath.Join(dir, lastCheckFile))
	if err != nil {
		return true
	}

	lastCheck, err := strconv.ParseInt(strings.TrimSpace(string(content)), 10, 64)
	if err != nil {
		return true
	}

	return u.now().Unix()-lastCheck >= int64(checkInterval/time.Second)
}

// saveLastCheck persists "now" as the last check time, best-effort
func (u *Updater) saveLastCheck() {
	dir, err := u.stateDir()
	if err != nil {
		return
	}

	_ = os.MkdirAll(dir, 0o755)
	timestamp := strconv.FormatInt(u.now().Unix(), 10)
	if err := os.WriteFile(filepath.Join(dir, lastCheckFile), []byte(timestamp), 0o644); err != nil {
		if u.logLevel <= logging.LogLevelWarning {
			log.Printf("Failed to save last check time: %v", err)
		}
	}
}

// Check checks for a newer release, rate-limited to once per day. It
// returns the new version tag, or "" when rate-limited, up to date, or on
// any failure. The timestamp is persisted even when the remote check fails,
// so failures still count against the daily cap.
func (u *Updater) Check(ctx context.Context) string {
	if !u.shouldCheck() {
		if u.logLevel <= logging.LogLevelDebug {
			log.Println("Skipping update check: daily cooldown not elapsed")
		}
		return ""
	}
	u.saveLastCheck()
	return u.fetchLatest(ctx)
}

// CheckForced checks for a newer release immediately, bypassing the daily
// rate limit and leaving the persisted timestamp untouched.
func (u *Updater) CheckForced(ctx context.Context) string {
	return u.fetchLatest(ctx)
}

// fetchLatest queries the release endpoint. Any transport, parse, or
// missing-field failure collapses to "no update found".
func (u *Updater) fetchLatest(ctx context.Context) string {
	if u.logLevel <= logging.LogLevelDebug {
		log.Printf("Checking for updates at %s", u.url)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.url, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", "network-monitor")

	resp, err := u.httpClient.Do(req)
	if err != nil {
		if u.logLevel <= logging.LogLevelWarning {
			log.Printf("Update check failed: %v", err)
		}
		return ""
	}
	defer func() { _ = resp.Body.Close() }()

	var rel release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		if u.logLevel <= logging.LogLevelWarning {
			log.Printf("Failed to parse release metadata: %v", err)
		}
		return ""
	}
	if rel.TagName == "" {
		return ""
	}

	if IsNewer(rel.TagName, u.version) {
		if u.logLevel <= logging.LogLevelInfo {
			log.Printf("New version available: %s (current: %s)", rel.TagName, u.version)
		}
		return rel.TagName
	}

	if u.logLevel <= logging.LogLevelDebug {
		log.Printf("Already on latest version: %s", u.version)
	}
	return ""
}

// SaveAvailableUpdate persists a pending update version across restarts
func (u *Updater) SaveAvailableUpdate(version string) {
	dir, err := u.stateDir()
	if err != nil {
		return
	}
	_ = os.MkdirAll(dir, 0o755)
	if err := os.WriteFile(filepath.Join(dir, updateFile), []byte(version), 0o644); err != nil {
		if u.logLevel <= logging.LogLevelWarning {
			log.Printf("Failed to persist pending update: %v", err)
		}
	}
}

// LoadAvailableUpdate returns the persisted pending update version, or ""
// if there is none. A stored version that is no longer newer than the
// installed one is deleted and "" is returned, so stale state self-heals.
func (u *Updater) LoadAvailableUpdate() string {
	dir, err := u.stateDir()
	if err != nil {
		return ""
	}

	path := filepath.Join(dir, updateFile)
	content, err := os.ReadFile(path)
	if err != nil {
		return ""
	}

	version := strings.TrimSpace(string(content))
	if version == "" || !IsNewer(version, u.version) {
		_ = os.Remove(path)
		return ""
	}
	return version
}

// ClearAvailableUpdate removes the persisted pending update marker
func (u *Updater) ClearAvailableUpdate() {
	dir, err := u.stateDir()
	if err != nil {
		return
	}
	_ = os.Remove(filepath.Join(dir, updateFile))
}

// IsNewer reports whether version latest is strictly newer than current.
// Versions are dot-separated numeric components, with or without a leading
// "v"; missing trailing components count as zero. Comparison is delegated
// to semver after normalization, so the first differing component decides.
func IsNewer(latest, current string) bool {
	return semver.Compare(canonical(latest), canonical(current)) > 0
}

// canonical normalizes a version tag into the "vMAJOR[.MINOR[.PATCH]]"
// form semver expects.
func canonical(version string) string {
	return "v" + strings.TrimPrefix(strings.TrimSpace(version), "v")
}
