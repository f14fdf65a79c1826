// Package geo resolves the user's public IP address and geographic location
// via the ip-api.com lookup service.
package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/btxTruong/network-monitor/internal/logging"
)

const (
	// ip-api.com free tier only supports HTTP. HTTPS requires a paid API
	// key. Acceptable here: the lookup carries no sensitive data.
	defaultAPIURL  = "http://ip-api.com/json/?fields=status,message,country,countryCode,city,isp,query"
	defaultTimeout = 10 * time.Second
	defaultVersion = "dev"
)

// Info is an immutable snapshot of the user's network location.
type Info struct {
	IP          string
	Country     string
	CountryCode string // ISO 3166-1 alpha-2, e.g. "VN"
	City        string
	ISP         string
}

// apiResponse is the ip-api.com success/fail envelope. Fields are optional
// because failure responses carry only status and message.
type apiResponse struct {
	Status      string `json:"status"`
	Message     string `json:"message"`
	Query       string `json:"query"`
	Country     string `json:"country"`
	CountryCode string `json:"countryCode"`
	City        string `json:"city"`
	ISP         string `json:"isp"`
}

// ErrInvalidResponse indicates a successful response missing required fields.
var ErrInvalidResponse = errors.New("invalid response: missing fields")

// APIError is a failure reported by the lookup service itself (status=fail).
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error: %s", e.Message)
}

// Client encapsulates the HTTP client for the geo-IP lookup.
//
// The client performs no retries: callers decide whether and when a failed
// lookup is retried (periodic refresh and network events already provide
// natural retry points).
type Client struct {
	httpClient *http.Client
	url        string
	version    string
	logLevel   logging.LogLevel
}

// ClientOption is a function that configures a Client
type ClientOption func(*Client)

// WithURL sets a custom lookup URL
func WithURL(url string) ClientOption {
	return func(c *Client) {
		c.url = url
	}
}

// WithTimeout sets a custom timeout for HTTP requests
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithVersion sets the version string for the User-Agent header
func WithVersion(version string) ClientOption {
	return func(c *Client) {
		c.version = version
	}
}

// WithLogLevel sets the log level for the client
func WithLogLevel(logLevel logging.LogLevel) ClientOption {
	return func(c *Client) {
		c.logLevel = logLevel
	}
}

// NewClient creates a new lookup client with the given options
func NewClient(opts ...ClientOption) *Client {
	client := &Client{
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		url:      defaultAPIURL,
		version:  defaultVersion,
		logLevel: logging.LogLevelError,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// FetchLocation fetches the current geographic location based on public IP
func (c *Client) FetchLocation(ctx context.Context) (*Info, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", fmt.Sprintf("network-monitor/%s", c.version))

	if c.logLevel <= logging.LogLevelDebug {
		log.Printf("Fetching location from %s", c.url)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch location: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	var payload apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to parse API response: %w", err)
	}

	if payload.Status == "fail" {
		message := payload.Message
		if message == "" {
			message = "unknown error"
		}
		if c.logLevel <= logging.LogLevelWarning {
			log.Printf("Lookup service reported failure: %s", message)
		}
		return nil, &APIError{Message: message}
	}

	if payload.Query == "" || payload.Country == "" || payload.CountryCode == "" ||
		payload.City == "" || payload.ISP == "" {
		return nil, ErrInvalidResponse
	}

	info := &Info{
		IP:          payload.Query,
		Country:     payload.Country,
		CountryCode: payload.CountryCode,
		City:        payload.City,
		ISP:         payload.ISP,
	}

	if c.logLevel <= logging.LogLevelDebug {
		log.Printf("Location resolved: %s (%s) - %s", info.Country, info.CountryCode, info.IP)
	}

	return info, nil
}
