package aiops

import (
	"context"
	"time"

	"insightgen/internal/insight"
	"insightgen/internal/inventory"
)

const (
	// InsightsPath is the insights collection on every platform domain.
	InsightsPath = "/api/platform/ai-ops-insights/v1/insights"
	// DevicesPath lists managed devices that can be impacted resources.
	DevicesPath = "/api/platform/inventory/v1/devices"

	// FetchLimit caps how many insights a single bulk read returns.
	FetchLimit = 300

	defaultBaseURL = "http://localhost:4047"
	defaultTimeout = 30 * time.Second
)

// Client is the interface for interacting with the AI-Ops platform.
type Client interface {
	// PostInsight submits one insight to the configured endpoint; label names the window in logs.
	PostInsight(ctx context.Context, rec *insight.Record, label string) bool
	// PostInsightTo submits one insight to another domain's insights endpoint.
	PostInsightTo(ctx context.Context, domain string, rec *insight.Record) bool
	// ClearInsights deletes every insight behind the configured endpoint.
	ClearInsights(ctx context.Context) bool
	// FetchInsights reads up to FetchLimit insights from a domain.
	FetchInsights(ctx context.Context, domain string) ([]*insight.Record, error)
	// ListDevices looks up devices usable as impacted resources.
	ListDevices(ctx context.Context, limit int) ([]inventory.Device, error)

	Endpoint() string
	HasToken() bool
	TokenPreview() string
	DryRun() bool
}

// Config holds the connection settings for the platform.
type Config struct {
	BaseURL string
	// Endpoint overrides BaseURL+InsightsPath when set.
	Endpoint string
	Token    string

	// TargetDomain receives migrated insights.
	TargetDomain string

	Timeout time.Duration
	DryRun  bool
}

// InsightsEndpoint returns the resolved insights URL.
func (c Config) InsightsEndpoint() string {
	if c.Endpoint != "" {
		return c.Endpoint
	}
	base := c.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	return trimSlash(base) + InsightsPath
}

// NewClient creates a new platform client based on the provided configuration.
func NewClient(cfg Config) Client {
	return NewHTTPClient(cfg)
}
