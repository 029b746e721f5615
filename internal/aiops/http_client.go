package aiops

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"insightgen/internal/insight"
	"insightgen/internal/inventory"

	"github.com/rs/zerolog/log"
)

// listKeys are the envelope fields a list response may wrap its items in.
var listKeys = []string{"items", "insights", "devices", "data", "content", "results"}

type httpClient struct {
	cfg        Config
	endpoint   string
	httpClient *http.Client
}

// NewHTTPClient creates a client that talks to the platform over HTTP.
func NewHTTPClient(cfg Config) Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	return &httpClient{
		cfg:      cfg,
		endpoint: cfg.InsightsEndpoint(),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

func (c *httpClient) Endpoint() string { return c.endpoint }

func (c *httpClient) HasToken() bool { return c.cfg.Token != "" }

func (c *httpClient) DryRun() bool { return c.cfg.DryRun }

func (c *httpClient) TokenPreview() string {
	if c.cfg.Token == "" {
		return "None"
	}
	if len(c.cfg.Token) <= 10 {
		return c.cfg.Token + "..."
	}
	return c.cfg.Token[:10] + "..."
}

func (c *httpClient) authenticateRequest(req *http.Request) {
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.cfg.Token))
	}
}

func (c *httpClient) PostInsight(ctx context.Context, rec *insight.Record, label string) bool {
	return c.post(ctx, c.endpoint, rec, label)
}

func (c *httpClient) PostInsightTo(ctx context.Context, domain string, rec *insight.Record) bool {
	return c.post(ctx, domainEndpoint(domain), rec, "MIGRATE: "+domain)
}

func (c *httpClient) post(ctx context.Context, target string, rec *insight.Record, label string) bool {
	uid := rec.StringOr(insight.FieldUID, "Unknown")
	title := rec.StringOr(insight.FieldTitle, "Unknown")
	logger := log.With().Str("window", label).Str("title", title).Str("uid", uid).Logger()

	if c.cfg.DryRun {
		logger.Info().Str("url", target).Msg("[DRY RUN] Would post insight")
		return true
	}

	body, err := json.Marshal(rec)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to encode insight")
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		logger.Error().Err(err).Msg("Error posting insight")
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	c.authenticateRequest(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Error().Err(err).Msg("Error posting insight")
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated {
		logger.Info().Int("status", resp.StatusCode).Msg("Successfully posted insight")
		return true
	}

	logger.Error().
		Int("status", resp.StatusCode).
		Str("body", readSnippet(resp.Body)).
		Msg("Failed to post insight")
	return false
}

func (c *httpClient) ClearInsights(ctx context.Context) bool {
	if c.cfg.DryRun {
		log.Info().Str("url", c.endpoint).Msg("[DRY RUN] Would delete all insights from the platform")
		return true
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.endpoint, nil)
	if err != nil {
		log.Error().Err(err).Msg("Error clearing insights")
		return false
	}
	c.authenticateRequest(req)

	log.Info().Str("url", c.endpoint).Msg("Sending DELETE request")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error().Err(err).Msg("Error clearing insights")
		return false
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent, http.StatusNotFound:
		// 404 means there was nothing to delete.
		return true
	default:
		log.Error().
			Int("status", resp.StatusCode).
			Str("body", readSnippet(resp.Body)).
			Msg("Failed to clear insights")
		return false
	}
}

func (c *httpClient) FetchInsights(ctx context.Context, domain string) ([]*insight.Record, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(FetchLimit))
	fetchURL := fmt.Sprintf("%s?%s", domainEndpoint(domain), params.Encode())

	log.Info().Str("domain", domain).Msg("Requesting insights")
	log.Debug().Str("url", fetchURL).Msg("Insight fetch details")

	items, err := c.getList(ctx, fetchURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch insights from %s: %w", domain, err)
	}
	if len(items) > FetchLimit {
		items = items[:FetchLimit]
	}
	return items, nil
}

func (c *httpClient) ListDevices(ctx context.Context, limit int) ([]inventory.Device, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	listURL := trimSlash(c.cfg.BaseURL) + DevicesPath
	if len(params) > 0 {
		listURL += "?" + params.Encode()
	}

	items, err := c.getList(ctx, listURL)
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}

	devices := make([]inventory.Device, 0, len(items))
	for _, item := range items {
		uid := item.StringOr("uid", item.StringOr("id", ""))
		devices = append(devices, inventory.Device{
			UID:  uid,
			Name: item.StringOr("name", uid),
			Type: inventory.DeviceTypeFTD,
		})
	}
	return devices, nil
}

// getList performs a GET and decodes either a bare array of objects or an
// object wrapping one under a well-known key.
func (c *httpClient) getList(ctx context.Context, target string) ([]*insight.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	c.authenticateRequest(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return nil, fmt.Errorf("platform authentication failed (%d), check the bearer token", resp.StatusCode)
		default:
			return nil, fmt.Errorf("platform returned status %d: %s", resp.StatusCode, readSnippet(resp.Body))
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return decodeList(data)
}

func decodeList(data []byte) ([]*insight.Record, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var raw []json.RawMessage
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return nil, fmt.Errorf("failed to decode list response: %w", err)
		}
		return decodeItems(raw), nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode list response: %w", err)
	}
	for _, key := range listKeys {
		payload, ok := envelope[key]
		if !ok {
			continue
		}
		var raw []json.RawMessage
		if err := json.Unmarshal(payload, &raw); err != nil {
			continue
		}
		return decodeItems(raw), nil
	}
	return nil, fmt.Errorf("list response has no recognizable items field")
}

func decodeItems(raw []json.RawMessage) []*insight.Record {
	items := make([]*insight.Record, 0, len(raw))
	for i, msg := range raw {
		rec, err := insight.Parse(msg)
		if err != nil {
			log.Warn().Err(err).Int("index", i).Msg("Skipping list item that is not an object")
			continue
		}
		items = append(items, rec)
	}
	return items
}

// domainEndpoint turns a bare domain into its insights URL. Values with a scheme are kept.
func domainEndpoint(domain string) string {
	base := strings.TrimSpace(domain)
	if !strings.Contains(base, "://") {
		base = "https://" + base
	}
	return trimSlash(base) + InsightsPath
}

func trimSlash(s string) string {
	return strings.TrimRight(s, "/")
}

func readSnippet(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 512))
	return strings.TrimSpace(string(b))
}
