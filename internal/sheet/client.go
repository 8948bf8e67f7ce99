// Package sheet — client.go implements the Apps Script web-app client.
package sheet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/progriv/progriv/internal/model"
	"github.com/progriv/progriv/internal/output"
)

const (
	defaultTimeout = 30 * time.Second

	// cacheTTL bounds how stale a cached sheet read may get. Writes and
	// stats bypass the cache entirely.
	cacheTTL  = 60 * time.Second
	cacheSize = 32

	maxResponseSize = 4 << 20
)

// Client talks to the control sheet through its Apps Script web app.
// Reads that back the generation flow (sites, config, banned lists)
// are cached for a short TTL; error responses are never cached.
type Client struct {
	http      *http.Client
	scriptURL string
	cache     *expirable.LRU[string, []byte]
}

// NewClient creates a Client for the given Apps Script endpoint.
func NewClient(scriptURL string) (*Client, error) {
	scriptURL = strings.TrimRight(strings.TrimSpace(scriptURL), "/")
	if scriptURL == "" {
		return nil, model.NewCLIError(model.ExitConfigError, "no Apps Script URL configured, run sync or set script_url in settings")
	}
	return &Client{
		http:      &http.Client{Timeout: defaultTimeout},
		scriptURL: scriptURL,
		cache:     expirable.NewLRU[string, []byte](cacheSize, nil, cacheTTL),
	}, nil
}

// ScriptURL returns the endpoint this client talks to.
func (c *Client) ScriptURL() string {
	return c.scriptURL
}

// ClearCache drops every cached read.
func (c *Client) ClearCache() {
	c.cache.Purge()
}

// apiStatus is the envelope the Apps Script wraps error replies in.
// Success replies use "ok" or "success", or omit the field entirely.
type apiStatus struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// apiError surfaces an error envelope as a Go error. Bodies that are
// not JSON objects are left for the caller's decode to reject.
func apiError(body []byte) error {
	var probe apiStatus
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil
	}
	if probe.Status == "error" {
		msg := probe.Message
		if msg == "" {
			msg = "sheet reported an error"
		}
		return fmt.Errorf("sheet: %s", msg)
	}
	return nil
}

// get performs one GET with the action query parameter set.
func (c *Client) get(ctx context.Context, action string, params url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.scriptURL, nil)
	if err != nil {
		return nil, err
	}
	q := req.URL.Query()
	q.Set("action", action)
	for key, vals := range params {
		for _, v := range vals {
			q.Add(key, v)
		}
	}
	req.URL.RawQuery = q.Encode()

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sheet request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("sheet: unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, err
	}
	if err := apiError(body); err != nil {
		return nil, err
	}
	return body, nil
}

// getCached is get with the TTL cache in front. Only successful
// responses are stored, so a transient failure never pins an error.
func (c *Client) getCached(ctx context.Context, action string, params url.Values) ([]byte, error) {
	key := action
	if len(params) > 0 {
		key += "?" + params.Encode()
	}
	if body, ok := c.cache.Get(key); ok {
		output.Debug("sheet cache hit", "action", action)
		return body, nil
	}
	body, err := c.get(ctx, action, params)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, body)
	return body, nil
}

// post sends one JSON body to the Apps Script doPost handler. The
// action travels inside the body, not the query string.
func (c *Client) post(ctx context.Context, data any) ([]byte, error) {
	encoded, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.scriptURL, bytes.NewReader(encoded))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sheet request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("sheet: unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, err
	}
	if err := apiError(body); err != nil {
		return nil, err
	}
	return body, nil
}

// Sites returns the site list from the sheet.
func (c *Client) Sites(ctx context.Context) ([]model.Site, error) {
	body, err := c.getCached(ctx, "get_sites", nil)
	if err != nil {
		return nil, err
	}
	var reply struct {
		Sites []model.Site `json:"sites"`
	}
	if err := json.Unmarshal(body, &reply); err != nil {
		return nil, fmt.Errorf("invalid get_sites reply: %w", err)
	}
	return reply.Sites, nil
}

// Config returns the campaign parameter row. The reply carries the
// keys at the top level rather than wrapped in a payload field.
func (c *Client) Config(ctx context.Context) (model.SheetConfig, error) {
	body, err := c.getCached(ctx, "get_config", nil)
	if err != nil {
		return model.SheetConfig{}, err
	}
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return model.SheetConfig{}, fmt.Errorf("invalid get_config reply: %w", err)
	}
	delete(raw, "status")
	return model.SheetConfigFromMap(raw), nil
}

// Banned returns the banned keyword list.
func (c *Client) Banned(ctx context.Context) ([]string, error) {
	body, err := c.getCached(ctx, "get_banned", nil)
	if err != nil {
		return nil, err
	}
	var reply struct {
		Banned []string `json:"banned"`
	}
	if err := json.Unmarshal(body, &reply); err != nil {
		return nil, fmt.Errorf("invalid get_banned reply: %w", err)
	}
	return reply.Banned, nil
}

// BannedDomains returns the banned domain list.
func (c *Client) BannedDomains(ctx context.Context) ([]string, error) {
	body, err := c.getCached(ctx, "get_banned_domains", nil)
	if err != nil {
		return nil, err
	}
	var reply struct {
		BannedDomains []string `json:"banned_domains"`
	}
	if err := json.Unmarshal(body, &reply); err != nil {
		return nil, fmt.Errorf("invalid get_banned_domains reply: %w", err)
	}
	return reply.BannedDomains, nil
}

// Version returns the sheet-side script version. Never cached so a
// connection test always hits the network.
func (c *Client) Version(ctx context.Context) (string, error) {
	body, err := c.get(ctx, "get_version", nil)
	if err != nil {
		return "", err
	}
	var reply struct {
		Version string `json:"version"`
	}
	if err := json.Unmarshal(body, &reply); err != nil {
		return "", fmt.Errorf("invalid get_version reply: %w", err)
	}
	return reply.Version, nil
}

// AllStats returns the sheet-wide statistics as delivered.
func (c *Client) AllStats(ctx context.Context) (map[string]any, error) {
	body, err := c.get(ctx, "get_all_stats", nil)
	if err != nil {
		return nil, err
	}
	var reply map[string]any
	if err := json.Unmarshal(body, &reply); err != nil {
		return nil, fmt.Errorf("invalid get_all_stats reply: %w", err)
	}
	delete(reply, "status")
	return reply, nil
}

// FarmerStats returns the per-operator statistics.
func (c *Client) FarmerStats(ctx context.Context, farmer string) (model.FarmerStats, error) {
	params := url.Values{}
	params.Set("farmer", farmer)
	body, err := c.get(ctx, "get_farmer_stats", params)
	if err != nil {
		return model.FarmerStats{}, err
	}
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return model.FarmerStats{}, fmt.Errorf("invalid get_farmer_stats reply: %w", err)
	}
	return model.FarmerStatsFromMap(raw), nil
}

// LogGeneration records one generated campaign against the operator.
func (c *Client) LogGeneration(ctx context.Context, farmer, siteURL string) error {
	_, err := c.post(ctx, map[string]any{
		"action":   "log_generation",
		"farmer":   farmer,
		"site_url": siteURL,
	})
	return err
}

// SubmitErrors sends keywords stripped during generation to the
// moderation queue.
func (c *Client) SubmitErrors(ctx context.Context, farmer string, errs []model.Submission) error {
	_, err := c.post(ctx, map[string]any{
		"action": "submit_errors",
		"farmer": farmer,
		"errors": errs,
	})
	return err
}

// SubmitReceipt reports what the sheet did with a feedback batch.
type SubmitReceipt struct {
	AutoBanned   int `json:"auto_banned"`
	PendingAdded int `json:"pending_added"`
	Duplicates   int `json:"duplicates"`
}

// SubmitAdErrors sends rejections parsed from a Google Ads export.
// Keywords are banned outright, creative text goes to moderation.
func (c *Client) SubmitAdErrors(ctx context.Context, farmer string, errs []model.Submission) (SubmitReceipt, error) {
	body, err := c.post(ctx, map[string]any{
		"action": "submit_ad_errors",
		"farmer": farmer,
		"errors": errs,
	})
	if err != nil {
		return SubmitReceipt{}, err
	}
	var receipt SubmitReceipt
	if err := json.Unmarshal(body, &receipt); err != nil {
		return SubmitReceipt{}, fmt.Errorf("invalid submit_ad_errors reply: %w", err)
	}
	return receipt, nil
}

// TestConnection checks that the endpoint answers and returns the
// reported version, which may be empty on older script deployments.
func (c *Client) TestConnection(ctx context.Context) (string, error) {
	return c.Version(ctx)
}

// SyncResult bundles everything SyncAll pulls from the sheet.
type SyncResult struct {
	Sites         []model.Site      `json:"sites"`
	Config        model.SheetConfig `json:"config"`
	Banned        []string          `json:"banned"`
	BannedDomains []string          `json:"bannedDomains"`
}

// SyncAll drops the cache and refetches every sheet-backed input of
// the generation flow.
func (c *Client) SyncAll(ctx context.Context) (SyncResult, error) {
	c.ClearCache()

	sites, err := c.Sites(ctx)
	if err != nil {
		return SyncResult{}, err
	}
	cfg, err := c.Config(ctx)
	if err != nil {
		return SyncResult{}, err
	}
	banned, err := c.Banned(ctx)
	if err != nil {
		return SyncResult{}, err
	}
	domains, err := c.BannedDomains(ctx)
	if err != nil {
		return SyncResult{}, err
	}

	return SyncResult{
		Sites:         sites,
		Config:        cfg,
		Banned:        banned,
		BannedDomains: domains,
	}, nil
}
