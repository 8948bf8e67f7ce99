// Package gist — resolver.go fetches the remote control configuration
// and falls back to the cached copy, then to built-in defaults.
package gist

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/progriv/progriv/internal/config"
	"github.com/progriv/progriv/internal/keycodec"
	"github.com/progriv/progriv/internal/model"
	"github.com/progriv/progriv/internal/output"
)

const (
	// RawURL is the pinned Gist holding the control configuration.
	RawURL = "https://gist.githubusercontent.com/okremaosoba/46b3228958b2b0171b993f281426450a/raw/ads_config.json"

	// CacheFileName is the file under the settings directory that keeps
	// the last successfully fetched payload for offline use.
	CacheFileName = "remote_config.json"

	fetchTimeout   = 10 * time.Second
	maxPayloadSize = 1 << 20
)

// payload mirrors the Gist JSON. The Gemini key may arrive encoded
// under gemini_key_enc or plain under gemini_key; the encoded form
// wins when both are present.
type payload struct {
	ScriptURL    string `json:"script_url"`
	GeminiKeyEnc string `json:"gemini_key_enc"`
	GeminiKey    string `json:"gemini_key"`
	GeminiModel  string `json:"gemini_model"`
}

// Resolver resolves the remote configuration. It degrades gracefully:
// Gist first, cached payload second, built-in fallback last, so the
// application starts even when fully offline.
type Resolver struct {
	http      *http.Client
	url       string
	cachePath string
}

// NewResolver creates a Resolver. Empty url or cachePath select the
// built-in Gist URL and the default cache location.
func NewResolver(url, cachePath string) *Resolver {
	if url == "" {
		url = RawURL
	}
	if cachePath == "" {
		if dir, err := config.SettingsDir(); err == nil {
			cachePath = filepath.Join(dir, CacheFileName)
		}
	}
	return &Resolver{
		http:      &http.Client{Timeout: fetchTimeout},
		url:       url,
		cachePath: cachePath,
	}
}

// Resolve returns the best available configuration. It never fails
// outright: when both the Gist and the cache are unusable it returns
// the fallback config with only the default model set, and the Source
// field records which rung of the chain produced the result.
func (r *Resolver) Resolve(ctx context.Context) model.RemoteConfig {
	body, err := r.fetch(ctx)
	if err == nil {
		cfg, perr := parsePayload(body)
		if perr == nil {
			r.writeCache(body)
			cfg.Source = model.SourceGist
			return cfg
		}
		output.Debug("remote config payload rejected", "error", perr)
	} else {
		output.Debug("remote config fetch failed", "error", err)
	}

	if cached, cerr := os.ReadFile(r.cachePath); cerr == nil {
		cfg, perr := parsePayload(cached)
		if perr == nil {
			cfg.Source = model.SourceCached
			output.Debug("using cached remote config", "path", r.cachePath)
			return cfg
		}
		output.Debug("cached remote config rejected", "error", perr)
	}

	return model.RemoteConfig{
		GeminiModel: config.DefaultGeminiModel,
		Source:      model.SourceFallback,
	}
}

// fetch downloads the raw payload.
func (r *Resolver) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", config.AppName+"/1.0")

	resp, err := r.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadSize))
	if err != nil {
		return nil, err
	}
	return body, nil
}

// parsePayload validates the raw JSON and decodes the Gemini key. A
// payload without a script URL is rejected so a half-written Gist
// never shadows a good cached copy.
func parsePayload(body []byte) (model.RemoteConfig, error) {
	var p payload
	if err := json.Unmarshal(body, &p); err != nil {
		return model.RemoteConfig{}, fmt.Errorf("invalid payload: %w", err)
	}
	if p.ScriptURL == "" {
		return model.RemoteConfig{}, fmt.Errorf("payload missing script_url")
	}

	key := p.GeminiKeyEnc
	if key == "" {
		key = p.GeminiKey
	}

	cfg := model.RemoteConfig{
		ScriptURL:   p.ScriptURL,
		GeminiKey:   keycodec.SmartDecode(key),
		GeminiModel: p.GeminiModel,
	}
	if cfg.GeminiModel == "" {
		cfg.GeminiModel = config.DefaultGeminiModel
	}
	return cfg, nil
}

// writeCache stores the raw payload next to the settings file. Cache
// failures are logged and otherwise ignored, the fresh config is
// already in hand.
func (r *Resolver) writeCache(body []byte) {
	if r.cachePath == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(r.cachePath), 0o755); err != nil {
		output.Warn("failed to create config cache directory", "error", err)
		return
	}
	if err := os.WriteFile(r.cachePath, body, 0o644); err != nil {
		output.Warn("failed to cache remote config", "error", err)
	}
}
