// Package lrclib implements a provider for the LRCLIB open lyrics database.
package lrclib

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mydehq/lrcfetch/internal/lrc"
	"github.com/mydehq/lrcfetch/internal/provider"
	"github.com/mydehq/lrcfetch/internal/transport"
	"github.com/mydehq/lrcfetch/internal/types"
)

const (
	name           = "LRCLIB"
	defaultBaseURL = "https://lrclib.net"
)

var (
	urlPattern = regexp.MustCompile(`lrclib\.net/`)
	idPattern  = regexp.MustCompile(`/api/get/(\d+)`)
)

// Plugin is the LRCLIB provider type
type Plugin struct {
	provider.Defaults
}

// Descriptor implements types.Plugin
func (Plugin) Descriptor() types.Descriptor {
	return types.Descriptor{
		Name:         name,
		Pattern:      urlPattern,
		Description:  "Open lyrics database at lrclib.net (track id or artist/track query URLs)",
		LyricsTypes:  types.LyricsPlain | types.LyricsSynced,
		Capabilities: types.CapSingleTrack,
		ConfigSchema: []types.ConfigField{
			{Key: "base_url", Description: "API base URL"},
			{Key: "timeout", Description: "Request timeout in seconds"},
		},
	}
}

// DefaultConfig implements types.Plugin
func (Plugin) DefaultConfig() types.PluginConfig {
	return types.PluginConfig{
		"base_url": defaultBaseURL,
		"timeout":  int(transport.DefaultTimeout / time.Second),
	}
}

// ValidateConfig implements types.Plugin
func (Plugin) ValidateConfig(cfg types.PluginConfig) error {
	if raw := cfg.String("base_url"); raw != "" {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return types.ErrConfiguration{Provider: name, Reason: fmt.Sprintf("base_url %q is not an absolute URL", raw)}
		}
	}
	if raw := cfg.String("timeout"); raw != "" {
		if n, err := strconv.Atoi(raw); err != nil || n <= 0 {
			return types.ErrConfiguration{Provider: name, Reason: fmt.Sprintf("timeout %q is not a positive number of seconds", raw)}
		}
	}
	return nil
}

// New implements types.Plugin. It resolves the API request for rawURL
// without touching the network.
func (p Plugin) New(_ context.Context, rawURL string, cfg types.PluginConfig) (types.Provider, error) {
	if err := p.ValidateConfig(cfg); err != nil {
		return nil, err
	}

	endpoint, err := endpointFor(rawURL, cfg.String("base_url"))
	if err != nil {
		return nil, err
	}

	timeout := transport.DefaultTimeout
	if n, err := strconv.Atoi(cfg.String("timeout")); err == nil && n > 0 {
		timeout = time.Duration(n) * time.Second
	}

	return &Provider{
		Base:     provider.Base{Name: name},
		endpoint: endpoint,
		client:   transport.NewClient(transport.Options{Timeout: timeout}),
	}, nil
}

// endpointFor maps a lrclib.net URL to the /api/get request for it.
func endpointFor(rawURL, baseURL string) (string, error) {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", types.ErrProvider{Provider: name, Message: "invalid URL", Err: err}
	}

	if m := idPattern.FindStringSubmatch(u.Path); m != nil {
		return fmt.Sprintf("%s/api/get/%s", baseURL, m[1]), nil
	}

	q := u.Query()
	if q.Get("track_name") != "" && q.Get("artist_name") != "" {
		params := url.Values{}
		for _, key := range []string{"track_name", "artist_name", "album_name", "duration"} {
			if v := q.Get(key); v != "" {
				params.Set(key, v)
			}
		}
		return baseURL + "/api/get?" + params.Encode(), nil
	}

	return "", types.ErrProvider{Provider: name, Message: fmt.Sprintf("unsupported URL %s: expected /api/get/<id> or track_name and artist_name parameters", rawURL)}
}

// Provider fetches one LRCLIB record
type Provider struct {
	provider.Base
	endpoint string
	client   *http.Client
}

type record struct {
	ID           int     `json:"id"`
	TrackName    string  `json:"trackName"`
	ArtistName   string  `json:"artistName"`
	AlbumName    string  `json:"albumName"`
	Duration     float64 `json:"duration"`
	Instrumental bool    `json:"instrumental"`
	PlainLyrics  string  `json:"plainLyrics"`
	SyncedLyrics string  `json:"syncedLyrics"`
}

// Fetch implements types.Provider
func (p *Provider) Fetch(ctx context.Context) (*types.LyricsResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch lyrics: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := transport.CheckStatus(name, resp); err != nil {
		return nil, err
	}

	var rec record
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return nil, types.ErrProvider{Provider: name, Message: "failed to parse response", Err: err}
	}

	return toResponse(rec)
}

func toResponse(rec record) (*types.LyricsResponse, error) {
	track := fmt.Sprintf("%s - %s", rec.ArtistName, rec.TrackName)
	if rec.Instrumental {
		return nil, types.ErrLyricsNotFound{Provider: name, Track: track + " (instrumental)"}
	}

	out := &types.LyricsResponse{
		Title:      rec.TrackName,
		Artist:     rec.ArtistName,
		Album:      rec.AlbumName,
		Source:     name,
		DurationMs: int64(rec.Duration * 1000),
		Metadata:   map[string]any{"lrclib_id": rec.ID},
	}

	switch {
	case strings.TrimSpace(rec.SyncedLyrics) != "":
		out.Lines = lrc.Parse(rec.SyncedLyrics)
		out.Synced = lrc.IsSynced(out.Lines)
	case strings.TrimSpace(rec.PlainLyrics) != "":
		for _, line := range strings.Split(strings.ReplaceAll(rec.PlainLyrics, "\r\n", "\n"), "\n") {
			out.Lines = append(out.Lines, types.LyricsLine{Text: line})
		}
	default:
		return nil, types.ErrLyricsNotFound{Provider: name, Track: track}
	}

	return out, nil
}

func init() {
	provider.Register(Plugin{})
}
