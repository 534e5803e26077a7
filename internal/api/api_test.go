package api

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mydehq/lrcfetch/internal/config"
	"github.com/mydehq/lrcfetch/internal/provider"
	"github.com/mydehq/lrcfetch/internal/provider/providertest"
	"github.com/mydehq/lrcfetch/internal/types"
)

type recordingSleeper struct {
	waits []time.Duration
}

func (r *recordingSleeper) sleep(_ context.Context, d time.Duration) error {
	r.waits = append(r.waits, d)
	return nil
}

func newClient(t *testing.T, plugins []types.Plugin, opts ...Option) *Client {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.DownloadPath = filepath.Join(dir, "out")
	m := config.NewManager(cfg, filepath.Join(dir, "config.yml"))

	sleeper := &recordingSleeper{}
	base := []Option{
		WithConfigManager(m),
		WithSource(provider.StaticSource(plugins...)),
		WithLogger(log.New(io.Discard)),
		WithSleeper(sleeper.sleep),
	}
	c, err := New(append(base, opts...)...)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return c
}

// instancePlugin returns a plugin whose New always hands out inst.
func instancePlugin(name, pattern string, caps types.Capability, inst types.Provider) *providertest.Plugin {
	p := providertest.New(name, pattern, caps)
	p.NewFunc = func(context.Context, string, types.PluginConfig) (types.Provider, error) {
		return inst, nil
	}
	return p
}

func TestClient_FetchOne(t *testing.T) {
	alpha := providertest.New("Alpha", `alpha\.test/`, types.CapSingleTrack)
	c := newClient(t, []types.Plugin{alpha})

	resp, err := c.FetchOne(context.Background(), "https://alpha.test/track/1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Title != "fetch" || resp.Source != "Alpha" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if alpha.Constructs != 1 {
		t.Errorf("Constructs = %d, want 1", alpha.Constructs)
	}
}

func TestClient_NoMatchingProvider(t *testing.T) {
	c := newClient(t, []types.Plugin{providertest.New("Alpha", `alpha\.test/`, types.CapSingleTrack)})

	_, err := c.FetchOne(context.Background(), "https://unknown.test/x")
	var noMatch types.ErrNoMatchingProvider
	if !errors.As(err, &noMatch) {
		t.Fatalf("expected ErrNoMatchingProvider, got %v", err)
	}
	if len(noMatch.Installed) != 1 || noMatch.Installed[0] != "Alpha" {
		t.Errorf("Installed = %v", noMatch.Installed)
	}
}

func TestClient_AuthValidatedBeforeConstruction(t *testing.T) {
	secure := providertest.New("Secure", `secure\.test/`, types.CapSingleTrack)
	secure.Desc.RequiresAuth = true
	secure.Validate = func(cfg types.PluginConfig) error {
		return types.RequireKeys("Secure", cfg, "token")
	}
	c := newClient(t, []types.Plugin{secure})

	_, err := c.FetchOne(context.Background(), "https://secure.test/track/1")
	if !types.IsConfigurationError(err) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	var cfgErr types.ErrConfiguration
	if errors.As(err, &cfgErr) && cfgErr.Provider != "Secure" {
		t.Errorf("Provider = %q, want Secure", cfgErr.Provider)
	}
	if secure.Constructs != 0 {
		t.Errorf("provider constructed %d times despite invalid config", secure.Constructs)
	}

	c.Config().SetPlugin("Secure", "token", "abc")
	if _, err := c.FetchOne(context.Background(), "https://secure.test/track/1"); err != nil {
		t.Fatalf("unexpected error after setting token: %v", err)
	}
	if secure.Constructs != 1 {
		t.Errorf("Constructs = %d, want 1", secure.Constructs)
	}
}

func TestClient_ConfigReachesProvider(t *testing.T) {
	var got types.PluginConfig
	p := providertest.New("Alpha", `alpha\.test/`, types.CapSingleTrack)
	p.Defaults = types.PluginConfig{"market": "US", "lang": "en"}
	p.NewFunc = func(_ context.Context, _ string, cfg types.PluginConfig) (types.Provider, error) {
		got = cfg
		return &providertest.Instance{Name: "Alpha"}, nil
	}
	c := newClient(t, []types.Plugin{p})
	c.Config().SetPlugin("Alpha", "market", "DE")

	if _, err := c.FetchOne(context.Background(), "https://alpha.test/t"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["market"] != "DE" || got["lang"] != "en" {
		t.Errorf("effective config = %v", got)
	}
}

func TestClient_MergesDefaultsOnLoad(t *testing.T) {
	p := providertest.New("Alpha", `alpha\.test/`, types.CapSingleTrack)
	p.Defaults = types.PluginConfig{"market": "US"}
	c := newClient(t, []types.Plugin{p})

	if got := c.Config().Get().Plugins["alpha"]["market"]; got != "US" {
		t.Errorf("merged default = %v, want US", got)
	}
	if _, err := os.Stat(c.Config().Path()); err != nil {
		t.Errorf("expected merged config to be saved: %v", err)
	}
}

func TestBatchOp(t *testing.T) {
	tests := []struct {
		name     string
		caps     types.Capability
		url      string
		expected types.FetchOp
	}{
		{"album", types.CapAlbum, "https://x.test/album/1", types.OpFetchAlbum},
		{"album case-insensitive", types.CapAlbum, "https://x.test/ALBUM/1", types.OpFetchAlbum},
		{"playlist", types.CapPlaylist, "https://x.test/playlist/1", types.OpFetchPlaylist},
		{"playlist without capability", types.CapSingleTrack, "https://x.test/playlist/1", types.OpFetch},
		{"album without capability", types.CapPlaylist, "https://x.test/album/1", types.OpFetch},
		{"album wins", types.CapAlbum | types.CapPlaylist, "https://x.test/playlist/album", types.OpFetchAlbum},
		{"track", types.CapAlbum | types.CapPlaylist, "https://x.test/track/1", types.OpFetch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := types.Descriptor{Name: "X", Capabilities: tt.caps}
			if got := BatchOp(d, tt.url); got != tt.expected {
				t.Errorf("BatchOp(%q) = %q, want %q", tt.url, got, tt.expected)
			}
		})
	}
}

func TestClient_FetchBatchFallsBackToSingle(t *testing.T) {
	inst := &providertest.Instance{Name: "Alpha"}
	alpha := instancePlugin("Alpha", `alpha\.test/`, types.CapSingleTrack, inst)
	c := newClient(t, []types.Plugin{alpha})

	responses, err := c.FetchBatch(context.Background(), "https://alpha.test/playlist/9")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(responses) != 1 || responses[0].Title != "fetch" {
		t.Errorf("unexpected responses: %+v", responses)
	}
	if len(inst.Calls) != 1 || inst.Calls[0] != types.OpFetch {
		t.Errorf("Calls = %v, want [fetch]", inst.Calls)
	}
}

func TestClient_FetchBatchAlbum(t *testing.T) {
	inst := &providertest.Instance{Name: "Alpha"}
	alpha := instancePlugin("Alpha", `alpha\.test/`, types.CapSingleTrack|types.CapAlbum, inst)
	c := newClient(t, []types.Plugin{alpha})

	responses, err := c.FetchBatch(context.Background(), "https://alpha.test/album/9")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(responses) != 1 || responses[0].Title != "fetch_album" {
		t.Errorf("unexpected responses: %+v", responses)
	}
}

func TestClient_RetriesThroughExecutor(t *testing.T) {
	calls := 0
	inst := &providertest.Instance{Name: "Gamma", FetchFunc: func(context.Context) (*types.LyricsResponse, error) {
		calls++
		if calls < 3 {
			return nil, types.ErrRateLimited{Provider: "Gamma"}
		}
		return &types.LyricsResponse{Title: "ok", Source: "Gamma"}, nil
	}}
	gamma := instancePlugin("Gamma", `gamma\.test/`, types.CapSingleTrack, inst)

	sleeper := &recordingSleeper{}
	c := newClient(t, []types.Plugin{gamma}, WithSleeper(sleeper.sleep))

	resp, err := c.FetchOne(context.Background(), "https://gamma.test/t")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Title != "ok" || calls != 3 {
		t.Errorf("title=%q calls=%d", resp.Title, calls)
	}
	if len(sleeper.waits) != 2 || sleeper.waits[0] != time.Second || sleeper.waits[1] != 2*time.Second {
		t.Errorf("waits = %v, want [1s 2s]", sleeper.waits)
	}
}

func TestClient_DecoratesRawErrors(t *testing.T) {
	raw := errors.New("socket closed")
	inst := &providertest.Instance{Name: "Alpha", FetchFunc: func(context.Context) (*types.LyricsResponse, error) {
		return nil, raw
	}}
	c := newClient(t, []types.Plugin{instancePlugin("Alpha", `alpha\.test/`, types.CapSingleTrack, inst)})

	_, err := c.FetchOne(context.Background(), "https://alpha.test/t")
	var perr types.ErrProvider
	if !errors.As(err, &perr) {
		t.Fatalf("expected ErrProvider, got %T %v", err, err)
	}
	if perr.Provider != "Alpha" || !errors.Is(err, raw) {
		t.Errorf("unexpected decoration: %+v", perr)
	}
}

func TestClient_TaxonomyErrorsUnchanged(t *testing.T) {
	inst := &providertest.Instance{Name: "Alpha", FetchFunc: func(context.Context) (*types.LyricsResponse, error) {
		return nil, types.ErrLyricsNotFound{Provider: "Alpha", Track: "x"}
	}}
	c := newClient(t, []types.Plugin{instancePlugin("Alpha", `alpha\.test/`, types.CapSingleTrack, inst)})

	_, err := c.FetchOne(context.Background(), "https://alpha.test/t")
	if _, ok := err.(types.ErrLyricsNotFound); !ok {
		t.Errorf("expected bare ErrLyricsNotFound, got %T", err)
	}
}

func TestClient_Events(t *testing.T) {
	secure := providertest.New("Secure", `secure\.test/`, types.CapSingleTrack)
	secure.Desc.RequiresAuth = true

	var events []types.Event
	c := newClient(t, []types.Plugin{secure}, WithEvents(func(e types.Event) {
		events = append(events, e)
	}))

	if _, err := c.Download(context.Background(), "https://secure.test/t"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var progress, success int
	for _, e := range events {
		switch e.Type {
		case types.EventProgress:
			progress++
		case types.EventSuccess:
			success++
		}
	}
	if progress < 2 || success != 2 {
		t.Errorf("progress=%d success=%d events=%+v", progress, success, events)
	}
}
