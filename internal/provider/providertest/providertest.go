// Package providertest provides configurable fake providers for tests.
package providertest

import (
	"context"
	"regexp"

	"github.com/mydehq/lrcfetch/internal/types"
)

// Plugin is a fake provider type. Zero-valued hooks fall back to
// contract defaults.
type Plugin struct {
	Desc       types.Descriptor
	Version    int // 0 means types.APIVersion
	Defaults   types.PluginConfig
	Validate   func(types.PluginConfig) error
	Policy     *types.RetryPolicy
	NewFunc    func(ctx context.Context, url string, cfg types.PluginConfig) (types.Provider, error)
	Before     []types.Hook
	After      []types.Hook
	Constructs int
}

// New returns a plugin named name matching pattern with the given capabilities
func New(name, pattern string, caps types.Capability) *Plugin {
	return &Plugin{
		Desc: types.Descriptor{
			Name:         name,
			Pattern:      regexp.MustCompile(pattern),
			LyricsTypes:  types.LyricsSynced,
			Capabilities: caps,
		},
	}
}

func (p *Plugin) Descriptor() types.Descriptor { return p.Desc }

func (p *Plugin) APIVersion() int {
	if p.Version == 0 {
		return types.APIVersion
	}
	return p.Version
}

func (p *Plugin) DefaultConfig() types.PluginConfig {
	if p.Defaults == nil {
		return types.PluginConfig{}
	}
	return p.Defaults.Clone()
}

func (p *Plugin) ValidateConfig(cfg types.PluginConfig) error {
	if p.Validate == nil {
		return nil
	}
	return p.Validate(cfg)
}

func (p *Plugin) RetryPolicy() types.RetryPolicy {
	if p.Policy == nil {
		return types.DefaultRetryPolicy()
	}
	return *p.Policy
}

func (p *Plugin) New(ctx context.Context, url string, cfg types.PluginConfig) (types.Provider, error) {
	p.Constructs++
	if p.NewFunc != nil {
		return p.NewFunc(ctx, url, cfg)
	}
	return &Instance{Name: p.Desc.Name, URL: url, Config: cfg}, nil
}

// HookPlugin is a Plugin that also contributes lifecycle hooks
type HookPlugin struct {
	*Plugin
}

func (p HookPlugin) BeforeFetchHooks() []types.Hook { return p.Before }
func (p HookPlugin) AfterFetchHooks() []types.Hook  { return p.After }

// Instance is a fake provider instance. Nil funcs return a single
// response titled after the operation.
type Instance struct {
	Name         string
	URL          string
	Config       types.PluginConfig
	FetchFunc    func(ctx context.Context) (*types.LyricsResponse, error)
	AlbumFunc    func(ctx context.Context) ([]*types.LyricsResponse, error)
	PlaylistFunc func(ctx context.Context) ([]*types.LyricsResponse, error)
	Collection   *types.Collection
	Calls        []types.FetchOp
}

func (i *Instance) Fetch(ctx context.Context) (*types.LyricsResponse, error) {
	i.Calls = append(i.Calls, types.OpFetch)
	if i.FetchFunc != nil {
		return i.FetchFunc(ctx)
	}
	return &types.LyricsResponse{Title: "fetch", Artist: "Artist", Source: i.Name}, nil
}

func (i *Instance) FetchAlbum(ctx context.Context) ([]*types.LyricsResponse, error) {
	i.Calls = append(i.Calls, types.OpFetchAlbum)
	if i.AlbumFunc != nil {
		return i.AlbumFunc(ctx)
	}
	return []*types.LyricsResponse{{Title: "fetch_album", Artist: "Artist", Source: i.Name}}, nil
}

func (i *Instance) FetchPlaylist(ctx context.Context) ([]*types.LyricsResponse, error) {
	i.Calls = append(i.Calls, types.OpFetchPlaylist)
	if i.PlaylistFunc != nil {
		return i.PlaylistFunc(ctx)
	}
	return []*types.LyricsResponse{{Title: "fetch_playlist", Artist: "Artist", Source: i.Name}}, nil
}

// DescribedInstance is an Instance that also reports collection info
type DescribedInstance struct {
	*Instance
}

func (d DescribedInstance) CollectionInfo(context.Context) (*types.Collection, error) {
	return d.Collection, nil
}
