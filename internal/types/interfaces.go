// Package types defines interfaces for lrcfetch components.
package types

import "context"

// Plugin is a provider type: the handle discovery yields and the registry
// orders. It never talks to the network itself; New does.
type Plugin interface {
	// Descriptor returns the provider's immutable metadata
	Descriptor() Descriptor

	// APIVersion returns the contract version the plugin was built against
	APIVersion() int

	// DefaultConfig returns provider defaults (empty when there are none)
	DefaultConfig() PluginConfig

	// ValidateConfig fails with ErrConfiguration when required fields are
	// missing or malformed
	ValidateConfig(cfg PluginConfig) error

	// RetryPolicy returns the retry settings for this provider type
	RetryPolicy() RetryPolicy

	// New builds an instance bound to url. It may authenticate and fail.
	New(ctx context.Context, url string, cfg PluginConfig) (Provider, error)
}

// Provider is one instance, owned by the orchestrator for a single request.
type Provider interface {
	// Fetch returns lyrics for the bound URL
	Fetch(ctx context.Context) (*LyricsResponse, error)

	// FetchAlbum returns lyrics for every album track. Providers that do
	// not declare CapAlbum return ErrUnsupported.
	FetchAlbum(ctx context.Context) ([]*LyricsResponse, error)

	// FetchPlaylist returns lyrics for every playlist track. Providers that
	// do not declare CapPlaylist return ErrUnsupported.
	FetchPlaylist(ctx context.Context) ([]*LyricsResponse, error)
}

// CollectionDescriber is implemented by providers that can name the album
// or playlist behind their URL. It is only used for folder naming.
type CollectionDescriber interface {
	CollectionInfo(ctx context.Context) (*Collection, error)
}

// HookProvider is implemented by plugins that ship their own lifecycle hooks.
// They are registered once, when the registry is built.
type HookProvider interface {
	BeforeFetchHooks() []Hook
	AfterFetchHooks() []Hook
}

// RequireKeys returns ErrConfiguration naming every key that is absent or
// blank in cfg.
func RequireKeys(provider string, cfg PluginConfig, keys ...string) error {
	var missing []string
	for _, k := range keys {
		if cfg.String(k) == "" {
			missing = append(missing, k)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	reason := "missing required key " + missing[0]
	if len(missing) > 1 {
		reason = "missing required keys " + joinKeys(missing)
	}
	return ErrConfiguration{Provider: provider, Reason: reason}
}

func joinKeys(keys []string) string {
	out := keys[0]
	for _, k := range keys[1:] {
		out += ", " + k
	}
	return out
}
