package provider

import (
	"context"

	"github.com/mydehq/lrcfetch/internal/types"
)

// Defaults supplies the optional parts of types.Plugin. Embed it and
// override what differs.
type Defaults struct{}

// APIVersion returns the contract version this binary implements
func (Defaults) APIVersion() int { return types.APIVersion }

// DefaultConfig returns an empty config
func (Defaults) DefaultConfig() types.PluginConfig { return types.PluginConfig{} }

// ValidateConfig accepts any config
func (Defaults) ValidateConfig(types.PluginConfig) error { return nil }

// RetryPolicy returns types.DefaultRetryPolicy
func (Defaults) RetryPolicy() types.RetryPolicy { return types.DefaultRetryPolicy() }

// Base supplies the batch operations for single-track providers. Name must
// be set so the unsupported error identifies the provider.
type Base struct {
	Name string
}

// FetchAlbum always fails with ErrUnsupported
func (b Base) FetchAlbum(context.Context) ([]*types.LyricsResponse, error) {
	return nil, types.ErrUnsupported{Provider: b.Name, Operation: types.OpFetchAlbum}
}

// FetchPlaylist always fails with ErrUnsupported
func (b Base) FetchPlaylist(context.Context) ([]*types.LyricsResponse, error) {
	return nil, types.ErrUnsupported{Provider: b.Name, Operation: types.OpFetchPlaylist}
}
