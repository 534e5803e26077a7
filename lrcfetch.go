// Package lrcfetch fetches synced lyrics from pluggable providers and saves
// them as LRC files.
//
// This package mirrors the CLI functionality. Provider packages outside this
// module implement Plugin and call Register from init.
package lrcfetch

import (
	"github.com/mydehq/lrcfetch/internal/api"
	"github.com/mydehq/lrcfetch/internal/lrc"
	"github.com/mydehq/lrcfetch/internal/provider"
	"github.com/mydehq/lrcfetch/internal/retry"
	"github.com/mydehq/lrcfetch/internal/types"
	"github.com/mydehq/lrcfetch/internal/version"
)

// Re-export the provider contract
type (
	Plugin              = types.Plugin
	Provider            = types.Provider
	CollectionDescriber = types.CollectionDescriber
	HookProvider        = types.HookProvider
	Descriptor          = types.Descriptor
	ConfigField         = types.ConfigField
	PluginConfig        = types.PluginConfig
	Capability          = types.Capability
	LyricsType          = types.LyricsType
	LyricsResponse      = types.LyricsResponse
	LyricsLine          = types.LyricsLine
	LyricsWord          = types.LyricsWord
	Collection          = types.Collection
	RetryPolicy         = types.RetryPolicy
	Hook                = types.Hook
	FetchEvent          = types.FetchEvent
	FetchOp             = types.FetchOp
	ErrorKind           = types.ErrorKind

	// Embeddable helpers for provider implementations
	Defaults = provider.Defaults
	Base     = provider.Base

	// Provider discovery
	Source      = provider.Source
	SourceFunc  = provider.SourceFunc
	SourceEntry = provider.Entry
)

// Re-export the error taxonomy. Providers return these (by value or by
// pointer) so failures are classified and retried correctly.
type (
	ErrNoProviders        = types.ErrNoProviders
	ErrProviderLoad       = types.ErrProviderLoad
	ErrVersionMismatch    = types.ErrVersionMismatch
	ErrNoMatchingProvider = types.ErrNoMatchingProvider
	ErrConfiguration      = types.ErrConfiguration
	ErrCorruptedConfig    = types.ErrCorruptedConfig
	ErrProvider           = types.ErrProvider
	ErrLyricsNotFound     = types.ErrLyricsNotFound
	ErrRateLimited        = types.ErrRateLimited
	ErrAuth               = types.ErrAuth
	ErrUnsupported        = types.ErrUnsupported
	ErrAPIError           = types.ErrAPIError
)

const (
	KindUnknown            = types.KindUnknown
	KindNoProviders        = types.KindNoProviders
	KindProviderLoad       = types.KindProviderLoad
	KindVersionMismatch    = types.KindVersionMismatch
	KindNoMatchingProvider = types.KindNoMatchingProvider
	KindConfiguration      = types.KindConfiguration
	KindCorruptedConfig    = types.KindCorruptedConfig
	KindProvider           = types.KindProvider
	KindLyricsNotFound     = types.KindLyricsNotFound
	KindRateLimit          = types.KindRateLimit
	KindAuth               = types.KindAuth
	KindUnsupported        = types.KindUnsupported
	KindConnection         = types.KindConnection
	KindTimeout            = types.KindTimeout

	OpFetch         = types.OpFetch
	OpFetchAlbum    = types.OpFetchAlbum
	OpFetchPlaylist = types.OpFetchPlaylist
)

// Re-export the orchestrator
type (
	Client       = api.Client
	Option       = api.Option
	Options      = api.Options
	Report       = api.Report
	Event        = types.Event
	EventType    = types.EventType
	EventHandler = types.EventHandler
	Sleeper      = retry.Sleeper
)

const (
	APIVersion = types.APIVersion

	LyricsPlain      = types.LyricsPlain
	LyricsSynced     = types.LyricsSynced
	LyricsRichSynced = types.LyricsRichSynced

	CapSingleTrack = types.CapSingleTrack
	CapAlbum       = types.CapAlbum
	CapPlaylist    = types.CapPlaylist
	CapSearch      = types.CapSearch

	EventInfo     = types.EventInfo
	EventProgress = types.EventProgress
	EventSuccess  = types.EventSuccess
	EventWarning  = types.EventWarning
	EventError    = types.EventError
)

// Re-export registration and helpers
var (
	Register             = provider.Register
	RegisterFunc         = provider.RegisterFunc
	DefaultRetryPolicy   = types.DefaultRetryPolicy
	RequireKeys          = types.RequireKeys
	KindOf               = types.KindOf
	IsConfigurationError = types.IsConfigurationError
	InTaxonomy           = types.InTaxonomy
	ParseLRC             = lrc.Parse
	Builtin              = provider.Builtin
	StaticSource         = provider.StaticSource
)

// Re-export the client and its options
var (
	New           = api.New
	WithConfig    = api.WithConfig
	WithSource    = api.WithSource
	WithLogger    = api.WithLogger
	WithEvents    = api.WithEvents
	WithSleeper   = api.WithSleeper
	WithDirectory = api.WithDirectory
	WithForce     = api.WithForce
)

// Version returns the lrcfetch version
func Version() string {
	return version.Get()
}
