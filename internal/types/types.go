// Package types defines core domain types used throughout lrcfetch.
package types

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// APIVersion is the provider contract version. Plugins built against a
// different version are skipped at load time.
const APIVersion = 1

// LyricsType is a bit-set of the lyrics flavours a provider can return.
type LyricsType uint8

const (
	LyricsPlain LyricsType = 1 << iota
	LyricsSynced
	LyricsRichSynced
)

// Has reports whether every flag in t is set.
func (l LyricsType) Has(t LyricsType) bool {
	return t != 0 && l&t == t
}

// Names returns human-readable names for the set flags, in declaration order.
func (l LyricsType) Names() []string {
	var names []string
	if l.Has(LyricsPlain) {
		names = append(names, "Plain")
	}
	if l.Has(LyricsSynced) {
		names = append(names, "Synced")
	}
	if l.Has(LyricsRichSynced) {
		names = append(names, "Rich Synced")
	}
	return names
}

// Capability is a bit-set of operations a provider declares support for.
// The declared set is the only thing the orchestrator consults before
// calling a batch operation.
type Capability uint8

const (
	CapSingleTrack Capability = 1 << iota
	CapAlbum
	CapPlaylist
	CapSearch
)

// Has reports whether every flag in c is set.
func (c Capability) Has(o Capability) bool {
	return o != 0 && c&o == o
}

// Names returns human-readable names for the set flags, in declaration order.
func (c Capability) Names() []string {
	var names []string
	if c.Has(CapSingleTrack) {
		names = append(names, "track")
	}
	if c.Has(CapAlbum) {
		names = append(names, "album")
	}
	if c.Has(CapPlaylist) {
		names = append(names, "playlist")
	}
	if c.Has(CapSearch) {
		names = append(names, "search")
	}
	return names
}

// ConfigField describes one user-configurable provider setting.
type ConfigField struct {
	Key         string
	Description string
}

// Descriptor is the immutable metadata a provider publishes about itself.
type Descriptor struct {
	// Name is the display name. Lower-cased, it is also the config section key.
	Name         string
	Pattern      *regexp.Regexp
	RequiresAuth bool
	Description  string
	LyricsTypes  LyricsType
	Capabilities Capability
	// ConfigSchema drives the interactive config editor, in display order.
	ConfigSchema []ConfigField
}

// Key returns the lower-cased name used for config sections and hook lookup.
func (d Descriptor) Key() string {
	return strings.ToLower(d.Name)
}

// Matches reports whether the pattern is found anywhere in url.
func (d Descriptor) Matches(url string) bool {
	return d.Pattern != nil && d.Pattern.MatchString(url)
}

// HasCapability reports whether the provider declares c.
func (d Descriptor) HasCapability(c Capability) bool {
	return d.Capabilities.Has(c)
}

// PluginConfig is a provider's configuration section.
type PluginConfig map[string]any

// Clone returns a shallow copy.
func (c PluginConfig) Clone() PluginConfig {
	out := make(PluginConfig, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// String returns the value for key as a string, or "" when absent.
func (c PluginConfig) String(key string) string {
	v, ok := c[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// LyricsWord is a single word with timing, for karaoke-style lyrics.
type LyricsWord struct {
	Word    string `json:"word"`
	StartMs int64  `json:"start_ms"`
	EndMs   int64  `json:"end_ms"`
}

// LyricsLine is a single line of lyrics with optional timing.
type LyricsLine struct {
	Text    string       `json:"text"`
	StartMs *int64       `json:"start_ms,omitempty"`
	EndMs   *int64       `json:"end_ms,omitempty"`
	Words   []LyricsWord `json:"words,omitempty"`
}

// Timed reports whether the line carries a start timestamp.
func (l LyricsLine) Timed() bool {
	return l.StartMs != nil
}

// LyricsResponse is what every provider returns for one track.
type LyricsResponse struct {
	Title      string         `json:"title"`
	Artist     string         `json:"artist"`
	Album      string         `json:"album,omitempty"`
	Source     string         `json:"source"`
	Synced     bool           `json:"synced"`
	RichSynced bool           `json:"rich_synced"`
	DurationMs int64          `json:"duration_ms,omitempty"`
	Lines      []LyricsLine   `json:"lines"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// TrackNumber returns metadata["track_number"] as an int, or 0.
func (r *LyricsResponse) TrackNumber() int {
	switch n := r.Metadata["track_number"].(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

// Explicit returns metadata["explicit"] as a bool.
func (r *LyricsResponse) Explicit() bool {
	b, _ := r.Metadata["explicit"].(bool)
	return b
}

// Collection describes an album or playlist, when a provider can tell.
type Collection struct {
	Name        string
	Owner       string
	Artists     []string
	TotalTracks int
}

// RetryPolicy controls the retry executor for one provider type.
type RetryPolicy struct {
	MaxAttempts    int
	BaseBackoff    time.Duration
	RetryableKinds []ErrorKind
}

// DefaultRetryPolicy retries connectivity, timeout and rate-limit failures
// three times, starting at one second.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    3,
		BaseBackoff:    time.Second,
		RetryableKinds: []ErrorKind{KindConnection, KindTimeout, KindRateLimit},
	}
}

// MaxBackoff caps the doubling wait between attempts.
const MaxBackoff = 5 * time.Minute

// Backoff returns the wait after a failed attempt n (n >= 1), doubling from
// BaseBackoff and capped at MaxBackoff.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	if p.BaseBackoff <= 0 {
		return 0
	}
	if attempt < 1 {
		attempt = 1
	}
	d := p.BaseBackoff
	for i := 1; i < attempt; i++ {
		if d >= MaxBackoff/2 {
			return MaxBackoff
		}
		d *= 2
	}
	return min(d, MaxBackoff)
}

// IsRetryable reports whether err belongs to one of the retryable kinds.
func (p RetryPolicy) IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	kind := KindOf(err)
	for _, k := range p.RetryableKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// EventType represents the type of progress event
type EventType string

const (
	EventInfo     EventType = "info"
	EventProgress EventType = "progress"
	EventSuccess  EventType = "success"
	EventWarning  EventType = "warning"
	EventError    EventType = "error"
)

// Event represents a progress event during operations
type Event struct {
	Type    EventType `json:"type"`
	Message string    `json:"message"`
	Data    any       `json:"data,omitempty"`
}

// EventHandler receives progress events during operations
type EventHandler func(Event)

// FetchOp names the fetch-family operation being executed.
type FetchOp string

const (
	OpFetch         FetchOp = "fetch"
	OpFetchAlbum    FetchOp = "fetch_album"
	OpFetchPlaylist FetchOp = "fetch_playlist"
)

// FetchEvent is passed to lifecycle hooks. Before an attempt only the
// identifying fields are set; after the terminal outcome either Responses
// or Err is set.
type FetchEvent struct {
	RequestID string
	Provider  string
	URL       string
	Op        FetchOp
	Attempt   int
	Elapsed   time.Duration
	Responses []*LyricsResponse
	Err       error
}

// Hook observes fetch attempts. Hook failures never reach the caller.
type Hook func(ev FetchEvent) error
