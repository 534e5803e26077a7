// Package types defines custom error types for lrcfetch.
package types

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"syscall"
	"time"
)

// ErrorKind is the closed classification of failures that retry policies
// and the CLI reason about.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindNoProviders
	KindProviderLoad
	KindVersionMismatch
	KindNoMatchingProvider
	KindConfiguration
	KindCorruptedConfig
	KindProvider
	KindLyricsNotFound
	KindRateLimit
	KindAuth
	KindUnsupported
	KindConnection
	KindTimeout
)

var kindNames = map[ErrorKind]string{
	KindUnknown:            "unknown",
	KindNoProviders:        "no_providers",
	KindProviderLoad:       "provider_load",
	KindVersionMismatch:    "version_mismatch",
	KindNoMatchingProvider: "no_matching_provider",
	KindConfiguration:      "configuration",
	KindCorruptedConfig:    "corrupted_config",
	KindProvider:           "provider",
	KindLyricsNotFound:     "lyrics_not_found",
	KindRateLimit:          "rate_limit",
	KindAuth:               "auth",
	KindUnsupported:        "unsupported",
	KindConnection:         "connection",
	KindTimeout:            "timeout",
}

func (k ErrorKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ErrNoProviders indicates discovery produced no usable provider
type ErrNoProviders struct{}

func (e ErrNoProviders) Error() string {
	return "no providers available: install a provider to continue"
}

// ErrProviderLoad indicates a discovered entry could not be turned into a plugin
type ErrProviderLoad struct {
	Entry  string
	Reason string
	Err    error
}

func (e ErrProviderLoad) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to load provider %q: %s: %v", e.Entry, e.Reason, e.Err)
	}
	return fmt.Sprintf("failed to load provider %q: %s", e.Entry, e.Reason)
}

func (e ErrProviderLoad) Unwrap() error { return e.Err }

// ErrVersionMismatch indicates a provider was built against another contract version
type ErrVersionMismatch struct {
	Provider  string
	Version   int
	Supported int
}

func (e ErrVersionMismatch) Error() string {
	return fmt.Sprintf("provider %q requires API version %d, but version %d is supported",
		e.Provider, e.Version, e.Supported)
}

// ErrNoMatchingProvider indicates no provider pattern matched the URL
type ErrNoMatchingProvider struct {
	URL       string
	Installed []string
}

func (e ErrNoMatchingProvider) Error() string {
	if len(e.Installed) == 0 {
		return fmt.Sprintf("no provider found for URL: %s", e.URL)
	}
	return fmt.Sprintf("no provider found for URL: %s (installed: %s)", e.URL, strings.Join(e.Installed, ", "))
}

// ErrConfiguration indicates the config document or a provider section is invalid
type ErrConfiguration struct {
	Provider string // empty for document-level problems
	Reason   string
	Err      error
}

func (e ErrConfiguration) Error() string {
	msg := e.Reason
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg = fmt.Sprintf("%s: %v", msg, e.Err)
		}
	}
	if e.Provider != "" {
		return fmt.Sprintf("invalid config for provider %q: %s", e.Provider, msg)
	}
	return fmt.Sprintf("invalid config: %s", msg)
}

func (e ErrConfiguration) Unwrap() error { return e.Err }

// ErrCorruptedConfig indicates the config file exists but cannot be parsed
type ErrCorruptedConfig struct {
	Path string
	Err  error
}

func (e ErrCorruptedConfig) Error() string {
	return fmt.Sprintf("config file at %s is corrupted: %v", e.Path, e.Err)
}

func (e ErrCorruptedConfig) Unwrap() error { return e.Err }

// ErrProvider is the generic provider-side failure
type ErrProvider struct {
	Provider string
	Message  string
	Err      error
}

func (e ErrProvider) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Message, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Provider, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Provider, e.Message)
	}
}

func (e ErrProvider) Unwrap() error { return e.Err }

// ErrLyricsNotFound indicates the track exists but has no lyrics
type ErrLyricsNotFound struct {
	Provider string
	Track    string
}

func (e ErrLyricsNotFound) Error() string {
	if e.Track == "" {
		return fmt.Sprintf("%s: lyrics not found", e.Provider)
	}
	return fmt.Sprintf("%s: lyrics not found for %s", e.Provider, e.Track)
}

// ErrRateLimited indicates the provider asked us to slow down
type ErrRateLimited struct {
	Provider   string
	RetryAfter time.Duration // zero when the provider gave no hint
}

func (e ErrRateLimited) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s: rate limited (retry after %s)", e.Provider, e.RetryAfter)
	}
	return fmt.Sprintf("%s: rate limited", e.Provider)
}

// ErrAuth indicates a provider session or credential problem
type ErrAuth struct {
	Provider string
	Reason   string
}

func (e ErrAuth) Error() string {
	return fmt.Sprintf("%s: authentication failed: %s", e.Provider, e.Reason)
}

// ErrUnsupported indicates a batch operation the provider does not implement
type ErrUnsupported struct {
	Provider  string
	Operation FetchOp
}

func (e ErrUnsupported) Error() string {
	return fmt.Sprintf("%s does not support %s", e.Provider, e.Operation)
}

// ErrAPIError indicates an unexpected response from an external API
type ErrAPIError struct {
	Service    string
	StatusCode int
	Message    string
}

func (e ErrAPIError) Error() string {
	return fmt.Sprintf("%s API error (%d): %s", e.Service, e.StatusCode, e.Message)
}

// AsError finds the first error in err's chain that is a T or a *T and
// returns it by value. Providers may return either form.
func AsError[T error](err error) (T, bool) {
	var v T
	if err == nil {
		return v, false
	}
	if errors.As(err, &v) {
		return v, true
	}
	var p *T
	if errors.As(err, &p) && p != nil {
		return *p, true
	}
	return v, false
}

func is[T error](err error) bool {
	_, ok := AsError[T](err)
	return ok
}

// KindOf classifies err. Specific typed errors win. A transport failure is
// classified next, so an ErrProvider wrapping a timeout or connection error
// stays retryable; a bare ErrProvider is KindProvider.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}

	switch {
	case is[ErrNoProviders](err):
		return KindNoProviders
	case is[ErrVersionMismatch](err):
		return KindVersionMismatch
	case is[ErrProviderLoad](err):
		return KindProviderLoad
	case is[ErrNoMatchingProvider](err):
		return KindNoMatchingProvider
	case is[ErrCorruptedConfig](err):
		return KindCorruptedConfig
	case is[ErrConfiguration](err):
		return KindConfiguration
	case is[ErrLyricsNotFound](err):
		return KindLyricsNotFound
	case is[ErrRateLimited](err):
		return KindRateLimit
	case is[ErrAuth](err):
		return KindAuth
	case is[ErrUnsupported](err):
		return KindUnsupported
	case is[ErrAPIError](err):
		return KindProvider
	}

	if kind := transportKind(err); kind != KindUnknown {
		return kind
	}

	if is[ErrProvider](err) {
		return KindProvider
	}
	return KindUnknown
}

func transportKind(err error) ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return KindConnection
	}

	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, io.ErrUnexpectedEOF) {
		return KindConnection
	}
	return KindUnknown
}

// IsConfigurationError reports whether err is a configuration problem,
// including a corrupted config file.
func IsConfigurationError(err error) bool {
	k := KindOf(err)
	return k == KindConfiguration || k == KindCorruptedConfig
}

// InTaxonomy reports whether err already carries a provider-facing kind
// and needs no further decoration.
func InTaxonomy(err error) bool {
	switch KindOf(err) {
	case KindUnknown, KindConnection, KindTimeout:
		return is[ErrProvider](err)
	}
	return true
}
