// Package api provides the core implementation for lrcfetch operations.
// This package is used by both the CLI and the public library API.
package api

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/mydehq/lrcfetch/internal/config"
	"github.com/mydehq/lrcfetch/internal/metrics"
	"github.com/mydehq/lrcfetch/internal/provider"
	"github.com/mydehq/lrcfetch/internal/retry"
	"github.com/mydehq/lrcfetch/internal/types"
)

// Option is a functional option for configuring a Client
type Option func(*Options)

// Options holds configuration for a Client
type Options struct {
	ConfigPath string
	Config     *config.Manager
	Source     provider.Source
	Logger     *log.Logger
	Events     types.EventHandler
	Sleeper    retry.Sleeper
	Metrics    *metrics.Collector
	Directory  string
	Force      bool
}

// WithConfig specifies a custom config file path
func WithConfig(path string) Option {
	return func(o *Options) { o.ConfigPath = path }
}

// WithConfigManager uses an already loaded configuration
func WithConfigManager(m *config.Manager) Option {
	return func(o *Options) { o.Config = m }
}

// WithSource replaces the built-in provider source
func WithSource(src provider.Source) Option {
	return func(o *Options) { o.Source = src }
}

// WithLogger sets the logger shared by the registry, retry executor and writer
func WithLogger(l *log.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithEvents sets the progress event handler
func WithEvents(h types.EventHandler) Option {
	return func(o *Options) { o.Events = h }
}

// WithSleeper replaces the retry backoff wait
func WithSleeper(s retry.Sleeper) Option {
	return func(o *Options) { o.Sleeper = s }
}

// WithMetrics records fetch metrics into c
func WithMetrics(c *metrics.Collector) Option {
	return func(o *Options) { o.Metrics = c }
}

// WithDirectory overrides the configured download path
func WithDirectory(dir string) Option {
	return func(o *Options) { o.Directory = dir }
}

// WithForce overwrites existing lyrics files
func WithForce() Option {
	return func(o *Options) { o.Force = true }
}

// Client resolves URLs to providers and runs their fetch operations.
type Client struct {
	cfg      *config.Manager
	registry *provider.Registry
	executor *retry.Executor
	metrics  *metrics.Collector
	logger   *log.Logger
	events   types.EventHandler
	dir      string
	force    bool
}

// New loads the configuration and the provider registry. Missing provider
// defaults are merged into the stored configuration and saved.
func New(opts ...Option) (*Client, error) {
	o := &Options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	if o.Source == nil {
		o.Source = provider.Builtin()
	}

	cfg := o.Config
	if cfg == nil {
		var err error
		cfg, err = config.Load(o.ConfigPath, config.WithLogger(o.Logger))
		if err != nil {
			return nil, err
		}
	}

	hooks := retry.NewHooks()
	registry, err := provider.Load(o.Source, provider.WithLogger(o.Logger), provider.WithHooks(hooks))
	if err != nil {
		return nil, err
	}

	if cfg.MergeDefaults(registry.Plugins()) {
		if err := cfg.Save(); err != nil {
			o.Logger.Warn("Failed to save merged provider defaults", "path", cfg.Path(), "err", err)
		}
	}

	collector := o.Metrics
	if collector == nil && cfg.Get().Metrics.Textfile != "" {
		collector = metrics.New()
	}
	if collector != nil {
		collector.Attach(hooks, registry.Names()...)
	}

	execOpts := []retry.Option{retry.WithHooks(hooks), retry.WithLogger(o.Logger)}
	if o.Sleeper != nil {
		execOpts = append(execOpts, retry.WithSleeper(o.Sleeper))
	}

	return &Client{
		cfg:      cfg,
		registry: registry,
		executor: retry.New(execOpts...),
		metrics:  collector,
		logger:   o.Logger,
		events:   o.Events,
		dir:      o.Directory,
		force:    o.Force,
	}, nil
}

// Registry returns the loaded provider registry
func (c *Client) Registry() *provider.Registry {
	return c.registry
}

// Config returns the configuration manager
func (c *Client) Config() *config.Manager {
	return c.cfg
}

// Hooks returns the per-provider hook registry used for every fetch
func (c *Client) Hooks() *retry.Hooks {
	return c.executor.Hooks()
}

// Resolve returns the provider responsible for url
func (c *Client) Resolve(url string) (types.Plugin, error) {
	return c.registry.Resolve(url)
}

// FetchOne fetches lyrics for a single track URL.
func (c *Client) FetchOne(ctx context.Context, url string) (*types.LyricsResponse, error) {
	s, err := c.open(ctx, url)
	if err != nil {
		return nil, err
	}

	responses, err := c.run(ctx, s, types.OpFetch)
	if err != nil {
		return nil, err
	}
	return responses[0], nil
}

// FetchBatch fetches lyrics for a track, album or playlist URL. See BatchOp
// for how the operation is chosen.
func (c *Client) FetchBatch(ctx context.Context, url string) ([]*types.LyricsResponse, error) {
	s, err := c.open(ctx, url)
	if err != nil {
		return nil, err
	}
	return c.run(ctx, s, BatchOp(s.desc, url))
}

// BatchOp picks the fetch operation for url. Album and playlist operations
// are used only when the provider declares the capability and the URL text
// contains "album" or "playlist"; everything else is a single fetch.
func BatchOp(d types.Descriptor, url string) types.FetchOp {
	lower := strings.ToLower(url)
	switch {
	case d.HasCapability(types.CapAlbum) && strings.Contains(lower, "album"):
		return types.OpFetchAlbum
	case d.HasCapability(types.CapPlaylist) && strings.Contains(lower, "playlist"):
		return types.OpFetchPlaylist
	default:
		return types.OpFetch
	}
}

// WriteMetrics writes the metrics textfile when one is configured.
func (c *Client) WriteMetrics() error {
	path := c.cfg.Get().Metrics.Textfile
	if c.metrics == nil || path == "" {
		return nil
	}
	if err := c.metrics.WriteTextfile(path); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}

// session is one resolved and constructed provider instance.
type session struct {
	id       string
	url      string
	plugin   types.Plugin
	desc     types.Descriptor
	instance types.Provider
}

// open resolves url, validates auth config and constructs the provider.
func (c *Client) open(ctx context.Context, url string) (*session, error) {
	p, err := c.registry.Resolve(url)
	if err != nil {
		return nil, err
	}

	d := p.Descriptor()
	s := &session{id: uuid.NewString(), url: url, plugin: p, desc: d}
	c.logger.Debug("Resolved provider", "provider", d.Name, "url", url, "request", s.id)

	if d.RequiresAuth {
		if err := c.cfg.ValidatePlugin(p); err != nil {
			return nil, err
		}
		c.emit(types.EventProgress, fmt.Sprintf("Authenticating with %s", d.Name), d.Name)
	}

	s.instance, err = p.New(ctx, url, c.cfg.ForPlugin(p))
	if err != nil {
		return nil, decorate(d.Name, err)
	}
	if d.RequiresAuth {
		c.emit(types.EventSuccess, fmt.Sprintf("Authenticated with %s", d.Name), d.Name)
	}
	return s, nil
}

func (c *Client) run(ctx context.Context, s *session, op types.FetchOp) ([]*types.LyricsResponse, error) {
	req := retry.Request{
		ID:       s.id,
		Provider: s.desc.Name,
		URL:      s.url,
		Op:       op,
		Policy:   s.plugin.RetryPolicy(),
	}

	responses, err := c.executor.Run(ctx, req, s.call(op))
	if err != nil {
		return nil, decorate(s.desc.Name, err)
	}
	return responses, nil
}

func (s *session) call(op types.FetchOp) retry.Call {
	switch op {
	case types.OpFetchAlbum:
		return s.instance.FetchAlbum
	case types.OpFetchPlaylist:
		return s.instance.FetchPlaylist
	default:
		return func(ctx context.Context) ([]*types.LyricsResponse, error) {
			resp, err := s.instance.Fetch(ctx)
			if err != nil {
				return nil, err
			}
			if resp == nil {
				return nil, types.ErrProvider{Provider: s.desc.Name, Message: "returned no lyrics"}
			}
			return []*types.LyricsResponse{resp}, nil
		}
	}
}

// decorate wraps errors outside the taxonomy so no raw transport error
// leaves the client.
func decorate(providerName string, err error) error {
	if err == nil || types.InTaxonomy(err) {
		return err
	}
	return types.ErrProvider{Provider: providerName, Err: err}
}

func (c *Client) emit(t types.EventType, msg string, data any) {
	if c.events != nil {
		c.events(types.Event{Type: t, Message: msg, Data: data})
	}
}
