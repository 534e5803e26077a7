// Package provider discovers, validates and resolves lyrics providers.
package provider

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/mydehq/lrcfetch/internal/retry"
	"github.com/mydehq/lrcfetch/internal/types"
)

// Entry is one discovered provider handle. Load may fail; a failing entry
// is skipped, not fatal.
type Entry struct {
	Name string
	Load func() (types.Plugin, error)
}

// Source yields candidate providers in a deterministic order.
type Source interface {
	Entries() []Entry
}

// SourceFunc adapts a function to Source
type SourceFunc func() []Entry

// Entries implements Source
func (f SourceFunc) Entries() []Entry { return f() }

// builtin is the static registration list, filled from init() functions
var builtin []Entry

// Register adds a plugin to the built-in source. Call it from init().
func Register(p types.Plugin) {
	name := p.Descriptor().Name
	builtin = append(builtin, Entry{
		Name: name,
		Load: func() (types.Plugin, error) { return p, nil },
	})
}

// RegisterFunc adds a lazily constructed plugin to the built-in source
func RegisterFunc(name string, load func() (types.Plugin, error)) {
	builtin = append(builtin, Entry{Name: name, Load: load})
}

// Builtin returns the source of every plugin registered in this binary
func Builtin() Source {
	return SourceFunc(func() []Entry {
		return append([]Entry(nil), builtin...)
	})
}

// StaticSource returns a source yielding exactly the given plugins
func StaticSource(plugins ...types.Plugin) Source {
	return SourceFunc(func() []Entry {
		entries := make([]Entry, 0, len(plugins))
		for _, p := range plugins {
			p := p
			entries = append(entries, Entry{
				Name: fmt.Sprintf("%T", p),
				Load: func() (types.Plugin, error) { return p, nil },
			})
		}
		return entries
	})
}

// Registry is the validated, ordered provider list. It is read-only after Load.
type Registry struct {
	plugins []types.Plugin
	skipped []error
	hooks   *retry.Hooks
}

type loadOptions struct {
	logger     *log.Logger
	apiVersion int
	hooks      *retry.Hooks
}

// LoadOption configures Load
type LoadOption func(*loadOptions)

// WithLogger sets the logger that reports skipped providers
func WithLogger(l *log.Logger) LoadOption {
	return func(o *loadOptions) { o.logger = l }
}

// WithAPIVersion overrides the supported contract version
func WithAPIVersion(v int) LoadOption {
	return func(o *loadOptions) { o.apiVersion = v }
}

// WithHooks registers plugin-provided hooks into h instead of a fresh registry
func WithHooks(h *retry.Hooks) LoadOption {
	return func(o *loadOptions) { o.hooks = h }
}

// Load builds a Registry from src. Entries that fail to load, lack
// metadata, target another API version or repeat an earlier name are
// logged and dropped. An empty result is ErrNoProviders.
func Load(src Source, opts ...LoadOption) (*Registry, error) {
	o := loadOptions{
		logger:     log.Default(),
		apiVersion: types.APIVersion,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.hooks == nil {
		o.hooks = retry.NewHooks()
	}

	reg := &Registry{hooks: o.hooks}
	seen := make(map[string]bool)

	for _, entry := range src.Entries() {
		p, err := validate(entry, o.apiVersion)
		if err != nil {
			o.logger.Warn("skipping provider", "entry", entry.Name, "err", err)
			reg.skipped = append(reg.skipped, err)
			continue
		}

		d := p.Descriptor()
		if seen[d.Key()] {
			err := types.ErrProviderLoad{Entry: entry.Name, Reason: fmt.Sprintf("duplicate provider name %q", d.Name)}
			o.logger.Warn("skipping provider", "entry", entry.Name, "err", err)
			reg.skipped = append(reg.skipped, err)
			continue
		}
		seen[d.Key()] = true

		if hp, ok := p.(types.HookProvider); ok {
			o.hooks.OnBeforeFetch(d.Key(), hp.BeforeFetchHooks()...)
			o.hooks.OnAfterFetch(d.Key(), hp.AfterFetchHooks()...)
		}

		o.logger.Debug("loaded provider", "name", d.Name, "pattern", d.Pattern.String())
		reg.plugins = append(reg.plugins, p)
	}

	if len(reg.plugins) == 0 {
		return nil, types.ErrNoProviders{}
	}

	sort.SliceStable(reg.plugins, func(i, j int) bool {
		return reg.plugins[i].Descriptor().Key() < reg.plugins[j].Descriptor().Key()
	})

	return reg, nil
}

func validate(entry Entry, apiVersion int) (types.Plugin, error) {
	if entry.Load == nil {
		return nil, types.ErrProviderLoad{Entry: entry.Name, Reason: "no loader"}
	}

	p, err := entry.Load()
	if err != nil {
		return nil, types.ErrProviderLoad{Entry: entry.Name, Reason: "load failed", Err: err}
	}
	if p == nil {
		return nil, types.ErrProviderLoad{Entry: entry.Name, Reason: "loader returned no provider"}
	}

	d := p.Descriptor()
	if strings.TrimSpace(d.Name) == "" {
		return nil, types.ErrProviderLoad{Entry: entry.Name, Reason: "missing name"}
	}
	if d.Pattern == nil {
		return nil, types.ErrProviderLoad{Entry: entry.Name, Reason: "missing url pattern"}
	}
	if v := p.APIVersion(); v != apiVersion {
		return nil, types.ErrVersionMismatch{Provider: d.Name, Version: v, Supported: apiVersion}
	}
	return p, nil
}

// Resolve returns the first plugin whose pattern is found in url, or nil.
// plugins must already be in registry order.
func Resolve(plugins []types.Plugin, url string) types.Plugin {
	for _, p := range plugins {
		if p.Descriptor().Matches(url) {
			return p
		}
	}
	return nil
}

// Plugins returns the ordered provider list
func (r *Registry) Plugins() []types.Plugin {
	return append([]types.Plugin(nil), r.plugins...)
}

// Skipped returns the errors for entries dropped during Load
func (r *Registry) Skipped() []error {
	return append([]error(nil), r.skipped...)
}

// Hooks returns the hook registry populated while loading
func (r *Registry) Hooks() *retry.Hooks {
	return r.hooks
}

// Resolve finds the provider for url or returns ErrNoMatchingProvider
// listing the installed providers.
func (r *Registry) Resolve(url string) (types.Plugin, error) {
	if p := Resolve(r.plugins, url); p != nil {
		return p, nil
	}
	return nil, types.ErrNoMatchingProvider{URL: url, Installed: r.Names()}
}

// Lookup finds a provider by case-insensitive name
func (r *Registry) Lookup(name string) (types.Plugin, bool) {
	key := strings.ToLower(name)
	for _, p := range r.plugins {
		if p.Descriptor().Key() == key {
			return p, true
		}
	}
	return nil, false
}

// Names returns provider display names in registry order
func (r *Registry) Names() []string {
	names := make([]string, len(r.plugins))
	for i, p := range r.plugins {
		names[i] = p.Descriptor().Name
	}
	return names
}

// Describe returns one numbered line per provider with its URL pattern
func (r *Registry) Describe() []string {
	lines := make([]string, len(r.plugins))
	for i, p := range r.plugins {
		d := p.Descriptor()
		lines[i] = fmt.Sprintf("%d. %s (%s)", i+1, d.Name, d.Pattern.String())
	}
	return lines
}
