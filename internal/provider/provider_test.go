package provider

import (
	"context"
	"errors"
	"io"
	"reflect"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/mydehq/lrcfetch/internal/provider/providertest"
	"github.com/mydehq/lrcfetch/internal/types"
)

var quiet = WithLogger(log.New(io.Discard))

func alphaBeta() (*providertest.Plugin, *providertest.Plugin) {
	return providertest.New("Beta", `beta\.com`, types.CapSingleTrack),
		providertest.New("Alpha", `alpha\.com`, types.CapSingleTrack)
}

func TestLoad_SortsCaseInsensitively(t *testing.T) {
	src := StaticSource(
		providertest.New("zeta", `zeta`, types.CapSingleTrack),
		providertest.New("Beta", `beta`, types.CapSingleTrack),
		providertest.New("alpha", `alpha`, types.CapSingleTrack),
		providertest.New("Gamma", `gamma`, types.CapSingleTrack),
	)

	reg, err := Load(src, quiet)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []string{"alpha", "Beta", "Gamma", "zeta"}
	if got := reg.Names(); !reflect.DeepEqual(got, expected) {
		t.Errorf("Names() = %v, want %v", got, expected)
	}
}

func TestLoad_Idempotent(t *testing.T) {
	beta, alpha := alphaBeta()
	src := StaticSource(beta, alpha)

	first, err := Load(src, quiet)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Load(src, quiet)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(first.Plugins(), second.Plugins()) {
		t.Errorf("loads differ: %v vs %v", first.Names(), second.Names())
	}
}

func TestLoad_EmptySource(t *testing.T) {
	_, err := Load(StaticSource(), quiet)
	if !errors.As(err, new(types.ErrNoProviders)) {
		t.Errorf("expected ErrNoProviders, got %v", err)
	}
}

func TestLoad_SkipsInvalidEntries(t *testing.T) {
	good := providertest.New("Good", `good\.com`, types.CapSingleTrack)
	noName := providertest.New("", `x`, types.CapSingleTrack)
	noPattern := providertest.New("NoPattern", `x`, types.CapSingleTrack)
	noPattern.Desc.Pattern = nil
	future := providertest.New("Future", `future`, types.CapSingleTrack)
	future.Version = types.APIVersion + 1
	dupe := providertest.New("GOOD", `other`, types.CapSingleTrack)

	src := SourceFunc(func() []Entry {
		return []Entry{
			{Name: "good", Load: func() (types.Plugin, error) { return good, nil }},
			{Name: "broken", Load: func() (types.Plugin, error) { return nil, errors.New("import failed") }},
			{Name: "nil", Load: func() (types.Plugin, error) { return nil, nil }},
			{Name: "noloader"},
			{Name: "noname", Load: func() (types.Plugin, error) { return noName, nil }},
			{Name: "nopattern", Load: func() (types.Plugin, error) { return noPattern, nil }},
			{Name: "future", Load: func() (types.Plugin, error) { return future, nil }},
			{Name: "dupe", Load: func() (types.Plugin, error) { return dupe, nil }},
		}
	})

	reg, err := Load(src, quiet)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := reg.Names(); !reflect.DeepEqual(got, []string{"Good"}) {
		t.Errorf("Names() = %v, want [Good]", got)
	}

	skipped := reg.Skipped()
	if len(skipped) != 7 {
		t.Fatalf("expected 7 skipped entries, got %d: %v", len(skipped), skipped)
	}

	var mismatch types.ErrVersionMismatch
	found := false
	for _, err := range skipped {
		if errors.As(err, &mismatch) {
			found = true
		}
	}
	if !found {
		t.Error("expected a version mismatch among skipped entries")
	}
	if types.KindOf(skipped[len(skipped)-1]) != types.KindProviderLoad {
		t.Errorf("expected duplicate to be a load error, got %v", skipped[len(skipped)-1])
	}
}

func TestLoad_AllSkippedIsFatal(t *testing.T) {
	old := providertest.New("Old", `old`, types.CapSingleTrack)
	old.Version = 99

	_, err := Load(StaticSource(old), quiet)
	if types.KindOf(err) != types.KindNoProviders {
		t.Errorf("expected no providers error, got %v", err)
	}
}

func TestResolve(t *testing.T) {
	beta, alpha := alphaBeta()
	broad := providertest.New("Omni", `\.com/track/`, types.CapSingleTrack)

	reg, err := Load(StaticSource(beta, broad, alpha), quiet)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		url      string
		expected string
	}{
		{"https://alpha.com/track/1", "Alpha"},
		{"https://beta.com/track/1", "Beta"},
		{"https://gamma.com/track/1", "Omni"},
		{"https://gamma.com/album/1", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			p, err := reg.Resolve(tt.url)
			if tt.expected == "" {
				var nm types.ErrNoMatchingProvider
				if !errors.As(err, &nm) {
					t.Fatalf("expected ErrNoMatchingProvider, got %v", err)
				}
				if !reflect.DeepEqual(nm.Installed, []string{"Alpha", "Beta", "Omni"}) {
					t.Errorf("unexpected installed list: %v", nm.Installed)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := p.Descriptor().Name; got != tt.expected {
				t.Errorf("Resolve(%q) = %s, want %s", tt.url, got, tt.expected)
			}

			again, _ := reg.Resolve(tt.url)
			if again != p {
				t.Error("resolution is not deterministic")
			}
		})
	}
}

func TestResolve_NoPlugins(t *testing.T) {
	if p := Resolve(nil, "https://alpha.com"); p != nil {
		t.Errorf("expected nil, got %v", p)
	}
}

func TestRegistry_Lookup(t *testing.T) {
	beta, alpha := alphaBeta()
	reg, err := Load(StaticSource(beta, alpha), quiet)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p, ok := reg.Lookup("alpha"); !ok || p != alpha {
		t.Errorf("Lookup(alpha) = %v, %v", p, ok)
	}
	if _, ok := reg.Lookup("delta"); ok {
		t.Error("Lookup(delta) should fail")
	}

	expected := []string{`1. Alpha (alpha\.com)`, `2. Beta (beta\.com)`}
	if got := reg.Describe(); !reflect.DeepEqual(got, expected) {
		t.Errorf("Describe() = %v, want %v", got, expected)
	}
}

func TestLoad_RegistersPluginHooks(t *testing.T) {
	var fired []string
	p := providertest.New("Hooked", `hooked`, types.CapSingleTrack)
	p.Before = []types.Hook{func(types.FetchEvent) error { fired = append(fired, "before"); return nil }}
	p.After = []types.Hook{func(types.FetchEvent) error { fired = append(fired, "after"); return nil }}
	other := providertest.New("Plain", `plain`, types.CapSingleTrack)

	reg, err := Load(StaticSource(providertest.HookPlugin{Plugin: p}, other), quiet)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if n := len(reg.Hooks().Before("hooked")); n != 1 {
		t.Errorf("expected 1 before hook, got %d", n)
	}
	if n := len(reg.Hooks().After("HOOKED")); n != 1 {
		t.Errorf("expected 1 after hook, got %d", n)
	}
	if n := len(reg.Hooks().Before("plain")) + len(reg.Hooks().After("plain")); n != 0 {
		t.Errorf("expected no hooks for Plain, got %d", n)
	}
}

type singleTrack struct {
	Defaults
	Base
}

func TestDefaultsAndBase(t *testing.T) {
	st := singleTrack{Base: Base{Name: "Single"}}

	if st.APIVersion() != types.APIVersion {
		t.Errorf("APIVersion() = %d, want %d", st.APIVersion(), types.APIVersion)
	}
	if len(st.DefaultConfig()) != 0 {
		t.Errorf("expected empty default config, got %v", st.DefaultConfig())
	}
	if err := st.ValidateConfig(types.PluginConfig{"anything": 1}); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}
	if st.RetryPolicy().MaxAttempts != 3 {
		t.Errorf("expected default retry policy, got %+v", st.RetryPolicy())
	}

	_, err := st.FetchAlbum(context.Background())
	var unsupported types.ErrUnsupported
	if !errors.As(err, &unsupported) || unsupported.Operation != types.OpFetchAlbum || unsupported.Provider != "Single" {
		t.Errorf("unexpected FetchAlbum error: %v", err)
	}
	if _, err := st.FetchPlaylist(context.Background()); types.KindOf(err) != types.KindUnsupported {
		t.Errorf("unexpected FetchPlaylist error: %v", err)
	}
}

func TestBuiltin_Register(t *testing.T) {
	saved := builtin
	defer func() { builtin = saved }()
	builtin = nil

	Register(providertest.New("One", `one`, types.CapSingleTrack))
	RegisterFunc("two", func() (types.Plugin, error) { return nil, errors.New("unavailable") })

	entries := Builtin().Entries()
	if len(entries) != 2 || entries[0].Name != "One" || entries[1].Name != "two" {
		t.Fatalf("unexpected entries: %+v", entries)
	}

	reg, err := Load(Builtin(), quiet)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reg.Skipped()) != 1 {
		t.Errorf("expected the failing entry to be skipped, got %v", reg.Skipped())
	}
}
