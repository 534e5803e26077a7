package retry

import (
	"fmt"
	"strings"
	"sync"

	"github.com/mydehq/lrcfetch/internal/types"
)

// Hooks holds lifecycle hooks keyed by provider type. Hooks registered for
// one provider never fire for another. Registrations accumulate for the
// lifetime of the value.
type Hooks struct {
	mu     sync.RWMutex
	before map[string][]types.Hook
	after  map[string][]types.Hook
}

// NewHooks returns an empty hook registry
func NewHooks() *Hooks {
	return &Hooks{
		before: make(map[string][]types.Hook),
		after:  make(map[string][]types.Hook),
	}
}

// OnBeforeFetch registers hooks that run before every attempt for provider
func (h *Hooks) OnBeforeFetch(provider string, hooks ...types.Hook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	key := strings.ToLower(provider)
	h.before[key] = append(h.before[key], hooks...)
}

// OnAfterFetch registers hooks that run once after the terminal outcome
func (h *Hooks) OnAfterFetch(provider string, hooks ...types.Hook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	key := strings.ToLower(provider)
	h.after[key] = append(h.after[key], hooks...)
}

// Before returns a snapshot of the before-fetch hooks for provider
func (h *Hooks) Before(provider string) []types.Hook {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]types.Hook(nil), h.before[strings.ToLower(provider)]...)
}

// After returns a snapshot of the after-fetch hooks for provider
func (h *Hooks) After(provider string) []types.Hook {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]types.Hook(nil), h.after[strings.ToLower(provider)]...)
}

// callHook runs hook and turns a panic into an error.
func callHook(hook types.Hook, ev types.FetchEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("hook panicked: %v", r)
		}
	}()
	return hook(ev)
}
