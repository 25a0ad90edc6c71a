// Package theme holds the light/dark display preference.
package theme

import (
	"context"
	"fmt"
	"sync"

	"github.com/maniartech/signals"

	"github.com/Zachkp/portfolio/internal/logger"
)

// Theme is a display preference.
type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

// Key is the name of the persisted slot.
const Key = "theme"

// Parse converts a stored literal into a Theme. Only the exact literals
// "light" and "dark" are accepted.
func Parse(s string) (Theme, bool) {
	switch Theme(s) {
	case Light:
		return Light, true
	case Dark:
		return Dark, true
	}
	return "", false
}

// Default returns the theme used when nothing is stored.
func Default(prefersDark bool) Theme {
	if prefersDark {
		return Dark
	}
	return Light
}

// Toggle returns the opposite theme.
func (t Theme) Toggle() Theme {
	if t == Dark {
		return Light
	}
	return Dark
}

// Class is the document-level class that switches the page to this theme.
func (t Theme) Class() string {
	if t == Dark {
		return "dark"
	}
	return ""
}

func (t Theme) String() string {
	return string(t)
}

// Slot is a single durable key-value entry.
type Slot interface {
	Get(ctx context.Context) (value string, ok bool, err error)
	Set(ctx context.Context, value string) error
}

// Holder tracks the current theme and persists every explicit change.
type Holder struct {
	slot    Slot
	log     *logger.Logger
	changed signals.Signal[Theme]

	mu      sync.Mutex
	current Theme
	subs    int
}

// NewHolder reads the stored value from slot. An unreadable or malformed
// value is treated as absent, in which case prefersDark decides. Nothing is
// written until the first Set or Toggle.
func NewHolder(ctx context.Context, slot Slot, prefersDark bool, log *logger.Logger) *Holder {
	h := &Holder{
		slot:    slot,
		log:     log,
		changed: signals.NewSync[Theme](),
		current: Default(prefersDark),
	}
	value, ok, err := slot.Get(ctx)
	switch {
	case err != nil:
		log.Error(err, "Unreadable stored theme, using the system preference")
	case !ok:
	default:
		if t, valid := Parse(value); valid {
			h.current = t
		} else {
			log.Warn("Ignoring malformed stored theme", "value", value)
		}
	}
	return h
}

// Get returns the current theme.
func (h *Holder) Get() Theme {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

// Set applies and persists t, then notifies subscribers. A failed write is
// logged and the in-memory value is kept.
func (h *Holder) Set(ctx context.Context, t Theme) {
	h.mu.Lock()
	h.current = t
	h.mu.Unlock()

	if err := h.slot.Set(ctx, string(t)); err != nil {
		h.log.Error(err, "Error persisting theme", "theme", t.String())
	}
	h.changed.Emit(ctx, t)
}

// Toggle flips the theme and returns the new value.
func (h *Holder) Toggle(ctx context.Context) Theme {
	next := h.Get().Toggle()
	h.Set(ctx, next)
	return next
}

// Subscribe calls fn after every change. The returned func removes it.
func (h *Holder) Subscribe(fn func(Theme)) (unsubscribe func()) {
	h.mu.Lock()
	h.subs++
	key := fmt.Sprintf("theme-sub-%d", h.subs)
	h.mu.Unlock()

	h.changed.AddListener(func(_ context.Context, t Theme) { fn(t) }, key)
	return func() { h.changed.RemoveListener(key) }
}
