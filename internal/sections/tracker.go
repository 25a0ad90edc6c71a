package sections

import "sync"

// Tracker holds the section the reader is looking at: of the sections that
// entered view together, the most visible one. Ties go to the later section.
type Tracker struct {
	obs Observer

	mu       sync.Mutex
	current  ID
	onChange []func(ID)
}

// NewTracker observes every section through obs, starting at initial.
// Close must be called to release the observer.
func NewTracker(obs Observer, initial ID) *Tracker {
	if !Valid(initial) {
		initial = Hero
	}
	t := &Tracker{obs: obs, current: initial}
	obs.OnVisible(t.entered)
	for _, id := range IDs() {
		obs.Observe(id)
	}
	return t
}

// Current returns the tracked section.
func (t *Tracker) Current() ID {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// OnChange registers fn to be called when the current section changes.
func (t *Tracker) OnChange(fn func(ID)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onChange = append(t.onChange, fn)
}

// Close disconnects the observer.
func (t *Tracker) Close() {
	t.obs.Disconnect()
}

func (t *Tracker) entered(entries []Entry) {
	if len(entries) == 0 {
		return
	}
	best := entries[0]
	for _, e := range entries[1:] {
		if e.Ratio >= best.Ratio {
			best = e
		}
	}
	t.set(best.ID)
}

func (t *Tracker) set(id ID) {
	t.mu.Lock()
	if t.current == id {
		t.mu.Unlock()
		return
	}
	t.current = id
	listeners := t.onChange
	t.mu.Unlock()
	for _, fn := range listeners {
		fn(id)
	}
}
