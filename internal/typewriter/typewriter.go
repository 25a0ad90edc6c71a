// Package typewriter cycles through a fixed list of phrases, typing each one
// character by character, pausing, then erasing it before moving on.
package typewriter

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	DefaultSpeed          = 50 * time.Millisecond
	DefaultPause          = 1400 * time.Millisecond
	DefaultMinDeleteSpeed = 20 * time.Millisecond
)

var (
	ErrNoPhrases   = errors.New("typewriter: at least one phrase is required")
	ErrEmptyPhrase = errors.New("typewriter: phrases must not be empty")
)

// Mode is the animator's current phase.
type Mode int

const (
	Typing Mode = iota
	Pausing
	Deleting
)

func (m Mode) String() string {
	switch m {
	case Typing:
		return "typing"
	case Pausing:
		return "pausing"
	case Deleting:
		return "deleting"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// State is a snapshot of the animator.
type State struct {
	Index int
	Text  string
	Mode  Mode
}

// Options tunes the timing. Zero values fall back to the defaults.
type Options struct {
	Speed          time.Duration
	Pause          time.Duration
	MinDeleteSpeed time.Duration
}

// Animator drives the type/pause/delete cycle on a clock.
type Animator struct {
	phrases [][]rune
	speed   time.Duration
	pause   time.Duration
	delete  time.Duration
	clock   clockwork.Clock

	mu       sync.Mutex
	index    int
	visible  int
	mode     Mode
	timer    clockwork.Timer
	running  bool
	gen      int
	onChange []func(State)
}

// New validates phrases and returns a stopped animator.
func New(phrases []string, clk clockwork.Clock, opts Options) (*Animator, error) {
	if len(phrases) == 0 {
		return nil, ErrNoPhrases
	}
	runes := make([][]rune, len(phrases))
	for i, p := range phrases {
		if p == "" {
			return nil, fmt.Errorf("phrase %d: %w", i, ErrEmptyPhrase)
		}
		runes[i] = []rune(p)
	}
	if clk == nil {
		clk = clockwork.NewRealClock()
	}
	if opts.Speed <= 0 {
		opts.Speed = DefaultSpeed
	}
	if opts.Pause <= 0 {
		opts.Pause = DefaultPause
	}
	if opts.MinDeleteSpeed <= 0 {
		opts.MinDeleteSpeed = DefaultMinDeleteSpeed
	}
	return &Animator{
		phrases: runes,
		speed:   opts.Speed,
		pause:   opts.Pause,
		delete:  max(opts.MinDeleteSpeed, opts.Speed*6/10),
		clock:   clk,
	}, nil
}

// DeleteSpeed is the interval between erased characters.
func (a *Animator) DeleteSpeed() time.Duration {
	return a.delete
}

// CycleDuration is the time it takes to type and erase every phrase once.
func (a *Animator) CycleDuration() time.Duration {
	var d time.Duration
	for _, p := range a.phrases {
		n := time.Duration(len(p))
		d += n*a.speed + a.pause + n*a.delete
	}
	return d
}

// OnChange registers fn to be called after every state change. Listeners run
// on the clock's goroutine and must not block. The next tick is not armed
// until every listener has returned, so frames arrive in order.
func (a *Animator) OnChange(fn func(State)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onChange = append(a.onChange, fn)
}

// Text returns the currently visible text.
func (a *Animator) Text() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return string(a.phrases[a.index][:a.visible])
}

// State returns a snapshot of the animator.
func (a *Animator) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshot()
}

// Start arms the first tick. Starting a running animator is a no-op.
func (a *Animator) Start() {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return
	}
	a.running = true
	a.gen++
	gen := a.gen
	s, listeners := a.snapshot(), a.onChange
	a.mu.Unlock()
	notify(listeners, s)
	a.rearm(gen)
}

// Stop cancels the pending tick. No callback fires after Stop returns.
func (a *Animator) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.running {
		return
	}
	a.running = false
	a.gen++
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}

// Running reports whether the animator is cycling.
func (a *Animator) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running
}

// arm schedules the next tick for the current mode. Callers must hold a.mu.
func (a *Animator) arm() {
	gen := a.gen
	a.timer = a.clock.AfterFunc(a.interval(), func() { a.tick(gen) })
}

// rearm schedules the next tick unless the animator was stopped or restarted
// while listeners ran.
func (a *Animator) rearm(gen int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.running && gen == a.gen {
		a.arm()
	}
}

func (a *Animator) interval() time.Duration {
	switch a.mode {
	case Pausing:
		return a.pause
	case Deleting:
		return a.delete
	}
	return a.speed
}

func (a *Animator) tick(gen int) {
	a.mu.Lock()
	// a timer that fired concurrently with Stop must not resume the cycle
	if !a.running || gen != a.gen {
		a.mu.Unlock()
		return
	}
	a.step()
	s, listeners := a.snapshot(), a.onChange
	a.mu.Unlock()
	notify(listeners, s)
	a.rearm(gen)
}

// step applies one transition. Erasing the last character moves straight on
// to typing the next phrase, so a Typing state with empty text is the start
// of a phrase rather than a shrink. Callers must hold a.mu.
func (a *Animator) step() {
	phrase := a.phrases[a.index]
	switch a.mode {
	case Typing:
		a.visible++
		if a.visible >= len(phrase) {
			a.visible = len(phrase)
			a.mode = Pausing
		}
	case Pausing:
		a.mode = Deleting
	case Deleting:
		a.visible--
		if a.visible <= 0 {
			a.visible = 0
			a.index = (a.index + 1) % len(a.phrases)
			a.mode = Typing
		}
	}
}

func (a *Animator) snapshot() State {
	return State{
		Index: a.index,
		Text:  string(a.phrases[a.index][:a.visible]),
		Mode:  a.mode,
	}
}

func notify(listeners []func(State), s State) {
	for _, fn := range listeners {
		fn(s)
	}
}
