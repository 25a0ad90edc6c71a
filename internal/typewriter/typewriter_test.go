package typewriter

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testOpts = Options{
	Speed:          10 * time.Millisecond,
	Pause:          100 * time.Millisecond,
	MinDeleteSpeed: 20 * time.Millisecond,
}

// testClock steps a fake clock one millisecond at a time. AfterFunc callbacks
// run on their own goroutines, so after every step it waits for a fired tick
// to arm its successor before moving on.
type testClock struct {
	*clockwork.FakeClock
	t *testing.T
}

func (c *testClock) Advance(d time.Duration) {
	c.t.Helper()
	for ; d > 0; d -= time.Millisecond {
		c.FakeClock.Advance(time.Millisecond)
		c.expectPending(1)
	}
}

// expectPending fails unless exactly n timers are armed.
func (c *testClock) expectPending(n int) {
	c.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(c.t, c.BlockUntilContext(ctx, n), "waiting for %d armed timers", n)
}

func newTestAnimator(t *testing.T, phrases []string) (*Animator, *testClock) {
	t.Helper()
	c := &testClock{FakeClock: clockwork.NewFakeClock(), t: t}
	a, err := New(phrases, c, testOpts)
	require.NoError(t, err)
	return a, c
}

func TestNewRejectsInvalidPhrases(t *testing.T) {
	_, err := New(nil, nil, Options{})
	assert.ErrorIs(t, err, ErrNoPhrases)

	_, err = New([]string{"ok", ""}, nil, Options{})
	assert.ErrorIs(t, err, ErrEmptyPhrase)
}

func TestDefaults(t *testing.T) {
	a, err := New([]string{"x"}, nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, DefaultSpeed, a.speed)
	assert.Equal(t, DefaultPause, a.pause)
	assert.Equal(t, 30*time.Millisecond, a.DeleteSpeed())
}

func TestDeleteSpeedIsFloored(t *testing.T) {
	a, err := New([]string{"x"}, nil, Options{Speed: 26 * time.Millisecond})
	require.NoError(t, err)
	assert.Equal(t, 20*time.Millisecond, a.DeleteSpeed())
}

func TestInitialState(t *testing.T) {
	a, c := newTestAnimator(t, []string{"A"})
	assert.Equal(t, State{Index: 0, Text: "", Mode: Typing}, a.State())
	assert.False(t, a.Running())
	c.expectPending(0)
}

func TestCycleSequence(t *testing.T) {
	a, c := newTestAnimator(t, []string{"A", "BC"})
	var texts []string
	a.OnChange(func(s State) {
		if len(texts) == 0 || texts[len(texts)-1] != s.Text {
			texts = append(texts, s.Text)
		}
	})
	a.Start()

	c.Advance(a.CycleDuration())
	assert.Equal(t, []string{"", "A", "", "B", "BC", "B", ""}, texts)
	assert.Equal(t, State{Index: 0, Text: "", Mode: Typing}, a.State())

	c.Advance(testOpts.Speed)
	assert.Equal(t, "A", a.Text())
}

func TestCycleTimeline(t *testing.T) {
	a, c := newTestAnimator(t, []string{"A", "BC"})
	a.Start()

	steps := []struct {
		advance time.Duration
		want    State
	}{
		{10 * time.Millisecond, State{0, "A", Pausing}},
		{99 * time.Millisecond, State{0, "A", Pausing}},
		{1 * time.Millisecond, State{0, "A", Deleting}},
		{20 * time.Millisecond, State{1, "", Typing}},
		{10 * time.Millisecond, State{1, "B", Typing}},
		{10 * time.Millisecond, State{1, "BC", Pausing}},
		{100 * time.Millisecond, State{1, "BC", Deleting}},
		{20 * time.Millisecond, State{1, "B", Deleting}},
		{20 * time.Millisecond, State{0, "", Typing}},
	}
	for i, s := range steps {
		c.Advance(s.advance)
		assert.Equal(t, s.want, a.State(), "step %d", i)
	}
}

func TestCycleIsPeriodic(t *testing.T) {
	a, c := newTestAnimator(t, []string{"A", "BC"})
	assert.Equal(t, 290*time.Millisecond, a.CycleDuration())
	a.Start()

	var first []State
	for i := 0; i < 29; i++ {
		c.Advance(10 * time.Millisecond)
		first = append(first, a.State())
	}
	for i := 0; i < 29; i++ {
		c.Advance(10 * time.Millisecond)
		assert.Equal(t, first[i], a.State(), "tick %d", i)
	}
}

func TestPrefixInvariant(t *testing.T) {
	lists := [][]string{
		{"x"},
		{"Let’s connect", "ab", "héllo wörld"},
		{"Engineering backend systems that scale effortlessly", "Building clean APIs"},
	}
	for _, phrases := range lists {
		a, c := newTestAnimator(t, phrases)
		prev := a.State()
		a.OnChange(func(s State) {
			require.True(t, strings.HasPrefix(phrases[s.Index], s.Text), "%q not a prefix of %q", s.Text, phrases[s.Index])
			// wrapping from Deleting to Typing starts the next phrase afresh
			if s.Index == prev.Index && s.Mode == prev.Mode {
				switch s.Mode {
				case Typing:
					assert.GreaterOrEqual(t, len(s.Text), len(prev.Text))
				case Deleting:
					assert.LessOrEqual(t, len(s.Text), len(prev.Text))
				}
			}
			prev = s
		})
		a.Start()
		c.Advance(2 * a.CycleDuration())
		a.Stop()
	}
}

func TestStopCancelsPendingTick(t *testing.T) {
	a, c := newTestAnimator(t, []string{"abc"})
	a.Start()
	c.Advance(20 * time.Millisecond)
	require.Equal(t, "ab", a.Text())

	a.Stop()
	c.expectPending(0)
	c.FakeClock.Advance(time.Second)
	assert.Equal(t, "ab", a.Text())
	assert.False(t, a.Running())
}

func TestStaleTickAfterStopIsIgnored(t *testing.T) {
	a, c := newTestAnimator(t, []string{"abc"})
	a.Start()
	a.mu.Lock()
	gen := a.gen
	a.mu.Unlock()

	a.Stop()
	a.tick(gen)
	assert.Equal(t, "", a.Text())
	c.expectPending(0)
}

func TestStartIsIdempotent(t *testing.T) {
	a, c := newTestAnimator(t, []string{"abc"})
	a.Start()
	a.Start()
	c.expectPending(1)

	c.Advance(10 * time.Millisecond)
	assert.Equal(t, "a", a.Text())
}

func TestRestartResumesFromCurrentState(t *testing.T) {
	a, c := newTestAnimator(t, []string{"abc"})
	a.Start()
	c.Advance(10 * time.Millisecond)
	a.Stop()
	a.Start()
	c.Advance(10 * time.Millisecond)
	assert.Equal(t, "ab", a.Text())
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "typing", Typing.String())
	assert.Equal(t, "pausing", Pausing.String())
	assert.Equal(t, "deleting", Deleting.String())
	assert.Equal(t, "Mode(7)", Mode(7).String())
}

func TestSinglePhraseWrapsIntoTyping(t *testing.T) {
	a, c := newTestAnimator(t, []string{"x"})
	var states []State
	a.OnChange(func(s State) { states = append(states, s) })
	a.Start()
	c.Advance(a.CycleDuration())

	assert.Equal(t, []State{
		{0, "", Typing},
		{0, "x", Pausing},
		{0, "x", Deleting},
		{0, "", Typing},
	}, states)
}

func TestListenersFinishBeforeNextTick(t *testing.T) {
	a, c := newTestAnimator(t, []string{"abc"})
	var armedDuringListener []bool
	a.OnChange(func(State) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		armedDuringListener = append(armedDuringListener, c.BlockUntilContext(ctx, 1) == nil)
	})
	a.Start()
	c.Advance(20 * time.Millisecond)

	require.Len(t, armedDuringListener, 3)
	for i, armed := range armedDuringListener {
		assert.False(t, armed, "frame %d: next tick armed before listener returned", i)
	}
}
