package sections

import "sync"

const (
	DefaultThreshold    = 0.25
	DefaultBottomMargin = 0.6
)

// Entry is a section that crossed into view, with the fraction of it visible.
type Entry struct {
	ID    ID
	Ratio float64
}

// Observer reports sections entering the visible part of the viewport. Each
// callback receives every section that crossed in together.
type Observer interface {
	Observe(id ID)
	OnVisible(fn func([]Entry))
	Disconnect()
}

// Rect is the vertical extent of a section in page coordinates.
type Rect struct {
	Top    float64 `json:"top"`
	Height float64 `json:"height"`
}

// Viewport is the visible window of the page.
type Viewport struct {
	ScrollY float64 `json:"scrollY"`
	Height  float64 `json:"height"`
}

// GeometryObserver simulates viewport intersection from known section
// positions. The observed root is the viewport with its bottom shrunk by
// BottomMargin, which favours sections near the top of the screen.
type GeometryObserver struct {
	threshold    float64
	bottomMargin float64

	mu        sync.Mutex
	layout    map[ID]Rect
	observed  []ID
	visible   map[ID]bool
	callbacks []func([]Entry)
	closed    bool
}

type Option func(*GeometryObserver)

func WithThreshold(v float64) Option {
	return func(o *GeometryObserver) { o.threshold = v }
}

func WithBottomMargin(v float64) Option {
	return func(o *GeometryObserver) { o.bottomMargin = v }
}

func NewGeometryObserver(layout map[ID]Rect, opts ...Option) *GeometryObserver {
	o := &GeometryObserver{
		threshold:    DefaultThreshold,
		bottomMargin: DefaultBottomMargin,
		layout:       make(map[ID]Rect, len(layout)),
		visible:      make(map[ID]bool),
	}
	for id, r := range layout {
		o.layout[id] = r
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *GeometryObserver) Observe(id ID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	for _, existing := range o.observed {
		if existing == id {
			return
		}
	}
	o.observed = append(o.observed, id)
}

func (o *GeometryObserver) OnVisible(fn func([]Entry)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	o.callbacks = append(o.callbacks, fn)
}

// Disconnect stops all observation. Later calls to Scroll are ignored.
func (o *GeometryObserver) Disconnect() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closed = true
	o.observed = nil
	o.callbacks = nil
	o.visible = make(map[ID]bool)
}

// Ratio returns the fraction of the section inside the observed root.
func (o *GeometryObserver) Ratio(id ID, v Viewport) float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.ratio(id, v)
}

func (o *GeometryObserver) ratio(id ID, v Viewport) float64 {
	r, ok := o.layout[id]
	if !ok || r.Height <= 0 {
		return 0
	}
	rootTop := v.ScrollY
	rootBottom := v.ScrollY + v.Height*(1-o.bottomMargin)
	top := max(r.Top, rootTop)
	bottom := min(r.Top+r.Height, rootBottom)
	if bottom <= top {
		return 0
	}
	return (bottom - top) / r.Height
}

// Scroll moves the viewport and notifies listeners once with every observed
// section that crossed the threshold into view, in observation order. A fresh
// observer treats every section above the threshold as crossing in.
func (o *GeometryObserver) Scroll(v Viewport) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	var entered []Entry
	for _, id := range o.observed {
		ratio := o.ratio(id, v)
		now := ratio >= o.threshold
		if now && !o.visible[id] {
			entered = append(entered, Entry{ID: id, Ratio: ratio})
		}
		o.visible[id] = now
	}
	callbacks := o.callbacks
	o.mu.Unlock()

	if len(entered) == 0 {
		return
	}
	for _, fn := range callbacks {
		fn(entered)
	}
}

var _ Observer = (*GeometryObserver)(nil)
