package touch

import (
	"sync"

	"kosketin"
)

type (
	// Event is a discrete press-state transition for one key.
	Event struct {
		Key   kosketin.Key
		Index int // index of the key in keyboard order
		On    bool
	}

	// PressModel derives the set of pressed keys from touch frames. On
	// each tick it hit-tests every current point against the layout,
	// collapses duplicate hits to one entry per key (pressure is binary,
	// not additive), diffs against the previous tick's set and emits one
	// event per key that changed state.
	//
	// Ordering rule, fixed: within a tick, all presses are emitted before
	// all releases, and each list is in keyboard order left to right.
	//
	// PressModel is not safe for concurrent use; the engine goroutine
	// owns it.
	PressModel struct {
		keyboard *kosketin.Keyboard
		layout   *kosketin.Layout
		pressed  []bool // previous tick's set, by key index
		current  []bool // scratch for the tick being computed
	}

	// PressedSet is the observable pressed-key state for rendering
	// layers. The engine replaces the snapshot after every tick; readers
	// poll it from any goroutine.
	PressedSet struct {
		mu      sync.RWMutex
		pressed []bool
	}
)

func NewPressModel(kb *kosketin.Keyboard, width, height float64) (*PressModel, error) {
	layout, err := kosketin.NewLayout(kb, width, height)
	if err != nil {
		return nil, err
	}
	return &PressModel{
		keyboard: kb,
		layout:   layout,
		pressed:  make([]bool, kb.Count()),
		current:  make([]bool, kb.Count()),
	}, nil
}

// Resize recomputes the layout for a new viewport size. Press state is
// carried over untouched; the next tick re-evaluates it against the new
// geometry.
func (m *PressModel) Resize(width, height float64) error {
	layout, err := kosketin.NewLayout(m.keyboard, width, height)
	if err != nil {
		return err
	}
	m.layout = layout
	return nil
}

// Layout returns the current layout.
func (m *PressModel) Layout() *kosketin.Layout { return m.layout }

// Keyboard returns the keyboard the model was built for.
func (m *PressModel) Keyboard() *kosketin.Keyboard { return m.keyboard }

// Tick processes one touch frame and appends the resulting events to
// dst. A key that stays under at least one point across consecutive
// ticks generates nothing; multiple points on one key count as a single
// press.
func (m *PressModel) Tick(frame Frame, dst []Event) []Event {
	clear(m.current)
	for _, p := range frame.Points {
		if i, ok := m.layout.HitTest(p.X, p.Y); ok {
			m.current[i] = true
		}
	}
	for i, cur := range m.current {
		if cur && !m.pressed[i] {
			dst = append(dst, Event{Key: m.keyboard.Key(i), Index: i, On: true})
		}
	}
	for i, cur := range m.current {
		if !cur && m.pressed[i] {
			dst = append(dst, Event{Key: m.keyboard.Key(i), Index: i, On: false})
		}
	}
	m.pressed, m.current = m.current, m.pressed
	return dst
}

// Pressed reports the previous tick's press state of the key at the
// given index.
func (m *PressModel) Pressed(i int) bool {
	return i >= 0 && i < len(m.pressed) && m.pressed[i]
}

func NewPressedSet() *PressedSet {
	return &PressedSet{}
}

// Replace supersedes the whole snapshot. The engine calls this once per
// tick with the model's post-tick state.
func (s *PressedSet) Replace(pressed []bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cap(s.pressed) < len(pressed) {
		s.pressed = make([]bool, len(pressed))
	}
	s.pressed = s.pressed[:len(pressed)]
	copy(s.pressed, pressed)
}

// Contains reports whether the key at the given index is pressed.
func (s *PressedSet) Contains(i int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return i >= 0 && i < len(s.pressed) && s.pressed[i]
}

// Indices returns the pressed key indices in keyboard order.
func (s *PressedSet) Indices() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []int
	for i, p := range s.pressed {
		if p {
			out = append(out, i)
		}
	}
	return out
}
