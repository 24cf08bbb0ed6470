package touch

type (
	// Point is one touch contact position in viewport coordinates.
	Point struct {
		X, Y float64
	}

	// Frame is a snapshot of all live touch points at one instant. The
	// engine consumes whole frames; it never sees individual down/up
	// events, and does not need touch identities, only positions.
	Frame struct {
		Points []Point
	}

	// Tracker maintains the set of live touches for a front-end that
	// receives per-touch events from its platform (pointer down, drag,
	// up, cancel) rather than whole-state snapshots. T identifies a touch
	// for its lifetime; any comparable type works, e.g. gio's pointer.ID.
	Tracker[T comparable] struct {
		points map[T]Point
		order  []T // insertion order, so frames are deterministic
	}
)

func MakeTracker[T comparable]() Tracker[T] {
	return Tracker[T]{points: make(map[T]Point)}
}

// Set records the position of the touch with the given id, adding it if
// it is not live yet.
func (t *Tracker[T]) Set(id T, p Point) {
	if _, ok := t.points[id]; !ok {
		t.order = append(t.order, id)
	}
	t.points[id] = p
}

// Remove forgets the touch with the given id. Removing an unknown id is
// a no-op; platforms send cancel events liberally.
func (t *Tracker[T]) Remove(id T) {
	if _, ok := t.points[id]; !ok {
		return
	}
	delete(t.points, id)
	for i, o := range t.order {
		if o == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
}

// Clear forgets all live touches.
func (t *Tracker[T]) Clear() {
	clear(t.points)
	t.order = t.order[:0]
}

// Count returns the number of live touches.
func (t *Tracker[T]) Count() int { return len(t.points) }

// Frame returns a snapshot of the current touch positions. The returned
// frame does not alias the tracker's state and stays valid after further
// Set/Remove calls.
func (t *Tracker[T]) Frame() Frame {
	points := make([]Point, 0, len(t.order))
	for _, id := range t.order {
		points = append(points, t.points[id])
	}
	return Frame{Points: points}
}
