package kosketin

import (
	"fmt"
	"math"
)

// Sharp keys occupy the top sharpHeightRatio of the viewport and are
// sharpWidthRatio of a natural key wide. A sharp is centered at
// (leftNaturalPosition + sharpCenterOffset) natural widths from the left
// edge; the 0.75 offset is a visual-centering choice for this note
// layout, not a general halfway formula, and must not be "fixed".
const (
	sharpCenterOffset = 0.75
	sharpWidthRatio   = 0.6
	sharpHeightRatio  = 0.6
)

type (
	// Rect is an axis-aligned rectangle in viewport coordinates.
	Rect struct {
		X, Y, W, H float64
	}

	// Layout holds the per-key bounding regions of a keyboard for one
	// viewport size. Layouts are cheap to build and are rebuilt from
	// scratch whenever the viewport size changes; they carry no session
	// state.
	Layout struct {
		keyboard     *Keyboard
		width        float64
		height       float64
		naturalWidth float64
		rects        []Rect // by key index; zero Rect when !visible
		visible      []bool // sharps without a left-natural entry are not laid out
		sharps       []int  // key indices of visible sharps, keyboard order
	}
)

// Contains reports whether the point (x,y) is inside the rectangle. The
// left and top edges are inclusive, the right and bottom exclusive, so
// adjacent rectangles do not both claim their shared edge.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// NewLayout computes the bounding region of every key for the given
// viewport size. Naturals tile the full width edge to edge at full
// height; sharps float in the top band, on top of the naturals.
func NewLayout(kb *Keyboard, width, height float64) (*Layout, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid viewport size %vx%v", width, height)
	}
	if kb.NaturalCount() == 0 {
		// NewKeyboard already rejects this; guard anyway so a layout can
		// never divide by zero.
		return nil, ErrNoNaturals
	}
	l := &Layout{
		keyboard:     kb,
		width:        width,
		height:       height,
		naturalWidth: width / float64(kb.NaturalCount()),
		rects:        make([]Rect, kb.Count()),
		visible:      make([]bool, kb.Count()),
	}
	for i := 0; i < kb.Count(); i++ {
		if !kb.Key(i).Sharp {
			pos := kb.NaturalPosition(i)
			l.rects[i] = Rect{X: float64(pos) * l.naturalWidth, Y: 0, W: l.naturalWidth, H: height}
			l.visible[i] = true
			continue
		}
		pos, ok := kb.LeftNatural(i)
		if !ok {
			continue // no left-natural entry: not rendered, never hit
		}
		center := (float64(pos) + sharpCenterOffset) * l.naturalWidth
		w := sharpWidthRatio * l.naturalWidth
		l.rects[i] = Rect{X: center - w/2, Y: 0, W: w, H: sharpHeightRatio * height}
		l.visible[i] = true
		l.sharps = append(l.sharps, i)
	}
	return l, nil
}

// Size returns the viewport size the layout was computed for.
func (l *Layout) Size() (width, height float64) { return l.width, l.height }

// NaturalWidth returns the width of one natural key.
func (l *Layout) NaturalWidth() float64 { return l.naturalWidth }

// Rect returns the bounding region of the key at the given index. ok is
// false for sharps that are excluded from the layout.
func (l *Layout) Rect(i int) (Rect, bool) {
	if i < 0 || i >= len(l.rects) || !l.visible[i] {
		return Rect{}, false
	}
	return l.rects[i], true
}

// HitTest returns the index of the topmost key under the point (x,y).
// Sharps are tested first: they are drawn on top of the naturals, so
// they intercept touches in their footprint. A point outside every key
// is a valid miss, not an error.
func (l *Layout) HitTest(x, y float64) (int, bool) {
	if x < 0 || x >= l.width || y < 0 || y >= l.height {
		return 0, false
	}
	for _, i := range l.sharps {
		r := l.rects[i]
		if y < r.H && math.Abs(x-(r.X+r.W/2)) < r.W/2 {
			return i, true
		}
	}
	pos := int(math.Floor(x / l.naturalWidth))
	pos = min(max(pos, 0), l.keyboard.NaturalCount()-1)
	return l.keyboard.NaturalIndex(pos), true
}
