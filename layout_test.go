package kosketin

import (
	"errors"
	"math"
	"testing"
)

// sevenNaturals is a keyboard with seven naturals and one sharp between
// the second and third natural, plus one sharp deliberately left out of
// the left-natural table.
func sevenNaturals(t *testing.T) *Keyboard {
	t.Helper()
	keys := []Key{
		{Name: "E2", Frequency: 82.41, Sharpness: 0.3},
		{Name: "F2", Frequency: 87.31, Sharpness: 0.3},
		{Name: "F#2", Frequency: 92.50, Sharpness: 0.7, Sharp: true},
		{Name: "G2", Frequency: 98.00, Sharpness: 0.4},
		{Name: "G#2", Frequency: 103.83, Sharpness: 0.8, Sharp: true},
		{Name: "A2", Frequency: 110.00, Sharpness: 0.4},
		{Name: "B2", Frequency: 123.47, Sharpness: 0.5},
		{Name: "C3", Frequency: 130.81, Sharpness: 0.5},
		{Name: "D3", Frequency: 146.83, Sharpness: 0.5},
	}
	leftOf := map[string]string{"F#2": "F2"} // G#2 intentionally unmapped
	kb, err := NewKeyboard(keys, leftOf)
	if err != nil {
		t.Fatalf("NewKeyboard: %v", err)
	}
	return kb
}

func TestLayoutGeometry(t *testing.T) {
	kb := sevenNaturals(t)
	l, err := NewLayout(kb, 700, 100)
	if err != nil {
		t.Fatalf("NewLayout: %v", err)
	}
	if got := l.NaturalWidth(); got != 100 {
		t.Errorf("NaturalWidth() = %v, want 100", got)
	}
	f2, _ := kb.IndexOf("F2")
	if r, ok := l.Rect(f2); !ok || r != (Rect{X: 100, Y: 0, W: 100, H: 100}) {
		t.Errorf("Rect(F2) = %v, %v; want {100 0 100 100}, true", r, ok)
	}
	// sharp center = (leftNaturalPos + 0.75) * naturalWidth = 1.75 * 100
	fs2, _ := kb.IndexOf("F#2")
	r, ok := l.Rect(fs2)
	if !ok {
		t.Fatalf("Rect(F#2) not visible")
	}
	if center := r.X + r.W/2; math.Abs(center-175) > 1e-9 {
		t.Errorf("F#2 center = %v, want 175", center)
	}
	if r.W != 60 || r.H != 60 || r.Y != 0 {
		t.Errorf("F#2 rect = %v, want W=60 H=60 Y=0", r)
	}
	// a sharp without a left-natural entry is not laid out at all
	gs2, _ := kb.IndexOf("G#2")
	if _, ok := l.Rect(gs2); ok {
		t.Errorf("Rect(G#2) visible, want excluded")
	}
}

func TestHitTest(t *testing.T) {
	kb := sevenNaturals(t)
	l, err := NewLayout(kb, 700, 100)
	if err != nil {
		t.Fatalf("NewLayout: %v", err)
	}
	idx := func(name string) int {
		i, ok := kb.IndexOf(name)
		if !ok {
			t.Fatalf("no key %q", name)
		}
		return i
	}
	for _, tt := range []struct {
		name string
		x, y float64
		key  string
		hit  bool
	}{
		{"sharp band over sharp", 175, 10, "F#2", true},
		{"below sharp band", 175, 90, "F2", true},
		{"just inside right edge", 699, 50, "D3", true},
		{"left edge", 0, 0, "E2", true},
		{"between sharps", 250, 10, "G2", true},
		{"unmapped sharp position", 275, 10, "G2", true},
		{"sharp left edge is natural", 145, 10, "F2", true},
		{"right of viewport", 700, 50, "", false},
		{"left of viewport", -0.5, 50, "", false},
		{"above viewport", 175, -1, "", false},
		{"below viewport", 175, 100, "", false},
	} {
		i, ok := l.HitTest(tt.x, tt.y)
		if ok != tt.hit {
			t.Errorf("%s: HitTest(%v,%v) ok = %v, want %v", tt.name, tt.x, tt.y, ok, tt.hit)
			continue
		}
		if ok && i != idx(tt.key) {
			t.Errorf("%s: HitTest(%v,%v) = %s, want %s", tt.name, tt.x, tt.y, kb.Key(i).Name, tt.key)
		}
	}
}

// Every point inside the viewport hits exactly one key, and that key's
// region contains the point.
func TestHitTestPartitionsViewport(t *testing.T) {
	kb := sevenNaturals(t)
	l, err := NewLayout(kb, 700, 100)
	if err != nil {
		t.Fatalf("NewLayout: %v", err)
	}
	for x := 0.0; x < 700; x += 0.5 {
		for y := 0.0; y < 100; y += 0.5 {
			i, ok := l.HitTest(x, y)
			if !ok {
				t.Fatalf("HitTest(%v,%v): miss inside viewport", x, y)
			}
			r, visible := l.Rect(i)
			if !visible || !r.Contains(x, y) {
				t.Fatalf("HitTest(%v,%v) = %s but its rect %v does not contain the point", x, y, kb.Key(i).Name, r)
			}
		}
	}
}

func TestNewLayoutRejectsBadSize(t *testing.T) {
	kb := sevenNaturals(t)
	for _, tt := range []struct{ w, h float64 }{{0, 100}, {700, 0}, {-1, 100}, {700, -1}} {
		if _, err := NewLayout(kb, tt.w, tt.h); err == nil {
			t.Errorf("NewLayout(%v,%v): expected error", tt.w, tt.h)
		}
	}
}

func TestNewKeyboardRequiresNaturals(t *testing.T) {
	_, err := NewKeyboard([]Key{
		{Name: "F#2", Frequency: 92.5, Sharpness: 0.7, Sharp: true},
	}, nil)
	if !errors.Is(err, ErrNoNaturals) {
		t.Errorf("NewKeyboard with only sharps: err = %v, want ErrNoNaturals", err)
	}
}

func TestRectContainsEdges(t *testing.T) {
	r := Rect{X: 10, Y: 10, W: 10, H: 10}
	for _, tt := range []struct {
		x, y float64
		want bool
	}{
		{10, 10, true},  // left and top inclusive
		{20, 15, false}, // right exclusive
		{15, 20, false}, // bottom exclusive
		{19.999, 19.999, true},
		{9.999, 15, false},
	} {
		if got := r.Contains(tt.x, tt.y); got != tt.want {
			t.Errorf("Contains(%v,%v) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}
