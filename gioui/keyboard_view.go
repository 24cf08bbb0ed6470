package gioui

import (
	"image"
	"image/color"

	"gioui.org/io/event"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"

	"kosketin"
	"kosketin/touch"
)

// KeyboardView draws the keys and converts pointer events into touch
// frames for the engine. It keeps its own copy of the layout for
// drawing; the engine recomputes an identical one from the size messages
// for hit-testing, so the two always agree.
type KeyboardView struct {
	broker   *touch.Broker
	keyboard *kosketin.Keyboard
	pressed  *touch.PressedSet
	touches  touch.Tracker[pointer.ID]
	layout   *kosketin.Layout
	lastSize image.Point
}

func NewKeyboardView(broker *touch.Broker, kb *kosketin.Keyboard, pressed *touch.PressedSet) *KeyboardView {
	return &KeyboardView{
		broker:   broker,
		keyboard: kb,
		pressed:  pressed,
		touches:  touch.MakeTracker[pointer.ID](),
	}
}

// SetKeyboard swaps in a reloaded keyboard. Live touches are kept; the
// engine re-presses whatever they land on.
func (v *KeyboardView) SetKeyboard(kb *kosketin.Keyboard) {
	v.keyboard = kb
	v.layout = nil
	v.lastSize = image.Point{}
}

func (v *KeyboardView) Layout(gtx layout.Context) layout.Dimensions {
	size := gtx.Constraints.Max
	if size != v.lastSize || v.layout == nil {
		l, err := kosketin.NewLayout(v.keyboard, float64(size.X), float64(size.Y))
		if err == nil {
			v.layout = l
			v.lastSize = size
			v.broker.SendSize(float64(size.X), float64(size.Y))
		}
	}

	defer clip.Rect(image.Rectangle{Max: size}).Push(gtx.Ops).Pop()
	paint.Fill(gtx.Ops, keyGapColor)
	event.Op(gtx.Ops, v)
	v.handleEvents(gtx)

	if v.layout == nil {
		return layout.Dimensions{Size: size}
	}
	// naturals first, sharps on top, matching the hit-test z-order
	for i := 0; i < v.keyboard.Count(); i++ {
		if v.keyboard.Key(i).Sharp {
			continue
		}
		v.fillKey(gtx, i, naturalColor, naturalPressedColor, 1)
	}
	for i := 0; i < v.keyboard.Count(); i++ {
		if !v.keyboard.Key(i).Sharp {
			continue
		}
		v.fillKey(gtx, i, sharpColor, sharpPressedColor, 0)
	}
	return layout.Dimensions{Size: size}
}

func (v *KeyboardView) fillKey(gtx layout.Context, i int, idle, active color.NRGBA, gap int) {
	r, ok := v.layout.Rect(i)
	if !ok {
		return
	}
	col := idle
	if v.pressed.Contains(i) {
		col = active
	}
	rect := image.Rect(int(r.X)+gap, int(r.Y)+gap, int(r.X+r.W)-gap, int(r.Y+r.H)-gap)
	paint.FillShape(gtx.Ops, col, clip.Rect(rect).Op())
}

func (v *KeyboardView) handleEvents(gtx layout.Context) {
	changed := false
	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target: v,
			Kinds:  pointer.Press | pointer.Drag | pointer.Release | pointer.Cancel,
		})
		if !ok {
			break
		}
		e, ok := ev.(pointer.Event)
		if !ok {
			continue
		}
		switch e.Kind {
		case pointer.Press, pointer.Drag:
			v.touches.Set(e.PointerID, touch.Point{X: float64(e.Position.X), Y: float64(e.Position.Y)})
			changed = true
		case pointer.Release, pointer.Cancel:
			v.touches.Remove(e.PointerID)
			changed = true
		}
	}
	if changed {
		v.broker.SendFrame(v.touches.Frame())
	}
}
