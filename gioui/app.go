// Package gioui is the Gio front-end: one window showing the keyboard,
// pointer input in, pressed-key highlights out. All press semantics live
// in the engine; this package only ships frames and draws state.
package gioui

import (
	"image"
	"log/slog"

	"gioui.org/app"
	"gioui.org/io/event"
	"gioui.org/io/key"
	"gioui.org/io/system"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/x/explorer"

	"kosketin"
	"kosketin/touch"
)

type (
	C = layout.Context
	D = layout.Dimensions
)

type App struct {
	broker      *touch.Broker
	view        *KeyboardView
	explorer    *explorer.Explorer
	preferences Preferences
	log         *slog.Logger
}

func NewApp(broker *touch.Broker, kb *kosketin.Keyboard, pressed *touch.PressedSet, log *slog.Logger) *App {
	if log == nil {
		log = slog.Default()
	}
	a := &App{
		broker: broker,
		view:   NewKeyboardView(broker, kb, pressed),
		log:    log,
	}
	var warn error
	if a.preferences, warn = MakePreferences(); warn != nil {
		log.Warn("preferences override rejected", "err", warn)
	}
	return a
}

// Main runs the window loop until the window is destroyed or the broker
// asks the GUI to close. Run it on its own goroutine and call app.Main()
// from the real main afterwards, as gio requires.
func (a *App) Main() {
	defer close(a.broker.FinishedGUI)
	var ops op.Ops
	w := new(app.Window)
	w.Option(app.Title("Kosketin"), app.Size(a.preferences.WindowSize()))
	if a.preferences.Window.Maximized {
		w.Option(app.Maximized.Option())
	}
	a.explorer = explorer.NewExplorer(w)
	events := make(chan event.Event)
	acks := make(chan struct{})
	go func() {
		for {
			ev := w.Event()
			events <- ev
			<-acks
			if _, ok := ev.(app.DestroyEvent); ok {
				return
			}
		}
	}()
	for {
		select {
		case msg := <-a.broker.ToGUI:
			if msg.Kind == touch.GUIMessageKeyboardChanged && msg.Keyboard != nil {
				a.view.SetKeyboard(msg.Keyboard)
			}
			w.Invalidate()
		case <-a.broker.CloseGUI:
			w.Perform(system.ActionClose)
		case e := <-events:
			switch e := e.(type) {
			case app.DestroyEvent:
				acks <- struct{}{}
				return
			case app.FrameEvent:
				gtx := app.NewContext(&ops, e)
				a.explorer.ListenEvents(e)
				a.layout(gtx)
				e.Frame(gtx.Ops)
				acks <- struct{}{}
			default:
				a.explorer.ListenEvents(e)
				acks <- struct{}{}
			}
		}
	}
}

func (a *App) layout(gtx C) {
	defer clip.Rect(image.Rectangle{Max: gtx.Constraints.Max}).Push(gtx.Ops).Pop()
	paint.Fill(gtx.Ops, backgroundColor)
	event.Op(gtx.Ops, a)
	a.view.Layout(gtx)
	for {
		ev, ok := gtx.Event(
			key.Filter{Name: "O", Required: key.ModShortcut},
		)
		if !ok {
			break
		}
		if e, ok := ev.(key.Event); ok && e.State == key.Press {
			a.chooseKeyboardFile()
		}
	}
}

// chooseKeyboardFile lets the user pick an alternative keyboard
// definition; the engine validates it and broadcasts the change back.
func (a *App) chooseKeyboardFile() {
	go func() {
		file, err := a.explorer.ChooseFile(".yml", ".yaml")
		if err != nil {
			if err != explorer.ErrUserDecline {
				a.log.Warn("keyboard file dialog", "err", err)
			}
			return
		}
		defer file.Close()
		kb, err := kosketin.ReadKeyboard(file)
		if err != nil {
			a.log.Warn("keyboard file rejected", "err", err)
			return
		}
		a.broker.SendKeyboard(kb)
	}()
}
