package touch

import (
	"log/slog"

	"kosketin"
)

// Engine is the single logical thread of control for press state. It
// consumes frames, viewport sizes and keyboard reloads from the broker
// and processes each message as one atomic step: hit-test, diff, emit,
// dispatch. Two ticks can never interleave.
type Engine struct {
	broker     *Broker
	press      *PressModel
	dispatcher *Dispatcher
	pressedSet *PressedSet
	log        *slog.Logger
	scratch    []Event
}

func NewEngine(broker *Broker, kb *kosketin.Keyboard, sink kosketin.FeedbackSink, width, height float64, log *slog.Logger) (*Engine, error) {
	if log == nil {
		log = slog.Default()
	}
	press, err := NewPressModel(kb, width, height)
	if err != nil {
		return nil, err
	}
	return &Engine{
		broker:     broker,
		press:      press,
		dispatcher: NewDispatcher(sink, log),
		pressedSet: NewPressedSet(),
		log:        log,
	}, nil
}

// Pressed returns the observable pressed-key set. Rendering layers poll
// it after each GUIMessagePressedChanged notification.
func (e *Engine) Pressed() *PressedSet { return e.pressedSet }

// Run processes messages until the broker's CloseEngine channel fires.
// It is meant to be run on its own goroutine; on return, all feedback
// sessions are stopped, the sink is closed, and FinishedEngine is
// closed.
func (e *Engine) Run() {
	defer close(e.broker.FinishedEngine)
	defer func() {
		if err := e.dispatcher.Close(); err != nil {
			e.log.Warn("closing feedback sink", "err", err)
		}
	}()
	for {
		select {
		case msg := <-e.broker.ToEngine:
			e.processMsg(msg)
		case <-e.broker.CloseEngine:
			return
		}
	}
}

func (e *Engine) processMsg(msg MsgToEngine) {
	if msg.HasSize {
		// recompute layout before the next hit-test; idempotent, carries
		// no session state
		if err := e.press.Resize(msg.Width, msg.Height); err != nil {
			e.log.Warn("viewport resize rejected", "width", msg.Width, "height", msg.Height, "err", err)
		}
	}
	if msg.HasFrame {
		e.tick(msg.Frame)
	}
	switch data := msg.Data.(type) {
	case nil:
	case *kosketin.Keyboard:
		e.replaceKeyboard(data)
	case func():
		data()
	default:
		e.log.Warn("unknown message to engine", "data", msg.Data)
	}
}

func (e *Engine) tick(frame Frame) {
	e.scratch = e.press.Tick(frame, e.scratch[:0])
	if len(e.scratch) == 0 {
		return
	}
	e.dispatcher.Dispatch(e.scratch)
	e.pressedSet.Replace(e.press.pressed)
	TrySend(e.broker.ToGUI, MsgToGUI{Kind: GUIMessagePressedChanged})
}

// replaceKeyboard swaps in a reloaded keyboard. All sessions are
// released first; held touches re-press their keys on the next frame.
func (e *Engine) replaceKeyboard(kb *kosketin.Keyboard) {
	width, height := e.press.Layout().Size()
	press, err := NewPressModel(kb, width, height)
	if err != nil {
		e.log.Warn("keyboard reload rejected", "err", err)
		return
	}
	e.dispatcher.ReleaseAll()
	e.press = press
	e.pressedSet.Replace(press.pressed)
	TrySend(e.broker.ToGUI, MsgToGUI{Kind: GUIMessageKeyboardChanged, Keyboard: kb})
}
