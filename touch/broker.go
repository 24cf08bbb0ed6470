package touch

import (
	"time"

	"kosketin"
)

type (
	// Broker is the centralized message broker between the front-ends and
	// the engine. Communication is many-to-one, implemented with one
	// channel per recipient; all sends towards the engine are
	// non-blocking, so an input source can never deadlock on a slow or
	// stopped engine.
	//
	// For closing goroutines, the broker has two channels per goroutine:
	// CloseXXX and FinishedXXX. CloseXXX has a capacity of 1, so a
	// closure request can always be sent without blocking; if the channel
	// is already full, someone else already requested the closure and
	// dropping the message is fine. FinishedXXX is never sent to, only
	// closed, so any number of waiters can block on <-FinishedXXX.
	Broker struct {
		ToEngine chan MsgToEngine
		ToGUI    chan MsgToGUI

		CloseEngine chan struct{}
		CloseGUI    chan struct{}

		FinishedEngine chan struct{}
		FinishedGUI    chan struct{}
	}

	// MsgToEngine is a message to the engine goroutine. Frames and
	// viewport sizes are the high-rate messages and are not boxed;
	// infrequent messages (keyboard reloads, funcs to run on the engine
	// goroutine) travel boxed in Data.
	MsgToEngine struct {
		HasFrame bool
		Frame    Frame

		HasSize       bool
		Width, Height float64

		Data any // *kosketin.Keyboard or func()
	}

	// MsgToGUI notifies a front-end that engine state changed and the
	// screen should be redrawn. On a keyboard change, the new keyboard
	// travels along so the front-end can redraw the right keys; the
	// Keyboard is immutable and safe to share.
	MsgToGUI struct {
		Kind     GUIMessageKind
		Keyboard *kosketin.Keyboard
	}

	GUIMessageKind int
)

const (
	GUIMessageNone GUIMessageKind = iota
	GUIMessagePressedChanged
	GUIMessageKeyboardChanged
)

func NewBroker() *Broker {
	return &Broker{
		ToEngine:       make(chan MsgToEngine, 1024),
		ToGUI:          make(chan MsgToGUI, 1024),
		CloseEngine:    make(chan struct{}, 1),
		CloseGUI:       make(chan struct{}, 1),
		FinishedEngine: make(chan struct{}),
		FinishedGUI:    make(chan struct{}),
	}
}

// SendFrame passes a touch snapshot to the engine, dropping it if the
// engine is backlogged; the next frame supersedes it anyway.
func (b *Broker) SendFrame(f Frame) bool {
	return TrySend(b.ToEngine, MsgToEngine{HasFrame: true, Frame: f})
}

// SendSize passes a new viewport size to the engine.
func (b *Broker) SendSize(width, height float64) bool {
	return TrySend(b.ToEngine, MsgToEngine{HasSize: true, Width: width, Height: height})
}

// SendKeyboard passes a replacement keyboard to the engine.
func (b *Broker) SendKeyboard(kb *kosketin.Keyboard) bool {
	return TrySend(b.ToEngine, MsgToEngine{Data: kb})
}

// TrySend is a helper function to send a value to a channel if it is not
// full. It is guaranteed to be non-blocking. Returns true if the value
// was sent, false otherwise.
func TrySend[T any](c chan<- T, v T) bool {
	select {
	case c <- v:
	default:
		return false
	}
	return true
}

// TimeoutReceive blocks until a value is received from a channel, or
// until the timeout t. ok is false if the timeout occurred or the
// channel is closed.
func TimeoutReceive[T any](c <-chan T, t time.Duration) (v T, ok bool) {
	select {
	case v, ok = <-c:
		return v, ok
	case <-time.After(t):
		return v, false
	}
}
