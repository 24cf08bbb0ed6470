package touch

import (
	"log/slog"

	"kosketin"
)

// Dispatcher turns press/release events into feedback sessions,
// guaranteeing at most one live session per key. Sink failures are
// logged and swallowed at this boundary: a misbehaving audio or haptic
// engine must never stall press-state tracking for other keys or later
// ticks.
type Dispatcher struct {
	sink     kosketin.FeedbackSink
	log      *slog.Logger
	sessions map[int]kosketin.FeedbackSession // by key index
}

func NewDispatcher(sink kosketin.FeedbackSink, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{
		sink:     sink,
		log:      log,
		sessions: make(map[int]kosketin.FeedbackSession),
	}
}

// Dispatch consumes the events of one tick in emission order.
func (d *Dispatcher) Dispatch(events []Event) {
	for _, ev := range events {
		d.handle(ev)
	}
}

func (d *Dispatcher) handle(ev Event) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("feedback sink panicked", "key", ev.Key.Name, "on", ev.On, "panic", r)
		}
	}()
	if ev.On {
		if _, ok := d.sessions[ev.Index]; ok {
			// the press model guarantees this cannot happen; a duplicate
			// start here is a logic error upstream, not a reason to stack
			// a second session
			d.log.Warn("duplicate press for key with live session", "key", ev.Key.Name)
			return
		}
		session, err := d.sink.Start(ev.Key)
		if err != nil {
			d.log.Warn("feedback start failed", "key", ev.Key.Name, "err", err)
		}
		if session != nil {
			d.sessions[ev.Index] = session
		}
		return
	}
	session, ok := d.sessions[ev.Index]
	if !ok {
		return // spurious release, idempotent
	}
	delete(d.sessions, ev.Index)
	if err := session.Stop(); err != nil {
		d.log.Warn("feedback stop failed", "key", ev.Key.Name, "err", err)
	}
}

// Active returns the number of live feedback sessions.
func (d *Dispatcher) Active() int { return len(d.sessions) }

// ReleaseAll stops every live session, e.g. when the keyboard is
// replaced or the engine shuts down. It runs on the engine goroutine, so
// it carries the same panic boundary as per-event handling.
func (d *Dispatcher) ReleaseAll() {
	for i, session := range d.sessions {
		delete(d.sessions, i)
		d.stop(i, session)
	}
}

func (d *Dispatcher) stop(i int, session kosketin.FeedbackSession) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("feedback sink panicked", "index", i, "panic", r)
		}
	}()
	if err := session.Stop(); err != nil {
		d.log.Warn("feedback stop failed", "index", i, "err", err)
	}
}

// Close stops all sessions and closes the underlying sink.
func (d *Dispatcher) Close() error {
	d.ReleaseAll()
	return d.sink.Close()
}
