package kosketin

import (
	"errors"
	"testing"
)

type (
	recordingSink struct {
		starts   int
		stops    int
		closed   bool
		startErr error
	}

	recordingSession struct{ sink *recordingSink }
)

func (s *recordingSink) Start(Key) (FeedbackSession, error) {
	if s.startErr != nil {
		return nil, s.startErr
	}
	s.starts++
	return &recordingSession{sink: s}, nil
}

func (s *recordingSink) Close() error { s.closed = true; return nil }

func (s *recordingSession) Stop() error { s.sink.stops++; return nil }

func TestMultiSink(t *testing.T) {
	good1 := &recordingSink{}
	bad := &recordingSink{startErr: errors.New("no hardware")}
	good2 := &recordingSink{}
	m := MultiSink(good1, bad, good2)

	session, err := m.Start(Key{Name: "A4", Frequency: 440, Sharpness: 0.5})
	if err == nil {
		t.Errorf("Start: expected the failing sink's error")
	}
	// the failing sink must not prevent the others from starting
	if good1.starts != 1 || good2.starts != 1 {
		t.Errorf("starts = %d, %d; want 1, 1", good1.starts, good2.starts)
	}
	if session == nil {
		t.Fatalf("Start: session is nil despite partial success")
	}
	if err := session.Stop(); err != nil {
		t.Errorf("Stop: %v", err)
	}
	if good1.stops != 1 || good2.stops != 1 {
		t.Errorf("stops = %d, %d; want 1, 1", good1.stops, good2.stops)
	}
	if err := m.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if !good1.closed || !bad.closed || !good2.closed {
		t.Errorf("Close did not reach every sink")
	}
}

// silentSink reports absent hardware the way the MIDI sink does when no
// device matches: nil session, nil error.
type silentSink struct{}

func (silentSink) Start(Key) (FeedbackSession, error) { return nil, nil }
func (silentSink) Close() error                       { return nil }

func TestMultiSinkSkipsAbsentHardware(t *testing.T) {
	good := &recordingSink{}
	m := MultiSink(silentSink{}, good)

	session, err := m.Start(Key{Name: "A4", Frequency: 440, Sharpness: 0.5})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if session == nil {
		t.Fatalf("Start: session is nil")
	}
	if err := session.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if good.stops != 1 {
		t.Errorf("stops = %d, want 1", good.stops)
	}

	// absent hardware alone still yields a stoppable session
	session, err = MultiSink(silentSink{}).Start(Key{Name: "A4", Frequency: 440})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := session.Stop(); err != nil {
		t.Errorf("Stop: %v", err)
	}
}

func TestNopSink(t *testing.T) {
	s := NopSink()
	session, err := s.Start(Key{Name: "A4", Frequency: 440})
	if err != nil || session == nil {
		t.Fatalf("Start = %v, %v", session, err)
	}
	if err := session.Stop(); err != nil {
		t.Errorf("Stop: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
