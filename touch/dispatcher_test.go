package touch

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kosketin"
)

type (
	fakeSink struct {
		live     map[string]int // key name -> live session count
		started  int
		stopped  int
		closed   bool
		startErr error
		panics   bool
	}

	fakeSession struct {
		sink *fakeSink
		name string
	}
)

func newFakeSink() *fakeSink { return &fakeSink{live: make(map[string]int)} }

func (s *fakeSink) Start(key kosketin.Key) (kosketin.FeedbackSession, error) {
	if s.panics {
		panic("sink exploded")
	}
	if s.startErr != nil {
		return nil, s.startErr
	}
	s.started++
	s.live[key.Name]++
	return &fakeSession{sink: s, name: key.Name}, nil
}

func (s *fakeSink) Close() error { s.closed = true; return nil }

func (s *fakeSession) Stop() error {
	s.sink.stopped++
	s.sink.live[s.name]--
	return nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDispatcherOneSessionPerKey(t *testing.T) {
	sink := newFakeSink()
	d := NewDispatcher(sink, discard())
	key := kosketin.Key{Name: "A4", Frequency: 440, Sharpness: 0.5}

	d.Dispatch([]Event{{Key: key, Index: 3, On: true}})
	require.Equal(t, 1, sink.live["A4"])
	assert.Equal(t, 1, d.Active())

	// a duplicate press for a key with a live session is ignored
	d.Dispatch([]Event{{Key: key, Index: 3, On: true}})
	assert.Equal(t, 1, sink.live["A4"])
	assert.Equal(t, 1, d.Active())

	d.Dispatch([]Event{{Key: key, Index: 3, On: false}})
	assert.Equal(t, 0, sink.live["A4"])
	assert.Equal(t, 0, d.Active())

	// press-release-press is two separate sessions
	d.Dispatch([]Event{{Key: key, Index: 3, On: true}})
	assert.Equal(t, 2, sink.started)
	assert.Equal(t, 1, d.Active())
}

func TestDispatcherSpuriousRelease(t *testing.T) {
	sink := newFakeSink()
	d := NewDispatcher(sink, discard())
	d.Dispatch([]Event{{Key: kosketin.Key{Name: "A4"}, Index: 3, On: false}})
	assert.Equal(t, 0, sink.stopped)
	assert.Equal(t, 0, d.Active())
}

func TestDispatcherStartFailure(t *testing.T) {
	sink := newFakeSink()
	sink.startErr = errors.New("device gone")
	d := NewDispatcher(sink, discard())
	key := kosketin.Key{Name: "A4", Frequency: 440}

	d.Dispatch([]Event{{Key: key, Index: 3, On: true}})
	assert.Equal(t, 0, d.Active())

	// the release for the failed start is a no-op, and once the sink
	// recovers the key works again
	d.Dispatch([]Event{{Key: key, Index: 3, On: false}})
	sink.startErr = nil
	d.Dispatch([]Event{{Key: key, Index: 3, On: true}})
	assert.Equal(t, 1, d.Active())
}

func TestDispatcherRecoversSinkPanic(t *testing.T) {
	sink := newFakeSink()
	sink.panics = true
	d := NewDispatcher(sink, discard())
	key := kosketin.Key{Name: "A4", Frequency: 440}

	assert.NotPanics(t, func() {
		d.Dispatch([]Event{{Key: key, Index: 3, On: true}})
	})
	assert.Equal(t, 0, d.Active())

	sink.panics = false
	d.Dispatch([]Event{{Key: key, Index: 3, On: true}})
	assert.Equal(t, 1, d.Active())
}

// absentSink reports missing hardware with a nil session and nil error.
type absentSink struct{}

func (absentSink) Start(kosketin.Key) (kosketin.FeedbackSession, error) { return nil, nil }
func (absentSink) Close() error                                         { return nil }

func TestDispatcherAbsentHardwareInMulti(t *testing.T) {
	sink := newFakeSink()
	d := NewDispatcher(kosketin.MultiSink(sink, absentSink{}), discard())
	key := kosketin.Key{Name: "A4", Frequency: 440, Sharpness: 0.5}

	d.Dispatch([]Event{{Key: key, Index: 3, On: true}})
	require.Equal(t, 1, sink.live["A4"])

	// releasing must reach the working sink, not trip over the absent one
	assert.NotPanics(t, func() {
		d.Dispatch([]Event{{Key: key, Index: 3, On: false}})
	})
	assert.Equal(t, 0, sink.live["A4"])
	assert.Equal(t, 1, sink.stopped)

	d.Dispatch([]Event{{Key: key, Index: 3, On: true}})
	assert.NotPanics(t, d.ReleaseAll)
	assert.Equal(t, 0, sink.live["A4"])
	assert.Equal(t, 0, d.Active())
}

type panickyStopSession struct{}

func (panickyStopSession) Stop() error { panic("stop exploded") }

type panickyStopSink struct{}

func (panickyStopSink) Start(kosketin.Key) (kosketin.FeedbackSession, error) {
	return panickyStopSession{}, nil
}

func (panickyStopSink) Close() error { return nil }

func TestDispatcherReleaseAllRecoversStopPanic(t *testing.T) {
	d := NewDispatcher(panickyStopSink{}, discard())
	d.Dispatch([]Event{{Key: kosketin.Key{Name: "A4", Frequency: 440}, Index: 3, On: true}})
	require.Equal(t, 1, d.Active())

	assert.NotPanics(t, d.ReleaseAll)
	assert.Equal(t, 0, d.Active())
}

func TestDispatcherReleaseAll(t *testing.T) {
	sink := newFakeSink()
	d := NewDispatcher(sink, discard())
	for i, name := range []string{"C", "D", "E"} {
		d.Dispatch([]Event{{Key: kosketin.Key{Name: name, Frequency: 100}, Index: i, On: true}})
	}
	require.Equal(t, 3, d.Active())

	d.ReleaseAll()
	assert.Equal(t, 0, d.Active())
	assert.Equal(t, 3, sink.stopped)
	assert.False(t, sink.closed)

	require.NoError(t, d.Close())
	assert.True(t, sink.closed)
}
