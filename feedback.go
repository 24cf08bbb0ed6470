package kosketin

import "errors"

type (
	// FeedbackSession is one live feedback session for a single key:
	// sound, vibration, a MIDI note, or any composition of those. It is
	// created by a FeedbackSink and stopped exactly once.
	FeedbackSession interface {
		Stop() error
	}

	// FeedbackSink starts feedback for a key press. Implementations must
	// accept a new Start for the same key after a prior Stop, and must
	// treat missing hardware as a silent no-op rather than an error that
	// surfaces to the user.
	FeedbackSink interface {
		Start(key Key) (FeedbackSession, error)
		Close() error
	}
)

type (
	nopSink    struct{}
	nopSession struct{}

	multiSink    []FeedbackSink
	multiSession []FeedbackSession
)

// NopSink returns a sink that does nothing. It stands in for feedback
// hardware that is absent or disabled.
func NopSink() FeedbackSink { return nopSink{} }

func (nopSink) Start(Key) (FeedbackSession, error) { return nopSession{}, nil }
func (nopSink) Close() error                       { return nil }
func (nopSession) Stop() error                     { return nil }

// MultiSink composes several sinks into one. Start starts a session on
// every sink; a sink failing to start does not prevent the others from
// starting, and the error of the first failing sink is returned alongside
// the combined session for the ones that did start. A sink reporting
// absent hardware with a nil session contributes nothing to the combined
// session.
func MultiSink(sinks ...FeedbackSink) FeedbackSink {
	return multiSink(sinks)
}

func (m multiSink) Start(key Key) (FeedbackSession, error) {
	var (
		sessions multiSession
		firstErr error
	)
	for _, s := range m {
		sess, err := s.Start(key)
		if err != nil {
			firstErr = errors.Join(firstErr, err)
			continue
		}
		if sess != nil {
			sessions = append(sessions, sess)
		}
	}
	return sessions, firstErr
}

func (m multiSink) Close() error {
	var err error
	for _, s := range m {
		err = errors.Join(err, s.Close())
	}
	return err
}

func (m multiSession) Stop() error {
	var err error
	for _, s := range m {
		err = errors.Join(err, s.Stop())
	}
	return err
}
