// Package gomidi sends key presses to an external MIDI device as
// NoteOn/NoteOff pairs, so the keyboard can drive a hardware synth
// instead of (or in addition to) the built-in tone generator.
package gomidi

import (
	"fmt"
	"log/slog"
	"strings"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"kosketin"
)

type (
	// Sink is a MIDI out feedback sink. A Sink with no open port behaves
	// as a silent no-op; there is not much we can do without a device,
	// and the rest of the keyboard should not care.
	Sink struct {
		driver  *rtmididrv.Driver
		out     drivers.Out
		send    func(midi.Message) error
		channel uint8
		log     *slog.Logger
	}

	midiSession struct {
		sink *Sink
		note byte
	}
)

// NewSink creates the driver and opens the first output port whose name
// matches the given prefix (any port if the prefix is empty). Driver or
// port failures leave the sink in its silent state.
func NewSink(portPrefix string, channel uint8, log *slog.Logger) *Sink {
	if log == nil {
		log = slog.Default()
	}
	s := &Sink{channel: channel, log: log}
	driver, err := rtmididrv.New()
	if err != nil {
		// use driver = nil to indicate no driver available
		log.Info("midi: no driver available", "err", err)
		return s
	}
	s.driver = driver
	outs, err := driver.Outs()
	if err != nil {
		log.Info("midi: listing outputs failed", "err", err)
		return s
	}
	for _, out := range outs {
		if portPrefix != "" && !strings.HasPrefix(out.String(), portPrefix) {
			continue
		}
		if err := out.Open(); err != nil {
			log.Info("midi: opening output failed", "port", out.String(), "err", err)
			continue
		}
		send, err := midi.SendTo(out)
		if err != nil {
			out.Close()
			continue
		}
		s.out, s.send = out, send
		log.Info("midi: output opened", "port", out.String())
		break
	}
	if s.out == nil && portPrefix != "" {
		log.Info("midi: no output matching prefix", "prefix", portPrefix)
	}
	return s
}

// Start implements kosketin.FeedbackSink. The key's fundamental
// frequency picks the nearest MIDI note.
func (s *Sink) Start(key kosketin.Key) (kosketin.FeedbackSession, error) {
	if s.send == nil {
		return nil, nil
	}
	note := kosketin.NoteNumber(key.Frequency)
	if err := s.send(midi.NoteOn(s.channel, note, 127)); err != nil {
		return nil, fmt.Errorf("midi: note on %d: %w", note, err)
	}
	return &midiSession{sink: s, note: note}, nil
}

func (sess *midiSession) Stop() error {
	if sess.sink.send == nil {
		return nil
	}
	if err := sess.sink.send(midi.NoteOff(sess.sink.channel, sess.note)); err != nil {
		return fmt.Errorf("midi: note off %d: %w", sess.note, err)
	}
	return nil
}

func (s *Sink) Close() error {
	if s.out != nil && s.out.IsOpen() {
		s.out.Close()
	}
	if s.driver != nil {
		s.driver.Close()
	}
	return nil
}
