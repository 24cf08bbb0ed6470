package haptic

import (
	"fmt"
	"log/slog"
	"sync"

	"go.bug.st/serial"

	"kosketin"
)

const DefaultBaudRate = 115200

type (
	// SerialSink sends start/stop frames to a motor controller. Writes
	// are serialized; the controller expects whole frames.
	SerialSink struct {
		mu       sync.Mutex
		port     serial.Port
		keyboard *kosketin.Keyboard
		log      *slog.Logger
	}

	serialSession struct {
		sink    *SerialSink
		channel byte
	}
)

// OpenSerial opens the named serial device. The keyboard is needed to
// map key names to controller channels (the key's index in keyboard
// order). Callers that want the degrade-silently behavior should fall
// back to kosketin.NopSink when this returns an error.
func OpenSerial(device string, baud int, kb *kosketin.Keyboard, log *slog.Logger) (*SerialSink, error) {
	if log == nil {
		log = slog.Default()
	}
	if baud <= 0 {
		baud = DefaultBaudRate
	}
	port, err := serial.Open(device, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("opening haptic serial port %s: %w", device, err)
	}
	log.Info("haptic: serial port opened", "device", device, "baud", baud)
	return &SerialSink{port: port, keyboard: kb, log: log}, nil
}

// Start implements kosketin.FeedbackSink: full intensity, sharpness from
// the key.
func (s *SerialSink) Start(key kosketin.Key) (kosketin.FeedbackSession, error) {
	i, ok := s.keyboard.IndexOf(key.Name)
	if !ok {
		return nil, fmt.Errorf("haptic: key %q not on the configured keyboard", key.Name)
	}
	channel := byte(i)
	if err := s.send(Frame{
		Cmd:       CmdStart,
		Channel:   channel,
		Intensity: 255,
		Sharpness: byte(key.Sharpness * 255),
	}); err != nil {
		return nil, err
	}
	return &serialSession{sink: s, channel: channel}, nil
}

func (sess *serialSession) Stop() error {
	return sess.sink.send(Frame{Cmd: CmdStop, Channel: sess.channel})
}

func (s *SerialSink) send(f Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.port.Write(f.Encode()); err != nil {
		return fmt.Errorf("haptic: writing frame: %w", err)
	}
	return nil
}

func (s *SerialSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log.Info("haptic: closing serial port")
	return s.port.Close()
}
