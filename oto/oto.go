// Package oto outputs the audio synth to the default audio device using
// ebitengine/oto. It is the only package that touches the platform audio
// API; everything above it deals in float32 buffers.
package oto

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/ebitengine/oto/v3"

	"kosketin/audio"
)

const renderFrames = 1024

type (
	// Output is a running audio output pulling buffers from a synth. The
	// oto context has no close; closing the player releases what can be
	// released.
	Output struct {
		player *oto.Player
	}

	// synthReader adapts audio.Synth's Render to the io.Reader the oto
	// player pulls from, converting float32 samples to little-endian
	// bytes.
	synthReader struct {
		synth *audio.Synth
		buf   []float32
	}
)

// Play opens the audio device and starts playing the synth. The returned
// Output must be closed to release the device.
func Play(synth *audio.Synth) (*Output, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   synth.SampleRate(),
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot create oto context: %w", err)
	}
	<-ready
	player := ctx.NewPlayer(&synthReader{synth: synth})
	player.Play()
	return &Output{player: player}, nil
}

func (o *Output) Close() error {
	if err := o.player.Close(); err != nil {
		return fmt.Errorf("cannot close oto player: %w", err)
	}
	return nil
}

func (r *synthReader) Read(p []byte) (int, error) {
	frames := len(p) / 8 // 2 channels x 4 bytes
	if frames > renderFrames {
		frames = renderFrames
	}
	if frames == 0 {
		return 0, nil
	}
	if cap(r.buf) < frames*2 {
		r.buf = make([]float32, frames*2)
	}
	buf := r.buf[:frames*2]
	r.synth.Render(buf)
	for i, sample := range buf {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(sample))
	}
	return frames * 8, nil
}
