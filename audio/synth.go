// Package audio is a small polyphonic tone generator used as the audio
// feedback sink: each pressed key sustains a tone built from a few
// decaying sine partials until its session is stopped. It is
// deliberately minimal; it exists to give keys a sound, not to be a
// synthesizer.
package audio

import (
	"math"
	"sync"

	"github.com/viterin/vek/vek32"

	"kosketin"
)

const (
	DefaultSampleRate = 44100
	numVoices         = 24

	attackTime  = 0.005 // seconds to full level after trigger
	releaseTime = 0.120 // seconds to silence after release
	masterGain  = 0.25
)

type (
	// Synth renders all live voices into interleaved stereo float32
	// buffers. It implements kosketin.FeedbackSink: Start triggers a
	// voice and the returned session releases it.
	Synth struct {
		mu         sync.Mutex
		sampleRate float64
		voices     [numVoices]voice
		mono       []float32
		closed     bool
	}

	voice struct {
		active  bool
		sustain bool
		gen     uint64 // incremented per trigger, so a stale session cannot release a stolen voice
		freq    float64
		bright  float64 // sharper keys sound brighter
		phase   float64
		level   float64 // envelope state
		age     int     // samples since last trigger or release
	}

	session struct {
		synth *Synth
		index int
		gen   uint64
	}
)

func NewSynth(sampleRate int) *Synth {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	return &Synth{sampleRate: float64(sampleRate)}
}

// Start implements kosketin.FeedbackSink. A voice is stolen from the
// released ones first, oldest first, so retriggering a key never cuts a
// still-held note.
func (s *Synth) Start(key kosketin.Key) (kosketin.FeedbackSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, nil
	}
	best, bestReleased, bestAge := 0, false, -1
	for i := range s.voices {
		v := &s.voices[i]
		released := !v.sustain
		if (released && !bestReleased) || (released == bestReleased && v.age > bestAge) {
			best, bestReleased, bestAge = i, released, v.age
		}
	}
	v := &s.voices[best]
	v.gen++
	*v = voice{
		active:  true,
		sustain: true,
		gen:     v.gen,
		freq:    key.Frequency,
		bright:  key.Sharpness,
		phase:   0,
		level:   0,
	}
	return &session{synth: s, index: best, gen: v.gen}, nil
}

func (sess *session) Stop() error {
	s := sess.synth
	s.mu.Lock()
	defer s.mu.Unlock()
	v := &s.voices[sess.index]
	if v.gen != sess.gen || !v.sustain {
		return nil
	}
	v.sustain = false
	v.age = 0
	return nil
}

// Close silences and deactivates everything. Render keeps working and
// produces silence, so an audio callback already in flight stays safe.
func (s *Synth) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for i := range s.voices {
		s.voices[i] = voice{gen: s.voices[i].gen}
	}
	return nil
}

// Render fills buf, an interleaved stereo buffer, with the sum of all
// live voices. len(buf) must be even.
func (s *Synth) Render(buf []float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	frames := len(buf) / 2
	if cap(s.mono) < frames {
		s.mono = make([]float32, frames)
	}
	mono := s.mono[:frames]
	clear(mono)
	attack := 1 / (attackTime * s.sampleRate)
	release := math.Exp(-1 / (releaseTime * s.sampleRate) * 5)
	for i := range s.voices {
		v := &s.voices[i]
		if !v.active {
			continue
		}
		step := 2 * math.Pi * v.freq / s.sampleRate
		for j := 0; j < frames; j++ {
			if v.sustain {
				if v.level < 1 {
					v.level = math.Min(1, v.level+attack)
				}
			} else {
				v.level *= release
			}
			// fundamental plus two partials; sharper keys carry more of
			// the upper partials
			sample := math.Sin(v.phase) +
				(0.3+0.4*v.bright)*math.Sin(2*v.phase)/2 +
				(0.2+0.5*v.bright)*math.Sin(3*v.phase)/4
			mono[j] += float32(sample * v.level)
			v.phase += step
			v.age++
		}
		if v.phase > 2*math.Pi {
			v.phase = math.Mod(v.phase, 2*math.Pi)
		}
		if !v.sustain && v.level < 1e-4 {
			v.active = false
		}
	}
	vek32.MulNumber_Inplace(mono, masterGain)
	for j := 0; j < frames; j++ {
		buf[2*j] = mono[j]
		buf[2*j+1] = mono[j]
	}
}

// SampleRate returns the synth's sample rate in Hz.
func (s *Synth) SampleRate() int { return int(s.sampleRate) }
