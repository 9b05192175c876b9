package audio

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
)

// speakerLatency is the speaker buffer length; shorter means tighter hit timing.
const speakerLatency = 50 * time.Millisecond

// Speaker plays the default click through beep's speaker. It serves front-ends
// that run without an Ebitengine audio context, such as the terminal previewer.
type Speaker struct {
	buffer *beep.Buffer
}

// OpenSpeaker initializes the speaker and renders the click once.
// Call Close when done.
func OpenSpeaker(sampleRate int) (*Speaker, error) {
	sr := beep.SampleRate(sampleRate)
	if err := speaker.Init(sr, sr.N(speakerLatency)); err != nil {
		return nil, fmt.Errorf("failed to initialize speaker: %w", err)
	}
	return &Speaker{buffer: newClickBuffer(sampleRate)}, nil
}

// Close stops all voices and releases the output device.
func (s *Speaker) Close() {
	speaker.Clear()
	speaker.Close()
}

// NewVoice returns an independent voice sharing the rendered click.
func (s *Speaker) NewVoice() *Voice {
	return &Voice{buffer: s.buffer, volume: 1}
}

// newClickBuffer renders the click at full volume; voices apply their own gain.
func newClickBuffer(sampleRate int) *beep.Buffer {
	buf := beep.NewBuffer(beep.Format{
		SampleRate:  beep.SampleRate(sampleRate),
		NumChannels: 2,
		Precision:   2,
	})
	buf.Append(NewClickStreamer(sampleRate, 1))
	return buf
}

// Voice is one playback slot on the speaker mixer.
//
// The speaker mixes on its own goroutine, so the in-flight stream is tracked
// with an atomic pointer and the speaker lock is never taken while holding
// voice state.
type Voice struct {
	buffer  *beep.Buffer
	volume  float64
	current atomic.Pointer[beep.Ctrl]
}

// Play starts the click from the beginning, cutting off any previous one.
func (v *Voice) Play() {
	v.Pause()

	ctrl := &beep.Ctrl{Streamer: &effects.Gain{
		Streamer: v.buffer.Streamer(0, v.buffer.Len()),
		Gain:     v.volume - 1,
	}}
	v.current.Store(ctrl)
	speaker.Play(beep.Seq(ctrl, beep.Callback(func() {
		v.current.CompareAndSwap(ctrl, nil)
	})))
}

// Pause stops the click; the mixer drops the finished stream.
func (v *Voice) Pause() {
	ctrl := v.current.Swap(nil)
	if ctrl == nil {
		return
	}
	speaker.Lock()
	ctrl.Streamer = nil
	speaker.Unlock()
}

// Rewind is a no-op: every Play starts at the head of the buffer.
func (v *Voice) Rewind() error {
	return nil
}

// IsPlaying reports whether the click is still sounding.
func (v *Voice) IsPlaying() bool {
	return v.current.Load() != nil
}

// SetVolume sets the linear volume applied from the next Play.
func (v *Voice) SetVolume(volume float64) {
	v.volume = volume
}

// Volume returns the linear volume.
func (v *Voice) Volume() float64 {
	return v.volume
}
