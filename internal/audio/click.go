package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// Default hit click parameters
const (
	ClickDuration  = 60 * time.Millisecond
	clickFrequency = 1800.0 // Hz
	clickDecay     = 70.0   // envelope decay rate (1/s)
	clickNoiseMix  = 0.35
)

// clickGenerator produces a short percussive tick:
// an exponentially decaying sine with a burst of noise on the attack.
type clickGenerator struct {
	sr   beep.SampleRate
	pos  int
	seed uint32
}

// Stream implements beep.Streamer. The generator is infinite;
// wrap it with beep.Take to bound it.
func (g *clickGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		t := float64(g.pos) / float64(g.sr)
		envelope := math.Exp(-t * clickDecay)

		// Linear congruential noise, deterministic per generator
		g.seed = g.seed*1664525 + 1013904223
		noise := float64(g.seed)/float64(math.MaxUint32)*2 - 1

		tone := math.Sin(2 * math.Pi * clickFrequency * t)
		sample := envelope * ((1-clickNoiseMix)*tone + clickNoiseMix*noise*envelope)

		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *clickGenerator) Err() error {
	return nil
}

// NewClickStreamer returns a bounded streamer for the default hit click.
//
// Parameters:
//   - sampleRate: Output sample rate in Hz
//   - volume: Linear gain, 1 keeps the generator's amplitude
func NewClickStreamer(sampleRate int, volume float64) beep.Streamer {
	sr := beep.SampleRate(sampleRate)
	click := beep.Take(sr.N(ClickDuration), &clickGenerator{sr: sr, seed: 0x2545f491})
	// effects.Gain multiplies samples by (1 + Gain)
	return &effects.Gain{Streamer: click, Gain: volume - 1}
}

// SynthClick renders the default hit click to PCM.
func SynthClick(sampleRate int, volume float64) (*PCMStream, error) {
	return RenderPCM(NewClickStreamer(sampleRate, volume), sampleRate)
}
