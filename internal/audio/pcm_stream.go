// Package audio renders synthesized hit sounds into 16-bit PCM that
// Ebitengine's audio players can consume.
package audio

import (
	"fmt"
	"io"
	"math"

	"github.com/gopxl/beep"
)

// PCMStream holds rendered 16-bit little-endian stereo PCM.
// It implements io.ReadSeeker so it can back an Ebitengine audio.Player.
type PCMStream struct {
	data       []byte // Interleaved L/R 16-bit signed samples
	sampleRate int    // Sample rate in Hz
	offset     int64  // Current read position
}

const bytesPerFrame = 4 // 2 channels * 16 bit

// RenderPCM drains a beep streamer into a PCMStream.
// Samples outside [-1, 1] are clipped.
//
// Parameters:
//   - s: Finite streamer to render (an infinite streamer never returns)
//   - sampleRate: Sample rate the streamer was built for
//
// Returns:
//   - *PCMStream: Rendered audio
//   - error: Error reported by the streamer
func RenderPCM(s beep.Streamer, sampleRate int) (*PCMStream, error) {
	buf := make([][2]float64, 512)
	data := make([]byte, 0, sampleRate/10*bytesPerFrame)

	for {
		n, ok := s.Stream(buf)
		for i := 0; i < n; i++ {
			data = appendSample(data, buf[i][0])
			data = appendSample(data, buf[i][1])
		}
		if !ok {
			break
		}
	}

	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("failed to render stream: %w", err)
	}

	return &PCMStream{data: data, sampleRate: sampleRate}, nil
}

func appendSample(data []byte, v float64) []byte {
	v = math.Max(-1, math.Min(1, v))
	pcm := int16(v * math.MaxInt16)
	// Write as little-endian 16-bit signed integer
	return append(data, byte(pcm), byte(pcm>>8))
}

// Read reads PCM data into p.
// Implements io.Reader interface.
func (s *PCMStream) Read(p []byte) (n int, err error) {
	if s.offset >= int64(len(s.data)) {
		return 0, io.EOF
	}

	n = copy(p, s.data[s.offset:])
	s.offset += int64(n)
	return n, nil
}

// Seek sets the offset for the next Read.
// Implements io.Seeker interface.
func (s *PCMStream) Seek(offset int64, whence int) (int64, error) {
	var newOffset int64

	switch whence {
	case io.SeekStart:
		newOffset = offset
	case io.SeekCurrent:
		newOffset = s.offset + offset
	case io.SeekEnd:
		newOffset = int64(len(s.data)) + offset
	default:
		return 0, fmt.Errorf("invalid whence: %d", whence)
	}

	if newOffset < 0 {
		return 0, fmt.Errorf("negative position: %d", newOffset)
	}

	s.offset = newOffset
	return newOffset, nil
}

// Length returns the total length of the PCM data in bytes.
func (s *PCMStream) Length() int64 {
	return int64(len(s.data))
}

// Bytes returns the raw PCM data, suitable for audio.Context.NewPlayerFromBytes.
func (s *PCMStream) Bytes() []byte {
	return s.data
}

// SampleRate returns the sample rate of the audio in Hz.
func (s *PCMStream) SampleRate() int {
	return s.sampleRate
}

// Frames returns the number of stereo frames.
func (s *PCMStream) Frames() int {
	return len(s.data) / bytesPerFrame
}
