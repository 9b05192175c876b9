package audio

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/gopxl/beep"
)

// Sun/NeXT audio (.au) header, big-endian, 24 bytes minimum
type auHeader struct {
	Magic      uint32 // 0x2e736e64 (".snd")
	DataOffset uint32 // Offset to audio data (typically 24)
	DataSize   uint32 // Size of audio data in bytes (0xFFFFFFFF if unknown)
	Encoding   uint32 // Audio encoding format
	SampleRate uint32 // Sample rate in Hz
	Channels   uint32 // Number of interleaved channels
}

const (
	auHeaderSize    = 24
	auMagic         = 0x2e736e64 // ".snd" in big-endian
	auEncodingULaw  = 1          // 8-bit μ-law
	auEncodingPCM16 = 3          // 16-bit linear PCM, big-endian
	auUnknownSize   = 0xFFFFFFFF
)

// μ-law decompression table (converts μ-law byte to 16-bit PCM)
var mulawTable = [256]int16{
	-32124, -31100, -30076, -29052, -28028, -27004, -25980, -24956,
	-23932, -22908, -21884, -20860, -19836, -18812, -17788, -16764,
	-15996, -15484, -14972, -14460, -13948, -13436, -12924, -12412,
	-11900, -11388, -10876, -10364, -9852, -9340, -8828, -8316,
	-7932, -7676, -7420, -7164, -6908, -6652, -6396, -6140,
	-5884, -5628, -5372, -5116, -4860, -4604, -4348, -4092,
	-3900, -3772, -3644, -3516, -3388, -3260, -3132, -3004,
	-2876, -2748, -2620, -2492, -2364, -2236, -2108, -1980,
	-1884, -1820, -1756, -1692, -1628, -1564, -1500, -1436,
	-1372, -1308, -1244, -1180, -1116, -1052, -988, -924,
	-876, -844, -812, -780, -748, -716, -684, -652,
	-620, -588, -556, -524, -492, -460, -428, -396,
	-372, -356, -340, -324, -308, -292, -276, -260,
	-244, -228, -212, -196, -180, -164, -148, -132,
	-120, -112, -104, -96, -88, -80, -72, -64,
	-56, -48, -40, -32, -24, -16, -8, 0,
	32124, 31100, 30076, 29052, 28028, 27004, 25980, 24956,
	23932, 22908, 21884, 20860, 19836, 18812, 17788, 16764,
	15996, 15484, 14972, 14460, 13948, 13436, 12924, 12412,
	11900, 11388, 10876, 10364, 9852, 9340, 8828, 8316,
	7932, 7676, 7420, 7164, 6908, 6652, 6396, 6140,
	5884, 5628, 5372, 5116, 4860, 4604, 4348, 4092,
	3900, 3772, 3644, 3516, 3388, 3260, 3132, 3004,
	2876, 2748, 2620, 2492, 2364, 2236, 2108, 1980,
	1884, 1820, 1756, 1692, 1628, 1564, 1500, 1436,
	1372, 1308, 1244, 1180, 1116, 1052, 988, 924,
	876, 844, 812, 780, 748, 716, 684, 652,
	620, 588, 556, 524, 492, 460, 428, 396,
	372, 356, 340, 324, 308, 292, 276, 260,
	244, 228, 212, 196, 180, 164, 148, 132,
	120, 112, 104, 96, 88, 80, 72, 64,
	56, 48, 40, 32, 24, 16, 8, 0,
}

// auStreamer streams decoded .au samples as stereo float frames.
// Mono files are duplicated to both channels.
type auStreamer struct {
	samples  []float64 // Interleaved, normalized to [-1, 1]
	channels int
	pos      int // Frame position
}

func (s *auStreamer) Stream(out [][2]float64) (n int, ok bool) {
	frames := len(s.samples) / s.channels
	if s.pos >= frames {
		return 0, false
	}
	for n < len(out) && s.pos < frames {
		base := s.pos * s.channels
		out[n][0] = s.samples[base]
		out[n][1] = s.samples[base+s.channels-1]
		n++
		s.pos++
	}
	return n, true
}

func (s *auStreamer) Err() error {
	return nil
}

// DecodeAU decodes a Sun/NeXT audio file (μ-law or 16-bit linear PCM,
// mono or stereo).
//
// Returns:
//   - beep.Streamer: Stereo stream at the file's own sample rate
//   - beep.SampleRate: Sample rate declared in the header
//   - error: Error if the header is malformed or the encoding unsupported
func DecodeAU(r io.Reader) (beep.Streamer, beep.SampleRate, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read AU file: %w", err)
	}
	if len(data) < auHeaderSize {
		return nil, 0, fmt.Errorf("AU file too short: %d bytes (minimum %d)", len(data), auHeaderSize)
	}

	header := auHeader{
		Magic:      binary.BigEndian.Uint32(data[0:]),
		DataOffset: binary.BigEndian.Uint32(data[4:]),
		DataSize:   binary.BigEndian.Uint32(data[8:]),
		Encoding:   binary.BigEndian.Uint32(data[12:]),
		SampleRate: binary.BigEndian.Uint32(data[16:]),
		Channels:   binary.BigEndian.Uint32(data[20:]),
	}

	if header.Magic != auMagic {
		return nil, 0, fmt.Errorf("invalid AU magic number: 0x%08x (expected 0x%08x)", header.Magic, auMagic)
	}
	if header.Channels < 1 || header.Channels > 2 {
		return nil, 0, fmt.Errorf("unsupported channel count: %d (only 1-2 supported)", header.Channels)
	}
	if header.SampleRate == 0 {
		return nil, 0, fmt.Errorf("invalid sample rate: 0")
	}

	offset := int(header.DataOffset)
	if offset < auHeaderSize || offset >= len(data) {
		return nil, 0, fmt.Errorf("invalid data offset: %d (file size: %d)", offset, len(data))
	}
	payload := data[offset:]
	if header.DataSize != auUnknownSize && int(header.DataSize) < len(payload) {
		payload = payload[:header.DataSize]
	}

	var samples []float64
	switch header.Encoding {
	case auEncodingULaw:
		samples = make([]float64, len(payload))
		for i, b := range payload {
			samples[i] = float64(mulawTable[b]) / 32768
		}
	case auEncodingPCM16:
		samples = make([]float64, len(payload)/2)
		for i := range samples {
			samples[i] = float64(int16(binary.BigEndian.Uint16(payload[i*2:]))) / 32768
		}
	default:
		return nil, 0, fmt.Errorf("unsupported AU encoding: %d (supported: μ-law [1], 16-bit PCM [3])", header.Encoding)
	}

	channels := int(header.Channels)
	samples = samples[:len(samples)/channels*channels]

	return &auStreamer{samples: samples, channels: channels}, beep.SampleRate(header.SampleRate), nil
}

// auResampleQuality is the beep.Resample quality used for .au hit sounds.
const auResampleQuality = 4

// DecodeAUToPCM decodes an .au file and renders it as 16-bit stereo PCM
// at sampleRate.
func DecodeAUToPCM(r io.Reader, sampleRate int) (*PCMStream, error) {
	s, rate, err := DecodeAU(r)
	if err != nil {
		return nil, err
	}
	if target := beep.SampleRate(sampleRate); rate != target {
		s = beep.Resample(auResampleQuality, rate, target, s)
	}
	return RenderPCM(s, sampleRate)
}
