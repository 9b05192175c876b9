package game

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	audiosynth "github.com/decker502/beatpreview/internal/audio"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/audio/mp3"
	"github.com/hajimehoshi/ebiten/v2/audio/vorbis"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"
)

// ResourceManager is responsible for loading and caching previewer assets:
// the song player and the hit sound PCM shared by every link emitter.
//
// Thread Safety Note:
// This implementation is NOT thread-safe. The internal caches use standard Go maps.
// Concurrent startup loading goes through the stateless DecodeHitsound helper and
// os.ReadFile; the results are handed to the ResourceManager on the main goroutine.
//
// Usage:
//
//	audioContext := audio.NewContext(48000)
//	rm := NewResourceManager(audioContext)
//	pcm, err := rm.LoadHitsound("hitsound.wav")
//	if err != nil {
//	    log.Printf("Failed to load hitsound: %v", err)
//	}
type ResourceManager struct {
	audioCache   map[string]*audio.Player // Cache for loaded song players: path -> Player
	pcmCache     map[string][]byte        // Cache for decoded hit sounds: path -> 16-bit stereo PCM
	audioContext *audio.Context           // Global audio context for audio decoding
}

// NewResourceManager creates and initializes a new ResourceManager instance.
// The audioContext parameter is required for audio decoding and playback.
// It should be created once at startup.
//
// Parameters:
//   - audioContext: The global audio context used for decoding and playing audio files.
//
// Returns:
//   - A pointer to a newly initialized ResourceManager with empty caches.
func NewResourceManager(audioContext *audio.Context) *ResourceManager {
	return &ResourceManager{
		audioCache:   make(map[string]*audio.Player),
		pcmCache:     make(map[string][]byte),
		audioContext: audioContext,
	}
}

// AudioContext returns the shared audio context.
func (rm *ResourceManager) AudioContext() *audio.Context {
	return rm.audioContext
}

// LoadSong loads the song file and creates a player for it.
// Unlike the hit sounds, the song is streamed from the decoded data
// and never looped: the preview stops at the end of the song.
// Supported formats: MP3 (.mp3), OGG Vorbis (.ogg, .egg) and WAV (.wav).
//
// Parameters:
//   - path: The file path to the song.
//
// Returns:
//   - A pointer to the audio player (ready to play, but not started).
//   - The song length in seconds.
//   - An error if the file cannot be opened, decoded, or the format is unsupported.
func (rm *ResourceManager) LoadSong(path string) (*audio.Player, float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read song file %s: %w", path, err)
	}
	return rm.NewSongPlayer(path, data)
}

// NewSongPlayer creates the song player from already-read file data.
// The path is used for the format lookup and as the cache key.
func (rm *ResourceManager) NewSongPlayer(path string, data []byte) (*audio.Player, float64, error) {
	if rm.audioContext == nil {
		return nil, 0, fmt.Errorf("no audio context available for %s", path)
	}

	stream, err := decodeAudio(path, data, rm.audioContext.SampleRate())
	if err != nil {
		return nil, 0, err
	}

	// Release any previous player for the same file
	if old, exists := rm.audioCache[path]; exists {
		old.Pause()
		_ = old.Close()
	}

	player, err := rm.audioContext.NewPlayer(stream)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create audio player for %s: %w", path, err)
	}
	rm.audioCache[path] = player

	length := float64(stream.Length()) / float64(rm.audioContext.SampleRate()*pcmBytesPerFrame)
	log.Printf("[ResourceManager] Loaded song %s (%.2fs)", path, length)

	return player, length, nil
}

// LoadHitsound loads a hit sound file and decodes it to 16-bit stereo PCM
// at the audio context's sample rate. Results are cached by path.
//
// An empty path selects the synthesized default click.
func (rm *ResourceManager) LoadHitsound(path string) ([]byte, error) {
	if pcm, exists := rm.pcmCache[path]; exists {
		return pcm, nil
	}

	sampleRate := defaultSampleRate
	if rm.audioContext != nil {
		sampleRate = rm.audioContext.SampleRate()
	}

	var (
		pcm []byte
		err error
	)
	if path == "" {
		pcm, err = DefaultHitsound(sampleRate)
	} else {
		var data []byte
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read hitsound file %s: %w", path, err)
		}
		pcm, err = DecodeHitsound(path, data, sampleRate)
	}
	if err != nil {
		return nil, err
	}

	rm.pcmCache[path] = pcm
	return pcm, nil
}

// StoreHitsound caches PCM decoded elsewhere (e.g. during concurrent startup loading).
func (rm *ResourceManager) StoreHitsound(path string, pcm []byte) {
	rm.pcmCache[path] = pcm
}

const (
	defaultSampleRate = 48000
	pcmBytesPerFrame  = 4 // 16-bit stereo
)

// DecodeHitsound decodes an in-memory hit sound to 16-bit stereo PCM.
// It touches no shared state and may be called from any goroutine.
func DecodeHitsound(path string, data []byte, sampleRate int) ([]byte, error) {
	stream, err := decodeAudio(path, data, sampleRate)
	if err != nil {
		return nil, err
	}

	pcm, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("failed to decode hitsound %s: %w", path, err)
	}
	if len(pcm) == 0 {
		return nil, fmt.Errorf("hitsound %s contains no samples", path)
	}
	return pcm, nil
}

// DefaultHitsound renders the built-in click at the given sample rate.
func DefaultHitsound(sampleRate int) ([]byte, error) {
	stream, err := audiosynth.SynthClick(sampleRate, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to synthesize default hitsound: %w", err)
	}
	return stream.Bytes(), nil
}

// decodedStream is what the Ebitengine decoders return.
type decodedStream interface {
	io.ReadSeeker
	Length() int64
}

// decodeAudio decodes by file extension, resampling to sampleRate.
func decodeAudio(path string, data []byte, sampleRate int) (decodedStream, error) {
	reader := bytes.NewReader(data)
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".mp3":
		s, err := mp3.DecodeWithSampleRate(sampleRate, reader)
		if err != nil {
			return nil, fmt.Errorf("failed to decode MP3 audio %s: %w", path, err)
		}
		return s, nil
	case ".ogg", ".egg":
		s, err := vorbis.DecodeWithSampleRate(sampleRate, reader)
		if err != nil {
			return nil, fmt.Errorf("failed to decode OGG audio %s: %w", path, err)
		}
		return s, nil
	case ".wav":
		s, err := wav.DecodeWithSampleRate(sampleRate, reader)
		if err != nil {
			return nil, fmt.Errorf("failed to decode WAV audio %s: %w", path, err)
		}
		return s, nil
	case ".au":
		s, err := audiosynth.DecodeAUToPCM(reader, sampleRate)
		if err != nil {
			return nil, fmt.Errorf("failed to decode AU audio %s: %w", path, err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported audio format: %s (supported: .mp3, .ogg, .egg, .wav, .au)", ext)
	}
}
