package audio

import (
	"io"
	"testing"
	"time"

	"github.com/gopxl/beep"
)

// TestSynthClickLength verifies the rendered click covers ClickDuration
func TestSynthClickLength(t *testing.T) {
	const rate = 48000

	stream, err := SynthClick(rate, 1)
	if err != nil {
		t.Fatalf("SynthClick failed: %v", err)
	}

	wantFrames := beep.SampleRate(rate).N(ClickDuration)
	if stream.Frames() != wantFrames {
		t.Errorf("Frames: got %d, want %d", stream.Frames(), wantFrames)
	}
	if stream.Length() != int64(wantFrames*4) {
		t.Errorf("Length: got %d, want %d", stream.Length(), wantFrames*4)
	}
	if stream.SampleRate() != rate {
		t.Errorf("SampleRate: got %d, want %d", stream.SampleRate(), rate)
	}
}

// TestSynthClickDecays verifies the click is loud at the attack and near silent at the end
func TestSynthClickDecays(t *testing.T) {
	stream, err := SynthClick(48000, 1)
	if err != nil {
		t.Fatalf("SynthClick failed: %v", err)
	}

	data := stream.Bytes()
	peak := func(from, to int) int {
		max := 0
		for i := from; i+1 < to; i += 2 {
			v := int(int16(uint16(data[i]) | uint16(data[i+1])<<8))
			if v < 0 {
				v = -v
			}
			if v > max {
				max = v
			}
		}
		return max
	}

	head := peak(0, 400*4)
	tail := peak(len(data)-400*4, len(data))
	if head == 0 {
		t.Fatal("attack should not be silent")
	}
	if tail*10 > head {
		t.Errorf("tail peak %d should be far below attack peak %d", tail, head)
	}
}

// TestSynthClickVolume verifies zero volume renders silence
func TestSynthClickVolume(t *testing.T) {
	stream, err := SynthClick(44100, 0)
	if err != nil {
		t.Fatalf("SynthClick failed: %v", err)
	}
	for i, b := range stream.Bytes() {
		if b != 0 {
			t.Fatalf("byte %d = %d, want silence", i, b)
		}
	}
}

// TestPCMStreamReadSeek verifies io.ReadSeeker behavior
func TestPCMStreamReadSeek(t *testing.T) {
	stream, err := RenderPCM(beep.Take(10, &clickGenerator{sr: 1000}), 1000)
	if err != nil {
		t.Fatalf("RenderPCM failed: %v", err)
	}
	if stream.Length() != 40 {
		t.Fatalf("Length: got %d, want 40", stream.Length())
	}

	all, err := io.ReadAll(stream)
	if err != nil || len(all) != 40 {
		t.Fatalf("ReadAll: got %d bytes, err %v", len(all), err)
	}

	if pos, err := stream.Seek(-8, io.SeekEnd); err != nil || pos != 32 {
		t.Errorf("Seek(-8, End): got %d, %v", pos, err)
	}
	rest, _ := io.ReadAll(stream)
	if len(rest) != 8 {
		t.Errorf("read after seek: got %d bytes, want 8", len(rest))
	}

	if _, err := stream.Seek(-100, io.SeekStart); err == nil {
		t.Error("negative seek should fail")
	}
	if _, err := stream.Seek(0, 42); err == nil {
		t.Error("invalid whence should fail")
	}
}

// TestClickStreamerBounded verifies the click streamer terminates
func TestClickStreamerBounded(t *testing.T) {
	s := NewClickStreamer(8000, 1)
	buf := make([][2]float64, 8000)
	n, _ := s.Stream(buf)
	if n != beep.SampleRate(8000).N(ClickDuration) {
		t.Errorf("streamed %d samples, want %d", n, beep.SampleRate(8000).N(60*time.Millisecond))
	}
}

func TestClickBuffer(t *testing.T) {
	const sampleRate = 44100
	buf := newClickBuffer(sampleRate)

	want := beep.SampleRate(sampleRate).N(ClickDuration)
	if buf.Len() != want {
		t.Errorf("Len() = %d, want %d", buf.Len(), want)
	}

	// Each streamer view starts at the buffer head
	a := buf.Streamer(0, buf.Len())
	b := buf.Streamer(0, buf.Len())
	sa := make([][2]float64, 16)
	sb := make([][2]float64, 16)
	a.Stream(sa)
	b.Stream(sb)
	for i := range sa {
		if sa[i] != sb[i] {
			t.Fatalf("sample %d differs between views: %v vs %v", i, sa[i], sb[i])
		}
	}
}

func TestVoiceIdleState(t *testing.T) {
	v := (&Speaker{buffer: newClickBuffer(44100)}).NewVoice()

	if v.IsPlaying() {
		t.Error("new voice should not be playing")
	}
	if v.Volume() != 1 {
		t.Errorf("Volume() = %v, want 1", v.Volume())
	}
	v.SetVolume(0.25)
	if v.Volume() != 0.25 {
		t.Errorf("Volume() = %v, want 0.25", v.Volume())
	}
	if err := v.Rewind(); err != nil {
		t.Errorf("Rewind() = %v", err)
	}
	// Pause without a stream must not touch the speaker
	v.Pause()
}
