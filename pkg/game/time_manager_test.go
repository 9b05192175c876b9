package game

import (
	"math"
	"testing"

	"github.com/decker502/beatpreview/pkg/chart"
)

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// TestTimeManagerConstantBPM 测试恒定 BPM 下的节拍/时间换算
func TestTimeManagerConstantBPM(t *testing.T) {
	tm := NewTimeManager(120)

	if got := tm.TimeFromBeat(4); !near(got, 2) {
		t.Errorf("TimeFromBeat(4): got %v, want 2", got)
	}
	if got := tm.BeatFromTime(3); !near(got, 6) {
		t.Errorf("BeatFromTime(3): got %v, want 6", got)
	}
	if got := tm.BeatToTime(1); !near(got, 0.5) {
		t.Errorf("BeatToTime(1): got %v, want 0.5", got)
	}
}

// TestTimeManagerInvalidBPM 测试非法 BPM 回退到 120
func TestTimeManagerInvalidBPM(t *testing.T) {
	tm := NewTimeManager(0)
	if got := tm.TimeFromBeat(2); !near(got, 1) {
		t.Errorf("TimeFromBeat(2) with fallback BPM: got %v, want 1", got)
	}
}

// TestTimeManagerBpmEvents 测试变速
func TestTimeManagerBpmEvents(t *testing.T) {
	tm := NewTimeManager(120)
	tm.SetBpmEvents([]chart.BpmEvent{
		{Beat: 16, BPM: 240},
		{Beat: 8, BPM: 0}, // 非法事件被忽略
	})

	tests := []struct {
		name string
		beat float64
		time float64
	}{
		{"起点", 0, 0},
		{"变速前", 8, 4},
		{"变速点", 16, 8},
		{"变速后", 20, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tm.TimeFromBeat(tt.beat); !near(got, tt.time) {
				t.Errorf("TimeFromBeat(%v): got %v, want %v", tt.beat, got, tt.time)
			}
			if got := tm.BeatFromTime(tt.time); !near(got, tt.beat) {
				t.Errorf("BeatFromTime(%v): got %v, want %v", tt.time, got, tt.beat)
			}
		})
	}

	if len(tm.BpmChanges()) != 2 {
		t.Errorf("BpmChanges: got %d, want 2", len(tm.BpmChanges()))
	}
}

// TestTimeManagerBpmEventAtZero 测试第 0 拍的变速事件覆盖基础 BPM
func TestTimeManagerBpmEventAtZero(t *testing.T) {
	tm := NewTimeManager(120)
	tm.SetBpmEvents([]chart.BpmEvent{{Beat: 0, BPM: 60}})

	if got := tm.TimeFromBeat(2); !near(got, 2) {
		t.Errorf("TimeFromBeat(2): got %v, want 2", got)
	}

	// 再次设置时从基础 BPM 重新计算
	tm.SetBpmEvents(nil)
	if got := tm.TimeFromBeat(2); !near(got, 1) {
		t.Errorf("TimeFromBeat(2) after reset: got %v, want 1", got)
	}
}

// TestTimeManagerPlayback 测试播放推进
func TestTimeManagerPlayback(t *testing.T) {
	tm := NewTimeManager(120)
	tm.SetSongLength(10)

	// 暂停时不推进
	tm.Advance(1)
	if tm.CurrentTime() != 0 {
		t.Errorf("paused cursor should not advance, got %v", tm.CurrentTime())
	}

	if !tm.SetPlaying(true) {
		t.Error("SetPlaying(true) should report a change")
	}
	if tm.SetPlaying(true) {
		t.Error("SetPlaying(true) twice should not report a change")
	}

	tm.Advance(1.5)
	if !near(tm.CurrentTime(), 1.5) || !near(tm.CurrentBeat(), 3) {
		t.Errorf("after advance: time %v beat %v", tm.CurrentTime(), tm.CurrentBeat())
	}
	if !near(tm.Progress(), 0.15) {
		t.Errorf("Progress: got %v, want 0.15", tm.Progress())
	}

	// 到达末尾自动暂停
	tm.Advance(100)
	if tm.CurrentTime() != 10 {
		t.Errorf("time should clamp to song length, got %v", tm.CurrentTime())
	}
	if tm.Playing() {
		t.Error("cursor should pause at the end of the song")
	}
	if tm.SetPlaying(true) {
		t.Error("cannot start playing at the end of the song")
	}
}

// TestTimeManagerSeek 测试跳转
func TestTimeManagerSeek(t *testing.T) {
	tm := NewTimeManager(120)
	tm.SetSongLength(20)

	tm.SetBeat(10)
	if !near(tm.CurrentTime(), 5) {
		t.Errorf("SetBeat(10): time %v, want 5", tm.CurrentTime())
	}

	tm.SetTime(-3)
	if tm.CurrentTime() != 0 {
		t.Errorf("negative time should clamp to 0, got %v", tm.CurrentTime())
	}

	tm.SetProgress(0.5)
	if !near(tm.CurrentTime(), 10) {
		t.Errorf("SetProgress(0.5): time %v, want 10", tm.CurrentTime())
	}
}

// TestHalfJumpDuration 测试半跳跃时长
func TestHalfJumpDuration(t *testing.T) {
	tests := []struct {
		name     string
		bpm      float64
		njs      float64
		offset   float64
		expected float64
	}{
		{"120BPM NJS10", 120, 10, 0, 2},
		{"150BPM NJS18 偏移-0.5", 150, 18, -0.5, 1.5},
		{"慢速不减半", 60, 4, 0, 4},
		{"下限", 120, 10, -10, 0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HalfJumpDurationBeats(tt.bpm, tt.njs, tt.offset)
			if !near(got, tt.expected) {
				t.Errorf("HalfJumpDurationBeats: got %v, want %v", got, tt.expected)
			}
		})
	}
}

// TestReactionTime 测试反应时间与跳跃距离
func TestReactionTime(t *testing.T) {
	tm := NewTimeManager(150)
	tm.SetJumpSettings(18, -0.5)

	// 1.5 拍 × 0.4 秒/拍
	if !near(tm.ReactionTime(), 0.6) {
		t.Errorf("ReactionTime: got %v, want 0.6", tm.ReactionTime())
	}
	if !near(tm.JumpDistance(), 18*0.6*2) {
		t.Errorf("JumpDistance: got %v, want %v", tm.JumpDistance(), 18*0.6*2)
	}

	// 非法 NJS 使用默认值
	tm.SetJumpSettings(0, 0)
	if tm.NoteJumpSpeed() != defaultNoteJumpSpeed {
		t.Errorf("NoteJumpSpeed: got %v, want %v", tm.NoteJumpSpeed(), defaultNoteJumpSpeed)
	}
}
