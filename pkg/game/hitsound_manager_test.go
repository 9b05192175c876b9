package game

import "testing"

// fakePlayer 记录调用的假播放器
type fakePlayer struct {
	playing bool
	plays   int
	rewinds int
	volume  float64
}

func (p *fakePlayer) Play()                    { p.playing = true; p.plays++ }
func (p *fakePlayer) Pause()                   { p.playing = false }
func (p *fakePlayer) Rewind() error            { p.rewinds++; return nil }
func (p *fakePlayer) IsPlaying() bool          { return p.playing }
func (p *fakePlayer) SetVolume(volume float64) { p.volume = volume }

func newFakeHitsoundManager() (*HitsoundManager, *[]*fakePlayer) {
	players := &[]*fakePlayer{}
	hm := NewHitsoundManagerFunc(func() SoundPlayer {
		p := &fakePlayer{}
		*players = append(*players, p)
		return p
	})
	return hm, players
}

// TestHitsoundManager_FireOnTime 测试预约的命中音在到期时触发
func TestHitsoundManager_FireOnTime(t *testing.T) {
	hm, players := newFakeHitsoundManager()
	hm.SetPlaying(true)

	e := hm.NewEmitter()
	p := (*players)[0]

	e.PlayScheduled(2.0)
	if !e.IsPlaying() {
		t.Error("pending emitter should report playing")
	}

	hm.Update(1.99)
	if p.plays != 0 {
		t.Errorf("fired early: plays = %d", p.plays)
	}

	hm.Update(2.01)
	if p.plays != 1 {
		t.Errorf("plays = %d, want 1", p.plays)
	}
	if !e.IsPlaying() {
		t.Error("emitter should be playing after firing")
	}

	// 已触发的预约不会再次触发
	hm.Update(2.02)
	if p.plays != 1 {
		t.Errorf("fired twice: plays = %d", p.plays)
	}

	// 播放完毕
	p.playing = false
	if e.IsPlaying() {
		t.Error("finished emitter should not report playing")
	}
}

// TestHitsoundManager_DropLate 测试严重迟到的预约被丢弃
func TestHitsoundManager_DropLate(t *testing.T) {
	hm, players := newFakeHitsoundManager()
	hm.SetPlaying(true)

	e := hm.NewEmitter()
	e.PlayScheduled(1.0)

	hm.Update(1.0 + lateTolerance*2)
	if (*players)[0].plays != 0 {
		t.Error("late hitsound should be dropped")
	}
	if e.IsPlaying() {
		t.Error("dropped emitter should not report playing")
	}
}

// TestHitsoundManager_PausedDoesNotFire 测试暂停时不触发，且暂停会清空预约
func TestHitsoundManager_PausedDoesNotFire(t *testing.T) {
	hm, players := newFakeHitsoundManager()

	e := hm.NewEmitter()
	e.PlayScheduled(0.5)

	hm.Update(0.5)
	if (*players)[0].plays != 0 {
		t.Error("paused manager should not fire")
	}

	hm.SetPlaying(true)
	hm.Update(0.5)
	if (*players)[0].plays != 1 {
		t.Fatalf("plays = %d, want 1", (*players)[0].plays)
	}

	e.PlayScheduled(3.0)
	hm.SetPlaying(false)
	if e.IsPlaying() {
		t.Error("SetPlaying(false) should stop every emitter")
	}
}

// TestHitsoundManager_Volume 测试音量为两个通道的乘积，并应用到所有发射器
func TestHitsoundManager_Volume(t *testing.T) {
	hm, players := newFakeHitsoundManager()
	hm.NewEmitter()

	hm.SetVolume(0.5, 0.8)
	hm.NewEmitter()

	if got := hm.Volume(); got < 0.3999 || got > 0.4001 {
		t.Errorf("Volume() = %v, want 0.4", got)
	}
	for i, p := range *players {
		if p.volume < 0.3999 || p.volume > 0.4001 {
			t.Errorf("player %d volume = %v, want 0.4", i, p.volume)
		}
	}
	if hm.EmitterCount() != 2 {
		t.Errorf("EmitterCount() = %d, want 2", hm.EmitterCount())
	}
}

// TestHitsoundEmitter_Stop 测试 Stop 取消预约并复位播放器
func TestHitsoundEmitter_Stop(t *testing.T) {
	hm, players := newFakeHitsoundManager()
	hm.SetPlaying(true)

	e := hm.NewEmitter()
	p := (*players)[0]

	e.PlayScheduled(1.0)
	hm.Update(1.0)
	e.Stop()

	if e.IsPlaying() {
		t.Error("stopped emitter should not report playing")
	}
	if p.rewinds < 2 {
		t.Errorf("rewinds = %d, want at least 2 (fire + stop)", p.rewinds)
	}

	e.PlayScheduled(5.0)
	e.Stop()
	hm.Update(5.0)
	if p.plays != 1 {
		t.Errorf("cancelled hitsound fired: plays = %d", p.plays)
	}
}

// TestMutedHitsoundManager 测试静音管理器的调度语义
func TestMutedHitsoundManager(t *testing.T) {
	hm := NewMutedHitsoundManager()
	hm.SetPlaying(true)

	e := hm.NewEmitter()
	e.PlayScheduled(1.0)
	if !e.IsPlaying() {
		t.Error("pending muted emitter should report playing")
	}

	hm.Update(1.0)
	if e.IsPlaying() {
		t.Error("muted emitter should finish immediately after firing")
	}
}
