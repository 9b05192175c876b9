package game

import (
	"log"

	"github.com/hajimehoshi/ebiten/v2/audio"
)

// lateTolerance 命中音允许的最大延迟（秒），超过则丢弃
const lateTolerance = 0.05

// SoundPlayer 单个音频播放器的最小能力集
// *audio.Player 满足该接口；终端预览器使用 beep speaker 的实现
type SoundPlayer interface {
	Play()
	Pause()
	Rewind() error
	IsPlaying() bool
	SetVolume(volume float64)
}

// HitsoundManager 命中音管理器
// 职责：
//   - 为每个池化的链节提供一个独立的音频发射器（HitsoundEmitter）
//   - 按歌曲时间触发已预约的命中音
//   - 统一控制命中音音量（hitsoundVolume × chainVolume）
//
// 所有发射器共享同一份解码后的 PCM 数据，每个发射器持有自己的播放器，
// 因此相邻链节的命中音可以重叠播放。
type HitsoundManager struct {
	newPlayer func() SoundPlayer
	emitters  []*HitsoundEmitter
	volume    float64
	playing   bool
}

// NewHitsoundManager 创建使用 Ebitengine 音频上下文播放的命中音管理器
//
// 参数：
//   - ctx: 全局音频上下文
//   - pcm: 16 位立体声 PCM（采样率与 ctx 一致）
//
// 返回：
//   - *HitsoundManager: 命中音管理器实例
func NewHitsoundManager(ctx *audio.Context, pcm []byte) *HitsoundManager {
	return NewHitsoundManagerFunc(func() SoundPlayer {
		return ctx.NewPlayerFromBytes(pcm)
	})
}

// NewMutedHitsoundManager 创建不产生任何声音的命中音管理器
// 终端预览器与无音频设备的环境使用；调度与状态语义与正常版本一致
func NewMutedHitsoundManager() *HitsoundManager {
	return NewHitsoundManagerFunc(func() SoundPlayer {
		return &silentPlayer{}
	})
}

// NewHitsoundManagerFunc 使用自定义播放器创建命中音管理器
// newPlayer 在每次创建发射器时调用一次
func NewHitsoundManagerFunc(newPlayer func() SoundPlayer) *HitsoundManager {
	return &HitsoundManager{
		newPlayer: newPlayer,
		volume:    1.0,
	}
}

// NewEmitter 创建一个新的发射器
// 链节对象池在首次创建对象时调用；发射器随池对象一起复用
func (hm *HitsoundManager) NewEmitter() *HitsoundEmitter {
	p := hm.newPlayer()
	p.SetVolume(hm.volume)
	e := &HitsoundEmitter{manager: hm, player: p}
	hm.emitters = append(hm.emitters, e)
	return e
}

// EmitterCount 返回已创建的发射器数量
func (hm *HitsoundManager) EmitterCount() int {
	return len(hm.emitters)
}

// SetVolume 设置命中音音量，立即应用到所有发射器
//
// 参数：
//   - hitsoundVolume: 命中音总音量 (0.0 ~ 1.0)
//   - chainVolume: 链节音量系数 (0.0 ~ 1.0)
func (hm *HitsoundManager) SetVolume(hitsoundVolume, chainVolume float64) {
	hm.volume = hitsoundVolume * chainVolume
	for _, e := range hm.emitters {
		e.player.SetVolume(hm.volume)
	}
}

// Volume 返回当前生效的命中音音量
func (hm *HitsoundManager) Volume() float64 {
	return hm.volume
}

// SetPlaying 同步播放状态
// 暂停时停止所有发射器（包括已预约未触发的）
func (hm *HitsoundManager) SetPlaying(playing bool) {
	if hm.playing == playing {
		return
	}
	hm.playing = playing
	if !playing {
		hm.StopAll()
	}
}

// StopAll 停止所有发射器
func (hm *HitsoundManager) StopAll() {
	for _, e := range hm.emitters {
		e.Stop()
	}
}

// Update 按当前歌曲时间触发到期的命中音
// 每帧调用一次；暂停时不触发
//
// 参数：
//   - songTime: 当前歌曲时间（秒）
func (hm *HitsoundManager) Update(songTime float64) {
	if !hm.playing {
		return
	}

	for _, e := range hm.emitters {
		if !e.scheduled || e.at > songTime {
			continue
		}
		e.scheduled = false
		if songTime-e.at > lateTolerance {
			// 过期的预约直接丢弃
			continue
		}
		if err := e.player.Rewind(); err != nil {
			log.Printf("[HitsoundManager] Warning: Failed to rewind hitsound: %v", err)
			continue
		}
		e.player.Play()
	}
}

// HitsoundEmitter 单个链节的音频发射器
// 实现 components.AudioEmitter
type HitsoundEmitter struct {
	manager   *HitsoundManager
	player    SoundPlayer
	scheduled bool    // 是否有待触发的预约
	at        float64 // 预约的歌曲时间（秒）
}

// PlayScheduled 预约在指定歌曲时间播放一次
// 重复调用会覆盖之前的预约；正在播放的声音会被打断
func (e *HitsoundEmitter) PlayScheduled(songTime float64) {
	if e.player.IsPlaying() {
		e.player.Pause()
	}
	e.scheduled = true
	e.at = songTime
}

// Stop 取消预约并停止播放
func (e *HitsoundEmitter) Stop() {
	e.scheduled = false
	e.player.Pause()
	if err := e.player.Rewind(); err != nil {
		log.Printf("[HitsoundManager] Warning: Failed to rewind hitsound: %v", err)
	}
}

// IsPlaying 返回发射器是否仍占用中（已预约未触发，或正在播放）
func (e *HitsoundEmitter) IsPlaying() bool {
	return e.scheduled || e.player.IsPlaying()
}

// silentPlayer 静音播放器，Play 后立即视为播放完毕
type silentPlayer struct{}

func (silentPlayer) Play()               {}
func (silentPlayer) Pause()              {}
func (silentPlayer) Rewind() error       { return nil }
func (silentPlayer) IsPlaying() bool     { return false }
func (silentPlayer) SetVolume(_ float64) {}
