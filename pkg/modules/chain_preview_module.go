package modules

import (
	"fmt"
	"log"

	"github.com/decker502/beatpreview/pkg/chart"
	"github.com/decker502/beatpreview/pkg/components"
	"github.com/decker502/beatpreview/pkg/config"
	"github.com/decker502/beatpreview/pkg/game"
	"github.com/decker502/beatpreview/pkg/systems"
	"github.com/decker502/beatpreview/pkg/utils"
)

// songTailPadding 没有歌曲时，时间轴在最后一个链节之后额外保留的时长（秒）
const songTailPadding = 1.0

// ChainPreviewModule 链节预览模块
//
// 职责：
//   - 组装时间轴、生成窗口、对象池、链管理器和打击音管理器
//   - 每帧按固定顺序驱动它们：推进时间 → 同步播放状态 → 更新可见性 → 触发打击音
//   - 提供播放/暂停、跳转和设置修改的入口
//
// 不涉及任何绘制，Ebitengine 场景与终端预览器共用此模块。
type ChainPreviewModule struct {
	config       *config.PreviewerConfig
	timeManager  *game.TimeManager
	layout       *systems.ObjectLayout
	pool         *systems.LinkPool
	chainManager *systems.ChainManager
	hitsounds    *game.HitsoundManager
	settings     *game.SettingsManager
	audio        *game.AudioManager // 可为 nil（无歌曲）

	wasPlaying bool
}

// ChainPreviewDeps 预览模块的依赖
type ChainPreviewDeps struct {
	Config     *config.PreviewerConfig
	BPM        float64                 // Info.dat 中的基础 BPM
	Beatmap    chart.DifficultyBeatmap // NJS 与起跳偏移
	Difficulty *chart.Difficulty
	Settings   *game.SettingsManager
	Hitsounds  *game.HitsoundManager
	Audio      *game.AudioManager // 可为 nil
}

// NewChainPreviewModule 创建预览模块并加载难度
//
// 返回：
//   - *ChainPreviewModule: 预览模块
//   - error: 缺少必要依赖时返回错误
func NewChainPreviewModule(deps ChainPreviewDeps) (*ChainPreviewModule, error) {
	if deps.Difficulty == nil {
		return nil, fmt.Errorf("chain preview: difficulty is required")
	}
	if deps.Settings == nil {
		return nil, fmt.Errorf("chain preview: settings manager is required")
	}
	if deps.Hitsounds == nil {
		deps.Hitsounds = game.NewMutedHitsoundManager()
	}
	cfg := deps.Config
	if cfg == nil {
		cfg = config.DefaultPreviewerConfig()
	}

	m := &ChainPreviewModule{
		config:    cfg,
		hitsounds: deps.Hitsounds,
		settings:  deps.Settings,
		audio:     deps.Audio,
	}

	m.timeManager = game.NewTimeManager(deps.BPM)
	m.timeManager.SetBpmEvents(deps.Difficulty.BpmEvents)
	m.timeManager.SetJumpSettings(deps.Beatmap.NoteJumpMovementSpeed, deps.Beatmap.NoteJumpStartBeatOffset)

	m.layout = systems.NewObjectLayout(m.timeManager, cfg)
	m.pool = systems.NewLinkPool(cfg.ChainLinkPoolSize, func() components.AudioEmitter {
		return m.hitsounds.NewEmitter()
	})
	m.chainManager = systems.NewChainManager(systems.ChainManagerDeps{
		Cursor:  m.timeManager,
		Window:  m.layout,
		Layout:  m.layout,
		Pool:    m.pool,
		Volumes: m.settings,
		Config:  cfg,
	})

	settings := m.settings.GetSettings()
	m.hitsounds.SetVolume(settings.HitsoundVolume, settings.ChainVolume)
	m.chainManager.SetUseSimpleNoteMaterial(cfg.UseSimpleNoteMaterial || settings.UseSimpleNoteMaterial)

	m.chainManager.LoadFromDifficulty(deps.Difficulty)
	m.timeManager.SetSongLength(m.songLength())

	log.Printf("[ChainPreviewModule] Ready: %d chains, reaction time %.3fs, song length %.2fs",
		len(m.chainManager.Chains()), m.timeManager.ReactionTime(), m.timeManager.SongLength())

	return m, nil
}

// songLength 有歌曲时用歌曲长度，否则以最后一个链节为准
func (m *ChainPreviewModule) songLength() float64 {
	if m.audio != nil && m.audio.HasSong() {
		return m.audio.SongLength()
	}
	links := m.chainManager.Links()
	if len(links) == 0 {
		return songTailPadding
	}
	return m.timeManager.BeatToTime(links[len(links)-1].Beat) + songTailPadding
}

// Update 推进一帧
//
// 参数：
//   - deltaTime: 距上一帧的时间（秒）
func (m *ChainPreviewModule) Update(deltaTime float64) {
	m.timeManager.Advance(deltaTime)
	m.syncPlaying()

	beat := m.timeManager.CurrentBeat()
	if m.chainManager.NeedsUpdate(beat) {
		m.chainManager.UpdateVisibility(beat)
	}

	m.hitsounds.Update(m.timeManager.CurrentTime())
}

// syncPlaying 播放状态变化时通知音频层并重新预约打击音
func (m *ChainPreviewModule) syncPlaying() {
	playing := m.timeManager.Playing()
	if playing == m.wasPlaying {
		return
	}
	m.wasPlaying = playing

	m.hitsounds.SetPlaying(playing)
	if m.audio != nil {
		m.audio.SetPlaying(playing, m.timeManager.CurrentTime())
	}
	m.chainManager.RescheduleSounds(playing)
}

// TogglePlaying 切换播放/暂停
// 在歌曲末尾开始播放时先回到开头
func (m *ChainPreviewModule) TogglePlaying() {
	tm := m.timeManager
	if !tm.Playing() && tm.SongLength() > 0 && tm.CurrentTime() >= tm.SongLength() {
		tm.SetTime(0)
	}
	tm.SetPlaying(!tm.Playing())
	m.syncPlaying()
}

// SetPlaying 设置播放状态
func (m *ChainPreviewModule) SetPlaying(playing bool) {
	m.timeManager.SetPlaying(playing)
	m.syncPlaying()
}

// SeekBeats 按节拍相对跳转
func (m *ChainPreviewModule) SeekBeats(deltaBeats float64) {
	m.timeManager.SetBeat(m.timeManager.CurrentBeat() + deltaBeats)
	m.afterSeek()
}

// SeekTime 跳转到指定歌曲时间
func (m *ChainPreviewModule) SeekTime(time float64) {
	m.timeManager.SetTime(time)
	m.afterSeek()
}

// SeekProgress 按进度条位置跳转，progress 截断到 [0, 1]
func (m *ChainPreviewModule) SeekProgress(progress float64) {
	m.timeManager.SetProgress(utils.Clamp01(progress))
	m.afterSeek()
}

// afterSeek 同步歌曲位置与链节
// 播放中跳转时，已预约的打击音全部作废并按新位置重新预约
func (m *ChainPreviewModule) afterSeek() {
	if m.audio != nil {
		m.audio.Seek(m.timeManager.CurrentTime())
	}

	beat := m.timeManager.CurrentBeat()
	if !m.timeManager.Playing() {
		if m.chainManager.NeedsUpdate(beat) {
			m.chainManager.UpdateVisibility(beat)
		}
		return
	}

	// 先停掉旧预约，窗口外的链节才会被释放而不是隐藏
	m.hitsounds.StopAll()
	m.chainManager.UpdateVisibility(beat)
	m.chainManager.RescheduleSounds(true)
}

// SetHitsoundVolume 修改打击音总音量
func (m *ChainPreviewModule) SetHitsoundVolume(volume float64) {
	m.settings.SetHitsoundVolume(volume)
	m.applyHitsoundVolume()
}

// SetChainVolume 修改链节打击音音量
func (m *ChainPreviewModule) SetChainVolume(volume float64) {
	m.settings.SetChainVolume(volume)
	m.applyHitsoundVolume()
}

func (m *ChainPreviewModule) applyHitsoundVolume() {
	s := m.settings.GetSettings()
	m.hitsounds.SetVolume(s.HitsoundVolume, s.ChainVolume)
	if s.HitsoundVolume <= 0 || s.ChainVolume <= 0 {
		m.hitsounds.StopAll()
	} else {
		m.chainManager.RescheduleSounds(m.timeManager.Playing())
	}
}

// SetUseSimpleNoteMaterial 切换简化材质
func (m *ChainPreviewModule) SetUseSimpleNoteMaterial(enabled bool) {
	m.settings.SetUseSimpleNoteMaterial(enabled)
	m.chainManager.SetUseSimpleNoteMaterial(enabled || m.config.UseSimpleNoteMaterial)
}

// SaveSettings 保存用户设置
func (m *ChainPreviewModule) SaveSettings() error {
	return m.settings.Save()
}

// TimeManager 返回时间轴
func (m *ChainPreviewModule) TimeManager() *game.TimeManager {
	return m.timeManager
}

// ChainManager 返回链管理器
func (m *ChainPreviewModule) ChainManager() *systems.ChainManager {
	return m.chainManager
}

// Pool 返回链节对象池
func (m *ChainPreviewModule) Pool() *systems.LinkPool {
	return m.pool
}

// Settings 返回当前用户设置
func (m *ChainPreviewModule) Settings() *game.PreviewSettings {
	return m.settings.GetSettings()
}

// Config 返回预览器配置
func (m *ChainPreviewModule) Config() *config.PreviewerConfig {
	return m.config
}
