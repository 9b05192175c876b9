package game

import (
	"log"
	"sort"

	"github.com/decker502/beatpreview/pkg/chart"
)

// 半跳跃时长（Half Jump Duration）计算常量
const (
	startHalfJumpBeats   = 4.0    // 初始半跳跃节拍数
	maxHalfJumpDistance  = 17.999 // 半跳跃距离上限（世界单位）
	minHalfJumpBeats     = 0.25   // 半跳跃节拍数下限
	defaultNoteJumpSpeed = 10.0   // 谱面未设置 NJS 时的默认值
)

// BpmChange 变速点
// Time 为该变速点对应的歌曲时间（秒），加载时预先计算
type BpmChange struct {
	Beat float64
	BPM  float64
	Time float64
}

// TimeManager 时间轴游标
//
// 职责：
//   - 节拍 ↔ 时间换算（支持变速）
//   - 维护当前播放位置与播放状态
//   - 根据 NJS 与偏移计算反应时间
//
// 不负责通知：由场景每帧比较节拍/播放状态的变化并调用下游。
type TimeManager struct {
	baseBPM     float64
	bpmChanges  []BpmChange
	currentTime float64
	songLength  float64 // 歌曲长度（秒），0 表示未知
	playing     bool

	noteJumpSpeed float64
	jumpOffset    float64
	reactionTime  float64
}

// NewTimeManager 创建时间轴游标
//
// 参数：
//   - baseBPM: 谱面基础 BPM（Info.dat 中的 _beatsPerMinute）
func NewTimeManager(baseBPM float64) *TimeManager {
	if baseBPM <= 0 {
		log.Printf("[TimeManager] Warning: invalid BPM %v, using 120", baseBPM)
		baseBPM = 120
	}
	tm := &TimeManager{
		baseBPM:    baseBPM,
		bpmChanges: []BpmChange{{Beat: 0, BPM: baseBPM, Time: 0}},
	}
	tm.SetJumpSettings(defaultNoteJumpSpeed, 0)
	return tm
}

// SetBpmEvents 设置变速事件
// 非正 BPM 的事件被忽略；节拍 <= 0 的事件覆盖基础 BPM
func (tm *TimeManager) SetBpmEvents(events []chart.BpmEvent) {
	sorted := make([]chart.BpmEvent, 0, len(events))
	for _, e := range events {
		if e.BPM > 0 {
			sorted = append(sorted, e)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Beat < sorted[j].Beat
	})

	changes := []BpmChange{{Beat: 0, BPM: tm.baseBPM, Time: 0}}
	for _, e := range sorted {
		last := &changes[len(changes)-1]
		if e.Beat <= last.Beat {
			last.BPM = e.BPM
			continue
		}
		time := last.Time + (e.Beat-last.Beat)*60/last.BPM
		changes = append(changes, BpmChange{Beat: e.Beat, BPM: e.BPM, Time: time})
	}
	tm.bpmChanges = changes

	// 变速会改变反应时间
	tm.SetJumpSettings(tm.noteJumpSpeed, tm.jumpOffset)
}

// BpmChanges 返回变速点（只读）
func (tm *TimeManager) BpmChanges() []BpmChange {
	return tm.bpmChanges
}

// TimeFromBeat 节拍 → 歌曲时间（秒）
func (tm *TimeManager) TimeFromBeat(beat float64) float64 {
	c := tm.changeAtBeat(beat)
	return c.Time + (beat-c.Beat)*60/c.BPM
}

// BeatToTime 同 TimeFromBeat
func (tm *TimeManager) BeatToTime(beat float64) float64 {
	return tm.TimeFromBeat(beat)
}

// BeatFromTime 歌曲时间（秒）→ 节拍
func (tm *TimeManager) BeatFromTime(time float64) float64 {
	idx := sort.Search(len(tm.bpmChanges), func(i int) bool {
		return tm.bpmChanges[i].Time > time
	}) - 1
	if idx < 0 {
		idx = 0
	}
	c := tm.bpmChanges[idx]
	return c.Beat + (time-c.Time)*c.BPM/60
}

func (tm *TimeManager) changeAtBeat(beat float64) BpmChange {
	idx := sort.Search(len(tm.bpmChanges), func(i int) bool {
		return tm.bpmChanges[i].Beat > beat
	}) - 1
	if idx < 0 {
		idx = 0
	}
	return tm.bpmChanges[idx]
}

// CurrentTime 当前歌曲时间（秒）
func (tm *TimeManager) CurrentTime() float64 {
	return tm.currentTime
}

// CurrentBeat 当前节拍
func (tm *TimeManager) CurrentBeat() float64 {
	return tm.BeatFromTime(tm.currentTime)
}

// SetTime 跳转到指定歌曲时间，超出歌曲范围时截断
func (tm *TimeManager) SetTime(time float64) {
	if time < 0 {
		time = 0
	}
	if tm.songLength > 0 && time > tm.songLength {
		time = tm.songLength
	}
	tm.currentTime = time
}

// SetBeat 跳转到指定节拍
func (tm *TimeManager) SetBeat(beat float64) {
	tm.SetTime(tm.TimeFromBeat(beat))
}

// SetSongLength 设置歌曲长度（秒）
func (tm *TimeManager) SetSongLength(length float64) {
	if length < 0 {
		length = 0
	}
	tm.songLength = length
	tm.SetTime(tm.currentTime)
}

// SongLength 返回歌曲长度（秒）
func (tm *TimeManager) SongLength() float64 {
	return tm.songLength
}

// Progress 返回播放进度 [0, 1]，歌曲长度未知时为 0
func (tm *TimeManager) Progress() float64 {
	if tm.songLength <= 0 {
		return 0
	}
	return tm.currentTime / tm.songLength
}

// SetProgress 按进度跳转
func (tm *TimeManager) SetProgress(progress float64) {
	tm.SetTime(progress * tm.songLength)
}

// Playing 是否正在播放
func (tm *TimeManager) Playing() bool {
	return tm.playing
}

// SetPlaying 设置播放状态
// 在歌曲末尾无法开始播放
//
// 返回：
//   - bool: 播放状态是否发生了变化
func (tm *TimeManager) SetPlaying(playing bool) bool {
	if playing && tm.songLength > 0 && tm.currentTime >= tm.songLength {
		playing = false
	}
	changed := tm.playing != playing
	tm.playing = playing
	return changed
}

// Advance 推进时间（仅在播放时）
// 到达歌曲末尾时自动暂停
func (tm *TimeManager) Advance(deltaTime float64) {
	if !tm.playing || deltaTime <= 0 {
		return
	}
	tm.SetTime(tm.currentTime + deltaTime)
	if tm.songLength > 0 && tm.currentTime >= tm.songLength {
		tm.playing = false
	}
}

// SetJumpSettings 设置音符跳跃速度（NJS）与起跳偏移（节拍），并重新计算反应时间
func (tm *TimeManager) SetJumpSettings(noteJumpSpeed, startBeatOffset float64) {
	if noteJumpSpeed <= 0.01 {
		noteJumpSpeed = defaultNoteJumpSpeed
	}
	tm.noteJumpSpeed = noteJumpSpeed
	tm.jumpOffset = startBeatOffset

	bpm := tm.bpmChanges[0].BPM
	hjd := HalfJumpDurationBeats(bpm, noteJumpSpeed, startBeatOffset)
	tm.reactionTime = hjd * 60 / bpm
}

// NoteJumpSpeed 返回 NJS（世界单位/秒）
func (tm *TimeManager) NoteJumpSpeed() float64 {
	return tm.noteJumpSpeed
}

// ReactionTime 返回反应时间（秒）：物件出现到被击中的时长
func (tm *TimeManager) ReactionTime() float64 {
	return tm.reactionTime
}

// JumpDistance 返回跳跃距离（世界单位）
func (tm *TimeManager) JumpDistance() float64 {
	return tm.noteJumpSpeed * tm.reactionTime * 2
}

// HalfJumpDurationBeats 计算半跳跃时长（节拍）
//
// 从 4 拍开始，半跳跃距离超过上限时不断减半，再加上谱面偏移，
// 最终不小于 0.25 拍。
func HalfJumpDurationBeats(bpm, noteJumpSpeed, startBeatOffset float64) float64 {
	secondsPerBeat := 60 / bpm
	hjd := startHalfJumpBeats
	for noteJumpSpeed*secondsPerBeat*hjd > maxHalfJumpDistance {
		hjd /= 2
	}
	hjd += startBeatOffset
	if hjd < minHalfJumpBeats {
		hjd = minHalfJumpBeats
	}
	return hjd
}
