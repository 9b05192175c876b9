package systems

import (
	"github.com/decker502/beatpreview/pkg/config"
	"github.com/decker502/beatpreview/pkg/utils"
)

// Cursor 时间轴游标
// game.TimeManager 实现该接口
type Cursor interface {
	CurrentBeat() float64
	CurrentTime() float64
	ReactionTime() float64
	BeatToTime(beat float64) float64
	Playing() bool
}

// JumpCursor 带跳跃速度的时间轴游标，用于计算物件的 Z 坐标
type JumpCursor interface {
	Cursor
	NoteJumpSpeed() float64
}

// SpawnWindow 生成窗口判定
type SpawnWindow interface {
	// InWindow 节拍是否在当前可见/可听的窗口内
	InWindow(beat float64) bool
}

// Layout 物件的世界坐标摆放
type Layout interface {
	// ZPosition 物件在 objectTime 命中时，当前帧的 Z 坐标
	ZPosition(objectTime float64) float64
	// ObjectY 入场升起动画的 Y 坐标
	ObjectY(startY, targetY, objectTime float64) float64
}

// ObjectLayout 生成窗口与物件摆放
//
// 窗口为 (当前时间 - BehindCameraTime, 当前时间 + 反应时间]，
// 是以游标为锚点的单一连续区间。
type ObjectLayout struct {
	cursor    JumpCursor
	spawn     config.SpawnConfig
	animation config.AnimationConfig
}

// NewObjectLayout 创建物件摆放系统
func NewObjectLayout(cursor JumpCursor, cfg *config.PreviewerConfig) *ObjectLayout {
	return &ObjectLayout{
		cursor:    cursor,
		spawn:     cfg.Spawn,
		animation: cfg.Animation,
	}
}

// InWindow 节拍是否在生成窗口内
func (l *ObjectLayout) InWindow(beat float64) bool {
	objectTime := l.cursor.BeatToTime(beat)
	now := l.cursor.CurrentTime()
	return objectTime > now-l.spawn.BehindCameraTime && objectTime <= now+l.cursor.ReactionTime()
}

// ZPosition 物件的 Z 坐标，随时间匀速向玩家移动
func (l *ObjectLayout) ZPosition(objectTime float64) float64 {
	return l.spawn.PlayerZ + (objectTime-l.cursor.CurrentTime())*l.cursor.NoteJumpSpeed()
}

// ObjectY 入场升起动画
//
// 升起动画占反应时间的前 MovementAnimationTime 部分：
// 反应时间之外保持 startY，动画结束后为 targetY，中间按 EaseOutQuad 插值。
func (l *ObjectLayout) ObjectY(startY, targetY, objectTime float64) float64 {
	reactionTime := l.cursor.ReactionTime()
	timeUntilHit := objectTime - l.cursor.CurrentTime()
	movementTime := reactionTime * l.animation.MovementAnimationTime

	if timeUntilHit > reactionTime {
		return startY
	}
	if movementTime <= 0 || timeUntilHit <= reactionTime-movementTime {
		return targetY
	}

	progress := (reactionTime - timeUntilHit) / movementTime
	return utils.Lerp(startY, targetY, utils.EaseOutQuad(progress))
}
