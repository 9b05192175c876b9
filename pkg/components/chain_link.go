package components

import (
	"github.com/decker502/beatpreview/pkg/ecs"
	"github.com/decker502/beatpreview/pkg/types"
)

// ChainLink 链节
//
// 几何字段（Beat/X/Y/Color/Angle）在展开时确定，之后不再修改；
// Slot 记录生成后的渲染句柄与音源，未生成时为空。
type ChainLink struct {
	Beat  float64         // 节拍
	X     float64         // 平面 X（世界坐标）
	Y     float64         // 平面 Y（世界坐标）
	Color types.NoteColor // 继承自所属链
	Angle float64         // 朝向角（度），范围 (-180, 180]

	Slot LinkSlot
}

// GetBeat 返回链节节拍
func (l ChainLink) GetBeat() float64 {
	return l.Beat
}

// Spawned 链节当前是否持有池化对象
func (l *ChainLink) Spawned() bool {
	return !l.Slot.IsEmpty()
}

// LinkSlot 链节的生命周期槽位
type LinkSlot struct {
	Visual  ecs.Handle   // 池化渲染对象句柄
	Emitter AudioEmitter // 随渲染对象一起取出的音源
}

// IsEmpty 槽位是否为空（未生成或已释放）
func (s LinkSlot) IsEmpty() bool {
	return !s.Visual.IsValid() && s.Emitter == nil
}

// Clear 清空槽位
func (s *LinkSlot) Clear() {
	s.Visual = ecs.Handle{}
	s.Emitter = nil
}

// AudioEmitter 音源能力
// 每个池化链节对象持有一个音源，用于在链节命中时刻播放打击音
type AudioEmitter interface {
	// PlayScheduled 预约在歌曲时间 songTime（秒）播放
	PlayScheduled(songTime float64)
	// Stop 停止播放并取消预约
	Stop()
	// IsPlaying 正在播放或已预约
	IsPlaying() bool
}
