// Package chart 定义谱面物件模型与谱面文件解析
//
// 谱面文件（Info.dat / v3 难度文件）是 JSON 格式。JSON 是 YAML 的子集，
// 因此解析统一使用 gopkg.in/yaml.v3，与项目其他配置文件保持一致。
package chart

import "github.com/decker502/beatpreview/pkg/types"

// Chain 链（v3 谱面中的 burstSlider）
//
// 一个链由头部音符和若干链节组成，加载时展开为链节序列。
// 加载后不可修改。
type Chain struct {
	Beat         float64            // 头部节拍
	X            int                // 头部列
	Y            int                // 头部行
	TailBeat     float64            // 尾部节拍
	TailX        int                // 尾部列
	TailY        int                // 尾部行
	Direction    types.CutDirection // 头部切割方向（未限制范围）
	Color        types.NoteColor    // 颜色
	Squish       float64            // 曲线压缩系数，< 1 时链节不会到达尾部
	SegmentCount int                // 段数（包含头部），>= 2 时产生 SegmentCount-1 个链节
}

// GetBeat 返回链头节拍
func (c Chain) GetBeat() float64 {
	return c.Beat
}

// ChainFromBurstSlider 从 v3 谱面的 burstSlider 创建链
func ChainFromBurstSlider(b BurstSlider) Chain {
	return Chain{
		Beat:         b.Beat,
		X:            b.X,
		Y:            b.Y,
		TailBeat:     b.TailBeat,
		TailX:        b.TailX,
		TailY:        b.TailY,
		Direction:    types.CutDirection(b.Direction),
		Color:        colorFromIndex(b.Color),
		Squish:       b.Squish,
		SegmentCount: b.SegmentCount,
	}
}

// colorFromIndex 谱面中 0 为红色，其余按蓝色处理
func colorFromIndex(c int) types.NoteColor {
	if c == 0 {
		return types.ColorRed
	}
	return types.ColorBlue
}
