// Package types 定义共享的基础类型
// 这个包不依赖任何其他业务包，用于解决循环引用问题
package types

// NoteColor 定义谱面物件的颜色（左手红 / 右手蓝）
type NoteColor int

const (
	// ColorRed 红色（谱面中 c=0）
	ColorRed NoteColor = iota
	// ColorBlue 蓝色（谱面中 c=1）
	ColorBlue
)

// String 返回颜色的字符串表示
func (c NoteColor) String() string {
	switch c {
	case ColorRed:
		return "Red"
	case ColorBlue:
		return "Blue"
	default:
		return "Unknown"
	}
}

// IsRed 判断是否为红色
// 谱面中除 0 以外的颜色值都按蓝色处理
func (c NoteColor) IsRed() bool {
	return c == ColorRed
}
