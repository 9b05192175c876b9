package components

import "github.com/decker502/beatpreview/pkg/types"

// MaterialKind 材质种类
type MaterialKind int

const (
	// MaterialComplex 完整材质
	MaterialComplex MaterialKind = iota
	// MaterialSimple 简化材质（低画质）
	MaterialSimple
	// MaterialArrow 链节中心点的箭头材质
	MaterialArrow
)

// Material 材质（种类 + 颜色）
type Material struct {
	Kind  MaterialKind
	Color types.NoteColor
}

// Vec3 三维世界坐标
type Vec3 struct {
	X, Y, Z float64
}

// LinkVisual 链节的渲染对象
// 由渲染层读取，ChainManager 负责写入
type LinkVisual struct {
	Position    Vec3     // 世界坐标
	Angle       float64  // 绕 Z 轴旋转（度）
	Material    Material // 主体材质
	DotMaterial Material // 中心点材质
	Active      bool     // 是否已挂到场景上（对应池外状态）
	Visible     bool     // 是否绘制；音效拖尾时为 false
}

// EnableVisual 显示
func (v *LinkVisual) EnableVisual() {
	v.Visible = true
}

// DisableVisual 隐藏（对象仍被占用）
func (v *LinkVisual) DisableVisual() {
	v.Visible = false
}

// LinkObject 链节对象池中的对象
// 渲染对象与音源绑定在一起复用
type LinkObject struct {
	Visual  LinkVisual
	Emitter AudioEmitter
}

// ResetLinkObject 对象归还池时重置渲染状态，保留音源
func ResetLinkObject(o *LinkObject) {
	o.Visual = LinkVisual{}
}
