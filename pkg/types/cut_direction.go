package types

// CutDirection 定义切割方向（罗盘索引）
//
// 取值与谱面格式一致：
//
//	0 上, 1 下, 2 左, 3 右, 4 左上, 5 右上, 6 左下, 7 右下, 8 任意方向
type CutDirection int

const (
	CutUp CutDirection = iota
	CutDown
	CutLeft
	CutRight
	CutUpLeft
	CutUpRight
	CutDownLeft
	CutDownRight
	CutAny
)

// Clamp 将方向限制在合法范围 [0, 8] 内
//
// 映射扩展（mapping extensions）谱面可能出现超出范围的方向值，
// 负数或 >= 9 的值统一视为 CutAny，几何生成永远不会因方向值失败。
func (d CutDirection) Clamp() CutDirection {
	if d < CutUp || d > CutAny {
		return CutAny
	}
	return d
}

// String 返回方向的字符串表示
func (d CutDirection) String() string {
	switch d {
	case CutUp:
		return "Up"
	case CutDown:
		return "Down"
	case CutLeft:
		return "Left"
	case CutRight:
		return "Right"
	case CutUpLeft:
		return "UpLeft"
	case CutUpRight:
		return "UpRight"
	case CutDownLeft:
		return "DownLeft"
	case CutDownRight:
		return "DownRight"
	case CutAny:
		return "Any"
	default:
		return "Unknown"
	}
}
