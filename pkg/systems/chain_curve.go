package systems

import (
	"math"

	"github.com/decker502/beatpreview/pkg/chart"
	"github.com/decker502/beatpreview/pkg/components"
	"github.com/decker502/beatpreview/pkg/config"
	"github.com/decker502/beatpreview/pkg/types"
	"github.com/decker502/beatpreview/pkg/utils"
)

// root2Over2 对角方向向量的分量
const root2Over2 = math.Sqrt2 / 2

// directionVectors 切向编号 → 单位方向向量
// 下标即 types.CutDirection；CutAny 退化为向下
var directionVectors = [...]utils.Vec2{
	types.CutUp:        {X: 0, Y: 1},
	types.CutDown:      {X: 0, Y: -1},
	types.CutLeft:      {X: -1, Y: 0},
	types.CutRight:     {X: 1, Y: 0},
	types.CutUpLeft:    {X: -root2Over2, Y: root2Over2},
	types.CutUpRight:   {X: root2Over2, Y: root2Over2},
	types.CutDownLeft:  {X: -root2Over2, Y: -root2Over2},
	types.CutDownRight: {X: root2Over2, Y: -root2Over2},
	types.CutAny:       {X: 0, Y: -1},
}

// DirectionVector 返回切向对应的单位向量，越界的编号按 CutAny 处理
func DirectionVector(d types.CutDirection) utils.Vec2 {
	return directionVectors[d.Clamp()]
}

// GridToWorld 网格坐标 → 世界平面坐标
func GridToWorld(x, y int, grid config.GridConfig) utils.Vec2 {
	return utils.Vec2{
		X: grid.BottomLeft.X + float64(x)*grid.LaneWidth,
		Y: grid.BottomLeft.Y + float64(y)*grid.RowHeight,
	}
}

// ExpandChain 将一条链展开为链节
//
// 曲线为二次贝塞尔：起点为链头，终点为链尾，控制点为链头沿切向
// 偏移首尾直线距离的一半。链头本身不产生链节，因此返回
// SegmentCount-1 个链节（SegmentCount < 2 时为空）。
//
// 第 i 个链节的节拍按 i/(SegmentCount-1) 在首尾节拍间线性插值；
// 曲线参数额外乘以 Squish，Squish < 1 时最后一个链节的节拍仍是链尾节拍，
// 但位置停在链尾之前。
//
// 纯函数：相同输入总是得到相同输出。
func ExpandChain(c chart.Chain, grid config.GridConfig) []components.ChainLink {
	if c.SegmentCount < 2 {
		return nil
	}

	start := GridToWorld(c.X, c.Y, grid)
	end := GridToWorld(c.TailX, c.TailY, grid)
	distance := utils.Distance(start, end)
	mid := start.Add(DirectionVector(c.Direction).Scale(distance / 2))

	duration := c.TailBeat - c.Beat
	segments := float64(c.SegmentCount - 1)

	links := make([]components.ChainLink, 0, c.SegmentCount-1)
	for i := 1; i < c.SegmentCount; i++ {
		progress := float64(i) / segments
		t := progress * c.Squish

		pos := utils.QuadBezierPoint(start, mid, end, t)
		angle := utils.NormalizeAngle(utils.QuadBezierAngle(start, mid, end, t))

		links = append(links, components.ChainLink{
			Beat:  c.Beat + duration*progress,
			X:     pos.X,
			Y:     pos.Y,
			Color: c.Color,
			Angle: angle,
		})
	}
	return links
}
