package main

import (
	"fmt"
	"math"
	"sort"

	"github.com/decker502/beatpreview/pkg/components"
	"github.com/decker502/beatpreview/pkg/modules"
	"github.com/decker502/beatpreview/pkg/scenes"
	"github.com/decker502/beatpreview/pkg/types"
	"github.com/gdamore/tcell/v2"
)

// cellAspect 终端字符的高宽比
const cellAspect = 2.0

// hudLines 底部状态栏行数
const hudLines = 3

// arrowGlyphs 按 45° 划分的方向字符，从 0°（向右）逆时针排列
var arrowGlyphs = [8]rune{'→', '↗', '↑', '↖', '←', '↙', '↓', '↘'}

var (
	styleGrid       = tcell.StyleDefault.Foreground(tcell.ColorDimGray)
	styleHUD        = tcell.StyleDefault.Foreground(tcell.ColorSilver)
	styleRed        = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleBlue       = tcell.StyleDefault.Foreground(tcell.ColorDodgerBlue).Bold(true)
	styleSimpleRed  = tcell.StyleDefault.Foreground(tcell.ColorMaroon)
	styleSimpleBlue = tcell.StyleDefault.Foreground(tcell.ColorNavy)
)

type view struct {
	title  string
	width  int
	height int
	items  []*components.LinkVisual // 每帧复用，按 Z 由远到近排序
}

func newView(title string, width, height int) *view {
	return &view{title: title, width: width, height: height}
}

func (v *view) resize(width, height int) {
	v.width, v.height = width, height
}

// fieldHeight 绘制区域的高度（行）
func (v *view) fieldHeight() int {
	return max(v.height-hudLines, 1)
}

// project 世界坐标 → 终端单元格
// 每列视为 1 像素宽、每行 cellAspect 像素高
func (v *view) project(x, y, z, playerZ float64) (col, row int, ok bool) {
	h := v.fieldHeight()
	sx, sy, _, ok := scenes.Project(x, y, z, playerZ, v.width, int(float64(h)*cellAspect))
	if !ok {
		return 0, 0, false
	}
	col = int(math.Round(sx))
	row = int(math.Round(sy / cellAspect))
	if col < 0 || col >= v.width || row < 0 || row >= h {
		return 0, 0, false
	}
	return col, row, true
}

func (v *view) draw(screen tcell.Screen, preview *modules.ChainPreviewModule) {
	screen.Clear()

	cfg := preview.Config()
	playerZ := cfg.Spawn.PlayerZ

	// 玩家平面上的 4x3 网格中心
	g := cfg.Grid
	for col := 0; col < 4; col++ {
		for row := 0; row < 3; row++ {
			x := g.BottomLeft.X + float64(col)*g.LaneWidth
			y := g.BottomLeft.Y + float64(row)*g.RowHeight
			if c, r, ok := v.project(x, y, playerZ, playerZ); ok {
				screen.SetContent(c, r, '·', nil, styleGrid)
			}
		}
	}

	v.items = v.items[:0]
	preview.ChainManager().ForEachVisible(func(_ *components.ChainLink, visual *components.LinkVisual) {
		v.items = append(v.items, visual)
	})
	sort.Slice(v.items, func(i, j int) bool {
		return v.items[i].Position.Z > v.items[j].Position.Z
	})
	for _, item := range v.items {
		if c, r, ok := v.project(item.Position.X, item.Position.Y, item.Position.Z, playerZ); ok {
			screen.SetContent(c, r, linkGlyph(item.Angle), nil, materialStyle(item.Material))
		}
	}

	v.drawHUD(screen, preview)
	screen.Show()
}

func (v *view) drawHUD(screen tcell.Screen, preview *modules.ChainPreviewModule) {
	tm := preview.TimeManager()
	settings := preview.Settings()

	state := "paused"
	if tm.Playing() {
		state = "playing"
	}

	lines := [hudLines]string{
		v.title,
		fmt.Sprintf("%s  %6.2fs / %.2fs  beat %7.2f  spawned %d  pool %d/%d  chain vol %.1f",
			state, tm.CurrentTime(), tm.SongLength(), tm.CurrentBeat(),
			preview.ChainManager().SpawnedCount(), preview.Pool().Live(), preview.Pool().Capacity(),
			settings.ChainVolume),
		progressBar(tm.Progress(), v.width),
	}

	top := v.height - hudLines
	for i, line := range lines {
		drawText(screen, 0, top+i, line, styleHUD)
	}
}

// linkGlyph 链节朝向对应的箭头字符
// 链节角度 0 表示指向下方，角度为逆时针方向
func linkGlyph(angle float64) rune {
	heading := angle - 90
	idx := int(math.Round(heading/45)) % 8
	if idx < 0 {
		idx += 8
	}
	return arrowGlyphs[idx]
}

func materialStyle(m components.Material) tcell.Style {
	simple := m.Kind == components.MaterialSimple
	switch {
	case m.Color == types.ColorRed && simple:
		return styleSimpleRed
	case m.Color == types.ColorRed:
		return styleRed
	case simple:
		return styleSimpleBlue
	default:
		return styleBlue
	}
}

// progressBar 宽度为 width 的进度条
func progressBar(progress float64, width int) string {
	if width <= 2 {
		return ""
	}
	inner := width - 2
	filled := int(math.Round(math.Max(0, math.Min(1, progress)) * float64(inner)))
	bar := make([]rune, 0, width)
	bar = append(bar, '[')
	for i := 0; i < inner; i++ {
		if i < filled {
			bar = append(bar, '=')
		} else {
			bar = append(bar, ' ')
		}
	}
	bar = append(bar, ']')
	return string(bar)
}

func drawText(screen tcell.Screen, x, y int, text string, style tcell.Style) {
	for _, r := range text {
		screen.SetContent(x, y, r, nil, style)
		x++
	}
}
