package scenes

import (
	"fmt"
	"image/color"
	"log"
	"math"
	"sort"

	"github.com/decker502/beatpreview/pkg/components"
	"github.com/decker502/beatpreview/pkg/config"
	"github.com/decker502/beatpreview/pkg/game"
	"github.com/decker502/beatpreview/pkg/modules"
	"github.com/decker502/beatpreview/pkg/types"
	"github.com/decker502/beatpreview/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	// Camera placement relative to the player (world units)
	CameraDistance = 2.0 // Camera sits this far behind the player on the Z axis
	CameraHeight   = 1.0 // Camera eye height
	FocalScale     = 0.8 // Focal length as a fraction of the screen height
	NearPlane      = 0.1 // Objects closer than this to the camera are culled

	// Chain link quad size (world units)
	LinkWidth  = 0.4
	LinkHeight = 0.1
	DotSize    = 0.08

	// Transport
	SeekStepBeats     = 1.0
	SeekFastStepBeats = 4.0
	VolumeStep        = 0.1

	// HUD progress bar (pixels)
	ProgressBarMargin = 10
	ProgressBarBottom = 14 // Distance from the bar top to the screen bottom
	ProgressBarHeight = 4
	ProgressBarSlop   = 6 // Extra clickable rows above and below the bar
)

var (
	backgroundColor = color.RGBA{R: 12, G: 12, B: 18, A: 255}
	gridColor       = color.RGBA{R: 60, G: 60, B: 80, A: 255}
	redColor        = color.RGBA{R: 220, G: 40, B: 40, A: 255}
	blueColor       = color.RGBA{R: 40, G: 110, B: 230, A: 255}
	simpleRedColor  = color.RGBA{R: 170, G: 60, B: 60, A: 255}
	simpleBlueColor = color.RGBA{R: 60, G: 90, B: 170, A: 255}
	dotColor        = color.RGBA{R: 245, G: 245, B: 245, A: 255}
)

// PreviewScene renders the chain links of one difficulty and handles the
// keyboard transport (space = play/pause, arrows = seek and volume).
// Clicking or dragging the HUD progress bar seeks through the song.
type PreviewScene struct {
	preview    *modules.ChainPreviewModule
	title      string
	width      int
	height     int
	pixel      *ebiten.Image // 1x1 white image, scaled and rotated for every quad
	drawBuffer []drawItem    // Reused every frame, sorted far to near
	showHUD    bool

	dragging bool // Dragging the progress bar
	dragX    int  // Last cursor X applied while dragging
}

type drawItem struct {
	link   *components.ChainLink
	visual *components.LinkVisual
}

// NewPreviewScene creates the preview scene.
//
// Parameters:
//   - preview: The chain preview module driving the timeline
//   - title: Song/difficulty label shown in the HUD
//   - width, height: Logical screen size
func NewPreviewScene(preview *modules.ChainPreviewModule, title string, width, height int) *PreviewScene {
	pixel := ebiten.NewImage(1, 1)
	pixel.Fill(color.White)

	return &PreviewScene{
		preview: preview,
		title:   title,
		width:   width,
		height:  height,
		pixel:   pixel,
		showHUD: true,
	}
}

// Update handles input and advances the preview by deltaTime seconds.
func (s *PreviewScene) Update(deltaTime float64) {
	s.handleInput()
	s.preview.Update(deltaTime)
}

func (s *PreviewScene) handleInput() {
	step := SeekStepBeats
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		step = SeekFastStepBeats
	}

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		s.preview.TogglePlaying()
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowRight):
		s.preview.SeekBeats(step)
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft):
		s.preview.SeekBeats(-step)
	case inpututil.IsKeyJustPressed(ebiten.KeyHome):
		s.preview.SeekTime(0)
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) {
		s.adjustChainVolume(VolumeStep)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) {
		s.adjustChainVolume(-VolumeStep)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyM) {
		s.preview.SetUseSimpleNoteMaterial(!s.simpleMaterial())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		s.showHUD = !s.showHUD
	}

	s.handleProgressBar()
}

// handleProgressBar seeks while the progress bar is clicked or dragged.
func (s *PreviewScene) handleProgressBar() {
	cx, cy := ebiten.CursorPosition()
	if s.showHUD && inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) && onProgressBar(cx, cy, s.width, s.height) {
		s.dragging = true
		s.dragX = -1
	}
	if !s.dragging {
		return
	}
	if !ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		s.dragging = false
		return
	}
	if cx != s.dragX {
		s.dragX = cx
		s.preview.SeekProgress(progressAt(cx, s.width))
	}
}

func (s *PreviewScene) adjustChainVolume(delta float64) {
	s.preview.SetChainVolume(s.preview.Settings().ChainVolume + delta)
}

func (s *PreviewScene) simpleMaterial() bool {
	return s.preview.Settings().UseSimpleNoteMaterial
}

// Draw renders the grid, the visible chain links and the HUD.
func (s *PreviewScene) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)

	cfg := s.preview.Config()
	s.drawGrid(screen, cfg)

	s.drawBuffer = s.drawBuffer[:0]
	s.preview.ChainManager().ForEachVisible(func(link *components.ChainLink, visual *components.LinkVisual) {
		s.drawBuffer = append(s.drawBuffer, drawItem{link: link, visual: visual})
	})
	// Painter's algorithm: far links first
	sort.Slice(s.drawBuffer, func(i, j int) bool {
		return s.drawBuffer[i].visual.Position.Z > s.drawBuffer[j].visual.Position.Z
	})
	for _, item := range s.drawBuffer {
		s.drawLink(screen, cfg, item.visual)
	}

	if s.showHUD {
		s.drawHUD(screen)
	}
}

// drawGrid draws the 4x3 grid outline at the player plane.
func (s *PreviewScene) drawGrid(screen *ebiten.Image, cfg *config.PreviewerConfig) {
	g := cfg.Grid
	z := cfg.Spawn.PlayerZ
	left := g.BottomLeft.X - g.LaneWidth/2
	bottom := g.BottomLeft.Y - g.RowHeight/2

	for col := 0; col <= 4; col++ {
		x := left + float64(col)*g.LaneWidth
		s.worldLine(screen, cfg, x, bottom, x, bottom+3*g.RowHeight, z)
	}
	for row := 0; row <= 3; row++ {
		y := bottom + float64(row)*g.RowHeight
		s.worldLine(screen, cfg, left, y, left+4*g.LaneWidth, y, z)
	}
}

func (s *PreviewScene) worldLine(screen *ebiten.Image, cfg *config.PreviewerConfig, x0, y0, x1, y1, z float64) {
	sx0, sy0, _, ok0 := Project(x0, y0, z, cfg.Spawn.PlayerZ, s.width, s.height)
	sx1, sy1, _, ok1 := Project(x1, y1, z, cfg.Spawn.PlayerZ, s.width, s.height)
	if !ok0 || !ok1 {
		return
	}
	vector.StrokeLine(screen, float32(sx0), float32(sy0), float32(sx1), float32(sy1), 1, gridColor, true)
}

// drawLink draws one link as a rotated quad with a center dot.
func (s *PreviewScene) drawLink(screen *ebiten.Image, cfg *config.PreviewerConfig, v *components.LinkVisual) {
	sx, sy, scale, ok := Project(v.Position.X, v.Position.Y, v.Position.Z, cfg.Spawn.PlayerZ, s.width, s.height)
	if !ok {
		return
	}

	s.drawQuad(screen, sx, sy, LinkWidth*scale, LinkHeight*scale, v.Angle, materialColor(v.Material))
	s.drawQuad(screen, sx, sy, DotSize*scale, DotSize*scale, v.Angle, materialColor(v.DotMaterial))
}

func (s *PreviewScene) drawQuad(screen *ebiten.Image, x, y, w, h, angleDeg float64, clr color.RGBA) {
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(w, h)
	op.GeoM.Translate(-w/2, -h/2)
	// World angles are counter-clockwise; screen Y points down
	op.GeoM.Rotate(-angleDeg * math.Pi / 180)
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(clr)
	screen.DrawImage(s.pixel, op)
}

func (s *PreviewScene) drawHUD(screen *ebiten.Image) {
	tm := s.preview.TimeManager()
	settings := s.preview.Settings()

	state := "paused"
	if tm.Playing() {
		state = "playing"
	}

	hud := fmt.Sprintf("%s\n%s  time %.2f / %.2f  beat %.2f\nlinks %d  spawned %d  pool %d/%d\nhitsound %.1f  chain %.1f  simple %v\n[space] play  [<-/->] seek  [up/down] chain volume  [m] material  [h] hud",
		s.title, state, tm.CurrentTime(), tm.SongLength(), tm.CurrentBeat(),
		len(s.preview.ChainManager().Links()), s.preview.ChainManager().SpawnedCount(),
		s.preview.Pool().Live(), s.preview.Pool().Capacity(),
		settings.HitsoundVolume, settings.ChainVolume, settings.UseSimpleNoteMaterial)
	ebitenutil.DebugPrintAt(screen, hud, 10, 10)

	// Progress bar
	barWidth := float32(s.width - 2*ProgressBarMargin)
	barY := float32(s.height - ProgressBarBottom)
	vector.DrawFilledRect(screen, ProgressBarMargin, barY, barWidth, ProgressBarHeight, gridColor, false)
	vector.DrawFilledRect(screen, ProgressBarMargin, barY, barWidth*float32(tm.Progress()), ProgressBarHeight, dotColor, false)
}

// onProgressBar reports whether the cursor is over the HUD progress bar.
func onProgressBar(x, y, width, height int) bool {
	top := height - ProgressBarBottom - ProgressBarSlop
	bottom := height - ProgressBarBottom + ProgressBarHeight + ProgressBarSlop
	return x >= ProgressBarMargin && x <= width-ProgressBarMargin && y >= top && y <= bottom
}

// progressAt maps a cursor X to a song progress in [0, 1].
func progressAt(x, width int) float64 {
	barWidth := width - 2*ProgressBarMargin
	if barWidth <= 0 {
		return 0
	}
	return utils.Clamp01(float64(x-ProgressBarMargin) / float64(barWidth))
}

// SaveOnExit persists the user settings when the window closes.
func (s *PreviewScene) SaveOnExit() bool {
	if err := s.preview.SaveSettings(); err != nil {
		log.Printf("[PreviewScene] Warning: Failed to save settings: %v", err)
		return false
	}
	return true
}

// Project maps a world position to screen coordinates with a pinhole camera
// placed CameraDistance behind the player.
//
// Returns:
//   - sx, sy: Screen position
//   - scale: Pixels per world unit at that depth
//   - ok: false when the point is behind the near plane
func Project(x, y, z, playerZ float64, width, height int) (sx, sy, scale float64, ok bool) {
	depth := z - (playerZ - CameraDistance)
	if depth < NearPlane {
		return 0, 0, 0, false
	}
	scale = float64(height) * FocalScale / depth
	sx = float64(width)/2 + x*scale
	sy = float64(height)/2 - (y-CameraHeight/2)*scale
	return sx, sy, scale, true
}

func materialColor(m components.Material) color.RGBA {
	switch m.Kind {
	case components.MaterialArrow:
		return dotColor
	case components.MaterialSimple:
		if m.Color == types.ColorRed {
			return simpleRedColor
		}
		return simpleBlueColor
	default:
		if m.Color == types.ColorRed {
			return redColor
		}
		return blueColor
	}
}

var _ game.Saveable = (*PreviewScene)(nil)
