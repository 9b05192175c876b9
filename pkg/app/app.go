// Package app 提供预览器应用的核心包装器
//
// 该包把启动流程（配置、谱面加载、音频、场景）从 main 包提取出来，
// main.go 只负责解析命令行参数并运行 Ebitengine 主循环。
package app

import (
	"context"
	"fmt"
	"image/color"
	"io"
	"log"

	"github.com/decker502/beatpreview/pkg/config"
	"github.com/decker502/beatpreview/pkg/game"
	"github.com/decker502/beatpreview/pkg/modules"
	"github.com/decker502/beatpreview/pkg/scenes"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/quasilyte/gdata/v2"
)

// 逻辑屏幕尺寸
const (
	WindowWidth  = 1280
	WindowHeight = 720
)

// sampleRate 音频上下文采样率
const sampleRate = 48000

// settingsAppName gdata 存储目录名
const settingsAppName = "beatpreview"

// Config 定义应用启动配置
type Config struct {
	// Verbose 启用详细日志输出
	Verbose bool
	// ChartDir 谱面目录（包含 Info.dat）
	ChartDir string
	// Difficulty 难度名，如 "ExpertPlus"
	Difficulty string
	// Characteristic 玩法，默认 "Standard"
	Characteristic string
	// ConfigPath 预览器配置文件，为空使用内嵌默认配置
	ConfigPath string
	// Hitsound 自定义打击音文件，为空使用内置音效
	Hitsound string
}

// App 是预览器应用的核心包装器，实现 ebiten.Game 接口
type App struct {
	sceneManager    *game.SceneManager
	resourceManager *game.ResourceManager
	settingsManager *game.SettingsManager
	previewerConfig *config.PreviewerConfig
	cfg             Config

	preview      *modules.ChainPreviewModule // 当前难度的预览模块
	title        string
	difficulty   string   // 当前难度名
	difficulties []string // 当前玩法下的全部难度，Tab 键循环切换

	verbose                  bool
	pendingWindowSizeReset   bool // 延迟设置窗口大小标志
	windowSizeResetCountdown int  // 延迟帧数
}

// NewApp 创建并初始化预览器应用
//
// 调用此函数前，应先调用 embedded.Init() 初始化嵌入资源（未初始化时使用代码内默认配置）。
func NewApp(cfg Config) (*App, error) {
	// 配置日志输出
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
	}
	if cfg.Characteristic == "" {
		cfg.Characteristic = "Standard"
	}

	previewerConfig, err := LoadConfig(cfg.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("预览器配置加载失败: %w", err)
	}

	// 初始化音频上下文
	audioContext := audio.NewContext(sampleRate)

	// 创建资源管理器
	resourceManager := game.NewResourceManager(audioContext)

	// 设置持久化不可用时降级为内存设置
	gdataManager, err := gdata.Open(gdata.Config{AppName: settingsAppName})
	if err != nil {
		log.Printf("[App] Warning: gdata unavailable (%v), settings will not persist", err)
		gdataManager = nil
	}
	settingsManager, err := game.NewSettingsManager(gdataManager)
	if err != nil {
		return nil, fmt.Errorf("设置管理器初始化失败: %w", err)
	}

	a := &App{
		resourceManager: resourceManager,
		settingsManager: settingsManager,
		previewerConfig: previewerConfig,
		cfg:             cfg,
		verbose:         cfg.Verbose,
	}

	// 创建场景管理器
	sceneManager := game.NewSceneManager()
	sceneManager.SetSceneFactory(a.newPreviewScene)
	a.sceneManager = sceneManager

	scene, err := a.newPreviewScene(cfg.Difficulty)
	if err != nil {
		return nil, fmt.Errorf("无法加载难度 %s/%s: %w", cfg.Characteristic, cfg.Difficulty, err)
	}
	sceneManager.SwitchTo(scene)

	return a, nil
}

// newPreviewScene 加载指定难度并创建预览场景
// 作为 SceneManager 的场景工厂使用
func (a *App) newPreviewScene(difficulty string) (game.Scene, error) {
	data, err := LoadPreviewData(context.Background(), LoadRequest{
		ChartDir:       a.cfg.ChartDir,
		Characteristic: a.cfg.Characteristic,
		Difficulty:     difficulty,
		Hitsound:       a.cfg.Hitsound,
		SampleRate:     sampleRate,
	})
	if err != nil {
		return nil, err
	}

	// 旧模块的打击音和歌曲停止后再替换
	if a.preview != nil {
		a.preview.SetPlaying(false)
	}

	audioManager := game.NewAudioManager(a.resourceManager, a.settingsManager)
	if data.SongPath != "" {
		player, length, err := a.resourceManager.NewSongPlayer(data.SongPath, data.SongData)
		if err != nil {
			log.Printf("[App] Warning: %v, previewing without music", err)
		} else {
			audioManager.SetSong(data.SongPath, player, length)
		}
	}

	a.resourceManager.StoreHitsound(a.cfg.Hitsound, data.HitsoundPCM)
	hitsounds := game.NewHitsoundManager(a.resourceManager.AudioContext(), data.HitsoundPCM)

	preview, err := modules.NewChainPreviewModule(modules.ChainPreviewDeps{
		Config:     a.previewerConfig,
		BPM:        data.Info.BeatsPerMinute,
		Beatmap:    data.Beatmap,
		Difficulty: data.Difficulty,
		Settings:   a.settingsManager,
		Hitsounds:  hitsounds,
		Audio:      audioManager,
	})
	if err != nil {
		return nil, err
	}

	a.preview = preview
	a.title = data.Title()
	a.difficulty = difficulty
	a.difficulties = data.Info.DifficultyNames(a.cfg.Characteristic)
	ebiten.SetWindowTitle(a.title)
	log.Printf("[App] Preview ready: %s", a.title)

	return scenes.NewPreviewScene(preview, a.title, WindowWidth, WindowHeight), nil
}

// Update 更新预览逻辑
// 每个 tick 调用一次（通常每秒 60 次）
func (a *App) Update() error {
	// 关闭窗口前保存设置
	if ebiten.IsWindowBeingClosed() {
		a.SaveOnExit()
		return ebiten.Termination
	}

	// 延迟设置窗口大小（退出全屏后需要等待几帧才能正确设置）
	if a.pendingWindowSizeReset {
		a.windowSizeResetCountdown--
		if a.windowSizeResetCountdown <= 0 {
			ebiten.SetWindowSize(WindowWidth, WindowHeight)
			log.Printf("[App] Delayed SetWindowSize(%d, %d)", WindowWidth, WindowHeight)
			a.pendingWindowSizeReset = false
		}
	}

	// F11 切换全屏
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		if ebiten.IsFullscreen() {
			ebiten.SetFullscreen(false)
			if ebiten.IsWindowMaximized() || ebiten.IsWindowMinimized() {
				ebiten.RestoreWindow()
			}
			// 延迟几帧后设置窗口大小，让窗口管理器有时间处理
			a.pendingWindowSizeReset = true
			a.windowSizeResetCountdown = 3
			log.Printf("[App] Exit fullscreen, will reset window size in 3 frames")
		} else {
			ebiten.SetFullscreen(true)
		}
	}

	// Tab 切换到下一个难度
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		if next := nextDifficulty(a.difficulties, a.difficulty); next != a.difficulty {
			a.sceneManager.LoadDifficulty(next)
		}
	}

	deltaTime := 1.0 / float64(ebiten.TPS())
	a.sceneManager.Update(deltaTime)
	return nil
}

// nextDifficulty 返回列表中 current 之后的难度（循环）
// current 不在列表中时返回 current
func nextDifficulty(difficulties []string, current string) string {
	for i, d := range difficulties {
		if d == current {
			return difficulties[(i+1)%len(difficulties)]
		}
	}
	return current
}

// Draw 绘制预览画面
func (a *App) Draw(screen *ebiten.Image) {
	a.sceneManager.Draw(screen)
}

// DrawFinalScreen 实现 FinalScreenDrawer 接口
// 用于控制全屏时的缩放和 letterbox 颜色
func (a *App) DrawFinalScreen(screen ebiten.FinalScreen, offscreen *ebiten.Image, geoM ebiten.GeoM) {
	screen.Fill(color.Black)
	op := &ebiten.DrawImageOptions{}
	op.GeoM = geoM
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(offscreen, op)
}

// Layout 返回逻辑屏幕尺寸
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return WindowWidth, WindowHeight
}

// SaveOnExit 保存当前场景的状态（用户设置）
func (a *App) SaveOnExit() {
	if saveable, ok := a.sceneManager.GetCurrentScene().(game.Saveable); ok {
		saveable.SaveOnExit()
	}
}

// Title 当前谱面标题
func (a *App) Title() string {
	return a.title
}

// GetSceneManager 返回场景管理器
func (a *App) GetSceneManager() *game.SceneManager {
	return a.sceneManager
}

// IsVerbose 返回是否启用了详细日志
func (a *App) IsVerbose() bool {
	return a.verbose
}
