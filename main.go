package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/decker502/beatpreview/pkg/app"
	"github.com/decker502/beatpreview/pkg/embedded"
	"github.com/hajimehoshi/ebiten/v2"
)

var (
	chartDir       = flag.String("chart", ".", "谱面目录（包含 Info.dat）")
	difficulty     = flag.String("difficulty", "ExpertPlus", "难度名，如 Expert、ExpertPlus")
	characteristic = flag.String("characteristic", "Standard", "玩法，如 Standard、OneSaber")
	configPath     = flag.String("config", "", "预览器配置文件（默认使用内嵌配置）")
	hitsound       = flag.String("hitsound", "", "自定义打击音文件（.wav/.ogg/.mp3）")
	verbose        = flag.Bool("verbose", false, "显示详细日志")
)

func main() {
	flag.Parse()

	// 初始化嵌入资源
	embedded.Init(dataFS)

	previewer, err := app.NewApp(app.Config{
		Verbose:        *verbose,
		ChartDir:       *chartDir,
		Difficulty:     *difficulty,
		Characteristic: *characteristic,
		ConfigPath:     *configPath,
		Hitsound:       *hitsound,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "预览器初始化失败: %v\n", err)
		os.Exit(1)
	}

	ebiten.SetWindowSize(app.WindowWidth, app.WindowHeight)
	ebiten.SetWindowTitle(previewer.Title())
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	// 关闭窗口时先保存设置
	ebiten.SetWindowClosingHandled(true)

	if err := ebiten.RunGame(previewer); err != nil {
		log.Fatal(err)
	}
}
