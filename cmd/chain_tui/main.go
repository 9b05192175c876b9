// chain_tui 终端版链节预览器
//
// 与 Ebitengine 预览器共用 ChainPreviewModule，打击音通过 beep speaker 播放。
//
// 用法：
//
//	go run ./cmd/chain_tui -chart ./MySong -difficulty ExpertPlus
//
// 按键：空格 播放/暂停，←/→ 跳转 1 拍，↑/↓ 跳转 4 拍，Home 回到开头，
// +/- 链节音量，m 切换简化材质，q/Esc 退出
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	audiosynth "github.com/decker502/beatpreview/internal/audio"
	"github.com/decker502/beatpreview/pkg/app"
	"github.com/decker502/beatpreview/pkg/game"
	"github.com/decker502/beatpreview/pkg/modules"
	"github.com/gdamore/tcell/v2"
)

const (
	sampleRate   = 44100
	tickInterval = 16 * time.Millisecond // ~60 FPS
	seekStep     = 1.0
	seekFastStep = 4.0
	volumeStep   = 0.1
)

var (
	chartDir       = flag.String("chart", ".", "谱面目录（包含 Info.dat）")
	difficulty     = flag.String("difficulty", "ExpertPlus", "难度名")
	characteristic = flag.String("characteristic", "Standard", "玩法")
	configPath     = flag.String("config", "", "预览器配置文件")
	mute           = flag.Bool("mute", false, "不播放打击音")
	verbose        = flag.Bool("verbose", false, "输出日志到 stderr（会干扰终端画面）")
)

// Previewer 终端预览器
type Previewer struct {
	screen  tcell.Screen
	preview *modules.ChainPreviewModule
	speaker *audiosynth.Speaker // 可为 nil（静音）
	view    *view
}

func main() {
	flag.Parse()

	if !*verbose {
		log.SetOutput(io.Discard)
	}

	p, err := NewPreviewer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer p.cleanup()

	p.run()
}

// NewPreviewer 加载谱面并初始化终端
func NewPreviewer() (*Previewer, error) {
	cfg, err := app.LoadConfig(*configPath)
	if err != nil {
		return nil, err
	}

	data, err := app.LoadPreviewData(context.Background(), app.LoadRequest{
		ChartDir:       *chartDir,
		Characteristic: *characteristic,
		Difficulty:     *difficulty,
		SampleRate:     sampleRate,
		SkipSong:       true,
	})
	if err != nil {
		return nil, err
	}

	settings, err := game.NewSettingsManager(nil)
	if err != nil {
		return nil, err
	}

	p := &Previewer{}

	hitsounds := game.NewMutedHitsoundManager()
	if !*mute {
		if spk, err := audiosynth.OpenSpeaker(sampleRate); err != nil {
			// 没有音频设备时静音运行
			log.Printf("[ChainTUI] Audio unavailable: %v", err)
		} else {
			p.speaker = spk
			hitsounds = game.NewHitsoundManagerFunc(func() game.SoundPlayer {
				return spk.NewVoice()
			})
		}
	}

	p.preview, err = modules.NewChainPreviewModule(modules.ChainPreviewDeps{
		Config:     cfg,
		BPM:        data.Info.BeatsPerMinute,
		Beatmap:    data.Beatmap,
		Difficulty: data.Difficulty,
		Settings:   settings,
		Hitsounds:  hitsounds,
	})
	if err != nil {
		p.cleanup()
		return nil, err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		p.cleanup()
		return nil, err
	}
	if err := screen.Init(); err != nil {
		p.cleanup()
		return nil, err
	}
	p.screen = screen

	width, height := screen.Size()
	p.view = newView(data.Title(), width, height)

	return p, nil
}

// handleInput 处理按键，返回 false 表示退出
func (p *Previewer) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		step := seekStep
		if ev.Modifiers()&tcell.ModShift != 0 {
			step = seekFastStep
		}

		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyRight:
			p.preview.SeekBeats(step)
		case tcell.KeyLeft:
			p.preview.SeekBeats(-step)
		case tcell.KeyUp:
			p.preview.SeekBeats(seekFastStep)
		case tcell.KeyDown:
			p.preview.SeekBeats(-seekFastStep)
		case tcell.KeyHome:
			p.preview.SeekTime(0)
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return false
			case ' ':
				p.preview.TogglePlaying()
			case '+', '=':
				p.preview.SetChainVolume(p.preview.Settings().ChainVolume + volumeStep)
			case '-':
				p.preview.SetChainVolume(p.preview.Settings().ChainVolume - volumeStep)
			case 'm':
				p.preview.SetUseSimpleNoteMaterial(!p.preview.Settings().UseSimpleNoteMaterial)
			}
		}

	case *tcell.EventResize:
		p.screen.Sync()
		p.view.resize(p.screen.Size())
	}

	return true
}

func (p *Previewer) run() {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	done := make(chan struct{})
	defer close(done)
	go pollEvents(p.screen, eventChan, done)

	last := time.Now()
	for {
		select {
		case ev := <-eventChan:
			if !p.handleInput(ev) {
				return
			}

		case now := <-ticker.C:
			p.preview.Update(now.Sub(last).Seconds())
			last = now
			p.view.draw(p.screen, p.preview)
		}
	}
}

// pollEvents 把终端事件转发到 events，done 关闭或屏幕结束后退出
func pollEvents(screen eventSource, events chan<- tcell.Event, done <-chan struct{}) {
	for {
		ev := screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case events <- ev:
		case <-done:
			return
		}
	}
}

// eventSource tcell.Screen 的事件部分
type eventSource interface {
	PollEvent() tcell.Event
}

func (p *Previewer) cleanup() {
	if p.preview != nil {
		p.preview.SetPlaying(false)
	}
	if p.speaker != nil {
		p.speaker.Close()
	}
	if p.screen != nil {
		p.screen.Fini()
	}
}
