package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/decker502/beatpreview/pkg/chart"
	"github.com/decker502/beatpreview/pkg/config"
	"github.com/decker502/beatpreview/pkg/embedded"
	"github.com/decker502/beatpreview/pkg/game"
	"golang.org/x/sync/errgroup"
)

// DefaultConfigPath 内嵌的默认预览器配置
const DefaultConfigPath = "data/config/previewer.yaml"

// infoFileNames Info.dat 的候选文件名（大小写因谱面工具而异）
var infoFileNames = []string{"Info.dat", "info.dat"}

// LoadRequest 描述一次谱面加载
type LoadRequest struct {
	ChartDir       string // 谱面目录（包含 Info.dat）
	Characteristic string // 玩法，如 "Standard"
	Difficulty     string // 难度名，如 "ExpertPlus"
	Hitsound       string // 自定义打击音文件，为空使用内置音效
	SampleRate     int    // 打击音解码采样率
	SkipSong       bool   // 不读取歌曲文件（终端预览器）
}

// PreviewData 加载阶段的全部产物
type PreviewData struct {
	Info       *chart.Info
	Beatmap    chart.DifficultyBeatmap
	Difficulty *chart.Difficulty

	SongPath string // 歌曲文件路径，未找到时为空
	SongData []byte // 歌曲原始数据，解码由调用方在主协程完成

	HitsoundPCM []byte // 16-bit 立体声 PCM
}

// Title 用于窗口标题和 HUD 的谱面名称
func (d *PreviewData) Title() string {
	return fmt.Sprintf("%s - %s [%s]", d.Info.SongAuthorName, d.Info.SongName, d.Beatmap.Difficulty)
}

// LoadPreviewData 加载谱面信息、难度文件、歌曲和打击音
//
// Info.dat 先读（决定难度文件名），其余三项用 errgroup 并发加载。
// 歌曲缺失或打击音解码失败不是致命错误：前者静音预览，后者退回内置音效。
//
// 返回：
//   - *PreviewData: 加载结果
//   - error: Info.dat 或难度文件无法加载时返回错误
func LoadPreviewData(ctx context.Context, req LoadRequest) (*PreviewData, error) {
	info, err := loadInfo(req.ChartDir)
	if err != nil {
		return nil, err
	}

	beatmap, ok := info.FindDifficulty(req.Characteristic, req.Difficulty)
	if !ok {
		return nil, fmt.Errorf("difficulty %s/%s not found in %s", req.Characteristic, req.Difficulty, req.ChartDir)
	}

	data := &PreviewData{
		Info:    info,
		Beatmap: beatmap,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		difficulty, err := chart.LoadDifficulty(filepath.Join(req.ChartDir, beatmap.BeatmapFilename))
		if err != nil {
			return fmt.Errorf("failed to load difficulty %s: %w", beatmap.BeatmapFilename, err)
		}
		data.Difficulty = difficulty
		return nil
	})

	if !req.SkipSong && info.SongFilename != "" {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			songPath := filepath.Join(req.ChartDir, info.SongFilename)
			songData, err := os.ReadFile(songPath)
			if err != nil {
				log.Printf("[Loader] Warning: song not available (%v), previewing without music", err)
				return nil
			}
			data.SongPath = songPath
			data.SongData = songData
			return nil
		})
	}

	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		data.HitsoundPCM = loadHitsoundPCM(req.Hitsound, req.SampleRate)
		if data.HitsoundPCM == nil {
			return errors.New("no hitsound available")
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Printf("[Loader] Loaded %s: %d chains, %d notes, %d BPM events",
		data.Title(), len(data.Difficulty.BurstSliders), len(data.Difficulty.ColorNotes), len(data.Difficulty.BpmEvents))

	return data, nil
}

// loadInfo 按候选文件名查找并解析 Info.dat
func loadInfo(chartDir string) (*chart.Info, error) {
	var lastErr error
	for _, name := range infoFileNames {
		info, err := chart.LoadInfo(filepath.Join(chartDir, name))
		if err == nil {
			return info, nil
		}
		lastErr = err
		if !errors.Is(err, fs.ErrNotExist) {
			break
		}
	}
	return nil, fmt.Errorf("failed to load chart info from %s: %w", chartDir, lastErr)
}

// loadHitsoundPCM 解码自定义打击音，失败时退回内置音效
func loadHitsoundPCM(path string, sampleRate int) []byte {
	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			var pcm []byte
			pcm, err = game.DecodeHitsound(path, data, sampleRate)
			if err == nil {
				return pcm
			}
		}
		log.Printf("[Loader] Warning: custom hitsound unusable (%v), using built-in click", err)
	}

	pcm, err := game.DefaultHitsound(sampleRate)
	if err != nil {
		log.Printf("[Loader] Error: %v", err)
		return nil
	}
	return pcm
}

// LoadConfig 加载预览器配置
// path 为空时读取内嵌默认配置；embedded 未初始化时使用代码内默认值
func LoadConfig(path string) (*config.PreviewerConfig, error) {
	if path != "" {
		cfg, err := config.LoadPreviewerConfig(path)
		if err != nil {
			return nil, err
		}
		log.Printf("[Config] Loaded previewer config: %s", path)
		return cfg, nil
	}

	if !embedded.IsInitialized() {
		return config.DefaultPreviewerConfig(), nil
	}

	data, err := embedded.ReadFile(DefaultConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded config: %w", err)
	}
	return config.ParsePreviewerConfig(data)
}
