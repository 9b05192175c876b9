// chain_dump 打印难度文件中每条链展开后的链节
//
// 用法：
//
//	go run ./cmd/chain_dump -file ExpertPlusStandard.dat -bpm 128
//	go run ./cmd/chain_dump -file ExpertPlusStandard.dat -format yaml
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"

	"github.com/decker502/beatpreview/pkg/chart"
	"github.com/decker502/beatpreview/pkg/config"
	"github.com/decker502/beatpreview/pkg/game"
	"github.com/decker502/beatpreview/pkg/systems"
	"gopkg.in/yaml.v3"
)

var (
	difficultyFile = flag.String("file", "", "v3 难度文件路径")
	bpm            = flag.Float64("bpm", 0, "基础 BPM（> 0 时输出链节的歌曲时间）")
	configPath     = flag.String("config", "", "预览器配置文件（网格常量），默认使用内置值")
	format         = flag.String("format", "table", "输出格式：table 或 yaml")
)

// dumpLink 一个链节的输出记录
type dumpLink struct {
	Chain int     `yaml:"chain"`
	Index int     `yaml:"index"`
	Beat  float64 `yaml:"beat"`
	Time  float64 `yaml:"time,omitempty"`
	X     float64 `yaml:"x"`
	Y     float64 `yaml:"y"`
	Color string  `yaml:"color"`
	Angle float64 `yaml:"angle"`
}

func main() {
	flag.Parse()

	if *difficultyFile == "" {
		fmt.Fprintln(os.Stderr, "usage: chain_dump -file <difficulty.dat> [-bpm N] [-format table|yaml]")
		os.Exit(2)
	}

	cfg := config.DefaultPreviewerConfig()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadPreviewerConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}

	difficulty, err := chart.LoadDifficulty(*difficultyFile)
	if err != nil {
		log.Fatalf("Failed to load difficulty: %v", err)
	}

	var timeManager *game.TimeManager
	if *bpm > 0 {
		timeManager = game.NewTimeManager(*bpm)
		timeManager.SetBpmEvents(difficulty.BpmEvents)
	}

	links := collectLinks(difficulty, cfg, timeManager)

	switch *format {
	case "yaml":
		err = writeYAML(os.Stdout, links)
	case "table":
		err = writeTable(os.Stdout, links, timeManager != nil)
	default:
		err = fmt.Errorf("unknown format %q", *format)
	}
	if err != nil {
		log.Fatal(err)
	}
}

// collectLinks 按谱面顺序展开所有链
func collectLinks(difficulty *chart.Difficulty, cfg *config.PreviewerConfig, tm *game.TimeManager) []dumpLink {
	chains := difficulty.Chains()
	chart.SortObjectsByBeat(chains)

	var out []dumpLink
	for ci, c := range chains {
		for li, link := range systems.ExpandChain(c, cfg.Grid) {
			d := dumpLink{
				Chain: ci,
				Index: li,
				Beat:  link.Beat,
				X:     link.X,
				Y:     link.Y,
				Color: link.Color.String(),
				Angle: link.Angle,
			}
			if tm != nil {
				d.Time = tm.BeatToTime(link.Beat)
			}
			out = append(out, d)
		}
	}
	return out
}

func writeTable(w io.Writer, links []dumpLink, withTime bool) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if withTime {
		fmt.Fprintln(tw, "CHAIN\tLINK\tBEAT\tTIME\tX\tY\tCOLOR\tANGLE")
	} else {
		fmt.Fprintln(tw, "CHAIN\tLINK\tBEAT\tX\tY\tCOLOR\tANGLE")
	}
	for _, l := range links {
		if withTime {
			fmt.Fprintf(tw, "%d\t%d\t%.4f\t%.4f\t%.4f\t%.4f\t%s\t%.2f\n", l.Chain, l.Index, l.Beat, l.Time, l.X, l.Y, l.Color, l.Angle)
		} else {
			fmt.Fprintf(tw, "%d\t%d\t%.4f\t%.4f\t%.4f\t%s\t%.2f\n", l.Chain, l.Index, l.Beat, l.X, l.Y, l.Color, l.Angle)
		}
	}
	fmt.Fprintf(tw, "\n%d links\n", len(links))
	return tw.Flush()
}

func writeYAML(w io.Writer, links []dumpLink) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(links); err != nil {
		return fmt.Errorf("failed to encode links: %w", err)
	}
	return enc.Close()
}
