package chart

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultDifficultyVersion 谱面未声明版本时使用的版本号
const DefaultDifficultyVersion = "3.0.0"

// Difficulty v3 难度文件
// 只解析预览链所需的字段
type Difficulty struct {
	Version      string        `yaml:"version"`
	BpmEvents    []BpmEvent    `yaml:"bpmEvents"`
	ColorNotes   []ColorNote   `yaml:"colorNotes"`
	BurstSliders []BurstSlider `yaml:"burstSliders"`
}

// BpmEvent 变速事件
type BpmEvent struct {
	Beat float64 `yaml:"b"`
	BPM  float64 `yaml:"m"`
}

// ColorNote 普通音符
type ColorNote struct {
	Beat      float64 `yaml:"b"`
	X         int     `yaml:"x"`
	Y         int     `yaml:"y"`
	Color     int     `yaml:"c"`
	Direction int     `yaml:"d"`
	Angle     int     `yaml:"a"`
}

// BurstSlider 链（谱面原始字段）
type BurstSlider struct {
	Beat         float64 `yaml:"b"`
	X            int     `yaml:"x"`
	Y            int     `yaml:"y"`
	Color        int     `yaml:"c"`
	Direction    int     `yaml:"d"`
	TailBeat     float64 `yaml:"tb"`
	TailX        int     `yaml:"tx"`
	TailY        int     `yaml:"ty"`
	SegmentCount int     `yaml:"sc"`
	Squish       float64 `yaml:"s"`
}

// LoadDifficulty 从文件加载 v3 难度
func LoadDifficulty(filePath string) (*Difficulty, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read difficulty file: %w", err)
	}
	return ParseDifficulty(data)
}

// ParseDifficulty 解析 v3 难度 JSON
//
// 缺失的数组按空数组处理，缺失的版本号补为 DefaultDifficultyVersion。
// v2 格式的文件没有链，解析结果中 BurstSliders 为空。
func ParseDifficulty(data []byte) (*Difficulty, error) {
	var diff Difficulty
	if err := yaml.Unmarshal(normalizeJSON(data), &diff); err != nil {
		return nil, fmt.Errorf("failed to parse difficulty: %w", err)
	}

	if diff.Version == "" {
		diff.Version = DefaultDifficultyVersion
	}
	if diff.BpmEvents == nil {
		diff.BpmEvents = []BpmEvent{}
	}
	if diff.ColorNotes == nil {
		diff.ColorNotes = []ColorNote{}
	}
	if diff.BurstSliders == nil {
		diff.BurstSliders = []BurstSlider{}
	}

	return &diff, nil
}

// Chains 将 burstSliders 转换为链（保持文件中的顺序）
func (d *Difficulty) Chains() []Chain {
	chains := make([]Chain, 0, len(d.BurstSliders))
	for _, b := range d.BurstSliders {
		chains = append(chains, ChainFromBurstSlider(b))
	}
	return chains
}

// normalizeJSON 去掉 UTF-8 BOM 并把制表符替换为空格
// yaml 扫描器不接受制表符缩进，而合法 JSON 的字符串内不会出现原始制表符
func normalizeJSON(data []byte) []byte {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	return bytes.ReplaceAll(data, []byte("\t"), []byte(" "))
}
