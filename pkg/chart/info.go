package chart

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Info 谱面信息文件（Info.dat，v2 字段名）
type Info struct {
	Version         string                 `yaml:"_version"`
	SongName        string                 `yaml:"_songName"`
	SongSubName     string                 `yaml:"_songSubName"`
	SongAuthorName  string                 `yaml:"_songAuthorName"`
	LevelAuthorName string                 `yaml:"_levelAuthorName"`
	BeatsPerMinute  float64                `yaml:"_beatsPerMinute"`
	SongTimeOffset  float64                `yaml:"_songTimeOffset"`
	SongFilename    string                 `yaml:"_songFilename"`
	EnvironmentName string                 `yaml:"_environmentName"`
	DifficultySets  []DifficultyBeatmapSet `yaml:"_difficultyBeatmapSets"`
}

// DifficultyBeatmapSet 一种玩法（Standard / OneSaber ...）下的难度集合
type DifficultyBeatmapSet struct {
	Characteristic string              `yaml:"_beatmapCharacteristicName"`
	Difficulties   []DifficultyBeatmap `yaml:"_difficultyBeatmaps"`
}

// DifficultyBeatmap 单个难度的元数据
type DifficultyBeatmap struct {
	Difficulty              string  `yaml:"_difficulty"`
	DifficultyRank          int     `yaml:"_difficultyRank"`
	BeatmapFilename         string  `yaml:"_beatmapFilename"`
	NoteJumpMovementSpeed   float64 `yaml:"_noteJumpMovementSpeed"`
	NoteJumpStartBeatOffset float64 `yaml:"_noteJumpStartBeatOffset"`
}

// LoadInfo 从文件加载 Info.dat
func LoadInfo(filePath string) (*Info, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read info file: %w", err)
	}
	return ParseInfo(data)
}

// ParseInfo 解析 Info.dat，并为缺失字段补默认值
func ParseInfo(data []byte) (*Info, error) {
	var info Info
	if err := yaml.Unmarshal(normalizeJSON(data), &info); err != nil {
		return nil, fmt.Errorf("failed to parse info: %w", err)
	}

	if info.BeatsPerMinute <= 0 {
		return nil, fmt.Errorf("_beatsPerMinute must be > 0, got %v", info.BeatsPerMinute)
	}

	if info.SongName == "" {
		info.SongName = "Unknown"
	}
	if info.SongAuthorName == "" {
		info.SongAuthorName = "Unknown"
	}
	if info.LevelAuthorName == "" {
		info.LevelAuthorName = "Unknown"
	}
	if info.EnvironmentName == "" {
		info.EnvironmentName = "DefaultEnvironment"
	}
	for i := range info.DifficultySets {
		if info.DifficultySets[i].Characteristic == "" {
			info.DifficultySets[i].Characteristic = "Standard"
		}
	}

	return &info, nil
}

// FindDifficulty 按玩法和难度名查找难度元数据
func (info *Info) FindDifficulty(characteristic, difficulty string) (DifficultyBeatmap, bool) {
	for _, set := range info.DifficultySets {
		if set.Characteristic != characteristic {
			continue
		}
		for _, d := range set.Difficulties {
			if d.Difficulty == difficulty {
				return d, true
			}
		}
	}
	return DifficultyBeatmap{}, false
}

// DifficultyNames 返回指定玩法下的难度名，按 Info.dat 中的顺序
func (info *Info) DifficultyNames(characteristic string) []string {
	var names []string
	for _, set := range info.DifficultySets {
		if set.Characteristic != characteristic {
			continue
		}
		for _, d := range set.Difficulties {
			names = append(names, d.Difficulty)
		}
	}
	return names
}
