package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultChainLinkPoolSize 链节对象池的默认容量
// 等于同时可见链节数量的上限
const DefaultChainLinkPoolSize = 60

// PreviewerConfig 谱面预览器配置
type PreviewerConfig struct {
	Grid      GridConfig      `yaml:"grid"`      // 网格 → 世界坐标换算
	Spawn     SpawnConfig     `yaml:"spawn"`     // 生成窗口
	Animation AnimationConfig `yaml:"animation"` // 物件入场动画

	ChainLinkPoolSize     int  `yaml:"chainLinkPoolSize"`     // 链节对象池容量
	UseSimpleNoteMaterial bool `yaml:"useSimpleNoteMaterial"` // 使用简化材质
	Debug                 bool `yaml:"debug"`                 // 调试模式：对象池耗尽时直接 panic
}

// GridConfig 网格坐标换算常量
// 世界坐标 = BottomLeft + (x·LaneWidth, y·RowHeight)
type GridConfig struct {
	LaneWidth  float64     `yaml:"laneWidth"`  // 每列宽度（世界单位）
	RowHeight  float64     `yaml:"rowHeight"`  // 每行高度（世界单位）
	BottomLeft PointConfig `yaml:"bottomLeft"` // 网格左下角（第 0 列第 0 行）的世界坐标
}

// PointConfig 二维坐标
type PointConfig struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// SpawnConfig 生成窗口配置
type SpawnConfig struct {
	BehindCameraTime float64 `yaml:"behindCameraTime"` // 物件越过玩家后继续保留的时间（秒）
	PlayerZ          float64 `yaml:"playerZ"`          // 玩家所在的 Z 坐标
}

// AnimationConfig 物件入场动画配置
type AnimationConfig struct {
	MovementAnimation     bool    `yaml:"movementAnimation"`     // 是否从地面升起
	MovementAnimationTime float64 `yaml:"movementAnimationTime"` // 升起动画占反应时间的比例
	ObjectFloorOffset     float64 `yaml:"objectFloorOffset"`     // 升起动画的起始 Y 偏移
	RotationAnimation     bool    `yaml:"rotationAnimation"`     // 是否旋转落位
	RotationAnimationTime float64 `yaml:"rotationAnimationTime"` // 旋转动画占反应时间的比例
}

// DefaultPreviewerConfig 返回默认配置
func DefaultPreviewerConfig() *PreviewerConfig {
	return &PreviewerConfig{
		Grid: GridConfig{
			LaneWidth:  0.6,
			RowHeight:  0.55,
			BottomLeft: PointConfig{X: -0.9, Y: 0},
		},
		Spawn: SpawnConfig{
			BehindCameraTime: 0.5,
			PlayerZ:          0,
		},
		Animation: AnimationConfig{
			MovementAnimation:     true,
			MovementAnimationTime: 0.5,
			ObjectFloorOffset:     -0.5,
			RotationAnimation:     true,
			RotationAnimationTime: 0.2,
		},
		ChainLinkPoolSize:     DefaultChainLinkPoolSize,
		UseSimpleNoteMaterial: false,
		Debug:                 false,
	}
}

// LoadPreviewerConfig 从 YAML 文件加载预览器配置
// 文件中缺省的字段使用 DefaultPreviewerConfig 的值
func LoadPreviewerConfig(filePath string) (*PreviewerConfig, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read previewer config file: %w", err)
	}
	return ParsePreviewerConfig(data)
}

// ParsePreviewerConfig 从 YAML 数据解析预览器配置
func ParsePreviewerConfig(data []byte) (*PreviewerConfig, error) {
	config := DefaultPreviewerConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse previewer config YAML: %w", err)
	}

	if err := validatePreviewerConfig(config); err != nil {
		return nil, fmt.Errorf("invalid previewer config: %w", err)
	}

	return config, nil
}

// validatePreviewerConfig 验证配置的有效性
func validatePreviewerConfig(config *PreviewerConfig) error {
	if config.Grid.LaneWidth <= 0 {
		return fmt.Errorf("grid.laneWidth must be > 0, got %v", config.Grid.LaneWidth)
	}
	if config.Grid.RowHeight <= 0 {
		return fmt.Errorf("grid.rowHeight must be > 0, got %v", config.Grid.RowHeight)
	}

	if config.Spawn.BehindCameraTime < 0 {
		return fmt.Errorf("spawn.behindCameraTime must be >= 0, got %v", config.Spawn.BehindCameraTime)
	}

	if config.Animation.RotationAnimationTime < 0 || config.Animation.RotationAnimationTime > 1 {
		return fmt.Errorf("animation.rotationAnimationTime must be between 0 and 1, got %v", config.Animation.RotationAnimationTime)
	}
	if config.Animation.MovementAnimationTime < 0 || config.Animation.MovementAnimationTime > 1 {
		return fmt.Errorf("animation.movementAnimationTime must be between 0 and 1, got %v", config.Animation.MovementAnimationTime)
	}

	if config.ChainLinkPoolSize < 1 {
		return fmt.Errorf("chainLinkPoolSize must be >= 1, got %d", config.ChainLinkPoolSize)
	}

	return nil
}
