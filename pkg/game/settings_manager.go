package game

import (
	"fmt"
	"log"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

// PreviewSettings 预览器用户设置
type PreviewSettings struct {
	// 音频设置
	MusicVolume    float64 `yaml:"musicVolume"`    // 音乐音量 0.0 ~ 1.0
	HitsoundVolume float64 `yaml:"hitsoundVolume"` // 打击音总音量 0.0 ~ 1.0
	ChainVolume    float64 `yaml:"chainVolume"`    // 链节打击音音量 0.0 ~ 1.0

	// 画面设置
	UseSimpleNoteMaterial bool `yaml:"useSimpleNoteMaterial"` // 使用简化材质
}

// 默认音量
const (
	defaultMusicVolume    = 0.7
	defaultHitsoundVolume = 0.5
	defaultChainVolume    = 0.8
)

// DefaultSettings 返回默认设置
func DefaultSettings() *PreviewSettings {
	return &PreviewSettings{
		MusicVolume:           defaultMusicVolume,
		HitsoundVolume:        defaultHitsoundVolume,
		ChainVolume:           defaultChainVolume,
		UseSimpleNoteMaterial: false,
	}
}

// SettingsManager 设置管理器
// 负责预览器设置的加载、保存和内存管理
type SettingsManager struct {
	gdataManager *gdata.Manager   // gdata 跨平台存储管理器，可为 nil（降级模式）
	settings     *PreviewSettings // 当前设置
}

// 存储路径常量
const (
	settingsObject   = "settings"
	settingsProperty = "preview"
)

// NewSettingsManager 创建新的设置管理器实例
//
// 参数：
//   - gdataManager: gdata 跨平台存储管理器，可为 nil（降级模式，仅内存设置）
//
// 返回：
//   - *SettingsManager: 设置管理器实例
//   - error: 保留给调用方的错误返回，加载失败不影响创建
func NewSettingsManager(gdataManager *gdata.Manager) (*SettingsManager, error) {
	sm := &SettingsManager{
		gdataManager: gdataManager,
		settings:     DefaultSettings(),
	}

	if err := sm.Load(); err != nil {
		// 加载失败不是致命错误，使用默认设置
		log.Printf("[SettingsManager] Warning: Failed to load settings: %v (using defaults)", err)
	}

	return sm, nil
}

// Load 从 gdata 加载设置
//
// 如果 gdataManager 为 nil 或文件不存在，使用默认设置
func (sm *SettingsManager) Load() error {
	if sm.gdataManager == nil {
		sm.settings = DefaultSettings()
		return nil
	}

	if !sm.gdataManager.ObjectPropExists(settingsObject, settingsProperty) {
		sm.settings = DefaultSettings()
		return nil
	}

	data, err := sm.gdataManager.LoadObjectProp(settingsObject, settingsProperty)
	if err != nil {
		sm.settings = DefaultSettings()
		return fmt.Errorf("failed to load settings: %w", err)
	}

	// 在默认值之上反序列化，旧版本存档缺少的字段保持默认
	loaded := DefaultSettings()
	if err := yaml.Unmarshal(data, loaded); err != nil {
		sm.settings = DefaultSettings()
		return fmt.Errorf("failed to unmarshal settings: %w", err)
	}

	loaded.MusicVolume = clampVolume(loaded.MusicVolume)
	loaded.HitsoundVolume = clampVolume(loaded.HitsoundVolume)
	loaded.ChainVolume = clampVolume(loaded.ChainVolume)

	sm.settings = loaded
	log.Printf("[SettingsManager] Settings loaded successfully")
	return nil
}

// Save 保存设置到 gdata
//
// 如果 gdataManager 为 nil，返回 nil（降级模式，不报错）
func (sm *SettingsManager) Save() error {
	if sm.gdataManager == nil {
		return nil
	}

	data, err := yaml.Marshal(sm.settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := sm.gdataManager.SaveObjectProp(settingsObject, settingsProperty, data); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	log.Printf("[SettingsManager] Settings saved successfully")
	return nil
}

// GetSettings 获取当前设置
func (sm *SettingsManager) GetSettings() *PreviewSettings {
	return sm.settings
}

// HitsoundVolume 打击音总音量
func (sm *SettingsManager) HitsoundVolume() float64 {
	return sm.settings.HitsoundVolume
}

// ChainVolume 链节打击音音量
func (sm *SettingsManager) ChainVolume() float64 {
	return sm.settings.ChainVolume
}

// SetMusicVolume 设置音乐音量
//
// 音量值会被限制在 0.0 ~ 1.0 范围内
// 注意：仅修改内存中的设置，需调用 Save() 方法持久化
func (sm *SettingsManager) SetMusicVolume(volume float64) {
	sm.settings.MusicVolume = clampVolume(volume)
}

// SetHitsoundVolume 设置打击音总音量
//
// 音量值会被限制在 0.0 ~ 1.0 范围内
// 注意：仅修改内存中的设置，需调用 Save() 方法持久化
func (sm *SettingsManager) SetHitsoundVolume(volume float64) {
	sm.settings.HitsoundVolume = clampVolume(volume)
}

// SetChainVolume 设置链节打击音音量
//
// 音量值会被限制在 0.0 ~ 1.0 范围内
// 注意：仅修改内存中的设置，需调用 Save() 方法持久化
func (sm *SettingsManager) SetChainVolume(volume float64) {
	sm.settings.ChainVolume = clampVolume(volume)
}

// SetUseSimpleNoteMaterial 设置是否使用简化材质
func (sm *SettingsManager) SetUseSimpleNoteMaterial(enabled bool) {
	sm.settings.UseSimpleNoteMaterial = enabled
}

// clampVolume 将音量值限制在 0.0 ~ 1.0 范围内
func clampVolume(volume float64) float64 {
	if volume < 0.0 {
		return 0.0
	}
	if volume > 1.0 {
		return 1.0
	}
	return volume
}
