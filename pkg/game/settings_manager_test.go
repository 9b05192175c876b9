package game

import (
	"os"
	"testing"

	"github.com/quasilyte/gdata/v2"
)

// TestDefaultSettings 测试 DefaultSettings() 返回正确的默认值
func TestDefaultSettings(t *testing.T) {
	settings := DefaultSettings()

	if settings == nil {
		t.Fatal("DefaultSettings() returned nil")
	}
	if settings.MusicVolume != 0.7 {
		t.Errorf("MusicVolume: got %v, want 0.7", settings.MusicVolume)
	}
	if settings.HitsoundVolume != 0.5 {
		t.Errorf("HitsoundVolume: got %v, want 0.5", settings.HitsoundVolume)
	}
	if settings.ChainVolume != 0.8 {
		t.Errorf("ChainVolume: got %v, want 0.8", settings.ChainVolume)
	}
	if settings.UseSimpleNoteMaterial {
		t.Error("UseSimpleNoteMaterial: got true, want false")
	}
}

// TestNewSettingsManagerNilGdata 测试 gdataManager 为 nil 时的降级场景
func TestNewSettingsManagerNilGdata(t *testing.T) {
	sm, err := NewSettingsManager(nil)
	if err != nil {
		t.Fatalf("NewSettingsManager(nil) error: %v", err)
	}
	if sm == nil {
		t.Fatal("NewSettingsManager(nil) returned nil")
	}

	if sm.HitsoundVolume() != 0.5 || sm.ChainVolume() != 0.8 {
		t.Errorf("Degraded mode volumes: got %v / %v", sm.HitsoundVolume(), sm.ChainVolume())
	}

	// 降级模式下保存不报错
	if err := sm.Save(); err != nil {
		t.Errorf("Save() in degraded mode: %v", err)
	}
}

// TestSettingsLoadSave 测试 Load() 和 Save() 功能
func TestSettingsLoadSave(t *testing.T) {
	// 使用临时目录创建 gdata manager
	tempDir := t.TempDir()
	originalHome := os.Getenv("HOME")
	os.Setenv("HOME", tempDir)
	defer os.Setenv("HOME", originalHome)

	gdataManager, err := gdata.Open(gdata.Config{
		AppName: "test_preview_settings",
	})
	if err != nil {
		t.Fatalf("Failed to create gdata manager: %v", err)
	}

	sm1, err := NewSettingsManager(gdataManager)
	if err != nil {
		t.Fatalf("NewSettingsManager() error: %v", err)
	}

	sm1.SetMusicVolume(0.3)
	sm1.SetHitsoundVolume(0.25)
	sm1.SetChainVolume(0)
	sm1.SetUseSimpleNoteMaterial(true)

	if err := sm1.Save(); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	sm2, err := NewSettingsManager(gdataManager)
	if err != nil {
		t.Fatalf("NewSettingsManager() error on reload: %v", err)
	}

	settings := sm2.GetSettings()
	if settings.MusicVolume != 0.3 {
		t.Errorf("Loaded MusicVolume: got %v, want 0.3", settings.MusicVolume)
	}
	if settings.HitsoundVolume != 0.25 {
		t.Errorf("Loaded HitsoundVolume: got %v, want 0.25", settings.HitsoundVolume)
	}
	if settings.ChainVolume != 0 {
		t.Errorf("Loaded ChainVolume: got %v, want 0", settings.ChainVolume)
	}
	if !settings.UseSimpleNoteMaterial {
		t.Error("Loaded UseSimpleNoteMaterial: got false, want true")
	}
}

// TestSetVolumeClamp 测试音量范围校验
func TestSetVolumeClamp(t *testing.T) {
	sm, _ := NewSettingsManager(nil)

	tests := []struct {
		input    float64
		expected float64
	}{
		{0.5, 0.5},  // 正常值
		{0.0, 0.0},  // 下限
		{1.0, 1.0},  // 上限
		{-0.5, 0.0}, // 低于下限
		{1.5, 1.0},  // 高于上限
	}

	for _, tt := range tests {
		sm.SetHitsoundVolume(tt.input)
		if sm.HitsoundVolume() != tt.expected {
			t.Errorf("SetHitsoundVolume(%v): got %v, want %v", tt.input, sm.HitsoundVolume(), tt.expected)
		}
		sm.SetChainVolume(tt.input)
		if sm.ChainVolume() != tt.expected {
			t.Errorf("SetChainVolume(%v): got %v, want %v", tt.input, sm.ChainVolume(), tt.expected)
		}
		sm.SetMusicVolume(tt.input)
		if sm.GetSettings().MusicVolume != tt.expected {
			t.Errorf("SetMusicVolume(%v): got %v, want %v", tt.input, sm.GetSettings().MusicVolume, tt.expected)
		}
	}
}
