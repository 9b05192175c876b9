package types

import "testing"

// TestCutDirectionClamp 测试方向值的限制逻辑
func TestCutDirectionClamp(t *testing.T) {
	tests := []struct {
		name     string
		input    CutDirection
		expected CutDirection
	}{
		{"上", 0, CutUp},
		{"右下", 7, CutDownRight},
		{"任意方向", 8, CutAny},
		{"超出上限", 9, CutAny},
		{"映射扩展大值", 1000, CutAny},
		{"负数", -1, CutAny},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.input.Clamp(); got != tt.expected {
				t.Errorf("CutDirection(%d).Clamp() = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

// TestNoteColorString 测试颜色字符串
func TestNoteColorString(t *testing.T) {
	if ColorRed.String() != "Red" {
		t.Errorf("ColorRed.String() = %q, want Red", ColorRed.String())
	}
	if ColorBlue.String() != "Blue" {
		t.Errorf("ColorBlue.String() = %q, want Blue", ColorBlue.String())
	}
	if !ColorRed.IsRed() || ColorBlue.IsRed() {
		t.Error("IsRed() returned wrong result")
	}
}
