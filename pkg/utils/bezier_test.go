package utils

import (
	"math"
	"testing"
)

func vecNear(a, b Vec2) bool {
	return math.Abs(a.X-b.X) < 1e-9 && math.Abs(a.Y-b.Y) < 1e-9
}

// TestQuadBezierPointEndpoints 测试曲线端点
func TestQuadBezierPointEndpoints(t *testing.T) {
	p0 := Vec2{X: 0, Y: 0}
	p1 := Vec2{X: 0, Y: 2}
	p2 := Vec2{X: 2, Y: 2}

	if got := QuadBezierPoint(p0, p1, p2, 0); !vecNear(got, p0) {
		t.Errorf("B(0) = %v, want %v", got, p0)
	}
	if got := QuadBezierPoint(p0, p1, p2, 1); !vecNear(got, p2) {
		t.Errorf("B(1) = %v, want %v", got, p2)
	}
	// B(0.5) = 0.25·p0 + 0.5·p1 + 0.25·p2 = (0.5, 1.5)
	if got := QuadBezierPoint(p0, p1, p2, 0.5); !vecNear(got, Vec2{X: 0.5, Y: 1.5}) {
		t.Errorf("B(0.5) = %v, want (0.5, 1.5)", got)
	}
}

// TestQuadBezierAngle 测试切线朝向
func TestQuadBezierAngle(t *testing.T) {
	p0 := Vec2{X: 0, Y: 0}
	p1 := Vec2{X: 0, Y: 2}
	p2 := Vec2{X: 2, Y: 2}

	// t=0 切线朝 +Y：atan2(1,0)=90°，加 90° 得 180°
	if got := QuadBezierAngle(p0, p1, p2, 0); math.Abs(got-180) > 1e-9 {
		t.Errorf("angle(0) = %v, want 180", got)
	}
	// t=1 切线朝 +X：atan2(0,1)=0°，加 90° 得 90°
	if got := QuadBezierAngle(p0, p1, p2, 1); math.Abs(got-90) > 1e-9 {
		t.Errorf("angle(1) = %v, want 90", got)
	}
	// 退化曲线：切线为零向量
	if got := QuadBezierAngle(p0, p0, p0, 0.5); math.Abs(got-90) > 1e-9 {
		t.Errorf("degenerate angle = %v, want 90", got)
	}
}

// TestNormalizeAngle 测试角度归一化范围 (-180, 180]
func TestNormalizeAngle(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{"零", 0, 0},
		{"180 保持", 180, 180},
		{"-180 折叠为 180", -180, 180},
		{"270", 270, -90},
		{"-270", -270, 90},
		{"540", 540, 180},
		{"-90", -90, -90},
		{"359", 359, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeAngle(tt.input)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("NormalizeAngle(%v) = %v, want %v", tt.input, got, tt.expected)
			}
			if got <= -180 || got > 180 {
				t.Errorf("NormalizeAngle(%v) = %v 超出 (-180, 180]", tt.input, got)
			}
		})
	}
}

// TestDistance 测试两点距离
func TestDistance(t *testing.T) {
	if d := Distance(Vec2{X: 0, Y: 0}, Vec2{X: 3, Y: 4}); math.Abs(d-5) > 1e-9 {
		t.Errorf("Distance = %v, want 5", d)
	}
}
