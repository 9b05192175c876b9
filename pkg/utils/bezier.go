package utils

import "math"

// 二次贝塞尔曲线工具
//
// 曲线由起点 p0、控制点 p1、终点 p2 定义：
//
//	B(t)  = (1-t)²·p0 + 2(1-t)t·p1 + t²·p2
//	B'(t) = 2(1-t)·(p1-p0) + 2t·(p2-p1)

// QuadBezierPoint 返回二次贝塞尔曲线在参数 t 处的点
func QuadBezierPoint(p0, p1, p2 Vec2, t float64) Vec2 {
	u := 1 - t
	return p0.Scale(u * u).Add(p1.Scale(2 * u * t)).Add(p2.Scale(t * t))
}

// QuadBezierDerivative 返回二次贝塞尔曲线在参数 t 处的切线向量
func QuadBezierDerivative(p0, p1, p2 Vec2, t float64) Vec2 {
	return p1.Sub(p0).Scale(2 * (1 - t)).Add(p2.Sub(p1).Scale(2 * t))
}

// QuadBezierAngle 返回曲线在 t 处的朝向角（度）
//
// 0° 对应切线朝上（+Y），因此在 atan2 结果上加 90°。
// 返回值未归一化，调用方按需使用 NormalizeAngle。
func QuadBezierAngle(p0, p1, p2 Vec2, t float64) float64 {
	d := QuadBezierDerivative(p0, p1, p2, t)
	return 90 + math.Atan2(d.Y, d.X)*180/math.Pi
}

// NormalizeAngle 将角度归一化到 (-180, 180]
//
// 保证物件总是沿最短路径旋转到目标角度。
func NormalizeAngle(deg float64) float64 {
	a := math.Mod(deg, 360)
	if a > 180 {
		a -= 360
	} else if a <= -180 {
		a += 360
	}
	return a
}
