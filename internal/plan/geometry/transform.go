package geometry

import (
	"math"

	"floormap/internal/plan/models"
)

// ============================================================
// Affine transform
// ============================================================

// Matrix — аффинная матрица 2x3: [a c e; b d f].
type Matrix struct {
	A, B, C, D, E, F float64
}

func Identity() Matrix {
	return Matrix{A: 1, D: 1}
}

// ShapeMatrix собирает матрицу фигуры в порядке
// translate → rotate → skew → scale (порядок retained-mode канвы).
func ShapeMatrix(x, y float64, t models.Transform) Matrix {
	rad := t.Rotation * math.Pi / 180
	sin := math.Sin(rad)
	cos := math.Cos(rad)

	m := Matrix{
		A: cos,
		B: sin,
		C: -sin,
		D: cos,
		E: x,
		F: y,
	}

	if t.SkewX != 0 || t.SkewY != 0 {
		m = m.Mul(Matrix{A: 1, B: math.Tan(t.SkewY), C: math.Tan(t.SkewX), D: 1})
	}

	sx, sy := t.ScaleX, t.ScaleY
	if sx == 0 && sy == 0 {
		sx, sy = 1, 1
	}
	m = m.Mul(Matrix{A: sx, D: sy})
	return m
}

// Mul — композиция: сначала применяется o, затем m.
func (m Matrix) Mul(o Matrix) Matrix {
	return Matrix{
		A: m.A*o.A + m.C*o.B,
		B: m.B*o.A + m.D*o.B,
		C: m.A*o.C + m.C*o.D,
		D: m.B*o.C + m.D*o.D,
		E: m.A*o.E + m.C*o.F + m.E,
		F: m.B*o.E + m.D*o.F + m.F,
	}
}

func (m Matrix) Apply(p models.Point) models.Point {
	return models.Point{
		X: m.A*p.X + m.C*p.Y + m.E,
		Y: m.B*p.X + m.D*p.Y + m.F,
	}
}

// Invert возвращает обратную матрицу; ok=false при вырожденной.
func (m Matrix) Invert() (Matrix, bool) {
	det := m.A*m.D - m.B*m.C
	if det == 0 {
		return Matrix{}, false
	}

	inv := Matrix{
		A: m.D / det,
		B: -m.B / det,
		C: -m.C / det,
		D: m.A / det,
	}
	inv.E = -(inv.A*m.E + inv.C*m.F)
	inv.F = -(inv.B*m.E + inv.D*m.F)
	return inv, true
}
