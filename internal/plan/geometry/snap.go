package geometry

import (
	"math"

	"floormap/internal/plan/models"
)

// ============================================================
// Grid snapping
// ============================================================

// GridSize — шаг сетки редактора в пикселях канвы.
const GridSize = 20.0

// SnapToGrid округляет значение до ближайшего кратного шага сетки.
func SnapToGrid(value, grid float64) float64 {
	if grid <= 0 {
		return value
	}
	return math.Round(value/grid) * grid
}

// SnappedPoint снапит to к сетке; при зажатом axis lock схлопывает
// точку на горизонталь или вертикаль от from — выбирается ось с
// большей дельтой, сегмент получается строго горизонтальным или
// вертикальным.
func SnappedPoint(from, to models.Point, axisLock bool, grid float64) models.Point {
	p := models.Point{
		X: SnapToGrid(to.X, grid),
		Y: SnapToGrid(to.Y, grid),
	}

	if !axisLock {
		return p
	}

	if math.Abs(p.X-from.X) >= math.Abs(p.Y-from.Y) {
		p.Y = from.Y
	} else {
		p.X = from.X
	}
	return p
}

// ============================================================
// Bounds
// ============================================================

// BoundsOf возвращает минимум и максимум по списку точек.
func BoundsOf(points []models.Point) (models.Point, models.Point) {
	if len(points) == 0 {
		return models.Point{}, models.Point{}
	}

	min := points[0]
	max := points[0]
	for _, p := range points[1:] {
		if p.X < min.X {
			min.X = p.X
		}
		if p.Y < min.Y {
			min.Y = p.Y
		}
		if p.X > max.X {
			max.X = p.X
		}
		if p.Y > max.Y {
			max.Y = p.Y
		}
	}
	return min, max
}

func Distance(a, b models.Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}
