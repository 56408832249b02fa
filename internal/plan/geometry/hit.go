package geometry

import (
	"math"

	"floormap/internal/plan/models"
)

// ============================================================
// Hit testing
// ============================================================

// Ширина нажимаемой области вокруг линий (ломаные, стрелки).
const strokeHitSlop = 4.0

// ShapeContains проверяет попадание точки сцены в фигуру с учетом её
// трансформации: точка переводится в локальные координаты обратной
// матрицей, дальше тест идёт по локальной геометрии.
func ShapeContains(shape models.Shape, p models.Point) bool {
	switch s := shape.(type) {
	case *models.RectShape:
		return boxContains(localPoint(s.X, s.Y, s.Transform, p), s.Width, s.Height)
	case *models.CircleShape:
		return ellipseContains(localPoint(s.X, s.Y, s.Transform, p), s.Width, s.Height)
	case *models.TriangleShape:
		lp := localPoint(s.X, s.Y, s.Transform, p)
		return pointInPolygon(lp, TrianglePoints(s.Width, s.Height))
	case *models.ArrowShape:
		lp := localPoint(s.X, s.Y, s.Transform, p)
		return segmentContains(lp, models.Point{}, models.Point{X: s.Width, Y: s.Height}, strokeHitSlop)
	case *models.PolylineShape:
		return polylineContains(s, p)
	case *models.PolygonShape:
		return pointInPolygon(localPoint(s.X, s.Y, s.Transform, p), s.Points)
	case *models.TextShape:
		lp := localPoint(s.X, s.Y, s.Transform, p)
		w, h := textBounds(s.Text, s.FontSize)
		return boxContains(lp, w, h)
	}
	return false
}

// TrianglePoints — вершины локального треугольника для знакового
// размера w×h: вершина сверху по центру, основание снизу.
func TrianglePoints(w, h float64) []models.Point {
	return []models.Point{
		{X: w / 2, Y: 0},
		{X: w, Y: h},
		{X: 0, Y: h},
	}
}

// TextBounds — приближённый bounding box текста; точной метрики
// шрифта на этом уровне нет.
func textBounds(text string, fontSize float64) (float64, float64) {
	if fontSize <= 0 {
		fontSize = 16
	}
	return float64(len([]rune(text))) * fontSize * 0.6, fontSize * 1.2
}

func localPoint(x, y float64, t models.Transform, p models.Point) models.Point {
	inv, ok := ShapeMatrix(x, y, t).Invert()
	if !ok {
		return models.Point{X: math.Inf(1), Y: math.Inf(1)}
	}
	return inv.Apply(p)
}

// boxContains — локальный прямоугольник со знаковым размером.
func boxContains(p models.Point, w, h float64) bool {
	x0, x1 := math.Min(0, w), math.Max(0, w)
	y0, y1 := math.Min(0, h), math.Max(0, h)
	return p.X >= x0 && p.X <= x1 && p.Y >= y0 && p.Y <= y1
}

// ellipseContains — эллипс, вписанный в локальный bounding box w×h.
func ellipseContains(p models.Point, w, h float64) bool {
	rx := math.Abs(w) / 2
	ry := math.Abs(h) / 2
	if rx == 0 || ry == 0 {
		return false
	}
	cx := w / 2
	cy := h / 2
	dx := (p.X - cx) / rx
	dy := (p.Y - cy) / ry
	return dx*dx+dy*dy <= 1
}

// pointInPolygon — ray casting.
func pointInPolygon(p models.Point, poly []models.Point) bool {
	if len(poly) < 3 {
		return false
	}

	inside := false
	j := len(poly) - 1
	for i := 0; i < len(poly); i++ {
		pi, pj := poly[i], poly[j]
		if (pi.Y > p.Y) != (pj.Y > p.Y) &&
			p.X < (pj.X-pi.X)*(p.Y-pi.Y)/(pj.Y-pi.Y)+pi.X {
			inside = !inside
		}
		j = i
	}
	return inside
}

func polylineContains(s *models.PolylineShape, p models.Point) bool {
	if len(s.Points) < 4 {
		return false
	}

	lp := localPoint(0, 0, s.Transform, p)
	slop := strokeHitSlop + s.StrokeWidth/2

	for i := 0; i+3 < len(s.Points); i += 2 {
		a := models.Point{X: s.Points[i], Y: s.Points[i+1]}
		b := models.Point{X: s.Points[i+2], Y: s.Points[i+3]}
		if segmentContains(lp, a, b, slop) {
			return true
		}
	}
	return false
}

// segmentContains — расстояние от точки до отрезка в пределах slop.
func segmentContains(p, a, b models.Point, slop float64) bool {
	dx := b.X - a.X
	dy := b.Y - a.Y
	lenSq := dx*dx + dy*dy

	var t float64
	if lenSq > 0 {
		t = ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
		t = math.Max(0, math.Min(1, t))
	}

	proj := models.Point{X: a.X + t*dx, Y: a.Y + t*dy}
	return Distance(p, proj) <= slop
}
