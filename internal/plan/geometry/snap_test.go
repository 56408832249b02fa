package geometry

import (
	"testing"

	"floormap/internal/plan/models"
)

func TestSnapToGridIdempotent(t *testing.T) {
	values := []float64{0, 3, 10, 17.3, -42.9, 1999.5}
	for _, v := range values {
		once := SnapToGrid(v, GridSize)
		twice := SnapToGrid(once, GridSize)
		if once != twice {
			t.Fatalf("snap not idempotent for %v: %v != %v", v, once, twice)
		}
	}
}

func TestSnapToGridRounding(t *testing.T) {
	if got := SnapToGrid(29, 20); got != 20 {
		t.Fatalf("expected 20, got %v", got)
	}
	if got := SnapToGrid(31, 20); got != 40 {
		t.Fatalf("expected 40, got %v", got)
	}
	if got := SnapToGrid(15, 0); got != 15 {
		t.Fatalf("zero grid must be a no-op, got %v", got)
	}
}

func TestSnappedPointAxisLockHorizontalDominance(t *testing.T) {
	from := models.Point{X: 100, Y: 100}
	to := models.Point{X: 140, Y: 108}

	got := SnappedPoint(from, to, true, 20)
	if got.Y != from.Y {
		t.Fatalf("expected horizontal collapse (y=%v), got y=%v", from.Y, got.Y)
	}
	if got.X != 140 {
		t.Fatalf("expected x snapped to 140, got %v", got.X)
	}
}

func TestSnappedPointAxisLockVerticalDominance(t *testing.T) {
	from := models.Point{X: 100, Y: 100}
	to := models.Point{X: 108, Y: 160}

	got := SnappedPoint(from, to, true, 20)
	if got.X != from.X {
		t.Fatalf("expected vertical collapse (x=%v), got x=%v", from.X, got.X)
	}
	if got.Y != 160 {
		t.Fatalf("expected y snapped to 160, got %v", got.Y)
	}
}

func TestSnappedPointNoLock(t *testing.T) {
	got := SnappedPoint(models.Point{}, models.Point{X: 33, Y: 47}, false, 20)
	if got.X != 40 || got.Y != 40 {
		t.Fatalf("expected (40,40), got (%v,%v)", got.X, got.Y)
	}
}

func TestShapeContainsRect(t *testing.T) {
	rect := &models.RectShape{BoxGeometry: models.BoxGeometry{
		ID: "r1", X: 100, Y: 100, Width: 60, Height: 40,
		Transform: models.IdentityTransform(),
	}}

	if !ShapeContains(rect, models.Point{X: 130, Y: 120}) {
		t.Fatalf("point inside rect not detected")
	}
	if ShapeContains(rect, models.Point{X: 90, Y: 120}) {
		t.Fatalf("point left of rect reported inside")
	}
}

func TestShapeContainsRectNegativeSize(t *testing.T) {
	// Drag справа налево: ширина и высота отрицательные.
	rect := &models.RectShape{BoxGeometry: models.BoxGeometry{
		ID: "r2", X: 200, Y: 200, Width: -60, Height: -40,
		Transform: models.IdentityTransform(),
	}}

	if !ShapeContains(rect, models.Point{X: 170, Y: 180}) {
		t.Fatalf("point inside negative-size rect not detected")
	}
}

func TestShapeContainsRotatedRect(t *testing.T) {
	rect := &models.RectShape{BoxGeometry: models.BoxGeometry{
		ID: "r3", X: 0, Y: 0, Width: 100, Height: 10,
		Transform: models.Transform{Rotation: 90, ScaleX: 1, ScaleY: 1},
	}}

	// После поворота на 90° вокруг (0,0) прямоугольник лежит вдоль Y.
	if !ShapeContains(rect, models.Point{X: -5, Y: 50}) {
		t.Fatalf("rotated rect hit not detected")
	}
	if ShapeContains(rect, models.Point{X: 50, Y: 5}) {
		t.Fatalf("unrotated position should miss")
	}
}

func TestShapeContainsCircle(t *testing.T) {
	circle := &models.CircleShape{BoxGeometry: models.BoxGeometry{
		ID: "c1", X: 0, Y: 0, Width: 100, Height: 100,
		Transform: models.IdentityTransform(),
	}}

	if !ShapeContains(circle, models.Point{X: 50, Y: 50}) {
		t.Fatalf("center of circle not detected")
	}
	// Угол bounding box вне эллипса.
	if ShapeContains(circle, models.Point{X: 2, Y: 2}) {
		t.Fatalf("bounding-box corner should be outside the ellipse")
	}
}

func TestShapeContainsPolygon(t *testing.T) {
	poly := &models.PolygonShape{
		ID: "p1", X: 100, Y: 100,
		Points: []models.Point{
			{X: 0, Y: 0}, {X: 80, Y: 0}, {X: 40, Y: 60},
		},
		Transform: models.IdentityTransform(),
	}

	if !ShapeContains(poly, models.Point{X: 140, Y: 120}) {
		t.Fatalf("point inside triangle polygon not detected")
	}
	if ShapeContains(poly, models.Point{X: 105, Y: 155}) {
		t.Fatalf("point outside polygon reported inside")
	}
}

func TestShapeContainsPolyline(t *testing.T) {
	line := &models.PolylineShape{
		ID:          "l1",
		Points:      []float64{0, 0, 100, 0},
		Transform:   models.IdentityTransform(),
		StrokeWidth: 3,
	}

	if !ShapeContains(line, models.Point{X: 50, Y: 2}) {
		t.Fatalf("point near polyline not detected")
	}
	if ShapeContains(line, models.Point{X: 50, Y: 30}) {
		t.Fatalf("point far from polyline reported as hit")
	}
}

func TestBoundsOf(t *testing.T) {
	min, max := BoundsOf([]models.Point{
		{X: 40, Y: 80}, {X: 20, Y: 120}, {X: 60, Y: 100},
	})
	if min.X != 20 || min.Y != 80 {
		t.Fatalf("unexpected min (%v,%v)", min.X, min.Y)
	}
	if max.X != 60 || max.Y != 120 {
		t.Fatalf("unexpected max (%v,%v)", max.X, max.Y)
	}
}
