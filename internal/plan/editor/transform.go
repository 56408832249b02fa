package editor

import (
	"fmt"
	"math"

	"floormap/internal/plan/geometry"
	"floormap/internal/plan/models"
)

// ============================================================
// Transform commit
// ============================================================

// TransformEnd — состояние группы фигуры в момент окончания жеста
// resize/rotate.
type TransformEnd struct {
	X        float64
	Y        float64
	Rotation float64
	ScaleX   float64
	ScaleY   float64
	SkewX    float64
	SkewY    float64
}

// CommitTransform фиксирует жест трансформации. У box-фигур эффект
// масштаба запекается в width/height, а scale сбрасывается в 1 — иначе
// следующий жест множил бы масштаб на уже применённый. Ломаная и
// стрелка запекать некуда, масштаб хранится как есть.
func (e *Editor) CommitTransform(shapeID string, end TransformEnd) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	shape, ok := e.findShapeLocked(shapeID)
	if !ok {
		return fmt.Errorf("shape %s not found", shapeID)
	}

	switch s := shape.(type) {
	case *models.RectShape:
		bakeBox(&s.BoxGeometry, end)
	case *models.CircleShape:
		bakeBox(&s.BoxGeometry, end)
	case *models.TriangleShape:
		bakeBox(&s.BoxGeometry, end)
	case *models.ArrowShape:
		s.X = geometry.SnapToGrid(end.X, geometry.GridSize)
		s.Y = geometry.SnapToGrid(end.Y, geometry.GridSize)
		s.Transform = transformOf(end)
	case *models.PolylineShape:
		s.Transform = transformOf(end)
	case *models.PolygonShape:
		s.X = geometry.SnapToGrid(end.X, geometry.GridSize)
		s.Y = geometry.SnapToGrid(end.Y, geometry.GridSize)
		s.Transform = transformOf(end)
	case *models.TextShape:
		s.X = geometry.SnapToGrid(end.X, geometry.GridSize)
		s.Y = geometry.SnapToGrid(end.Y, geometry.GridSize)
		s.Transform = transformOf(end)
	}
	return nil
}

func bakeBox(b *models.BoxGeometry, end TransformEnd) {
	b.X = geometry.SnapToGrid(end.X, geometry.GridSize)
	b.Y = geometry.SnapToGrid(end.Y, geometry.GridSize)
	b.Width = math.Max(MinShapeSize, math.Round(b.Width*end.ScaleX))
	b.Height = math.Max(MinShapeSize, math.Round(b.Height*end.ScaleY))
	b.Rotation = end.Rotation
	b.SkewX = end.SkewX
	b.SkewY = end.SkewY
	b.ScaleX = 1
	b.ScaleY = 1
}

func transformOf(end TransformEnd) models.Transform {
	return models.Transform{
		Rotation: end.Rotation,
		ScaleX:   end.ScaleX,
		ScaleY:   end.ScaleY,
		SkewX:    end.SkewX,
		SkewY:    end.SkewY,
	}
}

// ============================================================
// Drag commit
// ============================================================

// CommitDrag фиксирует перетаскивание группы: меняется только позиция,
// со снапом к сетке. Позиция ломаной живёт в её точках, поэтому все
// пары сдвигаются так, чтобы первая точка встала на снапнутую позицию.
func (e *Editor) CommitDrag(shapeID string, pos models.Point) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	shape, ok := e.findShapeLocked(shapeID)
	if !ok {
		return fmt.Errorf("shape %s not found", shapeID)
	}

	x := geometry.SnapToGrid(pos.X, geometry.GridSize)
	y := geometry.SnapToGrid(pos.Y, geometry.GridSize)

	switch s := shape.(type) {
	case *models.RectShape:
		s.X, s.Y = x, y
	case *models.CircleShape:
		s.X, s.Y = x, y
	case *models.TriangleShape:
		s.X, s.Y = x, y
	case *models.ArrowShape:
		s.X, s.Y = x, y
	case *models.PolylineShape:
		if len(s.Points) >= 2 {
			dx := x - s.Points[0]
			dy := y - s.Points[1]
			for i := 0; i+1 < len(s.Points); i += 2 {
				s.Points[i] += dx
				s.Points[i+1] += dy
			}
		}
	case *models.PolygonShape:
		s.X, s.Y = x, y
	case *models.TextShape:
		s.X, s.Y = x, y
	}
	return nil
}

// MoveImage — аналог CommitDrag для размещённой картинки.
func (e *Editor) MoveImage(imageID string, pos models.Point) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, img := range e.scene.Images {
		if img.ID == imageID {
			img.X = geometry.SnapToGrid(pos.X, geometry.GridSize)
			img.Y = geometry.SnapToGrid(pos.Y, geometry.GridSize)
			return nil
		}
	}
	return fmt.Errorf("image %s not found", imageID)
}
