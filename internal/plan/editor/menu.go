package editor

import (
	"fmt"

	"floormap/internal/plan/models"
)

// ============================================================
// Context menu & association
// ============================================================

// SpaceCategories — фиксированный список категорий зон; категория
// "office" динамическая и раскрывается во второй пикер.
var SpaceCategories = []string{
	"wc", "toilette", "cuisine", "salle-attente", "lounge", "cafe",
	"terrasse", "zone-impression", "salle-sieste", "jardin", "parking",
}

// ContextMenu — открытое меню действий над фигурой или картинкой.
type ContextMenu struct {
	ShapeID      string
	ImageID      string
	At           models.Point
	CanAssociate bool
}

// OpenContextMenu открывает меню для фигуры. Привязка доступна только
// box-фигурам и полигонам.
func (e *Editor) OpenContextMenu(shapeID string, at models.Point) (*ContextMenu, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	shape, ok := e.findShapeLocked(shapeID)
	if !ok {
		return nil, fmt.Errorf("shape %s not found", shapeID)
	}

	e.menu = &ContextMenu{
		ShapeID:      shapeID,
		At:           at,
		CanAssociate: isZoneShape(shape),
	}
	return e.menu, nil
}

// OpenImageContextMenu — меню картинки: только удаление.
func (e *Editor) OpenImageContextMenu(imageID string, at models.Point) (*ContextMenu, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, img := range e.scene.Images {
		if img.ID == imageID {
			e.menu = &ContextMenu{ImageID: imageID, At: at}
			return e.menu, nil
		}
	}
	return nil, fmt.Errorf("image %s not found", imageID)
}

// CloseContextMenu — действие "annuler": снимает меню и выбор.
func (e *Editor) CloseContextMenu() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.menu = nil
	if _, ok := e.state.(idleState); ok {
		e.state = idleState{}
	}
}

func (e *Editor) ContextMenu() *ContextMenu {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.menu
}

// AvailableOffices — офисы для второго пикера диалога привязки.
func (e *Editor) AvailableOffices() []models.OfficeRef {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pool.Available()
}

// AssociateSpace привязывает фиксированную категорию к зоне.
func (e *Editor) AssociateSpace(shapeID, category string) error {
	if !validCategory(category) {
		return fmt.Errorf("unknown space category %q", category)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	return e.associateLocked(shapeID, &models.SpaceAssociation{Label: category})
}

// AssociateOffice привязывает конкретный офис и изымает его из пула.
func (e *Editor) AssociateOffice(shapeID string, officeID int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	ref, ok := e.pool.Take(officeID)
	if !ok {
		return fmt.Errorf("office %d is not available", officeID)
	}

	err := e.associateLocked(shapeID, &models.SpaceAssociation{
		Label:    ref.Name,
		IsOffice: true,
		Office:   &ref,
	})
	if err != nil {
		e.pool.Return(ref)
	}
	return err
}

func (e *Editor) associateLocked(shapeID string, assoc *models.SpaceAssociation) error {
	shape, ok := e.findShapeLocked(shapeID)
	if !ok {
		return fmt.Errorf("shape %s not found", shapeID)
	}
	if !isZoneShape(shape) {
		return fmt.Errorf("shape %s cannot carry a space association", shapeID)
	}

	// Перезапись офисной привязки возвращает прежний офис в пул.
	if old := shape.Association(); old != nil && old.IsOffice && old.Office != nil {
		e.pool.Return(*old.Office)
	}

	setAssociation(shape, assoc)
	e.menu = nil
	return nil
}

// DeleteShape удаляет фигуру; привязанный офис возвращается в пул.
func (e *Editor) DeleteShape(shapeID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	shape, ok := e.findShapeLocked(shapeID)
	if !ok {
		return fmt.Errorf("shape %s not found", shapeID)
	}

	if assoc := shape.Association(); assoc != nil && assoc.IsOffice && assoc.Office != nil {
		e.pool.Return(*assoc.Office)
	}

	e.removeShapeLocked(shapeID)
	e.menu = nil
	e.state = idleState{}
	return nil
}

// DeleteImage удаляет картинку со сцены.
func (e *Editor) DeleteImage(imageID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, img := range e.scene.Images {
		if img.ID == imageID {
			e.scene.Images = append(e.scene.Images[:i], e.scene.Images[i+1:]...)
			e.menu = nil
			return nil
		}
	}
	return fmt.Errorf("image %s not found", imageID)
}

// ============================================================
// Helpers
// ============================================================

// isZoneShape — какие варианты могут быть зонами. Текст может нести
// привязку в модели, но диалог предлагает её только box/polygon.
func isZoneShape(shape models.Shape) bool {
	switch shape.(type) {
	case *models.RectShape, *models.CircleShape, *models.TriangleShape, *models.PolygonShape:
		return true
	}
	return false
}

func setAssociation(shape models.Shape, assoc *models.SpaceAssociation) {
	switch s := shape.(type) {
	case *models.RectShape:
		s.SpaceAssociated = assoc
	case *models.CircleShape:
		s.SpaceAssociated = assoc
	case *models.TriangleShape:
		s.SpaceAssociated = assoc
	case *models.PolygonShape:
		s.SpaceAssociated = assoc
	case *models.TextShape:
		s.SpaceAssociated = assoc
	}
}

func validCategory(category string) bool {
	for _, c := range SpaceCategories {
		if c == category {
			return true
		}
	}
	return false
}
