package editor

import (
	"fmt"
	"math"
	"sync"

	"floormap/internal/plan/geometry"
	"floormap/internal/plan/imaging"
	"floormap/internal/plan/models"

	"github.com/google/uuid"
)

// ============================================================
// Drawing state machine
// ============================================================

// MinShapeSize — порог отбрасывания вырожденных фигур на pointer-up.
// Стрелки исключение: короткая стрелка осмысленна.
const MinShapeSize = 5.0

const placeholderText = "Texte"

type Tool string

const (
	ToolPointer  Tool = "pointer"
	ToolRect     Tool = "rectangle"
	ToolCircle   Tool = "circle"
	ToolTriangle Tool = "triangle"
	ToolArrow    Tool = "arrow"
	ToolPolyline Tool = "polyline"
	ToolPolygon  Tool = "polygon"
	ToolText     Tool = "text"
)

// Modifiers — транзиентные модификаторы, сэмплируются на каждом
// pointer-событии, состоянием инструмента не являются.
type Modifiers struct {
	AxisLock bool
}

// Состояние машины: активный инструмент плюс его транзиентные данные.
// Незаконные комбинации (начатый полигон при инструменте pointer)
// непредставимы.
type toolState interface {
	tool() Tool
}

// idleState — инструмент pointer: выбор/перемещение/контекстное меню.
type idleState struct {
	selected string
}

// armedState — инструмент создания выбран, drag ещё не начат.
type armedState struct {
	kind Tool
}

// dragState — создание фигуры растягиванием, фигура уже в сцене.
type dragState struct {
	kind  Tool
	start models.Point
	shape models.Shape
}

// chainState — пошаговый набор точек полигона/ломаной.
type chainState struct {
	kind   Tool
	points []models.Point
}

func (idleState) tool() Tool    { return ToolPointer }
func (s armedState) tool() Tool { return s.kind }
func (s dragState) tool() Tool  { return s.kind }
func (s chainState) tool() Tool { return s.kind }

// ============================================================
// Editor
// ============================================================

// Editor владеет сценой на время сессии авторинга. Все мутации идут
// через события; рендер читает сцену после каждой мутации.
type Editor struct {
	mu          sync.Mutex
	scene       *models.Scene
	stageWidth  float64
	stageHeight float64
	state       toolState
	menu        *ContextMenu
	pool        *OfficePool
	saving      bool
	newID       func() string
	fetch       imaging.Fetcher
}

func New(stageWidth, stageHeight float64, offices []models.OfficeRef) *Editor {
	return &Editor{
		scene:       &models.Scene{},
		stageWidth:  stageWidth,
		stageHeight: stageHeight,
		state:       idleState{},
		pool:        NewOfficePool(offices),
		newID:       uuid.NewString,
		fetch:       imaging.NewHTTPFetcher(),
	}
}

// NewFromDocument открывает сохранённый документ на редактирование.
// Офисы, уже привязанные в документе, исключаются из пула.
func NewFromDocument(doc *models.MapDocument, offices []models.OfficeRef) *Editor {
	e := New(doc.StageWidth, doc.StageHeight, offices)
	scene := doc.Map
	e.scene = &scene

	for _, shape := range scene.Shapes {
		assoc := shape.Association()
		if assoc != nil && assoc.IsOffice && assoc.Office != nil {
			e.pool.Take(assoc.Office.ID)
		}
	}
	return e
}

// SetImageFetcher подменяет загрузчик картинок (тесты).
func (e *Editor) SetImageFetcher(f imaging.Fetcher) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fetch = f
}

func (e *Editor) Scene() *models.Scene {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scene
}

func (e *Editor) Tool() Tool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.tool()
}

// Selected возвращает id выбранной фигуры при инструменте pointer.
func (e *Editor) Selected() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if s, ok := e.state.(idleState); ok {
		return s.selected
	}
	return ""
}

// DraftPoints — набранные точки полигона/ломаной для живого превью.
func (e *Editor) DraftPoints() []models.Point {
	e.mu.Lock()
	defer e.mu.Unlock()
	if s, ok := e.state.(chainState); ok {
		out := make([]models.Point, len(s.points))
		copy(out, s.points)
		return out
	}
	return nil
}

// ============================================================
// Tool selection
// ============================================================

// SelectTool переключает инструмент. Недорисованная drag-фигура
// убирается из сцены, буфер точек сбрасывается.
func (e *Editor) SelectTool(t Tool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if s, ok := e.state.(dragState); ok {
		e.removeShapeLocked(s.shape.ShapeID())
	}
	e.menu = nil

	switch t {
	case ToolPointer:
		e.state = idleState{}
	case ToolPolyline, ToolPolygon:
		e.state = chainState{kind: t}
	case ToolRect, ToolCircle, ToolTriangle, ToolArrow, ToolText:
		e.state = armedState{kind: t}
	default:
		e.state = idleState{}
	}
}

// ============================================================
// Pointer events
// ============================================================

func (e *Editor) PointerDown(p models.Point, mods Modifiers) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch s := e.state.(type) {
	case idleState:
		e.state = idleState{selected: e.hitTestLocked(p)}

	case armedState:
		if s.kind == ToolText {
			e.placeTextLocked(p)
			e.state = idleState{}
			return
		}
		e.beginDragLocked(s.kind, p)

	case chainState:
		e.state = chainState{kind: s.kind, points: appendChainPoint(s.points, p, mods)}
	}
}

func (e *Editor) PointerMove(p models.Point, mods Modifiers) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.state.(dragState)
	if !ok {
		return
	}
	// Превью следует за сырым указателем, без снапа.
	w, h := dragSize(s, p, mods)
	setBoxSize(s.shape, w, h)
}

func (e *Editor) PointerUp(p models.Point, mods Modifiers) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.state.(dragState)
	if !ok {
		return
	}

	w, h := dragSize(s, p, mods)
	setBoxSize(s.shape, w, h)

	if s.kind != ToolArrow && (math.Abs(w) < MinShapeSize || math.Abs(h) < MinShapeSize) {
		e.removeShapeLocked(s.shape.ShapeID())
	}
	// Одноразовое создание: после коммита назад к pointer.
	e.state = idleState{}
}

// KeyFinalize — завершение полигона/ломаной (Enter). При нехватке
// точек буфер сохраняется и ничего не коммитится.
func (e *Editor) KeyFinalize() {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.state.(chainState)
	if !ok {
		return
	}

	switch s.kind {
	case ToolPolygon:
		if len(s.points) < 3 {
			return
		}
		e.appendShapeLocked(buildPolygon(e.newID(), s.points))
	case ToolPolyline:
		if len(s.points) < 2 {
			return
		}
		e.appendShapeLocked(buildPolyline(e.newID(), s.points))
	}
	e.state = idleState{}
}

// ============================================================
// Drag helpers
// ============================================================

func (e *Editor) beginDragLocked(kind Tool, p models.Point) {
	start := models.Point{
		X: geometry.SnapToGrid(p.X, geometry.GridSize),
		Y: geometry.SnapToGrid(p.Y, geometry.GridSize),
	}

	shape := newDragShape(kind, e.newID(), start)
	e.scene.Shapes = append(e.scene.Shapes, shape)
	e.state = dragState{kind: kind, start: start, shape: shape}
}

// dragSize — знаковый размер от старта до указателя; для прямоугольника
// под axis lock — квадрат по доминирующей оси.
func dragSize(s dragState, p models.Point, mods Modifiers) (float64, float64) {
	w := p.X - s.start.X
	h := p.Y - s.start.Y

	if s.kind == ToolRect && mods.AxisLock {
		side := math.Max(math.Abs(w), math.Abs(h))
		w = math.Copysign(side, w)
		h = math.Copysign(side, h)
	}
	return w, h
}

func newDragShape(kind Tool, id string, at models.Point) models.Shape {
	box := models.BoxGeometry{
		ID:        id,
		X:         at.X,
		Y:         at.Y,
		Transform: models.IdentityTransform(),
		FillColor: defaultFillColor,
	}

	switch kind {
	case ToolRect:
		return &models.RectShape{BoxGeometry: box}
	case ToolCircle:
		return &models.CircleShape{BoxGeometry: box}
	case ToolTriangle:
		return &models.TriangleShape{BoxGeometry: box}
	case ToolArrow:
		return &models.ArrowShape{
			ID:        id,
			X:         at.X,
			Y:         at.Y,
			Transform: models.IdentityTransform(),
			FillColor: defaultStrokeColor,
		}
	}
	return nil
}

func (e *Editor) placeTextLocked(p models.Point) {
	e.appendShapeLocked(&models.TextShape{
		ID:        e.newID(),
		X:         geometry.SnapToGrid(p.X, geometry.GridSize),
		Y:         geometry.SnapToGrid(p.Y, geometry.GridSize),
		Text:      placeholderText,
		FontSize:  18,
		Transform: models.IdentityTransform(),
		FillColor: defaultStrokeColor,
	})
}

// appendChainPoint снапит новую точку к сетке; axis lock считается от
// предыдущей точки цепочки.
func appendChainPoint(points []models.Point, p models.Point, mods Modifiers) []models.Point {
	from := p
	lock := false
	if len(points) > 0 {
		from = points[len(points)-1]
		lock = mods.AxisLock
	}
	return append(points, geometry.SnappedPoint(from, p, lock, geometry.GridSize))
}

func buildPolygon(id string, points []models.Point) *models.PolygonShape {
	min, _ := geometry.BoundsOf(points)
	rel := make([]models.Point, len(points))
	for i, p := range points {
		rel[i] = models.Point{X: p.X - min.X, Y: p.Y - min.Y}
	}

	return &models.PolygonShape{
		ID:        id,
		X:         min.X,
		Y:         min.Y,
		Points:    rel,
		Transform: models.IdentityTransform(),
		FillColor: defaultFillColor,
	}
}

func buildPolyline(id string, points []models.Point) *models.PolylineShape {
	flat := make([]float64, 0, len(points)*2)
	for _, p := range points {
		flat = append(flat, p.X, p.Y)
	}

	return &models.PolylineShape{
		ID:          id,
		Points:      flat,
		Transform:   models.IdentityTransform(),
		StrokeColor: defaultStrokeColor,
		StrokeWidth: 3,
	}
}

// ============================================================
// Scene mutation helpers
// ============================================================

var (
	defaultFillColor   = models.RGBAColor{R: 59, G: 130, B: 246, A: 0.35}
	defaultStrokeColor = models.RGBAColor{R: 17, G: 24, B: 39, A: 1}
)

func (e *Editor) appendShapeLocked(s models.Shape) {
	e.scene.Shapes = append(e.scene.Shapes, s)
}

func (e *Editor) findShapeLocked(id string) (models.Shape, bool) {
	for _, s := range e.scene.Shapes {
		if s.ShapeID() == id {
			return s, true
		}
	}
	return nil, false
}

func (e *Editor) removeShapeLocked(id string) bool {
	for i, s := range e.scene.Shapes {
		if s.ShapeID() == id {
			e.scene.Shapes = append(e.scene.Shapes[:i], e.scene.Shapes[i+1:]...)
			return true
		}
	}
	return false
}

// hitTestLocked — верхняя фигура под точкой; обход с конца, потому что
// порядок вставки это z-порядок.
func (e *Editor) hitTestLocked(p models.Point) string {
	for i := len(e.scene.Shapes) - 1; i >= 0; i-- {
		if geometry.ShapeContains(e.scene.Shapes[i], p) {
			return e.scene.Shapes[i].ShapeID()
		}
	}
	return ""
}

// setBoxSize обновляет размер drag-фигуры; исчерпывающе по вариантам,
// создаваемым beginDragLocked.
func setBoxSize(shape models.Shape, w, h float64) {
	switch s := shape.(type) {
	case *models.RectShape:
		s.Width, s.Height = w, h
	case *models.CircleShape:
		s.Width, s.Height = w, h
	case *models.TriangleShape:
		s.Width, s.Height = w, h
	case *models.ArrowShape:
		s.Width, s.Height = w, h
	}
}

// EditText меняет содержимое текстовой фигуры (модалка по двойному
// клику, не inline).
func (e *Editor) EditText(shapeID, text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	shape, ok := e.findShapeLocked(shapeID)
	if !ok {
		return fmt.Errorf("shape %s not found", shapeID)
	}

	t, ok := shape.(*models.TextShape)
	if !ok {
		return fmt.Errorf("shape %s is not a text shape", shapeID)
	}
	t.Text = text
	return nil
}
