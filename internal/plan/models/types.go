package models

import (
	"fmt"
	"image"
	"strconv"
	"time"
)

// ============================================================
// Geometry primitives
// ============================================================

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// RGBAColor — цвет с независимой альфой. CSS-строка — только проекция
// на этапе рендера, в модели всегда компоненты.
type RGBAColor struct {
	R int     `json:"r"`
	G int     `json:"g"`
	B int     `json:"b"`
	A float64 `json:"a"`
}

// CSS возвращает rgba(...) строку для рендера.
func (c RGBAColor) CSS() string {
	return fmt.Sprintf("rgba(%d,%d,%d,%s)", c.R, c.G, c.B, strconv.FormatFloat(c.A, 'f', -1, 64))
}

// Transform — общие трансформ-атрибуты фигур. Scale по умолчанию 1,
// нулевые значения нормализуются при декодировании.
type Transform struct {
	Rotation float64 `json:"rotation"`
	ScaleX   float64 `json:"scaleX"`
	ScaleY   float64 `json:"scaleY"`
	SkewX    float64 `json:"skewX"`
	SkewY    float64 `json:"skewY"`
}

func (t *Transform) normalize() {
	if t.ScaleX == 0 && t.ScaleY == 0 {
		t.ScaleX = 1
		t.ScaleY = 1
	}
}

// IdentityTransform — трансформ без поворота и масштаба.
func IdentityTransform() Transform {
	return Transform{ScaleX: 1, ScaleY: 1}
}

// ============================================================
// Space association
// ============================================================

type OfficeRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// SpaceAssociation — привязка зоны к бизнес-сущности: либо фиксированная
// категория (wc, cuisine, ...), либо конкретный офис.
type SpaceAssociation struct {
	Label    string     `json:"label"`
	IsOffice bool       `json:"isOffice"`
	Office   *OfficeRef `json:"office,omitempty"`
}

// ============================================================
// Shape union
// ============================================================

type ShapeType string

const (
	ShapeRect     ShapeType = "rect"
	ShapeCircle   ShapeType = "circle"
	ShapeTriangle ShapeType = "triangle"
	ShapeArrow    ShapeType = "arrow"
	ShapePolyline ShapeType = "polyline"
	ShapePolygon  ShapeType = "polygon"
	ShapeText     ShapeType = "text"
)

// Shape — запечатанное объединение фигур сцены. Варианты перечислены
// в decodeShape; добавление нового типа требует правки кодека и рендера.
type Shape interface {
	ShapeID() string
	Type() ShapeType
	// Association возвращает привязку зоны или nil. Стрелки и ломаные
	// никогда не несут привязку.
	Association() *SpaceAssociation
	sealedShape()
}

// BoxGeometry — общие поля rect/circle/triangle. Width/Height знаковые
// (направление drag) и задают локальный размер до трансформации.
type BoxGeometry struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Transform
	FillColor       RGBAColor         `json:"fillColor"`
	SpaceAssociated *SpaceAssociation `json:"spaceAssociated,omitempty"`
}

func (b *BoxGeometry) ShapeID() string                { return b.ID }
func (b *BoxGeometry) Association() *SpaceAssociation { return b.SpaceAssociated }

type RectShape struct{ BoxGeometry }

type CircleShape struct{ BoxGeometry }

type TriangleShape struct{ BoxGeometry }

func (*RectShape) Type() ShapeType     { return ShapeRect }
func (*CircleShape) Type() ShapeType   { return ShapeCircle }
func (*TriangleShape) Type() ShapeType { return ShapeTriangle }

func (*RectShape) sealedShape()     {}
func (*CircleShape) sealedShape()   {}
func (*TriangleShape) sealedShape() {}

// ArrowShape — двумя точками: от (x,y) до (x+width, y+height).
// Аннотация, не зона: привязки не бывает и минимального размера нет.
type ArrowShape struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Transform
	FillColor RGBAColor `json:"fillColor"`
}

func (a *ArrowShape) ShapeID() string                { return a.ID }
func (a *ArrowShape) Type() ShapeType                { return ShapeArrow }
func (a *ArrowShape) Association() *SpaceAssociation { return nil }
func (a *ArrowShape) sealedShape()                   {}

// PolylineShape — открытая ломаная. Points — плоский список x,y;
// минимум 2 точки (4 числа) для сохранения.
type PolylineShape struct {
	ID     string    `json:"id"`
	Points []float64 `json:"points"`
	Transform
	StrokeColor RGBAColor `json:"strokeColor"`
	StrokeWidth float64   `json:"strokeWidth"`
}

func (p *PolylineShape) ShapeID() string                { return p.ID }
func (p *PolylineShape) Type() ShapeType                { return ShapePolyline }
func (p *PolylineShape) Association() *SpaceAssociation { return nil }
func (p *PolylineShape) sealedShape()                   {}

// PolygonShape — замкнутый многоугольник. Points хранятся относительно
// (x,y) — минимума собственного bounding box.
type PolygonShape struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Points []Point `json:"points"`
	Transform
	FillColor       RGBAColor         `json:"fillColor"`
	SpaceAssociated *SpaceAssociation `json:"spaceAssociated,omitempty"`
}

func (p *PolygonShape) ShapeID() string                { return p.ID }
func (p *PolygonShape) Type() ShapeType                { return ShapePolygon }
func (p *PolygonShape) Association() *SpaceAssociation { return p.SpaceAssociated }
func (p *PolygonShape) sealedShape()                   {}

type TextShape struct {
	ID   string  `json:"id"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Text string  `json:"text"`
	Transform
	FontSize        float64           `json:"fontSize,omitempty"`
	FillColor       RGBAColor         `json:"fillColor"`
	SpaceAssociated *SpaceAssociation `json:"spaceAssociated,omitempty"`
}

func (t *TextShape) ShapeID() string                { return t.ID }
func (t *TextShape) Type() ShapeType                { return ShapeText }
func (t *TextShape) Association() *SpaceAssociation { return t.SpaceAssociated }
func (t *TextShape) sealedShape()                   {}

// ============================================================
// Images on stage
// ============================================================

// ImageOnStage — растровый ассет, размещённый на сцене. Bitmap живёт
// только в памяти и восстанавливается из URL после загрузки документа.
type ImageOnStage struct {
	ID     string  `json:"id"`
	URL    string  `json:"url"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	Transform
	Bitmap image.Image `json:"-"`
}

// Size возвращает эффективный размер: заданный явно или натуральный
// размер декодированного изображения.
func (i *ImageOnStage) Size() (float64, float64) {
	w, h := i.Width, i.Height
	if (w == 0 || h == 0) && i.Bitmap != nil {
		b := i.Bitmap.Bounds()
		if w == 0 {
			w = float64(b.Dx())
		}
		if h == 0 {
			h = float64(b.Dy())
		}
	}
	return w, h
}

// ============================================================
// Scene & map document
// ============================================================

// Scene — тело сохраняемого документа. Порядок фигур — порядок
// вставки и одновременно z-порядок рендера.
type Scene struct {
	Shapes ShapeList       `json:"shapes"`
	Images []*ImageOnStage `json:"images"`
}

// MapDocument — сцена плюс метаданные авторинга. Размеры канвы нужны,
// чтобы позже отрисовать документ пропорционально.
type MapDocument struct {
	ID          string  `json:"id,omitempty"`
	Name        string  `json:"name"`
	StageWidth  float64 `json:"stageWidth"`
	StageHeight float64 `json:"stageHeight"`
	Map         Scene   `json:"map"`
	CreatedAt   string  `json:"createdAt,omitempty"`
	UpdatedAt   string  `json:"updatedAt,omitempty"`
}

// MapSummary — строка списка документов в админке.
type MapSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// ============================================================
// Office directory
// ============================================================

type Period struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

type OfficeFeature struct {
	Label string `json:"label"`
}

type OfficeSummary struct {
	ID                 int64           `json:"id"`
	Name               string          `json:"name"`
	MaxSeatCapacity    int             `json:"maxSeatCapacity"`
	Features           []OfficeFeature `json:"features"`
	UnavailablePeriods []Period        `json:"unavailablePeriods"`
	ImageURL           string          `json:"imageUrl"`
}

// AvailableAt — офис доступен, если момент не попадает ни в один из
// периодов недоступности. Периоды независимы, без слияния.
func (o OfficeSummary) AvailableAt(now time.Time) bool {
	for _, p := range o.UnavailablePeriods {
		if !now.Before(p.From) && !now.After(p.To) {
			return false
		}
	}
	return true
}

// Ref возвращает компактную ссылку для привязки к фигуре.
func (o OfficeSummary) Ref() OfficeRef {
	return OfficeRef{ID: o.ID, Name: o.Name}
}
