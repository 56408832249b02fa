package render

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"floormap/internal/plan/geometry"
	"floormap/internal/plan/models"
)

// ============================================================
// Renderer
// ============================================================

// MinShapeSize — фигуры box-типов меньше этого порога по любой оси не
// рисуются. Защита от испорченных сохранённых данных; после валидации
// редактора таких фигур быть не должно.
const MinShapeSize = 5.0

// Policy определяет, какие интерактивные хуки вешаются на фигуры.
type Policy int

const (
	// Editable — редактор: хуки выбора/перетаскивания на всех фигурах.
	Editable Policy = iota
	// ReadOnly — просмотр: ховер-хуки только на фигурах с офисной
	// привязкой.
	ReadOnly
)

type Renderer struct {
	policy Policy
}

func NewRenderer(policy Policy) *Renderer {
	return &Renderer{policy: policy}
}

// Render собирает SVG из документа карты. Порядок обхода — порядок
// вставки, он же z-порядок.
func (r *Renderer) Render(doc *models.MapDocument) (string, error) {
	if doc == nil {
		return "", fmt.Errorf("document is nil")
	}

	width := doc.StageWidth
	height := doc.StageHeight
	if width <= 0 || height <= 0 {
		width, height = 1000, 1000
	}

	var elements []string
	for _, img := range doc.Map.Images {
		if elem := r.renderImage(img); elem != "" {
			elements = append(elements, elem)
		}
	}
	for _, shape := range doc.Map.Shapes {
		elements = append(elements, r.renderShape(shape)...)
	}

	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	builder.WriteString(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`,
		formatFloat(width), formatFloat(height), formatFloat(width), formatFloat(height)))
	builder.WriteString("\n")
	builder.WriteString("  " + arrowMarkerDefs + "\n")

	for _, elem := range elements {
		builder.WriteString("  ")
		builder.WriteString(elem)
		builder.WriteString("\n")
	}

	builder.WriteString(`</svg>`)
	return builder.String(), nil
}

const arrowMarkerDefs = `<defs><marker id="arrowhead" markerWidth="10" markerHeight="8" refX="9" refY="4" orient="auto"><polygon points="0 0, 10 4, 0 8" /></marker></defs>`

// ============================================================
// Shape renderers
// ============================================================

// renderShape — исчерпывающий разбор объединения фигур. Каждая фигура
// оборачивается в группу со своей матрицей трансформации.
func (r *Renderer) renderShape(shape models.Shape) []string {
	switch s := shape.(type) {
	case *models.RectShape:
		if degenerate(s.Width, s.Height) {
			return nil
		}
		body := fmt.Sprintf(`<rect x="%s" y="%s" width="%s" height="%s" fill="%s" />`,
			formatFloat(math.Min(0, s.Width)), formatFloat(math.Min(0, s.Height)),
			formatFloat(math.Abs(s.Width)), formatFloat(math.Abs(s.Height)), s.FillColor.CSS())
		return r.group(shape, s.X, s.Y, s.Transform, body, r.labelOverlay(s.SpaceAssociated, s.Width, s.Height))

	case *models.CircleShape:
		if degenerate(s.Width, s.Height) {
			return nil
		}
		body := fmt.Sprintf(`<ellipse cx="%s" cy="%s" rx="%s" ry="%s" fill="%s" />`,
			formatFloat(s.Width/2), formatFloat(s.Height/2),
			formatFloat(math.Abs(s.Width)/2), formatFloat(math.Abs(s.Height)/2), s.FillColor.CSS())
		return r.group(shape, s.X, s.Y, s.Transform, body, r.labelOverlay(s.SpaceAssociated, s.Width, s.Height))

	case *models.TriangleShape:
		if degenerate(s.Width, s.Height) {
			return nil
		}
		body := fmt.Sprintf(`<polygon points="%s" fill="%s" />`,
			formatPoints(geometry.TrianglePoints(s.Width, s.Height)), s.FillColor.CSS())
		return r.group(shape, s.X, s.Y, s.Transform, body, r.labelOverlay(s.SpaceAssociated, s.Width, s.Height))

	case *models.ArrowShape:
		// Стрелка рисуется даже совсем короткой.
		body := fmt.Sprintf(`<line x1="0" y1="0" x2="%s" y2="%s" stroke="%s" stroke-width="3" marker-end="url(#arrowhead)" />`,
			formatFloat(s.Width), formatFloat(s.Height), s.FillColor.CSS())
		return r.group(shape, s.X, s.Y, s.Transform, body, "")

	case *models.PolylineShape:
		if len(s.Points) < 4 {
			return nil
		}
		body := fmt.Sprintf(`<polyline points="%s" fill="none" stroke="%s" stroke-width="%s" />`,
			formatFlatPoints(s.Points), s.StrokeColor.CSS(), formatFloat(s.StrokeWidth))
		return r.group(shape, 0, 0, s.Transform, body, "")

	case *models.PolygonShape:
		if len(s.Points) < 3 {
			return nil
		}
		min, max := geometry.BoundsOf(s.Points)
		body := fmt.Sprintf(`<polygon points="%s" fill="%s" />`,
			formatPoints(s.Points), s.FillColor.CSS())
		return r.group(shape, s.X, s.Y, s.Transform, body, r.labelOverlay(s.SpaceAssociated, max.X-min.X, max.Y-min.Y))

	case *models.TextShape:
		fontSize := s.FontSize
		if fontSize <= 0 {
			fontSize = 16
		}
		body := fmt.Sprintf(`<text x="0" y="%s" font-size="%s" fill="%s">%s</text>`,
			formatFloat(fontSize), formatFloat(fontSize), s.FillColor.CSS(), escapeText(s.Text))
		return r.group(shape, s.X, s.Y, s.Transform, body, "")
	}
	return nil
}

func (r *Renderer) renderImage(img *models.ImageOnStage) string {
	w, h := img.Size()
	if w == 0 || h == 0 {
		// Картинка ещё не восстановлена из URL — просто не рисуем.
		return ""
	}

	body := fmt.Sprintf(`<image href="%s" x="0" y="0" width="%s" height="%s" />`,
		escapeText(img.URL), formatFloat(w), formatFloat(h))

	attrs := ""
	if r.policy == Editable {
		attrs = fmt.Sprintf(` data-image-id="%s" class="selectable"`, img.ID)
	}
	return fmt.Sprintf(`<g transform="%s"%s>%s</g>`,
		matrixAttr(img.X, img.Y, img.Transform), attrs, body)
}

// group оборачивает примитивы фигуры в <g> с матрицей трансформации и
// хуками выбранной политики.
func (r *Renderer) group(shape models.Shape, x, y float64, t models.Transform, body, overlay string) []string {
	attrs := r.hookAttrs(shape)
	out := fmt.Sprintf(`<g transform="%s"%s>%s%s</g>`, matrixAttr(x, y, t), attrs, body, overlay)
	return []string{out}
}

// hookAttrs — единственное различие политик рендера: редактор вешает
// хуки выбора на всё, просмотр — ховер только на офисные зоны.
func (r *Renderer) hookAttrs(shape models.Shape) string {
	switch r.policy {
	case Editable:
		return fmt.Sprintf(` data-shape-id="%s" class="selectable" cursor="move"`, shape.ShapeID())
	case ReadOnly:
		assoc := shape.Association()
		if assoc == nil || !assoc.IsOffice || assoc.Office == nil {
			return ""
		}
		return fmt.Sprintf(` data-office-id="%d" class="office-zone" cursor="pointer"`, assoc.Office.ID)
	}
	return ""
}

func degenerate(w, h float64) bool {
	return math.Abs(w) < MinShapeSize || math.Abs(h) < MinShapeSize
}

// ============================================================
// Formatting helpers
// ============================================================

func formatFloat(val float64) string {
	return strconv.FormatFloat(val, 'f', -1, 64)
}

func formatPoints(points []models.Point) string {
	parts := make([]string, 0, len(points))
	for _, p := range points {
		parts = append(parts, formatFloat(p.X)+","+formatFloat(p.Y))
	}
	return strings.Join(parts, " ")
}

func formatFlatPoints(flat []float64) string {
	var parts []string
	for i := 0; i+1 < len(flat); i += 2 {
		parts = append(parts, formatFloat(flat[i])+","+formatFloat(flat[i+1]))
	}
	return strings.Join(parts, " ")
}

func matrixAttr(x, y float64, t models.Transform) string {
	m := geometry.ShapeMatrix(x, y, t)
	return fmt.Sprintf("matrix(%s %s %s %s %s %s)",
		formatFloat(m.A), formatFloat(m.B), formatFloat(m.C),
		formatFloat(m.D), formatFloat(m.E), formatFloat(m.F))
}

func escapeText(s string) string {
	replacer := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return replacer.Replace(s)
}
