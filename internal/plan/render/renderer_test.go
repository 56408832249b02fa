package render

import (
	"image"
	"strings"
	"testing"

	"floormap/internal/plan/models"
)

func docWith(shapes ...models.Shape) *models.MapDocument {
	return &models.MapDocument{
		Name:        "Etage 1",
		StageWidth:  1200,
		StageHeight: 800,
		Map:         models.Scene{Shapes: shapes},
	}
}

func officeRect(id string, officeID int64) *models.RectShape {
	return &models.RectShape{BoxGeometry: models.BoxGeometry{
		ID: id, X: 100, Y: 100, Width: 200, Height: 120,
		Transform: models.IdentityTransform(),
		FillColor: models.RGBAColor{R: 59, G: 130, B: 246, A: 0.35},
		SpaceAssociated: &models.SpaceAssociation{
			Label:    "Bureau A1",
			IsOffice: true,
			Office:   &models.OfficeRef{ID: officeID, Name: "Bureau A1"},
		},
	}}
}

func TestRenderSVGEnvelope(t *testing.T) {
	svg, err := NewRenderer(Editable).Render(docWith(officeRect("r1", 7)))
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if !strings.Contains(svg, `viewBox="0 0 1200 800"`) {
		t.Fatalf("missing viewBox: %s", svg)
	}
	if !strings.Contains(svg, `marker id="arrowhead"`) {
		t.Fatalf("missing arrowhead defs")
	}
	if !strings.Contains(svg, `fill="rgba(59,130,246,0.35)"`) {
		t.Fatalf("fill color must materialize as rgba(): %s", svg)
	}
	if !strings.Contains(svg, `transform="matrix(1 0 0 1 100 100)"`) {
		t.Fatalf("expected identity matrix with translation: %s", svg)
	}
}

func TestRenderNilDocument(t *testing.T) {
	if _, err := NewRenderer(Editable).Render(nil); err == nil {
		t.Fatalf("nil document must error")
	}
}

func TestDegenerateBoxShapesSkipped(t *testing.T) {
	svg, err := NewRenderer(Editable).Render(docWith(
		&models.RectShape{BoxGeometry: models.BoxGeometry{
			ID: "tiny", Width: 3, Height: 40, Transform: models.IdentityTransform(),
		}},
		&models.CircleShape{BoxGeometry: models.BoxGeometry{
			ID: "flat", Width: 40, Height: 2, Transform: models.IdentityTransform(),
		}},
	))
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if strings.Contains(svg, "<rect") || strings.Contains(svg, "<ellipse") {
		t.Fatalf("degenerate shapes must be skipped: %s", svg)
	}
}

func TestShortArrowStillRendered(t *testing.T) {
	svg, err := NewRenderer(Editable).Render(docWith(&models.ArrowShape{
		ID: "a1", X: 40, Y: 40, Width: 2, Height: 2,
		Transform: models.IdentityTransform(),
		FillColor: models.RGBAColor{R: 17, G: 24, B: 39, A: 1},
	}))
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if !strings.Contains(svg, `marker-end="url(#arrowhead)"`) {
		t.Fatalf("short arrow must render with its marker: %s", svg)
	}
}

func TestEditablePolicyHooks(t *testing.T) {
	svg, err := NewRenderer(Editable).Render(docWith(officeRect("r1", 7)))
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if !strings.Contains(svg, `data-shape-id="r1"`) {
		t.Fatalf("editable render must carry shape hooks: %s", svg)
	}
	if strings.Contains(svg, "data-office-id") {
		t.Fatalf("editable render must not carry viewer hooks")
	}
}

func TestReadOnlyPolicyHooks(t *testing.T) {
	plain := &models.RectShape{BoxGeometry: models.BoxGeometry{
		ID: "r2", X: 400, Y: 100, Width: 100, Height: 100,
		Transform: models.IdentityTransform(),
	}}

	svg, err := NewRenderer(ReadOnly).Render(docWith(officeRect("r1", 7), plain))
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if !strings.Contains(svg, `data-office-id="7"`) {
		t.Fatalf("office zone must carry hover hook: %s", svg)
	}
	if strings.Contains(svg, "data-shape-id") {
		t.Fatalf("read-only render must not carry editor hooks")
	}
	if strings.Count(svg, "office-zone") != 1 {
		t.Fatalf("only office zones get the class, got: %s", svg)
	}
}

func TestLabelWrappedAndCentered(t *testing.T) {
	rect := officeRect("r1", 7)
	rect.SpaceAssociated.Label = "Salle de reunion principale"
	rect.Width = 120

	svg, err := NewRenderer(ReadOnly).Render(docWith(rect))
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if strings.Count(svg, "<tspan") < 2 {
		t.Fatalf("long label in a narrow zone must wrap: %s", svg)
	}
}

func TestRotatedShapeMatrix(t *testing.T) {
	rect := officeRect("r1", 7)
	rect.Rotation = 90

	svg, err := NewRenderer(Editable).Render(docWith(rect))
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	// cos(90°)=0, sin(90°)=1: колонки матрицы меняются местами.
	if !strings.Contains(svg, "matrix(") || strings.Contains(svg, "rotate(") {
		t.Fatalf("transform must be a single matrix attr: %s", svg)
	}
}

func TestTextEscaped(t *testing.T) {
	svg, err := NewRenderer(Editable).Render(docWith(&models.TextShape{
		ID: "t1", X: 40, Y: 40, Text: `Accueil <"VIP"> & co`,
		FontSize:  16,
		Transform: models.IdentityTransform(),
		FillColor: models.RGBAColor{A: 1},
	}))
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if !strings.Contains(svg, "Accueil &lt;&quot;VIP&quot;&gt; &amp; co") {
		t.Fatalf("text content must be escaped: %s", svg)
	}
}

func TestImageWithoutBitmapSkipped(t *testing.T) {
	doc := docWith()
	doc.Map.Images = []*models.ImageOnStage{{
		ID: "img1", URL: "/static/assets/desk.png",
		Transform: models.IdentityTransform(),
	}}

	svg, err := NewRenderer(ReadOnly).Render(doc)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(svg, "<image") {
		t.Fatalf("image without dimensions must be skipped: %s", svg)
	}
}

func TestImageRendered(t *testing.T) {
	doc := docWith()
	doc.Map.Images = []*models.ImageOnStage{{
		ID: "img1", URL: "/static/assets/desk.png",
		X: 40, Y: 40, Width: 120, Height: 120,
		Transform: models.IdentityTransform(),
		Bitmap:    image.NewRGBA(image.Rect(0, 0, 8, 8)),
	}}

	svg, err := NewRenderer(Editable).Render(doc)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(svg, `<image href="/static/assets/desk.png"`) {
		t.Fatalf("expected image element: %s", svg)
	}
	if !strings.Contains(svg, `data-image-id="img1"`) {
		t.Fatalf("editable image must carry its hook: %s", svg)
	}
}
