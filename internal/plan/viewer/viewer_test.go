package viewer

import (
	"context"
	"errors"
	"testing"
	"time"

	"floormap/internal/plan/models"
)

type fakeLoader struct {
	doc *models.MapDocument
	err error
}

func (f *fakeLoader) LoadMapDocument(_ context.Context, _ string) (*models.MapDocument, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.doc, nil
}

type fakeDirectory struct {
	offices []models.OfficeSummary
	gotIDs  []int64
}

func (f *fakeDirectory) ListOfficesByIDs(_ context.Context, ids []int64) ([]models.OfficeSummary, error) {
	f.gotIDs = ids
	return f.offices, nil
}

func testDocument() *models.MapDocument {
	return &models.MapDocument{
		ID:          "doc-1",
		Name:        "Etage 1",
		StageWidth:  1200,
		StageHeight: 800,
		Map: models.Scene{
			Shapes: models.ShapeList{
				&models.RectShape{BoxGeometry: models.BoxGeometry{
					ID: "zone-office", X: 0, Y: 0, Width: 200, Height: 200,
					Transform: models.IdentityTransform(),
					SpaceAssociated: &models.SpaceAssociation{
						Label:    "Bureau A1",
						IsOffice: true,
						Office:   &models.OfficeRef{ID: 7, Name: "Bureau A1"},
					},
				}},
				&models.RectShape{BoxGeometry: models.BoxGeometry{
					ID: "zone-kitchen", X: 300, Y: 0, Width: 100, Height: 100,
					Transform:       models.IdentityTransform(),
					SpaceAssociated: &models.SpaceAssociation{Label: "cuisine"},
				}},
			},
		},
	}
}

func testOffice() models.OfficeSummary {
	return models.OfficeSummary{
		ID:              7,
		Name:            "Bureau A1",
		MaxSeatCapacity: 4,
		Features:        []models.OfficeFeature{{Label: "Ecran"}},
	}
}

func TestOpenResolvesReferencedOffices(t *testing.T) {
	dir := &fakeDirectory{offices: []models.OfficeSummary{testOffice()}}

	v, err := Open(context.Background(), "doc-1", &fakeLoader{doc: testDocument()}, dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	if len(dir.gotIDs) != 1 || dir.gotIDs[0] != 7 {
		t.Fatalf("expected batch lookup of [7], got %v", dir.gotIDs)
	}
	if v.Document().Name != "Etage 1" {
		t.Fatalf("unexpected document: %+v", v.Document())
	}
}

func TestOpenLoadFailure(t *testing.T) {
	_, err := Open(context.Background(), "missing", &fakeLoader{err: errors.New("not found")}, &fakeDirectory{})
	if err == nil {
		t.Fatalf("expected load error")
	}
}

func TestResolveAtOfficeZone(t *testing.T) {
	dir := &fakeDirectory{offices: []models.OfficeSummary{testOffice()}}
	v, err := Open(context.Background(), "doc-1", &fakeLoader{doc: testDocument()}, dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	pop := v.ResolveAt(models.Point{X: 50, Y: 50}, Stage{Offset: models.Point{X: 10, Y: 20}, Scale: 2})
	if pop == nil {
		t.Fatalf("expected popover over office zone")
	}
	if pop.Office.ID != 7 || pop.Office.MaxSeatCapacity != 4 {
		t.Fatalf("unexpected office payload: %+v", pop.Office)
	}
	if !pop.Available {
		t.Fatalf("office with no unavailable periods must be available")
	}
	if pop.Anchor.X != 110 || pop.Anchor.Y != 120 {
		t.Fatalf("expected page anchor (110,120), got (%v,%v)", pop.Anchor.X, pop.Anchor.Y)
	}
}

func TestResolveAtNonOfficeZoneClearsPopover(t *testing.T) {
	dir := &fakeDirectory{offices: []models.OfficeSummary{testOffice()}}
	v, err := Open(context.Background(), "doc-1", &fakeLoader{doc: testDocument()}, dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	if pop := v.ResolveAt(models.Point{X: 350, Y: 50}, Stage{Scale: 1}); pop != nil {
		t.Fatalf("category zone must not produce a popover, got %+v", pop)
	}
	if pop := v.ResolveAt(models.Point{X: 900, Y: 700}, Stage{Scale: 1}); pop != nil {
		t.Fatalf("empty canvas must not produce a popover, got %+v", pop)
	}
}

func TestResolveAtZeroScaleDefaultsToIdentity(t *testing.T) {
	dir := &fakeDirectory{offices: []models.OfficeSummary{testOffice()}}
	v, err := Open(context.Background(), "doc-1", &fakeLoader{doc: testDocument()}, dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	pop := v.ResolveAt(models.Point{X: 50, Y: 50}, Stage{})
	if pop == nil {
		t.Fatalf("expected popover")
	}
	if pop.Anchor.X != 50 || pop.Anchor.Y != 50 {
		t.Fatalf("zero scale must behave as 1, got anchor (%v,%v)", pop.Anchor.X, pop.Anchor.Y)
	}
}

func TestAvailabilityAgainstUnavailablePeriods(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	office := testOffice()
	office.UnavailablePeriods = []models.Period{
		{From: now.Add(-time.Hour), To: now.Add(time.Hour)},
	}

	dir := &fakeDirectory{offices: []models.OfficeSummary{office}}
	v, err := Open(context.Background(), "doc-1", &fakeLoader{doc: testDocument()}, dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	v.SetClock(func() time.Time { return now })

	pop := v.ResolveAt(models.Point{X: 50, Y: 50}, Stage{Scale: 1})
	if pop == nil {
		t.Fatalf("expected popover")
	}
	if pop.Available {
		t.Fatalf("office inside an unavailable period must read unavailable")
	}

	v.SetClock(func() time.Time { return now.Add(2 * time.Hour) })
	pop = v.ResolveAt(models.Point{X: 50, Y: 50}, Stage{Scale: 1})
	if !pop.Available {
		t.Fatalf("office past its unavailable period must read available")
	}
}

func TestResolveAtTopmostZoneWins(t *testing.T) {
	doc := testDocument()
	// Вторая офисная зона поверх первой в том же месте.
	doc.Map.Shapes = append(doc.Map.Shapes, &models.RectShape{BoxGeometry: models.BoxGeometry{
		ID: "zone-top", X: 0, Y: 0, Width: 200, Height: 200,
		Transform: models.IdentityTransform(),
		SpaceAssociated: &models.SpaceAssociation{
			Label:    "Bureau A2",
			IsOffice: true,
			Office:   &models.OfficeRef{ID: 8, Name: "Bureau A2"},
		},
	}})

	top := testOffice()
	top.ID = 8
	top.Name = "Bureau A2"
	dir := &fakeDirectory{offices: []models.OfficeSummary{testOffice(), top}}

	v, err := Open(context.Background(), "doc-1", &fakeLoader{doc: doc}, dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	pop := v.ResolveAt(models.Point{X: 50, Y: 50}, Stage{Scale: 1})
	if pop == nil || pop.Office.ID != 8 {
		t.Fatalf("expected topmost zone office 8, got %+v", pop)
	}
}
