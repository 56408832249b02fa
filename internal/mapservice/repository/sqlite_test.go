package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"floormap/internal/plan/models"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()

	db, err := OpenSQLite(filepath.Join(t.TempDir(), "maps.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	repo := New(db)
	if err := repo.Init(context.Background(), filepath.Join("..", "..", "..", "migrations", "001_init_maps.sql")); err != nil {
		t.Fatalf("init repository: %v", err)
	}
	return repo
}

func sampleInput(name string) models.SaveMapInput {
	return models.SaveMapInput{
		Name:        name,
		StageWidth:  1200,
		StageHeight: 800,
		Map: models.Scene{
			Shapes: models.ShapeList{
				&models.RectShape{BoxGeometry: models.BoxGeometry{
					ID: "r1", X: 100, Y: 100, Width: 200, Height: 120,
					Transform: models.IdentityTransform(),
					SpaceAssociated: &models.SpaceAssociation{
						Label:    "Bureau A1",
						IsOffice: true,
						Office:   &models.OfficeRef{ID: 1, Name: "Bureau A1"},
					},
				}},
			},
		},
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	result, err := repo.SaveMapDocument(ctx, sampleInput("Etage 1"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !result.Success || result.ID == "" {
		t.Fatalf("unexpected save result: %+v", result)
	}

	doc, err := repo.LoadMapDocument(ctx, result.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc.Name != "Etage 1" || doc.StageWidth != 1200 {
		t.Fatalf("unexpected document: %+v", doc)
	}
	if len(doc.Map.Shapes) != 1 {
		t.Fatalf("expected one shape, got %d", len(doc.Map.Shapes))
	}

	rect, ok := doc.Map.Shapes[0].(*models.RectShape)
	if !ok {
		t.Fatalf("expected *RectShape, got %T", doc.Map.Shapes[0])
	}
	if rect.SpaceAssociated == nil || rect.SpaceAssociated.Office.ID != 1 {
		t.Fatalf("association lost in round trip: %+v", rect.SpaceAssociated)
	}
}

func TestLoadUnknownDocument(t *testing.T) {
	repo := newTestRepository(t)
	if _, err := repo.LoadMapDocument(context.Background(), "missing"); err == nil {
		t.Fatalf("expected not found error")
	}
}

func TestUpdateMapDocument(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	result, err := repo.SaveMapDocument(ctx, sampleInput("Etage 1"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	updated := sampleInput("Etage 1 bis")
	if _, err := repo.UpdateMapDocument(ctx, result.ID, updated); err != nil {
		t.Fatalf("update: %v", err)
	}

	doc, err := repo.LoadMapDocument(ctx, result.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc.Name != "Etage 1 bis" {
		t.Fatalf("expected renamed document, got %q", doc.Name)
	}
	if doc.UpdatedAt == "" {
		t.Fatalf("expected updated_at to be set")
	}

	if _, err := repo.UpdateMapDocument(ctx, "missing", updated); err == nil {
		t.Fatalf("updating a missing document must fail")
	}
}

func TestListMapDocuments(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	if _, err := repo.SaveMapDocument(ctx, sampleInput("Etage 1")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := repo.SaveMapDocument(ctx, sampleInput("Etage 2")); err != nil {
		t.Fatalf("save: %v", err)
	}

	list, err := repo.ListMapDocuments(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(list))
	}
}

func TestListOfficesByIDs(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	offices, err := repo.ListOfficesByIDs(ctx, []int64{1, 2, 99})
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if len(offices) != 2 {
		t.Fatalf("unknown ids must be skipped, got %d offices", len(offices))
	}
	if offices[0].ID != 1 || offices[0].Name != "Bureau A1" {
		t.Fatalf("unexpected first office: %+v", offices[0])
	}

	offices, err = repo.ListOfficesByIDs(ctx, nil)
	if err != nil || offices != nil {
		t.Fatalf("empty lookup must be a no-op, got %v %v", offices, err)
	}
}

func TestOfficePeriodsAndFeaturesLoaded(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	from := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	to := from.Add(8 * time.Hour)

	if _, err := repo.db.ExecContext(ctx, `
        INSERT INTO office_features (office_id, label) VALUES (1, 'Ecran'), (1, 'Tableau blanc')
    `); err != nil {
		t.Fatalf("seed features: %v", err)
	}
	if _, err := repo.db.ExecContext(ctx, `
        INSERT INTO office_unavailable_periods (office_id, from_ts, to_ts) VALUES (1, ?, ?)
    `, from.Format(time.RFC3339), to.Format(time.RFC3339)); err != nil {
		t.Fatalf("seed periods: %v", err)
	}

	offices, err := repo.ListOfficesByIDs(ctx, []int64{1})
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if len(offices) != 1 {
		t.Fatalf("expected one office, got %d", len(offices))
	}

	office := offices[0]
	if len(office.Features) != 2 {
		t.Fatalf("expected 2 features, got %+v", office.Features)
	}
	if len(office.UnavailablePeriods) != 1 {
		t.Fatalf("expected 1 period, got %+v", office.UnavailablePeriods)
	}
	if office.AvailableAt(from.Add(time.Hour)) {
		t.Fatalf("office must be unavailable inside the period")
	}
	if !office.AvailableAt(to.Add(time.Hour)) {
		t.Fatalf("office must be available after the period")
	}
}

func TestSeededDirectories(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	refs, err := repo.ListAllOffices(ctx)
	if err != nil {
		t.Fatalf("list offices: %v", err)
	}
	if len(refs) != 4 {
		t.Fatalf("expected 4 seeded offices, got %d", len(refs))
	}

	assets, err := repo.ListAssets(ctx)
	if err != nil {
		t.Fatalf("list assets: %v", err)
	}
	if len(assets) != 5 {
		t.Fatalf("expected 5 seeded assets, got %d", len(assets))
	}
}
