package viewer

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"floormap/internal/plan/geometry"
	"floormap/internal/plan/imaging"
	"floormap/internal/plan/models"
)

// ============================================================
// Viewer controller
// ============================================================

// Loader — контракт адаптера персистентности со стороны просмотра.
type Loader interface {
	LoadMapDocument(ctx context.Context, id string) (*models.MapDocument, error)
}

// OfficeDirectory — батч-поиск офисов по списку id, чтобы на ховере
// показывать живые данные, не вшитые в сохранённую сцену.
type OfficeDirectory interface {
	ListOfficesByIDs(ctx context.Context, ids []int64) ([]models.OfficeSummary, error)
}

// Viewer держит загруженный документ как неизменяемый на время
// просмотра; мутируются только bitmap-ы картинок при rehydration.
type Viewer struct {
	mu      sync.Mutex
	doc     *models.MapDocument
	offices map[int64]models.OfficeSummary
	fetch   imaging.Fetcher
	now     func() time.Time
}

// Open загружает документ и разрешает упомянутые в сцене офисы одним
// батч-запросом. Bitmap-ы восстанавливаются отдельно (Rehydrate*).
func Open(ctx context.Context, id string, loader Loader, dir OfficeDirectory) (*Viewer, error) {
	doc, err := loader.LoadMapDocument(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load map %s: %w", id, err)
	}

	v := &Viewer{
		doc:     doc,
		offices: map[int64]models.OfficeSummary{},
		fetch:   imaging.NewHTTPFetcher(),
		now:     time.Now,
	}

	ids := referencedOfficeIDs(&doc.Map)
	if len(ids) > 0 {
		summaries, err := dir.ListOfficesByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("resolve offices: %w", err)
		}
		for _, o := range summaries {
			v.offices[o.ID] = o
		}
	}

	return v, nil
}

func (v *Viewer) Document() *models.MapDocument {
	return v.doc
}

// SetImageFetcher подменяет загрузчик картинок (тесты).
func (v *Viewer) SetImageFetcher(f imaging.Fetcher) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.fetch = f
}

// SetClock подменяет часы расчёта доступности (тесты).
func (v *Viewer) SetClock(now func() time.Time) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.now = now
}

// ============================================================
// Image rehydration
// ============================================================

// RehydrateImages восстанавливает bitmap-ы из URL после загрузки.
// Неудачная картинка молча пропускается и до следующей попытки просто
// не рисуется.
func (v *Viewer) RehydrateImages(ctx context.Context) {
	for _, img := range v.doc.Map.Images {
		bitmap, err := imaging.FetchDecode(ctx, v.fetcher(), img.URL)
		if err != nil {
			log.Printf("[VIEWER] rehydrate %s: %v", img.URL, err)
			continue
		}

		v.mu.Lock()
		img.Bitmap = bitmap
		v.mu.Unlock()
	}
}

// RehydrateImagesAsync — фоновая rehydration, цикл взаимодействия не
// блокируется.
func (v *Viewer) RehydrateImagesAsync(ctx context.Context) {
	go v.RehydrateImages(ctx)
}

func (v *Viewer) fetcher() imaging.Fetcher {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.fetch
}

// ============================================================
// Hover / click resolution
// ============================================================

// Popover — карточка офиса, показываемая на ховере/клике по зоне.
type Popover struct {
	Office    models.OfficeSummary
	Available bool
	Anchor    models.Point
}

// Stage — экранное положение канвы: смещение и текущий zoom, нужны
// для позиционирования поповера в координатах страницы.
type Stage struct {
	Offset models.Point
	Scale  float64
}

// ResolveAt — верхняя офисная зона под точкой канвы; для прочих фигур
// и пустого места поповер снимается (nil).
func (v *Viewer) ResolveAt(p models.Point, stage Stage) *Popover {
	shape := v.hitTest(p)
	if shape == nil {
		return nil
	}

	assoc := shape.Association()
	if assoc == nil || !assoc.IsOffice || assoc.Office == nil {
		return nil
	}

	office, ok := v.offices[assoc.Office.ID]
	if !ok {
		return nil
	}

	scale := stage.Scale
	if scale == 0 {
		scale = 1
	}

	v.mu.Lock()
	now := v.now()
	v.mu.Unlock()

	return &Popover{
		Office:    office,
		Available: office.AvailableAt(now),
		Anchor: models.Point{
			X: p.X*scale + stage.Offset.X,
			Y: p.Y*scale + stage.Offset.Y,
		},
	}
}

func (v *Viewer) hitTest(p models.Point) models.Shape {
	shapes := v.doc.Map.Shapes
	for i := len(shapes) - 1; i >= 0; i-- {
		if geometry.ShapeContains(shapes[i], p) {
			return shapes[i]
		}
	}
	return nil
}

// ============================================================
// Helpers
// ============================================================

// referencedOfficeIDs собирает id офисов из spaceAssociated сцены,
// без дублей, в стабильном порядке.
func referencedOfficeIDs(scene *models.Scene) []int64 {
	seen := map[int64]bool{}
	var ids []int64

	for _, shape := range scene.Shapes {
		assoc := shape.Association()
		if assoc == nil || !assoc.IsOffice || assoc.Office == nil {
			continue
		}
		if id := assoc.Office.ID; id != 0 && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
