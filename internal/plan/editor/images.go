package editor

import (
	"context"
	"log"

	"floormap/internal/plan/imaging"
	"floormap/internal/plan/models"
)

// ============================================================
// Raster insertion
// ============================================================

// Asset — элемент фиксированной библиотеки растровых ассетов.
type Asset struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Позиция и размер по умолчанию для вставленной картинки.
const (
	defaultImageX    = 40.0
	defaultImageY    = 40.0
	defaultImageSize = 120.0
)

// InsertImage декодирует ассет и добавляет его на сцену. До удачного
// декодирования записи в сцене нет; ошибка оставляет сцену нетронутой.
func (e *Editor) InsertImage(ctx context.Context, asset Asset) error {
	bitmap, err := imaging.FetchDecode(ctx, e.imageFetcher(), asset.URL)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.scene.Images = append(e.scene.Images, &models.ImageOnStage{
		ID:        e.newID(),
		URL:       asset.URL,
		X:         defaultImageX,
		Y:         defaultImageY,
		Width:     defaultImageSize,
		Height:    defaultImageSize,
		Transform: models.IdentityTransform(),
		Bitmap:    bitmap,
	})
	return nil
}

// InsertImageAsync — fire-and-forget вставка: цикл взаимодействия не
// ждёт декодирования. done опционален.
func (e *Editor) InsertImageAsync(ctx context.Context, asset Asset, done func(error)) {
	go func() {
		err := e.InsertImage(ctx, asset)
		if err != nil {
			log.Printf("[EDITOR] insert image %s: %v", asset.URL, err)
		}
		if done != nil {
			done(err)
		}
	}()
}

func (e *Editor) imageFetcher() imaging.Fetcher {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fetch
}
