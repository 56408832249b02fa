package editor

import (
	"context"
	"errors"

	"floormap/internal/plan/models"
)

// ============================================================
// Save flow
// ============================================================

// Saver — контракт адаптера персистентности со стороны редактора.
type Saver interface {
	SaveMapDocument(ctx context.Context, input models.SaveMapInput) (models.SaveResult, error)
}

var (
	ErrNameRequired = errors.New("map name is required")
	ErrEmptyScene   = errors.New("draw at least one shape before saving")
	ErrNoOfficeZone = errors.New("link at least one zone to an office before saving")
	ErrSaveInFlight = errors.New("a save is already in progress")
)

// ValidateSaveInput — клиентская валидация перед сохранением; та же
// проверка выполняется сервером map service.
func ValidateSaveInput(in models.SaveMapInput) error {
	if in.Name == "" {
		return ErrNameRequired
	}
	if len(in.Map.Shapes) == 0 {
		return ErrEmptyScene
	}

	for _, shape := range in.Map.Shapes {
		assoc := shape.Association()
		if assoc != nil && assoc.IsOffice && assoc.Office != nil && assoc.Office.ID != 0 {
			return nil
		}
	}
	return ErrNoOfficeZone
}

// Save валидирует сцену и отдаёт документ адаптеру. При любом исходе
// сцена в памяти не трогается; повторный save во время незавершённого
// отклоняется на уровне UI-защёлки.
func (e *Editor) Save(ctx context.Context, name string, saver Saver) (models.SaveResult, error) {
	e.mu.Lock()
	if e.saving {
		e.mu.Unlock()
		return models.SaveResult{}, ErrSaveInFlight
	}

	input := models.SaveMapInput{
		Name:        name,
		StageWidth:  e.stageWidth,
		StageHeight: e.stageHeight,
		Map:         *e.scene,
	}

	if err := ValidateSaveInput(input); err != nil {
		e.mu.Unlock()
		return models.SaveResult{Success: false, Message: err.Error()}, err
	}

	e.saving = true
	e.mu.Unlock()

	result, err := saver.SaveMapDocument(ctx, input)

	e.mu.Lock()
	e.saving = false
	e.mu.Unlock()

	if err != nil {
		return models.SaveResult{Success: false, Message: err.Error()}, err
	}
	return result, nil
}
