package editor

import "floormap/internal/plan/models"

// ============================================================
// Office pool
// ============================================================

// OfficePool — офисы, ещё доступные для привязки в этой сессии.
// Чисто in-memory: наружу пул утекает только через spaceAssociated
// сохранённой сцены. Возврат без дедупликации — при испорченном
// документе с двойной ссылкой побеждает последняя запись.
type OfficePool struct {
	offices []models.OfficeRef
}

func NewOfficePool(offices []models.OfficeRef) *OfficePool {
	pool := &OfficePool{offices: make([]models.OfficeRef, len(offices))}
	copy(pool.offices, offices)
	return pool
}

func (p *OfficePool) Available() []models.OfficeRef {
	out := make([]models.OfficeRef, len(p.offices))
	copy(out, p.offices)
	return out
}

// Take изымает офис из пула.
func (p *OfficePool) Take(id int64) (models.OfficeRef, bool) {
	for i, ref := range p.offices {
		if ref.ID == id {
			p.offices = append(p.offices[:i], p.offices[i+1:]...)
			return ref, true
		}
	}
	return models.OfficeRef{}, false
}

// Return возвращает офис в пул (после удаления фигуры или замены
// привязки).
func (p *OfficePool) Return(ref models.OfficeRef) {
	p.offices = append(p.offices, ref)
}
