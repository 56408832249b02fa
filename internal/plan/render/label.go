package render

import (
	"fmt"
	"math"
	"strings"

	"floormap/internal/plan/models"
)

// ============================================================
// Zone labels
// ============================================================

const labelFontSize = 14.0

// Приближённая ширина глифа; точных метрик шрифта на сервере нет,
// клиентский канвас меряет той же пропорцией.
const labelGlyphWidth = labelFontSize * 0.6

// labelLine — строка после переноса, с уже измеренной шириной.
type labelLine struct {
	text  string
	width float64
}

// labelOverlay рисует подпись зоны по центру локального bounding box
// фигуры. Двухпроходно: сначала перенос слов с измерением строк, потом
// пересчёт смещений по фактическим ширинам. Оба прохода выполняются на
// каждый рендер, так что смена текста или ширины фигуры всегда даёт
// свежие смещения.
func (r *Renderer) labelOverlay(assoc *models.SpaceAssociation, w, h float64) string {
	if assoc == nil || assoc.Label == "" {
		return ""
	}

	maxWidth := math.Abs(w)
	if maxWidth < labelGlyphWidth {
		return ""
	}

	// Проход 1: раскладка.
	lines := layoutLabel(assoc.Label, maxWidth)
	if len(lines) == 0 {
		return ""
	}

	// Проход 2: центрирование по измеренным ширинам.
	blockHeight := float64(len(lines)) * labelFontSize * 1.2
	top := h/2 - blockHeight/2 + labelFontSize

	var b strings.Builder
	b.WriteString(fmt.Sprintf(`<text font-size="%s" fill="rgba(0,0,0,0.85)">`, formatFloat(labelFontSize)))
	for i, line := range lines {
		dx := (w - line.width) / 2
		dy := top + float64(i)*labelFontSize*1.2
		b.WriteString(fmt.Sprintf(`<tspan x="%s" y="%s">%s</tspan>`,
			formatFloat(dx), formatFloat(dy), escapeText(line.text)))
	}
	b.WriteString(`</text>`)
	return b.String()
}

// layoutLabel переносит слова так, чтобы ни одна строка не вышла за
// maxWidth, и меряет каждую строку.
func layoutLabel(text string, maxWidth float64) []labelLine {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []labelLine
	current := words[0]
	for _, word := range words[1:] {
		candidate := current + " " + word
		if measureLabel(candidate) > maxWidth {
			lines = append(lines, labelLine{text: current, width: measureLabel(current)})
			current = word
			continue
		}
		current = candidate
	}
	lines = append(lines, labelLine{text: current, width: measureLabel(current)})
	return lines
}

func measureLabel(s string) float64 {
	return float64(len([]rune(s))) * labelGlyphWidth
}
