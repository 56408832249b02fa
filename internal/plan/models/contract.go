package models

// ============================================================
// Persistence contract
// ============================================================

// SaveMapInput — полный документ на сохранение. Картинки сериализуются
// без bitmap-а (остаётся только URL).
type SaveMapInput struct {
	Name        string  `json:"name"`
	StageWidth  float64 `json:"stageWidth"`
	StageHeight float64 `json:"stageHeight"`
	Map         Scene   `json:"map"`
}

type SaveResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}
