package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"floormap/internal/plan/editor"
	"floormap/internal/plan/models"
	"floormap/internal/plan/viewer"

	"github.com/google/uuid"
)

// ============================================================
// SQLite Repository
// ============================================================

// Repository — реализация адаптера персистентности: документы карт,
// справочник офисов, библиотека ассетов.
type Repository struct {
	db *sql.DB
}

var (
	_ editor.Saver           = (*Repository)(nil)
	_ viewer.Loader          = (*Repository)(nil)
	_ viewer.OfficeDirectory = (*Repository)(nil)
)

func New(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Init запускает миграции и сидит стартовые офисы и ассеты.
func (r *Repository) Init(ctx context.Context, migrationsPath string) error {
	if err := r.runMigrations(migrationsPath); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	if err := r.seedOffices(ctx); err != nil {
		return fmt.Errorf("seed offices: %w", err)
	}
	return r.seedAssets(ctx)
}

// ============================================================
// Map documents
// ============================================================

// SaveMapDocument сохраняет новый документ целиком, одним действием.
func (r *Repository) SaveMapDocument(ctx context.Context, input models.SaveMapInput) (models.SaveResult, error) {
	mapJSON, err := json.Marshal(input.Map)
	if err != nil {
		return models.SaveResult{}, fmt.Errorf("encode scene: %w", err)
	}

	id := uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339)

	_, err = r.db.ExecContext(ctx, `
        INSERT INTO map_documents (id, name, stage_width, stage_height, map_json, created_at)
        VALUES (?, ?, ?, ?, ?, ?)
    `, id, input.Name, input.StageWidth, input.StageHeight, string(mapJSON), now)
	if err != nil {
		return models.SaveResult{}, fmt.Errorf("insert map: %w", err)
	}

	return models.SaveResult{Success: true, Message: "map saved", ID: id}, nil
}

// UpdateMapDocument перезаписывает сцену существующего документа.
func (r *Repository) UpdateMapDocument(ctx context.Context, id string, input models.SaveMapInput) (models.SaveResult, error) {
	mapJSON, err := json.Marshal(input.Map)
	if err != nil {
		return models.SaveResult{}, fmt.Errorf("encode scene: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	res, err := r.db.ExecContext(ctx, `
        UPDATE map_documents
        SET name = ?, stage_width = ?, stage_height = ?, map_json = ?, updated_at = ?
        WHERE id = ?
    `, input.Name, input.StageWidth, input.StageHeight, string(mapJSON), now, id)
	if err != nil {
		return models.SaveResult{}, fmt.Errorf("update map: %w", err)
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return models.SaveResult{}, fmt.Errorf("not found")
	}
	return models.SaveResult{Success: true, Message: "map updated", ID: id}, nil
}

func (r *Repository) LoadMapDocument(ctx context.Context, id string) (*models.MapDocument, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT id, name, stage_width, stage_height, map_json, created_at, COALESCE(updated_at, '')
        FROM map_documents
        WHERE id = ?
    `, id)

	var doc models.MapDocument
	var mapJSON string
	if err := row.Scan(&doc.ID, &doc.Name, &doc.StageWidth, &doc.StageHeight, &mapJSON, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("not found")
		}
		return nil, err
	}

	if err := json.Unmarshal([]byte(mapJSON), &doc.Map); err != nil {
		return nil, fmt.Errorf("decode scene: %w", err)
	}
	return &doc, nil
}

func (r *Repository) ListMapDocuments(ctx context.Context) ([]models.MapSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, name, created_at, COALESCE(updated_at, '')
        FROM map_documents
        ORDER BY created_at DESC
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.MapSummary
	for rows.Next() {
		var s models.MapSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ============================================================
// Office directory
// ============================================================

// ListOfficesByIDs — батч-загрузка офисов вместе с фичами и периодами
// недоступности. Неизвестные id молча пропускаются.
func (r *Repository) ListOfficesByIDs(ctx context.Context, ids []int64) ([]models.OfficeSummary, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx, `
        SELECT id, name, max_seat_capacity, image_url
        FROM offices
        WHERE id IN (`+placeholders+`)
        ORDER BY id
    `, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var offices []models.OfficeSummary
	index := map[int64]int{}
	for rows.Next() {
		var o models.OfficeSummary
		if err := rows.Scan(&o.ID, &o.Name, &o.MaxSeatCapacity, &o.ImageURL); err != nil {
			return nil, err
		}
		index[o.ID] = len(offices)
		offices = append(offices, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(offices) == 0 {
		return nil, nil
	}

	if err := r.loadFeatures(ctx, placeholders, args, offices, index); err != nil {
		return nil, err
	}
	if err := r.loadPeriods(ctx, placeholders, args, offices, index); err != nil {
		return nil, err
	}
	return offices, nil
}

// ListAllOffices — полный справочник для пула привязки редактора.
func (r *Repository) ListAllOffices(ctx context.Context) ([]models.OfficeRef, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM offices ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.OfficeRef
	for rows.Next() {
		var ref models.OfficeRef
		if err := rows.Scan(&ref.ID, &ref.Name); err != nil {
			return nil, err
		}
		out = append(out, ref)
	}
	return out, rows.Err()
}

func (r *Repository) loadFeatures(ctx context.Context, placeholders string, args []any, offices []models.OfficeSummary, index map[int64]int) error {
	rows, err := r.db.QueryContext(ctx, `
        SELECT office_id, label
        FROM office_features
        WHERE office_id IN (`+placeholders+`)
    `, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var officeID int64
		var label string
		if err := rows.Scan(&officeID, &label); err != nil {
			return err
		}
		if i, ok := index[officeID]; ok {
			offices[i].Features = append(offices[i].Features, models.OfficeFeature{Label: label})
		}
	}
	return rows.Err()
}

func (r *Repository) loadPeriods(ctx context.Context, placeholders string, args []any, offices []models.OfficeSummary, index map[int64]int) error {
	rows, err := r.db.QueryContext(ctx, `
        SELECT office_id, from_ts, to_ts
        FROM office_unavailable_periods
        WHERE office_id IN (`+placeholders+`)
    `, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var officeID int64
		var fromTS, toTS string
		if err := rows.Scan(&officeID, &fromTS, &toTS); err != nil {
			return err
		}

		from, err := time.Parse(time.RFC3339, fromTS)
		if err != nil {
			continue
		}
		to, err := time.Parse(time.RFC3339, toTS)
		if err != nil {
			continue
		}

		if i, ok := index[officeID]; ok {
			offices[i].UnavailablePeriods = append(offices[i].UnavailablePeriods, models.Period{From: from, To: to})
		}
	}
	return rows.Err()
}

// ============================================================
// Asset library
// ============================================================

func (r *Repository) ListAssets(ctx context.Context) ([]editor.Asset, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, url FROM assets ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []editor.Asset
	for rows.Next() {
		var a editor.Asset
		if err := rows.Scan(&a.ID, &a.Name, &a.URL); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ============================================================
// Migrations & Seeding
// ============================================================

func (r *Repository) runMigrations(migrationsPath string) error {
	data, err := os.ReadFile(migrationsPath)
	if err != nil {
		return fmt.Errorf("read migration: %w", err)
	}
	if _, err := r.db.Exec(string(data)); err != nil {
		return fmt.Errorf("apply migration: %w", err)
	}
	return nil
}

func (r *Repository) seedOffices(ctx context.Context) error {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM offices`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	seed := []struct {
		id       int64
		name     string
		capacity int
	}{
		{1, "Bureau A1", 4},
		{2, "Bureau A2", 6},
		{3, "Bureau B1", 2},
		{4, "Open Space Nord", 12},
	}

	for _, o := range seed {
		_, err := r.db.ExecContext(ctx, `
            INSERT INTO offices (id, name, max_seat_capacity, image_url)
            VALUES (?, ?, ?, ?)
        `, o.id, o.name, o.capacity, "")
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) seedAssets(ctx context.Context) error {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM assets`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	seed := []editor.Asset{
		{ID: "desk", Name: "Bureau", URL: "/static/assets/desk.png"},
		{ID: "chair", Name: "Chaise", URL: "/static/assets/chair.png"},
		{ID: "plant", Name: "Plante", URL: "/static/assets/plant.png"},
		{ID: "printer", Name: "Imprimante", URL: "/static/assets/printer.png"},
		{ID: "sofa", Name: "Canape", URL: "/static/assets/sofa.png"},
	}

	for _, a := range seed {
		_, err := r.db.ExecContext(ctx, `
            INSERT INTO assets (id, name, url) VALUES (?, ?, ?)
        `, a.ID, a.Name, a.URL)
		if err != nil {
			return err
		}
	}
	return nil
}

// OpenSQLite открывает sqlite по указанному пути.
func OpenSQLite(dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?cache=shared&mode=rwc&_pragma=busy_timeout=5000", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}
