package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ============================================================
// SQLite Plan Repository
// ============================================================

var ErrNotFound = errors.New("plan not found")

type PlanInfo struct {
	ID        string    `json:"id"`
	Version   int       `json:"version"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Repository struct {
	db *sql.DB
}

func New(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Init создает таблицу планов
func (r *Repository) Init(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS plans (
            id         TEXT PRIMARY KEY,
            version    INTEGER NOT NULL,
            payload    TEXT NOT NULL,
            updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
        )
    `)
	if err != nil {
		return fmt.Errorf("create plans table: %w", err)
	}
	return nil
}

func (r *Repository) Save(ctx context.Context, id string, version int, payload []byte) error {
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO plans (id, version, payload, updated_at)
        VALUES (?, ?, ?, CURRENT_TIMESTAMP)
        ON CONFLICT(id) DO UPDATE SET
            version = excluded.version,
            payload = excluded.payload,
            updated_at = CURRENT_TIMESTAMP
    `, id, version, string(payload))
	if err != nil {
		return fmt.Errorf("save plan: %w", err)
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, id string) ([]byte, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT payload FROM plans WHERE id = ?
    `, id)

	var payload string
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return []byte(payload), nil
}

func (r *Repository) List(ctx context.Context) ([]PlanInfo, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, version, updated_at FROM plans ORDER BY updated_at DESC
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PlanInfo
	for rows.Next() {
		var info PlanInfo
		if err := rows.Scan(&info.ID, &info.Version, &info.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM plans WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
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
