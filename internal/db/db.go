package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/fs-kitamura/factorplot/internal/dataset"
	"github.com/fs-kitamura/factorplot/internal/stats"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS datasets (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE,
    x_label TEXT NOT NULL,
    series_label TEXT NOT NULL,
    value_label TEXT NOT NULL,
    source TEXT,
    created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_datasets_created ON datasets(created_at);

CREATE TABLE IF NOT EXISTS observations (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    dataset_id INTEGER NOT NULL REFERENCES datasets(id) ON DELETE CASCADE,
    x TEXT NOT NULL,
    series TEXT NOT NULL,
    value REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_observations_dataset ON observations(dataset_id);
`

type DB struct {
	*sql.DB
	path string
}

func (db *DB) Path() string {
	return db.path
}

func Open(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := dbPath
	if strings.Contains(dbPath, "?") {
		dsn += "&_pragma=foreign_keys(1)"
	} else {
		dsn += "?_pragma=foreign_keys(1)"
	}

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := sqlDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if _, err := sqlDB.Exec(schemaSQL); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return &DB{DB: sqlDB, path: dbPath}, nil
}

// Meta describes a stored dataset without its rows.
type Meta struct {
	ID          int64
	Name        string
	XLabel      string
	SeriesLabel string
	ValueLabel  string
	Source      string
	CreatedAt   string
}

// SaveDataset stores a dataset and all its observations in one
// transaction. The dataset name must be unique.
func (db *DB) SaveDataset(ds *dataset.Dataset, source string) (int64, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		INSERT INTO datasets (name, x_label, series_label, value_label, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		ds.Name, ds.XLabel, ds.SeriesLabel, ds.ValueLabel, source,
		time.Now().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("insert dataset %s: %w", ds.Name, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	stmt, err := tx.Prepare(`INSERT INTO observations (dataset_id, x, series, value) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, obs := range ds.Observations {
		if _, err := stmt.Exec(id, obs.X, obs.Series, obs.Value); err != nil {
			return 0, fmt.Errorf("insert observation: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// GetMeta fetches a stored dataset's metadata by name.
// Returns sql.ErrNoRows when the name is unknown.
func (db *DB) GetMeta(name string) (*Meta, error) {
	var m Meta
	var source sql.NullString
	err := db.QueryRow(`
		SELECT id, name, x_label, series_label, value_label, source, created_at
		FROM datasets WHERE name = ?`, name).Scan(
		&m.ID, &m.Name, &m.XLabel, &m.SeriesLabel, &m.ValueLabel, &source, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	m.Source = source.String
	return &m, nil
}

// GetDataset reassembles a stored dataset, rows included, in insert order.
func (db *DB) GetDataset(name string) (*dataset.Dataset, error) {
	m, err := db.GetMeta(name)
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(`
		SELECT x, series, value FROM observations
		WHERE dataset_id = ? ORDER BY id`, m.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ds := &dataset.Dataset{
		Name:        m.Name,
		XLabel:      m.XLabel,
		SeriesLabel: m.SeriesLabel,
		ValueLabel:  m.ValueLabel,
	}
	for rows.Next() {
		var obs stats.Observation
		if err := rows.Scan(&obs.X, &obs.Series, &obs.Value); err != nil {
			return nil, err
		}
		ds.Observations = append(ds.Observations, obs)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ds, nil
}

// ListDatasets returns stored dataset metadata, newest first.
func (db *DB) ListDatasets(limit int) ([]Meta, error) {
	query := `
		SELECT id, name, x_label, series_label, value_label, source, created_at
		FROM datasets ORDER BY created_at DESC`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var metas []Meta
	for rows.Next() {
		var m Meta
		var source sql.NullString
		if err := rows.Scan(&m.ID, &m.Name, &m.XLabel, &m.SeriesLabel, &m.ValueLabel, &source, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.Source = source.String
		metas = append(metas, m)
	}
	return metas, rows.Err()
}

func (db *DB) CountObservations(datasetID int64) (int, error) {
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM observations WHERE dataset_id = ?`, datasetID).Scan(&count)
	return count, err
}

// DeleteDataset removes a dataset and, via cascade, its observations.
func (db *DB) DeleteDataset(name string) error {
	res, err := db.Exec(`DELETE FROM datasets WHERE name = ?`, name)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("dataset not found: %s", name)
	}
	return nil
}

func (db *DB) HasDataset(name string) (bool, error) {
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM datasets WHERE name = ?`, name).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
