package storage

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"mlextractor/internal"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS analyses (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  templatePath TEXT NOT NULL,
  sheet TEXT NOT NULL,
  isMlTemplate INTEGER NOT NULL,
  confidence REAL NOT NULL,
  geometryJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_analyses_path ON analyses(templatePath);

CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  templatePath TEXT NOT NULL,
  productsPath TEXT NOT NULL,
  writeMode TEXT NOT NULL,
  totalProducts INTEGER NOT NULL,
  fieldsFilled INTEGER NOT NULL,
  fieldsSkipped INTEGER NOT NULL,
  reportJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

func (d *DB) InsertAnalysis(templatePath string, geom internal.TemplateGeometry) (int64, error) {
	geomJSON, _ := json.Marshal(geom)
	isML := 0
	if geom.IsMLTemplate {
		isML = 1
	}
	result, err := d.conn.Exec(`
INSERT INTO analyses (templatePath, sheet, isMlTemplate, confidence, geometryJson)
VALUES (?, ?, ?, ?, ?)
`, templatePath, geom.Sheet, isML, geom.Confidence, string(geomJSON))
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (d *DB) InsertRun(templatePath, productsPath string, report internal.FillReport) (int64, error) {
	reportJSON, _ := json.Marshal(report)
	result, err := d.conn.Exec(`
INSERT INTO runs (templatePath, productsPath, writeMode, totalProducts, fieldsFilled, fieldsSkipped, reportJson)
VALUES (?, ?, ?, ?, ?, ?, ?)
`, templatePath, productsPath, string(report.WriteMode), report.TotalProducts,
		report.TotalFieldsFilled, report.TotalFieldsSkipped, string(reportJSON))
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// RunRow is one recorded fill run.
type RunRow struct {
	ID            int64
	TemplatePath  string
	ProductsPath  string
	WriteMode     string
	TotalProducts int
	FieldsFilled  int
	FieldsSkipped int
	CreatedAt     string
}

func (d *DB) ListRuns(limit int) ([]RunRow, error) {
	rows, err := d.conn.Query(`
SELECT id, templatePath, productsPath, writeMode, totalProducts, fieldsFilled, fieldsSkipped, createdAt
FROM runs ORDER BY id DESC LIMIT ?
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRow
	for rows.Next() {
		var row RunRow
		if err := rows.Scan(&row.ID, &row.TemplatePath, &row.ProductsPath, &row.WriteMode,
			&row.TotalProducts, &row.FieldsFilled, &row.FieldsSkipped, &row.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
