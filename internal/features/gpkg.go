package features

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// gpkgOpener reads attribute columns of a GeoPackage feature table.
type gpkgOpener struct{}

func (gpkgOpener) CanOpen(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".gpkg")
}

func (gpkgOpener) Open(path, layer string) (Collection, error) {
	// sqlite would create a missing file
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open geopackage: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open geopackage: %w", err)
	}
	defer func() { _ = db.Close() }()

	if layer == "" {
		err := db.QueryRow(`SELECT table_name FROM gpkg_contents WHERE data_type = 'features' ORDER BY table_name LIMIT 1`).Scan(&layer)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("geopackage %s has no feature layers", filepath.Base(path))
		}
		if err != nil {
			return nil, fmt.Errorf("list layers: %w", err)
		}
	}
	geom := geometryColumns(db, layer)
	fields, err := tableColumns(db, layer)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("layer %q not found in %s", layer, filepath.Base(path))
	}

	rows, err := db.Query(`SELECT * FROM ` + quoteIdent(layer))
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", layer, err)
	}
	defer func() { _ = rows.Close() }()
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}
	var out []map[string]any
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		rec := make(map[string]any, len(cols))
		for i, c := range cols {
			if geom[c] {
				continue
			}
			if b, ok := vals[i].([]byte); ok {
				rec[c] = string(b)
				continue
			}
			rec[c] = vals[i]
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", layer, err)
	}

	attrs := fields[:0]
	for _, f := range fields {
		if !geom[f] {
			attrs = append(attrs, f)
		}
	}
	return NewMemory(layer, attrs, out), nil
}

func tableColumns(db *sql.DB, table string) ([]string, error) {
	rows, err := db.Query(`PRAGMA table_info(` + quoteIdent(table) + `)`)
	if err != nil {
		return nil, fmt.Errorf("table info %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()
	var cols []string
	for rows.Next() {
		var (
			cid     int
			name    string
			ctype   string
			notnull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("scan table info: %w", err)
		}
		cols = append(cols, name)
	}
	return cols, rows.Err()
}

// geometryColumns returns the geometry column names of table; a plain SQLite
// file without gpkg_geometry_columns has none.
func geometryColumns(db *sql.DB, table string) map[string]bool {
	out := map[string]bool{}
	rows, err := db.Query(`SELECT column_name FROM gpkg_geometry_columns WHERE table_name = ?`, table)
	if err != nil {
		return out
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var c string
		if rows.Scan(&c) == nil {
			out[c] = true
		}
	}
	return out
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
