package export

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/leadforge/leadforge/internal/lead"
)

const leadsSchema = `
CREATE TABLE IF NOT EXISTS leads (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	identity TEXT NOT NULL,
	source   TEXT,
	industry TEXT,
	location TEXT,
	fields   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_leads_source ON leads(source);
`

// writeSQLite stores each record's reserved fields as columns and the full
// field map as a JSON blob, which keeps the schema stable while field sets
// vary by source.
func (e *Exporter) writeSQLite(path string, _ []string, recs []*lead.Record) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.Exec(leadsSchema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO leads (identity, source, industry, location, fields) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range recs {
		blob, err := json.Marshal(r)
		if err != nil {
			return err
		}
		_, err = stmt.Exec(
			r.Identity(),
			r.Get(lead.FieldSource),
			r.Get(lead.FieldIndustry),
			r.Get(lead.FieldLocation),
			string(blob),
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}
