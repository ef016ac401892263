// Package export writes harvested leads to disk. Four formats share one
// column model; a failure in one format never blocks the others.
package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/leadforge/leadforge/internal/lead"
)

// Format names an output format.
type Format string

const (
	FormatExcel  Format = "excel"
	FormatCSV    Format = "csv"
	FormatJSON   Format = "json"
	FormatSQLite Format = "sqlite"
	FormatAll    Format = "all"
)

// ParseFormat validates a user-supplied format string.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatExcel, FormatCSV, FormatJSON, FormatSQLite, FormatAll:
		return Format(s), nil
	}
	return "", fmt.Errorf("unknown format %q (want excel, csv, json, sqlite or all)", s)
}

// Expand resolves FormatAll to the concrete formats.
func (f Format) Expand() []Format {
	if f == FormatAll {
		return []Format{FormatExcel, FormatCSV, FormatJSON, FormatSQLite}
	}
	return []Format{f}
}

func (f Format) ext() string {
	switch f {
	case FormatExcel:
		return ".xlsx"
	case FormatCSV:
		return ".csv"
	case FormatJSON:
		return ".json"
	case FormatSQLite:
		return ".db"
	}
	return ""
}

// FormatError reports a single format's failure.
type FormatError struct {
	Format Format
	Err    error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("export %s: %v", e.Format, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// Columns a category leads with, in order. Fields outside this list follow
// in first-seen order.
var priorityColumns = map[lead.Category][]string{
	lead.CategoryBusiness:      {"Name", "Address", "Phone", "Website", "Rating", "Email"},
	lead.CategoryPersonal:      {"Name", "Title", "Company", "Email", "Phone"},
	lead.CategoryInstitutional: {"Organization", "Address", "Executive", "Phone", "Website", "Email"},
}

// Source labels that mark a record stream as personal or institutional. The
// column layout follows the data actually present, not the query, so a
// restricted source selection still gets the right columns.
var (
	personalSourceMarks = []string{
		"linkedin", "hunter", "clearbit", "apollo", "zoominfo",
	}
	institutionalSourceMarks = []string{
		"government", "association", "charity", "guidestar", "candid", "educational",
	}
)

// layoutFor picks the column layout from the first record's Source.
func layoutFor(records []*lead.Record, fallback lead.Category) lead.Category {
	if len(records) == 0 {
		if fallback != "" {
			return fallback
		}
		return lead.CategoryBusiness
	}
	src := strings.ToLower(records[0].Source())
	for _, m := range personalSourceMarks {
		if strings.Contains(src, m) {
			return lead.CategoryPersonal
		}
	}
	for _, m := range institutionalSourceMarks {
		if strings.Contains(src, m) {
			return lead.CategoryInstitutional
		}
	}
	return lead.CategoryBusiness
}

// Exporter writes result files into Dir, named Base plus a run timestamp.
type Exporter struct {
	Dir  string
	Base string

	// Category is the fallback column layout for empty record sets; with
	// records present the layout follows the first record's Source.
	Category lead.Category

	// Now is overridable for deterministic file names in tests.
	Now func() time.Time

	Logf func(format string, args ...any)
}

func (e *Exporter) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Exporter) logf(format string, args ...any) {
	if e.Logf != nil {
		e.Logf(format, args...)
		return
	}
	log.Printf(format, args...)
}

// writers is the format dispatch table. Package level so tests can swap an
// entry to force a single format's failure.
var writers = map[Format]func(e *Exporter, path string, cols []string, recs []*lead.Record) error{
	FormatExcel:  (*Exporter).writeExcel,
	FormatCSV:    (*Exporter).writeCSV,
	FormatJSON:   (*Exporter).writeJSON,
	FormatSQLite: (*Exporter).writeSQLite,
}

// Export writes records in every requested format. Formats are independent:
// each either produces its file or contributes a FormatError; the returned
// error is the join of all per-format failures.
func (e *Exporter) Export(records []*lead.Record, formats []Format) (map[Format]string, error) {
	if e.Dir != "" {
		if err := os.MkdirAll(e.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output dir: %w", err)
		}
	}

	cols := e.columns(records)
	stamp := e.now().Format("20060102_150405")

	written := make(map[Format]string, len(formats))
	var errs []error
	for _, f := range formats {
		w, ok := writers[f]
		if !ok {
			errs = append(errs, &FormatError{Format: f, Err: errors.New("no writer registered")})
			continue
		}
		path := filepath.Join(e.Dir, fmt.Sprintf("%s_%s%s", e.base(), stamp, f.ext()))
		if err := w(e, path, cols, records); err != nil {
			e.logf("export %s failed: %v", f, err)
			errs = append(errs, &FormatError{Format: f, Err: err})
			continue
		}
		e.logf("wrote %d leads to %s", len(records), path)
		written[f] = path
	}
	return written, errors.Join(errs...)
}

func (e *Exporter) base() string {
	if e.Base == "" {
		return "leads"
	}
	return sanitizeName(e.Base)
}

// columns returns the export column order: the priority columns of the
// layout chosen by the first record's Source, then every remaining field in
// first-seen order. Category is only the fallback for empty record sets.
func (e *Exporter) columns(records []*lead.Record) []string {
	present := make(map[string]bool)
	var firstSeen []string
	for _, r := range records {
		for _, f := range r.Fields() {
			if !present[f] {
				present[f] = true
				firstSeen = append(firstSeen, f)
			}
		}
	}

	var cols []string
	used := make(map[string]bool)
	for _, c := range priorityColumns[layoutFor(records, e.Category)] {
		if present[c] {
			cols = append(cols, c)
			used[c] = true
		}
	}
	for _, c := range firstSeen {
		if !used[c] {
			cols = append(cols, c)
		}
	}
	return cols
}

func (e *Exporter) writeCSV(path string, cols []string, recs []*lead.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(cols); err != nil {
		return err
	}
	row := make([]string, len(cols))
	for _, r := range recs {
		for i, c := range cols {
			row[i] = r.Get(c)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

func (e *Exporter) writeJSON(path string, _ []string, recs []*lead.Record) error {
	if recs == nil {
		recs = []*lead.Record{}
	}
	b, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}

// sanitizeName keeps file and sheet names portable.
func sanitizeName(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '[', ']', '"', '<', '>', '|':
			return '_'
		case ' ':
			return '_'
		}
		return r
	}, strings.TrimSpace(s))
}
