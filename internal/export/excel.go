package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/leadforge/leadforge/internal/lead"
)

// Excel's hard limit on sheet name length.
const maxSheetName = 31

const allLeadsSheet = "All Leads"

// writeExcel produces a workbook with an "All Leads" sheet plus one sheet
// per source, in the order sources first appear in the record stream.
func (e *Exporter) writeExcel(path string, cols []string, recs []*lead.Record) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", allLeadsSheet); err != nil {
		return err
	}
	if err := writeSheet(f, allLeadsSheet, cols, recs); err != nil {
		return err
	}

	bySource := make(map[string][]*lead.Record)
	var sourceOrder []string
	for _, r := range recs {
		s := r.Source()
		if s == "" {
			s = "Unknown"
		}
		if _, ok := bySource[s]; !ok {
			sourceOrder = append(sourceOrder, s)
		}
		bySource[s] = append(bySource[s], r)
	}

	taken := map[string]bool{allLeadsSheet: true}
	for _, s := range sourceOrder {
		name := sheetName(s, taken)
		taken[name] = true
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
		if err := writeSheet(f, name, cols, bySource[s]); err != nil {
			return err
		}
	}

	return f.SaveAs(path)
}

func writeSheet(f *excelize.File, sheet string, cols []string, recs []*lead.Record) error {
	for i, c := range cols {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, c); err != nil {
			return err
		}
	}
	for ri, r := range recs {
		for ci, c := range cols {
			v := r.Get(c)
			if v == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(ci+1, ri+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// sheetName sanitizes and truncates a source label into a unique, legal
// sheet name.
func sheetName(label string, taken map[string]bool) string {
	name := sanitizeName(label)
	if name == "" {
		name = "Source"
	}
	if len(name) > maxSheetName {
		name = name[:maxSheetName]
	}
	if !taken[name] {
		return name
	}
	for i := 2; ; i++ {
		suffix := fmt.Sprintf("_%d", i)
		base := name
		if len(base)+len(suffix) > maxSheetName {
			base = base[:maxSheetName-len(suffix)]
		}
		if cand := base + suffix; !taken[cand] {
			return cand
		}
	}
}
