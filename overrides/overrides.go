// Package overrides reads manual translation overrides from spreadsheets and
// writes the per-run report workbook.
//
// Both directions share one layout: one sheet per language tag, a header row,
// then rows of ID | Source | Target.
package overrides

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// TimestampLayout formats run timestamps in report and backup names.
const TimestampLayout = "20060102-150405"

// Header is the first row of every sheet.
var Header = []string{"ID", "Source", "Target"}

// Entry is one data row.
type Entry struct {
	ID     string
	Source string
	Target string
}

// Sheet is one language's rows.
type Sheet struct {
	Name    string
	Entries []Entry
}

// ---------------------------------------------------------------------------
// Discovery
// ---------------------------------------------------------------------------

// Discover returns the override files for basename in folder, sorted by file
// name. Names match <basename>-overrides*.xlsx case-insensitively.
func Discover(folder, basename string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", folder, err)
	}
	prefix := strings.ToLower(basename + "-overrides")

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		lower := strings.ToLower(e.Name())
		if strings.HasPrefix(lower, prefix) && strings.HasSuffix(lower, ".xlsx") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	paths := make([]string, len(names))
	for i, n := range names {
		paths[i] = filepath.Join(folder, n)
	}
	return paths, nil
}

// ReportName returns the report file name for a run started at t.
func ReportName(basename string, t time.Time) string {
	return basename + "-overrides-" + t.Format(TimestampLayout) + ".xlsx"
}

// ---------------------------------------------------------------------------
// Reading
// ---------------------------------------------------------------------------

// ReadFile returns the visible sheets of an override workbook in workbook
// order. Rows start at row 2; column A is the ID and column C the target.
// Rows with a blank ID are dropped.
func ReadFile(path string) ([]Sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var sheets []Sheet
	for _, name := range f.GetSheetList() {
		visible, err := f.GetSheetVisible(name)
		if err != nil {
			return nil, fmt.Errorf("%s: sheet %q: %w", path, name, err)
		}
		if !visible {
			continue
		}

		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("%s: reading sheet %q: %w", path, name, err)
		}

		sheet := Sheet{Name: name}
		for i, row := range rows {
			if i == 0 {
				continue
			}
			e := Entry{
				ID:     strings.TrimSpace(cell(row, 0)),
				Source: cell(row, 1),
				Target: cell(row, 2),
			}
			if e.ID == "" {
				continue
			}
			sheet.Entries = append(sheet.Entries, e)
		}
		sheets = append(sheets, sheet)
	}
	return sheets, nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

var bodyWrapper = regexp.MustCompile(`(?is)^\s*<body>(.*)</body>\s*$`)

// Unwrap strips a legacy <body>...</body> wrapper around an override value.
func Unwrap(s string) string {
	if m := bodyWrapper.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return s
}

// ---------------------------------------------------------------------------
// Writing
// ---------------------------------------------------------------------------

// WriteReport writes sheets to a new workbook at path with a bold header row.
// At least one sheet is required.
func WriteReport(path string, sheets []Sheet) error {
	if len(sheets) == 0 {
		return fmt.Errorf("report %s: no sheets", path)
	}

	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("report %s: %w", path, err)
	}

	first := f.GetSheetName(0)
	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName(first, s.Name); err != nil {
				return fmt.Errorf("report %s: sheet %q: %w", path, s.Name, err)
			}
		} else if _, err := f.NewSheet(s.Name); err != nil {
			return fmt.Errorf("report %s: sheet %q: %w", path, s.Name, err)
		}

		if err := writeRow(f, s.Name, 1, Header); err != nil {
			return fmt.Errorf("report %s: %w", path, err)
		}
		if err := f.SetRowStyle(s.Name, 1, 1, bold); err != nil {
			return fmt.Errorf("report %s: %w", path, err)
		}
		for j, e := range s.Entries {
			if err := writeRow(f, s.Name, j+2, []string{e.ID, e.Source, e.Target}); err != nil {
				return fmt.Errorf("report %s: %w", path, err)
			}
		}
	}
	f.SetActiveSheet(0)

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []string) error {
	addr, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return f.SetSheetRow(sheet, addr, &cells)
}
