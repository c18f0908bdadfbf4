// Package export writes submissions to spreadsheets.
package export

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/garnizeh/ambucheck/internal/pdf"
	"github.com/garnizeh/ambucheck/pkg/models"
)

var fixedHeaders = []string{"ID", "Submitted At", "Submitted By"}

type column struct {
	key   string
	title string
}

// Submissions builds a workbook with one row per submission. Columns follow
// def's field order; answers the schema does not know about get extra
// columns, in first-seen order, titled from their keys.
func Submissions(def models.FormDefinition, subs []models.Submission) (*excelize.File, error) {
	cols := columns(def, subs)

	f := excelize.NewFile()
	sheet := SheetName(def)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("name sheet: %w", err)
	}

	headers := append([]string(nil), fixedHeaders...)
	for _, c := range cols {
		headers = append(headers, c.title)
	}
	if err := writeHeader(f, sheet, headers); err != nil {
		f.Close()
		return nil, err
	}

	for r, s := range subs {
		row := []any{s.ID, s.CreatedAt.UTC().Format("2006-01-02 15:04:05"), s.CreatedBy}
		for _, c := range cols {
			v, _ := s.Values.Get(c.key)
			row = append(row, pdf.FormatValue(v))
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("row %d: %w", r+2, err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("write row %d: %w", r+2, err)
		}
	}

	if err := layout(f, sheet, len(headers)); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func writeHeader(f *excelize.File, sheet string, headers []string) error {
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("header %q: %w", h, err)
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("write header %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return fmt.Errorf("style header %s: %w", cell, err)
		}
	}
	return nil
}

// layout sets column widths and freezes the header row.
func layout(f *excelize.File, sheet string, ncols int) error {
	last, err := excelize.ColumnNumberToName(ncols)
	if err != nil {
		return fmt.Errorf("last column: %w", err)
	}
	if err := f.SetColWidth(sheet, "A", "A", 6); err != nil {
		return fmt.Errorf("column width: %w", err)
	}
	if err := f.SetColWidth(sheet, "B", "C", 18); err != nil {
		return fmt.Errorf("column width: %w", err)
	}
	if ncols > 3 {
		if err := f.SetColWidth(sheet, "D", last, 22); err != nil {
			return fmt.Errorf("column width: %w", err)
		}
	}
	if err := f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}
	return nil
}

// Write renders the workbook straight to w.
func Write(w io.Writer, def models.FormDefinition, subs []models.Submission) error {
	f, err := Submissions(def, subs)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

func columns(def models.FormDefinition, subs []models.Submission) []column {
	var cols []column
	seen := map[string]bool{}
	for _, s := range def.Sections {
		for _, fd := range s.Fields {
			if seen[fd.ID] {
				continue
			}
			seen[fd.ID] = true
			title := fd.Label
			if title == "" {
				title = Humanize(fd.ID)
			}
			cols = append(cols, column{key: fd.ID, title: title})
		}
	}
	for _, s := range subs {
		for _, k := range s.Values.Keys() {
			if seen[k] {
				continue
			}
			seen[k] = true
			cols = append(cols, column{key: k, title: Humanize(k)})
		}
	}
	return cols
}

var titleCaser = cases.Title(language.English)

// Humanize turns a field key such as "pouch1_dex10" or "tamperSealTagged"
// into a column title.
func Humanize(key string) string {
	var words []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}
	runes := []rune(key)
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || unicode.IsSpace(r):
			flush()
			continue
		case unicode.IsUpper(r) && i > 0 && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])):
			flush()
		}
		cur = append(cur, r)
	}
	flush()
	return titleCaser.String(strings.Join(words, " "))
}

// SheetName is the form title cut to Excel's limits.
func SheetName(def models.FormDefinition) string {
	name := def.Title
	if name == "" {
		name = def.ID
	}
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return ' '
		}
		return r
	}, name)
	name = strings.TrimSpace(name)
	if r := []rune(name); len(r) > 31 {
		name = strings.TrimSpace(string(r[:31]))
	}
	if name == "" {
		name = "Submissions"
	}
	return name
}
