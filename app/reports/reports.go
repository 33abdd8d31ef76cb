// Package reports builds the spreadsheets the administrator downloads. It
// never touches HTTP; callers write the finished workbook out.
package reports

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	headerColor = "4472C4"
	creator     = "THPT Võ Văn Kiệt"
)

type column struct {
	header string
	width  float64
}

// sheet appends rows below a styled header.
type sheet struct {
	f    *excelize.File
	name string
	row  int
}

func newSheet(name string, cols []column) (*excelize.File, *sheet, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("name sheet: %w", err)
	}
	_ = f.SetDocProps(&excelize.DocProperties{Creator: creator})

	headers := make([]any, len(cols))
	for i, c := range cols {
		headers[i] = c.header
		colName, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			f.Close()
			return nil, nil, err
		}
		if err := f.SetColWidth(name, colName, colName, c.width); err != nil {
			f.Close()
			return nil, nil, err
		}
	}
	if err := f.SetSheetRow(name, "A1", &headers); err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("write header: %w", err)
	}

	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerColor}},
	})
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("header style: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(cols), 1)
	if err := f.SetCellStyle(name, "A1", last, style); err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("apply header style: %w", err)
	}

	return f, &sheet{f: f, name: name, row: 1}, nil
}

func (s *sheet) add(values ...any) error {
	s.row++
	cell, err := excelize.CoordinatesToCellName(1, s.row)
	if err != nil {
		return err
	}
	return s.f.SetSheetRow(s.name, cell, &values)
}

// Date formats t as dd/mm/yyyy in loc.
func Date(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format("02/01/2006")
}

// calendarDate formats a DATE column value, which carries no time zone.
func calendarDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006")
}

// Filename builds "<prefix>_<yyyy-mm-dd>.xlsx" for the day of now in loc.
func Filename(prefix string, now time.Time, loc *time.Location) string {
	if loc != nil {
		now = now.In(loc)
	}
	return fmt.Sprintf("%s_%s.xlsx", prefix, now.Format("2006-01-02"))
}

// build runs fill and closes the workbook when it fails.
func build(f *excelize.File, fill func() error) (*excelize.File, error) {
	if err := fill(); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}
