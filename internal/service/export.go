package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/jkor2/lifeof/internal/model"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Entries"

var exportHeader = []string{"Date", "Period", "Visibility", "Attribute", "Value", "Unit", "Attribute Note", "Entry Notes", "Entry ID"}

// ExportService renders entries as an .xlsx workbook, one row per
// attribute value. Entries without attributes still get a row.
type ExportService struct{ entries *EntryService }

func NewExportService(entries *EntryService) *ExportService {
	return &ExportService{entries: entries}
}

func (s *ExportService) Workbook(ctx context.Context, visibility string) ([]byte, error) {
	entries, err := s.entries.List(ctx, visibility)
	if err != nil {
		return nil, err
	}
	return renderEntries(entries)
}

func renderEntries(entries []model.Entry) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(exportHeader), 1)
	if err := f.SetCellStyle(exportSheet, "A1", last, headerStyle); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}
	for col, width := range map[string]float64{"A": 12, "B": 8, "C": 11, "D": 22, "E": 14, "F": 8, "G": 24, "H": 40, "I": 38} {
		if err := f.SetColWidth(exportSheet, col, col, width); err != nil {
			return nil, fmt.Errorf("set width: %w", err)
		}
	}

	row := 2
	for _, e := range entries {
		notes := joinNotes(e.Notes)
		attrs := e.Attributes
		if len(attrs) == 0 {
			attrs = []model.Attribute{{}}
		}
		for _, a := range attrs {
			values := []any{e.Date, e.DayPeriod, e.Visibility, a.Name, a.Value, deref(a.Unit), deref(a.Note), notes, e.ID}
			cell, _ := excelize.CoordinatesToCellName(1, row)
			if err := f.SetSheetRow(exportSheet, cell, &values); err != nil {
				return nil, fmt.Errorf("write row %d: %w", row, err)
			}
			row++
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func joinNotes(notes []model.Note) string {
	var b bytes.Buffer
	for i, n := range notes {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(n.Content)
	}
	return b.String()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
