package events

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Event History"

var exportHeaders = []string{"ID", "Type", "Description", "Document ID", "User ID", "Date"}

// BuildWorkbook renders events into an XLSX workbook, one row per event.
func BuildWorkbook(evs []Event) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if index, _ := f.GetSheetIndex(exportSheet); index == -1 {
		if _, err := f.NewSheet(exportSheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(exportSheet)
	f.SetActiveSheet(activeIndex)

	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(exportSheet, cell, h)
	}

	row := 2
	for _, ev := range evs {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(exportSheet, cell, v)
		}

		write(1, ev.ID)
		write(2, ev.EventType)
		write(3, ev.Description)

		documentID := ""
		if ev.DocumentID != nil {
			documentID = *ev.DocumentID
		}
		write(4, documentID)

		userID := ""
		if ev.UserID != nil {
			userID = *ev.UserID
		}
		write(5, userID)

		date := ""
		if !ev.CreatedAt.IsZero() {
			date = ev.CreatedAt.Format("2006-01-02 15:04:05")
		}
		write(6, date)

		row++
	}

	_ = f.SetColWidth(exportSheet, "A", "A", 38)
	_ = f.SetColWidth(exportSheet, "B", "B", 18)
	_ = f.SetColWidth(exportSheet, "C", "C", 52)
	_ = f.SetColWidth(exportSheet, "D", "E", 38)
	_ = f.SetColWidth(exportSheet, "F", "F", 20)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}
