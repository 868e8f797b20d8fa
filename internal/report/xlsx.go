package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/screening-service/internal/models"
)

const sheetName = "Report"

// RenderXLSX writes the report as a two-column workbook.
func RenderXLSX(r models.Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to remove default sheet: %w", err)
	}

	b := r.Breakdown
	rows := [][]interface{}{
		{"Сессия", r.SessionID},
		{"Завершено", r.CompletedAt.Format("2006-01-02 15:04:05")},
		{"Итог", fmt.Sprintf("%d из %d", b.Total, b.MaxTotal)},
		{"Уровень", string(r.Advice.Level)},
		{"Этап 1 (MMSE/MoCA)", b.MMSEScore},
		{"Этап 2 (Часы)", b.ClockScore},
		{"Этап 3 (Memory)", b.MemoryScore},
		{"Ходов", b.Moves},
	}
	for _, reason := range r.Advice.Reasons {
		rows = append(rows, []interface{}{"Почему такой вывод", reason})
	}
	rows = append(rows, []interface{}{"Что дальше", r.Advice.Next})
	for _, line := range r.Commentary {
		rows = append(rows, []interface{}{"ИИ-комментарий", line})
	}
	disclaimer := r.Disclaimer
	if disclaimer == "" {
		disclaimer = models.ReportDisclaimer
	}
	rows = append(rows, []interface{}{"Примечание", disclaimer})

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}
	if err := f.SetColWidth(sheetName, "A", "A", 24); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(sheetName, "B", "B", 90); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}
