package main

import (
	"fmt"

	"github.com/mmdatafocus/cityreport_bot/models"
	"github.com/xuri/excelize/v2"
)

const reportSheet = "Reports"

var reportColumns = []string{
	"ID", "User ID", "Username", "Description", "Photo",
	"Latitude", "Longitude", "Created At", "Email Status",
}

// buildReportWorkbook renders all reports into a single-sheet workbook.
func buildReportWorkbook(rows []models.Report) (*excelize.File, error) {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", reportSheet)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return nil, err
	}

	for i, col := range reportColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(reportSheet, cell, col); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(reportSheet, cell, cell, headerStyle); err != nil {
			return nil, err
		}
	}

	for rowIdx, r := range rows {
		values := []interface{}{
			r.ID,
			r.UserID,
			r.Username,
			r.Description,
			r.PhotoPath,
			floatCell(r.Lat),
			floatCell(r.Lon),
			r.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
			r.EmailStatus,
		}
		for colIdx, v := range values {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(reportSheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	if err := f.SetColWidth(reportSheet, "D", "D", 50); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(reportSheet, "I", "I", 30); err != nil {
		return nil, err
	}
	return f, nil
}

func floatCell(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.5f", *v)
}
