// Package export writes reservation reports for the venue staff.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"smokyloft/internal/models"
)

var reportColumns = []string{"ID", "Стол", "Дата", "Время", "Гость", "Телефон", "Создано"}

// ExcelReport builds a workbook with one sheet per active date label, each
// listing that day's reservations.
type ExcelReport struct {
	file       *excelize.File
	currentRow int
	sheets     int
}

// NewExcelReport creates an empty report.
func NewExcelReport() *ExcelReport {
	return &ExcelReport{file: excelize.NewFile()}
}

// Write renders all active reservations grouped by date label.
func (r *ExcelReport) Write(reservations []models.Reservation) error {
	for _, date := range models.ActiveDates {
		var day []models.Reservation
		for _, res := range reservations {
			if res.Date == date {
				day = append(day, res)
			}
		}
		if err := r.writeSheet(date, day); err != nil {
			return err
		}
	}
	return nil
}

func (r *ExcelReport) writeSheet(name string, reservations []models.Reservation) error {
	// Excel caps sheet names at 31 chars.
	if len(name) > 31 {
		name = name[:31]
	}

	if r.sheets == 0 {
		r.file.SetSheetName("Sheet1", name)
	} else {
		if _, err := r.file.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}
	r.sheets++
	r.currentRow = 1

	if err := r.writeRow(name, headerCells()); err != nil {
		return err
	}
	if style, err := r.file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		startCell, _ := excelize.CoordinatesToCellName(1, 1)
		endCell, _ := excelize.CoordinatesToCellName(len(reportColumns), 1)
		_ = r.file.SetCellStyle(name, startCell, endCell, style)
	}

	for _, res := range reservations {
		row := []interface{}{
			res.ID,
			res.TableID,
			res.Date,
			res.Time,
			res.Name,
			res.Phone,
			res.CreatedAt.Format("02.01.2006 15:04"),
		}
		if err := r.writeRow(name, row); err != nil {
			return err
		}
	}
	return nil
}

func (r *ExcelReport) writeRow(sheet string, row []interface{}) error {
	for i, val := range row {
		cell, err := excelize.CoordinatesToCellName(i+1, r.currentRow)
		if err != nil {
			return err
		}
		if err := r.file.SetCellValue(sheet, cell, val); err != nil {
			return err
		}
	}
	r.currentRow++
	return nil
}

func headerCells() []interface{} {
	cells := make([]interface{}, len(reportColumns))
	for i, c := range reportColumns {
		cells[i] = c
	}
	return cells
}

// Save writes the workbook to w.
func (r *ExcelReport) Save(w io.Writer) error {
	return r.file.Write(w)
}

// SaveToFile writes the workbook to disk.
func (r *ExcelReport) SaveToFile(path string) error {
	return r.file.SaveAs(path)
}

// Close releases resources.
func (r *ExcelReport) Close() error {
	return r.file.Close()
}
