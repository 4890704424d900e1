// Package receipt exports a confirmed booking as a one-sheet workbook.
package receipt

import (
	"fmt"
	"io"
	"strings"

	"tourbook/internal/format"
	"tourbook/internal/models"

	"github.com/xuri/excelize/v2"
)

const SheetName = "Receipt"

// ContentType of the written workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// FileName is the download name for a booking's receipt.
func FileName(rec *models.BookingRecord) string {
	ref := strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '_' {
			return r
		}
		return '_'
	}, rec.Reference())
	return fmt.Sprintf("booking_%s.xlsx", ref)
}

// Rows lists the label/value pairs shown on the receipt. Total is the backend's figure.
func Rows(rec *models.BookingRecord) [][2]string {
	var name, location string
	if rec.Experience != nil {
		name, location = rec.Experience.Name, rec.Experience.Location
	}
	rows := [][2]string{
		{"Booking reference", rec.Reference()},
		{"Experience", name},
		{"Location", location},
		{"Date", format.Date(rec.BookingDate)},
		{"Guests", format.Guests(rec.Quantity)},
		{"Total paid", format.Currency(rec.Total)},
		{"Status", rec.Status},
		{"Name", rec.Name},
		{"Email", rec.Email},
		{"Phone", rec.Phone},
	}
	if rec.SpecialRequests != "" {
		rows = append(rows, [2]string{"Special requests", rec.SpecialRequests})
	}
	return rows
}

// Write streams the workbook for rec to w.
func Write(w io.Writer, rec *models.BookingRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(SheetName)
	if err != nil {
		return fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(SheetName, "A1", "Booking Confirmed")
	_ = f.MergeCell(SheetName, "A1", "B1")
	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(SheetName, "A1", "A1", titleStyle)

	labelStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E2EFDA"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})

	for i, row := range Rows(rec) {
		labelCell, _ := excelize.CoordinatesToCellName(1, i+3)
		valueCell, _ := excelize.CoordinatesToCellName(2, i+3)
		_ = f.SetCellValue(SheetName, labelCell, row[0])
		_ = f.SetCellValue(SheetName, valueCell, row[1])
		_ = f.SetCellStyle(SheetName, labelCell, labelCell, labelStyle)
	}

	_ = f.SetColWidth(SheetName, "A", "A", 22)
	_ = f.SetColWidth(SheetName, "B", "B", 40)
	_ = f.DeleteSheet("Sheet1")

	if err := f.Write(w); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}
	return nil
}
