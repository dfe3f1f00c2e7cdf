// xlsx.go: spreadsheet materialization via excelize, one fixed-name sheet.
package export

import (
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/wakin721/Neri/internal/errors"
)

// WriteXLSX writes the header and rows to path as a workbook with the fixed
// sheet name.
func WriteXLSX(path string, rows [][]string) error {
	if !strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		path += ".xlsx"
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Debug("failed to close workbook", "error", err)
		}
	}()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return errors.New(err).
			Category(errors.CategoryExport).
			Context("sheet", SheetName).
			Build()
	}

	if err := writeSheetRow(f, 1, Columns); err != nil {
		return err
	}
	for i, row := range rows {
		if err := writeSheetRow(f, i+2, row); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return errors.New(err).
			Category(errors.CategoryFileIO).
			FileContext(path).
			Build()
	}
	return nil
}

func writeSheetRow(f *excelize.File, rowNum int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return errors.New(err).
			Category(errors.CategoryExport).
			Context("row", rowNum).
			Build()
	}

	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}

	if err := f.SetSheetRow(SheetName, cell, &cells); err != nil {
		return errors.New(err).
			Category(errors.CategoryExport).
			Context("row", rowNum).
			Build()
	}
	return nil
}
