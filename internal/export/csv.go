// csv.go: delimited-text materialization. The output is UTF-8 with a byte
// order marker: consuming spreadsheet tools commonly default to a non-Unicode
// codepage and mis-render un-prefixed UTF-8, so the BOM is part of the
// contract, not a cosmetic choice.
package export

import (
	"encoding/csv"
	"os"
	"strings"

	"github.com/wakin721/Neri/internal/errors"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV writes the header and rows to path as BOM-prefixed UTF-8 CSV.
func WriteCSV(path string, rows [][]string) error {
	if !strings.HasSuffix(strings.ToLower(path), ".csv") {
		path += ".csv"
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.New(err).
			Category(errors.CategoryFileIO).
			FileContext(path).
			Build()
	}
	defer file.Close()

	if _, err := file.Write(utf8BOM); err != nil {
		return errors.New(err).
			Category(errors.CategoryExport).
			FileContext(path).
			Build()
	}

	w := csv.NewWriter(file)
	if err := w.Write(Columns); err != nil {
		return errors.New(err).
			Category(errors.CategoryExport).
			FileContext(path).
			Build()
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return errors.New(err).
				Category(errors.CategoryExport).
				FileContext(path).
				Build()
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return errors.New(err).
			Category(errors.CategoryExport).
			FileContext(path).
			Build()
	}

	// Some filesystems only surface write failures at close.
	if err := file.Close(); err != nil {
		return errors.New(err).
			Category(errors.CategoryFileIO).
			FileContext(path).
			Build()
	}
	return nil
}
