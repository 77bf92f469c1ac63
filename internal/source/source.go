package source

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"mlextractor/internal"
)

// ReadProducts loads a product file by extension. xlsx and csv are the two
// formats sellers actually send.
func ReadProducts(path string) (internal.ProductTable, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return ReadProductsXLSX(path)
	case ".csv":
		return ReadProductsCSV(path)
	default:
		return internal.ProductTable{}, internal.Structural(internal.ErrReadFailure,
			fmt.Sprintf("unsupported product file %q", filepath.Base(path)))
	}
}

// ReadProductsXLSX reads the first sheet of a workbook: row 1 is the header
// row, every later non-empty row is one product.
func ReadProductsXLSX(path string) (internal.ProductTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return internal.ProductTable{}, internal.Structural(internal.ErrReadFailure, err.Error())
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return internal.ProductTable{}, internal.Structural(internal.ErrReadFailure, "workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return internal.ProductTable{}, internal.Structural(internal.ErrReadFailure, err.Error())
	}
	return tableFromRows(rows), nil
}

// ReadProductsCSV reads a comma-separated product file with the same layout.
func ReadProductsCSV(path string) (internal.ProductTable, error) {
	file, err := os.Open(path)
	if err != nil {
		return internal.ProductTable{}, internal.Structural(internal.ErrReadFailure, err.Error())
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return internal.ProductTable{}, internal.Structural(internal.ErrReadFailure, err.Error())
	}
	return tableFromRows(records), nil
}

func tableFromRows(rows [][]string) internal.ProductTable {
	if len(rows) == 0 {
		return internal.ProductTable{}
	}

	headers := make([]string, 0, len(rows[0]))
	for _, h := range rows[0] {
		headers = append(headers, strings.TrimSpace(h))
	}

	table := internal.ProductTable{Headers: headers}
	for _, row := range rows[1:] {
		product := internal.Product{}
		empty := true
		for i, h := range headers {
			if h == "" || i >= len(row) {
				continue
			}
			cell := strings.TrimSpace(row[i])
			if cell == "" {
				continue
			}
			product[h] = cell
			empty = false
		}
		if !empty {
			table.Rows = append(table.Rows, product)
		}
	}
	return table
}
