package template

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"mlextractor/internal"
	"mlextractor/internal/coerce"
	"mlextractor/internal/keywords"
	"mlextractor/internal/util"
)

const (
	// ML official templates reserve rows 1..7 for metadata; product data
	// never starts above row 8.
	MinDataStartRow = 8

	headerSearchDepth = 12
	typeSampleLimit   = 20
	obligatoryToken   = "obligatorio"
)

// Sheets with these names carry help text and legal boilerplate, never the
// product grid.
var excludedSheets = map[string]struct{}{
	"ayuda":      {},
	"legales":    {},
	"extra info": {},
}

var conditionEnum = []string{"Nuevo", "Usado", "Reacondicionado"}

// Analyze inspects a workbook and extracts the template geometry. A workbook
// without a usable sheet fails with not_a_template; anything else yields a
// geometry, possibly with is_ml_template=false and findings explaining why.
func Analyze(f *excelize.File, table *keywords.Table) (internal.TemplateGeometry, error) {
	sheet := ""
	for _, name := range f.GetSheetList() {
		if _, excluded := excludedSheets[util.Normalize(name)]; !excluded {
			sheet = name
			break
		}
	}
	if sheet == "" {
		return internal.TemplateGeometry{}, internal.Structural(internal.ErrNotATemplate,
			"workbook has no product sheet, only help/legal sheets")
	}

	grid, err := NewGrid(f, sheet)
	if err != nil {
		return internal.TemplateGeometry{}, internal.Structural(internal.ErrReadFailure, err.Error())
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return internal.TemplateGeometry{}, internal.Structural(internal.ErrReadFailure, err.Error())
	}

	maxRow := len(rows)
	maxCol := 0
	for _, row := range rows {
		if len(row) > maxCol {
			maxCol = len(row)
		}
	}

	geom := internal.TemplateGeometry{Sheet: sheet, DataStartRow: MinDataStartRow}
	if maxRow == 0 || maxCol == 0 {
		geom.HeaderRow = 1
		geom.Findings = append(geom.Findings, "sheet is empty")
		return geom, nil
	}

	geom.HeaderRow = findHeaderRow(grid, table, maxRow, maxCol, &geom.Findings)
	geom.ObligatoryRow = findObligatoryRow(grid, maxRow, maxCol)
	if geom.ObligatoryRow > 0 && geom.ObligatoryRow < maxRow {
		geom.DataTypeRow = geom.ObligatoryRow + 1
	}

	rawStart := rawDataStart(geom, rows, maxCol)
	geom.DataStartRow = rawStart
	if geom.DataStartRow < MinDataStartRow {
		geom.DataStartRow = MinDataStartRow
	}

	geom.Columns = buildColumns(grid, table, geom, maxRow, maxCol, rows)

	score, findings := confidence(geom, table, rows, rawStart, maxRow, maxCol)
	geom.Confidence = score
	geom.IsMLTemplate = score >= 0.6
	geom.Findings = append(geom.Findings, findings...)

	return geom, nil
}

// findHeaderRow scores rows 1..12 by keyword hits and picks the best; ties
// go to the earlier row, zero hits fall back to row 1.
func findHeaderRow(grid *Grid, table *keywords.Table, maxRow, maxCol int, findings *[]string) int {
	limit := maxRow
	if limit > headerSearchDepth {
		limit = headerSearchDepth
	}

	bestRow, bestScore := 1, 0
	for r := 1; r <= limit; r++ {
		score := 0
		for c := 1; c <= maxCol; c++ {
			value, err := grid.Read(r, c)
			if err != nil || value == "" {
				continue
			}
			if _, ok := table.Classify(util.Normalize(value)); ok {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			bestRow = r
		}
	}

	if bestScore == 0 {
		*findings = append(*findings, "no header keywords found in the first rows; assuming row 1")
	}
	return bestRow
}

func findObligatoryRow(grid *Grid, maxRow, maxCol int) int {
	limit := maxRow
	if limit > headerSearchDepth {
		limit = headerSearchDepth
	}
	for r := 1; r <= limit; r++ {
		for c := 1; c <= maxCol; c++ {
			value, err := grid.Read(r, c)
			if err != nil {
				continue
			}
			if strings.Contains(util.Normalize(value), obligatoryToken) {
				return r
			}
		}
	}
	return 0
}

// rawDataStart is the pre-floor estimate: template separation after the
// obligatory block, or the first reasonably dense row below the header.
func rawDataStart(geom internal.TemplateGeometry, rows [][]string, maxCol int) int {
	start := geom.HeaderRow + 1
	if geom.ObligatoryRow > 0 {
		start = geom.ObligatoryRow + 3
	}

	for r := geom.HeaderRow + 1; r <= len(rows); r++ {
		filled := 0
		for _, cell := range rows[r-1] {
			if strings.TrimSpace(cell) != "" {
				filled++
			}
		}
		if maxCol > 0 && filled*2 >= maxCol {
			if r > start {
				start = r
			}
			break
		}
	}

	return start
}

func buildColumns(grid *Grid, table *keywords.Table, geom internal.TemplateGeometry, maxRow, maxCol int, rows [][]string) []internal.ColumnDescriptor {
	assigned := map[internal.LogicalField]bool{}
	out := make([]internal.ColumnDescriptor, 0, maxCol)

	for c := 1; c <= maxCol; c++ {
		raw, err := grid.Read(geom.HeaderRow, c)
		if err != nil || strings.TrimSpace(raw) == "" {
			continue
		}

		desc := internal.ColumnDescriptor{
			Index:     c,
			RawHeader: raw,
			DataType:  internal.TypeText,
		}

		if field, ok := table.Classify(util.Normalize(raw)); ok && !assigned[field] {
			desc.LogicalField = field
			assigned[field] = true
		}

		if geom.ObligatoryRow > 0 {
			if marker, err := grid.Read(geom.ObligatoryRow, c); err == nil {
				desc.Obligatory = strings.Contains(util.Normalize(marker), obligatoryToken)
			}
		}

		if geom.DataTypeRow > 0 {
			label, _ := grid.Read(geom.DataTypeRow, c)
			desc.DataType, desc.EnumValues = coerce.ClassifyLabel(label)
		} else {
			desc.DataType = coerce.InferType(columnSample(rows, geom.DataStartRow, c))
		}

		if desc.LogicalField == internal.FieldCondition && desc.DataType == internal.TypeEnum && len(desc.EnumValues) == 0 {
			desc.EnumValues = conditionEnum
		}

		out = append(out, desc)
	}

	return out
}

func columnSample(rows [][]string, fromRow, col int) []string {
	out := make([]string, 0, typeSampleLimit)
	for r := fromRow; r <= len(rows) && len(out) < typeSampleLimit; r++ {
		row := rows[r-1]
		if col-1 < len(row) && strings.TrimSpace(row[col-1]) != "" {
			out = append(out, row[col-1])
		}
	}
	return out
}

// confidence weighs four signals: detected ML fields (0.4), known category
// markers in the body (0.3), data start at or past row 7 (0.2) and basic
// structural validity (0.1).
func confidence(geom internal.TemplateGeometry, table *keywords.Table, rows [][]string, rawStart, maxRow, maxCol int) (float64, []string) {
	var findings []string

	fieldCount := 0
	for _, col := range geom.Columns {
		if col.LogicalField != "" {
			fieldCount++
		}
	}
	score := capped(float64(fieldCount)/8.0) * 0.4
	if fieldCount < 5 {
		findings = append(findings, fmt.Sprintf("only %d known template fields detected", fieldCount))
	}

	catCount := countCategoryMarkers(table, rows)
	score += capped(float64(catCount)/3.0) * 0.3
	if catCount == 0 {
		findings = append(findings, "no known category markers found in the sheet body")
	}

	if rawStart >= 7 {
		score += 0.2
	} else {
		findings = append(findings, fmt.Sprintf("data appears to start at row %d; official templates start at row 8 or later", rawStart))
	}

	if maxRow >= MinDataStartRow && maxCol >= 5 {
		score += 0.1
	} else {
		findings = append(findings, "sheet is too small for an official template")
	}

	return capped(score), findings
}

func countCategoryMarkers(table *keywords.Table, rows [][]string) int {
	seen := map[string]struct{}{}
	for _, row := range rows {
		for _, cell := range row {
			norm := util.Normalize(cell)
			if norm == "" {
				continue
			}
			for _, cat := range table.Categories() {
				if norm == cat {
					seen[cat] = struct{}{}
				}
			}
		}
	}
	return len(seen)
}

func capped(v float64) float64 {
	if v > 1 {
		return 1
	}
	return v
}
