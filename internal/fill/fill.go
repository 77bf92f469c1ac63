package fill

import (
	"errors"
	"fmt"

	"mlextractor/internal"
	"mlextractor/internal/coerce"
	"mlextractor/internal/template"
)

// Fill writes products into a template workbook according to the write mode.
// All structural validation happens before the first cell is touched, so a
// returned error of that kind means the workbook was not modified.
func Fill(grid *template.Grid, geom internal.TemplateGeometry, resolved internal.ResolvedMapping,
	products []internal.Product, defaults map[internal.LogicalField]any,
	mode internal.WriteMode, edits []internal.Edit) (internal.FillReport, error) {

	if !internal.IsWriteMode(string(mode)) {
		return internal.FillReport{}, internal.Structural(internal.ErrWriteModeInvalid,
			fmt.Sprintf("unknown write mode %q", mode))
	}
	if mode == internal.ModeInteractive && len(edits) == 0 {
		return internal.FillReport{}, internal.Structural(internal.ErrInteractiveRequiresEdits,
			"interactive mode needs at least one edit")
	}
	if len(geom.Columns) == 0 {
		return internal.FillReport{}, internal.Structural(internal.ErrHeaderRowNotFound,
			"template has no detected columns")
	}
	if mode != internal.ModeInteractive && !hasTargets(resolved, defaults) {
		return internal.FillReport{}, internal.Structural(internal.ErrMappingEmpty,
			"no source column resolved and no defaults provided")
	}

	floor := geom.DataStartRow
	if floor < template.MinDataStartRow {
		floor = template.MinDataStartRow
	}
	grid.SetFloor(floor)

	var perRow []internal.RowOutcome
	var err error
	switch mode {
	case internal.ModeInteractive:
		perRow, err = applyEdits(grid, geom, edits, floor)
	case internal.ModeAppend:
		perRow, err = fillRows(grid, geom, resolved, products, defaults, mode, appendStart(grid, geom, resolved, floor))
	default:
		perRow, err = fillRows(grid, geom, resolved, products, defaults, mode, floor)
	}
	if err != nil {
		return internal.FillReport{}, asStructural(err)
	}

	return buildReport(mode, len(products), perRow), nil
}

// hasTargets reports whether at least one logical field can receive a value.
func hasTargets(resolved internal.ResolvedMapping, defaults map[internal.LogicalField]any) bool {
	for _, col := range resolved {
		if col != "" {
			return true
		}
	}
	return len(defaults) > 0
}

// fillRows writes one product per row starting at startRow, columns left to
// right. Fill-empty and append skip occupied cells; overwrite replaces them.
func fillRows(grid *template.Grid, geom internal.TemplateGeometry, resolved internal.ResolvedMapping,
	products []internal.Product, defaults map[internal.LogicalField]any,
	mode internal.WriteMode, startRow int) ([]internal.RowOutcome, error) {

	perRow := make([]internal.RowOutcome, 0, len(products))
	for i, product := range products {
		row := startRow + i
		outcome := internal.RowOutcome{
			Row:     row,
			Filled:  map[internal.LogicalField]any{},
			Skipped: map[internal.LogicalField]internal.SkipReason{},
		}

		for _, desc := range geom.Columns {
			field := desc.LogicalField
			if field == "" {
				continue
			}
			raw, attempted := valueFor(product, resolved, defaults, field)
			if !attempted {
				continue
			}

			value, reason := coerce.Coerce(raw, desc)
			if reason != "" {
				outcome.Skipped[field] = reason
				continue
			}

			if mode != internal.ModeOverwrite {
				empty, err := grid.Empty(row, desc.Index)
				if err != nil {
					return nil, internal.Structural(internal.ErrReadFailure, err.Error())
				}
				if !empty {
					outcome.Skipped[field] = internal.SkipCellNotEmpty
					continue
				}
			}

			if err := grid.Write(row, desc.Index, value); err != nil {
				return nil, err
			}
			outcome.Filled[field] = value
		}

		perRow = append(perRow, outcome)
	}
	return perRow, nil
}

// valueFor picks the value for a field: the mapped source column when it
// carries a value, otherwise the field's default. A mapped field counts as
// attempted even when the product has nothing for it, so the missing value
// surfaces as a no_value skip instead of vanishing from the report. The
// second return is false only for fields that are neither mapped nor
// defaulted.
func valueFor(product internal.Product, resolved internal.ResolvedMapping,
	defaults map[internal.LogicalField]any, field internal.LogicalField) (any, bool) {

	mapped := resolved[field] != ""
	if mapped {
		if v, ok := product[resolved[field]]; ok && v != nil {
			return v, true
		}
	}
	if v, ok := defaults[field]; ok {
		return v, true
	}
	return nil, mapped
}

// appendStart finds the first free row at or below the floor, probing the
// anchor column: the title column when present, else the leftmost mapped one.
func appendStart(grid *template.Grid, geom internal.TemplateGeometry, resolved internal.ResolvedMapping, floor int) int {
	anchorCol := 0
	if desc := geom.Column(internal.FieldTitle); desc != nil {
		anchorCol = desc.Index
	} else {
		for _, desc := range geom.Columns {
			if desc.LogicalField == "" || resolved[desc.LogicalField] == "" {
				continue
			}
			if anchorCol == 0 || desc.Index < anchorCol {
				anchorCol = desc.Index
			}
		}
	}
	if anchorCol == 0 {
		anchorCol = 1
	}

	maxRow, err := grid.MaxRow()
	if err != nil {
		return floor
	}
	for row := floor; row <= maxRow; row++ {
		if empty, err := grid.Empty(row, anchorCol); err == nil && empty {
			return row
		}
	}
	return maxRow + 1
}

// applyEdits writes confirmed interactive edits. Edits always overwrite; an
// edit aimed above the data region or at an unknown field is recorded as
// skipped, never applied.
func applyEdits(grid *template.Grid, geom internal.TemplateGeometry, edits []internal.Edit, floor int) ([]internal.RowOutcome, error) {
	byRow := map[int]*internal.RowOutcome{}
	var order []int

	outcomeFor := func(row int) *internal.RowOutcome {
		if o, ok := byRow[row]; ok {
			return o
		}
		o := &internal.RowOutcome{
			Row:     row,
			Filled:  map[internal.LogicalField]any{},
			Skipped: map[internal.LogicalField]internal.SkipReason{},
		}
		byRow[row] = o
		order = append(order, row)
		return o
	}

	for _, edit := range edits {
		outcome := outcomeFor(edit.Row)

		if edit.Row < floor {
			outcome.Skipped[edit.Field] = internal.SkipRowBelowHeader
			continue
		}
		desc := geom.Column(edit.Field)
		if desc == nil {
			outcome.Skipped[edit.Field] = internal.SkipUnknownField
			continue
		}

		value, reason := coerce.Coerce(edit.Value, *desc)
		if reason != "" {
			outcome.Skipped[edit.Field] = reason
			continue
		}
		if err := grid.Write(edit.Row, desc.Index, value); err != nil {
			return nil, err
		}
		outcome.Filled[edit.Field] = value
	}

	perRow := make([]internal.RowOutcome, 0, len(order))
	for _, row := range order {
		perRow = append(perRow, *byRow[row])
	}
	return perRow, nil
}

func asStructural(err error) error {
	var se *internal.StructuralError
	if errors.As(err, &se) {
		return se
	}
	return internal.Structural(internal.ErrWriteFailure, err.Error())
}
